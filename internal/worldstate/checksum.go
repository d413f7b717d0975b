package worldstate

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	"github.com/talgya/concordia/internal/ids"
)

// Checksum produces a 64-bit digest of the world by hashing fields in a
// canonical order: date, tick and RNG seed, then tags sorted with each
// country's deterministic fields, then provinces, armies and fleets sorted
// by id, then wars sorted by id, then diplomacy keys sorted, then trade
// nodes sorted by id. PMap's btree-backed Ascend already
// yields ascending-key order; the Go-map-keyed collections (AE targets,
// war sides, and the TagPair-keyed truce and relation maps) are sorted by
// hand.
//
// Two processes advancing the same initial state from the same inputs
// must produce the same checksum every tick; any divergence signals a
// determinism bug (design doc Section 8).
func (w WorldState) Checksum() uint64 {
	h := xxhash.New()
	var buf [8]byte

	putU64 := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	putI64 := func(v int64) { putU64(uint64(v)) }
	putBytes := func(b []byte) { h.Write(b) }

	putI64(int64(w.Date))
	putU64(w.Tick)
	putU64(w.Seed)

	w.Countries.Ascend(func(tag ids.Tag, c *CountryState) bool {
		putBytes(tag[:])
		putU64(boolU64(c.Alive))
		putI64(int64(c.Treasury))
		putI64(int64(c.Manpower))
		putI64(c.Prestige.Value())
		putI64(c.Stability.Value())
		putI64(c.ArmyTradition.Value())
		putI64(c.NavyTradition.Value())
		putI64(c.Legitimacy.Value())
		putU64(uint64(c.TechADM))
		putU64(uint64(c.TechDIP))
		putU64(uint64(c.TechMIL))
		putU64(uint64(c.ManaADM))
		putU64(uint64(c.ManaDIP))
		putU64(uint64(c.ManaMIL))
		for _, target := range sortedAETargets(c.AggressiveExpansion) {
			putBytes(target[:])
			putI64(int64(c.AggressiveExpansion[target]))
		}
		return true
	})

	w.Provinces.Ascend(func(id ids.ProvinceID, p *ProvinceState) bool {
		putU64(uint64(id))
		if p.Owner != nil {
			putBytes(p.Owner[:])
		} else {
			putU64(0)
		}
		if p.Controller != nil {
			putBytes(p.Controller[:])
		} else {
			putU64(0)
		}
		putI64(int64(p.BaseTax))
		putI64(int64(p.BaseProduction))
		putI64(int64(p.BaseManpower))
		putI64(int64(p.Autonomy))
		putU64(uint64(p.FortLevel))
		putU64(uint64(p.CenterOfTrade))
		return true
	})

	w.Armies.Ascend(func(id ids.ArmyID, a *Army) bool {
		putU64(uint64(id))
		putBytes(a.Owner[:])
		putU64(uint64(a.Location))
		putI64(int64(a.TotalStrength()))
		return true
	})

	w.Fleets.Ascend(func(id ids.FleetID, f *Fleet) bool {
		putU64(uint64(id))
		putBytes(f.Owner[:])
		putU64(uint64(f.Location))
		putU64(uint64(len(f.Ships)))
		return true
	})

	w.Wars.Ascend(func(id ids.WarID, war *War) bool {
		putU64(uint64(id))
		for _, t := range SortedTags(war.Attackers) {
			putBytes(t[:])
		}
		for _, t := range SortedTags(war.Defenders) {
			putBytes(t[:])
		}
		putI64(war.AttackerScore.Value())
		putI64(war.DefenderScore.Value())
		return true
	})

	for _, pair := range sortedPairs(w.Diplomacy.Truces) {
		putBytes(pair.A[:])
		putBytes(pair.B[:])
		putI64(int64(w.Diplomacy.Truces[pair]))
	}
	for _, pair := range sortedRelationPairs(w.Diplomacy.Relations) {
		rel := w.Diplomacy.Relations[pair]
		putBytes(pair.A[:])
		putBytes(pair.B[:])
		putU64(boolU64(rel.Alliance))
		putU64(boolU64(rel.RoyalMarriage))
		putU64(boolU64(rel.Access))
		putU64(boolU64(rel.Rival))
	}

	w.TradeNodes.Ascend(func(id ids.TradeNodeID, t *TradeNodeState) bool {
		putU64(uint64(id))
		putI64(int64(t.LocalValue))
		putI64(int64(t.IncomingValue))
		putI64(int64(t.TotalValue))
		return true
	})

	return h.Sum64()
}

func boolU64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func sortedAETargets[V any](m map[ids.Tag]V) []ids.Tag {
	out := make([]ids.Tag, 0, len(m))
	for t := range m {
		out = append(out, t)
	}
	sortTags(out)
	return out
}

func sortedPairs[V any](m map[ids.TagPair]V) []ids.TagPair {
	out := make([]ids.TagPair, 0, len(m))
	for p := range m {
		out = append(out, p)
	}
	sortPairs(out)
	return out
}

func sortedRelationPairs(m map[ids.TagPair]Relation) []ids.TagPair {
	out := make([]ids.TagPair, 0, len(m))
	for p := range m {
		out = append(out, p)
	}
	sortPairs(out)
	return out
}

func sortPairs(s []ids.TagPair) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && pairLess(s[j], s[j-1]); j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

func pairLess(a, b ids.TagPair) bool {
	if a.A != b.A {
		return a.A.Less(b.A)
	}
	return a.B.Less(b.B)
}
