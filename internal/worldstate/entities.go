package worldstate

import (
	"github.com/talgya/concordia/internal/calendar"
	"github.com/talgya/concordia/internal/fixedpoint"
	"github.com/talgya/concordia/internal/ids"
	"github.com/talgya/concordia/internal/modifiers"
)

// ProvinceState is the mutable per-tick state of one province. Its static
// definition (terrain, centroid, adjacency) lives in gamedata.ProvinceDef.
// See design doc Section 3's entity table.
type ProvinceState struct {
	ID ids.ProvinceID

	Owner      *ids.Tag // nil only while uncolonised
	Controller *ids.Tag // == Owner unless occupied in a war

	BaseTax        fixedpoint.Mod32
	BaseProduction fixedpoint.Mod32
	BaseManpower   fixedpoint.Mod32
	Autonomy       fixedpoint.Mod32 // 0..1, scaled

	Religion  uint16
	Culture   uint16
	TradeGood uint16
	TradeNode ids.TradeNodeID

	FortLevel       uint8 // 0..8
	CenterOfTrade   uint8 // 0..3
	Buildings       map[uint16]bool
	Development     fixedpoint.Mod32 // base_tax+base_production+base_manpower

	Modifiers *modifiers.Accumulator

	OccupiedSince *calendar.Date // set when Controller != Owner
}

// Clone deep-copies the mutable sub-structures a ProvinceState owns so
// that cloning a PMap entry never aliases a sibling snapshot's map/pointer
// fields.
func (p *ProvinceState) Clone() *ProvinceState {
	cp := *p
	if p.Owner != nil {
		o := *p.Owner
		cp.Owner = &o
	}
	if p.Controller != nil {
		c := *p.Controller
		cp.Controller = &c
	}
	if p.Buildings != nil {
		cp.Buildings = make(map[uint16]bool, len(p.Buildings))
		for k, v := range p.Buildings {
			cp.Buildings[k] = v
		}
	}
	if p.Modifiers != nil {
		cp.Modifiers = p.Modifiers.Clone()
	}
	if p.OccupiedSince != nil {
		d := *p.OccupiedSince
		cp.OccupiedSince = &d
	}
	return &cp
}

// IsOccupied reports whether the province is controlled by someone other
// than its owner.
func (p *ProvinceState) IsOccupied() bool {
	if p.Owner == nil || p.Controller == nil {
		return false
	}
	return *p.Owner != *p.Controller
}

// CountryState is the mutable per-tick state of one country. See design
// doc Section 3's entity table for the bounded-value invariants.
type CountryState struct {
	Tag ids.Tag
	Alive bool

	Treasury fixedpoint.Fixed
	Manpower fixedpoint.Fixed
	MaxManpower fixedpoint.Fixed

	Prestige      fixedpoint.Bounded // -100..100
	Stability     fixedpoint.Bounded // -3..3
	ArmyTradition fixedpoint.Bounded // 0..100
	NavyTradition fixedpoint.Bounded // 0..100
	Legitimacy    fixedpoint.Bounded // 0..100

	Religion uint16
	Culture  uint16

	Government string

	TechADM uint8 // 0..32
	TechDIP uint8
	TechMIL uint8

	ManaADM uint16 // capped 999
	ManaDIP uint16
	ManaMIL uint16

	MerchantsAvailable uint8
	MerchantsMax       uint8
	HomeTradeNode      ids.TradeNodeID

	// AggressiveExpansion maps a target tag -> AE accrued against it.
	AggressiveExpansion map[ids.Tag]fixedpoint.Fixed

	EmbargoedBy []ids.Tag

	ForceLimitLand uint32
	ForceLimitNaval uint32

	ProvinceCount int // cached count, kept in sync by the orchestrator

	Modifiers *modifiers.Accumulator

	LastCommandErrorCount map[ids.Tag]int // diagnostics: per-issuing-country failed-command counters (keyed by self for simplicity of one counter per country)
}

func (c *CountryState) Clone() *CountryState {
	cp := *c
	if c.AggressiveExpansion != nil {
		cp.AggressiveExpansion = make(map[ids.Tag]fixedpoint.Fixed, len(c.AggressiveExpansion))
		for k, v := range c.AggressiveExpansion {
			cp.AggressiveExpansion[k] = v
		}
	}
	if c.EmbargoedBy != nil {
		cp.EmbargoedBy = append([]ids.Tag(nil), c.EmbargoedBy...)
	}
	if c.Modifiers != nil {
		cp.Modifiers = c.Modifiers.Clone()
	}
	if c.LastCommandErrorCount != nil {
		cp.LastCommandErrorCount = make(map[ids.Tag]int, len(c.LastCommandErrorCount))
		for k, v := range c.LastCommandErrorCount {
			cp.LastCommandErrorCount[k] = v
		}
	}
	return &cp
}

// Regiment is one unit of land strength within an Army.
type Regiment struct {
	ID       ids.RegimentID
	Kind     RegimentKind
	Strength fixedpoint.Mod32 // 0..max
	MaxStrength fixedpoint.Mod32
	Morale   fixedpoint.Mod32
}

type RegimentKind uint8

const (
	RegimentInfantry RegimentKind = iota
	RegimentCavalry
	RegimentArtillery
)

// Leader pips: fire, shock, maneuver, siege. Zero value means "no leader".
type Leader struct {
	Present  bool
	Fire     int8
	Shock    int8
	Maneuver int8
	Siege    int8
}

// MovementState tracks in-flight pathfinding progress for an Army/Fleet.
type MovementState struct {
	Active   bool
	Progress fixedpoint.Mod32 // accumulated progress toward the next hop
	Required fixedpoint.Mod32 // cost of the current hop
	Path     []ids.ProvinceID // remaining hops, path[0] is the next destination
}

// Army is a land stack. See design doc Section 3's entity table.
type Army struct {
	ID       ids.ArmyID
	Owner    ids.Tag
	Location ids.ProvinceID

	Regiments []Regiment
	Leader    Leader

	Movement MovementState

	EmbarkedOn *ids.FleetID
	InBattle   *ids.BattleID
	Besieging  *ids.SiegeID
}

func (a *Army) Clone() *Army {
	cp := *a
	cp.Regiments = append([]Regiment(nil), a.Regiments...)
	cp.Movement.Path = append([]ids.ProvinceID(nil), a.Movement.Path...)
	if a.EmbarkedOn != nil {
		v := *a.EmbarkedOn
		cp.EmbarkedOn = &v
	}
	if a.InBattle != nil {
		v := *a.InBattle
		cp.InBattle = &v
	}
	if a.Besieging != nil {
		v := *a.Besieging
		cp.Besieging = &v
	}
	return &cp
}

// TotalStrength sums all regiment strengths.
func (a *Army) TotalStrength() fixedpoint.Mod32 {
	var total fixedpoint.Mod32
	for _, r := range a.Regiments {
		total = total.Add(r.Strength)
	}
	return total
}

func (a *Army) IsEmpty() bool {
	for _, r := range a.Regiments {
		if r.Strength > 0 {
			return false
		}
	}
	return true
}

// ShipKind's base hull values, per design doc Section 4.7.
type ShipKind uint8

const (
	ShipHeavy ShipKind = iota
	ShipLight
	ShipGalley
	ShipTransport
)

func (k ShipKind) BaseHull() fixedpoint.Mod32 {
	switch k {
	case ShipHeavy:
		return fixedpoint.M32FromInt(100)
	case ShipLight:
		return fixedpoint.M32FromInt(30)
	case ShipGalley:
		return fixedpoint.M32FromInt(50)
	case ShipTransport:
		return fixedpoint.M32FromInt(30)
	default:
		return fixedpoint.M32FromInt(30)
	}
}

type Ship struct {
	ID          ids.ShipID
	Kind        ShipKind
	Durability  fixedpoint.Mod32 // 0..BaseHull
}

// Fleet is a naval stack. See design doc Section 3's entity table.
type Fleet struct {
	ID       ids.FleetID
	Owner    ids.Tag
	Location ids.ProvinceID // a sea-zone "province" id

	Ships  []Ship
	Leader Leader

	Movement MovementState

	CarryingArmies []ids.ArmyID
	InBattle       *ids.BattleID
}

func (f *Fleet) Clone() *Fleet {
	cp := *f
	cp.Ships = append([]Ship(nil), f.Ships...)
	cp.Movement.Path = append([]ids.ProvinceID(nil), f.Movement.Path...)
	cp.CarryingArmies = append([]ids.ArmyID(nil), f.CarryingArmies...)
	if f.InBattle != nil {
		v := *f.InBattle
		cp.InBattle = &v
	}
	return &cp
}

func (f *Fleet) IsEmpty() bool { return len(f.Ships) == 0 }

// BattlePhase alternates Fire/Shock every 3 days (design doc Section 4.4).
type BattlePhase uint8

const (
	PhaseFire BattlePhase = iota
	PhaseShock
)

func (p BattlePhase) Flip() BattlePhase {
	if p == PhaseFire {
		return PhaseShock
	}
	return PhaseFire
}

// Battle is an active land engagement.
type Battle struct {
	ID              ids.BattleID
	Province        ids.ProvinceID
	AttackerArmies  []ids.ArmyID
	DefenderArmies  []ids.ArmyID
	Phase           BattlePhase
	PhaseDay        uint8 // 0..3
	AttackerOrigin  ids.ProvinceID // for river-crossing penalty
	IsNaval         bool
}

func (b *Battle) Clone() *Battle {
	cp := *b
	cp.AttackerArmies = append([]ids.ArmyID(nil), b.AttackerArmies...)
	cp.DefenderArmies = append([]ids.ArmyID(nil), b.DefenderArmies...)
	return &cp
}

// Siege is an active siege of a fortified, hostile-controlled province.
type Siege struct {
	ID               ids.SiegeID
	Province         ids.ProvinceID
	Attacker         ids.Tag
	BesiegingArmies  []ids.ArmyID
	FortLevel        uint8
	Garrison         fixedpoint.Mod32
	ProgressModifier int32 // 0..12
	DaysInPhase      int32 // 0..30
	Blockaded        bool
	Breached         bool
}

func (s *Siege) Clone() *Siege {
	cp := *s
	cp.BesiegingArmies = append([]ids.ArmyID(nil), s.BesiegingArmies...)
	return &cp
}

// PeaceTermKind enumerates the peace offers design doc Section 4.8 names.
type PeaceTermKind uint8

const (
	PeaceWhitePeace PeaceTermKind = iota
	PeaceTakeProvinces
	PeaceFullAnnexation
)

// War is an active conflict between disjoint attacker/defender sets.
type War struct {
	ID        ids.WarID
	Attackers map[ids.Tag]bool
	Defenders map[ids.Tag]bool
	StartDate calendar.Date
	CasusBelli string

	AttackerScore fixedpoint.Bounded // 0..100
	DefenderScore fixedpoint.Bounded

	AttackerBattlesWon fixedpoint.Bounded // capped 40 (score contribution)
	DefenderBattlesWon fixedpoint.Bounded

	AttackerWillingPeace bool // set at 5-year mark
	DefenderWillingPeace bool
}

func (w *War) Clone() *War {
	cp := *w
	cp.Attackers = cloneTagSet(w.Attackers)
	cp.Defenders = cloneTagSet(w.Defenders)
	return &cp
}

func cloneTagSet(m map[ids.Tag]bool) map[ids.Tag]bool {
	if m == nil {
		return nil
	}
	cp := make(map[ids.Tag]bool, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

// SortedTags returns a set's members sorted, for deterministic iteration.
func SortedTags(m map[ids.Tag]bool) []ids.Tag {
	out := make([]ids.Tag, 0, len(m))
	for t := range m {
		out = append(out, t)
	}
	sortTags(out)
	return out
}

func sortTags(s []ids.Tag) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j].Less(s[j-1]); j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

// RelationKey and DiplomacyState model bilateral relations, truces, pending
// offers, trust, and coalitions (design doc Section 3/4.8).
type Relation struct {
	Alliance bool
	RoyalMarriage bool
	Access   bool
	Rival    bool
}

type PendingOfferKind uint8

const (
	OfferAlliance PendingOfferKind = iota
	OfferRoyalMarriage
	OfferMilitaryAccess
	OfferCallToArms
	OfferPeace
)

type PendingOffer struct {
	Kind      PendingOfferKind
	From, To  ids.Tag
	WarID     ids.WarID     // for call-to-arms/peace offers
	PeaceTerm PeaceTermKind // for peace offers
	Issued    calendar.Date
}

type Coalition struct {
	Target  ids.Tag
	Members map[ids.Tag]bool
	Formed  calendar.Date
}

func (c *Coalition) Clone() *Coalition {
	cp := *c
	cp.Members = cloneTagSet(c.Members)
	return &cp
}

// DiplomacyState is the single global store of bilateral and multilateral
// diplomatic facts. Relation/Truce/Trust are all keyed by sorted TagPair so
// there is exactly one entry per unordered pair.
type DiplomacyState struct {
	Relations map[ids.TagPair]Relation
	Truces    map[ids.TagPair]calendar.Date // expiry date
	Trust     map[ids.TagPair]int8          // 0..100, bilateral
	Pending   []PendingOffer
	Coalitions map[ids.Tag]*Coalition // keyed by target tag
	LastDiplomaticAction map[ids.Tag]calendar.Date // per-country cooldown
}

func NewDiplomacyState() *DiplomacyState {
	return &DiplomacyState{
		Relations:            make(map[ids.TagPair]Relation),
		Truces:                make(map[ids.TagPair]calendar.Date),
		Trust:                 make(map[ids.TagPair]int8),
		Coalitions:            make(map[ids.Tag]*Coalition),
		LastDiplomaticAction:  make(map[ids.Tag]calendar.Date),
	}
}

func (d *DiplomacyState) Clone() *DiplomacyState {
	cp := &DiplomacyState{
		Relations:            make(map[ids.TagPair]Relation, len(d.Relations)),
		Truces:                make(map[ids.TagPair]calendar.Date, len(d.Truces)),
		Trust:                 make(map[ids.TagPair]int8, len(d.Trust)),
		Pending:               append([]PendingOffer(nil), d.Pending...),
		Coalitions:            make(map[ids.Tag]*Coalition, len(d.Coalitions)),
		LastDiplomaticAction:  make(map[ids.Tag]calendar.Date, len(d.LastDiplomaticAction)),
	}
	for k, v := range d.Relations {
		cp.Relations[k] = v
	}
	for k, v := range d.Truces {
		cp.Truces[k] = v
	}
	for k, v := range d.Trust {
		cp.Trust[k] = v
	}
	for k, v := range d.Coalitions {
		cp.Coalitions[k] = v.Clone()
	}
	for k, v := range d.LastDiplomaticAction {
		cp.LastDiplomaticAction[k] = v
	}
	return cp
}

// HasActiveTruce reports whether a and b are bound by a truce that has not
// yet expired as of now.
func (d *DiplomacyState) HasActiveTruce(a, b ids.Tag, now calendar.Date) bool {
	expiry, ok := d.Truces[ids.MakeTagPair(a, b)]
	if !ok {
		return false
	}
	return expiry.After(now) || expiry == now
}

// TradeNodeState is the mutable per-tick state of one trade node (design
// doc Section 3/4.10). Topology is static, in gamedata.TradeNodeDef.
type TradeNodeState struct {
	ID            ids.TradeNodeID
	LocalValue    fixedpoint.Fixed
	IncomingValue fixedpoint.Fixed
	TotalValue    fixedpoint.Fixed
	CountryPower  map[ids.Tag]fixedpoint.Fixed
	TotalPower    fixedpoint.Fixed
	Merchants     map[ids.Tag]MerchantAssignment
	PrivateerPower fixedpoint.Fixed
	UpstreamPower fixedpoint.Fixed
}

type MerchantMode uint8

const (
	MerchantCollect MerchantMode = iota
	MerchantSteer
)

type MerchantAssignment struct {
	Mode MerchantMode
	// SteerTo is the downstream node a steering merchant directs value
	// toward; ignored in Collect mode.
	SteerTo ids.TradeNodeID
}

func (t *TradeNodeState) Clone() *TradeNodeState {
	cp := *t
	cp.CountryPower = make(map[ids.Tag]fixedpoint.Fixed, len(t.CountryPower))
	for k, v := range t.CountryPower {
		cp.CountryPower[k] = v
	}
	cp.Merchants = make(map[ids.Tag]MerchantAssignment, len(t.Merchants))
	for k, v := range t.Merchants {
		cp.Merchants[k] = v
	}
	return &cp
}

// ImperialBody models both HREState and CelestialEmpireState (design doc
// Section 3): the two named super-structures share the same shape (an
// elected/appointed leader, a reform ladder, a political-resource scalar,
// membership sets), so one struct with a Kind discriminator serves both
// without duplicating the invariant logic twice. See DESIGN.md for this
// resolution.
type ImperialBodyKind uint8

const (
	ImperialBodyHRE ImperialBodyKind = iota
	ImperialBodyCelestialEmpire
)

type ImperialBody struct {
	Kind     ImperialBodyKind
	Emperor  ids.Tag
	Electors []ids.Tag // <= 7
	PassedReforms map[ids.ReformID]bool
	Authority fixedpoint.Bounded // imperial authority / mandate, 0..100
	Members  map[ids.Tag]bool
	FreeCities map[ids.ProvinceID]bool
}

func (h *ImperialBody) Clone() *ImperialBody {
	cp := *h
	cp.Electors = append([]ids.Tag(nil), h.Electors...)
	cp.PassedReforms = make(map[ids.ReformID]bool, len(h.PassedReforms))
	for k, v := range h.PassedReforms {
		cp.PassedReforms[k] = v
	}
	cp.Members = cloneTagSet(h.Members)
	cp.FreeCities = make(map[ids.ProvinceID]bool, len(h.FreeCities))
	for k, v := range h.FreeCities {
		cp.FreeCities[k] = v
	}
	return &cp
}
