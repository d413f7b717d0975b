// Package worldstate holds the mutable, per-tick simulation snapshot and
// the persistent (structurally-shared) containers it is built from. See
// design doc Section 3 (persistent containers) and Section 4.2 (world-state
// snapshot).
//
// PMap is the generic persistent map every large keyed collection in
// WorldState (provinces, armies, fleets, countries, wars, ...) is stored
// in. It wraps github.com/google/btree's generic BTreeG, whose Clone() is
// O(1) amortised copy-on-write — the idiomatic Go analogue of the HAMT the
// spec describes, and already present in the retrieval pack's
// erigon dependency graph.
package worldstate

import (
	"cmp"

	"github.com/google/btree"
)

const btreeDegree = 32

// PMap is a structurally-shared ordered map from a comparable key type K
// to a value type V, ordered by an explicit Less function supplied at
// construction (K is not required to satisfy cmp.Ordered, since Tag — a
// [4]byte array — does not). Set and Delete write into the receiver's tree
// in place, so every PMap value copied from it without Clone sees the
// change; Clone is O(1) and gives a snapshot that later writes on either
// side do not affect.
type PMap[K comparable, V any] struct {
	tree *btree.BTreeG[entry[K, V]]
	less func(a, b K) bool
}

type entry[K comparable, V any] struct {
	key K
	val V
}

// NewPMapOrdered constructs an empty persistent map whose key type already
// satisfies cmp.Ordered (the common case: every numeric ID type).
func NewPMapOrdered[K cmp.Ordered, V any]() PMap[K, V] {
	return NewPMap[K, V](func(a, b K) bool { return a < b })
}

// NewPMap constructs an empty persistent map using an explicit key
// ordering, for key types (like Tag) with no natural operator order.
func NewPMap[K comparable, V any](less func(a, b K) bool) PMap[K, V] {
	m := PMap[K, V]{less: less}
	m.tree = btree.NewG(btreeDegree, m.lessEntry)
	return m
}

func (m PMap[K, V]) lessEntry(a, b entry[K, V]) bool {
	return m.less(a.key, b.key)
}

// Clone returns a new PMap sharing all current nodes with the receiver;
// mutating the clone never affects the receiver and vice versa. This is
// the O(1)-amortised snapshot operation the kernel relies on for cheap
// per-tick WorldState cloning.
func (m PMap[K, V]) Clone() PMap[K, V] {
	if m.tree == nil {
		return m
	}
	return PMap[K, V]{tree: m.tree.Clone(), less: m.less}
}

// Get returns the value for key and whether it was present.
func (m PMap[K, V]) Get(key K) (V, bool) {
	var zero V
	if m.tree == nil {
		return zero, false
	}
	e, ok := m.tree.Get(entry[K, V]{key: key})
	return e.val, ok
}

// Set binds key to val (inserted or replaced) in the receiver's tree and
// returns the map; a map with no tree yet gets a fresh one.
func (m PMap[K, V]) Set(key K, val V) PMap[K, V] {
	if m.tree == nil {
		m = NewPMap[K, V](m.less)
	}
	m.tree.ReplaceOrInsert(entry[K, V]{key: key, val: val})
	return m
}

// Delete removes key from the receiver's tree (a no-op if absent) and
// returns the map.
func (m PMap[K, V]) Delete(key K) PMap[K, V] {
	if m.tree == nil {
		return m
	}
	m.tree.Delete(entry[K, V]{key: key})
	return m
}

// Len reports the number of entries.
func (m PMap[K, V]) Len() int {
	if m.tree == nil {
		return 0
	}
	return m.tree.Len()
}

// Ascend visits every entry in ascending key order, stopping early if fn
// returns false. This is the canonical, insertion-order-independent
// iteration the checksum and the monthly sub-systems rely on.
func (m PMap[K, V]) Ascend(fn func(key K, val V) bool) {
	if m.tree == nil {
		return
	}
	m.tree.Ascend(func(e entry[K, V]) bool {
		return fn(e.key, e.val)
	})
}

// Keys returns all keys in ascending order.
func (m PMap[K, V]) Keys() []K {
	out := make([]K, 0, m.Len())
	m.Ascend(func(k K, _ V) bool {
		out = append(out, k)
		return true
	})
	return out
}

// Values returns all values in ascending-key order.
func (m PMap[K, V]) Values() []V {
	out := make([]V, 0, m.Len())
	m.Ascend(func(_ K, v V) bool {
		out = append(out, v)
		return true
	})
	return out
}
