// Package gamedata defines the immutable, load-once static tables that the
// simulation kernel consumes: provinces and their adjacency graph, trade
// node topology, religions/cultures/trade-goods, buildings, idea groups,
// and terrain costs/defines. The text-format parser that produces a
// GameData value from on-disk game files is an external collaborator (see
// design doc Section 6) and is out of scope here; this package exposes the
// bundle's shape plus an in-memory constructor used by tests and callers
// that already have parsed data in hand.
//
// Adjacency graphs are kept as slice-of-slices plus auxiliary side tables
// (river flags, strait through-nodes) rather than a pointer graph — no
// node owns its neighbours, per design doc Section 9 ("cyclic graphs").
package gamedata

import "github.com/talgya/concordia/internal/ids"

// Terrain enumerates province terrain types affecting combat and movement.
type Terrain uint8

const (
	TerrainPlains Terrain = iota
	TerrainForest
	TerrainHills
	TerrainMountain
	TerrainDesert
	TerrainMarsh
	TerrainJungle
	TerrainArctic
)

// Centroid is a province's precomputed planar position, stored in
// fixed-point (Q16.16-style: value in world units x 65536) so the A*
// heuristic never touches a hardware float. See centroid.go for the
// distance function.
type Centroid struct {
	X, Y int64
}

// EdgeKind distinguishes ordinary land edges from river-crossing and
// sea-strait edges, each of which carries different movement/combat rules.
type EdgeKind uint8

const (
	EdgeLand EdgeKind = iota
	EdgeRiver
	EdgeSea
)

// Adjacency is one directed edge out of a province (edges are stored
// symmetrically: if A is adjacent to B, both A's and B's slices list the
// other).
type Adjacency struct {
	To       ids.ProvinceID
	Kind     EdgeKind
	BaseCost int32 // fixed-point movement cost (scaled by fixedpoint.Scale), base 10
	// ThroughSeaZone is set on a land-adjacency edge that cannot be used for
	// land movement while an enemy fleet blockades it during wartime — the
	// spec's "strait" rule. Zero means "not a strait edge".
	ThroughSeaZone ids.ProvinceID
}

// ProvinceDef is the static, load-time definition of a province. Its
// mutable simulation state lives in worldstate.ProvinceState instead.
type ProvinceDef struct {
	ID          ids.ProvinceID
	Name        string
	Centroid    Centroid
	Coastal     bool
	AdjacentSea []ids.ProvinceID // sea zones touching a coastal province
	TradeNode   ids.TradeNodeID
	BaseTerrain Terrain
}

// TradeNodeDef is the static definition of one node in the trade DAG.
type TradeNodeDef struct {
	ID       ids.TradeNodeID
	Name     string
	Outgoing []ids.TradeNodeID // edges forwarding value downstream
	Members  []ids.ProvinceID
}

// Religion, Culture, Good are simple interned catalog entries.
type Religion struct {
	ID   uint16
	Name string
}

type Culture struct {
	ID   uint16
	Name string
}

type TradeGood struct {
	ID       uint16
	Name     string
	BasePrice int64 // fixed-point price, scaled by fixedpoint.Scale
}

type Building struct {
	ID   uint16
	Name string
}

type IdeaGroup struct {
	ID   uint16
	Name string
}

// Defines holds tunable simulation constants (the EU-style "defines"
// table): base movement speed, base damage, supply coefficient, etc.
type Defines struct {
	BaseMovementSpeed int32 // progress gained per day, fixed-point scaled
	BaseLandDamage    int64
	BaseNavalDamage   int64
	SupplyPerDev      int64 // regiments of supply per development point, fixed-point scaled
	MaxForts          int32
}

// GameData is the immutable bundle handed into every kernel entry point.
// It must never be mutated after construction; sharing one *GameData
// across goroutines is always safe.
type GameData struct {
	Provinces  map[ids.ProvinceID]*ProvinceDef
	Adjacency  map[ids.ProvinceID][]Adjacency
	TradeNodes map[ids.TradeNodeID]*TradeNodeDef
	TradeOrder []ids.TradeNodeID // topological order, computed once at load

	Religions  map[uint16]Religion
	Cultures   map[uint16]Culture
	Goods      map[uint16]TradeGood
	Buildings  map[uint16]Building
	IdeaGroups map[uint16]IdeaGroup

	Defines Defines
}

// New builds a GameData bundle from already-parsed tables, computes the
// trade topological order, and validates acyclicity (design doc Section
// 4.10: "load fails if cycles exist"). Returns an error rather than
// panicking so the (external) loader can report a clean data-integrity
// failure.
func New(
	provinces map[ids.ProvinceID]*ProvinceDef,
	adjacency map[ids.ProvinceID][]Adjacency,
	tradeNodes map[ids.TradeNodeID]*TradeNodeDef,
	religions map[uint16]Religion,
	cultures map[uint16]Culture,
	goods map[uint16]TradeGood,
	buildings map[uint16]Building,
	ideaGroups map[uint16]IdeaGroup,
	defines Defines,
) (*GameData, error) {
	order, err := topologicalOrder(tradeNodes)
	if err != nil {
		return nil, err
	}
	return &GameData{
		Provinces:  provinces,
		Adjacency:  adjacency,
		TradeNodes: tradeNodes,
		TradeOrder: order,
		Religions:  religions,
		Cultures:   cultures,
		Goods:      goods,
		Buildings:  buildings,
		IdeaGroups: ideaGroups,
		Defines:    defines,
	}, nil
}

// NeighboursOf returns the raw adjacency list for a province (possibly
// nil/empty for an isolated province).
func (g *GameData) NeighboursOf(p ids.ProvinceID) []Adjacency {
	return g.Adjacency[p]
}
