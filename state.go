package mapmorph

// unknownLabel is shown for locations whose name has not been learned.
const unknownLabel = "???"

// Location is the per-location state exposed by the location graph.
type Location struct {
	Name       string
	Discovered bool
	Visited    bool
	NameKnown  bool
}

// Graph is the location-graph provider consumed by the engine.
type Graph interface {
	CurrentLevel() Level
	CurrentIndex() int
	NextIndex() int
	Count(level Level) int
	Location(level Level, index int) Location
}

// GameState is a read-only copy of the location graph taken at one instant.
// It is passed explicitly into Begin and Draw so the geometry never reads
// mutable globals.
type GameState struct {
	Level     Level
	Index     int
	Next      int
	Locations [LevelCount][]Location
}

// Capture copies the provider's current state.
func Capture(g Graph) GameState {
	s := GameState{
		Level: g.CurrentLevel(),
		Index: g.CurrentIndex(),
		Next:  g.NextIndex(),
	}
	for lv := LevelRing; lv <= LevelHallway; lv++ {
		n := g.Count(lv)
		if n <= 0 {
			continue
		}
		locs := make([]Location, n)
		for i := range locs {
			locs[i] = g.Location(lv, i)
		}
		s.Locations[lv] = locs
	}
	return s
}

// Count returns the number of locations on a level.
func (s GameState) Count(level Level) int {
	if !level.Valid() {
		return 0
	}
	return len(s.Locations[level])
}

// Node is one laid-out location of a scene.
type Node struct {
	Index      int
	Position   Vec2
	Radius     float64
	Kind       NodeKind
	Label      string
	Discovered bool
	NameKnown  bool
}

// Snapshot is the laid-out node graph for one level, immutable once
// captured.
type Snapshot struct {
	Level  Level
	Width  float64
	Height float64
	Nodes  []Node
	Meta   LayoutMeta
}

// NewSnapshot combines a layout with the location flags of state.
func NewSnapshot(layout *Layout, state GameState) *Snapshot {
	snap := &Snapshot{
		Level:  layout.Level,
		Width:  layout.Width,
		Height: layout.Height,
		Meta:   layout.Meta,
		Nodes:  make([]Node, layout.Count()),
	}
	var locs []Location
	if layout.Level.Valid() {
		locs = state.Locations[layout.Level]
	}
	for i := range snap.Nodes {
		n := Node{
			Index:    i,
			Position: layout.Positions[i],
			Radius:   layout.Radii[i],
			Kind:     layout.Kinds[i],
			Label:    unknownLabel,
		}
		if i < len(locs) {
			n.Discovered = locs[i].Discovered
			n.NameKnown = locs[i].NameKnown
			if n.NameKnown {
				n.Label = locs[i].Name
			}
		}
		snap.Nodes[i] = n
	}
	return snap
}

// Node returns the node at index i.
func (s *Snapshot) Node(i int) (Node, bool) {
	if s == nil || i < 0 || i >= len(s.Nodes) {
		return Node{}, false
	}
	return s.Nodes[i], true
}

// ViewportCenter returns the center of the snapshot's viewport.
func (s *Snapshot) ViewportCenter() Vec2 {
	return Vec2{s.Width / 2, s.Height / 2}
}

// Mini returns mini k of cluster group i.
func (s *Snapshot) Mini(group, k int) (Vec2, bool) {
	if s == nil || group < 0 || group >= len(s.Meta.Minis) {
		return Vec2{}, false
	}
	minis := s.Meta.Minis[group]
	if k < 0 || k >= len(minis) {
		return Vec2{}, false
	}
	return minis[k], true
}
