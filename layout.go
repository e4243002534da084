package mapmorph

import "math"

// Layout proportions. All distances are derived from the viewport so two
// builds with the same inputs agree exactly.
const (
	headerFrac        = 0.12 // share of the height reserved for labels and icons
	ringRadiusFrac    = 0.35 // ring radius relative to the usable square
	leaderRadiusFrac  = 0.16 // leader radius relative to the ring radius
	satRadiusFrac     = 0.09 // satellite radius relative to the ring radius
	miniDistanceFrac  = 2.2  // group-to-mini distance relative to satellite radius
	miniNodeFrac      = 0.35 // mini radius relative to satellite radius
	hallHalfWidthFrac = 0.18
	hallTopFrac       = 0.08
	hallBottomFrac    = 0.06
	hallGapFrac       = 0.16

	// MaxMini is the number of mini-satellites drawn around each cluster group.
	MaxMini = 4
)

// LayoutMeta carries the level-wide geometry the resolver needs beyond
// plain node positions.
type LayoutMeta struct {
	// Center is the ring center (ring and cluster levels).
	Center Vec2
	// Radius is the ring radius (ring and cluster levels).
	Radius float64
	// HeaderHeight is the band at the top reserved for labels.
	HeaderHeight float64

	LeaderRadius    float64
	SatelliteRadius float64

	// MiniRadius is the distance from a cluster group to its minis.
	MiniRadius float64
	// MiniNodeRadius is the drawn radius of a mini.
	MiniNodeRadius float64
	// Minis holds the mini positions per node index. Nil for the leader and
	// for levels other than cluster.
	Minis [][]Vec2

	// Walls is the hallway interior: X/X+Width are the side walls, Y the top
	// wall and Y+Height the bottom wall.
	Walls Rect
	// GapWidth is the width of the doorway gap in the hallway top wall.
	GapWidth float64
}

// Layout is the laid-out node geometry for one level. Layouts returned by
// LayoutCache are shared and MUST NOT be mutated.
type Layout struct {
	Level     Level
	Width     float64
	Height    float64
	Positions []Vec2
	Radii     []float64
	Kinds     []NodeKind
	Meta      LayoutMeta
}

// Count returns the number of nodes in the layout.
func (l *Layout) Count() int {
	return len(l.Positions)
}

// BuildLayout computes node positions for a level. It is a pure function of
// its inputs.
func BuildLayout(level Level, width, height float64, count int) *Layout {
	l := &Layout{Level: level, Width: width, Height: height}
	if count < 1 || width <= 0 || height <= 0 {
		return l
	}
	l.Positions = make([]Vec2, count)
	l.Radii = make([]float64, count)
	l.Kinds = make([]NodeKind, count)
	l.Meta.HeaderHeight = headerFrac * height

	switch level {
	case LevelHallway:
		buildHallway(l, count)
	default:
		buildRing(l, count)
		if level == LevelCluster {
			buildMinis(l, count)
		}
	}
	return l
}

// buildRing places the leader at the center and satellites evenly on a
// circle, starting at the top and proceeding clockwise.
func buildRing(l *Layout, count int) {
	header := l.Meta.HeaderHeight
	usable := math.Min(l.Width, l.Height-header)
	center := Vec2{l.Width / 2, header + (l.Height-header)/2}
	radius := ringRadiusFrac * usable

	m := &l.Meta
	m.Center = center
	m.Radius = radius
	m.LeaderRadius = leaderRadiusFrac * radius
	m.SatelliteRadius = satRadiusFrac * radius

	l.Positions[0] = center
	l.Radii[0] = m.LeaderRadius
	l.Kinds[0] = KindLeader

	sats := count - 1
	for i := 1; i < count; i++ {
		theta := ringAngle(i, sats)
		l.Positions[i] = center.Add(Vec2{math.Cos(theta), math.Sin(theta)}.Mul(radius))
		l.Radii[i] = m.SatelliteRadius
		l.Kinds[i] = KindSatellite
	}
}

// ringAngle returns the angle of satellite i (1-based) among n satellites.
func ringAngle(i, n int) float64 {
	return -math.Pi/2 + 2*math.Pi*float64(i-1)/float64(n)
}

// buildMinis places MaxMini minis around every cluster group, rotated a
// quarter turn off the radial direction so no mini overlaps the spoke.
func buildMinis(l *Layout, count int) {
	m := &l.Meta
	m.MiniRadius = miniDistanceFrac * m.SatelliteRadius
	m.MiniNodeRadius = miniNodeFrac * m.SatelliteRadius
	m.Minis = make([][]Vec2, count)
	for i := 1; i < count; i++ {
		g := l.Positions[i]
		base := g.Sub(m.Center).Angle()
		minis := make([]Vec2, MaxMini)
		for k := range minis {
			theta := base + math.Pi/4 + float64(k)*math.Pi/2
			minis[k] = g.Add(Vec2{math.Cos(theta), math.Sin(theta)}.Mul(m.MiniRadius))
		}
		m.Minis[i] = minis
	}
}

// buildHallway places the doorway at the top wall gap and rooms alternating
// left and right down the walls.
func buildHallway(l *Layout, count int) {
	m := &l.Meta
	halfW := hallHalfWidthFrac * l.Width
	top := m.HeaderHeight + hallTopFrac*l.Height
	bottom := l.Height - hallBottomFrac*l.Height
	m.Walls = Rect{X: l.Width/2 - halfW, Y: top, Width: 2 * halfW, Height: bottom - top}
	m.GapWidth = hallGapFrac * l.Width
	m.Center = Vec2{l.Width / 2, (top + bottom) / 2}

	l.Positions[0] = Vec2{l.Width / 2, top}
	l.Radii[0] = 0.35 * m.GapWidth
	l.Kinds[0] = KindDoorway
	m.LeaderRadius = l.Radii[0]

	rooms := count - 1
	if rooms == 0 {
		return
	}
	rows := (rooms + 1) / 2
	spacing := (bottom - top) / float64(rows+1)
	r := math.Min(0.3*spacing, 0.25*halfW)
	m.SatelliteRadius = r
	for i := 1; i < count; i++ {
		row := (i - 1) / 2
		x := m.Walls.X
		if i%2 == 0 {
			x = m.Walls.X + m.Walls.Width
		}
		l.Positions[i] = Vec2{x, top + spacing*float64(row+1)}
		l.Radii[i] = r
		l.Kinds[i] = KindSatellite
	}
}

type layoutKey struct {
	level  Level
	width  float64
	height float64
	count  int
}

// LayoutCache memoizes BuildLayout by (level, width, height, count).
type LayoutCache struct {
	entries map[layoutKey]*Layout
	hits    int
	misses  int
}

// NewLayoutCache creates an empty cache.
func NewLayoutCache() *LayoutCache {
	return &LayoutCache{entries: make(map[layoutKey]*Layout)}
}

// Get returns the cached layout, building it on a miss. A miss caused by a
// count change evicts the stale entry for the same level and size.
func (c *LayoutCache) Get(level Level, width, height float64, count int) *Layout {
	key := layoutKey{level, width, height, count}
	if l, ok := c.entries[key]; ok {
		c.hits++
		return l
	}
	c.misses++
	for k := range c.entries {
		if k.level == level && k.width == width && k.height == height {
			delete(c.entries, k)
		}
	}
	l := BuildLayout(level, width, height, count)
	c.entries[key] = l
	return l
}

// Resize drops every entry built for a different viewport size.
func (c *LayoutCache) Resize(width, height float64) {
	for k := range c.entries {
		if k.width != width || k.height != height {
			delete(c.entries, k)
		}
	}
}

// Len returns the number of cached layouts.
func (c *LayoutCache) Len() int {
	return len(c.entries)
}

// Stats returns the hit and miss counters.
func (c *LayoutCache) Stats() (hits, misses int) {
	return c.hits, c.misses
}
