package mapmorph

import (
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/log"
)

// defaultDoorGapHalf is the door half-width, relative to the node radius,
// used when a spec names a door anchor without a scale setting.
const defaultDoorGapHalf = 0.5

// Move describes one requested level change.
type Move struct {
	FromLevel Level
	ToLevel   Level
	FromIndex int
	ToIndex   int
	// Reverse marks a move whose levels and indices were given in forward
	// order (low first) but which plays from the high level to the low one.
	Reverse bool
}

// normalize returns the move with From/To in playing order.
func (m Move) normalize() Move {
	if m.Reverse && m.FromLevel < m.ToLevel {
		m.FromLevel, m.ToLevel = m.ToLevel, m.FromLevel
		m.FromIndex, m.ToIndex = m.ToIndex, m.FromIndex
	}
	m.Reverse = m.FromLevel > m.ToLevel
	return m
}

// Direction returns the playing direction of a normalized move.
func (m Move) Direction() Direction {
	if m.FromLevel > m.ToLevel {
		return Reverse
	}
	return Forward
}

// roleIndices holds the move's indices in low/high terms.
type roleIndices struct {
	low, high int
}

func (r roleIndices) index(role Role, fixed int, def Role) int {
	if role == "" {
		role = def
	}
	switch role {
	case RoleFromIndex:
		return r.low
	case RoleToIndex:
		return r.high
	default:
		return fixed
	}
}

// resolver carries the state of one Resolve call.
type resolver struct {
	spec   TransitionSpec
	low    *Snapshot
	high   *Snapshot
	roles  roleIndices
	logger *log.Logger
}

func (r *resolver) warn(msg string, keyvals ...any) {
	if r.logger != nil {
		r.logger.Warn(msg, keyvals...)
	}
}

// Resolve turns a forward-only spec into concrete parameters for one move.
// from is the snapshot of the level the move starts on and to the snapshot
// of the level it ends on. The direction is resolved once up front: from
// and to are mapped onto the low and high roles and every descriptor is
// evaluated against those, so the spec needs no per-direction variants.
//
// Missing nodes never fail a transition: anchors fall back to the viewport
// center and ratios to 1. Only structural problems return an error.
func Resolve(spec TransitionSpec, move Move, from, to *Snapshot, logger *log.Logger) (*Params, error) {
	move = move.normalize()
	key := Key(move.FromLevel, move.ToLevel)
	if !move.FromLevel.Valid() || !move.ToLevel.Valid() || absLevel(move.FromLevel-move.ToLevel) != 1 {
		return nil, fmt.Errorf("resolve %d->%d: %w", move.FromLevel, move.ToLevel, ErrNotAdjacent)
	}
	if from == nil || to == nil {
		return nil, fmt.Errorf("resolve %s: %w", key, ErrNoSnapshot)
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("resolve %s: %w", key, err)
	}

	dir := move.Direction()
	r := &resolver{spec: spec, low: from, high: to, logger: logger}
	r.roles = roleIndices{low: move.FromIndex, high: move.ToIndex}
	if dir == Reverse {
		r.low, r.high = to, from
		r.roles = roleIndices{low: move.ToIndex, high: move.FromIndex}
	}
	if r.low.Level != min(move.FromLevel, move.ToLevel) || r.high.Level != max(move.FromLevel, move.ToLevel) {
		return nil, fmt.Errorf("resolve %s: snapshot levels %s/%s: %w",
			key, r.low.Level, r.high.Level, ErrMalformedSpec)
	}

	p := &Params{
		Key:       key,
		Direction: dir,
		FromLevel: move.FromLevel,
		ToLevel:   move.ToLevel,
		Low:       r.low,
		High:      r.high,
		Duration:  time.Duration(spec.DurationMs) * time.Millisecond,
		Fades:     spec.Fades,
	}
	p.LowAnchor = r.anchor(spec.Anchors.From, r.low, RoleFromIndex)
	p.HighAnchor = r.anchor(spec.Anchors.To, r.high, RoleToIndex)
	p.Ratio = r.ratio()
	p.SpinTarget = r.spin()
	p.Pivot = r.pivot(p.LowAnchor, p.HighAnchor)
	p.Pan = r.panStrategy(p)

	if p.Fades.From.isZero() {
		p.Fades.From = Window{0, 1}
	}
	if p.Fades.To.isZero() {
		p.Fades.To = Window{0, 1}
	}
	p.mapping = r.planMapping(p.SpinTarget)
	return p, nil
}

func absLevel(l Level) Level {
	if l < 0 {
		return -l
	}
	return l
}

// anchor resolves an anchor descriptor against snap.
func (r *resolver) anchor(a AnchorSpec, snap *Snapshot, def Role) Vec2 {
	switch a.Kind {
	case AnchorCenter:
		return snap.ViewportCenter()
	case AnchorDoorCenter:
		idx := r.roles.index(a.Role, a.Index, def)
		g, ok := r.door(snap, idx)
		if !ok {
			r.warn("door anchor missing, using viewport center", "level", snap.Level, "index", idx)
			return snap.ViewportCenter()
		}
		return g.center
	default:
		idx := r.roles.index(a.Role, a.Index, def)
		n, ok := snap.Node(idx)
		if !ok {
			r.warn("anchor node missing, using viewport center", "level", snap.Level, "index", idx)
			return snap.ViewportCenter()
		}
		return n.Position
	}
}

// doorGap is a door opening: its midpoint, its width, and the unit normal
// pointing out of the room it belongs to.
type doorGap struct {
	center  Vec2
	width   float64
	outward Vec2
}

// door computes the gap rectangle of node idx. On ring and cluster levels
// the gap sits on the node's circle facing away from the leader; on the
// hallway, node 0 is the top-wall gap and rooms open onto their wall.
func (r *resolver) door(snap *Snapshot, idx int) (doorGap, bool) {
	n, ok := snap.Node(idx)
	if !ok {
		return doorGap{}, false
	}
	if snap.Level == LevelHallway {
		return hallwayDoor(snap, n, r.spec.Rotation.Side), true
	}
	half := r.spec.Scale.DoorGapHalf
	if half <= 0 {
		half = defaultDoorGapHalf
	}
	out := n.Position.Sub(snap.Meta.Center)
	if l := out.Len(); l > 1e-9 {
		out = out.Mul(1 / l)
	} else {
		out = Vec2{0, -1}
	}
	return doorGap{
		center:  n.Position.Add(out.Mul(n.Radius)),
		width:   2 * half * n.Radius,
		outward: out,
	}, true
}

func hallwayDoor(snap *Snapshot, n Node, side DoorSide) doorGap {
	if n.Index == 0 || side == SideCenter {
		w := snap.Meta.Walls
		return doorGap{
			center:  Vec2{w.X + w.Width/2, w.Y},
			width:   snap.Meta.GapWidth,
			outward: Vec2{0, -1},
		}
	}
	out := Vec2{-1, 0}
	if side == SideRight || (side == "" && n.Index%2 == 0) {
		out = Vec2{1, 0}
	}
	return doorGap{center: n.Position, width: 2 * n.Radius, outward: out}
}

// ratio measures low/high according to the scale mode.
func (r *resolver) ratio() float64 {
	s := r.spec.Scale
	var lowM, highM float64
	switch s.Mode {
	case ScalePairToMini:
		a, okA := r.low.Node(s.Pair[0])
		b, okB := r.low.Node(s.Pair[1])
		group := r.roles.index(s.Source, r.roles.high, RoleToIndex)
		g, okG := r.high.Node(group)
		mini, okM := r.high.Mini(group, s.Mini)
		if !okA || !okB || !okG || !okM {
			r.warn("scale pair missing, using ratio 1", "pair", s.Pair, "group", group, "mini", s.Mini)
			return 1
		}
		lowM = b.Position.Sub(a.Position).Len()
		highM = mini.Sub(g.Position).Len()
	case ScaleDoorGapRatio:
		src := r.roles.index(s.Source, r.roles.low, RoleFromIndex)
		lowGap, okL := r.door(r.low, src)
		dst := r.roles.index(r.spec.Anchors.To.Role, r.spec.Anchors.To.Index, RoleToIndex)
		highGap, okH := r.door(r.high, dst)
		if !okL || !okH {
			r.warn("door gap missing, using ratio 1", "from", src, "to", dst)
			return 1
		}
		lowM, highM = lowGap.width, highGap.width
	default:
		return 1
	}
	ratio := lowM / highM
	if !(ratio > 0) || math.IsInf(ratio, 0) {
		r.warn("degenerate scale ratio, using 1", "low", lowM, "high", highM)
		return 1
	}
	return ratio
}

// spin resolves the forward spin target.
func (r *resolver) spin() float64 {
	rot := r.spec.Rotation
	switch rot.Mode {
	case RotationFixed:
		return rot.Value
	case RotationAlignPair:
		s := r.spec.Scale
		a, okA := r.low.Node(s.Pair[0])
		b, okB := r.low.Node(s.Pair[1])
		group := r.roles.index(s.Source, r.roles.high, RoleToIndex)
		g, okG := r.high.Node(group)
		mini, okM := r.high.Mini(group, s.Mini)
		if !okA || !okB || !okG || !okM {
			r.warn("rotation pair missing, using no spin", "group", group)
			return 0
		}
		return normalizeAngle(mini.Sub(g.Position).Angle() - b.Position.Sub(a.Position).Angle())
	case RotationDoor:
		from := r.spec.Anchors.From
		to := r.spec.Anchors.To
		lowGap, okL := r.door(r.low, r.roles.index(from.Role, from.Index, RoleFromIndex))
		highGap, okH := r.door(r.high, r.roles.index(to.Role, to.Index, RoleToIndex))
		if !okL || !okH {
			r.warn("door normals missing, using no spin")
			return 0
		}
		return doorSpin(lowGap.outward, highGap.outward.Mul(-1))
	default:
		return 0
	}
}

// doorSpin aligns the high scene's inward door normal with the low scene's
// inward normal. Measured against the low outward normal the raw angle is
// off by half a turn, so it is corrected by +/- pi, whichever lands in
// (-pi, pi].
func doorSpin(lowOutward, highInward Vec2) float64 {
	raw := normalizeAngle(highInward.Angle() - lowOutward.Angle())
	if raw > 0 {
		return normalizeAngle(raw - math.Pi)
	}
	return normalizeAngle(raw + math.Pi)
}

func (r *resolver) pivot(low, high Vec2) Vec2 {
	switch r.spec.Pivot {
	case PivotFrom:
		return low
	case PivotCenter:
		return r.low.ViewportCenter()
	default:
		return high
	}
}

// panStrategy returns the strategy to use. Zero pan is only exact when both
// anchors coincide; otherwise it becomes identityStart.
func (r *resolver) panStrategy(p *Params) PanStrategy {
	s := r.spec.Pan.ReverseStrategy
	if s == "" {
		return PanMirrored
	}
	if s == PanZero {
		if p.LowAnchor.Sub(p.HighAnchor).Len() > 1e-9 {
			r.warn("zero pan with distinct anchors, using identityStart", "key", p.Key)
			return PanIdentityStart
		}
		p.Pivot = p.LowAnchor
	}
	return s
}
