package mapmorph

import (
	"math"
	"sort"
)

// Label sizing for overlay entities.
const (
	labelGap       = 6.0
	labelMinScale  = 0.5
	labelBaseScale = 1.0
	maxRingMembers = 4
)

// HideSet lists node indices the static drawing pass must skip because an
// overlay entity is drawing them.
type HideSet map[int]bool

// Has reports whether index i is hidden. A nil set hides nothing.
func (h HideSet) Has(i int) bool {
	return h[i]
}

// entityPair is one correspondence between a low-scene circle and a
// high-scene circle, both in their own local coordinates.
type entityPair struct {
	low, high             Vec2
	lowRadius, highRadius float64
	lowLabel, highLabel   string
	lowShade, highShade   Shade
	lead                  bool
	// grow marks a high circle with no low counterpart. It stays on its
	// high position and grows from zero radius.
	grow bool
}

// mappingPlan is the resolved correspondence of one transition.
type mappingPlan struct {
	mode     MappingMode
	pairs    []entityPair
	lowHide  HideSet
	highHide HideSet
}

// Label is an overlay label. Labels are always drawn upright.
type Label struct {
	Text      string
	Position  Vec2
	FontScale float64
	Alpha     float64
}

// Shade selects the palette entry an overlay circle is filled with.
type Shade uint8

const (
	ShadeSatellite Shade = iota
	ShadeLeader
	ShadeDoorway
	ShadeMini
	ShadeUndiscovered
)

// shadeOf returns the shade the static pass fills n with.
func shadeOf(n Node) Shade {
	if !n.Discovered {
		return ShadeUndiscovered
	}
	switch n.Kind {
	case KindLeader:
		return ShadeLeader
	case KindDoorway:
		return ShadeDoorway
	default:
		return ShadeSatellite
	}
}

// Entity is one morphing circle in world space.
type Entity struct {
	Position Vec2
	Radius   float64
	Lead     bool
	// From and To are the shades of the low and high circles. Blend is the
	// forward progress between them.
	From, To Shade
	Blend    float64
	// Labels holds the outgoing low label and the incoming high label.
	Labels [2]Label
}

// planMapping builds the correspondence for the spec's mapping mode.
func (r *resolver) planMapping(spin float64) mappingPlan {
	m := r.spec.Mapping
	switch m.Mode {
	case MappingSingleDoor:
		return r.planSingleDoor()
	case MappingRingToMini4:
		return r.planRingToMini(spin)
	default:
		return mappingPlan{mode: MappingNone}
	}
}

func (r *resolver) planSingleDoor() mappingPlan {
	roles := r.spec.Mapping.Roles
	li := r.roles.index(roles.From.Role, roles.From.Index, RoleFromIndex)
	hi := r.roles.index(roles.To.Role, roles.To.Index, RoleToIndex)
	ln, okL := r.low.Node(li)
	hn, okH := r.high.Node(hi)
	if !okL || !okH {
		r.warn("door mapping nodes missing, no overlay", "from", li, "to", hi)
		return mappingPlan{mode: MappingNone}
	}
	return mappingPlan{
		mode: MappingSingleDoor,
		pairs: []entityPair{{
			low: ln.Position, high: hn.Position,
			lowRadius: ln.Radius, highRadius: hn.Radius,
			lowLabel: ln.Label, highLabel: hn.Label,
			lowShade: shadeOf(ln), highShade: shadeOf(hn),
			lead: true,
		}},
		lowHide:  HideSet{li: true},
		highHide: HideSet{hi: true},
	}
}

// member is a non-leader circle of one side of a ringToMini4 mapping.
type member struct {
	index  int // node index, or -1 for a mini
	pos    Vec2
	radius float64
	label  string
	shade  Shade
	angle  float64
}

// planRingToMini pairs the low leader with the high group and the low
// satellites with the group's minis. Each side is sorted by angle around
// its own centroid, in the frame the two scenes share at the start of the
// forward move, and the two orders are matched by rank after the cyclic
// shift with the least angular error.
func (r *resolver) planRingToMini(spin float64) mappingPlan {
	roles := r.spec.Mapping.Roles
	li := r.roles.index(roles.From.Role, roles.From.Index, RoleFixed)
	gi := r.roles.index(roles.To.Role, roles.To.Index, RoleToIndex)
	lead, okL := r.low.Node(li)
	group, okG := r.high.Node(gi)
	if !okL || !okG {
		r.warn("ring mapping nodes missing, no overlay", "leader", li, "group", gi)
		return mappingPlan{mode: MappingNone}
	}

	var lows []member
	for _, n := range r.low.Nodes {
		if n.Index == li {
			continue
		}
		if len(lows) == maxRingMembers {
			break
		}
		lows = append(lows, member{index: n.Index, pos: n.Position, radius: n.Radius, label: n.Label, shade: shadeOf(n)})
	}
	var highs []member
	if gi < len(r.high.Meta.Minis) {
		for k, pos := range r.high.Meta.Minis[gi] {
			if k == maxRingMembers {
				break
			}
			highs = append(highs, member{index: -1, pos: pos, radius: r.high.Meta.MiniNodeRadius, shade: ShadeMini})
		}
	}

	sortByAngle(lows, lead.Position, 0)
	sortByAngle(highs, group.Position, spin)

	plan := mappingPlan{
		mode:     MappingRingToMini4,
		lowHide:  HideSet{li: true},
		highHide: HideSet{gi: true},
	}
	plan.pairs = append(plan.pairs, entityPair{
		low: lead.Position, high: group.Position,
		lowRadius: lead.Radius, highRadius: group.Radius,
		lowLabel: lead.Label, highLabel: group.Label,
		lowShade: shadeOf(lead), highShade: shadeOf(group),
		lead: true,
	})

	n := min(len(lows), len(highs))
	k := bestOffset(lows[:n], highs[:n])
	for i := 0; i < n; i++ {
		lo, hi := lows[i], highs[(i+k)%n]
		plan.pairs = append(plan.pairs, entityPair{
			low: lo.pos, high: hi.pos,
			lowRadius: lo.radius, highRadius: hi.radius,
			lowLabel: lo.label,
			lowShade: lo.shade, highShade: hi.shade,
		})
		plan.lowHide[lo.index] = true
	}
	// The group is hidden as a whole, so minis without a satellite are
	// drawn by the overlay too.
	for _, hi := range highs[n:] {
		plan.pairs = append(plan.pairs, entityPair{
			high: hi.pos, highRadius: hi.radius,
			lowShade: hi.shade, highShade: hi.shade,
			grow: true,
		})
	}
	return plan
}

// sortByAngle sorts members by angle around the centroid of leader and
// members. Angles are taken in the shared frame, which sees this side
// rotated by -spin, and wrapped into [0, 2*pi).
func sortByAngle(ms []member, leader Vec2, spin float64) {
	c := leader
	for _, m := range ms {
		c = c.Add(m.pos)
	}
	c = c.Mul(1 / float64(len(ms)+1))
	for i := range ms {
		a := math.Mod(ms[i].pos.Sub(c).Angle()-spin, 2*math.Pi)
		if a < 0 {
			a += 2 * math.Pi
		}
		ms[i].angle = a
	}
	sort.SliceStable(ms, func(i, j int) bool { return ms[i].angle < ms[j].angle })
}

// bestOffset returns the cyclic shift k minimising the angular error of
// pairing lows[i] with highs[(i+k)%n]. Rank pairing alone would break when
// one side's first member sits just below the 2*pi wrap and the other's
// just above zero.
func bestOffset(lows, highs []member) int {
	n := len(lows)
	best, bestErr := 0, math.Inf(1)
	for k := 0; k < n; k++ {
		var sum float64
		for i := 0; i < n; i++ {
			d := normalizeAngle(lows[i].angle - highs[(i+k)%n].angle)
			sum += d * d
		}
		if sum < bestErr-1e-12 {
			best, bestErr = k, sum
		}
	}
	return best
}

// Overlay returns the morphing entities at forward progress u. Each entity
// blends between its low circle placed by the low scene's transform and
// its high circle placed by the high scene's transform.
func (p *Params) Overlay(u float64) []Entity {
	if len(p.mapping.pairs) == 0 {
		return nil
	}
	low, high := p.transforms(u)
	out := make([]Entity, len(p.mapping.pairs))
	for i, pr := range p.mapping.pairs {
		if pr.grow {
			out[i] = Entity{
				Position: high.World(pr.high),
				Radius:   pr.highRadius * high.Scale * u,
				From:     pr.lowShade,
				To:       pr.highShade,
				Blend:    u,
			}
			continue
		}
		pos := Lerp(low.World(pr.low), high.World(pr.high), u)
		radius := pr.lowRadius*low.Scale + (pr.highRadius*high.Scale-pr.lowRadius*low.Scale)*u
		below := pos.Add(Vec2{0, radius + labelGap})
		e := Entity{Position: pos, Radius: radius, Lead: pr.lead, From: pr.lowShade, To: pr.highShade, Blend: u}
		if pr.lowLabel != "" {
			e.Labels[0] = Label{
				Text:      pr.lowLabel,
				Position:  below,
				FontScale: labelBaseScale + (labelMinScale-labelBaseScale)*u,
				Alpha:     1 - u,
			}
		}
		if pr.highLabel != "" {
			e.Labels[1] = Label{
				Text:      pr.highLabel,
				Position:  below,
				FontScale: labelMinScale + (labelBaseScale-labelMinScale)*u,
				Alpha:     u,
			}
		}
		out[i] = e
	}
	return out
}

// Hidden returns the hide sets of the from and to scenes for the playing
// direction.
func (p *Params) Hidden() (from, to HideSet) {
	if p.Direction == Reverse {
		return p.mapping.highHide, p.mapping.lowHide
	}
	return p.mapping.lowHide, p.mapping.highHide
}

// MappingMode returns the resolved correspondence mode.
func (p *Params) MappingMode() MappingMode {
	return p.mapping.mode
}
