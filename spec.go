package mapmorph

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Sentinel errors for spec lookup and resolution.
var (
	// ErrNoSpec is returned when the table has no entry for an adjacency.
	ErrNoSpec = errors.New("no transition spec")

	// ErrNotAdjacent is returned when two levels are not neighbours.
	ErrNotAdjacent = errors.New("levels are not adjacent")

	// ErrMalformedSpec is returned when a spec fails validation.
	ErrMalformedSpec = errors.New("malformed transition spec")

	// ErrNoSnapshot is returned when a transition has no from snapshot.
	ErrNoSnapshot = errors.New("no from snapshot")
)

// AnchorKind selects how an anchor descriptor turns into a point.
type AnchorKind string

const (
	AnchorNode       AnchorKind = "node"       // the node's own position
	AnchorDoorCenter AnchorKind = "doorCenter" // midpoint of the node's door gap
	AnchorCenter     AnchorKind = "center"     // viewport center
)

// Role names which index a descriptor refers to. FromIndex and ToIndex are
// forward-direction names: FromIndex is always the low-level index of the
// move and ToIndex the high-level one, whichever way the move plays.
type Role string

const (
	RoleFromIndex Role = "fromIndex"
	RoleToIndex   Role = "toIndex"
	RoleFixed     Role = "fixed"
)

// RotationMode selects how the spin target is resolved.
type RotationMode string

const (
	RotationNone      RotationMode = "none"
	RotationFixed     RotationMode = "fixed"     // Value radians
	RotationAlignPair RotationMode = "alignPair" // align the low scale pair with the high group-mini spoke
	RotationDoor      RotationMode = "door"      // align door normals, corrected by +/- pi
)

// ScaleMode selects how the low/high scale ratio is measured.
type ScaleMode string

const (
	ScaleNone         ScaleMode = "none"
	ScalePairToMini   ScaleMode = "pairToMini"
	ScaleDoorGapRatio ScaleMode = "doorGapRatio"
)

// PanStrategy selects the path of the anchor in world space.
type PanStrategy string

const (
	PanMirrored       PanStrategy = "mirrored"
	PanIdentityStart  PanStrategy = "identityStart"
	PanForwardInverse PanStrategy = "forwardInverse"
	PanZero           PanStrategy = "zero"
)

// PivotMode selects the world point spin is applied about.
type PivotMode string

const (
	PivotTo     PivotMode = "to"
	PivotFrom   PivotMode = "from"
	PivotCenter PivotMode = "center"
)

// MappingMode selects the entity correspondence rule.
type MappingMode string

const (
	MappingNone        MappingMode = "none"
	MappingSingleDoor  MappingMode = "singleDoor"
	MappingRingToMini4 MappingMode = "ringToMini4"
)

// DoorSide names the hallway wall a door sits on.
type DoorSide string

const (
	SideCenter DoorSide = "center"
	SideLeft   DoorSide = "left"
	SideRight  DoorSide = "right"
)

// AnchorSpec is an abstract anchor descriptor.
type AnchorSpec struct {
	Kind  AnchorKind `yaml:"kind" toml:"kind" json:"kind"`
	Role  Role       `yaml:"role,omitempty" toml:"role,omitempty" json:"role,omitempty"`
	Index int        `yaml:"index,omitempty" toml:"index,omitempty" json:"index,omitempty"`
}

// AnchorPair holds the forward anchors. From is evaluated on the low scene
// and To on the high scene.
type AnchorPair struct {
	From AnchorSpec `yaml:"from" toml:"from" json:"from"`
	To   AnchorSpec `yaml:"to" toml:"to" json:"to"`
}

// RotationSpec describes the spin target.
type RotationSpec struct {
	Mode  RotationMode `yaml:"mode" toml:"mode" json:"mode"`
	Value float64      `yaml:"value,omitempty" toml:"value,omitempty" json:"value,omitempty"`
	Side  DoorSide     `yaml:"side,omitempty" toml:"side,omitempty" json:"side,omitempty"`
}

// ScaleSpec describes the scale ratio. Pair and Mini also feed the
// alignPair rotation.
type ScaleSpec struct {
	Mode        ScaleMode `yaml:"mode" toml:"mode" json:"mode"`
	Pair        [2]int    `yaml:"pair,omitempty" toml:"pair,omitempty" json:"pair,omitempty"`
	Mini        int       `yaml:"mini,omitempty" toml:"mini,omitempty" json:"mini,omitempty"`
	DoorGapHalf float64   `yaml:"doorGapHalf,omitempty" toml:"doorGapHalf,omitempty" json:"doorGapHalf,omitempty"`
	Source      Role      `yaml:"source,omitempty" toml:"source,omitempty" json:"source,omitempty"`
}

// PanSpec names the pan strategy.
type PanSpec struct {
	ReverseStrategy PanStrategy `yaml:"reverseStrategy" toml:"reverseStrategy" json:"reverseStrategy"`
}

// RoleSpec names one mapped entity.
type RoleSpec struct {
	Role  Role `yaml:"role" toml:"role" json:"role"`
	Index int  `yaml:"index,omitempty" toml:"index,omitempty" json:"index,omitempty"`
}

// MappingRoles names the mapped entity on the low (From) and high (To)
// scene.
type MappingRoles struct {
	From RoleSpec `yaml:"from" toml:"from" json:"from"`
	To   RoleSpec `yaml:"to" toml:"to" json:"to"`
}

// MappingSpec describes the entity correspondence.
type MappingSpec struct {
	Mode  MappingMode  `yaml:"mode" toml:"mode" json:"mode"`
	Roles MappingRoles `yaml:"roles" toml:"roles" json:"roles"`
}

// Window is a fade window in forward progress, 0 <= Start <= End <= 1.
type Window struct {
	Start float64 `yaml:"start" toml:"start" json:"start"`
	End   float64 `yaml:"end" toml:"end" json:"end"`
}

func (w Window) valid() bool {
	return w.Start >= 0 && w.End <= 1 && w.Start <= w.End
}

// alpha returns the fade-in ramp of w at progress u: 0 before Start, 1 from
// End on. An empty window steps at Start.
func (w Window) alpha(u float64) float64 {
	switch {
	case u < w.Start:
		return 0
	case u >= w.End:
		return 1
	default:
		return (u - w.Start) / (w.End - w.Start)
	}
}

func (w Window) isZero() bool {
	return w.Start == 0 && w.End == 0
}

// FadeSpec holds the fade-out window of the low scene (From) and the
// fade-in window of the high scene (To).
type FadeSpec struct {
	From Window `yaml:"from" toml:"from" json:"from"`
	To   Window `yaml:"to" toml:"to" json:"to"`
}

// TransitionSpec is the declarative description of one adjacency, written
// for the forward (low to high) direction only.
type TransitionSpec struct {
	Anchors    AnchorPair   `yaml:"anchors" toml:"anchors" json:"anchors"`
	Rotation   RotationSpec `yaml:"rotation" toml:"rotation" json:"rotation"`
	Scale      ScaleSpec    `yaml:"scale" toml:"scale" json:"scale"`
	Pan        PanSpec      `yaml:"pan" toml:"pan" json:"pan"`
	Pivot      PivotMode    `yaml:"pivot" toml:"pivot" json:"pivot"`
	Mapping    MappingSpec  `yaml:"mapping" toml:"mapping" json:"mapping"`
	Fades      FadeSpec     `yaml:"fades" toml:"fades" json:"fades"`
	DurationMs int          `yaml:"durationMs" toml:"durationMs" json:"durationMs"`
}

// Validate reports the first invalid field, wrapped in ErrMalformedSpec.
// Empty enum values are accepted and mean the mode's default.
func (s *TransitionSpec) Validate() error {
	bad := func(field string, v any) error {
		return fmt.Errorf("%w: %s %q", ErrMalformedSpec, field, fmt.Sprint(v))
	}
	anchors := [2]AnchorSpec{s.Anchors.From, s.Anchors.To}
	for i, a := range anchors {
		name := [2]string{"anchors.from", "anchors.to"}[i]
		switch a.Kind {
		case "", AnchorNode, AnchorDoorCenter, AnchorCenter:
		default:
			return bad(name+".kind", a.Kind)
		}
		if !validRole(a.Role) {
			return bad(name+".role", a.Role)
		}
	}
	switch s.Rotation.Mode {
	case "", RotationNone, RotationFixed, RotationAlignPair, RotationDoor:
	default:
		return bad("rotation.mode", s.Rotation.Mode)
	}
	switch s.Rotation.Side {
	case "", SideCenter, SideLeft, SideRight:
	default:
		return bad("rotation.side", s.Rotation.Side)
	}
	switch s.Scale.Mode {
	case "", ScaleNone, ScalePairToMini:
	case ScaleDoorGapRatio:
		if s.Scale.DoorGapHalf <= 0 {
			return bad("scale.doorGapHalf", s.Scale.DoorGapHalf)
		}
	default:
		return bad("scale.mode", s.Scale.Mode)
	}
	if !validRole(s.Scale.Source) {
		return bad("scale.source", s.Scale.Source)
	}
	switch s.Pan.ReverseStrategy {
	case "", PanMirrored, PanIdentityStart, PanForwardInverse, PanZero:
	default:
		return bad("pan.reverseStrategy", s.Pan.ReverseStrategy)
	}
	switch s.Pivot {
	case "", PivotTo, PivotFrom, PivotCenter:
	default:
		return bad("pivot", s.Pivot)
	}
	switch s.Mapping.Mode {
	case "", MappingNone, MappingSingleDoor, MappingRingToMini4:
	default:
		return bad("mapping.mode", s.Mapping.Mode)
	}
	if !validRole(s.Mapping.Roles.From.Role) || !validRole(s.Mapping.Roles.To.Role) {
		return bad("mapping.roles", s.Mapping.Roles)
	}
	if w := s.Fades.From; !w.valid() {
		return bad("fades.from", w)
	}
	if w := s.Fades.To; !w.valid() {
		return bad("fades.to", w)
	}
	if s.DurationMs < 0 {
		return bad("durationMs", s.DurationMs)
	}
	return nil
}

func validRole(r Role) bool {
	switch r {
	case "", RoleFromIndex, RoleToIndex, RoleFixed:
		return true
	}
	return false
}

// Key returns the table key for an adjacency, always in forward order.
func Key(a, b Level) string {
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	return fmt.Sprintf("%d->%d", lo, hi)
}

// parseKey accepts "0->1" as well as "ring->cluster".
func parseKey(key string) (lo, hi Level, err error) {
	parts := strings.Split(key, "->")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: key %q", ErrMalformedSpec, key)
	}
	if lo, err = parseLevel(parts[0]); err != nil {
		return 0, 0, err
	}
	if hi, err = parseLevel(parts[1]); err != nil {
		return 0, 0, err
	}
	if hi-lo != 1 {
		return 0, 0, fmt.Errorf("%w: key %q", ErrNotAdjacent, key)
	}
	return lo, hi, nil
}

// parseLevel accepts a level id or name.
func parseLevel(s string) (Level, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if l := Level(n); l.Valid() {
			return l, nil
		}
		return 0, fmt.Errorf("%w: level %q", ErrMalformedSpec, s)
	}
	for l := LevelRing; l <= LevelHallway; l++ {
		if strings.EqualFold(l.String(), s) {
			return l, nil
		}
	}
	return 0, fmt.Errorf("%w: level %q", ErrMalformedSpec, s)
}
