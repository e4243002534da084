package mapmorph

import (
	"math"
	"time"

	"github.com/tanema/gween/ease"
)

// identityTransform is the identity affine matrix.
var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

// multiplyAffine multiplies two 2D affine matrices: result = parent * child.
//
//	Matrix layout: [a, b, c, d, tx, ty]
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
func multiplyAffine(p, c [6]float64) [6]float64 {
	return [6]float64{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// invertAffine computes the inverse of a 2D affine matrix.
// Returns the identity matrix if the matrix is singular (determinant ~ 0).
func invertAffine(m [6]float64) [6]float64 {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return identityTransform
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return [6]float64{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

func translateAffine(v Vec2) [6]float64 {
	return [6]float64{1, 0, 0, 1, v.X, v.Y}
}

func rotateAffine(theta float64) [6]float64 {
	sin, cos := math.Sincos(theta)
	return [6]float64{cos, sin, -sin, cos, 0, 0}
}

func scaleAffine(s float64) [6]float64 {
	return [6]float64{s, 0, 0, s, 0, 0}
}

// SceneTransform places one scene's local coordinates in world space:
//
//	world(p) = Pivot + Rot(Spin) * (Pan + Scale * Rot(PreRotation) * (p - Anchor))
type SceneTransform struct {
	Pivot       Vec2
	Spin        float64
	Pan         Vec2
	Scale       float64
	PreRotation float64
	Anchor      Vec2
}

// IdentitySceneTransform leaves local coordinates unchanged.
var IdentitySceneTransform = SceneTransform{Scale: 1}

// World maps a local point to world space.
func (st SceneTransform) World(p Vec2) Vec2 {
	local := p.Sub(st.Anchor).Rotate(st.PreRotation).Mul(st.Scale)
	return st.Pivot.Add(st.Pan.Add(local).Rotate(st.Spin))
}

// Rotation returns the total rotation a local direction undergoes.
func (st SceneTransform) Rotation() float64 {
	return st.Spin + st.PreRotation
}

// Matrix returns the transform as an affine matrix.
//
// Composition order:
//
//	Translate(Pivot) * Rotate(Spin) * Translate(Pan) * Scale * Rotate(PreRotation) * Translate(-Anchor)
func (st SceneTransform) Matrix() [6]float64 {
	m := translateAffine(st.Pivot)
	m = multiplyAffine(m, rotateAffine(st.Spin))
	m = multiplyAffine(m, translateAffine(st.Pan))
	m = multiplyAffine(m, scaleAffine(st.Scale))
	m = multiplyAffine(m, rotateAffine(st.PreRotation))
	return multiplyAffine(m, translateAffine(st.Anchor.Mul(-1)))
}

// Local converts a world-space point back to the scene's local space.
func (st SceneTransform) Local(w Vec2) Vec2 {
	x, y := transformPoint(invertAffine(st.Matrix()), w.X, w.Y)
	return Vec2{x, y}
}

// Direction is the tagged direction of a move.
type Direction uint8

const (
	Forward Direction = iota // low level to high level
	Reverse                  // high level to low level
)

func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}
	return "forward"
}

// Params is the concrete, direction-resolved geometry of one transition.
// The geometry is stored in forward terms; Frame maps it onto the from and
// to roles of the playing direction.
type Params struct {
	Key       string
	Direction Direction
	FromLevel Level
	ToLevel   Level

	// LowAnchor and HighAnchor are the anchors in their own scene's
	// coordinates.
	LowAnchor  Vec2
	HighAnchor Vec2
	// Ratio is the forward scale of the high scene at the start of the
	// forward move (low measure / high measure).
	Ratio float64
	// SpinTarget is the forward spin at the end of the forward move.
	SpinTarget float64
	Pivot      Vec2
	Pan        PanStrategy
	Fades      FadeSpec
	Duration   time.Duration

	Low  *Snapshot
	High *Snapshot

	mapping mappingPlan
}

// Frame is the sampled state of a transition at one instant.
type Frame struct {
	// T is the normalized time in [0, 1].
	T float64
	// Progress is the forward progress u: 0 shows the low scene at
	// identity, 1 the high scene.
	Progress float64

	From, To           SceneTransform
	FromAlpha, ToAlpha float64
}

// progress converts normalized time into forward progress. Reverse moves
// replay the forward curve backwards, so reverse(t) == forward(1-t).
func (p *Params) progress(t float64, fn ease.TweenFunc) float64 {
	if p.Direction == Reverse {
		return ease01(fn, 1-t)
	}
	return ease01(fn, t)
}

// Frame samples the transition at normalized time t.
func (p *Params) Frame(t float64, fn ease.TweenFunc) Frame {
	t = clamp01(t)
	u := p.progress(t, fn)
	low, high := p.transforms(u)
	lowAlpha := 1 - p.Fades.From.alpha(u)
	highAlpha := p.Fades.To.alpha(u)

	f := Frame{T: t, Progress: u}
	if p.Direction == Reverse {
		f.From, f.To = p.reexpress(high), p.reexpress(low)
		f.FromAlpha, f.ToAlpha = highAlpha, lowAlpha
	} else {
		f.From, f.To = low, high
		f.FromAlpha, f.ToAlpha = lowAlpha, highAlpha
	}
	return f
}

// reexpress rewrites a forward transform for reverse playback so the from
// scene starts with zero spin and no pre-rotation. World positions are
// unchanged.
func (p *Params) reexpress(st SceneTransform) SceneTransform {
	st.Spin -= p.SpinTarget
	st.PreRotation += p.SpinTarget
	st.Pan = st.Pan.Rotate(p.SpinTarget)
	return st
}

// LowScale returns the low scene's scale at forward progress u.
func (p *Params) LowScale(u float64) float64 {
	return math.Pow(p.Ratio, -u)
}

// HighScale returns the high scene's scale at forward progress u.
func (p *Params) HighScale(u float64) float64 {
	return math.Pow(p.Ratio, 1-u)
}

// transforms returns the forward low and high scene transforms at u.
func (p *Params) transforms(u float64) (low, high SceneTransform) {
	spin := u * p.SpinTarget
	pan := p.pan(u, spin)
	low = SceneTransform{
		Pivot:  p.Pivot,
		Spin:   spin,
		Pan:    pan,
		Scale:  p.LowScale(u),
		Anchor: p.LowAnchor,
	}
	high = SceneTransform{
		Pivot:       p.Pivot,
		Spin:        spin,
		Pan:         pan,
		Scale:       p.HighScale(u),
		PreRotation: -p.SpinTarget,
		Anchor:      p.HighAnchor,
	}
	return low, high
}

// pan returns the pan vector at u. Every strategy starts with the anchor at
// LowAnchor and ends with it at HighAnchor.
func (p *Params) pan(u, spin float64) Vec2 {
	switch p.Pan {
	case PanZero:
		return Vec2{}
	case PanIdentityStart:
		w := Lerp(p.LowAnchor, p.HighAnchor, u)
		return w.Sub(p.Pivot).Rotate(-spin)
	case PanForwardInverse:
		w := p.HighAnchor.Add(p.LowAnchor.Sub(p.HighAnchor).Mul(p.inverseScaleFraction(u)))
		return w.Sub(p.Pivot).Rotate(-spin)
	default:
		start := p.LowAnchor.Sub(p.Pivot)
		end := p.HighAnchor.Sub(p.Pivot).Rotate(-p.SpinTarget)
		return Lerp(start, end, u)
	}
}

// inverseScaleFraction is the remaining share of the anchor offset at u,
// proportional to 1 - 1/H(u) where H is the destination scale. It is 1 at
// u=0 and 0 at u=1.
func (p *Params) inverseScaleFraction(u float64) float64 {
	if u <= 0 {
		return 1
	}
	if u >= 1 {
		return 0
	}
	den := 1 - 1/p.Ratio
	if math.Abs(den) < 1e-9 {
		return 1 - u
	}
	return (1 - 1/p.HighScale(u)) / den
}
