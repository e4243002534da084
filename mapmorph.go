package mapmorph

import (
	"image/color"
	"math"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at draw submission time.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default label and outline color.
var ColorWhite = Color{1, 1, 1, 1}

// WithAlpha returns c with its alpha multiplied by a.
func (c Color) WithAlpha(a float64) Color {
	c.A *= a
	return c
}

// Lerp blends c toward o by k in [0, 1].
func (c Color) Lerp(o Color, k float64) Color {
	switch {
	case k <= 0:
		return c
	case k >= 1:
		return o
	}
	return Color{
		R: c.R + (o.R-c.R)*k,
		G: c.G + (o.G-c.G)*k,
		B: c.B + (o.B-c.B)*k,
		A: c.A + (o.A-c.A)*k,
	}
}

// toRGBA converts to a premultiplied color.RGBA.
func (c Color) toRGBA() color.RGBA {
	a := clamp01(c.A)
	return color.RGBA{
		R: uint8(clamp01(c.R)*a*255 + 0.5),
		G: uint8(clamp01(c.G)*a*255 + 0.5),
		B: uint8(clamp01(c.B)*a*255 + 0.5),
		A: uint8(a*255 + 0.5),
	}
}

// Vec2 is a 2D vector used for positions, offsets and directions
// throughout the API.
type Vec2 struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Mul returns v scaled by k.
func (v Vec2) Mul(k float64) Vec2 { return Vec2{v.X * k, v.Y * k} }

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// Angle returns the angle of v in radians, in (-pi, pi].
func (v Vec2) Angle() float64 { return math.Atan2(v.Y, v.X) }

// Rotate returns v rotated by theta radians (clockwise on screen, since Y
// grows downward).
func (v Vec2) Rotate(theta float64) Vec2 {
	if theta == 0 {
		return v
	}
	sin, cos := math.Sincos(theta)
	return Vec2{cos*v.X - sin*v.Y, sin*v.X + cos*v.Y}
}

// Lerp returns the linear interpolation between a and b at k.
func Lerp(a, b Vec2, k float64) Vec2 {
	return Vec2{a.X + (b.X-a.X)*k, a.Y + (b.Y-a.Y)*k}
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Center returns the midpoint of r.
func (r Rect) Center() Vec2 {
	return Vec2{r.X + r.Width/2, r.Y + r.Height/2}
}

// Level identifies one of the nested hierarchy levels.
type Level int

const (
	LevelRing    Level = iota // leader with a ring of satellites
	LevelCluster              // leader with groups, each drawn with mini-satellites
	LevelHallway              // doorway at the top of a hallway of rooms

	// LevelCount is the number of supported levels.
	LevelCount = 3
)

// String returns the level name used in spec tables and logs.
func (l Level) String() string {
	switch l {
	case LevelRing:
		return "ring"
	case LevelCluster:
		return "cluster"
	case LevelHallway:
		return "hallway"
	default:
		return "invalid"
	}
}

// Valid reports whether l is one of the supported levels.
func (l Level) Valid() bool {
	return l >= LevelRing && l <= LevelHallway
}

// NodeKind distinguishes how a node is laid out and drawn.
type NodeKind uint8

const (
	KindLeader    NodeKind = iota // center node of a ring or cluster
	KindSatellite                 // ring satellite, cluster group, or hallway room
	KindDoorway                   // hallway entrance
)

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// normalizeAngle wraps theta into (-pi, pi].
func normalizeAngle(theta float64) float64 {
	theta = math.Mod(theta, 2*math.Pi)
	if theta <= -math.Pi {
		theta += 2 * math.Pi
	} else if theta > math.Pi {
		theta -= 2 * math.Pi
	}
	return theta
}
