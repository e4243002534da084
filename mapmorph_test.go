package mapmorph

import (
	"image/color"
	"math"
	"testing"
)

const epsilon = 1e-9

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertVec(t *testing.T, name string, got, want Vec2, tol float64) {
	t.Helper()
	if got.Sub(want).Len() > tol {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func TestVec2Rotate(t *testing.T) {
	got := Vec2{1, 0}.Rotate(math.Pi / 2)
	assertVec(t, "rotate 90", got, Vec2{0, 1}, epsilon)

	v := Vec2{3, -4}
	if v.Rotate(0) != v {
		t.Error("zero rotation should return v unchanged")
	}
	assertNear(t, "len preserved", v.Rotate(1.234).Len(), 5)
}

func TestLerp(t *testing.T) {
	a, b := Vec2{0, 10}, Vec2{10, 0}
	assertVec(t, "k=0", Lerp(a, b, 0), a, 0)
	assertVec(t, "k=1", Lerp(a, b, 1), b, 0)
	assertVec(t, "k=0.5", Lerp(a, b, 0.5), Vec2{5, 5}, epsilon)
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi / 2, -math.Pi / 2},
		{-3 * math.Pi / 2, math.Pi / 2},
		{5 * math.Pi, math.Pi},
	}
	for _, tt := range tests {
		if got := normalizeAngle(tt.in); !approxEqual(got, tt.want, 1e-12) {
			t.Errorf("normalizeAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRectCenter(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 100, Height: 50}
	assertVec(t, "center", r.Center(), Vec2{60, 45}, 0)
}

func TestColorToRGBA(t *testing.T) {
	if got := ColorWhite.toRGBA(); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("white = %v", got)
	}
	half := Color{R: 1, G: 0, B: 0, A: 1}.WithAlpha(0.5)
	if got := half.toRGBA(); got.A != 128 || got.R != 128 || got.G != 0 {
		t.Errorf("premultiplied half red = %v", got)
	}
}

func TestLevelString(t *testing.T) {
	for l, want := range map[Level]string{
		LevelRing:    "ring",
		LevelCluster: "cluster",
		LevelHallway: "hallway",
		Level(7):     "invalid",
	} {
		if got := l.String(); got != want {
			t.Errorf("Level(%d).String() = %q, want %q", l, got, want)
		}
	}
	if Level(-1).Valid() || Level(LevelCount).Valid() {
		t.Error("out-of-range levels reported valid")
	}
}
