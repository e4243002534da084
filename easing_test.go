package mapmorph

import (
	"testing"

	"github.com/tanema/gween/ease"
)

func TestEase01Endpoints(t *testing.T) {
	for _, name := range EasingNames() {
		fn, ok := EasingByName(name)
		if !ok {
			t.Fatalf("EasingByName(%q) not found", name)
		}
		if ease01(fn, 0) != 0 || ease01(fn, 1) != 1 {
			t.Errorf("%s: endpoints %v %v", name, ease01(fn, 0), ease01(fn, 1))
		}
		if ease01(fn, -0.5) != 0 || ease01(fn, 1.5) != 1 {
			t.Errorf("%s: out-of-range inputs should clamp", name)
		}
	}
}

func TestEase01NilIsLinear(t *testing.T) {
	assertNear(t, "nil easing", ease01(nil, 0.25), 0.25)
}

func TestEase01Midpoint(t *testing.T) {
	if got := ease01(ease.InOutCubic, 0.5); !approxEqual(got, 0.5, 1e-6) {
		t.Errorf("inOutCubic(0.5) = %v", got)
	}
}

func TestEasingByNameUnknown(t *testing.T) {
	if _, ok := EasingByName("bounce-twice"); ok {
		t.Error("unknown easing found")
	}
}

func TestFadeTween(t *testing.T) {
	f := newFadeTween(0.5, ease.Linear)
	if got := f.At(0); got != 0 {
		t.Errorf("At(0) = %v", got)
	}
	if got := f.At(0.25); !approxEqual(got, 0.5, 1e-6) {
		t.Errorf("At(0.25) = %v", got)
	}
	if f.Done {
		t.Error("tween done too early")
	}
	if got := f.At(0.75); got != 1 || !f.Done {
		t.Errorf("At(0.75) = %v done=%v", got, f.Done)
	}
	// Absolute time: going back is allowed.
	if got := f.At(0.1); !approxEqual(got, 0.2, 1e-6) {
		t.Errorf("At(0.1) after end = %v", got)
	}
}
