package mapmorph

import (
	"sort"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// DefaultEasing is used when no easing is configured. It is symmetric, so
// forward and reverse moves accelerate identically.
var DefaultEasing ease.TweenFunc = ease.InOutCubic

var easings = map[string]ease.TweenFunc{
	"linear":     ease.Linear,
	"inOutQuad":  ease.InOutQuad,
	"inOutCubic": ease.InOutCubic,
	"inOutQuart": ease.InOutQuart,
	"inOutSine":  ease.InOutSine,
	"inOutExpo":  ease.InOutExpo,
	"outCubic":   ease.OutCubic,
	"inCubic":    ease.InCubic,
}

// EasingByName looks up an easing function by its config name.
func EasingByName(name string) (ease.TweenFunc, bool) {
	fn, ok := easings[name]
	return fn, ok
}

// EasingNames returns the accepted easing names in sorted order.
func EasingNames() []string {
	names := make([]string, 0, len(easings))
	for n := range easings {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ease01 evaluates fn on normalized time t. The endpoints are pinned to
// exactly 0 and 1 so boundary transforms reduce to the identity without
// rounding error.
func ease01(fn ease.TweenFunc, t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	if fn == nil {
		return t
	}
	return float64(fn(float32(t), 0, 1, 1))
}

// fadeTween animates the alpha of the degraded cross-fade. It is driven by
// absolute elapsed time from the transition's pinned clock rather than by
// per-frame deltas.
type fadeTween struct {
	tween *gween.Tween
	Done  bool
}

func newFadeTween(seconds float32, fn ease.TweenFunc) *fadeTween {
	if fn == nil {
		fn = ease.Linear
	}
	return &fadeTween{tween: gween.New(0, 1, seconds, fn)}
}

// At returns the fade-in alpha at elapsed seconds.
func (f *fadeTween) At(elapsed float32) float64 {
	val, done := f.tween.Set(elapsed)
	f.Done = done
	if done {
		return 1
	}
	return clamp01(float64(val))
}
