package mapmorph

import (
	"errors"
	"fmt"

	"github.com/tanema/gween/ease"
)

// ErrInvariant is wrapped by every invariant violation reported by the
// Verify functions.
var ErrInvariant = errors.New("transition invariant violated")

// DefaultTolerance is the world-space tolerance, in pixels, of the
// invariant checks. Easing runs in float32, so sub-pixel drift is expected.
const DefaultTolerance = 1e-3

// verifySamples are the normalized times used by the symmetry check.
var verifySamples = []float64{0, 0.1, 0.25, 0.4, 0.5, 0.6, 0.75, 0.9, 1}

// lowHigh returns the low and high scene transforms of a frame regardless
// of the playing direction.
func (f Frame) lowHigh(d Direction) (low, high SceneTransform) {
	if d == Reverse {
		return f.To, f.From
	}
	return f.From, f.To
}

func near(a, b Vec2, tol float64) bool {
	return a.Sub(b).Len() <= tol
}

// VerifyBoundaries checks that the from scene is the identity at t=0, the
// to scene is the identity at t=1, and both boundary scales are exactly 1.
// Every node of both scenes is tested, not only the anchors.
func VerifyBoundaries(p *Params, fn ease.TweenFunc, tol float64) error {
	var errs []error
	start := p.Frame(0, fn)
	end := p.Frame(1, fn)
	fromSnap, toSnap := p.Low, p.High
	if p.Direction == Reverse {
		fromSnap, toSnap = p.High, p.Low
	}

	if start.From.Scale != 1 {
		errs = append(errs, fmt.Errorf("%w: %s %s scale_from(0) = %v", ErrInvariant, p.Key, p.Direction, start.From.Scale))
	}
	if end.To.Scale != 1 {
		errs = append(errs, fmt.Errorf("%w: %s %s scale_to(1) = %v", ErrInvariant, p.Key, p.Direction, end.To.Scale))
	}
	for _, n := range fromSnap.Nodes {
		if got := start.From.World(n.Position); !near(got, n.Position, tol) {
			errs = append(errs, fmt.Errorf("%w: %s %s from node %d at t=0: %v, want %v",
				ErrInvariant, p.Key, p.Direction, n.Index, got, n.Position))
		}
	}
	for _, n := range toSnap.Nodes {
		if got := end.To.World(n.Position); !near(got, n.Position, tol) {
			errs = append(errs, fmt.Errorf("%w: %s %s to node %d at t=1: %v, want %v",
				ErrInvariant, p.Key, p.Direction, n.Index, got, n.Position))
		}
	}
	return errors.Join(errs...)
}

// VerifySymmetry checks that rev sampled at 1-t matches fwd sampled at t,
// for both anchors and every overlay entity.
func VerifySymmetry(fwd, rev *Params, fn ease.TweenFunc, tol float64) error {
	var errs []error
	for _, t := range verifySamples {
		ff := fwd.Frame(t, fn)
		rf := rev.Frame(1-t, fn)
		fl, fh := ff.lowHigh(fwd.Direction)
		rl, rh := rf.lowHigh(rev.Direction)

		if a, b := fl.World(fwd.LowAnchor), rl.World(rev.LowAnchor); !near(a, b, tol) {
			errs = append(errs, fmt.Errorf("%w: %s low anchor t=%.2f: fwd %v rev %v", ErrInvariant, fwd.Key, t, a, b))
		}
		if a, b := fh.World(fwd.HighAnchor), rh.World(rev.HighAnchor); !near(a, b, tol) {
			errs = append(errs, fmt.Errorf("%w: %s high anchor t=%.2f: fwd %v rev %v", ErrInvariant, fwd.Key, t, a, b))
		}

		fe := fwd.Overlay(ff.Progress)
		re := rev.Overlay(rf.Progress)
		if len(fe) != len(re) {
			errs = append(errs, fmt.Errorf("%w: %s overlay count fwd %d rev %d", ErrInvariant, fwd.Key, len(fe), len(re)))
			continue
		}
		for i := range fe {
			if !near(fe[i].Position, re[i].Position, tol) {
				errs = append(errs, fmt.Errorf("%w: %s entity %d t=%.2f: fwd %v rev %v",
					ErrInvariant, fwd.Key, i, t, fe[i].Position, re[i].Position))
			}
		}
	}
	return errors.Join(errs...)
}

// Reversed returns a copy of p playing in the opposite direction.
func (p *Params) Reversed() *Params {
	q := *p
	q.FromLevel, q.ToLevel = p.ToLevel, p.FromLevel
	if p.Direction == Reverse {
		q.Direction = Forward
	} else {
		q.Direction = Reverse
	}
	return &q
}

// CheckResult is the outcome of verifying one resolved move.
type CheckResult struct {
	Key       string
	Direction Direction
	Count     int
	Index     int
	Err       error
}

// CheckTable resolves every adjacency of table in both directions, for each
// node count and every non-leader index, and verifies boundary identity and
// reversal symmetry of each pair.
func CheckTable(table *SpecTable, fn ease.TweenFunc, width, height float64, counts []int) []CheckResult {
	var out []CheckResult
	for lo := LevelRing; lo+1 < LevelCount; lo++ {
		hi := lo + 1
		spec, err := table.Lookup(lo, hi)
		if errors.Is(err, ErrNoSpec) {
			continue
		}
		key := Key(lo, hi)
		if err != nil {
			out = append(out, CheckResult{Key: key, Err: err})
			continue
		}
		for _, n := range counts {
			state := uniformState(n)
			low := NewSnapshot(BuildLayout(lo, width, height, n), state)
			high := NewSnapshot(BuildLayout(hi, width, height, n), state)
			for idx := 1; idx < n; idx++ {
				fwd, errF := Resolve(spec, Move{FromLevel: lo, ToLevel: hi, FromIndex: idx, ToIndex: idx}, low, high, nil)
				rev, errR := Resolve(spec, Move{FromLevel: hi, ToLevel: lo, FromIndex: idx, ToIndex: idx}, high, low, nil)
				fr := CheckResult{Key: key, Direction: Forward, Count: n, Index: idx, Err: errF}
				rr := CheckResult{Key: key, Direction: Reverse, Count: n, Index: idx, Err: errR}
				if errF == nil {
					fr.Err = VerifyBoundaries(fwd, fn, DefaultTolerance)
				}
				if errR == nil {
					rr.Err = VerifyBoundaries(rev, fn, DefaultTolerance)
				}
				if errF == nil && errR == nil {
					fr.Err = errors.Join(fr.Err, VerifySymmetry(fwd, rev, fn, DefaultTolerance))
				}
				out = append(out, fr, rr)
			}
		}
	}
	return out
}

// uniformState returns a state with n discovered, named locations on every
// level.
func uniformState(n int) GameState {
	var s GameState
	for lv := range s.Locations {
		locs := make([]Location, n)
		for i := range locs {
			locs[i] = Location{Name: fmt.Sprintf("%s %d", Level(lv), i), Discovered: true, NameKnown: true}
		}
		s.Locations[lv] = locs
	}
	return s
}
