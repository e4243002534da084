package mapmorph

import (
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

// recordingSurface counts drawing calls and tracks the transform depth.
type recordingSurface struct {
	w, h    float64
	depth   int
	circles int
	colors  []Color
	texts   []string
}

func (s *recordingSurface) Save()                              { s.depth++ }
func (s *recordingSurface) Restore()                           { s.depth-- }
func (s *recordingSurface) Translate(x, y float64)             {}
func (s *recordingSurface) Rotate(theta float64)               {}
func (s *recordingSurface) Scale(sx, sy float64)               {}
func (s *recordingSurface) Transform(m [6]float64)             {}
func (s *recordingSurface) Line(a, b Vec2, w float64, c Color) {}
func (s *recordingSurface) Size() (float64, float64)           { return s.w, s.h }

func (s *recordingSurface) Circle(center Vec2, radius float64, c Color, filled bool) {
	s.circles++
	s.colors = append(s.colors, c)
}

func (s *recordingSurface) Text(str string, pos Vec2, size float64, c Color) {
	s.texts = append(s.texts, str)
}

// capturingSurface also supports frame capture.
type capturingSurface struct {
	recordingSurface
	captures int
	drawn    []float64
	frames   []*testFrame
}

type testFrame struct{ disposed bool }

func (f *testFrame) Dispose() { f.disposed = true }

func (s *capturingSurface) CaptureFrame() CapturedFrame {
	s.captures++
	f := &testFrame{}
	s.frames = append(s.frames, f)
	return f
}

func (s *capturingSurface) DrawFrame(f CapturedFrame, alpha float64) {
	s.drawn = append(s.drawn, alpha)
}

// sceneCall records one DrawScene call.
type sceneCall struct {
	level Level
	xf    SceneTransform
	hide  HideSet
	alpha float64
}

type recordingRenderer struct {
	scenes   []sceneCall
	entities [][]Entity
}

func (r *recordingRenderer) DrawScene(s Surface, snap *Snapshot, xf SceneTransform, hide HideSet, alpha float64) {
	r.scenes = append(r.scenes, sceneCall{level: snap.Level, xf: xf, hide: hide, alpha: alpha})
}

func (r *recordingRenderer) DrawEntities(s Surface, entities []Entity) {
	r.entities = append(r.entities, entities)
}

func (r *recordingRenderer) reset() {
	r.scenes, r.entities = nil, nil
}

type recordingSink struct{ events []TransitionEvent }

func (s *recordingSink) Emit(e TransitionEvent) { s.events = append(s.events, e) }

func (s *recordingSink) kinds() []EventKind {
	out := make([]EventKind, len(s.events))
	for i, e := range s.events {
		out[i] = e.Kind
	}
	return out
}

type harness struct {
	orch     *Orchestrator
	clock    *fakeClock
	renderer *recordingRenderer
	sink     *recordingSink
	state    GameState
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		clock:    &fakeClock{now: time.Unix(1000, 0)},
		renderer: &recordingRenderer{},
		sink:     &recordingSink{},
		state:    uniformState(5),
	}
	h.orch = NewOrchestrator(Options{
		Clock:    h.clock,
		Renderer: h.renderer,
		Sink:     h.sink,
		Logger:   log.New(io.Discard),
		Width:    testW,
		Height:   testH,
	})
	h.orch.UpdateLastLevel(LevelRing)
	return h
}

// move performs the prepare / change level / begin sequence.
func (h *harness) move(m Move) bool {
	h.orch.Prepare(h.state, m)
	h.state.Level = m.normalize().ToLevel
	return h.orch.Begin(h.state)
}

func (h *harness) surface() *recordingSurface {
	return &recordingSurface{w: testW, h: testH}
}

func sameKinds(a, b []EventKind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestOrchestratorLifecycle(t *testing.T) {
	h := newHarness(t)
	if h.orch.Phase() != PhaseIdle {
		t.Fatalf("phase = %s", h.orch.Phase())
	}

	h.orch.Prepare(h.state, Move{FromLevel: LevelRing, ToLevel: LevelCluster, ToIndex: 2})
	st, ok := h.orch.State()
	if !ok || !st.PendingHold || st.FromSnapshot == nil || st.Active {
		t.Fatalf("prepared state = %+v", st)
	}
	if h.orch.Phase() != PhasePrepared {
		t.Fatalf("phase = %s", h.orch.Phase())
	}

	h.state.Level = LevelCluster
	if !h.orch.Begin(h.state) {
		t.Fatal("Begin returned false")
	}
	st, _ = h.orch.State()
	if !st.Active || st.PendingHold || st.Degraded {
		t.Fatalf("active state = %+v", st)
	}
	if st.Duration != 1100*time.Millisecond {
		t.Errorf("duration = %v", st.Duration)
	}
	if p := h.orch.Params(); p == nil || p.Key != "0->1" || p.Direction != Forward {
		t.Fatalf("params = %+v", p)
	}

	s := h.surface()
	h.orch.Draw(s, h.state)
	if len(h.renderer.scenes) != 2 || len(h.renderer.entities) != 1 {
		t.Fatalf("draw calls: %d scenes, %d overlays", len(h.renderer.scenes), len(h.renderer.entities))
	}
	from, to := h.renderer.scenes[0], h.renderer.scenes[1]
	if from.level != LevelRing || to.level != LevelCluster {
		t.Errorf("scene order = %s, %s", from.level, to.level)
	}
	if from.xf.Scale != 1 || from.alpha != 1 || to.alpha != 0 {
		t.Errorf("t=0 frame: scale %v alphas %v %v", from.xf.Scale, from.alpha, to.alpha)
	}
	if !from.hide.Has(0) || !to.hide.Has(2) {
		t.Errorf("hide sets %v %v", from.hide, to.hide)
	}

	h.clock.advance(550 * time.Millisecond)
	h.renderer.reset()
	h.orch.Draw(s, h.state)
	if len(h.renderer.scenes) != 2 || h.renderer.scenes[0].xf.Scale == 1 {
		t.Errorf("midway frame not animating: %+v", h.renderer.scenes)
	}

	h.clock.advance(600 * time.Millisecond)
	h.renderer.reset()
	h.orch.Draw(s, h.state)
	if h.orch.IsActive() {
		t.Fatal("transition should have completed")
	}
	if len(h.renderer.scenes) != 1 || h.renderer.scenes[0].level != LevelCluster ||
		h.renderer.scenes[0].xf != IdentitySceneTransform || h.renderer.scenes[0].alpha != 1 {
		t.Errorf("final frame = %+v", h.renderer.scenes)
	}
	if _, ok := h.orch.State(); ok {
		t.Error("state should be cleared after completion")
	}
	if want := []EventKind{EventStarted, EventCompleted}; !sameKinds(h.sink.kinds(), want) {
		t.Errorf("events = %v, want %v", h.sink.kinds(), want)
	}
	if h.sink.events[0].ID != h.sink.events[1].ID {
		t.Error("event IDs differ within one transition")
	}
}

func TestOrchestratorWaitersAndCallbacks(t *testing.T) {
	h := newHarness(t)
	early := h.orch.WaitForTransition()
	calls := 0
	h.orch.OnComplete(func() { calls++ })

	h.move(Move{FromLevel: LevelRing, ToLevel: LevelCluster, ToIndex: 1})
	late := h.orch.WaitForTransition()

	s := h.surface()
	h.orch.Draw(s, h.state)
	select {
	case <-early:
		t.Fatal("waiter released before completion")
	default:
	}

	h.clock.advance(2 * time.Second)
	h.orch.Draw(s, h.state)
	for name, ch := range map[string]<-chan struct{}{"early": early, "late": late} {
		select {
		case <-ch:
		default:
			t.Errorf("%s waiter not released", name)
		}
	}
	if calls != 1 {
		t.Errorf("callback ran %d times", calls)
	}

	// Waiters registered while idle wait for the next transition.
	next := h.orch.WaitForTransition()
	h.orch.Draw(s, h.state)
	select {
	case <-next:
		t.Error("idle waiter released without a transition")
	default:
	}
	h.move(Move{FromLevel: LevelCluster, ToLevel: LevelRing, FromIndex: 1})
	h.orch.Cancel()
	select {
	case <-next:
	default:
		t.Error("waiter not released by cancel")
	}
	if calls != 1 {
		t.Errorf("callback ran again: %d", calls)
	}
}

func TestOrchestratorReverse(t *testing.T) {
	h := newHarness(t)
	h.orch.UpdateLastLevel(LevelCluster)
	h.state.Level = LevelCluster
	if !h.move(Move{FromLevel: LevelCluster, ToLevel: LevelRing, FromIndex: 3}) {
		t.Fatal("Begin returned false")
	}
	p := h.orch.Params()
	if p == nil || p.Direction != Reverse {
		t.Fatalf("params = %+v", p)
	}
	s := h.surface()
	h.orch.Draw(s, h.state)
	from := h.renderer.scenes[0]
	if from.level != LevelCluster || from.xf.Scale != 1 || from.xf.Spin != 0 || from.xf.PreRotation != 0 {
		t.Errorf("reverse t=0 from scene = %+v", from)
	}
}

func TestOrchestratorDegradedWithoutPrepare(t *testing.T) {
	h := newHarness(t)
	h.state.Level = LevelCluster
	if !h.orch.Begin(h.state) {
		t.Fatal("level change without prepare should still animate")
	}
	st, _ := h.orch.State()
	if !st.Degraded || st.Duration != DefaultFadeDuration {
		t.Fatalf("state = %+v", st)
	}
	if want := []EventKind{EventStarted, EventDegraded}; !sameKinds(h.sink.kinds(), want) {
		t.Errorf("events = %v", h.sink.kinds())
	}

	s := &capturingSurface{recordingSurface: recordingSurface{w: testW, h: testH}}
	h.orch.Draw(s, h.state)
	h.clock.advance(DefaultFadeDuration / 2)
	h.orch.Draw(s, h.state)
	if s.captures != 1 {
		t.Errorf("captures = %d, want 1", s.captures)
	}
	if len(s.drawn) != 2 || s.drawn[0] != 1 || !approxEqual(s.drawn[1], 0.5, 1e-6) {
		t.Errorf("old frame alphas = %v", s.drawn)
	}
	last := h.renderer.scenes[len(h.renderer.scenes)-1]
	if last.level != LevelCluster || !approxEqual(last.alpha, 0.5, 1e-6) {
		t.Errorf("new scene = %+v", last)
	}

	h.clock.advance(DefaultFadeDuration)
	h.orch.Draw(s, h.state)
	if h.orch.IsActive() || !s.frames[0].disposed {
		t.Error("fade should complete and dispose the captured frame")
	}
}

func TestOrchestratorDegradedWithoutCapture(t *testing.T) {
	h := newHarness(t)
	h.state.Level = LevelCluster
	h.orch.Begin(h.state)
	h.clock.advance(DefaultFadeDuration / 4)
	h.orch.Draw(h.surface(), h.state)
	if a := h.renderer.scenes[0].alpha; !approxEqual(a, 0.25, 1e-6) {
		t.Errorf("fade-in alpha = %v", a)
	}
}

func TestOrchestratorDegradedOnMismatch(t *testing.T) {
	h := newHarness(t)
	h.orch.Prepare(h.state, Move{FromLevel: LevelRing, ToLevel: LevelCluster, ToIndex: 2})
	h.state.Level = LevelHallway
	h.orch.Begin(h.state)
	st, _ := h.orch.State()
	if !st.Degraded || st.FromLevel != LevelRing || st.ToLevel != LevelHallway {
		t.Errorf("state = %+v", st)
	}
	if h.orch.Params() != nil {
		t.Error("degraded transition should carry no params")
	}
}

func TestOrchestratorDegradedOnMissingSpec(t *testing.T) {
	h := newHarness(t)
	h.orch = NewOrchestrator(Options{
		Specs:    NewSpecTable(),
		Clock:    h.clock,
		Renderer: h.renderer,
		Logger:   log.New(io.Discard),
	})
	h.orch.UpdateLastLevel(LevelRing)
	h.move(Move{FromLevel: LevelRing, ToLevel: LevelCluster, ToIndex: 2})
	if st, _ := h.orch.State(); !st.Degraded || !st.Active {
		t.Errorf("state = %+v", st)
	}
}

func TestOrchestratorSameLevelBegin(t *testing.T) {
	h := newHarness(t)
	if h.orch.Begin(h.state) {
		t.Error("same-level begin without prepare should be a no-op")
	}
	if h.orch.IsActive() || len(h.sink.events) != 0 {
		t.Error("no transition expected")
	}

	// A prepared same-level move cannot resolve and cross-fades instead.
	h.orch.Prepare(h.state, Move{FromLevel: LevelRing, ToLevel: LevelRing})
	if !h.orch.Begin(h.state) {
		t.Fatal("prepared begin returned false")
	}
	if st, _ := h.orch.State(); !st.Degraded {
		t.Error("expected degraded transition")
	}
}

func TestOrchestratorResizeCancels(t *testing.T) {
	h := newHarness(t)
	done := h.orch.WaitForTransition()
	h.move(Move{FromLevel: LevelRing, ToLevel: LevelCluster, ToIndex: 2})

	h.orch.Resize(testW, testH)
	if !h.orch.IsActive() {
		t.Fatal("same-size resize should not cancel")
	}

	h.orch.Draw(&recordingSurface{w: 1024, h: 768}, h.state)
	if h.orch.IsActive() {
		t.Fatal("resize should cancel the transition")
	}
	if w, hh := h.orch.Size(); w != 1024 || hh != 768 {
		t.Errorf("size = %vx%v", w, hh)
	}
	select {
	case <-done:
	default:
		t.Error("waiter not released by resize")
	}
	if want := []EventKind{EventStarted, EventCancelled}; !sameKinds(h.sink.kinds(), want) {
		t.Errorf("events = %v", h.sink.kinds())
	}
	// The cancelled frame draws the current level at identity.
	last := h.renderer.scenes[len(h.renderer.scenes)-1]
	if last.level != LevelCluster || last.xf != IdentitySceneTransform {
		t.Errorf("frame after cancel = %+v", last)
	}
}

func TestOrchestratorPrepareWhileActiveCancels(t *testing.T) {
	h := newHarness(t)
	h.move(Move{FromLevel: LevelRing, ToLevel: LevelCluster, ToIndex: 2})
	h.move(Move{FromLevel: LevelCluster, ToLevel: LevelHallway, FromIndex: 2})
	want := []EventKind{EventStarted, EventCancelled, EventStarted}
	if !sameKinds(h.sink.kinds(), want) {
		t.Errorf("events = %v, want %v", h.sink.kinds(), want)
	}
	if p := h.orch.Params(); p == nil || p.Key != "1->2" {
		t.Errorf("params = %+v", p)
	}
}

func TestOrchestratorCancelPrepared(t *testing.T) {
	h := newHarness(t)
	h.orch.Prepare(h.state, Move{FromLevel: LevelRing, ToLevel: LevelCluster, ToIndex: 2})
	h.orch.Cancel()
	if h.orch.Phase() != PhaseIdle || len(h.sink.events) != 0 {
		t.Errorf("phase = %s events = %v", h.orch.Phase(), h.sink.kinds())
	}
}

func TestOrchestratorDebugModeVerifies(t *testing.T) {
	h := newHarness(t)
	h.orch.SetDebugMode(true)
	if h.orch.Logger().GetLevel() != log.DebugLevel {
		t.Error("debug mode should lower the log level")
	}
	h.move(Move{FromLevel: LevelRing, ToLevel: LevelCluster, ToIndex: 2})
	if !h.orch.IsActive() {
		t.Error("debug verification must not block the transition")
	}
	h.orch.SetDebugMode(false)
	if h.orch.Logger().GetLevel() != log.WarnLevel {
		t.Error("leaving debug mode should restore warn level")
	}
}

func TestOrchestratorIdleDraw(t *testing.T) {
	h := newHarness(t)
	h.orch.Draw(h.surface(), h.state)
	if len(h.renderer.scenes) != 1 || h.renderer.scenes[0].level != LevelRing {
		t.Errorf("idle draw = %+v", h.renderer.scenes)
	}
}

func TestNodeRendererBalancesTransform(t *testing.T) {
	r := NewNodeRenderer()
	s := &recordingSurface{w: testW, h: testH}
	snap := testSnapshot(LevelCluster, 5)
	xf := SceneTransform{Pivot: Vec2{400, 300}, Spin: 0.4, Scale: 2, Anchor: Vec2{400, 300}}
	r.DrawScene(s, snap, xf, HideSet{1: true}, 1)
	if s.depth != 0 {
		t.Errorf("transform depth = %d after DrawScene", s.depth)
	}
	// Four visible nodes, three visible groups with four minis each.
	if s.circles != 4+3*MaxMini {
		t.Errorf("circles = %d", s.circles)
	}
	if len(s.texts) != 4 {
		t.Errorf("labels = %v", s.texts)
	}

	s = &recordingSurface{}
	r.DrawScene(s, snap, xf, nil, 0)
	if s.circles != 0 {
		t.Error("invisible scene drew circles")
	}
}

func TestEventKindString(t *testing.T) {
	for k, want := range map[EventKind]string{
		EventStarted: "started", EventCompleted: "completed",
		EventCancelled: "cancelled", EventDegraded: "degraded", EventKind(9): "unknown",
	} {
		if k.String() != want {
			t.Errorf("%d: %q", k, k.String())
		}
	}
}

func TestOrchestratorWaiterFromCallbackWaitsForNextTransition(t *testing.T) {
	h := newHarness(t)
	var next <-chan struct{}
	h.orch.OnComplete(func() { next = h.orch.WaitForTransition() })
	h.move(Move{FromLevel: LevelRing, ToLevel: LevelCluster, ToIndex: 2})
	h.clock.advance(2 * time.Second)
	h.orch.Draw(h.surface(), h.state)
	if next == nil {
		t.Fatal("callback did not run")
	}
	select {
	case <-next:
		t.Fatal("waiter registered by a callback was released by the same boundary")
	default:
	}

	h.move(Move{FromLevel: LevelCluster, ToLevel: LevelHallway, FromIndex: 2})
	h.orch.Cancel()
	select {
	case <-next:
	default:
		t.Error("waiter not released by the next transition")
	}
}

func TestOrchestratorCallbackChainsAfterCompletedEvent(t *testing.T) {
	h := newHarness(t)
	h.orch.OnComplete(func() {
		h.move(Move{FromLevel: LevelCluster, ToLevel: LevelHallway, FromIndex: 2})
	})
	h.move(Move{FromLevel: LevelRing, ToLevel: LevelCluster, ToIndex: 2})
	h.clock.advance(2 * time.Second)
	h.orch.Draw(h.surface(), h.state)

	want := []EventKind{EventStarted, EventCompleted, EventStarted}
	if !sameKinds(h.sink.kinds(), want) {
		t.Fatalf("events = %v, want %v", h.sink.kinds(), want)
	}
	if e := h.sink.events[1]; e.ToLevel != LevelCluster {
		t.Errorf("completed event for %s, want cluster", e.ToLevel)
	}
	if e := h.sink.events[2]; e.FromLevel != LevelCluster || e.ToLevel != LevelHallway {
		t.Errorf("chained start = %+v", e)
	}
	if !h.orch.IsActive() {
		t.Error("chained transition should be running")
	}
}

// With fewer satellites than minis the unpaired minis are drawn by the
// overlay, so the frame just before completion matches the one after.
func TestOrchestratorSmallRingKeepsEveryMini(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	orch := NewOrchestrator(Options{Clock: clock, Logger: log.New(io.Discard), Width: testW, Height: testH})
	state := uniformState(3)
	orch.UpdateLastLevel(LevelRing)
	orch.Prepare(state, Move{FromLevel: LevelRing, ToLevel: LevelCluster, ToIndex: 1})
	state.Level = LevelCluster
	orch.Begin(state)

	clock.advance(1099 * time.Millisecond)
	before := &recordingSurface{w: testW, h: testH}
	orch.Draw(before, state)
	if !orch.IsActive() {
		t.Fatal("transition ended early")
	}
	clock.advance(10 * time.Millisecond)
	after := &recordingSurface{w: testW, h: testH}
	orch.Draw(after, state)
	if orch.IsActive() {
		t.Fatal("transition should have completed")
	}
	if want := 3 + 2*MaxMini; after.circles != want {
		t.Errorf("static circles = %d, want %d", after.circles, want)
	}
	if before.circles != after.circles {
		t.Errorf("circles before completion = %d, after = %d", before.circles, after.circles)
	}
}

func TestNodeRendererBlendsEntityShades(t *testing.T) {
	r := NewNodeRenderer()
	s := &recordingSurface{}
	r.DrawEntities(s, []Entity{
		{Radius: 4, From: ShadeSatellite, To: ShadeMini, Blend: 0},
		{Radius: 4, From: ShadeSatellite, To: ShadeMini, Blend: 1},
		{Radius: 4, From: ShadeLeader, To: ShadeSatellite, Blend: 0.5, Lead: true},
	})
	if len(s.colors) != 3 {
		t.Fatalf("circles = %d", len(s.colors))
	}
	if s.colors[0] != r.Satellite || s.colors[1] != r.Mini {
		t.Errorf("endpoint colors = %v, %v", s.colors[0], s.colors[1])
	}
	if want := r.Leader.Lerp(r.Satellite, 0.5); s.colors[2] != want {
		t.Errorf("midway color = %v, want %v", s.colors[2], want)
	}
}

func TestOrchestratorAdoptsFirstSurfaceSize(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	sink := &recordingSink{}
	orch := NewOrchestrator(Options{Clock: clock, Sink: sink, Renderer: &recordingRenderer{}, Logger: log.New(io.Discard)})
	state := uniformState(5)
	orch.UpdateLastLevel(LevelRing)
	orch.Prepare(state, Move{FromLevel: LevelRing, ToLevel: LevelCluster, ToIndex: 2})
	state.Level = LevelCluster
	orch.Begin(state)

	orch.Draw(&recordingSurface{w: testW, h: testH}, state)
	if !orch.IsActive() {
		t.Fatal("first draw on a differently sized surface cancelled the transition")
	}
	if w, h := orch.Size(); w != testW || h != testH {
		t.Errorf("size = %vx%v, want %vx%v", w, h, testW, testH)
	}

	orch.Draw(&recordingSurface{w: 1024, h: 768}, state)
	if orch.IsActive() {
		t.Error("a later size change should cancel")
	}
	if want := []EventKind{EventStarted, EventCancelled}; !sameKinds(sink.kinds(), want) {
		t.Errorf("events = %v, want %v", sink.kinds(), want)
	}
}
