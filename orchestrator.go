package mapmorph

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/tanema/gween/ease"
)

// Clock supplies the time used to drive transitions.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// EventKind identifies a lifecycle event.
type EventKind uint8

const (
	EventStarted EventKind = iota
	EventCompleted
	EventCancelled
	EventDegraded
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventCompleted:
		return "completed"
	case EventCancelled:
		return "cancelled"
	case EventDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// TransitionEvent reports a lifecycle change of one transition.
type TransitionEvent struct {
	ID        uuid.UUID
	Kind      EventKind
	FromLevel Level
	ToLevel   Level
	Reverse   bool
}

// EventSink receives lifecycle events. Emit is called synchronously from
// Begin, Draw, Resize and Cancel.
type EventSink interface {
	Emit(TransitionEvent)
}

// EntityRenderer draws overlay entities. A SceneRenderer that also
// implements EntityRenderer draws the overlay; otherwise a NodeRenderer
// with the default palette is used.
type EntityRenderer interface {
	DrawEntities(s Surface, entities []Entity)
}

// Phase is the lifecycle phase of the orchestrator.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhasePrepared
	PhaseActive
)

func (p Phase) String() string {
	switch p {
	case PhasePrepared:
		return "prepared"
	case PhaseActive:
		return "active"
	default:
		return "idle"
	}
}

// TransitionState is the state of the prepared or running transition.
type TransitionState struct {
	ID        uuid.UUID
	Active    bool
	StartTime time.Time
	Duration  time.Duration
	FromLevel Level
	ToLevel   Level
	FromIndex int
	ToIndex   int
	Reverse   bool
	// FromSnapshot is the from scene captured by Prepare. It is dropped
	// when the transition ends.
	FromSnapshot *Snapshot
	// PendingHold is set between Prepare and Begin.
	PendingHold bool
	Degraded    bool

	params     *Params
	clock      Clock
	fade       *fadeTween
	frame      CapturedFrame
	frameTaken bool
}

// Options configure an Orchestrator. Zero fields take defaults.
type Options struct {
	Specs           *SpecTable
	Renderer        SceneRenderer
	Clock           Clock
	Easing          ease.TweenFunc
	DefaultDuration time.Duration
	FadeDuration    time.Duration
	Logger          *log.Logger
	Sink            EventSink
	// Width and Height are the viewport size. When zero, the default size
	// holds until the first Draw reports the surface size.
	Width           float64
	Height          float64
	Debug           bool
}

// Orchestrator runs at most one map transition at a time. It is driven
// from a single goroutine: Prepare before the caller changes level, Begin
// after, then Draw once per frame.
type Orchestrator struct {
	specs    *SpecTable
	renderer SceneRenderer
	entities EntityRenderer
	clock    Clock
	easing   ease.TweenFunc
	logger   *log.Logger
	sink     EventSink
	layouts  *LayoutCache

	defaultDuration time.Duration
	fadeDuration    time.Duration
	width, height   float64

	lastLevel    Level
	hasLastLevel bool

	state     *TransitionState
	waiters   []chan struct{}
	callbacks []func()
	debug     bool
	// sized is set once the viewport size is known: given in Options or
	// seen on the first Draw.
	sized bool
}

// NewOrchestrator creates an idle orchestrator.
func NewOrchestrator(opts Options) *Orchestrator {
	o := &Orchestrator{
		specs:           opts.Specs,
		renderer:        opts.Renderer,
		clock:           opts.Clock,
		easing:          opts.Easing,
		logger:          opts.Logger,
		sink:            opts.Sink,
		layouts:         NewLayoutCache(),
		defaultDuration: opts.DefaultDuration,
		fadeDuration:    opts.FadeDuration,
		width:           opts.Width,
		height:          opts.Height,
	}
	if o.specs == nil {
		o.specs = DefaultSpecTable()
	}
	if o.renderer == nil {
		o.renderer = NewNodeRenderer()
	}
	if er, ok := o.renderer.(EntityRenderer); ok {
		o.entities = er
	} else {
		o.entities = NewNodeRenderer()
	}
	if o.clock == nil {
		o.clock = systemClock{}
	}
	if o.easing == nil {
		o.easing = DefaultEasing
	}
	if o.logger == nil {
		o.logger = defaultLogger()
	}
	if o.defaultDuration <= 0 {
		o.defaultDuration = DefaultDuration
	}
	if o.fadeDuration <= 0 {
		o.fadeDuration = DefaultFadeDuration
	}
	if o.width <= 0 || o.height <= 0 {
		o.width, o.height = DefaultWidth, DefaultHeight
	} else {
		o.sized = true
	}
	if opts.Debug {
		o.SetDebugMode(true)
	}
	return o
}

// Logger returns the orchestrator's logger.
func (o *Orchestrator) Logger() *log.Logger { return o.logger }

// Phase returns the current lifecycle phase.
func (o *Orchestrator) Phase() Phase {
	switch {
	case o.state == nil:
		return PhaseIdle
	case o.state.Active:
		return PhaseActive
	default:
		return PhasePrepared
	}
}

// IsActive reports whether a transition is running.
func (o *Orchestrator) IsActive() bool {
	return o.state != nil && o.state.Active
}

// State returns a copy of the prepared or running transition state.
func (o *Orchestrator) State() (TransitionState, bool) {
	if o.state == nil {
		return TransitionState{}, false
	}
	st := *o.state
	st.params, st.fade, st.frame = nil, nil, nil
	return st, true
}

// Params returns the resolved params of the running transition, or nil
// when idle, prepared, or degraded.
func (o *Orchestrator) Params() *Params {
	if o.state == nil {
		return nil
	}
	return o.state.params
}

// UpdateLastLevel records the level currently on screen. Begin infers the
// direction of a move from it.
func (o *Orchestrator) UpdateLastLevel(level Level) {
	o.lastLevel = level
	o.hasLastLevel = true
}

// LastLevel returns the last level recorded on screen.
func (o *Orchestrator) LastLevel() (Level, bool) {
	return o.lastLevel, o.hasLastLevel
}

// OnComplete queues fn to run at the next Active -> Idle boundary.
func (o *Orchestrator) OnComplete(fn func()) {
	if fn != nil {
		o.callbacks = append(o.callbacks, fn)
	}
}

// WaitForTransition returns a channel that is closed at the next Active ->
// Idle boundary, whether the transition completes or is cancelled. A
// waiter registered while idle waits for the next transition.
func (o *Orchestrator) WaitForTransition() <-chan struct{} {
	ch := make(chan struct{})
	o.waiters = append(o.waiters, ch)
	return ch
}

// Prepare captures the from scene of a move. It must be called before the
// caller changes its current level. A running transition is cancelled.
func (o *Orchestrator) Prepare(state GameState, move Move) {
	if o.IsActive() {
		o.logger.Debug("prepare while active, cancelling", "id", o.state.ID)
		o.finish(EventCancelled)
	}
	move = move.normalize()
	o.state = &TransitionState{
		ID:           uuid.New(),
		FromLevel:    move.FromLevel,
		ToLevel:      move.ToLevel,
		FromIndex:    move.FromIndex,
		ToIndex:      move.ToIndex,
		Reverse:      move.Reverse,
		FromSnapshot: o.snapshot(state, move.FromLevel),
		PendingHold:  true,
	}
	o.logger.Debug("prepared", "id", o.state.ID, "from", move.FromLevel, "to", move.ToLevel,
		"fromIndex", move.FromIndex, "toIndex", move.ToIndex)
}

// Begin starts the prepared transition now that state shows the new
// level. It returns false when there is nothing to animate: no prepared
// move and no level change since the last recorded level.
//
// Begin never fails. A missing or mismatched preparation, a missing spec,
// or a resolver error starts a degraded cross-fade instead.
func (o *Orchestrator) Begin(state GameState) bool {
	if o.IsActive() {
		o.logger.Debug("begin while active, cancelling", "id", o.state.ID)
		o.finish(EventCancelled)
	}
	to := state.Level
	st := o.state
	if st == nil {
		if !o.hasLastLevel || o.lastLevel == to {
			o.UpdateLastLevel(to)
			return false
		}
		st = &TransitionState{
			ID:        uuid.New(),
			FromLevel: o.lastLevel,
			ToLevel:   to,
			Reverse:   o.lastLevel > to,
		}
		o.state = st
		o.degrade(st, "no prepared transition")
	} else if st.ToLevel != to || (o.hasLastLevel && st.FromLevel != o.lastLevel) {
		o.degrade(st, "prepared move does not match level change",
			"prepared", Key(st.FromLevel, st.ToLevel), "last", o.lastLevel, "current", to)
		st.FromLevel, st.ToLevel = o.lastLevelOr(st.FromLevel), to
		st.Reverse = st.FromLevel > st.ToLevel
	} else if err := o.resolve(st, state); err != nil {
		o.degrade(st, "cannot resolve transition", "key", Key(st.FromLevel, st.ToLevel), "err", err)
	}

	st.Active = true
	st.PendingHold = false
	st.clock = o.clock
	st.StartTime = o.clock.Now()
	if st.Degraded {
		st.Duration = o.fadeDuration
		st.fade = newFadeTween(float32(st.Duration.Seconds()), ease.Linear)
		st.params = nil
	}
	o.UpdateLastLevel(to)

	if st.params != nil {
		o.logger.Debug("begin", "id", st.ID, "key", st.params.Key, "dir", st.params.Direction,
			"mapping", st.params.MappingMode(), "duration", st.Duration)
	} else {
		o.logger.Debug("begin", "id", st.ID, "from", st.FromLevel, "to", st.ToLevel,
			"degraded", st.Degraded, "duration", st.Duration)
	}
	o.emit(st, EventStarted)
	if st.Degraded {
		o.emit(st, EventDegraded)
	}
	return true
}

func (o *Orchestrator) lastLevelOr(l Level) Level {
	if o.hasLastLevel {
		return o.lastLevel
	}
	return l
}

// resolve looks up the spec of a prepared move and resolves it against
// the new scene.
func (o *Orchestrator) resolve(st *TransitionState, state GameState) error {
	spec, err := o.specs.Lookup(st.FromLevel, st.ToLevel)
	if err != nil {
		return err
	}
	move := Move{FromLevel: st.FromLevel, ToLevel: st.ToLevel, FromIndex: st.FromIndex, ToIndex: st.ToIndex}
	p, err := Resolve(spec, move, st.FromSnapshot, o.snapshot(state, st.ToLevel), o.logger)
	if err != nil {
		return err
	}
	st.params = p
	st.Duration = p.Duration
	if st.Duration <= 0 {
		st.Duration = o.defaultDuration
	}
	o.debugVerify(p)
	return nil
}

func (o *Orchestrator) degrade(st *TransitionState, reason string, keyvals ...any) {
	st.Degraded = true
	o.logger.Warn(reason+", cross-fading", keyvals...)
}

// Draw renders one frame. While idle it draws the current scene of state
// at identity; while active it draws the transition at the pinned clock's
// time and ends it once the duration has elapsed.
func (o *Orchestrator) Draw(s Surface, state GameState) {
	if w, h := s.Size(); w > 0 && h > 0 && (w != o.width || h != o.height) {
		if o.sized {
			o.Resize(w, h)
		} else {
			o.adoptSize(w, h)
		}
	}
	o.sized = true
	st := o.state
	if st == nil || !st.Active {
		o.drawStatic(s, state)
		return
	}

	elapsed := st.clock.Now().Sub(st.StartTime)
	t := 1.0
	if st.Duration > 0 {
		t = float64(elapsed) / float64(st.Duration)
	}
	if t >= 1 {
		o.finish(EventCompleted)
		o.drawStatic(s, state)
		return
	}
	if st.Degraded {
		o.drawDegraded(s, state, st, elapsed)
		return
	}
	o.drawMorph(s, st.params, t)
}

func (o *Orchestrator) drawStatic(s Surface, state GameState) {
	o.renderer.DrawScene(s, o.snapshot(state, state.Level), IdentitySceneTransform, nil, 1)
}

func (o *Orchestrator) drawMorph(s Surface, p *Params, t float64) {
	f := p.Frame(t, o.easing)
	fromSnap, toSnap := p.Low, p.High
	if p.Direction == Reverse {
		fromSnap, toSnap = p.High, p.Low
	}
	fromHide, toHide := p.Hidden()
	o.renderer.DrawScene(s, fromSnap, f.From, fromHide, f.FromAlpha)
	o.renderer.DrawScene(s, toSnap, f.To, toHide, f.ToAlpha)
	if entities := p.Overlay(f.Progress); len(entities) > 0 {
		o.entities.DrawEntities(s, entities)
	}
}

// drawDegraded fades the new scene in over a copy of the last frame drawn
// before the level changed. The copy is taken on the first degraded draw.
func (o *Orchestrator) drawDegraded(s Surface, state GameState, st *TransitionState, elapsed time.Duration) {
	fc, canCapture := s.(FrameCapturer)
	if !st.frameTaken {
		st.frameTaken = true
		if canCapture {
			st.frame = fc.CaptureFrame()
		}
	}
	alpha := st.fade.At(float32(elapsed.Seconds()))
	o.renderer.DrawScene(s, o.snapshot(state, st.ToLevel), IdentitySceneTransform, nil, alpha)
	if canCapture && st.frame != nil {
		fc.DrawFrame(st.frame, 1-alpha)
	}
}

// Resize updates the viewport size. Cached layouts of other sizes are
// dropped. A running transition is cancelled because its snapshots no
// longer match the viewport; a prepared one is discarded.
func (o *Orchestrator) Resize(width, height float64) {
	o.sized = true
	if width == o.width && height == o.height {
		return
	}
	o.width, o.height = width, height
	o.layouts.Resize(width, height)
	hits, misses := o.layouts.Stats()
	o.logger.Debug("resize", "width", width, "height", height,
		"cachedLayouts", o.layouts.Len(), "hits", hits, "misses", misses)
	o.Cancel()
}

// adoptSize takes the first surface size in place of the default viewport
// without cancelling anything.
func (o *Orchestrator) adoptSize(width, height float64) {
	o.logger.Debug("viewport from surface", "width", width, "height", height)
	o.width, o.height = width, height
	o.layouts.Resize(width, height)
}

// Size returns the viewport size.
func (o *Orchestrator) Size() (width, height float64) {
	return o.width, o.height
}

// Cancel ends a running transition immediately, flushing callbacks and
// waiters, or discards a prepared one.
func (o *Orchestrator) Cancel() {
	switch o.Phase() {
	case PhaseActive:
		o.finish(EventCancelled)
	case PhasePrepared:
		o.logger.Debug("discarding prepared transition", "id", o.state.ID)
		o.state = nil
	}
}

// finish moves an active transition to idle. Waiters and the end event go
// out before the callbacks run, so a callback that waits or starts another
// transition only sees the next boundary.
func (o *Orchestrator) finish(kind EventKind) {
	st := o.state
	o.state = nil
	st.Active = false
	st.FromSnapshot = nil
	st.params = nil
	if st.frame != nil {
		st.frame.Dispose()
		st.frame = nil
	}

	callbacks, waiters := o.callbacks, o.waiters
	o.callbacks, o.waiters = nil, nil
	for _, ch := range waiters {
		close(ch)
	}
	o.logger.Debug("transition "+kind.String(), "id", st.ID)
	o.emit(st, kind)
	for _, fn := range callbacks {
		fn()
	}
}

func (o *Orchestrator) emit(st *TransitionState, kind EventKind) {
	if o.sink == nil {
		return
	}
	o.sink.Emit(TransitionEvent{
		ID:        st.ID,
		Kind:      kind,
		FromLevel: st.FromLevel,
		ToLevel:   st.ToLevel,
		Reverse:   st.FromLevel > st.ToLevel,
	})
}

// snapshot builds the snapshot of level from state at the current
// viewport size.
func (o *Orchestrator) snapshot(state GameState, level Level) *Snapshot {
	layout := o.layouts.Get(level, o.width, o.height, state.Count(level))
	return NewSnapshot(layout, state)
}
