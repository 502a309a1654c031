// Package replay turns archived shots or profile target curves into
// synthetic live frames at real-time cadence. Frames are shaped exactly like
// the telemetry client's state, so downstream consumers cannot tell a replay
// from a live brew.
package replay

import (
	"math/rand"
	"sort"
	"sync"
	"time"

	"brewlink/internal/chart"
	"brewlink/internal/logger"
	"brewlink/internal/models"
)

const (
	DefaultTick  = 100 * time.Millisecond
	DefaultGrace = 500 * time.Millisecond

	// Synthetic mode dresses the interpolated targets with bounded noise so
	// the curve doesn't look machine-drawn. The weight integral uses the
	// clean flow, so it stays monotonic regardless of noise.
	noisePressureBar = 0.15
	noiseFlowMLS     = 0.08
	noiseTempC       = 0.3
	syntheticBrewC   = 93.0
)

// source produces one frame per tick. done goes true when the source has
// played out; the engine then emits the end-of-session frame and stops.
type source interface {
	reset()
	frameAt(elapsed float64) (st models.MachineState, done bool)
}

// Observer receives replay frames in emission order on the engine's loop.
type Observer func(models.MachineState)

// Engine replays a fixed point source on a fixed-rate timer. One playback at
// a time; Start is a no-op without a loaded source.
type Engine struct {
	log   *logger.Logger
	tick  time.Duration
	grace time.Duration

	mu        sync.Mutex
	src       source
	observers []Observer
	state     models.MachineState
	active    bool
	stop      chan struct{}
	finished  chan struct{}
}

// NewEngine builds an idle engine. tick/grace <= 0 use the defaults.
func NewEngine(tick, grace time.Duration, log *logger.Logger) *Engine {
	if tick <= 0 {
		tick = DefaultTick
	}
	if grace <= 0 {
		grace = DefaultGrace
	}
	return &Engine{log: log, tick: tick, grace: grace}
}

// Notify registers an observer for emitted frames. Register before Start.
func (e *Engine) Notify(fn Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, fn)
}

// LoadShot arms the engine with an archived shot (recorded mode:
// nearest-prior-sample semantics, no interpolation). An empty shot clears
// the source.
func (e *Engine) LoadShot(rec models.ShotRecord) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active {
		return
	}
	if len(rec.Samples) == 0 {
		e.src = nil
		return
	}
	samples := make([]models.ShotSample, len(rec.Samples))
	copy(samples, rec.Samples)
	sort.SliceStable(samples, func(i, j int) bool { return samples[i].T < samples[j].T })
	e.src = &recordedSource{
		samples: samples,
		profile: rec.Profile,
		graceS:  e.grace.Seconds(),
	}
}

// LoadCurve arms the engine with a profile's target curve (synthetic mode:
// continuous interpolation plus noise, weight from the flow integral). A
// curve without any targets clears the source.
func (e *Engine) LoadCurve(profile string, curve []models.TargetCurvePoint) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active {
		return
	}
	if chart.MaxTime(curve) <= 0 {
		e.src = nil
		return
	}
	points := make([]models.TargetCurvePoint, len(curve))
	copy(points, curve)
	e.src = &syntheticSource{curve: points, profile: profile}
}

// Ready reports whether a usable source is loaded.
func (e *Engine) Ready() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.src != nil
}

// Active reports whether a playback is running.
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// State returns the latest emitted frame.
func (e *Engine) State() models.MachineState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Start begins playback from time zero. Reports whether a playback started;
// false means no source is loaded or one is already running, never an
// error, callers check Ready/Active rather than expect exceptions.
func (e *Engine) Start() bool {
	e.mu.Lock()
	if e.active || e.src == nil {
		e.mu.Unlock()
		return false
	}
	e.active = true
	e.src.reset()
	e.stop = make(chan struct{})
	e.finished = make(chan struct{})
	src, stop, finished := e.src, e.stop, e.finished
	e.mu.Unlock()

	if e.log != nil {
		e.log.Infow("replay_started", "tick", e.tick)
	}
	go e.run(src, stop, finished)
	return true
}

// Stop cancels the playback. Safe to call when idle; blocks until the final
// frame has been emitted so no tick can fire after it returns.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.active {
		e.mu.Unlock()
		return
	}
	stop, finished := e.stop, e.finished
	e.mu.Unlock()

	close(stop)
	<-finished
}

// run is the playback loop. It owns frame emission: exactly one final frame
// with brewing=false ends every playback, manual or automatic, so the
// accumulator's falling-edge logic fires for replays exactly as for live
// shots.
func (e *Engine) run(src source, stop, finished chan struct{}) {
	started := time.Now()
	ticker := time.NewTicker(e.tick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			e.finish(src, time.Since(started).Seconds(), finished)
			return
		case <-ticker.C:
			elapsed := time.Since(started).Seconds()
			st, done := src.frameAt(elapsed)
			if done {
				e.finish(src, elapsed, finished)
				return
			}
			e.emit(st)
		}
	}
}

func (e *Engine) finish(src source, elapsed float64, finished chan struct{}) {
	st, _ := src.frameAt(elapsed)
	brewing := false
	st.Brewing = &brewing

	e.mu.Lock()
	e.active = false
	e.state = st
	e.state.UpdatedAt = time.Now().UTC()
	observers := e.observers
	final := e.state
	e.mu.Unlock()

	for _, fn := range observers {
		fn(final)
	}
	close(finished)
	if e.log != nil {
		e.log.Infow("replay_finished", "elapsed_s", elapsed)
	}
}

func (e *Engine) emit(st models.MachineState) {
	e.mu.Lock()
	e.state = st
	e.state.UpdatedAt = time.Now().UTC()
	observers := e.observers
	out := e.state
	e.mu.Unlock()

	for _, fn := range observers {
		fn(out)
	}
}

// recordedSource replays raw samples: the cursor advances monotonically to
// the latest sample at or before the elapsed time.
type recordedSource struct {
	samples []models.ShotSample // sorted by T
	profile string
	graceS  float64
	cursor  int
}

func (r *recordedSource) reset() { r.cursor = 0 }

func (r *recordedSource) frameAt(elapsed float64) (models.MachineState, bool) {
	last := r.samples[len(r.samples)-1]
	if elapsed > last.T+r.graceS {
		return r.stateAt(len(r.samples)-1, elapsed), true
	}
	for r.cursor+1 < len(r.samples) && r.samples[r.cursor+1].T <= elapsed {
		r.cursor++
	}
	return r.stateAt(r.cursor, elapsed), false
}

func (r *recordedSource) stateAt(idx int, elapsed float64) models.MachineState {
	s := r.samples[idx]
	brewing := true
	st := models.MachineState{
		Brewing:     &brewing,
		ShotTimerS:  &elapsed,
		PressureBar: s.Pressure,
		FlowMLS:     s.Flow,
		WeightG:     s.Weight,
		Stage:       s.Stage,
		BrewTempC:   s.Temperature(),
	}
	if r.profile != "" {
		st.Profile = &r.profile
	}
	return st
}

// syntheticSource follows a target curve through the shared interpolator and
// derives weight by integrating the clean (pre-noise) flow.
type syntheticSource struct {
	curve   []models.TargetCurvePoint
	profile string

	weightG     float64
	lastElapsed float64
}

func (s *syntheticSource) reset() {
	s.weightG = 0
	s.lastElapsed = 0
}

func (s *syntheticSource) frameAt(elapsed float64) (models.MachineState, bool) {
	if elapsed > chart.MaxTime(s.curve) {
		return s.state(elapsed, 0, 0), true
	}

	pressure := deref(chart.Interpolate(s.curve, elapsed, chart.KeyPressure))
	flow := deref(chart.Interpolate(s.curve, elapsed, chart.KeyFlow))

	dt := elapsed - s.lastElapsed
	if dt > 0 {
		s.weightG += clampMin(flow, 0) * dt
	}
	s.lastElapsed = elapsed

	return s.state(elapsed, pressure, flow), false
}

func (s *syntheticSource) state(elapsed, pressure, flow float64) models.MachineState {
	brewing := true
	p := clampMin(pressure+jitter(noisePressureBar), 0)
	f := clampMin(flow+jitter(noiseFlowMLS), 0)
	w := clampMin(s.weightG, 0)
	temp := syntheticBrewC + jitter(noiseTempC)

	st := models.MachineState{
		Brewing:     &brewing,
		ShotTimerS:  &elapsed,
		PressureBar: &p,
		FlowMLS:     &f,
		WeightG:     &w,
		BrewTempC:   &temp,
	}
	if stage := s.stageAt(elapsed); stage != "" {
		st.Stage = &stage
	}
	if s.profile != "" {
		st.Profile = &s.profile
	}
	return st
}

// stageAt returns the stage name of the latest curve point at or before
// elapsed.
func (s *syntheticSource) stageAt(elapsed float64) string {
	name := ""
	best := -1.0
	for _, p := range s.curve {
		if p.StageName != "" && p.T <= elapsed && p.T > best {
			best = p.T
			name = p.StageName
		}
	}
	return name
}

func jitter(bound float64) float64 {
	return (rand.Float64()*2 - 1) * bound
}

func clampMin(v, min float64) float64 {
	if v < min {
		return min
	}
	return v
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
