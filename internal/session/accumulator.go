// Package session accumulates live brew sessions into bounded chart data.
package session

import (
	"sync"
	"time"

	"brewlink/internal/chart"
	"brewlink/internal/logger"
	"brewlink/internal/models"

	"github.com/google/uuid"
)

// DefaultMaxPoints caps the display projection, not the raw buffer.
const DefaultMaxPoints = 300

// CompleteFunc runs when a session ends with at least one point. It receives
// the summary and the raw (non-downsampled) buffer of that session.
type CompleteFunc func(models.ShotSummary, []models.ChartPoint)

// Accumulator observes machine-state updates and tracks exactly one brewing
// session at a time. It is edge-triggered on the brewing flag: the rising
// edge clears the buffer and starts a session, the falling edge computes the
// summary once. Between the edges every observed update appends one point.
// It never owns a timer; time advances only with incoming updates.
type Accumulator struct {
	log       *logger.Logger
	maxPoints int

	mu         sync.Mutex
	sessionID  string
	active     bool
	wasBrewing bool
	startedAt  time.Time // fallback clock when the machine sends no shot timer
	points     []models.ChartPoint
	display    []models.ChartPoint
	stages     []models.StageRange
	summary    *models.ShotSummary
	onComplete []CompleteFunc
}

// NewAccumulator builds an accumulator with the given display cap;
// maxPoints <= 0 uses DefaultMaxPoints.
func NewAccumulator(maxPoints int, log *logger.Logger) *Accumulator {
	if maxPoints <= 0 {
		maxPoints = DefaultMaxPoints
	}
	return &Accumulator{maxPoints: maxPoints, log: log}
}

// OnComplete registers a callback for session completion. Register before the
// accumulator starts observing.
func (a *Accumulator) OnComplete(fn CompleteFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onComplete = append(a.onComplete, fn)
}

// Observe folds one state update into the current session. It is the sink
// for whichever producer is active: the live telemetry client or the replay
// engine. Updates must arrive in producer order; every brewing edge has
// accumulation consequences and none may be skipped.
func (a *Accumulator) Observe(st models.MachineState) {
	a.mu.Lock()

	brewing := st.IsBrewing()
	switch {
	case brewing && !a.wasBrewing:
		a.beginSession()
		a.appendPoint(st)
	case brewing:
		a.appendPoint(st)
	case a.wasBrewing:
		a.wasBrewing = false
		a.active = false
		summary, callbacks, points := a.finishSession()
		a.mu.Unlock()
		for _, fn := range callbacks {
			fn(summary, points)
		}
		return
	}
	a.wasBrewing = brewing
	a.mu.Unlock()
}

// beginSession clears the previous session's buffer. Caller holds the lock.
func (a *Accumulator) beginSession() {
	a.sessionID = uuid.NewString()
	a.active = true
	a.startedAt = time.Now()
	a.points = nil
	a.display = nil
	a.stages = nil
	a.summary = nil
	if a.log != nil {
		a.log.Infow("session_started", "session_id", a.sessionID)
	}
}

// appendPoint builds one chart point from the current readings. Missing
// readings zero-fill here; nullability stays in MachineState. Caller holds
// the lock.
func (a *Accumulator) appendPoint(st models.MachineState) {
	p := models.ChartPoint{
		Pressure: deref(st.PressureBar),
		Flow:     deref(st.FlowMLS),
		Weight:   deref(st.WeightG),
	}
	if st.ShotTimerS != nil {
		p.T = *st.ShotTimerS
	} else {
		p.T = time.Since(a.startedAt).Seconds()
	}
	if st.Stage != nil {
		p.Stage = *st.Stage
	}

	a.points = append(a.points, p)
	a.display = chart.Downsample(a.points, a.maxPoints)
	a.stages = chart.ExtractStageRanges(a.points)
}

// finishSession computes the one immutable summary for a non-empty session.
// Caller holds the lock; the callback list and raw points are returned so
// callbacks run outside it.
func (a *Accumulator) finishSession() (models.ShotSummary, []CompleteFunc, []models.ChartPoint) {
	if len(a.points) == 0 {
		// A session that never produced a point yields no summary.
		return models.ShotSummary{}, nil, nil
	}

	var sumPressure, sumFlow float64
	for _, p := range a.points {
		sumPressure += p.Pressure
		sumFlow += p.Flow
	}
	n := float64(len(a.points))
	last := a.points[len(a.points)-1]
	s := models.ShotSummary{
		SessionID:      a.sessionID,
		DurationS:      last.T,
		FinalWeightG:   last.Weight,
		AvgPressureBar: sumPressure / n,
		AvgFlowMLS:     sumFlow / n,
		SampleCount:    len(a.points),
		CompletedAt:    time.Now().UTC(),
	}
	a.summary = &s
	if a.log != nil {
		a.log.Infow("session_completed",
			"session_id", a.sessionID,
			"duration_s", s.DurationS,
			"final_weight_g", s.FinalWeightG,
		)
	}
	return s, a.onComplete, a.points
}

// Active reports whether a session is currently open.
func (a *Accumulator) Active() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

// SessionID returns the ID of the current (or just-finished) session.
func (a *Accumulator) SessionID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sessionID
}

// Display returns the downsampled projection rendering consumes. The slice
// is replaced, never mutated, on each append, so callers may hold it.
func (a *Accumulator) Display() []models.ChartPoint {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.display
}

// Stages returns the derived stage ranges for the current buffer.
func (a *Accumulator) Stages() []models.StageRange {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stages
}

// Points returns the raw append-only buffer of the current session.
func (a *Accumulator) Points() []models.ChartPoint {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.points
}

// Summary returns the completed session's summary, or nil while brewing or
// when the last session ended empty.
func (a *Accumulator) Summary() *models.ShotSummary {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.summary == nil {
		return nil
	}
	s := *a.summary
	return &s
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
