package service

import (
	"context"
	"errors"
	"time"

	"brewlink/internal/models"
	"brewlink/internal/repository"
)

// Shared in-memory fakes for the service tests.

var errDBDown = errors.New("db down")

func fptr(v float64) *float64 { return &v }
func bptr(v bool) *bool       { return &v }
func sptr(v string) *string   { return &v }

type stubLive struct {
	state models.MachineState
}

func (s *stubLive) Snapshot() models.MachineState { return s.state }

type stubEngine struct {
	active bool
	ready  bool
	state  models.MachineState

	loadedShot  *models.ShotRecord
	loadedCurve []models.TargetCurvePoint
	startOK     bool
	starts      int
	stops       int
}

func (e *stubEngine) LoadShot(rec models.ShotRecord) { e.loadedShot = &rec; e.ready = true }
func (e *stubEngine) LoadCurve(_ string, curve []models.TargetCurvePoint) {
	e.loadedCurve = curve
	e.ready = true
}
func (e *stubEngine) Start() bool {
	e.starts++
	if e.startOK {
		e.active = true
	}
	return e.startOK
}
func (e *stubEngine) Stop()                      { e.stops++; e.active = false }
func (e *stubEngine) Active() bool               { return e.active }
func (e *stubEngine) Ready() bool                { return e.ready }
func (e *stubEngine) State() models.MachineState { return e.state }

type stubChart struct {
	sessionID string
	active    bool
	points    []models.ChartPoint
	stages    []models.StageRange
	summary   *models.ShotSummary
}

func (c *stubChart) SessionID() string            { return c.sessionID }
func (c *stubChart) Active() bool                 { return c.active }
func (c *stubChart) Display() []models.ChartPoint { return c.points }
func (c *stubChart) Stages() []models.StageRange  { return c.stages }
func (c *stubChart) Summary() *models.ShotSummary { return c.summary }

type memShotRepo struct {
	shots map[string]models.ShotRecord
	saved []models.ShotRecord
	err   error
}

func newMemShotRepo() *memShotRepo {
	return &memShotRepo{shots: make(map[string]models.ShotRecord)}
}

func (r *memShotRepo) Save(_ context.Context, rec models.ShotRecord) error {
	if r.err != nil {
		return r.err
	}
	r.shots[rec.ID] = rec
	r.saved = append(r.saved, rec)
	return nil
}

func (r *memShotRepo) Get(_ context.Context, id string) (models.ShotRecord, error) {
	if r.err != nil {
		return models.ShotRecord{}, r.err
	}
	rec, ok := r.shots[id]
	if !ok {
		return models.ShotRecord{}, repository.ErrShotNotFound
	}
	return rec, nil
}

func (r *memShotRepo) List(_ context.Context, limit int) ([]models.ShotRecord, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make([]models.ShotRecord, 0, len(r.saved))
	for i := len(r.saved) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		out = append(out, r.saved[i])
	}
	return out, nil
}

type memProfileRepo struct {
	curves map[string][]models.TargetCurvePoint
	err    error
}

func newMemProfileRepo() *memProfileRepo {
	return &memProfileRepo{curves: make(map[string][]models.TargetCurvePoint)}
}

func (r *memProfileRepo) Save(_ context.Context, name string, curve []models.TargetCurvePoint) error {
	if r.err != nil {
		return r.err
	}
	r.curves[name] = curve
	return nil
}

func (r *memProfileRepo) Get(_ context.Context, name string) ([]models.TargetCurvePoint, error) {
	if r.err != nil {
		return nil, r.err
	}
	curve, ok := r.curves[name]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}
	return curve, nil
}

func (r *memProfileRepo) List(_ context.Context) ([]string, error) {
	if r.err != nil {
		return nil, r.err
	}
	names := make([]string, 0, len(r.curves))
	for name := range r.curves {
		names = append(names, name)
	}
	return names, nil
}

type memEventRepo struct {
	appended []models.SessionEvent
	err      error
}

func (r *memEventRepo) Append(_ context.Context, e models.SessionEvent) error {
	if r.err != nil {
		return r.err
	}
	r.appended = append(r.appended, e)
	return nil
}

func (r *memEventRepo) List(_ context.Context, _, _ time.Time, typ string) ([]models.SessionEvent, error) {
	if r.err != nil {
		return nil, r.err
	}
	if typ == "" {
		return r.appended, nil
	}
	var out []models.SessionEvent
	for _, e := range r.appended {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out, nil
}
