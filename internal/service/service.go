package service

import (
	"context"
	"time"

	"brewlink/internal/logger"
	"brewlink/internal/models"
	"brewlink/internal/replay"
	"brewlink/internal/repository"
	"brewlink/internal/session"
	"brewlink/internal/telemetry"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Monitoring exposes the canonical machine snapshot and the live chart,
// regardless of whether the live feed or a replay is producing them.
type Monitoring interface {
	GetState() models.MachineState
	GetChart(ctx context.Context) ChartData
}

// Commands fires named zero-argument machine commands. Outcomes come back as
// pass/fail plus optional text, never as propagated errors.
type Commands interface {
	Dispatch(ctx context.Context, name string) models.CommandResult
}

// Shots exposes the shot archive: listing, loading and importing raw
// recordings.
type Shots interface {
	List(ctx context.Context, limit int) ([]models.ShotRecord, error)
	Get(ctx context.Context, id string) (models.ShotRecord, error)
	Import(ctx context.Context, raw []byte, profile string) (models.ShotRecord, error)
}

// Profiles exposes brew profiles' target curves.
type Profiles interface {
	Save(ctx context.Context, name string, curve []models.TargetCurvePoint) error
	Get(ctx context.Context, name string) ([]models.TargetCurvePoint, error)
	List(ctx context.Context) ([]string, error)
}

// Replay controls playback of archived shots and synthetic profile runs.
type Replay interface {
	StartShot(ctx context.Context, id string) error
	StartProfile(ctx context.Context, name string) error
	Stop(ctx context.Context)
	Status() ReplayStatus
}

// EventLog exposes append-only session logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.SessionEvent, error)
}

// LogFilter narrows an event listing.
type LogFilter struct {
	From time.Time
	To   time.Time
	Type string
}

// LiveSource is the live feed's snapshot surface; *telemetry.Client
// satisfies it.
type LiveSource interface {
	Snapshot() models.MachineState
}

// PlaybackEngine is the replay engine surface the services drive;
// *replay.Engine satisfies it.
type PlaybackEngine interface {
	LoadShot(models.ShotRecord)
	LoadCurve(profile string, curve []models.TargetCurvePoint)
	Start() bool
	Stop()
	Active() bool
	Ready() bool
	State() models.MachineState
}

// ChartSource is the accumulator surface the read model consumes;
// *session.Accumulator satisfies it.
type ChartSource interface {
	SessionID() string
	Active() bool
	Display() []models.ChartPoint
	Stages() []models.StageRange
	Summary() *models.ShotSummary
}

// ReplayStatus is the caller-visible playback state.
type ReplayStatus struct {
	Active bool                `json:"active"`
	Ready  bool                `json:"ready"`
	State  models.MachineState `json:"state"`
}

// ChartData is the rendering payload for one session's chart.
type ChartData struct {
	SessionID    string               `json:"session_id,omitempty"`
	Active       bool                 `json:"active"`
	Points       []models.ChartPoint  `json:"points"`
	Stages       []models.StageRange  `json:"stages,omitempty"`
	Summary      *models.ShotSummary  `json:"summary,omitempty"`
	GoalPressure *float64             `json:"goal_pressure,omitempty"`
	GoalFlow     *float64             `json:"goal_flow,omitempty"`
}

// Service aggregates all sub-services.
type Service struct {
	Monitoring
	Commands
	Shots
	Profiles
	Replay
	EventLog
	Authorization
}

// Deps carries everything the service layer is wired from.
type Deps struct {
	Repos       *repository.Repository
	Client      *telemetry.Client
	Accumulator *session.Accumulator
	Engine      *replay.Engine
	MachineURL  string // base URL of the machine's command API
	Log         *logger.Logger
}

// NewService wires the repository layer and the live-data pipeline into
// concrete services.
func NewService(d Deps) *Service {
	return &Service{
		Monitoring:    NewMonitoringService(d.Client, d.Engine, d.Accumulator, d.Repos.Profiles),
		Commands:      NewCommandDispatcher(d.MachineURL, d.Log),
		Shots:         NewShotService(d.Repos.Shots),
		Profiles:      d.Repos.Profiles,
		Replay:        NewReplayService(d.Engine, d.Client, d.Repos.Shots, d.Repos.Profiles, d.Repos.Events, d.Log),
		EventLog:      NewEventLogService(d.Repos.Events),
		Authorization: NewAuthService(d.Repos.Auth),
	}
}
