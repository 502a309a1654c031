package service

import (
	"context"
	"errors"

	"brewlink/internal/logger"
	"brewlink/internal/models"
	"brewlink/internal/repository"
)

// Domain errors for replay control.
var (
	ErrLiveSessionActive = errors.New("a live brew is in progress; replay rejected")
	ErrReplayRunning     = errors.New("a replay is already running")
	ErrNoReplayData      = errors.New("no replayable data in source")
)

// ReplayService arbitrates playback. The live feed and the replay engine
// never write the shared state at the same time: starting a replay while the
// machine reports brewing is rejected outright.
type ReplayService struct {
	engine   PlaybackEngine
	client   LiveSource
	shots    repository.ShotRepo
	profiles repository.ProfileRepo
	events   repository.EventRepo
	log      *logger.Logger
}

func NewReplayService(engine PlaybackEngine, client LiveSource, shots repository.ShotRepo, profiles repository.ProfileRepo, events repository.EventRepo, log *logger.Logger) *ReplayService {
	return &ReplayService{
		engine:   engine,
		client:   client,
		shots:    shots,
		profiles: profiles,
		events:   events,
		log:      log,
	}
}

// StartShot replays an archived shot's raw samples.
func (s *ReplayService) StartShot(ctx context.Context, id string) error {
	if err := s.guard(); err != nil {
		return err
	}
	rec, err := s.shots.Get(ctx, id)
	if err != nil {
		return err
	}
	s.engine.LoadShot(rec)
	return s.start(ctx, "shot", id)
}

// StartProfile generates a synthetic brew from a profile's target curve.
func (s *ReplayService) StartProfile(ctx context.Context, name string) error {
	if err := s.guard(); err != nil {
		return err
	}
	curve, err := s.profiles.Get(ctx, name)
	if err != nil {
		return err
	}
	s.engine.LoadCurve(name, curve)
	return s.start(ctx, "profile", name)
}

// Stop cancels a running playback. Safe when idle.
func (s *ReplayService) Stop(ctx context.Context) {
	if !s.engine.Active() {
		return
	}
	s.engine.Stop()
	_ = s.events.Append(ctx, models.SessionEvent{
		Type:        "REPLAY_END",
		Description: "replay stopped",
	})
}

// Status reports the engine's caller-visible state.
func (s *ReplayService) Status() ReplayStatus {
	return ReplayStatus{
		Active: s.engine.Active(),
		Ready:  s.engine.Ready(),
		State:  s.engine.State(),
	}
}

func (s *ReplayService) guard() error {
	if s.client != nil && s.client.Snapshot().IsBrewing() {
		return ErrLiveSessionActive
	}
	if s.engine.Active() {
		return ErrReplayRunning
	}
	return nil
}

func (s *ReplayService) start(ctx context.Context, sourceKind, sourceID string) error {
	if !s.engine.Start() {
		return ErrNoReplayData
	}
	_ = s.events.Append(ctx, models.SessionEvent{
		Type:        "REPLAY_START",
		Description: "replay started from " + sourceKind,
		Metadata:    map[string]any{"source": sourceKind, "id": sourceID},
	})
	if s.log != nil {
		s.log.Infow("replay_requested", "source", sourceKind, "id", sourceID)
	}
	return nil
}
