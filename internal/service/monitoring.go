package service

import (
	"context"

	"brewlink/internal/chart"
	"brewlink/internal/models"
	"brewlink/internal/repository"
)

// MonitoringService is the read model over the live-data pipeline. Exactly
// one producer writes the snapshot at any time: the replay engine while a
// playback runs, the telemetry client otherwise.
type MonitoringService struct {
	client   LiveSource
	engine   PlaybackEngine
	acc      ChartSource
	profiles repository.ProfileRepo
}

func NewMonitoringService(client LiveSource, engine PlaybackEngine, acc ChartSource, profiles repository.ProfileRepo) *MonitoringService {
	return &MonitoringService{client: client, engine: engine, acc: acc, profiles: profiles}
}

// GetState returns the current canonical snapshot from the active source.
func (s *MonitoringService) GetState() models.MachineState {
	if s.engine != nil && s.engine.Active() {
		return s.engine.State()
	}
	return s.client.Snapshot()
}

// GetChart assembles the rendering payload: the downsampled display
// projection, derived stage ranges, the completed summary if any, and the
// goal overlay interpolated from the active profile's target curve. A
// missing or unreadable curve just means no goal values; it is never an
// error.
func (s *MonitoringService) GetChart(ctx context.Context) ChartData {
	data := ChartData{
		SessionID: s.acc.SessionID(),
		Active:    s.acc.Active(),
		Points:    s.acc.Display(),
		Stages:    s.acc.Stages(),
		Summary:   s.acc.Summary(),
	}

	st := s.GetState()
	if st.Profile == nil || len(data.Points) == 0 {
		return data
	}
	curve, err := s.profiles.Get(ctx, *st.Profile)
	if err != nil {
		return data
	}
	now := data.Points[len(data.Points)-1].T
	data.GoalPressure = chart.Interpolate(curve, now, chart.KeyPressure)
	data.GoalFlow = chart.Interpolate(curve, now, chart.KeyFlow)
	return data
}
