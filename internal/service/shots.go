package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"brewlink/internal/models"
	"brewlink/internal/repository"

	"github.com/google/uuid"
)

var errEmptyShot = errors.New("shot contains no samples")

// ShotService manages the shot archive.
type ShotService struct {
	shots repository.ShotRepo
}

func NewShotService(shots repository.ShotRepo) *ShotService {
	return &ShotService{shots: shots}
}

// List returns the most recent archived shots.
func (s *ShotService) List(ctx context.Context, limit int) ([]models.ShotRecord, error) {
	return s.shots.List(ctx, limit)
}

// Get loads one archived shot.
func (s *ShotService) Get(ctx context.Context, id string) (models.ShotRecord, error) {
	return s.shots.Get(ctx, id)
}

// Import parses a raw recording (a JSON array of samples with relative
// timestamps), normalizes elapsed time so the first sample sits at zero, and
// archives it under a fresh ID.
func (s *ShotService) Import(ctx context.Context, raw []byte, profile string) (models.ShotRecord, error) {
	var samples []models.ShotSample
	if err := json.Unmarshal(raw, &samples); err != nil {
		return models.ShotRecord{}, fmt.Errorf("parse shot samples: %w", err)
	}
	if len(samples) == 0 {
		return models.ShotRecord{}, errEmptyShot
	}

	sort.SliceStable(samples, func(i, j int) bool { return samples[i].T < samples[j].T })
	base := samples[0].T
	for i := range samples {
		samples[i].T -= base
	}

	rec := models.ShotRecord{
		ID:        uuid.NewString(),
		Profile:   profile,
		StartedAt: time.Now().UTC(),
		DurationS: samples[len(samples)-1].T,
		Samples:   samples,
	}
	if err := s.shots.Save(ctx, rec); err != nil {
		return models.ShotRecord{}, err
	}
	return rec, nil
}

// RecordFromSession converts a completed live session into an archived shot.
// Used by the session recorder so every finished brew lands in the archive.
func RecordFromSession(summary models.ShotSummary, points []models.ChartPoint, profile string) models.ShotRecord {
	samples := make([]models.ShotSample, 0, len(points))
	for _, p := range points {
		pressure, flow, weight := p.Pressure, p.Flow, p.Weight
		sample := models.ShotSample{
			T:        p.T,
			Pressure: &pressure,
			Flow:     &flow,
			Weight:   &weight,
		}
		if p.Stage != "" {
			stage := p.Stage
			sample.Stage = &stage
		}
		samples = append(samples, sample)
	}
	return models.ShotRecord{
		ID:        summary.SessionID,
		Profile:   profile,
		StartedAt: summary.CompletedAt.Add(-time.Duration(summary.DurationS * float64(time.Second))),
		DurationS: summary.DurationS,
		Samples:   samples,
	}
}
