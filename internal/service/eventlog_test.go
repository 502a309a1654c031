package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"brewlink/internal/models"
)

func TestEventLog_ListNormalizesFilter(t *testing.T) {
	t.Parallel()

	repo := &memEventRepo{appended: []models.SessionEvent{
		{Type: "CONNECT"},
		{Type: "BREW_START"},
		{Type: "CONNECT"},
	}}
	svc := NewEventLogService(repo)

	// Type is upper-cased and trimmed before it reaches the repository.
	got, err := svc.List(context.Background(), LogFilter{Type: "  connect "})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("filtered list = %d entries, want 2", len(got))
	}

	all, err := svc.List(context.Background(), LogFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("unfiltered list = %d entries, want 3", len(all))
	}
}

func TestEventLog_RejectsInvertedRange(t *testing.T) {
	t.Parallel()

	svc := NewEventLogService(&memEventRepo{})
	now := time.Now()

	_, err := svc.List(context.Background(), LogFilter{From: now, To: now.Add(-time.Hour)})
	if !errors.Is(err, errInvalidTimeRange) {
		t.Fatalf("want errInvalidTimeRange, got %v", err)
	}
}
