package service

import (
	"context"
	"time"

	"brewlink/internal/logger"
	"brewlink/internal/models"
	"brewlink/internal/repository"
)

const recorderQueueSize = 64

// SessionRecorder watches published machine states and persists the session
// lifecycle: connectivity and staleness transitions go to the event log,
// completed brews go to the shot archive. It observes only; it never writes
// back into the pipeline. Persistence runs on its own worker so the
// producer's event loop is never blocked on SQLite.
type SessionRecorder struct {
	events repository.EventRepo
	shots  repository.ShotRepo
	log    *logger.Logger

	queue chan func(context.Context)
	done  chan struct{}

	// Written only from the producer's event loop.
	sawConnected bool
	sawStale     bool
	sawBrewing   bool
	lastProfile  string
}

func NewSessionRecorder(events repository.EventRepo, shots repository.ShotRepo, log *logger.Logger) *SessionRecorder {
	r := &SessionRecorder{
		events: events,
		shots:  shots,
		log:    log,
		queue:  make(chan func(context.Context), recorderQueueSize),
		done:   make(chan struct{}),
	}
	go r.worker()
	return r
}

// Close drains and stops the persistence worker.
func (r *SessionRecorder) Close() {
	close(r.queue)
	<-r.done
}

func (r *SessionRecorder) worker() {
	defer close(r.done)
	for job := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		job(ctx)
		cancel()
	}
}

// enqueue hands a persistence job to the worker, dropping it when the queue
// is full: losing a log entry beats stalling the telemetry loop.
func (r *SessionRecorder) enqueue(job func(context.Context)) {
	select {
	case r.queue <- job:
	default:
		if r.log != nil {
			r.log.Warnw("recorder_queue_full")
		}
	}
}

// ObserveState diffs connectivity flags across published states. Register it
// with the telemetry client.
func (r *SessionRecorder) ObserveState(st models.MachineState) {
	if st.Profile != nil {
		r.lastProfile = *st.Profile
	}

	if st.WSConnected != r.sawConnected {
		r.sawConnected = st.WSConnected
		typ, msg := "CONNECT", "machine feed connected"
		if !st.WSConnected {
			typ, msg = "DISCONNECT", "machine feed lost"
		}
		r.appendEvent(models.SessionEvent{Type: typ, Description: msg})
	}

	if st.Stale != r.sawStale {
		r.sawStale = st.Stale
		if st.Stale {
			r.appendEvent(models.SessionEvent{Type: "STALE", Description: "no fresh telemetry within timeout"})
		}
	}

	if brewing := st.IsBrewing(); brewing != r.sawBrewing {
		r.sawBrewing = brewing
		if brewing {
			r.appendEvent(models.SessionEvent{
				Type:        "BREW_START",
				Description: "brew session started",
				Metadata:    map[string]any{"profile": r.lastProfile},
			})
		}
		// BREW_END is logged by OnSessionComplete with the summary attached.
	}
}

// OnSessionComplete archives a finished brew and logs its end. Register it
// with the accumulator.
func (r *SessionRecorder) OnSessionComplete(summary models.ShotSummary, points []models.ChartPoint) {
	rec := RecordFromSession(summary, points, r.lastProfile)
	r.enqueue(func(ctx context.Context) {
		if err := r.shots.Save(ctx, rec); err != nil && r.log != nil {
			r.log.Errorw("shot_archive_failed", "session_id", summary.SessionID, "err", err)
		}
	})
	r.appendEvent(models.SessionEvent{
		Type:        "BREW_END",
		Description: "brew session completed",
		Metadata: map[string]any{
			"session_id":     summary.SessionID,
			"duration_s":     summary.DurationS,
			"final_weight_g": summary.FinalWeightG,
		},
	})
}

func (r *SessionRecorder) appendEvent(e models.SessionEvent) {
	r.enqueue(func(ctx context.Context) {
		if err := r.events.Append(ctx, e); err != nil && r.log != nil {
			r.log.Errorw("event_append_failed", "type", e.Type, "err", err)
		}
	})
}
