package service

import (
	"testing"

	"brewlink/internal/models"
)

func TestRecorder_ConnectivityTransitions(t *testing.T) {
	t.Parallel()

	events := &memEventRepo{}
	rec := NewSessionRecorder(events, newMemShotRepo(), nil)

	rec.ObserveState(models.MachineState{WSConnected: true})
	rec.ObserveState(models.MachineState{WSConnected: true})                  // no transition
	rec.ObserveState(models.MachineState{WSConnected: true, Stale: true})     // goes stale
	rec.ObserveState(models.MachineState{WSConnected: true, Stale: false})    // recovery is silent
	rec.ObserveState(models.MachineState{})                                   // disconnect
	rec.Close()

	want := []string{"CONNECT", "STALE", "DISCONNECT"}
	if len(events.appended) != len(want) {
		t.Fatalf("events = %+v, want types %v", events.appended, want)
	}
	for i, typ := range want {
		if events.appended[i].Type != typ {
			t.Fatalf("event %d = %s, want %s", i, events.appended[i].Type, typ)
		}
	}
}

func TestRecorder_BrewLifecycle(t *testing.T) {
	t.Parallel()

	events := &memEventRepo{}
	shots := newMemShotRepo()
	rec := NewSessionRecorder(events, shots, nil)

	rec.ObserveState(models.MachineState{Profile: sptr("lever"), Brewing: bptr(true)})
	rec.ObserveState(models.MachineState{Brewing: bptr(true)})
	rec.OnSessionComplete(
		models.ShotSummary{SessionID: "sess-1", DurationS: 2, FinalWeightG: 18},
		[]models.ChartPoint{{T: 0, Pressure: 1}, {T: 2, Pressure: 9, Weight: 18}},
	)
	rec.ObserveState(models.MachineState{Brewing: bptr(false)})
	rec.Close()

	want := []string{"BREW_START", "BREW_END"}
	if len(events.appended) != len(want) {
		t.Fatalf("events = %+v, want types %v", events.appended, want)
	}
	for i, typ := range want {
		if events.appended[i].Type != typ {
			t.Fatalf("event %d = %s, want %s", i, events.appended[i].Type, typ)
		}
	}

	if len(shots.saved) != 1 {
		t.Fatalf("completed brew was not archived")
	}
	got := shots.saved[0]
	if got.ID != "sess-1" || got.Profile != "lever" || len(got.Samples) != 2 {
		t.Fatalf("archived shot wrong: %+v", got)
	}
}

func TestRecorder_PersistenceFailuresAreSwallowed(t *testing.T) {
	t.Parallel()

	events := &memEventRepo{err: errDBDown}
	shots := newMemShotRepo()
	shots.err = errDBDown
	rec := NewSessionRecorder(events, shots, nil)

	rec.ObserveState(models.MachineState{WSConnected: true})
	rec.OnSessionComplete(models.ShotSummary{SessionID: "s"}, []models.ChartPoint{{T: 0}})
	rec.Close()
	// Reaching here without panics is the assertion: persistence errors never
	// escape the worker.
}
