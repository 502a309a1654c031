package session

import (
	"testing"

	"brewlink/internal/models"
)

func f64(v float64) *float64 { return &v }
func b(v bool) *bool         { return &v }
func str(v string) *string   { return &v }

func brewingState(t, pressure, flow, weight float64, stage string) models.MachineState {
	st := models.MachineState{
		Brewing:     b(true),
		ShotTimerS:  f64(t),
		PressureBar: f64(pressure),
		FlowMLS:     f64(flow),
		WeightG:     f64(weight),
	}
	if stage != "" {
		st.Stage = str(stage)
	}
	return st
}

func idleState() models.MachineState {
	return models.MachineState{Brewing: b(false)}
}

func TestAccumulator_EdgeTriggering(t *testing.T) {
	t.Parallel()

	a := NewAccumulator(0, nil)

	var completions []models.ShotSummary
	a.OnComplete(func(s models.ShotSummary, _ []models.ChartPoint) {
		completions = append(completions, s)
	})

	// false → true → true → false
	a.Observe(idleState())
	a.Observe(brewingState(0.5, 2.0, 1.0, 0, "preinfusion"))
	a.Observe(brewingState(1.0, 8.0, 2.0, 12.5, "extraction"))
	a.Observe(idleState())

	if got := len(a.Points()); got != 2 {
		t.Fatalf("points appended only during brewing: got %d, want 2", got)
	}
	if len(completions) != 1 {
		t.Fatalf("exactly one completion per session, got %d", len(completions))
	}

	s := a.Summary()
	if s == nil {
		t.Fatal("summary missing after falling edge")
	}
	if s.DurationS != 1.0 {
		t.Errorf("duration = last point time: got %v, want 1.0", s.DurationS)
	}
	if s.FinalWeightG != 12.5 {
		t.Errorf("final weight: got %v, want 12.5", s.FinalWeightG)
	}
	if s.AvgPressureBar != 5.0 {
		t.Errorf("avg pressure: got %v, want 5.0", s.AvgPressureBar)
	}
	if s.AvgFlowMLS != 1.5 {
		t.Errorf("avg flow: got %v, want 1.5", s.AvgFlowMLS)
	}
	if s.SampleCount != 2 {
		t.Errorf("sample count: got %d, want 2", s.SampleCount)
	}

	// Post-session idle updates change nothing.
	a.Observe(idleState())
	if len(completions) != 1 {
		t.Fatalf("completion fired again on repeated idle updates")
	}
}

func TestAccumulator_MissingReadingsZeroFill(t *testing.T) {
	t.Parallel()

	a := NewAccumulator(0, nil)
	a.Observe(models.MachineState{Brewing: b(true), ShotTimerS: f64(0.2)})
	a.Observe(models.MachineState{Brewing: b(true), ShotTimerS: f64(0.4), PressureBar: f64(6.0)})
	a.Observe(idleState())

	pts := a.Points()
	if pts[0].Pressure != 0 || pts[0].Flow != 0 || pts[0].Weight != 0 {
		t.Errorf("missing readings must zero-fill, got %+v", pts[0])
	}
	s := a.Summary()
	if s.AvgPressureBar != 3.0 {
		t.Errorf("mean treats missing readings as 0: got %v, want 3.0", s.AvgPressureBar)
	}
}

func TestAccumulator_EmptySessionYieldsNoSummary(t *testing.T) {
	t.Parallel()

	a := NewAccumulator(0, nil)
	fired := 0
	a.OnComplete(func(models.ShotSummary, []models.ChartPoint) { fired++ })

	// Idle updates before any session: no rising edge ever happened, the
	// falling-edge path must stay quiet.
	a.Observe(idleState())
	a.Observe(idleState())
	if fired != 0 {
		t.Fatalf("no session ever started, but completion fired %d times", fired)
	}
	if a.Summary() != nil {
		t.Fatal("summary must be nil when no session completed")
	}
}

func TestAccumulator_ReentryStartsFreshSession(t *testing.T) {
	t.Parallel()

	a := NewAccumulator(0, nil)

	a.Observe(brewingState(0.5, 9.0, 2.0, 10, ""))
	a.Observe(idleState())
	firstID := a.SessionID()
	firstSummary := a.Summary()

	a.Observe(brewingState(0.1, 3.0, 1.0, 1, ""))
	if a.SessionID() == firstID {
		t.Error("re-entering brewing must mint a new session ID")
	}
	if got := len(a.Points()); got != 1 {
		t.Errorf("buffer must be cleared on new session, got %d points", got)
	}
	if a.Summary() != nil {
		t.Error("previous summary must not leak into the new session")
	}
	if firstSummary.DurationS != 0.5 {
		t.Errorf("first summary mutated: %+v", firstSummary)
	}
}

func TestAccumulator_DisplayProjectionBounded(t *testing.T) {
	t.Parallel()

	const cap = 50
	a := NewAccumulator(cap, nil)
	for i := 0; i < 1000; i++ {
		a.Observe(brewingState(float64(i)*0.1, 9, 2, float64(i)*0.05, "extraction"))
	}

	display := a.Display()
	if len(display) > cap+1 {
		t.Fatalf("display projection exceeds cap: %d > %d(+1)", len(display), cap)
	}
	raw := a.Points()
	if len(raw) != 1000 {
		t.Fatalf("raw buffer must keep everything, got %d", len(raw))
	}
	if display[len(display)-1] != raw[len(raw)-1] {
		t.Error("display projection must end at the live frontier")
	}
	if !a.Active() {
		t.Error("session still open")
	}
}

func TestAccumulator_StageRangesDerived(t *testing.T) {
	t.Parallel()

	a := NewAccumulator(0, nil)
	a.Observe(brewingState(0, 1, 0.5, 0, "preinfusion"))
	a.Observe(brewingState(1, 2, 0.5, 0, "preinfusion"))
	a.Observe(brewingState(2, 9, 2.0, 5, "extraction"))

	stages := a.Stages()
	if len(stages) != 2 {
		t.Fatalf("got %d stage ranges, want 2: %+v", len(stages), stages)
	}
	if stages[0].Label != "preinfusion" || stages[0].EndT != 1 {
		t.Errorf("first range wrong: %+v", stages[0])
	}
	if stages[1].Label != "extraction" || stages[1].StartT != 2 {
		t.Errorf("second range wrong: %+v", stages[1])
	}
}

func TestAccumulator_CompletionDeliversRawPoints(t *testing.T) {
	t.Parallel()

	a := NewAccumulator(2, nil) // tiny display cap
	var gotRaw []models.ChartPoint
	a.OnComplete(func(_ models.ShotSummary, pts []models.ChartPoint) { gotRaw = pts })

	for i := 0; i < 10; i++ {
		a.Observe(brewingState(float64(i), 9, 2, float64(i), ""))
	}
	a.Observe(idleState())

	if len(gotRaw) != 10 {
		t.Fatalf("completion must see the raw buffer, got %d points", len(gotRaw))
	}
}
