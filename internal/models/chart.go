package models

import "time"

// ChartPoint is one sample of a live (or replayed) brew session. T is seconds
// from shot start. Readings missing from the machine state are zero-filled
// here; nullability belongs to MachineState, not to rendering.
type ChartPoint struct {
	T        float64 `json:"t"`
	Pressure float64 `json:"pressure"`
	Flow     float64 `json:"flow"`
	Weight   float64 `json:"weight"`
	Stage    string  `json:"stage,omitempty"`
}

// StageRange is a contiguous span of points sharing one stage label.
// Recomputed from the point buffer, never persisted.
type StageRange struct {
	Label      string  `json:"label"`
	StartT     float64 `json:"start_t"`
	EndT       float64 `json:"end_t"`
	ColorIndex int     `json:"color_index"`
}

// ShotSummary is the once-per-session statistic computed when a brew ends.
type ShotSummary struct {
	SessionID      string    `json:"session_id"`
	DurationS      float64   `json:"duration_s"`
	FinalWeightG   float64   `json:"final_weight_g"`
	AvgPressureBar float64   `json:"avg_pressure_bar"`
	AvgFlowMLS     float64   `json:"avg_flow_mls"`
	SampleCount    int       `json:"sample_count"`
	CompletedAt    time.Time `json:"completed_at"`
}

// TargetCurvePoint is one anchor of a profile's goal curve. Curves arrive
// unordered; the interpolator sorts them.
type TargetCurvePoint struct {
	T              float64  `json:"time"`
	TargetPressure *float64 `json:"target_pressure,omitempty"`
	TargetFlow     *float64 `json:"target_flow,omitempty"`
	StageName      string   `json:"stage_name"`
}
