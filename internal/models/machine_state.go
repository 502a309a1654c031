package models

import "time"

// MachineState is the canonical snapshot of the espresso machine. Every
// reading is independently nullable: a nil field means the machine has never
// reported it, not that something failed. WSConnected and Stale are computed
// by the telemetry client and never taken from the wire.
type MachineState struct {
	BrewTempC   *float64 `json:"brew_temp_c,omitempty"`   // group/brew boiler °C
	SteamTempC  *float64 `json:"steam_temp_c,omitempty"`  // steam boiler °C
	TargetTempC *float64 `json:"target_temp_c,omitempty"` // °C
	PressureBar *float64 `json:"pressure_bar,omitempty"`  // bar
	FlowMLS     *float64 `json:"flow_mls,omitempty"`      // ml/s
	WeightG     *float64 `json:"weight_g,omitempty"`      // scale reading, g
	ShotTimerS  *float64 `json:"shot_timer_s,omitempty"`  // seconds since shot start
	Brewing     *bool    `json:"brewing,omitempty"`
	Stage       *string  `json:"stage,omitempty"`   // machine-reported phase label
	Profile     *string  `json:"profile,omitempty"` // active brew profile name
	TotalShots  *int     `json:"total_shots,omitempty"`

	WSConnected bool      `json:"ws_connected"`
	Stale       bool      `json:"stale"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsBrewing treats an unreported brewing flag as false.
func (s MachineState) IsBrewing() bool {
	return s.Brewing != nil && *s.Brewing
}

// TelemetryFrame is one inbound partial update. Any subset of the state
// fields may be present; absent fields leave the current value untouched.
// A frame with Heartbeat set and no data fields only proves liveness.
type TelemetryFrame struct {
	BrewTempC   *float64 `json:"brew_temp_c"`
	SteamTempC  *float64 `json:"steam_temp_c"`
	TargetTempC *float64 `json:"target_temp_c"`
	PressureBar *float64 `json:"pressure_bar"`
	FlowMLS     *float64 `json:"flow_mls"`
	WeightG     *float64 `json:"weight_g"`
	ShotTimerS  *float64 `json:"shot_timer_s"`
	Brewing     *bool    `json:"brewing"`
	Stage       *string  `json:"stage"`
	Profile     *string  `json:"profile"`
	TotalShots  *int     `json:"total_shots"`
	Heartbeat   *bool    `json:"hb"`
}

// HasData reports whether the frame carries at least one state field, as
// opposed to a bare heartbeat.
func (f TelemetryFrame) HasData() bool {
	return f.BrewTempC != nil || f.SteamTempC != nil || f.TargetTempC != nil ||
		f.PressureBar != nil || f.FlowMLS != nil || f.WeightG != nil ||
		f.ShotTimerS != nil || f.Brewing != nil || f.Stage != nil ||
		f.Profile != nil || f.TotalShots != nil
}

// ApplyTo merges the frame's present fields into st. Merge semantics: a
// present field overwrites, an absent field is left alone; frames never
// clear a previously known value.
func (f TelemetryFrame) ApplyTo(st *MachineState) {
	if f.BrewTempC != nil {
		st.BrewTempC = f.BrewTempC
	}
	if f.SteamTempC != nil {
		st.SteamTempC = f.SteamTempC
	}
	if f.TargetTempC != nil {
		st.TargetTempC = f.TargetTempC
	}
	if f.PressureBar != nil {
		st.PressureBar = f.PressureBar
	}
	if f.FlowMLS != nil {
		st.FlowMLS = f.FlowMLS
	}
	if f.WeightG != nil {
		st.WeightG = f.WeightG
	}
	if f.ShotTimerS != nil {
		st.ShotTimerS = f.ShotTimerS
	}
	if f.Brewing != nil {
		st.Brewing = f.Brewing
	}
	if f.Stage != nil {
		st.Stage = f.Stage
	}
	if f.Profile != nil {
		st.Profile = f.Profile
	}
	if f.TotalShots != nil {
		st.TotalShots = f.TotalShots
	}
}
