package models

import "time"

// ShotTemps carries the optional temperature readings of a recorded sample.
type ShotTemps struct {
	Brew   *float64 `json:"brew,omitempty"`
	Group  *float64 `json:"group,omitempty"`
	Boiler *float64 `json:"boiler,omitempty"`
}

// ShotSample is one recorded telemetry sample of an archived shot. T is
// seconds relative to the first sample of the shot.
type ShotSample struct {
	T        float64    `json:"t"`
	Pressure *float64   `json:"pressure,omitempty"`
	Flow     *float64   `json:"flow,omitempty"`
	Weight   *float64   `json:"weight,omitempty"`
	Stage    *string    `json:"stage,omitempty"`
	Temps    *ShotTemps `json:"temperatures,omitempty"`
}

// Temperature resolves the sample's temperature with the fallback order
// brew, group, boiler. Returns nil when none was recorded.
func (s ShotSample) Temperature() *float64 {
	if s.Temps == nil {
		return nil
	}
	switch {
	case s.Temps.Brew != nil:
		return s.Temps.Brew
	case s.Temps.Group != nil:
		return s.Temps.Group
	default:
		return s.Temps.Boiler
	}
}

// ShotRecord is an archived shot as stored in the shot repository.
type ShotRecord struct {
	ID        string       `json:"id"`
	Profile   string       `json:"profile,omitempty"`
	StartedAt time.Time    `json:"started_at"`
	DurationS float64      `json:"duration_s"`
	Samples   []ShotSample `json:"samples"`
}

// SessionEvent is a single entry in the session event log.
type SessionEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // CONNECT | DISCONNECT | STALE | BREW_START | BREW_END | REPLAY_START | REPLAY_END
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}

// CommandResult is the outcome shape of a machine command. Commands never
// surface transport errors as Go errors to the UI layer; failures come back
// as Success=false plus a message.
type CommandResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
