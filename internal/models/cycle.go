package models

import "time"

// CycleRuntime is the live state of an active (or paused) sterilization cycle.
type CycleRuntime struct {
	Active         bool          `json:"active"`
	Phase          Phase         `json:"phase"`
	PhaseElapsedS  float64       `json:"phase_elapsed_s"`
	PhaseBudgetS   float64       `json:"phase_budget_s"`
	TotalElapsedS  float64       `json:"total_elapsed_s"`
	PulseCount     int           `json:"pulse_count"`
	Program        ProgramConfig `json:"program"`
	StartedAt      time.Time     `json:"started_at"`
	PeakTempC      float64       `json:"peak_temp_c"`
	PeakPressureMPa float64      `json:"peak_pressure_mpa"`
}

// ErrorEvent is one recorded alarm or termination cause.
type ErrorEvent struct {
	ID         string    `json:"id"`
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}

// CycleSummary is the audit record created exactly once when a cycle
// terminates, whether by completion, alarm, or explicit stop.
type CycleSummary struct {
	ID               string       `json:"id"`
	ProgramID        string       `json:"program_id"`
	ProgramName      string       `json:"program_name"`
	StartedAt        time.Time    `json:"started_at"`
	EndedAt          time.Time    `json:"ended_at"`
	DurationS        float64      `json:"duration_s"`
	Result           CycleResult  `json:"result"`
	PrimaryErrorCode ErrorCode    `json:"primary_error_code,omitempty"`
	PeakTempC        float64      `json:"peak_temp_c"`
	PeakPressureMPa  float64      `json:"peak_pressure_mpa"`
	Errors           []ErrorEvent `json:"errors,omitempty"`
}

// PowerFailureState tracks a pending simulated power interruption. While
// Pending is true the interrupted CycleRuntime is held aside for resumption.
type PowerFailureState struct {
	Pending bool   `json:"pending"`
	Message string `json:"message,omitempty"`
}
