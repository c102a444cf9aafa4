package models

import "time"

// SterilizerState is the full snapshot the controller exposes outward after
// every step. Collaborators read it; they never mutate it.
type SterilizerState struct {
	Sensors       PhysicalReading    `json:"sensors"`
	Cycle         CycleRuntime       `json:"cycle"`
	ActiveErrors  []ErrorEvent       `json:"active_errors,omitempty"`
	ErrorHistory  []ErrorEvent       `json:"error_history,omitempty"`
	CycleHistory  []CycleSummary     `json:"cycle_history,omitempty"`
	VacuumTest    VacuumTestState    `json:"vacuum_test"`
	VacuumHistory []VacuumTestResult `json:"vacuum_history,omitempty"`
	Calibration   CalibrationOffsets `json:"calibration"`
	PowerFailure  PowerFailureState  `json:"power_failure"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// Clone returns a deep copy safe to hand outside the controller.
func (s SterilizerState) Clone() SterilizerState {
	out := s
	out.ActiveErrors = append([]ErrorEvent(nil), s.ActiveErrors...)
	out.ErrorHistory = append([]ErrorEvent(nil), s.ErrorHistory...)
	out.VacuumHistory = append([]VacuumTestResult(nil), s.VacuumHistory...)
	if s.CycleHistory != nil {
		out.CycleHistory = make([]CycleSummary, len(s.CycleHistory))
		for i, c := range s.CycleHistory {
			c.Errors = append([]ErrorEvent(nil), c.Errors...)
			out.CycleHistory[i] = c
		}
	}
	return out
}

// Operator is an authenticated user of the command API.
type Operator struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}
