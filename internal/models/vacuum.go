package models

import "time"

// VacuumTestPhase is a sub-phase of the vacuum leak test.
type VacuumTestPhase string

const (
	VacuumIdle      VacuumTestPhase = "idle"
	VacuumStabilize VacuumTestPhase = "stabilize"
	VacuumTesting   VacuumTestPhase = "test"
)

// VacuumTestState is the runtime of the vacuum leak test sub-machine. It is
// mutually exclusive with an active sterilization cycle.
type VacuumTestState struct {
	Active         bool            `json:"active"`
	Phase          VacuumTestPhase `json:"phase"`
	ElapsedS       float64         `json:"elapsed_s"`
	StabilizationS float64         `json:"stabilization_s"`
	TestS          float64         `json:"test_s"`
	StartedAt      time.Time       `json:"started_at,omitempty"`
	BaselineMPa    float64         `json:"baseline_mpa"`
}

// VacuumTestResult is the audit record of one completed leak test.
type VacuumTestResult struct {
	ID             string    `json:"id"`
	StartedAt      time.Time `json:"started_at"`
	EndedAt        time.Time `json:"ended_at"`
	Passed         bool      `json:"passed"`
	LeakRateMPaMin float64   `json:"leak_rate_mpa_min"`
}
