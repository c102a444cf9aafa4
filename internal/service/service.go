package service

import (
	"context"
	"time"

	"sterilizer_control/internal/controller"
	"sterilizer_control/internal/logger"
	"sterilizer_control/internal/models"
	"sterilizer_control/internal/port"
	"sterilizer_control/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Control exposes the full command surface of the process controller.
type Control interface {
	StartCycle(ctx context.Context, programID string) error
	StopCycle(ctx context.Context)
	OpenDoor()
	CloseDoor()
	StartVacuumTest(stabilizationSec, testSec float64) error
	ResetErrors()
	SetProgramOverride(programID string, ov models.ProgramOverride) error
	SetCalibration(p models.CalibrationPatch)
	ResetCalibration()
	PowerFail(message string)
	ContinueAfterPower()
	AbortAfterPower(ctx context.Context)
}

// Monitoring exposes the read-only state snapshot and program templates.
type Monitoring interface {
	Snapshot() models.SterilizerState
	Programs() []models.ProgramConfig
}

// History exposes the persisted audit records with filtering access.
type History interface {
	ListCycles(ctx context.Context, f HistoryFilter) ([]models.CycleSummary, error)
	ListErrors(ctx context.Context, f HistoryFilter) ([]models.ErrorEvent, error)
	ListVacuumTests(ctx context.Context, f HistoryFilter) ([]models.VacuumTestResult, error)
}

// Runner drives the simulation backend and the controller at a fixed tick.
// Stop via context cancellation in main() for graceful shutdown.
type Runner interface {
	Run(ctx context.Context, tick time.Duration)
}

// Service aggregates all sub-services.
type Service struct {
	Control
	Monitoring
	History
	Runner
	Authorization
}

// AuthConfig carries the JWT settings read from configuration.
type AuthConfig struct {
	SigningKey string
	TokenTTL   time.Duration
}

// NewService wires the controller, backend and repositories into the
// composed service root.
func NewService(ctrl *controller.Controller, backend port.Port, repos *repository.Repository, auth AuthConfig, log *logger.Logger) *Service {
	return &Service{
		Control:       NewControlService(ctrl),
		Monitoring:    NewMonitoringService(ctrl),
		History:       NewHistoryService(repos.Cycles, repos.Events, repos.Vacuum),
		Runner:        NewRunnerService(ctrl, backend, log),
		Authorization: NewAuthService(repos.Auth, auth),
	}
}
