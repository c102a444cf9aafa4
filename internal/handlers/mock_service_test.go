package handlers

import (
	"context"
	"errors"
	"time"

	"sterilizer_control/internal/models"
	"sterilizer_control/internal/service"
)

// mockService implements every service interface with overridable function
// fields. Nil fields fall back to benign defaults.
type mockService struct {
	startCycleFn      func(ctx context.Context, programID string) error
	startVacuumFn     func(stabilizationSec, testSec float64) error
	setOverrideFn     func(programID string, ov models.ProgramOverride) error
	snapshotFn        func() models.SterilizerState
	programsFn        func() []models.ProgramConfig
	listCyclesFn      func(ctx context.Context, f service.HistoryFilter) ([]models.CycleSummary, error)
	listErrorsFn      func(ctx context.Context, f service.HistoryFilter) ([]models.ErrorEvent, error)
	listVacuumFn      func(ctx context.Context, f service.HistoryFilter) ([]models.VacuumTestResult, error)
	signUpFn          func(username, password string) (int, error)
	generateTokenFn   func(username, password string) (string, error)
	parseTokenFn      func(accessToken string) (int, error)
	stopCalled        bool
	openDoorCalled    bool
	closeDoorCalled   bool
	resetErrorsCalled bool
	powerFailMsg      string
	powerContinued    bool
	powerAborted      bool
	calibrationPatch  *models.CalibrationPatch
	calibrationReset  bool
}

func newMockService() *mockService { return &mockService{} }

func (m *mockService) asService() *service.Service {
	return &service.Service{
		Control:       m,
		Monitoring:    m,
		History:       m,
		Runner:        m,
		Authorization: m,
	}
}

// Control

func (m *mockService) StartCycle(ctx context.Context, programID string) error {
	if m.startCycleFn != nil {
		return m.startCycleFn(ctx, programID)
	}
	return nil
}

func (m *mockService) StopCycle(context.Context) { m.stopCalled = true }
func (m *mockService) OpenDoor()                 { m.openDoorCalled = true }
func (m *mockService) CloseDoor()                { m.closeDoorCalled = true }

func (m *mockService) StartVacuumTest(stabilizationSec, testSec float64) error {
	if m.startVacuumFn != nil {
		return m.startVacuumFn(stabilizationSec, testSec)
	}
	return nil
}

func (m *mockService) ResetErrors() { m.resetErrorsCalled = true }

func (m *mockService) SetProgramOverride(programID string, ov models.ProgramOverride) error {
	if m.setOverrideFn != nil {
		return m.setOverrideFn(programID, ov)
	}
	return nil
}

func (m *mockService) SetCalibration(p models.CalibrationPatch) { m.calibrationPatch = &p }
func (m *mockService) ResetCalibration()                        { m.calibrationReset = true }
func (m *mockService) PowerFail(message string)                 { m.powerFailMsg = message }
func (m *mockService) ContinueAfterPower()                      { m.powerContinued = true }
func (m *mockService) AbortAfterPower(context.Context)          { m.powerAborted = true }

// Monitoring

func (m *mockService) Snapshot() models.SterilizerState {
	if m.snapshotFn != nil {
		return m.snapshotFn()
	}
	return models.SterilizerState{
		Cycle:     models.CycleRuntime{Phase: models.PhaseIdle},
		UpdatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *mockService) Programs() []models.ProgramConfig {
	if m.programsFn != nil {
		return m.programsFn()
	}
	return nil
}

// History

func (m *mockService) ListCycles(ctx context.Context, f service.HistoryFilter) ([]models.CycleSummary, error) {
	if m.listCyclesFn != nil {
		return m.listCyclesFn(ctx, f)
	}
	return nil, nil
}

func (m *mockService) ListErrors(ctx context.Context, f service.HistoryFilter) ([]models.ErrorEvent, error) {
	if m.listErrorsFn != nil {
		return m.listErrorsFn(ctx, f)
	}
	return nil, nil
}

func (m *mockService) ListVacuumTests(ctx context.Context, f service.HistoryFilter) ([]models.VacuumTestResult, error) {
	if m.listVacuumFn != nil {
		return m.listVacuumFn(ctx, f)
	}
	return nil, nil
}

// Runner

func (m *mockService) Run(context.Context, time.Duration) {}

// Authorization

func (m *mockService) SignUp(username, password string) (int, error) {
	if m.signUpFn != nil {
		return m.signUpFn(username, password)
	}
	return 1, nil
}

func (m *mockService) GenerateToken(username, password string) (string, error) {
	if m.generateTokenFn != nil {
		return m.generateTokenFn(username, password)
	}
	return "token", nil
}

func (m *mockService) ParseToken(accessToken string) (int, error) {
	if m.parseTokenFn != nil {
		return m.parseTokenFn(accessToken)
	}
	if accessToken == "valid-token" {
		return 1, nil
	}
	return 0, errors.New("invalid token")
}
