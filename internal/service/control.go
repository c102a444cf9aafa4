package service

import (
	"context"

	"sterilizer_control/internal/controller"
	"sterilizer_control/internal/models"
)

// ControlService forwards the command surface to the process controller. The
// controller performs all validation; this layer keeps the HTTP handlers
// decoupled from the concrete controller type.
type ControlService struct {
	ctrl *controller.Controller
}

func NewControlService(ctrl *controller.Controller) *ControlService {
	return &ControlService{ctrl: ctrl}
}

var _ Control = (*ControlService)(nil)

func (s *ControlService) StartCycle(ctx context.Context, programID string) error {
	return s.ctrl.StartCycle(ctx, programID)
}

func (s *ControlService) StopCycle(ctx context.Context) { s.ctrl.StopCycle(ctx) }

func (s *ControlService) OpenDoor()  { s.ctrl.OpenDoor() }
func (s *ControlService) CloseDoor() { s.ctrl.CloseDoor() }

func (s *ControlService) StartVacuumTest(stabilizationSec, testSec float64) error {
	return s.ctrl.StartVacuumTest(stabilizationSec, testSec)
}

func (s *ControlService) ResetErrors() { s.ctrl.ResetErrors() }

func (s *ControlService) SetProgramOverride(programID string, ov models.ProgramOverride) error {
	return s.ctrl.SetProgramOverride(programID, ov)
}

func (s *ControlService) SetCalibration(p models.CalibrationPatch) { s.ctrl.SetCalibration(p) }
func (s *ControlService) ResetCalibration()                        { s.ctrl.ResetCalibration() }

func (s *ControlService) PowerFail(message string) { s.ctrl.PowerFail(message) }
func (s *ControlService) ContinueAfterPower()      { s.ctrl.ContinueAfterPower() }

func (s *ControlService) AbortAfterPower(ctx context.Context) { s.ctrl.AbortAfterPower(ctx) }
