package controller

import (
	"context"

	"sterilizer_control/internal/models"
)

// PowerFail simulates a power interruption. Only meaningful while a cycle is
// active: the live runtime is parked for later resumption or formal abort.
// Outside its precondition this is a silent no-op, so duplicate or late
// commands are harmless.
func (c *Controller) PowerFail(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.Cycle.Active || c.state.PowerFailure.Pending {
		return
	}
	held := c.state.Cycle
	c.paused = &held
	c.state.Cycle.Active = false
	c.state.PowerFailure = models.PowerFailureState{Pending: true, Message: message}

	var safe models.ActuatorCommand
	allOff(&safe)
	c.writeActuators(safe)
	c.publish()
}

// ContinueAfterPower restores the parked runtime verbatim and reactivates it.
func (c *Controller) ContinueAfterPower() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.PowerFailure.Pending || c.paused == nil {
		return
	}
	c.state.Cycle = *c.paused
	c.state.Cycle.Active = true
	c.paused = nil
	c.state.PowerFailure = models.PowerFailureState{}
	c.publish()
}

// AbortAfterPower discards the parked runtime, records an aborted summary
// with POWER_ERROR and returns to Idle.
func (c *Controller) AbortAfterPower(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.PowerFailure.Pending {
		return
	}
	if c.paused != nil {
		c.finalizeCycle(ctx, *c.paused, models.ResultAborted, models.CodePowerError)
		c.paused = nil
	}
	c.state.PowerFailure = models.PowerFailureState{}
	c.state.Cycle = models.CycleRuntime{Phase: models.PhaseIdle}
	c.publish()
}

// SetCalibration overlays non-nil patch fields onto the stored offsets. The
// offsets are applied to raw readings before validation and persist across
// cycles until reset.
func (c *Controller) SetCalibration(p models.CalibrationPatch) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Calibration = c.state.Calibration.Apply(p)
	c.publish()
}

// ResetCalibration zeroes all offsets.
func (c *Controller) ResetCalibration() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Calibration = models.CalibrationOffsets{}
	c.publish()
}
