package controller

import (
	"context"
	"math"

	"sterilizer_control/internal/metrics"
	"sterilizer_control/internal/models"

	"github.com/google/uuid"
)

// Alarm thresholds.
const (
	overpressureMPa     = 0.35
	lowWaterPct         = 5.0
	overtempBandC       = 8.0
	heatTimeoutGraceS   = 30.0
	heatTimeoutBandC    = 5.0
	vacuumGraceS        = 5.0
	vacuumResidualMPa   = 0.05
	dryingGraceS        = 60.0
	underTempBandC      = 3.0
	underTempLimitS     = 30.0
	sensorTempMinC      = -10.0
	sensorTempMaxC      = 200.0
	sensorPressureMin   = -0.2
	sensorPressureMax   = 0.5
	sensorWaterMaxPct   = 110.0
)

// evaluateAlarms runs the safety checks for one step. It runs strictly after
// the transition logic; a raised alarm forces Error and wins over any
// transition computed earlier in the same step. No further alarms fire once
// the phase is Error.
func (c *Controller) evaluateAlarms(ctx context.Context, dt float64, cmd *models.ActuatorCommand) {
	if c.state.Cycle.Phase == models.PhaseError {
		return
	}
	r := c.state.Sensors
	cy := c.state.Cycle

	if r.ChamberPressureMPa > overpressureMPa {
		c.raiseAlarm(ctx, models.CodeOverpressure, "chamber pressure above safety limit", cmd)
		return
	}
	if r.GeneratorWaterPct < lowWaterPct {
		c.raiseAlarm(ctx, models.CodeNoWater, "steam generator water level critical", cmd)
		return
	}
	if cy.Active && r.ChamberTempC > cy.Program.SetTempC+overtempBandC {
		c.raiseAlarm(ctx, models.CodeOvertemp, "chamber temperature above program limit", cmd)
		return
	}
	if cy.Active && cy.Phase == models.PhaseHeatUp &&
		cy.PhaseElapsedS > cy.PhaseBudgetS+heatTimeoutGraceS &&
		r.ChamberTempC < cy.Program.SetTempC-heatTimeoutBandC {
		c.raiseAlarm(ctx, models.CodeHeatingTimeout, "heat-up did not reach temperature in time", cmd)
		return
	}
	if cy.Active && cy.Phase == models.PhasePreVacuum &&
		cy.PhaseElapsedS > cy.PhaseBudgetS+vacuumGraceS &&
		r.ChamberPressureMPa > vacuumResidualMPa {
		c.raiseAlarm(ctx, models.CodeVacuumFail, "pre-vacuum did not reach target pressure", cmd)
		return
	}
	if cy.Active && cy.Phase == models.PhaseDrying && cy.PhaseElapsedS > cy.PhaseBudgetS+dryingGraceS {
		c.raiseAlarm(ctx, models.CodeHeatingTimeout, "drying phase overran its budget", cmd)
		return
	}
	if cy.Active && cy.Phase == models.PhaseSterilization {
		if r.ChamberTempC < cy.Program.SetTempC-underTempBandC {
			c.underTempS += dt
			if c.underTempS >= underTempLimitS {
				c.raiseAlarm(ctx, models.CodeHeatingTimeout, "temperature lost during sterilization hold", cmd)
				return
			}
		}
	}
	if cy.Active && r.DoorOpen {
		c.raiseAlarm(ctx, models.CodeDoorOpen, "door opened while a cycle is active", cmd)
		return
	}
	if !saneReading(r) {
		c.raiseAlarm(ctx, models.CodeSensorFailure, "sensor reading outside plausible range", cmd)
		return
	}
}

// saneReading checks every field for finiteness and plausible physical range.
func saneReading(r models.PhysicalReading) bool {
	for _, v := range []float64{
		r.ChamberPressureMPa, r.ChamberTempC, r.GeneratorPressureMPa,
		r.GeneratorTempC, r.GeneratorWaterPct, r.JacketPressureMPa,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	for _, t := range []float64{r.ChamberTempC, r.GeneratorTempC} {
		if t < sensorTempMinC || t > sensorTempMaxC {
			return false
		}
	}
	for _, p := range []float64{r.ChamberPressureMPa, r.GeneratorPressureMPa, r.JacketPressureMPa} {
		if p < sensorPressureMin || p > sensorPressureMax {
			return false
		}
	}
	return r.GeneratorWaterPct >= 0 && r.GeneratorWaterPct <= sensorWaterMaxPct
}

// raiseAlarm records the event, forces the Error phase, deactivates the cycle
// and finalizes its summary when a program context exists. Every actuator
// except the door lock is shut off; the lock keeps its latched state so a
// pressurized chamber stays sealed.
func (c *Controller) raiseAlarm(ctx context.Context, code models.ErrorCode, message string, cmd *models.ActuatorCommand) {
	if c.state.Cycle.Phase == models.PhaseError {
		return
	}
	ev := models.ErrorEvent{
		ID:         uuid.NewString(),
		Code:       code,
		Message:    message,
		OccurredAt: c.now(),
	}
	c.appendBoundedError(ev)
	metrics.AlarmRaised(string(code))
	if err := c.rec.RecordError(ctx, ev); err != nil && c.log != nil {
		c.log.Errorw("error_record_failed", "err", err, "code", code)
	}

	wasActive := c.state.Cycle.Active
	runtime := c.state.Cycle
	c.state.Cycle.Active = false
	c.state.Cycle.Phase = models.PhaseError
	if wasActive {
		c.finalizeCycle(ctx, runtime, models.ResultError, code)
	}

	if cmd != nil {
		allOff(cmd)
	} else {
		var safe models.ActuatorCommand
		allOff(&safe)
		c.writeActuators(safe)
	}
}
