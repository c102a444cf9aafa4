package controller

import (
	"context"

	"sterilizer_control/internal/metrics"
	"sterilizer_control/internal/models"

	"github.com/google/uuid"
)

// Leak test acceptance threshold, MPa per minute of pressure rise.
const leakRatePassMPaMin = 0.005

// StartVacuumTest begins the two-stage leak test: draw vacuum for
// stabilizationSec, then isolate the chamber for testSec and measure the
// pressure rise. Mutually exclusive with an active cycle.
func (c *Controller) StartVacuumTest(stabilizationSec, testSec float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Cycle.Active {
		return ErrCycleActive
	}
	if c.state.VacuumTest.Active {
		return ErrVacuumTestActive
	}
	if stabilizationSec <= 0 || testSec <= 0 {
		return ErrBadTestDuration
	}

	c.state.VacuumTest = models.VacuumTestState{
		Active:         true,
		Phase:          models.VacuumStabilize,
		StabilizationS: stabilizationSec,
		TestS:          testSec,
		StartedAt:      c.now(),
	}
	c.writeActuators(models.ActuatorCommand{
		VacuumPump:   models.Bool(true),
		SteamExhaust: models.Bool(true),
		SteamInlet:   models.Bool(false),
		Heater:       models.Bool(false),
	})
	c.publish()
	return nil
}

// advanceVacuumTest accumulates elapsed time in the current sub-phase. On
// stabilize → test the chamber pressure at that instant becomes the baseline;
// the chamber is then isolated. Test completion computes the leak rate and
// appends a bounded-history result.
func (c *Controller) advanceVacuumTest(ctx context.Context, dt float64, cmd *models.ActuatorCommand) {
	vt := &c.state.VacuumTest
	if !vt.Active {
		return
	}
	vt.ElapsedS += dt

	switch vt.Phase {
	case models.VacuumStabilize:
		if vt.ElapsedS >= vt.StabilizationS {
			vt.Phase = models.VacuumTesting
			vt.ElapsedS = 0
			vt.BaselineMPa = c.state.Sensors.ChamberPressureMPa
			// Isolate: pump off, every valve closed.
			cmd.VacuumPump = models.Bool(false)
			cmd.SteamExhaust = models.Bool(false)
			cmd.SteamInlet = models.Bool(false)
		} else {
			cmd.VacuumPump = models.Bool(true)
			cmd.SteamExhaust = models.Bool(true)
		}
	case models.VacuumTesting:
		if vt.ElapsedS >= vt.TestS {
			c.finishVacuumTest(ctx, cmd)
		}
	}
}

func (c *Controller) finishVacuumTest(ctx context.Context, cmd *models.ActuatorCommand) {
	vt := &c.state.VacuumTest
	minutes := vt.TestS / 60
	rise := c.state.Sensors.ChamberPressureMPa - vt.BaselineMPa
	if rise < 0 {
		rise = 0
	}
	rate := rise / minutes

	res := models.VacuumTestResult{
		ID:             uuid.NewString(),
		StartedAt:      vt.StartedAt,
		EndedAt:        c.now(),
		Passed:         rate <= leakRatePassMPaMin,
		LeakRateMPaMin: rate,
	}
	c.state.VacuumHistory = append([]models.VacuumTestResult{res}, c.state.VacuumHistory...)
	if len(c.state.VacuumHistory) > vacuumHistoryCap {
		c.state.VacuumHistory = c.state.VacuumHistory[:vacuumHistoryCap]
	}
	metrics.VacuumTestFinished(res.Passed)
	if err := c.rec.RecordVacuumTest(ctx, res); err != nil && c.log != nil {
		c.log.Errorw("vacuum_test_record_failed", "err", err, "test_id", res.ID)
	}

	// Back to idle; duration and baseline fields stay for display.
	vt.Active = false
	vt.Phase = models.VacuumIdle
	vt.ElapsedS = 0
	allOff(cmd)
}
