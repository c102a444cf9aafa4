package controller

import (
	"context"
	"fmt"
	"math"

	"sterilizer_control/internal/metrics"
	"sterilizer_control/internal/models"

	"github.com/google/uuid"
)

// Transition thresholds from the cycle table.
const (
	preheatMinGenTempC  = 100.0
	heatUpReachedBandC  = 2.0
	depressurizedMPa    = 0.02
	coolCompleteTempC   = 60.0
)

// StartCycle resolves the program template plus any stored override and enters
// Preheat. The door must be closed and locked; violating that raises a
// DOOR_OPEN alarm immediately instead of queueing a retry.
func (c *Controller) StartCycle(ctx context.Context, programID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Cycle.Active {
		return ErrCycleActive
	}
	if c.state.VacuumTest.Active {
		return ErrVacuumTestActive
	}
	if c.state.Cycle.Phase == models.PhaseError {
		return ErrErrorsPending
	}
	base, ok := c.programs[programID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrProgramNotFound, programID)
	}
	prog := base
	if ov, ok := c.overrides[programID]; ok {
		prog = base.Resolve(&ov)
	}

	if c.state.Sensors.DoorOpen || !c.state.Sensors.DoorLocked {
		c.raiseAlarm(ctx, models.CodeDoorOpen, "cycle start refused: door is open or unlocked", nil)
		c.publish()
		return ErrDoorNotSecured
	}

	c.state.ActiveErrors = nil
	c.state.PowerFailure = models.PowerFailureState{}
	c.paused = nil
	c.underTempS = 0
	c.state.Cycle = models.CycleRuntime{
		Active:       true,
		Phase:        models.PhasePreheat,
		PhaseBudgetS: preheatBudgetS,
		Program:      prog,
		StartedAt:    c.now(),
	}
	metrics.CycleStarted()

	c.writeActuators(models.ActuatorCommand{
		Heater:       models.Bool(true),
		SteamInlet:   models.Bool(false),
		SteamExhaust: models.Bool(false),
		VacuumPump:   models.Bool(false),
		DoorLock:     models.Bool(true),
	})
	c.publish()
	return nil
}

// StopCycle deactivates the cycle and records an aborted summary with
// USER_STOP. The phase is set directly to Depressurize so the plant keeps
// venting; because the cycle is no longer active the depressurize guard never
// runs, and the phase stays put until the next StartCycle.
func (c *Controller) StopCycle(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cy := c.state.Cycle
	if !cy.Active {
		return
	}
	c.state.Cycle.Active = false
	c.state.Cycle.Phase = models.PhaseDepressurize
	c.finalizeCycle(ctx, cy, models.ResultAborted, models.CodeUserStop)

	c.writeActuators(models.ActuatorCommand{
		Heater:       models.Bool(false),
		SteamInlet:   models.Bool(false),
		SteamExhaust: models.Bool(true),
		VacuumPump:   models.Bool(false),
	})
	c.publish()
}

// OpenDoor releases the door lock solenoid. Pass-through: interlock
// consequences are enforced by cycle start and alarm evaluation, not here.
func (c *Controller) OpenDoor() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeActuators(models.ActuatorCommand{DoorLock: models.Bool(false)})
}

// CloseDoor engages the door lock solenoid.
func (c *Controller) CloseDoor() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeActuators(models.ActuatorCommand{DoorLock: models.Bool(true)})
}

// ResetErrors clears the active error list and returns the phase to Idle.
// Calling it with nothing to reset is a no-op. History is untouched.
func (c *Controller) ResetErrors() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.state.ActiveErrors) == 0 && c.state.Cycle.Phase != models.PhaseError {
		return
	}
	c.state.ActiveErrors = nil
	if c.state.Cycle.Phase == models.PhaseError {
		c.state.Cycle.Phase = models.PhaseIdle
	}
	c.publish()
}

// SetProgramOverride stores a partial patch applied whenever a cycle starts
// for this program id. Overrides never mutate the base template.
func (c *Controller) SetProgramOverride(programID string, ov models.ProgramOverride) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.programs[programID]; !ok {
		return fmt.Errorf("%w: %q", ErrProgramNotFound, programID)
	}
	c.overrides[programID] = ov
	return nil
}

// enterPhase resets the elapsed counter and installs the new budget.
func enterPhase(cy *models.CycleRuntime, p models.Phase, budgetS float64) {
	cy.Phase = p
	cy.PhaseElapsedS = 0
	cy.PhaseBudgetS = budgetS
}

// advanceCycle runs one step of the transition table while the cycle is
// active, then emits the actuator flags for the (possibly new) phase.
func (c *Controller) advanceCycle(ctx context.Context, dt float64, cmd *models.ActuatorCommand) {
	cy := &c.state.Cycle
	if !cy.Active {
		return
	}
	cy.PhaseElapsedS += dt
	cy.TotalElapsedS += dt

	r := c.state.Sensors
	prog := cy.Program

	switch cy.Phase {
	case models.PhasePreheat:
		if r.GeneratorTempC >= math.Max(preheatMinGenTempC, prog.SetTempC-5) || cy.PhaseElapsedS > cy.PhaseBudgetS {
			enterPhase(cy, models.PhasePreVacuum, preVacuumPulseS)
			cy.PulseCount = 1
		}
	case models.PhasePreVacuum:
		if cy.PhaseElapsedS > cy.PhaseBudgetS {
			if cy.PulseCount < prog.PreVacuumCount {
				enterPhase(cy, models.PhasePreVacuum, preVacuumPulseS)
				cy.PulseCount++
			} else {
				enterPhase(cy, models.PhaseHeatUp, heatUpBudgetS)
			}
		}
	case models.PhaseHeatUp:
		if r.ChamberTempC >= prog.SetTempC-heatUpReachedBandC || cy.PhaseElapsedS > cy.PhaseBudgetS {
			enterPhase(cy, models.PhaseSterilization, prog.HoldSeconds)
			c.underTempS = 0
		}
	case models.PhaseSterilization:
		if cy.PhaseElapsedS >= cy.PhaseBudgetS {
			drying := prog.DryingSeconds
			if drying <= 0 {
				drying = defaultDryingS
			}
			enterPhase(cy, models.PhaseDrying, drying)
		}
	case models.PhaseDrying:
		if cy.PhaseElapsedS >= cy.PhaseBudgetS {
			enterPhase(cy, models.PhaseDepressurize, depressurizeBudgetS)
		}
	case models.PhaseDepressurize:
		if r.ChamberPressureMPa <= depressurizedMPa || cy.PhaseElapsedS > depressurizeBudgetS {
			enterPhase(cy, models.PhaseCooling, coolingBudgetS)
		}
	case models.PhaseCooling:
		if r.ChamberTempC <= coolCompleteTempC || cy.PhaseElapsedS > coolingBudgetS {
			runtime := *cy
			cy.Phase = models.PhaseComplete
			cy.Active = false
			c.finalizeCycle(ctx, runtime, models.ResultSuccess, "")
		}
	}

	if cy.Active {
		c.phaseActuators(cmd)
	} else if cy.Phase == models.PhaseComplete {
		allOff(cmd)
	}
}

// phaseActuators fills the actuator command for the current phase. The door
// stays locked for the whole cycle.
func (c *Controller) phaseActuators(cmd *models.ActuatorCommand) {
	cy := c.state.Cycle
	on, off := models.Bool(true), models.Bool(false)
	switch cy.Phase {
	case models.PhasePreheat:
		cmd.Heater, cmd.SteamInlet, cmd.SteamExhaust, cmd.VacuumPump = on, off, off, off
	case models.PhasePreVacuum:
		cmd.Heater, cmd.SteamInlet, cmd.SteamExhaust, cmd.VacuumPump = on, off, on, on
	case models.PhaseHeatUp:
		cmd.Heater, cmd.SteamInlet, cmd.SteamExhaust, cmd.VacuumPump = on, on, off, off
	case models.PhaseSterilization:
		// Thermostatic hold: admit steam only while below the band.
		inlet := off
		if c.state.Sensors.ChamberTempC < cy.Program.SetTempC-1 {
			inlet = on
		}
		cmd.Heater, cmd.SteamInlet, cmd.SteamExhaust, cmd.VacuumPump = on, inlet, off, off
	case models.PhaseDrying:
		cmd.Heater, cmd.SteamInlet, cmd.SteamExhaust, cmd.VacuumPump = off, off, on, on
	case models.PhaseDepressurize:
		cmd.Heater, cmd.SteamInlet, cmd.SteamExhaust, cmd.VacuumPump = off, off, on, off
	case models.PhaseCooling:
		allOff(cmd)
		return
	}
	cmd.DoorLock = on
}

func allOff(cmd *models.ActuatorCommand) {
	off := models.Bool(false)
	cmd.Heater, cmd.SteamInlet, cmd.SteamExhaust, cmd.VacuumPump, cmd.WaterPump = off, off, off, off, off
}

// finalizeCycle records the one terminal CycleSummary for rt and prepends it
// to the bounded most-recent-first history.
func (c *Controller) finalizeCycle(ctx context.Context, rt models.CycleRuntime, result models.CycleResult, primary models.ErrorCode) {
	now := c.now()
	sum := models.CycleSummary{
		ID:               uuid.NewString(),
		ProgramID:        rt.Program.ID,
		ProgramName:      rt.Program.Name,
		StartedAt:        rt.StartedAt,
		EndedAt:          now,
		DurationS:        rt.TotalElapsedS,
		Result:           result,
		PrimaryErrorCode: primary,
		PeakTempC:        rt.PeakTempC,
		PeakPressureMPa:  rt.PeakPressureMPa,
		Errors:           append([]models.ErrorEvent(nil), c.state.ActiveErrors...),
	}
	c.state.CycleHistory = append([]models.CycleSummary{sum}, c.state.CycleHistory...)
	if len(c.state.CycleHistory) > cycleHistoryCap {
		c.state.CycleHistory = c.state.CycleHistory[:cycleHistoryCap]
	}
	metrics.CycleEnded(string(result))
	if err := c.rec.RecordCycle(ctx, sum); err != nil && c.log != nil {
		c.log.Errorw("cycle_record_failed", "err", err, "cycle_id", sum.ID)
	}
}
