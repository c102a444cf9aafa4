// Package controller implements the sterilizer process controller: the cycle
// state machine, alarm evaluation, the vacuum leak test, calibration and
// power-failure handling. It owns the authoritative SterilizerState and talks
// to the physical process only through the port.
package controller

import (
	"context"
	"errors"
	"sync"
	"time"

	"sterilizer_control/internal/logger"
	"sterilizer_control/internal/metrics"
	"sterilizer_control/internal/models"
	"sterilizer_control/internal/port"
)

// Bounded history caps; oldest entries are evicted first.
const (
	errorHistoryCap  = 100
	cycleHistoryCap  = 50
	vacuumHistoryCap = 50
)

// Phase time budgets in seconds. Program-derived budgets (hold, drying)
// override these where the transition table says so.
const (
	preheatBudgetS      = 300.0
	preVacuumPulseS     = 60.0
	heatUpBudgetS       = 600.0
	defaultDryingS      = 30.0
	depressurizeBudgetS = 20.0
	coolingBudgetS      = 40.0
)

// Validation errors surfaced synchronously to the caller.
var (
	ErrProgramNotFound  = errors.New("program not found")
	ErrCycleActive      = errors.New("a cycle is already running")
	ErrVacuumTestActive = errors.New("a vacuum test is in progress")
	ErrErrorsPending    = errors.New("active errors must be reset before starting")
	ErrDoorNotSecured   = errors.New("door must be closed and locked")
	ErrBadTestDuration  = errors.New("stabilization and test durations must be positive")
)

// Recorder persists audit records. Calls are best-effort: a failing recorder
// never blocks the process.
type Recorder interface {
	RecordCycle(ctx context.Context, s models.CycleSummary) error
	RecordError(ctx context.Context, e models.ErrorEvent) error
	RecordVacuumTest(ctx context.Context, r models.VacuumTestResult) error
}

// NopRecorder discards all records.
type NopRecorder struct{}

func (NopRecorder) RecordCycle(context.Context, models.CycleSummary) error       { return nil }
func (NopRecorder) RecordError(context.Context, models.ErrorEvent) error         { return nil }
func (NopRecorder) RecordVacuumTest(context.Context, models.VacuumTestResult) error { return nil }

// Listener receives a fresh state snapshot after every mutation.
type Listener func(models.SterilizerState)

// Controller is safe for concurrent use: every command and Step serialize
// behind one mutex. It holds no timers; a driver calls Step at its own cadence.
type Controller struct {
	mu   sync.Mutex
	port port.Port
	rec  Recorder
	log  *logger.Logger

	programs  map[string]models.ProgramConfig
	overrides map[string]models.ProgramOverride

	state      models.SterilizerState
	paused     *models.CycleRuntime // held runtime during a power failure
	underTempS float64              // cumulative under-temperature during hold

	listeners []Listener
	now       func() time.Time
}

// New builds a controller over the given port with the startup program
// templates. A nil recorder disables audit persistence.
func New(p port.Port, programs []models.ProgramConfig, rec Recorder, log *logger.Logger) *Controller {
	if rec == nil {
		rec = NopRecorder{}
	}
	byID := make(map[string]models.ProgramConfig, len(programs))
	for _, prog := range programs {
		byID[prog.ID] = prog
	}
	return &Controller{
		port:      p,
		rec:       rec,
		log:       log,
		programs:  byID,
		overrides: make(map[string]models.ProgramOverride),
		state: models.SterilizerState{
			Cycle: models.CycleRuntime{Phase: models.PhaseIdle},
			VacuumTest: models.VacuumTestState{Phase: models.VacuumIdle},
		},
		now: time.Now,
	}
}

// Subscribe registers a change-notification callback. Callbacks run on the
// mutating goroutine with a snapshot copy; they must not call back in.
func (c *Controller) Subscribe(fn Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Snapshot returns a deep copy of the current state.
func (c *Controller) Snapshot() models.SterilizerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Programs lists the configured cycle templates.
func (c *Controller) Programs() []models.ProgramConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.ProgramConfig, 0, len(c.programs))
	for _, p := range c.programs {
		out = append(out, p)
	}
	return out
}

// Step advances the controller by dtSeconds: pull readings, calibrate and
// validate them, advance the vacuum-test and cycle machines, evaluate alarms
// (strictly after transitions, so an alarm raised in the same step wins), and
// write the resulting actuator command back through the port.
func (c *Controller) Step(ctx context.Context, dtSeconds float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if dtSeconds <= 0 {
		return nil
	}

	raw, err := c.port.ReadSensors()
	if err != nil {
		return err
	}
	c.state.Sensors = c.calibrated(raw)

	var cmd models.ActuatorCommand
	c.advanceVacuumTest(ctx, dtSeconds, &cmd)
	c.advanceCycle(ctx, dtSeconds, &cmd)
	c.evaluateAlarms(ctx, dtSeconds, &cmd)
	c.trackPeaks()

	if err := c.port.WriteActuators(cmd); err != nil && c.log != nil {
		c.log.Errorw("actuator_write_failed", "err", err)
	}
	metrics.ObserveChamber(c.state.Sensors.ChamberTempC, c.state.Sensors.ChamberPressureMPa)
	c.state.UpdatedAt = c.now()
	c.publish()
	return nil
}

// calibrated applies the additive offsets to a raw reading.
func (c *Controller) calibrated(r models.PhysicalReading) models.PhysicalReading {
	o := c.state.Calibration
	r.ChamberTempC += o.ChamberTempC
	r.ChamberPressureMPa += o.ChamberPressureMPa
	r.GeneratorTempC += o.GeneratorTempC
	r.GeneratorPressureMPa += o.GeneratorPressureMPa
	return r
}

func (c *Controller) trackPeaks() {
	cy := &c.state.Cycle
	if !cy.Active {
		return
	}
	if c.state.Sensors.ChamberTempC > cy.PeakTempC {
		cy.PeakTempC = c.state.Sensors.ChamberTempC
	}
	if c.state.Sensors.ChamberPressureMPa > cy.PeakPressureMPa {
		cy.PeakPressureMPa = c.state.Sensors.ChamberPressureMPa
	}
}

// publish hands snapshot copies to all listeners. Caller holds the mutex.
func (c *Controller) publish() {
	if len(c.listeners) == 0 {
		return
	}
	snap := c.state.Clone()
	for _, fn := range c.listeners {
		fn(snap)
	}
}

// writeActuators pushes a command outside the Step pipeline (commands that
// must act immediately, like door lock and stop venting).
func (c *Controller) writeActuators(cmd models.ActuatorCommand) {
	if err := c.port.WriteActuators(cmd); err != nil && c.log != nil {
		c.log.Errorw("actuator_write_failed", "err", err)
	}
}

// appendBoundedError pushes e onto the append-only history, evicting the
// oldest entry beyond the cap. The active list is unbounded until reset.
func (c *Controller) appendBoundedError(e models.ErrorEvent) {
	c.state.ActiveErrors = append(c.state.ActiveErrors, e)
	c.state.ErrorHistory = append(c.state.ErrorHistory, e)
	if n := len(c.state.ErrorHistory); n > errorHistoryCap {
		c.state.ErrorHistory = c.state.ErrorHistory[n-errorHistoryCap:]
	}
}
