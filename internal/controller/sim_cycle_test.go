package controller

import (
	"context"
	"testing"

	"sterilizer_control/internal/models"
	"sterilizer_control/internal/port"
)

// End-to-end run against the physics backend: the controller must take a full
// program from Preheat to Complete without tripping a single alarm, driven
// only by simulated sensor values.
func TestFullCycleAgainstSimulation(t *testing.T) {
	prog := models.ProgramConfig{
		ID:             "P134",
		Name:           "Standard 134°C",
		SetTempC:       134,
		HoldSeconds:    60,
		PreVacuumCount: 3,
		DryingSeconds:  30,
	}
	sim := port.NewSimulation()
	c := New(sim, []models.ProgramConfig{prog}, nil, nil)
	ctx := context.Background()

	c.CloseDoor()
	step(t, c, 1)
	if err := c.StartCycle(ctx, prog.ID); err != nil {
		t.Fatalf("StartCycle: %v", err)
	}

	var sequence []models.Phase
	last := models.Phase("")
	pulsesAtHeatUp := 0
	for i := 0; i < 2000; i++ {
		sim.Advance(1)
		step(t, c, 1)
		st := c.Snapshot()
		if st.Cycle.Phase != last {
			sequence = append(sequence, st.Cycle.Phase)
			last = st.Cycle.Phase
			if st.Cycle.Phase == models.PhaseHeatUp {
				pulsesAtHeatUp = st.Cycle.PulseCount
			}
		}
		if len(st.ActiveErrors) != 0 {
			t.Fatalf("unexpected alarm at t=%ds in %s: %+v", i, st.Cycle.Phase, st.ActiveErrors)
		}
		if st.Cycle.Phase == models.PhaseComplete {
			break
		}
	}

	want := []models.Phase{
		models.PhasePreheat,
		models.PhasePreVacuum,
		models.PhaseHeatUp,
		models.PhaseSterilization,
		models.PhaseDrying,
		models.PhaseDepressurize,
		models.PhaseCooling,
		models.PhaseComplete,
	}
	if len(sequence) != len(want) {
		t.Fatalf("phase sequence %v, want %v", sequence, want)
	}
	for i := range want {
		if sequence[i] != want[i] {
			t.Fatalf("phase sequence %v, want %v", sequence, want)
		}
	}
	if pulsesAtHeatUp != prog.PreVacuumCount {
		t.Fatalf("entered HeatUp after %d pulses, want %d", pulsesAtHeatUp, prog.PreVacuumCount)
	}

	st := c.Snapshot()
	if len(st.CycleHistory) != 1 {
		t.Fatalf("expected one summary, got %d", len(st.CycleHistory))
	}
	sum := st.CycleHistory[0]
	if sum.Result != models.ResultSuccess {
		t.Fatalf("expected success, got %+v", sum)
	}
	if sum.PeakTempC < prog.SetTempC-2 {
		t.Fatalf("peak temperature %.1f never reached the hold band", sum.PeakTempC)
	}
	if sum.PeakPressureMPa < 0.2 {
		t.Fatalf("peak pressure %.3f implausibly low for a steam hold", sum.PeakPressureMPa)
	}
}

// Leak test against the simulation: a tight chamber drifts back toward
// ambient slowly enough to pass the acceptance rate.
func TestVacuumLeakTestAgainstSimulation(t *testing.T) {
	sim := port.NewSimulation()
	c := New(sim, nil, nil, nil)
	step(t, c, 1)

	if err := c.StartVacuumTest(30, 60); err != nil {
		t.Fatalf("StartVacuumTest: %v", err)
	}
	for i := 0; i < 200; i++ {
		sim.Advance(1)
		step(t, c, 1)
		if !c.Snapshot().VacuumTest.Active {
			break
		}
	}

	st := c.Snapshot()
	if st.VacuumTest.Active {
		t.Fatalf("test never completed")
	}
	if len(st.VacuumHistory) != 1 {
		t.Fatalf("expected one result, got %d", len(st.VacuumHistory))
	}
	res := st.VacuumHistory[0]
	if !res.Passed {
		t.Fatalf("sealed simulated chamber must pass, got rate %.5f", res.LeakRateMPaMin)
	}
	if res.LeakRateMPaMin < 0 {
		t.Fatalf("leak rate must be non-negative, got %v", res.LeakRateMPaMin)
	}
}

// Fault injection through the simulation: overpressure mid-hold must abort
// the cycle with the matching code.
func TestOverpressureInjectionAgainstSimulation(t *testing.T) {
	prog := models.ProgramConfig{
		ID:             "P134",
		Name:           "Standard 134°C",
		SetTempC:       134,
		HoldSeconds:    300,
		PreVacuumCount: 1,
		DryingSeconds:  30,
	}
	sim := port.NewSimulation()
	c := New(sim, []models.ProgramConfig{prog}, nil, nil)
	ctx := context.Background()

	c.CloseDoor()
	step(t, c, 1)
	if err := c.StartCycle(ctx, prog.ID); err != nil {
		t.Fatalf("StartCycle: %v", err)
	}
	for i := 0; i < 1000; i++ {
		sim.Advance(1)
		step(t, c, 1)
		if c.Snapshot().Cycle.Phase == models.PhaseSterilization {
			break
		}
	}
	if got := c.Snapshot().Cycle.Phase; got != models.PhaseSterilization {
		t.Fatalf("never reached the hold, stuck at %s", got)
	}

	burst := 0.39
	sim.Inject(&burst, nil, nil)
	sim.Advance(0.1)
	step(t, c, 1)

	st := c.Snapshot()
	if st.Cycle.Phase != models.PhaseError || st.Cycle.Active {
		t.Fatalf("expected Error after injection, got %+v", st.Cycle)
	}
	if len(st.ActiveErrors) != 1 || st.ActiveErrors[0].Code != models.CodeOverpressure {
		t.Fatalf("expected OVERPRESSURE, got %+v", st.ActiveErrors)
	}
	if len(st.CycleHistory) != 1 || st.CycleHistory[0].Result != models.ResultError {
		t.Fatalf("expected an error summary, got %+v", st.CycleHistory)
	}
}
