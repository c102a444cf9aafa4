package port

import (
	"math"
	"sync"

	"sterilizer_control/internal/models"
)

// ----------- Simulation constants -----------
const (
	AmbientTempC       = 20.0  // °C
	AmbientPressureMPa = 0.0   // gauge MPa
	GeneratorTargetC   = 150.0 // heater setpoint °C
	GeneratorCeilingC  = 160.0 // numeric clamp °C
	ChamberCeilingC    = 150.0
	PressureFloorMPa   = -0.09
	PressureCeilMPa    = 0.40
	VacuumTargetMPa    = 0.005 // pump suction floor
	SatCurveMaxMPa     = 0.35  // saturation pressure at/above 134°C

	// First-order relaxation time constants, seconds. Heating is faster than
	// cooling, steam transfer is faster than passive loss.
	tauGenHeat     = 40.0
	tauGenCool     = 200.0
	tauSteamIn     = 10.0
	tauVacuum      = 5.0
	tauExhaust     = 6.0
	tauPassiveTemp = 120.0
	tauPassivePres = 90.0
	tauJacket      = 30.0

	waterBurnPctPerSec = 0.02 // heater-on depletion
	waterFillPctPerSec = 1.0  // water pump refill
)

// actuators is the persistent actuator latch; fields keep their last written
// value until overwritten.
type actuators struct {
	heater       bool
	steamInlet   bool
	steamExhaust bool
	vacuumPump   bool
	waterPump    bool
	doorLock     bool
}

// Simulation owns the raw (uncalibrated) physical state and advances it with
// a first-order exponential-approach model. Plausible, monotonic and bounded;
// not a thermodynamic solver.
type Simulation struct {
	mu sync.Mutex

	chamberPressure float64
	chamberTemp     float64
	genPressure     float64
	genTemp         float64
	genWater        float64
	jacketPressure  float64
	doorOpen        bool

	act actuators
}

// NewSimulation returns a backend at ambient conditions with a closed,
// unlocked door and a full generator reservoir.
func NewSimulation() *Simulation {
	return &Simulation{
		chamberPressure: AmbientPressureMPa,
		chamberTemp:     AmbientTempC,
		genPressure:     AmbientPressureMPa,
		genTemp:         AmbientTempC,
		genWater:        100,
		jacketPressure:  AmbientPressureMPa,
	}
}

var _ Port = (*Simulation)(nil)
var _ Advancer = (*Simulation)(nil)

// approach relaxes current toward target with time constant tau over dt.
func approach(current, target, dt, tau float64) float64 {
	if tau <= 0 {
		return target
	}
	return current + (target-current)*(1-math.Exp(-dt/tau))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// saturationPressure maps generator temperature to steam pressure: zero below
// boiling, linear ramp to SatCurveMaxMPa at 134°C, flat above.
func saturationPressure(tempC float64) float64 {
	if tempC <= 100 {
		return 0
	}
	p := (tempC - 100) / (134 - 100) * SatCurveMaxMPa
	return clamp(p, 0, SatCurveMaxMPa)
}

// Advance integrates dt seconds of physics under the latched actuator flags.
func (s *Simulation) Advance(dtSeconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dtSeconds <= 0 {
		return
	}
	dt := dtSeconds

	// Generator heats toward its setpoint while powered, otherwise drifts
	// back to ambient. Heating is deliberately faster than cooling.
	if s.act.heater && s.genWater > 0 {
		s.genTemp = approach(s.genTemp, GeneratorTargetC, dt, tauGenHeat)
	} else {
		s.genTemp = approach(s.genTemp, AmbientTempC, dt, tauGenCool)
	}
	s.genTemp = clamp(s.genTemp, AmbientTempC-5, GeneratorCeilingC)
	s.genPressure = saturationPressure(s.genTemp)

	// Steam admission couples the chamber to the generator.
	if s.act.steamInlet {
		s.chamberPressure = approach(s.chamberPressure, s.genPressure, dt, tauSteamIn)
		s.chamberTemp = approach(s.chamberTemp, s.genTemp, dt, tauSteamIn)
	} else {
		s.chamberTemp = approach(s.chamberTemp, AmbientTempC, dt, tauPassiveTemp)
	}

	if s.act.vacuumPump {
		s.chamberPressure = approach(s.chamberPressure, VacuumTargetMPa-0.01, dt, tauVacuum)
	} else if s.act.steamExhaust {
		s.chamberPressure = approach(s.chamberPressure, AmbientPressureMPa, dt, tauExhaust)
	} else if !s.act.steamInlet {
		s.chamberPressure = approach(s.chamberPressure, AmbientPressureMPa, dt, tauPassivePres)
	}

	s.jacketPressure = approach(s.jacketPressure, s.genPressure*0.9, dt, tauJacket)

	if s.act.heater {
		s.genWater -= waterBurnPctPerSec * dt
	}
	if s.act.waterPump {
		s.genWater += waterFillPctPerSec * dt
	}

	// Final safety clamps.
	s.genWater = clamp(s.genWater, 0, 100)
	s.chamberTemp = clamp(s.chamberTemp, AmbientTempC-5, ChamberCeilingC)
	s.chamberPressure = clamp(s.chamberPressure, PressureFloorMPa, PressureCeilMPa)
	s.jacketPressure = clamp(s.jacketPressure, PressureFloorMPa, PressureCeilMPa)
}

// ReadSensors returns one consistent snapshot of the raw physical state.
func (s *Simulation) ReadSensors() (models.PhysicalReading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.PhysicalReading{
		ChamberPressureMPa:   s.chamberPressure,
		ChamberTempC:         s.chamberTemp,
		GeneratorPressureMPa: s.genPressure,
		GeneratorTempC:       s.genTemp,
		GeneratorWaterPct:    s.genWater,
		JacketPressureMPa:    s.jacketPressure,
		DoorOpen:             s.doorOpen,
		DoorLocked:           s.act.doorLock,
	}, nil
}

// WriteActuators latches every non-nil field; nil fields keep their state.
func (s *Simulation) WriteActuators(cmd models.ActuatorCommand) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cmd.Heater != nil {
		s.act.heater = *cmd.Heater
	}
	if cmd.SteamInlet != nil {
		s.act.steamInlet = *cmd.SteamInlet
	}
	if cmd.SteamExhaust != nil {
		s.act.steamExhaust = *cmd.SteamExhaust
	}
	if cmd.VacuumPump != nil {
		s.act.vacuumPump = *cmd.VacuumPump
	}
	if cmd.WaterPump != nil {
		s.act.waterPump = *cmd.WaterPump
	}
	if cmd.DoorLock != nil {
		s.act.doorLock = *cmd.DoorLock
	}
	return nil
}

// SetDoorOpen models the operator moving the door. Opening is refused while
// the lock solenoid holds; returns the resulting door state.
func (s *Simulation) SetDoorOpen(open bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if open && s.act.doorLock {
		return s.doorOpen
	}
	s.doorOpen = open
	return s.doorOpen
}

// Inject overrides raw state for fault-injection tests and demos. Nil fields
// are left alone.
func (s *Simulation) Inject(chamberPressure, chamberTemp, genWater *float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if chamberPressure != nil {
		s.chamberPressure = *chamberPressure
	}
	if chamberTemp != nil {
		s.chamberTemp = *chamberTemp
	}
	if genWater != nil {
		s.genWater = *genWater
	}
}
