package models

// PhysicalReading is one atomically-sampled snapshot of the physical process,
// produced by the port every step. Pressures are in MPa, temperatures in °C,
// water level in percent.
type PhysicalReading struct {
	ChamberPressureMPa   float64 `json:"chamber_pressure_mpa"`
	ChamberTempC         float64 `json:"chamber_temp_c"`
	GeneratorPressureMPa float64 `json:"generator_pressure_mpa"`
	GeneratorTempC       float64 `json:"generator_temp_c"`
	GeneratorWaterPct    float64 `json:"generator_water_pct"`
	JacketPressureMPa    float64 `json:"jacket_pressure_mpa"`
	DoorOpen             bool    `json:"door_open"`
	DoorLocked           bool    `json:"door_locked"`
}

// ActuatorCommand carries set-if-present actuator writes: a nil field leaves
// the underlying actuator unchanged, a non-nil field overwrites it until the
// next write. The backend must honor this persistence convention.
type ActuatorCommand struct {
	Heater       *bool `json:"heater,omitempty"`
	SteamInlet   *bool `json:"steam_inlet,omitempty"`
	SteamExhaust *bool `json:"steam_exhaust,omitempty"`
	VacuumPump   *bool `json:"vacuum_pump,omitempty"`
	WaterPump    *bool `json:"water_pump,omitempty"`
	DoorLock     *bool `json:"door_lock,omitempty"`
}

// Bool is a convenience for building ActuatorCommand literals.
func Bool(v bool) *bool { return &v }

// CalibrationOffsets are additive corrections applied to raw readings before
// they enter the authoritative state.
type CalibrationOffsets struct {
	ChamberTempC         float64 `json:"chamber_temp_c"`
	ChamberPressureMPa   float64 `json:"chamber_pressure_mpa"`
	GeneratorTempC       float64 `json:"generator_temp_c"`
	GeneratorPressureMPa float64 `json:"generator_pressure_mpa"`
}

// CalibrationPatch is a partial update of CalibrationOffsets; nil fields keep
// the stored offset.
type CalibrationPatch struct {
	ChamberTempC         *float64 `json:"chamber_temp_c,omitempty"`
	ChamberPressureMPa   *float64 `json:"chamber_pressure_mpa,omitempty"`
	GeneratorTempC       *float64 `json:"generator_temp_c,omitempty"`
	GeneratorPressureMPa *float64 `json:"generator_pressure_mpa,omitempty"`
}

// Apply overlays non-nil patch fields onto the offsets.
func (c CalibrationOffsets) Apply(p CalibrationPatch) CalibrationOffsets {
	if p.ChamberTempC != nil {
		c.ChamberTempC = *p.ChamberTempC
	}
	if p.ChamberPressureMPa != nil {
		c.ChamberPressureMPa = *p.ChamberPressureMPa
	}
	if p.GeneratorTempC != nil {
		c.GeneratorTempC = *p.GeneratorTempC
	}
	if p.GeneratorPressureMPa != nil {
		c.GeneratorPressureMPa = *p.GeneratorPressureMPa
	}
	return c
}
