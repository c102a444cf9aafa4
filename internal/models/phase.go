package models

// Phase is one discrete state of the sterilization cycle state machine.
type Phase string

const (
	PhaseIdle          Phase = "IDLE"
	PhasePreheat       Phase = "PREHEAT"
	PhasePreVacuum     Phase = "PRE_VACUUM"
	PhaseHeatUp        Phase = "HEAT_UP"
	PhaseSterilization Phase = "STERILIZATION"
	PhaseDrying        Phase = "DRYING"
	PhaseDepressurize  Phase = "DEPRESSURIZE"
	PhaseCooling       Phase = "COOLING"
	PhaseComplete      Phase = "COMPLETE"
	PhaseError         Phase = "ERROR"
)

// ErrorCode identifies a controller alarm or termination cause.
type ErrorCode string

const (
	CodeHeatingTimeout ErrorCode = "HEATING_TIMEOUT"
	CodeOverpressure   ErrorCode = "OVERPRESSURE"
	CodeOvertemp       ErrorCode = "OVERTEMP"
	CodeNoWater        ErrorCode = "NO_WATER"
	CodeVacuumFail     ErrorCode = "VACUUM_FAIL"
	CodeSensorFailure  ErrorCode = "SENSOR_FAILURE"
	CodeDoorOpen       ErrorCode = "DOOR_OPEN"
	CodePowerError     ErrorCode = "POWER_ERROR"
	CodeUserStop       ErrorCode = "USER_STOP"
)

// CycleResult is the terminal verdict of a cycle.
type CycleResult string

const (
	ResultSuccess CycleResult = "success"
	ResultError   CycleResult = "error"
	ResultAborted CycleResult = "aborted"
)
