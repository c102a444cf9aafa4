// Package port is the sensor/actuator boundary of the process controller.
// The simulation backend is the in-tree implementation; the field-bus variant
// talks to real hardware and is selected at construction time.
package port

import (
	"errors"

	"sterilizer_control/internal/models"
)

// Port exchanges value snapshots with the physical process once per step.
type Port interface {
	// ReadSensors returns one consistent snapshot of the current readings.
	ReadSensors() (models.PhysicalReading, error)

	// WriteActuators applies set-if-present actuator writes. Nil fields leave
	// the corresponding actuator in its previous state.
	WriteActuators(cmd models.ActuatorCommand) error
}

// Advancer is implemented by backends that own simulated physics and must be
// driven explicitly. The real field-bus backend advances on its own.
type Advancer interface {
	Advance(dtSeconds float64)
}

// ErrFieldbusUnavailable is returned by the field-bus stub until a hardware
// adapter is wired in.
var ErrFieldbusUnavailable = errors.New("fieldbus adapter not configured")

// Fieldbus is the placeholder for the real-hardware backend.
type Fieldbus struct{}

func NewFieldbus() *Fieldbus { return &Fieldbus{} }

func (f *Fieldbus) ReadSensors() (models.PhysicalReading, error) {
	return models.PhysicalReading{}, ErrFieldbusUnavailable
}

func (f *Fieldbus) WriteActuators(models.ActuatorCommand) error {
	return ErrFieldbusUnavailable
}
