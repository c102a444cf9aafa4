package models

// ProgramConfig is an immutable cycle template defined at startup.
type ProgramConfig struct {
	ID             string  `json:"id" mapstructure:"id"`
	Name           string  `json:"name" mapstructure:"name"`
	SetTempC       float64 `json:"set_temp_c" mapstructure:"set_temp_c"`
	HoldSeconds    float64 `json:"hold_seconds" mapstructure:"hold_seconds"`
	PreVacuumCount int     `json:"pre_vacuum_count" mapstructure:"pre_vacuum_count"`
	DryingSeconds  float64 `json:"drying_seconds" mapstructure:"drying_seconds"`
}

// ProgramOverride is a partial patch layered on top of a ProgramConfig when a
// cycle starts; nil fields keep the template value.
type ProgramOverride struct {
	SetTempC       *float64 `json:"set_temp_c,omitempty"`
	HoldSeconds    *float64 `json:"hold_seconds,omitempty"`
	PreVacuumCount *int     `json:"pre_vacuum_count,omitempty"`
	DryingSeconds  *float64 `json:"drying_seconds,omitempty"`
}

// Resolve returns the template with the override (if any) applied.
func (p ProgramConfig) Resolve(o *ProgramOverride) ProgramConfig {
	if o == nil {
		return p
	}
	if o.SetTempC != nil {
		p.SetTempC = *o.SetTempC
	}
	if o.HoldSeconds != nil {
		p.HoldSeconds = *o.HoldSeconds
	}
	if o.PreVacuumCount != nil {
		p.PreVacuumCount = *o.PreVacuumCount
	}
	if o.DryingSeconds != nil {
		p.DryingSeconds = *o.DryingSeconds
	}
	return p
}
