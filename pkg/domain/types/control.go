package types

import "fmt"

// ControlType represents how a control acts on a risk
type ControlType string

const (
	ControlTypePreventive ControlType = "preventive"
	ControlTypeDetective  ControlType = "detective"
	ControlTypeCorrective ControlType = "corrective"
)

// AllControlTypes returns all valid control types
func AllControlTypes() []ControlType {
	return []ControlType{
		ControlTypePreventive,
		ControlTypeDetective,
		ControlTypeCorrective,
	}
}

// IsValid checks if the control type is valid
func (t ControlType) IsValid() bool {
	switch t {
	case ControlTypePreventive,
		ControlTypeDetective,
		ControlTypeCorrective:
		return true
	default:
		return false
	}
}

// String returns the string representation of the control type
func (t ControlType) String() string {
	return string(t)
}

// ParseControlType parses a string into a ControlType
func ParseControlType(s string) (ControlType, error) {
	ct := ControlType(s)
	if !ct.IsValid() {
		return "", fmt.Errorf("invalid control type: %s", s)
	}
	return ct, nil
}

// ControlStatus represents the implementation status of a control
type ControlStatus string

const (
	ControlStatusDraft       ControlStatus = "draft"
	ControlStatusImplemented ControlStatus = "implemented"
	ControlStatusOperating   ControlStatus = "operating"
	ControlStatusRetired     ControlStatus = "retired"
)

// AllControlStatuses returns all valid control statuses
func AllControlStatuses() []ControlStatus {
	return []ControlStatus{
		ControlStatusDraft,
		ControlStatusImplemented,
		ControlStatusOperating,
		ControlStatusRetired,
	}
}

// IsValid checks if the control status is valid
func (s ControlStatus) IsValid() bool {
	switch s {
	case ControlStatusDraft,
		ControlStatusImplemented,
		ControlStatusOperating,
		ControlStatusRetired:
		return true
	default:
		return false
	}
}

// Normalize returns the status, treating empty as ControlStatusDraft.
func (s ControlStatus) Normalize() ControlStatus {
	if s == "" {
		return ControlStatusDraft
	}
	return s
}

// String returns the string representation of the control status
func (s ControlStatus) String() string {
	return string(s)
}

// ParseControlStatus parses a string into a ControlStatus
func ParseControlStatus(s string) (ControlStatus, error) {
	status := ControlStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid control status: %s", s)
	}
	return status, nil
}

// Effectiveness represents the last observed test result of a control
type Effectiveness string

const (
	EffectivenessNotTested   Effectiveness = "not-tested"
	EffectivenessIneffective Effectiveness = "ineffective"
	EffectivenessPartial     Effectiveness = "partial"
	EffectivenessEffective   Effectiveness = "effective"
)

// AllEffectiveness returns all valid effectiveness values
func AllEffectiveness() []Effectiveness {
	return []Effectiveness{
		EffectivenessNotTested,
		EffectivenessIneffective,
		EffectivenessPartial,
		EffectivenessEffective,
	}
}

// IsValid checks if the effectiveness is valid
func (e Effectiveness) IsValid() bool {
	switch e {
	case EffectivenessNotTested,
		EffectivenessIneffective,
		EffectivenessPartial,
		EffectivenessEffective:
		return true
	default:
		return false
	}
}

// Normalize returns the effectiveness, treating empty as not tested.
func (e Effectiveness) Normalize() Effectiveness {
	if e == "" {
		return EffectivenessNotTested
	}
	return e
}

// String returns the string representation of the effectiveness
func (e Effectiveness) String() string {
	return string(e)
}

// ParseEffectiveness parses a string into an Effectiveness
func ParseEffectiveness(s string) (Effectiveness, error) {
	e := Effectiveness(s)
	if !e.IsValid() {
		return "", fmt.Errorf("invalid effectiveness: %s", s)
	}
	return e, nil
}
