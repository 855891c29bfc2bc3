package vdl

import "fmt"

// ProtocolError is returned when the device answers with a failure status
// or with a response length the protocol does not expect.
type ProtocolError struct {
	// Op is the protocol operation, e.g. "set config".
	Op  string
	Msg string
	// Status is the device reported status byte, valid if HasStatus is set.
	Status    byte
	HasStatus bool
}

func (e *ProtocolError) Error() string {
	if e.HasStatus {
		return fmt.Sprintf("vdl: %s: %s, status %#02x", e.Op, e.Msg, e.Status)
	}
	return fmt.Sprintf("vdl: %s: %s", e.Op, e.Msg)
}

// FormatError is returned when a payload does not have its fixed size.
type FormatError struct {
	Size int
	Want int
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("vdl: invalid config size %d, want %d bytes", e.Size, e.Want)
}

// ValidationError is returned by a setter receiving a value outside its bounds.
type ValidationError struct {
	Field string
	Value int
	Min   int
	Max   int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("vdl: %s must be in range %d-%d, got %d", e.Field, e.Min, e.Max, e.Value)
}

// validate checks that v is within [min, max].
func validate(field string, v, min, max int) error {
	if v < min || v > max {
		return &ValidationError{Field: field, Value: v, Min: min, Max: max}
	}
	return nil
}
