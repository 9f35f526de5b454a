package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInit indicates the sensor could not be initialised; the session never starts
	ErrInit = errors.New("sensor initialization failed")

	// ErrEnable indicates a mode could not be enabled; polling for that mode is halted
	ErrEnable = errors.New("failed to enable mode")

	// ErrDisable indicates a mode could not be disabled
	ErrDisable = errors.New("failed to disable mode")

	// ErrRead indicates a sensor value could not be read
	ErrRead = errors.New("failed to read sensor")

	// ErrConfigure indicates a mode setting (e.g. proximity gain) could not be applied
	ErrConfigure = errors.New("failed to configure sensor")

	// ErrSessionStopped indicates the session is in its terminal state
	ErrSessionStopped = errors.New("session stopped")

	// ErrSessionStarted indicates Start was called on a session that already left Idle
	ErrSessionStarted = errors.New("session already started")

	// ErrSessionNotStarted indicates Run was called before Start
	ErrSessionNotStarted = errors.New("session not started")

	// ErrInvalidTransition indicates a transition that would move backwards or re-enter a mode
	ErrInvalidTransition = errors.New("invalid mode transition")

	// ErrInvalidSchedule indicates a schedule that cannot be run
	ErrInvalidSchedule = errors.New("invalid schedule")

	// ErrUnknownMode indicates a mode name that does not exist
	ErrUnknownMode = errors.New("unknown mode")

	// ErrInvalidValue indicates a negative sensor value
	ErrInvalidValue = errors.New("sensor value cannot be negative")

	// ErrReadingNotFound indicates requested reading doesn't exist
	ErrReadingNotFound = errors.New("reading not found")

	// ErrSensorUnavailable indicates sensor cannot be reached
	ErrSensorUnavailable = errors.New("sensor unavailable")
)

// SensorError is a driver failure classified by Kind (ErrInit, ErrEnable,
// ErrDisable, ErrRead or ErrConfigure) for the mode it happened in.
// errors.Is matches both the kind and the underlying driver error.
type SensorError struct {
	Kind error
	Mode Mode
	Err  error
}

// NewSensorError creates a classified sensor error
func NewSensorError(kind error, mode Mode, err error) *SensorError {
	return &SensorError{Kind: kind, Mode: mode, Err: err}
}

func (e *SensorError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v (%s): %v", e.Kind, e.Mode, e.Err)
	}
	return fmt.Sprintf("%v (%s)", e.Kind, e.Mode)
}

func (e *SensorError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// IsFatal reports whether the error ends the session
func (e *SensorError) IsFatal() bool {
	return errors.Is(e.Kind, ErrInit)
}
