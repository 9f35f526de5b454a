package domain

import (
	"fmt"
	"time"
)

// Values holds what a poll read from the sensor. Which fields are meaningful
// depends on the mode: colour channels for Light, Proximity for Proximity,
// Gesture for Gesture.
type Values struct {
	Ambient   int
	Red       int
	Green     int
	Blue      int
	Proximity int
	Gesture   Direction
}

// Reading represents a single event emitted by a session: either a
// measurement or a classified error (Err != nil).
// This is pure domain logic - no database, no gRPC, just business concepts
type Reading struct {
	ID        int64
	SessionID string
	Mode      Mode
	Values    Values
	Timestamp time.Time
	Err       error
}

// NewReading creates a new measurement with validation
func NewReading(sessionID string, mode Mode, values Values, ts time.Time) (*Reading, error) {
	if !mode.IsSensing() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMode, mode)
	}

	// Business rule: raw counts cannot be negative
	if values.Ambient < 0 || values.Red < 0 || values.Green < 0 || values.Blue < 0 || values.Proximity < 0 {
		return nil, ErrInvalidValue
	}

	if mode == ModeGesture && values.Gesture == "" {
		values.Gesture = DirectionNone
	}

	return &Reading{
		SessionID: sessionID,
		Mode:      mode,
		Values:    values,
		Timestamp: ts,
	}, nil
}

// NewErrorReading creates an event that carries an error instead of a measurement
func NewErrorReading(sessionID string, mode Mode, values Values, ts time.Time, err error) *Reading {
	return &Reading{
		SessionID: sessionID,
		Mode:      mode,
		Values:    values,
		Timestamp: ts,
		Err:       err,
	}
}

// IsError returns true if the event reports a failure rather than a measurement
func (r *Reading) IsError() bool {
	return r.Err != nil
}

// Primary returns the value used for statistics: ambient light for Light,
// proximity for Proximity. Gestures have no numeric value.
func (r *Reading) Primary() (float64, bool) {
	switch r.Mode {
	case ModeLight:
		return float64(r.Values.Ambient), true
	case ModeProximity:
		return float64(r.Values.Proximity), true
	default:
		return 0, false
	}
}

// Summary renders the reading the way it is printed on a console
func (r *Reading) Summary() string {
	if r.Err != nil {
		return fmt.Sprintf("%s error: %v", r.Mode, r.Err)
	}

	switch r.Mode {
	case ModeLight:
		return fmt.Sprintf("Ambient: %d Red: %d Green: %d Blue: %d",
			r.Values.Ambient, r.Values.Red, r.Values.Green, r.Values.Blue)
	case ModeProximity:
		return fmt.Sprintf("Proximity: %d", r.Values.Proximity)
	case ModeGesture:
		return string(r.Values.Gesture)
	default:
		return r.Mode.String()
	}
}
