package domain

import (
	"fmt"
	"strings"
	"time"
)

// Mode is the sensing capability currently active on the sensor.
// Modes are ordered: a session only ever moves forward through them.
type Mode int

const (
	ModeIdle Mode = iota
	ModeLight
	ModeProximity
	ModeGesture
	ModeStopped
)

var modeNames = map[Mode]string{
	ModeIdle:      "idle",
	ModeLight:     "light",
	ModeProximity: "proximity",
	ModeGesture:   "gesture",
	ModeStopped:   "stopped",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// IsSensing reports whether the mode drives the sensor (Light, Proximity or Gesture)
func (m Mode) IsSensing() bool {
	return m == ModeLight || m == ModeProximity || m == ModeGesture
}

// DefaultPollInterval returns how often a mode is polled unless configured otherwise.
// Values match the demonstration: colour and proximity twice a second, gestures every 100ms.
func (m Mode) DefaultPollInterval() time.Duration {
	switch m {
	case ModeLight, ModeProximity:
		return 500 * time.Millisecond
	case ModeGesture:
		return 100 * time.Millisecond
	default:
		return 0
	}
}

// ParseMode converts a mode name (case-insensitive) into a Mode
func ParseMode(s string) (Mode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for m, n := range modeNames {
		if n == name {
			return m, nil
		}
	}
	return ModeIdle, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}
