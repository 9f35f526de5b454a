package ports

import (
	"fmt"
	"strings"

	"github.com/quentinrf/plant-monitor/services/apds-service/internal/domain"
)

// SensorDriver is the capability set of an APDS-9960 style sensor.
// This is a PORT - adapters (hardware, Mock) will implement it
//
// The session holds a non-owning reference: whoever creates the driver closes it.
type SensorDriver interface {
	// Init checks the device is present and puts it in a known state
	Init() error

	// Enable starts a sensing mode; Disable stops it
	Enable(mode domain.Mode) error
	Disable(mode domain.Mode) error

	ReadAmbientLight() (int, error)
	ReadRedLight() (int, error)
	ReadGreenLight() (int, error)
	ReadBlueLight() (int, error)
	ReadProximity() (int, error)

	// IsGestureAvailable reports whether a gesture is waiting to be read
	IsGestureAvailable() bool

	// ReadGesture returns the raw code of the last detected gesture
	ReadGesture() (domain.DirectionCode, error)

	SetProximityGain(gain ProximityGain) error

	// Close releases any resources
	Close() error
}

// ProximityGain is the proximity receiver gain
type ProximityGain uint8

const (
	ProximityGain1X ProximityGain = iota
	ProximityGain2X
	ProximityGain4X
	ProximityGain8X
)

// Multiplier returns the gain as a factor (1, 2, 4 or 8)
func (g ProximityGain) Multiplier() uint8 {
	return 1 << g
}

func (g ProximityGain) String() string {
	return fmt.Sprintf("%dx", g.Multiplier())
}

// ParseProximityGain reads "1x", "2x", "4x" or "8x"
func ParseProximityGain(s string) (ProximityGain, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1x", "1":
		return ProximityGain1X, nil
	case "2x", "2":
		return ProximityGain2X, nil
	case "4x", "4":
		return ProximityGain4X, nil
	case "8x", "8":
		return ProximityGain8X, nil
	}
	return ProximityGain1X, fmt.Errorf("invalid proximity gain %q", s)
}
