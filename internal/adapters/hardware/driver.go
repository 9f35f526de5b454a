package hardware

import (
	"fmt"
	"sync"

	"tinygo.org/x/drivers/apds9960"

	"github.com/quentinrf/plant-monitor/services/apds-service/internal/domain"
	"github.com/quentinrf/plant-monitor/services/apds-service/internal/ports"
)

// Gains the driver leaves untouched when the proximity gain changes
const (
	gestureGain = 1
	colorGain   = 4
)

// Driver runs an APDS-9960 over I2C using the tinygo driver.
// This implements the ports.SensorDriver interface
type Driver struct {
	mu     sync.Mutex
	bus    *errBus
	closer func() error
	dev    apds9960.Device

	// last color sample; ReadAmbientLight refreshes it
	color   [3]int
	sampled bool
}

// NewDriver wraps an open bus. The driver owns the bus and closes it on Close.
func NewDriver(bus Bus) *Driver {
	eb := &errBus{bus: bus}
	return &Driver{
		bus:    eb,
		closer: bus.Close,
		dev:    apds9960.New(eb),
	}
}

// Init checks the chip ID and loads the default configuration
func (d *Driver) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.bus.take()
	if !d.dev.Connected() {
		if err := d.bus.take(); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrSensorUnavailable, err)
		}
		return domain.ErrSensorUnavailable
	}

	d.dev.Configure(apds9960.Configuration{GestureGain: gestureGain, ColorGain: colorGain})
	return d.bus.take()
}

func (d *Driver) Enable(mode domain.Mode) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.bus.take()
	switch mode {
	case domain.ModeLight:
		d.sampled = false
		d.dev.EnableColor()
	case domain.ModeProximity:
		d.dev.EnableProximity()
	case domain.ModeGesture:
		d.dev.EnableGesture()
	default:
		return fmt.Errorf("%w: %s", domain.ErrUnknownMode, mode)
	}
	return d.bus.take()
}

// Disable turns the engines off. The chip runs one engine at a time so
// there is nothing mode specific to undo.
func (d *Driver) Disable(mode domain.Mode) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !mode.IsSensing() {
		return fmt.Errorf("%w: %s", domain.ErrUnknownMode, mode)
	}

	d.bus.take()
	d.dev.DisableAll()
	return d.bus.take()
}

// ReadAmbientLight samples all four color channels and returns the clear one
func (d *Driver) ReadAmbientLight() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.sampleLocked()
}

func (d *Driver) ReadRedLight() (int, error) {
	return d.channel(0)
}

func (d *Driver) ReadGreenLight() (int, error) {
	return d.channel(1)
}

func (d *Driver) ReadBlueLight() (int, error) {
	return d.channel(2)
}

// channel returns a channel of the last sample, sampling first if none was taken
func (d *Driver) channel(i int) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.sampled {
		if _, err := d.sampleLocked(); err != nil {
			return 0, err
		}
	}
	return d.color[i], nil
}

func (d *Driver) sampleLocked() (int, error) {
	if d.dev.GetMode() != apds9960.MODE_COLOR {
		return 0, fmt.Errorf("color engine is not running")
	}

	d.bus.take()
	r, g, b, c := d.dev.ReadColor()
	if err := d.bus.take(); err != nil {
		d.sampled = false
		return 0, err
	}

	d.color = [3]int{int(r), int(g), int(b)}
	d.sampled = true
	return int(c), nil
}

func (d *Driver) ReadProximity() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.dev.GetMode() != apds9960.MODE_PROXIMITY {
		return 0, fmt.Errorf("proximity engine is not running")
	}

	d.bus.take()
	p := d.dev.ReadProximity()
	if err := d.bus.take(); err != nil {
		return 0, err
	}
	return int(p), nil
}

// IsGestureAvailable drains the gesture FIFO and reports whether a swipe was recognised.
// A bus failure reads as "nothing available".
func (d *Driver) IsGestureAvailable() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.bus.take()
	ok := d.dev.GestureAvailable()
	if d.bus.take() != nil {
		return false
	}
	return ok
}

func (d *Driver) ReadGesture() (domain.DirectionCode, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return directionCode(d.dev.ReadGesture()), nil
}

func (d *Driver) SetProximityGain(gain ports.ProximityGain) error {
	if gain > ports.ProximityGain8X {
		return fmt.Errorf("invalid proximity gain %d", gain)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.bus.take()
	d.dev.SetGains(gain.Multiplier(), gestureGain, colorGain)
	return d.bus.take()
}

// Close powers the chip down and releases the bus
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.dev.DisableAll()
	return d.closer()
}

// directionCode maps tinygo gesture codes onto the driver codes of the domain
func directionCode(g int32) domain.DirectionCode {
	switch g {
	case apds9960.GESTURE_UP:
		return domain.DirUp
	case apds9960.GESTURE_DOWN:
		return domain.DirDown
	case apds9960.GESTURE_LEFT:
		return domain.DirLeft
	case apds9960.GESTURE_RIGHT:
		return domain.DirRight
	default:
		return domain.DirNone
	}
}
