package mock

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/quentinrf/plant-monitor/services/apds-service/internal/domain"
	"github.com/quentinrf/plant-monitor/services/apds-service/internal/ports"
)

// FakeDriver simulates an APDS-9960 for development
// This implements the ports.SensorDriver interface
//
// Like the real part it only runs one engine at a time, so enabling a second
// mode without disabling the first is an error.
type FakeDriver struct {
	mu            sync.Mutex
	rng           *rand.Rand
	ambient       int
	variation     int
	gestureChance float64

	initialized bool
	enabled     domain.Mode
	gain        ports.ProximityGain
}

// NewFakeDriver creates a driver that returns realistic values
// ambient: average clear-channel count (e.g., 500 indoors)
// variation: +/- range (e.g., 100 means 400-600)
// gestureChance: probability that a gesture is waiting on each poll
func NewFakeDriver(ambient, variation int, gestureChance float64) *FakeDriver {
	return &FakeDriver{
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
		ambient:       ambient,
		variation:     variation,
		gestureChance: gestureChance,
		gain:          ports.ProximityGain1X,
	}
}

// Init marks the simulated device as present
func (d *FakeDriver) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.initialized = true
	d.enabled = domain.ModeIdle
	return nil
}

func (d *FakeDriver) Enable(mode domain.Mode) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.initialized {
		return domain.ErrSensorUnavailable
	}
	if !mode.IsSensing() {
		return fmt.Errorf("%w: %s", domain.ErrUnknownMode, mode)
	}
	if d.enabled != domain.ModeIdle && d.enabled != mode {
		return fmt.Errorf("%s engine still running", d.enabled)
	}

	d.enabled = mode
	return nil
}

func (d *FakeDriver) Disable(mode domain.Mode) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.enabled != mode {
		return fmt.Errorf("%s engine is not running", mode)
	}

	d.enabled = domain.ModeIdle
	return nil
}

// ReadAmbientLight returns a simulated clear-channel count
// Simulates realistic variance (lights flicker, clouds pass, etc.)
func (d *FakeDriver) ReadAmbientLight() (int, error) {
	return d.readColor(1.0)
}

func (d *FakeDriver) ReadRedLight() (int, error) {
	return d.readColor(0.35)
}

func (d *FakeDriver) ReadGreenLight() (int, error) {
	return d.readColor(0.40)
}

func (d *FakeDriver) ReadBlueLight() (int, error) {
	return d.readColor(0.25)
}

func (d *FakeDriver) readColor(share float64) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.enabled != domain.ModeLight {
		return 0, fmt.Errorf("light engine is not running")
	}

	return int(float64(d.vary(d.ambient)) * share), nil
}

// ReadProximity returns a simulated proximity count scaled by the gain
func (d *FakeDriver) ReadProximity() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.enabled != domain.ModeProximity {
		return 0, fmt.Errorf("proximity engine is not running")
	}

	p := d.rng.Intn(64) * int(d.gain.Multiplier())
	if p > 255 {
		p = 255
	}
	return p, nil
}

func (d *FakeDriver) IsGestureAvailable() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.enabled == domain.ModeGesture && d.rng.Float64() < d.gestureChance
}

// ReadGesture returns a random direction code
func (d *FakeDriver) ReadGesture() (domain.DirectionCode, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.enabled != domain.ModeGesture {
		return domain.DirNone, fmt.Errorf("gesture engine is not running")
	}

	return domain.DirectionCode(d.rng.Intn(int(domain.DirAll) + 1)), nil
}

func (d *FakeDriver) SetProximityGain(gain ports.ProximityGain) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if gain > ports.ProximityGain8X {
		return fmt.Errorf("invalid proximity gain %d", gain)
	}
	d.gain = gain
	return nil
}

// Close is a no-op for fake driver
func (d *FakeDriver) Close() error {
	return nil
}

func (d *FakeDriver) vary(base int) int {
	if d.variation <= 0 {
		return base
	}
	v := base + d.rng.Intn(2*d.variation+1) - d.variation

	// Ensure non-negative
	if v < 0 {
		v = 0
	}
	return v
}
