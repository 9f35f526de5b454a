package mock

import (
	"testing"

	"github.com/quentinrf/plant-monitor/services/apds-service/internal/domain"
	"github.com/quentinrf/plant-monitor/services/apds-service/internal/ports"
)

var _ ports.SensorDriver = (*FakeDriver)(nil)

func TestFakeDriver_RequiresInit(t *testing.T) {
	d := NewFakeDriver(500, 0, 0)

	if err := d.Enable(domain.ModeLight); err != domain.ErrSensorUnavailable {
		t.Errorf("expected ErrSensorUnavailable before Init, got %v", err)
	}
}

func TestFakeDriver_OneEngineAtATime(t *testing.T) {
	d := NewFakeDriver(500, 0, 0)
	_ = d.Init()

	if err := d.Enable(domain.ModeLight); err != nil {
		t.Fatalf("Enable(light) failed: %v", err)
	}
	if err := d.Enable(domain.ModeProximity); err == nil {
		t.Error("expected error enabling proximity while light is running")
	}
	if err := d.Disable(domain.ModeLight); err != nil {
		t.Fatalf("Disable(light) failed: %v", err)
	}
	if err := d.Enable(domain.ModeProximity); err != nil {
		t.Errorf("Enable(proximity) failed after disabling light: %v", err)
	}
}

func TestFakeDriver_ReadsFollowEnabledMode(t *testing.T) {
	d := NewFakeDriver(500, 0, 0)
	_ = d.Init()
	_ = d.Enable(domain.ModeLight)

	ambient, err := d.ReadAmbientLight()
	if err != nil {
		t.Fatalf("ReadAmbientLight failed: %v", err)
	}
	if ambient != 500 {
		t.Errorf("expected deterministic ambient 500, got %d", ambient)
	}

	if _, err := d.ReadProximity(); err == nil {
		t.Error("expected proximity read to fail while light is running")
	}
}

func TestFakeDriver_Gestures(t *testing.T) {
	d := NewFakeDriver(500, 0, 1)
	_ = d.Init()

	if d.IsGestureAvailable() {
		t.Error("no gesture can be available before the engine runs")
	}

	_ = d.Enable(domain.ModeGesture)
	if !d.IsGestureAvailable() {
		t.Error("expected a gesture with chance 1")
	}

	code, err := d.ReadGesture()
	if err != nil {
		t.Fatalf("ReadGesture failed: %v", err)
	}
	if code < domain.DirNone || code > domain.DirAll {
		t.Errorf("code %d out of range", code)
	}
}

func TestFakeDriver_ProximityGain(t *testing.T) {
	d := NewFakeDriver(500, 0, 0)

	if err := d.SetProximityGain(ports.ProximityGain8X); err != nil {
		t.Errorf("SetProximityGain(8x) failed: %v", err)
	}
	if err := d.SetProximityGain(ports.ProximityGain(9)); err == nil {
		t.Error("expected error for invalid gain")
	}
}
