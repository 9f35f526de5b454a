package domain

import (
	"errors"
	"testing"
	"time"
)

func TestNewReading(t *testing.T) {
	tests := []struct {
		name    string
		mode    Mode
		values  Values
		wantErr error
	}{
		{
			name:   "valid light reading",
			mode:   ModeLight,
			values: Values{Ambient: 120, Red: 40, Green: 50, Blue: 30},
		},
		{
			name:   "zero proximity is valid",
			mode:   ModeProximity,
			values: Values{Proximity: 0},
		},
		{
			name:    "negative ambient is invalid",
			mode:    ModeLight,
			values:  Values{Ambient: -1},
			wantErr: ErrInvalidValue,
		},
		{
			name:    "idle is not a sensing mode",
			mode:    ModeIdle,
			wantErr: ErrUnknownMode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reading, err := NewReading("s1", tt.mode, tt.values, time.Now())

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			if reading.Values != tt.values {
				t.Errorf("expected values %+v, got %+v", tt.values, reading.Values)
			}
		})
	}
}

func TestNewReading_GestureDefaultsToNone(t *testing.T) {
	reading, err := NewReading("s1", ModeGesture, Values{}, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reading.Values.Gesture != DirectionNone {
		t.Errorf("expected %v, got %v", DirectionNone, reading.Values.Gesture)
	}
}

func TestReading_Primary(t *testing.T) {
	tests := []struct {
		mode   Mode
		values Values
		want   float64
		ok     bool
	}{
		{mode: ModeLight, values: Values{Ambient: 300, Red: 1}, want: 300, ok: true},
		{mode: ModeProximity, values: Values{Proximity: 42}, want: 42, ok: true},
		{mode: ModeGesture, values: Values{Gesture: DirectionUp}, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			reading, _ := NewReading("s1", tt.mode, tt.values, time.Now())
			got, ok := reading.Primary()
			if got != tt.want || ok != tt.ok {
				t.Errorf("Primary() = %v, %v, want %v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestReading_Summary(t *testing.T) {
	tests := []struct {
		reading *Reading
		want    string
	}{
		{
			reading: &Reading{Mode: ModeLight, Values: Values{Ambient: 10, Red: 1, Green: 2, Blue: 3}},
			want:    "Ambient: 10 Red: 1 Green: 2 Blue: 3",
		},
		{
			reading: &Reading{Mode: ModeProximity, Values: Values{Proximity: 7}},
			want:    "Proximity: 7",
		},
		{
			reading: &Reading{Mode: ModeGesture, Values: Values{Gesture: DirectionFar}},
			want:    "FAR",
		},
		{
			reading: &Reading{Mode: ModeProximity, Err: ErrRead},
			want:    "proximity error: failed to read sensor",
		},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.reading.Summary(); got != tt.want {
				t.Errorf("Summary() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSensorError_Is(t *testing.T) {
	cause := errors.New("i2c nack")
	err := NewSensorError(ErrEnable, ModeProximity, cause)

	if !errors.Is(err, ErrEnable) {
		t.Error("expected errors.Is(err, ErrEnable)")
	}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is(err, cause)")
	}
	if errors.Is(err, ErrDisable) {
		t.Error("did not expect errors.Is(err, ErrDisable)")
	}
	if err.IsFatal() {
		t.Error("enable errors are not fatal")
	}
	if !NewSensorError(ErrInit, ModeIdle, nil).IsFatal() {
		t.Error("init errors are fatal")
	}

	want := "failed to enable mode (proximity): i2c nack"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
