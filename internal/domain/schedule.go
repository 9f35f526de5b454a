package domain

import (
	"fmt"
	"strings"
	"time"
)

// Step is one entry of a schedule: enter Mode and stay there for Duration
type Step struct {
	Mode     Mode
	Duration time.Duration
}

// Schedule is the ordered sequence of modes a session walks through.
// After the last step has elapsed the session stops.
type Schedule []Step

// DefaultSchedule is the demonstration sequence: 5s of colour, 5s of proximity, 10s of gestures
func DefaultSchedule() Schedule {
	return Schedule{
		{Mode: ModeLight, Duration: 5 * time.Second},
		{Mode: ModeProximity, Duration: 5 * time.Second},
		{Mode: ModeGesture, Duration: 10 * time.Second},
	}
}

// Validate checks that the schedule is non-empty, only names sensing modes,
// and moves strictly forward (no mode is entered twice or after a later one).
func (s Schedule) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidSchedule)
	}

	prev := ModeIdle
	for i, step := range s {
		if !step.Mode.IsSensing() {
			return fmt.Errorf("%w: step %d: %s is not a sensing mode", ErrInvalidSchedule, i, step.Mode)
		}
		if step.Mode <= prev {
			return fmt.Errorf("%w: step %d: %s cannot follow %s", ErrInvalidSchedule, i, step.Mode, prev)
		}
		if step.Duration <= 0 {
			return fmt.Errorf("%w: step %d: duration must be positive", ErrInvalidSchedule, i)
		}
		prev = step.Mode
	}

	return nil
}

// Total returns the time it takes to walk the whole schedule
func (s Schedule) Total() time.Duration {
	var total time.Duration
	for _, step := range s {
		total += step.Duration
	}
	return total
}

func (s Schedule) String() string {
	parts := make([]string, len(s))
	for i, step := range s {
		parts[i] = fmt.Sprintf("%s:%s", step.Mode, step.Duration)
	}
	return strings.Join(parts, ",")
}

// ParseSchedule reads a schedule written as "light:5s,proximity:5s,gesture:10s".
// The result is validated.
func ParseSchedule(s string) (Schedule, error) {
	var schedule Schedule

	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		name, dur, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("%w: %q: expected mode:duration", ErrInvalidSchedule, part)
		}

		mode, err := ParseMode(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
		}

		d, err := time.ParseDuration(strings.TrimSpace(dur))
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidSchedule, part, err)
		}

		schedule = append(schedule, Step{Mode: mode, Duration: d})
	}

	if err := schedule.Validate(); err != nil {
		return nil, err
	}
	return schedule, nil
}
