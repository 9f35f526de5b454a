package domain

import "time"

// SessionStatus is a point-in-time view of a sensor session
type SessionStatus struct {
	ID        string
	Mode      Mode
	Polling   bool
	Step      int // index into the schedule, -1 before the first transition
	StartedAt time.Time
	StoppedAt time.Time
}
