package domain

import (
	"context"
	"time"
)

// ReadingRepository defines operations for storing/retrieving readings
// This is a PORT - adapters (SQLite, MySQL, Memory) will implement it
type ReadingRepository interface {
	// SaveReading persists a reading and assigns its ID
	SaveReading(ctx context.Context, reading *Reading) error

	// GetReading retrieves a specific reading by ID
	GetReading(ctx context.Context, id int64) (*Reading, error)

	// GetReadingsInRange retrieves readings of a mode within time range.
	// ModeIdle matches every mode.
	// Uses a half-open interval: inclusive start, exclusive end [start, end).
	GetReadingsInRange(ctx context.Context, mode Mode, start, end time.Time) ([]*Reading, error)

	// GetLatestReading retrieves the most recent reading of a mode
	GetLatestReading(ctx context.Context, mode Mode) (*Reading, error)

	// DeleteOldReadings removes readings older than specified duration
	// Business rule: We might want to retain only last 30 days
	DeleteOldReadings(ctx context.Context, olderThan time.Duration) error
}
