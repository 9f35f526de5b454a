package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/quentinrf/plant-monitor/services/apds-service/internal/domain"
)

// ReadingRepository implements domain.ReadingRepository with in-memory storage
// Readings are kept on a timeline ordered by (timestamp, id), so range
// queries and pruning are binary searches rather than full scans.
type ReadingRepository struct {
	mu       sync.RWMutex
	byID     map[int64]*domain.Reading
	timeline []*domain.Reading
	nextID   int64
}

// NewReadingRepository creates an empty in-memory repository
func NewReadingRepository() *ReadingRepository {
	return &ReadingRepository{
		byID:   make(map[int64]*domain.Reading),
		nextID: 1,
	}
}

// SaveReading stores a reading, assigning an ID if it has none.
// Saving a reading with a known ID replaces the stored one.
func (r *ReadingRepository) SaveReading(ctx context.Context, reading *domain.Reading) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if reading.ID == 0 {
		reading.ID = r.nextID
		r.nextID++
	} else if old, ok := r.byID[reading.ID]; ok {
		r.remove(old)
	}
	if reading.ID >= r.nextID {
		r.nextID = reading.ID + 1
	}

	i := sort.Search(len(r.timeline), func(i int) bool {
		return after(r.timeline[i], reading)
	})
	r.timeline = append(r.timeline, nil)
	copy(r.timeline[i+1:], r.timeline[i:])
	r.timeline[i] = reading

	r.byID[reading.ID] = reading
	return nil
}

// GetReading retrieves a reading by ID
func (r *ReadingRepository) GetReading(ctx context.Context, id int64) (*domain.Reading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if reading, ok := r.byID[id]; ok {
		return reading, nil
	}
	return nil, domain.ErrReadingNotFound
}

// GetReadingsInRange returns the readings of a mode within [start, end).
// ModeIdle selects every mode.
func (r *ReadingRepository) GetReadingsInRange(ctx context.Context, mode domain.Mode, start, end time.Time) ([]*domain.Reading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []*domain.Reading
	for _, reading := range r.timeline[r.firstAtOrAfter(start):] {
		if !reading.Timestamp.Before(end) {
			break
		}
		if matchesMode(reading, mode) {
			results = append(results, reading)
		}
	}
	return results, nil
}

// GetLatestReading returns the most recent reading of a mode
func (r *ReadingRepository) GetLatestReading(ctx context.Context, mode domain.Mode) (*domain.Reading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := len(r.timeline) - 1; i >= 0; i-- {
		if matchesMode(r.timeline[i], mode) {
			return r.timeline[i], nil
		}
	}
	return nil, domain.ErrReadingNotFound
}

// DeleteOldReadings removes readings older than specified duration
func (r *ReadingRepository) DeleteOldReadings(ctx context.Context, olderThan time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.firstAtOrAfter(time.Now().Add(-olderThan))
	for _, reading := range r.timeline[:n] {
		delete(r.byID, reading.ID)
	}
	r.timeline = append([]*domain.Reading(nil), r.timeline[n:]...)
	return nil
}

// firstAtOrAfter returns the index of the first reading not before t
func (r *ReadingRepository) firstAtOrAfter(t time.Time) int {
	return sort.Search(len(r.timeline), func(i int) bool {
		return !r.timeline[i].Timestamp.Before(t)
	})
}

func (r *ReadingRepository) remove(reading *domain.Reading) {
	for i, candidate := range r.timeline {
		if candidate.ID == reading.ID {
			r.timeline = append(r.timeline[:i], r.timeline[i+1:]...)
			break
		}
	}
	delete(r.byID, reading.ID)
}

// after orders the timeline by timestamp, then ID
func after(a, b *domain.Reading) bool {
	if a.Timestamp.Equal(b.Timestamp) {
		return a.ID > b.ID
	}
	return a.Timestamp.After(b.Timestamp)
}

func matchesMode(reading *domain.Reading, mode domain.Mode) bool {
	return mode == domain.ModeIdle || reading.Mode == mode
}
