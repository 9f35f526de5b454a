package memory

import (
	"context"
	"testing"
	"time"

	"github.com/quentinrf/plant-monitor/services/apds-service/internal/domain"
)

func makeReading(t *testing.T, mode domain.Mode, v int, ts time.Time) *domain.Reading {
	t.Helper()
	values := domain.Values{Ambient: v}
	if mode == domain.ModeProximity {
		values = domain.Values{Proximity: v}
	}
	r, err := domain.NewReading("s1", mode, values, ts)
	if err != nil {
		t.Fatalf("unexpected error creating reading: %v", err)
	}
	return r
}

func TestSaveAssignsIDs(t *testing.T) {
	repo := NewReadingRepository()
	ctx := context.Background()

	a := makeReading(t, domain.ModeLight, 1, time.Now())
	b := makeReading(t, domain.ModeLight, 2, time.Now())
	_ = repo.SaveReading(ctx, a)
	_ = repo.SaveReading(ctx, b)

	if a.ID == 0 || b.ID == 0 || a.ID == b.ID {
		t.Fatalf("expected distinct ids, got %d and %d", a.ID, b.ID)
	}

	got, err := repo.GetReading(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetReading failed: %v", err)
	}
	if got.Values.Ambient != 2 {
		t.Errorf("expected ambient 2, got %d", got.Values.Ambient)
	}
}

func TestGetLatestReading_ByMode(t *testing.T) {
	repo := NewReadingRepository()
	ctx := context.Background()
	now := time.Now()

	_ = repo.SaveReading(ctx, makeReading(t, domain.ModeLight, 10, now.Add(-time.Minute)))
	_ = repo.SaveReading(ctx, makeReading(t, domain.ModeProximity, 20, now))

	got, err := repo.GetLatestReading(ctx, domain.ModeLight)
	if err != nil {
		t.Fatalf("GetLatestReading failed: %v", err)
	}
	if got.Values.Ambient != 10 {
		t.Errorf("expected latest light reading, got %+v", got.Values)
	}

	got, err = repo.GetLatestReading(ctx, domain.ModeIdle)
	if err != nil {
		t.Fatalf("GetLatestReading failed: %v", err)
	}
	if got.Mode != domain.ModeProximity {
		t.Errorf("expected latest of any mode to be proximity, got %v", got.Mode)
	}

	if _, err := repo.GetLatestReading(ctx, domain.ModeGesture); err != domain.ErrReadingNotFound {
		t.Errorf("expected ErrReadingNotFound, got %v", err)
	}
}

func TestGetReadingsInRange_HalfOpen(t *testing.T) {
	repo := NewReadingRepository()
	ctx := context.Background()
	ts := time.Now().Truncate(time.Second)

	_ = repo.SaveReading(ctx, makeReading(t, domain.ModeLight, 1, ts))
	_ = repo.SaveReading(ctx, makeReading(t, domain.ModeLight, 2, ts.Add(time.Second)))

	results, err := repo.GetReadingsInRange(ctx, domain.ModeLight, ts, ts.Add(time.Second))
	if err != nil {
		t.Fatalf("GetReadingsInRange failed: %v", err)
	}
	if len(results) != 1 || results[0].Values.Ambient != 1 {
		t.Errorf("expected only the reading at start, got %d results", len(results))
	}
}

func TestDeleteOldReadings(t *testing.T) {
	repo := NewReadingRepository()
	ctx := context.Background()

	old := makeReading(t, domain.ModeLight, 1, time.Now().Add(-48*time.Hour))
	recent := makeReading(t, domain.ModeLight, 2, time.Now().Add(-time.Hour))
	_ = repo.SaveReading(ctx, old)
	_ = repo.SaveReading(ctx, recent)

	if err := repo.DeleteOldReadings(ctx, 24*time.Hour); err != nil {
		t.Fatalf("DeleteOldReadings failed: %v", err)
	}

	if _, err := repo.GetReading(ctx, old.ID); err != domain.ErrReadingNotFound {
		t.Errorf("expected old reading to be deleted, got err: %v", err)
	}
	if _, err := repo.GetReading(ctx, recent.ID); err != nil {
		t.Errorf("expected recent reading to remain, got err: %v", err)
	}
}

func TestGetReadingsInRange_OrderedRegardlessOfSaveOrder(t *testing.T) {
	repo := NewReadingRepository()
	ctx := context.Background()
	ts := time.Now().Truncate(time.Second)

	// saved newest first
	for i := 3; i >= 1; i-- {
		_ = repo.SaveReading(ctx, makeReading(t, domain.ModeLight, i, ts.Add(time.Duration(i)*time.Second)))
	}
	_ = repo.SaveReading(ctx, makeReading(t, domain.ModeProximity, 9, ts.Add(2*time.Second)))

	results, err := repo.GetReadingsInRange(ctx, domain.ModeLight, ts, ts.Add(time.Minute))
	if err != nil {
		t.Fatalf("GetReadingsInRange failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 light readings, got %d", len(results))
	}
	for i, r := range results {
		if r.Values.Ambient != i+1 {
			t.Errorf("position %d: expected ambient %d, got %d", i, i+1, r.Values.Ambient)
		}
	}

	all, _ := repo.GetReadingsInRange(ctx, domain.ModeIdle, ts, ts.Add(time.Minute))
	if len(all) != 4 {
		t.Errorf("expected 4 readings across modes, got %d", len(all))
	}
}

func TestSaveReading_ReplacesKnownID(t *testing.T) {
	repo := NewReadingRepository()
	ctx := context.Background()
	ts := time.Now()

	r := makeReading(t, domain.ModeLight, 1, ts.Add(-time.Hour))
	_ = repo.SaveReading(ctx, r)

	moved := makeReading(t, domain.ModeLight, 5, ts)
	moved.ID = r.ID
	_ = repo.SaveReading(ctx, moved)

	all, _ := repo.GetReadingsInRange(ctx, domain.ModeIdle, ts.Add(-2*time.Hour), ts.Add(time.Minute))
	if len(all) != 1 || all[0].Values.Ambient != 5 {
		t.Errorf("expected the replacement only, got %d readings", len(all))
	}

	next := makeReading(t, domain.ModeLight, 6, ts)
	_ = repo.SaveReading(ctx, next)
	if next.ID == r.ID {
		t.Errorf("new reading reused id %d", next.ID)
	}
}
