package ports

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"

	"github.com/quentinrf/plant-monitor/services/apds-service/internal/domain"
)

const (
	// DefaultRetention is how long stored readings are kept
	DefaultRetention = 30 * 24 * time.Hour

	recorderBuffer = 256
	saveTimeout    = 5 * time.Second
)

// Recorder is a Sink that stores session readings and prunes old ones.
// OnReading only queues; Start does the storage work so that a slow
// repository never holds up a poll.
type Recorder struct {
	repo            domain.ReadingRepository
	retention       time.Duration
	cleanupInterval time.Duration
	queue           chan *domain.Reading
}

// NewRecorder creates a new background recorder
func NewRecorder(repo domain.ReadingRepository, retention time.Duration) *Recorder {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Recorder{
		repo:            repo,
		retention:       retention,
		cleanupInterval: 24 * time.Hour,
		queue:           make(chan *domain.Reading, recorderBuffer),
	}
}

// OnReading queues a copy of a measurement for storage. Error events are
// logged, not stored.
func (r *Recorder) OnReading(reading *domain.Reading) {
	if reading.IsError() {
		log.Warn().
			Err(reading.Err).
			Str("mode", reading.Mode.String()).
			Msg("sensor reported an error")
		return
	}

	// the repository assigns the ID on the recorder goroutine, so the
	// session's reading is never handed over
	stored := *reading

	select {
	case r.queue <- &stored:
	default:
		log.Warn().Str("mode", reading.Mode.String()).Msg("recorder queue full, dropping reading")
	}
}

// Start stores queued readings and prunes old ones
// This runs in a goroutine until context is cancelled
func (r *Recorder) Start(ctx context.Context) {
	log.Info().
		Dur("retention", r.retention).
		Msg("starting background recorder")

	r.cleanup(ctx)

	janitor, err := r.startJanitor(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to schedule retention cleanup")
	}

	for {
		select {
		case reading := <-r.queue:
			r.save(ctx, reading)

		case <-ctx.Done():
			if janitor != nil {
				if err := janitor.Shutdown(); err != nil {
					log.Warn().Err(err).Msg("retention scheduler did not stop cleanly")
				}
			}
			r.drain()
			log.Info().Msg("stopping background recorder")
			return
		}
	}
}

// startJanitor runs cleanup every cleanupInterval; a run still in progress
// when the next is due makes the scheduler skip that slot
func (r *Recorder) startJanitor(ctx context.Context) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("error creating scheduler: %w", err)
	}

	_, err = s.NewJob(
		gocron.DurationJob(r.cleanupInterval),
		gocron.NewTask(r.cleanup, ctx),
		gocron.WithName("retention"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		s.Shutdown()
		return nil, fmt.Errorf("error creating job: %w", err)
	}

	s.Start()
	return s, nil
}

// drain stores whatever is still queued once the recorder is told to stop
func (r *Recorder) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	for {
		select {
		case reading := <-r.queue:
			r.save(ctx, reading)
		default:
			return
		}
	}
}

func (r *Recorder) save(ctx context.Context, reading *domain.Reading) {
	ctx, cancel := context.WithTimeout(ctx, saveTimeout)
	defer cancel()

	if err := r.repo.SaveReading(ctx, reading); err != nil {
		log.Error().Err(err).Str("mode", reading.Mode.String()).Msg("failed to save reading")
		return
	}

	log.Debug().
		Int64("id", reading.ID).
		Str("mode", reading.Mode.String()).
		Str("reading", reading.Summary()).
		Msg("recorded reading")
}

func (r *Recorder) cleanup(ctx context.Context) {
	if err := r.repo.DeleteOldReadings(ctx, r.retention); err != nil {
		log.Error().Err(err).Msg("failed to delete old readings")
		return
	}
	log.Debug().Dur("retention", r.retention).Msg("deleted old readings")
}
