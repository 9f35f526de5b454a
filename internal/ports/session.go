package ports

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quentinrf/plant-monitor/services/apds-service/internal/domain"
)

// DefaultWarmup is how long a freshly enabled mode is left alone before the first read
const DefaultWarmup = 200 * time.Millisecond

// SessionOption configures a Session
type SessionOption func(*Session)

// WithClock replaces the wall clock (tests use a fake one)
func WithClock(clock clockwork.Clock) SessionOption {
	return func(s *Session) {
		s.clock = clock
	}
}

// WithPollInterval overrides the poll interval of a mode
func WithPollInterval(mode domain.Mode, interval time.Duration) SessionOption {
	return func(s *Session) {
		if interval > 0 {
			s.intervals[mode] = interval
		}
	}
}

// WithWarmup sets the delay between enabling a mode and the first poll
func WithWarmup(warmup time.Duration) SessionOption {
	return func(s *Session) {
		s.warmup = warmup
	}
}

// WithProximityGain sets the gain applied before proximity sensing starts
func WithProximityGain(gain ProximityGain) SessionOption {
	return func(s *Session) {
		s.gain = gain
	}
}

// WithSessionID sets the session id instead of generating one
func WithSessionID(id string) SessionOption {
	return func(s *Session) {
		s.id = id
	}
}

// pollTimer is the single periodic timer of a session, bound to the mode it was started for
type pollTimer struct {
	mode     domain.Mode
	ticker   clockwork.Ticker
	readyAt  time.Time
	lastDone time.Time
}

// Session walks a sensor through a schedule of modes.
//
// Every driver call happens with mu held, either from Run's loop or from an
// explicit operation, so transitions and polls never interleave. A transition
// cancels the poll timer before touching the driver; ticks that were already
// delivered are dropped because they no longer match the session's timer.
type Session struct {
	id     string
	driver SensorDriver
	sink   Sink
	clock  clockwork.Clock

	intervals map[domain.Mode]time.Duration
	warmup    time.Duration
	gain      ProximityGain

	mu        sync.Mutex
	mode      domain.Mode
	schedule  domain.Schedule
	step      int
	poll      *pollTimer
	deadline  clockwork.Timer
	startedAt time.Time
	stoppedAt time.Time

	running atomic.Bool
	wake    chan struct{}
	done    chan struct{}
}

// NewSession creates an idle session. The driver is borrowed, not owned.
func NewSession(driver SensorDriver, sink Sink, opts ...SessionOption) *Session {
	s := &Session{
		driver: driver,
		sink:   sink,
		clock:  clockwork.NewRealClock(),
		intervals: map[domain.Mode]time.Duration{
			domain.ModeLight:     domain.ModeLight.DefaultPollInterval(),
			domain.ModeProximity: domain.ModeProximity.DefaultPollInterval(),
			domain.ModeGesture:   domain.ModeGesture.DefaultPollInterval(),
		},
		warmup: DefaultWarmup,
		gain:   ProximityGain2X,
		step:   -1,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.sink == nil {
		s.sink = SinkFunc(func(*domain.Reading) {})
	}
	if s.id == "" {
		s.id = newSessionID()
	}

	return s
}

func newSessionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// ID returns the session identifier stamped on every reading
func (s *Session) ID() string {
	return s.id
}

// Done is closed once the session reaches Stopped
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Mode returns the active mode
func (s *Session) Mode() domain.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Status returns a snapshot of the session
func (s *Session) Status() domain.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.SessionStatus{
		ID:        s.id,
		Mode:      s.mode,
		Polling:   s.poll != nil,
		Step:      s.step,
		StartedAt: s.startedAt,
		StoppedAt: s.stoppedAt,
	}
}

// Start initialises the driver and enters the first scheduled mode.
// If the driver cannot be initialised the session stops and the returned
// error wraps domain.ErrInit; no mode is ever enabled.
func (s *Session) Start(schedule domain.Schedule) error {
	if err := schedule.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.mode {
	case domain.ModeIdle:
	case domain.ModeStopped:
		return domain.ErrSessionStopped
	default:
		return domain.ErrSessionStarted
	}

	s.schedule = schedule
	s.startedAt = s.clock.Now()

	if err := s.driver.Init(); err != nil {
		log.Error().Err(err).Str("session", s.id).Msg("sensor initialization failed")
		s.finishLocked()
		return domain.NewSensorError(domain.ErrInit, domain.ModeIdle, err)
	}

	log.Info().
		Str("session", s.id).
		Str("schedule", schedule.String()).
		Msg("sensor initialized")
	s.announceLocked(LifecycleInitialized, domain.ModeIdle)

	s.transitionLocked(schedule[0].Mode)
	s.step = 0
	return nil
}

// TransitionTo leaves the current mode and enters mode.
// Modes can only be entered moving forward; TransitionTo(ModeStopped) is Stop.
// Driver failures do not fail the call: they are reported to the sink.
func (s *Session) TransitionTo(mode domain.Mode) error {
	if mode == domain.ModeStopped {
		s.Stop()
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == domain.ModeStopped {
		return domain.ErrSessionStopped
	}
	if s.startedAt.IsZero() {
		return domain.ErrSessionNotStarted
	}
	if !mode.IsSensing() || mode <= s.mode {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, s.mode, mode)
	}

	s.transitionLocked(mode)

	// entering a later scheduled step gives it its full dwell time
	for i := s.step + 1; i < len(s.schedule); i++ {
		if s.schedule[i].Mode == mode {
			s.step = i
			if s.deadline != nil {
				s.restartDeadlineLocked()
			}
			break
		}
	}
	return nil
}

// Poll reads the active mode and emits the result. It returns the emitted
// reading, or nil when nothing was emitted (not polling, or no gesture waiting).
func (s *Session) Poll() *domain.Reading {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.poll == nil || s.poll.mode != s.mode {
		return nil
	}
	return s.pollLocked()
}

// Stop cancels polling, disables the active mode and moves to Stopped.
// No event is emitted once Stop has returned. Stopping twice is a no-op.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == domain.ModeStopped {
		return
	}

	s.cancelPollLocked()

	if s.mode.IsSensing() {
		s.disableLocked(s.mode)
	}

	s.finishLocked()
	log.Info().Str("session", s.id).Msg("session stopped")
}

// Run drives the schedule: it dwells in each step, delivers poll ticks and
// moves on when a step's time is up. A manual TransitionTo into a later step
// restarts that step's full duration. Run returns when the schedule is
// complete, Stop is called, or ctx is cancelled; the session is stopped in
// every case. Start must have succeeded first.
func (s *Session) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("session %s is already running", s.id)
	}
	defer s.running.Store(false)

	s.mu.Lock()
	switch s.mode {
	case domain.ModeIdle:
		s.mu.Unlock()
		return domain.ErrSessionNotStarted
	case domain.ModeStopped:
		s.mu.Unlock()
		return domain.ErrSessionStopped
	}
	s.restartDeadlineLocked()
	s.mu.Unlock()

	defer s.Stop()

	for {
		expired, err := s.dwell(ctx)
		if expired == nil {
			return err
		}

		if !s.advance(expired) {
			log.Info().Str("session", s.id).Msg("schedule complete")
			return nil
		}
	}
}

// dwell delivers poll ticks until a step deadline fires, returning that
// timer, or until the session ends (nil).
func (s *Session) dwell(ctx context.Context) (clockwork.Timer, error) {
	for {
		p, deadline := s.timers()

		var tick, expire <-chan time.Time
		if p != nil {
			tick = p.ticker.Chan()
		}
		if deadline != nil {
			expire = deadline.Chan()
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-s.done:
			return nil, nil
		case <-expire:
			return deadline, nil
		case <-s.wake:
			// poll timer or deadline replaced
		case at := <-tick:
			s.onTick(p, at)
		}
	}
}

// advance enters the first step after the current one whose mode lies ahead
// of the active mode. A deadline that was replaced before it could be handled
// changes nothing. It reports false once the schedule is exhausted.
func (s *Session) advance(expired clockwork.Timer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == domain.ModeStopped {
		return false
	}
	if expired != s.deadline {
		return true
	}

	for i := s.step + 1; i < len(s.schedule); i++ {
		if s.schedule[i].Mode > s.mode {
			s.transitionLocked(s.schedule[i].Mode)
			s.step = i
			s.restartDeadlineLocked()
			return true
		}
	}
	return false
}

// restartDeadlineLocked arms the deadline of the current step
func (s *Session) restartDeadlineLocked() {
	if s.deadline != nil {
		s.deadline.Stop()
	}
	s.deadline = s.clock.NewTimer(s.schedule[s.step].Duration)
	s.wakeLocked()
}

func (s *Session) timers() (*pollTimer, clockwork.Timer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.poll, s.deadline
}

func (s *Session) currentPoll() *pollTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.poll
}

func (s *Session) onTick(p *pollTimer, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.poll != p || p.mode != s.mode {
		return
	}
	if at.Before(p.readyAt) {
		return
	}
	// previous poll overran this tick: skip it
	if at.Before(p.lastDone) {
		return
	}

	s.pollLocked()
	p.lastDone = s.clock.Now()
}

func (s *Session) transitionLocked(to domain.Mode) {
	from := s.mode

	s.cancelPollLocked()

	if from.IsSensing() {
		s.disableLocked(from)
	}

	s.mode = to

	if to == domain.ModeProximity {
		if err := s.driver.SetProximityGain(s.gain); err != nil {
			s.reportLocked(domain.ErrConfigure, to, err)
		}
	}

	if err := s.driver.Enable(to); err != nil {
		s.reportLocked(domain.ErrEnable, to, err)
		return
	}

	s.startPollLocked(to)
	s.announceLocked(LifecycleRunning, to)

	log.Info().
		Str("session", s.id).
		Str("from", from.String()).
		Str("mode", to.String()).
		Dur("interval", s.intervals[to]).
		Msg("mode enabled")
}

func (s *Session) disableLocked(mode domain.Mode) {
	if err := s.driver.Disable(mode); err != nil {
		s.reportLocked(domain.ErrDisable, mode, err)
		return
	}
	log.Debug().Str("session", s.id).Str("mode", mode.String()).Msg("mode disabled")
	s.announceLocked(LifecycleStopped, mode)
}

// announceLocked tells a sink that follows state changes about one
func (s *Session) announceLocked(kind Lifecycle, mode domain.Mode) {
	ls, ok := s.sink.(LifecycleSink)
	if !ok {
		return
	}
	ls.OnLifecycle(LifecycleEvent{
		SessionID: s.id,
		Kind:      kind,
		Mode:      mode,
		Timestamp: s.clock.Now(),
	})
}

func (s *Session) startPollLocked(mode domain.Mode) {
	now := s.clock.Now()
	s.poll = &pollTimer{
		mode:    mode,
		ticker:  s.clock.NewTicker(s.intervals[mode]),
		readyAt: now.Add(s.warmup),
	}
	s.wakeLocked()
}

// wakeLocked makes Run pick up replaced timers
func (s *Session) wakeLocked() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Session) cancelPollLocked() {
	if s.poll == nil {
		return
	}
	s.poll.ticker.Stop()
	s.poll = nil
}

func (s *Session) finishLocked() {
	if s.deadline != nil {
		s.deadline.Stop()
		s.deadline = nil
	}
	s.mode = domain.ModeStopped
	s.stoppedAt = s.clock.Now()
	close(s.done)
}

// pollLocked reads the active mode and emits the result
func (s *Session) pollLocked() *domain.Reading {
	mode := s.mode
	now := s.clock.Now()

	var (
		values domain.Values
		err    error
	)

	switch mode {
	case domain.ModeLight:
		values, err = s.readLight()
	case domain.ModeProximity:
		values.Proximity, err = s.driver.ReadProximity()
	case domain.ModeGesture:
		if !s.driver.IsGestureAvailable() {
			return nil
		}
		var code domain.DirectionCode
		code, err = s.driver.ReadGesture()
		values.Gesture = domain.DirectionFromCode(code)
	default:
		return nil
	}

	var reading *domain.Reading
	if err == nil {
		reading, err = domain.NewReading(s.id, mode, values, now)
	}
	if err != nil {
		readErr := domain.NewSensorError(domain.ErrRead, mode, err)
		log.Warn().Err(err).Str("session", s.id).Str("mode", mode.String()).Msg("failed to read sensor")
		reading = domain.NewErrorReading(s.id, mode, values, now, readErr)
	}

	s.sink.OnReading(reading)
	return reading
}

func (s *Session) readLight() (domain.Values, error) {
	var (
		v   domain.Values
		err error
	)

	if v.Ambient, err = s.driver.ReadAmbientLight(); err != nil {
		return v, fmt.Errorf("ambient: %w", err)
	}
	if v.Red, err = s.driver.ReadRedLight(); err != nil {
		return v, fmt.Errorf("red: %w", err)
	}
	if v.Green, err = s.driver.ReadGreenLight(); err != nil {
		return v, fmt.Errorf("green: %w", err)
	}
	if v.Blue, err = s.driver.ReadBlueLight(); err != nil {
		return v, fmt.Errorf("blue: %w", err)
	}
	return v, nil
}

// reportLocked classifies a driver failure, logs it and emits it as an error event
func (s *Session) reportLocked(kind error, mode domain.Mode, err error) {
	sensorErr := domain.NewSensorError(kind, mode, err)

	level := zerolog.WarnLevel
	if kind == domain.ErrEnable {
		level = zerolog.ErrorLevel
	}
	log.WithLevel(level).
		Err(err).
		Str("session", s.id).
		Str("mode", mode.String()).
		Msg(kind.Error())

	s.sink.OnReading(domain.NewErrorReading(s.id, mode, domain.Values{}, s.clock.Now(), sensorErr))
}
