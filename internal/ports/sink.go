package ports

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/quentinrf/plant-monitor/services/apds-service/internal/domain"
)

// Sink receives every event a session emits: measurements and classified
// non-fatal errors alike.
//
// Sinks are called with the session locked and must not call back into it.
type Sink interface {
	OnReading(reading *domain.Reading)
}

// SinkFunc adapts a function to a Sink
type SinkFunc func(reading *domain.Reading)

func (f SinkFunc) OnReading(reading *domain.Reading) {
	f(reading)
}

// Lifecycle is a sensor state change
type Lifecycle int

const (
	LifecycleInitialized Lifecycle = iota
	LifecycleRunning
	LifecycleStopped
)

// LifecycleEvent reports the sensor coming up, or a mode being enabled or disabled
type LifecycleEvent struct {
	SessionID string
	Kind      Lifecycle
	Mode      domain.Mode
	Timestamp time.Time
}

// Summary renders the event the way it is printed on a console
func (e LifecycleEvent) Summary() string {
	switch e.Kind {
	case LifecycleInitialized:
		return "APDS-9960 initialization complete"
	case LifecycleRunning:
		return sensorName(e.Mode) + " sensor is now running"
	case LifecycleStopped:
		return sensorName(e.Mode) + " sensor stopped"
	default:
		return fmt.Sprintf("lifecycle(%d) %s", int(e.Kind), e.Mode)
	}
}

func sensorName(m domain.Mode) string {
	name := m.String()
	return strings.ToUpper(name[:1]) + name[1:]
}

// LifecycleSink is implemented by sinks that also follow sensor state changes.
// Like OnReading, OnLifecycle is called with the session locked.
type LifecycleSink interface {
	OnLifecycle(event LifecycleEvent)
}

// Sinks fans an event out to several sinks in order
type Sinks []Sink

func (s Sinks) OnReading(reading *domain.Reading) {
	for _, sink := range s {
		sink.OnReading(reading)
	}
}

// OnLifecycle forwards to the sinks that follow state changes
func (s Sinks) OnLifecycle(event LifecycleEvent) {
	for _, sink := range s {
		if ls, ok := sink.(LifecycleSink); ok {
			ls.OnLifecycle(event)
		}
	}
}

// ConsoleSink prints one line per event, state changes included
type ConsoleSink struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsoleSink creates a sink writing to out (usually os.Stdout)
func NewConsoleSink(out io.Writer) *ConsoleSink {
	return &ConsoleSink{out: out}
}

func (c *ConsoleSink) OnReading(reading *domain.Reading) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintln(c.out, reading.Summary())
}

func (c *ConsoleSink) OnLifecycle(event LifecycleEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintln(c.out, event.Summary())
}
