package events

import (
	"log"
	"sync"
)

// Sink receives domain events.
type Sink interface {
	Emit(event Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

// Emit calls f.
func (f SinkFunc) Emit(event Event) { f(event) }

// Discard drops every event.
var Discard Sink = SinkFunc(func(Event) {})

// Collector keeps events in emission order.
type Collector struct {
	mu     sync.Mutex
	events []Event
}

// NewCollector constructs an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Emit appends the event.
func (c *Collector) Emit(event Event) {
	c.mu.Lock()
	c.events = append(c.events, event)
	c.mu.Unlock()
}

// Events returns a copy of the collected events.
func (c *Collector) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

// HasErrors reports whether any error level event was collected.
func (c *Collector) HasErrors() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.events {
		if e.IsError() {
			return true
		}
	}
	return false
}

// Count returns the number of events with the given code.
func (c *Collector) Count(code Code) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.events {
		if e.Code == code {
			n++
		}
	}
	return n
}

// LogSink writes events to a logger.
type LogSink struct {
	logger *log.Logger
	debug  bool
}

// NewLogSink constructs a log sink. Debug events are dropped unless debug is set.
func NewLogSink(logger *log.Logger, debug bool) *LogSink {
	if logger == nil {
		logger = log.Default()
	}
	return &LogSink{logger: logger, debug: debug}
}

// Emit logs the event with its level prefix.
func (s *LogSink) Emit(event Event) {
	if event.Level == LevelDebug && !s.debug {
		return
	}
	s.logger.Printf("%7s %s", event.Level, event.String())
}

// Multi fans an event out to every non-nil sink.
func Multi(sinks ...Sink) Sink {
	var active []Sink
	for _, s := range sinks {
		if s != nil {
			active = append(active, s)
		}
	}
	return SinkFunc(func(event Event) {
		for _, s := range active {
			s.Emit(event)
		}
	})
}
