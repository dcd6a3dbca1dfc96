package session

import (
	"time"

	"github.com/google/uuid"
)

// Clock supplies the wall-clock time used for every timestamp
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock
type ClockFunc func() time.Time

// Now calls f
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads time.Now
var SystemClock Clock = ClockFunc(time.Now)

// Option configures a State
type Option func(*State)

// WithClock overrides the clock
func WithClock(c Clock) Option {
	return func(s *State) { s.clock = c }
}

// WithIDGenerator overrides session ID generation
func WithIDGenerator(gen func() string) Option {
	return func(s *State) { s.newID = gen }
}

// WithBus makes the state publish to an existing bus
func WithBus(b *Bus) Option {
	return func(s *State) { s.bus = b }
}

// NewSessionID returns an opaque session identifier
func NewSessionID() string {
	return "session_" + uuid.New().String()
}
