// Package timer provides the session stopwatch that timestamps recorded events.
package timer

import "time"

// Clock supplies wall time
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// System is the wall clock
var System Clock = realClock{}

// Handler replaces the default behaviour of Start or Reset
type Handler func() error

// Stopwatch measures elapsed session time
// Start and Reset can be rewired to open and close a recording session; Begin
// and Halt always drive the clock itself.
type Stopwatch struct {
	clock   Clock
	started time.Time
	frozen  time.Duration
	running bool

	onStart Handler
	onReset Handler
}

// New creates a stopped stopwatch reading from clock
// A nil clock uses the system clock.
func New(clock Clock) *Stopwatch {
	if clock == nil {
		clock = System
	}
	return &Stopwatch{clock: clock}
}

// SetHandlers installs the start and reset handlers
// A nil handler restores the default behaviour.
func (s *Stopwatch) SetHandlers(start, reset Handler) {
	s.onStart = start
	s.onReset = reset
}

// Start runs the start handler, or Begin when none is installed
func (s *Stopwatch) Start() error {
	if s.onStart != nil {
		return s.onStart()
	}
	s.Begin()
	return nil
}

// Reset runs the reset handler, or Halt when none is installed
func (s *Stopwatch) Reset() error {
	if s.onReset != nil {
		return s.onReset()
	}
	s.Halt()
	return nil
}

// Begin zeroes the elapsed time and starts counting
// It does nothing when already running.
func (s *Stopwatch) Begin() {
	if s.running {
		return
	}
	s.frozen = 0
	s.started = s.clock.Now()
	s.running = true
}

// Halt stops counting and keeps the last elapsed value
func (s *Stopwatch) Halt() {
	if !s.running {
		return
	}
	s.frozen = s.since()
	s.running = false
}

// Running reports whether the stopwatch is counting
func (s *Stopwatch) Running() bool {
	return s.running
}

// Elapsed returns the elapsed time in seconds
func (s *Stopwatch) Elapsed() float64 {
	if s.running {
		return s.since().Seconds()
	}
	return s.frozen.Seconds()
}

func (s *Stopwatch) since() time.Duration {
	d := s.clock.Now().Sub(s.started)
	if d < 0 {
		return 0
	}
	return d
}
