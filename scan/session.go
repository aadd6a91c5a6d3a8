package scan

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// Session pass phases, for combined progress reporting
const (
	phaseIdle = iota
	phaseCollecting
	phaseScanning
)

// SessionOption configures a Session
type SessionOption func(*Session)

// WithSessionCollector replaces the default collector
func WithSessionCollector(c *Collector) SessionOption {
	return func(s *Session) {
		s.collector = c
	}
}

// WithSessionScanner replaces the default scanner
func WithSessionScanner(sc *Scanner) SessionOption {
	return func(s *Session) {
		s.scanner = sc
	}
}

// Session drives the collect-then-filter cycle: each pass re-reads memory
// (all of it on the first pass, only the survivors afterwards), filters it by
// the constraint collection, and commits the survivor snapshot as the
// baseline for the next pass.
//
// The constraint collection returned by Constraints belongs to the caller and
// may be edited at any time; every pass executes against a deep copy taken at
// pass start, so a running scan never observes edits.
type Session struct {
	collector *Collector
	scanner   *Scanner
	log       *logger.Logger

	constraints *Collection

	mu      sync.Mutex // serializes passes and guards current/passes
	current *Snapshot
	passes  int

	phase atomic.Int32
}

// NewSession creates a session scanning src with elements of type t
func NewSession(src MemorySource, t ElementType, opts ...SessionOption) *Session {
	s := &Session{
		collector:   NewCollector(src),
		scanner:     NewScanner(),
		log:         logger.NewLogger(coloransi.Color(coloransi.ColorWhite, coloransi.ColorOrange, "session")),
		constraints: NewCollection(t),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Constraints returns the live, caller-editable constraint collection
func (s *Session) Constraints() *Collection {
	return s.constraints
}

// Current returns the baseline snapshot from the last committed pass, or nil
// before the first pass
func (s *Session) Current() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Passes returns the number of committed passes
func (s *Session) Passes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.passes
}

// Reset discards the baseline so the next pass enumerates memory from scratch
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.passes = 0
	s.log.Infoln("Session reset")
}

// Progress returns combined pass progress in [0, 1], collection weighted as
// the first half and filtering as the second
func (s *Session) Progress() float64 {
	switch s.phase.Load() {
	case phaseCollecting:
		return 0.5 * s.collector.Progress()
	case phaseScanning:
		return 0.5 + 0.5*s.scanner.Progress()
	}
	return 0
}

// ScanPass runs one collect-then-filter cycle. Extra constraints (typically
// the one being edited in a picker) are merged into a clone of the session
// collection for this pass only.
//
// On success the survivor snapshot becomes the session baseline. On failure
// or cancellation the baseline is untouched, so the pass can simply be rerun.
func (s *Session) ScanPass(ctx context.Context, extra ...Constraint) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Freeze the executing copy before any work begins
	col := s.constraints.Clone()
	for _, con := range extra {
		col.AddConstraint(con)
	}

	// Pre-flight both validation errors so no memory is read for a doomed pass
	if !col.IsValid() {
		return nil, ErrInvalidConstraints
	}
	if col.RequiresPrior() && s.current == nil {
		return nil, ErrMissingPriorSnapshot
	}

	s.phase.Store(phaseCollecting)
	defer s.phase.Store(phaseIdle)

	var collected *Snapshot
	var err error
	if s.current == nil {
		collected, err = s.collector.Collect(ctx)
	} else {
		collected, err = s.collector.Recollect(ctx, s.current)
	}
	if err != nil {
		return nil, err
	}

	s.phase.Store(phaseScanning)
	survivors, err := s.scanner.Scan(ctx, collected, col)
	if err != nil {
		return nil, err
	}

	s.current = survivors
	s.passes++
	s.log.Infoln("Pass", s.passes, "committed:",
		survivors.ElementCount(col.ElementType()), "candidates remain")

	return survivors, nil
}

// StartPass runs ScanPass asynchronously and returns its supervisor handle
func (s *Session) StartPass(ctx context.Context, extra ...Constraint) *Task {
	return newTask(ctx, s.Progress, func(taskCtx context.Context) (*Snapshot, error) {
		return s.ScanPass(taskCtx, extra...)
	})
}
