package websocket

import (
	"context"
	"sync"
)

// Sequencer tracks the latest request sequence number per UI control.
// Starting a newer request for a control cancels the older one, and only
// the latest request's result may be delivered.
type Sequencer struct {
	mu      sync.Mutex
	latest  map[string]int64
	cancels map[string]context.CancelFunc
}

// NewSequencer creates an empty sequencer.
func NewSequencer() *Sequencer {
	return &Sequencer{
		latest:  make(map[string]int64),
		cancels: make(map[string]context.CancelFunc),
	}
}

// Begin registers seq as the newest request for control. It returns false
// when a request with the same or a higher seq was already seen; otherwise
// any in-flight request for the control is cancelled and a context for the
// new one is returned.
func (s *Sequencer) Begin(parent context.Context, control string, seq int64) (context.Context, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if last, seen := s.latest[control]; seen && seq <= last {
		return nil, false
	}

	if cancel, ok := s.cancels[control]; ok {
		cancel()
	}

	ctx, cancel := context.WithCancel(parent)
	s.latest[control] = seq
	s.cancels[control] = cancel
	return ctx, true
}

// IsCurrent reports whether seq is still the newest request for control.
func (s *Sequencer) IsCurrent(control string, seq int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest[control] == seq
}

// Finish releases the context of a completed request. It reports whether
// the request was still current.
func (s *Sequencer) Finish(control string, seq int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.latest[control] != seq {
		return false
	}
	if cancel, ok := s.cancels[control]; ok {
		cancel()
		delete(s.cancels, control)
	}
	return true
}

// CancelAll cancels every in-flight request.
func (s *Sequencer) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for control, cancel := range s.cancels {
		cancel()
		delete(s.cancels, control)
	}
}
