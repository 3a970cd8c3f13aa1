// Package preview orders preview renders so that only the most recently
// requested one is shown.
//
// Renders are not cancelled. A render that finishes after a newer one was
// requested is discarded on completion.
package preview

import (
	"sync"

	"github.com/ironsheep/pixelate-mcp/internal/pixelate"
)

// Ticket identifies one requested render. Tickets are issued in strictly
// increasing order.
type Ticket uint64

// Result is a finished preview render.
type Result struct {
	Ticket   Ticket
	Path     string
	Settings pixelate.Settings
	Width    int
	Height   int
	PNG      []byte
}

// Sequencer implements last-write-wins for preview renders. The zero value
// is ready to use and it is safe for concurrent use.
type Sequencer struct {
	mu      sync.Mutex
	next    Ticket
	latest  Result
	applied bool
}

// Begin issues the ticket for a new render, making every earlier ticket
// stale.
func (s *Sequencer) Begin() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return s.next
}

// Current returns the newest ticket issued, or 0 if none.
func (s *Sequencer) Current() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}

// Apply records r as the displayed preview if t is still the newest ticket.
// It reports whether r was accepted; stale results are dropped.
func (s *Sequencer) Apply(t Ticket, r Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t != s.next {
		return false
	}
	r.Ticket = t
	s.latest = r
	s.applied = true
	return true
}

// Latest returns the last accepted preview.
func (s *Sequencer) Latest() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, s.applied
}
