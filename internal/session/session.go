// File: session.go
package session

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"scratchCard/internal/card"
	"scratchCard/internal/reveal"
)

var (
	ErrNotWon         = errors.New("session: card has not been revealed enough to claim")
	ErrAlreadyClaimed = errors.New("session: prize already claimed")
	ErrUnknownEvent   = errors.New("session: unknown event kind")
)

// EventKind names a pointer event forwarded by a host.
type EventKind string

const (
	EventBegin EventKind = "begin"
	EventMove  EventKind = "move"
	EventEnd   EventKind = "end"
)

// Event is one pointer event in surface coordinates.
type Event struct {
	Kind EventKind `json:"kind"`
	X    int       `json:"x"`
	Y    int       `json:"y"`
}

// Result summarises a batch of events.
type Result struct {
	Revealed  float64 // fraction after the last event
	HasWon    bool
	WinSignal bool // the threshold was crossed during this batch
	Applied   int  // events that changed or could change the mask
}

// Session binds one reveal surface to the prize painted under it.
type Session struct {
	ID        string
	Prize     card.Prize
	CreatedAt time.Time

	mu      sync.Mutex
	surface *reveal.Surface
	layers  *card.Layers
	claimed bool

	lastSeen time.Time // guarded by the owning Store
}

// Apply runs events in order under the session lock. The batch is rejected as a whole
// if any event kind is unknown.
func (s *Session) Apply(events []Event) (Result, error) {
	for i, ev := range events {
		switch ev.Kind {
		case EventBegin, EventMove, EventEnd:
		default:
			return Result{}, fmt.Errorf("event %d %q: %w", i, ev.Kind, ErrUnknownEvent)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var res Result
	for _, ev := range events {
		var u reveal.Update
		switch ev.Kind {
		case EventBegin:
			u = s.surface.BeginStroke(ev.X, ev.Y)
		case EventMove:
			u = s.surface.ContinueStroke(ev.X, ev.Y)
		case EventEnd:
			s.surface.EndStroke()
			continue
		}
		if u.Applied {
			res.Applied++
		}
		if u.Won {
			res.WinSignal = true
		}
	}
	res.Revealed = s.surface.SampleCoverage()
	res.HasWon = s.surface.HasWon()
	return res, nil
}

// State returns the surface bookkeeping.
func (s *Session) State() reveal.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.surface.State()
}

// Bounds returns the surface size.
func (s *Session) Bounds() image.Rectangle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return image.Rect(0, 0, s.surface.Width(), s.surface.Height())
}

// Radius returns the brush radius in surface pixels.
func (s *Session) Radius() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.surface.Radius()
}

// Snapshot composites the current mask over the card layers.
func (s *Session) Snapshot() (*image.RGBA, error) {
	s.mu.Lock()
	mask := s.surface.Mask()
	s.mu.Unlock()
	return s.layers.Composite(mask)
}

// Claim hands out the prize once the card is won. A prize can be claimed only once.
func (s *Session) Claim() (card.Prize, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.surface.HasWon() {
		return card.Prize{}, ErrNotWon
	}
	if s.claimed {
		return card.Prize{}, ErrAlreadyClaimed
	}
	s.claimed = true
	return s.Prize, nil
}
