// Package progress fans verification run state out to subscribers. The
// service keeps the latest event per run so a client that connects mid-run
// immediately sees current state instead of waiting for the next update.
package progress

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the overall state of a run.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// RefStatus is one already-processed reference and its verdict so far.
type RefStatus struct {
	Title   string `json:"title"`
	Verdict string `json:"verdict"`
}

// Event is one progress snapshot. Later events fully replace earlier ones.
type Event struct {
	RunID        string      `json:"runId"`
	Index        int         `json:"index"`
	Total        int         `json:"total"`
	CurrentTitle string      `json:"currentTitle,omitempty"`
	Status       Status      `json:"status"`
	Processed    []RefStatus `json:"processed"`
}

// ErrUnknownRun means no run with the given identifier exists.
var ErrUnknownRun = errors.New("unknown run")

// finishedGrace is how long a finished run's final state stays available
// for late subscribers before teardown.
const finishedGrace = 5 * time.Minute

type run struct {
	latest   Event
	subs     map[chan Event]struct{}
	finished bool
}

// Service tracks active runs and their subscribers.
type Service struct {
	mu   sync.Mutex
	runs map[string]*run
}

// NewService creates an empty progress service.
func NewService() *Service {
	return &Service{runs: make(map[string]*run)}
}

// StartRun registers a new run and returns its identifier.
func (s *Service) StartRun(total int) string {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[id] = &run{
		latest: Event{RunID: id, Total: total, Status: StatusProcessing},
		subs:   make(map[chan Event]struct{}),
	}
	return id
}

// Publish replaces the run's latest state and notifies subscribers. A slow
// subscriber's stale buffered event is dropped in favor of the new one;
// every subscriber always ends up with the most recent state.
func (s *Service) Publish(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[event.RunID]
	if !ok {
		return
	}
	r.latest = event
	for ch := range r.subs {
		select {
		case ch <- event:
		default:
			// Buffer holds one stale event; swap it for the new one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- event:
			default:
			}
		}
	}
}

// Subscribe returns a channel that immediately carries the run's latest
// state, then every subsequent update. The returned cancel function must be
// called when the subscriber is done.
func (s *Service) Subscribe(runID string) (<-chan Event, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[runID]
	if !ok {
		return nil, nil, ErrUnknownRun
	}

	ch := make(chan Event, 1)
	ch <- r.latest
	r.subs[ch] = struct{}{}

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if r, ok := s.runs[runID]; ok {
			delete(r.subs, ch)
		}
	}
	return ch, cancel, nil
}

// Latest returns the run's most recent state.
func (s *Service) Latest(runID string) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[runID]
	if !ok {
		return Event{}, ErrUnknownRun
	}
	return r.latest, nil
}

// Finish marks a run completed or errored, publishes the final state, and
// schedules teardown after a grace period so late subscribers can still
// fetch the outcome.
func (s *Service) Finish(runID string, status Status, processed []RefStatus) {
	s.mu.Lock()
	r, ok := s.runs[runID]
	if !ok {
		s.mu.Unlock()
		return
	}
	r.finished = true
	final := r.latest
	final.Status = status
	if processed != nil {
		final.Processed = processed
	}
	final.Index = final.Total
	final.CurrentTitle = ""
	s.mu.Unlock()

	s.Publish(final)

	time.AfterFunc(finishedGrace, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.runs, runID)
	})
}
