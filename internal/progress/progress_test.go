package progress

import (
	"errors"
	"testing"
	"time"
)

func TestLateSubscriberSeesLatestState(t *testing.T) {
	s := NewService()
	id := s.StartRun(3)

	s.Publish(Event{
		RunID: id, Index: 2, Total: 3,
		CurrentTitle: "Second paper",
		Status:       StatusProcessing,
		Processed:    []RefStatus{{Title: "First paper", Verdict: "verified"}},
	})

	ch, cancel, err := s.Subscribe(id)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer cancel()

	select {
	case event := <-ch:
		if event.Index != 2 || event.CurrentTitle != "Second paper" {
			t.Errorf("late subscriber saw %+v, want the latest state", event)
		}
		if len(event.Processed) != 1 {
			t.Errorf("Processed = %+v", event.Processed)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber never received the replayed state")
	}
}

func TestSlowSubscriberGetsNewestEvent(t *testing.T) {
	s := NewService()
	id := s.StartRun(10)

	ch, cancel, err := s.Subscribe(id)
	if err != nil {
		t.Fatal(err)
	}
	defer cancel()

	// Drain the initial replay, then publish twice without reading.
	<-ch
	s.Publish(Event{RunID: id, Index: 1, Total: 10, Status: StatusProcessing})
	s.Publish(Event{RunID: id, Index: 2, Total: 10, Status: StatusProcessing})

	event := <-ch
	if event.Index != 2 {
		t.Errorf("slow subscriber saw index %d, want the newest event (2)", event.Index)
	}
}

func TestLatestAndUnknownRun(t *testing.T) {
	s := NewService()
	id := s.StartRun(5)

	event, err := s.Latest(id)
	if err != nil {
		t.Fatal(err)
	}
	if event.Total != 5 || event.Status != StatusProcessing {
		t.Errorf("initial state = %+v", event)
	}

	if _, err := s.Latest("nope"); !errors.Is(err, ErrUnknownRun) {
		t.Errorf("Latest(nope) = %v, want ErrUnknownRun", err)
	}
	if _, _, err := s.Subscribe("nope"); !errors.Is(err, ErrUnknownRun) {
		t.Errorf("Subscribe(nope) = %v, want ErrUnknownRun", err)
	}
}

func TestFinishPublishesFinalState(t *testing.T) {
	s := NewService()
	id := s.StartRun(2)

	ch, cancel, err := s.Subscribe(id)
	if err != nil {
		t.Fatal(err)
	}
	defer cancel()
	<-ch

	s.Finish(id, StatusCompleted, []RefStatus{
		{Title: "First paper", Verdict: "verified"},
		{Title: "Second paper", Verdict: "unverified"},
	})

	event := <-ch
	if event.Status != StatusCompleted || event.Index != 2 {
		t.Errorf("final event = %+v", event)
	}
	if len(event.Processed) != 2 {
		t.Errorf("Processed = %+v", event.Processed)
	}

	// The final state stays queryable after the run ends.
	latest, err := s.Latest(id)
	if err != nil {
		t.Fatalf("Latest after finish: %v", err)
	}
	if latest.Status != StatusCompleted {
		t.Errorf("latest status = %q", latest.Status)
	}
}
