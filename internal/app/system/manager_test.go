package system

import (
	"context"
	"errors"
	"testing"
)

type recordingService struct {
	name   string
	events *[]string
	failOn bool
}

func (s *recordingService) Name() string { return s.name }

func (s *recordingService) Start(context.Context) error {
	if s.failOn {
		return errors.New("start failed")
	}
	*s.events = append(*s.events, "start:"+s.name)
	return nil
}

func (s *recordingService) Stop(context.Context) error {
	*s.events = append(*s.events, "stop:"+s.name)
	return nil
}

func TestManagerStartsInOrderStopsInReverse(t *testing.T) {
	var events []string
	m := NewManager()
	for _, name := range []string{"a", "b", "c"} {
		if err := m.Register(&recordingService{name: name, events: &events}); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}

	ctx := context.Background()
	if err := m.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := m.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}

	want := []string{"start:a", "start:b", "start:c", "stop:c", "stop:b", "stop:a"}
	if len(events) != len(want) {
		t.Fatalf("events %v", events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("event %d: want %s got %s", i, want[i], events[i])
		}
	}
}

func TestManagerRejectsDuplicateNames(t *testing.T) {
	var events []string
	m := NewManager()
	if err := m.Register(&recordingService{name: "dup", events: &events}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := m.Register(&recordingService{name: "dup", events: &events}); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}

func TestManagerFailedStartUnwindsStartedServices(t *testing.T) {
	var events []string
	m := NewManager()
	m.Register(&recordingService{name: "ok", events: &events})
	m.Register(&recordingService{name: "bad", events: &events, failOn: true})

	if err := m.Start(context.Background()); err == nil {
		t.Fatal("expected start failure")
	}
	if len(events) != 2 || events[0] != "start:ok" || events[1] != "stop:ok" {
		t.Fatalf("expected started services unwound, got %v", events)
	}
}
