package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"tableflip.dev/timebox/pkg/schedule"
	"tableflip.dev/timebox/pkg/timeutil"
)

func TestPersistenceWatchEmitsScheduleChanges(t *testing.T) {
	p := newTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := p.Watch(ctx)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	// Allow watcher goroutine to subscribe to directories before storing.
	time.Sleep(50 * time.Millisecond)

	s := schedule.New("2024-03-01", time.Now(), []schedule.Block{
		{ID: "a", Start: timeutil.Clock(9, 0), End: timeutil.Clock(10, 0), Label: "Write"},
	})
	if _, err := p.SaveLocal(s); err != nil {
		t.Fatalf("save: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case evt := <-ch:
			if evt.Type == EventInvalidated {
				return
			}
			if evt.Type == EventScheduleChanged {
				if evt.Date != "2024-03-01" {
					t.Fatalf("expected date 2024-03-01, got %q", evt.Date)
				}
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for schedule change event")
		}
	}
}

func TestEventForPath(t *testing.T) {
	p := newTestStore(t).(*persistence)
	tests := map[string]Event{
		"schedule/2024/03/01.json": {Type: EventScheduleChanged, Date: "2024-03-01"},
		"draft/2024/12/31.json":    {Type: EventDraftChanged, Date: "2024-12-31"},
		"pending/2024/01/02.json":  {Type: EventPendingChanged, Date: "2024-01-02"},
		"settings/user.json":       {Type: EventSettingsChanged},
		"session/tokens.json":      {Type: EventSessionChanged},
		"stray.txt":                {Type: EventInvalidated},
	}
	for rel, want := range tests {
		if got := p.eventForPath(filepath.Join(p.basePath, filepath.FromSlash(rel))); got != want {
			t.Errorf("eventForPath(%s) = %+v, want %+v", rel, got, want)
		}
	}
}

func TestEventThrottleCoalesces(t *testing.T) {
	th := newEventThrottle(20 * time.Millisecond)
	defer th.Stop()

	got := make(chan Event, 8)
	send := func(ev Event) { got <- ev }
	for i := 0; i < 5; i++ {
		th.Enqueue(Event{Type: EventDraftChanged, Date: "2024-03-01"}, send)
	}
	th.Enqueue(Event{Type: EventSettingsChanged}, send)

	var events []Event
	timeout := time.After(time.Second)
	for len(events) < 2 {
		select {
		case ev := <-got:
			events = append(events, ev)
		case <-timeout:
			t.Fatalf("got %v, want 2 events", events)
		}
	}
	select {
	case ev := <-got:
		t.Fatalf("unexpected extra event %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
	if events[0].Type != EventDraftChanged || events[1].Type != EventSettingsChanged {
		t.Errorf("events = %+v", events)
	}
}
