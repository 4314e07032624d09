package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventType describes the nature of a persistence change notification.
type EventType int

const (
	// EventScheduleChanged indicates the saved schedule for Date changed.
	EventScheduleChanged EventType = iota
	// EventDraftChanged indicates the draft for Date changed.
	EventDraftChanged
	// EventPendingChanged indicates the pending-sync queue changed.
	EventPendingChanged
	// EventSettingsChanged indicates the stored settings changed.
	EventSettingsChanged
	// EventSessionChanged indicates the stored tokens changed.
	EventSessionChanged
	// EventInvalidated signals an unclassified change; callers should
	// refresh their full view.
	EventInvalidated
)

func (t EventType) String() string {
	switch t {
	case EventScheduleChanged:
		return "schedule"
	case EventDraftChanged:
		return "draft"
	case EventPendingChanged:
		return "pending"
	case EventSettingsChanged:
		return "settings"
	case EventSessionChanged:
		return "session"
	default:
		return "invalidated"
	}
}

// Event is emitted by Persistence.Watch when underlying storage changes.
type Event struct {
	Type EventType
	Date string
}

// Watch streams change events until ctx is cancelled. Callers should drain the
// returned channel to avoid blocking the watcher. The channel is closed once
// ctx is done or the watcher encounters an unrecoverable error.
func (p *persistence) Watch(ctx context.Context) (<-chan Event, error) {
	if err := os.MkdirAll(p.basePath, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	var closeOnce sync.Once
	closeWatcher := func() {
		closeOnce.Do(func() {
			if err := watcher.Close(); err != nil {
				p.log.Warn("watcher close", "err", err)
			}
		})
	}

	dirs, err := collectDirs(p.basePath)
	if err != nil {
		closeWatcher()
		return nil, fmt.Errorf("store: enumerate directories: %w", err)
	}

	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			closeWatcher()
			return nil, fmt.Errorf("store: watch %s: %w", dir, err)
		}
	}

	events := make(chan Event, 64)

	go func() {
		defer close(events)
		defer closeWatcher()

		// diskv creates kind/year/month directories on first write; they
		// are added as they appear.
		watched := make(map[string]struct{}, len(dirs))
		for _, dir := range dirs {
			watched[dir] = struct{}{}
		}

		var mu sync.Mutex
		done := false
		defer func() {
			mu.Lock()
			done = true
			mu.Unlock()
		}()
		send := func(ev Event) {
			mu.Lock()
			defer mu.Unlock()
			if done {
				return
			}
			select {
			case events <- ev:
			default:
				// Consumer is behind; it will catch up on the next burst.
			}
		}

		throttle := newEventThrottle(100 * time.Millisecond)
		defer throttle.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				p.log.Warn("watcher error", "err", err)
				throttle.Enqueue(Event{Type: EventInvalidated}, send)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}

				if evt.Op&fsnotify.Create == fsnotify.Create {
					if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
						p.watchTree(watcher, filepath.Clean(evt.Name), watched)
						// Writes may have landed before the watch did.
						throttle.Enqueue(Event{Type: EventInvalidated}, send)
						continue
					}
				}
				if strings.HasSuffix(evt.Name, ".tmp") {
					continue
				}

				throttle.Enqueue(p.eventForPath(evt.Name), send)
			}
		}
	}()

	return events, nil
}

// watchTree adds dir and anything created under it before the watch landed.
func (p *persistence) watchTree(watcher *fsnotify.Watcher, dir string, watched map[string]struct{}) {
	sub, err := collectDirs(dir)
	if err != nil {
		p.log.Warn("enumerate new directory", "dir", dir, "err", err)
		return
	}
	for _, d := range sub {
		if _, found := watched[d]; found {
			continue
		}
		if err := watcher.Add(d); err != nil {
			p.log.Warn("watch directory", "dir", d, "err", err)
			continue
		}
		watched[d] = struct{}{}
	}
}

// collectDirs walks base and returns all directories that should be watched.
func collectDirs(base string) ([]string, error) {
	dirs := []string{base}
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() && path != base {
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs, err
}

// eventForPath classifies a diskv file path.
func (p *persistence) eventForPath(path string) Event {
	rel, err := filepath.Rel(p.basePath, path)
	if err != nil || rel == "." {
		return Event{Type: EventInvalidated}
	}
	parts := strings.Split(rel, string(os.PathSeparator))
	parts[len(parts)-1] = strings.TrimSuffix(parts[len(parts)-1], fileExt)
	key := strings.Join(parts, "-")

	switch {
	case key == keySettings:
		return Event{Type: EventSettingsChanged}
	case key == keyTokens:
		return Event{Type: EventSessionChanged}
	case len(parts) != 4:
		return Event{Type: EventInvalidated}
	}
	date := strings.Join(parts[1:], "-")
	switch parts[0] {
	case kindSchedule:
		return Event{Type: EventScheduleChanged, Date: date}
	case kindDraft:
		return Event{Type: EventDraftChanged, Date: date}
	case kindPending:
		return Event{Type: EventPendingChanged, Date: date}
	default:
		return Event{Type: EventInvalidated}
	}
}

// eventThrottle coalesces rapid change notifications so a watcher reports
// once per burst of filesystem activity instead of on every single write.
type eventThrottle struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending map[Event]struct{}
	order   []Event
	delay   time.Duration
}

func newEventThrottle(delay time.Duration) *eventThrottle {
	return &eventThrottle{
		delay:   delay,
		pending: make(map[Event]struct{}),
	}
}

func (t *eventThrottle) Enqueue(ev Event, send func(Event)) {
	t.mu.Lock()
	if _, seen := t.pending[ev]; !seen {
		t.pending[ev] = struct{}{}
		t.order = append(t.order, ev)
	}

	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			t.flush(send)
		})
	}
	t.mu.Unlock()
}

func (t *eventThrottle) flush(send func(Event)) {
	t.mu.Lock()
	order := t.order
	t.pending = make(map[Event]struct{})
	t.order = nil
	t.timer = nil
	t.mu.Unlock()

	for _, ev := range order {
		send(ev)
	}
}

func (t *eventThrottle) Stop() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
}
