package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"tableflip.dev/timebox/pkg/remote"
	"tableflip.dev/timebox/pkg/schedule"
	"tableflip.dev/timebox/pkg/timeutil"
)

func ids() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func at(h, m int) time.Time {
	return time.Date(2024, 3, 1, h, m, 0, 0, time.Local)
}

func block(id string, sh, sm, eh, em int, label string) schedule.Block {
	return schedule.Block{ID: id, Start: timeutil.Clock(sh, sm), End: timeutil.Clock(eh, em), Label: label}
}

func TestReconcile(t *testing.T) {
	offline := &remote.NetworkError{Op: "GET schedule/by-date", Err: errors.New("connection refused")}
	tests := map[string]struct {
		in         Input
		wantSource Source
		wantStarts []timeutil.TimeOfDay
		wantNotice bool
	}{
		"remote blocks adopted": {
			in: Input{
				Date:   "2024-03-02",
				Remote: schedule.New("2024-03-02", at(7, 0), []schedule.Block{block("a", 9, 0, 10, 0, "Run")}),
				Now:    at(8, 0),
			},
			wantSource: SourceRemote,
			wantStarts: []timeutil.TimeOfDay{timeutil.Clock(9, 0)},
		},
		"today in the past gets a fresh block": {
			in: Input{
				Date:    "2024-03-01",
				IsToday: true,
				Remote:  schedule.New("2024-03-01", at(7, 0), []schedule.Block{block("a", 9, 0, 10, 0, "Run")}),
				Now:     at(11, 2),
			},
			wantSource: SourceRemote,
			wantStarts: []timeutil.TimeOfDay{timeutil.Clock(9, 0), timeutil.Clock(11, 5)},
		},
		"today still running": {
			in: Input{
				Date:    "2024-03-01",
				IsToday: true,
				Remote:  schedule.New("2024-03-01", at(7, 0), []schedule.Block{block("a", 9, 0, 10, 0, "Run")}),
				Now:     at(9, 30),
			},
			wantSource: SourceRemote,
			wantStarts: []timeutil.TimeOfDay{timeutil.Clock(9, 0)},
		},
		"empty remote for today": {
			in: Input{
				Date:    "2024-03-01",
				IsToday: true,
				Remote:  schedule.New("2024-03-01", at(7, 0), nil),
				Now:     at(14, 41),
			},
			wantSource: SourceDefault,
			wantStarts: []timeutil.TimeOfDay{timeutil.Clock(14, 45)},
		},
		"not found for another day": {
			in: Input{
				Date:      "2024-03-05",
				RemoteErr: fmt.Errorf("fetch: %w", remote.ErrNotFound),
				Now:       at(14, 41),
			},
			wantSource: SourceDefault,
			wantStarts: []timeutil.TimeOfDay{timeutil.Clock(9, 0)},
		},
		"offline without local copy": {
			in: Input{
				Date:      "2024-03-05",
				RemoteErr: offline,
				Now:       at(14, 41),
			},
			wantSource: SourceDefault,
			wantStarts: []timeutil.TimeOfDay{timeutil.Clock(9, 0)},
			wantNotice: true,
		},
		"offline with local copy": {
			in: Input{
				Date:      "2024-03-05",
				RemoteErr: offline,
				Local:     schedule.New("2024-03-05", at(7, 0), []schedule.Block{block("l", 13, 0, 14, 0, "Lunch")}),
				Now:       at(8, 0),
			},
			wantSource: SourceLocal,
			wantStarts: []timeutil.TimeOfDay{timeutil.Clock(13, 0)},
			wantNotice: true,
		},
		"remote refused": {
			in: Input{
				Date:      "2024-03-01",
				IsToday:   true,
				RemoteErr: &remote.StatusError{Code: 500, Message: "boom"},
				Now:       at(10, 0),
			},
			wantSource: SourceDefault,
			wantStarts: []timeutil.TimeOfDay{timeutil.Clock(10, 0)},
			wantNotice: true,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			tc.in.NewID = ids()
			got := Reconcile(tc.in)
			if got.Source != tc.wantSource {
				t.Errorf("source = %s, want %s", got.Source, tc.wantSource)
			}
			if (got.Notice != "") != tc.wantNotice {
				t.Errorf("notice = %q, want notice %v", got.Notice, tc.wantNotice)
			}
			if len(got.Blocks) != len(tc.wantStarts) {
				t.Fatalf("blocks = %v, want starts %v", got.Blocks, tc.wantStarts)
			}
			for i, b := range got.Blocks {
				if b.Start != tc.wantStarts[i] {
					t.Errorf("block %d start = %s, want %s", i, b.Start, tc.wantStarts[i])
				}
				if b.ID == "" {
					t.Errorf("block %d has no id", i)
				}
			}
			if err := schedule.Validate(got.Blocks); err != nil {
				t.Errorf("invalid result: %v", err)
			}
		})
	}
}

func TestReconcileRepairsForeignData(t *testing.T) {
	remoteDay := &schedule.Schedule{Date: "2024-03-02", Blocks: []schedule.Block{
		{Start: timeutil.Clock(10, 0), End: timeutil.Clock(11, 0), Label: "b"},
		{Start: timeutil.Clock(9, 0), End: timeutil.Clock(10, 30), Label: "a"},
		{Start: timeutil.Clock(12, 0), End: timeutil.Clock(12, 0), Label: "empty"},
	}}
	got := Reconcile(Input{Date: "2024-03-02", Remote: remoteDay, Now: at(8, 0), NewID: ids()})
	if len(got.Blocks) != 2 {
		t.Fatalf("blocks = %v", got.Blocks)
	}
	if got.Blocks[0].Label != "a" || got.Blocks[1].Start != timeutil.Clock(10, 30) {
		t.Errorf("blocks = %v", got.Blocks)
	}
	if got.Blocks[0].ID != "id-1" || got.Blocks[1].ID != "id-2" {
		t.Errorf("ids = %q, %q", got.Blocks[0].ID, got.Blocks[1].ID)
	}
}

func TestReconcileNearMidnight(t *testing.T) {
	got := Reconcile(Input{
		Date:    "2024-03-01",
		IsToday: true,
		Remote:  schedule.New("2024-03-01", at(7, 0), []schedule.Block{block("a", 22, 0, 23, 59, "Read")}),
		Now:     at(23, 59),
		NewID:   ids(),
	})
	if len(got.Blocks) != 1 {
		t.Fatalf("exhausted day grew: %v", got.Blocks)
	}
}

type fakeRemote struct {
	mu    sync.Mutex
	days  map[string]*schedule.Schedule
	err   error
	gates map[string]chan struct{}
}

func (f *fakeRemote) ScheduleByDate(ctx context.Context, date string) (*schedule.Schedule, error) {
	// A gate holds only the first fetch of its date.
	f.mu.Lock()
	gate := f.gates[date]
	delete(f.gates, date)
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	if s, ok := f.days[date]; ok {
		return s, nil
	}
	return nil, remote.ErrNotFound
}

type fakeLocal map[string]*schedule.Schedule

func (f fakeLocal) LoadLocal(date string) (*schedule.Schedule, error) {
	return f[date], nil
}

func TestLoaderFallsBackToLocal(t *testing.T) {
	l := &Loader{
		Remote: &fakeRemote{err: &remote.NetworkError{Op: "GET", Err: errors.New("down")}},
		Local: fakeLocal{
			"2024-03-04": schedule.New("2024-03-04", at(7, 0), []schedule.Block{block("x", 8, 0, 9, 0, "Gym")}),
		},
		Now:   func() time.Time { return at(12, 0) },
		NewID: ids(),
	}
	ld, err := l.Load(context.Background(), "2024-03-04")
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if ld.Source != SourceLocal || ld.Blocks[0].ID != "x" {
		t.Errorf("loaded = %+v", ld)
	}
}

// waitForLoads blocks until date has been loaded n times.
func waitForLoads(t *testing.T, l *Loader, date string, n uint64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		l.mu.Lock()
		got := l.generations[date]
		l.mu.Unlock()
		if got >= n {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("%s loaded %d times, want %d", date, got, n)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestLoaderLatestLoadOfDateWins(t *testing.T) {
	slow := make(chan struct{})
	r := &fakeRemote{
		days: map[string]*schedule.Schedule{
			"2024-03-02": schedule.New("2024-03-02", at(7, 0), []schedule.Block{block("b", 9, 0, 10, 0, "plan")}),
		},
		gates: map[string]chan struct{}{"2024-03-02": slow},
	}
	l := &Loader{Remote: r, Now: func() time.Time { return at(8, 0) }, NewID: ids()}

	first := make(chan Loaded, 1)
	go func() {
		ld, _ := l.Load(context.Background(), "2024-03-02")
		first <- ld
	}()
	waitForLoads(t, l, "2024-03-02", 1)

	second, err := l.Load(context.Background(), "2024-03-02")
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	close(slow)
	stale := <-first

	var committed uint64
	apply := func(ld Loaded) { committed = ld.Generation }

	if err := l.Commit(second, apply); err != nil {
		t.Fatalf("Commit(latest) = %v", err)
	}
	if err := l.Commit(stale, apply); !errors.Is(err, ErrSuperseded) {
		t.Fatalf("Commit(stale) = %v, want ErrSuperseded", err)
	}
	if committed != second.Generation {
		t.Errorf("committed generation %d, want %d", committed, second.Generation)
	}
	if l.Current(stale) || !l.Current(second) {
		t.Errorf("Current() disagrees with Commit")
	}
}

func TestLoaderDatesAreIndependent(t *testing.T) {
	slow := make(chan struct{})
	r := &fakeRemote{
		days: map[string]*schedule.Schedule{
			"2024-03-02": schedule.New("2024-03-02", at(7, 0), []schedule.Block{block("a", 9, 0, 10, 0, "a")}),
			"2024-03-03": schedule.New("2024-03-03", at(7, 0), []schedule.Block{block("b", 9, 0, 10, 0, "b")}),
		},
		gates: map[string]chan struct{}{"2024-03-02": slow},
	}
	l := &Loader{Remote: r, Now: func() time.Time { return at(8, 0) }, NewID: ids()}

	first := make(chan Loaded, 1)
	go func() {
		ld, _ := l.Load(context.Background(), "2024-03-02")
		first <- ld
	}()
	waitForLoads(t, l, "2024-03-02", 1)

	other, err := l.Load(context.Background(), "2024-03-03")
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	close(slow)
	slowLoad := <-first

	var shown []string
	apply := func(ld Loaded) { shown = append(shown, ld.Date) }
	if err := l.Commit(other, apply); err != nil {
		t.Fatalf("Commit(2024-03-03) = %v", err)
	}
	if err := l.Commit(slowLoad, apply); err != nil {
		t.Fatalf("Commit(2024-03-02) = %v", err)
	}
	if len(shown) != 2 {
		t.Errorf("committed %v, want both dates", shown)
	}
}

func TestLoaderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &fakeRemote{gates: map[string]chan struct{}{"2024-03-02": make(chan struct{})}}
	l := &Loader{Remote: r, NewID: ids()}
	if _, err := l.Load(ctx, "2024-03-02"); !errors.Is(err, context.Canceled) {
		t.Fatalf("Load() = %v, want context.Canceled", err)
	}
}
