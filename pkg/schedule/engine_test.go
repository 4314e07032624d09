package schedule

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"tableflip.dev/timebox/pkg/timeutil"
)

func fixedEngine(now time.Time) *Engine {
	counter := 0
	return &Engine{
		DefaultDuration: 60,
		Now:             func() time.Time { return now },
		NewID: func() string {
			counter++
			return fmt.Sprintf("id-%d", counter)
		},
	}
}

func at(hour, minute int) time.Time {
	return time.Date(2025, 1, 25, hour, minute, 0, 0, time.Local)
}

func blk(id string, sh, sm, eh, em int, label string) Block {
	return Block{ID: id, Start: timeutil.Clock(sh, sm), End: timeutil.Clock(eh, em), Label: label}
}

func state(blocks ...Block) State {
	return State{Date: "2025-01-25", Blocks: blocks}
}

func assertBlock(t *testing.T, got Block, start, end string) {
	t.Helper()
	if got.Start.String() != start || got.End.String() != end {
		t.Fatalf("expected %s-%s, got %s-%s", start, end, got.Start, got.End)
	}
}

func TestInsertBetweenSplitsNeighbours(t *testing.T) {
	e := fixedEngine(at(8, 0))
	s := state(blk("a", 9, 0, 10, 0, "A"), blk("b", 10, 0, 11, 0, "B"))

	got, err := e.InsertBetween(s, 0, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Len() != 3 {
		t.Fatalf("expected 3 blocks, got %d", got.Len())
	}
	assertBlock(t, got.Blocks[0], "09:00", "09:45")
	assertBlock(t, got.Blocks[1], "09:45", "10:15")
	assertBlock(t, got.Blocks[2], "10:15", "11:00")
	if got.Blocks[0].ID != "a" || got.Blocks[2].ID != "b" {
		t.Fatalf("neighbour ids changed: %+v", got.Blocks)
	}
	if got.Blocks[1].Label != "" {
		t.Fatalf("expected empty label on inserted block, got %q", got.Blocks[1].Label)
	}
	if s.Blocks[0].End != timeutil.Clock(10, 0) {
		t.Fatal("input state was modified")
	}
}

func TestInsertBetweenOddMinutesRemainderToSecond(t *testing.T) {
	e := fixedEngine(at(8, 0))
	s := state(blk("a", 9, 0, 10, 0, "A"), blk("b", 10, 0, 11, 0, "B"))

	got, err := e.InsertBetween(s, 0, 25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertBlock(t, got.Blocks[0], "09:00", "09:48")
	assertBlock(t, got.Blocks[1], "09:48", "10:13")
	assertBlock(t, got.Blocks[2], "10:13", "11:00")
	if got.Blocks[1].Duration() != 25 {
		t.Fatalf("expected 25 minute block, got %d", got.Blocks[1].Duration())
	}
}

func TestInsertBetweenRejection(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Block
		minutes int
		reject  bool
	}{
		{"both roomy", blk("a", 9, 0, 10, 0, ""), blk("b", 10, 0, 11, 0, ""), 30, false},
		{"first equal", blk("a", 9, 0, 9, 30, ""), blk("b", 9, 30, 11, 0, ""), 30, true},
		{"second equal", blk("a", 9, 0, 10, 0, ""), blk("b", 10, 0, 10, 30, ""), 30, true},
		{"first shorter", blk("a", 9, 0, 9, 15, ""), blk("b", 9, 15, 11, 0, ""), 30, true},
		{"one minute spare", blk("a", 9, 0, 9, 31, ""), blk("b", 9, 31, 10, 2, ""), 30, false},
		{"hour adjust", blk("a", 9, 0, 10, 0, ""), blk("b", 10, 0, 11, 0, ""), 60, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := fixedEngine(at(8, 0))
			s := state(tt.a, tt.b)
			got, err := e.InsertBetween(s, 0, tt.minutes)
			if !tt.reject {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if err := Validate(got.Blocks); err != nil {
					t.Fatalf("invalid result: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrNotEnoughRoom) {
				t.Fatalf("expected ErrNotEnoughRoom, got %v", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Message == "" {
				t.Fatalf("expected a ValidationError with a message, got %v", err)
			}
			if got.Len() != 2 || len(got.Events) != 0 {
				t.Fatalf("rejected insert changed state: %+v", got)
			}
		})
	}
}

func TestInsertBetweenBadIndex(t *testing.T) {
	e := fixedEngine(at(8, 0))
	s := state(blk("a", 9, 0, 10, 0, ""))
	if _, err := e.InsertBetween(s, 0, 30); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestInsertBetweenEndOfDayNeighbour(t *testing.T) {
	e := fixedEngine(at(8, 0))
	s := state(
		blk("a", 21, 0, 22, 0, "A"),
		Block{ID: "b", Start: timeutil.Clock(22, 0), End: timeutil.EndOfDay, Label: "B"},
	)
	got, err := e.InsertBetween(s, 0, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertBlock(t, got.Blocks[2], "22:15", "24:00")
}

func TestDeleteBlockKeepsLastBlock(t *testing.T) {
	e := fixedEngine(at(8, 0))
	s := state(blk("a", 9, 0, 10, 0, "A"))
	got := e.DeleteBlock(s, 0)
	if got.Len() != 1 {
		t.Fatalf("expected one block to remain, got %d", got.Len())
	}

	s = state(blk("a", 9, 0, 10, 0, "A"), blk("b", 10, 0, 11, 0, "B"))
	got = e.DeleteBlock(s, 0)
	if got.Len() != 1 || got.Blocks[0].ID != "b" {
		t.Fatalf("expected only b to remain, got %+v", got.Blocks)
	}
	if s.Len() != 2 {
		t.Fatal("input state was modified")
	}
}

func TestUpdateBlockAutoChains(t *testing.T) {
	e := fixedEngine(at(8, 0))
	s := state(blk("a", 17, 0, 18, 0, ""))

	got, err := e.SetLabel(s, 0, "write report")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Len() != 2 {
		t.Fatalf("expected a chained block, got %d blocks", got.Len())
	}
	assertBlock(t, got.Blocks[1], "18:00", "19:00")
	if got.Events[len(got.Events)-1].Op != OpChain {
		t.Fatalf("expected chain event, got %+v", got.Events)
	}
}

func TestUpdateBlockNoChainAtEndOfDay(t *testing.T) {
	e := fixedEngine(at(8, 0))
	for _, end := range []timeutil.TimeOfDay{timeutil.LastMinute, timeutil.EndOfDay} {
		s := state(Block{ID: "a", Start: timeutil.Clock(23, 0), End: end})
		got, err := e.SetLabel(s, 0, "sleep")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Len() != 1 {
			t.Fatalf("end %s: expected no chained block, got %d blocks", end, got.Len())
		}
	}
}

func TestUpdateBlockChainCapsAt2359(t *testing.T) {
	e := fixedEngine(at(8, 0))
	s := state(blk("a", 22, 0, 23, 30, ""))
	got, err := e.SetLabel(s, 0, "read")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertBlock(t, got.Blocks[1], "23:30", "23:59")
}

func TestUpdateBlockNoChainForMiddleOrBlank(t *testing.T) {
	e := fixedEngine(at(8, 0))
	s := state(blk("a", 9, 0, 10, 0, ""), blk("b", 10, 0, 11, 0, ""))

	got, err := e.SetLabel(s, 0, "first")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Len() != 2 {
		t.Fatalf("editing a middle block chained: %d blocks", got.Len())
	}

	got, err = e.SetLabel(s, 1, "   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Len() != 2 {
		t.Fatalf("blank label chained: %d blocks", got.Len())
	}
}

func TestUpdateBlockRejectsOverlap(t *testing.T) {
	e := fixedEngine(at(8, 0))
	s := state(blk("a", 9, 0, 10, 0, ""), blk("b", 10, 0, 11, 0, ""))

	if _, err := e.UpdateBlock(s, 0, blk("", 9, 0, 10, 30, "x")); !errors.Is(err, ErrOverlap) {
		t.Fatalf("expected ErrOverlap, got %v", err)
	}
	if _, err := e.UpdateBlock(s, 1, blk("", 9, 30, 11, 0, "x")); !errors.Is(err, ErrOverlap) {
		t.Fatalf("expected ErrOverlap, got %v", err)
	}
	if _, err := e.UpdateBlock(s, 1, blk("", 11, 0, 10, 0, "x")); !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("expected ErrInvalidInterval, got %v", err)
	}
	got, err := e.UpdateBlock(s, 0, blk("", 9, 15, 9, 45, "x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Blocks[0].ID != "a" {
		t.Fatalf("expected id to be kept, got %q", got.Blocks[0].ID)
	}
}

func TestAddTimeboxNoopAtEndOfDay(t *testing.T) {
	e := fixedEngine(at(8, 0))
	for _, end := range []timeutil.TimeOfDay{timeutil.LastMinute, timeutil.EndOfDay} {
		s := state(Block{ID: "a", Start: timeutil.Clock(22, 0), End: end})
		if got := e.AddTimebox(s); got.Len() != 1 {
			t.Fatalf("end %s: expected no-op, got %d blocks", end, got.Len())
		}
	}
}

func TestAddTimeboxChainsWhenAhead(t *testing.T) {
	e := fixedEngine(at(8, 0))
	s := state(blk("a", 9, 0, 10, 0, "A"))
	got := e.AddTimebox(s)
	assertBlock(t, got.Blocks[1], "10:00", "11:00")
}

func TestAddTimeboxReconnectsWithNow(t *testing.T) {
	e := fixedEngine(at(14, 2))
	s := state(blk("a", 9, 0, 10, 0, "A"))
	got := e.AddTimebox(s)
	assertBlock(t, got.Blocks[1], "14:05", "15:05")

	// A schedule ending exactly now is behind the clock too.
	e = fixedEngine(at(10, 0))
	got = e.AddTimebox(s)
	assertBlock(t, got.Blocks[1], "10:00", "11:00")
}

func TestAddTimeboxOtherDayIgnoresClock(t *testing.T) {
	e := fixedEngine(at(15, 0))
	s := State{Date: "2025-01-26", Blocks: []Block{blk("a", 9, 0, 10, 0, "A")}}
	got := e.AddTimebox(s)
	assertBlock(t, got.Blocks[1], "10:00", "11:00")

	// Late at night a future day still has room.
	e = fixedEngine(at(23, 57))
	got = e.AddTimebox(s)
	assertBlock(t, got.Blocks[1], "10:00", "11:00")
}

func TestAddTimeboxLateNightIsNoop(t *testing.T) {
	e := fixedEngine(at(23, 57))
	s := state(blk("a", 9, 0, 10, 0, "A"))
	if got := e.AddTimebox(s); got.Len() != 1 {
		t.Fatalf("expected no-op once the clock rounds past the day, got %d", got.Len())
	}
}

func TestBuildFreshBlock(t *testing.T) {
	tests := []struct {
		now        time.Time
		duration   int
		start, end string
	}{
		{at(14, 2), 60, "14:05", "15:05"},
		{at(14, 5), 30, "14:05", "14:35"},
		{at(23, 30), 60, "23:30", "23:59"},
		{at(23, 57), 60, "23:58", "23:59"},
		{at(9, 0), 0, "09:00", "10:00"},
	}
	for _, tt := range tests {
		got := BuildFreshBlock(tt.now, tt.duration, "x")
		assertBlock(t, got, tt.start, tt.end)
		if !got.Valid() {
			t.Fatalf("fresh block %s is not valid", got)
		}
	}
}

func TestAdoptNormalizesAndAssignsIDs(t *testing.T) {
	e := fixedEngine(at(8, 0))
	got := e.Adopt("2025-01-25", []Block{
		blk("", 10, 0, 11, 0, "B"),
		blk("a", 9, 0, 10, 0, "A"),
	})
	if got.Len() != 2 || got.Blocks[0].ID != "a" || got.Blocks[1].ID == "" {
		t.Fatalf("unexpected adopted blocks: %+v", got.Blocks)
	}
	if got.Events[0].Op != OpLoad {
		t.Fatalf("expected load event, got %+v", got.Events)
	}

	empty := e.Adopt("2025-01-25", nil)
	if empty.Len() != 1 {
		t.Fatalf("expected a fresh block for empty input, got %d", empty.Len())
	}
}

// Random edit sequences must keep blocks ordered and non-overlapping.
func TestRandomEditsKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for run := 0; run < 200; run++ {
		e := fixedEngine(at(rng.Intn(24), rng.Intn(60)))
		s := e.Adopt("2025-01-25", []Block{blk("seed", 6, 0, 7, 0, "")})
		for step := 0; step < 40; step++ {
			switch rng.Intn(5) {
			case 0:
				s = e.AddTimebox(s)
			case 1:
				s = e.DeleteBlock(s, rng.Intn(s.Len()))
			case 2:
				if next, err := e.InsertBetween(s, rng.Intn(s.Len()), 1+rng.Intn(90)); err == nil {
					s = next
				}
			case 3:
				if next, err := e.SetLabel(s, s.Len()-1, "task"); err == nil {
					s = next
				}
			case 4:
				i := rng.Intn(s.Len())
				b := s.Blocks[i]
				b.End = b.Start.Add(1 + rng.Intn(120))
				if next, err := e.UpdateBlock(s, i, b); err == nil {
					s = next
				}
			}
			if s.Len() == 0 {
				t.Fatalf("run %d step %d: schedule emptied", run, step)
			}
			if err := Validate(s.Blocks); err != nil {
				t.Fatalf("run %d step %d: %v\n%+v", run, step, err, s.Blocks)
			}
		}
	}
}
