package app

import (
	"context"
	"errors"
	"testing"

	"tableflip.dev/timebox/pkg/schedule"
	"tableflip.dev/timebox/pkg/timeutil"
)

func saveLocal(t *testing.T, f *fixture, date string, blocks ...schedule.Block) {
	t.Helper()
	if _, err := f.store.SaveLocal(schedule.New(date, f.now, blocks)); err != nil {
		t.Fatalf("SaveLocal(%s) = %v", date, err)
	}
}

func TestReport(t *testing.T) {
	f := newFixture(t)
	saveLocal(t, f, "2024-02-28",
		schedule.NewBlock(timeutil.Clock(9, 0), timeutil.Clock(10, 0), "Deep work"),
		schedule.NewBlock(timeutil.Clock(10, 0), timeutil.Clock(10, 30), ""),
	)
	saveLocal(t, f, "2024-02-29",
		schedule.NewBlock(timeutil.Clock(9, 0), timeutil.Clock(9, 30), "deep work "),
		schedule.NewBlock(timeutil.Clock(9, 30), timeutil.Clock(10, 15), "Email"),
	)
	saveLocal(t, f, "2024-03-05",
		schedule.NewBlock(timeutil.Clock(9, 0), timeutil.Clock(17, 0), "Offsite"),
	)

	// Reversed bounds are swapped.
	res, err := f.svc.Report(context.Background(), "2024-03-01", "2024-02-28")
	if err != nil {
		t.Fatalf("Report() = %v", err)
	}
	if res.Since != "2024-02-28" || res.Until != "2024-03-01" {
		t.Errorf("range = %s..%s", res.Since, res.Until)
	}
	if len(res.Days) != 2 {
		t.Fatalf("days = %+v, want 2", res.Days)
	}
	if res.Days[0].Minutes != 60 || len(res.Days[0].Blocks) != 1 {
		t.Errorf("first day = %+v", res.Days[0])
	}
	if res.Total != 135 {
		t.Errorf("total = %d, want 135", res.Total)
	}
	if len(res.Labels) != 2 {
		t.Fatalf("labels = %+v", res.Labels)
	}
	if l := res.Labels[0]; l.Label != "Deep work" || l.Minutes != 90 || l.Count != 2 {
		t.Errorf("labels[0] = %+v", l)
	}
	if l := res.Labels[1]; l.Label != "Email" || l.Minutes != 45 {
		t.Errorf("labels[1] = %+v", l)
	}
}

func TestCarryOver(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	plan := []schedule.Block{
		schedule.NewBlock(timeutil.Clock(9, 0), timeutil.Clock(10, 0), "Standup prep"),
		schedule.NewBlock(timeutil.Clock(10, 0), timeutil.Clock(11, 0), ""),
		schedule.NewBlock(timeutil.Clock(13, 0), timeutil.Clock(14, 0), "Review"),
	}
	_, err := f.svc.Edit(ctx, "2024-02-29", func(e *schedule.Engine, s schedule.State) (schedule.State, error) {
		return e.Adopt(s.Date, plan), nil
	})
	if err != nil {
		t.Fatalf("Edit() = %v", err)
	}

	day, err := f.svc.CarryOver(ctx, "2024-02-29", today)
	if err != nil {
		t.Fatalf("CarryOver() = %v", err)
	}
	if got := len(day.State.Blocks); got != 2 {
		t.Fatalf("blocks = %+v, want 2", day.State.Blocks)
	}
	for _, b := range day.State.Blocks {
		if b.ID == "" {
			t.Errorf("block %+v has no id", b)
		}
	}
	if day.State.Blocks[1].Label != "Review" || day.State.Blocks[1].Start != timeutil.Clock(13, 0) {
		t.Errorf("second block = %+v", day.State.Blocks[1])
	}

	// The carried day is the draft now.
	open, err := f.svc.Open(ctx, today)
	if err != nil {
		t.Fatalf("Open() = %v", err)
	}
	if open.State.Blocks[0].Label != "Standup prep" {
		t.Errorf("draft = %+v", open.State.Blocks)
	}

	if _, err := f.svc.CarryOver(ctx, today, today); !errors.Is(err, ErrSameDay) {
		t.Errorf("same day err = %v", err)
	}
	if _, err := f.svc.CarryOver(ctx, "2024-02-29", "soon"); err == nil {
		t.Error("bad target date accepted")
	}
}
