package mcp

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"tableflip.dev/timebox/pkg/app"
	"tableflip.dev/timebox/pkg/remote"
	"tableflip.dev/timebox/pkg/remote/remotetest"
	"tableflip.dev/timebox/pkg/schedule"
	"tableflip.dev/timebox/pkg/session"
	"tableflip.dev/timebox/pkg/store"
)

func newTestService(t *testing.T) (*Service, *remotetest.Server) {
	t.Helper()
	srv := remotetest.New()
	t.Cleanup(srv.Close)

	p, err := store.Load(&store.FileConfig{Path: t.TempDir()}, nil)
	if err != nil {
		t.Fatalf("store.Load() = %v", err)
	}
	sess := session.New()
	client, err := remote.NewClient(srv.BaseURL(), 5*time.Second, sess, nil)
	if err != nil {
		t.Fatalf("NewClient() = %v", err)
	}
	m := session.NewManager(sess, client, client, p, nil)
	client.SetRefresher(m)

	now := time.Date(2024, 3, 1, 10, 2, 0, 0, time.Local)
	a := app.New(p, client, m, nil)
	a.Now = func() time.Time { return now }
	n := 0
	a.NewID = func() string {
		n++
		return fmt.Sprintf("mcp-%d", n)
	}

	srv.AddUser("ada", "pw")
	if res := m.Login(context.Background(), "ada", "pw"); !res.OK {
		t.Fatalf("Login() = %+v", res)
	}
	svc := NewService(a)
	svc.Now = func() time.Time { return now }
	return svc, srv
}

func TestServiceDefaultsToToday(t *testing.T) {
	svc, _ := newTestService(t)
	dto, err := svc.GetSchedule(context.Background(), "")
	if err != nil {
		t.Fatalf("GetSchedule failed: %v", err)
	}
	if dto.Date != "2024-03-01" {
		t.Fatalf("expected today, got %s", dto.Date)
	}
	if len(dto.Blocks) != 1 || dto.Blocks[0].Start != "10:05" {
		t.Fatalf("expected a fresh block at 10:05, got %+v", dto.Blocks)
	}
}

func TestServiceRejectsBadDate(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.GetSchedule(context.Background(), "03/01/2024"); err == nil {
		t.Fatalf("expected bad date error")
	}
}

func TestServiceEditAndSave(t *testing.T) {
	ctx := context.Background()
	svc, srv := newTestService(t)

	dto, err := svc.SetBlock(ctx, "", app.BlockEdit{Index: 0, Label: "Plan"})
	if err != nil {
		t.Fatalf("SetBlock failed: %v", err)
	}
	if len(dto.Blocks) != 2 {
		t.Fatalf("expected a chained block, got %+v", dto.Blocks)
	}

	dto, err = svc.AdjustBlocks(ctx, "", 0, "20")
	if err != nil {
		t.Fatalf("AdjustBlocks failed: %v", err)
	}
	if len(dto.Blocks) != 3 || dto.Blocks[1].Minutes != 20 {
		t.Fatalf("expected a 20 minute block in the middle, got %+v", dto.Blocks)
	}

	if _, err := svc.AdjustBlocks(ctx, "", 0, "2h"); !errors.Is(err, schedule.ErrNotEnoughRoom) {
		t.Fatalf("expected not enough room, got %v", err)
	}

	dto, err = svc.DeleteBlock(ctx, "", 1)
	if err != nil {
		t.Fatalf("DeleteBlock failed: %v", err)
	}
	if len(dto.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %+v", dto.Blocks)
	}

	if _, err := svc.AddTimebox(ctx, ""); err != nil {
		t.Fatalf("AddTimebox failed: %v", err)
	}

	saved, err := svc.SaveSchedule(ctx, "")
	if err != nil {
		t.Fatalf("SaveSchedule failed: %v", err)
	}
	if !saved.Synced {
		t.Fatalf("expected synced save, got %+v", saved)
	}
	if got := srv.Schedule("ada", "2024-03-01"); got == nil || len(got.Blocks) != 1 || got.Blocks[0].Label != "Plan" {
		t.Fatalf("expected one labelled block on the server, got %+v", got)
	}

	dates, err := svc.ListDates(ctx)
	if err != nil || len(dates) != 1 {
		t.Fatalf("ListDates = %v, %v", dates, err)
	}
}

func TestServiceNotConfigured(t *testing.T) {
	svc := NewService(nil)
	if _, err := svc.GetSchedule(context.Background(), ""); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestTemplateArg(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{"2024-03-01", "2024-03-01"},
		{[]string{"2024-03-02"}, "2024-03-02"},
		{[]any{"2024-03-03"}, "2024-03-03"},
		{nil, ""},
		{42, ""},
	}
	for _, tc := range cases {
		if got := templateArg(map[string]any{"date": tc.in}, "date"); got != tc.want {
			t.Errorf("templateArg(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNewServerRegisters(t *testing.T) {
	svc, _ := newTestService(t)
	if srv := (Runner{App: svc.App}).NewServer(); srv == nil {
		t.Fatalf("expected a server")
	}
}

func TestServiceCarryOverAndReport(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	if _, err := svc.SetBlock(ctx, "", app.BlockEdit{Index: 0, Label: "Write"}); err != nil {
		t.Fatalf("SetBlock failed: %v", err)
	}
	if _, err := svc.SaveSchedule(ctx, ""); err != nil {
		t.Fatalf("SaveSchedule failed: %v", err)
	}

	dto, err := svc.CarryOver(ctx, "", "2024-03-02")
	if err != nil {
		t.Fatalf("CarryOver failed: %v", err)
	}
	if len(dto.Blocks) != 1 || dto.Blocks[0].Label != "Write" || dto.Blocks[0].Start != "10:05" {
		t.Fatalf("expected the saved block carried over, got %+v", dto.Blocks)
	}
	if _, err := svc.CarryOver(ctx, "yesterday", "2024-03-02"); err == nil {
		t.Fatalf("expected bad from date error")
	}

	rep, err := svc.Report(ctx, "", "")
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	if rep.Since != "2024-02-24" || rep.Until != "2024-03-01" {
		t.Fatalf("unexpected range %s..%s", rep.Since, rep.Until)
	}
	if rep.Total != 60 || len(rep.Labels) != 1 || rep.Labels[0].Label != "Write" {
		t.Fatalf("unexpected report %+v", rep)
	}
}
