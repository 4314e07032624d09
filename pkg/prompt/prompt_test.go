package prompt

import (
	"bytes"
	"testing"

	"tableflip.dev/timebox/pkg/schedule"
	"tableflip.dev/timebox/pkg/timeutil"
)

func TestItems(t *testing.T) {
	items := Items([]schedule.Block{
		{Start: timeutil.Clock(9, 0), End: timeutil.Clock(10, 0), Label: "Write"},
		{Start: timeutil.Clock(10, 0), End: timeutil.EndOfDay, Label: "  "},
	})
	if len(items) != 2 {
		t.Fatalf("items = %d", len(items))
	}
	if items[0].Time != "09:00-10:00" || items[0].Label != "Write" {
		t.Errorf("items[0] = %+v", items[0])
	}
	if items[1].Index != 1 || items[1].Label != "(empty)" {
		t.Errorf("items[1] = %+v", items[1])
	}
}

func TestCredentialsGivenUpFront(t *testing.T) {
	p := Prompter{In: &bytes.Buffer{}, Out: &bytes.Buffer{}}
	user, pass, err := p.Credentials(" ada ", "pw")
	if err != nil || user != "ada" || pass != "pw" {
		t.Fatalf("Credentials() = %q, %q, %v", user, pass, err)
	}
}

func TestNopCloser(t *testing.T) {
	var buf bytes.Buffer
	w := NopCloser(&buf)
	_, _ = w.Write([]byte("x"))
	if err := w.Close(); err != nil || buf.String() != "x" {
		t.Fatalf("NopCloser: %q, %v", buf.String(), err)
	}
}
