package settings

import "testing"

func TestSlotDurationFallsBack(t *testing.T) {
	s := Defaults()
	if s.SlotDuration() != 60 {
		t.Fatalf("expected 60, got %d", s.SlotDuration())
	}
	s.DefaultSlotDuration = 45
	if s.SlotDuration() != 45 {
		t.Fatalf("expected 45, got %d", s.SlotDuration())
	}
	s.DefaultSlotDuration = 50
	if s.SlotDuration() != 60 {
		t.Fatalf("expected fallback to 60, got %d", s.SlotDuration())
	}
}

func TestSlotLabel(t *testing.T) {
	tests := map[int]string{15: "15 minutes", 60: "1 hour", 90: "1h30m", 120: "2h"}
	for in, want := range tests {
		if got := SlotLabel(in); got != want {
			t.Fatalf("SlotLabel(%d) expected %q, got %q", in, want, got)
		}
	}
}

func TestParseSwitch(t *testing.T) {
	for _, in := range []string{"on", "YES", "true", "1"} {
		if got, err := ParseSwitch(in); err != nil || !got {
			t.Fatalf("ParseSwitch(%q) = %v, %v", in, got, err)
		}
	}
	for _, in := range []string{"off", "no", "False", "0"} {
		if got, err := ParseSwitch(in); err != nil || got {
			t.Fatalf("ParseSwitch(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseSwitch("maybe"); err == nil {
		t.Fatal("ParseSwitch(maybe) succeeded")
	}
}
