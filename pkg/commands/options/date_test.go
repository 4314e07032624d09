package options

import (
	"testing"
	"time"
)

func TestDateResolve(t *testing.T) {
	now := time.Date(2024, 2, 28, 15, 0, 0, 0, time.Local)
	tests := map[string]string{
		"":           "2024-02-28",
		"today":      "2024-02-28",
		"Tomorrow":   "2024-02-29",
		"yesterday":  "2024-02-27",
		"2024-03-01": "2024-03-01",
		"2024-3-1":   "2024-03-01",
		"12/31":      "2024-12-31",
	}
	for in, want := range tests {
		o := DateOptions{Date: in}
		got, err := o.Resolve(now)
		if err != nil {
			t.Fatalf("Resolve(%q) = %v", in, err)
		}
		if got != want {
			t.Errorf("Resolve(%q) = %s, want %s", in, got, want)
		}
	}

	o := DateOptions{Date: "someday"}
	if _, err := o.Resolve(now); err == nil {
		t.Error("Resolve(someday) succeeded")
	}
}

func TestRangeResolve(t *testing.T) {
	now := time.Date(2024, 3, 2, 9, 0, 0, 0, time.Local)

	since, until, err := (&RangeOptions{Until: "today"}).Resolve(now)
	if err != nil {
		t.Fatalf("Resolve() = %v", err)
	}
	if since != "2024-02-25" || until != "2024-03-02" {
		t.Errorf("default range = %s..%s", since, until)
	}

	since, until, err = (&RangeOptions{Since: "2/1", Until: "2024-02-29"}).Resolve(now)
	if err != nil {
		t.Fatalf("Resolve() = %v", err)
	}
	if since != "2024-02-01" || until != "2024-02-29" {
		t.Errorf("range = %s..%s", since, until)
	}

	if _, _, err := (&RangeOptions{Since: "last week"}).Resolve(now); err == nil {
		t.Error("bad --since accepted")
	}
}
