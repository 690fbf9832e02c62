package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeDate(t *testing.T) {
	got, ok := ParseTime("2025-06-29")
	if !ok {
		t.Fatalf("expected ok")
	}
	want := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("date should end its day: got %v want %v", got, want)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestEndOfDay(t *testing.T) {
	in := time.Date(2025, 12, 31, 23, 59, 0, 0, time.FixedZone("CET", 3600))
	want := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := EndOfDay(in); !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}
}
