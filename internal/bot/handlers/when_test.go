package handlers

import (
	"strings"
	"testing"
	"time"

	"github.com/daviskuo/daypulse/internal/clock"
)

func TestParseWhen(t *testing.T) {
	cal := clock.New(0)
	now, _ := time.Parse(time.RFC3339, "2026-02-07T10:00:00Z")

	tests := []struct {
		name         string
		input        string
		want         string
		wantConsumed int
	}{
		{"bare clock later today", "14:00 pay rent", "2026-02-07T14:00:00Z", 1},
		{"bare clock already past rolls to tomorrow", "09:00 pay rent", "2026-02-08T09:00:00Z", 1},
		{"today with clock", "today 16:30 x", "2026-02-07T16:30:00Z", 2},
		{"today default evening", "today x", "2026-02-07T18:00:00Z", 1},
		{"tomorrow with clock", "tomorrow 07:15 x", "2026-02-08T07:15:00Z", 2},
		{"tomorrow default morning", "tomorrow x", "2026-02-08T09:00:00Z", 1},
		{"date with clock", "2026-03-01 20:00 x", "2026-03-01T20:00:00Z", 2},
		{"date default morning", "2026-03-01 x", "2026-03-01T09:00:00Z", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, consumed, err := parseWhen(cal, now, strings.Fields(tt.input))
			if err != nil {
				t.Fatalf("parseWhen(%q) error: %v", tt.input, err)
			}
			want, _ := time.Parse(time.RFC3339, tt.want)
			if !got.Equal(want) {
				t.Errorf("parseWhen(%q) = %v, want %v", tt.input, got, want)
			}
			if consumed != tt.wantConsumed {
				t.Errorf("parseWhen(%q) consumed %d tokens, want %d", tt.input, consumed, tt.wantConsumed)
			}
		})
	}
}

func TestParseWhenRespectsHomeCalendar(t *testing.T) {
	// 01:00Z on Feb 7 is already 09:00 on Feb 7 at UTC+8, so "14:00" is
	// still ahead on the same civil day: 14:00 local is 06:00Z.
	cal := clock.New(8 * 60)
	now, _ := time.Parse(time.RFC3339, "2026-02-07T01:00:00Z")

	got, _, err := parseWhen(cal, now, []string{"14:00"})
	if err != nil {
		t.Fatal(err)
	}
	want, _ := time.Parse(time.RFC3339, "2026-02-07T06:00:00Z")
	if !got.Equal(want) {
		t.Errorf("parseWhen = %v, want %v", got, want)
	}
}

func TestParseWhenRejectsGarbage(t *testing.T) {
	cal := clock.New(0)
	now := time.Now()

	for _, input := range []string{"", "soonish", "25:99", "feb-07"} {
		fields := strings.Fields(input)
		if _, _, err := parseWhen(cal, now, fields); err == nil {
			t.Errorf("parseWhen(%q) succeeded, want error", input)
		}
	}
}
