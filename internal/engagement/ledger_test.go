package engagement

import (
	"testing"
	"time"

	"github.com/daviskuo/daypulse/internal/clock"
)

func testRules() Rules {
	return NewRules(clock.New(0))
}

func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func intp(n int) *int { return &n }

func TestFirstCompletionStartsStreak(t *testing.T) {
	r := testRules()
	l, earned := r.ApplyCompletion(Ledger{UserID: 1}, at(2026, 2, 6, 14, 0), nil, nil)

	if l.CurrentStreak != 1 || l.LongestStreak != 1 {
		t.Fatalf("streak = %d/%d, want 1/1", l.CurrentStreak, l.LongestStreak)
	}
	if l.TotalCompleted != 1 {
		t.Fatalf("totalCompleted = %d, want 1", l.TotalCompleted)
	}
	if l.LastCompletedDay == nil || *l.LastCompletedDay != "2026-02-06" {
		t.Fatalf("lastCompletedDay = %v, want 2026-02-06", l.LastCompletedDay)
	}
	if len(earned) != 0 {
		t.Fatalf("earned %d badges on first afternoon completion, want 0", len(earned))
	}
}

func TestConsecutiveDaysGrowStreak(t *testing.T) {
	r := testRules()
	l := Ledger{UserID: 1}

	for i := 0; i < 5; i++ {
		l, _ = r.ApplyCompletion(l, at(2026, 2, 6+i, 14, 0), nil, nil)
		if l.CurrentStreak != i+1 {
			t.Fatalf("day %d: streak = %d, want %d", i, l.CurrentStreak, i+1)
		}
		if l.LongestStreak != i+1 {
			t.Fatalf("day %d: longest = %d, want %d", i, l.LongestStreak, i+1)
		}
	}
	if l.TotalCompleted != 5 {
		t.Fatalf("totalCompleted = %d, want 5", l.TotalCompleted)
	}
}

func TestSameDayCompletionKeepsStreak(t *testing.T) {
	r := testRules()
	l := Ledger{UserID: 1}
	l, _ = r.ApplyCompletion(l, at(2026, 2, 6, 9, 30), nil, nil)
	l, _ = r.ApplyCompletion(l, at(2026, 2, 6, 18, 0), nil, nil)

	if l.CurrentStreak != 1 {
		t.Fatalf("streak = %d, want 1 after same-day completion", l.CurrentStreak)
	}
	if l.TotalCompleted != 2 {
		t.Fatalf("totalCompleted = %d, want 2", l.TotalCompleted)
	}
	if *l.LastCompletedDay != "2026-02-06" {
		t.Fatalf("lastCompletedDay = %s", *l.LastCompletedDay)
	}
}

func TestGapResetsStreak(t *testing.T) {
	r := testRules()
	l := Ledger{UserID: 1}
	l, _ = r.ApplyCompletion(l, at(2026, 2, 1, 14, 0), nil, nil)
	l, _ = r.ApplyCompletion(l, at(2026, 2, 2, 14, 0), nil, nil)
	l, _ = r.ApplyCompletion(l, at(2026, 2, 7, 14, 0), nil, nil) // 5-day gap

	if l.CurrentStreak != 1 {
		t.Fatalf("streak = %d, want 1 after gap", l.CurrentStreak)
	}
	if l.LongestStreak != 2 {
		t.Fatalf("longest = %d, want 2 preserved across reset", l.LongestStreak)
	}
}

// A completion instant earlier than the recorded last-completed day is an
// out-of-order replay; the streak deterministically resets to 1.
func TestOutOfOrderCompletionResetsStreak(t *testing.T) {
	r := testRules()
	l := Ledger{UserID: 1}
	l, _ = r.ApplyCompletion(l, at(2026, 2, 5, 14, 0), nil, nil)
	l, _ = r.ApplyCompletion(l, at(2026, 2, 6, 14, 0), nil, nil)
	if l.CurrentStreak != 2 {
		t.Fatalf("setup streak = %d, want 2", l.CurrentStreak)
	}

	l, _ = r.ApplyCompletion(l, at(2026, 2, 3, 14, 0), nil, nil)
	if l.CurrentStreak != 1 {
		t.Fatalf("streak = %d, want 1 after out-of-order completion", l.CurrentStreak)
	}
	if *l.LastCompletedDay != "2026-02-03" {
		t.Fatalf("lastCompletedDay = %s, want 2026-02-03", *l.LastCompletedDay)
	}
}

func TestMilestoneScenario(t *testing.T) {
	day := "2026-02-06"
	r := testRules()
	l := Ledger{
		UserID:           1,
		CurrentStreak:    2,
		LongestStreak:    2,
		TotalCompleted:   9,
		LastCompletedDay: &day,
	}

	next, earned := r.ApplyCompletion(l, at(2026, 2, 7, 8, 30), intp(0), nil)

	if next.CurrentStreak != 3 {
		t.Fatalf("streak = %d, want 3", next.CurrentStreak)
	}
	if next.TotalCompleted != 10 {
		t.Fatalf("totalCompleted = %d, want 10", next.TotalCompleted)
	}
	if *next.LastCompletedDay != "2026-02-07" {
		t.Fatalf("lastCompletedDay = %s, want 2026-02-07", *next.LastCompletedDay)
	}

	wantIDs := map[string]bool{"streak_3": true, "total_10": true, "early_bird": true, "clean_sweep": true}
	if len(earned) != len(wantIDs) {
		t.Fatalf("earned %d badges, want %d: %+v", len(earned), len(wantIDs), earned)
	}
	for _, b := range earned {
		if !wantIDs[b.ID] {
			t.Errorf("unexpected badge %s", b.ID)
		}
		if !b.EarnedAt.Equal(at(2026, 2, 7, 8, 30)) {
			t.Errorf("badge %s earnedAt = %v", b.ID, b.EarnedAt)
		}
	}
}

func TestBadgeEarningIsIdempotent(t *testing.T) {
	r := testRules()
	l := Ledger{UserID: 1}

	// Three consecutive early-morning days: early_bird on day one,
	// streak_3 on day three, both exactly once.
	var earnedIDs []string
	for i := 0; i < 4; i++ {
		var earned []Badge
		l, earned = r.ApplyCompletion(l, at(2026, 2, 1+i, 7, 0), nil, nil)
		for _, b := range earned {
			earnedIDs = append(earnedIDs, b.ID)
		}
	}

	seen := map[string]int{}
	for _, b := range l.Badges {
		seen[b.ID]++
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("badge %s present %d times", id, n)
		}
	}
	if seen["early_bird"] != 1 || seen["streak_3"] != 1 {
		t.Fatalf("expected early_bird and streak_3 earned once, got %v", seen)
	}
	count := map[string]int{}
	for _, id := range earnedIDs {
		count[id]++
		if count[id] > 1 {
			t.Fatalf("badge %s reported as newly earned twice", id)
		}
	}
}

func TestNilCountsNeverEarnSituationalBadges(t *testing.T) {
	r := testRules()
	l, _ := r.ApplyCompletion(Ledger{UserID: 1}, at(2026, 2, 6, 14, 0), nil, nil)
	if l.HasBadge("clean_sweep") || l.HasBadge("clear_horizon") {
		t.Fatal("situational badges earned without counts supplied")
	}

	l2, earned := r.ApplyCompletion(Ledger{UserID: 1}, at(2026, 2, 6, 14, 0), intp(2), intp(0))
	if l2.HasBadge("clean_sweep") {
		t.Fatal("clean_sweep earned with 2 tasks remaining")
	}
	found := false
	for _, b := range earned {
		if b.ID == "clear_horizon" {
			found = true
		}
	}
	if !found {
		t.Fatal("clear_horizon not earned with zero overdue")
	}
}

func TestApplyReleaseTouchesOnlyReleaseCounter(t *testing.T) {
	day := "2026-02-06"
	r := testRules()
	l := Ledger{
		UserID:           1,
		CurrentStreak:    4,
		LongestStreak:    9,
		TotalCompleted:   42,
		TotalReleased:    3,
		LastCompletedDay: &day,
		Badges:           []Badge{{ID: "streak_3", Name: "Momentum"}},
	}

	next := r.ApplyRelease(l)
	if next.TotalReleased != 4 {
		t.Fatalf("totalReleased = %d, want 4", next.TotalReleased)
	}
	if next.CurrentStreak != 4 || next.LongestStreak != 9 || next.TotalCompleted != 42 {
		t.Fatal("release modified streak or completion counters")
	}
	if len(next.Badges) != 1 || *next.LastCompletedDay != day {
		t.Fatal("release modified badges or last completed day")
	}
}

func TestApplyCompletionDoesNotMutateInput(t *testing.T) {
	day := "2026-02-06"
	r := testRules()
	orig := Ledger{
		UserID:           1,
		CurrentStreak:    2,
		TotalCompleted:   9,
		LastCompletedDay: &day,
		Badges:           []Badge{{ID: "early_bird"}},
	}

	_, _ = r.ApplyCompletion(orig, at(2026, 2, 7, 8, 0), intp(0), intp(0))

	if orig.CurrentStreak != 2 || orig.TotalCompleted != 9 || len(orig.Badges) != 1 {
		t.Fatal("ApplyCompletion mutated its input ledger")
	}
	if *orig.LastCompletedDay != day {
		t.Fatal("ApplyCompletion mutated the input day key")
	}
}

func TestCatalogIntegrity(t *testing.T) {
	defs := Catalog()
	if len(defs) != 9 {
		t.Fatalf("catalog has %d entries, want 9", len(defs))
	}
	seen := map[string]bool{}
	for _, def := range defs {
		if def.ID == "" || def.Name == "" || def.Description == "" || def.Icon == "" {
			t.Errorf("badge %q has empty fields", def.ID)
		}
		if def.Earned == nil {
			t.Errorf("badge %q has no predicate", def.ID)
		}
		if seen[def.ID] {
			t.Errorf("duplicate badge id %q", def.ID)
		}
		seen[def.ID] = true
	}
}
