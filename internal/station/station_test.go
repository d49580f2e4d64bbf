package station

import (
	"testing"
	"time"
)

func TestParseRestrictionsStripsEmptyAndSentinel(t *testing.T) {
	r := ParseRestrictions(" Veggie ,,---, Chevre")
	if len(r) != 2 {
		t.Fatalf("expected 2 restrictions, got %d (%v)", len(r), r)
	}
	if _, ok := r["Veggie"]; !ok {
		t.Error("expected Veggie in restrictions")
	}
	if _, ok := r["Chevre"]; !ok {
		t.Error("expected Chevre in restrictions")
	}
}

func TestLoadAtBoundariesAreHalfOpen(t *testing.T) {
	now := time.Now()
	s := New(1, 20, true, "", "")
	s.Assign("Reine", "G", 10, 10*time.Minute, now)

	if got := s.LoadAt(now); got != 10 {
		t.Errorf("load at start = %d, want 10 (start inclusive)", got)
	}
	if got := s.LoadAt(now.Add(10 * time.Minute)); got != 0 {
		t.Errorf("load at end = %d, want 0 (end exclusive)", got)
	}
	if got := s.LoadAt(now.Add(5 * time.Minute)); got != 10 {
		t.Errorf("load mid-interval = %d, want 10", got)
	}
}

// S3 — size restriction: a G pizza must skip an M-only station.
func TestEarliestStartRejectsSizeMismatch(t *testing.T) {
	now := time.Now()
	s := New(1, 30, true, "M", "")
	if _, ok := s.EarliestStart("Reine", "G", 3, 10*time.Minute, now); ok {
		t.Error("expected size-restricted station to reject a mismatched size")
	}
}

func TestEarliestStartRejectsRestrictedPizza(t *testing.T) {
	now := time.Now()
	s := New(1, 30, true, "", "Veggie,Chevre")
	if _, ok := s.EarliestStart("Veggie", "G", 3, 10*time.Minute, now); ok {
		t.Error("expected restricted pizza to be rejected")
	}
}

func TestEarliestStartRejectsUnavailableStation(t *testing.T) {
	now := time.Now()
	s := New(1, 30, false, "", "")
	if _, ok := s.EarliestStart("Reine", "G", 3, 10*time.Minute, now); ok {
		t.Error("expected unavailable station to reject")
	}
}

func TestEarliestStartRejectsOverCapacity(t *testing.T) {
	now := time.Now()
	s := New(1, 10, true, "", "")
	if _, ok := s.EarliestStart("Reine", "G", 11, 10*time.Minute, now); ok {
		t.Error("expected qty > maxCapacity to be an immediate reject")
	}
}

// S4 — parallel capacity fit: two qty=15 orders on a cap-20 station both
// commit, the second nudged one second past the first task's end.
func TestEarliestStartParallelCapacityFit(t *testing.T) {
	now := time.Now()
	s := New(1, 20, true, "", "")

	start1, ok := s.EarliestStart("Reine", "G", 15, 10*time.Minute, now)
	if !ok || !start1.Equal(now) {
		t.Fatalf("first order: got (%v,%v), want (%v,true)", start1, ok, now)
	}
	end1 := s.Assign("Reine", "G", 15, 10*time.Minute, start1)

	start2, ok := s.EarliestStart("Reine", "G", 15, 10*time.Minute, now)
	if !ok {
		t.Fatal("second order: expected a feasible start")
	}
	want := end1.Add(time.Second)
	if !start2.Equal(want) {
		t.Errorf("second order start = %v, want %v (end+1s nudge)", start2, want)
	}
}

func TestCheckIntervalRejectsMidIntervalOverflow(t *testing.T) {
	now := time.Now()
	s := New(1, 10, true, "", "")
	s.Assign("Reine", "G", 5, 10*time.Minute, now.Add(5*time.Minute))

	// A 0..20min interval overlaps the committed task from min 5 to min 15;
	// adding qty 6 there would push load to 11 > capacity 10.
	if s.CheckInterval(now, now.Add(20*time.Minute), 6) {
		t.Error("expected mid-interval capacity overflow to be rejected")
	}
	if !s.CheckInterval(now, now.Add(20*time.Minute), 5) {
		t.Error("expected qty fitting exactly at capacity to be accepted")
	}
}

func TestHousekeepDropsEndedTasks(t *testing.T) {
	now := time.Now()
	s := New(1, 10, true, "", "")
	s.Assign("Reine", "G", 5, 10*time.Minute, now.Add(-20*time.Minute))
	s.Assign("Reine", "G", 5, 10*time.Minute, now.Add(5*time.Minute))

	s.Housekeep(now)

	if len(s.Planning) != 1 {
		t.Fatalf("expected 1 surviving task, got %d", len(s.Planning))
	}
	if s.Planning[0].Start.Before(now) {
		t.Error("expected the still-running task, got the already-ended one")
	}
}

func TestEarliestStartFitsAfterSaturatingTask(t *testing.T) {
	now := time.Now()
	s := New(1, 10, true, "", "")
	s.Assign("Reine", "G", 10, time.Hour, now)

	// Station is saturated for the whole hour; a 10-min request with no
	// candidate beyond that single task's end still finds the slot at end.
	start, ok := s.EarliestStart("Reine", "G", 10, 10*time.Minute, now)
	if !ok {
		t.Fatal("expected a fit at the saturated task's end")
	}
	if !start.Equal(now.Add(time.Hour).Add(time.Second)) {
		t.Errorf("start = %v, want end+1s", start)
	}
}
