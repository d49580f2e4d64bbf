// Package station implements the per-station capacity-over-time model
// (spec §4.1): a list of committed half-open intervals and the feasibility
// search that answers "how loaded are you at t?" and "where's the earliest
// slot that fits (qty, duration) without ever exceeding capacity?".
//
// A Station carries no lock of its own — per §5, the single mutex in
// sharedctx serializes every read and write across the Catalog, the
// Production Manager, and Stats. Treat every exported method here as
// requiring that outer lock to already be held.
package station

import (
	"sort"
	"strings"
	"time"
)

// Task is a committed unit of production work: qty pizzas of one
// (name,size) baking in parallel for [Start,End).
type Task struct {
	Quantity  int
	Start     time.Time
	End       time.Time
	PizzaName string
	PizzaSize string
}

// Station is a bounded-capacity parallel production unit.
type Station struct {
	ID            int
	MaxCapacity   int
	Available     bool
	SupportedSize string // "" or "-" means any; otherwise "G" or "M"
	Restrictions  map[string]struct{}
	Planning      []Task
}

// New constructs a Station, parsing the comma-separated restriction list the
// way the authoritative store stores it: empty tokens and the sentinel
// token "---" are dropped (§4.1 edge cases).
func New(id, maxCapacity int, available bool, supportedSize, restrictionsCSV string) *Station {
	return &Station{
		ID:            id,
		MaxCapacity:   maxCapacity,
		Available:     available,
		SupportedSize: supportedSize,
		Restrictions:  ParseRestrictions(restrictionsCSV),
	}
}

// ParseRestrictions splits a comma-separated restriction list, stripping
// empty tokens and the "---" no-restriction sentinel.
func ParseRestrictions(csv string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, tok := range strings.Split(csv, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" || tok == "---" {
			continue
		}
		out[tok] = struct{}{}
	}
	return out
}

// anySize reports whether a supportedSize value means "no size restriction".
func anySize(s string) bool {
	return s == "" || s == "-"
}

// LoadAt returns the summed quantity of every committed task whose interval
// contains t: start inclusive, end exclusive.
func (s *Station) LoadAt(t time.Time) int {
	load := 0
	for _, task := range s.Planning {
		if !task.Start.After(t) && task.End.After(t) {
			load += task.Quantity
		}
	}
	return load
}

// CheckInterval reports whether qty more units fit across [start,end)
// without ever pushing any instant's load over MaxCapacity. Since load is
// piecewise-constant and only changes at task starts, it is sufficient to
// test load at `start` and at every committed task start strictly inside
// (start,end) (§4.1).
func (s *Station) CheckInterval(start, end time.Time, qty int) bool {
	if s.LoadAt(start)+qty > s.MaxCapacity {
		return false
	}
	for _, task := range s.Planning {
		if task.Start.After(start) && task.Start.Before(end) {
			if s.LoadAt(task.Start)+qty > s.MaxCapacity {
				return false
			}
		}
	}
	return true
}

// EarliestStart finds the earliest instant at or after now at which a new
// task of (qty, duration) can be placed without violating capacity, or
// returns ok=false if no such instant exists among the candidates
// (§4.1 — the candidate set is bounded by {now} ∪ existing task ends).
func (s *Station) EarliestStart(pizzaName, pizzaSize string, qty int, duration time.Duration, now time.Time) (time.Time, bool) {
	if !s.Available {
		return time.Time{}, false
	}
	if _, forbidden := s.Restrictions[pizzaName]; forbidden {
		return time.Time{}, false
	}
	if !anySize(s.SupportedSize) && pizzaSize != s.SupportedSize {
		return time.Time{}, false
	}
	if qty > s.MaxCapacity {
		return time.Time{}, false
	}

	candidates := []time.Time{now}
	for _, task := range s.Planning {
		if task.End.After(now) {
			candidates = append(candidates, task.End)
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Before(candidates[j]) })

	for _, c := range candidates {
		start := c
		if !c.Equal(now) {
			start = c.Add(time.Second) // strict-after nudge, avoids boundary coincidence
		}
		end := start.Add(duration)
		if s.CheckInterval(start, end, qty) {
			return start, true
		}
	}
	return time.Time{}, false
}

// Assign commits a task. The caller must have already verified
// CheckInterval(start, start+duration, qty) — Assign does not re-check.
func (s *Station) Assign(pizzaName, pizzaSize string, qty int, duration time.Duration, start time.Time) time.Time {
	end := start.Add(duration)
	s.Planning = append(s.Planning, Task{
		Quantity:  qty,
		Start:     start,
		End:       end,
		PizzaName: pizzaName,
		PizzaSize: pizzaSize,
	})
	return end
}

// Housekeep discards tasks that have already ended, bounding Planning's
// length by the in-flight horizon.
func (s *Station) Housekeep(now time.Time) {
	kept := s.Planning[:0]
	for _, task := range s.Planning {
		if task.End.After(now) {
			kept = append(kept, task)
		}
	}
	s.Planning = kept
}
