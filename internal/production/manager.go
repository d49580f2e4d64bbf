// Package production implements the earliest-completion-time admission
// policy across the full set of stations (spec §4.2). The Manager owns the
// stations and their planning vectors exclusively; callers serialize access
// through sharedctx's single mutex (§5) rather than any lock in here.
package production

import (
	"sort"
	"time"

	"github.com/meline-schndr/pizzaline/internal/station"
)

// Manager orchestrates a fixed set of stations for the process lifetime.
type Manager struct {
	stations []*station.Station
}

// NewManager takes ownership of the given stations, sorting them by ID
// ascending so iteration order — and therefore tie-breaking — matches §4.2's
// "lowest station id wins" rule (L2) without depending on caller order.
func NewManager(stations []*station.Station) *Manager {
	sorted := make([]*station.Station, len(stations))
	copy(sorted, stations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	return &Manager{stations: sorted}
}

// Stations returns the manager's station set in ascending-ID order, for the
// dashboard snapshot.
func (m *Manager) Stations() []*station.Station {
	return m.stations
}

// Housekeep sweeps every station's ended tasks. Called before each
// admission attempt, per §4.2.
func (m *Manager) Housekeep(now time.Time) {
	for _, s := range m.stations {
		s.Housekeep(now)
	}
}

// Result is the outcome of an admission attempt.
type Result struct {
	Accepted  bool
	StationID int
	End       time.Time
}

// FindAndAssign runs the earliest-completion-time search of §4.2: the
// candidate station whose earliest feasible end is soonest — subject to
// that end not exceeding deliveryDeadline — wins and is committed
// atomically with the decision. Ties go to the lowest station ID, a
// consequence of ascending iteration order and a strict "<" comparison.
func (m *Manager) FindAndAssign(pizzaName, pizzaSize string, qty int, duration time.Duration, deliveryDeadline, now time.Time) Result {
	type candidate struct {
		s     *station.Station
		start time.Time
		end   time.Time
	}
	var best *candidate

	for _, s := range m.stations {
		start, ok := s.EarliestStart(pizzaName, pizzaSize, qty, duration, now)
		if !ok {
			continue
		}
		end := start.Add(duration)
		if end.After(deliveryDeadline) {
			continue
		}
		if best == nil || end.Before(best.end) {
			best = &candidate{s: s, start: start, end: end}
		}
	}

	if best == nil {
		return Result{Accepted: false}
	}

	end := best.s.Assign(pizzaName, pizzaSize, qty, duration, best.start)
	return Result{Accepted: true, StationID: best.s.ID, End: end}
}
