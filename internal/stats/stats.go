// Package stats holds the process-wide counters exposed by the dashboard
// (§4.7): accepted/refused order counts and the per-ingredient tally.
// Stats carries no lock of its own; sharedctx's mutex protects it.
package stats

// Stats is mutated only from the Batching Controller's flush path and read
// by the dashboard's snapshot assembly.
type Stats struct {
	Accepted   int
	Refused    int
	Ingredient map[byte]int
}

// New returns a zeroed Stats ready for the process lifetime.
func New() *Stats {
	return &Stats{Ingredient: make(map[byte]int)}
}

// RecordAccepted increments the accepted counter and tallies the
// ingredients consumed by quantity × composition, counting only
// R/J/V/B tokens (§3 — the rest of the composition encoding is opaque).
func (s *Stats) RecordAccepted(quantity int, composition string) {
	s.Accepted++
	for i := 0; i < len(composition); i++ {
		c := composition[i]
		switch c {
		case 'R', 'J', 'V', 'B':
			s.Ingredient[c] += quantity
		}
	}
}

// RecordRefused increments the refused counter.
func (s *Stats) RecordRefused() {
	s.Refused++
}

// Snapshot is a read-only copy safe to hand to the dashboard after the
// lock is released.
type Snapshot struct {
	Accepted   int
	Refused    int
	Ingredient map[string]int
}

// Snapshot copies the current counters into an independent value.
func (s *Stats) Snapshot() Snapshot {
	ingredients := make(map[string]int, len(s.Ingredient))
	for k, v := range s.Ingredient {
		ingredients[string(k)] = v
	}
	return Snapshot{Accepted: s.Accepted, Refused: s.Refused, Ingredient: ingredients}
}
