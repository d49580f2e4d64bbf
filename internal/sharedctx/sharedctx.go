// Package sharedctx is the single owned context value threaded to both the
// order agent and the dashboard agent (§9 — "Mutable shared state"). It
// bundles the Catalog, the Production Manager, and Stats behind one mutex,
// replacing the fine-grained per-struct locking a naive port would reach
// for: the critical sections here are short and contention is low, so one
// lock is sufficient (§5).
package sharedctx

import (
	"context"
	"sync"
	"time"

	"github.com/meline-schndr/pizzaline/internal/catalog"
	"github.com/meline-schndr/pizzaline/internal/production"
	"github.com/meline-schndr/pizzaline/internal/stats"
)

// SharedContext guards the Catalog, the Production Manager, and Stats with
// a single mutex. Every method here is a short critical section.
type SharedContext struct {
	mu      sync.Mutex
	catalog *catalog.Catalog
	manager *production.Manager
	stats   *stats.Stats
}

func New(cat *catalog.Catalog, mgr *production.Manager, st *stats.Stats) *SharedContext {
	return &SharedContext{catalog: cat, manager: mgr, stats: st}
}

// AdmitResult is the outcome of one order's admission attempt, enough for
// the caller to update a batch-level log without re-entering the lock.
type AdmitResult struct {
	Accepted  bool
	StationID int
	Refusal   string // reason, only meaningful when !Accepted
}

// Admit runs one order through refill, feasibility, and stats update as a
// single critical section: catalog read (possibly a refill), assignment
// attempt via the Production Manager, counter/ingredient bump. This is the
// only place the three components interact, per §5.
func (sc *SharedContext) Admit(ctx context.Context, pizzaName, pizzaSize string, clientID, quantity int, deliveryDeadline, now time.Time) AdmitResult {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	client, clientOK := sc.catalog.FindClient(ctx, clientID)
	pizza, pizzaOK := sc.catalog.FindPizza(ctx, pizzaName, pizzaSize)
	if !clientOK || !pizzaOK {
		sc.stats.RecordRefused()
		return AdmitResult{Accepted: false, Refusal: "unknown client or pizza after refill"}
	}

	productionDeadline := deliveryDeadline.Add(-time.Duration(client.Distance) * time.Minute)

	sc.manager.Housekeep(now)
	res := sc.manager.FindAndAssign(pizzaName, pizzaSize, quantity, time.Duration(pizza.ProdTime)*time.Minute, productionDeadline, now)
	if !res.Accepted {
		sc.stats.RecordRefused()
		return AdmitResult{Accepted: false, Refusal: "no feasible station for deadline"}
	}

	sc.stats.RecordAccepted(quantity, pizza.Composition)
	return AdmitResult{Accepted: true, StationID: res.StationID}
}

// SlackHints reports the client distance and pizza production time used
// for intra-batch LSTF sorting (§4.5 step a/b). It performs the same
// catalog lookup (with refill) that Admit would, so a later Admit call for
// the same entity hits the in-memory map rather than refilling twice
// (I5). found is false only when the lookup still misses after refill —
// the caller then substitutes the spec's sort-only defaults.
func (sc *SharedContext) SlackHints(ctx context.Context, clientID int, pizzaName, pizzaSize string) (distance, prodTimeMinutes int, found bool) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	client, clientOK := sc.catalog.FindClient(ctx, clientID)
	pizza, pizzaOK := sc.catalog.FindPizza(ctx, pizzaName, pizzaSize)
	if !clientOK || !pizzaOK {
		return 0, 0, false
	}
	return client.Distance, pizza.ProdTime, true
}

// StationSnapshot is one station's state as exposed to the dashboard.
type StationSnapshot struct {
	ID           int
	Available    bool
	MaxCapacity  int
	CurrentLoad  int
	Size         string
	Restrictions []string
}

// Snapshot assembles the dashboard's read-only view under a brief hold of
// the same lock Admit uses (§4.6 — "reads Manager state under a shared
// read lock"; this codebase uses one mutex rather than a separate RWMutex
// since contention between the two agents is low).
func (sc *SharedContext) Snapshot(now time.Time) (stats.Snapshot, []StationSnapshot) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	statSnap := sc.stats.Snapshot()

	stations := sc.manager.Stations()
	out := make([]StationSnapshot, 0, len(stations))
	for _, s := range stations {
		restrictions := make([]string, 0, len(s.Restrictions))
		for name := range s.Restrictions {
			restrictions = append(restrictions, name)
		}
		out = append(out, StationSnapshot{
			ID:           s.ID,
			Available:    s.Available,
			MaxCapacity:  s.MaxCapacity,
			CurrentLoad:  s.LoadAt(now),
			Size:         s.SupportedSize,
			Restrictions: restrictions,
		})
	}
	return statSnap, out
}
