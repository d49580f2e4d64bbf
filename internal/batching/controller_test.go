package batching

import (
	"context"
	"testing"
	"time"

	"github.com/meline-schndr/pizzaline/internal/catalog"
	"github.com/meline-schndr/pizzaline/internal/catalogstore"
	"github.com/meline-schndr/pizzaline/internal/order"
	"github.com/meline-schndr/pizzaline/internal/production"
	"github.com/meline-schndr/pizzaline/internal/sharedctx"
	"github.com/meline-schndr/pizzaline/internal/station"
	"github.com/meline-schndr/pizzaline/internal/stats"
)

type fakeStore struct {
	clients map[int]catalogstore.ClientRow
	pizzas  map[string]catalogstore.PizzaRow
}

func (f *fakeStore) LoadClients(ctx context.Context) ([]catalogstore.ClientRow, error) { return nil, nil }
func (f *fakeStore) LoadPizzas(ctx context.Context) ([]catalogstore.PizzaRow, error)   { return nil, nil }
func (f *fakeStore) LoadStations(ctx context.Context) ([]catalogstore.StationRow, error) {
	return nil, nil
}
func (f *fakeStore) FindClient(ctx context.Context, id int) (catalogstore.ClientRow, bool, error) {
	row, ok := f.clients[id]
	return row, ok, nil
}
func (f *fakeStore) FindPizza(ctx context.Context, name, size string) (catalogstore.PizzaRow, bool, error) {
	row, ok := f.pizzas[name+"/"+size]
	return row, ok, nil
}

func newTestController(s []*station.Station, store *fakeStore) *Controller {
	cat := catalog.New(store, nil)
	mgr := production.NewManager(s)
	shared := sharedctx.New(cat, mgr, stats.New())
	return New(shared, nil, DefaultBatchSize, DefaultBatchTimeout)
}

// L3 — given slacks (10,2,7,2) the commit order is slack-2 entries first
// (in input order), then 7, then 10. We construct orders whose
// timeAvailable, once the zero distance/prodTime of a single shared pizza
// is subtracted, yields exactly those slacks.
func TestSortBySlackOrdersAscendingAndStable(t *testing.T) {
	store := &fakeStore{
		clients: map[int]catalogstore.ClientRow{1: {ID: 1, Distance: 0}},
		pizzas:  map[string]catalogstore.PizzaRow{"P/G": {Nom: "P", Taille: "G", TPsProd: 0}},
	}
	c := newTestController(nil, store)

	now := time.Date(2026, 7, 29, 10, 0, 0, 0, time.Local)
	mk := func(slackMinutes, tag int) order.Order {
		return order.Order{
			Timestamp:         now,
			ClientID:          1,
			PizzaName:         "P",
			PizzaSize:         "G",
			Quantity:          tag, // carries identity only, unused by the sort
			DeliveryClockTime: deadlineClock(now, slackMinutes),
		}
	}

	// two entries share slack=2; the first (tag 201) arrives before the
	// second (tag 202) and must stay ahead of it after the stable sort.
	batch := []order.Order{mk(10, 100), mk(2, 201), mk(7, 300), mk(2, 202)}
	c.sortBySlack(context.Background(), batch)

	wantSlacks := []int{2, 2, 7, 10}
	for i, o := range batch {
		d, _ := o.Deadline()
		got := int(d.Sub(now).Minutes())
		if got != wantSlacks[i] {
			t.Errorf("position %d: slack = %d, want %d", i, got, wantSlacks[i])
		}
	}
	if batch[0].Quantity != 201 || batch[1].Quantity != 202 {
		t.Errorf("expected stable order 201 then 202 among equal slacks, got %d then %d", batch[0].Quantity, batch[1].Quantity)
	}
}

func deadlineClock(base time.Time, minutesAhead int) string {
	d := base.Add(time.Duration(minutesAhead) * time.Minute)
	return d.Format("15:04")
}

// S5 — LSTF reorder admits more of a batch than naive arrival order when
// a tight-slack order would otherwise be starved by ones ahead of it in
// the queue. Station cap 10 forces three qty=10 orders onto strictly
// sequential 10-minute slots, so arrival order and slack order can commit
// a different subset.
func TestFlushAdmitsMoreThanArrivalOrderWouldHave(t *testing.T) {
	store := &fakeStore{
		clients: map[int]catalogstore.ClientRow{1: {ID: 1, Distance: 0}},
		pizzas:  map[string]catalogstore.PizzaRow{"P/G": {Nom: "P", Taille: "G", TPsProd: 10}},
	}
	// A: slack 20min (arrives first); B: slack 2min (tight); C: slack 30min.
	now := time.Date(2026, 7, 29, 10, 0, 0, 0, time.Local)
	a := order.Order{Timestamp: now, ClientID: 1, PizzaName: "P", PizzaSize: "G", Quantity: 10, DeliveryClockTime: deadlineClock(now, 30)}
	b := order.Order{Timestamp: now, ClientID: 1, PizzaName: "P", PizzaSize: "G", Quantity: 10, DeliveryClockTime: deadlineClock(now, 12)}
	cc := order.Order{Timestamp: now, ClientID: 1, PizzaName: "P", PizzaSize: "G", Quantity: 10, DeliveryClockTime: deadlineClock(now, 40)}

	arrivalStation := station.New(1, 10, true, "", "")
	arrivalCtl := newTestController([]*station.Station{arrivalStation}, store)
	arrivalCtl.buffer = []order.Order{a, b, cc} // no sort: simulate naive FIFO
	for _, o := range arrivalCtl.buffer {
		arrivalCtl.admitOne(context.Background(), o)
	}
	arrivalSnap, _ := arrivalCtl.shared.Snapshot(now)

	lstfStation := station.New(1, 10, true, "", "")
	lstfCtl := newTestController([]*station.Station{lstfStation}, store)
	lstfCtl.buffer = []order.Order{a, b, cc}
	lstfCtl.flush(context.Background()) // sorts by slack first

	lstfSnap, _ := lstfCtl.shared.Snapshot(now)

	if lstfSnap.Accepted <= arrivalSnap.Accepted {
		t.Fatalf("expected LSTF order to admit more than FIFO arrival order, got lstf=%d fifo=%d",
			lstfSnap.Accepted, arrivalSnap.Accepted)
	}
	if lstfSnap.Refused >= arrivalSnap.Refused && arrivalSnap.Refused > 0 {
		t.Errorf("expected LSTF to refuse fewer orders than FIFO, got lstf=%d fifo=%d", lstfSnap.Refused, arrivalSnap.Refused)
	}
}

func TestIngestDiscardsMalformedWithoutCounterChange(t *testing.T) {
	store := &fakeStore{}
	c := newTestController(nil, store)

	c.ingest(context.Background(), []byte("not,enough,fields"))

	if len(c.buffer) != 0 {
		t.Fatalf("expected malformed record to be discarded, buffer has %d", len(c.buffer))
	}
	statSnap, _ := c.shared.Snapshot(time.Now())
	if statSnap.Accepted != 0 || statSnap.Refused != 0 {
		t.Errorf("expected no counter change for malformed record, got %+v", statSnap)
	}
}

func TestIngestFlushesAtBatchSize(t *testing.T) {
	store := &fakeStore{
		clients: map[int]catalogstore.ClientRow{1: {ID: 1, Distance: 0}},
		pizzas:  map[string]catalogstore.PizzaRow{"P/G": {Nom: "P", Taille: "G", TPsProd: 1}},
	}
	s1 := station.New(1, 100, true, "", "")
	c := newTestController([]*station.Station{s1}, store)
	c.batchSize = 2

	now := time.Now()
	rec := func() []byte {
		line := now.Format("02/01/2006 15:04:05") + ",1,P,G,1," + deadlineClock(now, 30)
		return []byte(line)
	}

	c.ingest(context.Background(), rec())
	if len(c.buffer) != 1 {
		t.Fatalf("expected buffer of 1 after first datagram, got %d", len(c.buffer))
	}
	c.ingest(context.Background(), rec())
	if len(c.buffer) != 0 {
		t.Fatalf("expected flush at batch size 2, buffer has %d", len(c.buffer))
	}
}
