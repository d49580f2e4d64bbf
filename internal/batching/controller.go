// Package batching implements the front-end loop of §4.5: it buffers
// arriving orders, reorders a batch by least-slack-time, then submits each
// order for admission. It re-expresses the source's blocking-receive-plus-
// computed-timeout loop as a single channel/select readiness wait (§9),
// rather than emulating exception-driven iteration.
package batching

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/meline-schndr/pizzaline/internal/events"
	"github.com/meline-schndr/pizzaline/internal/order"
	"github.com/meline-schndr/pizzaline/internal/sharedctx"
)

// DefaultBatchSize and DefaultBatchTimeout are the constants fixed by
// §4.5. An operator may override them via config, but these are what a
// deployment gets absent any configuration.
const (
	DefaultBatchSize    = 4
	DefaultBatchTimeout = 12 * time.Second
)

// missingClientSlackDistance and missingPizzaSlackProdTime stand in for a
// catalog miss when computing sort-only slack (§4.5 step b): the order
// still sorts to the back of the batch, but is still attempted — the
// Production Manager (via sharedctx) triggers the real refill.
const (
	missingClientSlackDistance = 0
	missingPizzaSlackProdTime  = 999
)

// Publisher is the audit/analytics sink for admission outcomes. Satisfied
// by events.Publisher; kept as an interface here so tests don't need a
// live Kafka broker.
type Publisher interface {
	PublishOutcome(ctx context.Context, evt events.OrderOutcome)
}

// Controller owns the buffer and the first-arrival clock. It is driven by
// a single goroutine — the order agent of §5 — and is not safe for
// concurrent use from multiple goroutines itself (the buffer is
// unsynchronized by design: only one agent ever touches it).
type Controller struct {
	shared    *sharedctx.SharedContext
	publisher Publisher

	batchSize    int
	batchTimeout time.Duration

	buffer       []order.Order
	firstArrival time.Time
}

// New constructs a Controller. batchSize <= 0 or batchTimeout <= 0 fall
// back to the spec's fixed defaults.
func New(shared *sharedctx.SharedContext, publisher Publisher, batchSize int, batchTimeout time.Duration) *Controller {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if batchTimeout <= 0 {
		batchTimeout = DefaultBatchTimeout
	}
	return &Controller{shared: shared, publisher: publisher, batchSize: batchSize, batchTimeout: batchTimeout}
}

// Run pulls raw datagram payloads from datagrams until ctx is cancelled,
// buffering and flushing per §4.5. It suspends in exactly one place — the
// select below — matching §5's "order agent suspends in exactly one
// place" discipline.
func (c *Controller) Run(ctx context.Context, datagrams <-chan []byte) {
	for {
		timer, stop := c.waitTimer()

		select {
		case <-ctx.Done():
			stop()
			return

		case payload, ok := <-datagrams:
			stop()
			if !ok {
				return
			}
			c.ingest(ctx, payload)

		case <-timerChan(timer):
			c.flush(ctx)
		}
	}
}

// waitTimer returns a channel-backed timer reflecting the wait budget of
// §4.5 step 1: nil (wait indefinitely) if the buffer is empty, otherwise
// the remaining time until BATCH_TIMEOUT since firstArrival, floored at 0.
func (c *Controller) waitTimer() (*time.Timer, func()) {
	if len(c.buffer) == 0 {
		return nil, func() {}
	}
	remaining := c.batchTimeout - time.Since(c.firstArrival)
	if remaining < 0 {
		remaining = 0
	}
	t := time.NewTimer(remaining)
	return t, func() { t.Stop() }
}

func timerChan(t *time.Timer) <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.C
}

// ingest parses one datagram and appends it to the buffer, flushing if the
// batch is now full. A malformed record is discarded and logged — no
// counter change (§7).
func (c *Controller) ingest(ctx context.Context, payload []byte) {
	now := time.Now()
	o, err := order.Parse(string(payload), now)
	if err != nil {
		log.Printf("⚠️  discarding malformed order: %v", err)
		return
	}

	if len(c.buffer) == 0 {
		c.firstArrival = now
	}
	c.buffer = append(c.buffer, o)

	if len(c.buffer) >= c.batchSize {
		c.flush(ctx)
	}
}

// flush sorts the buffer by least-slack-time and submits each order for
// admission in that order, then clears the buffer (§4.5 step 5).
func (c *Controller) flush(ctx context.Context) {
	if len(c.buffer) == 0 {
		return
	}

	batch := c.buffer
	c.buffer = nil
	c.firstArrival = time.Time{}

	c.sortBySlack(ctx, batch)

	for _, o := range batch {
		c.admitOne(ctx, o)
	}
}

// admitOne computes the delivery deadline and hands the order to
// sharedctx for the real feasibility check (refill included).
func (c *Controller) admitOne(ctx context.Context, o order.Order) {
	deadline, ok := o.Deadline()
	if !ok {
		log.Printf("⚠️  refusing order (client %d): bad deadline format", o.ClientID)
		c.publish(ctx, o, false, "bad deadline format")
		return
	}

	res := c.shared.Admit(ctx, o.PizzaName, o.PizzaSize, o.ClientID, o.Quantity, deadline, o.Timestamp)
	c.publish(ctx, o, res.Accepted, res.Refusal)
}

func (c *Controller) publish(ctx context.Context, o order.Order, accepted bool, reason string) {
	if c.publisher == nil {
		return
	}
	c.publisher.PublishOutcome(ctx, events.OrderOutcome{
		ClientID:  o.ClientID,
		PizzaName: o.PizzaName,
		PizzaSize: o.PizzaSize,
		Quantity:  o.Quantity,
		Accepted:  accepted,
		Reason:    reason,
		Timestamp: o.Timestamp,
	})
}

// slackKey pairs an order with its precomputed slack for sorting.
// sort.SliceStable keeps ties in arrival order (L3).
type slackKey struct {
	order order.Order
	slack time.Duration
}

const infiniteSlack = time.Duration(1<<63 - 1)

// sortBySlack reorders batch ascending by slack(o) = timeAvailable(o) -
// (client.distance + pizza.productionTime) minutes (§4.5 step a), using
// sharedctx's catalog (with refill) for the real distance/prodTime where
// available and the sort-only defaults of step b otherwise. The sort is
// stable, so orders with identical slack keep arrival order (L3).
func (c *Controller) sortBySlack(ctx context.Context, batch []order.Order) {
	keys := make([]slackKey, len(batch))
	for i, o := range batch {
		keys[i] = slackKey{order: o, slack: c.slackOf(ctx, o)}
	}
	sort.SliceStable(keys, func(i, j int) bool {
		return keys[i].slack < keys[j].slack
	})
	for i, k := range keys {
		batch[i] = k.order
	}
}

// slackOf computes timeAvailable(o) minus (distance + productionTime)
// minutes. An unparseable deadline gets +∞ slack (processed last). A
// catalog miss on client or pizza substitutes distance=0 / prodTime=999
// for this sort only — the order is still attempted during admission,
// which triggers the real refill.
func (c *Controller) slackOf(ctx context.Context, o order.Order) time.Duration {
	available, ok := o.TimeAvailable()
	if !ok {
		return infiniteSlack
	}

	distance, prodTime, found := c.shared.SlackHints(ctx, o.ClientID, o.PizzaName, o.PizzaSize)
	if !found {
		distance, prodTime = missingClientSlackDistance, missingPizzaSlackProdTime
	}
	penalty := time.Duration(distance+prodTime) * time.Minute
	return available - penalty
}
