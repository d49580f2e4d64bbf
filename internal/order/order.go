// Package order parses the UDP wire record (spec §6) and computes the
// delivery-deadline arithmetic of §4.4.
package order

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const wireLayout = "02/01/2006 15:04:05"

// Order is the parsed request record. It is transient: it lives within one
// batch cycle and is never persisted past admission.
type Order struct {
	Timestamp         time.Time
	ClientID          int
	PizzaName         string
	PizzaSize         string
	Quantity          int
	DeliveryClockTime string // raw "HH:mm", validated lazily by Deadline
}

// ErrMalformed marks a record that must be discarded outright: wrong field
// count or a field that fails to parse as the numeric type it must be.
// A bad clock-time string is deliberately NOT one of these — per §4.4 that
// is a "bad deadline format" refusal, not a discard.
type ErrMalformed struct {
	Reason string
}

func (e *ErrMalformed) Error() string { return "malformed order: " + e.Reason }

// Parse decodes one CSV record:
//
//	dd/MM/yyyy HH:mm:ss,<clientId>,<pizzaName>,<pizzaSize>,<quantity>,<HH:mm>
//
// A record with any field count other than six is malformed. An
// unparseable timestamp is NOT fatal — §4.4 says to substitute now and
// continue — but an unparseable clientId or quantity is, since there is no
// sensible substitute for either.
func Parse(line string, now time.Time) (Order, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 6 {
		return Order{}, &ErrMalformed{Reason: fmt.Sprintf("expected 6 fields, got %d", len(fields))}
	}

	ts, err := time.ParseInLocation(wireLayout, strings.TrimSpace(fields[0]), time.Local)
	if err != nil {
		ts = now
	}

	clientID, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return Order{}, &ErrMalformed{Reason: "clientId: " + err.Error()}
	}

	qty, err := strconv.Atoi(strings.TrimSpace(fields[4]))
	if err != nil {
		return Order{}, &ErrMalformed{Reason: "quantity: " + err.Error()}
	}

	return Order{
		Timestamp:         ts,
		ClientID:          clientID,
		PizzaName:         strings.TrimSpace(fields[2]),
		PizzaSize:         strings.TrimSpace(fields[3]),
		Quantity:          qty,
		DeliveryClockTime: strings.TrimSpace(fields[5]),
	}, nil
}

// Deadline computes the absolute delivery instant from the order's
// timestamp and its wall-clock HH:mm field, wrapping past midnight (§4.4,
// L1): candidate = today (by timestamp's date) at HH:mm:00; if that's
// before the timestamp, it means delivery is tomorrow. Returns ok=false on
// an invalid clock-time format ("bad deadline format").
func (o Order) Deadline() (time.Time, bool) {
	clock, err := time.Parse("15:04", o.DeliveryClockTime)
	if err != nil {
		return time.Time{}, false
	}

	loc := o.Timestamp.Location()
	candidate := time.Date(o.Timestamp.Year(), o.Timestamp.Month(), o.Timestamp.Day(),
		clock.Hour(), clock.Minute(), 0, 0, loc)
	if candidate.Before(o.Timestamp) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate, true
}

// TimeAvailable is the duration between arrival and the computed delivery
// deadline. Returns ok=false if the clock-time doesn't parse.
func (o Order) TimeAvailable() (time.Duration, bool) {
	deadline, ok := o.Deadline()
	if !ok {
		return 0, false
	}
	return deadline.Sub(o.Timestamp), true
}
