package order

import (
	"fmt"

	"retail/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
// It implements a strictly forward state machine:
//
//	Placed ──> Processed ──> ReadyForPickup ──> PickedUp
//
// PickedUp is terminal. There is no skipping and no going back in the normal
// progression; the only way to leave the sequence is the explicit-status
// escape hatch on Record.Advance, which deliberately performs no
// reachability validation (see Record.Advance).
type Status int

const (
	// Unknown represents an undefined status. It is the status of an order
	// that has never been placed, and doubles as the "advance to next"
	// marker on update commands. Snapshots with Unknown status are treated
	// as "not yet reporting" by roll-ups, never as an error.
	Unknown Status = iota

	// Placed is the initial status recorded when an order is first placed.
	Placed

	// Processed indicates the store has processed the order.
	Processed

	// ReadyForPickup indicates the order is ready for the customer to
	// collect.
	ReadyForPickup

	// PickedUp indicates the customer has collected the order. This is the
	// terminal status; orders are never deleted, so a picked-up order keeps
	// its record for history.
	PickedUp
)

// statusNames maps each status to its wire name, the form published on lanes
// and recorded in status history.
var statusNames = map[Status]string{
	Placed:         "orderPlaced",
	Processed:      "orderProcessed",
	ReadyForPickup: "readyForPickup",
	PickedUp:       "pickupCompleted",
}

// nextStatus is the single forward-transition table for the lifecycle.
// Keeping it here, next to the enum, is deliberate: every entity kind that
// cares about ordering goes through this table instead of carrying its own.
var nextStatus = map[Status]Status{
	Placed:         Processed,
	Processed:      ReadyForPickup,
	ReadyForPickup: PickedUp,
}

// String returns the wire name of the status, or "unknown" for Unknown and
// any out-of-range value. Implements fmt.Stringer.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseStatus resolves a wire name back to its Status.
// Returns an error for names that do not denote a defined status.
func ParseStatus(name string) (Status, error) {
	for s, n := range statusNames {
		if n == name {
			return s, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status",
		fmt.Errorf("%q is not a known order status", name))
}

// Next returns the status following s in the lifecycle sequence.
// The second return value is false when s is terminal or undefined.
func (s Status) Next() (Status, bool) {
	next, ok := nextStatus[s]
	return next, ok
}

// IsTerminal reports whether the status ends the lifecycle.
func (s Status) IsTerminal() bool {
	return s == PickedUp
}

// Validate checks that the status is one of the defined lifecycle statuses.
// Unknown is invalid.
func (s Status) Validate() error {
	if _, ok := statusNames[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// MarshalText implements encoding.TextMarshaler so statuses serialize by wire
// name, including as JSON object keys in roll-up views.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
