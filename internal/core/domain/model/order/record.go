package order

import (
	"errors"
	"fmt"
	"maps"

	"retail/internal/core/domain/model/kernel"
	"retail/internal/pkg/errs"
)

// ErrRecordIsNotConstructed is returned when a Record instance was not
// created through the NewRecord factory function.
var ErrRecordIsNotConstructed = errors.New("Record must be created via NewRecord constructor")

// ErrBackwardTransition is returned by Advance in strict mode when an
// explicit target status would move the order backward in the lifecycle.
var ErrBackwardTransition = errors.New("explicit status would move the order backward")

// HistoryEntry is one append-only (timestamp, status) pair in an order's
// status history.
type HistoryEntry struct {
	Timestamp int64
	Status    Status
}

// Record is the aggregate root for a single order's lifecycle state. It owns
// the current status, the ordered product lines and the append-only status
// history.
//
// Record maintains these invariants:
//   - the history is monotonically non-decreasing by timestamp
//   - the current status always equals the status of the latest history entry
//   - product quantities are positive and the total quantity is positive
//   - redundant or out-of-sequence progression commands are absorbed as
//     no-ops, never as errors (duplicate delivery must not corrupt history)
//
// A Record is mutated only by the owning order entity's own executor, so no
// internal locking is needed.
type Record struct {
	id       kernel.Address
	customer kernel.Address
	products map[string]int
	status   Status
	updated  int64
	history  []HistoryEntry
	strict   bool

	isConstructed bool
}

// Option configures a Record at construction time.
type Option func(*Record)

// WithStrictAdvance makes explicit-status transitions reject targets that
// would move the order backward. The default mirrors the loose behavior of
// the external bulk-update path: an explicit status is applied as-is, with a
// consistent history append, and it is the caller's responsibility that the
// target makes sense.
func WithStrictAdvance() Option {
	return func(r *Record) {
		r.strict = true
	}
}

// NewRecord creates the lifecycle record for the order at the given address.
// The record starts with no state; Place performs the initial transition.
func NewRecord(id kernel.Address, opts ...Option) (*Record, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if id.Kind() != kernel.KindOrder {
		return nil, errs.NewValueIsInvalidErrorWithCause("id",
			fmt.Errorf("%s is not an order address", id))
	}

	r := &Record{
		id:            id,
		status:        Unknown,
		isConstructed: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Validate ensures the Record was created through NewRecord.
func (r *Record) Validate() error {
	if r == nil || !r.isConstructed {
		return ErrRecordIsNotConstructed
	}
	return nil
}

// ID returns the order's address.
func (r *Record) ID() kernel.Address {
	return r.id
}

// Customer returns the owning customer's address. Zero until placed.
func (r *Record) Customer() kernel.Address {
	return r.customer
}

// Status returns the current lifecycle status. Unknown until placed.
func (r *Record) Status() Status {
	return r.status
}

// UpdatedAt returns the timestamp of the last status change in Unix
// milliseconds. Zero until placed.
func (r *Record) UpdatedAt() int64 {
	return r.updated
}

// Products returns a copy of the ordered product lines.
func (r *Record) Products() map[string]int {
	return maps.Clone(r.products)
}

// History returns a copy of the append-only status history, oldest first.
func (r *Record) History() []HistoryEntry {
	out := make([]HistoryEntry, len(r.history))
	copy(out, r.history)
	return out
}

// IsPlaced reports whether the initial placement transition has happened.
func (r *Record) IsPlaced() bool {
	return r.status != Unknown
}

// Place performs the initial lifecycle transition. It records the product
// lines and the owning customer, sets the status to Placed and appends the
// first history entry.
//
// Place is only valid when the order has no prior state. A repeated placement
// is absorbed as a no-op: the first return value reports whether the
// transition was applied, so callers know whether to publish and to signal
// the owning customer.
//
// A placement whose total product quantity is zero, or that carries a
// non-positive line quantity, is malformed: it is rejected with an error and
// no state is mutated.
func (r *Record) Place(products map[string]int, customer kernel.Address, timestamp int64) (bool, error) {
	if err := r.Validate(); err != nil {
		return false, err
	}
	if r.IsPlaced() {
		return false, nil
	}

	if err := customer.Validate(); err != nil {
		return false, err
	}
	if customer.Kind() != kernel.KindCustomer {
		return false, errs.NewValueIsInvalidErrorWithCause("customer",
			fmt.Errorf("%s is not a customer address", customer))
	}
	if err := validateProducts(products); err != nil {
		return false, err
	}

	r.customer = customer
	r.products = maps.Clone(products)
	r.apply(Placed, timestamp)
	return true, nil
}

// Advance moves the order forward in its lifecycle.
//
// With explicit == Unknown the order transitions to the next status in the
// sequence. If the order is already terminal, or was never placed, the call
// is a no-op.
//
// With a defined explicit status that differs from the current one, the order
// transitions directly to it. By default no reachability validation is
// performed: the explicit path exists for externally driven status (such as a
// bulk administrative update) and may skip states. Under WithStrictAdvance a
// backward explicit target is rejected with ErrBackwardTransition instead.
// An explicit target equal to the current status is a no-op.
//
// The first return value reports whether a transition was applied. No-ops
// leave both the status and the history untouched.
func (r *Record) Advance(explicit Status, timestamp int64) (bool, error) {
	if err := r.Validate(); err != nil {
		return false, err
	}
	if !r.IsPlaced() {
		return false, nil
	}

	target := explicit
	if target == Unknown {
		next, ok := r.status.Next()
		if !ok {
			return false, nil
		}
		target = next
	} else {
		if err := target.Validate(); err != nil {
			return false, err
		}
		if target == r.status {
			return false, nil
		}
		if r.strict && target < r.status {
			return false, fmt.Errorf("%w: %s -> %s", ErrBackwardTransition, r.status, target)
		}
	}

	r.apply(target, timestamp)
	return true, nil
}

// Snapshot returns the immutable published view of the record for the
// "status" lane. The product map is copied so subscribers can never observe
// later mutations.
func (r *Record) Snapshot() Snapshot {
	return Snapshot{
		OrderID:    r.id.ID(),
		CustomerID: r.customer.ID(),
		Products:   maps.Clone(r.products),
		Status:     r.status,
		Timestamp:  r.updated,
	}
}

// apply commits a status change and appends the matching history entry,
// clamping the timestamp so the history stays monotone even if the caller's
// clock steps backward.
func (r *Record) apply(status Status, timestamp int64) {
	if timestamp < r.updated {
		timestamp = r.updated
	}
	r.status = status
	r.updated = timestamp
	r.history = append(r.history, HistoryEntry{Timestamp: timestamp, Status: status})
}

func validateProducts(products map[string]int) error {
	total := 0
	for code, qty := range products {
		if code == "" {
			return errs.NewValueIsRequiredError("product code")
		}
		if qty <= 0 {
			return errs.NewValueIsInvalidErrorWithCause("products",
				fmt.Errorf("quantity %d for %s is not positive", qty, code))
		}
		total += qty
	}
	if total == 0 {
		return errs.NewValueIsInvalidErrorWithCause("products",
			errors.New("total product quantity is zero"))
	}
	return nil
}
