// Package order implements the per-order lifecycle state machine: the status
// enum with its single forward-transition table, the Record aggregate owning
// status history and product lines, and the Snapshot value published for
// subscribers.
package order
