package order

import "maps"

// Snapshot is the value an order publishes on its "status" lane and the unit
// aggregators roll up over. It is a plain immutable value: every publication
// carries its own copy of the product map.
type Snapshot struct {
	OrderID    string         `json:"orderId"`
	CustomerID string         `json:"customerId"`
	Products   map[string]int `json:"products"`
	Status     Status         `json:"status"`
	Timestamp  int64          `json:"timestamp"`
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	s.Products = maps.Clone(s.Products)
	return s
}

// IsReporting reports whether the snapshot carries a defined status. An order
// that has not yet reported contributes to no roll-up group.
func (s Snapshot) IsReporting() bool {
	return s.Status != Unknown
}
