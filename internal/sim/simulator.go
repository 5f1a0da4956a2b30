// Package sim generates a synthetic retail workload: a fixed population of
// customers, each walking a twelve-configuration state machine that places
// orders and pushes them through the lifecycle with tuned probabilities.
//
// All randomness — transition draws, product selection, order identifiers —
// comes from one seeded generator, so two simulators with the same seed and
// population emit exactly the same command sequence.
package sim

import (
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"

	"retail/internal/core/application/usecases/commands"
	"retail/internal/core/domain/model/kernel"
	"retail/internal/core/domain/model/order"
	"retail/internal/core/ports"
)

// Configuration is one state of a simulated customer: how many open orders
// the customer has and how far along each is. "Held" means an order that was
// made ready while another was still pending, so its pickup is on hold.
type Configuration int

const (
	NoOrders Configuration = iota
	OnePlaced
	OneProcessed
	OneReady
	TwoPlaced
	OnePlacedOneProcessed
	OnePlacedOneReady
	OnePlacedOneHeld
	TwoProcessed
	OneProcessedOneReady
	OneProcessedOneHeld
	TwoReady
)

// Transition probabilities per step, tuned so a customer population settles
// into a steady mix of pending and ready orders.
const (
	placeChance   = 0.25
	processChance = 0.35
	readyChance   = 0.10
	pickupChance  = 0.20

	productChance = 0.15
	maxQuantity   = 4
)

var productCodes = [...]string{"productA", "productB", "productC", "productD", "productE"}

// orderSlot tracks one open order of a simulated customer. A customer has at
// most two.
type orderSlot struct {
	order  kernel.Address
	status order.Status
}

type customerState struct {
	address kernel.Address
	name    string
	config  Configuration
	a, b    *orderSlot
}

// Option configures the simulator.
type Option func(*Simulator)

// WithSelfProgression makes placed orders progress themselves through the
// lifecycle on their own timers, instead of waiting for simulator updates.
func WithSelfProgression() Option {
	return func(s *Simulator) {
		s.selfProgress = true
	}
}

// Simulator drives the customer population. It is not safe for concurrent
// use; the owning job serializes Step calls.
type Simulator struct {
	sender ports.CommandSender
	logger *slog.Logger
	rnd    *rand.Rand

	customers    []*customerState
	selfProgress bool
}

// New creates a simulator for the given population size. The seed fully
// determines the emitted command sequence.
func New(sender ports.CommandSender, logger *slog.Logger, customers int, seed int64, opts ...Option) (*Simulator, error) {
	if customers <= 0 {
		return nil, fmt.Errorf("customer population must be positive, got %d", customers)
	}

	s := &Simulator{
		sender: sender,
		logger: logger.With("component", "simulator"),
		rnd:    rand.New(rand.NewSource(seed)), //nolint:gosec //workload generation, not crypto
	}
	for _, opt := range opts {
		opt(s)
	}

	s.customers = make([]*customerState, customers)
	for i := range s.customers {
		name := "Customer" + strconv.FormatInt(int64(i), 16)
		address, err := kernel.NewCustomerAddress(name)
		if err != nil {
			return nil, err
		}
		s.customers[i] = &customerState{
			address: address,
			name:    name,
			config:  NoOrders,
		}
	}
	return s, nil
}

// Customers returns the addresses of the simulated population.
func (s *Simulator) Customers() []kernel.Address {
	out := make([]kernel.Address, len(s.customers))
	for i, c := range s.customers {
		out[i] = c.address
	}
	return out
}

// Bootstrap materializes every customer entity ahead of traffic.
func (s *Simulator) Bootstrap() {
	for _, c := range s.customers {
		s.sender.Send(c.address, commands.NewInitializeCommand(c.name))
	}
	s.logger.Info("customer population initialized", "customers", len(s.customers))
}

// Step advances every customer one tick.
//
// Within a configuration the trials run in order and a later trial observes
// an earlier trial's transition, so a single tick can move a customer two
// configurations at once. The one exception is a lone ready order, where
// placing a new order only happens if the pickup did not.
func (s *Simulator) Step() {
	for _, c := range s.customers {
		s.stepCustomer(c)
	}
}

func (s *Simulator) stepCustomer(c *customerState) {
	switch c.config {
	case NoOrders:
		if s.chance(placeChance) {
			s.place(c)
			c.config = OnePlaced
		}

	case OnePlaced:
		if s.chance(processChance) {
			s.advanceToProcessed(c)
			c.config = OneProcessed
		}
		if s.chance(placeChance) {
			s.place(c)
			if c.config == OneProcessed {
				c.config = OnePlacedOneProcessed
			} else {
				c.config = TwoPlaced
			}
		}

	case OneProcessed:
		if s.chance(readyChance) {
			s.advanceToReady(c)
			c.config = OneReady
		}
		if s.chance(placeChance) {
			s.place(c)
			if c.config == OneReady {
				c.config = OnePlacedOneReady
			} else {
				c.config = OnePlacedOneProcessed
			}
		}

	case OneReady:
		if s.chance(pickupChance) {
			s.completePickup(c)
			c.config = NoOrders
		} else if s.chance(placeChance) {
			s.place(c)
			c.config = OnePlacedOneReady
		}

	case TwoPlaced:
		if s.chance(processChance) {
			s.advanceToProcessed(c)
			c.config = OnePlacedOneProcessed
		}
		if s.chance(processChance) {
			s.advanceToProcessed(c)
			if c.config == OnePlacedOneProcessed {
				c.config = TwoProcessed
			} else {
				c.config = OnePlacedOneProcessed
			}
		}

	case OnePlacedOneProcessed:
		if s.chance(processChance) {
			s.advanceToProcessed(c)
			c.config = TwoProcessed
		}
		if s.chance(readyChance) {
			s.advanceToReady(c)
			if c.config == TwoProcessed {
				c.config = OneProcessedOneHeld
			} else {
				c.config = OnePlacedOneHeld
			}
		}

	case OnePlacedOneReady:
		if s.chance(processChance) {
			s.advanceToProcessed(c)
			c.config = OneProcessedOneReady
		}
		if s.chance(pickupChance) {
			s.completePickup(c)
			if c.config == OneProcessedOneReady {
				c.config = OneProcessed
			} else {
				c.config = OnePlaced
			}
		}

	case OnePlacedOneHeld:
		if s.chance(processChance) {
			s.advanceToProcessed(c)
			c.config = OneProcessedOneHeld
		}

	case TwoProcessed:
		if s.chance(readyChance) {
			s.advanceToReady(c)
			c.config = OneProcessedOneReady
		}
		if s.chance(readyChance) {
			s.advanceToReady(c)
			if c.config == OneProcessedOneReady {
				c.config = TwoReady
			} else {
				c.config = OneProcessedOneHeld
			}
		}

	case OneProcessedOneReady:
		if s.chance(pickupChance) {
			s.completePickup(c)
			c.config = OneProcessed
		}
		if s.chance(readyChance) {
			s.advanceToReady(c)
			if c.config == OneProcessed {
				c.config = OneReady
			} else {
				c.config = TwoReady
			}
		}

	case OneProcessedOneHeld:
		if s.chance(readyChance) {
			s.advanceToReady(c)
			c.config = TwoReady
			// The held order's pickup unblocks together with the other one.
			markReady(c.a)
			markReady(c.b)
		}

	case TwoReady:
		if s.chance(pickupChance * 2) {
			s.completePickup(c)
			s.completePickup(c)
			c.config = NoOrders
		}
	}
}

func (s *Simulator) chance(probability float64) bool {
	return s.rnd.Float64() < probability
}

// place sends a new order placement through the customer entity. The order
// identifier is drawn from the seeded generator, keeping replays exact.
func (s *Simulator) place(c *customerState) {
	orderID := fmt.Sprintf("%016x", s.rnd.Int63())
	orderAddr, err := kernel.NewAddress(kernel.KindOrder, orderID)
	if err != nil {
		s.logger.Error("failed to build order address", "error", err)
		return
	}

	cmd, err := commands.NewPlaceOrderCommand(s.randomProducts())
	if err != nil {
		s.logger.Error("failed to build placement", "error", err)
		return
	}
	cmd = cmd.WithOrder(orderAddr)
	if s.selfProgress {
		cmd = cmd.WithSelfProgression()
	}

	slot := &orderSlot{order: orderAddr, status: order.Placed}
	if c.a == nil {
		c.a = slot
	} else {
		c.b = slot
	}

	s.sender.Send(c.address, cmd)
}

// randomProducts draws product lines until at least one is selected. A single
// pass can select several.
func (s *Simulator) randomProducts() map[string]int {
	products := make(map[string]int)
	for len(products) == 0 {
		for _, code := range productCodes {
			if s.chance(productChance) {
				products[code] = s.rnd.Intn(maxQuantity) + 1
			}
		}
	}
	return products
}

func (s *Simulator) advanceToProcessed(c *customerState) {
	s.advanceSlot(c, order.Placed, order.Processed)
}

func (s *Simulator) advanceToReady(c *customerState) {
	s.advanceSlot(c, order.Processed, order.ReadyForPickup)
}

// advanceSlot sends an advance to the customer's order currently in the from
// status, preferring slot A, and tracks the new status locally.
func (s *Simulator) advanceSlot(c *customerState, from, to order.Status) {
	slot := c.b
	if c.a != nil && c.a.status == from {
		slot = c.a
	}
	if slot == nil {
		return
	}

	s.sender.Send(slot.order, commands.NewUpdateOrderCommand())
	slot.status = to
}

// completePickup sends the terminal advance to a ready order and frees its
// slot.
func (s *Simulator) completePickup(c *customerState) {
	if c.a != nil && c.a.status == order.ReadyForPickup {
		s.sender.Send(c.a.order, commands.NewUpdateOrderCommand())
		c.a = nil
		return
	}
	if c.b == nil {
		return
	}
	s.sender.Send(c.b.order, commands.NewUpdateOrderCommand())
	c.b = nil
}

func markReady(slot *orderSlot) {
	if slot != nil {
		slot.status = order.ReadyForPickup
	}
}
