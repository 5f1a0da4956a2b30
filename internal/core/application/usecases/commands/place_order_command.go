package commands

import (
	"errors"
	"fmt"
	"maps"

	"retail/internal/core/domain/model/kernel"
	"retail/internal/pkg/errs"
	"retail/internal/pkg/guard"
)

var (
	ErrPlaceOrderCommandIsNotConstructed = errors.New(
		"PlaceOrderCommand must be created via NewPlaceOrderCommand constructor",
	)
)

// PlaceOrderCommand requests the placement of a new order.
//
// Sent to a customer entity, the command is forwarded to the order entity
// named by Order (generated when unset) with the customer filled in. Sent
// directly to an order entity, Customer must identify the owning customer.
//
// Example:
//
//	cmd, err := commands.NewPlaceOrderCommand(map[string]int{"productA": 2})
//	if err != nil {
//	    return fmt.Errorf("invalid placement: %w", err)
//	}
//	sender.Send(customerAddr, cmd)
type PlaceOrderCommand struct { //nolint:recvcheck //using for validation
	order        kernel.Address
	customer     kernel.Address
	products     map[string]int
	selfProgress bool

	guard guard.ConstructorGuard
}

// NewPlaceOrderCommand creates a placement command for the given product
// lines. A placement with no positive total quantity is malformed and
// rejected here, before any entity state can be touched.
func NewPlaceOrderCommand(products map[string]int) (PlaceOrderCommand, error) {
	cmd := PlaceOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := cmd.setProducts(products); err != nil {
		return PlaceOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c PlaceOrderCommand) Validate() error {
	return c.guard.Validate(ErrPlaceOrderCommandIsNotConstructed)
}

// WithOrder returns a copy of the command targeting a caller-chosen order
// address instead of a generated one.
func (c PlaceOrderCommand) WithOrder(order kernel.Address) PlaceOrderCommand {
	c.order = order
	return c
}

// WithCustomer returns a copy of the command carrying the owning customer.
// Customer entities fill this in with their own address when forwarding.
func (c PlaceOrderCommand) WithCustomer(customer kernel.Address) PlaceOrderCommand {
	c.customer = customer
	return c
}

// WithSelfProgression returns a copy of the command asking the order entity
// to progress itself through the lifecycle on a timer, for simulated load.
func (c PlaceOrderCommand) WithSelfProgression() PlaceOrderCommand {
	c.selfProgress = true
	return c
}

// Order returns the target order address; zero means the receiving customer
// generates one.
func (c PlaceOrderCommand) Order() kernel.Address {
	return c.order
}

// Customer returns the owning customer's address; zero until a customer
// entity forwards the command.
func (c PlaceOrderCommand) Customer() kernel.Address {
	return c.customer
}

// Products returns a copy of the ordered product lines.
func (c PlaceOrderCommand) Products() map[string]int {
	return maps.Clone(c.products)
}

// SelfProgress reports whether the order should simulate its own lifecycle
// progression.
func (c PlaceOrderCommand) SelfProgress() bool {
	return c.selfProgress
}

func (c *PlaceOrderCommand) setProducts(products map[string]int) error {
	if len(products) == 0 {
		return errs.NewValueIsRequiredError("products")
	}
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

	c.products = maps.Clone(products)
	return nil
}
