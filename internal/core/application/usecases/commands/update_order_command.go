package commands

import (
	"errors"

	"retail/internal/core/domain/model/order"
	"retail/internal/pkg/guard"
)

var (
	ErrUpdateOrderCommandIsNotConstructed = errors.New(
		"UpdateOrderCommand must be created via NewUpdateOrderCommand constructor",
	)
)

// UpdateOrderCommand requests a lifecycle transition on an order entity.
// Without an explicit status the order advances to the next state in the
// sequence; with one, it transitions directly to it (the externally driven
// escape hatch). Redundant or post-terminal updates are absorbed by the
// order as no-ops.
type UpdateOrderCommand struct { //nolint:recvcheck //using for validation
	explicit order.Status

	guard guard.ConstructorGuard
}

// NewUpdateOrderCommand creates an advance-to-next-status command.
func NewUpdateOrderCommand() UpdateOrderCommand {
	return UpdateOrderCommand{
		explicit: order.Unknown,
		guard:    guard.NewConstructorGuard(),
	}
}

// NewExplicitUpdateOrderCommand creates a command transitioning the order
// directly to the given status.
func NewExplicitUpdateOrderCommand(status order.Status) (UpdateOrderCommand, error) {
	if err := status.Validate(); err != nil {
		return UpdateOrderCommand{}, err
	}

	return UpdateOrderCommand{
		explicit: status,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through a constructor.
func (c UpdateOrderCommand) Validate() error {
	return c.guard.Validate(ErrUpdateOrderCommandIsNotConstructed)
}

// Explicit returns the explicit target status, or order.Unknown for
// advance-to-next.
func (c UpdateOrderCommand) Explicit() order.Status {
	return c.explicit
}
