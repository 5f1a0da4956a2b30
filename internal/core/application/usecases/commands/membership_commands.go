package commands

import (
	"errors"

	"retail/internal/core/domain/model/kernel"
	"retail/internal/pkg/guard"
)

var (
	ErrAddMemberCommandIsNotConstructed = errors.New(
		"AddMemberCommand must be created via NewAddMemberCommand constructor",
	)
	ErrRemoveMemberCommandIsNotConstructed = errors.New(
		"RemoveMemberCommand must be created via NewRemoveMemberCommand constructor",
	)
)

// AddMemberCommand asks an aggregating entity (customer or store) to start
// subscribing to the given entity's published status. The receiver infers
// which membership the entity joins from the address kind. Duplicate adds
// are absorbed as no-ops.
type AddMemberCommand struct {
	member kernel.Address

	guard guard.ConstructorGuard
}

// NewAddMemberCommand creates a membership addition for the given entity.
func NewAddMemberCommand(member kernel.Address) (AddMemberCommand, error) {
	if err := member.Validate(); err != nil {
		return AddMemberCommand{}, err
	}

	return AddMemberCommand{
		member: member,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c AddMemberCommand) Validate() error {
	return c.guard.Validate(ErrAddMemberCommandIsNotConstructed)
}

// Member returns the entity to subscribe to.
func (c AddMemberCommand) Member() kernel.Address {
	return c.member
}

// RemoveMemberCommand asks an aggregating entity to drop its subscription to
// the given entity. Removing a non-member is a no-op.
type RemoveMemberCommand struct {
	member kernel.Address

	guard guard.ConstructorGuard
}

// NewRemoveMemberCommand creates a membership removal for the given entity.
func NewRemoveMemberCommand(member kernel.Address) (RemoveMemberCommand, error) {
	if err := member.Validate(); err != nil {
		return RemoveMemberCommand{}, err
	}

	return RemoveMemberCommand{
		member: member,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c RemoveMemberCommand) Validate() error {
	return c.guard.Validate(ErrRemoveMemberCommandIsNotConstructed)
}

// Member returns the entity whose subscription is dropped.
func (c RemoveMemberCommand) Member() kernel.Address {
	return c.member
}

// InitializeCommand materializes a customer entity ahead of traffic, e.g.
// when the workload simulator bootstraps its customer population. It carries
// an optional display name and is otherwise a no-op on entities that already
// exist.
type InitializeCommand struct {
	Name string
}

// NewInitializeCommand creates an initialization marker with an optional
// display name.
func NewInitializeCommand(name string) InitializeCommand {
	return InitializeCommand{Name: name}
}
