// Package guard provides a defensive construction pattern for value objects.
// Embedding a ConstructorGuard in a struct makes zero-value instances
// detectable, so domain objects and commands can enforce creation through
// their designated constructor functions.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when a zero-value guard
// is checked and no specific error was supplied.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard tracks whether the embedding object went through its
// constructor. The zero value fails validation; NewConstructorGuard produces
// a guard that passes.
//
// Example usage:
//
//	type PlaceOrderCommand struct {
//	    products map[string]int
//	    guard    guard.ConstructorGuard
//	}
//
//	func NewPlaceOrderCommand(products map[string]int) (PlaceOrderCommand, error) {
//	    // ... validate products ...
//	    return PlaceOrderCommand{products: products, guard: guard.NewConstructorGuard()}, nil
//	}
//
//	func (c PlaceOrderCommand) Validate() error {
//	    return c.guard.Validate(ErrPlaceOrderCommandIsNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard creates a guard marking the embedding object as
// properly constructed.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns nil for a properly constructed guard. For a zero-value
// guard it returns notConstructedErr, or ErrDefaultConstructorGuard when
// notConstructedErr is nil.
func (g ConstructorGuard) Validate(notConstructedErr error) error {
	if !g.isConstructed {
		if notConstructedErr == nil {
			return ErrDefaultConstructorGuard
		}
		return notConstructedErr
	}
	return nil
}
