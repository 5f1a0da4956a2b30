package kernel

import (
	"fmt"
	"strings"

	"retail/internal/pkg/errs"

	"github.com/google/uuid"
)

// ErrAddressIsNotConstructed indicates that an Address was not created
// through one of the constructor functions. The zero value of Address is
// invalid.
var ErrAddressIsNotConstructed = errs.NewValueIsRequiredError(
	"Address must be created via NewAddress or one of the typed constructors")

// Kind identifies the category of an addressable entity.
type Kind string

const (
	// KindOrder addresses an order entity.
	KindOrder Kind = "order"

	// KindCustomer addresses a customer entity.
	KindCustomer Kind = "customer"

	// KindStore addresses a store entity.
	KindStore Kind = "store"
)

// mainStoreID is the well-known identifier of the single store entity.
const mainStoreID = "main"

// Address is a value object identifying an independently addressable entity:
// an order, a customer, or the store. It is the routing key for command
// delivery and the membership key for join aggregation.
//
// Address is immutable and comparable, so it can be used directly as a map
// key. The canonical string form is "/kind/id", matching the node URI scheme
// of the external substrate.
//
// Example usage:
//
//	customer, err := kernel.NewCustomerAddress("Customer0")
//	if err != nil {
//	    return err
//	}
//	order := kernel.NewOrderAddress() // random order identifier
//	fmt.Println(order.String())      // e.g. "/order/550e8400-..."
type Address struct {
	kind Kind
	id   string
}

// NewAddress creates an Address of the given kind and identifier.
// The kind must be one of KindOrder, KindCustomer or KindStore, and the
// identifier must be non-empty and must not contain '/'.
func NewAddress(kind Kind, id string) (Address, error) {
	switch kind {
	case KindOrder, KindCustomer, KindStore:
	default:
		return Address{}, errs.NewValueIsInvalidErrorWithCause("kind",
			fmt.Errorf("%q is not an addressable entity kind", kind))
	}

	if id == "" {
		return Address{}, errs.NewValueIsRequiredError("id")
	}
	if strings.Contains(id, "/") {
		return Address{}, errs.NewValueIsInvalidErrorWithCause("id",
			fmt.Errorf("%q must not contain '/'", id))
	}

	return Address{kind: kind, id: id}, nil
}

// NewOrderAddress generates the address of a new order entity with a random
// unique identifier.
func NewOrderAddress() Address {
	return Address{kind: KindOrder, id: uuid.New().String()}
}

// NewCustomerAddress creates the address of the customer with the given
// identifier.
func NewCustomerAddress(id string) (Address, error) {
	return NewAddress(KindCustomer, id)
}

// MainStoreAddress returns the address of the single store entity that every
// order and customer joins.
func MainStoreAddress() Address {
	return Address{kind: KindStore, id: mainStoreID}
}

// ParseAddress parses the canonical "/kind/id" form back into an Address.
func ParseAddress(s string) (Address, error) {
	trimmed := strings.TrimPrefix(s, "/")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 {
		return Address{}, errs.NewValueIsInvalidErrorWithCause("address",
			fmt.Errorf("%q is not of the form /kind/id", s))
	}
	return NewAddress(Kind(parts[0]), parts[1])
}

// Kind returns the entity kind of the address.
func (a Address) Kind() Kind {
	return a.kind
}

// ID returns the entity identifier within its kind.
func (a Address) ID() string {
	return a.id
}

// String returns the canonical "/kind/id" representation.
func (a Address) String() string {
	return "/" + string(a.kind) + "/" + a.id
}

// IsEqual compares two addresses for equality.
func (a Address) IsEqual(other Address) bool {
	return a == other
}

// IsZero reports whether the address is the invalid zero value.
func (a Address) IsZero() bool {
	return a == Address{}
}

// Validate checks that the address was properly constructed.
// Returns ErrAddressIsNotConstructed for the zero value.
func (a Address) Validate() error {
	if a.IsZero() {
		return ErrAddressIsNotConstructed
	}
	return nil
}
