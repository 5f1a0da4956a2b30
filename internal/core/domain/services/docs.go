// Package services provides domain services that orchestrate business
// operations across multiple domain entities in the retail system. It
// implements logic that doesn't naturally belong to a single aggregate root.
//
// The package includes:
//   - Aggregator: the generic dynamic-membership join engine used by the
//     customer and store entities to roll up subscribed order state
//
// Domain services coordinate between aggregates, implementing business logic
// that spans multiple bounded contexts following Domain-Driven Design
// principles.
package services
