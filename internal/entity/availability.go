package entity

import "fmt"

// AvailabilityStatus is the sellability lifecycle of a catalog product.
type AvailabilityStatus string

const (
	// StatusUnconfirmed is the initial state of products created from
	// conversational flows: the owner has not confirmed price or stock yet.
	StatusUnconfirmed AvailabilityStatus = "UNCONFIRMED"
	// StatusConfirmed means the product is sellable and has a usable price.
	StatusConfirmed AvailabilityStatus = "CONFIRMED"
	// StatusOutOfStock is set by inventory management, not by conversation.
	StatusOutOfStock AvailabilityStatus = "OUT_OF_STOCK"
	// StatusRejected is terminal: the business declined to sell this item.
	StatusRejected AvailabilityStatus = "REJECTED"
)

// Valid reports whether s is one of the known lifecycle states.
func (s AvailabilityStatus) Valid() bool {
	switch s {
	case StatusUnconfirmed, StatusConfirmed, StatusOutOfStock, StatusRejected:
		return true
	}
	return false
}

// CanTransitionTo reports whether the owner-decision interface may move a
// product from s to target. The only legal transitions are
// UNCONFIRMED→CONFIRMED and UNCONFIRMED→REJECTED; nothing else changes
// state through this path.
func (s AvailabilityStatus) CanTransitionTo(target AvailabilityStatus) bool {
	if s != StatusUnconfirmed {
		return false
	}
	return target == StatusConfirmed || target == StatusRejected
}

// ErrIllegalTransition is returned when a decision would violate the
// lifecycle above.
type ErrIllegalTransition struct {
	From, To AvailabilityStatus
}

func (e *ErrIllegalTransition) Error() string {
	return fmt.Sprintf("illegal availability transition %s -> %s", e.From, e.To)
}
