package entity

import "time"

// Event is implemented by everything published to the message broker.
type Event interface {
	EventType() string
}

// UnconfirmedProductQueried is emitted when a customer asks about a product
// the owner has not confirmed yet. It feeds the human-in-the-loop side
// channel; publishing it is fire-and-forget and must never fail the tool
// call that triggered it.
type UnconfirmedProductQueried struct {
	EventID       string    `json:"event_id"`
	BusinessID    int64     `json:"business_id"`
	ProductID     int64     `json:"product_id"`
	ProductName   string    `json:"product_name"`
	CustomerPhone string    `json:"customer_phone"`
	QueriedAt     time.Time `json:"queried_at"`
}

func (e UnconfirmedProductQueried) EventType() string { return "UnconfirmedProductQueried" }

// ProductDecisionApplied is emitted after the owner confirms or rejects an
// unconfirmed product, for downstream projections and audit.
type ProductDecisionApplied struct {
	EventID   string             `json:"event_id"`
	ProductID int64              `json:"product_id"`
	NewStatus AvailabilityStatus `json:"new_status"`
	DecidedAt time.Time          `json:"decided_at"`
}

func (e ProductDecisionApplied) EventType() string { return "ProductDecisionApplied" }
