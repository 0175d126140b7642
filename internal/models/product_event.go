package models

import "time"

// Product event types, also used as AMQP routing keys.
const (
	ProductCreated = "product.created"
	ProductUpdated = "product.updated"
)

// ProductEvent is published after a product write succeeds.
type ProductEvent struct {
	Type       string    `json:"type"`
	ProductID  string    `json:"product_id"`
	VendorID   string    `json:"vendor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
