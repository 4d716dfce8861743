package events

import "time"

// Event is the envelope written to every topic.
type Event struct {
	Type       string         `json:"type"`
	OccurredAt time.Time      `json:"occurred_at"`
	Data       map[string]any `json:"data"`
}

func New(typ string, data map[string]any) Event {
	return Event{Type: typ, OccurredAt: time.Now().UTC(), Data: data}
}

const (
	UserRegistered   = "user_registered"
	UserLoggedIn     = "user_logged_in"
	CartItemAdded    = "cart_item_added"
	CartItemUpdated  = "cart_item_updated"
	CartItemRemoved  = "cart_item_removed"
	CartCleared      = "cart_cleared"
	PaymentProcessed = "payment_processed"
	ProductCreated   = "product_created"
	ProductDeleted   = "product_deleted"
)
