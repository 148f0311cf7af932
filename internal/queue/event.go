// Package queue defines the order lifecycle events exchanged over the
// message broker, the publisher that emits them and the background consumer
// that appends them to the order audit log.
package queue

// itemPayload is one order line inside an event.
type itemPayload struct {
	ProductID    int64  `json:"product_id"`
	ProductName  string `json:"product_name"`
	ProductPrice int64  `json:"product_price"`
	Quantity     int    `json:"quantity"`
}

// OrderEvent is the payload for both order.created and order.cancelled.
// Kind tells consumers apart; the rest is a snapshot so downstream readers
// never have to query the primary database.
type OrderEvent struct {
	Kind       string        `json:"kind"` // "order.created" | "order.cancelled"
	OrderID    int64         `json:"order_id"`
	BuyerID    int64         `json:"buyer_id"`
	Status     string        `json:"status"`
	TotalPrice int64         `json:"total_price"`
	Items      []itemPayload `json:"items"`
	OccurredAt string        `json:"occurred_at"`
}

const (
	kindOrderCreated   = "order.created"
	kindOrderCancelled = "order.cancelled"
)
