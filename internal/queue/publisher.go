package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/shop-backend/internal/model"
)

const orderQueueName = "order.events"

// Publisher emits order lifecycle events to the order.events queue.
// Publishing is best effort: every error is logged and swallowed so a broker
// outage never fails an order request.
type Publisher struct {
	url string
}

// NewPublisher returns a publisher for the broker at url, or nil when url is
// empty. A nil *Publisher is safe to use; its methods do nothing.
func NewPublisher(url string) *Publisher {
	if url == "" {
		return nil
	}
	return &Publisher{url: url}
}

// OrderCreated publishes an order.created event.
func (p *Publisher) OrderCreated(ctx context.Context, o *model.Order) {
	p.publish(ctx, newOrderEvent(kindOrderCreated, o))
}

// OrderCancelled publishes an order.cancelled event.
func (p *Publisher) OrderCancelled(ctx context.Context, o *model.Order) {
	p.publish(ctx, newOrderEvent(kindOrderCancelled, o))
}

func newOrderEvent(kind string, o *model.Order) OrderEvent {
	items := make([]itemPayload, 0, len(o.Items))
	for i := range o.Items {
		it := &o.Items[i]
		items = append(items, itemPayload{
			ProductID:    it.ProductID,
			ProductName:  it.ProductName,
			ProductPrice: it.ProductPrice,
			Quantity:     it.Quantity,
		})
	}
	return OrderEvent{
		Kind:       kind,
		OrderID:    o.ID,
		BuyerID:    o.BuyerID,
		Status:     string(o.Status),
		TotalPrice: o.TotalPrice,
		Items:      items,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
}

func (p *Publisher) publish(ctx context.Context, ev OrderEvent) {
	if p == nil {
		return
	}
	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Printf("queue: dial failed: %v", err)
		return
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("queue: channel open failed: %v", err)
		return
	}
	defer func() { _ = ch.Close() }()

	// Durable so events survive broker restarts.
	if _, err := ch.QueueDeclare(orderQueueName, true, false, false, false, nil); err != nil {
		log.Printf("queue: declare failed: %v", err)
		return
	}

	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("queue: marshal event failed: %v", err)
		return
	}

	err = ch.PublishWithContext(ctx,
		"",             // default exchange
		orderQueueName, // routing key = queue name
		false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		})
	if err != nil {
		log.Printf("queue: publish failed: %v", err)
	}
}
