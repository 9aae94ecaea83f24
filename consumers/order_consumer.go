package consumers

import (
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"quickscan-service/catalog"
	"quickscan-service/config"
	"quickscan-service/models"
	"quickscan-service/orders"
	"quickscan-service/rabbitmq"
)

// OrderConsumer reacts to fulfillment events: low-stock warnings on
// order creation and auto-cancellation of orders still pending when the
// delayed payment check fires.
type OrderConsumer struct {
	Orders  *orders.Collection
	Catalog *catalog.Store
	Cfg     *config.Config
	Log     *zap.Logger
}

// Channel is the consuming surface of an AMQP channel. *amqp.Channel
// satisfies it.
type Channel interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

func (oc *OrderConsumer) Start(ch Channel) {
	msgs, err := ch.Consume(
		oc.Cfg.OrderQueue,
		"quickscan-service", // consumer tag
		false,               // auto-ack
		false,               // exclusive
		false,               // no-local
		false,               // no-wait
		nil,
	)
	if err != nil {
		oc.Log.Fatal("failed to register consumer", zap.Error(err))
	}

	go func() {
		for msg := range msgs {
			oc.processOrderMessage(msg)
		}
	}()

	dlqMsgs, err := ch.Consume(
		oc.Cfg.DeadLetterQueue,
		"quickscan-service-dlq", // consumer tag
		false,                   // auto-ack
		false,                   // exclusive
		false,                   // no-local
		false,                   // no-wait
		nil,
	)
	if err != nil {
		// No DLQ channel to drain; ranging a nil channel would park
		// the goroutine forever.
		oc.Log.Warn("failed to register DLQ consumer", zap.Error(err))
		return
	}

	go func() {
		for msg := range dlqMsgs {
			oc.processDeadLetterMessage(msg)
		}
	}()
}

func (oc *OrderConsumer) processOrderMessage(msg amqp.Delivery) {
	defer func() {
		if r := recover(); r != nil {
			oc.Log.Error("recovered from panic in message processing", zap.Any("panic", r))
		}
	}()

	var event rabbitmq.Event
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		oc.Log.Warn("invalid event payload", zap.ByteString("body", msg.Body), zap.Error(err))
		// Reject without requeue; it dead-letters.
		if err := msg.Nack(false, false); err != nil {
			return
		}
		return
	}

	oc.Log.Info("processing fulfillment event",
		zap.String("order_id", event.OrderID),
		zap.String("type", event.Type))

	switch event.Type {
	case "created":
		oc.handleOrderCreated(event)
	case "status_updated":
		oc.handleStatusUpdated(event)
	case "payment_check":
		oc.handlePaymentCheck(event)
	default:
		oc.Log.Warn("unknown event type", zap.String("type", event.Type))
	}

	if err := msg.Ack(false); err != nil {
		return
	}
}

func (oc *OrderConsumer) processDeadLetterMessage(msg amqp.Delivery) {
	oc.Log.Warn("received dead letter", zap.ByteString("body", msg.Body))
	if err := msg.Ack(false); err != nil {
		return
	}
}

// handleOrderCreated checks the remaining stock of the ordered product
// and logs a warning when it falls under the replenishment threshold.
func (oc *OrderConsumer) handleOrderCreated(event rabbitmq.Event) {
	if event.ProductID == "" {
		return
	}
	products, err := oc.Catalog.GetAll()
	if err != nil {
		oc.Log.Warn("failed to read catalog for low-stock check", zap.Error(err))
		return
	}
	for _, p := range products {
		if p.ID != event.ProductID {
			continue
		}
		if p.Stock <= oc.Cfg.LowStockThreshold {
			oc.Log.Warn("product stock is low",
				zap.String("product_id", p.ID),
				zap.String("name", p.Name),
				zap.Int("stock", p.Stock))
		}
		return
	}
}

func (oc *OrderConsumer) handleStatusUpdated(event rabbitmq.Event) {
	order, err := oc.Orders.GetAny(event.OrderID)
	if err != nil {
		oc.Log.Warn("failed to get order for status event",
			zap.String("order_id", event.OrderID), zap.Error(err))
		return
	}
	oc.Log.Info("handling status update",
		zap.String("order_id", order.ID),
		zap.String("status", order.Status))
}

// handlePaymentCheck auto-cancels orders still pending when the delayed
// check fires.
func (oc *OrderConsumer) handlePaymentCheck(event rabbitmq.Event) {
	order, err := oc.Orders.GetAny(event.OrderID)
	if err != nil {
		oc.Log.Warn("failed to get order for payment check",
			zap.String("order_id", event.OrderID), zap.Error(err))
		return
	}

	if order.Status != models.StatusPending {
		return
	}
	if err := oc.Orders.SetStatus(order.ID, models.StatusCancelled); err != nil {
		oc.Log.Warn("failed to auto-cancel order",
			zap.String("order_id", order.ID), zap.Error(err))
		return
	}
	oc.Log.Info("auto-cancelled order due to non-payment",
		zap.String("order_id", order.ID))
}
