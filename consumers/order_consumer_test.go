package consumers

import (
	"encoding/json"
	"errors"
	"runtime"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"quickscan-service/catalog"
	"quickscan-service/config"
	"quickscan-service/models"
	"quickscan-service/orders"
	"quickscan-service/rabbitmq"
	"quickscan-service/storage"
)

type fakeChannel struct {
	cfg    *config.Config
	main   chan amqp.Delivery
	dlq    chan amqp.Delivery
	dlqErr error
}

func (f *fakeChannel) Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error) {
	if queue == f.cfg.DeadLetterQueue {
		return f.dlq, f.dlqErr
	}
	return f.main, nil
}

func newConsumer(t *testing.T) (*OrderConsumer, *orders.Collection) {
	t.Helper()
	kv := storage.NewMemStore()
	col := orders.New(kv)
	return &OrderConsumer{
		Orders:  col,
		Catalog: catalog.New(kv),
		Cfg: &config.Config{
			OrderQueue:        "scan_orders_queue",
			DeadLetterQueue:   "scan_dead_letter_queue",
			LowStockThreshold: 3,
		},
		Log: zap.NewNop(),
	}, col
}

func eventBody(t *testing.T, event rabbitmq.Event) []byte {
	t.Helper()
	body, err := json.Marshal(event)
	require.NoError(t, err)
	return body
}

func TestStart_DLQConsumeFailureLeavesNoDrainLoop(t *testing.T) {
	oc, _ := newConsumer(t)
	main := make(chan amqp.Delivery)
	close(main)
	ch := &fakeChannel{cfg: oc.Cfg, main: main, dlqErr: errors.New("no queue")}

	before := runtime.NumGoroutine()
	oc.Start(ch)

	// The order loop drains its closed channel and exits; nothing may
	// stay parked waiting on a dead-letter channel that never existed.
	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before
	}, time.Second, 10*time.Millisecond)
}

func TestStart_ProcessesOrderAndDeadLetterMessages(t *testing.T) {
	oc, col := newConsumer(t)
	require.NoError(t, col.Append(models.Order{ID: "o1", UserID: "u1", Status: models.StatusPending}))

	main := make(chan amqp.Delivery, 1)
	dlq := make(chan amqp.Delivery, 1)
	main <- amqp.Delivery{Body: eventBody(t, rabbitmq.Event{OrderID: "o1", Type: "payment_check"})}
	dlq <- amqp.Delivery{Body: []byte("not json")}
	close(main)
	close(dlq)

	oc.Start(&fakeChannel{cfg: oc.Cfg, main: main, dlq: dlq})

	assert.Eventually(t, func() bool {
		order, err := col.GetAny("o1")
		return err == nil && order.Status == models.StatusCancelled
	}, time.Second, 10*time.Millisecond)
}

func TestPaymentCheck_LeavesNonPendingOrdersAlone(t *testing.T) {
	oc, col := newConsumer(t)
	require.NoError(t, col.Append(models.Order{ID: "o2", UserID: "u1", Status: models.StatusShipped}))

	oc.handlePaymentCheck(rabbitmq.Event{OrderID: "o2", Type: "payment_check"})

	order, err := col.GetAny("o2")
	require.NoError(t, err)
	assert.Equal(t, models.StatusShipped, order.Status)
}
