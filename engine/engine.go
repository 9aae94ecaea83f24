// Package engine is the scan-to-order pipeline: a decoded code comes
// in, a product is resolved (or provisioned), stock is gated and
// decremented, and in CreateOrder mode an order is persisted.
package engine

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"quickscan-service/auth"
	"quickscan-service/catalog"
	"quickscan-service/history"
	"quickscan-service/models"
	"quickscan-service/notify"
	"quickscan-service/orders"
	"quickscan-service/session"
)

// Mode selects the fulfillment outcome.
type Mode string

const (
	// ModeCreateOrder persists a full order record.
	ModeCreateOrder Mode = "create_order"
	// ModeDirectSell only adjusts stock and reports the sale.
	ModeDirectSell Mode = "direct_sell"
)

// Defaults for auto-provisioned products.
const (
	provisionedStock    = 10
	provisionedCategory = "Scanned"
)

// Result reports a successful fulfillment. Order is set in CreateOrder
// mode only.
type Result struct {
	Product models.Product `json:"product"`
	Order   *models.Order  `json:"order,omitempty"`
}

type Deps struct {
	Catalog *catalog.Store
	History *history.Ledger
	Orders  *orders.Collection
	Session *session.Counters
	Users   auth.Provider
	Sink    notify.Sink
	Log     *zap.Logger
}

type Engine struct {
	catalog *catalog.Store
	history *history.Ledger
	orders  *orders.Collection
	session *session.Counters
	users   auth.Provider
	sink    notify.Sink
	log     *zap.Logger
}

func New(deps Deps) *Engine {
	if deps.Sink == nil {
		deps.Sink = notify.Noop{}
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	return &Engine{
		catalog: deps.Catalog,
		history: deps.History,
		orders:  deps.Orders,
		session: deps.Session,
		users:   deps.Users,
		sink:    deps.Sink,
		log:     deps.Log,
	}
}

// ResolveAndFulfill turns a scanned code into a stock adjustment and,
// in CreateOrder mode, a persisted order.
//
// The catalog read and the later stock write are not covered by a lock
// or transaction. Two fulfillments racing on the same one-unit product
// can both pass the stock gate; the decrement clamp keeps stock at zero
// but both orders stand. That behavior is deliberate and pinned by
// tests, not a bug to fix silently.
func (e *Engine) ResolveAndFulfill(ctx context.Context, code string, mode Mode) (*Result, error) {
	// CreateOrder scans land in history before any gate, so a failed
	// scan is still visible there. DirectSell never touches history.
	if mode == ModeCreateOrder {
		if err := e.history.Append(code); err != nil {
			e.log.Warn("failed to record scan history", zap.String("code", code), zap.Error(err))
		}
	}

	user, ok := e.users.CurrentUser(ctx)
	if !ok {
		e.sink.Error("Authentication Error", "You need to be logged in to create orders")
		return nil, ErrUnauthenticated
	}

	product, err := e.catalog.FindByCode(code)
	if err != nil {
		return nil, err
	}

	if product != nil && product.Stock <= 0 {
		e.sink.Error("Out of Stock", product.Name+" is currently out of stock.")
		return nil, &OutOfStockError{ProductName: product.Name}
	}

	if product == nil {
		if mode == ModeDirectSell {
			e.sink.Error("Invalid Product", "No product found with code: "+code)
			e.log.Warn("product not found during sale attempt", zap.String("code", code))
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, code)
		}
		p := provision(code)
		if err := e.catalog.Upsert(p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProvisioningFailed, err)
		}
		e.log.Info("auto-provisioned product",
			zap.String("product_id", p.ID), zap.String("code", code))
		product = &p
	}

	result := &Result{Product: *product}

	switch mode {
	case ModeDirectSell:
		newStock, err := e.catalog.DecrementStock(product.ID, 1)
		if err != nil {
			return nil, err
		}
		product.Stock = newStock
		result.Product = *product
		e.sink.Success("Sale Complete", "Successfully sold "+product.Name)
	default:
		order := e.buildOrder(*product, user.ID)
		if err := e.orders.Append(order); err != nil {
			return nil, err
		}
		// The order is already persisted; a failed decrement leaves
		// stock stale rather than orphaning the order.
		if newStock, err := e.catalog.DecrementStock(product.ID, 1); err != nil {
			e.log.Warn("stock decrement failed after order creation",
				zap.String("order_id", order.ID), zap.Error(err))
		} else {
			product.Stock = newStock
			result.Product = *product
		}
		result.Order = &order
		e.sink.Success("Order Created", "New order created for "+product.Name)
		e.log.Info("order created",
			zap.String("order_id", order.ID),
			zap.String("product_id", product.ID),
			zap.String("user_id", user.ID))
	}

	e.session.RecordOrder(result.Product)
	return result, nil
}

// provision synthesizes a catalog record for an unknown code. The
// scanned code becomes the barcode; a fresh token becomes the ID.
func provision(code string) models.Product {
	return models.Product{
		ID:          uuid.NewString(),
		Name:        "Scanned Product " + code,
		Price:       0,
		Category:    provisionedCategory,
		Barcode:     code,
		Stock:       provisionedStock,
		WinEligible: false,
	}
}

func (e *Engine) buildOrder(p models.Product, userID string) models.Order {
	now := time.Now()
	return models.Order{
		ID:           strconv.FormatInt(now.UnixNano(), 10),
		OrderNumber:  fmt.Sprintf("ORD-%03d", rand.Intn(1000)),
		CustomerName: "Quick Order",
		CreatedAt:    now,
		Status:       models.StatusPending,
		Total:        p.Price,
		Items: []models.OrderItem{
			{Product: p, Quantity: 1},
		},
		HasWinEligibleItems: p.WinEligible,
		UserID:              userID,
	}
}
