// Package session projects per-process counters for the dashboard
// status card. Nothing here is persisted; restart resets it.
package session

import (
	"sync"

	"quickscan-service/models"
)

type Status struct {
	OrdersThisSession  int             `json:"orders_this_session"`
	LastOrderedProduct *models.Product `json:"last_ordered_product,omitempty"`
}

type Counters struct {
	mu     sync.Mutex
	orders int
	last   *models.Product
}

func NewCounters() *Counters {
	return &Counters{}
}

// RecordOrder bumps the session order count and remembers the product.
// Both fulfillment modes count as an order for the status card.
func (c *Counters) RecordOrder(p models.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.orders++
	c.last = &p
}

func (c *Counters) Snapshot() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	var last *models.Product
	if c.last != nil {
		cp := *c.last
		last = &cp
	}
	return Status{OrdersThisSession: c.orders, LastOrderedProduct: last}
}
