// Package orders is the persisted orders collection. The fulfillment
// engine appends to it; listing, detail lookup and status edits serve
// the dashboard's orders page.
package orders

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"quickscan-service/models"
	"quickscan-service/storage"
)

var ErrNotFound = errors.New("order not found")

type Collection struct {
	kv storage.KV
}

func New(kv storage.KV) *Collection {
	return &Collection{kv: kv}
}

// Append persists a new order. Orders are immutable after creation
// except for their status.
func (c *Collection) Append(o models.Order) error {
	all, err := c.load()
	if err != nil {
		return err
	}
	all = append(all, o)
	return c.save(all)
}

// ListByUser returns the user's orders, newest first.
func (c *Collection) ListByUser(userID string) ([]models.Order, error) {
	all, err := c.load()
	if err != nil {
		return nil, err
	}
	out := make([]models.Order, 0, len(all))
	for _, o := range all {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Get returns the order only if it belongs to the user.
func (c *Collection) Get(id, userID string) (*models.Order, error) {
	all, err := c.load()
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id && all[i].UserID == userID {
			o := all[i]
			return &o, nil
		}
	}
	return nil, ErrNotFound
}

// UpdateStatus changes the status of the user's order.
func (c *Collection) UpdateStatus(id, userID, status string) error {
	return c.setStatus(id, status, func(o models.Order) bool { return o.UserID == userID })
}

// SetStatus changes an order's status regardless of owner. Used by the
// event consumer (payment-check auto-cancel).
func (c *Collection) SetStatus(id, status string) error {
	return c.setStatus(id, status, func(models.Order) bool { return true })
}

// GetAny returns the order regardless of owner.
func (c *Collection) GetAny(id string) (*models.Order, error) {
	all, err := c.load()
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			o := all[i]
			return &o, nil
		}
	}
	return nil, ErrNotFound
}

func (c *Collection) setStatus(id, status string, allowed func(models.Order) bool) error {
	all, err := c.load()
	if err != nil {
		return err
	}
	for i := range all {
		if all[i].ID == id && allowed(all[i]) {
			all[i].Status = status
			return c.save(all)
		}
	}
	return ErrNotFound
}

func (c *Collection) load() ([]models.Order, error) {
	data, err := c.kv.Read(storage.KeyOrders)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return []models.Order{}, nil
	}
	var all []models.Order
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("%w: decode orders: %v", storage.ErrUnavailable, err)
	}
	return all, nil
}

func (c *Collection) save(all []models.Order) error {
	data, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("%w: encode orders: %v", storage.ErrUnavailable, err)
	}
	return c.kv.Write(storage.KeyOrders, data)
}
