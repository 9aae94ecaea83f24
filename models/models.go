package models

import (
	"time"
)

// Order lifecycle statuses.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// Product is a catalog record. A scan code resolves a product by exact
// match on ID or Barcode, ID checked first. Products are never deleted
// by the fulfillment pipeline.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name" binding:"required"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Barcode     string  `json:"barcode,omitempty"`
	Stock       int     `json:"stock"`
	WinEligible bool    `json:"win_eligible"`
	ImageURL    string  `json:"image_url,omitempty"`
}

type Order struct {
	ID                  string      `json:"id"`
	OrderNumber         string      `json:"order_number"`
	CustomerName        string      `json:"customer_name"`
	CreatedAt           time.Time   `json:"created_at"`
	Status              string      `json:"status"`
	Total               float64     `json:"total"`
	Items               []OrderItem `json:"items"`
	HasWinEligibleItems bool        `json:"has_win_eligible_items"`
	UserID              string      `json:"user_id"`
}

// OrderItem snapshots the product at order time; later catalog edits do
// not rewrite existing orders.
type OrderItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

type User struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}
