// Package storage defines the key-value persistence contract shared by
// all dashboard collections, plus the in-memory implementation.
package storage

import (
	"errors"
)

// Fixed keys for the dashboard collections.
const (
	KeyProducts     = "products"
	KeyOrders       = "orders"
	KeyScanHistory  = "scannedBarcodes"
	KeyUserSettings = "userSettings"
	KeyUsers        = "users"
)

// ErrUnavailable wraps any backend failure. A failed Write means the
// mutation did not happen; callers must treat state as unchanged.
var ErrUnavailable = errors.New("storage unavailable")

// KV is the persistence contract. Read returns (nil, nil) when the key
// has never been written.
type KV interface {
	Read(key string) ([]byte, error)
	Write(key string, value []byte) error
}
