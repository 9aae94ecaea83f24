package engine

import (
	"errors"
)

// Fulfillment failures. All are terminal for the triggering scan; the
// user re-scans or takes corrective action, nothing is retried.
var (
	ErrOutOfStock         = errors.New("product out of stock")
	ErrProductNotFound    = errors.New("product not found")
	ErrProvisioningFailed = errors.New("product provisioning failed")
	ErrUnauthenticated    = errors.New("not authenticated")
)

// OutOfStockError carries the product name for display. It matches
// ErrOutOfStock under errors.Is.
type OutOfStockError struct {
	ProductName string
}

func (e *OutOfStockError) Error() string {
	return e.ProductName + " is currently out of stock"
}

func (e *OutOfStockError) Is(target error) bool {
	return target == ErrOutOfStock
}
