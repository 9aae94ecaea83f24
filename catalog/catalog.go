// Package catalog is the product store: read-all, upsert and clamped
// stock decrement over the shared key-value contract.
package catalog

import (
	"encoding/json"
	"fmt"

	"quickscan-service/models"
	"quickscan-service/storage"
)

// Store owns the products collection. The fulfillment engine is its
// single logical writer; reads and writes are not transactional, so a
// read-check-write sequence by two callers can interleave (the decrement
// clamp hides the resulting underflow rather than preventing it).
type Store struct {
	kv storage.KV
}

func New(kv storage.KV) *Store {
	return &Store{kv: kv}
}

func (s *Store) GetAll() ([]models.Product, error) {
	data, err := s.kv.Read(storage.KeyProducts)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return []models.Product{}, nil
	}
	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("%w: decode products: %v", storage.ErrUnavailable, err)
	}
	return products, nil
}

// FindByCode resolves a scan code against the catalog. The match is a
// single pass in stored order, checking ID then Barcode per product, so
// the first product whose either key equals the code wins. Returns nil
// when nothing matches.
func (s *Store) FindByCode(code string) (*models.Product, error) {
	products, err := s.GetAll()
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == code || (products[i].Barcode != "" && products[i].Barcode == code) {
			p := products[i]
			return &p, nil
		}
	}
	return nil, nil
}

// Upsert replaces the product with the same ID, or appends it.
func (s *Store) Upsert(p models.Product) error {
	products, err := s.GetAll()
	if err != nil {
		return err
	}
	replaced := false
	for i := range products {
		if products[i].ID == p.ID {
			products[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		products = append(products, p)
	}
	return s.save(products)
}

// DecrementStock lowers a product's stock by qty, clamped at zero, and
// returns the new value. An unknown productID is a no-op and returns -1.
func (s *Store) DecrementStock(productID string, qty int) (int, error) {
	products, err := s.GetAll()
	if err != nil {
		return -1, err
	}
	for i := range products {
		if products[i].ID != productID {
			continue
		}
		stock := products[i].Stock - qty
		if stock < 0 {
			stock = 0
		}
		products[i].Stock = stock
		if err := s.save(products); err != nil {
			return -1, err
		}
		return stock, nil
	}
	return -1, nil
}

func (s *Store) save(products []models.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("%w: encode products: %v", storage.ErrUnavailable, err)
	}
	return s.kv.Write(storage.KeyProducts, data)
}
