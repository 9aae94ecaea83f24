// Package history keeps the persisted scan ledger: an append-only,
// deduplicated, order-preserving list of raw scanned codes.
package history

import (
	"encoding/json"
	"fmt"

	"quickscan-service/storage"
)

type Ledger struct {
	kv storage.KV
}

func New(kv storage.KV) *Ledger {
	return &Ledger{kv: kv}
}

// Append inserts the code if it is not already present and persists the
// updated set. Insertion order is preserved for listing.
func (l *Ledger) Append(code string) error {
	codes, err := l.List()
	if err != nil {
		return err
	}
	for _, c := range codes {
		if c == code {
			return nil
		}
	}
	codes = append(codes, code)
	return l.save(codes)
}

func (l *Ledger) Clear() error {
	return l.save([]string{})
}

// List returns the scanned codes in insertion order.
func (l *Ledger) List() ([]string, error) {
	data, err := l.kv.Read(storage.KeyScanHistory)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return []string{}, nil
	}
	var codes []string
	if err := json.Unmarshal(data, &codes); err != nil {
		return nil, fmt.Errorf("%w: decode scan history: %v", storage.ErrUnavailable, err)
	}
	return codes, nil
}

func (l *Ledger) save(codes []string) error {
	data, err := json.Marshal(codes)
	if err != nil {
		return fmt.Errorf("%w: encode scan history: %v", storage.ErrUnavailable, err)
	}
	return l.kv.Write(storage.KeyScanHistory, data)
}
