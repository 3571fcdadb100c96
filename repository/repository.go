// Package repository persists inventory snapshots.
//
// A snapshot is a list of (item id, quantity) records, one per occupied slot.
// Slot positions are not part of the snapshot: loading refills slots in the
// inventory's own insertion order.
package repository

import (
	"context"
	"errors"
)

// ErrNoSave is returned by Load when nothing has been saved yet.
var ErrNoSave = errors.New("repository: no saved inventory")

// Record is one saved stack.
type Record struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// SaveData is a full inventory snapshot.
type SaveData struct {
	Stacks []Record `json:"item_stacks"`
}

// Repository loads and stores a single named inventory snapshot.
type Repository interface {
	Load(ctx context.Context) (*SaveData, error)
	Save(ctx context.Context, data *SaveData) error
	Exists(ctx context.Context) (bool, error)
}

// validate rejects records that could never be restored.
func (d *SaveData) validate() error {
	for _, r := range d.Stacks {
		if r.ItemID == "" {
			return errors.New("repository: record without item id")
		}
		if r.Quantity < 0 {
			return errors.New("repository: negative quantity")
		}
	}
	return nil
}
