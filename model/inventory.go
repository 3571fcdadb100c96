package model

import "time"

// SavedStack is one occupied slot of a saved inventory.
// Rows of the same save are ordered by Position.
type SavedStack struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	SaveName  string    `gorm:"index:idx_save_stack;size:64;not null" json:"save_name"`
	Position  int       `gorm:"index:idx_save_stack;not null" json:"position"`
	ItemID    string    `gorm:"size:64;not null" json:"item_id"`
	Qty       int       `gorm:"not null" json:"qty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
