package model

import (
	"time"

	"gorm.io/datatypes"
)

// PlacementLog records one inventory action (spawn, drop, split, trash, load).
type PlacementLog struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	TraceID   string         `gorm:"index:idx_placement_trace;size:36" json:"trace_id"`
	Action    string         `gorm:"size:32;not null" json:"action"`
	TileID    string         `gorm:"size:36" json:"tile_id"`
	ItemID    string         `gorm:"size:64" json:"item_id"`
	Qty       int            `json:"qty"`
	FromSlot  string         `gorm:"size:32" json:"from_slot"`
	ToSlot    string         `gorm:"size:32" json:"to_slot"`
	Result    string         `gorm:"size:32" json:"result"`
	Detail    datatypes.JSON `json:"detail"`
	Error     string         `gorm:"type:text" json:"error"`
	CreatedAt time.Time      `gorm:"index:idx_placement_created;autoCreateTime:milli" json:"created_at"`
}
