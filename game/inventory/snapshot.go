package inventory

import (
	"context"
	"fmt"

	"github.com/kasuganosora/slotgrid/game/item"
	"github.com/kasuganosora/slotgrid/game/slot"
	"github.com/kasuganosora/slotgrid/plugin/hook"
	"github.com/kasuganosora/slotgrid/repository"
	"go.uber.org/zap"
)

// SlotView is the read-only state of one slot.
type SlotView struct {
	ID     slot.ID `json:"id"`
	X      float32 `json:"x"`
	Y      float32 `json:"y"`
	TileID string  `json:"tile_id,omitempty"`
	ItemID string  `json:"item_id,omitempty"`
	Qty    int     `json:"qty,omitempty"`
}

// State is the read-only state of the whole inventory.
type State struct {
	DropMode DropMode   `json:"drop_mode"`
	Slots    []SlotView `json:"slots"`
	Drag     *DragInfo  `json:"drag,omitempty"`
}

// State returns the current occupancy of every slot in registry order.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := m.reg.All()
	st := State{DropMode: m.mode, Slots: make([]SlotView, 0, len(all))}
	for _, s := range all {
		pos := s.Position()
		v := SlotView{ID: s.ID(), X: pos.X(), Y: pos.Y()}
		if t := m.tileAt(s); t != nil {
			v.TileID = t.ID
			v.ItemID = t.itemID()
			v.Qty = t.stack.Quantity()
		}
		st.Slots = append(st.Slots, v)
	}
	if m.drag != nil {
		info := m.drag.info()
		st.Drag = &info
	}
	return st
}

// Snapshot returns one record per occupied slot in registry order. The tile
// being dragged is saved at its origin slot, merged into the origin's record
// when the drag is a split, so a save taken mid-drag loses nothing.
func (m *Manager) Snapshot() *repository.SaveData {
	m.mu.Lock()
	defer m.mu.Unlock()

	var dragged *item.Stack
	if m.drag != nil && m.drag.tile.live() {
		dragged = m.drag.tile.stack
	}
	data := &repository.SaveData{Stacks: make([]repository.Record, 0, m.reg.Len())}
	for _, s := range m.reg.All() {
		var r repository.Record
		if st := s.Stack(); st != nil {
			r = repository.Record{ItemID: st.Item().ID, Quantity: st.Quantity()}
		}
		if dragged != nil && s == m.drag.origin {
			r.ItemID = dragged.Item().ID
			r.Quantity += dragged.Quantity()
		}
		if r.Quantity == 0 {
			continue
		}
		data.Stacks = append(data.Stacks, r)
	}
	return data
}

// Restore replaces the inventory contents with data. Every record is resolved
// through the catalog and checked against the item's max stack size before
// anything is touched, so a bad record or a snapshot larger than the registry
// leaves the inventory unchanged. Records with quantity 0 are skipped.
func (m *Manager) Restore(ctx context.Context, data *repository.SaveData) error {
	type entry struct {
		def *item.Definition
		qty int
	}
	entries := make([]entry, 0, len(data.Stacks))
	for i, r := range data.Stacks {
		if r.Quantity < 0 {
			return fmt.Errorf("record %d: %w: %d", i, item.ErrInvalidQuantity, r.Quantity)
		}
		def, err := m.catalog.Lookup(r.ItemID)
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		if r.Quantity > def.MaxStackSize {
			return fmt.Errorf("record %d: %w: %s has %d, max stack size is %d",
				i, item.ErrInvalidQuantity, def.ID, r.Quantity, def.MaxStackSize)
		}
		if r.Quantity == 0 {
			m.logger.Debug("skipping empty record", zap.Int("index", i), zap.String("item", r.ItemID))
			continue
		}
		entries = append(entries, entry{def: def, qty: r.Quantity})
	}

	m.mu.Lock()
	defer m.unlock(ctx)

	if m.drag != nil {
		return ErrDragInProgress
	}
	if len(entries) > m.reg.Len() {
		return fmt.Errorf("%w: %d stacks for %d slots", ErrInventoryFull, len(entries), m.reg.Len())
	}
	m.clear()
	for _, e := range entries {
		if _, _, err := m.spawn(e.def, e.qty); err != nil {
			return err
		}
	}
	m.record(&Event{Type: hook.AfterLoad, Qty: len(entries)})
	return nil
}
