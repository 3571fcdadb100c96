package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/kasuganosora/slotgrid/game/item"
	"github.com/kasuganosora/slotgrid/game/slot"
	"github.com/kasuganosora/slotgrid/plugin/hook"
	"go.uber.org/zap"
)

type dragState struct {
	tile   *Tile
	origin *slot.Slot
	split  bool
}

// DragInfo describes the tile currently being dragged.
type DragInfo struct {
	TileID   string     `json:"tile_id"`
	ItemID   string     `json:"item_id"`
	Qty      int        `json:"qty"`
	Origin   slot.ID    `json:"origin"`
	Split    bool       `json:"split"`
	Position mgl32.Vec3 `json:"position"`
}

func (d *dragState) info() DragInfo {
	return DragInfo{
		TileID:   d.tile.ID,
		ItemID:   d.tile.itemID(),
		Qty:      d.tile.stack.Quantity(),
		Origin:   d.origin.ID(),
		Split:    d.split,
		Position: d.tile.Position,
	}
}

// BeginDrag picks up the stack in slot id. With split set, half of the stack
// is dragged and the rest stays in the slot; stacks that cannot be split are
// dragged whole. BeforeSplit hooks run without the manager lock, so they may
// call back into the manager, and can veto the split by returning
// hook.ErrInterrupt. If the slot changes while the hooks run, they are asked
// again about the new contents.
func (m *Manager) BeginDrag(ctx context.Context, id slot.ID, split bool) (DragInfo, error) {
	for {
		var seen *splitCheck
		if split {
			c, err := m.splitCandidate(ctx, id)
			if err != nil {
				return DragInfo{}, err
			}
			c.allowed = m.allowSplit(ctx, c.event)
			seen = c
		}
		info, changed, err := m.beginDrag(ctx, id, seen)
		if !changed {
			return info, err
		}
		m.logger.Debug("slot changed during split hooks, asking again", zap.String("slot", string(id)))
	}
}

// splitCheck is what BeforeSplit hooks were shown for a slot.
type splitCheck struct {
	stack   *item.Stack
	qty     int
	event   *Event
	allowed bool
}

func (m *Manager) splitCandidate(ctx context.Context, id slot.ID) (*splitCheck, error) {
	m.mu.Lock()
	defer m.unlock(ctx)

	s, err := m.dragSource(id)
	if err != nil {
		return nil, err
	}
	t := m.tileAt(s)
	return &splitCheck{
		stack: t.stack,
		qty:   t.stack.Quantity(),
		event: &Event{
			Type:     hook.BeforeSplit,
			TileID:   t.ID,
			ItemID:   t.itemID(),
			Qty:      t.stack.Quantity(),
			FromSlot: s.ID(),
		},
	}, nil
}

func (m *Manager) dragSource(id slot.ID) (*slot.Slot, error) {
	if m.drag != nil {
		return nil, ErrDragInProgress
	}
	s, ok := m.reg.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSlot, id)
	}
	if s.Empty() {
		return nil, fmt.Errorf("%w: %s", ErrSlotEmpty, id)
	}
	return s, nil
}

// beginDrag starts the drag. With seen set, it reports changed when the slot
// no longer holds what the split hooks were shown.
func (m *Manager) beginDrag(ctx context.Context, id slot.ID, seen *splitCheck) (DragInfo, bool, error) {
	m.mu.Lock()
	defer m.unlock(ctx)

	s, err := m.dragSource(id)
	if err != nil {
		return DragInfo{}, false, err
	}
	src := m.tileAt(s)
	if seen != nil && (src.stack != seen.stack || src.stack.Quantity() != seen.qty) {
		return DragInfo{}, true, nil
	}

	d := &dragState{origin: s}
	if seen != nil && seen.allowed {
		if half, ok := item.Split(src.stack); ok {
			t := NewTile(half, s.Position())
			m.track(t)
			d.tile, d.split = t, true
		}
	}
	if d.tile == nil {
		s.Release()
		d.tile = src
	}
	m.drag = d

	m.record(&Event{
		Type:     hook.AfterDragStart,
		TileID:   d.tile.ID,
		ItemID:   d.tile.itemID(),
		Qty:      d.tile.stack.Quantity(),
		FromSlot: s.ID(),
	})
	return d.info(), false, nil
}

func (m *Manager) allowSplit(ctx context.Context, e *Event) bool {
	_, err := m.hooks.Trigger(ctx, hook.BeforeSplit, e)
	if errors.Is(err, hook.ErrInterrupt) {
		m.logger.Info("split vetoed by hook", zap.String("slot", string(e.FromSlot)))
		return false
	}
	return true
}

// Dragging returns the active drag, if any.
func (m *Manager) Dragging() (DragInfo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.drag == nil {
		return DragInfo{}, false
	}
	return m.drag.info(), true
}

// MoveDrag moves the dragged tile to p.
func (m *Manager) MoveDrag(p mgl32.Vec3) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.drag == nil {
		return ErrNoActiveDrag
	}
	m.drag.tile.Position = p
	return nil
}

// Drop releases the dragged tile at p. The target is chosen by the manager's
// drop mode; the drag origin is the fallback. When even the origin rejects the
// tile ErrFallbackRejected is returned and the drag stays active.
func (m *Manager) Drop(ctx context.Context, p mgl32.Vec3) (PlacementResult, error) {
	m.mu.Lock()
	defer m.unlock(ctx)

	d := m.drag
	if d == nil {
		return Failed, ErrNoActiveDrag
	}
	d.tile.Position = p

	var target *slot.Slot
	switch m.mode {
	case DropBest:
		target, _ = m.sel.SelectBest(d.tile.stack, p)
	default:
		target, _ = m.reg.Closest(p)
	}

	e := &Event{
		Type:     hook.AfterPlace,
		TileID:   d.tile.ID,
		ItemID:   d.tile.itemID(),
		Qty:      d.tile.stack.Quantity(),
		FromSlot: d.origin.ID(),
		Point:    &p,
	}
	res, dest, err := m.settle(d.tile, target, d.origin)
	e.Result = res.String()
	if dest != nil {
		e.ToSlot = dest.ID()
	}
	if err != nil {
		e.Error = err.Error()
		m.record(e)
		return res, err
	}
	m.drag = nil
	m.record(e)
	return res, nil
}

// CancelDrag puts the dragged tile back into its origin slot.
func (m *Manager) CancelDrag(ctx context.Context) (PlacementResult, error) {
	m.mu.Lock()
	defer m.unlock(ctx)

	d := m.drag
	if d == nil {
		return Failed, ErrNoActiveDrag
	}
	e := &Event{
		Type:     hook.AfterPlace,
		TileID:   d.tile.ID,
		ItemID:   d.tile.itemID(),
		Qty:      d.tile.stack.Quantity(),
		FromSlot: d.origin.ID(),
		ToSlot:   d.origin.ID(),
	}
	res, _, err := m.settle(d.tile, nil, d.origin)
	e.Result = res.String()
	if err != nil {
		e.Error = err.Error()
		m.record(e)
		return res, err
	}
	m.drag = nil
	m.record(e)
	return res, nil
}

// Trash destroys the dragged tile.
func (m *Manager) Trash(ctx context.Context) error {
	m.mu.Lock()
	defer m.unlock(ctx)

	d := m.drag
	if d == nil {
		return ErrNoActiveDrag
	}
	e := &Event{
		Type:     hook.AfterTrash,
		TileID:   d.tile.ID,
		ItemID:   d.tile.itemID(),
		Qty:      d.tile.stack.Quantity(),
		FromSlot: d.origin.ID(),
	}
	m.destroy(d.tile)
	m.drag = nil
	m.record(e)
	return nil
}
