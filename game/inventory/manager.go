// Package inventory places, merges and moves item stacks between the slots of
// a registry. Every mutating operation runs under one manager-wide mutex;
// events raised while it is held are dispatched to the hook center after the
// mutex is released.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/kasuganosora/slotgrid/game/item"
	"github.com/kasuganosora/slotgrid/game/slot"
	"github.com/kasuganosora/slotgrid/plugin/hook"
	"github.com/kasuganosora/slotgrid/resource"
	"go.uber.org/zap"
)

var (
	ErrUnknownSlot      = errors.New("inventory: unknown slot")
	ErrSlotEmpty        = errors.New("inventory: slot is empty")
	ErrInventoryFull    = errors.New("inventory: no empty slot")
	ErrDragInProgress   = errors.New("inventory: drag already in progress")
	ErrNoActiveDrag     = errors.New("inventory: no active drag")
	ErrUnknownDropMode  = errors.New("inventory: unknown drop mode")
	ErrFallbackRejected = errors.New("inventory: origin slot rejected fallback placement")
)

// DropMode selects how Drop picks its target slot.
type DropMode string

const (
	// DropClosest targets the closest slot regardless of what it holds.
	DropClosest DropMode = "closest"
	// DropBest targets the closest slot that accepts the dragged stack.
	DropBest DropMode = "best"
)

// ParseDropMode parses a configured drop mode. An empty string means DropClosest.
func ParseDropMode(s string) (DropMode, error) {
	switch DropMode(s) {
	case "", DropClosest:
		return DropClosest, nil
	case DropBest:
		return DropBest, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDropMode, s)
}

// Event is the payload passed to hooks for every inventory change.
type Event struct {
	Type     string      `json:"type"`
	TileID   string      `json:"tile_id,omitempty"`
	ItemID   string      `json:"item_id,omitempty"`
	Qty      int         `json:"qty"`
	FromSlot slot.ID     `json:"from_slot,omitempty"`
	ToSlot   slot.ID     `json:"to_slot,omitempty"`
	Result   string      `json:"result,omitempty"`
	Point    *mgl32.Vec3 `json:"point,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// Manager owns the occupant relation between tiles and the slots of a registry.
type Manager struct {
	mu      sync.Mutex
	reg     *slot.Registry
	sel     *slot.Selector
	catalog *resource.Catalog
	hooks   *hook.Center
	mode    DropMode
	tiles   map[*item.Stack]*Tile
	drag    *dragState
	pending []*Event
	logger  *zap.Logger
}

// NewManager creates a Manager over reg. hooks may be nil.
func NewManager(reg *slot.Registry, catalog *resource.Catalog, hooks *hook.Center, mode DropMode, logger *zap.Logger) *Manager {
	if hooks == nil {
		hooks = hook.New(logger)
	}
	if mode == "" {
		mode = DropClosest
	}
	return &Manager{
		reg:     reg,
		sel:     slot.NewSelector(reg),
		catalog: catalog,
		hooks:   hooks,
		mode:    mode,
		tiles:   make(map[*item.Stack]*Tile),
		logger:  logger,
	}
}

// Registry returns the slot registry the manager places into.
func (m *Manager) Registry() *slot.Registry { return m.reg }

// Hooks returns the hook center events are dispatched to.
func (m *Manager) Hooks() *hook.Center { return m.hooks }

// DropMode returns the configured drop mode.
func (m *Manager) DropMode() DropMode { return m.mode }

// unlock releases the mutex and then dispatches the events recorded while it
// was held. Call it deferred, right after m.mu.Lock().
func (m *Manager) unlock(ctx context.Context) {
	events := m.pending
	m.pending = nil
	m.mu.Unlock()
	for _, e := range events {
		m.hooks.Trigger(ctx, e.Type, e)
	}
}

func (m *Manager) record(e *Event) {
	m.pending = append(m.pending, e)
}

// track starts forwarding quantity changes of t's stack.
func (m *Manager) track(t *Tile) {
	if t.unsub != nil || t.stack == nil {
		return
	}
	id, itemID := t.ID, t.itemID()
	t.unsub = t.stack.Subscribe(func(qty int) {
		m.record(&Event{Type: hook.OnQuantityChange, TileID: id, ItemID: itemID, Qty: qty})
	})
	m.tiles[t.stack] = t
}

// destroy detaches t from its stack and forgets it.
func (m *Manager) destroy(t *Tile) {
	if t.unsub != nil {
		t.unsub()
		t.unsub = nil
	}
	delete(m.tiles, t.stack)
	t.stack = nil
}

// tileAt returns the tile carrying the occupant of s.
func (m *Manager) tileAt(s *slot.Slot) *Tile {
	st := s.Stack()
	if st == nil {
		return nil
	}
	if t, ok := m.tiles[st]; ok {
		return t
	}
	t := NewTile(st, s.Position())
	m.track(t)
	return t
}

func (m *Manager) occupy(s *slot.Slot, t *Tile) {
	s.Occupy(t.stack)
	t.Position = s.Position()
	m.track(t)
}

// stale reports whether t has nothing left to place: it was destroyed, its
// stack is empty or it already sits in a slot.
func (m *Manager) stale(t *Tile) bool {
	if !t.live() {
		return true
	}
	_, placed := m.reg.SlotWithStack(t.stack)
	return placed
}

// firstFree returns the first empty slot in registry order, never the origin
// of the active drag.
func (m *Manager) firstFree() (*slot.Slot, bool) {
	for _, s := range m.reg.All() {
		if !s.Empty() {
			continue
		}
		if m.drag != nil && m.drag.origin == s {
			continue
		}
		return s, true
	}
	return nil, false
}

// Spawn creates a stack of qty units of itemID in the first empty slot and
// returns a view of that slot taken under the lock.
// Quantities above the item's max stack size are clamped.
func (m *Manager) Spawn(ctx context.Context, itemID string, qty int) (SlotView, error) {
	_, v, err := m.spawnTile(ctx, itemID, qty)
	return v, err
}

func (m *Manager) spawnTile(ctx context.Context, itemID string, qty int) (*Tile, SlotView, error) {
	if qty <= 0 {
		return nil, SlotView{}, fmt.Errorf("%w: %d", item.ErrInvalidQuantity, qty)
	}
	def, err := m.catalog.Lookup(itemID)
	if err != nil {
		return nil, SlotView{}, err
	}

	m.mu.Lock()
	defer m.unlock(ctx)

	t, s, err := m.spawn(def, qty)
	if err != nil {
		return nil, SlotView{}, err
	}
	pos := s.Position()
	v := SlotView{
		ID:     s.ID(),
		X:      pos.X(),
		Y:      pos.Y(),
		TileID: t.ID,
		ItemID: def.ID,
		Qty:    t.stack.Quantity(),
	}
	m.record(&Event{
		Type:   hook.AfterSpawn,
		TileID: v.TileID,
		ItemID: v.ItemID,
		Qty:    v.Qty,
		ToSlot: v.ID,
	})
	return t, v, nil
}

func (m *Manager) spawn(def *item.Definition, qty int) (*Tile, *slot.Slot, error) {
	if qty > def.MaxStackSize {
		m.logger.Warn("spawn quantity exceeds max stack size, clamping",
			zap.String("item", def.ID),
			zap.Int("qty", qty),
			zap.Int("max", def.MaxStackSize))
		qty = def.MaxStackSize
	}
	s, ok := m.firstFree()
	if !ok {
		return nil, nil, fmt.Errorf("%w: cannot spawn %s", ErrInventoryFull, def.ID)
	}
	st, err := item.NewStack(def, qty)
	if err != nil {
		return nil, nil, err
	}
	t := NewTile(st, s.Position())
	m.occupy(s, t)
	return t, s, nil
}

// Clear destroys every tile, including the one being dragged, and returns how
// many were destroyed.
func (m *Manager) Clear(ctx context.Context) int {
	m.mu.Lock()
	defer m.unlock(ctx)

	n := m.clear()
	m.record(&Event{Type: hook.AfterClear, Qty: n})
	return n
}

func (m *Manager) clear() int {
	for _, s := range m.reg.All() {
		s.Release()
	}
	n := len(m.tiles)
	for _, t := range m.tiles {
		m.destroy(t)
	}
	m.drag = nil
	return n
}
