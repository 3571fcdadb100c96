package inventory

import (
	"context"
	"fmt"

	"github.com/kasuganosora/slotgrid/game/item"
	"github.com/kasuganosora/slotgrid/game/slot"
	"go.uber.org/zap"
)

// PlacementResult is the terminal outcome of one placement attempt.
type PlacementResult int

const (
	Failed PlacementResult = iota
	MovedToEmpty
	MergedPartially
	MergedFully
)

func (r PlacementResult) String() string {
	switch r {
	case Failed:
		return "Failed"
	case MovedToEmpty:
		return "MovedToEmpty"
	case MergedPartially:
		return "MergedPartially"
	case MergedFully:
		return "MergedFully"
	}
	return fmt.Sprintf("PlacementResult(%d)", int(r))
}

// MarshalText encodes the result by name.
func (r PlacementResult) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// settled reports whether the tile ended up fully inside a slot.
func (r PlacementResult) settled() bool {
	return r == MovedToEmpty || r == MergedFully
}

// TryPlace attempts to put t into target. On MovedToEmpty the caller assigns
// the tile; on MergedFully the tile is destroyed. A stale tile yields Failed
// and changes nothing.
func (m *Manager) TryPlace(target *slot.Slot, t *Tile) PlacementResult {
	m.mu.Lock()
	defer m.unlock(context.Background())

	if m.stale(t) {
		return Failed
	}
	return m.tryPlace(target, t)
}

func (m *Manager) tryPlace(target *slot.Slot, t *Tile) PlacementResult {
	if target.Empty() {
		return MovedToEmpty
	}
	if !item.Merge(target.Stack(), t.stack) {
		return Failed
	}
	if t.stack.Empty() {
		m.destroy(t)
		return MergedFully
	}
	return MergedPartially
}

// PlaceFromDrag drops t on the slot closest to its position, falling back to
// origin when that slot does not take the whole stack. A fallback that is not
// accepted returns ErrFallbackRejected.
func (m *Manager) PlaceFromDrag(t *Tile, origin *slot.Slot) (PlacementResult, error) {
	m.mu.Lock()
	defer m.unlock(context.Background())

	if m.stale(t) {
		m.logger.Debug("ignoring stale tile", zap.String("tile", t.ID))
		return Failed, nil
	}
	target, _ := m.reg.Closest(t.Position)
	res, _, err := m.settle(t, target, origin)
	return res, err
}

// settle places t into target, or into origin when target is nil or does not
// absorb the whole stack. It returns the outcome and the slot the tile went to.
func (m *Manager) settle(t *Tile, target, origin *slot.Slot) (PlacementResult, *slot.Slot, error) {
	if target != nil {
		res := m.tryPlace(target, t)
		if res == MovedToEmpty {
			m.occupy(target, t)
		}
		if res.settled() {
			return res, target, nil
		}
		m.logger.Debug("placement falling back to origin",
			zap.String("tile", t.ID),
			zap.String("target", string(target.ID())),
			zap.Stringer("result", res))
	}

	if origin == nil {
		m.logger.Error("fallback placement without origin", zap.String("tile", t.ID))
		return Failed, nil, fmt.Errorf("%w: tile %s has no origin", ErrFallbackRejected, t.ID)
	}
	res := m.tryPlace(origin, t)
	if res == MovedToEmpty {
		m.occupy(origin, t)
	}
	if res.settled() {
		return res, origin, nil
	}
	m.logger.Error("fallback placement rejected",
		zap.String("tile", t.ID),
		zap.String("origin", string(origin.ID())),
		zap.Stringer("result", res))
	return res, origin, fmt.Errorf("%w: slot %s: %s", ErrFallbackRejected, origin.ID(), res)
}
