package slot

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/kasuganosora/slotgrid/game/item"
)

// Accepts reports whether dropped may be put into s: the slot is empty, or it
// holds the same item and the combined quantity stays strictly below the max.
//
// The strict comparison differs from Merge, which accepts a sum equal to the
// max. A drop that would exactly fill the slot is therefore passed over here.
func Accepts(s *Slot, dropped *item.Stack) bool {
	occ := s.Stack()
	if occ == nil {
		return true
	}
	return occ.SameItem(dropped) &&
		occ.Quantity()+dropped.Quantity() < occ.Item().MaxStackSize
}

// Selector picks the best slot for a dropped stack.
type Selector struct {
	registry *Registry
}

// NewSelector creates a Selector over reg.
func NewSelector(reg *Registry) *Selector {
	return &Selector{registry: reg}
}

// SelectBest walks the slots nearest-first and returns the first one that
// accepts dropped. It returns false when no slot does.
func (sel *Selector) SelectBest(dropped *item.Stack, p mgl32.Vec3) (*Slot, bool) {
	for _, s := range sel.registry.NearestSlots(p) {
		if Accepts(s, dropped) {
			return s, true
		}
	}
	return nil, false
}
