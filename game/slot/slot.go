package slot

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/kasuganosora/slotgrid/game/item"
)

// ID identifies a slot within a registry.
type ID string

// Slot is a fixed placement location that holds at most one stack.
type Slot struct {
	id    ID
	pos   mgl32.Vec3
	stack *item.Stack
}

// New creates an empty slot at pos.
func New(id ID, pos mgl32.Vec3) *Slot {
	return &Slot{id: id, pos: pos}
}

func (s *Slot) ID() ID { return s.id }
func (s *Slot) Position() mgl32.Vec3 { return s.pos }
func (s *Slot) Stack() *item.Stack { return s.stack }
func (s *Slot) Empty() bool { return s.stack == nil }
func (s *Slot) Holds(st *item.Stack) bool { return st != nil && s.stack == st }

// Occupy assigns st as the occupant. Empty stacks are never stored.
func (s *Slot) Occupy(st *item.Stack) {
	if st == nil || st.Empty() {
		s.stack = nil
		return
	}
	s.stack = st
}

// Release clears the occupant and returns the previous one.
func (s *Slot) Release() *item.Stack {
	st := s.stack
	s.stack = nil
	return st
}

// distSqr is the squared distance from s to p.
func (s *Slot) distSqr(p mgl32.Vec3) float32 {
	return s.pos.Sub(p).LenSqr()
}
