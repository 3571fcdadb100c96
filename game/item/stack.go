package item

import (
	"errors"
	"sync"
)

var (
	// ErrInvalidQuantity is returned when a stack is created with a negative quantity.
	ErrInvalidQuantity = errors.New("item: invalid quantity")
	// ErrNilDefinition is returned when a stack is created without an item definition.
	ErrNilDefinition = errors.New("item: nil definition")
)

// Definition is the static catalog entry of an item type.
// Only ID equality and MaxStackSize are interpreted by the inventory core.
type Definition struct {
	ID           string `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	Icon         string `json:"icon,omitempty" yaml:"icon,omitempty"`
	MaxStackSize int    `json:"max_stack_size" yaml:"max_stack_size"`
}

// QuantityFn is called with the new quantity whenever a stack's quantity changes.
type QuantityFn func(qty int)

type listener struct {
	id int
	fn QuantityFn
}

// Stack is a quantity of a single item type.
type Stack struct {
	def *Definition
	qty int

	mu        sync.Mutex
	listeners []listener
	nextID    int
}

// NewStack creates a stack of qty units of def. A zero quantity is allowed and
// represents an emptied stack awaiting cleanup.
func NewStack(def *Definition, qty int) (*Stack, error) {
	if def == nil {
		return nil, ErrNilDefinition
	}
	if qty < 0 {
		return nil, ErrInvalidQuantity
	}
	return &Stack{def: def, qty: qty}, nil
}

// Item returns the stack's item definition.
func (s *Stack) Item() *Definition { return s.def }

// Quantity returns the current quantity.
func (s *Stack) Quantity() int { return s.qty }

// Empty reports whether the stack holds nothing.
func (s *Stack) Empty() bool { return s.qty == 0 }

// SameItem reports whether both stacks hold the same item type.
func (s *Stack) SameItem(o *Stack) bool {
	return o != nil && s.def.ID == o.def.ID
}

// SetQuantity stores q and notifies subscribers. Setting the current value is a
// no-op. The value is not clamped to MaxStackSize; Merge and Split keep it in range.
func (s *Stack) SetQuantity(q int) {
	if s.qty == q {
		return
	}
	s.qty = q

	s.mu.Lock()
	fns := make([]QuantityFn, len(s.listeners))
	for i, l := range s.listeners {
		fns[i] = l.fn
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(q)
	}
}

// Subscribe registers fn for quantity changes. Listeners run in subscription
// order. The returned func removes the subscription and is safe to call twice.
func (s *Stack) Subscribe(fn QuantityFn) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, listener{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		n := 0
		for _, l := range s.listeners {
			if l.id != id {
				s.listeners[n] = l
				n++
			}
		}
		s.listeners = s.listeners[:n]
	}
}
