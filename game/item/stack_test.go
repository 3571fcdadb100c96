package item

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wood = &Definition{ID: "Material_Wood", Name: "Wood", MaxStackSize: 10}

func newStack(t *testing.T, def *Definition, qty int) *Stack {
	t.Helper()
	s, err := NewStack(def, qty)
	require.NoError(t, err)
	return s
}

func TestNewStack_Negative(t *testing.T) {
	_, err := NewStack(wood, -1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestNewStack_ZeroAllowed(t *testing.T) {
	s := newStack(t, wood, 0)
	assert.True(t, s.Empty())
	assert.Equal(t, wood, s.Item())
}

func TestNewStack_NilDefinition(t *testing.T) {
	_, err := NewStack(nil, 1)
	assert.ErrorIs(t, err, ErrNilDefinition)
}

func TestSetQuantity_NotifiesOnChange(t *testing.T) {
	s := newStack(t, wood, 3)
	var got []int
	s.Subscribe(func(q int) { got = append(got, q) })

	s.SetQuantity(5)
	s.SetQuantity(5) // unchanged, no notification
	s.SetQuantity(0)

	assert.Equal(t, []int{5, 0}, got)
	assert.Equal(t, 0, s.Quantity())
}

func TestSetQuantity_DoesNotClamp(t *testing.T) {
	s := newStack(t, wood, 3)
	s.SetQuantity(42)
	assert.Equal(t, 42, s.Quantity())
}

func TestSubscribe_OrderAndUnsubscribe(t *testing.T) {
	s := newStack(t, wood, 1)
	var order []string
	unsubA := s.Subscribe(func(int) { order = append(order, "a") })
	s.Subscribe(func(int) { order = append(order, "b") })

	s.SetQuantity(2)
	assert.Equal(t, []string{"a", "b"}, order)

	unsubA()
	unsubA()
	order = nil
	s.SetQuantity(3)
	assert.Equal(t, []string{"b"}, order)
}

func TestSameItem(t *testing.T) {
	metal := &Definition{ID: "Material_Metal", MaxStackSize: 10}
	a := newStack(t, wood, 1)
	assert.True(t, a.SameItem(newStack(t, &Definition{ID: "Material_Wood", MaxStackSize: 5}, 1)))
	assert.False(t, a.SameItem(newStack(t, metal, 1)))
	assert.False(t, a.SameItem(nil))
}
