package slot

import (
	"testing"

	"github.com/kasuganosora/slotgrid/game/item"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// woodScenario: S1 empty at 0, S2 holding Wood x3 at 1.
func woodScenario(t *testing.T) (*Selector, *Slot, *Slot) {
	t.Helper()
	reg := NewRegistry(zap.NewNop())
	s1, s2 := New("S1", at(0)), New("S2", at(1))
	require.NoError(t, reg.RegisterAll([]*Slot{s1, s2}))
	s2.Occupy(newStack(t, wood, 3))
	return NewSelector(reg), s1, s2
}

func TestSelectBest_StacksIntoNearest(t *testing.T) {
	sel, _, s2 := woodScenario(t)
	got, ok := sel.SelectBest(newStack(t, wood, 4), at(1))
	require.True(t, ok)
	assert.Same(t, s2, got)
}

func TestSelectBest_OverflowFallsThrough(t *testing.T) {
	sel, s1, _ := woodScenario(t)
	got, ok := sel.SelectBest(newStack(t, wood, 8), at(1))
	require.True(t, ok)
	assert.Same(t, s1, got)
}

// A sum exactly equal to the max stack size is rejected by the selector even
// though Merge would accept it.
func TestSelectBest_ExactFillRejected(t *testing.T) {
	sel, s1, s2 := woodScenario(t)
	dropped := newStack(t, wood, 7)

	got, ok := sel.SelectBest(dropped, at(1))
	require.True(t, ok)
	assert.Same(t, s1, got)

	assert.True(t, item.Merge(newStack(t, wood, s2.Stack().Quantity()), dropped))
}

func TestSelectBest_DifferentItemFallsThrough(t *testing.T) {
	sel, s1, _ := woodScenario(t)
	metal := &item.Definition{ID: "Material_Metal", MaxStackSize: 10}
	got, ok := sel.SelectBest(newStack(t, metal, 1), at(1))
	require.True(t, ok)
	assert.Same(t, s1, got)
}

func TestSelectBest_NoValidSlot(t *testing.T) {
	sel, s1, _ := woodScenario(t)
	s1.Occupy(newStack(t, &item.Definition{ID: "Gun_Pistol", MaxStackSize: 1}, 1))

	got, ok := sel.SelectBest(newStack(t, wood, 9), at(0))
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestSelectBest_Deterministic(t *testing.T) {
	sel, _, _ := woodScenario(t)
	dropped := newStack(t, wood, 2)
	a, _ := sel.SelectBest(dropped, at(0.5))
	b, _ := sel.SelectBest(dropped, at(0.5))
	assert.Same(t, a, b)
	// Equidistant: S1 registered first.
	assert.Equal(t, ID("S1"), a.ID())
}

func TestAccepts(t *testing.T) {
	s := New("x", at(0))
	assert.True(t, Accepts(s, newStack(t, wood, 10)))

	s.Occupy(newStack(t, wood, 5))
	assert.True(t, Accepts(s, newStack(t, wood, 4)))
	assert.False(t, Accepts(s, newStack(t, wood, 5)))
	assert.False(t, Accepts(s, newStack(t, &item.Definition{ID: "Material_Metal", MaxStackSize: 10}, 1)))
}
