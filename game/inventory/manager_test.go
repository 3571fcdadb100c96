package inventory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/kasuganosora/slotgrid/game/item"
	"github.com/kasuganosora/slotgrid/game/slot"
	"github.com/kasuganosora/slotgrid/plugin/hook"
	"github.com/kasuganosora/slotgrid/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var (
	wood   = &item.Definition{ID: "Material_Wood", Name: "Wood", MaxStackSize: 10}
	metal  = &item.Definition{ID: "Material_Metal", Name: "Metal", MaxStackSize: 20}
	pistol = &item.Definition{ID: "Gun_Pistol", Name: "Pistol", MaxStackSize: 1}
)

// fixture builds n slots "s0".."s<n-1>" spaced 10 units apart on the x axis.
type fixture struct {
	m     *Manager
	slots []*slot.Slot
	hooks *hook.Center
	logs  *observer.ObservedLogs
}

func newFixture(t *testing.T, n int, mode DropMode) *fixture {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	reg := slot.NewRegistry(logger)
	slots := make([]*slot.Slot, n)
	for i := range slots {
		slots[i] = slot.New(slot.ID(fmt.Sprintf("s%d", i)), at(i))
		require.NoError(t, reg.Register(slots[i]))
	}
	cat, err := resource.NewCatalog(logger, wood, metal, pistol)
	require.NoError(t, err)
	hooks := hook.New(logger)
	return &fixture{
		m:     NewManager(reg, cat, hooks, mode, logger),
		slots: slots,
		hooks: hooks,
		logs:  logs,
	}
}

// at is the position of slot i.
func at(i int) mgl32.Vec3 { return mgl32.Vec3{float32(i * 10), 0, 0} }

func (f *fixture) spawn(t *testing.T, def *item.Definition, qty int) *Tile {
	t.Helper()
	tile, _, err := f.m.spawnTile(context.Background(), def.ID, qty)
	require.NoError(t, err)
	return tile
}

func qtyAt(s *slot.Slot) int {
	if s.Empty() {
		return 0
	}
	return s.Stack().Quantity()
}

func TestParseDropMode(t *testing.T) {
	for in, want := range map[string]DropMode{"": DropClosest, "closest": DropClosest, "best": DropBest} {
		got, err := ParseDropMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseDropMode("random")
	assert.ErrorIs(t, err, ErrUnknownDropMode)
}

func TestSpawn_FirstEmptyInRegistryOrder(t *testing.T) {
	f := newFixture(t, 3, DropClosest)
	a := f.spawn(t, wood, 4)
	b := f.spawn(t, metal, 5)

	assert.True(t, f.slots[0].Holds(a.Stack()))
	assert.True(t, f.slots[1].Holds(b.Stack()))
	assert.True(t, f.slots[2].Empty())
	assert.Equal(t, at(1), b.Position)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestSpawn_ClampsToMaxStackSize(t *testing.T) {
	f := newFixture(t, 1, DropClosest)
	tile := f.spawn(t, wood, 15)
	assert.Equal(t, 10, tile.Stack().Quantity())
	assert.Equal(t, 1, f.logs.FilterMessage("spawn quantity exceeds max stack size, clamping").Len())
}

func TestSpawn_Errors(t *testing.T) {
	f := newFixture(t, 1, DropClosest)
	ctx := context.Background()

	_, err := f.m.Spawn(ctx, "Unknown", 1)
	assert.ErrorIs(t, err, resource.ErrItemNotFound)

	_, err = f.m.Spawn(ctx, wood.ID, 0)
	assert.ErrorIs(t, err, item.ErrInvalidQuantity)

	f.spawn(t, wood, 1)
	_, err = f.m.Spawn(ctx, wood.ID, 1)
	assert.ErrorIs(t, err, ErrInventoryFull)
}

func TestSpawn_SkipsDragOrigin(t *testing.T) {
	f := newFixture(t, 2, DropClosest)
	f.spawn(t, wood, 4)
	_, err := f.m.BeginDrag(context.Background(), "s0", false)
	require.NoError(t, err)

	tile := f.spawn(t, metal, 1)
	assert.True(t, f.slots[1].Holds(tile.Stack()))

	_, err = f.m.Spawn(context.Background(), metal.ID, 1)
	assert.ErrorIs(t, err, ErrInventoryFull, "the origin must stay free for the dragged tile")
}

func TestClear(t *testing.T) {
	f := newFixture(t, 3, DropClosest)
	a := f.spawn(t, wood, 4)
	f.spawn(t, metal, 5)
	f.spawn(t, pistol, 1)
	_, err := f.m.BeginDrag(context.Background(), "s2", false)
	require.NoError(t, err)

	assert.Equal(t, 3, f.m.Clear(context.Background()))
	for _, s := range f.slots {
		assert.True(t, s.Empty())
	}
	assert.Nil(t, a.Stack())
	_, dragging := f.m.Dragging()
	assert.False(t, dragging)

	// a destroyed tile is ignored by the placement engine
	res, err := f.m.PlaceFromDrag(a, f.slots[0])
	require.NoError(t, err)
	assert.Equal(t, Failed, res)
	assert.True(t, f.slots[0].Empty())
}

func TestState(t *testing.T) {
	f := newFixture(t, 2, DropBest)
	tile := f.spawn(t, wood, 4)

	st := f.m.State()
	assert.Equal(t, DropBest, st.DropMode)
	require.Len(t, st.Slots, 2)
	assert.Equal(t, SlotView{ID: "s0", X: 0, Y: 0, TileID: tile.ID, ItemID: wood.ID, Qty: 4}, st.Slots[0])
	assert.Equal(t, SlotView{ID: "s1", X: 10, Y: 0}, st.Slots[1])
	assert.Nil(t, st.Drag)

	_, err := f.m.BeginDrag(context.Background(), "s0", true)
	require.NoError(t, err)
	st = f.m.State()
	require.NotNil(t, st.Drag)
	assert.Equal(t, 2, st.Drag.Qty)
	assert.Equal(t, 2, st.Slots[0].Qty)
}

func TestHooksMayCallBackIntoManager(t *testing.T) {
	f := newFixture(t, 2, DropClosest)
	var seen int
	f.hooks.Register(hook.AfterSpawn, 0, "test", func(_ context.Context, _ string, d interface{}) (interface{}, error) {
		seen = len(f.m.Snapshot().Stacks)
		return d, nil
	})
	f.spawn(t, wood, 1)
	assert.Equal(t, 1, seen)
}

func TestSpawn_ReturnsSlotView(t *testing.T) {
	f := newFixture(t, 2, DropClosest)
	f.spawn(t, metal, 1)

	v, err := f.m.Spawn(context.Background(), wood.ID, 15)
	require.NoError(t, err)
	assert.Equal(t, slot.ID("s1"), v.ID)
	assert.Equal(t, float32(10), v.X)
	assert.Equal(t, wood.ID, v.ItemID)
	assert.Equal(t, 10, v.Qty)
	assert.Equal(t, f.m.State().Slots[1].TileID, v.TileID)
}

// Spawn results stay readable while other callers clear the inventory.
func TestConcurrentSpawnAndClear(t *testing.T) {
	f := newFixture(t, 4, DropClosest)
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			v, err := f.m.Spawn(context.Background(), wood.ID, 3)
			if err == nil {
				assert.Equal(t, 3, v.Qty)
				assert.NotEmpty(t, v.TileID)
			}
		}()
		go func() {
			defer wg.Done()
			f.m.Clear(context.Background())
		}()
	}
	wg.Wait()
}

func TestConcurrentSpawnAndState(t *testing.T) {
	f := newFixture(t, 16, DropClosest)
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.m.Spawn(context.Background(), wood.ID, 1)
			_ = f.m.State()
		}()
	}
	wg.Wait()
	assert.Len(t, f.m.Snapshot().Stacks, 16)
}
