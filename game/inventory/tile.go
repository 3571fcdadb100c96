package inventory

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/kasuganosora/slotgrid/game/item"
)

// Tile is the movable carrier of a stack. A tile whose stack is nil has been
// destroyed and is ignored by every placement operation.
type Tile struct {
	ID       string
	Position mgl32.Vec3

	stack *item.Stack
	unsub func()
}

// NewTile wraps st in a fresh tile at pos.
func NewTile(st *item.Stack, pos mgl32.Vec3) *Tile {
	return &Tile{ID: uuid.New().String(), Position: pos, stack: st}
}

// Stack returns the carried stack, or nil once the tile is destroyed.
func (t *Tile) Stack() *item.Stack { return t.stack }

func (t *Tile) live() bool {
	return t != nil && t.stack != nil && !t.stack.Empty()
}

func (t *Tile) itemID() string {
	if t.stack == nil {
		return ""
	}
	return t.stack.Item().ID
}
