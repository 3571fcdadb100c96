package slot

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// BuildGrid creates cols*rows slots row-major from the top-left. Slot (r, c)
// is named "r<r>c<c>" and sits at (c*spacing, -r*spacing, 0).
func BuildGrid(cols, rows int, spacing float32) ([]*Slot, error) {
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("slot: invalid grid %dx%d", cols, rows)
	}
	if spacing <= 0 {
		return nil, fmt.Errorf("slot: invalid spacing %v", spacing)
	}
	out := make([]*Slot, 0, cols*rows)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			id := ID(fmt.Sprintf("r%dc%d", r, c))
			out = append(out, New(id, mgl32.Vec3{float32(c) * spacing, -float32(r) * spacing, 0}))
		}
	}
	return out, nil
}

// RegisterAll registers every slot in order, stopping at the first error.
func (r *Registry) RegisterAll(slots []*Slot) error {
	for _, s := range slots {
		if err := r.Register(s); err != nil {
			return err
		}
	}
	return nil
}
