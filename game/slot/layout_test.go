package slot

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildGrid(t *testing.T) {
	slots, err := BuildGrid(3, 2, 10)
	require.NoError(t, err)
	require.Len(t, slots, 6)

	assert.Equal(t, ID("r0c0"), slots[0].ID())
	assert.Equal(t, ID("r0c2"), slots[2].ID())
	assert.Equal(t, ID("r1c0"), slots[3].ID())
	assert.Equal(t, mgl32.Vec3{20, -10, 0}, slots[5].Position())
	for _, s := range slots {
		assert.True(t, s.Empty())
	}
}

func TestBuildGrid_Invalid(t *testing.T) {
	_, err := BuildGrid(0, 2, 1)
	assert.Error(t, err)
	_, err = BuildGrid(2, 2, 0)
	assert.Error(t, err)
}
