package corepipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToDisplayFrameFlipsAxesWithoutMutatingInput(t *testing.T) {
	m := Mesh{
		Positions: []float32{1, 2, 3},
		Normals:   []float32{0, 1, 0},
	}

	out := ToDisplayFrame(m)

	assert.Equal(t, []float32{1, 3, -2}, out.Positions)
	assert.Equal(t, []float32{0, 0, -1}, out.Normals)

	assert.Equal(t, []float32{1, 2, 3}, m.Positions, "input mesh must be left untouched")
	assert.Equal(t, []float32{0, 1, 0}, m.Normals)
}
