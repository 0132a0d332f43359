package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeshBlocks(t *testing.T) {
	m := NewMesh()
	for _, p := range [][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}} {
		m.AddPoint(p[0], p[1], 0)
	}
	m.AppendCell(Line, []int{0, 1}, 11, 3)
	m.AppendCell(Line, []int{1, 2}, 12, 4)
	m.AppendCell(Triangle, []int{0, 1, 2}, 1, 1)
	m.AppendCell(Triangle, []int{0, 2, 3}, 2, 5)
	m.AppendCell(Line, []int{2, 3}, 12, 4)
	require.Len(t, m.Cells, 3)
	assert.Equal(t, 3, m.CountCells(Line))
	assert.Equal(t, 2, m.Cells[0].Len())
	assert.True(t, m.Cells[1].Tagged())
	assert.Equal(t, []int{1, 2}, m.Tags(Triangle))
	assert.Equal(t, map[int]int{11: 1, 12: 2}, m.TagCounts(Line))

	cb, err := m.FirstBlock(Line)
	require.NoError(t, err)
	assert.Equal(t, 2, cb.Len())
	_, err = m.FirstBlock(Vertex)
	assert.ErrorIs(t, err, ErrNoBlock)

	require.NoError(t, m.AddPhysicalGroup(2, 1, "chamber"))
	require.NoError(t, m.AddPhysicalGroup(1, 1, "other dimension"))
	assert.ErrorIs(t, m.AddPhysicalGroup(2, 1, "again"), ErrDuplicateGroup)
	pg, found := m.PhysicalGroup(2, 1)
	assert.True(t, found)
	assert.Equal(t, "chamber", pg.Name)

	min, max := m.Bounds()
	assert.Equal(t, [3]float64{0, 0, 0}, min)
	assert.Equal(t, [3]float64{1, 1, 0}, max)
	assert.NoError(t, m.Validate())

	m.Cells[1].Connectivity[0] = []int{0, 1, 9}
	assert.Error(t, m.Validate())
	m.Cells[1].Connectivity[0] = []int{0, 1}
	assert.Error(t, m.Validate())
}

func TestCellType(t *testing.T) {
	assert.Equal(t, 3, Triangle.NumNodes())
	assert.Equal(t, 2, Triangle.Dimension())
	assert.Equal(t, 1, Line.Dimension())
	assert.Equal(t, 0, CellType("quad").NumNodes())
}
