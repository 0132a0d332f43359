package FEM2D

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// squareMesh returns an n x n grid of the box [0,w] x [0,h], two triangles per
// square
func squareMesh(t *testing.T, n int, w, h float64) *Mesh {
	var (
		pts  [][3]float64
		tris [][]int
	)
	for j := 0; j <= n; j++ {
		for i := 0; i <= n; i++ {
			pts = append(pts, [3]float64{w * float64(i) / float64(n), h * float64(j) / float64(n), 0})
		}
	}
	id := func(i, j int) int { return j*(n+1) + i }
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			tris = append(tris,
				[]int{id(i, j), id(i+1, j), id(i+1, j+1)},
				[]int{id(i, j), id(i+1, j+1), id(i, j+1)},
			)
		}
	}
	m, err := NewMesh(pts, tris)
	require.NoError(t, err)
	return m
}

func TestNewMesh(t *testing.T) {
	{ // Euler characteristic of a disc: V - E + F = 1
		m := squareMesh(t, 2, 1, 1)
		assert.Equal(t, 9, m.Nv)
		assert.Equal(t, 8, m.K)
		assert.Equal(t, 16, len(m.Edges))
		var area float64
		for k := 0; k < m.K; k++ {
			assert.Greater(t, m.signedArea(k), 0.)
			area += m.Area(k)
			for j := 0; j < 3; j++ {
				e := m.Edges[m.EToEd[k][j]]
				a, b := m.EToV[k][j], m.EToV[k][(j+1)%3]
				if a > b {
					a, b = b, a
				}
				assert.Equal(t, [2]int{a, b}, e)
			}
		}
		assert.InDelta(t, 1., area, 1.e-14)
	}
	{ // Clockwise input is reoriented, unused points are dropped
		pts := [][3]float64{{5, 5, 0}, {0, 0, 0}, {0, 1, 0}, {1, 0, 0}}
		m, err := NewMesh(pts, [][]int{{1, 2, 3}})
		require.NoError(t, err)
		assert.Equal(t, 3, m.Nv)
		assert.Equal(t, []int{1, 2, 3}, m.PointIndex)
		assert.Greater(t, m.signedArea(0), 0.)
		x, y := m.Centroid(0)
		assert.InDelta(t, 1./3, x, 1.e-15)
		assert.InDelta(t, 1./3, y, 1.e-15)
		assert.Equal(t, [][3]float64{{0, 0, 0}, {0, 1, 0}, {1, 0, 0}}, m.Points())
	}
	{
		pts := [][3]float64{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}}
		_, err := NewMesh(pts, [][]int{{0, 1, 2}})
		assert.Error(t, err)
		_, err = NewMesh(pts, [][]int{{0, 1, 3}})
		assert.Error(t, err)
		_, err = NewMesh(pts, [][]int{{0, 1}})
		assert.Error(t, err)
		_, err = NewMesh(pts, nil)
		assert.Error(t, err)
	}
}

func TestGeometry(t *testing.T) {
	pts := [][3]float64{{1, 1, 0}, {3, 1.5, 0}, {1.5, 4, 0}}
	m, err := NewMesh(pts, [][]int{{0, 1, 2}})
	require.NoError(t, err)
	g := m.Geometry(0)
	assert.InDelta(t, 2*m.Area(0), g.DetJ, 1.e-14)
	for _, rs := range [][2]float64{{0, 0}, {1, 0}, {0, 1}, {0.2, 0.3}} {
		x, y := g.Map(rs[0], rs[1])
		r, s := g.Inverse(x, y)
		assert.InDelta(t, rs[0], r, 1.e-14)
		assert.InDelta(t, rs[1], s, 1.e-14)
	}
	// Gradient of the linear map x itself
	dx, dy := g.Grad(g.J[0][0], g.J[0][1])
	assert.InDelta(t, 1., dx, 1.e-14)
	assert.InDelta(t, 0., dy, 1.e-14)
}
