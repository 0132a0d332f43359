package FEM2D

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFunctionSpace(t *testing.T) {
	m := squareMesh(t, 2, 1, 1)
	P1 := NewFunctionSpace(m, 1)
	P2 := NewVectorFunctionSpace(m, 2)
	assert.Equal(t, 9, P1.NumDofs())
	assert.Equal(t, 25, P2.NumNodes)
	assert.Equal(t, 50, P2.NumDofs())
	assert.Equal(t, 2, P2.Degree())
	assert.Equal(t, 7, P2.Dof(3, 1))

	// Quadratics are interpolated exactly by P2
	u := NewFunction(P2, "u")
	u.Interpolate(func(x, y float64) []float64 {
		return []float64{x*x - 2*x*y, 3*y*y + x}
	})
	cub := NewDunavant4()
	for k := 0; k < m.K; k++ {
		g := m.Geometry(k)
		for q := range cub.W {
			x, y := g.Map(cub.R[q], cub.S[q])
			assert.InDelta(t, x*x-2*x*y, u.EvalCell(k, 0, cub.R[q], cub.S[q]), 1.e-14)
			assert.InDelta(t, 3*y*y+x, u.EvalCell(k, 1, cub.R[q], cub.S[q]), 1.e-14)
		}
	}
	vv := u.VertexValues()
	require.Len(t, vv, 2*m.Nv)
	for i := 0; i < m.Nv; i++ {
		x, y := m.VX[i], m.VY[i]
		assert.InDelta(t, x*x-2*x*y, vv[2*i], 1.e-15)
	}

	p := NewFunction(P1, "p")
	x := make([]float64, u.Space.NumDofs()+P1.NumDofs())
	x[len(x)-1] = 4
	require.NoError(t, p.Assign(x, u.Space.NumDofs()))
	assert.Equal(t, 4., p.Values[8])
	assert.Error(t, p.Assign(x, u.Space.NumDofs()+1))
}

func TestLocateBoundary(t *testing.T) {
	var (
		m         = squareMesh(t, 2, 1, 1)
		P2        = NewFunctionSpace(m, 2)
		left      = func(x, y float64) bool { return IsClose(x, 0) }
		leftEdges [][2]int
	)
	nodes := LocateDofsGeometrical(P2, left)
	assert.Len(t, nodes, 5)
	for _, e := range m.Edges {
		if IsClose(m.VX[e[0]], 0) && IsClose(m.VX[e[1]], 0) {
			// Reverse the pair to check orientation does not matter
			leftEdges = append(leftEdges, [2]int{e[1], e[0]})
		}
	}
	require.Len(t, leftEdges, 2)
	assert.Equal(t, nodes, LocateBoundaryNodes(P2, leftEdges))
	assert.Len(t, LocateBoundaryNodes(NewFunctionSpace(m, 1), leftEdges), 3)

	V := NewVectorFunctionSpace(m, 2)
	cons := make(Constraints)
	cons.Apply(NewDirichletBC("wall", V, nodes, 0, 0), 0)
	bc := NewDirichletBC("lid", V, nodes[:1], 0, 0)
	bc.ValueAt = func(x, y float64) []float64 { return []float64{1, y} }
	cons.Apply(bc, 10)
	assert.Len(t, cons, 12)
	// The later condition is written at its own offset
	assert.Equal(t, 1., cons[10+V.Dof(nodes[0], 0)])
	assert.Equal(t, 0., cons[V.Dof(nodes[0], 0)])
	assert.Len(t, cons.Rows(), 12)
}
