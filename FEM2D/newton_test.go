package FEM2D

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/aqueous/utils"
)

// poisson is -lap(u) = f with u fixed on the boundary of the unit square
type poisson struct {
	fs   *FunctionSpace
	cub  *Cubature
	tab  Tabulation
	cons Constraints
	f    float64
}

func newPoisson(t *testing.T, exact func(x, y float64) float64, f float64) *poisson {
	var (
		m  = squareMesh(t, 3, 1, 1)
		fs = NewFunctionSpace(m, 2)
		p  = &poisson{fs: fs, cub: NewDunavant4(), cons: make(Constraints), f: f}
	)
	p.tab = fs.Element.Tabulate(p.cub)
	onBoundary := func(x, y float64) bool {
		return IsClose(x, 0) || IsClose(x, 1) || IsClose(y, 0) || IsClose(y, 1)
	}
	bc := NewDirichletBC("boundary", fs, LocateDofsGeometrical(fs, onBoundary))
	bc.ValueAt = func(x, y float64) []float64 { return []float64{exact(x, y)} }
	p.cons.Apply(bc, 0)
	return p
}

func (p *poisson) Size() int                { return p.fs.NumDofs() }
func (p *poisson) Constraints() Constraints { return p.cons }

func (p *poisson) Assemble(x []float64) (J utils.DOK, b []float64, err error) {
	var (
		n  = p.Size()
		m  = p.fs.Mesh
		np = p.fs.Element.Np
		gx = make([]float64, np)
		gy = make([]float64, np)
	)
	J, b = utils.NewDOK(n, n), make([]float64, n)
	for k := 0; k < m.K; k++ {
		g := m.Geometry(k)
		nodes := p.fs.CellNodes[k]
		for q, w := range p.cub.W {
			wq := w * math.Abs(g.DetJ)
			for i := range nodes {
				gx[i], gy[i] = g.Grad(p.tab.Dr[q][i], p.tab.Ds[q][i])
			}
			for i, ni := range nodes {
				b[ni] += wq * p.f * p.tab.Phi[q][i]
				for j, nj := range nodes {
					J.Add(ni, nj, wq*(gx[i]*gx[j]+gy[i]*gy[j]))
				}
			}
		}
	}
	return
}

func TestNewtonPoissonPatch(t *testing.T) {
	exact := func(x, y float64) float64 { return x*x + 2*y*y - x*y }
	for _, linear := range []utils.LinearSolver{utils.DenseLU{}, utils.NewGMRES()} {
		var (
			p  = newPoisson(t, exact, -6)
			ns = NewNewtonSolver(nil)
			x  = make([]float64, p.Size())
		)
		ns.Linear = linear
		its, err := ns.Solve(p, x)
		require.NoError(t, err, linear.Name())
		assert.LessOrEqual(t, its, 2)
		for n, X := range p.fs.NodeX {
			assert.InDelta(t, exact(X[0], X[1]), x[n], 1.e-9, linear.Name())
		}
	}
}

func TestNewtonErrors(t *testing.T) {
	exact := func(x, y float64) float64 { return 1 + x }
	p := newPoisson(t, exact, 0)
	ns := NewNewtonSolver(nil)
	_, err := ns.Solve(p, make([]float64, p.Size()-1))
	assert.Error(t, err)

	ns.MaxIt = 0
	_, err = ns.Solve(p, make([]float64, p.Size()))
	assert.ErrorIs(t, err, ErrNotConverged)

	// Starting from the solution converges immediately
	ns.MaxIt = 10
	x := make([]float64, p.Size())
	for n, X := range p.fs.NodeX {
		x[n] = exact(X[0], X[1])
	}
	its, err := ns.Solve(p, x)
	require.NoError(t, err)
	assert.Equal(t, 0, its)
}
