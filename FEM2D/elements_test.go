package FEM2D

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLagrangeBasis(t *testing.T) {
	points := [][2]float64{{0.1, 0.2}, {0.6, 0.3}, {1. / 3, 1. / 3}, {0, 0.9}}
	for _, N := range []int{1, 2} {
		el := NewLagrangeElement(N)
		require.Equal(t, el.Np, len(el.R))
		// Nodal basis
		for j := 0; j < el.Np; j++ {
			phi := el.Basis(el.R[j], el.S[j])
			for i := range phi {
				if i == j {
					assert.InDelta(t, 1., phi[i], 1.e-15)
				} else {
					assert.InDelta(t, 0., phi[i], 1.e-15)
				}
			}
		}
		const h = 1.e-6
		for _, p := range points {
			var (
				phi    = el.Basis(p[0], p[1])
				dr, ds = el.GradBasis(p[0], p[1])
				sum    float64
				dsum   float64
			)
			for i := range phi {
				sum += phi[i]
				dsum += dr[i] + ds[i]
			}
			assert.InDelta(t, 1., sum, 1.e-14)
			assert.InDelta(t, 0., dsum, 1.e-13)
			// Central differences are exact to rounding for quadratics
			pr, mr := el.Basis(p[0]+h, p[1]), el.Basis(p[0]-h, p[1])
			ps, ms := el.Basis(p[0], p[1]+h), el.Basis(p[0], p[1]-h)
			for i := range phi {
				assert.InDelta(t, (pr[i]-mr[i])/(2*h), dr[i], 1.e-8)
				assert.InDelta(t, (ps[i]-ms[i])/(2*h), ds[i], 1.e-8)
			}
		}
	}
	assert.Panics(t, func() { NewLagrangeElement(3) })
}

func factorial(n int) float64 {
	f := 1.
	for i := 2; i <= n; i++ {
		f *= float64(i)
	}
	return f
}

func TestDunavant4(t *testing.T) {
	cub := NewDunavant4()
	require.Len(t, cub.W, 6)
	// Integral of r^a s^b over the reference triangle is a! b! / (a+b+2)!
	for a := 0; a <= 4; a++ {
		for b := 0; a+b <= 4; b++ {
			var sum float64
			for q, w := range cub.W {
				sum += w * math.Pow(cub.R[q], float64(a)) * math.Pow(cub.S[q], float64(b))
			}
			exact := factorial(a) * factorial(b) / factorial(a+b+2)
			assert.InDelta(t, exact, sum, 1.e-13, "r^%d s^%d", a, b)
		}
	}
	tab := NewLagrangeElement(2).Tabulate(cub)
	require.Len(t, tab.Phi, 6)
	assert.Len(t, tab.Dr[0], 6)
}
