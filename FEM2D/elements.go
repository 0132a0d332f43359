package FEM2D

import "fmt"

// LagrangeElement is a continuous Lagrange element of degree 1 or 2 on the
// reference triangle (0,0), (1,0), (0,1). Degree 2 nodes are the vertices
// followed by the midpoints of edges 0-1, 1-2 and 2-0.
type LagrangeElement struct {
	N, Np int
	R, S  []float64
}

func NewLagrangeElement(N int) (el *LagrangeElement) {
	switch N {
	case 1:
		el = &LagrangeElement{N: 1, Np: 3,
			R: []float64{0, 1, 0},
			S: []float64{0, 0, 1},
		}
	case 2:
		el = &LagrangeElement{N: 2, Np: 6,
			R: []float64{0, 1, 0, 0.5, 0.5, 0},
			S: []float64{0, 0, 1, 0, 0.5, 0.5},
		}
	default:
		panic(fmt.Errorf("lagrange element degree must be 1 or 2, have %d", N))
	}
	return
}

func barycentric(r, s float64) (L [3]float64) {
	return [3]float64{1 - r - s, r, s}
}

// Reference gradients of the barycentric coordinates
var dL = [3][2]float64{{-1, -1}, {1, 0}, {0, 1}}

// Edge j of the reference triangle joins vertices edgeVerts[j]
var edgeVerts = [3][2]int{{0, 1}, {1, 2}, {2, 0}}

// Basis evaluates all basis functions at (r,s)
func (el *LagrangeElement) Basis(r, s float64) (phi []float64) {
	L := barycentric(r, s)
	phi = make([]float64, el.Np)
	if el.N == 1 {
		copy(phi, L[:])
		return
	}
	for i := 0; i < 3; i++ {
		phi[i] = L[i] * (2*L[i] - 1)
	}
	for j, e := range edgeVerts {
		phi[3+j] = 4 * L[e[0]] * L[e[1]]
	}
	return
}

// GradBasis evaluates reference derivatives of all basis functions at (r,s)
func (el *LagrangeElement) GradBasis(r, s float64) (dr, ds []float64) {
	L := barycentric(r, s)
	dr, ds = make([]float64, el.Np), make([]float64, el.Np)
	if el.N == 1 {
		for i := 0; i < 3; i++ {
			dr[i], ds[i] = dL[i][0], dL[i][1]
		}
		return
	}
	for i := 0; i < 3; i++ {
		c := 4*L[i] - 1
		dr[i], ds[i] = c*dL[i][0], c*dL[i][1]
	}
	for j, e := range edgeVerts {
		a, b := e[0], e[1]
		dr[3+j] = 4 * (L[b]*dL[a][0] + L[a]*dL[b][0])
		ds[3+j] = 4 * (L[b]*dL[a][1] + L[a]*dL[b][1])
	}
	return
}

// Cubature is a rule on the reference triangle. Weights sum to the
// reference area 1/2.
type Cubature struct {
	R, S, W []float64
}

// NewDunavant4 returns the 6 point rule exact for degree 4 polynomials
func NewDunavant4() (cub *Cubature) {
	var (
		groups = []struct{ a, w float64 }{
			{0.445948490915965, 0.223381589678011},
			{0.091576213509771, 0.109951743655322},
		}
	)
	cub = &Cubature{}
	for _, g := range groups {
		b := 1 - 2*g.a
		cub.R = append(cub.R, g.a, b, g.a)
		cub.S = append(cub.S, g.a, g.a, b)
		for i := 0; i < 3; i++ {
			cub.W = append(cub.W, 0.5*g.w)
		}
	}
	return
}

// Tabulation holds basis values and reference gradients at cubature points
type Tabulation struct {
	Phi, Dr, Ds [][]float64 // [point][basis]
}

func (el *LagrangeElement) Tabulate(cub *Cubature) (tab Tabulation) {
	nq := len(cub.W)
	tab.Phi = make([][]float64, nq)
	tab.Dr = make([][]float64, nq)
	tab.Ds = make([][]float64, nq)
	for q := 0; q < nq; q++ {
		tab.Phi[q] = el.Basis(cub.R[q], cub.S[q])
		tab.Dr[q], tab.Ds[q] = el.GradBasis(cub.R[q], cub.S[q])
	}
	return
}
