package FEM2D

import (
	"fmt"
	"math"
)

// Mesh is a conforming triangle mesh. Vertices not referenced by a triangle
// are dropped on construction, triangles are made counter clockwise.
type Mesh struct {
	K      int // number of triangles
	Nv     int // number of vertices
	VX, VY []float64
	EToV   [][3]int

	// Unique edges, numbered in order of first appearance. Local edge j of
	// triangle k joins local vertices j and (j+1)%3.
	Edges [][2]int
	EToEd [][3]int

	// PointIndex maps each vertex back to the point list it was built from
	PointIndex []int
}

func NewMesh(points [][3]float64, triangles [][]int) (m *Mesh, err error) {
	var (
		remap = make(map[int]int)
	)
	if len(triangles) == 0 {
		err = fmt.Errorf("mesh has no triangles")
		return
	}
	m = &Mesh{K: len(triangles)}
	m.EToV = make([][3]int, m.K)
	for k, tri := range triangles {
		if len(tri) != 3 {
			err = fmt.Errorf("cell %d has %d nodes, want 3", k, len(tri))
			return
		}
		for j, p := range tri {
			if p < 0 || p >= len(points) {
				err = fmt.Errorf("cell %d references point %d of %d", k, p, len(points))
				return
			}
			v, ok := remap[p]
			if !ok {
				v = len(m.VX)
				remap[p] = v
				m.VX = append(m.VX, points[p][0])
				m.VY = append(m.VY, points[p][1])
				m.PointIndex = append(m.PointIndex, p)
			}
			m.EToV[k][j] = v
		}
		if m.signedArea(k) < 0 {
			m.EToV[k][1], m.EToV[k][2] = m.EToV[k][2], m.EToV[k][1]
		}
		if m.signedArea(k) == 0 {
			err = fmt.Errorf("cell %d is degenerate", k)
			return
		}
	}
	m.Nv = len(m.VX)
	m.buildEdges()
	return
}

func (m *Mesh) signedArea(k int) float64 {
	var (
		v      = m.EToV[k]
		x0, y0 = m.VX[v[0]], m.VY[v[0]]
	)
	return 0.5 * ((m.VX[v[1]]-x0)*(m.VY[v[2]]-y0) - (m.VX[v[2]]-x0)*(m.VY[v[1]]-y0))
}

func (m *Mesh) buildEdges() {
	var (
		edgeID = make(map[[2]int]int)
	)
	m.EToEd = make([][3]int, m.K)
	for k, v := range m.EToV {
		for j := 0; j < 3; j++ {
			a, b := v[j], v[(j+1)%3]
			key := [2]int{a, b}
			if a > b {
				key = [2]int{b, a}
			}
			id, ok := edgeID[key]
			if !ok {
				id = len(m.Edges)
				edgeID[key] = id
				m.Edges = append(m.Edges, key)
			}
			m.EToEd[k][j] = id
		}
	}
}

// Area returns the area of triangle k
func (m *Mesh) Area(k int) float64 { return math.Abs(m.signedArea(k)) }

// Centroid returns the centroid of triangle k
func (m *Mesh) Centroid(k int) (x, y float64) {
	v := m.EToV[k]
	x = (m.VX[v[0]] + m.VX[v[1]] + m.VX[v[2]]) / 3
	y = (m.VY[v[0]] + m.VY[v[1]] + m.VY[v[2]]) / 3
	return
}

// Points returns the vertex coordinates with z = 0
func (m *Mesh) Points() (pts [][3]float64) {
	pts = make([][3]float64, m.Nv)
	for i := range pts {
		pts[i] = [3]float64{m.VX[i], m.VY[i], 0}
	}
	return
}

// Triangles returns the connectivity in the vertex numbering of the mesh
func (m *Mesh) Triangles() (tris [][]int) {
	tris = make([][]int, m.K)
	for k, v := range m.EToV {
		tris[k] = []int{v[0], v[1], v[2]}
	}
	return
}

// Geometry is the affine map of one triangle evaluated once
type Geometry struct {
	X0, Y0 float64
	J      [2][2]float64 // dx/dr, dx/ds ; dy/dr, dy/ds
	Rx, Sx float64
	Ry, Sy float64
	DetJ   float64
}

func (m *Mesh) Geometry(k int) (g Geometry) {
	var (
		v = m.EToV[k]
	)
	g.X0, g.Y0 = m.VX[v[0]], m.VY[v[0]]
	g.J[0][0] = m.VX[v[1]] - g.X0
	g.J[0][1] = m.VX[v[2]] - g.X0
	g.J[1][0] = m.VY[v[1]] - g.Y0
	g.J[1][1] = m.VY[v[2]] - g.Y0
	g.DetJ = g.J[0][0]*g.J[1][1] - g.J[0][1]*g.J[1][0]
	g.Rx = g.J[1][1] / g.DetJ
	g.Ry = -g.J[0][1] / g.DetJ
	g.Sx = -g.J[1][0] / g.DetJ
	g.Sy = g.J[0][0] / g.DetJ
	return
}

// Map returns the physical coordinates of reference point (r,s)
func (g Geometry) Map(r, s float64) (x, y float64) {
	x = g.X0 + g.J[0][0]*r + g.J[0][1]*s
	y = g.Y0 + g.J[1][0]*r + g.J[1][1]*s
	return
}

// Grad maps reference derivatives to physical ones
func (g Geometry) Grad(dr, ds float64) (dx, dy float64) {
	dx = dr*g.Rx + ds*g.Sx
	dy = dr*g.Ry + ds*g.Sy
	return
}

// Inverse returns the reference coordinates of physical point (x,y)
func (g Geometry) Inverse(x, y float64) (r, s float64) {
	dx, dy := x-g.X0, y-g.Y0
	r = g.Rx*dx + g.Ry*dy
	s = g.Sx*dx + g.Sy*dy
	return
}
