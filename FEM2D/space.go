package FEM2D

import "fmt"

// FunctionSpace is a continuous Lagrange space on a mesh. A node is a point
// carrying BlockSize dofs, dof = node*BlockSize + component. Degree 2 nodes
// are the mesh vertices followed by one node per unique edge.
type FunctionSpace struct {
	Mesh      *Mesh
	Element   *LagrangeElement
	BlockSize int
	NumNodes  int
	CellNodes [][]int
	NodeX     [][2]float64
}

func NewFunctionSpace(m *Mesh, degree int) *FunctionSpace {
	return newSpace(m, degree, 1)
}

// NewVectorFunctionSpace returns a space with two components per node
func NewVectorFunctionSpace(m *Mesh, degree int) *FunctionSpace {
	return newSpace(m, degree, 2)
}

func newSpace(m *Mesh, degree, bs int) (fs *FunctionSpace) {
	fs = &FunctionSpace{
		Mesh:      m,
		Element:   NewLagrangeElement(degree),
		BlockSize: bs,
	}
	fs.NumNodes = m.Nv
	if degree == 2 {
		fs.NumNodes += len(m.Edges)
	}
	fs.NodeX = make([][2]float64, fs.NumNodes)
	for i := 0; i < m.Nv; i++ {
		fs.NodeX[i] = [2]float64{m.VX[i], m.VY[i]}
	}
	if degree == 2 {
		for e, ev := range m.Edges {
			fs.NodeX[m.Nv+e] = [2]float64{
				0.5 * (m.VX[ev[0]] + m.VX[ev[1]]),
				0.5 * (m.VY[ev[0]] + m.VY[ev[1]]),
			}
		}
	}
	fs.CellNodes = make([][]int, m.K)
	for k := range fs.CellNodes {
		v := m.EToV[k]
		nodes := []int{v[0], v[1], v[2]}
		if degree == 2 {
			for j := 0; j < 3; j++ {
				nodes = append(nodes, m.Nv+m.EToEd[k][j])
			}
		}
		fs.CellNodes[k] = nodes
	}
	return
}

func (fs *FunctionSpace) NumDofs() int { return fs.NumNodes * fs.BlockSize }

func (fs *FunctionSpace) Degree() int { return fs.Element.N }

// Dof returns the global dof of component c at a node
func (fs *FunctionSpace) Dof(node, c int) int { return node*fs.BlockSize + c }

// Function is a discrete field on a space, zero on creation
type Function struct {
	Name   string
	Space  *FunctionSpace
	Values []float64
}

func NewFunction(fs *FunctionSpace, name string) *Function {
	return &Function{
		Name:   name,
		Space:  fs,
		Values: make([]float64, fs.NumDofs()),
	}
}

// Interpolate sets the nodal values from fn(x, y), which returns one value per
// component
func (f *Function) Interpolate(fn func(x, y float64) []float64) {
	fs := f.Space
	for n, x := range fs.NodeX {
		v := fn(x[0], x[1])
		for c := 0; c < fs.BlockSize; c++ {
			f.Values[fs.Dof(n, c)] = v[c]
		}
	}
}

// EvalCell evaluates component c in cell k at reference point (r,s)
func (f *Function) EvalCell(k, c int, r, s float64) (val float64) {
	var (
		fs  = f.Space
		phi = fs.Element.Basis(r, s)
	)
	for i, n := range fs.CellNodes[k] {
		val += phi[i] * f.Values[fs.Dof(n, c)]
	}
	return
}

// VertexValues returns the values at the mesh vertices, point-major
func (f *Function) VertexValues() (vals []float64) {
	var (
		fs = f.Space
		bs = fs.BlockSize
	)
	vals = make([]float64, fs.Mesh.Nv*bs)
	copy(vals, f.Values[:fs.Mesh.Nv*bs])
	return
}

// Assign copies values from a slice of a mixed solution vector
func (f *Function) Assign(x []float64, offset int) (err error) {
	if offset < 0 || offset+len(f.Values) > len(x) {
		err = fmt.Errorf("function %q: %d values at offset %d exceed vector of %d",
			f.Name, len(f.Values), offset, len(x))
		return
	}
	copy(f.Values, x[offset:offset+len(f.Values)])
	return
}
