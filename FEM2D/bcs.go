package FEM2D

import (
	"sort"

	"github.com/notargets/aqueous/utils"
)

// Marker selects nodes by their coordinates
type Marker func(x, y float64) bool

// LocateDofsGeometrical returns the nodes of the space whose coordinates
// satisfy the marker, in ascending order
func LocateDofsGeometrical(fs *FunctionSpace, marker Marker) (nodes []int) {
	for n, x := range fs.NodeX {
		if marker(x[0], x[1]) {
			nodes = append(nodes, n)
		}
	}
	return
}

// LocateBoundaryNodes returns the nodes of the space lying on the given mesh
// edges, which are pairs of vertex indices
func LocateBoundaryNodes(fs *FunctionSpace, edges [][2]int) (nodes []int) {
	var (
		m      = fs.Mesh
		onEdge = make(map[[2]int]bool, len(edges))
		found  = make(map[int]bool)
	)
	for _, e := range edges {
		if e[0] > e[1] {
			e[0], e[1] = e[1], e[0]
		}
		onEdge[e] = true
	}
	for id, e := range m.Edges {
		if !onEdge[e] {
			continue
		}
		found[e[0]], found[e[1]] = true, true
		if fs.Degree() == 2 {
			found[m.Nv+id] = true
		}
	}
	for n := range found {
		nodes = append(nodes, n)
	}
	sort.Ints(nodes)
	return
}

// IsClose is the numpy.isclose test used by geometric markers
func IsClose(a, b float64) bool { return utils.IsClose(a, b) }

// DirichletBC fixes every component of the listed nodes to Value, or to
// ValueAt when set
type DirichletBC struct {
	Name    string
	Space   *FunctionSpace
	Nodes   []int
	Value   []float64
	ValueAt func(x, y float64) []float64
}

func NewDirichletBC(name string, fs *FunctionSpace, nodes []int, value ...float64) *DirichletBC {
	return &DirichletBC{Name: name, Space: fs, Nodes: nodes, Value: value}
}

func (bc *DirichletBC) valueAt(n int) []float64 {
	if bc.ValueAt != nil {
		x := bc.Space.NodeX[n]
		return bc.ValueAt(x[0], x[1])
	}
	return bc.Value
}

// Constraints maps constrained global dofs to their values. Later BCs
// override earlier ones on shared dofs, as when applying them in order.
type Constraints map[int]float64

// Apply adds the dofs of bc, shifted by offset within a mixed vector
func (c Constraints) Apply(bc *DirichletBC, offset int) {
	fs := bc.Space
	for _, n := range bc.Nodes {
		v := bc.valueAt(n)
		for comp := 0; comp < fs.BlockSize; comp++ {
			c[offset+fs.Dof(n, comp)] = v[comp]
		}
	}
}

func (c Constraints) Rows() (rows map[int]bool) {
	rows = make(map[int]bool, len(c))
	for i := range c {
		rows[i] = true
	}
	return
}
