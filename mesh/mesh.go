// Package mesh holds an unstructured mesh as a list of cell blocks, the shape
// in which Gmsh writes and reads elements.
package mesh

import (
	"errors"
	"fmt"
	"sort"
)

type CellType string

const (
	Vertex   CellType = "vertex"
	Line     CellType = "line"
	Triangle CellType = "triangle"
)

// NumNodes returns the number of nodes per cell of the type
func (c CellType) NumNodes() int {
	switch c {
	case Vertex:
		return 1
	case Line:
		return 2
	case Triangle:
		return 3
	default:
		return 0
	}
}

// Dimension returns the topological dimension of the type
func (c CellType) Dimension() int {
	switch c {
	case Line:
		return 1
	case Triangle:
		return 2
	default:
		return 0
	}
}

var (
	ErrDuplicateGroup = errors.New("physical group tag already used in this dimension")
	ErrNoBlock        = errors.New("no cell block of requested type")
)

// CellBlock is a run of cells of one type. PhysicalTags and EntityTags are
// either nil or parallel to Connectivity.
type CellBlock struct {
	Type         CellType
	Connectivity [][]int
	PhysicalTags []int
	EntityTags   []int
}

func (cb *CellBlock) Len() int { return len(cb.Connectivity) }

// Tagged reports whether the block carries physical tags
func (cb *CellBlock) Tagged() bool {
	return len(cb.PhysicalTags) == len(cb.Connectivity) && len(cb.Connectivity) != 0
}

type PhysicalGroup struct {
	Dim  int
	Tag  int
	Name string
}

type Mesh struct {
	Points         [][3]float64
	Cells          []CellBlock
	PhysicalGroups []PhysicalGroup
}

func NewMesh() *Mesh {
	return &Mesh{}
}

func (m *Mesh) AddPoint(x, y, z float64) (index int) {
	index = len(m.Points)
	m.Points = append(m.Points, [3]float64{x, y, z})
	return
}

// AppendCell adds a cell to the trailing block when it has the same type,
// otherwise a new block is opened.
func (m *Mesh) AppendCell(t CellType, conn []int, physical, entity int) {
	var (
		nb = len(m.Cells)
	)
	if nb == 0 || m.Cells[nb-1].Type != t {
		m.Cells = append(m.Cells, CellBlock{Type: t})
		nb++
	}
	cb := &m.Cells[nb-1]
	cc := make([]int, len(conn))
	copy(cc, conn)
	cb.Connectivity = append(cb.Connectivity, cc)
	cb.PhysicalTags = append(cb.PhysicalTags, physical)
	cb.EntityTags = append(cb.EntityTags, entity)
}

// FirstBlock returns the first block of the given type
func (m *Mesh) FirstBlock(t CellType) (cb *CellBlock, err error) {
	for i := range m.Cells {
		if m.Cells[i].Type == t {
			cb = &m.Cells[i]
			return
		}
	}
	err = fmt.Errorf("%w: %s", ErrNoBlock, t)
	return
}

// CountCells returns the number of cells of a type over all blocks
func (m *Mesh) CountCells(t CellType) (n int) {
	for i := range m.Cells {
		if m.Cells[i].Type == t {
			n += m.Cells[i].Len()
		}
	}
	return
}

func (m *Mesh) AddPhysicalGroup(dim, tag int, name string) (err error) {
	if _, found := m.PhysicalGroup(dim, tag); found {
		err = fmt.Errorf("%w: dim = %d, tag = %d", ErrDuplicateGroup, dim, tag)
		return
	}
	m.PhysicalGroups = append(m.PhysicalGroups, PhysicalGroup{Dim: dim, Tag: tag, Name: name})
	return
}

func (m *Mesh) PhysicalGroup(dim, tag int) (pg PhysicalGroup, found bool) {
	for _, g := range m.PhysicalGroups {
		if g.Dim == dim && g.Tag == tag {
			pg, found = g, true
			return
		}
	}
	return
}

// TagCounts returns the number of cells per physical tag for a cell type
func (m *Mesh) TagCounts(t CellType) (counts map[int]int) {
	counts = make(map[int]int)
	for i := range m.Cells {
		cb := &m.Cells[i]
		if cb.Type != t || !cb.Tagged() {
			continue
		}
		for _, tag := range cb.PhysicalTags {
			counts[tag]++
		}
	}
	return
}

// Tags returns the sorted distinct physical tags present for a cell type
func (m *Mesh) Tags(t CellType) (tags []int) {
	for tag := range m.TagCounts(t) {
		tags = append(tags, tag)
	}
	sort.Ints(tags)
	return
}

// Validate checks cell arity and that cells reference existing points
func (m *Mesh) Validate() (err error) {
	var (
		np = len(m.Points)
	)
	for bi := range m.Cells {
		cb := &m.Cells[bi]
		nn := cb.Type.NumNodes()
		if nn == 0 {
			return fmt.Errorf("block %d: unsupported cell type %q", bi, cb.Type)
		}
		if cb.PhysicalTags != nil && len(cb.PhysicalTags) != len(cb.Connectivity) {
			return fmt.Errorf("block %d: %d physical tags for %d cells",
				bi, len(cb.PhysicalTags), len(cb.Connectivity))
		}
		for ci, conn := range cb.Connectivity {
			if len(conn) != nn {
				return fmt.Errorf("block %d cell %d: %d nodes, want %d", bi, ci, len(conn), nn)
			}
			for _, p := range conn {
				if p < 0 || p >= np {
					return fmt.Errorf("block %d cell %d: point index %d out of range [0,%d)",
						bi, ci, p, np)
				}
			}
		}
	}
	return
}

// Bounds returns the bounding box of the points
func (m *Mesh) Bounds() (min, max [3]float64) {
	for i, p := range m.Points {
		for d := 0; d < 3; d++ {
			if i == 0 || p[d] < min[d] {
				min[d] = p[d]
			}
			if i == 0 || p[d] > max[d] {
				max[d] = p[d]
			}
		}
	}
	return
}
