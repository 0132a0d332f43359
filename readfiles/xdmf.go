package readfiles

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/notargets/aqueous/mesh"
)

const (
	GridName      = "Grid"
	facetGridName = "_facets"
)

// XDMFMesh is the interchange mesh: triangles, lines and points. Physical
// tags are not carried.
type XDMFMesh struct {
	Points    [][3]float64
	Triangles [][]int
	Lines     [][]int
}

// NodalField holds point-major values, Components per point
type NodalField struct {
	Name       string
	Components int
	Values     []float64
}

type xdmfFile struct {
	XMLName xml.Name   `xml:"Xdmf"`
	Version string     `xml:"Version,attr"`
	Domain  xdmfDomain `xml:"Domain"`
}

type xdmfDomain struct {
	Grids []xdmfGrid `xml:"Grid"`
}

type xdmfGrid struct {
	Name       string          `xml:"Name,attr"`
	GridType   string          `xml:"GridType,attr"`
	Topology   xdmfTopology    `xml:"Topology"`
	Geometry   xdmfGeometry    `xml:"Geometry"`
	Attributes []xdmfAttribute `xml:"Attribute"`
}

type xdmfTopology struct {
	TopologyType     string       `xml:"TopologyType,attr"`
	NumberOfElements int          `xml:"NumberOfElements,attr"`
	NodesPerElement  int          `xml:"NodesPerElement,attr,omitempty"`
	Data             xdmfDataItem `xml:"DataItem"`
}

type xdmfGeometry struct {
	GeometryType string       `xml:"GeometryType,attr"`
	Data         xdmfDataItem `xml:"DataItem"`
}

type xdmfAttribute struct {
	Name          string       `xml:"Name,attr"`
	AttributeType string       `xml:"AttributeType,attr"`
	Center        string       `xml:"Center,attr"`
	Data          xdmfDataItem `xml:"DataItem"`
}

type xdmfDataItem struct {
	Dimensions string `xml:"Dimensions,attr"`
	NumberType string `xml:"NumberType,attr"`
	Precision  string `xml:"Precision,attr,omitempty"`
	Format     string `xml:"Format,attr"`
	Text       string `xml:",chardata"`
}

// ConvertToXDMF writes the first triangle block and the first line block of
// a mesh, with all of its points, as an XDMF mesh.
func ConvertToXDMF(msh *mesh.Mesh, filename string) (xm *XDMFMesh, err error) {
	var (
		tris, lines *mesh.CellBlock
	)
	if tris, err = msh.FirstBlock(mesh.Triangle); err != nil {
		return
	}
	if lines, err = msh.FirstBlock(mesh.Line); err != nil {
		return
	}
	xm = &XDMFMesh{
		Points:    msh.Points,
		Triangles: tris.Connectivity,
		Lines:     lines.Connectivity,
	}
	err = WriteXDMFMesh(filename, xm)
	return
}

func WriteXDMFMesh(filename string, xm *XDMFMesh) error {
	return WriteXDMFResults(filename, xm)
}

// WriteXDMFResults writes the mesh and nodal fields, overwriting the file
func WriteXDMFResults(filename string, xm *XDMFMesh, fields ...NodalField) (err error) {
	var (
		file *os.File
	)
	if file, err = os.Create(filename); err != nil {
		return
	}
	w := bufio.NewWriter(file)
	if err = EncodeXDMF(w, xm, fields...); err != nil {
		file.Close()
		return
	}
	if err = w.Flush(); err != nil {
		file.Close()
		return
	}
	return file.Close()
}

func EncodeXDMF(w io.Writer, xm *XDMFMesh, fields ...NodalField) (err error) {
	var (
		np = len(xm.Points)
	)
	geom := xdmfGeometry{
		GeometryType: "XYZ",
		Data: xdmfDataItem{
			Dimensions: fmt.Sprintf("%d 3", np),
			NumberType: "Float", Precision: "8", Format: "XML",
			Text: pointText(xm.Points),
		},
	}
	grid := xdmfGrid{
		Name:     GridName,
		GridType: "Uniform",
		Topology: cellTopology("Triangle", xm.Triangles, 3),
		Geometry: geom,
	}
	for _, f := range fields {
		if f.Components <= 0 || len(f.Values) != np*f.Components {
			err = fmt.Errorf("field %q: %d values for %d points x %d components",
				f.Name, len(f.Values), np, f.Components)
			return
		}
		grid.Attributes = append(grid.Attributes, fieldAttribute(f, np))
	}
	doc := xdmfFile{Version: "3.0"}
	doc.Domain.Grids = append(doc.Domain.Grids, grid)
	if len(xm.Lines) != 0 {
		doc.Domain.Grids = append(doc.Domain.Grids, xdmfGrid{
			Name:     GridName + facetGridName,
			GridType: "Uniform",
			Topology: cellTopology("Polyline", xm.Lines, 2),
			Geometry: geom,
		})
	}
	if _, err = io.WriteString(w, xml.Header); err != nil {
		return
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err = enc.Encode(doc); err != nil {
		return
	}
	_, err = io.WriteString(w, "\n")
	return
}

func cellTopology(ttype string, cells [][]int, nodesPer int) xdmfTopology {
	var sb strings.Builder
	sb.WriteByte('\n')
	for _, c := range cells {
		for j, n := range c {
			if j > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(strconv.Itoa(n))
		}
		sb.WriteByte('\n')
	}
	return xdmfTopology{
		TopologyType:     ttype,
		NumberOfElements: len(cells),
		NodesPerElement:  nodesPer,
		Data: xdmfDataItem{
			Dimensions: fmt.Sprintf("%d %d", len(cells), nodesPer),
			NumberType: "Int", Format: "XML",
			Text: sb.String(),
		},
	}
}

func pointText(pts [][3]float64) string {
	var sb strings.Builder
	sb.WriteByte('\n')
	for _, p := range pts {
		fmt.Fprintf(&sb, "%s %s %s\n", formatFloat(p[0]), formatFloat(p[1]), formatFloat(p[2]))
	}
	return sb.String()
}

// Vector fields are padded to three components
func fieldAttribute(f NodalField, np int) xdmfAttribute {
	var (
		sb    strings.Builder
		ncomp = f.Components
		atype = "Scalar"
	)
	if ncomp > 1 {
		atype = "Vector"
		ncomp = 3
	}
	sb.WriteByte('\n')
	for i := 0; i < np; i++ {
		for c := 0; c < ncomp; c++ {
			if c > 0 {
				sb.WriteByte(' ')
			}
			val := 0.
			if c < f.Components {
				val = f.Values[i*f.Components+c]
			}
			sb.WriteString(formatFloat(val))
		}
		sb.WriteByte('\n')
	}
	return xdmfAttribute{
		Name:          f.Name,
		AttributeType: atype,
		Center:        "Node",
		Data: xdmfDataItem{
			Dimensions: fmt.Sprintf("%d %d", np, ncomp),
			NumberType: "Float", Precision: "8", Format: "XML",
			Text: sb.String(),
		},
	}
}

func decodeXDMF(filename string) (doc *xdmfFile, err error) {
	var (
		file *os.File
	)
	if file, err = os.Open(filename); err != nil {
		return
	}
	defer file.Close()
	doc = &xdmfFile{}
	if err = xml.NewDecoder(bufio.NewReader(file)).Decode(doc); err != nil {
		err = fmt.Errorf("%s: %w", filename, err)
	}
	return
}

func (doc *xdmfFile) grid(name string) (g *xdmfGrid, found bool) {
	for i := range doc.Domain.Grids {
		if doc.Domain.Grids[i].Name == name {
			return &doc.Domain.Grids[i], true
		}
	}
	return
}

// ReadXDMFMesh reads the named triangle grid and, when present, its facet grid
func ReadXDMFMesh(filename, gridName string) (xm *XDMFMesh, err error) {
	var (
		doc *xdmfFile
	)
	if doc, err = decodeXDMF(filename); err != nil {
		return
	}
	g, found := doc.grid(gridName)
	if !found {
		err = fmt.Errorf("%s: no grid named %q", filename, gridName)
		return
	}
	xm = &XDMFMesh{}
	if xm.Points, err = parsePoints(g.Geometry.Data); err != nil {
		return
	}
	if xm.Triangles, err = parseCells(g.Topology.Data, 3); err != nil {
		return
	}
	if fg, ok := doc.grid(gridName + facetGridName); ok {
		if xm.Lines, err = parseCells(fg.Topology.Data, 2); err != nil {
			return
		}
	}
	for _, c := range xm.Triangles {
		for _, n := range c {
			if n < 0 || n >= len(xm.Points) {
				err = fmt.Errorf("%s: triangle references point %d of %d", filename, n, len(xm.Points))
				return
			}
		}
	}
	return
}

// ReadXDMFFields returns the nodal attributes of the named grid
func ReadXDMFFields(filename, gridName string) (fields map[string]NodalField, err error) {
	var (
		doc *xdmfFile
	)
	if doc, err = decodeXDMF(filename); err != nil {
		return
	}
	g, found := doc.grid(gridName)
	if !found {
		err = fmt.Errorf("%s: no grid named %q", filename, gridName)
		return
	}
	fields = make(map[string]NodalField)
	for _, a := range g.Attributes {
		var (
			nr, nc int
			vals   []float64
		)
		if nr, nc, err = parseDims(a.Data.Dimensions); err != nil {
			return
		}
		if vals, err = parseFloats(a.Data.Text, nr*nc); err != nil {
			err = fmt.Errorf("attribute %q: %w", a.Name, err)
			return
		}
		fields[a.Name] = NodalField{Name: a.Name, Components: nc, Values: vals}
	}
	return
}

func parseDims(dims string) (nr, nc int, err error) {
	parts := strings.Fields(dims)
	switch len(parts) {
	case 1:
		nc = 1
		nr, err = strconv.Atoi(parts[0])
	case 2:
		if nr, err = strconv.Atoi(parts[0]); err != nil {
			return
		}
		nc, err = strconv.Atoi(parts[1])
	default:
		err = fmt.Errorf("invalid Dimensions %q", dims)
	}
	return
}

func parseFloats(text string, n int) (vals []float64, err error) {
	fields := strings.Fields(text)
	if len(fields) != n {
		err = fmt.Errorf("expected %d values, found %d", n, len(fields))
		return
	}
	vals = make([]float64, n)
	for i, f := range fields {
		if vals[i], err = strconv.ParseFloat(f, 64); err != nil {
			return
		}
	}
	return
}

func parsePoints(di xdmfDataItem) (pts [][3]float64, err error) {
	var (
		nr, nc int
		vals   []float64
	)
	if nr, nc, err = parseDims(di.Dimensions); err != nil {
		return
	}
	if nc != 2 && nc != 3 {
		err = fmt.Errorf("geometry with %d coordinates per point", nc)
		return
	}
	if vals, err = parseFloats(di.Text, nr*nc); err != nil {
		return
	}
	pts = make([][3]float64, nr)
	for i := range pts {
		for d := 0; d < nc; d++ {
			pts[i][d] = vals[i*nc+d]
		}
	}
	return
}

func parseCells(di xdmfDataItem, nodesPer int) (cells [][]int, err error) {
	var (
		nr, nc int
	)
	if nr, nc, err = parseDims(di.Dimensions); err != nil {
		return
	}
	if nc != nodesPer {
		err = fmt.Errorf("topology with %d nodes per cell, want %d", nc, nodesPer)
		return
	}
	fields := strings.Fields(di.Text)
	if len(fields) != nr*nc {
		err = fmt.Errorf("expected %d connectivity entries, found %d", nr*nc, len(fields))
		return
	}
	cells = make([][]int, nr)
	for i := range cells {
		cells[i] = make([]int, nc)
		for j := 0; j < nc; j++ {
			if cells[i][j], err = strconv.Atoi(fields[i*nc+j]); err != nil {
				return
			}
		}
	}
	return
}
