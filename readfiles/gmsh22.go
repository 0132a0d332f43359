package readfiles

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/notargets/aqueous/mesh"
)

// Gmsh v2.2 element type numbers handled here. Other types are skipped.
var gmshElementType22 = map[int]mesh.CellType{
	1:  mesh.Line,     // 2-node line
	2:  mesh.Triangle, // 3-node triangle
	15: mesh.Vertex,   // 1-node point
}

var gmshTypeNumber22 = map[mesh.CellType]int{
	mesh.Line:     1,
	mesh.Triangle: 2,
	mesh.Vertex:   15,
}

// ReadGmsh detects the format version and reads the file. Only 2.x files are
// supported.
func ReadGmsh(filename string) (*mesh.Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var version string
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == "$MeshFormat" {
			if scanner.Scan() {
				if parts := strings.Fields(scanner.Text()); len(parts) > 0 {
					version = parts[0]
				}
			}
			break
		}
	}
	switch {
	case version == "":
		return nil, fmt.Errorf("%s: could not find $MeshFormat section", filename)
	case strings.HasPrefix(version, "2."):
		return ReadGmsh22(filename)
	default:
		return nil, fmt.Errorf("%s: unsupported Gmsh format version: %s", filename, version)
	}
}

// ReadGmsh22 reads a Gmsh MSH file format version 2.2 (ASCII)
func ReadGmsh22(filename string) (*mesh.Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	msh, err := DecodeGmsh22(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return msh, nil
}

// DecodeGmsh22 reads MSH 2.2 ASCII content
func DecodeGmsh22(r io.Reader) (*mesh.Mesh, error) {
	var (
		scanner = bufio.NewScanner(r)
		msh     = mesh.NewMesh()
		nodeIdx = make(map[int]int)
	)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "$MeshFormat":
			if err := readMeshFormat22(scanner); err != nil {
				return nil, err
			}

		case "$PhysicalNames":
			if err := readPhysicalNames(scanner, msh); err != nil {
				return nil, err
			}

		case "$Nodes":
			if err := readNodes22(scanner, msh, nodeIdx); err != nil {
				return nil, err
			}

		case "$Elements":
			if err := readElements22(scanner, msh, nodeIdx); err != nil {
				return nil, err
			}

		default:
			// Skip data and other sections
			if strings.HasPrefix(line, "$") && !strings.HasPrefix(line, "$End") {
				endMarker := "$End" + line[1:]
				for scanner.Scan() {
					if strings.TrimSpace(scanner.Text()) == endMarker {
						break
					}
				}
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %w", err)
	}
	return msh, nil
}

func skipTo(scanner *bufio.Scanner, marker string) {
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == marker {
			break
		}
	}
}

func readMeshFormat22(scanner *bufio.Scanner) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in MeshFormat")
	}
	parts := strings.Fields(scanner.Text())
	if len(parts) < 3 {
		return fmt.Errorf("invalid MeshFormat line")
	}
	if !strings.HasPrefix(parts[0], "2.") {
		return fmt.Errorf("unsupported Gmsh format version: %s", parts[0])
	}
	if parts[1] != "0" {
		return fmt.Errorf("binary MSH files are not supported")
	}
	skipTo(scanner, "$EndMeshFormat")
	return nil
}

func readPhysicalNames(scanner *bufio.Scanner, msh *mesh.Mesh) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in PhysicalNames")
	}
	numNames, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return fmt.Errorf("invalid physical name count: %w", err)
	}
	for i := 0; i < numNames; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF reading physical names")
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) < 3 {
			return fmt.Errorf("invalid physical name line: %q", scanner.Text())
		}
		dimension, err := strconv.Atoi(parts[0])
		if err != nil {
			return fmt.Errorf("invalid physical dimension %q: %w", parts[0], err)
		}
		tag, err := strconv.Atoi(parts[1])
		if err != nil {
			return fmt.Errorf("invalid physical tag %q: %w", parts[1], err)
		}
		name := strings.Trim(strings.Join(parts[2:], " "), "\"")
		if err = msh.AddPhysicalGroup(dimension, tag, name); err != nil {
			return err
		}
	}
	skipTo(scanner, "$EndPhysicalNames")
	return nil
}

func readNodes22(scanner *bufio.Scanner, msh *mesh.Mesh, nodeIdx map[int]int) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in Nodes")
	}
	numNodes, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return fmt.Errorf("invalid node count: %w", err)
	}
	msh.Points = make([][3]float64, 0, numNodes)
	for i := 0; i < numNodes; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF reading nodes")
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) < 4 {
			return fmt.Errorf("invalid node line: %s", scanner.Text())
		}
		nodeID, err := strconv.Atoi(parts[0])
		if err != nil {
			return fmt.Errorf("invalid node id %q: %w", parts[0], err)
		}
		var xyz [3]float64
		for d := 0; d < 3; d++ {
			if xyz[d], err = strconv.ParseFloat(parts[1+d], 64); err != nil {
				return fmt.Errorf("node %d: %w", nodeID, err)
			}
		}
		nodeIdx[nodeID] = msh.AddPoint(xyz[0], xyz[1], xyz[2])
	}
	skipTo(scanner, "$EndNodes")
	return nil
}

func readElements22(scanner *bufio.Scanner, msh *mesh.Mesh, nodeIdx map[int]int) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in Elements")
	}
	numElements, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return fmt.Errorf("invalid element count: %w", err)
	}
	for i := 0; i < numElements; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF reading elements")
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) < 4 {
			return fmt.Errorf("invalid element line: %q", scanner.Text())
		}
		var elemID, elemType, numTags int
		if elemID, err = strconv.Atoi(parts[0]); err != nil {
			return fmt.Errorf("invalid element id %q: %w", parts[0], err)
		}
		if elemType, err = strconv.Atoi(parts[1]); err != nil {
			return fmt.Errorf("element %d: invalid type %q: %w", elemID, parts[1], err)
		}
		if numTags, err = strconv.Atoi(parts[2]); err != nil {
			return fmt.Errorf("element %d: invalid tag count %q: %w", elemID, parts[2], err)
		}
		if numTags < 0 || len(parts) < 3+numTags {
			return fmt.Errorf("element %d: invalid element tags", elemID)
		}
		// First tag is the physical group, second the elementary entity
		var physical, entity int
		if numTags > 0 {
			if physical, err = strconv.Atoi(parts[3]); err != nil {
				return fmt.Errorf("element %d: invalid physical tag %q: %w", elemID, parts[3], err)
			}
		}
		if numTags > 1 {
			if entity, err = strconv.Atoi(parts[4]); err != nil {
				return fmt.Errorf("element %d: invalid entity tag %q: %w", elemID, parts[4], err)
			}
		}

		ctype, ok := gmshElementType22[elemType]
		if !ok {
			continue
		}
		expectedNodes := ctype.NumNodes()
		nodeStart := 3 + numTags
		if len(parts) < nodeStart+expectedNodes {
			return fmt.Errorf("element %d: expected %d nodes, got %d",
				elemID, expectedNodes, len(parts)-nodeStart)
		}
		conn := make([]int, expectedNodes)
		for j := 0; j < expectedNodes; j++ {
			nodeID, err := strconv.Atoi(parts[nodeStart+j])
			if err != nil {
				return fmt.Errorf("element %d: invalid node id %q: %w", elemID, parts[nodeStart+j], err)
			}
			idx, found := nodeIdx[nodeID]
			if !found {
				return fmt.Errorf("element %d references unknown node %d", elemID, nodeID)
			}
			conn[j] = idx
		}
		msh.AppendCell(ctype, conn, physical, entity)
	}
	skipTo(scanner, "$EndElements")
	return nil
}

// WriteGmsh22 writes the mesh as a Gmsh 2.2 ASCII file, overwriting it
func WriteGmsh22(filename string, msh *mesh.Mesh) (err error) {
	var (
		file *os.File
	)
	if file, err = os.Create(filename); err != nil {
		return
	}
	w := bufio.NewWriter(file)
	if err = EncodeGmsh22(w, msh); err != nil {
		file.Close()
		return
	}
	if err = w.Flush(); err != nil {
		file.Close()
		return
	}
	return file.Close()
}

// EncodeGmsh22 writes MSH 2.2 ASCII content. Node and element ids start at 1.
func EncodeGmsh22(w io.Writer, msh *mesh.Mesh) (err error) {
	if err = msh.Validate(); err != nil {
		return
	}
	fmt.Fprintf(w, "$MeshFormat\n2.2 0 8\n$EndMeshFormat\n")
	if len(msh.PhysicalGroups) != 0 {
		groups := make([]mesh.PhysicalGroup, len(msh.PhysicalGroups))
		copy(groups, msh.PhysicalGroups)
		sort.Slice(groups, func(i, j int) bool {
			if groups[i].Dim != groups[j].Dim {
				return groups[i].Dim < groups[j].Dim
			}
			return groups[i].Tag < groups[j].Tag
		})
		fmt.Fprintf(w, "$PhysicalNames\n%d\n", len(groups))
		for _, g := range groups {
			fmt.Fprintf(w, "%d %d \"%s\"\n", g.Dim, g.Tag, g.Name)
		}
		fmt.Fprintf(w, "$EndPhysicalNames\n")
	}
	fmt.Fprintf(w, "$Nodes\n%d\n", len(msh.Points))
	for i, p := range msh.Points {
		fmt.Fprintf(w, "%d %s %s %s\n", i+1, formatFloat(p[0]), formatFloat(p[1]), formatFloat(p[2]))
	}
	fmt.Fprintf(w, "$EndNodes\n")

	var total int
	for bi := range msh.Cells {
		total += msh.Cells[bi].Len()
	}
	fmt.Fprintf(w, "$Elements\n%d\n", total)
	id := 1
	for bi := range msh.Cells {
		cb := &msh.Cells[bi]
		typeNum := gmshTypeNumber22[cb.Type]
		for ci, conn := range cb.Connectivity {
			var physical, entity int
			if cb.PhysicalTags != nil {
				physical = cb.PhysicalTags[ci]
			}
			if cb.EntityTags != nil {
				entity = cb.EntityTags[ci]
			}
			var sb strings.Builder
			fmt.Fprintf(&sb, "%d %d 2 %d %d", id, typeNum, physical, entity)
			for _, n := range conn {
				fmt.Fprintf(&sb, " %d", n+1)
			}
			sb.WriteByte('\n')
			if _, err = io.WriteString(w, sb.String()); err != nil {
				return
			}
			id++
		}
	}
	_, err = fmt.Fprintf(w, "$EndElements\n")
	return
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
