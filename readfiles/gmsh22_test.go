package readfiles

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/aqueous/mesh"
)

var unitSquare22 = `$MeshFormat
2.2 0 8
$EndMeshFormat
$PhysicalNames
3
1 11 "inlet"
1 12 "walls"
2 1 "chamber"
$EndPhysicalNames
$Nodes
5
10 0 0 0
20 1 0 0
30 1 1 0
40 0 1 0
50 0.5 0.5 0
$EndNodes
$NodeData
1
"ignored"
$EndNodeData
$Elements
8
1 15 2 0 1 10
2 1 2 11 1 10 20
3 1 2 12 2 20 30
4 1 2 12 3 30 40
5 2 2 1 1 10 20 50
6 2 2 1 1 20 30 50
7 3 2 1 1 10 20 30 40
8 2 2 1 1 30 40 50
$EndElements
`

func writeFile(t *testing.T, name, content string) string {
	filename := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(filename, []byte(content), 0644))
	return filename
}

func TestReadGmsh22(t *testing.T) {
	msh, err := ReadGmsh(writeFile(t, "square.msh", unitSquare22))
	require.NoError(t, err)
	assert.Len(t, msh.Points, 5)
	assert.Equal(t, [3]float64{0.5, 0.5, 0}, msh.Points[4])
	// Block order follows the file, the quad is skipped
	require.Len(t, msh.Cells, 3)
	assert.Equal(t, mesh.Vertex, msh.Cells[0].Type)
	assert.Equal(t, mesh.Line, msh.Cells[1].Type)
	assert.Equal(t, mesh.Triangle, msh.Cells[2].Type)
	assert.Equal(t, 3, msh.CountCells(mesh.Triangle))
	assert.Equal(t, []int{0, 1, 4}, msh.Cells[2].Connectivity[0])
	assert.Equal(t, map[int]int{11: 1, 12: 2}, msh.TagCounts(mesh.Line))
	assert.Equal(t, []int{1, 2, 3}, msh.Cells[1].EntityTags)
	pg, found := msh.PhysicalGroup(2, 1)
	require.True(t, found)
	assert.Equal(t, "chamber", pg.Name)
}

func TestGmsh22RoundTrip(t *testing.T) {
	msh, err := DecodeGmsh22(strings.NewReader(unitSquare22))
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, EncodeGmsh22(&buf, msh))
	back, err := DecodeGmsh22(&buf)
	require.NoError(t, err)
	assert.Equal(t, msh.Points, back.Points)
	assert.Equal(t, msh.Cells, back.Cells)
	assert.ElementsMatch(t, msh.PhysicalGroups, back.PhysicalGroups)

	filename := filepath.Join(t.TempDir(), "out.msh")
	require.NoError(t, WriteGmsh22(filename, msh))
	fromFile, err := ReadGmsh(filename)
	require.NoError(t, err)
	assert.Equal(t, msh.Cells, fromFile.Cells)

	// Cells referencing missing points are not written
	msh.AppendCell(mesh.Triangle, []int{0, 1, 7}, 1, 1)
	assert.Error(t, EncodeGmsh22(&buf, msh))
}

func TestReadGmshRejects(t *testing.T) {
	_, err := ReadGmsh(writeFile(t, "v4.msh", "$MeshFormat\n4.1 0 8\n$EndMeshFormat\n"))
	assert.ErrorContains(t, err, "unsupported Gmsh format version: 4.1")
	_, err = ReadGmsh(writeFile(t, "binary.msh", "$MeshFormat\n2.2 1 8\n$EndMeshFormat\n"))
	assert.ErrorContains(t, err, "binary")
	_, err = ReadGmsh(writeFile(t, "empty.msh", "nothing here\n"))
	assert.Error(t, err)
	_, err = ReadGmsh(filepath.Join(t.TempDir(), "missing.msh"))
	assert.Error(t, err)
	bad := strings.Replace(unitSquare22, "8 2 2 1 1 30 40 50", "8 2 2 1 1 30 40 60", 1)
	_, err = DecodeGmsh22(strings.NewReader(bad))
	assert.ErrorContains(t, err, "unknown node 60")
}

func TestDecodeGmsh22MalformedIntegers(t *testing.T) {
	for _, tc := range []struct {
		from, to, msg string
	}{
		{"2 1 2 11 1 10 20", "x 1 2 11 1 10 20", "invalid element id"},
		{"5 2 2 1 1 10 20 50", "5 tri 2 1 1 10 20 50", "invalid type"},
		{"6 2 2 1 1 20 30 50", "6 2 two 1 1 20 30 50", "invalid tag count"},
		{"8 2 2 1 1 30 40 50", "8 2 2 chamber 1 30 40 50", "invalid physical tag"},
		{"8 2 2 1 1 30 40 50", "8 2 2 1 e 30 40 50", "invalid entity tag"},
		{"8 2 2 1 1 30 40 50", "8 2 2 1 1 30 40 5O", "invalid node id"},
		{"1 11 \"inlet\"", "one 11 \"inlet\"", "invalid physical dimension"},
		{"1 12 \"walls\"", "1 w \"walls\"", "invalid physical tag"},
	} {
		bad := strings.Replace(unitSquare22, tc.from, tc.to, 1)
		require.NotEqual(t, unitSquare22, bad, tc.from)
		_, err := DecodeGmsh22(strings.NewReader(bad))
		assert.ErrorContainsf(t, err, tc.msg, "replacing %q", tc.from)
	}
}
