package geometry2D

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/aqueous/InputParameters"
	"github.com/notargets/aqueous/mesh"
)

func coarseParameters() *InputParameters.MeshParameters {
	mp := InputParameters.NewInputParameters().Mesh
	mp.MeshSize = 6.e-4
	mp.FineMeshSize = 1.2e-4
	return &mp
}

func triangleArea(msh *mesh.Mesh, conn []int) float64 {
	p0, p1, p2 := msh.Points[conn[0]], msh.Points[conn[1]], msh.Points[conn[2]]
	return 0.5 * ((p1[0]-p0[0])*(p2[1]-p0[1]) - (p2[0]-p0[0])*(p1[1]-p0[1]))
}

func TestPolygonMoments(t *testing.T) {
	square := []Point{{[2]float64{0, 0}}, {[2]float64{2, 0}}, {[2]float64{2, 2}}, {[2]float64{0, 2}}}
	area, cx, cy := polygonMoments(square)
	assert.InDelta(t, 4., area, 1.e-12)
	assert.InDelta(t, 1., cx, 1.e-12)
	assert.InDelta(t, 1., cy, 1.e-12)
	// Clockwise gives the same unsigned area and centroid
	cw := []Point{square[0], square[3], square[2], square[1]}
	area, cx, cy = polygonMoments(cw)
	assert.InDelta(t, 4., area, 1.e-12)
	assert.InDelta(t, 1., cx, 1.e-12)
	assert.InDelta(t, 1., cy, 1.e-12)

	assert.True(t, PointInPolygon(Point{[2]float64{1, 1}}, square))
	assert.False(t, PointInPolygon(Point{[2]float64{3, 1}}, square))
	assert.InDelta(t, 1., SegmentDistance(Point{[2]float64{1, 1}}, square[0], square[1]), 1.e-12)
	assert.InDelta(t, math.Sqrt2, SegmentDistance(Point{[2]float64{3, 3}}, square[1], square[2]), 1.e-12)
}

func TestFragmentRectangle(t *testing.T) {
	b := NewBuilder("test", 0.25, nil)
	outer := b.AddRectangle(0, 0, 4, 2)
	inner := b.AddRectangle(1, 0.5, 1, 0.5)
	result := b.Fragment(outer, inner)
	assert.Equal(t, []int{outer, inner}, result)
	assert.InDelta(t, 7.5, b.Area(outer), 1.e-12)
	assert.InDelta(t, 0.5, b.Area(inner), 1.e-12)
	c := b.CenterOfMass(inner)
	assert.InDelta(t, 1.5, c.X[0], 1.e-12)
	assert.InDelta(t, 0.75, c.X[1], 1.e-12)
	assert.False(t, b.Contains(outer, Point{[2]float64{1.5, 0.75}}))
	assert.True(t, b.Contains(inner, Point{[2]float64{1.5, 0.75}}))

	// A tool outside the object is left alone
	other := b.AddRectangle(10, 10, 1, 1)
	b.Fragment(outer, other)
	assert.Len(t, b.Surface(outer).Holes, 1)
}

func TestCurveLoopValidation(t *testing.T) {
	b := NewBuilder("test", 1, nil)
	p1 := b.AddPoint(0, 0)
	p2 := b.AddPoint(1, 0)
	p3 := b.AddPoint(0, 1)
	l1 := b.AddLine(p1, p2)
	l2 := b.AddLine(p2, p3)
	_, err := b.AddCurveLoop([]int{l1, l2})
	assert.Error(t, err)
	// Reversed member curves are accepted
	l3 := b.AddLine(p1, p3)
	_, err = b.AddCurveLoop([]int{l1, l2, l3})
	assert.NoError(t, err)
}

func TestSplineEndpoints(t *testing.T) {
	b := NewBuilder("test", 0.1, nil)
	p1 := b.AddPoint(0, 0)
	p2 := b.AddPoint(1, -0.2)
	p3 := b.AddPoint(2, 0)
	s := b.AddSpline([]int{p1, p2, p3})
	pl := b.CurvePolyline(s)
	require.GreaterOrEqual(t, len(pl), 25)
	assert.Equal(t, b.Point(p1), pl[0])
	assert.Equal(t, b.Point(p3), pl[len(pl)-1])
	// The spline passes through its interior control point
	var found bool
	for _, p := range pl {
		if p.Dist(b.Point(p2)) < 1.e-12 {
			found = true
		}
	}
	assert.True(t, found)
}

func TestAnteriorSegmentGeometry(t *testing.T) {
	mp := InputParameters.NewInputParameters().Mesh
	as, err := NewAnteriorSegment(&mp, nil)
	require.NoError(t, err)
	assert.InDelta(t, 5.e-8, as.Area(as.TM), 1.e-18)
	com := as.CenterOfMass(as.TM)
	assert.InDelta(t, 6.1e-3+0.125e-3, com.X[0], 1.e-12)
	assert.InDelta(t, 0.15e-3, com.X[1], 1.e-12)
	assert.True(t, IsTMSurface(com, as.TMX0, mp.TMThickness+mp.ClassifyMargin))
	assert.False(t, IsTMSurface(as.CenterOfMass(as.Chamber), as.TMX0, mp.TMThickness+mp.ClassifyMargin))

	inlet := as.CurvePolyline(as.Inlet)
	assert.InDelta(t, 5.9e-3, inlet[0].X[0], 1.e-15)
	assert.InDelta(t, 5.8e-3, inlet[len(inlet)-1].X[0], 1.e-15)
	assert.InDelta(t, 2.6e-3, inlet[0].X[1], 1.e-15)

	bad := mp
	bad.Gap = 1.e-2
	_, err = NewAnteriorSegment(&bad, nil)
	assert.Error(t, err)
}

func TestBuildAnteriorSegment(t *testing.T) {
	mp := coarseParameters()
	msh, err := BuildAnteriorSegment(mp, nil)
	require.NoError(t, err)
	require.NoError(t, msh.Validate())

	assert.Equal(t, []int{ChamberTag, TMTag}, msh.Tags(mesh.Triangle))
	assert.Equal(t, []int{InletTag, WallTag}, msh.Tags(mesh.Line))
	for _, tag := range []int{ChamberTag, TMTag} {
		_, found := msh.PhysicalGroup(2, tag)
		assert.True(t, found)
	}

	// Lines come before triangles, one block each
	require.Len(t, msh.Cells, 2)
	assert.Equal(t, mesh.Line, msh.Cells[0].Type)
	assert.Equal(t, mesh.Triangle, msh.Cells[1].Type)

	tris := &msh.Cells[1]
	var tmArea, total float64
	for i, conn := range tris.Connectivity {
		a := triangleArea(msh, conn)
		require.Greater(t, a, 0.)
		total += a
		if tris.PhysicalTags[i] == TMTag {
			tmArea += a
		}
	}
	assert.InDelta(t, 5.e-8, tmArea, 1.e-15)

	as, err := NewAnteriorSegment(mp, nil)
	require.NoError(t, err)
	assert.InDelta(t, as.Area(as.Chamber)+as.Area(as.TM), total, 1.e-12)

	// Every point is used by a triangle
	used := make([]bool, len(msh.Points))
	for _, conn := range tris.Connectivity {
		for _, n := range conn {
			used[n] = true
		}
	}
	for i, u := range used {
		assert.Truef(t, u, "point %d unused", i)
	}

	// Inlet lines all lie on the lens line between the aperture ends
	lines := &msh.Cells[0]
	for i, conn := range lines.Connectivity {
		if lines.PhysicalTags[i] != InletTag {
			continue
		}
		for _, n := range conn {
			p := msh.Points[n]
			assert.InDelta(t, 2.6e-3, p[1], 1.e-15)
			assert.True(t, p[0] >= 5.8e-3-1.e-15 && p[0] <= 5.9e-3+1.e-15)
		}
	}
}

func TestTriangleCDTWithoutHoles(t *testing.T) {
	pslg := &PSLG{
		Points:   [][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0.5, 0.5}},
		Segments: [][2]int32{{0, 1}, {1, 2}, {2, 3}, {3, 0}},
	}
	holes := holesOrOutside(pslg)
	require.Len(t, holes, 1)
	assert.Greater(t, holes[0][0], 1.)
	assert.Greater(t, holes[0][1], 1.)

	verts, tris, err := TriangleCDT(pslg)
	require.NoError(t, err)
	assert.Len(t, verts, 5)
	assert.Len(t, tris, 4)
	assert.Empty(t, pslg.Holes)

	_, _, err = TriangleCDT(&PSLG{Points: [][2]float64{{0, 0}, {1, 0}}})
	assert.Error(t, err)
}
