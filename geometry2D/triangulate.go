package geometry2D

import (
	"fmt"
	"math"
	"sort"

	"github.com/pradeep-pyro/triangle"
	log "github.com/sirupsen/logrus"

	"github.com/notargets/aqueous/mesh"
)

// PSLG is the planar straight line graph handed to the triangulator.
// SegmentCurve holds the curve tag each segment was sampled from.
type PSLG struct {
	Points       [][2]float64
	Segments     [][2]int32
	SegmentCurve []int
	Holes        [][2]float64
}

// Triangulator produces a constrained triangulation of a PSLG. Vertices of
// the input keep their index in the output.
type Triangulator func(pslg *PSLG) (verts [][2]float64, tris [][3]int32, err error)

// TriangleCDT is the constrained Delaunay triangulation of the Triangle
// library. Triangles outside the segment bounded region are removed by it.
func TriangleCDT(pslg *PSLG) (verts [][2]float64, tris [][3]int32, err error) {
	if len(pslg.Points) < 3 {
		err = fmt.Errorf("cannot triangulate %d points", len(pslg.Points))
		return
	}
	verts, tris = triangle.ConstrainedDelaunay(pslg.Points, pslg.Segments, holesOrOutside(pslg))
	if len(tris) == 0 {
		err = fmt.Errorf("triangulation of %d points and %d segments produced no triangles",
			len(pslg.Points), len(pslg.Segments))
	}
	return
}

// holesOrOutside returns the PSLG holes, or a single point well outside the
// bounding box when there are none. Triangle needs at least one hole point.
func holesOrOutside(pslg *PSLG) [][2]float64 {
	if len(pslg.Holes) != 0 {
		return pslg.Holes
	}
	xmin, ymin := pslg.Points[0][0], pslg.Points[0][1]
	xmax, ymax := xmin, ymin
	for _, p := range pslg.Points[1:] {
		xmin, xmax = math.Min(xmin, p[0]), math.Max(xmax, p[0])
		ymin, ymax = math.Min(ymin, p[1]), math.Max(ymax, p[1])
	}
	ext := math.Max(xmax-xmin, ymax-ymin)
	if ext == 0 {
		ext = 1
	}
	return [][2]float64{{xmax + 10*ext, ymax + 10*ext}}
}

// BuildPSLG samples every curve used by a surface once, so curves shared by
// two surfaces give one set of segments, and seeds interior points on a
// hexagonal lattice at the surface or size box spacing.
func (b *Builder) BuildPSLG() (pslg *PSLG) {
	var (
		pointIndex = make(map[int]int32) // builder point tag -> PSLG index
		used       = make(map[int]bool)
		curves     []int
	)
	pslg = &PSLG{}
	addPoint := func(p Point) int32 {
		pslg.Points = append(pslg.Points, p.X)
		return int32(len(pslg.Points) - 1)
	}
	for _, s := range b.surfaces {
		loops := append([]int{s.Outer}, s.Holes...)
		for _, l := range loops {
			for _, c := range b.loops[l-1] {
				if !used[c] {
					used[c] = true
					curves = append(curves, c)
				}
			}
		}
	}
	sort.Ints(curves)
	for _, ct := range curves {
		var (
			c      = b.Curve(ct)
			pl     = b.CurvePolyline(ct)
			n      = len(pl)
			first  = c.Points[0]
			last   = c.Points[len(c.Points)-1]
			prev   int32
			exists bool
		)
		if prev, exists = pointIndex[first]; !exists {
			prev = addPoint(b.Point(first))
			pointIndex[first] = prev
		}
		for i := 1; i < n; i++ {
			var cur int32
			if i == n-1 {
				if cur, exists = pointIndex[last]; !exists {
					cur = addPoint(b.Point(last))
					pointIndex[last] = cur
				}
			} else {
				cur = addPoint(pl[i])
			}
			pslg.Segments = append(pslg.Segments, [2]int32{prev, cur})
			pslg.SegmentCurve = append(pslg.SegmentCurve, ct)
			prev = cur
		}
	}
	b.seedInterior(pslg)
	return
}

func (b *Builder) localSize(p Point, surfaceSize float64) (size float64) {
	size = surfaceSize
	for _, bx := range b.boxes {
		if bx.contains(p, 0) && bx.size < size {
			size = bx.size
		}
	}
	return
}

func (bx sizeBox) contains(p Point, margin float64) bool {
	return p.X[0] >= bx.xmin-margin && p.X[0] <= bx.xmax+margin &&
		p.X[1] >= bx.ymin-margin && p.X[1] <= bx.ymax+margin
}

func hexLattice(xmin, xmax, ymin, ymax, h float64, fn func(p Point)) {
	var (
		dy  = h * math.Sqrt(3) / 2
		row int
	)
	for y := ymin + dy/2; y < ymax; y += dy {
		offset := 0.
		if row%2 == 1 {
			offset = h / 2
		}
		for x := xmin + h/2 + offset; x < xmax; x += h {
			fn(Point{[2]float64{x, y}})
		}
		row++
	}
}

func (b *Builder) seedInterior(pslg *PSLG) {
	var (
		candidates []Point
		sizes      []float64
	)
	for _, s := range b.surfaces {
		var (
			sid   = s.Tag
			ssize = s.Size
			poly  = b.LoopPolygon(s.Outer)
		)
		if ssize <= 0 {
			ssize = b.DefaultSize
		}
		xmin, xmax, ymin, ymax := polygonBounds(poly)
		hexLattice(xmin, xmax, ymin, ymax, ssize, func(p Point) {
			for _, bx := range b.boxes {
				if bx.size < ssize && bx.contains(p, 0.5*ssize) {
					return
				}
			}
			if b.Contains(sid, p) {
				candidates = append(candidates, p)
				sizes = append(sizes, ssize)
			}
		})
		for _, bx := range b.boxes {
			if bx.size >= ssize {
				continue
			}
			hexLattice(bx.xmin, bx.xmax, bx.ymin, bx.ymax, bx.size, func(p Point) {
				if b.Contains(sid, p) {
					candidates = append(candidates, p)
					sizes = append(sizes, bx.size)
				}
			})
		}
	}
	for i, p := range candidates {
		h := b.localSize(p, sizes[i])
		keep := true
		for _, seg := range pslg.Segments {
			a := Point{pslg.Points[seg[0]]}
			c := Point{pslg.Points[seg[1]]}
			if SegmentDistance(p, a, c) < 0.5*h {
				keep = false
				break
			}
		}
		if keep {
			pslg.Points = append(pslg.Points, p.X)
		}
	}
}

func polygonBounds(poly []Point) (xmin, xmax, ymin, ymax float64) {
	for i, p := range poly {
		if i == 0 || p.X[0] < xmin {
			xmin = p.X[0]
		}
		if i == 0 || p.X[0] > xmax {
			xmax = p.X[0]
		}
		if i == 0 || p.X[1] < ymin {
			ymin = p.X[1]
		}
		if i == 0 || p.X[1] > ymax {
			ymax = p.X[1]
		}
	}
	return
}

type edgeKey [2]int32

func newEdgeKey(a, b int32) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// Generate triangulates the geometry and returns a mesh with triangles tagged
// by the physical group of the surface containing their centroid, and
// boundary lines tagged by the physical group of the curve they lie on.
// Points not used by any triangle are dropped.
func (b *Builder) Generate(tri Triangulator) (msh *mesh.Mesh, err error) {
	var (
		pslg  = b.BuildPSLG()
		verts [][2]float64
		tris  [][3]int32
	)
	if tri == nil {
		tri = TriangleCDT
	}
	if verts, tris, err = tri(pslg); err != nil {
		return
	}
	var (
		segCurve   = make(map[edgeKey]int, len(pslg.Segments))
		edgeCount  = make(map[edgeKey]int)
		keptTris   [][3]int32
		triSurface []int
	)
	for i, s := range pslg.Segments {
		segCurve[newEdgeKey(s[0], s[1])] = pslg.SegmentCurve[i]
	}
	for _, t := range tris {
		p0, p1, p2 := Point{verts[t[0]]}, Point{verts[t[1]]}, Point{verts[t[2]]}
		det := (p1.X[0]-p0.X[0])*(p2.X[1]-p0.X[1]) - (p2.X[0]-p0.X[0])*(p1.X[1]-p0.X[1])
		if det == 0 {
			continue
		}
		if det < 0 {
			t[1], t[2] = t[2], t[1]
		}
		centroid := Point{[2]float64{
			(p0.X[0] + p1.X[0] + p2.X[0]) / 3,
			(p0.X[1] + p1.X[1] + p2.X[1]) / 3,
		}}
		sid := 0
		for _, s := range b.surfaces {
			if b.Contains(s.Tag, centroid) {
				sid = s.Tag
			}
		}
		if sid == 0 {
			continue
		}
		keptTris = append(keptTris, t)
		triSurface = append(triSurface, sid)
		for k := 0; k < 3; k++ {
			edgeCount[newEdgeKey(t[k], t[(k+1)%3])]++
		}
	}
	if len(keptTris) == 0 {
		err = fmt.Errorf("no triangles lie inside the geometry surfaces")
		return
	}

	msh = mesh.NewMesh()
	remap := make(map[int32]int)
	vertex := func(v int32) int {
		if idx, ok := remap[v]; ok {
			return idx
		}
		idx := msh.AddPoint(verts[v][0], verts[v][1], 0)
		remap[v] = idx
		return idx
	}

	// Boundary lines, in segment order so each curve stays contiguous
	var (
		boundary []edgeKey
		lineTag  []int
		lineEnt  []int
	)
	for i, s := range pslg.Segments {
		k := newEdgeKey(s[0], s[1])
		if edgeCount[k] != 1 {
			continue
		}
		ct := pslg.SegmentCurve[i]
		pt := b.physicalTag(1, ct)
		if pt == 0 {
			continue
		}
		boundary = append(boundary, edgeKey{s[0], s[1]})
		lineTag = append(lineTag, pt)
		lineEnt = append(lineEnt, ct)
	}
	if nUnmatched := b.countUnmatchedBoundary(edgeCount, segCurve); nUnmatched > 0 {
		b.logger.WithField("edges", nUnmatched).
			Warn("boundary edges not on any input segment were left untagged")
	}

	// Triangles are numbered first so point order follows the volume mesh
	triConn := make([][]int, len(keptTris))
	for i, t := range keptTris {
		triConn[i] = []int{vertex(t[0]), vertex(t[1]), vertex(t[2])}
	}
	for i, e := range boundary {
		msh.AppendCell(mesh.Line, []int{vertex(e[0]), vertex(e[1])}, lineTag[i], lineEnt[i])
	}
	for i, conn := range triConn {
		msh.AppendCell(mesh.Triangle, conn, b.physicalTag(2, triSurface[i]), triSurface[i])
	}
	for dim := 1; dim <= 2; dim++ {
		tags := make([]int, 0, len(b.groups[dim]))
		for tag := range b.groups[dim] {
			tags = append(tags, tag)
		}
		sort.Ints(tags)
		for _, tag := range tags {
			if err = msh.AddPhysicalGroup(dim, tag, b.groups[dim][tag].name); err != nil {
				return
			}
		}
	}
	b.logger.WithFields(log.Fields{
		"model":     b.Name,
		"points":    len(msh.Points),
		"triangles": len(keptTris),
		"lines":     len(boundary),
	}).Info("generated 2D mesh")
	err = msh.Validate()
	return
}

func (b *Builder) countUnmatchedBoundary(edgeCount map[edgeKey]int, segCurve map[edgeKey]int) (n int) {
	for k, c := range edgeCount {
		if c != 1 {
			continue
		}
		if _, ok := segCurve[k]; !ok {
			n++
		}
	}
	return
}
