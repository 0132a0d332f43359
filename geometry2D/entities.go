package geometry2D

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/notargets/aqueous/mesh"
)

type Point struct {
	X [2]float64
}

func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X[0]-q.X[0], p.X[1]-q.X[1])
}

type CurveKind uint8

const (
	LineCurve CurveKind = iota
	SplineCurve
)

// Curve is a line between two points or an interpolating spline through its
// control points. Size is the target segment length when discretized.
type Curve struct {
	Tag    int
	Kind   CurveKind
	Points []int
	Size   float64
}

// Surface is a planar region bounded by an outer curve loop, with optional
// holes. Size is the target interior spacing.
type Surface struct {
	Tag   int
	Outer int
	Holes []int
	Size  float64
}

type group struct {
	name     string
	entities []int
}

// Builder assembles 2D geometry entities the way an OCC kernel session does:
// entity tags are per dimension and start at 1.
type Builder struct {
	Name        string
	DefaultSize float64
	points      []Point
	curves      []*Curve
	loops       [][]int
	surfaces    []*Surface
	boxes       []sizeBox
	groups      [3]map[int]*group
	polyCache   map[int][]Point
	logger      log.FieldLogger
}

type sizeBox struct {
	xmin, xmax, ymin, ymax float64
	size                   float64
}

func NewBuilder(name string, defaultSize float64, logger log.FieldLogger) (b *Builder) {
	if logger == nil {
		logger = log.StandardLogger()
	}
	b = &Builder{
		Name:        name,
		DefaultSize: defaultSize,
		polyCache:   make(map[int][]Point),
		logger:      logger,
	}
	for d := range b.groups {
		b.groups[d] = make(map[int]*group)
	}
	return
}

func (b *Builder) AddPoint(x, y float64) (tag int) {
	b.points = append(b.points, Point{[2]float64{x, y}})
	return len(b.points)
}

func (b *Builder) Point(tag int) Point { return b.points[tag-1] }

func (b *Builder) addCurve(kind CurveKind, pts []int) (tag int) {
	for _, p := range pts {
		if p < 1 || p > len(b.points) {
			panic(fmt.Errorf("curve references unknown point %d", p))
		}
	}
	tag = len(b.curves) + 1
	cp := make([]int, len(pts))
	copy(cp, pts)
	b.curves = append(b.curves, &Curve{Tag: tag, Kind: kind, Points: cp})
	return
}

func (b *Builder) AddLine(p1, p2 int) int { return b.addCurve(LineCurve, []int{p1, p2}) }

// AddSpline adds a curve interpolating the control points in order
func (b *Builder) AddSpline(pts []int) int {
	if len(pts) == 2 {
		return b.AddLine(pts[0], pts[1])
	}
	return b.addCurve(SplineCurve, pts)
}

func (b *Builder) Curve(tag int) *Curve { return b.curves[tag-1] }

// SetCurveSize sets the target segment length of curves
func (b *Builder) SetCurveSize(size float64, tags ...int) {
	for _, t := range tags {
		b.Curve(t).Size = size
	}
	b.polyCache = make(map[int][]Point)
}

// AddCurveLoop adds a closed chain of curves. Curves may appear in either
// orientation but consecutive curves must share an end point.
func (b *Builder) AddCurveLoop(curves []int) (tag int, err error) {
	if len(curves) == 0 {
		err = fmt.Errorf("empty curve loop")
		return
	}
	if _, err = b.chain(curves); err != nil {
		return
	}
	cp := make([]int, len(curves))
	copy(cp, curves)
	b.loops = append(b.loops, cp)
	tag = len(b.loops)
	return
}

func (b *Builder) AddPlaneSurface(loop int) (tag int) {
	if loop < 1 || loop > len(b.loops) {
		panic(fmt.Errorf("unknown curve loop %d", loop))
	}
	tag = len(b.surfaces) + 1
	b.surfaces = append(b.surfaces, &Surface{Tag: tag, Outer: loop})
	return
}

// AddRectangle adds the axis aligned rectangle with corner (x,y) as a surface
func (b *Builder) AddRectangle(x, y, dx, dy float64) (tag int) {
	p1 := b.AddPoint(x, y)
	p2 := b.AddPoint(x+dx, y)
	p3 := b.AddPoint(x+dx, y+dy)
	p4 := b.AddPoint(x, y+dy)
	l1 := b.AddLine(p1, p2)
	l2 := b.AddLine(p2, p3)
	l3 := b.AddLine(p3, p4)
	l4 := b.AddLine(p4, p1)
	loop, err := b.AddCurveLoop([]int{l1, l2, l3, l4})
	if err != nil {
		panic(err)
	}
	return b.AddPlaneSurface(loop)
}

func (b *Builder) Surface(tag int) *Surface { return b.surfaces[tag-1] }

func (b *Builder) Surfaces() (tags []int) {
	for _, s := range b.surfaces {
		tags = append(tags, s.Tag)
	}
	return
}

// LoopCurves returns the curve tags of a loop
func (b *Builder) LoopCurves(loop int) []int { return b.loops[loop-1] }

// AddSizeBox refines the interior point spacing inside a box
func (b *Builder) AddSizeBox(xmin, xmax, ymin, ymax, size float64) {
	b.boxes = append(b.boxes, sizeBox{xmin, xmax, ymin, ymax, size})
}

// Fragment cuts the tool surface out of the object so both share the tool
// boundary. Only the inclusion case is resolved: a tool not contained in the
// object is logged and both surfaces are returned unchanged, which may leave
// overlapping regions in the mesh.
func (b *Builder) Fragment(object, tool int) (result []int) {
	var (
		obj    = b.Surface(object)
		tl     = b.Surface(tool)
		outer  = b.LoopPolygon(obj.Outer)
		inside = true
	)
	for _, p := range b.LoopPolygon(tl.Outer) {
		if !PointInPolygon(p, outer) {
			inside = false
			break
		}
		for _, h := range obj.Holes {
			if PointInPolygon(p, b.LoopPolygon(h)) {
				inside = false
			}
		}
	}
	if !inside {
		b.logger.WithFields(log.Fields{
			"object": object,
			"tool":   tool,
		}).Warn("fragment tool is not contained in the object surface, surfaces left unchanged")
		return []int{object, tool}
	}
	obj.Holes = append(obj.Holes, tl.Outer)
	return []int{object, tool}
}

// CenterOfMass returns the area centroid of a surface, holes removed
func (b *Builder) CenterOfMass(surface int) (c Point) {
	var (
		s         = b.Surface(surface)
		a, ox, oy = polygonMoments(b.LoopPolygon(s.Outer))
		area      = a
		sx, sy    = ox * a, oy * a
	)
	for _, h := range s.Holes {
		ha, hx, hy := polygonMoments(b.LoopPolygon(h))
		sx -= hx * ha
		sy -= hy * ha
		area -= ha
	}
	if area == 0 {
		return
	}
	c.X = [2]float64{sx / area, sy / area}
	return
}

// Area returns the area of a surface, holes removed
func (b *Builder) Area(surface int) (area float64) {
	s := b.Surface(surface)
	area, _, _ = polygonMoments(b.LoopPolygon(s.Outer))
	for _, h := range s.Holes {
		ha, _, _ := polygonMoments(b.LoopPolygon(h))
		area -= ha
	}
	return
}

// Contains reports whether a point lies inside the surface and outside its holes
func (b *Builder) Contains(surface int, p Point) bool {
	s := b.Surface(surface)
	if !PointInPolygon(p, b.LoopPolygon(s.Outer)) {
		return false
	}
	for _, h := range s.Holes {
		if PointInPolygon(p, b.LoopPolygon(h)) {
			return false
		}
	}
	return true
}

func (b *Builder) AddPhysicalGroup(dim int, entities []int, tag int, name string) (err error) {
	if dim < 0 || dim > 2 {
		err = fmt.Errorf("invalid physical group dimension %d", dim)
		return
	}
	if _, found := b.groups[dim][tag]; found {
		err = fmt.Errorf("%w: dim = %d, tag = %d", mesh.ErrDuplicateGroup, dim, tag)
		return
	}
	cp := make([]int, len(entities))
	copy(cp, entities)
	b.groups[dim][tag] = &group{name: name, entities: cp}
	return
}

// physicalTag returns the group an entity belongs to, 0 if none
func (b *Builder) physicalTag(dim, entity int) int {
	for tag, g := range b.groups[dim] {
		for _, e := range g.entities {
			if e == entity {
				return tag
			}
		}
	}
	return 0
}

func (b *Builder) curveSize(c *Curve) float64 {
	if c.Size > 0 {
		return c.Size
	}
	return b.DefaultSize
}

// CurvePolyline discretizes a curve from its first to its last control point
func (b *Builder) CurvePolyline(tag int) (pl []Point) {
	if cached, ok := b.polyCache[tag]; ok {
		return cached
	}
	var (
		c    = b.Curve(tag)
		size = b.curveSize(c)
	)
	switch c.Kind {
	case LineCurve:
		p0, p1 := b.Point(c.Points[0]), b.Point(c.Points[1])
		n := segmentCount(p0.Dist(p1), size)
		pl = make([]Point, n+1)
		for i := 0; i <= n; i++ {
			t := float64(i) / float64(n)
			pl[i] = Point{[2]float64{
				p0.X[0] + t*(p1.X[0]-p0.X[0]),
				p0.X[1] + t*(p1.X[1]-p0.X[1]),
			}}
		}
	case SplineCurve:
		ctrl := make([]Point, len(c.Points))
		for i, p := range c.Points {
			ctrl[i] = b.Point(p)
		}
		// Arc length estimate from a fine sampling drives the segment count
		fine := sampleSpline(ctrl, 64*(len(ctrl)-1))
		var length float64
		for i := 1; i < len(fine); i++ {
			length += fine[i].Dist(fine[i-1])
		}
		n := segmentCount(length, size)
		if minN := 12 * (len(ctrl) - 1); n < minN {
			n = minN
		}
		pl = sampleSpline(ctrl, n)
		// Control points are exact
		pl[0], pl[len(pl)-1] = ctrl[0], ctrl[len(ctrl)-1]
	}
	b.polyCache[tag] = pl
	return
}

func segmentCount(length, size float64) (n int) {
	if size <= 0 {
		return 1
	}
	n = int(math.Ceil(length/size - 1.e-9))
	if n < 1 {
		n = 1
	}
	return
}

// sampleSpline evaluates a uniform Catmull-Rom spline through the control
// points at n+1 parameter values, with end tangents from reflected phantom
// points.
func sampleSpline(ctrl []Point, n int) (pl []Point) {
	var (
		nc    = len(ctrl)
		spans = nc - 1
	)
	at := func(i int) Point {
		switch {
		case i < 0:
			return Point{[2]float64{2*ctrl[0].X[0] - ctrl[1].X[0], 2*ctrl[0].X[1] - ctrl[1].X[1]}}
		case i >= nc:
			return Point{[2]float64{2*ctrl[nc-1].X[0] - ctrl[nc-2].X[0], 2*ctrl[nc-1].X[1] - ctrl[nc-2].X[1]}}
		}
		return ctrl[i]
	}
	pl = make([]Point, n+1)
	for k := 0; k <= n; k++ {
		u := float64(k) / float64(n) * float64(spans)
		span := int(u)
		if span >= spans {
			span = spans - 1
		}
		t := u - float64(span)
		p0, p1, p2, p3 := at(span-1), at(span), at(span+1), at(span+2)
		t2, t3 := t*t, t*t*t
		for d := 0; d < 2; d++ {
			pl[k].X[d] = 0.5 * (2*p1.X[d] +
				(-p0.X[d]+p2.X[d])*t +
				(2*p0.X[d]-5*p1.X[d]+4*p2.X[d]-p3.X[d])*t2 +
				(-p0.X[d]+3*p1.X[d]-3*p2.X[d]+p3.X[d])*t3)
		}
	}
	return
}

// orientedCurve is a loop member with its traversal direction
type orientedCurve struct {
	tag      int
	reversed bool
}

func (b *Builder) curveEnds(tag int) (first, last int) {
	c := b.Curve(tag)
	return c.Points[0], c.Points[len(c.Points)-1]
}

func (b *Builder) chain(curves []int) (oc []orientedCurve, err error) {
	var (
		start, cur int
	)
	for i, tag := range curves {
		if tag < 1 || tag > len(b.curves) {
			err = fmt.Errorf("curve loop references unknown curve %d", tag)
			return
		}
		f, l := b.curveEnds(tag)
		if i == 0 {
			// Orientation of the first curve follows the second
			rev := false
			if len(curves) > 1 {
				nf, nl := b.curveEnds(curves[1])
				if f == nf || f == nl {
					rev = true
				}
			}
			oc = append(oc, orientedCurve{tag, rev})
			if rev {
				start, cur = l, f
			} else {
				start, cur = f, l
			}
			continue
		}
		switch cur {
		case f:
			oc = append(oc, orientedCurve{tag, false})
			cur = l
		case l:
			oc = append(oc, orientedCurve{tag, true})
			cur = f
		default:
			err = fmt.Errorf("curve %d does not continue the loop at point %d", tag, cur)
			return
		}
	}
	if cur != start {
		err = fmt.Errorf("curve loop is not closed: ends at point %d, started at %d", cur, start)
	}
	return
}

// LoopPolygon returns the discretized loop boundary without a repeated end point
func (b *Builder) LoopPolygon(loop int) (poly []Point) {
	oc, err := b.chain(b.loops[loop-1])
	if err != nil {
		panic(err)
	}
	for _, c := range oc {
		pl := b.CurvePolyline(c.tag)
		n := len(pl)
		for i := 0; i < n-1; i++ {
			if c.reversed {
				poly = append(poly, pl[n-1-i])
			} else {
				poly = append(poly, pl[i])
			}
		}
	}
	return
}

// polygonMoments returns the unsigned area and the centroid of a polygon
func polygonMoments(poly []Point) (area, cx, cy float64) {
	var (
		n = len(poly)
		a float64
	)
	for i := 0; i < n; i++ {
		p, q := poly[i], poly[(i+1)%n]
		cr := p.X[0]*q.X[1] - q.X[0]*p.X[1]
		a += cr
		cx += (p.X[0] + q.X[0]) * cr
		cy += (p.X[1] + q.X[1]) * cr
	}
	if a == 0 {
		return
	}
	cx /= 3 * a
	cy /= 3 * a
	area = math.Abs(a) / 2
	return
}

// PointInPolygon is the even-odd ray crossing test
func PointInPolygon(p Point, poly []Point) (inside bool) {
	var (
		n = len(poly)
	)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := poly[i].X[0], poly[i].X[1]
		xj, yj := poly[j].X[0], poly[j].X[1]
		if (yi > p.X[1]) != (yj > p.X[1]) &&
			p.X[0] < (xj-xi)*(p.X[1]-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return
}

// SegmentDistance returns the distance from p to segment ab
func SegmentDistance(p, a, b Point) float64 {
	var (
		abx, aby = b.X[0] - a.X[0], b.X[1] - a.X[1]
		apx, apy = p.X[0] - a.X[0], p.X[1] - a.X[1]
		l2       = abx*abx + aby*aby
	)
	if l2 == 0 {
		return p.Dist(a)
	}
	t := (apx*abx + apy*aby) / l2
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(apx-t*abx, apy-t*aby)
}
