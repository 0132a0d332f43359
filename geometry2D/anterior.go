package geometry2D

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/notargets/aqueous/InputParameters"
	"github.com/notargets/aqueous/mesh"
)

// Physical group tags of the anterior segment mesh
const (
	ChamberTag = 1
	TMTag      = 2
	InletTag   = 11
	WallTag    = 12
)

// AnteriorSegment is the built meridional profile, before meshing
type AnteriorSegment struct {
	*Builder
	Chamber, TM int   // surface tags
	Inlet       int   // curve tag
	Walls       []int // curve tags
	TMX0        float64
}

// NewAnteriorSegment lays out the chamber and the embedded TM rectangle:
// cornea spline from (0,0) through the sag apex to (R,0), the angle wall up
// to the lens corner, the lens line back to the axis and the axis itself.
func NewAnteriorSegment(mp *InputParameters.MeshParameters, logger log.FieldLogger) (as *AnteriorSegment, err error) {
	if err = checkMeshParameters(mp); err != nil {
		return
	}
	var (
		R       = mp.Radius
		lensY   = mp.Depth - mp.LensDrop
		cornerX = R - mp.IrisInset
		inletX  = cornerX - 2*mp.Gap
		b       = NewBuilder("anterior_segment", mp.MeshSize, logger)
	)
	as = &AnteriorSegment{Builder: b, TMX0: R - mp.TMInset}

	pLeft := b.AddPoint(0, 0)
	pApex := b.AddPoint(0.5*R, -mp.CorneaSag)
	pRight := b.AddPoint(R, 0)
	pCorner := b.AddPoint(cornerX, lensY)
	pInlet := b.AddPoint(inletX, lensY)
	pAxis := b.AddPoint(0, lensY)

	cornea := b.AddSpline([]int{pLeft, pApex, pRight})
	right := b.AddLine(pRight, pCorner)
	// The lens edge is split so the segment next to the angle is the inlet aperture
	as.Inlet = b.AddLine(pCorner, pInlet)
	lens := b.AddLine(pInlet, pAxis)
	left := b.AddLine(pAxis, pLeft)
	as.Walls = []int{cornea, right, lens, left}

	var loop int
	if loop, err = b.AddCurveLoop([]int{cornea, right, as.Inlet, lens, left}); err != nil {
		return
	}
	face := b.AddPlaneSurface(loop)
	tm := b.AddRectangle(as.TMX0, mp.TMOffset, mp.TMWidth, mp.TMThickness)
	b.Fragment(face, tm)

	// Resolve the TM edges, the inlet and the angle wall at the fine size
	b.SetCurveSize(mp.FineMeshSize, b.LoopCurves(b.Surface(tm).Outer)...)
	b.SetCurveSize(mp.FineMeshSize, as.Inlet, right)
	b.Surface(face).Size = mp.MeshSize
	b.Surface(tm).Size = mp.FineMeshSize
	b.AddSizeBox(as.TMX0-mp.MeshSize, R, 0, mp.TMOffset+mp.TMThickness+mp.MeshSize, mp.FineMeshSize)

	for _, s := range b.Surfaces() {
		tag := ChamberTag
		if IsTMSurface(b.CenterOfMass(s), as.TMX0, mp.TMThickness+mp.ClassifyMargin) {
			tag = TMTag
			as.TM = s
		} else {
			as.Chamber = s
		}
		if err = b.AddPhysicalGroup(2, []int{s}, tag, groupName(tag)); err != nil {
			return
		}
	}
	if err = b.AddPhysicalGroup(1, []int{as.Inlet}, InletTag, groupName(InletTag)); err != nil {
		return
	}
	err = b.AddPhysicalGroup(1, as.Walls, WallTag, groupName(WallTag))
	return
}

// IsTMSurface classifies a surface by its centroid alone: right of the TM
// start and below the band top plus margin. This is a heuristic, not a
// topological match, so a differently shaped chamber whose centroid falls in
// that box would be tagged TM too.
func IsTMSurface(com Point, tmX0, maxY float64) bool {
	return com.X[0] > tmX0 && com.X[1] < maxY
}

func groupName(tag int) string {
	switch tag {
	case ChamberTag:
		return "chamber"
	case TMTag:
		return "tm"
	case InletTag:
		return "inlet"
	case WallTag:
		return "walls"
	}
	return ""
}

// BuildAnteriorSegment builds and meshes the anterior segment profile
func BuildAnteriorSegment(mp *InputParameters.MeshParameters, logger log.FieldLogger) (msh *mesh.Mesh, err error) {
	var (
		as *AnteriorSegment
	)
	if as, err = NewAnteriorSegment(mp, logger); err != nil {
		return
	}
	return as.Generate(TriangleCDT)
}

func checkMeshParameters(mp *InputParameters.MeshParameters) (err error) {
	positive := map[string]float64{
		"Radius":       mp.Radius,
		"Depth":        mp.Depth,
		"TMThickness":  mp.TMThickness,
		"Gap":          mp.Gap,
		"TMWidth":      mp.TMWidth,
		"MeshSize":     mp.MeshSize,
		"FineMeshSize": mp.FineMeshSize,
	}
	for name, v := range positive {
		if !(v > 0) {
			return fmt.Errorf("mesh parameter %s must be positive, got %g", name, v)
		}
	}
	if mp.LensDrop >= mp.Depth {
		return fmt.Errorf("lens drop %g must be less than the depth %g", mp.LensDrop, mp.Depth)
	}
	if 2*mp.Gap >= mp.Radius-mp.IrisInset {
		return fmt.Errorf("inlet aperture %g does not fit on the lens edge", 2*mp.Gap)
	}
	return
}
