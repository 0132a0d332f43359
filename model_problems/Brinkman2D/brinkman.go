package Brinkman2D

import (
	"fmt"
	"math"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/notargets/aqueous/FEM2D"
	"github.com/notargets/aqueous/InputParameters"
	"github.com/notargets/aqueous/geometry2D"
	"github.com/notargets/aqueous/mesh"
	"github.com/notargets/aqueous/readfiles"
	"github.com/notargets/aqueous/utils"
)

// Formulation is Stokes flow in the chamber and Brinkman flow in the TM,
//
//	-μ∇²u + ∇p + (μ/K) u = 0 in the TM, -μ∇²u + ∇p = 0 elsewhere, div u = 0,
//
// with TM membership, walls and inlet taken from the mesh physical groups.
// The outlet is the part of the wall next to the TM band, where the velocity
// is free and the pressure is held at the episcleral venous pressure.
// Interface conditions at the TM boundary are not imposed, so the result is
// an outline of the drainage problem rather than a solution of it.
type Formulation struct {
	Params  *InputParameters.SolverParameters
	Mesh    *FEM2D.Mesh
	V, Q    *FEM2D.FunctionSpace
	U, P    *FEM2D.Function
	CellTM  []bool
	Inlet   [][2]int // boundary edges in mesh vertex numbering
	Walls   [][2]int
	Outlet  [][2]int
	Backend utils.LinearSolver
	logger  log.FieldLogger
}

// Complete reports whether the formulation is a full drainage model. The
// interface terms are missing.
func (f *Formulation) Complete() bool { return false }

func NewFormulation(sp *InputParameters.SolverParameters, msh *mesh.Mesh, logger log.FieldLogger) (f *Formulation, err error) {
	var (
		tris  *mesh.CellBlock
		lines *mesh.CellBlock
	)
	if logger == nil {
		logger = log.StandardLogger()
	}
	if tris, err = msh.FirstBlock(mesh.Triangle); err != nil {
		return
	}
	if lines, err = msh.FirstBlock(mesh.Line); err != nil {
		return
	}
	if !tris.Tagged() || !lines.Tagged() {
		err = fmt.Errorf("the sparse formulation needs physical tags on triangles and lines")
		return
	}
	var precond utils.Preconditioner
	if precond, err = utils.ParsePreconditioner(sp.GMRESPrecond); err != nil {
		return
	}
	f = &Formulation{
		Params: sp,
		Backend: utils.GMRES{
			Restart: sp.GMRESRestart,
			MaxIt:   sp.GMRESMaxIt,
			Tol:     sp.GMRESTol,
			Precond: precond,
		},
		logger: logger,
	}
	if f.Mesh, err = FEM2D.NewMesh(msh.Points, tris.Connectivity); err != nil {
		return
	}
	f.V = FEM2D.NewVectorFunctionSpace(f.Mesh, 2)
	f.Q = FEM2D.NewFunctionSpace(f.Mesh, 1)
	f.U = FEM2D.NewFunction(f.V, "u")
	f.P = FEM2D.NewFunction(f.Q, "p")
	f.CellTM = make([]bool, f.Mesh.K)
	var nTM int
	for k, tag := range tris.PhysicalTags {
		if tag == geometry2D.TMTag {
			f.CellTM[k] = true
			nTM++
		}
	}
	if nTM == 0 {
		err = fmt.Errorf("no triangles carry the TM tag %d", geometry2D.TMTag)
		return
	}
	vertex := make(map[int]int, f.Mesh.Nv)
	for v, p := range f.Mesh.PointIndex {
		vertex[p] = v
	}
	for i, conn := range lines.Connectivity {
		a, aok := vertex[conn[0]]
		b, bok := vertex[conn[1]]
		if !aok || !bok {
			continue
		}
		switch lines.PhysicalTags[i] {
		case geometry2D.InletTag:
			f.Inlet = append(f.Inlet, [2]int{a, b})
		case geometry2D.WallTag:
			f.Walls = append(f.Walls, [2]int{a, b})
		}
	}
	f.splitOutlet()
	if len(f.Inlet) == 0 || len(f.Outlet) == 0 {
		err = fmt.Errorf("sparse formulation needs inlet and outlet edges, have %d and %d",
			len(f.Inlet), len(f.Outlet))
		return
	}
	logger.WithFields(log.Fields{
		"cells":        f.Mesh.K,
		"tm_cells":     nTM,
		"inlet_edges":  len(f.Inlet),
		"wall_edges":   len(f.Walls),
		"outlet_edges": len(f.Outlet),
		"backend":      f.Backend.Name(),
		"precond":      precond,
	}).Info("sparse Brinkman formulation")
	return
}

// splitOutlet moves wall edges whose vertices both share a triangle with a TM
// vertex to the outlet
func (f *Formulation) splitOutlet() {
	var (
		m      = f.Mesh
		tmVert = make(map[int]bool)
		near   = make(map[int]bool)
		walls  [][2]int
	)
	for k, isTM := range f.CellTM {
		if isTM {
			for _, v := range m.EToV[k] {
				tmVert[v] = true
			}
		}
	}
	for _, ev := range m.EToV {
		touches := tmVert[ev[0]] || tmVert[ev[1]] || tmVert[ev[2]]
		if touches {
			for _, v := range ev {
				near[v] = true
			}
		}
	}
	for _, e := range f.Walls {
		if near[e[0]] && near[e[1]] {
			f.Outlet = append(f.Outlet, e)
		} else {
			walls = append(walls, e)
		}
	}
	f.Walls = walls
}

func (f *Formulation) Size() int { return f.V.NumDofs() + f.Q.NumDofs() }

// inletProfile is parabolic along the inlet with the mean inflow speed
// Q_in/A, directed in -y
func (f *Formulation) inletProfile() func(x, y float64) []float64 {
	var (
		xmin, xmax = math.Inf(1), math.Inf(-1)
		mean       = f.Params.InflowRate / f.Params.InflowArea
	)
	for _, e := range f.Inlet {
		for _, v := range e {
			xmin = math.Min(xmin, f.Mesh.VX[v])
			xmax = math.Max(xmax, f.Mesh.VX[v])
		}
	}
	half, mid := 0.5*(xmax-xmin), 0.5*(xmax+xmin)
	return func(x, y float64) []float64 {
		xi := (x - mid) / half
		return []float64{0, -1.5 * mean * math.Max(0, 1-xi*xi)}
	}
}

func (f *Formulation) Constraints() (cons FEM2D.Constraints) {
	var (
		pOff   = f.V.NumDofs()
		outlet = make(map[int]bool)
	)
	cons = make(FEM2D.Constraints)
	for _, n := range FEM2D.LocateBoundaryNodes(f.V, f.Outlet) {
		outlet[n] = true
	}
	inflow := FEM2D.NewDirichletBC("inflow", f.V, FEM2D.LocateBoundaryNodes(f.V, f.Inlet))
	inflow.ValueAt = f.inletProfile()
	cons.Apply(inflow, 0)
	var wallNodes []int
	for _, n := range FEM2D.LocateBoundaryNodes(f.V, f.Walls) {
		if !outlet[n] {
			wallNodes = append(wallNodes, n)
		}
	}
	cons.Apply(FEM2D.NewDirichletBC("walls", f.V, wallNodes, 0, 0), 0)
	cons.Apply(FEM2D.NewDirichletBC("outlet", f.Q,
		FEM2D.LocateBoundaryNodes(f.Q, f.Outlet), f.Params.EVP), pOff)
	return
}

func (f *Formulation) Assemble(x []float64) (J utils.DOK, b []float64, err error) {
	var (
		sp     = f.Params
		n      = f.Size()
		pOff   = f.V.NumDofs()
		mu     = sp.Viscosity
		drag   = mu / sp.Permeability
		cub    = FEM2D.NewDunavant4()
		tabV   = f.V.Element.Tabulate(cub)
		tabQ   = f.Q.Element.Tabulate(cub)
		npV    = f.V.Element.Np
		npQ    = f.Q.Element.Np
		gx, gy = make([]float64, npV), make([]float64, npV)
	)
	J = utils.NewDOK(n, n)
	b = make([]float64, n)
	for k := 0; k < f.Mesh.K; k++ {
		var (
			g   = f.Mesh.Geometry(k)
			chi = 0.
			Ke  = make([][]float64, 2*npV+npQ)
		)
		if f.CellTM[k] {
			chi = 1
		}
		for i := range Ke {
			Ke[i] = make([]float64, 2*npV+npQ)
		}
		for q, wq := range cub.W {
			w := wq * math.Abs(g.DetJ)
			phi, psi := tabV.Phi[q], tabQ.Phi[q]
			for i := 0; i < npV; i++ {
				gx[i], gy[i] = g.Grad(tabV.Dr[q][i], tabV.Ds[q][i])
			}
			for i := 0; i < npV; i++ {
				for j := 0; j < npV; j++ {
					val := w * (mu*(gx[i]*gx[j]+gy[i]*gy[j]) + chi*drag*phi[i]*phi[j])
					Ke[2*i][2*j] += val
					Ke[2*i+1][2*j+1] += val
				}
				for m := 0; m < npQ; m++ {
					Ke[2*i][2*npV+m] -= w * psi[m] * gx[i]
					Ke[2*i+1][2*npV+m] -= w * psi[m] * gy[i]
					Ke[2*npV+m][2*i] -= w * psi[m] * gx[i]
					Ke[2*npV+m][2*i+1] -= w * psi[m] * gy[i]
				}
			}
		}
		dofs := make([]int, 0, 2*npV+npQ)
		for _, nd := range f.V.CellNodes[k] {
			dofs = append(dofs, f.V.Dof(nd, 0), f.V.Dof(nd, 1))
		}
		for _, nd := range f.Q.CellNodes[k] {
			dofs = append(dofs, pOff+nd)
		}
		for i, gi := range dofs {
			for j, gj := range dofs {
				J.Add(gi, gj, Ke[i][j])
			}
		}
	}
	return
}

// problem adapts the formulation to the Newton driver
type problem struct {
	f    *Formulation
	cons FEM2D.Constraints
}

func (p *problem) Assemble(x []float64) (utils.DOK, []float64, error) { return p.f.Assemble(x) }
func (p *problem) Constraints() FEM2D.Constraints                     { return p.cons }
func (p *problem) Size() int                                          { return p.f.Size() }

// Solve runs the system through the configured backend. The iterate starts
// on the constrained values, so the Krylov corrections are zero on those rows
// and the inlet profile and outlet pressure hold exactly.
func (f *Formulation) Solve() (err error) {
	var (
		ns   = FEM2D.NewNewtonSolver(f.logger)
		x    = make([]float64, f.Size())
		cons = f.Constraints()
	)
	ns.Linear = f.Backend
	ns.Rtol = f.Params.Rtol
	if f.Params.Atol > 0 {
		ns.Atol = f.Params.Atol
	}
	for dof, g := range cons {
		x[dof] = g
	}
	if _, err = ns.Solve(&problem{f: f, cons: cons}, x); err != nil {
		return fmt.Errorf("sparse Brinkman solve: %w", err)
	}
	if err = f.U.Assign(x, 0); err != nil {
		return
	}
	return f.P.Assign(x, f.V.NumDofs())
}

// OutletFlux integrates u·n over the outlet edges, n pointing out of the
// triangle that owns the edge
func (f *Formulation) OutletFlux() (flux float64) {
	return f.edgeFlux(f.Outlet)
}

// InletFlux integrates u·n over the inlet edges
func (f *Formulation) InletFlux() (flux float64) {
	return f.edgeFlux(f.Inlet)
}

func (f *Formulation) edgeFlux(edges [][2]int) (flux float64) {
	var (
		m     = f.Mesh
		owner = make(map[[2]int]int)
		gl    = [3]float64{-math.Sqrt(3. / 5.), 0, math.Sqrt(3. / 5.)}
		gw    = [3]float64{5. / 9., 8. / 9., 5. / 9.}
	)
	for k, ev := range m.EToV {
		for j := 0; j < 3; j++ {
			a, b := ev[j], ev[(j+1)%3]
			owner[[2]int{a, b}] = k
		}
	}
	for _, e := range edges {
		a, b := e[0], e[1]
		k, ok := owner[[2]int{a, b}]
		if !ok {
			if k, ok = owner[[2]int{b, a}]; !ok {
				continue
			}
			a, b = b, a
		}
		// Counter clockwise cells have the outward normal on the right of a->b
		var (
			dx, dy = m.VX[b] - m.VX[a], m.VY[b] - m.VY[a]
			length = math.Hypot(dx, dy)
			nx, ny = dy / length, -dx / length
			g      = m.Geometry(k)
		)
		for q := range gl {
			t := 0.5 * (gl[q] + 1)
			x, y := m.VX[a]+t*dx, m.VY[a]+t*dy
			r, s := g.Inverse(x, y)
			ux, uy := f.U.EvalCell(k, 0, r, s), f.U.EvalCell(k, 1, r, s)
			flux += 0.5 * gw[q] * length * (ux*nx + uy*ny)
		}
	}
	return
}

// WriteResults writes u and p at the mesh vertices
func (f *Formulation) WriteResults(filename string) error {
	xm := &readfiles.XDMFMesh{
		Points:    f.Mesh.Points(),
		Triangles: f.Mesh.Triangles(),
	}
	return readfiles.WriteXDMFResults(filename, xm,
		readfiles.NodalField{Name: f.U.Name, Components: 2, Values: f.U.VertexValues()},
		readfiles.NodalField{Name: f.P.Name, Components: 1, Values: f.P.VertexValues()},
	)
}

// Run reads the tagged mesh, solves and writes the sketch results
func Run(sp *InputParameters.SolverParameters, logger log.FieldLogger) (f *Formulation, err error) {
	var (
		msh *mesh.Mesh
	)
	if logger == nil {
		logger = log.StandardLogger()
	}
	if msh, err = readfiles.ReadGmsh(sp.MeshFile); err != nil {
		return
	}
	if f, err = NewFormulation(sp, msh, logger); err != nil {
		return
	}
	if !f.Complete() {
		logger.Warn("TM interface terms are not imposed, the sparse result is a sketch")
	}
	if err = f.Solve(); err != nil {
		return
	}
	if err = f.WriteResults(sp.SketchResults); err != nil {
		return
	}
	tags := make([]int, 0, 2)
	for _, g := range msh.PhysicalGroups {
		tags = append(tags, g.Tag)
	}
	sort.Ints(tags)
	logger.WithFields(log.Fields{
		"results":     sp.SketchResults,
		"inlet_flux":  f.InletFlux(),
		"outlet_flux": f.OutletFlux(),
		"groups":      tags,
	}).Info("sparse Brinkman solve complete")
	return
}
