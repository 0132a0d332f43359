package Aqueous2D

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/notargets/aqueous/FEM2D"
	"github.com/notargets/aqueous/InputParameters"
	"github.com/notargets/aqueous/utils"
)

type MomentumModel string

const (
	Darcy    MomentumModel = "darcy"
	Brinkman MomentumModel = "brinkman"
)

// Aqueous is the steady Stokes flow of aqueous humour in the chamber with a
// porous resistance in the trabecular meshwork band, coupled one way to a
// steady advection diffusion temperature field through Boussinesq buoyancy.
type Aqueous struct {
	Params *InputParameters.SolverParameters
	Model  MomentumModel
	Mesh   *FEM2D.Mesh
	V      *FEM2D.FunctionSpace // P2 velocity
	Q      *FEM2D.FunctionSpace // P1 pressure
	TS     *FEM2D.FunctionSpace // P1 temperature
	U, P   *FEM2D.Function
	T      *FEM2D.Function
	Cub    *FEM2D.Cubature
	logger log.FieldLogger
}

func NewAqueous(sp *InputParameters.SolverParameters, m *FEM2D.Mesh, logger log.FieldLogger) (c *Aqueous, err error) {
	if logger == nil {
		logger = log.StandardLogger()
	}
	c = &Aqueous{
		Params: sp,
		Model:  MomentumModel(sp.Model),
		Mesh:   m,
		V:      FEM2D.NewVectorFunctionSpace(m, 2),
		Q:      FEM2D.NewFunctionSpace(m, 1),
		TS:     FEM2D.NewFunctionSpace(m, 1),
		Cub:    FEM2D.NewDunavant4(),
		logger: logger,
	}
	switch c.Model {
	case Darcy, Brinkman:
	case "":
		c.Model = Darcy
	default:
		err = fmt.Errorf("unknown momentum model %q, want %q or %q", sp.Model, Darcy, Brinkman)
		return
	}
	if err = utils.CheckFinite("solver parameters",
		sp.Density, sp.Viscosity, sp.Permeability, sp.Conductivity, sp.HeatCapacity); err != nil {
		return
	}
	if !(sp.Permeability > 0) {
		err = fmt.Errorf("TM permeability must be positive, got %g", sp.Permeability)
		return
	}
	c.U = FEM2D.NewFunction(c.V, "u")
	c.P = FEM2D.NewFunction(c.Q, "p")
	c.T = FEM2D.NewFunction(c.TS, "T")
	c.logger.WithFields(log.Fields{
		"cells":          m.K,
		"velocity_dofs":  c.V.NumDofs(),
		"pressure_dofs":  c.Q.NumDofs(),
		"momentum_model": c.Model,
	}).Info("function spaces")
	return
}

// TMIndicator is 1 inside the coordinate box standing in for the TM band.
// It does not consult the mesh tags.
func (c *Aqueous) TMIndicator(x, y float64) float64 {
	if x > c.Params.TMMinX && y < c.Params.TMMaxY {
		return 1
	}
	return 0
}

func (c *Aqueous) newtonSolver() (ns *FEM2D.NewtonSolver) {
	ns = FEM2D.NewNewtonSolver(c.logger)
	ns.Rtol = c.Params.Rtol
	if c.Params.Atol > 0 {
		ns.Atol = c.Params.Atol
	}
	if c.Params.MaxIterations > 0 {
		ns.MaxIt = c.Params.MaxIterations
	}
	return
}

// Solve computes the temperature with the current velocity, which is zero on
// a fresh model, then the flow with that temperature
func (c *Aqueous) Solve() (err error) {
	var (
		its int
		ns  = c.newtonSolver()
	)
	tp := c.NewTemperatureProblem()
	if its, err = ns.Solve(tp, c.T.Values); err != nil {
		return fmt.Errorf("temperature solve: %w", err)
	}
	c.logger.WithField("iterations", its).Info("temperature solved")

	fp := c.NewFlowProblem()
	x := make([]float64, fp.Size())
	if its, err = ns.Solve(fp, x); err != nil {
		return fmt.Errorf("flow solve: %w", err)
	}
	if err = c.U.Assign(x, 0); err != nil {
		return
	}
	if err = c.P.Assign(x, c.V.NumDofs()); err != nil {
		return
	}
	c.logger.WithField("iterations", its).Info("flow solved")
	return
}

type Diagnostics struct {
	MeanChamberPressure float64 // area mean of p where the TM indicator is 0
	MeanTMSpeed         float64 // area mean of |u| where the TM indicator is 1
	TMArea              float64
	ChamberArea         float64
}

func (c *Aqueous) Diagnostics() (d Diagnostics) {
	var (
		cub = c.Cub
		pc  float64
		sp  float64
	)
	for k := 0; k < c.Mesh.K; k++ {
		g := c.Mesh.Geometry(k)
		for q := range cub.W {
			r, s := cub.R[q], cub.S[q]
			x, y := g.Map(r, s)
			w := cub.W[q] * math.Abs(g.DetJ)
			if c.TMIndicator(x, y) == 1 {
				ux, uy := c.U.EvalCell(k, 0, r, s), c.U.EvalCell(k, 1, r, s)
				sp += w * math.Hypot(ux, uy)
				d.TMArea += w
			} else {
				pc += w * c.P.EvalCell(k, 0, r, s)
				d.ChamberArea += w
			}
		}
	}
	if d.ChamberArea > 0 {
		d.MeanChamberPressure = pc / d.ChamberArea
	}
	if d.TMArea > 0 {
		d.MeanTMSpeed = sp / d.TMArea
	}
	return
}
