package Aqueous2D

import (
	"math"

	"github.com/notargets/aqueous/FEM2D"
	"github.com/notargets/aqueous/utils"
)

// FlowProblem is the Taylor-Hood momentum and continuity system in the mixed
// unknown [u (P2, 2 components) | p (P1)]:
//
//	∫ 2μ ε(u):ε(v) + (μ/k) χ u·v - p div v + q div u = ∫ ρ² β(T-T0) g e_y·v
//
// with ∫ μ_eff χ ∇u:∇v added for the Brinkman model. The load carries ρ
// twice, once in the density deviation ρβ(T-T0) and once as the density
// weighting of the momentum load.
type FlowProblem struct {
	c    *Aqueous
	cons FEM2D.Constraints
}

func (c *Aqueous) NewFlowProblem() *FlowProblem {
	return &FlowProblem{c: c, cons: c.FlowConstraints()}
}

func (fp *FlowProblem) Size() int { return fp.c.V.NumDofs() + fp.c.Q.NumDofs() }

func (fp *FlowProblem) Constraints() FEM2D.Constraints { return fp.cons }

// Assemble does not depend on x, the system is linear in (u, p)
func (fp *FlowProblem) Assemble(x []float64) (J utils.DOK, b []float64, err error) {
	var (
		c      = fp.c
		sp     = c.Params
		n      = fp.Size()
		pOff   = c.V.NumDofs()
		mu     = sp.Viscosity
		darcy  = mu / sp.Permeability
		muEff  = 0.
		buoy   = sp.Density * sp.Density * sp.Expansion * sp.Gravity
		tabV   = c.V.Element.Tabulate(c.Cub)
		tabQ   = c.Q.Element.Tabulate(c.Cub)
		npV    = c.V.Element.Np
		npQ    = c.Q.Element.Np
		gx, gy = make([]float64, npV), make([]float64, npV)
	)
	if c.Model == Brinkman {
		muEff = sp.EffectiveViscosity()
	}
	J = utils.NewDOK(n, n)
	b = make([]float64, n)
	for k := 0; k < c.Mesh.K; k++ {
		var (
			g      = c.Mesh.Geometry(k)
			vNodes = c.V.CellNodes[k]
			qNodes = c.Q.CellNodes[k]
			Ke     = make([][]float64, 2*npV+npQ)
			be     = make([]float64, 2*npV+npQ)
		)
		for i := range Ke {
			Ke[i] = make([]float64, 2*npV+npQ)
		}
		for q, wq := range c.Cub.W {
			var (
				r, s = c.Cub.R[q], c.Cub.S[q]
				w    = wq * math.Abs(g.DetJ)
				phi  = tabV.Phi[q]
				psi  = tabQ.Phi[q]
			)
			xq, yq := g.Map(r, s)
			chi := c.TMIndicator(xq, yq)
			Tq := c.T.EvalCell(k, 0, r, s)
			for i := 0; i < npV; i++ {
				gx[i], gy[i] = g.Grad(tabV.Dr[q][i], tabV.Ds[q][i])
			}
			for i := 0; i < npV; i++ {
				gi := [2]float64{gx[i], gy[i]}
				for j := 0; j < npV; j++ {
					gj := [2]float64{gx[j], gy[j]}
					dot := gi[0]*gj[0] + gi[1]*gj[1]
					for bc := 0; bc < 2; bc++ {
						for ac := 0; ac < 2; ac++ {
							val := mu * gi[ac] * gj[bc]
							if ac == bc {
								val += mu*dot + (darcy*phi[i]*phi[j]+muEff*dot)*chi
							}
							Ke[2*i+bc][2*j+ac] += w * val
						}
					}
				}
				for m := 0; m < npQ; m++ {
					for bc := 0; bc < 2; bc++ {
						// -p div v and q div u
						Ke[2*i+bc][2*npV+m] -= w * psi[m] * gi[bc]
						Ke[2*npV+m][2*i+bc] += w * psi[m] * gi[bc]
					}
				}
				be[2*i+1] += w * buoy * (Tq - sp.RefTemperature) * phi[i]
			}
		}
		dofs := make([]int, 0, 2*npV+npQ)
		for _, nd := range vNodes {
			dofs = append(dofs, c.V.Dof(nd, 0), c.V.Dof(nd, 1))
		}
		for _, nd := range qNodes {
			dofs = append(dofs, pOff+c.Q.Dof(nd, 0))
		}
		for i, gi := range dofs {
			b[gi] += be[i]
			for j, gj := range dofs {
				J.Add(gi, gj, Ke[i][j])
			}
		}
	}
	return
}

// TemperatureProblem is the steady energy equation
//
//	∫ k_th ∇T·∇S + ρ c_p (u·∇T) S = 0
//
// with u held at the current velocity.
type TemperatureProblem struct {
	c    *Aqueous
	cons FEM2D.Constraints
}

func (c *Aqueous) NewTemperatureProblem() *TemperatureProblem {
	return &TemperatureProblem{c: c, cons: c.TemperatureConstraints()}
}

func (tp *TemperatureProblem) Size() int { return tp.c.TS.NumDofs() }

func (tp *TemperatureProblem) Constraints() FEM2D.Constraints { return tp.cons }

func (tp *TemperatureProblem) Assemble(x []float64) (J utils.DOK, b []float64, err error) {
	var (
		c      = tp.c
		sp     = c.Params
		n      = tp.Size()
		tab    = c.TS.Element.Tabulate(c.Cub)
		np     = c.TS.Element.Np
		rhoCp  = sp.Density * sp.HeatCapacity
		gx, gy = make([]float64, np), make([]float64, np)
	)
	J = utils.NewDOK(n, n)
	b = make([]float64, n)
	for k := 0; k < c.Mesh.K; k++ {
		g := c.Mesh.Geometry(k)
		nodes := c.TS.CellNodes[k]
		for q, wq := range c.Cub.W {
			var (
				r, s = c.Cub.R[q], c.Cub.S[q]
				w    = wq * math.Abs(g.DetJ)
				phi  = tab.Phi[q]
				ux   = c.U.EvalCell(k, 0, r, s)
				uy   = c.U.EvalCell(k, 1, r, s)
			)
			for i := 0; i < np; i++ {
				gx[i], gy[i] = g.Grad(tab.Dr[q][i], tab.Ds[q][i])
			}
			for i := 0; i < np; i++ {
				for j := 0; j < np; j++ {
					val := sp.Conductivity*(gx[i]*gx[j]+gy[i]*gy[j]) +
						rhoCp*(ux*gx[j]+uy*gy[j])*phi[i]
					J.Add(nodes[i], nodes[j], w*val)
				}
			}
		}
	}
	return
}
