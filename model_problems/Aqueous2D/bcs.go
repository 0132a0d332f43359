package Aqueous2D

import (
	log "github.com/sirupsen/logrus"

	"github.com/notargets/aqueous/FEM2D"
)

// The boundary markers are coordinate predicates, not mesh tags. On the
// reference geometry the wall marker only finds the axis and the two cornea
// end points, and the warm marker at y = WarmY finds nothing.

func onWall(x, y float64) bool {
	return FEM2D.IsClose(y, 0) || FEM2D.IsClose(x, 0)
}

func (c *Aqueous) onInlet(x, y float64) bool {
	return x > c.Params.InletMinX && FEM2D.IsClose(y, c.Params.InletY)
}

func onCornea(x, y float64) bool { return FEM2D.IsClose(y, 0) }

func (c *Aqueous) onWarm(x, y float64) bool { return FEM2D.IsClose(y, c.Params.WarmY) }

func (c *Aqueous) locate(name string, fs *FEM2D.FunctionSpace, marker FEM2D.Marker) (nodes []int) {
	nodes = FEM2D.LocateDofsGeometrical(fs, marker)
	entry := c.logger.WithFields(log.Fields{
		"bc":    name,
		"nodes": len(nodes),
	})
	if len(nodes) == 0 {
		entry.Warn("boundary condition matches no dofs")
	} else {
		entry.Debug("boundary condition located")
	}
	return
}

// VelocityBCs returns no-slip on the walls followed by the inflow, which
// wins on shared dofs
func (c *Aqueous) VelocityBCs() []*FEM2D.DirichletBC {
	var (
		sp     = c.Params
		inflow = -sp.InflowRate / sp.InflowArea
	)
	return []*FEM2D.DirichletBC{
		FEM2D.NewDirichletBC("walls", c.V, c.locate("walls", c.V, onWall), 0, 0),
		FEM2D.NewDirichletBC("inflow", c.V, c.locate("inflow", c.V, c.onInlet), 0, inflow),
	}
}

func (c *Aqueous) TemperatureBCs() []*FEM2D.DirichletBC {
	sp := c.Params
	return []*FEM2D.DirichletBC{
		FEM2D.NewDirichletBC("cornea", c.TS, c.locate("cornea", c.TS, onCornea), sp.CorneaTemp),
		FEM2D.NewDirichletBC("warm", c.TS, c.locate("warm", c.TS, c.onWarm), sp.WarmTemp),
	}
}

func (c *Aqueous) FlowConstraints() (cons FEM2D.Constraints) {
	cons = make(FEM2D.Constraints)
	for _, bc := range c.VelocityBCs() {
		cons.Apply(bc, 0)
	}
	return
}

func (c *Aqueous) TemperatureConstraints() (cons FEM2D.Constraints) {
	cons = make(FEM2D.Constraints)
	for _, bc := range c.TemperatureBCs() {
		cons.Apply(bc, 0)
	}
	return
}
