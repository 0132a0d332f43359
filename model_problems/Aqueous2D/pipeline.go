package Aqueous2D

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/aqueous/FEM2D"
	"github.com/notargets/aqueous/InputParameters"
	"github.com/notargets/aqueous/readfiles"
)

// LoadMesh converts the Gmsh mesh to XDMF, keeping the first triangle and
// line blocks, and reads the triangle grid back as the solver mesh
func LoadMesh(sp *InputParameters.SolverParameters, logger log.FieldLogger) (m *FEM2D.Mesh, err error) {
	msh, err := readfiles.ReadGmsh(sp.MeshFile)
	if err != nil {
		return
	}
	if _, err = readfiles.ConvertToXDMF(msh, sp.XDMFFile); err != nil {
		return nil, fmt.Errorf("converting %s: %w", sp.MeshFile, err)
	}
	xm, err := readfiles.ReadXDMFMesh(sp.XDMFFile, readfiles.GridName)
	if err != nil {
		return
	}
	if m, err = FEM2D.NewMesh(xm.Points, xm.Triangles); err != nil {
		return nil, fmt.Errorf("%s: %w", sp.XDMFFile, err)
	}
	logger.WithFields(log.Fields{
		"msh":       sp.MeshFile,
		"xdmf":      sp.XDMFFile,
		"vertices":  m.Nv,
		"triangles": m.K,
		"facets":    len(xm.Lines),
	}).Info("mesh loaded")
	return
}

// WriteResults writes the mesh with u and T at its vertices, overwriting the file
func (c *Aqueous) WriteResults(filename string) (err error) {
	xm := &readfiles.XDMFMesh{
		Points:    c.Mesh.Points(),
		Triangles: c.Mesh.Triangles(),
	}
	return readfiles.WriteXDMFResults(filename, xm,
		readfiles.NodalField{Name: c.U.Name, Components: 2, Values: c.U.VertexValues()},
		readfiles.NodalField{Name: c.T.Name, Components: 1, Values: c.T.VertexValues()},
	)
}

// Run is the whole case: load the mesh, solve temperature then flow, write
// the results and report the diagnostics
func Run(sp *InputParameters.SolverParameters, logger log.FieldLogger) (d Diagnostics, err error) {
	var (
		m *FEM2D.Mesh
		c *Aqueous
	)
	if logger == nil {
		logger = log.StandardLogger()
	}
	if m, err = LoadMesh(sp, logger); err != nil {
		return
	}
	if c, err = NewAqueous(sp, m, logger); err != nil {
		return
	}
	if err = c.Solve(); err != nil {
		return
	}
	if err = c.WriteResults(sp.ResultsFile); err != nil {
		return
	}
	d = c.Diagnostics()
	logger.WithFields(log.Fields{
		"results":               sp.ResultsFile,
		"mean_chamber_pressure": d.MeanChamberPressure,
		"mean_tm_speed":         d.MeanTMSpeed,
		"max_speed":             c.MaxSpeed(),
		"T_min":                 floats.Min(c.T.Values),
		"T_max":                 floats.Max(c.T.Values),
	}).Info("case complete")
	return
}

// MaxSpeed returns the largest nodal velocity magnitude
func (c *Aqueous) MaxSpeed() (vmax float64) {
	for n := 0; n < c.V.NumNodes; n++ {
		ux, uy := c.U.Values[c.V.Dof(n, 0)], c.U.Values[c.V.Dof(n, 1)]
		if s := ux*ux + uy*uy; s > vmax {
			vmax = s
		}
	}
	return math.Sqrt(vmax)
}
