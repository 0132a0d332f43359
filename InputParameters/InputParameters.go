package InputParameters

import (
	"fmt"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML input file. Every field not present in
// the file keeps the value set by NewInputParameters.
type InputParameters struct {
	Title       string                `yaml:"Title"`
	Mesh        MeshParameters        `yaml:"Mesh"`
	Solver      SolverParameters      `yaml:"Solver"`
	Calibration CalibrationParameters `yaml:"Calibration"`
}

// MeshParameters describe the meridional chamber profile, in metres
type MeshParameters struct {
	Radius         float64 `yaml:"Radius"`         // limbal radius R
	Depth          float64 `yaml:"Depth"`          // chamber depth H
	TMThickness    float64 `yaml:"TMThickness"`    // TM band height
	Gap            float64 `yaml:"Gap"`            // iris-lens gap, inlet is 2*Gap long
	IrisInset      float64 `yaml:"IrisInset"`      // lens corner inset from R
	LensDrop       float64 `yaml:"LensDrop"`       // lens line is at Depth-LensDrop
	CorneaSag      float64 `yaml:"CorneaSag"`      // spline apex below y=0
	TMInset        float64 `yaml:"TMInset"`        // TM rectangle starts at R-TMInset
	TMOffset       float64 `yaml:"TMOffset"`       // TM rectangle bottom
	TMWidth        float64 `yaml:"TMWidth"`        // TM rectangle width
	ClassifyMargin float64 `yaml:"ClassifyMargin"` // centroid test is y < TMThickness+ClassifyMargin
	MeshSize       float64 `yaml:"MeshSize"`
	FineMeshSize   float64 `yaml:"FineMeshSize"`
	Output         string  `yaml:"Output"`
}

type SolverParameters struct {
	Model          string  `yaml:"Model"` // darcy or brinkman
	Density        float64 `yaml:"Density"`
	Viscosity      float64 `yaml:"Viscosity"`
	EffViscosity   float64 `yaml:"EffViscosity"` // Brinkman term, defaults to Viscosity
	Expansion      float64 `yaml:"Expansion"`
	Gravity        float64 `yaml:"Gravity"`
	Conductivity   float64 `yaml:"Conductivity"`
	HeatCapacity   float64 `yaml:"HeatCapacity"`
	Permeability   float64 `yaml:"Permeability"`
	RefTemperature float64 `yaml:"RefTemperature"`
	CorneaTemp     float64 `yaml:"CorneaTemp"`
	WarmTemp       float64 `yaml:"WarmTemp"`
	WarmY          float64 `yaml:"WarmY"`
	InflowRate     float64 `yaml:"InflowRate"`
	InflowArea     float64 `yaml:"InflowArea"`
	InletMinX      float64 `yaml:"InletMinX"`
	InletY         float64 `yaml:"InletY"`
	TMMinX         float64 `yaml:"TMMinX"`
	TMMaxY         float64 `yaml:"TMMaxY"`
	Rtol           float64 `yaml:"Rtol"`
	Atol           float64 `yaml:"Atol"`
	MaxIterations  int     `yaml:"MaxIterations"`
	EVP            float64 `yaml:"EVP"` // outlet pressure of the sparse formulation
	GMRESRestart   int     `yaml:"GMRESRestart"`
	GMRESMaxIt     int     `yaml:"GMRESMaxIt"`
	GMRESTol       float64 `yaml:"GMRESTol"`
	GMRESPrecond   string  `yaml:"GMRESPrecond"` // jacobi or ilu0
	MeshFile       string  `yaml:"MeshFile"`
	XDMFFile       string  `yaml:"XDMFFile"`
	ResultsFile    string  `yaml:"ResultsFile"`
	SketchResults  string  `yaml:"SketchResults"` // output of the sparse formulation
}

type CalibrationParameters struct {
	EVP         []float64 `yaml:"EVP"`
	InflowRate  float64   `yaml:"InflowRate"`
	LogPermMin  float64   `yaml:"LogPermMin"`
	LogPermMax  float64   `yaml:"LogPermMax"`
	NumPerms    int       `yaml:"NumPerms"`
	Viscosity   float64   `yaml:"Viscosity"`
	OutflowArea float64   `yaml:"OutflowArea"`
	TMThickness float64   `yaml:"TMThickness"`
	Output      string    `yaml:"Output"`
}

// NewInputParameters returns the parameters of the reference anterior
// segment case
func NewInputParameters() (ip *InputParameters) {
	ip = &InputParameters{
		Title: "anterior_segment",
		Mesh: MeshParameters{
			Radius:         6.4e-3,
			Depth:          3.0e-3,
			TMThickness:    2.0e-4,
			Gap:            5.0e-5,
			IrisInset:      0.5e-3,
			LensDrop:       0.4e-3,
			CorneaSag:      0.6e-3,
			TMInset:        0.3e-3,
			TMOffset:       0.05e-3,
			TMWidth:        0.25e-3,
			ClassifyMargin: 0.05e-3,
			MeshSize:       3.0e-4,
			FineMeshSize:   6.0e-5,
			Output:         "anterior_segment.msh",
		},
		Solver: SolverParameters{
			Model:          "darcy",
			Density:        1000.0,
			Viscosity:      0.0007,
			Expansion:      2.5e-4,
			Gravity:        9.81,
			Conductivity:   0.6,
			HeatCapacity:   4180.0,
			Permeability:   5e-14,
			RefTemperature: 310.0,
			CorneaTemp:     307.0,
			WarmTemp:       310.0,
			WarmY:          3.0e-3,
			InflowRate:     2.5e-9 / 60.0,
			InflowArea:     1e-6,
			InletMinX:      5.8e-3,
			InletY:         2.6e-3,
			TMMinX:         6.1e-3,
			TMMaxY:         3.0e-4,
			Rtol:           1e-8,
			Atol:           1e-10,
			MaxIterations:  25,
			EVP:            1500.0,
			GMRESRestart:   200,
			GMRESMaxIt:     20000,
			GMRESTol:       1e-8,
			GMRESPrecond:   "ilu0",
			MeshFile:       "anterior_segment.msh",
			XDMFFile:       "anterior_segment.xdmf",
			ResultsFile:    "results.xdmf",
			SketchResults:  "brinkman_results.xdmf",
		},
		Calibration: CalibrationParameters{
			EVP:         []float64{1200.0, 1500.0, 1800.0},
			InflowRate:  2.5e-9 / 60.0,
			LogPermMin:  -15,
			LogPermMax:  -13,
			NumPerms:    5,
			Viscosity:   7e-4,
			OutflowArea: 2e-4 * 2.5e-3,
			TMThickness: 2e-4,
			Output:      "goldmann_sweep.csv",
		},
	}
	return
}

func (ip *InputParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *InputParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	m := &ip.Mesh
	fmt.Printf("%8.5g\t\t= Radius\n", m.Radius)
	fmt.Printf("%8.5g\t\t= Depth\n", m.Depth)
	fmt.Printf("%8.5g\t\t= TM Thickness\n", m.TMThickness)
	fmt.Printf("%8.5g\t\t= Gap\n", m.Gap)
	fmt.Printf("%8.5g\t\t= Mesh Size\n", m.MeshSize)
	fmt.Printf("%8.5g\t\t= Fine Mesh Size\n", m.FineMeshSize)
	s := &ip.Solver
	fmt.Printf("[%s]\t\t\t= Model\n", s.Model)
	fmt.Printf("%8.5g\t\t= Viscosity\n", s.Viscosity)
	fmt.Printf("%8.5g\t\t= Permeability\n", s.Permeability)
	fmt.Printf("%8.5g\t\t= Inflow Rate\n", s.InflowRate)
	fmt.Printf("%8.5g\t\t= Newton Rtol\n", s.Rtol)
	fmt.Printf("[%d]\t\t\t\t= Max Iterations\n", s.MaxIterations)
	c := &ip.Calibration
	fmt.Printf("%v\t= EVP\n", c.EVP)
	fmt.Printf("[%g, %g] x %d\t= log10 Permeability Range\n", c.LogPermMin, c.LogPermMax, c.NumPerms)
	fmt.Printf("\"%s\"\t= Output\n", c.Output)
}

// EffectiveViscosity is the Brinkman viscosity, the fluid viscosity unless set
func (s *SolverParameters) EffectiveViscosity() float64 {
	if s.EffViscosity > 0 {
		return s.EffViscosity
	}
	return s.Viscosity
}
