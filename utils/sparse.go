package utils

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// DOK is the assembly target for element contributions. Entries are
// accumulated with Add and the matrix is frozen into CSR or dense storage for
// solving.
type DOK struct {
	M        *sparse.DOK
	readOnly *bool
	name     string
}

func NewDOK(nr, nc int) (R DOK) {
	ro := false
	R = DOK{
		sparse.NewDOK(nr, nc),
		&ro,
		"unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m DOK) Dims() (r, c int)    { return m.M.Dims() }
func (m DOK) At(i, j int) float64 { return m.M.At(i, j) }
func (m DOK) T() mat.Matrix       { return m.M.T() }
func (m DOK) NNZ() int            { return m.M.NNZ() }

func (m DOK) SetReadOnly(name ...string) DOK {
	if len(name) != 0 {
		m.name = name[0]
	}
	*m.readOnly = true
	return m
}

func (m DOK) IsReadOnly() bool { return *m.readOnly }

func (m DOK) checkWritable() {
	if *m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}

// Add accumulates val into entry (i,j)
func (m DOK) Add(i, j int, val float64) {
	m.checkWritable()
	if val == 0 {
		return
	}
	m.M.Set(i, j, m.M.At(i, j)+val)
}

func (m DOK) Set(i, j int, val float64) {
	m.checkWritable()
	m.M.Set(i, j, val)
}

// DoNonZero visits every stored entry
func (m DOK) DoNonZero(fn func(i, j int, v float64)) {
	m.M.DoNonZero(fn)
}

// ReplaceRows returns a copy of the matrix with each listed row replaced by
// the matching row of the identity.
func (m DOK) ReplaceRows(rows map[int]bool) (R DOK) {
	var (
		nr, nc = m.Dims()
	)
	R = NewDOK(nr, nc)
	m.M.DoNonZero(func(i, j int, v float64) {
		if rows[i] {
			return
		}
		R.M.Set(i, j, v)
	})
	for i := range rows {
		R.M.Set(i, i, 1)
	}
	return
}

// MulVec returns A*x
func (m DOK) MulVec(x []float64) (y []float64) {
	var (
		nr, nc = m.Dims()
	)
	if len(x) != nc {
		panic(fmt.Errorf("dimension mismatch: ncols = %d, len(x) = %d", nc, len(x)))
	}
	y = make([]float64, nr)
	m.M.DoNonZero(func(i, j int, v float64) {
		y[i] += v * x[j]
	})
	return
}

// Diagonal returns the main diagonal, zero where nothing is stored
func (m DOK) Diagonal() (d []float64) {
	var (
		nr, _ = m.Dims()
	)
	d = make([]float64, nr)
	m.M.DoNonZero(func(i, j int, v float64) {
		if i == j {
			d[i] = v
		}
	})
	return
}

func (m DOK) ToDense() (D *mat.Dense) {
	var (
		nr, nc = m.Dims()
	)
	D = mat.NewDense(nr, nc, nil)
	m.M.DoNonZero(func(i, j int, v float64) {
		D.Set(i, j, v)
	})
	return
}

func (m DOK) ToCSR() CSR {
	return CSR{
		M:    m.M.ToCSR(),
		name: m.name,
	}
}

type CSR struct {
	M    *sparse.CSR
	name string
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m CSR) Dims() (r, c int)    { return m.M.Dims() }
func (m CSR) At(i, j int) float64 { return m.M.At(i, j) }
func (m CSR) T() mat.Matrix       { return m.M.T() }
func (m CSR) NNZ() int            { return m.M.NNZ() }

// MulVecTo computes dst = A*x, dst is overwritten
func (m CSR) MulVecTo(dst, x []float64) {
	var (
		nr, nc = m.Dims()
	)
	if len(dst) != nr || len(x) != nc {
		panic(fmt.Errorf("dimension mismatch: %dx%d matrix, len(dst) = %d, len(x) = %d",
			nr, nc, len(dst), len(x)))
	}
	for i := range dst {
		dst[i] = 0
	}
	m.M.DoNonZero(func(i, j int, v float64) {
		dst[i] += v * x[j]
	})
}
