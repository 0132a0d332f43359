package utils

import (
	"fmt"
	"math"
	"sort"
)

// ILU0 is an incomplete LU factorisation that keeps the sparsity of A plus
// its diagonal. L has a unit diagonal and shares the storage of U. For a
// saddle point system ordered velocity first the zero pressure diagonal fills
// with a Schur complement estimate during the elimination.
type ILU0 struct {
	n      int
	rowPtr []int
	col    []int
	val    []float64
	diag   []int
	// Fixed counts pivots that came out zero and were replaced
	Fixed int
}

func NewILU0(A DOK) (f *ILU0, err error) {
	var (
		n, nc = A.Dims()
		rows  = make([][]int, n)
		vals  = make([]map[int]float64, n)
	)
	if n != nc {
		err = fmt.Errorf("ILU0 of a %d x %d matrix", n, nc)
		return
	}
	for i := range vals {
		vals[i] = map[int]float64{i: 0}
	}
	A.DoNonZero(func(i, j int, v float64) {
		vals[i][j] = v
	})
	f = &ILU0{n: n, rowPtr: make([]int, n+1), diag: make([]int, n)}
	for i := range rows {
		for j := range vals[i] {
			rows[i] = append(rows[i], j)
		}
		sort.Ints(rows[i])
		for _, j := range rows[i] {
			if j == i {
				f.diag[i] = len(f.col)
			}
			f.col = append(f.col, j)
			f.val = append(f.val, vals[i][j])
		}
		f.rowPtr[i+1] = len(f.col)
	}
	f.factor()
	return
}

func (f *ILU0) factor() {
	pos := make([]int, f.n)
	for i := range pos {
		pos[i] = -1
	}
	for i := 0; i < f.n; i++ {
		start, end := f.rowPtr[i], f.rowPtr[i+1]
		var scale float64
		for p := start; p < end; p++ {
			pos[f.col[p]] = p
			scale = math.Max(scale, math.Abs(f.val[p]))
		}
		for p := start; p < f.diag[i]; p++ {
			k := f.col[p]
			f.val[p] /= f.val[f.diag[k]]
			lik := f.val[p]
			for q := f.diag[k] + 1; q < f.rowPtr[k+1]; q++ {
				if t := pos[f.col[q]]; t >= 0 {
					f.val[t] -= lik * f.val[q]
				}
			}
		}
		if d := f.diag[i]; math.Abs(f.val[d]) <= 1.e-14*scale {
			if scale == 0 {
				scale = 1
			}
			f.val[d] = scale
			f.Fixed++
		}
		for p := start; p < end; p++ {
			pos[f.col[p]] = -1
		}
	}
}

// SolveInPlace overwrites v with (LU)^-1 v
func (f *ILU0) SolveInPlace(v []float64) {
	for i := 0; i < f.n; i++ {
		sum := v[i]
		for p := f.rowPtr[i]; p < f.diag[i]; p++ {
			sum -= f.val[p] * v[f.col[p]]
		}
		v[i] = sum
	}
	for i := f.n - 1; i >= 0; i-- {
		sum := v[i]
		for p := f.diag[i] + 1; p < f.rowPtr[i+1]; p++ {
			sum -= f.val[p] * v[f.col[p]]
		}
		v[i] = sum / f.val[f.diag[i]]
	}
}
