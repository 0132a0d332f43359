package utils

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

func ConstArray(N int, val float64) (v []float64) {
	v = make([]float64, N)
	for i := range v {
		v[i] = val
	}
	return
}

// Logspace returns N values spaced evenly in log10 between 10^lo and 10^hi,
// endpoints included.
func Logspace(lo, hi float64, N int) (v []float64) {
	if N <= 0 {
		return nil
	}
	v = make([]float64, N)
	if N == 1 {
		v[0] = math.Pow(10, lo)
		return
	}
	floats.Span(v, lo, hi)
	for i, e := range v {
		v[i] = math.Pow(10, e)
	}
	return
}

// Linspace returns N values spaced evenly between lo and hi, endpoints included
func Linspace(lo, hi float64, N int) (v []float64) {
	if N <= 0 {
		return nil
	}
	v = make([]float64, N)
	if N == 1 {
		v[0] = lo
		return
	}
	floats.Span(v, lo, hi)
	return
}

// Norm2 is the Euclidean norm
func Norm2(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	return floats.Norm(v, 2)
}

func CheckFinite(name string, vals ...float64) (err error) {
	for i, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			err = fmt.Errorf("%s[%d] is not finite: %v", name, i, v)
			return
		}
	}
	return
}
