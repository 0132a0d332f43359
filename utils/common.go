package utils

import "math"

const (
	NODETOL = 1.e-12
	// Default tolerances of numpy.isclose, used by the geometric predicates
	ISCLOSE_RTOL = 1.e-5
	ISCLOSE_ATOL = 1.e-8
)

// IsClose reports |a-b| <= atol + rtol*|b|, the asymmetric numpy test
func IsClose(a, b float64) bool {
	return IsCloseTol(a, b, ISCLOSE_RTOL, ISCLOSE_ATOL)
}

func IsCloseTol(a, b, rtol, atol float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return false
	}
	return math.Abs(a-b) <= atol+rtol*math.Abs(b)
}
