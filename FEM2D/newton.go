package FEM2D

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/aqueous/utils"
)

var ErrNotConverged = errors.New("newton solver did not converge")

// NonlinearProblem is F(x) = J(x) x - b(x) = 0 with Dirichlet constraints.
// Assemble returns the Jacobian and load evaluated at x without constraints
// applied.
type NonlinearProblem interface {
	Assemble(x []float64) (J utils.DOK, b []float64, err error)
	Constraints() Constraints
	Size() int
}

type NewtonSolver struct {
	Rtol, Atol float64
	MaxIt      int
	Linear     utils.LinearSolver
	Logger     log.FieldLogger
}

func NewNewtonSolver(logger log.FieldLogger) *NewtonSolver {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &NewtonSolver{
		Rtol:   1.e-8,
		Atol:   1.e-10,
		MaxIt:  50,
		Linear: utils.DenseLU{Logger: logger},
		Logger: logger,
	}
}

// residual returns F = J x - b with constrained rows replaced by x_i - g_i
func residual(J utils.DOK, b, x []float64, cons Constraints) (F []float64) {
	F = J.MulVec(x)
	floats.Sub(F, b)
	for i, g := range cons {
		F[i] = x[i] - g
	}
	return
}

// Solve iterates on x in place. It converges when |F| <= Atol, when
// |F|/|F0| <= Rtol, or when the last update satisfies |dx| <= Rtol |x|.
func (ns *NewtonSolver) Solve(problem NonlinearProblem, x []float64) (iterations int, err error) {
	var (
		n     = problem.Size()
		cons  = problem.Constraints()
		rows  = cons.Rows()
		r0    float64
		dxn   float64
		J     utils.DOK
		b, dx []float64
	)
	if len(x) != n {
		err = fmt.Errorf("solution vector length %d, problem size %d", len(x), n)
		return
	}
	for it := 0; ; it++ {
		if J, b, err = problem.Assemble(x); err != nil {
			return
		}
		F := residual(J, b, x, cons)
		rn := utils.Norm2(F)
		if err = utils.CheckFinite("residual norm", rn); err != nil {
			err = fmt.Errorf("newton iteration %d: %w", it, err)
			return
		}
		if it == 0 {
			r0 = rn
		}
		ns.Logger.WithFields(log.Fields{
			"iteration": it,
			"residual":  rn,
			"relative":  relative(rn, r0),
		}).Debug("newton")
		if rn <= ns.Atol || relative(rn, r0) <= ns.Rtol ||
			(it > 0 && dxn <= ns.Rtol*utils.Norm2(x)) {
			iterations = it
			ns.Logger.WithFields(log.Fields{
				"iterations": it,
				"residual":   rn,
				"solver":     ns.Linear.Name(),
			}).Info("newton converged")
			return
		}
		if it >= ns.MaxIt {
			iterations = it
			err = fmt.Errorf("%d iterations, residual %8.3e: %w", it, rn, ErrNotConverged)
			return
		}
		floats.Scale(-1, F)
		if dx, err = ns.Linear.Solve(J.ReplaceRows(rows), F); err != nil {
			err = fmt.Errorf("newton iteration %d: %w", it, err)
			return
		}
		floats.Add(x, dx)
		dxn = utils.Norm2(dx)
	}
}

func relative(rn, r0 float64) float64 {
	if r0 == 0 {
		return 0
	}
	return rn / r0
}
