package utils

import (
	"errors"
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var ErrNotConverged = errors.New("linear solver did not converge")

// LinearSolver solves A x = b for an assembled system
type LinearSolver interface {
	Solve(A DOK, b []float64) (x []float64, err error)
	Name() string
}

func checkSystem(A DOK, b []float64) (n int, err error) {
	var (
		nr, nc = A.Dims()
	)
	if nr != nc {
		err = fmt.Errorf("system matrix is not square: %d x %d", nr, nc)
		return
	}
	if len(b) != nr {
		err = fmt.Errorf("rhs length %d does not match system size %d", len(b), nr)
		return
	}
	n = nr
	return
}

// DenseLU factors the system with partial pivoting through gonum. An
// ill-conditioned system is solved anyway and reported at warn level, a
// singular one is an error.
type DenseLU struct {
	Logger log.FieldLogger
}

func (s DenseLU) Name() string { return "dense-lu" }

func (s DenseLU) Solve(A DOK, b []float64) (x []float64, err error) {
	var (
		n  int
		lu mat.LU
	)
	if n, err = checkSystem(A, b); err != nil {
		return
	}
	lu.Factorize(A.ToDense())
	xv := mat.NewVecDense(n, nil)
	if err = lu.SolveVecTo(xv, false, mat.NewVecDense(n, b)); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			err = fmt.Errorf("LU solve of %d unknowns: %w", n, err)
			return
		}
		if s.Logger != nil {
			s.Logger.WithField("condition", float64(cond)).Warn("system is ill-conditioned")
		}
		err = nil
	}
	x = make([]float64, n)
	copy(x, xv.RawVector().Data)
	return
}

type Preconditioner int

const (
	// Jacobi scales each row by its diagonal, rows with a zero diagonal are
	// left unscaled
	Jacobi Preconditioner = iota
	// ILU applies an ILU0 factorisation of the system
	ILU
)

func (p Preconditioner) String() string {
	switch p {
	case Jacobi:
		return "jacobi"
	case ILU:
		return "ilu0"
	}
	return fmt.Sprintf("preconditioner(%d)", int(p))
}

// ParsePreconditioner maps a configuration name to a Preconditioner
func ParsePreconditioner(name string) (p Preconditioner, err error) {
	switch name {
	case "jacobi":
		p = Jacobi
	case "ilu0", "":
		p = ILU
	default:
		err = fmt.Errorf("unknown preconditioner %q, want jacobi or ilu0", name)
	}
	return
}

// GMRES is restarted GMRES(m), left preconditioned, on a CSR copy of the
// system. Tol is relative to the preconditioned right hand side.
type GMRES struct {
	Restart int
	MaxIt   int
	Tol     float64
	Precond Preconditioner
}

func NewGMRES() GMRES {
	return GMRES{Restart: 200, MaxIt: 20000, Tol: 1.e-12}
}

func (s GMRES) Name() string { return "gmres" }

// preconditioner returns M^-1 applied in place
func (s GMRES) preconditioner(A DOK) (msolve func(v []float64), err error) {
	switch s.Precond {
	case Jacobi:
		dinv := A.Diagonal()
		for i, d := range dinv {
			if d == 0 {
				dinv[i] = 1
			} else {
				dinv[i] = 1 / d
			}
		}
		msolve = func(v []float64) { floats.Mul(v, dinv) }
	case ILU:
		var f *ILU0
		if f, err = NewILU0(A); err != nil {
			return
		}
		msolve = f.SolveInPlace
	default:
		err = fmt.Errorf("gmres: unknown preconditioner %v", s.Precond)
	}
	return
}

func (s GMRES) Solve(A DOK, b []float64) (x []float64, err error) {
	var (
		n      int
		csr    CSR
		msolve func(v []float64)
		total  int
		m      = s.Restart
	)
	if n, err = checkSystem(A, b); err != nil {
		return
	}
	if m <= 0 || m > n {
		m = n
	}
	csr = A.ToCSR()
	if msolve, err = s.preconditioner(A); err != nil {
		return
	}
	apply := func(dst, v []float64) {
		csr.MulVecTo(dst, v)
		msolve(dst)
	}
	pb := make([]float64, n)
	copy(pb, b)
	msolve(pb)
	bnorm := Norm2(pb)
	x = make([]float64, n)
	if bnorm == 0 {
		return
	}

	var (
		r  = make([]float64, n)
		w  = make([]float64, n)
		V  = make([][]float64, m+1)
		H  = make([][]float64, m+1)
		cs = make([]float64, m)
		sn = make([]float64, m)
		g  = make([]float64, m+1)
	)
	for i := range V {
		V[i] = make([]float64, n)
		H[i] = make([]float64, m)
	}
	var resid float64
	for total < s.MaxIt {
		apply(r, x)
		floats.SubTo(r, pb, r)
		beta := Norm2(r)
		if resid = beta / bnorm; resid <= s.Tol {
			return
		}
		for i := range g {
			g[i] = 0
		}
		g[0] = beta
		floats.ScaleTo(V[0], 1/beta, r)
		k := 0
		for k < m && total < s.MaxIt {
			apply(w, V[k])
			for i := 0; i <= k; i++ {
				H[i][k] = floats.Dot(w, V[i])
				floats.AddScaled(w, -H[i][k], V[i])
			}
			hNext := Norm2(w)
			if hNext != 0 {
				floats.ScaleTo(V[k+1], 1/hNext, w)
			}
			for i := 0; i < k; i++ {
				tmp := cs[i]*H[i][k] + sn[i]*H[i+1][k]
				H[i+1][k] = -sn[i]*H[i][k] + cs[i]*H[i+1][k]
				H[i][k] = tmp
			}
			denom := math.Hypot(H[k][k], hNext)
			if denom == 0 {
				err = fmt.Errorf("gmres breakdown at iteration %d: %w", total, ErrNotConverged)
				return
			}
			cs[k], sn[k] = H[k][k]/denom, hNext/denom
			H[k][k] = denom
			H[k+1][k] = 0
			g[k+1] = -sn[k] * g[k]
			g[k] = cs[k] * g[k]
			k++
			total++
			resid = math.Abs(g[k]) / bnorm
			if resid <= s.Tol || hNext == 0 {
				break
			}
		}
		// Back substitution on the k x k upper triangle
		y := make([]float64, k)
		for i := k - 1; i >= 0; i-- {
			sum := g[i]
			for j := i + 1; j < k; j++ {
				sum -= H[i][j] * y[j]
			}
			y[i] = sum / H[i][i]
		}
		for i := 0; i < k; i++ {
			floats.AddScaled(x, y[i], V[i])
		}
		if resid <= s.Tol {
			return
		}
	}
	err = fmt.Errorf("gmres(%v): %d iterations, relative residual %8.3e: %w",
		s.Precond, total, resid, ErrNotConverged)
	return
}
