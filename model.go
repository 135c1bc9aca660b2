package hmc

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Model describes the target distribution being sampled. The variable names
// fix the dimensionality of the position space and become the column names
// of the emitted chain.
type Model interface {
	Variables() []string
}

// GradientOracle computes the gradient and value of the log-density of the
// target distribution at a position. Implementations must be deterministic
// for a fixed position.
//
// A Model that also satisfies GradientOracle can be used directly as a
// sampling target without a separate oracle.
type GradientOracle interface {
	GradientLogPDF(pos []float64) (grad []float64, logp float64, err error)
}

// JointGaussian is a multivariate normal target distribution with named
// variables. It satisfies both Model and GradientOracle, making it a
// self-contained sampling target.
type JointGaussian struct {
	vars []string
	mean []float64
	cov  *mat.SymDense

	chol    mat.Cholesky
	logNorm float64 // logdet Σ + D·log(2π), fixed per distribution
}

// NewJointGaussian builds a multivariate normal target. The covariance must
// be symmetric positive definite and its order must match the number of
// variables and the mean length.
func NewJointGaussian(variables []string, mean []float64, cov *mat.SymDense) (*JointGaussian, error) {
	d := len(variables)
	if d == 0 {
		return nil, fmt.Errorf("joint gaussian needs at least one variable")
	}
	seen := make(map[string]bool, d)
	for _, v := range variables {
		if seen[v] {
			return nil, fmt.Errorf("variable %q occurs more than once", v)
		}
		seen[v] = true
	}
	if len(mean) != d {
		return nil, fmt.Errorf("mean has %d entries, want %d", len(mean), d)
	}
	if n := cov.SymmetricDim(); n != d {
		return nil, fmt.Errorf("covariance is %dx%d, want %dx%d", n, n, d, d)
	}

	g := &JointGaussian{
		vars: append([]string(nil), variables...),
		mean: append([]float64(nil), mean...),
		cov:  mat.NewSymDense(d, nil),
	}
	g.cov.CopySym(cov)

	if ok := g.chol.Factorize(g.cov); !ok {
		return nil, fmt.Errorf("covariance is not positive definite")
	}
	g.logNorm = g.chol.LogDet() + float64(d)*math.Log(2*math.Pi)
	return g, nil
}

// Variables returns the ordered variable names.
func (g *JointGaussian) Variables() []string {
	return append([]string(nil), g.vars...)
}

// Mean returns a copy of the distribution mean.
func (g *JointGaussian) Mean() []float64 {
	return append([]float64(nil), g.mean...)
}

// Covariance returns a copy of the distribution covariance.
func (g *JointGaussian) Covariance() *mat.SymDense {
	c := mat.NewSymDense(len(g.vars), nil)
	c.CopySym(g.cov)
	return c
}

// GradientLogPDF evaluates the log-density and its gradient at pos:
//
//	logp = -0.5·[(x-μ)ᵀΣ⁻¹(x-μ) + logdet Σ + D·log 2π]
//	grad = -Σ⁻¹(x-μ)
func (g *JointGaussian) GradientLogPDF(pos []float64) ([]float64, float64, error) {
	d := len(g.vars)
	if len(pos) != d {
		return nil, 0, fmt.Errorf("position has %d entries, model has %d variables", len(pos), d)
	}

	diff := mat.NewVecDense(d, nil)
	for i := 0; i < d; i++ {
		diff.SetVec(i, pos[i]-g.mean[i])
	}

	var sol mat.VecDense
	if err := g.chol.SolveVecTo(&sol, diff); err != nil {
		return nil, 0, fmt.Errorf("solving Σ⁻¹(x-μ): %w", err)
	}

	grad := make([]float64, d)
	quad := 0.0
	for i := 0; i < d; i++ {
		grad[i] = -sol.AtVec(i)
		quad += diff.AtVec(i) * sol.AtVec(i)
	}
	logp := -0.5 * (quad + g.logNorm)
	return grad, logp, nil
}
