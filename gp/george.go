package gp

import (
	"math"

	"github.com/lucasmaystre/lcfit/kernels"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// georgeBackend solves with a dense Cholesky factorization. The white-noise
// coefficient is a log-variance.
type georgeBackend struct{}

var _ Backend = georgeBackend{}

func (georgeBackend) Name() string {
	return George
}

func (georgeBackend) BuildKernel(kind string, metric float64, axis, ndim int) (Term, error) {
	return denseKernel(kind, metric, axis, ndim)
}

func (georgeBackend) Sum(terms []Term) (Term, error) {
	return denseSum(terms)
}

func (georgeBackend) CombineAmplitudeAndNoise(kernel Term, logAmp, whiteNoise float64, _ bool) (Process, error) {
	return &georgeProcess{
		kernel: kernels.NewProduct(kernels.NewConstant(math.Exp(logAmp)), kernel),
		noise:  math.Exp(whiteNoise),
	}, nil
}

type georgeProcess struct {
	kernel Term
	noise  float64
}

// factorize returns the Gram matrix and the Cholesky factor of the Gram
// matrix plus noise.
func (p *georgeProcess) factorize(x [][]float64, yerr []float64) (*mat.SymDense, *mat.Cholesky, error) {
	K := kernels.Gram(p.kernel, x)
	C := mat.NewSymDense(len(x), nil)
	C.CopySym(K)
	for i, e := range yerr {
		C.SetSym(i, i, C.At(i, i)+e*e+p.noise)
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(C); !ok {
		return nil, nil, ErrNotPositive
	}
	return K, &chol, nil
}

func (p *georgeProcess) ComputeAndPredict(x [][]float64, yerr, residual []float64) ([]float64, error) {
	if err := checkResidual(x, yerr, residual); err != nil {
		return nil, err
	}
	K, chol, err := p.factorize(x, yerr)
	if err != nil {
		return nil, err
	}
	var alpha, mu mat.VecDense
	if err := chol.SolveVecTo(&alpha, mat.NewVecDense(len(residual), residual)); err != nil {
		return nil, errors.Wrap(err, "unable to solve")
	}
	mu.MulVec(K, &alpha)
	return mu.RawVector().Data, nil
}

// LogLikelihood returns -Inf, without error, when the covariance cannot be
// factorized.
func (p *georgeProcess) LogLikelihood(x [][]float64, yerr, residual []float64) (float64, error) {
	if err := checkResidual(x, yerr, residual); err != nil {
		return 0, err
	}
	_, chol, err := p.factorize(x, yerr)
	if errors.Is(err, ErrNotPositive) {
		return math.Inf(-1), nil
	}
	if err != nil {
		return 0, err
	}
	r := mat.NewVecDense(len(residual), residual)
	var alpha mat.VecDense
	if err := chol.SolveVecTo(&alpha, r); err != nil {
		return math.Inf(-1), nil
	}
	n := float64(len(residual))
	return -0.5*mat.Dot(r, &alpha) - 0.5*chol.LogDet() - 0.5*n*math.Log(2*math.Pi), nil
}
