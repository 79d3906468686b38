package gp

import (
	"math"

	"github.com/lucasmaystre/lcfit/kernels"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/lapack/lapack64"
)

// tinygpBackend solves with LAPACK routines on raw blas64 storage. The
// white-noise coefficient is a standard deviation.
type tinygpBackend struct{}

var _ Backend = tinygpBackend{}

func (tinygpBackend) Name() string {
	return TinyGP
}

func (tinygpBackend) BuildKernel(kind string, metric float64, axis, ndim int) (Term, error) {
	return denseKernel(kind, metric, axis, ndim)
}

func (tinygpBackend) Sum(terms []Term) (Term, error) {
	return denseSum(terms)
}

func (tinygpBackend) CombineAmplitudeAndNoise(kernel Term, logAmp, whiteNoise float64, _ bool) (Process, error) {
	return &tinygpProcess{
		kernel: kernels.NewProduct(kernels.NewConstant(math.Exp(logAmp)), kernel),
		diag:   whiteNoise * whiteNoise,
	}, nil
}

type tinygpProcess struct {
	kernel Term
	diag   float64
}

// condition factorizes the noisy covariance and solves it against residual.
// It returns the noiseless covariance, the solution and the upper Cholesky
// factor.
func (p *tinygpProcess) condition(x [][]float64, yerr, residual []float64) (blas64.Symmetric, []float64, blas64.Triangular, error) {
	n := len(x)
	K := blas64.Symmetric{N: n, Stride: n, Data: make([]float64, n*n), Uplo: blas.Upper}
	C := blas64.Symmetric{N: n, Stride: n, Data: make([]float64, n*n), Uplo: blas.Upper}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := p.kernel.Value(x[i], x[j])
			K.Data[i*n+j] = v
			if i == j {
				v += yerr[i]*yerr[i] + p.diag
			}
			C.Data[i*n+j] = v
		}
	}
	U, ok := lapack64.Potrf(C)
	if !ok {
		return K, nil, U, ErrNotPositive
	}
	alpha := make([]float64, n)
	copy(alpha, residual)
	lapack64.Potrs(U, blas64.General{Rows: n, Cols: 1, Stride: 1, Data: alpha})
	return K, alpha, U, nil
}

func (p *tinygpProcess) ComputeAndPredict(x [][]float64, yerr, residual []float64) ([]float64, error) {
	if err := checkResidual(x, yerr, residual); err != nil {
		return nil, err
	}
	K, alpha, _, err := p.condition(x, yerr, residual)
	if err != nil {
		return nil, err
	}
	mu := blas64.Vector{N: len(x), Inc: 1, Data: make([]float64, len(x))}
	blas64.Symv(1.0, K, blas64.Vector{N: len(alpha), Inc: 1, Data: alpha}, 0.0, mu)
	return mu.Data, nil
}

func (p *tinygpProcess) LogLikelihood(x [][]float64, yerr, residual []float64) (float64, error) {
	if err := checkResidual(x, yerr, residual); err != nil {
		return 0, err
	}
	_, alpha, U, err := p.condition(x, yerr, residual)
	if err != nil {
		return 0, err
	}
	n := len(x)
	logdet := 0.0
	for i := 0; i < n; i++ {
		logdet += 2 * math.Log(U.Data[i*U.Stride+i])
	}
	r := blas64.Vector{N: n, Inc: 1, Data: residual}
	a := blas64.Vector{N: n, Inc: 1, Data: alpha}
	return -0.5*blas64.Dot(r, a) - 0.5*logdet - 0.5*float64(n)*math.Log(2*math.Pi), nil
}
