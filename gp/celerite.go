package gp

import (
	"math"

	"github.com/lucasmaystre/lcfit/kern"
	"github.com/lucasmaystre/lcfit/ssm"
	"github.com/pkg/errors"
)

const celeriteLogSigma = 1.0

// celeriteBackend solves one-dimensional problems in linear time with a
// state-space Kalman smoother. It only knows the Matern-3/2 kernel.
type celeriteBackend struct{}

var _ Backend = celeriteBackend{}

func (celeriteBackend) Name() string {
	return Celerite
}

func (celeriteBackend) BuildKernel(kind string, metric float64, axis, ndim int) (Term, error) {
	if kind != Matern32 {
		return nil, errors.Wrapf(ErrUnsupported, "celerite only supports %s, got %q", Matern32, kind)
	}
	if ndim > 1 || axis != 0 {
		return nil, errors.Wrap(ErrUnsupported, "celerite cannot compute multi-dimensional GPs")
	}
	return &matern32Term{
		variance: math.Exp(2 * celeriteLogSigma),
		rho:      math.Exp(metric),
	}, nil
}

func (celeriteBackend) Sum(terms []Term) (Term, error) {
	if len(terms) != 1 {
		return nil, errors.Wrapf(ErrUnsupported, "celerite cannot sum %d kernels", len(terms))
	}
	return terms[0], nil
}

// CombineAmplitudeAndNoise multiplies the Matern-3/2 term by the real term
// exp(logAmp)·exp(-τ), and adds a jitter of variance exp(2·whiteNoise).
func (celeriteBackend) CombineAmplitudeAndNoise(kernel Term, logAmp, whiteNoise float64, _ bool) (Process, error) {
	t, ok := kernel.(*matern32Term)
	if !ok {
		return nil, errors.Wrapf(ErrUnsupported, "celerite cannot use kernel %T", kernel)
	}
	return &celeriteProcess{
		kernel: t.scaled(math.Exp(logAmp)),
		jitter: math.Exp(2 * whiteNoise),
	}, nil
}

// matern32Term is k(τ) = σ²(1 + √3τ/ρ) exp(-√3τ/ρ).
type matern32Term struct {
	variance float64
	rho      float64
}

func (t *matern32Term) Value(x1, x2 []float64) float64 {
	r := math.Sqrt(3) * math.Abs(x1[0]-x2[0]) / t.rho
	return t.variance * (1 + r) * math.Exp(-r)
}

// scaled returns the state-space form of a·exp(-τ)·k(τ). With b = √3/ρ and
// λ = b + 1, a·σ²(1 + bτ)exp(-λτ) splits into a Matern-3/2 part of rate λ and
// a Matern-1/2 part of scale 1/λ.
func (t *matern32Term) scaled(a float64) kern.Kernel {
	v := a * t.variance
	b := math.Sqrt(3) / t.rho
	lambda := b + 1
	w := b / lambda
	return kern.NewAdd(
		kern.NewMatern32Rate(v*w, lambda),
		kern.NewMatern12(v*(1-w), 1/lambda),
	)
}

type celeriteProcess struct {
	kernel kern.Kernel
	jitter float64
}

func (p *celeriteProcess) fit(x [][]float64, yerr, residual []float64) (*ssm.Process, error) {
	if err := checkResidual(x, yerr, residual); err != nil {
		return nil, err
	}
	proc := ssm.NewProcess(p.kernel, len(x))
	for i, row := range x {
		if len(row) != 1 {
			return nil, errors.Wrap(ErrUnsupported, "celerite cannot compute multi-dimensional GPs")
		}
		if err := proc.AddSample(row[0], residual[i], yerr[i]*yerr[i]+p.jitter); err != nil {
			return nil, err
		}
	}
	if err := proc.Fit(); err != nil {
		return nil, err
	}
	return proc, nil
}

// ComputeAndPredict returns the smoothed mean plus the jitter, which the
// predictive mean of celerite leaves out.
func (p *celeriteProcess) ComputeAndPredict(x [][]float64, yerr, residual []float64) ([]float64, error) {
	proc, err := p.fit(x, yerr, residual)
	if err != nil {
		return nil, err
	}
	mu, err := proc.Means()
	if err != nil {
		return nil, err
	}
	for i := range mu {
		mu[i] += p.jitter
	}
	return mu, nil
}

func (p *celeriteProcess) LogLikelihood(x [][]float64, yerr, residual []float64) (float64, error) {
	proc, err := p.fit(x, yerr, residual)
	if err != nil {
		return 0, err
	}
	return proc.LogLikelihood()
}
