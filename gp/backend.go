package gp

import (
	"github.com/lucasmaystre/lcfit/kernels"
	"github.com/pkg/errors"
)

// Backend names.
const (
	George   = "george"
	Celerite = "celerite"
	TinyGP   = "tinygp"
)

// Kernel types.
const (
	Matern32          = "Matern32"
	ExpSquared        = "ExpSquared"
	RationalQuadratic = "RationalQuadratic"
	Exp               = "Exp"
)

// rqAlpha is the shape parameter of every RationalQuadratic kernel.
const rqAlpha = 1.0

// Term is a kernel built by a backend. Every backend can evaluate its terms
// pointwise; only the backend that built a term knows how to solve with it.
type Term = kernels.Kernel

// Backend assembles GP kernels and processes for one numerical library.
type Backend interface {
	Name() string
	// BuildKernel returns the kernel of type kind with the given metric,
	// acting on input axis axis out of ndim.
	BuildKernel(kind string, metric float64, axis, ndim int) (Term, error)
	Sum(terms []Term) (Term, error)
	// CombineAmplitudeAndNoise scales kernel by exp(logAmp) and attaches the
	// backend's white-noise convention.
	CombineAmplitudeAndNoise(kernel Term, logAmp, whiteNoise float64, fitWhiteNoise bool) (Process, error)
}

// Process is a GP ready to be conditioned on residuals. x holds one input
// point per row; yerr are the per-point measurement uncertainties.
type Process interface {
	ComputeAndPredict(x [][]float64, yerr, residual []float64) ([]float64, error)
	LogLikelihood(x [][]float64, yerr, residual []float64) (float64, error)
}

func NewBackend(name string) (Backend, error) {
	switch name {
	case George:
		return georgeBackend{}, nil
	case Celerite:
		return celeriteBackend{}, nil
	case TinyGP:
		return tinygpBackend{}, nil
	}
	return nil, errors.Wrapf(ErrUnknownBackend, "%q", name)
}

// denseKernel builds the kernels shared by the dense backends.
func denseKernel(kind string, metric float64, axis, ndim int) (Term, error) {
	if axis < 0 || axis >= ndim {
		return nil, errors.Wrapf(ErrShape, "axis %d with ndim=%d", axis, ndim)
	}
	switch kind {
	case Matern32:
		return kernels.NewMatern32(metric, axis), nil
	case ExpSquared:
		return kernels.NewExpSquared(metric, axis), nil
	case RationalQuadratic:
		return kernels.NewRationalQuadratic(rqAlpha, metric, axis), nil
	case Exp:
		return kernels.NewExp(metric, axis), nil
	}
	return nil, errors.Wrapf(ErrUnknownKernel, "%q", kind)
}

func denseSum(terms []Term) (Term, error) {
	switch len(terms) {
	case 0:
		return nil, errors.Wrap(ErrShape, "no kernel to sum")
	case 1:
		return terms[0], nil
	}
	return kernels.NewSum(terms...), nil
}

func checkResidual(x [][]float64, yerr, residual []float64) error {
	if len(yerr) != len(x) || len(residual) != len(x) {
		return errors.Wrapf(ErrShape, "%d inputs, %d uncertainties, %d residuals", len(x), len(yerr), len(residual))
	}
	return nil
}
