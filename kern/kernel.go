package kern

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
)

// Kernel is a stationary covariance function with an equivalent linear
// state-space (SDE) representation, so that a GP over sorted inputs can be
// solved in linear time by the Kalman filter in package ssm.
type Kernel interface {
	// Order of the SDE :math:`m`.
	Order() int

	// Covariance at lag :math:`\tau`.
	Cov(tau float64) float64

	// Prior mean of the state vector, :math:`\mathbf{m}_0(t)`.
	StateMean(t float64) blas64.Vector

	// Prior covariance of the state vector, :math:`\mathbf{P}_0(t)`.
	StateCov(t float64) blas64.Symmetric

	// Measurement vector :math:`\mathbf{h}`.
	MeasurementVec() blas64.Vector

	// Transition matrix :math:`\mathbf{A}` for a given time interval.
	Transition(delta float64) blas64.General

	// Noise covariance matrix :math:`\mathbf{Q}` for a given time interval.
	NoiseCov(delta float64) blas64.Symmetric
}

func symmetric(n int, data []float64) blas64.Symmetric {
	return blas64.Symmetric{
		N:      n,
		Stride: n,
		Data:   data,
		Uplo:   blas.Upper,
	}
}
