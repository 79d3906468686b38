// Package ssm solves one-dimensional Gaussian-process regression in linear
// time by running a Kalman filter and a Rauch-Tung-Striebel smoother over the
// state-space representation of a kern.Kernel.
package ssm

import (
	"math"

	"github.com/lucasmaystre/lcfit/kern"
	"github.com/lucasmaystre/lcfit/utils"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/lapack/lapack64"
)

var (
	ErrNotChronological    = errors.New("observation not in chronological order")
	ErrNotPositiveDefinite = errors.New("predictive covariance is not positive definite")
	ErrNotFitted           = errors.New("process has not been fitted")
)

type Process struct {
	kernel kern.Kernel
	ts     []float64 // Samples' times.
	ys     []float64 // Observed values.
	rs     []float64 // Observation noise variances.
	ms     []float64 // Smoothed means.
	vs     []float64 // Smoothed variances.
	loglik float64
	fitted bool

	// State-space model variables.
	vecH   blas64.Vector       // Measurement vector.
	matsA  []blas64.General    // Transition matrices.
	matsQ  []blas64.Symmetric  // Noise covariance matrices.
	vecsMp []blas64.Vector     // Predictive means.
	matsPp []blas64.Symmetric  // Predictive covariances.
	matsU  []blas64.Triangular // Cholesky factors of predictive covariances.
	vecsMf []blas64.Vector     // Filtering means.
	matsPf []blas64.Symmetric  // Filtering covariances.
	vecsMs []blas64.Vector     // Smoothing means.
	matsPs []blas64.Symmetric  // Smoothing covariances.
}

func NewProcess(kernel kern.Kernel, capacity int) *Process {
	return &Process{
		kernel: kernel,
		ts:     make([]float64, 0, capacity),
		ys:     make([]float64, 0, capacity),
		rs:     make([]float64, 0, capacity),
		ms:     make([]float64, 0, capacity),
		vs:     make([]float64, 0, capacity),
		vecH:   kernel.MeasurementVec(),
		matsA:  make([]blas64.General, 0, capacity),
		matsQ:  make([]blas64.Symmetric, 0, capacity),
		vecsMp: make([]blas64.Vector, 0, capacity),
		matsPp: make([]blas64.Symmetric, 0, capacity),
		matsU:  make([]blas64.Triangular, 0, capacity),
		vecsMf: make([]blas64.Vector, 0, capacity),
		matsPf: make([]blas64.Symmetric, 0, capacity),
		vecsMs: make([]blas64.Vector, 0, capacity),
		matsPs: make([]blas64.Symmetric, 0, capacity),
	}
}

// AddSample appends an observation y at time t with noise variance r.
func (p *Process) AddSample(t, y, r float64) error {
	idx := len(p.ts)
	if idx > 0 && t < p.ts[idx-1] {
		return errors.Wrapf(ErrNotChronological, "t=%v after t=%v", t, p.ts[idx-1])
	}
	m := p.kernel.Order()
	p.ts = append(p.ts, t)
	p.ys = append(p.ys, y)
	p.rs = append(p.rs, r)
	p.ms = append(p.ms, 0.0)
	p.vs = append(p.vs, 0.0)
	p.vecsMp = append(p.vecsMp, p.kernel.StateMean(t))
	p.matsPp = append(p.matsPp, p.kernel.StateCov(t))
	p.matsU = append(p.matsU, blas64.Triangular{
		N:      m,
		Stride: m,
		Data:   make([]float64, m*m),
		Uplo:   blas.Upper,
		Diag:   blas.NonUnit,
	})
	p.vecsMf = append(p.vecsMf, p.kernel.StateMean(t))
	p.matsPf = append(p.matsPf, p.kernel.StateCov(t))
	p.vecsMs = append(p.vecsMs, p.kernel.StateMean(t))
	p.matsPs = append(p.matsPs, p.kernel.StateCov(t))

	// Compute transition and noise covariance matrices.
	if idx > 0 {
		delta := t - p.ts[idx-1]
		p.matsA = append(p.matsA, p.kernel.Transition(delta))
		p.matsQ = append(p.matsQ, p.kernel.NoiseCov(delta))
	}
	p.fitted = false
	return nil
}

// Kalman filter (forward pass). Accumulates the log marginal likelihood from
// the innovations.
func (p *Process) filter() error {
	m := p.kernel.Order()
	var eye = utils.Eye(m)

	// Temporary variables.
	k := blas64.Vector{N: m, Inc: 1, Data: make([]float64, m)}
	gen1 := blas64.General{
		Rows:   m,
		Cols:   m,
		Stride: m,
		Data:   make([]float64, m*m),
	}
	sym1 := blas64.Symmetric{
		N:      m,
		Stride: m,
		Data:   make([]float64, m*m),
		Uplo:   blas.Upper,
	}
	symAsGen := blas64.General{
		Rows:   m,
		Cols:   m,
		Stride: m,
		Data:   make([]float64, m*m),
	}

	p.loglik = 0.0
	for i := 0; i < len(p.ts); i++ {
		if i > 0 {
			// m_p[i] = dot(A[i-1], m_f[i-1])
			blas64.Gemv(blas.NoTrans,
				1.0, p.matsA[i-1], p.vecsMf[i-1], 0.0, p.vecsMp[i])

			// P_p[i] = dot(dot(A[i-1], P_f[i-1]), A[i-1].T) + Q[i-1]
			blas64.Symm(blas.Right, 1.0, p.matsPf[i-1], p.matsA[i-1], 0.0, gen1)
			symAsGen.Data = p.matsPp[i].Data
			copy(symAsGen.Data, p.matsQ[i-1].Data)
			blas64.Gemm(blas.NoTrans, blas.Trans,
				1.0, gen1, p.matsA[i-1], 1.0, symAsGen)
		}

		// U[i] = cholesky(P_p[i]) (upper triangular)
		copy(sym1.Data, p.matsPp[i].Data)
		if _, ok := lapack64.Potrf(sym1); !ok {
			return errors.Wrapf(ErrNotPositiveDefinite, "sample %d", i)
		}
		copy(p.matsU[i].Data, sym1.Data)

		// s = dot(dot(h, P_p[i]), h) + r[i],  k = dot(P_p[i], h) / s
		blas64.Symv(1.0, p.matsPp[i], p.vecH, 0.0, k)
		s := blas64.Dot(p.vecH, k) + p.rs[i]
		blas64.Scal(1.0/s, k)

		// v = y[i] - dot(h, m_p[i])
		v := p.ys[i] - blas64.Dot(p.vecH, p.vecsMp[i])
		p.loglik += -0.5 * (math.Log(2*math.Pi*s) + v*v/s)

		// m_f[i] = m_p[i] + k * v
		blas64.Copy(p.vecsMp[i], p.vecsMf[i])
		blas64.Axpy(v, k, p.vecsMf[i])

		// Z = I - np.outer(k, h)
		copy(gen1.Data, eye.Data)
		blas64.Ger(-1.0, k, p.vecH, gen1)

		// Z = dot(Z, U[i].T)
		blas64.Trmm(blas.Right, blas.Trans, 1.0, p.matsU[i], gen1)

		// P_f[i] = dot(Z, Z.T) + r[i] * outer(k, k)
		blas64.Syrk(blas.NoTrans, 1.0, gen1, 0.0, p.matsPf[i])
		blas64.Syr(p.rs[i], k, p.matsPf[i])
	}
	return nil
}

// Rauch-Tung-Striebel smoother (backward pass).
func (p *Process) smooth() {
	m := p.kernel.Order()
	// Temporary variables.
	vec1 := blas64.Vector{
		N:    m,
		Inc:  1,
		Data: make([]float64, m),
	}
	gen1 := blas64.General{
		Rows:   m,
		Cols:   m,
		Stride: m,
		Data:   make([]float64, m*m),
	}
	sym1 := blas64.Symmetric{
		N:      m,
		Stride: m,
		Data:   make([]float64, m*m),
		Uplo:   blas.Upper,
	}
	G := blas64.General{
		Rows:   m,
		Cols:   m,
		Stride: m,
		Data:   make([]float64, m*m),
	}
	symAsGen := blas64.General{
		Rows:   m,
		Cols:   m,
		Stride: m,
		Data:   make([]float64, m*m),
	}

	for i := len(p.ts) - 1; i >= 0; i-- {
		if i == len(p.ts)-1 {
			copy(p.vecsMs[i].Data, p.vecsMf[i].Data)
			copy(p.matsPs[i].Data, p.matsPf[i].Data)
		} else {
			// G = (dot(A[i], P_f[i]) \ U[i+1].T) \ U[i+1]
			blas64.Symm(blas.Right, 1.0, p.matsPf[i], p.matsA[i], 0.0, G)
			lapack64.Trtrs(blas.Trans, p.matsU[i+1], G)
			lapack64.Trtrs(blas.NoTrans, p.matsU[i+1], G)

			// m_s[i] = m_f[i] + dot(G.T, m_s[i+1] - m_p[i+1])
			blas64.Copy(p.vecsMs[i+1], vec1)
			blas64.Axpy(-1.0, p.vecsMp[i+1], vec1)
			blas64.Copy(p.vecsMf[i], p.vecsMs[i])
			blas64.Gemv(blas.Trans, 1.0, G, vec1, 1.0, p.vecsMs[i])

			// sym1 = P_s[i+1] - P_p[i+1]
			for k := 0; k < sym1.N; k++ {
				for j := k; j < sym1.N; j++ {
					sym1.Data[k*sym1.Stride+j] = p.matsPs[i+1].Data[k*p.matsPs[i+1].Stride+j] -
						p.matsPp[i+1].Data[k*p.matsPp[i+1].Stride+j]
				}
			}

			// P_s[i] = P_f[i] + dot(G.T, dot(sym1, G))
			blas64.Symm(blas.Left, 1.0, sym1, G, 0.0, gen1)
			symAsGen.Data = p.matsPs[i].Data
			copy(symAsGen.Data, p.matsPf[i].Data) // Only the upper triangle of P_s is read afterwards.
			blas64.Gemm(blas.Trans, blas.NoTrans, 1.0, G, gen1, 1.0, symAsGen)
		}

		// ms[i] = dot(h, m_s[i]),  vs[i] = dot(np.dot(h, P_s[i]), h)
		p.ms[i] = blas64.Dot(p.vecH, p.vecsMs[i])
		blas64.Symv(1.0, p.matsPs[i], p.vecH, 0.0, vec1)
		p.vs[i] = blas64.Dot(p.vecH, vec1)
	}
}

func (p *Process) Fit() error {
	if err := p.filter(); err != nil {
		return err
	}
	p.smooth()
	p.fitted = true
	return nil
}

// Means returns the posterior means of the latent process at the sample
// times.
func (p *Process) Means() ([]float64, error) {
	if !p.fitted {
		return nil, ErrNotFitted
	}
	out := make([]float64, len(p.ms))
	copy(out, p.ms)
	return out, nil
}

// Variances returns the posterior variances of the latent process at the
// sample times.
func (p *Process) Variances() ([]float64, error) {
	if !p.fitted {
		return nil, ErrNotFitted
	}
	out := make([]float64, len(p.vs))
	copy(out, p.vs)
	return out, nil
}

// LogLikelihood returns the log marginal likelihood of the observations.
func (p *Process) LogLikelihood() (float64, error) {
	if !p.fitted {
		return 0, ErrNotFitted
	}
	return p.loglik, nil
}
