// Package gp models correlated noise in a light curve with a Gaussian
// process. The GP is conditioned on the residual between the observed flux
// and a fitted model, one channel at a time, through an interchangeable
// numerical Backend.
package gp

import (
	"github.com/lucasmaystre/lcfit/logging"
	"github.com/lucasmaystre/lcfit/models"
	"github.com/lucasmaystre/lcfit/params"
	"github.com/lucasmaystre/lcfit/utils"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

const inputTime = "time"

type Config struct {
	// KernelTypes lists one kernel per input dimension; the kernels add up.
	KernelTypes []string
	// KernelInputs names the input axis of each dimension. Only "time" is
	// known.
	KernelInputs []string
	Backend      string
	NChan        int
	// Normalize standardizes each input axis.
	Normalize bool
}

// Model is scored through Predict and LogLikelihood. It has no Eval, so it
// does not satisfy models.Model and cannot be composed.
type Model struct {
	models.Base
	cfg     Config
	backend Backend
	unc     []float64
	inputs  [][]float64 // One row per point, one column per input axis.
	coeffs  Coeffs
}

// NewModel builds a GP over the observed time, flux and uncertainties. flux
// and unc hold NChan channel-major blocks of len(time) values.
func NewModel(store *params.Store, cfg Config, time, flux, unc []float64, opts ...models.Option) (*Model, error) {
	if cfg.NChan == 0 {
		cfg.NChan = 1
	}
	if len(cfg.KernelTypes) == 0 {
		return nil, errors.Wrap(ErrShape, "no kernel")
	}
	if len(cfg.KernelInputs) == 0 {
		cfg.KernelInputs = []string{inputTime}
	}
	backend, err := NewBackend(cfg.Backend)
	if err != nil {
		return nil, err
	}
	opts = append([]models.Option{models.WithName("GP")}, opts...)
	base, err := models.NewBase(store, opts...)
	if err != nil {
		return nil, err
	}
	m := &Model{Base: base, cfg: cfg, backend: backend}
	if err := m.SetTime(time); err != nil {
		return nil, err
	}
	if err := m.SetFlux(flux); err != nil {
		return nil, err
	}
	m.unc = append([]float64(nil), unc...)
	if err := m.checkLengths(nil); err != nil {
		return nil, err
	}
	if err := m.parseCoeffs(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Model) checkLengths(fit []float64) error {
	n := len(m.Time()) * m.cfg.NChan
	if len(m.Flux()) != n || len(m.unc) != n {
		return errors.Wrapf(ErrShape, "flux and unc need %d values, got %d and %d", n, len(m.Flux()), len(m.unc))
	}
	if fit != nil && len(fit) != n {
		return errors.Wrapf(ErrShape, "fit needs %d values, got %d", n, len(fit))
	}
	return nil
}

func (m *Model) parseCoeffs() error {
	c, err := parseCoeffs(m.Parameters(), m.cfg.KernelTypes, m.cfg.NChan)
	if err != nil {
		return err
	}
	m.coeffs = c
	m.Logger().V(logging.TRACE).Info("Parsed GP coefficients", "coeffs", c.Map(), "fitWhiteNoise", c.FitWhiteNoise)
	return nil
}

func (m *Model) Coeffs() Coeffs {
	return m.coeffs
}

func (m *Model) Backend() Backend {
	return m.backend
}

// SetInputs gathers the kernel inputs, standardizing each axis when
// normalize is set.
func (m *Model) SetInputs(normalize bool) error {
	time := m.Time()
	axes := make([][]float64, len(m.cfg.KernelInputs))
	for i, name := range m.cfg.KernelInputs {
		switch name {
		case inputTime:
			axes[i] = time
		default:
			return errors.Wrapf(ErrUnknownInput, "%q", name)
		}
		if normalize {
			axes[i] = utils.Standardize(axes[i])
		}
	}
	inputs := make([][]float64, len(time))
	for j := range inputs {
		row := make([]float64, len(axes))
		for i, axis := range axes {
			row[i] = axis[j]
		}
		inputs[j] = row
	}
	m.inputs = inputs
	return nil
}

// Inputs returns the kernel inputs, computing them on first use.
func (m *Model) Inputs() ([][]float64, error) {
	if m.inputs == nil {
		if err := m.SetInputs(m.cfg.Normalize); err != nil {
			return nil, err
		}
	}
	return m.inputs, nil
}

// setup assembles the process of channel c.
func (m *Model) setup(c int) (Process, error) {
	ndim := len(m.cfg.KernelTypes)
	terms := make([]Term, ndim)
	for k, kind := range m.cfg.KernelTypes {
		if k >= len(m.cfg.KernelInputs) {
			return nil, errors.Wrapf(ErrShape, "kernel %d has no input axis", k)
		}
		t, err := m.backend.BuildKernel(kind, Metric(m.coeffs.Metrics[k][c]), k, ndim)
		if err != nil {
			return nil, err
		}
		terms[k] = t
	}
	sum, err := m.backend.Sum(terms)
	if err != nil {
		return nil, err
	}
	return m.backend.CombineAmplitudeAndNoise(sum, m.coeffs.Amp[c], m.coeffs.WhiteNoise[c], m.coeffs.FitWhiteNoise)
}

// channel returns the half-open range of channel c in flux-sized slices.
func (m *Model) channel(c int) (lo, hi int) {
	n := len(m.Time())
	return n * c, n * (c + 1)
}

// Predict conditions the GP of each channel on flux - fit and returns the
// predictive means, channel-major.
func (m *Model) Predict(fit []float64) ([]float64, error) {
	if err := m.checkLengths(fit); err != nil {
		return nil, err
	}
	x, err := m.Inputs()
	if err != nil {
		return nil, err
	}
	flux := m.Flux()
	out := make([]float64, 0, len(flux))
	for c := 0; c < m.cfg.NChan; c++ {
		lo, hi := m.channel(c)
		proc, err := m.setup(c)
		if err != nil {
			return nil, errors.Wrapf(err, "channel %d", c)
		}
		mu, err := proc.ComputeAndPredict(x, m.unc[lo:hi], residual(flux[lo:hi], fit[lo:hi]))
		if err != nil {
			return nil, errors.Wrapf(err, "channel %d", c)
		}
		out = append(out, mu...)
	}
	return out, nil
}

// LogLikelihood adopts unc as the measurement uncertainties and returns the
// log-likelihood of flux - fit summed over channels.
func (m *Model) LogLikelihood(fit, unc []float64) (float64, error) {
	if n := len(m.Time()) * m.cfg.NChan; len(unc) != n {
		return 0, errors.Wrapf(ErrShape, "unc needs %d values, got %d", n, len(unc))
	}
	if err := m.checkLengths(fit); err != nil {
		return 0, err
	}
	m.unc = append([]float64(nil), unc...)
	x, err := m.Inputs()
	if err != nil {
		return 0, err
	}
	flux := m.Flux()
	total := 0.0
	for c := 0; c < m.cfg.NChan; c++ {
		lo, hi := m.channel(c)
		proc, err := m.setup(c)
		if err != nil {
			return 0, errors.Wrapf(err, "channel %d", c)
		}
		ll, err := proc.LogLikelihood(x, m.unc[lo:hi], residual(flux[lo:hi], fit[lo:hi]))
		if err != nil {
			return 0, errors.Wrapf(err, "channel %d", c)
		}
		total += ll
	}
	m.Logger().V(logging.TRACE).Info("Computed GP log-likelihood", "backend", m.backend.Name(), "loglik", total)
	return total, nil
}

func (m *Model) Update(values []float64, names []string) error {
	if err := m.Base.Update(values, names); err != nil {
		return err
	}
	return m.parseCoeffs()
}

// Copy returns a shallow copy sharing the parameter store.
func (m *Model) Copy() *Model {
	cp := *m
	return &cp
}

// Clone returns a deep copy for use by another chain.
func (m *Model) Clone() *Model {
	cp := *m
	cp.Base = m.CloneWith(m.Parameters().Clone())
	cp.unc = append([]float64(nil), m.unc...)
	cp.inputs = nil
	cp.coeffs = m.coeffs.clone()
	return &cp
}

func residual(flux, fit []float64) []float64 {
	return floats.SubTo(make([]float64, len(flux)), flux, fit)
}
