package lightcurve

import (
	"context"

	"github.com/go-logr/logr"
	"github.com/lucasmaystre/lcfit/config"
	"github.com/lucasmaystre/lcfit/fitters"
	"github.com/lucasmaystre/lcfit/gp"
	"github.com/lucasmaystre/lcfit/logging"
	"github.com/lucasmaystre/lcfit/models"
	"github.com/lucasmaystre/lcfit/params"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/distuv"
)

// Fit binds a model graph to a light curve. Proposals are vectors of values
// for Names, in order.
type Fit struct {
	Model models.Model
	// GP is nil when the fit has no correlated noise.
	GP      *gp.Model
	LC      *LightCurve
	Names   []string
	workers int
	logger  logr.Logger
}

// FromConfig builds a fit whose parameters come from cfg.ParamFile, logging
// at cfg.Verbosity.
func FromConfig(cfg *config.Config, lc *LightCurve) (*Fit, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	if cfg.ParamFile == "" {
		return nil, errors.Wrap(config.ErrInvalid, "param_file is required")
	}
	logger, err := logging.New(logging.Options{Verbosity: cfg.Verbosity})
	if err != nil {
		return nil, err
	}
	store, err := params.LoadFile(cfg.ParamFile)
	if err != nil {
		return nil, err
	}
	return Build(cfg, store, lc, logger)
}

// Build constructs the models listed in cfg over store, multiplied into one
// composite, and a GP when cfg lists kernels. Every model shares store.
func Build(cfg *config.Config, store *params.Store, lc *LightCurve, logger logr.Logger) (*Fit, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	if lc.Units == "" {
		lc.Units = cfg.Units
	}
	if err := lc.Validate(); err != nil {
		return nil, err
	}
	if lc.Units != cfg.Units {
		return nil, errors.Wrapf(config.ErrInvalid, "light curve is in %s, config in %s", lc.Units, cfg.Units)
	}
	if lc.NChan != cfg.NChan {
		return nil, errors.Wrapf(ErrShape, "light curve has %d channels, config %d", lc.NChan, cfg.NChan)
	}
	if cfg.NChan > 1 && !cfg.Share {
		return nil, errors.Wrap(ErrShape, "several channels need share to be set")
	}

	opts := []models.Option{
		models.WithUnits(lc.Units),
		models.WithLogger(logger),
		models.WithStrict(cfg.Strict),
	}
	children := make([]models.Model, 0, len(cfg.Models))
	for _, name := range cfg.Models {
		m, err := buildModel(name, cfg, store, opts)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to build %s model", name)
		}
		children = append(children, m)
	}
	comp, err := models.NewComposite(children, store, append(opts, models.WithName("fit"))...)
	if err != nil {
		return nil, err
	}
	if err := comp.SetTime(lc.Time); err != nil {
		return nil, err
	}
	if err := comp.SetFlux(lc.Flux); err != nil {
		return nil, err
	}

	f := &Fit{Model: comp, LC: lc, Names: store.FreeNames(), workers: cfg.Workers, logger: logger}
	if len(cfg.GP.Kernels) > 0 {
		gpCfg := gp.Config{
			KernelTypes:  cfg.GP.Kernels,
			KernelInputs: cfg.GP.Inputs,
			Backend:      cfg.GP.Backend,
			NChan:        cfg.NChan,
			Normalize:    cfg.GP.Normalize,
		}
		f.GP, err = gp.NewModel(store, gpCfg, lc.Time, lc.Flux, lc.Unc, opts...)
		if err != nil {
			return nil, errors.Wrap(err, "unable to build GP model")
		}
	}
	logger.V(logging.VERBOSE).Info("Built fit", "models", cfg.Models, "gp", cfg.GP.Kernels, "free", len(f.Names))
	return f, nil
}

func buildModel(name string, cfg *config.Config, store *params.Store, opts []models.Option) (models.Model, error) {
	switch name {
	case config.Polynomial:
		return models.NewPolynomial(store, models.PolynomialConfig{Share: cfg.Share, NChan: cfg.NChan}, opts...)
	case config.Exponential:
		return models.NewExponential(store, models.ExponentialConfig{Share: cfg.Share, NChan: cfg.NChan}, opts...)
	case config.Transit:
		return models.NewTransit(store, models.TransitConfig{Share: cfg.Share, NChan: cfg.NChan}, opts...)
	}
	return nil, errors.Wrapf(config.ErrInvalid, "unknown model %q", name)
}

// Update pushes a proposal into every model.
func (f *Fit) Update(values []float64) error {
	if len(values) != len(f.Names) {
		return errors.Wrapf(ErrShape, "%d values for %d free parameters", len(values), len(f.Names))
	}
	if err := f.Model.Update(values, f.Names); err != nil {
		return err
	}
	if f.GP != nil {
		return f.GP.Update(values, f.Names)
	}
	return nil
}

// Eval returns the model flux and, with a GP, its predictive mean of the
// residual.
func (f *Fit) Eval() (flux, noise []float64, err error) {
	flux, err = f.Model.Eval(f.LC.Time)
	if err != nil {
		return nil, nil, err
	}
	if f.GP == nil {
		return flux, nil, nil
	}
	noise, err = f.GP.Predict(flux)
	if err != nil {
		return nil, nil, err
	}
	return flux, noise, nil
}

// LogLikelihood updates the models with values and scores the light curve,
// through the GP when there is one and independent Gaussian errors
// otherwise.
func (f *Fit) LogLikelihood(values []float64) (float64, error) {
	if err := f.Update(values); err != nil {
		return 0, err
	}
	flux, err := f.Model.Eval(f.LC.Time)
	if err != nil {
		return 0, err
	}
	if len(flux) != len(f.LC.Flux) {
		return 0, errors.Wrapf(ErrShape, "model returned %d values for %d observations", len(flux), len(f.LC.Flux))
	}
	if f.GP != nil {
		return f.GP.LogLikelihood(flux, f.LC.Unc)
	}
	ll := 0.0
	for i, obs := range f.LC.Flux {
		ll += distuv.Normal{Mu: flux[i], Sigma: f.LC.Unc[i]}.LogProb(obs)
	}
	return ll, nil
}

// Batch returns the concurrent evaluator configured for this fit.
func (f *Fit) Batch() fitters.Batch {
	return fitters.Batch{Workers: f.workers, Logger: f.logger}
}

// LogLikelihoods scores proposals concurrently, each worker on its own clone.
// The fit itself is left untouched.
func (f *Fit) LogLikelihoods(ctx context.Context, proposals [][]float64) ([]float64, error) {
	return fitters.LogLikelihoods(ctx, f.Batch(), f, proposals)
}

// Clone returns a fit over deep copies of every model, for use by another
// goroutine. The light curve is shared read-only.
func (f *Fit) Clone() *Fit {
	cp := *f
	cp.Model = f.Model.Clone()
	if f.GP != nil {
		cp.GP = f.GP.Clone()
	}
	cp.Names = append([]string(nil), f.Names...)
	return &cp
}
