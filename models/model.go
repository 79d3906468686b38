// Package models composes light-curve models. Each model owns a time axis, a
// flux axis and a reference to a parameter store; multiplicative composites
// evaluate to the elementwise product of their components.
package models

import (
	"math"

	"github.com/go-logr/logr"
	"github.com/lucasmaystre/lcfit/logging"
	"github.com/lucasmaystre/lcfit/params"
	"github.com/lucasmaystre/lcfit/utils"
	"github.com/pkg/errors"
)

const DefaultName = "New Model"

type Units string

const (
	BJD   Units = "BJD"
	MJD   Units = "MJD"
	Phase Units = "phase"
)

func (u Units) Valid() bool {
	switch u {
	case BJD, MJD, Phase:
		return true
	}
	return false
}

// Model is the contract shared by every light-curve model. A fitter only
// talks to this interface, so new model types need no fitter changes.
type Model interface {
	Name() string
	Units() Units
	Time() []float64
	SetTime(time []float64) error
	Flux() []float64
	SetFlux(flux []float64) error
	Parameters() *params.Store
	Components() []Model

	// Eval returns the model flux. When the model has no time axis yet, it
	// adopts time.
	Eval(time []float64) ([]float64, error)

	// Update overwrites the value of every parameter named in names. Names
	// the model does not know are ignored.
	Update(values []float64, names []string) error

	// Copy returns a shallow copy sharing the parameter store.
	Copy() Model

	// Clone returns a deep copy that shares no mutable state.
	Clone() Model
}

type Option func(b *Base)

func WithName(name string) Option {
	return func(b *Base) {
		b.name = name
	}
}

func WithUnits(units Units) Option {
	return func(b *Base) {
		b.units = units
	}
}

func WithLogger(logger logr.Logger) Option {
	return func(b *Base) {
		b.logger = logger
	}
}

// WithStrict makes Update fail with ErrNoMatchingParameters when none of the
// given names belongs to the model.
func WithStrict(strict bool) Option {
	return func(b *Base) {
		b.strict = strict
	}
}

// Base implements the parts of Model common to every variant. It is meant
// to be embedded.
type Base struct {
	name       string
	time       []float64
	flux       []float64
	units      Units
	parameters *params.Store
	components []Model
	logger     logr.Logger
	strict     bool
}

func NewBase(store *params.Store, opts ...Option) (Base, error) {
	if store == nil {
		return Base{}, ErrNilParameters
	}
	b := Base{
		name:       DefaultName,
		units:      BJD,
		parameters: store,
		logger:     logr.Discard(),
	}
	for _, opt := range opts {
		opt(&b)
	}
	if !b.units.Valid() {
		return Base{}, errors.Wrapf(ErrInvalidUnits, "got %q", b.units)
	}
	b.logger = b.logger.WithValues("model", b.name)
	return b, nil
}

func (b *Base) Name() string {
	return b.name
}

func (b *Base) Units() Units {
	return b.units
}

func (b *Base) SetUnits(units Units) error {
	if !units.Valid() {
		return errors.Wrapf(ErrInvalidUnits, "got %q", units)
	}
	b.units = units
	return nil
}

func (b *Base) Time() []float64 {
	return b.time
}

func (b *Base) SetTime(time []float64) error {
	if err := checkAxis(time); err != nil {
		return errors.Wrap(err, "time")
	}
	b.time = append([]float64(nil), time...)
	return nil
}

func (b *Base) Flux() []float64 {
	return b.flux
}

func (b *Base) SetFlux(flux []float64) error {
	if err := checkAxis(flux); err != nil {
		return errors.Wrap(err, "flux")
	}
	b.flux = append([]float64(nil), flux...)
	return nil
}

func (b *Base) Parameters() *params.Store {
	return b.parameters
}

func (b *Base) Components() []Model {
	return b.components
}

func (b *Base) Logger() logr.Logger {
	return b.logger
}

// Interp resamples the flux onto newTime by linear interpolation against the
// current time axis, then adopts newTime.
func (b *Base) Interp(newTime []float64) error {
	if err := checkAxis(newTime); err != nil {
		return errors.Wrap(err, "time")
	}
	if b.time == nil || len(b.time) != len(b.flux) {
		return errors.Wrapf(ErrShape, "interp needs equal-length time and flux, got %d and %d", len(b.time), len(b.flux))
	}
	flux, err := utils.Interp(newTime, b.time, b.flux)
	if err != nil {
		return errors.Wrapf(ErrShape, "%v", err)
	}
	b.flux = flux
	b.time = append([]float64(nil), newTime...)
	return nil
}

// Update writes values into the matching parameters of the store.
func (b *Base) Update(values []float64, names []string) error {
	_, err := b.updateStore(values, names)
	return err
}

func (b *Base) updateStore(values []float64, names []string) (int, error) {
	if len(values) != len(names) {
		return 0, errors.Wrapf(ErrShape, "%d values for %d names", len(values), len(names))
	}
	matched := 0
	for i, name := range names {
		if b.parameters.SetValue(name, values[i]) {
			matched++
		}
	}
	if err := b.checkMatched(matched, names); err != nil {
		return 0, err
	}
	b.logger.V(logging.TRACE).Info("Updated parameters", "matched", matched, "total", len(names))
	return matched, nil
}

func (b *Base) checkMatched(matched int, names []string) error {
	if matched > 0 || len(names) == 0 || !b.strict {
		return nil
	}
	b.logger.Error(ErrNoMatchingParameters, "Update matched no parameter", "names", names)
	return errors.Wrapf(ErrNoMatchingParameters, "model %q", b.name)
}

// ensureTime adopts time when the model has no time axis yet.
func (b *Base) ensureTime(time []float64) error {
	if b.time != nil {
		return nil
	}
	if time == nil {
		return errors.Wrapf(ErrTimeUnset, "model %q", b.name)
	}
	return b.SetTime(time)
}

// CloneWith deep-copies the base onto store. Components are not copied.
func (b *Base) CloneWith(store *params.Store) Base {
	c := *b
	c.parameters = store
	c.time = append([]float64(nil), b.time...)
	c.flux = append([]float64(nil), b.flux...)
	if b.time == nil {
		c.time = nil
	}
	if b.flux == nil {
		c.flux = nil
	}
	c.components = nil
	return c
}

func checkAxis(axis []float64) error {
	if len(axis) == 0 {
		return ErrInvalidAxis
	}
	for i, v := range axis {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Wrapf(ErrInvalidAxis, "non-finite value at index %d", i)
		}
	}
	return nil
}

// channels returns the channel indices a model evaluates, in output order.
func channels(share bool, nchan, chanIdx int) []int {
	if !share {
		return []int{chanIdx}
	}
	out := make([]int, nchan)
	for i := range out {
		out[i] = i
	}
	return out
}

func checkChannels(nchan, chanIdx int) error {
	if nchan < 1 {
		return errors.Wrapf(ErrShape, "nchan must be positive, got %d", nchan)
	}
	if chanIdx < 0 || chanIdx >= nchan {
		return errors.Wrapf(ErrShape, "channel %d out of range [0, %d)", chanIdx, nchan)
	}
	return nil
}
