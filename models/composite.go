package models

import (
	"github.com/lucasmaystre/lcfit/logging"
	"github.com/lucasmaystre/lcfit/params"
	"github.com/lucasmaystre/lcfit/utils"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Composite evaluates to the elementwise product of its components.
type Composite struct {
	Base
}

var _ Model = (*Composite)(nil)

// NewComposite owns components by reference. A nil store defaults to the
// union of the components' stores.
func NewComposite(components []Model, store *params.Store, opts ...Option) (*Composite, error) {
	for i, m := range components {
		if m == nil {
			return nil, errors.Wrapf(ErrNotModel, "component %d is nil", i)
		}
	}
	if store == nil {
		store = params.New()
		for _, m := range components {
			store = store.Merge(m.Parameters())
		}
	}
	base, err := NewBase(store, opts...)
	if err != nil {
		return nil, err
	}
	base.components = append([]Model(nil), components...)
	return &Composite{Base: base}, nil
}

// Combine multiplies two models. The result wraps a shallow copy of a and b
// itself, over the union of both parameter stores.
func Combine(a, b Model, opts ...Option) (*Composite, error) {
	if a == nil || b == nil {
		return nil, ErrNotModel
	}
	store := a.Parameters().Merge(b.Parameters())
	opts = append([]Option{WithUnits(a.Units())}, opts...)
	c, err := NewComposite([]Model{a.Copy(), b}, store, opts...)
	if err != nil {
		return nil, err
	}
	if t := a.Time(); t != nil {
		if err := c.SetTime(t); err != nil {
			return nil, err
		}
	}
	if f := a.Flux(); f != nil {
		if err := c.SetFlux(f); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Composite) Eval(time []float64) ([]float64, error) {
	if err := c.ensureTime(time); err != nil {
		return nil, err
	}
	var flux []float64
	for i, m := range c.components {
		if m.Time() == nil {
			if err := m.SetTime(c.time); err != nil {
				return nil, errors.Wrapf(err, "component %d (%s)", i, m.Name())
			}
		}
		out, err := m.Eval(c.time)
		if err != nil {
			return nil, errors.Wrapf(err, "component %d (%s)", i, m.Name())
		}
		if flux == nil {
			flux = append([]float64(nil), out...)
			continue
		}
		if len(out) != len(flux) {
			return nil, errors.Wrapf(ErrShape, "component %d (%s) returned %d values, want %d",
				i, m.Name(), len(out), len(flux))
		}
		floats.Mul(flux, out)
	}
	if flux == nil {
		flux = utils.Ones(len(c.time))
	}
	c.logger.V(logging.TRACE).Info("Evaluated composite", "components", len(c.components), "len", len(flux))
	return flux, nil
}

// Update forwards to every component in order. In strict mode it fails only
// when no component knows any of the names.
func (c *Composite) Update(values []float64, names []string) error {
	if len(values) != len(names) {
		return errors.Wrapf(ErrShape, "%d values for %d names", len(values), len(names))
	}
	for _, m := range c.components {
		if err := m.Update(values, names); err != nil && !errors.Is(err, ErrNoMatchingParameters) {
			return errors.Wrapf(err, "component %s", m.Name())
		}
	}
	matched := 0
	for _, name := range names {
		if c.parameters.Has(name) {
			matched++
		}
	}
	return c.checkMatched(matched, names)
}

func (c *Composite) Copy() Model {
	cp := *c
	return &cp
}

// Clone deep-copies every component and rebuilds the merged store over the
// clones, so that the copy shares entries with its own components only.
func (c *Composite) Clone() Model {
	children := make([]Model, len(c.components))
	store := params.New()
	for i, m := range c.components {
		children[i] = m.Clone()
		store = store.Merge(children[i].Parameters())
	}
	own := c.parameters.Clone()
	own.Each(func(name string, p *params.Param) {
		if !store.Has(name) {
			store.Add(name, *p)
		}
	})
	cp := &Composite{Base: c.CloneWith(store)}
	cp.components = children
	return cp
}
