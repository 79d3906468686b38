package models

import (
	"fmt"
	"regexp"

	"github.com/lucasmaystre/lcfit/logging"
	"github.com/lucasmaystre/lcfit/params"
	"github.com/lucasmaystre/lcfit/transit"
	"github.com/pkg/errors"
)

const (
	limbDarkParam    = "limb_dark"
	transitTypeParam = "transittype"
)

var channelSuffix = regexp.MustCompile(`_\d+$`)

type TransitConfig struct {
	Share bool
	NChan int
	Chan  int
	// LongParamList holds, per channel, the store names of the generator
	// attributes listed in row 0. Defaults to params.LongParamList over the
	// unsuffixed store names.
	LongParamList [][]string
	// Generator defaults to transit.NewEngine().
	Generator transit.Generator
}

// Transit wraps a transit.Generator, feeding it the store's orbital and
// limb-darkening parameters.
type Transit struct {
	Base
	cfg        TransitConfig
	law        transit.Law
	coeffNames []string // u1..uk.
}

var _ Model = (*Transit)(nil)

func NewTransit(store *params.Store, cfg TransitConfig, opts ...Option) (*Transit, error) {
	if cfg.NChan == 0 {
		cfg.NChan = 1
	}
	if err := checkChannels(cfg.NChan, cfg.Chan); err != nil {
		return nil, err
	}
	if cfg.Generator == nil {
		cfg.Generator = transit.NewEngine()
	}
	opts = append([]Option{WithName("transit")}, opts...)
	base, err := NewBase(store, opts...)
	if err != nil {
		return nil, err
	}

	tag, err := store.Text(limbDarkParam)
	if err != nil {
		return nil, errors.Wrap(ErrMissingParameter, limbDarkParam)
	}
	law, err := transit.LookupLaw(tag)
	if err != nil {
		return nil, err
	}
	names := make([]string, law.NCoeffs)
	for k := range names {
		names[k] = fmt.Sprintf("u%d", k+1)
	}

	if cfg.LongParamList == nil {
		var titles []string
		for _, name := range store.Names() {
			if !channelSuffix.MatchString(name) {
				titles = append(titles, name)
			}
		}
		cfg.LongParamList = params.LongParamList(store, titles, cfg.NChan)
	}
	if err := checkLongParamList(store, cfg); err != nil {
		return nil, err
	}

	m := &Transit{Base: base, cfg: cfg, law: law, coeffNames: names}
	m.logger.V(logging.DEBUG).Info("Resolved limb darkening", "law", law.Name, "coeffs", names)
	return m, nil
}

func checkLongParamList(store *params.Store, cfg TransitConfig) error {
	rows := cfg.Chan + 1
	if cfg.Share {
		rows = cfg.NChan
	}
	if len(cfg.LongParamList) < rows {
		return errors.Wrapf(ErrShape, "long parameter list has %d rows, need %d", len(cfg.LongParamList), rows)
	}
	width := len(cfg.LongParamList[0])
	for c, row := range cfg.LongParamList {
		if len(row) != width {
			return errors.Wrapf(ErrShape, "long parameter list row %d has %d names, want %d", c, len(row), width)
		}
		for _, name := range row {
			if !store.Has(name) {
				return errors.Wrapf(ErrMissingParameter, "%s (channel %d)", name, c)
			}
		}
	}
	return nil
}

// generatorParams builds the generator input of channel c.
func (m *Transit) generatorParams(c int) (*transit.Params, error) {
	p := transit.NewParams()
	titles := m.cfg.LongParamList[0]
	for i, name := range m.cfg.LongParamList[c] {
		v, err := m.parameters.Value(name)
		if err != nil {
			return nil, err
		}
		p.Set(titles[i], v)
	}

	p.U = make([]float64, len(m.coeffNames))
	for k, name := range m.coeffNames {
		if chName := fmt.Sprintf("%s_%d", name, c); m.parameters.Has(chName) {
			name = chName
		}
		v, err := m.parameters.Value(name)
		if err != nil {
			return nil, errors.Wrap(ErrMissingParameter, name)
		}
		p.U[k] = v
	}

	p.LimbDark = m.law.Name
	p.TransitType = transit.Primary
	if m.parameters.Has(transitTypeParam) {
		tt, _ := m.parameters.Text(transitTypeParam)
		if tt != "" {
			p.TransitType = tt
		}
	}
	return p, nil
}

func (m *Transit) Eval(time []float64) ([]float64, error) {
	if err := m.ensureTime(time); err != nil {
		return nil, err
	}
	chans := channels(m.cfg.Share, m.cfg.NChan, m.cfg.Chan)
	out := make([]float64, 0, len(m.time)*len(chans))
	for _, c := range chans {
		p, err := m.generatorParams(c)
		if err != nil {
			return nil, errors.Wrapf(err, "channel %d", c)
		}
		flux, err := m.cfg.Generator.LightCurve(p, m.time)
		if err != nil {
			return nil, errors.Wrapf(err, "channel %d", c)
		}
		out = append(out, flux...)
	}
	return out, nil
}

func (m *Transit) Copy() Model {
	cp := *m
	return &cp
}

func (m *Transit) Clone() Model {
	cp := *m
	cp.Base = m.CloneWith(m.parameters.Clone())
	cp.cfg.LongParamList = make([][]string, len(m.cfg.LongParamList))
	for i, row := range m.cfg.LongParamList {
		cp.cfg.LongParamList[i] = append([]string(nil), row...)
	}
	return &cp
}
