package models

import (
	"math"
	"regexp"

	"github.com/lucasmaystre/lcfit/logging"
	"github.com/lucasmaystre/lcfit/params"
	"github.com/lucasmaystre/lcfit/utils"
	"github.com/pkg/errors"
)

const maxRampCoeffs = 6

var rampName = regexp.MustCompile(`^[rR](\d+)(?:_(\d+))?$`)

type ExponentialConfig struct {
	Share bool
	NChan int
	Chan  int
}

// Exponential is the ramp r0·exp(-r1·t + r2) + r3·exp(-r4·t + r5) + 1 in
// centered time. The second term is absent when only r0..r2 are declared.
type Exponential struct {
	Base
	cfg    ExponentialConfig
	coeffs [][]float64 // Per channel, 3 or 6 entries.
}

var _ Model = (*Exponential)(nil)

func NewExponential(store *params.Store, cfg ExponentialConfig, opts ...Option) (*Exponential, error) {
	if cfg.NChan == 0 {
		cfg.NChan = 1
	}
	if err := checkChannels(cfg.NChan, cfg.Chan); err != nil {
		return nil, err
	}
	opts = append([]Option{WithName("exponential")}, opts...)
	base, err := NewBase(store, opts...)
	if err != nil {
		return nil, err
	}
	m := &Exponential{Base: base, cfg: cfg}
	if err := m.parseCoeffs(); err != nil {
		return nil, err
	}
	return m, nil
}

// parseCoeffs sizes each channel's coefficients by the highest declared
// index. A channel without any declared coefficient uses channel 0's.
func (m *Exponential) parseCoeffs() error {
	buf := make([][maxRampCoeffs]float64, m.cfg.NChan)
	declared := make([]int, m.cfg.NChan)
	var err error
	m.parameters.Each(func(name string, p *params.Param) {
		if err != nil {
			return
		}
		idx, ch, ok, perr := parseIndexed(rampName, name)
		if !ok {
			return
		}
		switch {
		case perr != nil:
			err = perr
		case idx >= maxRampCoeffs:
			err = errors.Wrapf(ErrShape, "%s: exponential ramp requires 3 or 6 parameters labelled r#", name)
		case ch >= m.cfg.NChan:
			err = errors.Wrapf(ErrShape, "%s: channel %d with nchan=%d", name, ch, m.cfg.NChan)
		default:
			buf[ch][idx] = p.Value
			if idx+1 > declared[ch] {
				declared[ch] = idx + 1
			}
		}
	})
	if err != nil {
		return err
	}

	coeffs := make([][]float64, m.cfg.NChan)
	for c := range buf {
		n, row := declared[c], buf[c]
		if n == 0 && c > 0 {
			n, row = declared[0], buf[0]
		}
		if n != 3 && n != 6 {
			return errors.Wrapf(ErrShape, "channel %d: exponential ramp requires 3 or 6 parameters labelled r#, got %d", c, n)
		}
		coeffs[c] = append([]float64(nil), row[:n]...)
	}
	m.coeffs = coeffs
	m.logger.V(logging.TRACE).Info("Parsed exponential coefficients", "coeffs", coeffs)
	return nil
}

// Coeffs returns a copy of the per-channel coefficients.
func (m *Exponential) Coeffs() [][]float64 {
	out := make([][]float64, len(m.coeffs))
	for i, row := range m.coeffs {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

func (m *Exponential) Update(values []float64, names []string) error {
	if _, err := m.updateStore(values, names); err != nil {
		return err
	}
	return m.parseCoeffs()
}

func (m *Exponential) Eval(time []float64) ([]float64, error) {
	if err := m.ensureTime(time); err != nil {
		return nil, err
	}
	t := utils.Center(m.time)
	chans := channels(m.cfg.Share, m.cfg.NChan, m.cfg.Chan)
	out := make([]float64, 0, len(t)*len(chans))
	for _, c := range chans {
		r := m.coeffs[c]
		for _, x := range t {
			v := r[0]*math.Exp(-r[1]*x+r[2]) + 1
			if len(r) == maxRampCoeffs {
				v += r[3] * math.Exp(-r[4]*x+r[5])
			}
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *Exponential) Copy() Model {
	cp := *m
	return &cp
}

func (m *Exponential) Clone() Model {
	cp := &Exponential{Base: m.CloneWith(m.parameters.Clone()), cfg: m.cfg}
	cp.coeffs = m.Coeffs()
	return cp
}
