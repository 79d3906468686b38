package models

import (
	"regexp"
	"strconv"

	"github.com/lucasmaystre/lcfit/logging"
	"github.com/lucasmaystre/lcfit/params"
	"github.com/lucasmaystre/lcfit/utils"
	"github.com/pkg/errors"
)

const maxPolyPowers = 9

var polyName = regexp.MustCompile(`^[cC](\d+)(?:_(\d+))?$`)

type PolynomialConfig struct {
	// Share evaluates every channel and concatenates the results.
	Share bool
	NChan int
	// Chan is the channel evaluated when Share is false.
	Chan int
}

// Polynomial is a polynomial in centered time with coefficients c0..c8.
type Polynomial struct {
	Base
	cfg    PolynomialConfig
	coeffs [][]float64 // Per channel, in decreasing power.
}

var _ Model = (*Polynomial)(nil)

func NewPolynomial(store *params.Store, cfg PolynomialConfig, opts ...Option) (*Polynomial, error) {
	if cfg.NChan == 0 {
		cfg.NChan = 1
	}
	if err := checkChannels(cfg.NChan, cfg.Chan); err != nil {
		return nil, err
	}
	opts = append([]Option{WithName("polynomial")}, opts...)
	base, err := NewBase(store, opts...)
	if err != nil {
		return nil, err
	}
	m := &Polynomial{Base: base, cfg: cfg}
	if err := m.parseCoeffs(); err != nil {
		return nil, err
	}
	return m, nil
}

// parseCoeffs fills an nchan×9 matrix from the store, then drops every power
// that is zero in all channels and reverses to decreasing power.
func (m *Polynomial) parseCoeffs() error {
	full := make([][maxPolyPowers]float64, m.cfg.NChan)
	var err error
	m.parameters.Each(func(name string, p *params.Param) {
		if err != nil {
			return
		}
		power, ch, ok, perr := parseIndexed(polyName, name)
		if !ok {
			return
		}
		switch {
		case perr != nil:
			err = perr
		case power >= maxPolyPowers:
			err = errors.Wrapf(ErrShape, "%s: power must be below %d", name, maxPolyPowers)
		case ch >= m.cfg.NChan:
			err = errors.Wrapf(ErrShape, "%s: channel %d with nchan=%d", name, ch, m.cfg.NChan)
		default:
			full[ch][power] = p.Value
		}
	})
	if err != nil {
		return err
	}

	keep := make([]int, 0, maxPolyPowers)
	for j := maxPolyPowers - 1; j >= 0; j-- {
		for c := range full {
			if full[c][j] != 0 {
				keep = append(keep, j)
				break
			}
		}
	}
	coeffs := make([][]float64, m.cfg.NChan)
	for c := range full {
		row := make([]float64, len(keep))
		for i, j := range keep {
			row[i] = full[c][j]
		}
		coeffs[c] = row
	}
	m.coeffs = coeffs
	m.logger.V(logging.TRACE).Info("Parsed polynomial coefficients", "coeffs", coeffs)
	return nil
}

// Coeffs returns a copy of the trimmed coefficient matrix.
func (m *Polynomial) Coeffs() [][]float64 {
	out := make([][]float64, len(m.coeffs))
	for i, row := range m.coeffs {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

func (m *Polynomial) Update(values []float64, names []string) error {
	if _, err := m.updateStore(values, names); err != nil {
		return err
	}
	return m.parseCoeffs()
}

func (m *Polynomial) Eval(time []float64) ([]float64, error) {
	if err := m.ensureTime(time); err != nil {
		return nil, err
	}
	t := utils.Center(m.time)
	chans := channels(m.cfg.Share, m.cfg.NChan, m.cfg.Chan)
	out := make([]float64, 0, len(t)*len(chans))
	for _, c := range chans {
		for _, x := range t {
			out = append(out, polyval(m.coeffs[c], x))
		}
	}
	return out, nil
}

func (m *Polynomial) Copy() Model {
	cp := *m
	return &cp
}

func (m *Polynomial) Clone() Model {
	cp := &Polynomial{Base: m.CloneWith(m.parameters.Clone()), cfg: m.cfg}
	cp.coeffs = m.Coeffs()
	return cp
}

// polyval evaluates coefficients in decreasing power by Horner's rule.
func polyval(coeffs []float64, x float64) float64 {
	v := 0.0
	for _, c := range coeffs {
		v = v*x + c
	}
	return v
}

// parseIndexed matches names like "c3" or "c3_1" and returns the index and
// channel. ok reports whether the name belongs to the family at all.
func parseIndexed(re *regexp.Regexp, name string) (idx, ch int, ok bool, err error) {
	sub := re.FindStringSubmatch(name)
	if sub == nil {
		return 0, 0, false, nil
	}
	idx, err = strconv.Atoi(sub[1])
	if err != nil {
		return 0, 0, true, errors.Wrapf(ErrShape, "%s: %v", name, err)
	}
	if sub[2] != "" {
		ch, err = strconv.Atoi(sub[2])
		if err != nil {
			return 0, 0, true, errors.Wrapf(ErrShape, "%s: %v", name, err)
		}
	}
	return idx, ch, true, nil
}
