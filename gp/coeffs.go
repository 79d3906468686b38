package gp

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/lucasmaystre/lcfit/params"
	"github.com/pkg/errors"
)

var (
	ampName    = regexp.MustCompile(`^A(?:_(\d+))?$`)
	metricName = regexp.MustCompile(`^[mM](\d+)(?:_(\d+))?$`)
	noiseName  = regexp.MustCompile(`^WN(?:_(\d+))?$`)
)

// Coeffs are the log-space GP coefficients, per channel.
type Coeffs struct {
	KernelTypes   []string
	Amp           []float64   // Log amplitude.
	Metrics       [][]float64 // Indexed by kernel, then channel.
	WhiteNoise    []float64
	FitWhiteNoise bool
}

// Metric converts a log inverse length scale into a kernel metric.
func Metric(p float64) float64 {
	x := 1 / math.Exp(p)
	return x * x
}

// parseCoeffs reads A, m{k} and WN entries, optionally suffixed by _{c}. An
// unsuffixed name belongs to channel 0.
func parseCoeffs(store *params.Store, kernelTypes []string, nchan int) (Coeffs, error) {
	nk := len(kernelTypes)
	c := Coeffs{
		KernelTypes:   kernelTypes,
		Amp:           make([]float64, nchan),
		Metrics:       make([][]float64, nk),
		WhiteNoise:    make([]float64, nchan),
		FitWhiteNoise: true,
	}
	seenAmp := make([]bool, nchan)
	seenNoise := make([]bool, nchan)
	seenMetric := make([][]bool, nk)
	for k := range c.Metrics {
		c.Metrics[k] = make([]float64, nchan)
		seenMetric[k] = make([]bool, nchan)
	}

	var err error
	store.Each(func(name string, p *params.Param) {
		if err != nil {
			return
		}
		if sub := ampName.FindStringSubmatch(name); sub != nil {
			var ch int
			if ch, err = channelOf(name, sub[1], nchan); err == nil {
				c.Amp[ch], seenAmp[ch] = p.Value, true
			}
			return
		}
		if sub := noiseName.FindStringSubmatch(name); sub != nil {
			var ch int
			if ch, err = channelOf(name, sub[1], nchan); err == nil {
				c.WhiteNoise[ch], seenNoise[ch] = p.Value, true
				if p.Fixed {
					c.FitWhiteNoise = false
				}
			}
			return
		}
		if sub := metricName.FindStringSubmatch(name); sub != nil {
			k, _ := strconv.Atoi(sub[1])
			switch {
			case k < 1:
				err = errors.Wrapf(ErrMetricIndex, "got %s", name)
				return
			case k > nk:
				err = errors.Wrapf(ErrMetricIndex, "%s with %d kernels", name, nk)
				return
			}
			var ch int
			if ch, err = channelOf(name, sub[2], nchan); err == nil {
				c.Metrics[k-1][ch], seenMetric[k-1][ch] = p.Value, true
			}
		}
	})
	if err != nil {
		return Coeffs{}, err
	}

	for ch := 0; ch < nchan; ch++ {
		if !seenAmp[ch] {
			return Coeffs{}, errors.Wrapf(ErrShape, "missing amplitude for channel %d", ch)
		}
		if !seenNoise[ch] {
			return Coeffs{}, errors.Wrapf(ErrShape, "missing white noise for channel %d", ch)
		}
		for k := range seenMetric {
			if !seenMetric[k][ch] {
				return Coeffs{}, errors.Wrapf(ErrShape, "missing metric m%d for channel %d", k+1, ch)
			}
		}
	}
	return c, nil
}

func channelOf(name, suffix string, nchan int) (int, error) {
	if suffix == "" {
		return 0, nil
	}
	ch, err := strconv.Atoi(suffix)
	if err != nil || ch >= nchan {
		return 0, errors.Wrapf(ErrShape, "%s: channel out of range with nchan=%d", name, nchan)
	}
	return ch, nil
}

// Map returns the coefficients keyed by tag: A (or A_{c} when there are
// several channels), one entry per kernel type listing its metrics, and WN
// (or WN_{c}).
func (c Coeffs) Map() map[string][]float64 {
	nchan := len(c.Amp)
	out := make(map[string][]float64, 2*nchan+len(c.KernelTypes))
	for ch := 0; ch < nchan; ch++ {
		amp, wn := "A", "WN"
		if nchan > 1 {
			amp, wn = fmt.Sprintf("A_%d", ch), fmt.Sprintf("WN_%d", ch)
		}
		out[amp] = []float64{c.Amp[ch]}
		out[wn] = []float64{c.WhiteNoise[ch]}
	}
	for k, kind := range c.KernelTypes {
		out[kind] = append(out[kind], c.Metrics[k]...)
	}
	return out
}

func (c Coeffs) clone() Coeffs {
	out := c
	out.KernelTypes = append([]string(nil), c.KernelTypes...)
	out.Amp = append([]float64(nil), c.Amp...)
	out.WhiteNoise = append([]float64(nil), c.WhiteNoise...)
	out.Metrics = make([][]float64, len(c.Metrics))
	for k, row := range c.Metrics {
		out.Metrics[k] = append([]float64(nil), row...)
	}
	return out
}
