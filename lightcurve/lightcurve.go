// Package lightcurve assembles the model graph of a fit from configuration
// and scores parameter proposals against an observed light curve.
package lightcurve

import (
	"github.com/lucasmaystre/lcfit/models"
	"github.com/pkg/errors"
)

var ErrShape = errors.New("light curve shape mismatch")

// LightCurve holds NChan channel-major blocks of flux and uncertainty, all
// sampled at Time.
type LightCurve struct {
	Time  []float64
	Flux  []float64
	Unc   []float64
	Units models.Units
	NChan int
}

func (lc *LightCurve) Validate() error {
	if lc.NChan < 1 {
		return errors.Wrapf(ErrShape, "nchan must be positive, got %d", lc.NChan)
	}
	if len(lc.Time) == 0 {
		return errors.Wrap(ErrShape, "empty time axis")
	}
	n := len(lc.Time) * lc.NChan
	if len(lc.Flux) != n || len(lc.Unc) != n {
		return errors.Wrapf(ErrShape, "%d channels of %d points need %d values, got flux=%d unc=%d",
			lc.NChan, len(lc.Time), n, len(lc.Flux), len(lc.Unc))
	}
	if lc.Units == "" {
		lc.Units = models.BJD
	}
	if !lc.Units.Valid() {
		return errors.Wrapf(models.ErrInvalidUnits, "got %q", lc.Units)
	}
	return nil
}

// Channel returns the flux and uncertainty of channel c.
func (lc *LightCurve) Channel(c int) (flux, unc []float64, err error) {
	if c < 0 || c >= lc.NChan {
		return nil, nil, errors.Wrapf(ErrShape, "channel %d out of range [0, %d)", c, lc.NChan)
	}
	n := len(lc.Time)
	return lc.Flux[n*c : n*(c+1)], lc.Unc[n*c : n*(c+1)], nil
}
