// Package transit computes limb-darkened transit and secondary-eclipse light
// curves of a planet on a Keplerian orbit.
package transit

import (
	"math"

	"github.com/pkg/errors"
)

var (
	ErrShape         = errors.New("limb-darkening coefficient count does not match law")
	ErrInvalidParams = errors.New("invalid transit parameters")
	ErrTransitType   = errors.New("transit type must be primary or secondary")
)

const (
	defaultSteps   = 500
	normalizeSteps = 4000
)

// Generator produces the relative flux of a star-planet system at each time.
type Generator interface {
	LightCurve(p *Params, time []float64) ([]float64, error)
}

var _ Generator = (*Engine)(nil)

// Engine integrates the occulted stellar intensity over concentric annuli,
// in the manner of batman. The uniform law is computed exactly.
type Engine struct {
	// Steps is the number of annuli across the occulted region.
	Steps int
}

func NewEngine() *Engine {
	return &Engine{Steps: defaultSteps}
}

func validate(p *Params, law Law) error {
	if len(p.U) != law.NCoeffs {
		return errors.Wrapf(ErrShape, "%s needs %d coefficients, got %d", law.Name, law.NCoeffs, len(p.U))
	}
	switch {
	case p.Per <= 0:
		return errors.Wrapf(ErrInvalidParams, "per=%v", p.Per)
	case p.A <= 0:
		return errors.Wrapf(ErrInvalidParams, "a=%v", p.A)
	case p.Rp < 0:
		return errors.Wrapf(ErrInvalidParams, "rp=%v", p.Rp)
	case p.Ecc < 0 || p.Ecc >= 1:
		return errors.Wrapf(ErrInvalidParams, "ecc=%v", p.Ecc)
	}
	return nil
}

func (e *Engine) LightCurve(p *Params, time []float64) ([]float64, error) {
	law, err := LookupLaw(p.LimbDark)
	if err != nil {
		return nil, err
	}
	if err := validate(p, law); err != nil {
		return nil, err
	}
	o := newOrbit(p)
	out := make([]float64, len(time))
	switch p.TransitType {
	case Primary, "":
		norm := normalization(law, p.U)
		for i, t := range time {
			z, front := o.separation(t)
			out[i] = 1
			if front && z < 1+p.Rp {
				out[i] = 1 - e.occulted(z, p.Rp, law, p.U)/norm
			}
		}
	case Secondary:
		if p.tSecondarySet {
			// Shift the orbit so that the eclipse lands on the requested time.
			o.tp += p.TSecondary - SecondaryTime(p)
		}
		for i, t := range time {
			z, front := o.separation(t)
			frac := 0.0
			if !front && p.Rp > 0 {
				frac = overlap(z, 1, p.Rp) / (math.Pi * p.Rp * p.Rp)
			}
			out[i] = 1 + p.Fp*(1-frac)
		}
	default:
		return nil, errors.Wrapf(ErrTransitType, "%q", p.TransitType)
	}
	return out, nil
}

// occulted integrates the stellar intensity hidden by a planet of radius p at
// projected distance z.
func (e *Engine) occulted(z, p float64, law Law, u []float64) float64 {
	if law.NCoeffs == 0 {
		return overlap(z, 1, p)
	}
	steps := e.Steps
	if steps <= 0 {
		steps = defaultSteps
	}
	rmin := math.Max(0, z-p)
	rmax := math.Min(1, z+p)
	dr := (rmax - rmin) / float64(steps)
	total := 0.0
	prev := overlap(z, rmin, p)
	for i := 0; i < steps; i++ {
		r0 := rmin + float64(i)*dr
		r1 := r0 + dr
		rm := r0 + dr/2
		cur := overlap(z, r1, p)
		total += law.Intensity(math.Sqrt(1-rm*rm), u) * (cur - prev)
		prev = cur
	}
	return total
}

// normalization is the disk-integrated intensity 2π ∫ I(μ) μ dμ.
func normalization(law Law, u []float64) float64 {
	if law.NCoeffs == 0 {
		return math.Pi
	}
	dmu := 1.0 / normalizeSteps
	total := 0.0
	for i := 0; i < normalizeSteps; i++ {
		mu := (float64(i) + 0.5) * dmu
		total += law.Intensity(mu, u) * mu
	}
	return 2 * math.Pi * total * dmu
}

// overlap is the area of the intersection of a disk of radius r centered on
// the origin with a disk of radius p centered at distance z.
func overlap(z, r, p float64) float64 {
	switch {
	case r <= 0 || p <= 0 || z >= r+p:
		return 0
	case z <= math.Abs(r-p):
		m := math.Min(r, p)
		return math.Pi * m * m
	}
	k0 := math.Acos(clamp((p*p + z*z - r*r) / (2 * p * z)))
	k1 := math.Acos(clamp((r*r + z*z - p*p) / (2 * r * z)))
	disc := 4*z*z*r*r - (r*r+z*z-p*p)*(r*r+z*z-p*p)
	return p*p*k0 + r*r*k1 - 0.5*math.Sqrt(math.Max(0, disc))
}

func clamp(x float64) float64 {
	return math.Max(-1, math.Min(1, x))
}
