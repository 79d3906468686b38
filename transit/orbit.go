package transit

import (
	"math"
)

const (
	keplerTol     = 1e-12
	keplerMaxIter = 50
)

// eccentricAnomaly solves Kepler's equation M = E - e sin E by Newton's
// method.
func eccentricAnomaly(M, ecc float64) float64 {
	if ecc == 0 {
		return M
	}
	E := M
	if ecc > 0.8 {
		E = math.Pi
	}
	for i := 0; i < keplerMaxIter; i++ {
		step := (E - ecc*math.Sin(E) - M) / (1 - ecc*math.Cos(E))
		E -= step
		if math.Abs(step) < keplerTol {
			break
		}
	}
	return E
}

// meanAnomaly converts a true anomaly f into a mean anomaly.
func meanAnomaly(f, ecc float64) float64 {
	E := 2 * math.Atan(math.Sqrt((1-ecc)/(1+ecc))*math.Tan(f/2))
	return E - ecc*math.Sin(E)
}

type orbit struct {
	tp   float64 // Time of periastron.
	per  float64
	a    float64
	ecc  float64
	w    float64 // Argument of periastron, radians.
	sini float64
}

func newOrbit(p *Params) orbit {
	w := p.W * math.Pi / 180
	return orbit{
		tp:   periastronTime(p.T0, p.Per, p.Ecc, w),
		per:  p.Per,
		a:    p.A,
		ecc:  p.Ecc,
		w:    w,
		sini: math.Sin(p.Inc * math.Pi / 180),
	}
}

// periastronTime returns the time of periastron for an orbit whose inferior
// conjunction happens at t0.
func periastronTime(t0, per, ecc, w float64) float64 {
	return t0 - per/(2*math.Pi)*meanAnomaly(math.Pi/2-w, ecc)
}

// SecondaryTime returns the time of the secondary eclipse that follows the
// inferior conjunction p.T0.
func SecondaryTime(p *Params) float64 {
	w := p.W * math.Pi / 180
	tp := periastronTime(p.T0, p.Per, p.Ecc, w)
	t := tp + p.Per/(2*math.Pi)*meanAnomaly(3*math.Pi/2-w, p.Ecc)
	for t < p.T0 {
		t += p.Per
	}
	for t >= p.T0+p.Per {
		t -= p.Per
	}
	return t
}

// separation returns the projected star-planet distance in stellar radii and
// whether the planet is in front of the star.
func (o orbit) separation(t float64) (float64, bool) {
	M := 2 * math.Pi * (t - o.tp) / o.per
	E := eccentricAnomaly(M, o.ecc)
	f := 2 * math.Atan2(math.Sqrt(1+o.ecc)*math.Sin(E/2), math.Sqrt(1-o.ecc)*math.Cos(E/2))
	r := o.a * (1 - o.ecc*math.Cos(E))
	s := math.Sin(o.w + f)
	return r * math.Sqrt(1-s*s*o.sini*o.sini), s > 0
}
