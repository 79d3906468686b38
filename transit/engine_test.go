package transit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func circular(rp float64, law string, u ...float64) *Params {
	p := NewParams()
	p.T0 = 0
	p.Per = 3.0
	p.Rp = rp
	p.A = 10
	p.Inc = 90
	p.Fp = 0.001
	p.LimbDark = law
	p.U = u
	return p
}

func linspace(a, b float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = a + (b-a)*float64(i)/float64(n-1)
	}
	return out
}

func TestUniformCentralDepth(t *testing.T) {
	p := circular(0.1, "uniform")
	flux, err := NewEngine().LightCurve(p, []float64{0, 1.0})
	require.NoError(t, err)
	assert.InDelta(t, 1-0.01, flux[0], 1e-12)
	assert.Equal(t, 1.0, flux[1])
}

func TestLimbDarkenedCentralDepth(t *testing.T) {
	// For a small planet at disk center the depth is p² I(1) / ∫I, with
	// ∫I = π (1 - u1/3 - u2/6) for the quadratic law.
	tcs := map[string]struct {
		law  string
		u    []float64
		norm float64
	}{
		"linear":    {law: "linear", u: []float64{0.6}, norm: 1 - 0.6/3},
		"quadratic": {law: "quadratic", u: []float64{0.4, 0.2}, norm: 1 - 0.4/3 - 0.2/6},
		"4-parameter": {
			law:  "4-parameter",
			u:    []float64{0.1, 0.2, 0.1, 0.05},
			norm: 1 - 0.1/5 - 0.2/3 - 0.1*3/7 - 0.05/2,
		},
	}
	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			rp := 0.01
			p := circular(rp, tc.law, tc.u...)
			flux, err := NewEngine().LightCurve(p, []float64{0})
			require.NoError(t, err)
			assert.InDelta(t, rp*rp/tc.norm, 1-flux[0], 1e-7)
		})
	}
}

func TestTransitIsSymmetricAndBounded(t *testing.T) {
	p := circular(0.12, "quadratic", 0.3, 0.2)
	p.Inc = 88
	times := linspace(-0.2, 0.2, 41)
	flux, err := NewEngine().LightCurve(p, times)
	require.NoError(t, err)
	n := len(flux)
	for i := range flux {
		assert.InDelta(t, flux[i], flux[n-1-i], 1e-9)
		assert.LessOrEqual(t, flux[i], 1.0)
		assert.Greater(t, flux[i], 0.9)
	}
	assert.Less(t, flux[n/2], flux[0])
}

func TestSecondaryEclipse(t *testing.T) {
	p := circular(0.1, "quadratic", 0.3, 0.2)
	p.TransitType = Secondary
	ts := SecondaryTime(p)
	assert.InDelta(t, 1.5, ts, 1e-9)

	flux, err := NewEngine().LightCurve(p, []float64{0, ts, ts + 0.7})
	require.NoError(t, err)
	assert.InDelta(t, 1+p.Fp, flux[0], 1e-15, "planet in front is not eclipsed")
	assert.InDelta(t, 1.0, flux[1], 1e-12, "planet fully hidden")
	assert.InDelta(t, 1+p.Fp, flux[2], 1e-15)
}

func TestSecondaryTimeOverride(t *testing.T) {
	p := circular(0.1, "uniform")
	p.TransitType = Secondary
	p.Set("t_secondary", 1.6)
	flux, err := NewEngine().LightCurve(p, []float64{1.5, 1.6})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, flux[1], 1e-12)
	assert.Greater(t, flux[0], 1.0)
}

func TestEccentricOrbit(t *testing.T) {
	for _, M := range []float64{0.1, 1.0, 2.5, 3.1} {
		for _, e := range []float64{0.1, 0.5, 0.9} {
			E := eccentricAnomaly(M, e)
			assert.InDelta(t, M, E-e*math.Sin(E), 1e-10)
		}
	}
	p := circular(0.1, "uniform")
	p.Ecc = 0.3
	p.W = 40
	flux, err := NewEngine().LightCurve(p, []float64{0})
	require.NoError(t, err)
	assert.InDelta(t, 0.99, flux[0], 1e-9, "transit still centered on t0")
}

func TestLightCurveErrors(t *testing.T) {
	tcs := map[string]struct {
		mutate func(p *Params)
		want   error
	}{
		"unknown law":    {mutate: func(p *Params) { p.LimbDark = "cubic" }, want: ErrUnknownLaw},
		"coeff count":    {mutate: func(p *Params) { p.LimbDark = "quadratic"; p.U = []float64{0.1} }, want: ErrShape},
		"period":         {mutate: func(p *Params) { p.Per = 0 }, want: ErrInvalidParams},
		"eccentricity":   {mutate: func(p *Params) { p.Ecc = 1 }, want: ErrInvalidParams},
		"transit type":   {mutate: func(p *Params) { p.TransitType = "tertiary" }, want: ErrTransitType},
		"semimajor axis": {mutate: func(p *Params) { p.A = -1 }, want: ErrInvalidParams},
	}
	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			p := circular(0.1, "uniform")
			tc.mutate(p)
			_, err := NewEngine().LightCurve(p, []float64{0})
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestLawRegistry(t *testing.T) {
	tcs := map[string]int{
		"uniform": 0, "linear": 1, "quadratic": 2, "square-root": 2,
		"logarithmic": 2, "exponential": 2, "power2": 2, "3-parameter": 3,
		"4-parameter": 4, "nonlinear": 4,
	}
	for name, n := range tcs {
		law, err := LookupLaw(name)
		require.NoError(t, err, name)
		assert.Equal(t, n, law.NCoeffs, name)
		u := make([]float64, n)
		assert.InDelta(t, 1.0, law.Intensity(1, u), 1e-12, "zero coefficients give a uniform disk")
	}
}

func TestParamsSet(t *testing.T) {
	p := NewParams()
	for _, title := range []string{"t0", "per", "rp", "a", "inc", "ecc", "w", "fp", "t_secondary"} {
		assert.True(t, p.Set(title, 1), title)
	}
	assert.False(t, p.Set("c0", 1))
	assert.Equal(t, 1.0, p.Inc)
}
