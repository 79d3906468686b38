package models

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/lucasmaystre/lcfit/logging"
	"github.com/lucasmaystre/lcfit/params"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var approx = cmpopts.EquateApprox(0, 1e-12)

func polyStore(values map[string]float64) *params.Store {
	s := params.New()
	for _, name := range []string{"c0", "c1", "c2", "c3", "c0_1", "c1_1", "c2_1"} {
		if v, ok := values[name]; ok {
			s.Add(name, params.Param{Value: v})
		}
	}
	return s
}

func constant(t *testing.T) *Polynomial {
	m, err := NewPolynomial(params.Of([]string{"c0"}, []float64{1}), PolynomialConfig{}, WithName("one"))
	require.NoError(t, err)
	return m
}

func TestEndToEndConstantPolynomial(t *testing.T) {
	s := params.Of(
		[]string{"c0", "c1", "c2", "c3", "c4", "c5", "c6", "c7", "c8"},
		[]float64{1, 0, 0, 0, 0, 0, 0, 0, 0},
	)
	m, err := NewPolynomial(s, PolynomialConfig{})
	require.NoError(t, err)
	require.NoError(t, m.SetFlux([]float64{1, 1, 1, 1, 1}))

	got, err := m.Eval([]float64{0, 1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 1, 1, 1}, got)
	assert.Equal(t, [][]float64{{1}}, m.Coeffs())
}

func TestMultiplicativeIdentity(t *testing.T) {
	time := []float64{0, 0.5, 1, 1.5, 2, 2.5}
	tcs := map[string]struct {
		build func() (Model, error)
	}{
		"polynomial": {build: func() (Model, error) {
			return NewPolynomial(polyStore(map[string]float64{"c0": 1.2, "c1": -0.3, "c2": 0.05}), PolynomialConfig{})
		}},
		"exponential": {build: func() (Model, error) {
			return NewExponential(params.Of([]string{"r0", "r1", "r2"}, []float64{0.2, 1.5, -0.1}), ExponentialConfig{})
		}},
	}
	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			m, err := tc.build()
			require.NoError(t, err)
			want, err := m.Eval(time)
			require.NoError(t, err)

			for _, order := range [][2]Model{{m, constant(t)}, {constant(t), m}} {
				c, err := Combine(order[0], order[1])
				require.NoError(t, err)
				got, err := c.Eval(time)
				require.NoError(t, err)
				assert.Equal(t, want, got)
			}
		})
	}
}

func TestCombineIsCommutative(t *testing.T) {
	time := []float64{-1, -0.5, 0, 0.5, 1, 3}
	build := func() (Model, Model) {
		a, err := NewPolynomial(polyStore(map[string]float64{"c0": 1, "c1": 0.01}), PolynomialConfig{})
		require.NoError(t, err)
		b, err := NewExponential(params.Of([]string{"r0", "r1", "r2"}, []float64{0.1, 2, 0}), ExponentialConfig{})
		require.NoError(t, err)
		return a, b
	}
	a, b := build()
	ab, err := Combine(a, b)
	require.NoError(t, err)
	a, b = build()
	ba, err := Combine(b, a)
	require.NoError(t, err)

	x, err := ab.Eval(time)
	require.NoError(t, err)
	y, err := ba.Eval(time)
	require.NoError(t, err)
	if diff := cmp.Diff(x, y, approx); diff != "" {
		t.Errorf("combine(a, b) != combine(b, a) (-ab +ba):\n%s", diff)
	}
	assert.Equal(t, []string{"c0", "c1", "r0", "r1", "r2"}, ab.Parameters().Names())
}

func TestCompositeUpdateReachesChildren(t *testing.T) {
	a, err := NewPolynomial(polyStore(map[string]float64{"c0": 1}), PolynomialConfig{})
	require.NoError(t, err)
	b, err := NewExponential(params.Of([]string{"r0", "r1", "r2"}, []float64{0, 0, 0}), ExponentialConfig{})
	require.NoError(t, err)
	c, err := Combine(a, b)
	require.NoError(t, err)

	require.NoError(t, c.Update([]float64{2, 0.5}, []string{"c0", "r0"}))
	got, err := c.Eval([]float64{0, 1, 2})
	require.NoError(t, err)
	// With r1 = r2 = 0 the ramp is 0.5 + 1 everywhere.
	assert.Equal(t, []float64{3, 3, 3}, got)

	v, err := a.Parameters().Value("c0")
	require.NoError(t, err)
	assert.Equal(t, 2.0, v, "copy made by Combine shares the store")
}

func TestUpdateUnknownNameIsNoop(t *testing.T) {
	store := polyStore(map[string]float64{"c0": 1, "c1": 2})
	poly, err := NewPolynomial(store, PolynomialConfig{})
	require.NoError(t, err)
	ramp, err := NewExponential(params.Of([]string{"r0", "r1", "r2"}, []float64{1, 2, 3}), ExponentialConfig{})
	require.NoError(t, err)
	comp, err := Combine(poly, ramp)
	require.NoError(t, err)

	for name, m := range map[string]Model{"polynomial": poly, "exponential": ramp, "composite": comp} {
		t.Run(name, func(t *testing.T) {
			before := map[string]float64{}
			m.Parameters().Each(func(name string, p *params.Param) { before[name] = p.Value })

			require.NoError(t, m.Update([]float64{999}, []string{"nonexistent_name"}))

			m.Parameters().Each(func(name string, p *params.Param) {
				assert.Equal(t, before[name], p.Value, name)
			})
			assert.False(t, m.Parameters().Has("nonexistent_name"))
		})
	}
}

func TestStrictUpdate(t *testing.T) {
	m, err := NewPolynomial(polyStore(map[string]float64{"c0": 1}), PolynomialConfig{},
		WithStrict(true), WithLogger(logging.NewTestLogger()))
	require.NoError(t, err)

	err = m.Update([]float64{999}, []string{"nonexistent_name"})
	assert.ErrorIs(t, err, ErrNoMatchingParameters)
	assert.NoError(t, m.Update([]float64{2, 999}, []string{"c0", "nonexistent_name"}))
	assert.NoError(t, m.Update(nil, nil))

	other, err := NewExponential(params.Of([]string{"r0", "r1", "r2"}, []float64{0, 0, 0}), ExponentialConfig{},
		WithStrict(true))
	require.NoError(t, err)
	c, err := Combine(m, other, WithStrict(true))
	require.NoError(t, err)
	assert.NoError(t, c.Update([]float64{0.1}, []string{"r0"}), "one child matching is enough")
	assert.ErrorIs(t, c.Update([]float64{1}, []string{"zz"}), ErrNoMatchingParameters)
}

func TestUpdateShapeMismatch(t *testing.T) {
	m := constant(t)
	assert.ErrorIs(t, m.Update([]float64{1, 2}, []string{"c0"}), ErrShape)
}

func TestCombineRejectsNil(t *testing.T) {
	_, err := Combine(constant(t), nil)
	assert.ErrorIs(t, err, ErrNotModel)
	_, err = Combine(nil, constant(t))
	assert.ErrorIs(t, err, ErrNotModel)
}

func TestEvalWithoutTime(t *testing.T) {
	m := constant(t)
	_, err := m.Eval(nil)
	assert.ErrorIs(t, err, ErrTimeUnset)

	c, err := NewComposite(nil, nil)
	require.NoError(t, err)
	_, err = c.Eval(nil)
	assert.ErrorIs(t, err, ErrTimeUnset)
	got, err := c.Eval([]float64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1}, got)
}

func TestCompositeLengthMismatch(t *testing.T) {
	short := constant(t)
	require.NoError(t, short.SetTime([]float64{0, 1}))
	c, err := NewComposite([]Model{constant(t), short}, nil)
	require.NoError(t, err)
	_, err = c.Eval([]float64{0, 1, 2})
	assert.ErrorIs(t, err, ErrShape)
}

func TestAxisValidation(t *testing.T) {
	m := constant(t)
	tcs := map[string]struct {
		axis []float64
	}{
		"nil":      {axis: nil},
		"empty":    {axis: []float64{}},
		"nan":      {axis: []float64{0, nan()}},
		"infinite": {axis: []float64{inf()}},
	}
	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, m.SetTime(tc.axis), ErrInvalidAxis)
			assert.ErrorIs(t, m.SetFlux(tc.axis), ErrInvalidAxis)
		})
	}
}

func TestUnits(t *testing.T) {
	m := constant(t)
	assert.Equal(t, BJD, m.Units())
	require.NoError(t, m.SetUnits(Phase))
	assert.Equal(t, Phase, m.Units())
	assert.ErrorIs(t, m.SetUnits("JD"), ErrInvalidUnits)

	_, err := NewPolynomial(polyStore(nil), PolynomialConfig{}, WithUnits("days"))
	assert.ErrorIs(t, err, ErrInvalidUnits)

	c, err := Combine(m, constant(t))
	require.NoError(t, err)
	assert.Equal(t, Phase, c.Units())
	assert.Equal(t, DefaultName, c.Name())
}

func TestInterp(t *testing.T) {
	m := constant(t)
	require.NoError(t, m.SetTime([]float64{0, 1, 2}))
	require.NoError(t, m.SetFlux([]float64{0, 10, 20}))
	require.NoError(t, m.Interp([]float64{-1, 0.5, 1.25, 3}))
	assert.Equal(t, []float64{-1, 0.5, 1.25, 3}, m.Time())
	assert.Equal(t, []float64{0, 5, 12.5, 20}, m.Flux())

	require.NoError(t, m.SetFlux([]float64{1}))
	assert.ErrorIs(t, m.Interp([]float64{0}), ErrShape)

	require.NoError(t, m.SetTime([]float64{0, 0, 1}))
	require.NoError(t, m.SetFlux([]float64{1, 2, 3}))
	assert.ErrorIs(t, m.Interp([]float64{0.5}), ErrShape, "time must be strictly increasing")
	assert.Equal(t, []float64{1, 2, 3}, m.Flux())
}

func TestCloneIsIndependent(t *testing.T) {
	a, err := NewPolynomial(polyStore(map[string]float64{"c0": 1, "c1": 1}), PolynomialConfig{})
	require.NoError(t, err)
	b, err := NewExponential(params.Of([]string{"r0", "r1", "r2"}, []float64{0, 0, 0}), ExponentialConfig{})
	require.NoError(t, err)
	c, err := Combine(a, b)
	require.NoError(t, err)
	time := []float64{0, 1, 2}
	want, err := c.Eval(time)
	require.NoError(t, err)

	clone := c.Clone()
	require.NoError(t, clone.Update([]float64{5, 1}, []string{"c1", "r0"}))

	got, err := c.Eval(time)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	v, err := c.Parameters().Value("c1")
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	cloned, err := clone.Eval(time)
	require.NoError(t, err)
	assert.Equal(t, []float64{-8, 2, 12}, cloned)
	v, err = clone.Parameters().Value("r0")
	require.NoError(t, err)
	assert.Equal(t, 1.0, v, "merged store of the clone follows its components")
}
