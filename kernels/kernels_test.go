package kernels

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStationaryKernels(t *testing.T) {
	x1 := []float64{0.0, 5.0}
	x2 := []float64{1.0, 5.0}
	tcs := map[string]struct {
		kernel Kernel
		want   float64
	}{
		"matern32":           {kernel: NewMatern32(1.0, 0), want: (1 + math.Sqrt(3)) * math.Exp(-math.Sqrt(3))},
		"matern32 metric":    {kernel: NewMatern32(4.0, 0), want: (1 + math.Sqrt(0.75)) * math.Exp(-math.Sqrt(0.75))},
		"expsquared":         {kernel: NewExpSquared(1.0, 0), want: math.Exp(-0.5)},
		"exp":                {kernel: NewExp(1.0, 0), want: math.Exp(-1)},
		"rational quadratic": {kernel: NewRationalQuadratic(1.0, 1.0, 0), want: 1 / 1.5},
		"other axis":         {kernel: NewMatern32(1.0, 1), want: 1},
		"constant":           {kernel: NewConstant(2.5), want: 2.5},
		"sum":                {kernel: NewSum(NewConstant(1), NewExp(1.0, 0)), want: 1 + math.Exp(-1)},
		"product":            {kernel: NewProduct(NewConstant(2), NewExp(1.0, 0)), want: 2 * math.Exp(-1)},
	}
	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			assert.InDelta(t, tc.want, tc.kernel.Value(x1, x2), 1e-14)
			assert.InDelta(t, tc.kernel.Value(x1, x2), tc.kernel.Value(x2, x1), 1e-15)
		})
	}
}

func TestNestedCompositesFlatten(t *testing.T) {
	s := NewSum(NewSum(NewConstant(1), NewConstant(2)), NewConstant(3))
	assert.Len(t, s.parts, 3)
	p := NewProduct(NewProduct(NewConstant(1), NewConstant(2)), NewConstant(3))
	assert.Len(t, p.parts, 3)
	assert.Equal(t, 6.0, p.Value(nil, nil))
}

func TestGram(t *testing.T) {
	x := [][]float64{{0}, {1}, {3}}
	K := Gram(NewExpSquared(1.0, 0), x)
	n, _ := K.Dims()
	assert.Equal(t, 3, n)
	for i := 0; i < n; i++ {
		assert.Equal(t, 1.0, K.At(i, i))
	}
	assert.InDelta(t, math.Exp(-2), K.At(1, 2), 1e-15)
	assert.Equal(t, K.At(0, 2), K.At(2, 0))
}
