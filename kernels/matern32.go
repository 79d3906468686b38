package kernels

import (
	"math"
)

var (
	_ Kernel = (*Matern32)(nil)
	_ Kernel = (*ExpSquared)(nil)
	_ Kernel = (*Exp)(nil)
	_ Kernel = (*RationalQuadratic)(nil)
)

// Matern32 is k(r²) = (1 + √(3r²)) exp(-√(3r²)), with r² = Δx²/metric along
// one axis.
type Matern32 struct {
	metric float64
	axis   int
}

func NewMatern32(metric float64, axis int) *Matern32 {
	return &Matern32{metric: metric, axis: axis}
}

func (k *Matern32) Value(x1, x2 []float64) float64 {
	r := math.Sqrt(3 * sqdist(x1, x2, k.axis, k.metric))
	return (1 + r) * math.Exp(-r)
}

// ExpSquared is k(r²) = exp(-r²/2).
type ExpSquared struct {
	metric float64
	axis   int
}

func NewExpSquared(metric float64, axis int) *ExpSquared {
	return &ExpSquared{metric: metric, axis: axis}
}

func (k *ExpSquared) Value(x1, x2 []float64) float64 {
	return math.Exp(-0.5 * sqdist(x1, x2, k.axis, k.metric))
}

// Exp is k(r²) = exp(-√r²).
type Exp struct {
	metric float64
	axis   int
}

func NewExp(metric float64, axis int) *Exp {
	return &Exp{metric: metric, axis: axis}
}

func (k *Exp) Value(x1, x2 []float64) float64 {
	return math.Exp(-math.Sqrt(sqdist(x1, x2, k.axis, k.metric)))
}

// RationalQuadratic is k(r²) = (1 + r²/(2α))^-α.
type RationalQuadratic struct {
	alpha  float64
	metric float64
	axis   int
}

func NewRationalQuadratic(alpha, metric float64, axis int) *RationalQuadratic {
	return &RationalQuadratic{alpha: alpha, metric: metric, axis: axis}
}

func (k *RationalQuadratic) Value(x1, x2 []float64) float64 {
	r2 := sqdist(x1, x2, k.axis, k.metric)
	return math.Pow(1+r2/(2*k.alpha), -k.alpha)
}
