// Package kernels provides stationary covariance functions over
// multi-dimensional inputs, each acting on a single input axis, together
// with their sums and products.
package kernels

import (
	"gonum.org/v1/gonum/mat"
)

type Kernel interface {
	// Covariance between the input points x1 and x2.
	Value(x1, x2 []float64) float64
}

// Gram builds the covariance matrix K[i][j] = k(x[i], x[j]) over the rows of
// x.
func Gram(k Kernel, x [][]float64) *mat.SymDense {
	n := len(x)
	out := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			out.SetSym(i, j, k.Value(x[i], x[j]))
		}
	}
	return out
}

// sqdist is the squared distance along one axis scaled by the metric.
func sqdist(x1, x2 []float64, axis int, metric float64) float64 {
	d := x1[axis] - x2[axis]
	return d * d / metric
}

type Constant struct {
	value float64
}

func NewConstant(value float64) *Constant {
	return &Constant{value: value}
}

func (k *Constant) Value(x1, x2 []float64) float64 {
	return k.value
}

type Sum struct {
	parts []Kernel
}

func NewSum(parts ...Kernel) *Sum {
	flat := make([]Kernel, 0, len(parts))
	for _, p := range parts {
		switch p := p.(type) {
		case *Sum:
			flat = append(flat, p.parts...)
		default:
			flat = append(flat, p)
		}
	}
	return &Sum{parts: flat}
}

func (k *Sum) Value(x1, x2 []float64) float64 {
	v := 0.0
	for _, p := range k.parts {
		v += p.Value(x1, x2)
	}
	return v
}

type Product struct {
	parts []Kernel
}

func NewProduct(parts ...Kernel) *Product {
	flat := make([]Kernel, 0, len(parts))
	for _, p := range parts {
		switch p := p.(type) {
		case *Product:
			flat = append(flat, p.parts...)
		default:
			flat = append(flat, p)
		}
	}
	return &Product{parts: flat}
}

func (k *Product) Value(x1, x2 []float64) float64 {
	v := 1.0
	for _, p := range k.parts {
		v *= p.Value(x1, x2)
	}
	return v
}
