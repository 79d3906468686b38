package utils

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/stat"
)

// Concatenate multiple vectors.
func ConcatVecs(size int, vecs ...blas64.Vector) blas64.Vector {
	out := blas64.Vector{N: size, Inc: 1, Data: make([]float64, size)}
	offset := 0
	for _, vec := range vecs {
		for i := 0; i < vec.N; i++ {
			out.Data[offset+i] = vec.Data[i*vec.Inc]
		}
		offset += vec.N
	}
	return out
}

// Make a block diagonal general matrix.
func BlockDiag(size int, mats ...blas64.General) blas64.General {
	out := blas64.General{
		Rows:   size,
		Cols:   size,
		Stride: size,
		Data:   make([]float64, size*size),
	}
	offset := 0
	for _, m := range mats {
		for i := 0; i < m.Rows; i++ {
			copy(out.Data[(offset+i)*size+offset:], m.Data[i*m.Stride:i*m.Stride+m.Cols])
		}
		offset += m.Rows
	}
	return out
}

// Make a block diagonal symmetric matrix. Blocks are expected to be stored
// in full, both triangles filled.
func BlockDiagSym(size int, mats ...blas64.Symmetric) blas64.Symmetric {
	out := blas64.Symmetric{
		N:      size,
		Stride: size,
		Data:   make([]float64, size*size),
		Uplo:   blas.Upper,
	}
	offset := 0
	for _, m := range mats {
		for i := 0; i < m.N; i++ {
			copy(out.Data[(offset+i)*size+offset:], m.Data[i*m.Stride:i*m.Stride+m.N])
		}
		offset += m.N
	}
	return out
}

// Identity Matrix.
func Eye(n int) blas64.General {
	out := blas64.General{
		Rows:   n,
		Cols:   n,
		Stride: n,
		Data:   make([]float64, n*n),
	}
	for i := 0; i < n; i++ {
		out.Data[i*n+i] = 1
	}
	return out
}

// Ones returns a slice of n ones.
func Ones(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}
	return out
}

// Center returns x - mean(x).
func Center(x []float64) []float64 {
	out := make([]float64, len(x))
	copy(out, x)
	floats.AddConst(-stat.Mean(x, nil), out)
	return out
}

// Standardize returns (x - mean(x)) / std(x), with the population standard
// deviation. A constant input is only centered.
func Standardize(x []float64) []float64 {
	mean, std := stat.PopMeanStdDev(x, nil)
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = v - mean
		if std > 0 {
			out[i] /= std
		}
	}
	return out
}

// Interp evaluates the piecewise-linear interpolant of (xp, fp) at x. xp must
// be strictly increasing. Values outside the range of xp take the value of
// the nearest end point.
func Interp(x, xp, fp []float64) ([]float64, error) {
	out := make([]float64, len(x))
	switch len(xp) {
	case 0:
		return out, nil
	case 1:
		for i := range out {
			out[i] = fp[0]
		}
		return out, nil
	}
	var pl interp.PiecewiseLinear
	if err := pl.Fit(xp, fp); err != nil {
		return nil, errors.Wrap(err, "unable to fit interpolant")
	}
	for i, v := range x {
		out[i] = pl.Predict(v)
	}
	return out, nil
}
