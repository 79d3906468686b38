package gp

import (
	"github.com/pkg/errors"
)

var (
	ErrUnknownInput   = errors.New("unknown kernel input")
	ErrMetricIndex    = errors.New("metric enumeration must start at m1")
	ErrUnsupported    = errors.New("operation not supported by backend")
	ErrUnknownBackend = errors.New("unknown GP backend")
	ErrUnknownKernel  = errors.New("unknown kernel type")
	ErrShape          = errors.New("shape mismatch")
	ErrNotPositive    = errors.New("covariance matrix is not positive definite")
)
