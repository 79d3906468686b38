package models

import (
	"github.com/pkg/errors"
)

var (
	ErrInvalidUnits         = errors.New("units must be 'BJD', 'MJD', or 'phase'")
	ErrInvalidAxis          = errors.New("axis must be a non-empty sequence of finite numbers")
	ErrNotModel             = errors.New("only another Model instance may be multiplied")
	ErrTimeUnset            = errors.New("time axis is not set")
	ErrShape                = errors.New("shape mismatch")
	ErrNilParameters        = errors.New("parameters must be set")
	ErrMissingParameter     = errors.New("missing parameter")
	ErrNoMatchingParameters = errors.New("update matched no parameter")
)
