package transit

import (
	"math"

	"github.com/pkg/errors"
)

var ErrUnknownLaw = errors.New("unknown limb-darkening law")

// Law is a limb-darkening profile: the stellar intensity, relative to the
// disk center, as a function of μ = cos θ = √(1 - r²).
type Law struct {
	Name      string
	NCoeffs   int
	Intensity func(mu float64, u []float64) float64
}

var laws = map[string]Law{
	"uniform": {
		Name:    "uniform",
		NCoeffs: 0,
		Intensity: func(mu float64, u []float64) float64 {
			return 1
		},
	},
	"linear": {
		Name:    "linear",
		NCoeffs: 1,
		Intensity: func(mu float64, u []float64) float64 {
			return 1 - u[0]*(1-mu)
		},
	},
	"quadratic": {
		Name:    "quadratic",
		NCoeffs: 2,
		Intensity: func(mu float64, u []float64) float64 {
			return 1 - u[0]*(1-mu) - u[1]*(1-mu)*(1-mu)
		},
	},
	"square-root": {
		Name:    "square-root",
		NCoeffs: 2,
		Intensity: func(mu float64, u []float64) float64 {
			return 1 - u[0]*(1-mu) - u[1]*(1-math.Sqrt(mu))
		},
	},
	"logarithmic": {
		Name:    "logarithmic",
		NCoeffs: 2,
		Intensity: func(mu float64, u []float64) float64 {
			if mu == 0 {
				return 1 - u[0]
			}
			return 1 - u[0]*(1-mu) - u[1]*mu*math.Log(mu)
		},
	},
	"exponential": {
		Name:    "exponential",
		NCoeffs: 2,
		Intensity: func(mu float64, u []float64) float64 {
			return 1 - u[0]*(1-mu) - u[1]/(1-math.Exp(mu))
		},
	},
	"power2": {
		Name:    "power2",
		NCoeffs: 2,
		Intensity: func(mu float64, u []float64) float64 {
			return 1 - u[0]*(1-math.Pow(mu, u[1]))
		},
	},
	"3-parameter": {
		Name:    "3-parameter",
		NCoeffs: 3,
		Intensity: func(mu float64, u []float64) float64 {
			return 1 - u[0]*(1-mu) - u[1]*(1-math.Pow(mu, 1.5)) - u[2]*(1-mu*mu)
		},
	},
	"nonlinear": {
		Name:    "nonlinear",
		NCoeffs: 4,
		Intensity: func(mu float64, u []float64) float64 {
			sq := math.Sqrt(mu)
			return 1 - u[0]*(1-sq) - u[1]*(1-mu) - u[2]*(1-mu*sq) - u[3]*(1-mu*mu)
		},
	},
}

// LookupLaw resolves a limb-darkening law by name. "4-parameter" is an alias
// of "nonlinear".
func LookupLaw(name string) (Law, error) {
	if name == "4-parameter" {
		name = "nonlinear"
	}
	law, ok := laws[name]
	if !ok {
		return Law{}, errors.Wrapf(ErrUnknownLaw, "%q", name)
	}
	return law, nil
}
