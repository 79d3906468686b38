package transit

// Transit types.
const (
	Primary   = "primary"
	Secondary = "secondary"
)

// Params mirrors the attribute set of a batman TransitParams object. Angles
// are in degrees, distances in stellar radii.
type Params struct {
	T0          float64 // Time of inferior conjunction.
	Per         float64 // Orbital period.
	Rp          float64 // Planet radius.
	A           float64 // Semi-major axis.
	Inc         float64 // Inclination.
	Ecc         float64 // Eccentricity.
	W           float64 // Argument of periastron.
	Fp          float64 // Planet-to-star flux ratio.
	TSecondary  float64 // Time of secondary eclipse, derived from the orbit when unset.
	U           []float64
	LimbDark    string
	TransitType string

	tSecondarySet bool
}

// NewParams returns parameters for a circular orbit with w = 90°.
func NewParams() *Params {
	return &Params{
		W:           90,
		LimbDark:    "uniform",
		TransitType: Primary,
	}
}

// Set assigns a parameter by its batman attribute name and reports whether
// the name was recognised. Unrecognised names are ignored.
func (p *Params) Set(title string, v float64) bool {
	switch title {
	case "t0":
		p.T0 = v
	case "per":
		p.Per = v
	case "rp":
		p.Rp = v
	case "a":
		p.A = v
	case "inc":
		p.Inc = v
	case "ecc":
		p.Ecc = v
	case "w":
		p.W = v
	case "fp":
		p.Fp = v
	case "t_secondary":
		p.TSecondary = v
		p.tSecondarySet = true
	default:
		return false
	}
	return true
}
