// Package config carries the process-wide knobs for the store: the
// accumulator's power budget, the curve identifier, and the public
// parameter file format version. A struct rather than bare constants,
// since Q is a deployment choice rather than a compile-time constant.
package config

// CurveID identifies the pairing-friendly curve backing the accumulator.
// Only BLS12-381 is implemented; the field exists so parameter files are
// self-describing and a future curve swap fails loudly on mismatch.
type CurveID string

const (
	CurveBLS12381 CurveID = "bls12-381"
)

// ParamFileVersion is the current public-parameter file format version.
// Bumped whenever the header or point encoding changes.
const ParamFileVersion = "1.0.0"

// DefaultQ is the default power budget: the maximum live-set size a
// freshly generated parameter set can commit to. Callers with larger
// expected sets should generate their own parameters with a larger Q.
const DefaultQ = 1024

// Params bundles the configuration needed to generate or validate a set
// of accumulator public parameters.
type Params struct {
	// Curve is the pairing-friendly curve in use.
	Curve CurveID
	// Q is the power budget: the accumulator can commit to sets of up to
	// Q live keys.
	Q uint64
	// Version is the public parameter file format version.
	Version string
}

// DefaultParams returns the default configuration: BLS12-381, Q =
// DefaultQ, current file format version.
func DefaultParams() Params {
	return Params{
		Curve:   CurveBLS12381,
		Q:       DefaultQ,
		Version: ParamFileVersion,
	}
}
