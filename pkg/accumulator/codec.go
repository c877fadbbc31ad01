package accumulator

import (
	"fmt"
	"io"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/blang/semver/v4"
	"github.com/fxamacker/cbor/v2"

	"github.com/kazmiller0/acc-tree/config"
)

// paramFileHeader is the (curve_id, Q, version) header of the public
// parameter file format.
type paramFileHeader struct {
	Curve   string `cbor:"curve"`
	Q       uint64 `cbor:"q"`
	Version string `cbor:"version"`
}

// paramFileBody is the full on-disk representation: the header followed
// by the G1 and G2 power lists in the curve's canonical compressed
// point encoding. CBOR (github.com/fxamacker/cbor/v2) gives a compact,
// self-describing binary container without hand-rolling a TLV format.
type paramFileBody struct {
	Header paramFileHeader `cbor:"header"`
	G1     [][]byte        `cbor:"g1"`
	G2     [][]byte        `cbor:"g2"`
}

// ExportParams writes params to w in the public parameter file format.
// The version string must be valid semver (github.com/blang/semver/v4);
// this is what lets a future format change bump the version and have
// old Verifiers reject it instead of misparsing it.
func ExportParams(w io.Writer, params *PublicParams) error {
	if _, err := semver.Parse(params.Version); err != nil {
		return fmt.Errorf("accumulator: invalid parameter version %q: %w", params.Version, err)
	}

	body := paramFileBody{
		Header: paramFileHeader{
			Curve:   string(params.Curve),
			Q:       params.Q,
			Version: params.Version,
		},
		G1: make([][]byte, len(params.G1Powers)),
		G2: make([][]byte, len(params.G2Powers)),
	}
	for i := range params.G1Powers {
		b := params.G1Powers[i].Bytes()
		body.G1[i] = append([]byte(nil), b[:]...)
	}
	for i := range params.G2Powers {
		b := params.G2Powers[i].Bytes()
		body.G2[i] = append([]byte(nil), b[:]...)
	}

	enc := cbor.NewEncoder(w)
	if err := enc.Encode(&body); err != nil {
		return fmt.Errorf("accumulator: encode parameter file: %w", err)
	}
	return nil
}

// LoadParams reads a parameter file written by ExportParams. It is
// bit-exact with what a Verifier built from the same bytes would
// compute, which is what makes Prover and Verifier parameter sets
// interoperable.
func LoadParams(r io.Reader) (*PublicParams, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("accumulator: read parameter file: %w", err)
	}

	var body paramFileBody
	if err := cbor.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("accumulator: decode parameter file: %w", err)
	}
	version, err := semver.Parse(body.Header.Version)
	if err != nil {
		return nil, fmt.Errorf("accumulator: invalid parameter version %q: %w", body.Header.Version, err)
	}
	if !version.Equals(semver.MustParse(config.ParamFileVersion)) {
		return nil, fmt.Errorf("accumulator: unsupported parameter version %q (want %s)", body.Header.Version, config.ParamFileVersion)
	}
	if config.CurveID(body.Header.Curve) != config.CurveBLS12381 {
		return nil, fmt.Errorf("accumulator: unsupported curve %q", body.Header.Curve)
	}

	g1Powers := make([]bls12381.G1Affine, len(body.G1))
	for i, b := range body.G1 {
		if _, err := g1Powers[i].SetBytes(b); err != nil {
			return nil, fmt.Errorf("accumulator: decode G1 power %d: %w", i, err)
		}
	}
	g2Powers := make([]bls12381.G2Affine, len(body.G2))
	for i, b := range body.G2 {
		if _, err := g2Powers[i].SetBytes(b); err != nil {
			return nil, fmt.Errorf("accumulator: decode G2 power %d: %w", i, err)
		}
	}

	return &PublicParams{
		Curve:    config.CurveID(body.Header.Curve),
		Q:        body.Header.Q,
		Version:  body.Header.Version,
		G1Powers: g1Powers,
		G2Powers: g2Powers,
	}, nil
}
