// Package accumulator implements the bilinear-pairing accumulator
// primitive over BLS12-381, using github.com/consensys/gnark-crypto's
// ecc/bls12-381 group and pairing implementation directly, with no
// circuit frontend in the loop.
package accumulator

import (
	"crypto/rand"
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/kazmiller0/acc-tree/config"
	"github.com/kazmiller0/acc-tree/internal/logging"
	"github.com/kazmiller0/acc-tree/pkg/keyenc"
	"github.com/kazmiller0/acc-tree/pkg/kverrors"
)

// PublicParams holds the public powers {g1^{s^i}} and {g2^{s^i}} for
// i = 0..Q, the accumulator's shared, process-wide, read-only state.
// Verifiers need only a PublicParams value — never the Trapdoor that
// produced it.
type PublicParams struct {
	Curve    config.CurveID
	Q        uint64
	Version  string
	G1Powers []bls12381.G1Affine
	G2Powers []bls12381.G2Affine
}

// Trapdoor holds the secret scalar s. It exists only on the Prover side
// and is never serialized to an untrusted boundary.
type Trapdoor struct {
	s *big.Int
}

// GenerateTrapdoor draws a uniformly random non-zero element of F_r.
func GenerateTrapdoor() (*Trapdoor, error) {
	modulus := fr.Modulus()
	for {
		s, err := rand.Int(rand.Reader, modulus)
		if err != nil {
			return nil, err
		}
		if s.Sign() != 0 {
			return &Trapdoor{s: s}, nil
		}
	}
}

// DevSetup performs a single-party trusted setup of the accumulator's
// public parameters: a 1-of-1 trust assumption, explicitly not for
// production use. Real deployments must run an external ceremony (out
// of scope for this core) and load the resulting parameters with
// LoadParams instead of calling DevSetup.
func DevSetup(cfg config.Params) (*PublicParams, *Trapdoor, error) {
	logging.Logger().Warn().
		Uint64("Q", cfg.Q).
		Msg("accumulator: single-party dev setup (1-of-1 trust) — do not use in production")

	td, err := GenerateTrapdoor()
	if err != nil {
		return nil, nil, err
	}
	params, err := ParamsFromTrapdoor(cfg, td)
	if err != nil {
		return nil, nil, err
	}
	return params, td, nil
}

// ParamsFromTrapdoor derives the public power lists from a known
// trapdoor. Exposed separately from DevSetup so tests can construct
// small, fast parameter sets deterministically.
func ParamsFromTrapdoor(cfg config.Params, td *Trapdoor) (*PublicParams, error) {
	modulus := fr.Modulus()
	g1Gen := keyenc.G1Generator()
	g2Gen := keyenc.G2Generator()

	g1Powers := make([]bls12381.G1Affine, cfg.Q+1)
	g2Powers := make([]bls12381.G2Affine, cfg.Q+1)

	sPow := big.NewInt(1)
	for i := uint64(0); i <= cfg.Q; i++ {
		g1Powers[i].ScalarMultiplication(&g1Gen, sPow)
		g2Powers[i].ScalarMultiplication(&g2Gen, sPow)
		sPow = new(big.Int).Mul(sPow, td.s)
		sPow.Mod(sPow, modulus)
	}

	return &PublicParams{
		Curve:    cfg.Curve,
		Q:        cfg.Q,
		Version:  cfg.Version,
		G1Powers: g1Powers,
		G2Powers: g2Powers,
	}, nil
}

// CommitG1 evaluates poly(s) in G1 using the precomputed powers —
// Horner-like evaluation against public powers of s, performed without
// the Prover needing s directly once PublicParams has been generated.
func (p *PublicParams) CommitG1(poly Polynomial) (bls12381.G1Affine, error) {
	if len(poly) > len(p.G1Powers) {
		return bls12381.G1Affine{}, kverrors.ErrParamBudgetExceeded
	}
	var acc bls12381.G1Jac
	for i, c := range poly {
		if c.Sign() == 0 {
			continue
		}
		var term bls12381.G1Affine
		term.ScalarMultiplication(&p.G1Powers[i], c)
		var termJac bls12381.G1Jac
		termJac.FromAffine(&term)
		acc.AddAssign(&termJac)
	}
	var out bls12381.G1Affine
	out.FromJacobian(&acc)
	return out, nil
}

// CommitG2 is CommitG1's G2 counterpart, used for the set-level proofs
// that need a commitment to a set on the G2 side of the pairing.
func (p *PublicParams) CommitG2(poly Polynomial) (bls12381.G2Affine, error) {
	if len(poly) > len(p.G2Powers) {
		return bls12381.G2Affine{}, kverrors.ErrParamBudgetExceeded
	}
	var acc bls12381.G2Jac
	for i, c := range poly {
		if c.Sign() == 0 {
			continue
		}
		var term bls12381.G2Affine
		term.ScalarMultiplication(&p.G2Powers[i], c)
		var termJac bls12381.G2Jac
		termJac.FromAffine(&term)
		acc.AddAssign(&termJac)
	}
	var out bls12381.G2Affine
	out.FromJacobian(&acc)
	return out, nil
}

// EmptyAcc returns Acc(∅) = g1, the generator. It is computed once and
// cached process-wide; callers may invoke it freely from multiple
// goroutines before or after other initialization without racing.
func EmptyAcc() bls12381.G1Affine {
	emptyAccOnce.Do(func() {
		emptyAccValue = keyenc.G1Generator()
	})
	return emptyAccValue
}
