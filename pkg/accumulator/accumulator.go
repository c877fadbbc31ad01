package accumulator

import (
	"math/big"
	"sync"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/kazmiller0/acc-tree/pkg/keyenc"
	"github.com/kazmiller0/acc-tree/pkg/kverrors"
)

var (
	emptyAccOnce  sync.Once
	emptyAccValue bls12381.G1Affine
)

// scalarsFor maps each key to its F_r scalar via key_to_scalar, failing
// with ErrInvalidInput if any key maps to zero.
func scalarsFor(keys [][]byte) ([]*big.Int, error) {
	out := make([]*big.Int, len(keys))
	for i, k := range keys {
		s, err := keyenc.ToScalar(k)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// AccValue computes Acc(X) = g1^{∏(s + key_to_scalar(x_i))} for the
// given key set, via the public powers only (no trapdoor needed).
// Acc(∅) = EmptyAcc().
func AccValue(params *PublicParams, keys [][]byte) (bls12381.G1Affine, error) {
	if len(keys) == 0 {
		return EmptyAcc(), nil
	}
	scalars, err := scalarsFor(keys)
	if err != nil {
		return bls12381.G1Affine{}, err
	}
	poly := polyFromRoots(scalars, fr.Modulus())
	return params.CommitG1(poly)
}

// AccValueG2 is AccValue's G2-side counterpart, used by the set-level
// proofs (disjointness/intersection/union) of setops.go.
func AccValueG2(params *PublicParams, keys [][]byte) (bls12381.G2Affine, error) {
	if len(keys) == 0 {
		_, _, _, g2 := bls12381.Generators()
		return g2, nil
	}
	scalars, err := scalarsFor(keys)
	if err != nil {
		return bls12381.G2Affine{}, err
	}
	poly := polyFromRoots(scalars, fr.Modulus())
	return params.CommitG2(poly)
}

// CreateWitness computes the single-element membership witness
// W(X, x) = Acc(X \ {x}). It removes exactly one occurrence of target
// from keys, tolerating a multiset with repeated occurrences; it returns
// kverrors.ErrKeyNotFound if target's scalar is not present.
func CreateWitness(params *PublicParams, keys [][]byte, target []byte) (bls12381.G1Affine, error) {
	targetScalar, err := keyenc.ToScalar(target)
	if err != nil {
		return bls12381.G1Affine{}, err
	}

	scalars, err := scalarsFor(keys)
	if err != nil {
		return bls12381.G1Affine{}, err
	}

	removed := false
	remaining := make([]*big.Int, 0, len(scalars))
	for _, s := range scalars {
		if !removed && s.Cmp(targetScalar) == 0 {
			removed = true
			continue
		}
		remaining = append(remaining, s)
	}
	if !removed {
		return bls12381.G1Affine{}, kverrors.ErrKeyNotFound
	}

	if len(remaining) == 0 {
		return EmptyAcc(), nil
	}
	poly := polyFromRoots(remaining, fr.Modulus())
	return params.CommitG1(poly)
}

// VerifyMembership checks e(Acc(X), g2) == e(W, g2^{s+x}), the
// Verifier's only accumulator-side check — it needs no trapdoor.
func VerifyMembership(params *PublicParams, acc, witness bls12381.G1Affine, key []byte) (bool, error) {
	x, err := keyenc.ToScalar(key)
	if err != nil {
		return false, err
	}
	if len(params.G2Powers) < 2 {
		return false, kverrors.ErrInvalidInput
	}

	g2Gen := keyenc.G2Generator()
	g2sx, err := g2PowerPlusScalar(params, x)
	if err != nil {
		return false, err
	}

	lhs, err := bls12381.Pair([]bls12381.G1Affine{acc}, []bls12381.G2Affine{g2Gen})
	if err != nil {
		return false, err
	}
	rhs, err := bls12381.Pair([]bls12381.G1Affine{witness}, []bls12381.G2Affine{g2sx})
	if err != nil {
		return false, err
	}
	return lhs.Equal(&rhs), nil
}

// g2PowerPlusScalar computes g2^(s+x) = g2^s · g2^x from the public
// G2Powers[1] (=g2^s) and the generator, so the Verifier never needs s.
func g2PowerPlusScalar(params *PublicParams, x *big.Int) (bls12381.G2Affine, error) {
	g2Gen := keyenc.G2Generator()
	var xTerm bls12381.G2Affine
	xTerm.ScalarMultiplication(&g2Gen, x)

	var jac bls12381.G2Jac
	jac.FromAffine(&params.G2Powers[1])
	var xJac bls12381.G2Jac
	xJac.FromAffine(&xTerm)
	jac.AddAssign(&xJac)

	var out bls12381.G2Affine
	out.FromJacobian(&jac)
	return out, nil
}

// ---------------------------------------------------------------------
// Prover-only incremental updates. All require the trapdoor and run in
// O(1) group operations.
// ---------------------------------------------------------------------

// IncrementalAdd computes Acc' = Acc^{s + key_to_scalar(x)}.
func IncrementalAdd(td *Trapdoor, acc bls12381.G1Affine, key []byte) (bls12381.G1Affine, error) {
	exp, err := addExponent(td, key)
	if err != nil {
		return bls12381.G1Affine{}, err
	}
	var out bls12381.G1Affine
	out.ScalarMultiplication(&acc, exp)
	return out, nil
}

// IncrementalDelete computes Acc' = Acc^{(s + key_to_scalar(x))^{-1}}.
func IncrementalDelete(td *Trapdoor, acc bls12381.G1Affine, key []byte) (bls12381.G1Affine, error) {
	exp, err := addExponent(td, key)
	if err != nil {
		return bls12381.G1Affine{}, err
	}
	inv := new(big.Int).ModInverse(exp, fr.Modulus())
	if inv == nil {
		return bls12381.G1Affine{}, kverrors.ErrInvalidInput
	}
	var out bls12381.G1Affine
	out.ScalarMultiplication(&acc, inv)
	return out, nil
}

// IncrementalUpdate computes Acc' = Acc^{(s+x')·(s+x)^{-1}} — replacing
// oldKey by newKey in the committed set in O(1) group operations.
func IncrementalUpdate(td *Trapdoor, acc bls12381.G1Affine, oldKey, newKey []byte) (bls12381.G1Affine, error) {
	oldExp, err := addExponent(td, oldKey)
	if err != nil {
		return bls12381.G1Affine{}, err
	}
	newExp, err := addExponent(td, newKey)
	if err != nil {
		return bls12381.G1Affine{}, err
	}
	oldInv := new(big.Int).ModInverse(oldExp, fr.Modulus())
	if oldInv == nil {
		return bls12381.G1Affine{}, kverrors.ErrInvalidInput
	}
	exp := new(big.Int).Mul(newExp, oldInv)
	exp.Mod(exp, fr.Modulus())
	var out bls12381.G1Affine
	out.ScalarMultiplication(&acc, exp)
	return out, nil
}

// IncrementalUnion folds a set of keys into acc in one scalar
// multiplication: Acc' = Acc^{∏_{k∈keys}(s+key_to_scalar(k))}. Used by
// the forest's normalize merge to combine a newly-built sibling's keys
// into the parent's accumulator.
func IncrementalUnion(td *Trapdoor, acc bls12381.G1Affine, keys [][]byte) (bls12381.G1Affine, error) {
	modulus := fr.Modulus()
	exp := big.NewInt(1)
	for _, k := range keys {
		x, err := keyenc.ToScalar(k)
		if err != nil {
			return bls12381.G1Affine{}, err
		}
		term := new(big.Int).Add(td.s, x)
		term.Mod(term, modulus)
		exp.Mul(exp, term)
		exp.Mod(exp, modulus)
	}
	var out bls12381.G1Affine
	out.ScalarMultiplication(&acc, exp)
	return out, nil
}

func addExponent(td *Trapdoor, key []byte) (*big.Int, error) {
	x, err := keyenc.ToScalar(key)
	if err != nil {
		return nil, err
	}
	exp := new(big.Int).Add(td.s, x)
	exp.Mod(exp, fr.Modulus())
	return exp, nil
}
