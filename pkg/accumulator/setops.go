package accumulator

import (
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/kazmiller0/acc-tree/pkg/keyenc"
	"github.com/kazmiller0/acc-tree/pkg/kverrors"
)

// DisjointnessProof certifies that two key sets A, B share no elements,
// via Bézout coefficients α, β such that α(s)·P_A(s) + β(s)·P_B(s) = 1.
// Verification needs the G2 commitments of A and B, which the caller
// supplies — typically computed once and reused across several
// set-level checks against the same operand sets.
type DisjointnessProof struct {
	AlphaG1 bls12381.G1Affine
	BetaG1  bls12381.G1Affine
}

// ProveDisjointness computes a DisjointnessProof for key sets a and b.
// It fails with kverrors.ErrInvalidInput if a and b are not actually
// disjoint (the extended-Euclid gcd comes out non-constant).
func ProveDisjointness(params *PublicParams, a, b [][]byte) (*DisjointnessProof, error) {
	modulus := fr.Modulus()

	scalarsA, err := scalarsFor(a)
	if err != nil {
		return nil, err
	}
	scalarsB, err := scalarsFor(b)
	if err != nil {
		return nil, err
	}

	polyA := polyFromRoots(scalarsA, modulus)
	polyB := polyFromRoots(scalarsB, modulus)

	g, s, t, err := polyExtGCD(polyA, polyB, modulus)
	if err != nil {
		return nil, err
	}
	if polyDegree(g) != 0 {
		// A and B share a root over F_r — not disjoint (modulo the
		// negligible-probability hash collision case).
		return nil, kverrors.ErrInvalidInput
	}

	cInv := new(big.Int).ModInverse(g[0], modulus)
	if cInv == nil {
		return nil, kverrors.ErrInvalidInput
	}
	alpha := polyScale(s, cInv, modulus)
	beta := polyScale(t, cInv, modulus)

	alphaG1, err := params.CommitG1(alpha)
	if err != nil {
		return nil, err
	}
	betaG1, err := params.CommitG1(beta)
	if err != nil {
		return nil, err
	}
	return &DisjointnessProof{AlphaG1: alphaG1, BetaG1: betaG1}, nil
}

// VerifyDisjointness checks e(α, AccG2(A))·e(β, AccG2(B)) == e(g1, g2).
func VerifyDisjointness(accAG2, accBG2 bls12381.G2Affine, proof *DisjointnessProof) (bool, error) {
	g1Gen := keyenc.G1Generator()
	g2Gen := keyenc.G2Generator()

	lhs, err := bls12381.Pair([]bls12381.G1Affine{proof.AlphaG1, proof.BetaG1}, []bls12381.G2Affine{accAG2, accBG2})
	if err != nil {
		return false, err
	}
	rhs, err := bls12381.Pair([]bls12381.G1Affine{g1Gen}, []bls12381.G2Affine{g2Gen})
	if err != nil {
		return false, err
	}
	return lhs.Equal(&rhs), nil
}

// IntersectionProof certifies that i is the full intersection of key
// sets a and b. WitnessA/WitnessB are commitments to A\I and B\I;
// Coprime proves those two quotient sets are themselves disjoint, which
// is what rules out i being merely a common divisor rather than the
// maximal intersection.
type IntersectionProof struct {
	AccI        bls12381.G1Affine
	AccIG2      bls12381.G2Affine
	WitnessA    bls12381.G1Affine
	WitnessB    bls12381.G1Affine
	QuotientAG2 bls12381.G2Affine
	QuotientBG2 bls12381.G2Affine
	Coprime     *DisjointnessProof
}

// ProveIntersection computes the intersection proof for key sets a, b.
func ProveIntersection(params *PublicParams, a, b [][]byte) (*IntersectionProof, error) {
	inSet := make(map[string][]byte, len(b))
	for _, k := range b {
		inSet[string(k)] = k
	}

	var inter [][]byte
	var onlyA [][]byte
	used := make(map[string]bool, len(b))
	for _, k := range a {
		if _, ok := inSet[string(k)]; ok {
			inter = append(inter, k)
			used[string(k)] = true
		} else {
			onlyA = append(onlyA, k)
		}
	}
	var onlyB [][]byte
	for _, k := range b {
		if !used[string(k)] {
			onlyB = append(onlyB, k)
		}
	}

	accI, err := AccValue(params, inter)
	if err != nil {
		return nil, err
	}
	accIG2, err := AccValueG2(params, inter)
	if err != nil {
		return nil, err
	}
	witnessA, err := AccValue(params, onlyA)
	if err != nil {
		return nil, err
	}
	witnessB, err := AccValue(params, onlyB)
	if err != nil {
		return nil, err
	}
	quotientAG2, err := AccValueG2(params, onlyA)
	if err != nil {
		return nil, err
	}
	quotientBG2, err := AccValueG2(params, onlyB)
	if err != nil {
		return nil, err
	}

	var coprime *DisjointnessProof
	if len(onlyA) > 0 && len(onlyB) > 0 {
		coprime, err = ProveDisjointness(params, onlyA, onlyB)
		if err != nil {
			return nil, err
		}
	} else {
		// One side is empty: trivially disjoint. The empty side's
		// polynomial is 1, so coefficient 1 on that side and 0 on the
		// other satisfies α·P_A/I + β·P_B/I = 1.
		alphaPoly, betaPoly := polyOne(), polyZero()
		if len(onlyA) > 0 {
			alphaPoly, betaPoly = polyZero(), polyOne()
		}
		alphaG1, cerr := params.CommitG1(alphaPoly)
		if cerr != nil {
			return nil, cerr
		}
		betaG1, cerr := params.CommitG1(betaPoly)
		if cerr != nil {
			return nil, cerr
		}
		coprime = &DisjointnessProof{AlphaG1: alphaG1, BetaG1: betaG1}
	}

	return &IntersectionProof{
		AccI:        accI,
		AccIG2:      accIG2,
		WitnessA:    witnessA,
		WitnessB:    witnessB,
		QuotientAG2: quotientAG2,
		QuotientBG2: quotientBG2,
		Coprime:     coprime,
	}, nil
}

// VerifyIntersection checks proof against the already-trusted
// accumulator values accA=Acc(A), accB=Acc(B) and their G2 mirrors.
func VerifyIntersection(accA, accB bls12381.G1Affine, accAG2, accBG2 bls12381.G2Affine, proof *IntersectionProof) (bool, error) {
	g1Gen := keyenc.G1Generator()
	g2Gen := keyenc.G2Generator()

	// e(WitnessA, AccIG2) == e(AccA, g2) — WitnessA really is A\I.
	ok1, err := pairEq(proof.WitnessA, proof.AccIG2, accA, g2Gen)
	if err != nil || !ok1 {
		return false, err
	}
	// e(WitnessB, AccIG2) == e(AccB, g2) — WitnessB really is B\I.
	ok2, err := pairEq(proof.WitnessB, proof.AccIG2, accB, g2Gen)
	if err != nil || !ok2 {
		return false, err
	}
	// AccI and AccIG2 commit to the same polynomial.
	ok3, err := pairEq(proof.AccI, g2Gen, g1Gen, proof.AccIG2)
	if err != nil || !ok3 {
		return false, err
	}
	// A\I and B\I share nothing, so I captures the entire intersection.
	return VerifyDisjointness(proof.QuotientAG2, proof.QuotientBG2, proof.Coprime)
}

// UnionProof certifies that u = Acc(A ∪ B) for disjoint key sets A, B.
// WitnessA=Acc(B), WitnessB=Acc(A) — the quotients P_U/P_A and P_U/P_B
// collapse to Acc(B) and Acc(A) exactly because A and B are disjoint.
type UnionProof struct {
	AccU     bls12381.G1Affine
	WitnessA bls12381.G1Affine
	WitnessB bls12381.G1Affine
}

// ProveUnion computes the union proof for disjoint key sets a, b. The
// caller is responsible for having established disjointness (e.g. via
// ProveDisjointness/VerifyDisjointness) beforehand.
func ProveUnion(params *PublicParams, a, b [][]byte) (*UnionProof, error) {
	u := make([][]byte, 0, len(a)+len(b))
	u = append(u, a...)
	u = append(u, b...)

	accU, err := AccValue(params, u)
	if err != nil {
		return nil, err
	}
	witnessA, err := AccValue(params, b)
	if err != nil {
		return nil, err
	}
	witnessB, err := AccValue(params, a)
	if err != nil {
		return nil, err
	}
	return &UnionProof{AccU: accU, WitnessA: witnessA, WitnessB: witnessB}, nil
}

// VerifyUnion checks e(AccU, g2) == e(WitnessA, AccG2(A)) and the
// symmetric equation for B.
func VerifyUnion(accAG2, accBG2 bls12381.G2Affine, proof *UnionProof) (bool, error) {
	g2Gen := keyenc.G2Generator()
	ok1, err := pairEq(proof.AccU, g2Gen, proof.WitnessA, accAG2)
	if err != nil || !ok1 {
		return false, err
	}
	return pairEq(proof.AccU, g2Gen, proof.WitnessB, accBG2)
}

// pairEq reports whether e(aG1, aG2) == e(bG1, bG2).
func pairEq(aG1 bls12381.G1Affine, aG2 bls12381.G2Affine, bG1 bls12381.G1Affine, bG2 bls12381.G2Affine) (bool, error) {
	lhs, err := bls12381.Pair([]bls12381.G1Affine{aG1}, []bls12381.G2Affine{aG2})
	if err != nil {
		return false, err
	}
	rhs, err := bls12381.Pair([]bls12381.G1Affine{bG1}, []bls12381.G2Affine{bG2})
	if err != nil {
		return false, err
	}
	return lhs.Equal(&rhs), nil
}
