// Package proof assembles and verifies the proof envelopes the forest
// emits for its CRUD operations: Merkle paths tying a leaf to a root,
// accumulator witnesses tying a key to the committed set, and the
// path-consistency check that certifies an update or delete touched
// only its target leaf.
package proof

import (
	"bytes"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"

	"github.com/kazmiller0/acc-tree/pkg/accumulator"
	"github.com/kazmiller0/acc-tree/pkg/forest"
	"github.com/kazmiller0/acc-tree/pkg/kverrors"
	"github.com/kazmiller0/acc-tree/pkg/merklehash"
)

// MerklePath is the leaf-to-root sibling sequence plus the root hash it
// must recompute to.
type MerklePath struct {
	Steps    []forest.PathStep
	RootHash merklehash.Digest
}

// Verify recomputes the root hash from leafHash by folding in each
// sibling in order and compares it against RootHash.
func (p MerklePath) Verify(leafHash merklehash.Digest) bool {
	cur := leafHash
	for _, s := range p.Steps {
		if s.SiblingIsLeft {
			cur = merklehash.HNonLeaf(s.SiblingHash, cur)
		} else {
			cur = merklehash.HNonLeaf(cur, s.SiblingHash)
		}
	}
	return cur == p.RootHash
}

// stepsEqual reports whether two Merkle paths have identical sibling
// sequences — the path-consistency check that certifies only the leaf
// itself changed between two proofs.
func stepsEqual(a, b []forest.PathStep) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].SiblingHash != b[i].SiblingHash || a[i].SiblingIsLeft != b[i].SiblingIsLeft {
			return false
		}
	}
	return true
}

// MembershipProof is the Get-present response: a value, the Merkle
// path to the leaf holding it, the containing root's accumulator
// value, and a single-element membership witness for the key.
type MembershipProof struct {
	Key     []byte
	Value   []byte
	Path    MerklePath
	Acc     bls12381.G1Affine
	Witness bls12381.G1Affine
}

// VerifyFull checks a MembershipProof: the Merkle path must recompute to
// the claimed root from H_leaf(key, value), and the witness must close
// the pairing equation against Acc for key.
func VerifyFull(params *accumulator.PublicParams, p *MembershipProof) (bool, error) {
	leafHash := merklehash.HLeaf(p.Key, p.Value)
	if !p.Path.Verify(leafHash) {
		return false, kverrors.ErrMerkleCheckFailed
	}
	ok, err := accumulator.VerifyMembership(params, p.Acc, p.Witness, p.Key)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, kverrors.ErrPairingCheckFailed
	}
	return true, nil
}

// AdjacentProof describes one side (predecessor or successor) of a
// positional non-membership proof: a live key/value and its Merkle path.
type AdjacentProof struct {
	Key   []byte
	Value []byte
	Path  MerklePath
}

// NonMembershipProof is the positional non-membership response: the
// live keys immediately below and/or above Target in lexicographic
// order, each with its own Merkle path against the same root. It is
// not cryptographically unforgeable — a Verifier trusts that
// Predecessor and Successor really are the adjacent live keys.
type NonMembershipProof struct {
	Target      []byte
	Predecessor *AdjacentProof
	Successor   *AdjacentProof
}

// VerifyNonMembership checks that any supplied predecessor/successor
// path verifies against rootHash and brackets target in lexicographic
// order. At least one of Predecessor/Successor must be present.
func VerifyNonMembership(p *NonMembershipProof, rootHash merklehash.Digest) (bool, error) {
	if p.Predecessor == nil && p.Successor == nil {
		return false, kverrors.ErrInvalidInput
	}
	if p.Predecessor != nil {
		if p.Predecessor.Path.RootHash != rootHash {
			return false, kverrors.ErrMerkleCheckFailed
		}
		if !p.Predecessor.Path.Verify(merklehash.HLeaf(p.Predecessor.Key, p.Predecessor.Value)) {
			return false, kverrors.ErrMerkleCheckFailed
		}
		if bytes.Compare(p.Predecessor.Key, p.Target) >= 0 {
			return false, kverrors.ErrInvalidInput
		}
	}
	if p.Successor != nil {
		if p.Successor.Path.RootHash != rootHash {
			return false, kverrors.ErrMerkleCheckFailed
		}
		if !p.Successor.Path.Verify(merklehash.HLeaf(p.Successor.Key, p.Successor.Value)) {
			return false, kverrors.ErrMerkleCheckFailed
		}
		if bytes.Compare(p.Target, p.Successor.Key) >= 0 {
			return false, kverrors.ErrInvalidInput
		}
	}
	return true, nil
}

// InsertProof is the response of Insert_with_proof: the pre-state root
// summaries, an optional proof that the key was absent beforehand, and
// a full membership proof of the freshly inserted pair.
type InsertProof struct {
	PreRoots         []forest.RootSummary
	PreNonMembership *NonMembershipProof
	Post             *MembershipProof
}

// VerifyInsert checks the optional pre-nonmembership proof (against the
// pre-state root it names) and the post-insert membership proof.
func VerifyInsert(params *accumulator.PublicParams, preRootHash merklehash.Digest, p *InsertProof) (bool, error) {
	if p.PreNonMembership != nil {
		ok, err := VerifyNonMembership(p.PreNonMembership, preRootHash)
		if err != nil || !ok {
			return false, err
		}
	}
	return VerifyFull(params, p.Post)
}

// UpdateProof is the response of Update_with_proof.
type UpdateProof struct {
	Key      []byte
	OldValue []byte
	NewValue []byte
	Pre      *MembershipProof
	Post     *MembershipProof
}

// VerifyUpdate checks that both proofs verify, that their Merkle paths
// are position-wise identical (path-consistency: only the leaf
// changed), and that the accumulator value did not move (an update
// never touches the committed key set).
func VerifyUpdate(params *accumulator.PublicParams, p *UpdateProof) (bool, error) {
	ok, err := VerifyFull(params, p.Pre)
	if err != nil || !ok {
		return false, err
	}
	ok, err = VerifyFull(params, p.Post)
	if err != nil || !ok {
		return false, err
	}
	if !stepsEqual(p.Pre.Path.Steps, p.Post.Path.Steps) {
		return false, kverrors.ErrPathInconsistency
	}
	if !p.Pre.Acc.Equal(&p.Post.Acc) {
		return false, kverrors.ErrPairingCheckFailed
	}
	return true, nil
}

// DeleteProof is the response of Delete_with_proof. The post path
// proves the leaf now hashes as empty_hash at the same position;
// post_acc is the Prover's claimed accumulator after removing Key,
// which the Verifier can only take on trust — full delete soundness
// would need an accumulator "correct deletion" proof that this type
// does not carry.
type DeleteProof struct {
	Key      []byte
	OldValue []byte
	Pre      *MembershipProof
	PostPath MerklePath
	PostAcc  bls12381.G1Affine
}

// VerifyDelete checks the pre membership proof, that the post path
// recomputes to empty_hash at a position consistent with the pre path,
// and nothing more about post_acc (see the DeleteProof doc comment).
func VerifyDelete(params *accumulator.PublicParams, p *DeleteProof) (bool, error) {
	ok, err := VerifyFull(params, p.Pre)
	if err != nil || !ok {
		return false, err
	}
	if !p.PostPath.Verify(merklehash.EmptyHash) {
		return false, kverrors.ErrMerkleCheckFailed
	}
	if !stepsEqual(p.Pre.Path.Steps, p.PostPath.Steps) {
		return false, kverrors.ErrPathInconsistency
	}
	return true, nil
}
