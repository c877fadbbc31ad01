package forest

import (
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"

	"github.com/kazmiller0/acc-tree/pkg/merklehash"
)

// PathStep is one entry of a Merkle path: the sibling hash encountered
// while walking from a leaf up to its root, and which side it sits on.
type PathStep struct {
	SiblingHash   merklehash.Digest
	SiblingIsLeft bool
}

// LocateLive exposes locateLive to callers outside the package (proof
// envelope assembly needs the raw ancestor chain to build a Merkle
// path).
func (f *Forest) LocateLive(key []byte) (rootIdx int, path []*Node, leaf *Node, found bool) {
	return f.locateLive(key)
}

// LocateTombstoned exposes locateTombstoned to callers outside the
// package.
func (f *Forest) LocateTombstoned(key []byte) (rootIdx int, path []*Node, leaf *Node, found bool) {
	return f.locateTombstoned(key)
}

// BuildPath converts an ancestor chain (root-to-leaf order, as returned
// by LocateLive/LocateTombstoned) plus the target leaf into the
// leaf-upward PathStep sequence a Merkle path verifier expects.
func BuildPath(path []*Node, leaf *Node) []PathStep {
	steps := make([]PathStep, len(path))
	for i, anc := range path {
		var next *Node
		if i+1 < len(path) {
			next = path[i+1]
		} else {
			next = leaf
		}
		if anc.Left == next {
			steps[i] = PathStep{SiblingHash: anc.Right.Hash, SiblingIsLeft: false}
		} else {
			steps[i] = PathStep{SiblingHash: anc.Left.Hash, SiblingIsLeft: true}
		}
	}
	for l, r := 0, len(steps)-1; l < r; l, r = l+1, r-1 {
		steps[l], steps[r] = steps[r], steps[l]
	}
	return steps
}

// RootHash returns the current hash of roots[idx].
func (f *Forest) RootHash(idx int) merklehash.Digest {
	return f.Roots[idx].Hash
}

// RootAcc returns the current accumulator value of roots[idx].
func (f *Forest) RootAcc(idx int) bls12381.G1Affine {
	return f.Roots[idx].Acc
}

// RootKeys flattens roots[idx]'s live key multiset — the set the
// Prover needs to build a single-element witness against.
func (f *Forest) RootKeys(idx int) [][]byte {
	return f.Roots[idx].keySet().Keys()
}

// LeafHash returns n's current effective Merkle hash (empty_hash if
// tombstoned).
func LeafHash(n *Node) merklehash.Digest {
	return n.Hash
}

// LiveEntry is one live leaf discovered by AllLive, together with
// enough information to build its Merkle path.
type LiveEntry struct {
	RootIdx int
	Path    []*Node
	Leaf    *Node
}

// AllLive enumerates every live leaf across every root. It is a full
// scan: predecessor/successor lookup is the one place this package
// trades locality for simplicity, since non-membership discovery is
// not a hot path.
func (f *Forest) AllLive() []LiveEntry {
	var out []LiveEntry
	for i, r := range f.Roots {
		out = collectLive(r, nil, i, out)
	}
	return out
}

func collectLive(n *Node, ancestors []*Node, rootIdx int, out []LiveEntry) []LiveEntry {
	if n.Kind == KindLeaf {
		if !n.Deleted {
			path := make([]*Node, len(ancestors))
			copy(path, ancestors)
			out = append(out, LiveEntry{RootIdx: rootIdx, Path: path, Leaf: n})
		}
		return out
	}
	out = collectLive(n.Left, append(ancestors, n), rootIdx, out)
	out = collectLive(n.Right, append(ancestors, n), rootIdx, out)
	return out
}
