package forest

import (
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"

	"github.com/kazmiller0/acc-tree/pkg/merklehash"
)

// NodeKind tags a Node as holding either a key/value pair (Leaf) or two
// children (NonLeaf), the sum-type shape that lets both sit in a single
// struct without an interface and its attendant allocations.
type NodeKind int

const (
	KindLeaf NodeKind = iota
	KindNonLeaf
)

// Node is a node of the forest's perfect binary trees. Leaves sit at
// level 0; a NonLeaf's level is one more than its children's (always
// equal, by construction — see Forest.appendAndNormalize).
//
// There are no parent pointers. Ancestor paths are reconstructed on
// each descent from the owning root and carried explicitly in proof
// envelopes (pkg/proof), never cached on the node itself.
type Node struct {
	Kind  NodeKind
	Level int
	Hash  merklehash.Digest
	Acc   bls12381.G1Affine

	// Leaf-only.
	Key     []byte
	Value   []byte
	Deleted bool

	// NonLeaf-only.
	Left  *Node
	Right *Node
	Keys  *KeySet
}

// NewLeaf builds a live leaf for key/value at level 0.
func NewLeaf(key, value []byte) *Node {
	n := &Node{Kind: KindLeaf, Level: 0, Key: key, Value: value}
	n.recomputeLeafHash()
	return n
}

// recomputeLeafHash restores the invariant that a tombstoned leaf
// hashes as the empty digest, so a deleted leaf contributes to its
// parent exactly as if it had never been inserted.
func (n *Node) recomputeLeafHash() {
	if n.Deleted {
		n.Hash = merklehash.EmptyHash
	} else {
		n.Hash = merklehash.HLeaf(n.Key, n.Value)
	}
}

// keySet returns n's live key multiset: its own Keys if it is a
// NonLeaf, or a one-element (zero-element if tombstoned) set
// synthesized on the spot if it is a Leaf, which carries no KeySet of
// its own.
func (n *Node) keySet() *KeySet {
	if n.Kind == KindNonLeaf {
		return n.Keys
	}
	s := NewKeySet()
	if !n.Deleted {
		s.Add(n.Key)
	}
	return s
}

// mergeNonLeaf builds the parent of left and right, which must share a
// level. Hash and Keys are always recomputed from the children; Acc is
// passed in by the caller, since computing it may need the trapdoor
// (IncrementalUnion) or be a direct AccValue call, depending on context.
func mergeNonLeaf(left, right *Node, acc bls12381.G1Affine) *Node {
	if left.Level != right.Level {
		panic("forest: mergeNonLeaf called on mismatched levels")
	}
	return &Node{
		Kind:  KindNonLeaf,
		Level: left.Level + 1,
		Hash:  merklehash.HNonLeaf(left.Hash, right.Hash),
		Acc:   acc,
		Left:  left,
		Right: right,
		Keys:  left.keySet().Union(right.keySet()),
	}
}

// rebuildHash recomputes a NonLeaf's hash from its current children.
// Used after an Update, which touches only hashes on the unwind path.
func (n *Node) rebuildHash() {
	n.Hash = merklehash.HNonLeaf(n.Left.Hash, n.Right.Hash)
}
