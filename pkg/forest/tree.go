package forest

import (
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/bits-and-blooms/bitset"

	"github.com/kazmiller0/acc-tree/internal/logging"
	"github.com/kazmiller0/acc-tree/pkg/accumulator"
	"github.com/kazmiller0/acc-tree/pkg/merklehash"
)

// Forest holds the ordered sequence of perfect binary tree roots that
// make up the authenticated structure, plus the cryptographic material
// needed to maintain it. It is a Prover-side object: it carries the
// trapdoor, and only the Prover ever constructs one.
type Forest struct {
	Roots  []*Node
	Params *accumulator.PublicParams
	Trapdoor *accumulator.Trapdoor
}

// New returns an empty Forest over the given public parameters and
// trapdoor.
func New(params *accumulator.PublicParams, td *accumulator.Trapdoor) *Forest {
	return &Forest{Params: params, Trapdoor: td}
}

// appendAndNormalize appends a fresh level-0 leaf as the new rightmost
// root, then repeatedly merges the two rightmost roots while they share
// a level — the Merkle Mountain Range "carry" rule: merges only ever
// combine the two rightmost roots, and only when they are at the same
// level, so insertion order is preserved left to right.
func (f *Forest) appendAndNormalize(leaf *Node) error {
	f.Roots = append(f.Roots, leaf)
	log := logging.Logger()

	for len(f.Roots) >= 2 {
		n := len(f.Roots)
		left, right := f.Roots[n-2], f.Roots[n-1]
		if left.Level != right.Level {
			break
		}

		acc, err := accumulator.IncrementalUnion(f.Trapdoor, left.Acc, right.keySet().Keys())
		if err != nil {
			return err
		}
		parent := mergeNonLeaf(left, right, acc)
		f.Roots = f.Roots[:n-2]
		f.Roots = append(f.Roots, parent)
		log.Debug().Int("level", parent.Level).Msg("forest: merged rightmost equal-level roots")
	}
	return nil
}

// rootLevelsDistinct reports whether all current roots sit at distinct
// levels — the shape invariant normalize is responsible for maintaining.
func (f *Forest) rootLevelsDistinct() bool {
	seen := bitset.New(256)
	for _, r := range f.Roots {
		if seen.Test(uint(r.Level)) {
			return false
		}
		seen.Set(uint(r.Level))
	}
	return true
}

// ExpectedRootLevels returns the set of levels a Forest built from n
// sequential inserts (no deletes) must have roots at: exactly the set
// bits of n, so the root count always equals popcount(n).
func ExpectedRootLevels(n uint64) *bitset.BitSet {
	bs := bitset.New(64)
	for level := uint(0); n > 0; level++ {
		if n&1 == 1 {
			bs.Set(level)
		}
		n >>= 1
	}
	return bs
}

// RootSummary is one entry of Forest.Summaries(): each current root's hash,
// accumulator value and level.
type RootSummary struct {
	Hash  merklehash.Digest
	Acc   bls12381.G1Affine
	Level int
}

// Summaries lists every current root from oldest (leftmost, tallest) to
// newest (rightmost, shortest).
func (f *Forest) Summaries() []RootSummary {
	out := make([]RootSummary, len(f.Roots))
	for i, r := range f.Roots {
		out[i] = RootSummary{Hash: r.Hash, Acc: r.Acc, Level: r.Level}
	}
	return out
}
