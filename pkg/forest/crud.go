package forest

import (
	"bytes"

	"github.com/kazmiller0/acc-tree/internal/logging"
	"github.com/kazmiller0/acc-tree/pkg/accumulator"
	"github.com/kazmiller0/acc-tree/pkg/kverrors"
)

// descendLive walks from root to the live leaf holding key, using each
// NonLeaf's Keys multiset as a hash-indexed membership test to pick a
// branch in O(1) per level — never a linear scan of leaves. It returns
// the chain of NonLeaf ancestors from root down to (not including) the
// leaf.
func descendLive(root *Node, key []byte) (path []*Node, leaf *Node, found bool) {
	cur := root
	for cur.Kind == KindNonLeaf {
		if !cur.Keys.Contains(key) {
			return nil, nil, false
		}
		path = append(path, cur)

		if cur.Left.Kind == KindLeaf {
			if bytes.Equal(cur.Left.Key, key) && !cur.Left.Deleted {
				return path, cur.Left, true
			}
		} else if cur.Left.Keys.Contains(key) {
			cur = cur.Left
			continue
		}

		if cur.Right.Kind == KindLeaf {
			if bytes.Equal(cur.Right.Key, key) && !cur.Right.Deleted {
				return path, cur.Right, true
			}
		} else if cur.Right.Keys.Contains(key) {
			cur = cur.Right
			continue
		}

		// cur.Keys said key is live somewhere under cur, but neither
		// child claims it — the Keys/subtree invariant is broken.
		panic("forest: key set invariant violated during descent")
	}
	return nil, nil, false
}

// findTombstoned looks for a tombstoned (deleted) leaf for key anywhere
// under root. Because a delete removes the key from every ancestor's
// Keys multiset, there is no hash-indexed hint to steer this search, so
// it walks the whole subtree. Revives are expected to be rare relative
// to live-key lookups, so this stays a plain recursive scan rather than
// a second index.
func findTombstoned(root *Node, key []byte) (path []*Node, leaf *Node, found bool) {
	if root.Kind == KindLeaf {
		if bytes.Equal(root.Key, key) && root.Deleted {
			return nil, root, true
		}
		return nil, nil, false
	}
	if p, l, ok := findTombstoned(root.Left, key); ok {
		return append([]*Node{root}, p...), l, true
	}
	if p, l, ok := findTombstoned(root.Right, key); ok {
		return append([]*Node{root}, p...), l, true
	}
	return nil, nil, false
}

// locateLive finds which of the forest's current roots owns the live
// key, if any.
func (f *Forest) locateLive(key []byte) (rootIdx int, path []*Node, leaf *Node, found bool) {
	for i, r := range f.Roots {
		if r.Kind == KindLeaf {
			if bytes.Equal(r.Key, key) && !r.Deleted {
				return i, nil, r, true
			}
			continue
		}
		if !r.Keys.Contains(key) {
			continue
		}
		p, l, ok := descendLive(r, key)
		if ok {
			return i, p, l, true
		}
	}
	return 0, nil, nil, false
}

// locateTombstoned finds a tombstoned leaf for key across every current
// root.
func (f *Forest) locateTombstoned(key []byte) (rootIdx int, path []*Node, leaf *Node, found bool) {
	for i, r := range f.Roots {
		p, l, ok := findTombstoned(r, key)
		if ok {
			return i, p, l, true
		}
	}
	return 0, nil, nil, false
}

// rebuildAncestorsAdd updates every ancestor on path to reflect key
// having been (re)added to the live set: its Keys multiset gains key,
// its accumulator is folded in via the trapdoor, and its hash is
// recomputed from its (now up to date) children.
func (f *Forest) rebuildAncestorsAdd(path []*Node, key []byte) error {
	for i := len(path) - 1; i >= 0; i-- {
		n := path[i]
		n.Keys.Add(key)
		acc, err := accumulator.IncrementalAdd(f.Trapdoor, n.Acc, key)
		if err != nil {
			return err
		}
		n.Acc = acc
		n.rebuildHash()
	}
	return nil
}

// rebuildAncestorsDelete is rebuildAncestorsAdd's inverse: removes key
// from every ancestor's Keys and accumulator, then rehashes.
func (f *Forest) rebuildAncestorsDelete(path []*Node, key []byte) error {
	for i := len(path) - 1; i >= 0; i-- {
		n := path[i]
		n.Keys.Remove(key)
		acc, err := accumulator.IncrementalDelete(f.Trapdoor, n.Acc, key)
		if err != nil {
			return err
		}
		n.Acc = acc
		n.rebuildHash()
	}
	return nil
}

// rebuildAncestorsHashOnly recomputes every ancestor's hash without
// touching Keys or Acc — Update's unwind, since a value change leaves
// the committed key set, and therefore every ancestor's accumulator
// value, untouched.
func rebuildAncestorsHashOnly(path []*Node) {
	for i := len(path) - 1; i >= 0; i-- {
		path[i].rebuildHash()
	}
}

// Insert adds key/value to the forest. Three branches:
//   - key already live: ErrKeyExists.
//   - key exists as a tombstoned leaf: revive it in place.
//   - otherwise: append a fresh leaf and normalize.
func (f *Forest) Insert(key, value []byte) error {
	log := logging.Logger()

	if _, _, _, found := f.locateLive(key); found {
		return kverrors.ErrKeyExists
	}

	if rootIdx, path, leaf, found := f.locateTombstoned(key); found {
		leaf.Deleted = false
		leaf.Value = value
		leaf.recomputeLeafHash()
		if len(path) == 0 {
			// leaf is itself a standalone root: there is no NonLeaf
			// ancestor to fold the key back into, so the leaf's own
			// Acc (what Summaries() reports for this root) must be
			// recomputed directly.
			acc, err := accumulator.AccValue(f.Params, [][]byte{key})
			if err != nil {
				return err
			}
			leaf.Acc = acc
		} else if err := f.rebuildAncestorsAdd(path, key); err != nil {
			return err
		}
		log.Debug().Int("root", rootIdx).Msg("forest: revived tombstoned leaf")
		return nil
	}

	leaf := NewLeaf(key, value)
	acc, err := accumulator.AccValue(f.Params, [][]byte{key})
	if err != nil {
		return err
	}
	leaf.Acc = acc
	return f.appendAndNormalize(leaf)
}

// Get returns the value stored for key, or ErrKeyNotFound if it is
// absent or tombstoned.
func (f *Forest) Get(key []byte) ([]byte, error) {
	_, _, leaf, found := f.locateLive(key)
	if !found {
		return nil, kverrors.ErrKeyNotFound
	}
	return leaf.Value, nil
}

// Update replaces the value stored at key, leaving the committed key
// set (and therefore every ancestor's accumulator) untouched — only
// hashes are rebuilt on the way back up.
func (f *Forest) Update(key, value []byte) error {
	_, path, leaf, found := f.locateLive(key)
	if !found {
		return kverrors.ErrKeyNotFound
	}
	leaf.Value = value
	leaf.recomputeLeafHash()
	rebuildAncestorsHashOnly(path)
	return nil
}

// Delete tombstones the leaf at key: its hash collapses to the empty
// digest and it is removed from every ancestor's Keys multiset and
// accumulator. The leaf's slot is preserved (not physically removed)
// so a later Insert of the same key can revive it.
func (f *Forest) Delete(key []byte) error {
	_, path, leaf, found := f.locateLive(key)
	if !found {
		return kverrors.ErrKeyNotFound
	}
	leaf.Deleted = true
	leaf.recomputeLeafHash()
	if len(path) == 0 {
		leaf.Acc = accumulator.EmptyAcc()
		return nil
	}
	return f.rebuildAncestorsDelete(path, key)
}
