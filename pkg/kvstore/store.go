// Package kvstore composes the forest (pkg/forest) and the accumulator
// (pkg/accumulator) into a Forest API: plain CRUD plus proof-bearing
// variants that assemble the envelopes of pkg/proof.
package kvstore

import (
	"bytes"
	"context"

	"github.com/kazmiller0/acc-tree/pkg/accumulator"
	"github.com/kazmiller0/acc-tree/pkg/forest"
	"github.com/kazmiller0/acc-tree/pkg/kverrors"
	"github.com/kazmiller0/acc-tree/pkg/proof"
)

// Store is a Prover's authenticated key-value store: a forest plus the
// public parameters needed to build witnesses for it.
type Store struct {
	forest *forest.Forest
	params *accumulator.PublicParams
}

// New returns an empty Store over params/td.
func New(params *accumulator.PublicParams, td *accumulator.Trapdoor) *Store {
	return &Store{forest: forest.New(params, td), params: params}
}

// Insert adds key/value, failing with kverrors.ErrKeyExists if key is
// already live.
func (s *Store) Insert(key, value []byte) error {
	return s.forest.Insert(key, value)
}

// Get returns the value stored for key, or kverrors.ErrKeyNotFound.
func (s *Store) Get(key []byte) ([]byte, error) {
	return s.forest.Get(key)
}

// Update replaces the value stored at key.
func (s *Store) Update(key, value []byte) error {
	return s.forest.Update(key, value)
}

// Delete tombstones key.
func (s *Store) Delete(key []byte) error {
	return s.forest.Delete(key)
}

// Roots returns the public commitment: every current root's hash,
// accumulator value, and level.
func (s *Store) Roots() []forest.RootSummary {
	return s.forest.Summaries()
}

func (s *Store) membershipProof(rootIdx int, path []*forest.Node, leaf *forest.Node) (*proof.MembershipProof, error) {
	witness, err := accumulator.CreateWitness(s.params, s.forest.RootKeys(rootIdx), leaf.Key)
	if err != nil {
		return nil, err
	}
	return &proof.MembershipProof{
		Key:   leaf.Key,
		Value: leaf.Value,
		Path: proof.MerklePath{
			Steps:    forest.BuildPath(path, leaf),
			RootHash: s.forest.RootHash(rootIdx),
		},
		Acc:     s.forest.RootAcc(rootIdx),
		Witness: witness,
	}, nil
}

// discoverAdjacent finds the live keys immediately below and above
// target in lexicographic order, the predecessor/successor pair a
// positional non-membership proof brackets target with. It returns
// nil, nil if the forest has no live keys at all.
func (s *Store) discoverAdjacent(target []byte) (*proof.NonMembershipProof, error) {
	entries := s.forest.AllLive()
	var pred, succ *forest.LiveEntry
	for i := range entries {
		e := &entries[i]
		switch {
		case bytes.Compare(e.Leaf.Key, target) < 0:
			if pred == nil || bytes.Compare(e.Leaf.Key, pred.Leaf.Key) > 0 {
				pred = e
			}
		case bytes.Compare(e.Leaf.Key, target) > 0:
			if succ == nil || bytes.Compare(e.Leaf.Key, succ.Leaf.Key) < 0 {
				succ = e
			}
		}
	}
	if pred == nil && succ == nil {
		return nil, nil
	}

	nm := &proof.NonMembershipProof{Target: target}
	if pred != nil {
		nm.Predecessor = &proof.AdjacentProof{
			Key:   pred.Leaf.Key,
			Value: pred.Leaf.Value,
			Path: proof.MerklePath{
				Steps:    forest.BuildPath(pred.Path, pred.Leaf),
				RootHash: s.forest.RootHash(pred.RootIdx),
			},
		}
	}
	if succ != nil {
		nm.Successor = &proof.AdjacentProof{
			Key:   succ.Leaf.Key,
			Value: succ.Leaf.Value,
			Path: proof.MerklePath{
				Steps:    forest.BuildPath(succ.Path, succ.Leaf),
				RootHash: s.forest.RootHash(succ.RootIdx),
			},
		}
	}
	return nm, nil
}

// GetWithProof returns a MembershipProof if key is live, or a
// NonMembershipProof otherwise (nil, nil if the store has no live keys
// at all to bracket key with).
func (s *Store) GetWithProof(key []byte) (*proof.MembershipProof, *proof.NonMembershipProof, error) {
	rootIdx, path, leaf, found := s.forest.LocateLive(key)
	if found {
		mp, err := s.membershipProof(rootIdx, path, leaf)
		if err != nil {
			return nil, nil, err
		}
		return mp, nil, nil
	}
	nm, err := s.discoverAdjacent(key)
	if err != nil {
		return nil, nil, err
	}
	return nil, nm, nil
}

// InsertWithProof performs Insert and returns the pre-state root
// summaries, an optional proof key was absent beforehand, and a
// membership proof of the freshly inserted pair.
func (s *Store) InsertWithProof(key, value []byte) (*proof.InsertProof, error) {
	preRoots := s.forest.Summaries()
	preNM, err := s.discoverAdjacent(key)
	if err != nil {
		return nil, err
	}

	if err := s.forest.Insert(key, value); err != nil {
		return nil, err
	}

	rootIdx, path, leaf, found := s.forest.LocateLive(key)
	if !found {
		panic("kvstore: key vanished immediately after Insert")
	}
	post, err := s.membershipProof(rootIdx, path, leaf)
	if err != nil {
		return nil, err
	}
	return &proof.InsertProof{PreRoots: preRoots, PreNonMembership: preNM, Post: post}, nil
}

// UpdateWithProof performs Update and returns pre/post membership
// proofs whose Merkle paths a Verifier can check for
// path-consistency.
func (s *Store) UpdateWithProof(key, newValue []byte) (*proof.UpdateProof, error) {
	rootIdx, path, leaf, found := s.forest.LocateLive(key)
	if !found {
		return nil, kverrors.ErrKeyNotFound
	}
	oldValue := append([]byte(nil), leaf.Value...)
	pre, err := s.membershipProof(rootIdx, path, leaf)
	if err != nil {
		return nil, err
	}

	if err := s.forest.Update(key, newValue); err != nil {
		return nil, err
	}

	rootIdx2, path2, leaf2, found2 := s.forest.LocateLive(key)
	if !found2 {
		panic("kvstore: key vanished immediately after Update")
	}
	post, err := s.membershipProof(rootIdx2, path2, leaf2)
	if err != nil {
		return nil, err
	}
	return &proof.UpdateProof{Key: key, OldValue: oldValue, NewValue: newValue, Pre: pre, Post: post}, nil
}

// DeleteWithProof performs Delete and returns a pre membership proof
// and a post path proving the leaf now hashes as empty_hash at the
// same position.
func (s *Store) DeleteWithProof(key []byte) (*proof.DeleteProof, error) {
	rootIdx, path, leaf, found := s.forest.LocateLive(key)
	if !found {
		return nil, kverrors.ErrKeyNotFound
	}
	oldValue := append([]byte(nil), leaf.Value...)
	pre, err := s.membershipProof(rootIdx, path, leaf)
	if err != nil {
		return nil, err
	}

	if err := s.forest.Delete(key); err != nil {
		return nil, err
	}

	postRootIdx, postPath, postLeaf, found2 := s.forest.LocateTombstoned(key)
	if !found2 {
		panic("kvstore: tombstone vanished immediately after Delete")
	}
	return &proof.DeleteProof{
		Key:      key,
		OldValue: oldValue,
		Pre:      pre,
		PostPath: proof.MerklePath{
			Steps:    forest.BuildPath(postPath, postLeaf),
			RootHash: s.forest.RootHash(postRootIdx),
		},
		PostAcc: s.forest.RootAcc(postRootIdx),
	}, nil
}

// MembershipProofsBatch builds membership proofs for several live keys
// at once. Keys sharing a root have their witnesses computed together
// via accumulator.CreateWitnessBatch, spreading the polynomial-root
// work across goroutines; keys that are not live are skipped (the
// caller can fall back to GetWithProof for those).
func (s *Store) MembershipProofsBatch(ctx context.Context, keys [][]byte) ([]*proof.MembershipProof, error) {
	type located struct {
		key  []byte
		leaf *forest.Node
		path []*forest.Node
	}
	byRoot := make(map[int][]located)
	for _, key := range keys {
		rootIdx, path, leaf, found := s.forest.LocateLive(key)
		if !found {
			continue
		}
		byRoot[rootIdx] = append(byRoot[rootIdx], located{key: key, leaf: leaf, path: path})
	}

	out := make([]*proof.MembershipProof, 0, len(keys))
	for rootIdx, entries := range byRoot {
		targets := make([][]byte, len(entries))
		for i, e := range entries {
			targets[i] = e.key
		}
		witnesses, err := accumulator.CreateWitnessBatch(ctx, s.params, s.forest.RootKeys(rootIdx), targets)
		if err != nil {
			return nil, err
		}
		rootHash := s.forest.RootHash(rootIdx)
		rootAcc := s.forest.RootAcc(rootIdx)
		for i, e := range entries {
			out = append(out, &proof.MembershipProof{
				Key:   e.key,
				Value: e.leaf.Value,
				Path: proof.MerklePath{
					Steps:    forest.BuildPath(e.path, e.leaf),
					RootHash: rootHash,
				},
				Acc:     rootAcc,
				Witness: witnesses[i],
			})
		}
	}
	return out, nil
}
