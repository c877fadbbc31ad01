package proof

import (
	"testing"

	"github.com/kazmiller0/acc-tree/config"
	"github.com/kazmiller0/acc-tree/pkg/accumulator"
	"github.com/kazmiller0/acc-tree/pkg/forest"
)

func newTestSetup(t *testing.T) (*forest.Forest, *accumulator.PublicParams) {
	t.Helper()
	cfg := config.Params{Curve: config.CurveBLS12381, Q: 32, Version: config.ParamFileVersion}
	params, td, err := accumulator.DevSetup(cfg)
	if err != nil {
		t.Fatalf("DevSetup: %v", err)
	}
	f := forest.New(params, td)
	return f, params
}

func membershipFor(t *testing.T, f *forest.Forest, params *accumulator.PublicParams, key []byte) *MembershipProof {
	t.Helper()
	rootIdx, path, leaf, found := f.LocateLive(key)
	if !found {
		t.Fatalf("key %q not live", key)
	}
	witness, err := accumulator.CreateWitness(params, f.RootKeys(rootIdx), key)
	if err != nil {
		t.Fatalf("CreateWitness: %v", err)
	}
	return &MembershipProof{
		Key:   key,
		Value: leaf.Value,
		Path: MerklePath{
			Steps:    forest.BuildPath(path, leaf),
			RootHash: f.RootHash(rootIdx),
		},
		Acc:     f.RootAcc(rootIdx),
		Witness: witness,
	}
}

func TestMerklePathRoundTrip(t *testing.T) {
	f, params := newTestSetup(t)
	for _, k := range []string{"a", "b", "c"} {
		if err := f.Insert([]byte(k), []byte("v-"+k)); err != nil {
			t.Fatalf("Insert(%s): %v", k, err)
		}
	}
	p := membershipFor(t, f, params, []byte("b"))
	ok, err := VerifyFull(params, p)
	if err != nil {
		t.Fatalf("VerifyFull: %v", err)
	}
	if !ok {
		t.Fatalf("expected membership proof to verify")
	}
}

func TestMerklePathRejectsFlippedSiblingBit(t *testing.T) {
	f, params := newTestSetup(t)
	for _, k := range []string{"a", "b", "c"} {
		if err := f.Insert([]byte(k), []byte("v-"+k)); err != nil {
			t.Fatalf("Insert(%s): %v", k, err)
		}
	}
	p := membershipFor(t, f, params, []byte("b"))
	if len(p.Path.Steps) == 0 {
		t.Fatalf("expected at least one sibling step")
	}
	p.Path.Steps[0].SiblingHash[0] ^= 0x01

	ok, err := VerifyFull(params, p)
	if err == nil && ok {
		t.Fatalf("expected verification to fail after flipping a sibling bit")
	}
}

func TestMerklePathRejectsFlippedValue(t *testing.T) {
	f, params := newTestSetup(t)
	if err := f.Insert([]byte("a"), []byte("1")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	p := membershipFor(t, f, params, []byte("a"))
	p.Value = []byte("2")

	ok, err := VerifyFull(params, p)
	if err == nil && ok {
		t.Fatalf("expected verification to fail after flipping the value")
	}
}

func TestVerifyUpdatePathConsistency(t *testing.T) {
	f, params := newTestSetup(t)
	for _, k := range []string{"a", "b", "c"} {
		if err := f.Insert([]byte(k), []byte("v-"+k)); err != nil {
			t.Fatalf("Insert(%s): %v", k, err)
		}
	}

	pre := membershipFor(t, f, params, []byte("b"))
	if err := f.Update([]byte("b"), []byte("2new")); err != nil {
		t.Fatalf("Update: %v", err)
	}
	post := membershipFor(t, f, params, []byte("b"))

	up := &UpdateProof{Key: []byte("b"), OldValue: []byte("v-b"), NewValue: []byte("2new"), Pre: pre, Post: post}
	ok, err := VerifyUpdate(params, up)
	if err != nil {
		t.Fatalf("VerifyUpdate: %v", err)
	}
	if !ok {
		t.Fatalf("expected update proof to verify")
	}
	if pre.Path.RootHash == post.Path.RootHash {
		t.Fatalf("root hash should change across an update")
	}
}

func TestVerifyUpdateDetectsPathInconsistency(t *testing.T) {
	f, params := newTestSetup(t)
	for _, k := range []string{"a", "b", "c"} {
		if err := f.Insert([]byte(k), []byte("v-"+k)); err != nil {
			t.Fatalf("Insert(%s): %v", k, err)
		}
	}
	pre := membershipFor(t, f, params, []byte("b"))
	if err := f.Update([]byte("b"), []byte("2new")); err != nil {
		t.Fatalf("Update: %v", err)
	}
	post := membershipFor(t, f, params, []byte("b"))
	post.Path.Steps[0].SiblingIsLeft = !post.Path.Steps[0].SiblingIsLeft

	up := &UpdateProof{Key: []byte("b"), OldValue: []byte("v-b"), NewValue: []byte("2new"), Pre: pre, Post: post}
	ok, _ := VerifyUpdate(params, up)
	if ok {
		t.Fatalf("expected path-inconsistent update proof to fail verification")
	}
}

func TestVerifyDeletePreservesLeafPosition(t *testing.T) {
	f, params := newTestSetup(t)
	for _, k := range []string{"a", "b", "c"} {
		if err := f.Insert([]byte(k), []byte("v-"+k)); err != nil {
			t.Fatalf("Insert(%s): %v", k, err)
		}
	}

	pre := membershipFor(t, f, params, []byte("a"))
	_, path, leaf, found := f.LocateLive([]byte("a"))
	if !found {
		t.Fatalf("key a not live before delete")
	}
	preSteps := forest.BuildPath(path, leaf)

	if err := f.Delete([]byte("a")); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	postRootIdx, postPath, postLeaf, found := f.LocateTombstoned([]byte("a"))
	if !found {
		t.Fatalf("expected a tombstoned leaf for a")
	}
	postSteps := forest.BuildPath(postPath, postLeaf)

	dp := &DeleteProof{
		Key:      []byte("a"),
		OldValue: []byte("v-a"),
		Pre:      pre,
		PostPath: MerklePath{Steps: postSteps, RootHash: f.RootHash(postRootIdx)},
		PostAcc:  f.RootAcc(postRootIdx),
	}

	ok, err := VerifyDelete(params, dp)
	if err != nil {
		t.Fatalf("VerifyDelete: %v", err)
	}
	if !ok {
		t.Fatalf("expected delete proof to verify")
	}
	if !stepsEqual(preSteps, postSteps) {
		t.Fatalf("delete must preserve the tombstoned leaf's position")
	}
}
