package forest

import (
	"testing"

	"github.com/kazmiller0/acc-tree/config"
	"github.com/kazmiller0/acc-tree/pkg/accumulator"
	"github.com/kazmiller0/acc-tree/pkg/kverrors"
)

func newTestForest(t *testing.T, q uint64) *Forest {
	t.Helper()
	cfg := config.Params{Curve: config.CurveBLS12381, Q: q, Version: config.ParamFileVersion}
	params, td, err := accumulator.DevSetup(cfg)
	if err != nil {
		t.Fatalf("DevSetup: %v", err)
	}
	return New(params, td)
}

func TestInsertGetRoundTrip(t *testing.T) {
	f := newTestForest(t, 16)
	if err := f.Insert([]byte("alice"), []byte("v1")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	v, err := f.Get([]byte("alice"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(v) != "v1" {
		t.Fatalf("got %q, want %q", v, "v1")
	}
}

func TestInsertDuplicateKeyErrors(t *testing.T) {
	f := newTestForest(t, 16)
	if err := f.Insert([]byte("alice"), []byte("v1")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := f.Insert([]byte("alice"), []byte("v2")); err != kverrors.ErrKeyExists {
		t.Fatalf("got err %v, want ErrKeyExists", err)
	}
}

func TestGetMissingKeyErrors(t *testing.T) {
	f := newTestForest(t, 16)
	if _, err := f.Get([]byte("ghost")); err != kverrors.ErrKeyNotFound {
		t.Fatalf("got err %v, want ErrKeyNotFound", err)
	}
}

func TestUpdateLeavesAccumulatorUntouched(t *testing.T) {
	f := newTestForest(t, 16)
	keys := []string{"a", "b", "c"}
	for _, k := range keys {
		if err := f.Insert([]byte(k), []byte("v-"+k)); err != nil {
			t.Fatalf("Insert(%s): %v", k, err)
		}
	}

	before := f.Summaries()
	if err := f.Update([]byte("b"), []byte("v-b-2")); err != nil {
		t.Fatalf("Update: %v", err)
	}
	after := f.Summaries()

	if len(before) != len(after) {
		t.Fatalf("root count changed across Update: %d vs %d", len(before), len(after))
	}
	for i := range before {
		if !before[i].Acc.Equal(&after[i].Acc) {
			t.Fatalf("root %d accumulator changed across Update", i)
		}
	}

	v, err := f.Get([]byte("b"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(v) != "v-b-2" {
		t.Fatalf("got %q, want %q", v, "v-b-2")
	}
}

func TestDeleteThenGetNotFound(t *testing.T) {
	f := newTestForest(t, 16)
	if err := f.Insert([]byte("a"), []byte("1")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := f.Delete([]byte("a")); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := f.Get([]byte("a")); err != kverrors.ErrKeyNotFound {
		t.Fatalf("got err %v, want ErrKeyNotFound", err)
	}
}

func TestDeleteThenReviveRestoresValue(t *testing.T) {
	f := newTestForest(t, 16)
	keys := []string{"a", "b"}
	for _, k := range keys {
		if err := f.Insert([]byte(k), []byte("v-"+k)); err != nil {
			t.Fatalf("Insert(%s): %v", k, err)
		}
	}
	if err := f.Delete([]byte("a")); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := f.Insert([]byte("a"), []byte("v-a-revived")); err != nil {
		t.Fatalf("revive Insert: %v", err)
	}
	v, err := f.Get([]byte("a"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(v) != "v-a-revived" {
		t.Fatalf("got %q, want %q", v, "v-a-revived")
	}

	expectAcc, err := accumulator.AccValue(f.Params, [][]byte{[]byte("a"), []byte("b")})
	if err != nil {
		t.Fatalf("AccValue: %v", err)
	}
	if len(f.Roots) != 1 {
		t.Fatalf("expected a single merged root, got %d", len(f.Roots))
	}
	got := f.Roots[0].Acc
	if !got.Equal(&expectAcc) {
		t.Fatalf("revived accumulator mismatch")
	}
}

func TestRootLevelsFollowPopcount(t *testing.T) {
	f := newTestForest(t, 64)
	n := 7
	for i := 0; i < n; i++ {
		key := []byte{byte('a' + i)}
		if err := f.Insert(key, []byte("v")); err != nil {
			t.Fatalf("Insert %d: %v", i, err)
		}
	}

	if !f.rootLevelsDistinct() {
		t.Fatalf("root levels must be pairwise distinct")
	}

	want := ExpectedRootLevels(uint64(n))
	got := ExpectedRootLevels(uint64(0))
	for _, r := range f.Roots {
		got.Set(uint(r.Level))
	}
	if !want.Equal(got) {
		t.Fatalf("root levels %v do not match popcount(%d) levels %v", got, n, want)
	}
	// popcount(7) == 3.
	if want.Count() != 3 {
		t.Fatalf("expected 3 set bits for n=7, got %d", want.Count())
	}
}

func TestDeleteRemovesKeyFromAncestorAccumulator(t *testing.T) {
	f := newTestForest(t, 16)
	for _, k := range []string{"a", "b"} {
		if err := f.Insert([]byte(k), []byte("v")); err != nil {
			t.Fatalf("Insert(%s): %v", k, err)
		}
	}
	if len(f.Roots) != 1 {
		t.Fatalf("expected the two inserts to merge into one root, got %d", len(f.Roots))
	}
	if err := f.Delete([]byte("a")); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	want, err := accumulator.AccValue(f.Params, [][]byte{[]byte("b")})
	if err != nil {
		t.Fatalf("AccValue: %v", err)
	}
	got := f.Roots[0].Acc
	if !got.Equal(&want) {
		t.Fatalf("root accumulator after delete should equal Acc({b})")
	}
	if f.Roots[0].Keys.Contains([]byte("a")) {
		t.Fatalf("deleted key should no longer be in the root's Keys multiset")
	}
}
