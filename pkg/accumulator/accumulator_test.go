package accumulator

import (
	"testing"

	"github.com/kazmiller0/acc-tree/config"
)

func testParams(t *testing.T, q uint64) (*PublicParams, *Trapdoor) {
	t.Helper()
	cfg := config.Params{Curve: config.CurveBLS12381, Q: q, Version: config.ParamFileVersion}
	params, td, err := DevSetup(cfg)
	if err != nil {
		t.Fatalf("DevSetup: %v", err)
	}
	return params, td
}

func TestAccValueCommutative(t *testing.T) {
	params, _ := testParams(t, 8)

	a1, err := AccValue(params, [][]byte{[]byte("k1"), []byte("k2")})
	if err != nil {
		t.Fatalf("AccValue: %v", err)
	}
	a2, err := AccValue(params, [][]byte{[]byte("k2"), []byte("k1")})
	if err != nil {
		t.Fatalf("AccValue: %v", err)
	}
	if !a1.Equal(&a2) {
		t.Fatalf("AccValue should be order-independent")
	}
}

func TestAccValueEmptyIsGenerator(t *testing.T) {
	params, _ := testParams(t, 4)
	a, err := AccValue(params, nil)
	if err != nil {
		t.Fatalf("AccValue: %v", err)
	}
	e := EmptyAcc()
	if !a.Equal(&e) {
		t.Fatalf("AccValue(nil) should equal EmptyAcc()")
	}
}

func TestMembershipVerification(t *testing.T) {
	params, _ := testParams(t, 8)
	keys := [][]byte{[]byte("alice"), []byte("bob"), []byte("carol")}

	acc, err := AccValue(params, keys)
	if err != nil {
		t.Fatalf("AccValue: %v", err)
	}
	witness, err := CreateWitness(params, keys, []byte("bob"))
	if err != nil {
		t.Fatalf("CreateWitness: %v", err)
	}

	ok, err := VerifyMembership(params, acc, witness, []byte("bob"))
	if err != nil {
		t.Fatalf("VerifyMembership: %v", err)
	}
	if !ok {
		t.Fatalf("expected membership proof to verify")
	}

	ok, err = VerifyMembership(params, acc, witness, []byte("carol"))
	if err != nil {
		t.Fatalf("VerifyMembership: %v", err)
	}
	if ok {
		t.Fatalf("witness for bob should not verify carol's membership")
	}
}

func TestIncrementalAddMatchesDirect(t *testing.T) {
	params, td := testParams(t, 8)

	direct, err := AccValue(params, [][]byte{[]byte("x"), []byte("y")})
	if err != nil {
		t.Fatalf("AccValue: %v", err)
	}

	start, err := AccValue(params, [][]byte{[]byte("x")})
	if err != nil {
		t.Fatalf("AccValue: %v", err)
	}
	incremental, err := IncrementalAdd(td, start, []byte("y"))
	if err != nil {
		t.Fatalf("IncrementalAdd: %v", err)
	}

	if !direct.Equal(&incremental) {
		t.Fatalf("incremental add should match direct recomputation")
	}
}

func TestIncrementalDeleteInvertsAdd(t *testing.T) {
	params, td := testParams(t, 8)

	start, err := AccValue(params, [][]byte{[]byte("x")})
	if err != nil {
		t.Fatalf("AccValue: %v", err)
	}
	added, err := IncrementalAdd(td, start, []byte("y"))
	if err != nil {
		t.Fatalf("IncrementalAdd: %v", err)
	}
	back, err := IncrementalDelete(td, added, []byte("y"))
	if err != nil {
		t.Fatalf("IncrementalDelete: %v", err)
	}
	if !start.Equal(&back) {
		t.Fatalf("delete should invert add")
	}
}

func TestIncrementalUpdateReplacesKey(t *testing.T) {
	params, td := testParams(t, 8)

	before, err := AccValue(params, [][]byte{[]byte("x"), []byte("old")})
	if err != nil {
		t.Fatalf("AccValue: %v", err)
	}
	after, err := IncrementalUpdate(td, before, []byte("old"), []byte("new"))
	if err != nil {
		t.Fatalf("IncrementalUpdate: %v", err)
	}
	want, err := AccValue(params, [][]byte{[]byte("x"), []byte("new")})
	if err != nil {
		t.Fatalf("AccValue: %v", err)
	}
	if !want.Equal(&after) {
		t.Fatalf("update should replace old with new in the committed set")
	}
}

func TestDisjointnessProof(t *testing.T) {
	params, _ := testParams(t, 8)
	a := [][]byte{[]byte("a1"), []byte("a2")}
	b := [][]byte{[]byte("b1"), []byte("b2")}

	proof, err := ProveDisjointness(params, a, b)
	if err != nil {
		t.Fatalf("ProveDisjointness: %v", err)
	}
	accAG2, err := AccValueG2(params, a)
	if err != nil {
		t.Fatalf("AccValueG2: %v", err)
	}
	accBG2, err := AccValueG2(params, b)
	if err != nil {
		t.Fatalf("AccValueG2: %v", err)
	}
	ok, err := VerifyDisjointness(accAG2, accBG2, proof)
	if err != nil {
		t.Fatalf("VerifyDisjointness: %v", err)
	}
	if !ok {
		t.Fatalf("expected disjointness proof to verify")
	}
}

func TestDisjointnessRejectsOverlap(t *testing.T) {
	params, _ := testParams(t, 8)
	a := [][]byte{[]byte("shared"), []byte("a2")}
	b := [][]byte{[]byte("shared"), []byte("b2")}

	if _, err := ProveDisjointness(params, a, b); err == nil {
		t.Fatalf("expected ProveDisjointness to fail on overlapping sets")
	}
}

func TestIntersectionProof(t *testing.T) {
	params, _ := testParams(t, 8)
	a := [][]byte{[]byte("a1"), []byte("common")}
	b := [][]byte{[]byte("common"), []byte("b2")}

	proof, err := ProveIntersection(params, a, b)
	if err != nil {
		t.Fatalf("ProveIntersection: %v", err)
	}

	accA, err := AccValue(params, a)
	if err != nil {
		t.Fatalf("AccValue: %v", err)
	}
	accB, err := AccValue(params, b)
	if err != nil {
		t.Fatalf("AccValue: %v", err)
	}
	accAG2, err := AccValueG2(params, a)
	if err != nil {
		t.Fatalf("AccValueG2: %v", err)
	}
	accBG2, err := AccValueG2(params, b)
	if err != nil {
		t.Fatalf("AccValueG2: %v", err)
	}

	ok, err := VerifyIntersection(accA, accB, accAG2, accBG2, proof)
	if err != nil {
		t.Fatalf("VerifyIntersection: %v", err)
	}
	if !ok {
		t.Fatalf("expected intersection proof to verify")
	}

	expectedI, err := AccValue(params, [][]byte{[]byte("common")})
	if err != nil {
		t.Fatalf("AccValue: %v", err)
	}
	if !expectedI.Equal(&proof.AccI) {
		t.Fatalf("intersection set should be exactly {common}")
	}
}

func TestUnionProof(t *testing.T) {
	params, _ := testParams(t, 8)
	a := [][]byte{[]byte("a1"), []byte("a2")}
	b := [][]byte{[]byte("b1")}

	proof, err := ProveUnion(params, a, b)
	if err != nil {
		t.Fatalf("ProveUnion: %v", err)
	}
	accAG2, err := AccValueG2(params, a)
	if err != nil {
		t.Fatalf("AccValueG2: %v", err)
	}
	accBG2, err := AccValueG2(params, b)
	if err != nil {
		t.Fatalf("AccValueG2: %v", err)
	}
	ok, err := VerifyUnion(accAG2, accBG2, proof)
	if err != nil {
		t.Fatalf("VerifyUnion: %v", err)
	}
	if !ok {
		t.Fatalf("expected union proof to verify")
	}

	want, err := AccValue(params, [][]byte{[]byte("a1"), []byte("a2"), []byte("b1")})
	if err != nil {
		t.Fatalf("AccValue: %v", err)
	}
	if !want.Equal(&proof.AccU) {
		t.Fatalf("union accumulator mismatch")
	}
}

func TestParamBudgetExceeded(t *testing.T) {
	params, _ := testParams(t, 1)
	keys := [][]byte{[]byte("k1"), []byte("k2"), []byte("k3")}
	if _, err := AccValue(params, keys); err == nil {
		t.Fatalf("expected ErrParamBudgetExceeded for a set larger than Q")
	}
}
