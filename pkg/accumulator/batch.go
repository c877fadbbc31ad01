package accumulator

import (
	"context"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"golang.org/x/sync/errgroup"
)

// CreateWitnessBatch computes single-element membership witnesses for
// every key in targets against the same committed set keys, in
// parallel. Each witness is an independent O(|keys|) polynomial-root
// product, so batches of more than a handful of targets (e.g. building
// proofs for a whole page of Get_with_proof results) benefit from
// spreading the work across goroutines.
func CreateWitnessBatch(ctx context.Context, params *PublicParams, keys [][]byte, targets [][]byte) ([]bls12381.G1Affine, error) {
	out := make([]bls12381.G1Affine, len(targets))
	g, _ := errgroup.WithContext(ctx)
	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			w, err := CreateWitness(params, keys, target)
			if err != nil {
				return err
			}
			out[i] = w
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// VerifyMembershipBatch verifies a batch of (witness, key) pairs against
// the same acc in parallel, returning the accumulated boolean results in
// input order. Every pair is checked regardless of ctx; if any check
// returns an error, the whole batch returns nil and that error.
func VerifyMembershipBatch(ctx context.Context, params *PublicParams, acc bls12381.G1Affine, witnesses []bls12381.G1Affine, keys [][]byte) ([]bool, error) {
	out := make([]bool, len(keys))
	g, _ := errgroup.WithContext(ctx)
	for i := range keys {
		i := i
		g.Go(func() error {
			ok, err := VerifyMembership(params, acc, witnesses[i], keys[i])
			if err != nil {
				return err
			}
			out[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
