// Command demo walks a fresh Store through a full CRUD lifecycle:
// insert, get, update, delete, revive, and the proof-bearing variants
// of get, update and delete (plus batched membership proofs), logging
// the forest's root summaries at every step.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/kazmiller0/acc-tree/config"
	"github.com/kazmiller0/acc-tree/internal/logging"
	"github.com/kazmiller0/acc-tree/pkg/accumulator"
	"github.com/kazmiller0/acc-tree/pkg/kvstore"
	"github.com/kazmiller0/acc-tree/pkg/merklehash"
	"github.com/kazmiller0/acc-tree/pkg/proof"
)

func main() {
	logging.SetLevel(zerolog.InfoLevel)
	log := logging.Logger()

	var params *accumulator.PublicParams
	var td *accumulator.Trapdoor
	var err error

	if len(os.Args) >= 2 {
		f, openErr := os.Open(os.Args[1])
		if openErr != nil {
			log.Fatal().Err(openErr).Str("path", os.Args[1]).Msg("open param file")
		}
		params, err = accumulator.LoadParams(f)
		f.Close()
		if err != nil {
			log.Fatal().Err(err).Msg("load params")
		}
		log.Info().Str("path", os.Args[1]).Msg("loaded parameters from file")
	} else {
		params, td, err = accumulator.DevSetup(config.DefaultParams())
		if err != nil {
			log.Fatal().Err(err).Msg("dev setup")
		}
		log.Info().Uint64("q", params.Q).Msg("generated dev parameters (no file given)")
	}
	if td == nil {
		// A param file loaded from disk carries no trapdoor: fall back to
		// a fresh one so the demo can still Insert/Delete. A real
		// Prover never has this luxury once the ceremony trapdoor is gone.
		_, td, err = accumulator.DevSetup(config.Params{Curve: params.Curve, Q: params.Q, Version: params.Version})
		if err != nil {
			log.Fatal().Err(err).Msg("derive demo trapdoor")
		}
	}

	store := kvstore.New(params, td)
	logRoots(log, store, "initial")

	ctx := context.Background()

	mustInsert(log, store, "a", "1")
	logRoots(log, store, "after insert a")
	mustInsert(log, store, "b", "2")
	logRoots(log, store, "after insert b")
	mustInsert(log, store, "c", "3")
	logRoots(log, store, "after insert c")

	if v, err := store.Get([]byte("c")); err != nil {
		log.Fatal().Err(err).Msg("get c")
	} else {
		log.Info().Str("key", "c").Str("value", string(v)).Msg("get")
	}

	up, err := store.UpdateWithProof([]byte("b"), []byte("2new"))
	if err != nil {
		log.Fatal().Err(err).Msg("update b")
	}
	ok, err := proof.VerifyUpdate(params, up)
	if err != nil || !ok {
		log.Fatal().Err(err).Bool("ok", ok).Msg("verify update proof")
	}
	log.Info().Msg("update b -> 2new, update proof verified")
	logRoots(log, store, "after update b")

	dp, err := store.DeleteWithProof([]byte("a"))
	if err != nil {
		log.Fatal().Err(err).Msg("delete a")
	}
	ok, err = proof.VerifyDelete(params, dp)
	if err != nil || !ok {
		log.Fatal().Err(err).Bool("ok", ok).Msg("verify delete proof")
	}
	log.Info().Msg("delete a, delete proof verified")
	logRoots(log, store, "after delete a")

	if _, err := store.Get([]byte("a")); err == nil {
		log.Fatal().Msg("expected a to be gone")
	}

	mustInsert(log, store, "a", "1")
	log.Info().Msg("revived a")
	logRoots(log, store, "after revive a")

	mp, nm, err := store.GetWithProof([]byte("zzz"))
	if err != nil {
		log.Fatal().Err(err).Msg("get_with_proof zzz")
	}
	if mp != nil {
		log.Fatal().Msg("did not expect membership proof for absent key")
	}
	if nm != nil {
		var rootHash merklehash.Digest
		if nm.Predecessor != nil {
			rootHash = nm.Predecessor.Path.RootHash
		} else {
			rootHash = nm.Successor.Path.RootHash
		}
		ok, err := proof.VerifyNonMembership(nm, rootHash)
		if err != nil {
			log.Fatal().Err(err).Msg("verify non-membership")
		}
		log.Info().Bool("ok", ok).Msg("non-membership proof for zzz verified")
	}

	batch, err := store.MembershipProofsBatch(ctx, [][]byte{[]byte("a"), []byte("b"), []byte("c")})
	if err != nil {
		log.Fatal().Err(err).Msg("batch membership proofs")
	}
	for _, p := range batch {
		ok, err := proof.VerifyFull(params, p)
		if err != nil || !ok {
			log.Fatal().Err(err).Bool("ok", ok).Str("key", string(p.Key)).Msg("verify batch membership proof")
		}
	}
	log.Info().Int("count", len(batch)).Msg("batch membership proofs verified")

	fmt.Println("demo complete")
}

func mustInsert(log *zerolog.Logger, s *kvstore.Store, key, value string) {
	if err := s.Insert([]byte(key), []byte(value)); err != nil {
		log.Fatal().Err(err).Str("key", key).Msg("insert")
	}
}

func logRoots(log *zerolog.Logger, s *kvstore.Store, label string) {
	roots := s.Roots()
	levels := make([]int, len(roots))
	for i, r := range roots {
		levels[i] = r.Level
	}
	log.Info().Str("stage", label).Int("num_roots", len(roots)).Ints("levels", levels).Msg("forest state")
}
