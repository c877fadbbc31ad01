// Package keyenc implements key_to_scalar: a deterministic,
// domain-separated map from a key's raw bytes to a non-zero scalar in
// F_r. Domain separation uses HKDF-SHA256 (golang.org/x/crypto/hkdf) so
// that key_to_scalar can never collide with the leaf/non-leaf hashing in
// pkg/merklehash, which operates in a different domain (raw SHA-256, no
// HKDF info string) even when fed the same bytes.
package keyenc

import (
	"crypto/sha256"
	"io"
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"golang.org/x/crypto/hkdf"

	"github.com/kazmiller0/acc-tree/pkg/kverrors"
)

// domainSalt fixes the HKDF salt so this mapping can never be reproduced
// by a caller hashing the same key bytes for an unrelated purpose.
var domainSalt = []byte("acc-tree/key_to_scalar/v1")

// maxRejectionAttempts bounds the (astronomically unlikely) retry loop
// for the zero-scalar case. Exceeding it indicates a broken hash, not bad
// luck, so it is treated as a hard error rather than looping forever.
const maxRejectionAttempts = 8

// ToScalar deterministically maps key to a non-zero element of F_r,
// where r is the BLS12-381 scalar field order. It returns
// kverrors.ErrInvalidInput if, after maxRejectionAttempts independent
// HKDF expansions, every candidate still reduced to zero mod r.
func ToScalar(key []byte) (*big.Int, error) {
	modulus := fr.Modulus()

	for attempt := 0; attempt < maxRejectionAttempts; attempt++ {
		info := []byte{byte(attempt)}
		reader := hkdf.New(sha256.New, key, domainSalt, info)

		buf := make([]byte, fr.Bytes)
		if _, err := io.ReadFull(reader, buf); err != nil {
			return nil, err
		}

		var elem fr.Element
		elem.SetBytes(buf) // SetBytes reduces the big-endian value mod r.
		if !elem.IsZero() {
			out := new(big.Int)
			elem.BigInt(out)
			return out, nil
		}
	}
	return nil, kverrors.ErrInvalidInput
}

// G1Generator and G2Generator expose the curve's canonical generators so
// callers that need them (e.g. the accumulator's empty-set value) don't
// each reconstruct them independently.
func G1Generator() bls12381.G1Affine {
	_, _, g1, _ := bls12381.Generators()
	return g1
}

func G2Generator() bls12381.G2Affine {
	_, _, _, g2 := bls12381.Generators()
	return g2
}
