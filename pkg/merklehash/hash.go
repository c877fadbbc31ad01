// Package merklehash implements the two length-prefixed SHA-256 hash
// functions used throughout the forest: H_leaf for leaf contents and
// H_nonleaf for combining two child hashes. Both are length-prefixed so
// that H_leaf("ab", "c") cannot collide with H_leaf("a", "bc").
package merklehash

import (
	"crypto/sha256"
	"encoding/binary"
)

// Size is the digest width in bytes.
const Size = sha256.Size

// Digest is a fixed-size Merkle hash. The zero Digest is EmptyHash.
type Digest [Size]byte

// EmptyHash is the process-wide constant used for tombstoned leaves and
// structurally empty subtrees. It is the all-zero digest, never the
// output of SHA-256 on any input, so it can never be produced by Leaf or
// NonLeaf hashing and always signals "nothing here".
var EmptyHash Digest

// IsEmpty reports whether d is the all-zero empty hash.
func (d Digest) IsEmpty() bool {
	return d == EmptyHash
}

// Bytes returns the digest as a byte slice.
func (d Digest) Bytes() []byte {
	b := make([]byte, Size)
	copy(b, d[:])
	return b
}

// HLeaf computes H_leaf(key, value) = SHA256(len(key) || key || len(value) || value).
// Lengths are encoded as big-endian uint64 to rule out any ambiguity
// between key and value boundaries.
func HLeaf(key, value []byte) Digest {
	h := sha256.New()
	writeLenPrefixed(h, key)
	writeLenPrefixed(h, value)
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// HNonLeaf computes H_nonleaf(l, r) = SHA256(l || r) over two fixed
// 32-byte child hashes.
func HNonLeaf(left, right Digest) Digest {
	h := sha256.New()
	h.Write(left[:])
	h.Write(right[:])
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

func writeLenPrefixed(h interface{ Write([]byte) (int, error) }, b []byte) {
	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], uint64(len(b)))
	h.Write(lenBuf[:])
	h.Write(b)
}

// FromBytes copies b (which must be Size bytes) into a Digest.
func FromBytes(b []byte) Digest {
	var out Digest
	copy(out[:], b)
	return out
}
