package types

import (
	"bytes"

	"lukechampine.com/blake3"
)

// HashSize is the byte length of a Hash.
const HashSize = 32

// Hash is a content hash, used for the registry's rolling hash_chain and
// for the anti-entropy sync protocol's per-index hash comparisons.
type Hash [HashSize]byte

// SumHash hashes data with blake3 and returns a 32-byte Hash.
func SumHash(data []byte) Hash {
	return Hash(blake3.Sum256(data))
}

// ChainHash computes the next link in a rolling hash chain:
// H(data || prev).
func ChainHash(data []byte, prev Hash) Hash {
	buf := make([]byte, 0, len(data)+HashSize)
	buf = append(buf, data...)
	buf = append(buf, prev[:]...)
	return SumHash(buf)
}

// Equal reports whether h equals other.
func (h Hash) Equal(other Hash) bool {
	return bytes.Equal(h[:], other[:])
}

// IsZero reports whether h is the zero hash.
func (h Hash) IsZero() bool {
	return h == Hash{}
}
