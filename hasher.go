package hashring

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"
)

type xxHasher struct{}

func (xxHasher) Sum64(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// NewXXHasher returns a Hasher backed by xxHash. It is the default used when
// Config.Hasher is nil: fast, with good uniformity for non-adversarial keys.
func NewXXHasher() Hasher {
	return xxHasher{}
}

type murmurHasher struct{}

func (murmurHasher) Sum64(data []byte) uint64 {
	return murmur3.Sum64(data)
}

// NewMurmurHasher returns a Hasher backed by Murmur3.
func NewMurmurHasher() Hasher {
	return murmurHasher{}
}

type sha256Hasher struct{}

// Sum64 folds the 256-bit digest by taking its first 8 bytes in big-endian
// order. Positions keep the full 64-bit width of the ring.
func (sha256Hasher) Sum64(data []byte) uint64 {
	sum := sha256.Sum256(data)
	return binary.BigEndian.Uint64(sum[:8])
}

// NewSHA256Hasher returns a Hasher backed by SHA-256, for callers that want
// placement to resist adversarially chosen keys at the cost of throughput.
func NewSHA256Hasher() Hasher {
	return sha256Hasher{}
}
