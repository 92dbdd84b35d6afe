package hashring

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashersAreDeterministic(t *testing.T) {
	hashers := map[string]Hasher{
		"xxhash":  NewXXHasher(),
		"murmur3": NewMurmurHasher(),
		"sha256":  NewSHA256Hasher(),
	}
	inputs := [][]byte{
		[]byte(""),
		[]byte("s1"),
		replicaKey("s1", 0),
		replicaKey("s1", 1),
		[]byte("a much longer key with spaces and unicode: héllo"),
	}

	for name, hasher := range hashers {
		for _, input := range inputs {
			first := hasher.Sum64(input)
			require.Equal(t, first, hasher.Sum64(input), "%s not deterministic for %q", name, input)
		}
	}
}

func TestSHA256HasherFolding(t *testing.T) {
	// First 8 bytes of sha256("hello"), big-endian.
	h := NewSHA256Hasher()
	require.Equal(t, uint64(0x2cf24dba5fb0a30e), h.Sum64([]byte("hello")))
}

func TestHashersSpreadDistinctInputs(t *testing.T) {
	for name, hasher := range map[string]Hasher{
		"xxhash":  NewXXHasher(),
		"murmur3": NewMurmurHasher(),
		"sha256":  NewSHA256Hasher(),
	} {
		seen := make(map[uint64]struct{})
		for i := 0; i < 1000; i++ {
			seen[hasher.Sum64([]byte(fmt.Sprintf("input-%d", i)))] = struct{}{}
		}
		require.Len(t, seen, 1000, "%s collided on trivially distinct inputs", name)
	}
}

func TestReplicaKeyUnambiguous(t *testing.T) {
	// The pairs a bare string concatenation would conflate.
	require.NotEqual(t, replicaKey("s1", 11), replicaKey("s11", 1))
	// Same total byte length, different (server, index) pairs.
	require.NotEqual(t, replicaKey("s1", 11), replicaKey("s2", 11))
	require.NotEqual(t, replicaKey("ab", 1), replicaKey("ba", 1))
	require.Equal(t, replicaKey("s1", 3), replicaKey("s1", 3))
}

func TestRingWorksWithEveryHasher(t *testing.T) {
	for name, hasher := range map[string]Hasher{
		"xxhash":  NewXXHasher(),
		"murmur3": NewMurmurHasher(),
		"sha256":  NewSHA256Hasher(),
	} {
		r, err := New(Config{Replicas: 50, Hasher: hasher})
		require.NoError(t, err)
		for i := 1; i <= 3; i++ {
			r.AddServer(fmt.Sprintf("s%d", i))
		}

		counts := make(map[string]int)
		for _, key := range sampleKeys(300) {
			owner, err := r.Lookup(key)
			require.NoError(t, err)
			counts[owner]++
		}
		require.Len(t, counts, 3, "%s: every server should receive keys", name)
	}
}
