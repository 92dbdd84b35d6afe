// Package hashring provides a consistent hashing ring that maps keys to a
// dynamic set of servers. Adding or removing a server relocates only the keys
// that were owned by the affected ring segments; all other assignments stay
// put. For background on the technique, see
// https://en.wikipedia.org/wiki/Consistent_hashing
package hashring

import (
	"encoding/binary"
	"errors"
	"sort"
	"sync"
)

var (
	// ErrEmptyRing is returned by lookups on a ring that holds no servers.
	ErrEmptyRing = errors.New("ring has no servers")

	// ErrInvalidReplicas is returned by New when Config.Replicas is not positive.
	ErrInvalidReplicas = errors.New("replica count must be positive")

	// ErrInsufficientServers is returned by LookupN when fewer servers are
	// present than requested.
	ErrInsufficientServers = errors.New("insufficient server count")
)

// Hasher is responsible for generating an unsigned, 64 bit hash of the
// provided byte slice. Hasher should minimize collisions (generating the same
// hash for different byte slices) and be deterministic across processes, so
// that every instance of the ring agrees on key placement.
type Hasher interface {
	Sum64([]byte) uint64
}

// Config describes how a Ring should be built.
type Config struct {
	// Hasher places servers and keys on the ring. Nil selects the xxHash
	// hasher.
	Hasher Hasher

	// Replicas is the number of ring positions each server occupies. Higher
	// values smooth key distribution at the cost of memory and slower
	// membership changes. Must be at least 1.
	Replicas int
}

// Ring holds the consistent hashing state: an ordered set of ring positions
// and the server that owns each one. All methods are safe for concurrent use.
type Ring struct {
	mu sync.RWMutex

	hasher    Hasher
	replicas  int
	sortedSet []uint64
	ring      map[uint64]string
	servers   map[string]struct{}
}

// New creates an empty Ring from the given config.
func New(cfg Config) (*Ring, error) {
	if cfg.Replicas < 1 {
		return nil, ErrInvalidReplicas
	}
	hasher := cfg.Hasher
	if hasher == nil {
		hasher = NewXXHasher()
	}
	return &Ring{
		hasher:   hasher,
		replicas: cfg.Replicas,
		ring:     make(map[uint64]string),
		servers:  make(map[string]struct{}),
	}, nil
}

// replicaKey encodes a server's i-th replica as the server bytes followed by
// a fixed-width little-endian index. The fixed width keeps distinct
// (server, index) pairs from producing identical input bytes, which a plain
// string concatenation would allow ("s1"+"11" vs "s11"+"1").
func replicaKey(server string, i int) []byte {
	b := make([]byte, len(server)+8)
	copy(b, server)
	binary.LittleEndian.PutUint64(b[len(server):], uint64(i))
	return b
}

// AddServer places the server's replicas on the ring. If a computed position
// is already occupied, the later insertion overwrites the earlier owner at
// that exact position. Re-adding a server that is already present recomputes
// the same positions and leaves the ring unchanged.
func (r *Ring) AddServer(server string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.servers[server] = struct{}{}

	for i := 0; i < r.replicas; i++ {
		h := r.hasher.Sum64(replicaKey(server, i))
		if _, ok := r.ring[h]; !ok {
			r.sortedSet = append(r.sortedSet, h)
		}
		r.ring[h] = server
	}
	sort.Slice(r.sortedSet, func(i, j int) bool {
		return r.sortedSet[i] < r.sortedSet[j]
	})
}

// RemoveServer removes the server's replicas from the ring. A position is
// only deleted while the server still owns it, so an entry taken over by a
// colliding replica of another server is left alone. Removing a server that
// is not present is a no-op.
func (r *Ring) RemoveServer(server string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.servers[server]; !ok {
		return
	}

	for i := 0; i < r.replicas; i++ {
		h := r.hasher.Sum64(replicaKey(server, i))
		owner, ok := r.ring[h]
		if !ok || owner != server {
			continue
		}
		delete(r.ring, h)
		r.delSlice(h)
	}
	delete(r.servers, server)
}

func (r *Ring) delSlice(val uint64) {
	idx := sort.Search(len(r.sortedSet), func(i int) bool {
		return r.sortedSet[i] >= val
	})
	if idx < len(r.sortedSet) && r.sortedSet[idx] == val {
		r.sortedSet = append(r.sortedSet[:idx], r.sortedSet[idx+1:]...)
	}
}

// Lookup returns the server that owns the given key: the owner of the
// smallest ring position greater than or equal to the key's hash, wrapping
// to the smallest position on the ring when the hash is past the last entry.
// It returns ErrEmptyRing when no servers are present.
func (r *Ring) Lookup(key string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.sortedSet) == 0 {
		return "", ErrEmptyRing
	}
	idx := r.successor(r.hasher.Sum64([]byte(key)))
	return r.ring[r.sortedSet[idx]], nil
}

// LookupN returns the first n distinct servers encountered walking clockwise
// from the key's position. The first entry is always Lookup's result. It
// returns ErrEmptyRing on an empty ring and ErrInsufficientServers when
// fewer than n servers are present.
func (r *Ring) LookupN(key string, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.sortedSet) == 0 {
		return nil, ErrEmptyRing
	}
	if n > len(r.servers) {
		return nil, ErrInsufficientServers
	}

	idx := r.successor(r.hasher.Sum64([]byte(key)))
	res := make([]string, 0, n)
	seen := make(map[string]struct{}, n)
	for i := 0; i < len(r.sortedSet) && len(res) < n; i++ {
		owner := r.ring[r.sortedSet[(idx+i)%len(r.sortedSet)]]
		if _, ok := seen[owner]; ok {
			continue
		}
		seen[owner] = struct{}{}
		res = append(res, owner)
	}
	return res, nil
}

// successor finds the index of the smallest stored position >= h, wrapping
// to index 0 when h is greater than every stored position. Callers must hold
// the lock and guarantee the ring is non-empty.
func (r *Ring) successor(h uint64) int {
	idx := sort.Search(len(r.sortedSet), func(i int) bool {
		return r.sortedSet[i] >= h
	})
	if idx >= len(r.sortedSet) {
		idx = 0
	}
	return idx
}

// Servers returns the IDs of the servers currently on the ring, sorted.
func (r *Ring) Servers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make([]string, 0, len(r.servers))
	for server := range r.servers {
		res = append(res, server)
	}
	sort.Strings(res)
	return res
}

// Len returns the number of servers currently on the ring.
func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.servers)
}
