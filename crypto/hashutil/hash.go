// Package hashutil implements the Hasher component (spec §4.1): 32-byte
// SHA-256 chunking and Merkle-pair hashing, with a precomputed zero-hash
// table and a bounded hot-path cache of branch hashes.
//
// Grounded on the teacher's shared/trieutil zero-hash precompute pattern,
// using github.com/minio/sha256-simd for the hash function itself since
// Merkleization is the hottest loop in the whole engine.
package hashutil

import (
	lru "github.com/hashicorp/golang-lru"
	"github.com/minio/sha256-simd"
)

// MaxDepth bounds the zero-hash table; no SSZ type in this engine nests
// deeper than this (validator registry at 2**40 leaves still fits well
// inside 64).
const MaxDepth = 64

var zeroHashes [MaxDepth][32]byte

func init() {
	for i := 1; i < MaxDepth; i++ {
		zeroHashes[i] = HashTwo(zeroHashes[i-1], zeroHashes[i-1])
	}
}

// ZeroHash returns the root of an all-zero subtree of the given depth.
func ZeroHash(depth int) [32]byte {
	if depth < 0 {
		depth = 0
	}
	if depth >= MaxDepth {
		depth = MaxDepth - 1
	}
	return zeroHashes[depth]
}

// Hash returns the SHA-256 digest of data.
func Hash(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// pairCache memoizes HashTwo results across adjacent commit() calls within
// one epoch; branch hashes repeat constantly across sibling TreeViews that
// share unmodified subtrees, so this cache turns a large fraction of the
// hot path into map lookups. Bounded to avoid unbounded growth across a
// long-running process.
var pairCache, _ = lru.New(1 << 16)

type pairKey [64]byte

// HashTwo computes the parent hash of a Merkle pair: sha256(left || right).
func HashTwo(left, right [32]byte) [32]byte {
	var key pairKey
	copy(key[:32], left[:])
	copy(key[32:], right[:])
	if v, ok := pairCache.Get(key); ok {
		return v.([32]byte)
	}
	var buf [64]byte
	copy(buf[:32], left[:])
	copy(buf[32:], right[:])
	h := sha256.Sum256(buf[:])
	pairCache.Add(key, h)
	return h
}

// Merkleize folds a slice of already-chunked 32-byte leaves bottom-up,
// padding the final layer out to a power of two with zero hashes, and
// returns the root. limit, if non-zero, is the number of leaves the type's
// maximum length would produce; the tree is built to that depth so that
// growing a list up to its limit never changes the root's position.
func Merkleize(leaves [][32]byte, limit int) [32]byte {
	n := len(leaves)
	if limit == 0 {
		limit = n
	}
	if limit < 1 {
		limit = 1
	}
	depth := ceilLog2(limit)

	layer := make([][32]byte, n)
	copy(layer, leaves)
	for d := 0; d < depth; d++ {
		width := 1 << uint(depth-d)
		next := make([][32]byte, (width+1)/2)
		for i := 0; i < len(next); i++ {
			var l, r [32]byte
			if 2*i < len(layer) {
				l = layer[2*i]
			} else {
				l = ZeroHash(d)
			}
			if 2*i+1 < len(layer) {
				r = layer[2*i+1]
			} else {
				r = ZeroHash(d)
			}
			next[i] = HashTwo(l, r)
		}
		layer = next
	}
	if len(layer) == 0 {
		return ZeroHash(depth)
	}
	return layer[0]
}

// MixInLength mixes a uint64 length into a root, as required for SSZ list
// and bitlist hash-tree-root computation.
func MixInLength(root [32]byte, length uint64) [32]byte {
	var lengthLeaf [32]byte
	buf := lengthLeaf[:0]
	for i := 0; i < 8; i++ {
		buf = append(buf, byte(length>>(8*uint(i))))
	}
	copy(lengthLeaf[:], buf)
	return HashTwo(root, lengthLeaf)
}

func ceilLog2(n int) int {
	if n <= 1 {
		return 0
	}
	d := 0
	v := 1
	for v < n {
		v <<= 1
		d++
	}
	return d
}
