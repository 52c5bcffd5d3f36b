// Package ssz implements the SszTypeSystem (spec §4.3): serialize,
// deserialize, and hash-tree-root for the basic SSZ primitives, built on
// top of crypto/hashutil's Merkleization and container/treeview's TreeView.
package ssz

import (
	"encoding/binary"

	"github.com/eth2-core/beacon-engine/container/nodepool"
	"github.com/eth2-core/beacon-engine/crypto/hashutil"
	bserrors "github.com/eth2-core/beacon-engine/errors"
)

// Hasher is a thin adapter over crypto/hashutil's package-level Merkleization
// functions, for callers that want the Hasher component behind an interface
// value (log/trace fields, test doubles) rather than calling the package
// functions directly.
type Hasher struct{}

// DefaultHasher returns the process-wide Hasher adapter.
func DefaultHasher() *Hasher { return &Hasher{} }

// HashTwo computes the parent hash of a Merkle pair.
func (*Hasher) HashTwo(left, right [32]byte) [32]byte { return hashutil.HashTwo(left, right) }

// Merkleize folds leaves bottom-up to limit-derived depth.
func (*Hasher) Merkleize(leaves [][32]byte, limit int) [32]byte {
	return hashutil.Merkleize(leaves, limit)
}

// Uint64 is the SSZ `uint64` type: 8-byte little-endian fixed encoding.
type Uint64 struct{}

// Describe returns a debug label for log/trace fields.
func (Uint64) Describe() string { return "uint64" }

// Default returns the zero value.
func (Uint64) Default() uint64 { return 0 }

// SerializeSize is always 8 for a fixed-width basic type.
func (Uint64) SerializeSize(uint64) int { return 8 }

// SerializeInto writes the little-endian encoding of v into out, returning
// the number of bytes written.
func (Uint64) SerializeInto(v uint64, out []byte) int {
	binary.LittleEndian.PutUint64(out, v)
	return 8
}

// DeserializeFrom reads a uint64 from the first 8 bytes of data.
func (Uint64) DeserializeFrom(data []byte) (uint64, error) {
	if len(data) < 8 {
		return 0, bserrors.ErrUnexpectedRemainder
	}
	return binary.LittleEndian.Uint64(data[:8]), nil
}

// HashTreeRoot of a basic uint64 is its little-endian bytes, zero-padded to
// 32 (one chunk).
func (Uint64) HashTreeRoot(v uint64) [32]byte {
	var out [32]byte
	binary.LittleEndian.PutUint64(out[:8], v)
	return out
}

// TreeFromValue interns v as a single leaf node.
func (Uint64) TreeFromValue(pool *nodepool.Pool, v uint64) nodepool.NodeId {
	return pool.CreateLeafFromUint(v)
}

// TreeToValue reads a uint64 back out of a leaf node.
func (Uint64) TreeToValue(pool *nodepool.Pool, id nodepool.NodeId) uint64 {
	root := pool.GetRoot(id)
	return binary.LittleEndian.Uint64(root[:8])
}

// ByteVector is the SSZ `Vector[byte, N]` type: a fixed-length byte string.
type ByteVector struct {
	N int
}

// Default returns an N-byte zero vector.
func (b ByteVector) Default() []byte { return make([]byte, b.N) }

// Describe returns a debug label for log/trace fields.
func (b ByteVector) Describe() string { return "Vector[byte, N]" }

// SerializeSize is always N.
func (b ByteVector) SerializeSize([]byte) int { return b.N }

// DeserializeFrom validates the input is exactly N bytes.
func (b ByteVector) DeserializeFrom(data []byte) ([]byte, error) {
	if len(data) != b.N {
		return nil, bserrors.ErrInvalidLength
	}
	out := make([]byte, b.N)
	copy(out, data)
	return out, nil
}

// HashTreeRoot merkleizes the byte string into ceil(N/32) chunks.
func (b ByteVector) HashTreeRoot(value []byte) [32]byte {
	chunks := chunkify(value, b.N)
	return hashutil.Merkleize(chunks, len(chunks))
}

// ByteList is the SSZ `List[byte, N]` type: a variable-length byte string
// bounded by N, with a length mixin at hash time.
type ByteList struct {
	Limit int
}

// Describe returns a debug label for log/trace fields.
func (b ByteList) Describe() string { return "List[byte, N]" }

// DeserializeFrom validates the input does not exceed Limit.
func (b ByteList) DeserializeFrom(data []byte) ([]byte, error) {
	if len(data) > b.Limit {
		return nil, bserrors.ErrInvalidListSize
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// HashTreeRoot merkleizes up to ceil(Limit/32) chunks, then mixes in length.
func (b ByteList) HashTreeRoot(value []byte) [32]byte {
	limitChunks := (b.Limit + 31) / 32
	chunks := chunkify(value, b.Limit)
	root := hashutil.Merkleize(chunks, limitChunks)
	return hashutil.MixInLength(root, uint64(len(value)))
}

func chunkify(data []byte, totalLen int) [][32]byte {
	n := (totalLen + 31) / 32
	out := make([][32]byte, n)
	for i := 0; i < n; i++ {
		start := i * 32
		end := start + 32
		if start >= len(data) {
			continue
		}
		if end > len(data) {
			end = len(data)
		}
		copy(out[i][:], data[start:end])
	}
	return out
}
