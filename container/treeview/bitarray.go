// Package treeview: bit-array views. Chunk layout matches
// github.com/prysmaticlabs/go-bitfield's own byte layout: 256 bits per leaf,
// byte order little-endian within the chunk, bit order LSB-first within the
// byte, so a Bitvector/Bitlist's raw bytes can be copied straight into
// chunks without any bit-shuffling.
package treeview

import (
	"github.com/prysmaticlabs/go-bitfield"

	"github.com/eth2-core/beacon-engine/container/nodepool"
	bserrors "github.com/eth2-core/beacon-engine/errors"
)

const bitsPerChunk = 256

// BitVectorView is the TreeView variant over a fixed-length bit vector
// (spec §4.4 fixed bitvector), e.g. JustificationBits-sized fields.
type BitVectorView struct {
	Base
	bitLength int
}

// NewBitVectorView wraps root as a bit vector of bitLength bits.
func NewBitVectorView(pool *nodepool.Pool, root nodepool.NodeId, bitLength int) *BitVectorView {
	chunkCount := (bitLength + bitsPerChunk - 1) / bitsPerChunk
	return &BitVectorView{
		Base:      NewBase(pool, root, depthForCount(chunkCount)),
		bitLength: bitLength,
	}
}

// NewEmptyBitVectorView builds a fresh all-zero bit vector of bitLength
// bits, rooted at the zero subtree of the matching chunk depth.
func NewEmptyBitVectorView(pool *nodepool.Pool, bitLength int) *BitVectorView {
	chunkCount := (bitLength + bitsPerChunk - 1) / bitsPerChunk
	return NewBitVectorView(pool, pool.ZeroSubtree(depthForCount(chunkCount)), bitLength)
}

// BitLen returns the fixed bit length.
func (v *BitVectorView) BitLen() int { return v.bitLength }

func (v *BitVectorView) bitLocation(i int) (chunk uint64, byteOff, bitOff int) {
	chunk = uint64(i / bitsPerChunk)
	withinChunk := i % bitsPerChunk
	byteOff = withinChunk / 8
	bitOff = withinChunk % 8
	return
}

// BitAt reads bit i.
func (v *BitVectorView) BitAt(i int) bool {
	chunk, byteOff, bitOff := v.bitLocation(i)
	root := v.Pool.GetRoot(v.childNode(chunk))
	return root[byteOff]&(1<<uint(bitOff)) != 0
}

// SetBit writes bit i to val.
func (v *BitVectorView) SetBit(i int, val bool) {
	chunk, byteOff, bitOff := v.bitLocation(i)
	existing := v.Pool.GetRoot(v.childNode(chunk))
	if val {
		existing[byteOff] |= 1 << uint(bitOff)
	} else {
		existing[byteOff] &^= 1 << uint(bitOff)
	}
	leaf := v.Pool.CreateLeaf(existing)
	v.setBasic(chunk, leaf)
}

// AsBitvector64 reads the first 64 bits out as a go-bitfield Bitvector64,
// the representation used by BeaconState.JustificationBits.
func (v *BitVectorView) AsBitvector64() bitfield.Bitvector64 {
	out := make(bitfield.Bitvector64, 8)
	for i := 0; i < len(out) && i*8 < v.bitLength; i++ {
		chunk := uint64(i * 8 / bitsPerChunk)
		root := v.Pool.GetRoot(v.childNode(chunk))
		byteOff := (i * 8) % bitsPerChunk / 8
		out[i] = root[byteOff]
	}
	return out
}

// Commit flushes pending bit writes.
func (v *BitVectorView) Commit() nodepool.NodeId { return v.commit() }

// BitListView is the TreeView variant over a variable-length bitlist (spec
// §4.4 variable bitlist), e.g. attestation AggregationBits.
type BitListView struct {
	Base
	limitBits int
	length    int // number of meaningful bits, excluding the SSZ delimiter bit
}

// NewBitListView wraps root as a bitlist with at most limitBits bits and the
// given current bit length.
func NewBitListView(pool *nodepool.Pool, root nodepool.NodeId, limitBits, length int) *BitListView {
	chunkLimit := (limitBits + bitsPerChunk - 1) / bitsPerChunk
	return &BitListView{
		Base:      NewBase(pool, root, depthForCount(chunkLimit)),
		limitBits: limitBits,
		length:    length,
	}
}

// NewEmptyBitListView builds a fresh empty bitlist with at most limitBits
// bits, rooted at the zero subtree of the matching chunk depth.
func NewEmptyBitListView(pool *nodepool.Pool, limitBits int) *BitListView {
	chunkLimit := (limitBits + bitsPerChunk - 1) / bitsPerChunk
	return NewBitListView(pool, pool.ZeroSubtree(depthForCount(chunkLimit)), limitBits, 0)
}

// Length returns the current bit count.
func (v *BitListView) Length() int { return v.length }

func (v *BitListView) bitLocation(i int) (chunk uint64, byteOff, bitOff int) {
	chunk = uint64(i / bitsPerChunk)
	withinChunk := i % bitsPerChunk
	byteOff = withinChunk / 8
	bitOff = withinChunk % 8
	return
}

// BitAt reads bit i; i must be < Length().
func (v *BitListView) BitAt(i int) (bool, error) {
	if i < 0 || i >= v.length {
		return false, bserrors.ErrIndexOutOfBounds
	}
	chunk, byteOff, bitOff := v.bitLocation(i)
	root := v.Pool.GetRoot(v.childNode(chunk))
	return root[byteOff]&(1<<uint(bitOff)) != 0, nil
}

// SetBit writes bit i; i must be < Length().
func (v *BitListView) SetBit(i int, val bool) error {
	if i < 0 || i >= v.length {
		return bserrors.ErrIndexOutOfBounds
	}
	chunk, byteOff, bitOff := v.bitLocation(i)
	existing := v.Pool.GetRoot(v.childNode(chunk))
	if val {
		existing[byteOff] |= 1 << uint(bitOff)
	} else {
		existing[byteOff] &^= 1 << uint(bitOff)
	}
	leaf := v.Pool.CreateLeaf(existing)
	v.setBasic(chunk, leaf)
	return nil
}

// FromBitlist loads a go-bitfield Bitlist's set bits (stripped of its
// trailing length-delimiter bit) into a fresh BitListView rooted in pool.
func FromBitlist(pool *nodepool.Pool, limitBits int, bl bitfield.Bitlist) *BitListView {
	length := bl.Len()
	chunkCount := (limitBits + bitsPerChunk - 1) / bitsPerChunk
	depth := depthForCount(chunkCount)
	leaves := make([]nodepool.NodeId, 0, chunkCount)
	raw := []byte(bl)
	delimiterByte := int(length / 8)
	delimiterBit := uint(length % 8)
	for c := 0; c < chunkCount; c++ {
		var chunk [32]byte
		start := c * (bitsPerChunk / 8)
		for b := 0; b < bitsPerChunk/8; b++ {
			if start+b < len(raw) {
				v := raw[start+b]
				if start+b == delimiterByte {
					v &^= 1 << delimiterBit
				}
				chunk[b] = v
			}
		}
		leaves = append(leaves, pool.CreateLeaf(chunk))
	}
	root := pool.FillWithContents(leaves, depth)
	for _, leaf := range leaves {
		pool.Unref(leaf)
	}
	return &BitListView{
		Base:      NewBase(pool, root, depth),
		limitBits: limitBits,
		length:    int(length),
	}
}

// ToBitlist serializes the current bits into a go-bitfield Bitlist with its
// SSZ length-delimiter bit set, per spec §6's bitlist wire format.
func (v *BitListView) ToBitlist() bitfield.Bitlist {
	raw := make([]byte, (v.length/8)+1)
	for i := 0; i < v.length; i++ {
		set, _ := v.BitAt(i)
		if set {
			raw[i/8] |= 1 << uint(i%8)
		}
	}
	raw[v.length/8] |= 1 << uint(v.length%8)
	return bitfield.Bitlist(raw)
}

// Commit flushes pending bit writes.
func (v *BitListView) Commit() nodepool.NodeId { return v.commit() }
