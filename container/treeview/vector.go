package treeview

import "github.com/eth2-core/beacon-engine/container/nodepool"

// ElementCodec packs/unpacks a basic SSZ element to/from its position within
// a 32-byte chunk. elementsPerChunk is how many elements share one leaf
// (spec §4.4: "ensure_chunk_prefetch bulk-loads all chunk leaves").
type ElementCodec struct {
	ElementsPerChunk int
	Encode           func(chunk *[32]byte, offset int, value uint64)
	Decode           func(chunk [32]byte, offset int) uint64
}

// Uint64Codec packs 4 little-endian uint64 values per 32-byte chunk.
var Uint64Codec = ElementCodec{
	ElementsPerChunk: 4,
	Encode: func(chunk *[32]byte, offset int, value uint64) {
		for i := 0; i < 8; i++ {
			chunk[offset*8+i] = byte(value >> (8 * uint(i)))
		}
	},
	Decode: func(chunk [32]byte, offset int) uint64 {
		var v uint64
		for i := 0; i < 8; i++ {
			v |= uint64(chunk[offset*8+i]) << (8 * uint(i))
		}
		return v
	},
}

// Uint16Codec packs 16 little-endian uint16 values per 32-byte chunk, used
// for effective-balance increments.
var Uint16Codec = ElementCodec{
	ElementsPerChunk: 16,
	Encode: func(chunk *[32]byte, offset int, value uint64) {
		chunk[offset*2] = byte(value)
		chunk[offset*2+1] = byte(value >> 8)
	},
	Decode: func(chunk [32]byte, offset int) uint64 {
		return uint64(chunk[offset*2]) | uint64(chunk[offset*2+1])<<8
	},
}

// BasicVectorView is the TreeView variant over a fixed-length vector of
// packed basic elements (spec §4.4 fixed-vector basic).
type BasicVectorView struct {
	Base
	codec  ElementCodec
	length int
	// chunkDepth is the tree depth addressing one chunk; it equals
	// Base.Depth, since each child of this view is one chunk.
	chunkDepth uint
}

// NewBasicVectorView wraps root as a vector of length elements, chunkDepth
// deep (i.e. ceil(length/codec.ElementsPerChunk) rounded up to a power of
// two determines chunkDepth).
func NewBasicVectorView(pool *nodepool.Pool, root nodepool.NodeId, length int, codec ElementCodec) *BasicVectorView {
	chunkCount := (length + codec.ElementsPerChunk - 1) / codec.ElementsPerChunk
	depth := depthForCount(chunkCount)
	return &BasicVectorView{
		Base:       NewBase(pool, root, depth),
		codec:      codec,
		length:     length,
		chunkDepth: depth,
	}
}

// NewEmptyBasicVectorView builds a fresh all-zero vector of length elements,
// rooted at the zero subtree of the matching chunk depth.
func NewEmptyBasicVectorView(pool *nodepool.Pool, length int, codec ElementCodec) *BasicVectorView {
	chunkCount := (length + codec.ElementsPerChunk - 1) / codec.ElementsPerChunk
	depth := depthForCount(chunkCount)
	return NewBasicVectorView(pool, pool.ZeroSubtree(depth), length, codec)
}

func (v *BasicVectorView) chunkIndex(i int) (chunk uint64, offset int) {
	return uint64(i / v.codec.ElementsPerChunk), i % v.codec.ElementsPerChunk
}

// Get reads element i.
func (v *BasicVectorView) Get(i int) uint64 {
	chunk, offset := v.chunkIndex(i)
	id := v.childNode(chunk)
	root := v.Pool.GetRoot(id)
	return v.codec.Decode(root, offset)
}

// GetAll decodes every element into the caller-supplied out (spec §4.4
// get_all), stopping at the shorter of the vector and out.
func (v *BasicVectorView) GetAll(out []uint64) {
	for i := 0; i < v.length && i < len(out); i++ {
		out[i] = v.Get(i)
	}
}

// Set writes element i.
func (v *BasicVectorView) Set(i int, value uint64) {
	chunk, offset := v.chunkIndex(i)
	existing := v.Pool.GetRoot(v.childNode(chunk))
	v.codec.Encode(&existing, offset, value)
	leaf := v.Pool.CreateLeaf(existing)
	v.setBasic(chunk, leaf)
}

// EnsureChunkPrefetch reads every chunk node at the chunk depth in one pass.
// The nodes it reads are not retained: subsequent Get calls still walk the
// tree from the root.
func (v *BasicVectorView) EnsureChunkPrefetch() {
	chunkCount := uint64(1) << v.chunkDepth
	out := make([]nodepool.NodeId, chunkCount)
	v.Pool.GetNodesAtDepth(v.Root, v.chunkDepth, 0, out)
	for i, id := range out {
		g := v.gindex(uint64(i))
		if _, ok := v.changed[g]; !ok {
			v.cachedReads(g, id)
		}
	}
}

// cachedReads is a no-op hook standing where a children_nodes cache would
// be stored; nothing is cached, and each read costs one O(depth)
// Pool.GetNode walk.
func (v *BasicVectorView) cachedReads(nodepool.Gindex, nodepool.NodeId) {}

// Commit flushes pending element writes.
func (v *BasicVectorView) Commit() nodepool.NodeId { return v.commit() }

// CompositeVectorView is the TreeView variant over a fixed-length vector of
// composite (sub-container) elements (spec §4.4 fixed-vector composite).
type CompositeVectorView struct {
	Base
	newElement func(nodepool.NodeId) Committer
}

// NewCompositeVectorView wraps root as a vector of length composite
// elements.
func NewCompositeVectorView(pool *nodepool.Pool, root nodepool.NodeId, length int, newElement func(nodepool.NodeId) Committer) *CompositeVectorView {
	return &CompositeVectorView{
		Base:       NewBase(pool, root, depthForCount(length)),
		newElement: newElement,
	}
}

// NewEmptyCompositeVectorView builds a fresh all-zero vector of length
// composite elements, rooted at the zero subtree of the matching depth.
func NewEmptyCompositeVectorView(pool *nodepool.Pool, length int, newElement func(nodepool.NodeId) Committer) *CompositeVectorView {
	return NewCompositeVectorView(pool, pool.ZeroSubtree(depthForCount(length)), length, newElement)
}

// Get returns the cached sub-view for element i, constructing it lazily.
func (v *CompositeVectorView) Get(i int) Committer {
	return v.cacheSubView(uint64(i), v.newElement)
}

// Set installs a new sub-view at element i, transferring ownership.
func (v *CompositeVectorView) Set(i int, elem Committer) {
	v.setSubView(uint64(i), elem)
}

// Commit flushes every dirty element sub-view.
func (v *CompositeVectorView) Commit() nodepool.NodeId { return v.commit() }
