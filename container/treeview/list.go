package treeview

import (
	"github.com/eth2-core/beacon-engine/container/nodepool"
	bserrors "github.com/eth2-core/beacon-engine/errors"
)

// BasicListView is the TreeView variant over a variable-length list of
// packed basic elements (spec §4.4 variable-list basic). Length is tracked
// outside the chunk tree and mixed in only at hash-tree-root time by the
// owning container, matching spec §3's length field on TreeViewData.
type BasicListView struct {
	Base
	codec  ElementCodec
	limit  int // max element count, bounds chunkDepth
	length int
}

// NewBasicListView wraps root as a list with limit max elements and the
// given current length.
func NewBasicListView(pool *nodepool.Pool, root nodepool.NodeId, limit, length int, codec ElementCodec) *BasicListView {
	chunkLimit := (limit + codec.ElementsPerChunk - 1) / codec.ElementsPerChunk
	return &BasicListView{
		Base:   NewBase(pool, root, depthForCount(chunkLimit)),
		codec:  codec,
		limit:  limit,
		length: length,
	}
}

// NewEmptyBasicListView builds a fresh empty list with limit max elements,
// rooted at the zero subtree of the matching chunk depth.
func NewEmptyBasicListView(pool *nodepool.Pool, limit int, codec ElementCodec) *BasicListView {
	chunkLimit := (limit + codec.ElementsPerChunk - 1) / codec.ElementsPerChunk
	return NewBasicListView(pool, pool.ZeroSubtree(depthForCount(chunkLimit)), limit, 0, codec)
}

// Length returns the current element count.
func (v *BasicListView) Length() int { return v.length }

func (v *BasicListView) chunkIndex(i int) (chunk uint64, offset int) {
	return uint64(i / v.codec.ElementsPerChunk), i % v.codec.ElementsPerChunk
}

// Get reads element i; i must be < Length().
func (v *BasicListView) Get(i int) (uint64, error) {
	if i < 0 || i >= v.length {
		return 0, bserrors.ErrIndexOutOfBounds
	}
	chunk, offset := v.chunkIndex(i)
	root := v.Pool.GetRoot(v.childNode(chunk))
	return v.codec.Decode(root, offset), nil
}

// Set writes element i; i must be < Length().
func (v *BasicListView) Set(i int, value uint64) error {
	if i < 0 || i >= v.length {
		return bserrors.ErrIndexOutOfBounds
	}
	chunk, offset := v.chunkIndex(i)
	existing := v.Pool.GetRoot(v.childNode(chunk))
	v.codec.Encode(&existing, offset, value)
	leaf := v.Pool.CreateLeaf(existing)
	v.setBasic(chunk, leaf)
	return nil
}

// Push appends one element, growing Length by one (spec §4.4 push).
func (v *BasicListView) Push(value uint64) error {
	if v.length >= v.limit {
		return bserrors.ErrLengthOverLimit
	}
	i := v.length
	v.length++
	return v.Set(i, value)
}

// SliceTo truncates the list to the first n elements, zeroing the tail
// chunk bits (spec §4.4 sliceTo).
func (v *BasicListView) SliceTo(n int) error {
	if n < 0 || n > v.length {
		return bserrors.ErrIndexOutOfBounds
	}
	if n == v.length {
		return nil
	}
	// zero out the elements beyond n within their shared chunk, then
	// truncate whole chunks beyond that.
	chunkOfN, offsetInN := v.chunkIndex(n)
	if offsetInN != 0 {
		existing := v.Pool.GetRoot(v.childNode(chunkOfN))
		for off := offsetInN; off < v.codec.ElementsPerChunk; off++ {
			v.codec.Encode(&existing, off, 0)
		}
		leaf := v.Pool.CreateLeaf(existing)
		v.setBasic(chunkOfN, leaf)
		chunkOfN++
	}
	v.Root = v.commit()
	v.Root = v.Pool.TruncateAfterIndex(v.Root, v.Depth, chunkOfN-1)
	v.length = n
	return nil
}

// SliceFrom is not supported for basic-element lists: rebasing every packed
// chunk would require re-encoding across chunk boundaries for arbitrary
// offsets, which this representation does not support (see open-question
// decision recorded for unsupported basic sliceFrom).
func (v *BasicListView) SliceFrom(int) error {
	return bserrors.ErrUnsupportedBasicSliceFrom
}

// Commit flushes pending element writes.
func (v *BasicListView) Commit() nodepool.NodeId { return v.commit() }

// CompositeListView is the TreeView variant over a variable-length list of
// composite (sub-container) elements (spec §4.4 variable-list composite).
type CompositeListView struct {
	Base
	newElement func(nodepool.NodeId) Committer
	limit      int
	length     int
}

// NewCompositeListView wraps root as a list with limit max elements and the
// given current length.
func NewCompositeListView(pool *nodepool.Pool, root nodepool.NodeId, limit, length int, newElement func(nodepool.NodeId) Committer) *CompositeListView {
	return &CompositeListView{
		Base:       NewBase(pool, root, depthForCount(limit)),
		newElement: newElement,
		limit:      limit,
		length:     length,
	}
}

// NewEmptyCompositeListView builds a fresh empty list with limit max
// elements, rooted at the zero subtree of the matching depth.
func NewEmptyCompositeListView(pool *nodepool.Pool, limit int, newElement func(nodepool.NodeId) Committer) *CompositeListView {
	return NewCompositeListView(pool, pool.ZeroSubtree(depthForCount(limit)), limit, 0, newElement)
}

// Length returns the current element count.
func (v *CompositeListView) Length() int { return v.length }

// Get returns the cached sub-view for element i; i must be < Length().
func (v *CompositeListView) Get(i int) (Committer, error) {
	if i < 0 || i >= v.length {
		return nil, bserrors.ErrIndexOutOfBounds
	}
	return v.cacheSubView(uint64(i), v.newElement), nil
}

// Set installs a new sub-view at element i; i must be < Length().
func (v *CompositeListView) Set(i int, elem Committer) error {
	if i < 0 || i >= v.length {
		return bserrors.ErrIndexOutOfBounds
	}
	v.setSubView(uint64(i), elem)
	return nil
}

// Append grows the list by one element (spec §4.4 push), installing elem at
// the new final index.
func (v *CompositeListView) Append(elem Committer) error {
	if v.length >= v.limit {
		return bserrors.ErrLengthOverLimit
	}
	i := v.length
	v.length++
	v.setSubView(uint64(i), elem)
	return nil
}

// SliceTo truncates the list to the first n elements.
func (v *CompositeListView) SliceTo(n int) error {
	if n < 0 || n > v.length {
		return bserrors.ErrIndexOutOfBounds
	}
	if n == v.length {
		return nil
	}
	v.Root = v.commit()
	v.Root = v.Pool.TruncateAfterIndex(v.Root, v.Depth, uint64(n)-1)
	for g := range v.subViews {
		if g.Index() >= uint64(n) {
			delete(v.subViews, g)
		}
	}
	v.length = n
	return nil
}

// SliceFrom drops the first n elements, shifting the remainder down to
// index 0 (spec §4.4 sliceFrom composite form — supported here because
// composite elements are addressed whole, unlike packed basic chunks).
func (v *CompositeListView) SliceFrom(n int) error {
	if n < 0 || n > v.length {
		return bserrors.ErrIndexOutOfBounds
	}
	if n == 0 {
		return nil
	}
	v.Root = v.commit()
	remaining := v.length - n
	gindices := make([]nodepool.Gindex, 0, remaining)
	nodes := make([]nodepool.NodeId, 0, remaining)
	for i := 0; i < remaining; i++ {
		src, err := v.Pool.GetNode(v.Root, v.gindex(uint64(n+i)))
		if err != nil {
			src = v.Pool.ZeroSubtree(0)
		}
		v.Pool.Ref(src)
		gindices = append(gindices, v.gindex(uint64(i)))
		nodes = append(nodes, src)
	}
	for i := remaining; i < v.length; i++ {
		gindices = append(gindices, v.gindex(uint64(i)))
		nodes = append(nodes, v.Pool.ZeroSubtree(0))
	}
	newRoot := v.Pool.SetNodesGrouped(v.Root, gindices, nodes)
	for _, id := range nodes {
		v.Pool.Unref(id)
	}
	v.Pool.Unref(v.Root)
	v.Root = newRoot
	v.subViews = make(map[nodepool.Gindex]Committer)
	v.length = remaining
	return nil
}

// Commit flushes every dirty element sub-view.
func (v *CompositeListView) Commit() nodepool.NodeId { return v.commit() }
