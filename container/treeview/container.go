package treeview

import "github.com/eth2-core/beacon-engine/container/nodepool"

// ContainerView is the TreeView variant over a fixed-field container (spec
// §4.4). Field positions are stable: index i always addresses gindex
// FromDepth(depth, i), so upgrading a fork only ever appends fields at the
// end without disturbing existing gindices (spec §3, BeaconState).
type ContainerView struct {
	Base
	fieldCount int
}

// NewContainerView wraps root as a container with fieldCount fields. root
// must already be a node at depthForCount(fieldCount); use NewEmptyContainer
// to build a container from scratch.
func NewContainerView(pool *nodepool.Pool, root nodepool.NodeId, fieldCount int) *ContainerView {
	return &ContainerView{
		Base:       NewBase(pool, root, depthForCount(fieldCount)),
		fieldCount: fieldCount,
	}
}

// NewEmptyContainer builds a fresh all-zero container with fieldCount
// fields, rooted at the zero subtree of the matching depth (ZeroSubtree(0)
// is a leaf and only correct for a one-field container; every other field
// count needs its own depth's zero subtree).
func NewEmptyContainer(pool *nodepool.Pool, fieldCount int) *ContainerView {
	depth := depthForCount(fieldCount)
	return NewContainerView(pool, pool.ZeroSubtree(depth), fieldCount)
}

func depthForCount(n int) uint {
	d := uint(0)
	v := 1
	for v < n {
		v <<= 1
		d++
	}
	return d
}

// GetBasic reads the 32-byte leaf at field i.
func (c *ContainerView) GetBasic(i int) [32]byte {
	id := c.childNode(uint64(i))
	return c.Pool.GetRoot(id)
}

// SetBasic writes a 32-byte leaf directly at field i. The new leaf is held
// with the pending change-set's ownership until Commit weaves it into the
// tree and releases that temporary hold (see Base.commit).
func (c *ContainerView) SetBasic(i int, value [32]byte) {
	leaf := c.Pool.CreateLeaf(value)
	c.setBasic(uint64(i), leaf)
}

// GetOrCreateSubView returns the cached composite sub-view at field i,
// constructing it with newView on first access.
func (c *ContainerView) GetOrCreateSubView(i int, newView func(nodepool.NodeId) Committer) Committer {
	return c.cacheSubView(uint64(i), newView)
}

// SetSubView installs a new composite sub-view at field i, transferring
// ownership of v.
func (c *ContainerView) SetSubView(i int, v Committer) {
	c.setSubView(uint64(i), v)
}

// Commit runs the two-phase commit algorithm and returns the fresh root.
func (c *ContainerView) Commit() nodepool.NodeId {
	return c.commit()
}
