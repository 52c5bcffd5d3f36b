// Package treeview implements TreeView (spec §4.4): a mutable handle over a
// pool-backed subtree that amortizes reads with cached child nodes/sub-views
// and batches writes into a single bottom-up rebuild on Commit.
package treeview

import (
	"sort"

	"github.com/eth2-core/beacon-engine/container/nodepool"
)

// Committer is implemented by every TreeView variant: committing a
// sub-view produces its fresh root, which the parent then writes at the
// sub-view's gindex.
type Committer interface {
	Commit() nodepool.NodeId
	Dirty() bool
}

// Base is the shared state every TreeView variant embeds: the cached root,
// cached child node handles, cached child sub-views, and the pending-change
// set described in spec §3 (TreeViewData).
type Base struct {
	Pool *nodepool.Pool
	Root nodepool.NodeId

	// changed maps a gindex of an immediate child to the NodeId it should
	// be replaced with on commit. Composite children route through
	// subViews instead so their own pending edits commit first.
	changed  map[nodepool.Gindex]nodepool.NodeId
	subViews map[nodepool.Gindex]Committer

	// Depth is this view's branching depth: the gindex of child i is
	// FromDepth(Depth, i).
	Depth uint
}

// NewBase wraps an existing root with depth levels of children.
func NewBase(pool *nodepool.Pool, root nodepool.NodeId, depth uint) Base {
	return Base{
		Pool:     pool,
		Root:     root,
		Depth:    depth,
		changed:  make(map[nodepool.Gindex]nodepool.NodeId),
		subViews: make(map[nodepool.Gindex]Committer),
	}
}

func (b *Base) gindex(i uint64) nodepool.Gindex {
	return nodepool.FromDepth(b.Depth, i)
}

// childNode returns the current committed node at index i, consulting a
// pending basic write first.
func (b *Base) childNode(i uint64) nodepool.NodeId {
	g := b.gindex(i)
	if id, ok := b.changed[g]; ok {
		return id
	}
	if sv, ok := b.subViews[g]; ok {
		// A cached sub-view that has not yet been edited still reflects
		// the committed tree; its root is unchanged until Commit.
		if !sv.Dirty() {
			id, err := b.Pool.GetNode(b.Root, g)
			if err == nil {
				return id
			}
		}
	}
	id, err := b.Pool.GetNode(b.Root, g)
	if err != nil {
		return b.Pool.ZeroSubtree(0)
	}
	return id
}

// setBasic marks a leaf index dirty with a directly-supplied node.
func (b *Base) setBasic(i uint64, leaf nodepool.NodeId) {
	g := b.gindex(i)
	if old, ok := b.changed[g]; ok {
		b.Pool.Unref(old)
	}
	b.changed[g] = leaf
	delete(b.subViews, g)
}

// cacheSubView registers (or returns an existing) cached composite child
// view at index i, constructed lazily via newView on first access.
func (b *Base) cacheSubView(i uint64, newView func(nodepool.NodeId) Committer) Committer {
	g := b.gindex(i)
	if sv, ok := b.subViews[g]; ok {
		return sv
	}
	sv := newView(b.childNode(i))
	b.subViews[g] = sv
	return sv
}

// setSubView installs an already-constructed sub-view at index i,
// transferring ownership (spec §4.4: "set(i, view) transfers ownership").
func (b *Base) setSubView(i uint64, v Committer) {
	g := b.gindex(i)
	if old, ok := b.changed[g]; ok {
		b.Pool.Unref(old)
		delete(b.changed, g)
	}
	b.subViews[g] = v
}

// Dirty reports whether any pending edit exists anywhere under this view.
func (b *Base) Dirty() bool {
	if len(b.changed) > 0 {
		return true
	}
	for _, sv := range b.subViews {
		if sv.Dirty() {
			return true
		}
	}
	return false
}

// commit runs the algorithm in spec §4.4: sort pending gindices ascending,
// commit dirty sub-views first, then a single SetNodesGrouped rebuild.
func (b *Base) commit() nodepool.NodeId {
	if len(b.changed) == 0 && len(b.subViews) == 0 {
		return b.Root
	}

	gindices := make([]nodepool.Gindex, 0, len(b.changed)+len(b.subViews))
	nodes := make(map[nodepool.Gindex]nodepool.NodeId, len(b.changed)+len(b.subViews))
	// ownedLeaves are nodes this pending change-set itself created (via
	// SetBasic); once SetNodesGrouped has woven them into the rebuilt tree
	// (which takes its own structural reference), the change-set's own
	// transient hold must be dropped or it leaks. Sub-view roots are not
	// included here: the sub-view object keeps its own permanent hold on
	// its root and continues to own it after this commit.
	ownedLeaves := make([]nodepool.NodeId, 0, len(b.changed))

	for g, id := range b.changed {
		gindices = append(gindices, g)
		nodes[g] = id
		ownedLeaves = append(ownedLeaves, id)
	}
	for g, sv := range b.subViews {
		if !sv.Dirty() {
			continue
		}
		nodes[g] = sv.Commit()
		gindices = append(gindices, g)
	}
	if len(gindices) == 0 {
		b.changed = make(map[nodepool.Gindex]nodepool.NodeId)
		return b.Root
	}
	sort.Slice(gindices, func(i, j int) bool { return gindices[i] < gindices[j] })
	freshNodes := make([]nodepool.NodeId, len(gindices))
	for i, g := range gindices {
		freshNodes[i] = nodes[g]
	}

	newRoot := b.Pool.SetNodesGrouped(b.Root, gindices, freshNodes)
	b.Pool.Unref(b.Root)
	for _, leaf := range ownedLeaves {
		b.Pool.Unref(leaf)
	}
	b.Root = newRoot
	b.changed = make(map[nodepool.Gindex]nodepool.NodeId)
	// keep subViews cached (they now reflect the committed tree at their
	// gindex); their own Dirty() is false immediately after Commit.
	return b.Root
}
