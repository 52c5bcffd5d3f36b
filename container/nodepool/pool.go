// Package nodepool implements the persistent Merkle tree storage described
// in spec §4.2: an arena of refcounted branch/leaf nodes addressed by a
// 32-bit NodeId, with copy-on-write mutation. A Pool is single-threaded and
// owned by exactly one CachedBeaconState graph (spec §5).
package nodepool

import (
	"github.com/eth2-core/beacon-engine/crypto/hashutil"
	bserrors "github.com/eth2-core/beacon-engine/errors"
)

// NodeId is a 32-bit handle into a Pool's arena. The zero value never
// refers to a live node.
type NodeId uint32

type nodeKind uint8

const (
	kindLeaf nodeKind = iota
	kindBranch
)

type node struct {
	kind     nodeKind
	refcount uint32

	// leaf
	payload [32]byte

	// branch
	left, right NodeId
	rootSet     bool
	root        [32]byte
}

// Pool is the arena backing every TreeView in one state graph. Operations
// are single-threaded (spec §5); there is no internal locking.
type Pool struct {
	nodes    []node
	freeList []NodeId
	zeroLeaf map[uint]NodeId // depth -> interned zero-subtree root node id
}

// New returns an empty pool, with the zero-subtree at every depth interned
// per invariant I2.
func New() *Pool {
	p := &Pool{
		nodes:    make([]node, 1, 64), // index 0 is reserved/unused
		zeroLeaf: make(map[uint]NodeId),
	}
	p.internZeroSubtrees()
	return p
}

// Preheat reserves n entries of arena capacity up front.
func (p *Pool) Preheat(n int) {
	if cap(p.nodes) < n {
		grown := make([]node, len(p.nodes), n)
		copy(grown, p.nodes)
		p.nodes = grown
	}
}

// Capacity returns the arena's current capacity. Capacity may only grow.
func (p *Pool) Capacity() int {
	return cap(p.nodes)
}

// Stats reports nodes_in_use (live refcount > 0) and capacity, the
// observables the pool-discipline properties PL1/PL2 assert against.
type Stats struct {
	NodesInUse int
	Capacity   int
}

func (p *Pool) Stats() Stats {
	inUse := 0
	for i := 1; i < len(p.nodes); i++ {
		if p.nodes[i].refcount > 0 {
			inUse++
		}
	}
	return Stats{NodesInUse: inUse, Capacity: cap(p.nodes)}
}

// Snapshot captures the pool's arena length and free-list length, for tests
// that assert no net allocation leaked out of a failed deserialization path
// (spec §8's pool-discipline properties).
type Snapshot struct {
	nodeLen int
	freeLen int
}

// Snapshot returns the current arena/free-list sizes.
func (p *Pool) Snapshot() Snapshot {
	return Snapshot{nodeLen: len(p.nodes), freeLen: len(p.freeList)}
}

// Restore truncates the arena and free list back to a prior Snapshot. Only
// valid when every node allocated since the snapshot has already been fully
// unreffed back to the free list; it is a test-only convenience, not a
// general rollback mechanism (an in-use node above the snapshot boundary
// would leave dangling references in any TreeView still holding it).
func (p *Pool) Restore(snap Snapshot) {
	p.nodes = p.nodes[:snap.nodeLen]
	p.freeList = p.freeList[:snap.freeLen]
}

func (p *Pool) alloc() NodeId {
	if n := len(p.freeList); n > 0 {
		id := p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		return id
	}
	p.nodes = append(p.nodes, node{})
	return NodeId(len(p.nodes) - 1)
}

// CreateLeaf interns a new leaf node with refcount 1.
func (p *Pool) CreateLeaf(payload [32]byte) NodeId {
	id := p.alloc()
	p.nodes[id] = node{kind: kindLeaf, refcount: 1, payload: payload}
	return id
}

// CreateLeafFromUint creates a length-chunk leaf: the little-endian
// encoding of x in the first 8 bytes, zero-padded to 32.
func (p *Pool) CreateLeafFromUint(x uint64) NodeId {
	var payload [32]byte
	for i := 0; i < 8; i++ {
		payload[i] = byte(x >> (8 * uint(i)))
	}
	return p.CreateLeaf(payload)
}

// CreateBranch creates a new branch with refcount 1. The root is not
// computed eagerly; it is memoized lazily on the first GetRoot call.
func (p *Pool) CreateBranch(left, right NodeId) NodeId {
	p.ref(left)
	p.ref(right)
	id := p.alloc()
	p.nodes[id] = node{kind: kindBranch, refcount: 1, left: left, right: right}
	return id
}

func (p *Pool) ref(id NodeId) {
	if id == 0 {
		return
	}
	p.nodes[id].refcount++
}

// Ref increments the refcount of id. Exposed so TreeViews can take explicit
// ownership of a root handed back from a mutating call.
func (p *Pool) Ref(id NodeId) {
	p.ref(id)
}

// Unref decrements the refcount of id; reaching zero frees the node and
// recursively unrefs its children (branch nodes only).
func (p *Pool) Unref(id NodeId) {
	// ids 1..MaxDepth are the interned zero subtrees New creates first;
	// they are never freed (invariant I2).
	if id == 0 || id <= NodeId(hashutil.MaxDepth) {
		return
	}
	n := &p.nodes[id]
	if n.refcount == 0 {
		return
	}
	n.refcount--
	if n.refcount > 0 {
		return
	}
	if n.kind == kindBranch {
		left, right := n.left, n.right
		*n = node{}
		p.freeList = append(p.freeList, id)
		p.Unref(left)
		p.Unref(right)
		return
	}
	*n = node{}
	p.freeList = append(p.freeList, id)
}

// GetRoot returns the 32-byte root of id, computing and caching it on a
// branch node's first access.
func (p *Pool) GetRoot(id NodeId) [32]byte {
	n := &p.nodes[id]
	if n.kind == kindLeaf {
		return n.payload
	}
	if !n.rootSet {
		n.root = hashutil.HashTwo(p.GetRoot(n.left), p.GetRoot(n.right))
		n.rootSet = true
	}
	return n.root
}

// IsLeaf reports whether id refers to a leaf node.
func (p *Pool) IsLeaf(id NodeId) bool {
	return p.nodes[id].kind == kindLeaf
}

// Children returns the left and right child of a branch node.
func (p *Pool) Children(id NodeId) (NodeId, NodeId) {
	n := &p.nodes[id]
	return n.left, n.right
}

// internZeroSubtrees precomputes and interns the zero-subtree node at every
// depth up to hashutil.MaxDepth, satisfying invariant I2: these nodes take
// ids 1..MaxDepth and are never freed, because Unref ignores those ids.
func (p *Pool) internZeroSubtrees() {
	leaf := p.CreateLeaf([32]byte{})
	p.zeroLeaf[0] = leaf
	for d := uint(1); d < hashutil.MaxDepth; d++ {
		child := p.zeroLeaf[d-1]
		p.zeroLeaf[d] = p.CreateBranch(child, child)
	}
}

// ZeroSubtree returns the interned zero-subtree node id at the given depth.
func (p *Pool) ZeroSubtree(depth uint) NodeId {
	if depth >= hashutil.MaxDepth {
		depth = hashutil.MaxDepth - 1
	}
	return p.zeroLeaf[depth]
}

// GetNode walks from root to the node addressed by gindex.
func (p *Pool) GetNode(root NodeId, gindex Gindex) (NodeId, error) {
	path := pathFromRoot(gindex)
	cur := root
	for _, goRight := range path {
		if p.IsLeaf(cur) {
			return 0, bserrors.ErrChildNotFound
		}
		left, right := p.Children(cur)
		if goRight {
			cur = right
		} else {
			cur = left
		}
	}
	return cur, nil
}

// pathFromRoot expands a gindex into a root-to-node sequence of
// left(false)/right(true) turns.
func pathFromRoot(g Gindex) []bool {
	depth := g.Depth()
	path := make([]bool, depth)
	v := uint64(g)
	for i := int(depth) - 1; i >= 0; i-- {
		path[i] = v&1 == 1
		v >>= 1
	}
	return path
}

// SetNode returns a new root with the node at gindex replaced by leaf,
// sharing every unmodified descendant (invariant I3).
func (p *Pool) SetNode(root NodeId, gindex Gindex, leaf NodeId) NodeId {
	return p.setNodeRec(root, pathFromRoot(gindex), leaf)
}

func (p *Pool) setNodeRec(cur NodeId, path []bool, leaf NodeId) NodeId {
	if len(path) == 0 {
		p.ref(leaf)
		return leaf
	}
	left, right := p.Children(cur)
	if path[0] {
		newRight := p.setNodeRec(right, path[1:], leaf)
		nb := p.CreateBranch(left, newRight)
		p.Unref(newRight)
		return nb
	}
	newLeft := p.setNodeRec(left, path[1:], leaf)
	nb := p.CreateBranch(newLeft, right)
	p.Unref(newLeft)
	return nb
}

// SetNodesGrouped applies a batch of (gindex, node) writes with a single
// bottom-up rebuild of only the affected branches. gindices must be sorted
// ascending (spec §4.4 commit step 1); duplicate gindices take the later
// writer.
func (p *Pool) SetNodesGrouped(root NodeId, gindices []Gindex, nodes []NodeId) NodeId {
	if len(gindices) == 0 {
		return root
	}
	type write struct {
		path []bool
		node NodeId
	}
	writes := make([]write, len(gindices))
	for i, g := range gindices {
		writes[i] = write{path: pathFromRoot(g), node: nodes[i]}
	}
	return p.setNodesRec(root, writes)
}

func (p *Pool) setNodesRec(cur NodeId, writes []struct {
	path []bool
	node NodeId
}) NodeId {
	// A write that terminates here addresses this node directly and is the
	// authoritative replacement, even if other writes touch descendants;
	// among several such writes the later one wins.
	for i := len(writes) - 1; i >= 0; i-- {
		if len(writes[i].path) == 0 {
			p.ref(writes[i].node)
			return writes[i].node
		}
	}
	var leftWrites, rightWrites []struct {
		path []bool
		node NodeId
	}
	for _, w := range writes {
		if w.path[0] {
			rightWrites = append(rightWrites, struct {
				path []bool
				node NodeId
			}{w.path[1:], w.node})
		} else {
			leftWrites = append(leftWrites, struct {
				path []bool
				node NodeId
			}{w.path[1:], w.node})
		}
	}
	left, right := p.Children(cur)
	newLeft, newRight := left, right
	if len(leftWrites) > 0 {
		newLeft = p.setNodesRec(left, leftWrites)
	}
	if len(rightWrites) > 0 {
		newRight = p.setNodesRec(right, rightWrites)
	}
	nb := p.CreateBranch(newLeft, newRight)
	if len(leftWrites) > 0 {
		p.Unref(newLeft)
	}
	if len(rightWrites) > 0 {
		p.Unref(newRight)
	}
	return nb
}

// GetNodesAtDepth bulk-reads every node at the given depth starting at
// start_index, enabling chunk prefetch for vector/list views.
func (p *Pool) GetNodesAtDepth(root NodeId, depth uint, startIndex uint64, out []NodeId) {
	for i := range out {
		g := FromDepth(depth, startIndex+uint64(i))
		id, err := p.GetNode(root, g)
		if err != nil {
			out[i] = p.ZeroSubtree(0)
			continue
		}
		out[i] = id
	}
}

// TruncateAfterIndex returns a new subtree where every leaf at depth with
// position > index is replaced by the zero leaf. Used by list sliceTo.
func (p *Pool) TruncateAfterIndex(root NodeId, depth uint, index uint64) NodeId {
	total := uint64(1) << depth
	var gindices []Gindex
	var leaves []NodeId
	for i := index + 1; i < total; i++ {
		gindices = append(gindices, FromDepth(depth, i))
		leaves = append(leaves, p.ZeroSubtree(0))
	}
	if len(gindices) == 0 {
		return root
	}
	SortAsc(gindices)
	// SortAsc may have reordered gindices relative to leaves (all leaves
	// here are identical zero nodes, so reordering is safe).
	return p.SetNodesGrouped(root, gindices, leaves)
}

// FillWithContents builds a subtree bottom-up from leaves, padding the
// bottom layer out to 2^depth slots with the zero leaf ZeroSubtree(0);
// contents beyond 2^depth are dropped.
func (p *Pool) FillWithContents(contents []NodeId, depth uint) NodeId {
	total := uint64(1) << depth
	if uint64(len(contents)) > total {
		contents = contents[:total]
	}
	layer := make([]NodeId, total)
	for i := range layer {
		if uint64(i) < uint64(len(contents)) {
			layer[i] = contents[i]
			p.ref(layer[i])
		} else {
			layer[i] = p.ZeroSubtree(0)
			p.ref(layer[i])
		}
	}
	for d := depth; d > 0; d-- {
		next := make([]NodeId, len(layer)/2)
		for i := range next {
			next[i] = p.CreateBranch(layer[2*i], layer[2*i+1])
			p.Unref(layer[2*i])
			p.Unref(layer[2*i+1])
		}
		layer = next
	}
	return layer[0]
}
