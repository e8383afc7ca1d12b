package physics

const pooledBufferSize = 64

// BBTree is a bounding volume hierarchy over integer handles. Leaves are
// placed with an area-cost insertion heuristic. The tree is rebuilt rather
// than updated: Reset recycles every node into the pool for the next build.
type BBTree struct {
	root        *node
	count       int
	pooledNodes *node
}

type node struct {
	bb     BB
	parent *node
	a, b   *node
	leaf   bool
	index  int
}

// NewBBTree returns an empty tree.
func NewBBTree() *BBTree {
	return &BBTree{}
}

// Count returns the number of leaves.
func (tree *BBTree) Count() int {
	return tree.count
}

// Bounds returns the bounds of the whole tree.
func (tree *BBTree) Bounds() BB {
	if tree.root == nil {
		return EmptyBB()
	}
	return tree.root.bb
}

// Insert adds a leaf for index with bounds bb.
func (tree *BBTree) Insert(index int, bb BB) {
	leaf := tree.nodeFromPool()
	leaf.bb = bb
	leaf.leaf = true
	leaf.index = index
	tree.root = tree.subtreeInsert(tree.root, leaf)
	tree.root.parent = nil
	tree.count++
}

// Reset removes all leaves.
func (tree *BBTree) Reset() {
	if tree.root != nil {
		tree.recycleSubtree(tree.root)
	}
	tree.root = nil
	tree.count = 0
}

// Query calls f for each leaf overlapping bb until f returns false.
func (tree *BBTree) Query(bb BB, f func(index int) bool) {
	if tree.root != nil {
		tree.root.subtreeQuery(bb, f)
	}
}

// Each calls f for each leaf in tree order.
func (tree *BBTree) Each(f func(index int, bb BB)) {
	if tree.root != nil {
		tree.root.each(f)
	}
}

func (tree *BBTree) subtreeInsert(subtree, leaf *node) *node {
	if subtree == nil {
		return leaf
	}
	if subtree.leaf {
		return tree.newNode(leaf, subtree)
	}

	costA := subtree.b.bb.Area() + subtree.a.bb.MergedArea(leaf.bb)
	costB := subtree.a.bb.Area() + subtree.b.bb.MergedArea(leaf.bb)

	if costA == costB {
		costA = subtree.a.bb.Proximity(leaf.bb)
		costB = subtree.b.bb.Proximity(leaf.bb)
	}

	if costB < costA {
		nodeSetB(subtree, tree.subtreeInsert(subtree.b, leaf))
	} else {
		nodeSetA(subtree, tree.subtreeInsert(subtree.a, leaf))
	}

	subtree.bb = subtree.bb.Merge(leaf.bb)
	return subtree
}

func (tree *BBTree) newNode(a, b *node) *node {
	n := tree.nodeFromPool()
	n.leaf = false
	n.bb = a.bb.Merge(b.bb)
	n.parent = nil
	nodeSetA(n, a)
	nodeSetB(n, b)
	return n
}

func (tree *BBTree) nodeFromPool() *node {
	n := tree.pooledNodes
	if n != nil {
		tree.pooledNodes = n.parent
		*n = node{}
		return n
	}

	// Pool is exhausted make more
	for i := 0; i < pooledBufferSize; i++ {
		tree.recycleNode(&node{})
	}
	return &node{}
}

func (tree *BBTree) recycleNode(n *node) {
	n.a, n.b = nil, nil
	n.parent = tree.pooledNodes
	tree.pooledNodes = n
}

func (tree *BBTree) recycleSubtree(n *node) {
	if !n.leaf {
		tree.recycleSubtree(n.a)
		tree.recycleSubtree(n.b)
	}
	tree.recycleNode(n)
}

func nodeSetA(n, value *node) {
	n.a = value
	value.parent = n
}

func nodeSetB(n, value *node) {
	n.b = value
	value.parent = n
}

func (subtree *node) subtreeQuery(bb BB, f func(index int) bool) bool {
	if !subtree.bb.Intersects(bb) {
		return true
	}
	if subtree.leaf {
		return f(subtree.index)
	}
	return subtree.a.subtreeQuery(bb, f) && subtree.b.subtreeQuery(bb, f)
}

func (subtree *node) each(f func(index int, bb BB)) {
	if subtree.leaf {
		f(subtree.index, subtree.bb)
		return
	}
	subtree.a.each(f)
	subtree.b.each(f)
}
