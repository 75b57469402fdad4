package sorted_set

// Tree is an AVL tree ordered by compareEntries and augmented with subtree
// size so that indexOf, Get and range iteration all run in O(log n). This
// is the one piece of the package built from scratch rather than sourced
// from a library: an off-the-shelf balanced tree (e.g. google/btree) gives
// ordering but not the rank/index augmentation this package's whole command
// surface is built on, and hand-rolling the augmentation on top of a
// third-party tree's node type is not meaningfully different from owning the
// tree outright.
type Tree struct {
	root *treeNode
}

type treeNode struct {
	entry       *Entry
	left, right *treeNode
	height      int
	size        int
}

func nodeHeight(n *treeNode) int {
	if n == nil {
		return 0
	}
	return n.height
}

func nodeSize(n *treeNode) int {
	if n == nil {
		return 0
	}
	return n.size
}

func newTreeNode(e *Entry) *treeNode {
	return &treeNode{entry: e, height: 1, size: 1}
}

func (n *treeNode) refresh() {
	n.height = 1 + max(nodeHeight(n.left), nodeHeight(n.right))
	n.size = 1 + nodeSize(n.left) + nodeSize(n.right)
}

func balanceFactor(n *treeNode) int {
	if n == nil {
		return 0
	}
	return nodeHeight(n.left) - nodeHeight(n.right)
}

func rotateRight(n *treeNode) *treeNode {
	l := n.left
	n.left = l.right
	l.right = n
	n.refresh()
	l.refresh()
	return l
}

func rotateLeft(n *treeNode) *treeNode {
	r := n.right
	n.right = r.left
	r.left = n
	n.refresh()
	r.refresh()
	return r
}

func rebalance(n *treeNode) *treeNode {
	n.refresh()
	bf := balanceFactor(n)
	if bf > 1 {
		if balanceFactor(n.left) < 0 {
			n.left = rotateLeft(n.left)
		}
		return rotateRight(n)
	}
	if bf < -1 {
		if balanceFactor(n.right) > 0 {
			n.right = rotateRight(n.right)
		}
		return rotateLeft(n)
	}
	return n
}

// Add inserts e, which must not compare equal to any entry already present.
func (t *Tree) Add(e *Entry) {
	t.root = insertNode(t.root, e)
}

func insertNode(n *treeNode, e *Entry) *treeNode {
	if n == nil {
		return newTreeNode(e)
	}
	if compareEntries(e, n.entry) < 0 {
		n.left = insertNode(n.left, e)
	} else {
		n.right = insertNode(n.right, e)
	}
	return rebalance(n)
}

// Remove deletes the entry comparing equal to e, reporting whether one was
// found. e must carry the entry's key (score, member) as it exists in the
// tree right now - for a mutation that changes the score, the caller must
// remove the old entry before mutating it in place.
func (t *Tree) Remove(e *Entry) bool {
	newRoot, removed := removeNode(t.root, e)
	t.root = newRoot
	return removed
}

func removeNode(n *treeNode, e *Entry) (*treeNode, bool) {
	if n == nil {
		return nil, false
	}
	var removed bool
	switch c := compareEntries(e, n.entry); {
	case c < 0:
		n.left, removed = removeNode(n.left, e)
	case c > 0:
		n.right, removed = removeNode(n.right, e)
	default:
		removed = true
		if n.left == nil {
			return n.right, true
		}
		if n.right == nil {
			return n.left, true
		}
		succ := minNode(n.right)
		n.entry = succ.entry
		n.right, _ = removeNode(n.right, succ.entry)
	}
	return rebalance(n), removed
}

func minNode(n *treeNode) *treeNode {
	for n.left != nil {
		n = n.left
	}
	return n
}

// Size returns the number of real entries in the tree.
func (t *Tree) Size() int {
	return nodeSize(t.root)
}

// IndexOf returns the number of entries strictly less than e. For a probe
// entry this is exactly the insertion position a real entry with e's key
// would occupy, which is how every range command turns a boundary
// description into a pair of indices.
func (t *Tree) IndexOf(e *Entry) int {
	idx := 0
	n := t.root
	for n != nil {
		switch c := compareEntries(e, n.entry); {
		case c < 0:
			n = n.left
		case c == 0:
			return idx + nodeSize(n.left)
		default:
			idx += nodeSize(n.left) + 1
			n = n.right
		}
	}
	return idx
}

// Get returns the entry at zero-based rank i in ascending order, or nil if
// i is out of bounds.
func (t *Tree) Get(i int) *Entry {
	if i < 0 || i >= t.Size() {
		return nil
	}
	n := t.root
	for n != nil {
		ls := nodeSize(n.left)
		switch {
		case i < ls:
			n = n.left
		case i == ls:
			return n.entry
		default:
			i -= ls + 1
			n = n.right
		}
	}
	return nil
}

// InOrder returns every entry in ascending order. It is used by
// serialization and by SortedSet.All; range commands use Get/GetIndexRange
// instead so they never pay for a full traversal.
func (t *Tree) InOrder() []*Entry {
	out := make([]*Entry, 0, t.Size())
	var walk func(n *treeNode)
	walk = func(n *treeNode) {
		if n == nil {
			return
		}
		walk(n.left)
		out = append(out, n.entry)
		walk(n.right)
	}
	walk(t.root)
	return out
}
