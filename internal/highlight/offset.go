package highlight

// Node is the minimal tree capability the offset mapper needs. It is
// deliberately abstract so the walk is testable against any tree shape;
// adapters exist for parsed HTML (HTMLNode) and for hand-built trees
// (TreeNode). Implementations must be comparable so identity checks work
// across interface values.
type Node interface {
	// Parent returns the parent node, or nil at the tree root.
	Parent() Node
	// Children returns the node's direct children in document order.
	Children() []Node
	// IsText reports whether the node is a text leaf.
	IsText() bool
	// TextLen returns the rune length of the node's flattened text
	// (its own text for a leaf, the subtree total otherwise).
	TextLen() int
}

// GlobalOffset computes the number of characters of text that precede the
// point (node, localOffset) when root's entire subtree is flattened to
// plain text in document order.
//
// localOffset is a character index when node is a text leaf and a child
// index otherwise. When node is root itself, localOffset is always treated
// as a child index.
//
// It returns -1 when node is neither root nor one of its descendants.
// Failure is an expected outcome (a selection anchored outside the tracked
// container), not an exception: callers must treat -1 as "no highlight
// here".
func GlobalOffset(root, node Node, localOffset int) int {
	if root == nil || node == nil || localOffset < 0 {
		return -1
	}
	if node == root {
		return childPrefixLen(root, localOffset)
	}

	var total int
	if node.IsText() {
		total = localOffset
	} else {
		total = childPrefixLen(node, localOffset)
	}

	// Walk the ancestor chain up to (not including) root, adding the text
	// length of every previous sibling at each level. Exiting the tree
	// without passing through root signals failure.
	current := node
	for {
		parent := current.Parent()
		if parent == nil {
			return -1
		}
		for _, sibling := range parent.Children() {
			if sibling == current {
				break
			}
			total += sibling.TextLen()
		}
		if parent == root {
			return total
		}
		current = parent
	}
}

// childPrefixLen sums the text lengths of n's children with index < count.
func childPrefixLen(n Node, count int) int {
	children := n.Children()
	if count > len(children) {
		count = len(children)
	}
	total := 0
	for i := 0; i < count; i++ {
		total += children[i].TextLen()
	}
	return total
}
