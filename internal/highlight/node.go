package highlight

import "unicode/utf8"

// TreeNode is a minimal in-memory Node implementation used to build content
// trees by hand (tests, previews). Text leaves carry text; element nodes
// carry children.
type TreeNode struct {
	parent   *TreeNode
	children []*TreeNode
	text     string
	isText   bool
}

// NewTextNode returns a text leaf.
func NewTextNode(text string) *TreeNode {
	return &TreeNode{text: text, isText: true}
}

// NewElementNode returns an element node owning the given children.
func NewElementNode(children ...*TreeNode) *TreeNode {
	n := &TreeNode{children: children}
	for _, c := range children {
		c.parent = n
	}
	return n
}

func (n *TreeNode) Parent() Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *TreeNode) Children() []Node {
	out := make([]Node, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

func (n *TreeNode) IsText() bool { return n.isText }

func (n *TreeNode) TextLen() int {
	if n.isText {
		return utf8.RuneCountInString(n.text)
	}
	total := 0
	for _, c := range n.children {
		total += c.TextLen()
	}
	return total
}

// Text returns the node's flattened text in document order.
func (n *TreeNode) Text() string {
	if n.isText {
		return n.text
	}
	var out string
	for _, c := range n.children {
		out += c.Text()
	}
	return out
}
