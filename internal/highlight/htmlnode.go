package highlight

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// HTMLNode adapts a parsed golang.org/x/net/html tree to the Node
// interface, so offsets can be computed against real article markup. The
// zero-size wrapper is comparable: two HTMLNodes are equal iff they wrap
// the same underlying node.
type HTMLNode struct {
	n *html.Node
}

// WrapHTML adapts an already-parsed node.
func WrapHTML(n *html.Node) HTMLNode {
	return HTMLNode{n: n}
}

// ParseHTMLFragment parses markup and returns the body element as the
// coordinate-space root for offset mapping.
func ParseHTMLFragment(markup string) (HTMLNode, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return HTMLNode{}, err
	}
	if body := findElement(doc, "body"); body != nil {
		return HTMLNode{n: body}, nil
	}
	return HTMLNode{n: doc}, nil
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func (h HTMLNode) Parent() Node {
	if h.n == nil || h.n.Parent == nil {
		return nil
	}
	return HTMLNode{n: h.n.Parent}
}

func (h HTMLNode) Children() []Node {
	if h.n == nil {
		return nil
	}
	var out []Node
	for c := h.n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, HTMLNode{n: c})
	}
	return out
}

func (h HTMLNode) IsText() bool {
	return h.n != nil && h.n.Type == html.TextNode
}

func (h HTMLNode) TextLen() int {
	return textLen(h.n)
}

func textLen(n *html.Node) int {
	if n == nil {
		return 0
	}
	if n.Type == html.TextNode {
		return utf8.RuneCountInString(n.Data)
	}
	total := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		total += textLen(c)
	}
	return total
}

// Flatten returns the subtree's text content in document order. This is the
// plain-text coordinate space all character offsets refer to.
func (h HTMLNode) Flatten() string {
	var b strings.Builder
	flatten(h.n, &b)
	return b.String()
}

func flatten(n *html.Node, b *strings.Builder) {
	if n == nil {
		return
	}
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		flatten(c, b)
	}
}
