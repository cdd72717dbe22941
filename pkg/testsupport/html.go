package testsupport

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

// Node wraps a parsed HTML node with small query helpers for structural
// assertions on renderer output.
type Node struct {
	*html.Node
}

// MustParseHTML parses a fragment or document. Fragments are wrapped by the
// parser in html/head/body, which queries below ignore.
func MustParseHTML(t *testing.T, markup []byte) Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(string(markup)))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return Node{doc}
}

// ByID returns the first element with the given id attribute.
func (n Node) ByID(id string) (Node, bool) {
	found := n.find(func(node *html.Node) bool {
		value, ok := attr(node, "id")
		return ok && value == id
	}, 1)
	if len(found) == 0 {
		return Node{}, false
	}
	return found[0], true
}

// All returns every element with the given tag name.
func (n Node) All(tag string) []Node {
	return n.find(func(node *html.Node) bool {
		return node.Data == tag
	}, -1)
}

// WithAttr returns every element carrying attribute key with the given value.
func (n Node) WithAttr(key, value string) []Node {
	return n.find(func(node *html.Node) bool {
		got, ok := attr(node, key)
		return ok && got == value
	}, -1)
}

// Attr returns an attribute value.
func (n Node) Attr(key string) (string, bool) {
	if n.Node == nil {
		return "", false
	}
	return attr(n.Node, key)
}

// Text returns the concatenated, whitespace-collapsed text content.
func (n Node) Text() string {
	if n.Node == nil {
		return ""
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
			b.WriteByte(' ')
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n.Node)
	return strings.Join(strings.Fields(b.String()), " ")
}

func (n Node) find(match func(*html.Node) bool, limit int) []Node {
	var out []Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if limit > 0 && len(out) >= limit {
			return
		}
		if node.Type == html.ElementNode && match(node) {
			out = append(out, Node{node})
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	if n.Node != nil {
		walk(n.Node)
	}
	return out
}

func attr(node *html.Node, key string) (string, bool) {
	for _, a := range node.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
