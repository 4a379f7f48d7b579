// Package internal implements the tree normalization pipeline stages and the
// element helpers they share.
//
// Elements are x/net/html element nodes. An element's text is the run of text
// nodes before its first element child and its tail is the run of text node
// siblings that directly follow it, up to the next element sibling.
package internal

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

func WalkNodes(node *html.Node, fn func(*html.Node) bool) {
	if node == nil || !fn(node) {
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		WalkNodes(child, fn)
	}
}

// Elements returns the element descendants of root in document order,
// excluding root itself. The slice is a snapshot, so callers may mutate the
// tree while ranging over it.
func Elements(root *html.Node) []*html.Node {
	var result []*html.Node
	WalkNodes(root, func(n *html.Node) bool {
		if n != root && n.Type == html.ElementNode {
			result = append(result, n)
		}
		return true
	})
	return result
}

// ElementsByTag is Elements filtered to the given tag names.
func ElementsByTag(root *html.Node, tags ...string) []*html.Node {
	var result []*html.Node
	WalkNodes(root, func(n *html.Node) bool {
		if n != root && n.Type == html.ElementNode && containsTag(tags, n.Data) {
			result = append(result, n)
		}
		return true
	})
	return result
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func ElementChildren(n *html.Node) []*html.Node {
	if n == nil {
		return nil
	}
	var result []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			result = append(result, c)
		}
	}
	return result
}

func HasElementChildren(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return true
		}
	}
	return false
}

// NextElementSibling returns the next sibling that is an element, skipping
// text and comment nodes.
func NextElementSibling(n *html.Node) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}

func Text(n *html.Node) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil && c.Type != html.ElementNode; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}

// SetText replaces the leading text run of n. An empty text removes it.
func SetText(n *html.Node, text string) {
	if n == nil {
		return
	}
	for c := n.FirstChild; c != nil && c.Type != html.ElementNode; {
		next := c.NextSibling
		if c.Type == html.TextNode {
			n.RemoveChild(c)
		}
		c = next
	}
	if text == "" {
		return
	}
	node := &html.Node{Type: html.TextNode, Data: text}
	if n.FirstChild != nil {
		n.InsertBefore(node, n.FirstChild)
	} else {
		n.AppendChild(node)
	}
}

func Tail(n *html.Node) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	for s := n.NextSibling; s != nil && s.Type != html.ElementNode; s = s.NextSibling {
		if s.Type == html.TextNode {
			sb.WriteString(s.Data)
		}
	}
	return sb.String()
}

// SetTail replaces the tail run of n. A detached node has no tail, so the
// call is a no-op there.
func SetTail(n *html.Node, tail string) {
	if n == nil || n.Parent == nil {
		return
	}
	parent := n.Parent
	for s := n.NextSibling; s != nil && s.Type != html.ElementNode; {
		next := s.NextSibling
		if s.Type == html.TextNode {
			parent.RemoveChild(s)
		}
		s = next
	}
	if tail == "" {
		return
	}
	parent.InsertBefore(&html.Node{Type: html.TextNode, Data: tail}, n.NextSibling)
}

// TextContent concatenates every text node below n, without separators.
func TextContent(n *html.Node) string {
	var sb strings.Builder
	sb.Grow(builderInitialSize)
	WalkNodes(n, func(node *html.Node) bool {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		return true
	})
	return sb.String()
}

// IterText joins the text nodes below n with sep, skipping blank ones.
func IterText(n *html.Node, sep string) string {
	var sb strings.Builder
	sb.Grow(builderInitialSize)
	WalkNodes(n, func(node *html.Node) bool {
		if node.Type == html.TextNode {
			if text := strings.TrimSpace(node.Data); text != "" {
				if sb.Len() > 0 {
					sb.WriteString(sep)
				}
				sb.WriteString(text)
			}
		}
		return true
	})
	return sb.String()
}

// Trim collapses whitespace runs to single spaces and strips both ends.
func Trim(s string) string {
	if s == "" {
		return ""
	}
	return strings.Join(strings.Fields(s), " ")
}

// TextLength is the rune count of the trimmed text content of n.
func TextLength(n *html.Node) int {
	return utf8.RuneCountInString(Trim(TextContent(n)))
}

// IsStructurallyEmpty reports an element with no element children, no text
// and no tail.
func IsStructurallyEmpty(n *html.Node) bool {
	return !HasElementChildren(n) && Text(n) == "" && Tail(n) == ""
}

// Remove detaches n and its subtree. A node without a parent is left alone.
func Remove(n *html.Node) {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// Unwrap replaces n with its children, keeping their order.
func Unwrap(n *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
	}
	parent.RemoveChild(n)
}

// StripTags unwraps every descendant element of root whose tag is listed.
// The content of stripped elements stays in place.
func StripTags(root *html.Node, tags ...string) int {
	stripped := ElementsByTag(root, tags...)
	for _, n := range stripped {
		Unwrap(n)
	}
	return len(stripped)
}

// IsAttached reports whether n is still reachable from root.
func IsAttached(n, root *html.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur == root {
			return true
		}
	}
	return false
}

func Rename(n *html.Node, tag string) {
	n.Data = tag
	n.DataAtom = 0
}

func GetAttribute(n *html.Node, key string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Namespace == "" && attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

func SetAttribute(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Namespace == "" && n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
