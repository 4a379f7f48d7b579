package internal

import (
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
)

// Elements removed together with their content. Their tail text survives.
var tagsToRemove = []string{
	"aside", "embed", "footer", "form", "head", "iframe", "menu", "object", "script",
	"applet", "audio", "canvas", "figure", "map", "picture", "svg", "video",
	"area", "blink", "button", "datalist", "dialog",
	"frame", "frameset", "fieldset", "link", "input", "ins", "label", "legend",
	"marquee", "math", "menuitem", "nav", "noscript", "optgroup", "option",
	"output", "param", "progress", "rp", "rt", "rtc", "select", "source",
	"style", "track", "textarea", "time", "use",
}

// Wrappers removed while keeping their content.
var tagsToStrip = []string{
	"abbr", "acronym", "address", "bdi", "bdo", "big", "cite", "data", "dfn",
	"font", "hgroup", "img", "mark", "meta", "ruby", "small", "tbody",
	"template", "tfoot", "thead",
}

var tableTags = []string{"table", "td", "th", "tr"}

// Elements dropped by PruneEmpty when they end up with no content at all.
var cutEmptyElements = map[string]bool{
	"article": true, "b": true, "blockquote": true, "dd": true, "div": true, "dt": true,
	"em": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"i": true, "li": true, "main": true, "p": true, "pre": true, "q": true,
	"section": true, "span": true, "strong": true,
}

// CleanTree removes the always-unwanted elements and comments from root,
// strips presentational wrappers and prunes the elements left empty. Tables
// go too when includeTables is false; images and their figure wrappers stay
// when includeImages is true.
func CleanTree(root *html.Node, includeTables, includeImages bool) *html.Node {
	if root == nil {
		return nil
	}
	removeList := append([]string(nil), tagsToRemove...)
	stripList := append([]string(nil), tagsToStrip...)
	if !includeTables {
		removeList = append(removeList, tableTags...)
	}
	if includeImages {
		removeList = without(removeList, "figure", "picture", "source")
		stripList = without(stripList, "img")
	}

	removed := removeComments(root)
	for _, n := range ElementsByTag(root, removeList...) {
		if n.Data == "head" && !isDocumentHead(n) {
			continue
		}
		Remove(n)
		removed++
	}
	stripped := StripTags(root, stripList...)
	pruned := PruneEmpty(root)
	log.Debug().Int("removed", removed).Int("stripped", stripped).Int("pruned", pruned).Msg("cleaned tree")
	return root
}

// PruneEmpty removes elements of the cut-empty set that have no child nodes
// at all. It works bottom-up, so a parent emptied by the removal of its last
// child goes as well. It returns the number of removed elements.
func PruneEmpty(root *html.Node) int {
	if root == nil {
		return 0
	}
	removed := 0
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		child := n.FirstChild
		for child != nil {
			next := child.NextSibling
			if child.Type == html.ElementNode {
				walk(child)
				if child.FirstChild == nil && cutEmptyElements[child.Data] {
					n.RemoveChild(child)
					removed++
				}
			}
			child = next
		}
	}
	walk(root)
	return removed
}

// isDocumentHead tells the document head apart from a canonical heading,
// which shares the tag name.
func isDocumentHead(n *html.Node) bool {
	return n.Parent != nil && n.Parent.Type == html.ElementNode && n.Parent.Data == "html"
}

func removeComments(root *html.Node) int {
	var comments []*html.Node
	WalkNodes(root, func(n *html.Node) bool {
		if n.Type == html.CommentNode {
			comments = append(comments, n)
		}
		return true
	})
	for _, n := range comments {
		Remove(n)
	}
	return len(comments)
}

func without(list []string, drop ...string) []string {
	result := list[:0]
	for _, tag := range list {
		if !containsTag(drop, tag) {
			result = append(result, tag)
		}
	}
	return result
}
