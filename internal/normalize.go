package internal

import (
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
)

// NormalizeOptions selects the richer canonical mapping for each family of
// tags. A false flag strips or leaves the family as described on ConvertTags.
type NormalizeOptions struct {
	Formatting bool
	Tables     bool
	Images     bool
	Links      bool
	// BaseURL, when set, makes ref targets absolute.
	BaseURL string
}

type rewrite struct {
	tag        string
	rend       string
	clearAttrs bool
}

var (
	listTags       = []string{"ul", "ol", "dl"}
	listItemTags   = []string{"dd", "dt", "li"}
	anchorTags     = []string{"a", TagRef}
	formattingTags = []string{"em", "i", "b", "strong", "u", "kbd", "samp", "tt", "var", "sub", "sup"}

	headingRewrites = map[string]rewrite{
		"h1": {tag: TagHead, rend: "h1", clearAttrs: true},
		"h2": {tag: TagHead, rend: "h2", clearAttrs: true},
		"h3": {tag: TagHead, rend: "h3", clearAttrs: true},
		"h4": {tag: TagHead, rend: "h4", clearAttrs: true},
		"h5": {tag: TagHead, rend: "h5", clearAttrs: true},
		"h6": {tag: TagHead, rend: "h6", clearAttrs: true},
	}

	lineBreakRewrites = map[string]rewrite{
		"br": {tag: TagLB},
		"hr": {tag: TagLB},
	}

	quoteRewrites = map[string]rewrite{
		"blockquote": {tag: TagQuote},
		"pre":        {tag: TagQuote},
		"q":          {tag: TagQuote},
	}

	formattingRewrites = map[string]rewrite{
		"em":     {tag: TagHi, rend: "#i"},
		"i":      {tag: TagHi, rend: "#i"},
		"b":      {tag: TagHi, rend: "#b"},
		"strong": {tag: TagHi, rend: "#b"},
		"u":      {tag: TagHi, rend: "#u"},
		"kbd":    {tag: TagHi, rend: "#t"},
		"samp":   {tag: TagHi, rend: "#t"},
		"tt":     {tag: TagHi, rend: "#t"},
		"var":    {tag: TagHi, rend: "#t"},
		"sub":    {tag: TagHi, rend: "#sub"},
		"sup":    {tag: TagHi, rend: "#sup"},
	}

	strikeRewrites = map[string]rewrite{
		"del":    {tag: TagDel, rend: "overstrike"},
		"s":      {tag: TagDel, rend: "overstrike"},
		"strike": {tag: TagDel, rend: "overstrike"},
	}
)

// ConvertTags rewrites the source vocabulary of root onto the canonical one.
// The passes run in a fixed order because later ones key off earlier
// rewrites:
//
//  1. ul/ol/dl become list, their dd/dt/li become item and anchors become ref
//  2. anchors inside a div become ref
//  3. anchors inside a table become ref (tables only)
//  4. img becomes graphic (images only)
//  5. anchors and refs are stripped, or unified to ref keeping href and target
//  6. h1-h6 become head with rend set to the original level
//  7. br/hr become lb
//  8. blockquote/pre/q become quote
//  9. formatting tags are stripped, or become hi with a rend
//  10. del/s/strike become del rend="overstrike"
//
// Unmatched tags such as p or table are left alone. Running it twice with the
// same options changes nothing further.
func ConvertTags(root *html.Node, opts NormalizeOptions) *html.Node {
	if root == nil {
		return nil
	}

	for _, list := range selfAndDescendants(root, listTags...) {
		Rename(list, TagList)
		for _, item := range ElementsByTag(list, listItemTags...) {
			Rename(item, TagItem)
		}
		for _, a := range ElementsByTag(list, "a") {
			Rename(a, TagRef)
		}
	}

	renameWithin(root, "div", "a", TagRef)

	if opts.Tables {
		renameWithin(root, "table", "a", TagRef)
	}

	if opts.Images {
		for _, img := range selfAndDescendants(root, "img") {
			Rename(img, TagGraphic)
		}
	}

	if !opts.Links {
		stripped := StripTags(root, anchorTags...)
		log.Debug().Int("stripped", stripped).Msg("stripped links")
	} else {
		for _, a := range selfAndDescendants(root, anchorTags...) {
			convertLink(a, opts.BaseURL)
		}
	}

	applyRewrites(root, headingRewrites)
	applyRewrites(root, lineBreakRewrites)
	applyRewrites(root, quoteRewrites)

	if !opts.Formatting {
		StripTags(root, formattingTags...)
	} else {
		applyRewrites(root, formattingRewrites)
	}

	applyRewrites(root, strikeRewrites)
	return root
}

// convertLink turns an anchor into a ref that keeps href and carries target,
// resolved against baseURL when set. Every other attribute goes. A ref
// converted earlier without href keeps its target.
func convertLink(n *html.Node, baseURL string) {
	href, hasHref := GetAttribute(n, "href")
	target, hasTarget := GetAttribute(n, AttrTarget)
	hasTarget = hasTarget && n.Data == TagRef
	if hasHref {
		target, hasTarget = href, true
		if baseURL != "" {
			target = ResolveURL(baseURL, href)
		}
	}
	Rename(n, TagRef)
	n.Attr = nil
	if hasHref {
		SetAttribute(n, "href", href)
	}
	if hasTarget {
		SetAttribute(n, AttrTarget, target)
	}
}

func applyRewrites(root *html.Node, table map[string]rewrite) {
	for _, n := range selfAndDescendants(root) {
		r, ok := table[n.Data]
		if !ok {
			continue
		}
		Rename(n, r.tag)
		if r.clearAttrs {
			n.Attr = nil
		}
		if r.rend != "" {
			SetAttribute(n, AttrRend, r.rend)
		}
	}
}

// selfAndDescendants is ElementsByTag including root. Without tags every
// element matches.
func selfAndDescendants(root *html.Node, tags ...string) []*html.Node {
	var result []*html.Node
	WalkNodes(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && (len(tags) == 0 || containsTag(tags, n.Data)) {
			result = append(result, n)
		}
		return true
	})
	return result
}

// renameWithin renames every target element that has a container element
// (root included) above it.
func renameWithin(root *html.Node, container, target, tag string) {
	var walk func(n *html.Node, inside bool)
	walk = func(n *html.Node, inside bool) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if inside && c.Data == target {
				Rename(c, tag)
			}
			walk(c, inside || c.Data == container)
		}
	}
	walk(root, root.Type == html.ElementNode && root.Data == container)
}
