package htmlnorm

import (
	"time"

	"github.com/cybergodev/htmlnorm/internal"
	"golang.org/x/net/html"
)

// The pipeline stages, usable one by one on a tree the caller owns.

type (
	// Rule is a compiled CSS selector naming a boilerplate subtree.
	Rule = internal.Rule
	// NormalizeOptions selects which optional element kinds survive ConvertTags.
	NormalizeOptions = internal.NormalizeOptions
	// State is the processing state of an element within one run.
	State = internal.State
	// TextClassifier flags elements carrying unwanted text.
	TextClassifier = internal.TextClassifier
	// DuplicateClassifier flags elements whose content was seen too often.
	DuplicateClassifier = internal.DuplicateClassifier
	// LeafFilter admits or rejects single leaf-bearing elements.
	LeafFilter = internal.LeafFilter
	// DuplicateCounter is the default DuplicateClassifier.
	DuplicateCounter = internal.DuplicateCounter
	// RegexTextFilter is the default TextClassifier.
	RegexTextFilter = internal.RegexTextFilter
)

const (
	Unprocessed = internal.Unprocessed
	Normalized  = internal.Normalized
	Kept        = internal.Kept
	Rejected    = internal.Rejected
	Done        = internal.Done
)

var (
	// DiscardRules match navigation, footers, sharing widgets, cookie
	// banners, sidebars, bylines, ads and hidden blocks.
	DiscardRules = internal.DiscardRules
	// CommentDiscardRules match reader comment sections.
	CommentDiscardRules = internal.CommentDiscardRules
)

// NewRule compiles a CSS selector into a pruning rule.
func NewRule(name, selector string) (Rule, error) {
	return internal.NewRule(name, selector)
}

// Prune removes every subtree matched by rules, applying the rules in order.
// It returns root.
func Prune(root *html.Node, rules []Rule) *html.Node {
	return internal.Prune(root, rules)
}

// ConvertTags rewrites root and its descendants into the canonical tag
// vocabulary. It is idempotent for fixed options.
func ConvertTags(root *html.Node, opts NormalizeOptions) *html.Node {
	return internal.ConvertTags(root, opts)
}

// CleanTree removes scripts, forms, navigation and similar elements,
// strips presentational wrappers and drops the elements this left empty.
func CleanTree(root *html.Node, tables, images bool) *html.Node {
	return internal.CleanTree(root, tables, images)
}

// LinkDensity reports whether a short paragraph-like element is dominated by
// links, along with the link texts it collected.
func LinkDensity(elem *html.Node) (bool, []string) {
	return internal.LinkDensity(elem)
}

// LinkDensityTable reports whether a table is dominated by links.
func LinkDensityTable(elem *html.Node) bool {
	return internal.LinkDensityTable(elem)
}

// NewLeafFilter returns a filter with a fresh state table. A nil text
// classifier selects RegexTextFilter.
func NewLeafFilter(text TextClassifier, duplicates DuplicateClassifier, deduplicate bool) *LeafFilter {
	if text == nil {
		text = RegexTextFilter{}
	}
	return &LeafFilter{
		Text:        text,
		Duplicates:  duplicates,
		Deduplicate: deduplicate,
		States:      internal.NewStates(),
	}
}

// NewDuplicateCounter returns a duplicate classifier holding up to
// maxEntries texts for at most ttl each (0 disables expiry).
func NewDuplicateCounter(minSize, maxRepetitions, maxEntries int, ttl time.Duration) *DuplicateCounter {
	return internal.NewDuplicateCounter(minSize, maxRepetitions, maxEntries, ttl)
}
