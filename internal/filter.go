package internal

import (
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
)

// TextClassifier decides whether an element carries unwanted text.
type TextClassifier interface {
	Unwanted(n *html.Node) (bool, error)
}

// DuplicateClassifier decides whether an element repeats content seen
// before. Implementations may keep state across calls.
type DuplicateClassifier interface {
	Duplicate(n *html.Node) (bool, error)
}

// LeafFilter admits or rejects single leaf-bearing elements. Classifier
// errors never reject a node.
type LeafFilter struct {
	Text        TextClassifier
	Duplicates  DuplicateClassifier
	Deduplicate bool
	States      *States
}

// Process trims the text and tail of n and returns it when it survives, or
// nil when it is rejected. The verdict is recorded in f.States.
//
// When n has no text but a tail, and is not a line break, the tail moves into
// the text and the tail is emptied.
func (f *LeafFilter) Process(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	if f.States.Get(n) == Done {
		return nil
	}
	if IsStructurallyEmpty(n) {
		f.States.Set(n, Rejected)
		return nil
	}

	text, tail := Trim(Text(n)), Trim(Tail(n))
	SetText(n, text)
	SetTail(n, tail)
	if n.Data != TagLB && text == "" && tail != "" {
		SetText(n, tail)
		SetTail(n, "")
		text, tail = tail, ""
	}

	hasText := text != "" || tail != ""
	if f.rejects(n, hasText, hasText) {
		f.States.Set(n, Rejected)
		return nil
	}
	f.States.Set(n, Kept)
	return n
}

// Accept classifies a block whose inline children carry part of its text.
// Text and tail are left exactly as they are, so the spacing around the
// children and the order of the content survive. The verdict is recorded in
// f.States.
func (f *LeafFilter) Accept(n *html.Node) bool {
	if n == nil || f.States.Get(n) == Done {
		return false
	}
	if IsStructurallyEmpty(n) {
		f.States.Set(n, Rejected)
		return false
	}
	hasText := Trim(Text(n)) != "" || Trim(Tail(n)) != ""
	if f.rejects(n, hasText, Trim(TextContent(n)) != "") {
		f.States.Set(n, Rejected)
		return false
	}
	f.States.Set(n, Kept)
	return true
}

func (f *LeafFilter) rejects(n *html.Node, checkText, checkDuplicate bool) bool {
	if checkText && f.flagged(n, "text", f.Text, nil) {
		return true
	}
	return checkDuplicate && f.Deduplicate && f.flagged(n, "duplicate", nil, f.Duplicates)
}

func (f *LeafFilter) flagged(n *html.Node, kind string, tc TextClassifier, dc DuplicateClassifier) bool {
	var (
		hit bool
		err error
	)
	switch {
	case tc != nil:
		hit, err = tc.Unwanted(n)
	case dc != nil:
		hit, err = dc.Duplicate(n)
	default:
		return false
	}
	if err != nil {
		log.Warn().Err(err).Str("classifier", kind).Str("tag", n.Data).Msg("classifier failed; keeping node")
		return false
	}
	return hit
}
