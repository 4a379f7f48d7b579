package internal

import "golang.org/x/net/html"

// State tracks where an element is in a pipeline run.
type State uint8

const (
	Unprocessed State = iota
	Normalized
	Kept
	Rejected
	// Done marks elements finalized by an enclosing unit; the leaf filter
	// refuses them.
	Done
)

func (s State) String() string {
	switch s {
	case Normalized:
		return "normalized"
	case Kept:
		return "kept"
	case Rejected:
		return "rejected"
	case Done:
		return "done"
	default:
		return "unprocessed"
	}
}

// States is the per-run state table. It is not safe for concurrent use; one
// tree, one run, one table.
type States struct {
	m map[*html.Node]State
}

func NewStates() *States {
	return &States{m: make(map[*html.Node]State)}
}

func (s *States) Get(n *html.Node) State {
	if s == nil {
		return Unprocessed
	}
	return s.m[n]
}

func (s *States) Set(n *html.Node, st State) {
	if s == nil || n == nil {
		return
	}
	s.m[n] = st
}

// MarkDescendants sets st on every element below n.
func (s *States) MarkDescendants(n *html.Node, st State) {
	if s == nil {
		return
	}
	for _, e := range Elements(n) {
		s.m[e] = st
	}
}

// Count returns how many elements currently hold st.
func (s *States) Count(st State) int {
	if s == nil {
		return 0
	}
	count := 0
	for _, v := range s.m {
		if v == st {
			count++
		}
	}
	return count
}
