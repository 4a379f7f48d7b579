package internal

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
)

// Rule is one compiled structural pattern of a discard table. It satisfies
// goquery.Matcher.
type Rule struct {
	Name string
	sel  cascadia.Selector
}

func NewRule(name, selector string) (Rule, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return Rule{}, fmt.Errorf("compile rule %q: %w", name, err)
	}
	return Rule{Name: name, sel: sel}, nil
}

func MustRule(name, selector string) Rule {
	r, err := NewRule(name, selector)
	if err != nil {
		panic(err)
	}
	return r
}

func (r Rule) Match(n *html.Node) bool {
	return r.sel != nil && r.sel.Match(n)
}

func (r Rule) MatchAll(n *html.Node) []*html.Node {
	if r.sel == nil {
		return nil
	}
	return r.sel.MatchAll(n)
}

func (r Rule) Filter(nodes []*html.Node) []*html.Node {
	if r.sel == nil {
		return nil
	}
	return r.sel.Filter(nodes)
}

var _ goquery.Matcher = Rule{}

// anyOf expands every tag against every attribute condition into a selector
// group, e.g. anyOf([div p], `[id*="nav"]`) is `div[id*="nav"], p[id*="nav"]`.
func anyOf(tags []string, conditions ...string) string {
	parts := make([]string, 0, len(tags)*len(conditions))
	for _, tag := range tags {
		for _, cond := range conditions {
			parts = append(parts, tag+cond)
		}
	}
	return strings.Join(parts, ", ")
}

var boilerplateHosts = []string{"div", "section", "span", "p", "ul", "ol", "dl", "li", TagList, TagItem}

// DiscardRules removes navigation, sharing, related-content, cookie and
// advertising containers.
var DiscardRules = []Rule{
	MustRule("footer", anyOf(boilerplateHosts,
		`[id*="footer"]`, `[class*="footer"]`, `[id*="Footer"]`, `[class*="Footer"]`)),
	MustRule("related", anyOf(boilerplateHosts,
		`[id*="related"]`, `[class*="related"]`, `[class*="Related"]`, `[id*="viral"]`, `[class*="viral"]`)),
	MustRule("sharing", anyOf(boilerplateHosts,
		`[id^="shar"]`, `[class^="shar"]`, `[class*="share-"]`, `[id*="share"]`, `[id*="Share"]`,
		`[id*="social"]`, `[class*="social"]`, `[class*="sociable"]`,
		`[id*="syndication"]`, `[class*="syndication"]`, `[id^="jp-"]`, `[id^="dpsp-content"]`)),
	MustRule("embeds", anyOf(boilerplateHosts,
		`[class*="embedded"]`, `[class*="embed"]`, `[id*="newsletter"]`, `[class*="newsletter"]`)),
	MustRule("navigation", anyOf(boilerplateHosts,
		`[class*="subnav"]`, `[id*="menu"]`, `[class*="menu"]`, `[id*="nav"]`, `[id*="Nav"]`,
		`[role*="nav"]`, `[role*="Nav"]`, `[class^="nav"]`, `[class*="navigation"]`, `[class*="Navigation"]`,
		`[class*="navbar"]`, `[class*="navbox"]`, `[class^="post-nav"]`,
		`[id*="breadcrumb"]`, `[class*="breadcrumb"]`, `[id*="bread-crumb"]`, `[class*="bread-crumb"]`)),
	MustRule("cookies", anyOf(boilerplateHosts,
		`[id*="cookie"]`, `[class*="cookie"]`, `[class*="consent"]`, `[class*="modal-content"]`)),
	MustRule("sidebars", anyOf(boilerplateHosts,
		`[id*="tags"]`, `[class*="tags"]`, `[id*="sidebar"]`, `[class*="sidebar"]`,
		`[id*="banner"]`, `[class*="banner"]`, `[class*="meta"]`)),
	MustRule("bylines", anyOf(boilerplateHosts,
		`[id*="author"]`, `[class*="author"]`, `[id*="button"]`, `[class*="button"]`,
		`[class*="byline"]`, `[class*="Byline"]`, `[class*="rating"]`, `[class^="widget"]`,
		`[class*="attachment"]`, `[class*="timestamp"]`, `[class*="user-info"]`, `[class*="user-profile"]`,
		`[class*="article-infos"]`, `[class*="infoline"]`, `[class*="Infoline"]`)),
	MustRule("advertising", anyOf(boilerplateHosts,
		`[class*="-ad-"]`, `[class*="ad "]`, `[class*="-icon"]`, `[class*="outbrain"]`, `[class*="taboola"]`,
		`[class*="criteo"]`, `[class*="options"]`, `[data-component*="MostPopularStories"]`,
		`[class*="paid-content"]`, `[class*="paidcontent"]`, `[id*="premium-"]`, `[id*="paywall"]`,
		`[class*="obfuscated"]`, `[class*="blurred"]`, `[class*="next-post"]`,
		`[class*="message-container"]`, `[id*="message_container"]`, `[data-lp-replacement-content]`)),
	MustRule("hidden", anyOf([]string{"*"},
		`[class="comments-title"]`, `[class*="comments-title"]`, `[class*="nocomments"]`,
		`[id^="reply-"]`, `[class^="reply-"]`, `[class*="-reply-"]`, `[class*="message"]`,
		`[id*="akismet"]`, `[class*="akismet"]`, `[class^="hide-"]`, `[class*="hide-print"]`,
		`[id*="hidden"]`, `[style*="hidden"]`, `[hidden*="hidden"]`, `[class*="noprint"]`,
		`[style*="display:none"]`, `[style*="display: none"]`, `[class*=" hidden"]`,
		`[aria-hidden="true"]`, `[class*="notloaded"]`)),
}

// CommentDiscardRules removes user comment sections. It runs before the
// main discard table.
var CommentDiscardRules = []Rule{
	MustRule("comment-sections", anyOf([]string{"div", "section", "ul", "ol", TagList},
		`[id^="comment"]`, `[id^="Comment"]`, `[class^="comment"]`, `[class^="Comment"]`,
		`[class*="article-comments"]`, `[class*="post-comments"]`,
		`[id^="comol"]`, `[id^="disqus_thread"]`, `[id^="dsq-comments"]`)),
	MustRule("comment-forms", anyOf([]string{"div", "section"}, `[id^="respond"]`)),
}

// PruneRules removes every subtree matched by rules, rule by rule, and
// returns the number of removed subtrees. A match nested inside another
// match of the same rule goes with it and is not counted.
func PruneRules(root *html.Node, rules []Rule) int {
	if root == nil {
		return 0
	}
	doc := goquery.NewDocumentFromNode(root)
	total := 0
	for _, rule := range rules {
		sel := doc.FindMatcher(rule)
		if sel.Length() == 0 {
			continue
		}
		removed := outermost(sel.Nodes, root)
		total += removed
		sel.Remove()
		log.Debug().Str("rule", rule.Name).Int("removed", removed).Int("matched", sel.Length()).Msg("pruned subtrees")
	}
	return total
}

// outermost counts the nodes that have no ancestor among nodes below root.
func outermost(nodes []*html.Node, root *html.Node) int {
	matched := make(map[*html.Node]bool, len(nodes))
	for _, n := range nodes {
		matched[n] = true
	}
	count := 0
	for _, n := range nodes {
		nested := false
		for p := n.Parent; p != nil && p != root; p = p.Parent {
			if matched[p] {
				nested = true
				break
			}
		}
		if !nested {
			count++
		}
	}
	return count
}

// Prune applies rules to root and returns root.
func Prune(root *html.Node, rules []Rule) *html.Node {
	PruneRules(root, rules)
	return root
}
