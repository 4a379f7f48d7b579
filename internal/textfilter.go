package internal

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html"
)

var rxUnwantedLine = regexp.MustCompile(`(?i)^\W*(Drucken|E-?Mail|Facebook|Flipboard|Google|Instagram|Linkedin|Mail|PDF|Pinterest|Pocket|Print|QQ|Reddit|Twitter|WeChat|WeiBo|Whatsapp|Xing|Mehr zum Thema:?|More on this.{0,8})$`)

// RegexTextFilter flags share buttons, print links and similar one-line
// debris. It looks at the element text, or at the tail when the text is
// empty.
type RegexTextFilter struct{}

func (RegexTextFilter) Unwanted(n *html.Node) (bool, error) {
	return IsUnwantedText(textOrTail(n)), nil
}

func textOrTail(n *html.Node) string {
	if text := Text(n); text != "" {
		return text
	}
	return Tail(n)
}

// IsUnwantedText is true for blank text and for text with a line that is
// only a social network name or a similar widget label.
func IsUnwantedText(text string) bool {
	if strings.TrimSpace(text) == "" {
		return true
	}
	for _, line := range strings.Split(text, "\n") {
		if rxUnwantedLine.MatchString(strings.TrimSpace(line)) {
			return true
		}
	}
	return false
}

// DuplicateCounter flags text that was already seen more than MaxRepetitions
// times. Texts of MinSize runes or less are never counted. The counter is
// safe for concurrent use and keeps its state until Clear is called.
type DuplicateCounter struct {
	MinSize        int
	MaxRepetitions int
	cache          *CountCache
}

func NewDuplicateCounter(minSize, maxRepetitions, maxEntries int, ttl time.Duration) *DuplicateCounter {
	return &DuplicateCounter{
		MinSize:        minSize,
		MaxRepetitions: maxRepetitions,
		cache:          NewCountCache(maxEntries, ttl),
	}
}

func (d *DuplicateCounter) Duplicate(n *html.Node) (bool, error) {
	text := Trim(IterText(n, " "))
	if utf8.RuneCountInString(text) <= d.MinSize {
		return false, nil
	}
	return d.cache.Increment(text) > d.MaxRepetitions, nil
}

func (d *DuplicateCounter) Len() int {
	return d.cache.Len()
}

func (d *DuplicateCounter) Clear() {
	d.cache.Clear()
}
