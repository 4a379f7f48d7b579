package internal

import (
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
)

// LinkInfo aggregates the text of a set of ref elements. Refs whose trimmed
// text is empty are skipped entirely.
type LinkInfo struct {
	LinkLen    int
	ElemNum    int
	ShortElems int
	Texts      []string
}

func CollectLinkInfo(refs []*html.Node) LinkInfo {
	var info LinkInfo
	for _, ref := range refs {
		text := Trim(TextContent(ref))
		length := utf8.RuneCountInString(text)
		if length == 0 {
			continue
		}
		info.LinkLen += length
		info.ElemNum++
		if length < shortLinkTextLength {
			info.ShortElems++
		}
		info.Texts = append(info.Texts, text)
	}
	return info
}

// linkLimits picks the text ceiling and ratio threshold for the paragraph
// scope test.
func linkLimits(elem *html.Node) (int, float64) {
	switch {
	case elem.Data == "p":
		return paragraphTextCeiling, paragraphLinkThreshold
	case NextElementSibling(elem) == nil:
		return trailingTextCeiling, blockLinkThreshold
	default:
		return blockTextCeiling, blockLinkThreshold
	}
}

// LinkDensity reports whether a short paragraph-like element is dominated by
// link text. It also returns the collected link texts, which stay empty when
// the element is too long to be evaluated.
func LinkDensity(elem *html.Node) (bool, []string) {
	if elem == nil {
		return false, nil
	}
	refs := ElementsByTag(elem, TagRef)
	if len(refs) == 0 {
		return false, nil
	}
	elemLen := TextLength(elem)
	limit, threshold := linkLimits(elem)
	if elemLen >= limit {
		return false, nil
	}
	info := CollectLinkInfo(refs)
	if info.ElemNum == 0 {
		return true, info.Texts
	}
	log.Debug().
		Str("tag", elem.Data).
		Int("link_len", info.LinkLen).
		Int("elem_len", elemLen).
		Int("short_elems", info.ShortElems).
		Int("elem_num", info.ElemNum).
		Msg("link density")
	if float64(info.LinkLen) >= threshold*float64(elemLen) ||
		float64(info.ShortElems)/float64(info.ElemNum) >= threshold {
		return true, info.Texts
	}
	return false, info.Texts
}

// LinkDensityTable reports whether a table is dominated by link text. Tables
// shorter than the minimum length are never flagged.
func LinkDensityTable(elem *html.Node) bool {
	if elem == nil {
		return false
	}
	refs := ElementsByTag(elem, TagRef)
	if len(refs) == 0 {
		return false
	}
	elemLen := TextLength(elem)
	if elemLen <= tableMinTextLength {
		return false
	}
	info := CollectLinkInfo(refs)
	if info.ElemNum == 0 {
		return true
	}
	log.Debug().Int("link_len", info.LinkLen).Int("elem_len", elemLen).Msg("table link density")
	linkLen, total := float64(info.LinkLen), float64(elemLen)
	if (elemLen < tableLongTextLength && linkLen > tableShortLinkRatio*total) ||
		(elemLen >= tableLongTextLength && linkLen > tableLongLinkRatio*total) {
		return true
	}
	return float64(info.ShortElems) > float64(len(refs))*tableShortElemThreshold
}

// LinkRatio is the share of n's text that sits inside ref elements.
func LinkRatio(n *html.Node) float64 {
	textLength := TextLength(n)
	if textLength == 0 {
		return 0.0
	}
	linkTextLength := 0
	for _, ref := range ElementsByTag(n, TagRef) {
		if !hasRefAncestor(ref, n) {
			linkTextLength += TextLength(ref)
		}
	}
	return float64(linkTextLength) / float64(textLength)
}

func hasRefAncestor(n, root *html.Node) bool {
	for cur := n.Parent; cur != nil && cur != root; cur = cur.Parent {
		if cur.Type == html.ElementNode && cur.Data == TagRef {
			return true
		}
	}
	return false
}
