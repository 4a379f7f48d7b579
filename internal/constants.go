// Package internal provides centralized constant definitions for internal use.
package internal

const (
	builderInitialSize = 256 // Initial capacity for strings.Builder

	// Canonical vocabulary
	TagList    = "list"
	TagItem    = "item"
	TagHead    = "head"
	TagLB      = "lb"
	TagQuote   = "quote"
	TagHi      = "hi"
	TagDel     = "del"
	TagRef     = "ref"
	TagGraphic = "graphic"

	AttrRend   = "rend"
	AttrTarget = "target"

	// Paragraph scope link density
	paragraphTextCeiling   = 25
	paragraphLinkThreshold = 0.9
	trailingTextCeiling    = 200
	blockTextCeiling       = 100
	blockLinkThreshold     = 0.66
	shortLinkTextLength    = 10

	// Table scope link density
	tableMinTextLength      = 250
	tableLongTextLength     = 1000
	tableShortLinkRatio     = 0.8
	tableLongLinkRatio      = 0.5
	tableShortElemThreshold = 0.66

	// Duplicate detection
	DefaultMinDuplicateCheckSize = 100
	DefaultMaxRepetitions        = 2
)
