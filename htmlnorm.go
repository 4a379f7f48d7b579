// Package htmlnorm normalizes parsed HTML trees into a small canonical tag
// vocabulary and strips structural boilerplate before content extraction.
// Trees are golang.org/x/net/html nodes; the package never fetches anything.
package htmlnorm

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cybergodev/htmlnorm/internal"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
)

// Re-export the node types from golang.org/x/net/html.
type (
	Node      = html.Node
	NodeType  = html.NodeType
	Attribute = html.Attribute
)

const (
	ElementNode  = html.ElementNode
	TextNode     = html.TextNode
	DocumentNode = html.DocumentNode
	CommentNode  = html.CommentNode
)

// Canonical tags produced by the normalizer.
const (
	TagList    = internal.TagList
	TagItem    = internal.TagItem
	TagHead    = internal.TagHead
	TagLB      = internal.TagLB
	TagQuote   = internal.TagQuote
	TagHi      = internal.TagHi
	TagDel     = internal.TagDel
	TagRef     = internal.TagRef
	TagGraphic = internal.TagGraphic
)

// Default configuration values.
const (
	DefaultMinDuplicateCheckSize = internal.DefaultMinDuplicateCheckSize
	DefaultMaxRepetitions        = internal.DefaultMaxRepetitions
	DefaultMaxDuplicateEntries   = 4096
	DefaultDuplicateTTL          = time.Hour
	DefaultMaxDepth              = 256
	DefaultWorkerPoolSize        = 4
)

// Container elements only group other blocks. The leaf pass descends into
// them instead of filtering them as a whole, and drops them once emptied.
var containerTags = map[string]bool{
	"article": true, "body": true, "div": true, "html": true, "main": true,
	"section": true, "table": true, "tbody": true, "tfoot": true, "thead": true,
	"tr": true, TagList: true,
}

// Candidates for the link density pass. Tables get the table test.
var linkDensityTags = []string{"table", "p", TagList, TagQuote, TagHead}

// Processor runs the normalization pipeline. It is safe for concurrent use
// on distinct trees; a single tree must not be shared between goroutines.
type Processor struct {
	config     *Config
	duplicates *internal.DuplicateCounter
	text       internal.TextClassifier
	closed     atomic.Bool
	stats      struct {
		totalProcessed   atomic.Int64
		errorCount       atomic.Int64
		keptElements     atomic.Int64
		rejectedElements atomic.Int64
		prunedSubtrees   atomic.Int64
		linkDenseBlocks  atomic.Int64
		totalProcessTime atomic.Int64
	}
}

// Config holds processor configuration.
type Config struct {
	Formatting bool
	Tables     bool
	Images     bool
	Links      bool
	// BaseURL makes relative link targets absolute when set.
	BaseURL string

	Deduplicate           bool
	MinDuplicateCheckSize int
	MaxRepetitions        int
	MaxDuplicateEntries   int
	DuplicateTTL          time.Duration

	PruneComments  bool
	MaxDepth       int
	WorkerPoolSize int
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		Tables:                true,
		Links:                 true,
		MinDuplicateCheckSize: DefaultMinDuplicateCheckSize,
		MaxRepetitions:        DefaultMaxRepetitions,
		MaxDuplicateEntries:   DefaultMaxDuplicateEntries,
		DuplicateTTL:          DefaultDuplicateTTL,
		PruneComments:         true,
		MaxDepth:              DefaultMaxDepth,
		WorkerPoolSize:        DefaultWorkerPoolSize,
	}
}

func validateConfig(c Config) error {
	switch {
	case c.MinDuplicateCheckSize < 0:
		return fmt.Errorf("%w: MinDuplicateCheckSize cannot be negative", ErrInvalidConfig)
	case c.MaxRepetitions < 0:
		return fmt.Errorf("%w: MaxRepetitions cannot be negative", ErrInvalidConfig)
	case c.MaxDuplicateEntries < 0:
		return fmt.Errorf("%w: MaxDuplicateEntries cannot be negative", ErrInvalidConfig)
	case c.Deduplicate && c.MaxDuplicateEntries == 0:
		return fmt.Errorf("%w: MaxDuplicateEntries must be positive when Deduplicate is set", ErrInvalidConfig)
	case c.DuplicateTTL < 0:
		return fmt.Errorf("%w: DuplicateTTL cannot be negative", ErrInvalidConfig)
	case c.MaxDepth <= 0:
		return fmt.Errorf("%w: MaxDepth must be positive", ErrInvalidConfig)
	case c.WorkerPoolSize <= 0:
		return fmt.Errorf("%w: WorkerPoolSize must be positive", ErrInvalidConfig)
	case c.BaseURL != "" && !internal.IsAbsoluteURL(c.BaseURL):
		return fmt.Errorf("%w: BaseURL must be an absolute http(s) URL", ErrInvalidConfig)
	}
	return nil
}

// Result describes one pipeline run. Root is the tree that was passed in,
// mutated in place.
type Result struct {
	Root           *html.Node
	Kept           int
	Rejected       int
	Pruned         int
	LinkDense      int
	Emptied        int
	LinkTexts      []string
	LinkRatio      float64
	ProcessingTime time.Duration

	states *internal.States
}

// State returns the processing state recorded for n during the run.
func (r *Result) State(n *html.Node) State {
	if r == nil {
		return Unprocessed
	}
	return r.states.Get(n)
}

// Statistics contains processing metrics.
type Statistics struct {
	TotalProcessed     int64
	ErrorCount         int64
	KeptElements       int64
	RejectedElements   int64
	PrunedSubtrees     int64
	LinkDenseBlocks    int64
	DuplicateEntries   int
	AverageProcessTime time.Duration
}

// New creates a Processor with the given configuration.
func New(config Config) (*Processor, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return &Processor{
		config: &config,
		duplicates: internal.NewDuplicateCounter(
			config.MinDuplicateCheckSize,
			config.MaxRepetitions,
			config.MaxDuplicateEntries,
			config.DuplicateTTL,
		),
		text: internal.RegexTextFilter{},
	}, nil
}

// NewWithDefaults creates a Processor with default configuration.
func NewWithDefaults() *Processor {
	p, _ := New(DefaultConfig())
	return p
}

// Process normalizes root in place: it cleans the tree, prunes boilerplate
// subtrees, converts tags to the canonical vocabulary, drops link-dense
// blocks and runs every remaining leaf-bearing element through the leaf
// filter.
func (p *Processor) Process(root *html.Node) (*Result, error) {
	if p.closed.Load() {
		return nil, ErrProcessorClosed
	}
	if root == nil {
		p.stats.errorCount.Add(1)
		return nil, ErrNilTree
	}
	if err := p.validateDepth(root, 0); err != nil {
		p.stats.errorCount.Add(1)
		return nil, err
	}

	startTime := time.Now()
	result := p.process(root)
	result.ProcessingTime = time.Since(startTime)

	p.stats.totalProcessed.Add(1)
	p.stats.totalProcessTime.Add(int64(result.ProcessingTime))
	p.stats.keptElements.Add(int64(result.Kept))
	p.stats.rejectedElements.Add(int64(result.Rejected))
	p.stats.prunedSubtrees.Add(int64(result.Pruned))
	p.stats.linkDenseBlocks.Add(int64(result.LinkDense))
	return result, nil
}

func (p *Processor) process(root *html.Node) *Result {
	cfg := p.config
	states := internal.NewStates()
	result := &Result{Root: root, states: states}

	internal.CleanTree(root, cfg.Tables, cfg.Images)
	if cfg.PruneComments {
		result.Pruned += internal.PruneRules(root, internal.CommentDiscardRules)
	}
	result.Pruned += internal.PruneRules(root, internal.DiscardRules)
	internal.ConvertTags(root, p.normalizeOptions())
	states.MarkDescendants(root, internal.Normalized)

	p.removeLinkDense(root, states, result)
	p.filterLeaves(root, states, result)
	result.Emptied = pruneEmptyContainers(root)
	result.LinkRatio = internal.LinkRatio(root)

	log.Debug().
		Int("kept", result.Kept).
		Int("rejected", result.Rejected).
		Int("pruned", result.Pruned).
		Int("link_dense", result.LinkDense).
		Int("emptied", result.Emptied).
		Msg("processed tree")
	return result
}

func (p *Processor) normalizeOptions() NormalizeOptions {
	return NormalizeOptions{
		Formatting: p.config.Formatting,
		Tables:     p.config.Tables,
		Images:     p.config.Images,
		Links:      p.config.Links,
		BaseURL:    p.config.BaseURL,
	}
}

func (p *Processor) removeLinkDense(root *html.Node, states *internal.States, result *Result) {
	for _, elem := range internal.ElementsByTag(root, linkDensityTags...) {
		if !internal.IsAttached(elem, root) {
			continue
		}
		var dense bool
		var texts []string
		if elem.Data == "table" {
			dense = internal.LinkDensityTable(elem)
		} else {
			dense, texts = internal.LinkDensity(elem)
		}
		if !dense {
			continue
		}
		if elem.Data == "table" {
			texts = internal.CollectLinkInfo(internal.ElementsByTag(elem, TagRef)).Texts
		}
		states.Set(elem, internal.Rejected)
		internal.Remove(elem)
		result.LinkDense++
		result.LinkTexts = append(result.LinkTexts, texts...)
	}
}

// filterLeaves walks the tree top-down. The document skeleton and containers
// holding only blocks are descended into. Elements without element children
// go through the leaf filter, which trims them. Any other block is judged as
// a whole with its text untouched, and everything below it is finalized.
func (p *Processor) filterLeaves(root *html.Node, states *internal.States, result *Result) {
	filter := &internal.LeafFilter{
		Text:        p.text,
		Duplicates:  p.duplicates,
		Deduplicate: p.config.Deduplicate,
		States:      states,
	}
	for _, elem := range internal.Elements(root) {
		if states.Get(elem) == internal.Done || !internal.IsAttached(elem, root) {
			continue
		}
		if elem.Data == TagGraphic {
			states.Set(elem, internal.Kept)
			result.Kept++
			continue
		}

		var kept bool
		switch {
		case elem.Data == "html" || elem.Data == "body":
			finalizeInline(elem, states)
			continue
		case !internal.HasElementChildren(elem):
			kept = filter.Process(elem) != nil
		case containerTags[elem.Data] && !holdsInlineContent(elem):
			continue
		default:
			kept = filter.Accept(elem)
		}
		if !kept {
			internal.Remove(elem)
			result.Rejected++
			continue
		}
		states.MarkDescendants(elem, internal.Done)
		result.Kept++
	}
}

// Inline elements flow with the surrounding text rather than forming blocks.
var inlineTags = map[string]bool{
	TagHi: true, TagRef: true, TagDel: true, TagLB: true,
	"a": true, "b": true, "code": true, "em": true, "i": true, "span": true,
	"strong": true, "sub": true, "sup": true, "u": true,
}

// holdsInlineContent reports loose text or inline elements directly inside n.
func holdsInlineContent(n *html.Node) bool {
	if internal.Trim(internal.Text(n)) != "" {
		return true
	}
	for _, child := range internal.ElementChildren(n) {
		if inlineTags[child.Data] || internal.Trim(internal.Tail(child)) != "" {
			return true
		}
	}
	return false
}

// finalizeInline leaves the inline children of the document skeleton as
// they are.
func finalizeInline(n *html.Node, states *internal.States) {
	for _, child := range internal.ElementChildren(n) {
		if inlineTags[child.Data] {
			states.Set(child, internal.Done)
			states.MarkDescendants(child, internal.Done)
		}
	}
}

// pruneEmptyContainers removes, bottom-up, container elements left with
// neither element children nor text. The document skeleton stays.
func pruneEmptyContainers(root *html.Node) int {
	removed := 0
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		child := n.FirstChild
		for child != nil {
			next := child.NextSibling
			if child.Type == html.ElementNode {
				walk(child)
				if containerTags[child.Data] && child.Data != "html" && child.Data != "body" &&
					!internal.HasElementChildren(child) && internal.Trim(internal.Text(child)) == "" {
					internal.Remove(child)
					removed++
				}
			}
			child = next
		}
	}
	walk(root)
	return removed
}

// ProcessBatch processes independent trees in parallel using a worker pool.
// Each tree is owned by exactly one goroutine.
func (p *Processor) ProcessBatch(roots []*html.Node) ([]*Result, error) {
	if p.closed.Load() {
		return nil, ErrProcessorClosed
	}

	if len(roots) == 0 {
		return []*Result{}, nil
	}

	results := make([]*Result, len(roots))
	errs := make([]error, len(roots))
	sem := make(chan struct{}, p.config.WorkerPoolSize)
	var wg sync.WaitGroup

	for i, root := range roots {
		wg.Add(1)
		go func(idx int, n *html.Node) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[idx], errs[idx] = p.Process(n)
		}(i, root)
	}

	wg.Wait()
	return collectResults(results, errs)
}

func collectResults(results []*Result, errs []error) ([]*Result, error) {
	var firstErr error
	successCount := 0
	failCount := 0

	for i, err := range errs {
		if err != nil {
			failCount++
			if firstErr == nil {
				firstErr = fmt.Errorf("tree %d: %w", i, err)
			}
		} else {
			successCount++
		}
	}

	switch {
	case successCount == 0:
		return results, fmt.Errorf("all %d trees failed: %w", len(results), firstErr)
	case failCount > 0:
		return results, fmt.Errorf("partial failure (%d/%d succeeded): %w", successCount, len(results), firstErr)
	default:
		return results, nil
	}
}

// GetStatistics returns processing statistics.
func (p *Processor) GetStatistics() Statistics {
	totalProcessed := p.stats.totalProcessed.Load()
	totalTime := time.Duration(p.stats.totalProcessTime.Load())
	var avgTime time.Duration
	if totalProcessed > 0 {
		avgTime = totalTime / time.Duration(totalProcessed)
	}
	return Statistics{
		TotalProcessed:     totalProcessed,
		ErrorCount:         p.stats.errorCount.Load(),
		KeptElements:       p.stats.keptElements.Load(),
		RejectedElements:   p.stats.rejectedElements.Load(),
		PrunedSubtrees:     p.stats.prunedSubtrees.Load(),
		LinkDenseBlocks:    p.stats.linkDenseBlocks.Load(),
		DuplicateEntries:   p.duplicates.Len(),
		AverageProcessTime: avgTime,
	}
}

// ClearCache forgets every text seen by the duplicate detector.
func (p *Processor) ClearCache() {
	p.duplicates.Clear()
}

// Close releases processor resources.
func (p *Processor) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	p.duplicates.Clear()
	return nil
}

func (p *Processor) validateDepth(n *html.Node, depth int) error {
	if depth > p.config.MaxDepth {
		return fmt.Errorf("%w: limit %d", ErrMaxDepthExceeded, p.config.MaxDepth)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := p.validateDepth(c, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// Parse decodes data to UTF-8, using the BOM or a declared meta charset, and
// parses it into a document tree.
func Parse(data []byte) (*html.Node, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidHTML)
	}
	converted, charset, err := internal.DetectAndConvertToUTF8(data)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrInvalidHTML, charset, err)
	}
	doc, err := html.Parse(strings.NewReader(string(converted)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHTML, err)
	}
	return doc, nil
}

// Render serializes n to HTML.
func Render(n *html.Node) (string, error) {
	if n == nil {
		return "", ErrNilTree
	}
	var sb strings.Builder
	if err := html.Render(&sb, n); err != nil {
		return "", err
	}
	return sb.String(), nil
}
