package htmlnorm_test

import (
	"strings"
	"testing"

	"github.com/cybergodev/htmlnorm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPruneCustomRule(t *testing.T) {
	t.Parallel()

	rule, err := htmlnorm.NewRule("promo", `aside.promo, div[data-promo]`)
	require.NoError(t, err)
	assert.Equal(t, "promo", rule.Name)

	doc := mustParse(t, `<div data-promo="1">Buy now</div><p>Story</p> after`)
	got := htmlnorm.Prune(doc, []htmlnorm.Rule{rule})

	assert.Same(t, doc, got)
	out := mustRender(t, doc)
	assert.NotContains(t, out, "Buy now")
	assert.Contains(t, out, "<p>Story</p> after")

	_, err = htmlnorm.NewRule("broken", `div[`)
	assert.Error(t, err)
}

func TestPruneDiscardRules(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, `<div class="site-footer">Imprint</div><div id="comments-list">Nice!</div><p>Body</p>`)
	htmlnorm.Prune(doc, htmlnorm.DiscardRules)
	htmlnorm.Prune(doc, htmlnorm.CommentDiscardRules)

	out := mustRender(t, doc)
	assert.NotContains(t, out, "Imprint")
	assert.NotContains(t, out, "Nice!")
	assert.Contains(t, out, "<p>Body</p>")
}

func TestConvertTagsIdempotent(t *testing.T) {
	t.Parallel()

	opts := htmlnorm.NormalizeOptions{Formatting: true, Links: true, BaseURL: "https://example.org/docs/"}
	doc := mustParse(t, `<h3>Title</h3><ol><li><a href="intro">Intro</a></li></ol><p><em>x</em><s>y</s></p>`)

	htmlnorm.ConvertTags(doc, opts)
	first := mustRender(t, doc)
	htmlnorm.ConvertTags(doc, opts)

	assert.Equal(t, first, mustRender(t, doc))
	assert.Contains(t, first, `<head rend="h3">Title</head>`)
	assert.Contains(t, first, `<list><item><ref href="intro" target="https://example.org/docs/intro">Intro</ref></item></list>`)
	assert.Contains(t, first, `<hi rend="#i">x</hi><del rend="overstrike">y</del>`)
	assert.Nil(t, htmlnorm.ConvertTags(nil, opts))
}

func TestCleanTreeWrapper(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, `<p>a<small>b</small><script>c()</script>d</p><table><tr><td>e</td></tr></table>`)
	htmlnorm.CleanTree(doc, false, false)

	out := mustRender(t, doc)
	assert.Contains(t, out, "<p>abd</p>")
	assert.NotContains(t, out, "<table")
}

func TestLinkDensityWrappers(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, `<p><ref target="/">Home</ref></p><p>Plenty of prose around a single <ref>link</ref> keeps this paragraph.</p>`)
	var ps []*htmlnorm.Node
	for n := findFirst(doc, "p"); n != nil; n = n.NextSibling {
		ps = append(ps, n)
	}
	require.Len(t, ps, 2)

	dense, texts := htmlnorm.LinkDensity(ps[0])
	assert.True(t, dense)
	assert.Equal(t, []string{"Home"}, texts)

	dense, _ = htmlnorm.LinkDensity(ps[1])
	assert.False(t, dense)

	rows := strings.Repeat(`<tr><td><ref>Section link</ref></td></tr>`, 30)
	table := findFirst(mustParse(t, `<table>`+rows+`</table>`), "table")
	assert.True(t, htmlnorm.LinkDensityTable(table))

	small := findFirst(mustParse(t, `<table><tr><td><ref>x</ref></td></tr></table>`), "table")
	assert.False(t, htmlnorm.LinkDensityTable(small))
}

func TestNewLeafFilter(t *testing.T) {
	t.Parallel()

	f := htmlnorm.NewLeafFilter(nil, nil, false)
	doc := mustParse(t, `<p>Pinterest</p><p>A real sentence.</p>`)
	share := findFirst(doc, "p")
	prose := share.NextSibling

	assert.Nil(t, f.Process(share))
	assert.Equal(t, htmlnorm.Rejected, f.States.Get(share))
	assert.Same(t, prose, f.Process(prose))
	assert.Equal(t, htmlnorm.Kept, f.States.Get(prose))
	assert.Equal(t, "kept", htmlnorm.Kept.String())
}

func TestNewLeafFilterWithDuplicates(t *testing.T) {
	t.Parallel()

	counter := htmlnorm.NewDuplicateCounter(10, 1, 16, 0)
	f := htmlnorm.NewLeafFilter(htmlnorm.RegexTextFilter{}, counter, true)

	var kept []bool
	for i := 0; i < 3; i++ {
		p := findFirst(mustParse(t, `<p>The same sentence again.</p>`), "p")
		kept = append(kept, f.Process(p) != nil)
	}
	assert.Equal(t, []bool{true, true, false}, kept)
	assert.Equal(t, 1, counter.Len())
}
