package internal

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestIsUnwantedText(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Instagram", true},
		{"\t\t", true},
		{"", true},
		{"Test Text", false},
		{"» Facebook", true},
		{"Mehr zum Thema:", true},
		{"More on this topic", true},
		{"Read more on Facebook about this", false},
		{"First line\nTwitter", true},
		{"E-Mail", true},
		{"print this", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsUnwantedText(tt.text), "text %q", tt.text)
	}
}

func TestRegexTextFilter_FallsBackToTail(t *testing.T) {
	doc := parseHTML(t, `<div><p></p>Pinterest<p>Regular text</p>tail</div>`)
	ps := ElementsByTag(doc, "p")
	require.Len(t, ps, 2)

	var filter RegexTextFilter
	unwanted, err := filter.Unwanted(ps[0])
	require.NoError(t, err)
	assert.True(t, unwanted)

	unwanted, err = filter.Unwanted(ps[1])
	require.NoError(t, err)
	assert.False(t, unwanted)
}

func TestDuplicateCounter(t *testing.T) {
	long := strings.Repeat("repeated boilerplate sentence ", 5)
	counter := NewDuplicateCounter(DefaultMinDuplicateCheckSize, DefaultMaxRepetitions, 2, 0)

	var got []bool
	for i := 0; i < 5; i++ {
		p := findFirst(parseHTML(t, `<p>`+long+`</p>`), "p")
		dup, err := counter.Duplicate(p)
		require.NoError(t, err)
		got = append(got, dup)
	}
	assert.Equal(t, []bool{false, false, false, true, true}, got)
	assert.Equal(t, 1, counter.Len())

	counter.Clear()
	p := findFirst(parseHTML(t, `<p>`+long+`</p>`), "p")
	dup, _ := counter.Duplicate(p)
	assert.False(t, dup, "Clear() resets the counts")
}

func TestDuplicateCounter_ShortTextNeverCounted(t *testing.T) {
	counter := NewDuplicateCounter(DefaultMinDuplicateCheckSize, DefaultMaxRepetitions, 10, 0)
	p := findFirst(parseHTML(t, `<p>short text</p>`), "p")

	for i := 0; i < 10; i++ {
		dup, err := counter.Duplicate(p)
		require.NoError(t, err)
		assert.False(t, dup)
	}
	assert.Zero(t, counter.Len())
}

func TestDuplicateCounter_JoinsNestedText(t *testing.T) {
	counter := NewDuplicateCounter(10, 0, 10, 0)
	a := findFirst(parseHTML(t, `<p>alpha <hi>beta</hi> gamma delta</p>`), "p")
	b := findFirst(parseHTML(t, `<p>alpha   beta <hi>gamma</hi> delta</p>`), "p")

	first, _ := counter.Duplicate(a)
	second, _ := counter.Duplicate(b)

	assert.False(t, first)
	assert.True(t, second, "whitespace and markup differences do not hide a repeat")
}

func TestDuplicateCounter_Concurrent(t *testing.T) {
	long := strings.Repeat("x", 200)
	counter := NewDuplicateCounter(DefaultMinDuplicateCheckSize, DefaultMaxRepetitions, 10, 0)

	const workers = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		flagged int
	)
	nodes := make([]*html.Node, workers)
	for i := range nodes {
		nodes[i] = findFirst(parseHTML(t, `<p>`+long+`</p>`), "p")
	}
	wg.Add(workers)
	for _, p := range nodes {
		go func(p *html.Node) {
			defer wg.Done()
			if dup, _ := counter.Duplicate(p); dup {
				mu.Lock()
				flagged++
				mu.Unlock()
			}
		}(p)
	}
	wg.Wait()

	assert.Equal(t, workers-DefaultMaxRepetitions-1, flagged)
}
