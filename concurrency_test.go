package htmlnorm_test

// concurrency_test.go - concurrent processing, batch and shared dedup state

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/cybergodev/htmlnorm"
	"golang.org/x/net/html"
)

// TestConcurrentProcess tests that multiple goroutines can safely share a processor
func TestConcurrentProcess(t *testing.T) {
	t.Parallel()

	p := htmlnorm.NewWithDefaults()
	defer p.Close()

	const numGoroutines = 50
	const iterationsPerGoroutine = 5

	var wg sync.WaitGroup
	errs := make(chan error, numGoroutines*iterationsPerGoroutine)

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < iterationsPerGoroutine; j++ {
				doc, err := htmlnorm.Parse([]byte(articleHTML))
				if err != nil {
					errs <- fmt.Errorf("goroutine %d iteration %d: %w", id, j, err)
					return
				}
				result, err := p.Process(doc)
				if err != nil {
					errs <- fmt.Errorf("goroutine %d iteration %d: %w", id, j, err)
					return
				}
				if result.Kept != 3 {
					errs <- fmt.Errorf("goroutine %d iteration %d: kept %d", id, j, result.Kept)
					return
				}
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Concurrent process error: %v", err)
	}

	if stats := p.GetStatistics(); stats.TotalProcessed != numGoroutines*iterationsPerGoroutine {
		t.Errorf("TotalProcessed = %d, want %d", stats.TotalProcessed, numGoroutines*iterationsPerGoroutine)
	}
}

// TestConcurrentDeduplication tests that the duplicate counter is shared across goroutines
func TestConcurrentDeduplication(t *testing.T) {
	t.Parallel()

	cfg := htmlnorm.DefaultConfig()
	cfg.Deduplicate = true
	p, err := htmlnorm.New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	const numGoroutines = 20
	page := "<p>" + strings.Repeat("Subscribe to our weekly digest for more stories. ", 4) + "</p>"
	docs := make([]*html.Node, numGoroutines)
	for i := range docs {
		docs[i] = mustParse(t, page)
	}

	var rejected atomic.Int64
	var wg sync.WaitGroup
	for _, doc := range docs {
		wg.Add(1)
		go func(doc *html.Node) {
			defer wg.Done()
			result, err := p.Process(doc)
			if err != nil {
				t.Errorf("Process() failed: %v", err)
				return
			}
			rejected.Add(int64(result.Rejected))
		}(doc)
	}
	wg.Wait()

	want := int64(numGoroutines - htmlnorm.DefaultMaxRepetitions - 1)
	if got := rejected.Load(); got != want {
		t.Errorf("rejected %d repeats, want %d", got, want)
	}
}

func TestProcessBatch(t *testing.T) {
	t.Parallel()

	cfg := htmlnorm.DefaultConfig()
	cfg.WorkerPoolSize = 3
	p, err := htmlnorm.New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	docs := make([]*html.Node, 20)
	for i := range docs {
		docs[i] = mustParse(t, articleHTML)
	}

	results, err := p.ProcessBatch(docs)
	if err != nil {
		t.Fatalf("ProcessBatch() failed: %v", err)
	}
	if len(results) != len(docs) {
		t.Fatalf("got %d results, want %d", len(results), len(docs))
	}
	for i, r := range results {
		if r == nil || r.Root != docs[i] {
			t.Errorf("result %d does not belong to tree %d", i, i)
		}
	}

	empty, err := p.ProcessBatch(nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("ProcessBatch(nil) = %v, %v", empty, err)
	}
}

func TestProcessBatchFailures(t *testing.T) {
	t.Parallel()

	p := htmlnorm.NewWithDefaults()
	defer p.Close()

	t.Run("partial failure", func(t *testing.T) {
		docs := []*html.Node{mustParse(t, "<p>one</p>"), nil, mustParse(t, "<p>three</p>")}
		results, err := p.ProcessBatch(docs)
		if !errors.Is(err, htmlnorm.ErrNilTree) {
			t.Fatalf("ProcessBatch() error = %v, want ErrNilTree", err)
		}
		if !strings.Contains(err.Error(), "partial failure (2/3 succeeded)") || !strings.Contains(err.Error(), "tree 1") {
			t.Errorf("unexpected error message: %v", err)
		}
		if results[0] == nil || results[1] != nil || results[2] == nil {
			t.Errorf("unexpected results: %v", results)
		}
	})

	t.Run("all failed", func(t *testing.T) {
		_, err := p.ProcessBatch([]*html.Node{nil, nil})
		if err == nil || !strings.Contains(err.Error(), "all 2 trees failed") {
			t.Errorf("ProcessBatch() error = %v", err)
		}
	})
}
