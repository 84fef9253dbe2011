package cache

import (
	"testing"

	"github.com/ardanlabs/kuzco/sdk/kuzco"
	"github.com/maypok86/otter/v2"
)

func Test_ModelStatusReportsLoading(t *testing.T) {
	opt := otter.Options[string, *kuzco.Kuzco]{
		MaximumSize: 3,
	}

	oc, err := otter.New(&opt)
	if err != nil {
		t.Fatalf("constructing cache: %s", err)
	}

	c := Cache{cache: oc}

	// A model whose weights are still being resolved shows up in the status
	// as not ready, even though it hasn't reached the cache yet.
	c.loading.Store("big-reranker", "rerank")

	details := c.ModelStatus()
	if len(details) != 1 {
		t.Fatalf("expected 1 model in the status, got %d", len(details))
	}

	d := details[0]
	if d.ID != "big-reranker" || d.Kind != "rerank" {
		t.Fatalf("unexpected detail: %+v", d)
	}

	if d.Ready {
		t.Fatalf("a model mid-load must not report ready")
	}

	// Once the load finishes the in-flight entry is gone.
	c.loading.Delete("big-reranker")

	if details := c.ModelStatus(); len(details) != 0 {
		t.Fatalf("expected an empty status, got %d models", len(details))
	}
}
