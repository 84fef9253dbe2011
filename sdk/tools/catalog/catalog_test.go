package catalog_test

import (
	"errors"
	"testing"

	"github.com/ardanlabs/kuzco/sdk/tools/catalog"
)

func Test_Default(t *testing.T) {
	c := catalog.Default()

	for _, id := range []string{"bge-reranker-v2-m3", "qwen3-reranker-0.6b", "bge-small-en-v1.5"} {
		e, err := c.Retrieve(id)
		if err != nil {
			t.Fatalf("retrieving %q: %s", id, err)
		}

		if e.URL == "" {
			t.Fatalf("entry %q has no url", id)
		}
	}

	if _, err := c.Retrieve("no-such-model"); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for an unknown id, got %v", err)
	}
}

func Test_RetrieveCaseInsensitive(t *testing.T) {
	data := []byte(`
- id: My-Reranker
  kind: rerank
  url: https://example.com/my-reranker-f16.gguf
`)

	c, err := catalog.Parse(data)
	if err != nil {
		t.Fatalf("parsing catalog: %s", err)
	}

	// Ids match regardless of the casing used in the file or the request.
	for _, id := range []string{"My-Reranker", "my-reranker", "MY-RERANKER"} {
		if _, err := c.Retrieve(id); err != nil {
			t.Fatalf("retrieving %q: %s", id, err)
		}
	}

	if _, err := c.Retrieve("BGE-Small-EN-v1.5"); err != nil {
		t.Fatalf("retrieving a built-in by mixed case: %s", err)
	}
}

func Test_Parse(t *testing.T) {
	data := []byte(`
- id: my-reranker
  kind: rerank
  url: https://example.com/my-reranker-f16.gguf
  quantized_url: https://example.com/my-reranker-q8_0.gguf
  max_sequence_length: 256
- id: bge-small-en-v1.5
  kind: embed
  url: https://example.com/override.gguf
`)

	c, err := catalog.Parse(data)
	if err != nil {
		t.Fatalf("parsing catalog: %s", err)
	}

	e, err := c.Retrieve("my-reranker")
	if err != nil {
		t.Fatalf("retrieving new entry: %s", err)
	}

	if e.MaxSequenceLength != 256 {
		t.Fatalf("expected max sequence length 256, got %d", e.MaxSequenceLength)
	}

	// File entries override built-ins on id collisions.
	o, err := c.Retrieve("bge-small-en-v1.5")
	if err != nil {
		t.Fatalf("retrieving overridden entry: %s", err)
	}

	if o.URL != "https://example.com/override.gguf" {
		t.Fatalf("expected override url, got %q", o.URL)
	}
}

func Test_ParseRejectsBadEntries(t *testing.T) {
	if _, err := catalog.Parse([]byte("- kind: rerank\n  url: https://example.com/x.gguf\n")); err == nil {
		t.Fatalf("expected an error for an entry with no id")
	}

	if _, err := catalog.Parse([]byte("- id: x\n  kind: rerank\n")); err == nil {
		t.Fatalf("expected an error for an entry with no url")
	}
}

func Test_ResolveURL(t *testing.T) {
	e := catalog.Entry{
		URL:          "https://example.com/full.gguf",
		QuantizedURL: "https://example.com/q8.gguf",
	}

	if got := e.ResolveURL(true); got != "https://example.com/q8.gguf" {
		t.Fatalf("expected the quantized artifact, got %q", got)
	}

	if got := e.ResolveURL(false); got != "https://example.com/full.gguf" {
		t.Fatalf("expected the full precision artifact, got %q", got)
	}

	e.QuantizedURL = ""
	if got := e.ResolveURL(true); got != "https://example.com/full.gguf" {
		t.Fatalf("expected fallback to full precision, got %q", got)
	}
}
