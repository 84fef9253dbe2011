// Package catalog describes the rerank and embed models kuzco knows how to
// serve and where their weight artifacts live.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNotFound indicates the requested model id is not in the catalog.
var ErrNotFound = errors.New("model not in catalog")

// Entry describes one model: its identity, scoring kind, and the locations
// of the full precision and quantized weight artifacts.
type Entry struct {
	ID                string `yaml:"id"`
	Kind              string `yaml:"kind"`
	URL               string `yaml:"url"`
	QuantizedURL      string `yaml:"quantized_url,omitempty"`
	ContextWindow     int    `yaml:"context_window,omitempty"`
	MaxSequenceLength int    `yaml:"max_sequence_length,omitempty"`
	Instruction       string `yaml:"instruction,omitempty"`
}

// ResolveURL picks the weight artifact for the requested precision. Asking
// for quantized weights when the entry has none falls back to the full
// precision artifact.
func (e Entry) ResolveURL(quantized bool) string {
	if quantized && e.QuantizedURL != "" {
		return e.QuantizedURL
	}

	return e.URL
}

// Catalog manages the set of known models.
type Catalog struct {
	entries map[string]Entry
}

// Default returns the built-in catalog.
func Default() *Catalog {
	entries := []Entry{
		{
			ID:                "bge-reranker-v2-m3",
			Kind:              "rerank",
			URL:               "https://huggingface.co/gpustack/bge-reranker-v2-m3-GGUF/resolve/main/bge-reranker-v2-m3-FP16.gguf",
			QuantizedURL:      "https://huggingface.co/gpustack/bge-reranker-v2-m3-GGUF/resolve/main/bge-reranker-v2-m3-Q8_0.gguf",
			MaxSequenceLength: 512,
		},
		{
			ID:                "qwen3-reranker-0.6b",
			Kind:              "rerank-causal",
			URL:               "https://huggingface.co/Mungert/Qwen3-Reranker-0.6B-GGUF/resolve/main/Qwen3-Reranker-0.6B-f16.gguf",
			QuantizedURL:      "https://huggingface.co/Mungert/Qwen3-Reranker-0.6B-GGUF/resolve/main/Qwen3-Reranker-0.6B-q8_0.gguf",
			MaxSequenceLength: 8192,
		},
		{
			ID:                "bge-small-en-v1.5",
			Kind:              "embed",
			URL:               "https://huggingface.co/CompendiumLabs/bge-small-en-v1.5-gguf/resolve/main/bge-small-en-v1.5-f16.gguf",
			QuantizedURL:      "https://huggingface.co/CompendiumLabs/bge-small-en-v1.5-gguf/resolve/main/bge-small-en-v1.5-q8_0.gguf",
			MaxSequenceLength: 512,
		},
	}

	c := Catalog{
		entries: make(map[string]Entry, len(entries)),
	}

	for _, e := range entries {
		c.entries[strings.ToLower(e.ID)] = e
	}

	return &c
}

// Load reads a YAML catalog file and overlays its entries on the built-in
// catalog. File entries win on id collisions.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load-catalog: reading %q: %w", path, err)
	}

	return Parse(data)
}

// Parse overlays YAML catalog entries on the built-in catalog.
func Parse(data []byte) (*Catalog, error) {
	var entries []Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse-catalog: %w", err)
	}

	c := Default()

	for _, e := range entries {
		if e.ID == "" {
			return nil, fmt.Errorf("parse-catalog: entry with empty id")
		}

		if e.URL == "" {
			return nil, fmt.Errorf("parse-catalog: entry %q has no url", e.ID)
		}

		c.entries[strings.ToLower(e.ID)] = e
	}

	return c, nil
}

// Retrieve looks up an entry by id. Ids are matched case-insensitively.
func (c *Catalog) Retrieve(id string) (Entry, error) {
	e, exists := c.entries[strings.ToLower(id)]
	if !exists {
		return Entry{}, fmt.Errorf("retrieve: model %q: %w", id, ErrNotFound)
	}

	return e, nil
}

// IDs returns the catalog's model ids in sorted order.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}
