package model

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/hybridgroup/yzma/pkg/llama"
)

// Kind identifies how a loaded model scores or encodes its inputs. Each kind
// carries its own scoring pipeline and they never share code paths for the
// score math.
type Kind string

// Set of supported model kinds.
const (
	KindRerank       Kind = "rerank"        // cross-encoder with a relevance head
	KindRerankCausal Kind = "rerank-causal" // causal LM judged on yes/no next-token odds
	KindEmbed        Kind = "embed"         // bi-encoder producing dense vectors
)

// ParseKind converts a raw string into a Kind.
func ParseKind(value string) (Kind, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(value)))

	switch kind {
	case KindRerank, KindRerankCausal, KindEmbed:
		return kind, nil
	}

	return "", fmt.Errorf("parse-kind: unknown model kind %q", value)
}

// Logger represents a function for logging events.
type Logger func(ctx context.Context, msg string, args ...any)

// Set of default values applied when config fields are zero.
const (
	defContextWindow    = 4096
	defNUBatch          = 512
	defMaxSeqLenRerank  = 512
	defMaxSeqLenCausal  = 8192
	defMaxSeqLenEmbed   = 512
)

// Config represents settings for loading a model. ModelFile and Kind are
// required. Everything else is optional and will be adjusted after the
// weights load, using the model's own metadata for defaults.
//
// Quantized records that the resolved weight artifact carries quantized
// tensors. Quantization trades a small, bounded loss of score precision for
// lower memory use and latency; the flag is carried on ModelInfo so callers
// can tell which artifact produced their scores.
type Config struct {
	Log               Logger
	ModelFile         string // Path to the GGUF weights. Required.
	Kind              Kind   // Scoring behavior. Required.
	Device            string // GGML device name. Empty means default device.
	ContextWindow     int    // Max context. Defaults from model metadata.
	NBatch            int    // Max tokens per decode call. Defaults to ContextWindow.
	NUBatch           int    // Max tokens per physical micro-batch.
	NThreads          int    // Threads for generation.
	NThreadsBatch     int    // Threads for batch processing.
	MaxSequenceLength int    // Token budget per input row. Defaults per Kind.
	Instruction       string // Relevance instruction for the causal kind.
	Quantized         bool   // The weights artifact is quantized.
}

func validateConfig(cfg Config) error {
	if cfg.ModelFile == "" {
		return fmt.Errorf("validate-config: no model file provided")
	}

	if _, err := ParseKind(string(cfg.Kind)); err != nil {
		return fmt.Errorf("validate-config: %w", err)
	}

	return nil
}

// adjustConfig fills the zero valued fields of the config with defaults
// pulled from the loaded model's metadata.
func adjustConfig(cfg Config, model llama.Model) Config {
	if cfg.Log == nil {
		cfg.Log = func(ctx context.Context, msg string, args ...any) {}
	}

	if cfg.ContextWindow <= 0 {
		cfg.ContextWindow = modelContextWindow(model)
	}

	if cfg.NBatch <= 0 {
		cfg.NBatch = cfg.ContextWindow
	}

	if cfg.NUBatch <= 0 {
		cfg.NUBatch = defNUBatch
	}

	if cfg.NUBatch > cfg.NBatch {
		cfg.NUBatch = cfg.NBatch
	}

	if cfg.MaxSequenceLength <= 0 {
		switch cfg.Kind {
		case KindRerankCausal:
			cfg.MaxSequenceLength = defMaxSeqLenCausal

		case KindEmbed:
			cfg.MaxSequenceLength = defMaxSeqLenEmbed

		default:
			cfg.MaxSequenceLength = defMaxSeqLenRerank
		}
	}

	if cfg.MaxSequenceLength > cfg.ContextWindow {
		cfg.MaxSequenceLength = cfg.ContextWindow
	}

	if cfg.Kind == KindRerankCausal && cfg.Instruction == "" {
		cfg.Instruction = DefaultInstruction
	}

	return cfg
}

// modelContextWindow reads the model's trained context length from its
// metadata, falling back to a conservative default when absent.
func modelContextWindow(model llama.Model) int {
	value, found := searchModelMeta(model, "context_length")
	if !found {
		return defContextWindow
	}

	ctxLen, err := strconv.Atoi(value)
	if err != nil || ctxLen <= 0 {
		return defContextWindow
	}

	return ctxLen
}

// modelCtxParams builds the llama context parameters for the given kind.
// The cross-encoder needs rank pooling so the runtime reduces each sequence
// to its relevance logit. The embedder keeps pooling off because the mean
// pooling happens on our side of the boundary, against the attention mask.
func modelCtxParams(cfg Config) llama.ContextParams {
	ctxParams := llama.ContextDefaultParams()

	ctxParams.NCtx = uint32(cfg.ContextWindow)
	ctxParams.NBatch = uint32(cfg.NBatch)
	ctxParams.NUbatch = uint32(cfg.NUBatch)

	if cfg.NThreads > 0 {
		ctxParams.NThreads = int32(cfg.NThreads)
	}

	if cfg.NThreadsBatch > 0 {
		ctxParams.NThreadsBatch = int32(cfg.NThreadsBatch)
	}

	switch cfg.Kind {
	case KindRerank:
		ctxParams.Embeddings = 1
		ctxParams.PoolingType = llama.PoolingTypeRank

	case KindEmbed:
		ctxParams.Embeddings = 1
		ctxParams.PoolingType = llama.PoolingTypeNone
	}

	return ctxParams
}

func searchModelMeta(model llama.Model, find string) (string, bool) {
	count := llama.ModelMetaCount(model)

	for i := range count {
		key, ok := llama.ModelMetaKeyByIndex(model, i)
		if !ok {
			continue
		}

		if strings.Contains(key, find) {
			value, ok := llama.ModelMetaValStrByIndex(model, i)
			if !ok {
				continue
			}

			return value, true
		}
	}

	return "", false
}
