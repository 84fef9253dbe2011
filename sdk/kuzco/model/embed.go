package model

import (
	"context"
	"fmt"
	"time"

	"github.com/ardanlabs/kuzco/sdk/kuzco/observ/metrics"
	"github.com/hybridgroup/yzma/pkg/llama"
)

// Embeddings encodes every text in a single forward pass and returns one
// unit-norm vector per text, in input order. Pooling happens on this side of
// the runtime boundary: per-token states are averaged against the attention
// mask so padding never leaks into a vector, then L2 normalized.
func (m *Model) Embeddings(ctx context.Context, er EmbedRequest) (EmbedResponse, error) {
	if m.cfg.Kind != KindEmbed {
		return EmbedResponse{}, fmt.Errorf("embeddings: model kind %q doesn't support embedding", m.cfg.Kind)
	}

	if len(er.Texts) == 0 {
		return NewEmbedResponse(m.modelInfo.ID, nil, 0, Usage{}), nil
	}

	now := time.Now()

	rows := make([][]llama.Token, len(er.Texts))
	for i, text := range er.Texts {
		rows[i] = truncateTail(llama.Tokenize(m.vocab, text, true, true), m.cfg.MaxSequenceLength)
	}

	tb := newTokenBatch(rows)

	m.log(ctx, "embeddings", "texts", len(rows), "tokens", tb.tokens, "width", tb.width)

	// -------------------------------------------------------------------------

	lctx, err := llama.InitFromModel(m.model, m.ctxParams)
	if err != nil {
		return EmbedResponse{}, fmt.Errorf("embeddings: unable to init from model: %w", err)
	}

	defer func() {
		llama.Synchronize(lctx)
		llama.Free(lctx)
	}()

	select {
	case <-ctx.Done():
		return EmbedResponse{}, ctx.Err()

	default:
	}

	// Every real token requests output since the pooling needs all of them.
	batch, _ := buildBatch(tb, true)
	defer llama.BatchFree(batch)

	if ret, err := llama.Decode(lctx, batch); err != nil || ret != 0 {
		return EmbedResponse{}, fmt.Errorf("embeddings: decode failed: ret %d: %w", ret, err)
	}

	// -------------------------------------------------------------------------

	dimensions := m.modelInfo.Dimensions
	data := make([]EmbedData, len(rows))

	for row := range rows {
		vecs := make([][]float32, tb.width)

		for j := range tb.realLens[row] {
			rawVec, err := llama.GetEmbeddingsIth(lctx, tb.rowBatchIndex(row, j), int32(dimensions))
			if err != nil {
				return EmbedResponse{}, fmt.Errorf("embeddings: unable to get token state %d of text %d: %w", j, row, err)
			}

			if len(rawVec) != dimensions {
				return EmbedResponse{}, &ShapeError{Op: "embeddings: token state", Want: dimensions, Got: len(rawVec)}
			}

			// The buffer is reused by the runtime, copy before the next read.
			vec := make([]float32, dimensions)
			copy(vec, rawVec)
			vecs[j] = vec
		}

		pooled := meanPool(vecs, tb.mask[row], dimensions)

		data[row] = EmbedData{
			Object:    ObjectEmbedding,
			Index:     row,
			Embedding: l2Normalize(pooled),
		}
	}

	if len(data) != len(er.Texts) {
		return EmbedResponse{}, &ShapeError{Op: "embeddings", Want: len(er.Texts), Got: len(data)}
	}

	metrics.AddEmbeddings(len(er.Texts), time.Since(now))

	usage := Usage{
		PromptTokens: tb.tokens,
		TotalTokens:  tb.tokens,
	}

	return NewEmbedResponse(m.modelInfo.ID, data, dimensions, usage), nil
}
