package model

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ardanlabs/kuzco/sdk/kuzco/observ/metrics"
	"github.com/hybridgroup/yzma/pkg/llama"
)

// Rerank scores every document against the query in a single forward pass
// and returns one probability per document, in input order. The score math
// depends on the model kind: cross-encoder models reduce each pair to a
// relevance logit squashed through a sigmoid, causal judge models read the
// yes/no log-odds at the final position.
func (m *Model) Rerank(ctx context.Context, rr RerankRequest) (RerankResponse, error) {
	if err := validateRerank(rr); err != nil {
		return RerankResponse{}, err
	}

	if len(rr.Documents) == 0 {
		return NewRerankResponse(m.modelInfo.ID, nil, Usage{}), nil
	}

	now := time.Now()

	var resp RerankResponse
	var err error

	switch m.cfg.Kind {
	case KindRerank:
		resp, err = m.rerankCross(ctx, rr)

	case KindRerankCausal:
		resp, err = m.rerankCausal(ctx, rr)

	default:
		return RerankResponse{}, fmt.Errorf("rerank: model kind %q doesn't support reranking", m.cfg.Kind)
	}

	if err != nil {
		return RerankResponse{}, err
	}

	if len(resp.Scores) != len(rr.Documents) {
		return RerankResponse{}, &ShapeError{Op: "rerank", Want: len(rr.Documents), Got: len(resp.Scores)}
	}

	metrics.AddRerank(len(rr.Documents), time.Since(now))

	return resp, nil
}

func validateRerank(rr RerankRequest) error {
	if strings.TrimSpace(rr.Query) == "" {
		return &ValidationError{Field: "query", Reason: "must not be empty"}
	}

	return nil
}

// rerankCross scores (query, document) pairs with a cross-encoder. The
// context runs rank pooling, so each sequence collapses to a single
// relevance logit read back per sequence id.
func (m *Model) rerankCross(ctx context.Context, rr RerankRequest) (RerankResponse, error) {
	rows := make([][]llama.Token, len(rr.Documents))

	for i, doc := range rr.Documents {
		query := llama.Tokenize(m.vocab, rr.Query, true, true)
		document := llama.Tokenize(m.vocab, doc, false, true)

		query, document = truncateLongestFirst(query, document, m.cfg.MaxSequenceLength)
		rows[i] = append(query, document...)
	}

	tb := newTokenBatch(rows)

	m.log(ctx, "rerank", "kind", m.cfg.Kind, "documents", len(rows), "tokens", tb.tokens, "width", tb.width)

	// -------------------------------------------------------------------------

	lctx, err := llama.InitFromModel(m.model, m.ctxParams)
	if err != nil {
		return RerankResponse{}, fmt.Errorf("rerank: unable to init from model: %w", err)
	}

	defer func() {
		llama.Synchronize(lctx)
		llama.Free(lctx)
	}()

	select {
	case <-ctx.Done():
		return RerankResponse{}, ctx.Err()

	default:
	}

	batch, _ := buildBatch(tb, false)
	defer llama.BatchFree(batch)

	if ret, err := llama.Decode(lctx, batch); err != nil || ret != 0 {
		return RerankResponse{}, fmt.Errorf("rerank: decode failed: ret %d: %w", ret, err)
	}

	// -------------------------------------------------------------------------

	scores := make([]float32, len(rows))

	for i := range rows {
		vec, err := llama.GetEmbeddingsSeq(lctx, llama.SeqId(i), 1)
		if err != nil {
			return RerankResponse{}, fmt.Errorf("rerank: unable to get logit for sequence %d: %w", i, err)
		}

		if len(vec) != 1 {
			return RerankResponse{}, &ShapeError{Op: "rerank: sequence logit", Want: 1, Got: len(vec)}
		}

		scores[i] = sigmoid(vec[0])
	}

	usage := Usage{
		PromptTokens: tb.tokens,
		TotalTokens:  tb.tokens,
	}

	return NewRerankResponse(m.modelInfo.ID, scores, usage), nil
}
