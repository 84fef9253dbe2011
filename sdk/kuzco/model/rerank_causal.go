package model

import (
	"context"
	"fmt"

	"github.com/hybridgroup/yzma/pkg/llama"
)

// rerankCausal scores (query, document) pairs by asking an instruction tuned
// causal model to judge each pair and reading the yes/no log-odds from the
// logits at the final prompt position. exp(logsoftmax(yes)) over the two
// answer logits is the relevance probability.
func (m *Model) rerankCausal(ctx context.Context, rr RerankRequest) (RerankResponse, error) {
	instruction := rr.Instruction
	if instruction == "" {
		instruction = m.cfg.Instruction
	}

	// The scaffolding is never trimmed. It primes the yes/no answer and
	// cutting it would move the judgment position.
	budget := m.cfg.MaxSequenceLength - len(m.prefixTokens) - len(m.suffixTokens)
	if budget < 1 {
		return RerankResponse{}, fmt.Errorf("rerank-causal: max sequence length %d leaves no room for input", m.cfg.MaxSequenceLength)
	}

	rows := make([][]llama.Token, len(rr.Documents))

	for i, doc := range rr.Documents {
		body, err := renderJudgePrompt(instruction, rr.Query, doc)
		if err != nil {
			return RerankResponse{}, fmt.Errorf("rerank-causal: %w", err)
		}

		bodyTokens := truncateTail(llama.Tokenize(m.vocab, body, false, true), budget)

		row := make([]llama.Token, 0, len(m.prefixTokens)+len(bodyTokens)+len(m.suffixTokens))
		row = append(row, m.prefixTokens...)
		row = append(row, bodyTokens...)
		row = append(row, m.suffixTokens...)

		rows[i] = row
	}

	tb := newTokenBatch(rows)

	m.log(ctx, "rerank", "kind", m.cfg.Kind, "documents", len(rows), "tokens", tb.tokens, "width", tb.width)

	// -------------------------------------------------------------------------

	lctx, err := llama.InitFromModel(m.model, m.ctxParams)
	if err != nil {
		return RerankResponse{}, fmt.Errorf("rerank-causal: unable to init from model: %w", err)
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

	batch, lastIdx := buildBatch(tb, false)
	defer llama.BatchFree(batch)

	if ret, err := llama.Decode(lctx, batch); err != nil || ret != 0 {
		return RerankResponse{}, fmt.Errorf("rerank-causal: decode failed: ret %d: %w", ret, err)
	}

	// -------------------------------------------------------------------------

	nVocab := llama.VocabNTokens(m.vocab)
	scores := make([]float32, len(rows))

	for i := range rows {
		logits, err := llama.GetLogitsIth(lctx, lastIdx[i], int(nVocab))
		if err != nil {
			return RerankResponse{}, fmt.Errorf("rerank-causal: unable to get logits for sequence %d: %w", i, err)
		}

		if int(m.yesToken) >= len(logits) || int(m.noToken) >= len(logits) {
			return RerankResponse{}, &ShapeError{Op: "rerank-causal: logits", Want: int(nVocab), Got: len(logits)}
		}

		scores[i] = yesProbability(logits[m.noToken], logits[m.yesToken])
	}

	usage := Usage{
		PromptTokens: tb.tokens,
		TotalTokens:  tb.tokens,
	}

	return NewRerankResponse(m.modelInfo.ID, scores, usage), nil
}
