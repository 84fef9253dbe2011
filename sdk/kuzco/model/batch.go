package model

import (
	"unsafe"

	"github.com/hybridgroup/yzma/pkg/llama"
)

// tokenBatch is the padded, mask aligned form of one request. Every row
// shares a common width. Masked-off cells are padding: they exist so rows
// stay rectangular, and they are never handed to the runtime.
type tokenBatch struct {
	rows     [][]llama.Token
	mask     [][]bool
	realLens []int
	width    int
	tokens   int
}

// newTokenBatch pads the given rows to a common width and records the
// attention mask for each row.
func newTokenBatch(rows [][]llama.Token) tokenBatch {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	tb := tokenBatch{
		rows:     make([][]llama.Token, len(rows)),
		mask:     make([][]bool, len(rows)),
		realLens: make([]int, len(rows)),
		width:    width,
	}

	for i, row := range rows {
		padded := make([]llama.Token, width)
		mask := make([]bool, width)

		copy(padded, row)
		for j := range row {
			mask[j] = true
		}

		tb.rows[i] = padded
		tb.mask[i] = mask
		tb.realLens[i] = len(row)
		tb.tokens += len(row)
	}

	return tb
}

// truncateLongestFirst trims tokens from whichever side is currently longer
// until the combined length fits the budget. When both sides are equal the
// second side gives way, which keeps more of the query.
func truncateLongestFirst(a []llama.Token, b []llama.Token, budget int) ([]llama.Token, []llama.Token) {
	if budget < 0 {
		budget = 0
	}

	for len(a)+len(b) > budget {
		if len(a) > len(b) {
			a = a[:len(a)-1]
			continue
		}

		b = b[:len(b)-1]
	}

	return a, b
}

// truncateTail caps a single token sequence at the budget, cutting from the
// end.
func truncateTail(tokens []llama.Token, budget int) []llama.Token {
	if budget < 0 {
		budget = 0
	}

	if len(tokens) > budget {
		return tokens[:budget]
	}

	return tokens
}

// buildBatch lays every unmasked token of the request into one llama batch,
// one sequence per row, positions contiguous within each row. When outputAll
// is false only the final real token of each row requests output. The
// returned slice maps each row to the batch index of its final real token,
// which is where per-sequence logits are read back.
func buildBatch(tb tokenBatch, outputAll bool) (llama.Batch, []int32) {
	batch := llama.BatchInit(int32(tb.tokens), 0, int32(len(tb.rows)))

	lastIdx := make([]int32, len(tb.rows))

	for row := range tb.rows {
		var pos llama.Pos
		emitted := 0

		for col, token := range tb.rows[row] {
			if !tb.mask[row][col] {
				continue
			}

			emitted++
			last := emitted == tb.realLens[row]

			if last {
				lastIdx[row] = batch.NTokens
			}

			batchAdd(&batch, token, pos, []llama.SeqId{llama.SeqId(row)}, outputAll || last)
			pos++
		}
	}

	return batch, lastIdx
}

// rowBatchIndex returns the batch index of token j of the given row. Rows
// are laid into the batch contiguously in order, so the index is the sum of
// the real lengths of the rows before it plus the offset.
func (tb tokenBatch) rowBatchIndex(row int, j int) int32 {
	idx := 0
	for r := range row {
		idx += tb.realLens[r]
	}

	return int32(idx + j)
}

// =============================================================================
// Batch manipulation helpers

func batchAdd(batch *llama.Batch, token llama.Token, pos llama.Pos, seqIDs []llama.SeqId, logits bool) {
	i := batch.NTokens

	tokenPtr := (*llama.Token)(unsafe.Pointer(uintptr(unsafe.Pointer(batch.Token)) + uintptr(i)*unsafe.Sizeof(llama.Token(0))))
	*tokenPtr = token

	posPtr := (*llama.Pos)(unsafe.Pointer(uintptr(unsafe.Pointer(batch.Pos)) + uintptr(i)*unsafe.Sizeof(llama.Pos(0))))
	*posPtr = pos

	nSeqPtr := (*int32)(unsafe.Pointer(uintptr(unsafe.Pointer(batch.NSeqId)) + uintptr(i)*unsafe.Sizeof(int32(0))))
	*nSeqPtr = int32(len(seqIDs))

	seqIDPtrPtr := (**llama.SeqId)(unsafe.Pointer(uintptr(unsafe.Pointer(batch.SeqId)) + uintptr(i)*unsafe.Sizeof(uintptr(0))))
	if *seqIDPtrPtr != nil && len(seqIDs) > 0 {
		for j, sid := range seqIDs {
			seqPtr := (*llama.SeqId)(unsafe.Pointer(uintptr(unsafe.Pointer(*seqIDPtrPtr)) + uintptr(j)*unsafe.Sizeof(llama.SeqId(0))))
			*seqPtr = sid
		}
	}

	logitPtr := (*int8)(unsafe.Pointer(uintptr(unsafe.Pointer(batch.Logits)) + uintptr(i)*unsafe.Sizeof(int8(0))))
	if logits {
		*logitPtr = 1
	} else {
		*logitPtr = 0
	}

	batch.NTokens++
}
