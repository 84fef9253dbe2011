package model

import (
	"testing"

	"github.com/hybridgroup/yzma/pkg/llama"
)

func tokens(values ...int) []llama.Token {
	ts := make([]llama.Token, len(values))
	for i, v := range values {
		ts[i] = llama.Token(v)
	}
	return ts
}

func Test_NewTokenBatch(t *testing.T) {
	tb := newTokenBatch([][]llama.Token{
		tokens(1, 2, 3),
		tokens(4),
		tokens(5, 6),
	})

	if tb.width != 3 {
		t.Fatalf("expected width 3, got %d", tb.width)
	}

	if tb.tokens != 6 {
		t.Fatalf("expected 6 real tokens, got %d", tb.tokens)
	}

	for i, want := range []int{3, 1, 2} {
		if tb.realLens[i] != want {
			t.Fatalf("row %d: expected real length %d, got %d", i, want, tb.realLens[i])
		}

		if len(tb.rows[i]) != tb.width || len(tb.mask[i]) != tb.width {
			t.Fatalf("row %d: not padded to width %d", i, tb.width)
		}
	}

	if !tb.mask[1][0] || tb.mask[1][1] || tb.mask[1][2] {
		t.Fatalf("row 1: expected mask [true false false], got %v", tb.mask[1])
	}
}

func Test_RowBatchIndex(t *testing.T) {
	tb := newTokenBatch([][]llama.Token{
		tokens(1, 2, 3),
		tokens(4),
		tokens(5, 6),
	})

	if got := tb.rowBatchIndex(0, 0); got != 0 {
		t.Fatalf("row 0 token 0: expected index 0, got %d", got)
	}

	if got := tb.rowBatchIndex(1, 0); got != 3 {
		t.Fatalf("row 1 token 0: expected index 3, got %d", got)
	}

	if got := tb.rowBatchIndex(2, 1); got != 5 {
		t.Fatalf("row 2 token 1: expected index 5, got %d", got)
	}
}

func Test_TruncateLongestFirst(t *testing.T) {
	a, b := truncateLongestFirst(tokens(1, 2, 3, 4, 5, 6), tokens(7, 8), 4)

	if len(a)+len(b) != 4 {
		t.Fatalf("expected combined length 4, got %d", len(a)+len(b))
	}

	// The longer side gives ground first.
	if len(a) != 2 || len(b) != 2 {
		t.Fatalf("expected lengths [2 2], got [%d %d]", len(a), len(b))
	}

	if a[0] != 1 || a[1] != 2 || b[0] != 7 || b[1] != 8 {
		t.Fatalf("trimming changed the leading tokens: %v %v", a, b)
	}

	// Under budget stays untouched.
	a, b = truncateLongestFirst(tokens(1, 2), tokens(3), 10)
	if len(a) != 2 || len(b) != 1 {
		t.Fatalf("expected lengths [2 1], got [%d %d]", len(a), len(b))
	}
}

func Test_TruncateTail(t *testing.T) {
	got := truncateTail(tokens(1, 2, 3, 4), 2)
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("expected [1 2], got %v", got)
	}

	got = truncateTail(tokens(1, 2), 5)
	if len(got) != 2 {
		t.Fatalf("under budget should stay untouched, got %v", got)
	}

	got = truncateTail(tokens(1, 2), 0)
	if len(got) != 0 {
		t.Fatalf("zero budget should empty the sequence, got %v", got)
	}
}
