package model

import (
	"strings"
	"testing"
)

func Test_RenderJudgePrompt(t *testing.T) {
	got, err := renderJudgePrompt(DefaultInstruction, "What is the capital of China?", "Beijing is the capital of China.")
	if err != nil {
		t.Fatalf("rendering prompt: %s", err)
	}

	want := "<Instruct>: Given a web search query, retrieve relevant passages that answer the query\n<Query>: What is the capital of China?\n<Document>: Beijing is the capital of China."
	if got != want {
		t.Fatalf("rendered prompt mismatch:\ngot:  %q\nwant: %q", got, want)
	}
}

func Test_JudgeScaffolding(t *testing.T) {
	wantPrefix := "<|im_start|>system\nJudge whether the Document meets the requirements based on the Query and the Instruct provided. Note that the answer can only be \"yes\" or \"no\".<|im_end|>\n<|im_start|>user\n"
	if judgePrefix != wantPrefix {
		t.Fatalf("prefix mismatch:\ngot:  %q\nwant: %q", judgePrefix, wantPrefix)
	}

	wantSuffix := "<|im_end|>\n<|im_start|>assistant\n<think>\n\n</think>\n\n"
	if judgeSuffix != wantSuffix {
		t.Fatalf("suffix mismatch:\ngot:  %q\nwant: %q", judgeSuffix, wantSuffix)
	}

	if !strings.HasSuffix(judgeSuffix, "</think>\n\n") {
		t.Fatalf("suffix must end after the empty think block so the next token is the judgment")
	}
}
