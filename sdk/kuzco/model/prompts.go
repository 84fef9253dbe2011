package model

import (
	"fmt"
	"sync"

	"github.com/nikolalohinski/gonja/v2"
	"github.com/nikolalohinski/gonja/v2/exec"
)

// DefaultInstruction is used by the causal judge when a request carries no
// instruction of its own.
const DefaultInstruction = "Given a web search query, retrieve relevant passages that answer the query"

// Chat scaffolding for the yes/no judgment. The model is primed so its next
// token is a bare yes or no. These strings are load bearing and must match
// the model card byte for byte, including the empty think block.
const (
	judgePrefix = "<|im_start|>system\nJudge whether the Document meets the requirements based on the Query and the Instruct provided. Note that the answer can only be \"yes\" or \"no\".<|im_end|>\n<|im_start|>user\n"
	judgeSuffix = "<|im_end|>\n<|im_start|>assistant\n<think>\n\n</think>\n\n"
)

const judgeTemplate = "<Instruct>: {{ instruction }}\n<Query>: {{ query }}\n<Document>: {{ document }}"

var (
	judgeOnce sync.Once
	judgeTmpl *exec.Template
	judgeErr  error
)

// renderJudgePrompt produces the user-visible body of a causal judgment, to
// be wrapped between judgePrefix and judgeSuffix.
func renderJudgePrompt(instruction string, query string, document string) (string, error) {
	judgeOnce.Do(func() {
		judgeTmpl, judgeErr = gonja.FromString(judgeTemplate)
	})

	if judgeErr != nil {
		return "", fmt.Errorf("render-judge-prompt: parsing template: %w", judgeErr)
	}

	data := exec.NewContext(map[string]any{
		"instruction": instruction,
		"query":       query,
		"document":    document,
	})

	prompt, err := judgeTmpl.ExecuteToString(data)
	if err != nil {
		return "", fmt.Errorf("render-judge-prompt: executing template: %w", err)
	}

	return prompt, nil
}
