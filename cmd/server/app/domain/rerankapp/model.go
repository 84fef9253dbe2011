package rerankapp

import (
	"fmt"

	"github.com/ardanlabs/kuzco/sdk/kuzco/model"
	"github.com/bytedance/sonic"
)

type rerankRequest struct {
	Model       string   `json:"model"`
	Query       string   `json:"query"`
	Documents   []string `json:"documents"`
	Instruction string   `json:"instruction"`
}

// Validate checks the data in the model is considered clean.
func (req rerankRequest) Validate() error {
	if req.Query == "" {
		return fmt.Errorf("query is required")
	}

	return nil
}

type usage struct {
	PromptTokens int `json:"prompt_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

type rerankResponse struct {
	ID      string    `json:"id"`
	Object  string    `json:"object"`
	Created int64     `json:"created"`
	Model   string    `json:"model"`
	Scores  []float32 `json:"scores"`
	Usage   usage     `json:"usage"`
}

// Encode implements the encoder interface.
func (resp rerankResponse) Encode() ([]byte, string, error) {
	data, err := sonic.Marshal(resp)
	return data, "application/json", err
}

func toAppRerank(resp model.RerankResponse) rerankResponse {
	return rerankResponse{
		ID:      resp.ID,
		Object:  resp.Object,
		Created: resp.Created,
		Model:   resp.Model,
		Scores:  resp.Scores,
		Usage: usage{
			PromptTokens: resp.Usage.PromptTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	}
}
