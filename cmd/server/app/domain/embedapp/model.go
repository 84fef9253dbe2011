package embedapp

import (
	"github.com/ardanlabs/kuzco/sdk/kuzco/model"
	"github.com/bytedance/sonic"
)

// An empty input list is a valid request: it produces an empty data array
// with zero usage, so there is deliberately no Validate method here.
type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type usage struct {
	PromptTokens int `json:"prompt_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

type embedData struct {
	Object    string    `json:"object"`
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}

type embedResponse struct {
	ID         string      `json:"id"`
	Object     string      `json:"object"`
	Created    int64       `json:"created"`
	Model      string      `json:"model"`
	Data       []embedData `json:"data"`
	Dimensions int         `json:"dimensions"`
	Usage      usage       `json:"usage"`
}

// Encode implements the encoder interface.
func (resp embedResponse) Encode() ([]byte, string, error) {
	data, err := sonic.Marshal(resp)
	return data, "application/json", err
}

func toAppEmbed(resp model.EmbedResponse) embedResponse {
	data := make([]embedData, len(resp.Data))
	for i, d := range resp.Data {
		data[i] = embedData{
			Object:    d.Object,
			Index:     d.Index,
			Embedding: d.Embedding,
		}
	}

	return embedResponse{
		ID:         resp.ID,
		Object:     resp.Object,
		Created:    resp.Created,
		Model:      resp.Model,
		Data:       data,
		Dimensions: resp.Dimensions,
		Usage: usage{
			PromptTokens: resp.Usage.PromptTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	}
}
