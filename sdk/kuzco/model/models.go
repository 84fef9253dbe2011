package model

import (
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hybridgroup/yzma/pkg/llama"
)

// Objects represent the different types of data that is being processed.
const (
	ObjectRerank    = "rerank"
	ObjectEmbedList = "list"
	ObjectEmbedding = "embedding"
)

// =============================================================================

// ModelInfo represents the model's card information.
type ModelInfo struct {
	ID          string
	Kind        Kind
	Desc        string
	Size        uint64
	Dimensions  int
	HasEncoder  bool
	HasDecoder  bool
	IsRecurrent bool
	IsHybrid    bool
	Quantized   bool
	Metadata    map[string]string
}

func toModelInfo(cfg Config, model llama.Model) ModelInfo {
	desc := llama.ModelDesc(model)
	size := llama.ModelSize(model)
	encoder := llama.ModelHasEncoder(model)
	decoder := llama.ModelHasDecoder(model)
	recurrent := llama.ModelIsRecurrent(model)
	hybrid := llama.ModelIsHybrid(model)
	count := llama.ModelMetaCount(model)
	metadata := make(map[string]string)

	for i := range count {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					return
				}
			}()

			key, ok := llama.ModelMetaKeyByIndex(model, i)
			if !ok {
				return
			}

			value, ok := llama.ModelMetaValStrByIndex(model, i)
			if !ok {
				return
			}

			metadata[key] = value
		}()
	}

	filename := filepath.Base(cfg.ModelFile)
	modelID := strings.TrimSuffix(filename, path.Ext(filename))

	return ModelInfo{
		ID:          modelID,
		Kind:        cfg.Kind,
		Desc:        desc,
		Size:        size,
		Dimensions:  int(llama.ModelNEmbd(model)),
		HasEncoder:  encoder,
		HasDecoder:  decoder,
		IsRecurrent: recurrent,
		IsHybrid:    hybrid,
		Quantized:   cfg.Quantized,
		Metadata:    metadata,
	}
}

// =============================================================================

// RerankRequest represents a query and the candidate documents to score
// against it. Instruction only applies to the causal kind and falls back to
// the configured default when empty.
type RerankRequest struct {
	Query       string   `json:"query"`
	Documents   []string `json:"documents"`
	Instruction string   `json:"instruction,omitempty"`
}

// RerankResponse carries one relevance score per input document, in input
// order. Scores are probabilities in [0, 1].
type RerankResponse struct {
	ID      string    `json:"id"`
	Object  string    `json:"object"`
	Created int64     `json:"created"`
	Model   string    `json:"model"`
	Scores  []float32 `json:"scores"`
	Usage   Usage     `json:"usage"`
}

// EmbedRequest represents the texts to embed.
type EmbedRequest struct {
	Texts []string `json:"texts"`
}

// EmbedData represents one embedding vector in an embed response.
type EmbedData struct {
	Object    string    `json:"object"`
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}

// EmbedResponse carries one unit-norm vector per input text, in input order.
// Dimensions is the model's hidden size, or zero when no texts were given.
type EmbedResponse struct {
	ID         string      `json:"id"`
	Object     string      `json:"object"`
	Created    int64       `json:"created"`
	Model      string      `json:"model"`
	Data       []EmbedData `json:"data"`
	Dimensions int         `json:"dimensions"`
	Usage      Usage       `json:"usage"`
}

// Usage represents token accounting for a request.
type Usage struct {
	PromptTokens int `json:"prompt_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// =============================================================================

// NewRerankResponse constructs a rerank response with identity fields filled.
func NewRerankResponse(modelID string, scores []float32, usage Usage) RerankResponse {
	if scores == nil {
		scores = []float32{}
	}

	return RerankResponse{
		ID:      uuid.New().String(),
		Object:  ObjectRerank,
		Created: time.Now().Unix(),
		Model:   modelID,
		Scores:  scores,
		Usage:   usage,
	}
}

// NewEmbedResponse constructs an embed response with identity fields filled.
func NewEmbedResponse(modelID string, data []EmbedData, dimensions int, usage Usage) EmbedResponse {
	if data == nil {
		data = []EmbedData{}
	}

	return EmbedResponse{
		ID:         uuid.New().String(),
		Object:     ObjectEmbedList,
		Created:    time.Now().Unix(),
		Model:      modelID,
		Data:       data,
		Dimensions: dimensions,
		Usage:      usage,
	}
}
