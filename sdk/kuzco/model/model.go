// Package model provides the low-level api for scoring and embedding with
// rerank and embed models.
package model

import (
	"context"
	"fmt"
	"time"

	"github.com/ardanlabs/kuzco/sdk/kuzco/observ/metrics"
	"github.com/hybridgroup/yzma/pkg/llama"
)

// Model represents a loaded model and provides the low-level scoring and
// embedding API. A Model is not safe for concurrent forward passes; callers
// serialize access through the kuzco package.
type Model struct {
	cfg       Config
	log       Logger
	model     llama.Model
	vocab     llama.Vocab
	ctxParams llama.ContextParams
	modelInfo ModelInfo

	// Causal judge state, derived once at load.
	yesToken     llama.Token
	noToken      llama.Token
	prefixTokens []llama.Token
	suffixTokens []llama.Token
}

// NewModel loads the weights and tokenizer described by the config and
// prepares the kind-specific scoring state. Failures are reported as a
// *LoadError and leave nothing resident.
func NewModel(cfg Config) (*Model, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, &LoadError{ModelFile: cfg.ModelFile, Err: err}
	}

	mparams := llama.ModelDefaultParams()
	if cfg.Device != "" {
		dev := llama.GGMLBackendDeviceByName(cfg.Device)
		if dev == 0 {
			return nil, &LoadError{ModelFile: cfg.ModelFile, Err: fmt.Errorf("unknown device: %s", cfg.Device)}
		}
		mparams.SetDevices([]llama.GGMLBackendDevice{dev})
	}

	now := time.Now()

	mdl, err := llama.ModelLoadFromFile(cfg.ModelFile, mparams)
	if err != nil {
		return nil, &LoadError{ModelFile: cfg.ModelFile, Err: fmt.Errorf("unable to load model: %w", err)}
	}

	metrics.AddModelLoadTime(time.Since(now))

	cfg = adjustConfig(cfg, mdl)
	vocab := llama.ModelGetVocab(mdl)

	// -------------------------------------------------------------------------

	m := Model{
		cfg:       cfg,
		log:       cfg.Log,
		model:     mdl,
		vocab:     vocab,
		ctxParams: modelCtxParams(cfg),
		modelInfo: toModelInfo(cfg, mdl),
	}

	if cfg.Kind == KindRerankCausal {
		if err := m.loadJudgeTokens(); err != nil {
			llama.ModelFree(mdl)
			llama.BackendFree()
			return nil, &LoadError{ModelFile: cfg.ModelFile, Err: err}
		}
	}

	return &m, nil
}

// loadJudgeTokens resolves the yes/no vocabulary ids and the fixed prompt
// scaffolding for the causal judge. Both answers must tokenize to a single
// id or the log-odds read at the final position is meaningless.
func (m *Model) loadJudgeTokens() error {
	yes := llama.Tokenize(m.vocab, "yes", false, false)
	if len(yes) != 1 {
		return fmt.Errorf("judge-tokens: %q is %d tokens, need exactly 1", "yes", len(yes))
	}

	no := llama.Tokenize(m.vocab, "no", false, false)
	if len(no) != 1 {
		return fmt.Errorf("judge-tokens: %q is %d tokens, need exactly 1", "no", len(no))
	}

	m.yesToken = yes[0]
	m.noToken = no[0]

	// parseSpecial is on so the chat control tokens resolve to their
	// dedicated ids instead of being split as text.
	m.prefixTokens = llama.Tokenize(m.vocab, judgePrefix, true, true)
	m.suffixTokens = llama.Tokenize(m.vocab, judgeSuffix, false, true)

	if len(m.prefixTokens) == 0 || len(m.suffixTokens) == 0 {
		return fmt.Errorf("judge-tokens: prompt scaffolding produced no tokens")
	}

	return nil
}

// Unload releases the model weights. The caller is responsible for making
// sure no forward pass is in flight.
func (m *Model) Unload(ctx context.Context) error {
	llama.ModelFree(m.model)
	llama.BackendFree()

	return nil
}

// Config returns a copy of the configuration in use. This may differ from
// the configuration passed to NewModel where the model metadata overrode
// zero values.
func (m *Model) Config() Config {
	return m.cfg
}

// ModelInfo returns the model's card information.
func (m *Model) ModelInfo() ModelInfo {
	return m.modelInfo
}
