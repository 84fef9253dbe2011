// Package kuzco provides reranking and embedding support using llama.cpp
// via yzma, with an explicit load lifecycle and serialized model access.
package kuzco

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ardanlabs/kuzco/sdk/kuzco/model"
	"github.com/hybridgroup/yzma/pkg/llama"
)

// Version contains the current version of the kuzco package.
const Version = "0.9.0"

// Lifecycle states for a Kuzco handle. New starts at stateUnloaded, Load
// moves through stateLoading to stateReady, Unload ends at stateClosed.
const (
	stateUnloaded int32 = iota
	stateLoading
	stateReady
	stateClosed
)

// host is the behavior the concurrency layer needs from a loaded model.
// *model.Model satisfies it.
type host interface {
	Rerank(ctx context.Context, rr model.RerankRequest) (model.RerankResponse, error)
	Embeddings(ctx context.Context, er model.EmbedRequest) (model.EmbedResponse, error)
	Config() model.Config
	ModelInfo() model.ModelInfo
	Unload(ctx context.Context) error
}

// Kuzco provides a concurrently safe api for scoring and embedding with a
// model. Construction does no I/O; weights load when Load is called.
type Kuzco struct {
	cfg           model.Config
	instances     int
	state         atomic.Int32
	hosts         chan host
	activeStreams atomic.Int32
	shutdown      sync.Mutex
	modelInfo     model.ModelInfo
}

// New constructs an unloaded handle for the given configuration. No file or
// device access happens here; call Load before scoring.
//
// modelInstances represents the number of instances of the model to create.
// Unless you have more than 1 GPU, the recommended number of instances is 1.
func New(modelInstances int, cfg model.Config) (*Kuzco, error) {
	if modelInstances <= 0 {
		return nil, fmt.Errorf("instances must be > 0, got %d", modelInstances)
	}

	krn := Kuzco{
		cfg:       cfg,
		instances: modelInstances,
	}

	return &krn, nil
}

// Load loads the model weights and tokenizer and moves the handle to ready.
// Calling Load on a handle that is already loading, ready, or unloaded for
// good is an error. On failure the handle returns to the unloaded state so
// Load can be retried.
func (krn *Kuzco) Load(ctx context.Context) error {
	if libraryLocation == "" {
		return fmt.Errorf("load: the Init() function has not been called")
	}

	if !krn.state.CompareAndSwap(stateUnloaded, stateLoading) {
		switch krn.state.Load() {
		case stateClosed:
			return ErrUnloaded
		default:
			return fmt.Errorf("load: already loading or loaded")
		}
	}

	hosts := make(chan host, krn.instances)
	var firstHost host

	for range krn.instances {
		select {
		case <-ctx.Done():
			krn.unloadHosts(ctx, hosts)
			krn.state.Store(stateUnloaded)
			return ctx.Err()

		default:
		}

		m, err := model.NewModel(krn.cfg)
		if err != nil {
			krn.unloadHosts(ctx, hosts)
			krn.state.Store(stateUnloaded)
			return err
		}

		hosts <- m

		if firstHost == nil {
			firstHost = m
		}
	}

	krn.cfg = firstHost.Config()
	krn.modelInfo = firstHost.ModelInfo()
	krn.hosts = hosts
	krn.state.Store(stateReady)

	return nil
}

// Ready reports whether the handle can accept scoring calls.
func (krn *Kuzco) Ready() bool {
	return krn.state.Load() == stateReady
}

// ModelConfig returns a copy of the configuration being used. After Load
// this may differ from the configuration passed to New if the model has
// overridden any of the settings.
func (krn *Kuzco) ModelConfig() model.Config {
	return krn.cfg
}

// ModelInfo returns the model information. Zero value until Load completes.
func (krn *Kuzco) ModelInfo() model.ModelInfo {
	return krn.modelInfo
}

// ActiveStreams returns the number of in-flight requests.
func (krn *Kuzco) ActiveStreams() int {
	return int(krn.activeStreams.Load())
}

// SystemInfo returns system information.
func (krn *Kuzco) SystemInfo() map[string]string {
	result := make(map[string]string)

	for part := range strings.SplitSeq(llama.PrintSystemInfo(), "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		// Remove the "= 1" or similar suffix.
		if idx := strings.Index(part, "="); idx != -1 {
			part = strings.TrimSpace(part[:idx])
		}

		// Check for "Key : Value" pattern.
		switch kv := strings.SplitN(part, ":", 2); len(kv) {
		case 2:
			key := strings.TrimSpace(kv[0])
			value := strings.TrimSpace(kv[1])
			result[key] = value
		default:
			result[part] = "on"
		}
	}

	return result
}

// Unload closes down the loaded model instances after draining in-flight
// requests. Unload is idempotent: a second call, or a call on a handle that
// never loaded, is a no-op.
func (krn *Kuzco) Unload(ctx context.Context) error {
	if _, exists := ctx.Deadline(); !exists {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}

	// -------------------------------------------------------------------------

	err := func() error {
		krn.shutdown.Lock()
		defer krn.shutdown.Unlock()

		switch krn.state.Load() {
		case stateClosed:
			return errAlreadyClosed

		case stateUnloaded:
			krn.state.Store(stateClosed)
			return errAlreadyClosed

		case stateLoading:
			return fmt.Errorf("unload: load in progress")
		}

		for krn.activeStreams.Load() > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("unload: cannot unload: %d active streams: %w", krn.activeStreams.Load(), ctx.Err())

			case <-time.After(100 * time.Millisecond):
			}
		}

		krn.state.Store(stateClosed)
		return nil
	}()

	switch err {
	case nil:
	case errAlreadyClosed:
		return nil
	default:
		return err
	}

	// -------------------------------------------------------------------------

	return krn.unloadHosts(ctx, krn.hosts)
}

func (krn *Kuzco) unloadHosts(ctx context.Context, hosts chan host) error {
	var sb strings.Builder

	close(hosts)
	for h := range hosts {
		if err := h.Unload(ctx); err != nil {
			sb.WriteString(fmt.Sprintf("unload: failed to unload model: %s: %v\n", h.ModelInfo().ID, err))
		}
	}

	if sb.Len() > 0 {
		return fmt.Errorf("%s", sb.String())
	}

	return nil
}
