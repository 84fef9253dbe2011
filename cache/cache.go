// Package cache manages a cache of kuzco APIs for specific models. Used by
// the model server to manage the number of models that are maintained in
// memory at any given time.
package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ardanlabs/kuzco/cmd/server/foundation/logger"
	"github.com/ardanlabs/kuzco/sdk/kuzco"
	"github.com/ardanlabs/kuzco/sdk/kuzco/model"
	"github.com/ardanlabs/kuzco/sdk/tools/catalog"
	"github.com/ardanlabs/kuzco/sdk/tools/models"
	"github.com/maypok86/otter/v2"
)

// Config represents settings for the cache.
//
// ModelPath: Location of models. Leave empty for default location.
//
// Device: Specify a specific device. To see the list of devices run this
// command: $HOME/.kuzco/libraries/llama-bench --list-devices
// Leave empty for the system to pick the device.
//
// MaxInCache: Defines the maximum number of unique models available at a
// time. Defaults to 3 if the value is 0.
//
// ModelInstances: Defines how many instances of the same model should be
// loaded. Defaults to 1 if the value is 0.
//
// Quantized: Selects the quantized weight artifact for every model that has
// one in the catalog.
//
// CacheTTL: Defines the time an existing model can live in the cache without
// being used.
type Config struct {
	Log            *logger.Logger
	Catalog        *catalog.Catalog
	ModelPath      string
	Device         string
	MaxInCache     int
	ModelInstances int
	ContextWindow  int
	Quantized      bool
	CacheTTL       time.Duration
}

func validateConfig(cfg Config) (Config, error) {
	if cfg.Log == nil {
		return Config{}, fmt.Errorf("validate-config: logger is required")
	}

	if cfg.Catalog == nil {
		cfg.Catalog = catalog.Default()
	}

	if cfg.MaxInCache <= 0 {
		cfg.MaxInCache = 3
	}

	if cfg.ModelInstances <= 0 {
		cfg.ModelInstances = 1
	}

	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}

	return cfg, nil
}

// Cache manages a set of kuzco APIs for use. It maintains a cache of these
// APIs and will unload them over time if not in use.
type Cache struct {
	log           *logger.Logger
	catalog       *catalog.Catalog
	store         *models.Models
	device        string
	instances     int
	contextWindow int
	quantized     bool
	cache         *otter.Cache[string, *kuzco.Kuzco]
	itemsInCache  atomic.Int32
	loading       sync.Map
}

// NewCache constructs the cache for use.
func NewCache(cfg Config) (*Cache, error) {
	cfg, err := validateConfig(cfg)
	if err != nil {
		return nil, err
	}

	store, err := models.NewWithPath(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("constructing model store: %w", err)
	}

	c := Cache{
		log:           cfg.Log,
		catalog:       cfg.Catalog,
		store:         store,
		device:        cfg.Device,
		instances:     cfg.ModelInstances,
		contextWindow: cfg.ContextWindow,
		quantized:     cfg.Quantized,
	}

	opt := otter.Options[string, *kuzco.Kuzco]{
		MaximumSize:      cfg.MaxInCache,
		ExpiryCalculator: otter.ExpiryWriting[string, *kuzco.Kuzco](cfg.CacheTTL),
		OnDeletion:       c.eviction,
	}

	cache, err := otter.New(&opt)
	if err != nil {
		return nil, fmt.Errorf("constructing cache: %w", err)
	}

	c.cache = cache

	return &c, nil
}

// Shutdown releases all apis from the cache and performs a proper unloading.
func (c *Cache) Shutdown(ctx context.Context) error {
	if _, exists := ctx.Deadline(); !exists {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 45*time.Second)
		defer cancel()
	}

	c.cache.InvalidateAll()

	for c.itemsInCache.Load() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-time.NewTimer(100 * time.Millisecond).C:
		}
	}

	return nil
}

// ModelPath returns the location of the models.
func (c *Cache) ModelPath() string {
	return c.store.Path()
}

// ModelStatus returns information about the current models in the cache,
// including models whose weights are still being resolved and loaded.
func (c *Cache) ModelStatus() []ModelDetail {
	details := make([]ModelDetail, 0)
	seen := make(map[string]bool)

	for entry := range c.cache.Coldest() {
		info := entry.Value.ModelInfo()
		seen[entry.Key] = true

		details = append(details, ModelDetail{
			ID:            entry.Key,
			Kind:          string(info.Kind),
			Size:          info.Size,
			Quantized:     info.Quantized,
			Ready:         entry.Value.Ready(),
			ExpiresAt:     entry.ExpiresAt(),
			ActiveStreams: entry.Value.ActiveStreams(),
		})
	}

	c.loading.Range(func(key any, value any) bool {
		id := key.(string)
		if seen[id] {
			return true
		}

		details = append(details, ModelDetail{
			ID:   id,
			Kind: value.(string),
		})

		return true
	})

	return details
}

// AcquireModel will provide a kuzco API for the specified catalog model. If
// the model is not in the cache, its weights are resolved, loaded, and the
// API cached.
func (c *Cache) AcquireModel(ctx context.Context, modelID string) (*kuzco.Kuzco, error) {
	modelID = strings.ToLower(modelID)

	krn, exists := c.cache.GetIfPresent(modelID)
	if exists {
		return krn, nil
	}

	entry, err := c.catalog.Retrieve(modelID)
	if err != nil {
		return nil, fmt.Errorf("acquire-model: %w", err)
	}

	kind, err := model.ParseKind(entry.Kind)
	if err != nil {
		return nil, fmt.Errorf("acquire-model: %w", err)
	}

	// Track the load so the health endpoint can report the model while its
	// weights are being downloaded and mapped.
	c.loading.Store(modelID, entry.Kind)
	defer c.loading.Delete(modelID)

	modelFile, err := c.store.Resolve(ctx, c.log.Info, entry, c.quantized)
	if err != nil {
		return nil, fmt.Errorf("acquire-model: %w", err)
	}

	contextWindow := c.contextWindow
	if entry.ContextWindow > 0 {
		contextWindow = entry.ContextWindow
	}

	krn, err = kuzco.New(c.instances, model.Config{
		Log:               c.log.Info,
		ModelFile:         modelFile,
		Kind:              kind,
		Device:            c.device,
		ContextWindow:     contextWindow,
		MaxSequenceLength: entry.MaxSequenceLength,
		Instruction:       entry.Instruction,
		Quantized:         c.quantized && entry.QuantizedURL != "",
	})
	if err != nil {
		return nil, fmt.Errorf("acquire-model: unable to create inference model: %w", err)
	}

	if err := krn.Load(ctx); err != nil {
		return nil, fmt.Errorf("acquire-model: unable to load model: %w", err)
	}

	c.cache.Set(modelID, krn)
	c.itemsInCache.Add(1)

	c.log.Info(ctx, "acquire-model",
		"status", "kuzco cache add",
		"model-name", modelID,
		"kind", entry.Kind,
		"contextWindow", krn.ModelConfig().ContextWindow,
		"maxSequenceLength", krn.ModelConfig().MaxSequenceLength,
		"quantized", krn.ModelInfo().Quantized)

	return krn, nil
}

func (c *Cache) eviction(event otter.DeletionEvent[string, *kuzco.Kuzco]) {
	const unloadTimeout = 5 * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), unloadTimeout)
	defer cancel()

	c.log.Info(ctx, "kuzco cache eviction", "key", event.Key, "cause", event.Cause, "was-evicted", event.WasEvicted())
	if err := event.Value.Unload(ctx); err != nil {
		c.log.Info(ctx, "kuzco cache eviction", "key", event.Key, "ERROR", err)
	}

	c.itemsInCache.Add(-1)
}
