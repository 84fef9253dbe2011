package cache

import "time"

// ModelDetail provides details for the models in the cache.
type ModelDetail struct {
	ID            string
	Kind          string
	Size          uint64
	Quantized     bool
	Ready         bool
	ExpiresAt     time.Time
	ActiveStreams int
}
