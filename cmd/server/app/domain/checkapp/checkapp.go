// Package checkapp maintains the app layer api for the check domain.
package checkapp

import (
	"context"
	"net/http"
	"os"
	"runtime"

	"github.com/ardanlabs/kuzco/cache"
	"github.com/ardanlabs/kuzco/cmd/server/foundation/logger"
	"github.com/ardanlabs/kuzco/cmd/server/foundation/web"
)

type app struct {
	build string
	log   *logger.Logger
	cache *cache.Cache
}

func newApp(cfg Config) *app {
	return &app{
		build: cfg.Build,
		log:   cfg.Log,
		cache: cfg.Cache,
	}
}

// health reports the readiness of every model currently in the cache. The
// response carries a 503 while any model is still loading so orchestrators
// hold traffic until the weights are in memory.
func (a *app) health(ctx context.Context, r *http.Request) web.Encoder {
	details := a.cache.ModelStatus()

	mdls := make([]Model, len(details))
	ready := true

	for i, d := range details {
		status := "healthy"
		if !d.Ready {
			status = "loading"
			ready = false
		}

		mdls[i] = Model{
			ID:            d.ID,
			Kind:          d.Kind,
			Status:        status,
			Quantized:     d.Quantized,
			ActiveStreams: d.ActiveStreams,
			ExpiresAt:     d.ExpiresAt,
		}
	}

	status := "healthy"
	if !ready {
		status = "loading"
	}

	return Health{
		Status: status,
		Models: mdls,
	}
}

func (a *app) liveness(ctx context.Context, r *http.Request) web.Encoder {
	host, err := os.Hostname()
	if err != nil {
		host = "unavailable"
	}

	info := Info{
		Status:     "up",
		Build:      a.build,
		Host:       host,
		GOMAXPROCS: runtime.GOMAXPROCS(0),
	}

	return info
}
