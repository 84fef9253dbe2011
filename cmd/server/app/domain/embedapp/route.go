package embedapp

import (
	"net/http"

	"github.com/ardanlabs/kuzco/cache"
	"github.com/ardanlabs/kuzco/cmd/server/foundation/logger"
	"github.com/ardanlabs/kuzco/cmd/server/foundation/web"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log           *logger.Logger
	Cache         *cache.Cache
	EmbedderModel string
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	api := newApp(cfg)

	app.HandlerFunc(http.MethodPost, version, "/embeddings", api.embeddings)
}
