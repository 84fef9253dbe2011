// Package build binds all the routes into the specified app.
package build

import (
	"github.com/ardanlabs/kuzco/cmd/server/app/domain/checkapp"
	"github.com/ardanlabs/kuzco/cmd/server/app/domain/embedapp"
	"github.com/ardanlabs/kuzco/cmd/server/app/domain/rerankapp"
	"github.com/ardanlabs/kuzco/cmd/server/app/sdk/mux"
	"github.com/ardanlabs/kuzco/cmd/server/foundation/web"
)

// Routes constructs the all value which provides the implementation of
// of RouteAdder for specifying what routes to bind to this instance.
func Routes() all {
	return all{}
}

type all struct{}

// Add implements the RouterAdder interface.
func (all) Add(app *web.App, cfg mux.Config) {
	checkapp.Routes(app, checkapp.Config{
		Build: cfg.Build,
		Log:   cfg.Log,
		Cache: cfg.Cache,
	})

	rerankapp.Routes(app, rerankapp.Config{
		Log:           cfg.Log,
		Cache:         cfg.Cache,
		RerankerModel: cfg.RerankerModel,
	})

	embedapp.Routes(app, embedapp.Config{
		Log:           cfg.Log,
		Cache:         cfg.Cache,
		EmbedderModel: cfg.EmbedderModel,
	})
}
