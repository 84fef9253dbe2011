// Package rerankapp provides the rerank api endpoints.
package rerankapp

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ardanlabs/kuzco/cache"
	"github.com/ardanlabs/kuzco/cmd/server/app/sdk/errs"
	"github.com/ardanlabs/kuzco/cmd/server/foundation/logger"
	"github.com/ardanlabs/kuzco/cmd/server/foundation/web"
	"github.com/ardanlabs/kuzco/sdk/kuzco"
	"github.com/ardanlabs/kuzco/sdk/kuzco/model"
	"github.com/ardanlabs/kuzco/sdk/tools/catalog"
)

const requestTimeout = 5 * time.Minute

type app struct {
	log          *logger.Logger
	cache        *cache.Cache
	defaultModel string
}

func newApp(cfg Config) *app {
	return &app{
		log:          cfg.Log,
		cache:        cfg.Cache,
		defaultModel: cfg.RerankerModel,
	}
}

func (a *app) rerank(ctx context.Context, r *http.Request) web.Encoder {
	var req rerankRequest
	if err := web.Decode(r, &req); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	modelID := req.Model
	if modelID == "" {
		modelID = a.defaultModel
	}

	if modelID == "" {
		return errs.Newf(errs.FailedPrecondition, "no reranker model configured")
	}

	krn, err := a.cache.AcquireModel(ctx, modelID)
	if err != nil {
		return mapAcquireError(err)
	}

	switch krn.ModelInfo().Kind {
	case model.KindRerank, model.KindRerankCausal:
	default:
		return errs.Newf(errs.InvalidArgument, "model %q doesn't support reranking", modelID)
	}

	a.log.Info(ctx, "rerank", "model", modelID, "documents", len(req.Documents))

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := krn.Rerank(ctx, model.RerankRequest{
		Query:       req.Query,
		Documents:   req.Documents,
		Instruction: req.Instruction,
	})
	if err != nil {
		return mapError(err)
	}

	return toAppRerank(resp)
}

// mapAcquireError classifies model acquisition failures. An unknown model id
// is the caller's mistake. A download or load failure is the service failing
// to provision the model, which the caller can't do anything about.
func mapAcquireError(err error) web.Encoder {
	if errors.Is(err, catalog.ErrNotFound) {
		return errs.New(errs.InvalidArgument, err)
	}

	return errs.New(errs.Internal, err)
}

// mapError translates the sdk error taxonomy to transport error codes.
func mapError(err error) web.Encoder {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		return errs.New(errs.InvalidArgument, err)
	}

	if errors.Is(err, kuzco.ErrNotReady) || errors.Is(err, kuzco.ErrUnloaded) {
		return errs.New(errs.Unavailable, err)
	}

	return errs.New(errs.Internal, err)
}
