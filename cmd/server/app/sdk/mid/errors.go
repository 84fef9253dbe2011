package mid

import (
	"context"
	"errors"
	"net/http"

	"github.com/ardanlabs/kuzco/cmd/server/app/sdk/errs"
	"github.com/ardanlabs/kuzco/cmd/server/foundation/logger"
	"github.com/ardanlabs/kuzco/cmd/server/foundation/web"
	"github.com/ardanlabs/kuzco/sdk/kuzco/observ/metrics"
)

// Errors handles errors coming out of the call chain. It detects normal
// application errors which are used to respond to the client in a uniform
// way. Unexpected errors (status >= 500) are logged.
func Errors(log *logger.Logger) web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			resp := next(ctx, r)

			err, isErr := resp.(error)
			if !isErr {
				return resp
			}

			metrics.AddErrors()

			var appErr *errs.Error
			if !errors.As(err, &appErr) {
				appErr = errs.New(errs.Internal, err)
			}

			log.Error(ctx, "handled error during request",
				"err", err.Error(),
				"code", appErr.Code.String(),
				"method", r.Method,
				"path", r.URL.Path)

			return appErr
		}

		return h
	}

	return m
}
