package mid

import (
	"context"
	"net/http"
	"runtime/debug"

	"github.com/ardanlabs/kuzco/cmd/server/app/sdk/errs"
	"github.com/ardanlabs/kuzco/cmd/server/foundation/web"
	"github.com/ardanlabs/kuzco/sdk/kuzco/observ/metrics"
)

// Panics recovers from panics and converts the panic to an error so it is
// reported and handled in Errors.
func Panics() web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) (resp web.Encoder) {
			defer func() {
				if rec := recover(); rec != nil {
					trace := debug.Stack()
					resp = errs.Newf(errs.Internal, "PANIC [%v] TRACE[%s]", rec, string(trace))

					metrics.AddPanics()
				}
			}()

			return next(ctx, r)
		}

		return h
	}

	return m
}
