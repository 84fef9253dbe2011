package mid

import (
	"context"
	"net/http"

	"github.com/ardanlabs/kuzco/cmd/server/foundation/web"
	"github.com/ardanlabs/kuzco/sdk/kuzco/observ/metrics"
)

// Metrics updates program counters.
func Metrics() web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			resp := next(ctx, r)

			n := metrics.AddRequests()
			if n%100 == 0 {
				metrics.AddGoroutines()
			}

			return resp
		}

		return h
	}

	return m
}
