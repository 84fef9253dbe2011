// Package mid provides app level middleware support.
package mid

import (
	"net/http"

	"github.com/ardanlabs/kuzco/cmd/server/foundation/web"
)

type httpStatus interface {
	HTTPStatus() int
}

// statusOf resolves the HTTP status a response encoder will produce.
func statusOf(resp web.Encoder) int {
	switch v := resp.(type) {
	case httpStatus:
		return v.HTTPStatus()

	case error:
		return http.StatusInternalServerError

	default:
		if resp == nil {
			return http.StatusNoContent
		}
	}

	return http.StatusOK
}
