package rerankapp

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/ardanlabs/kuzco/cmd/server/app/sdk/errs"
	"github.com/ardanlabs/kuzco/sdk/kuzco"
	"github.com/ardanlabs/kuzco/sdk/kuzco/model"
	"github.com/ardanlabs/kuzco/sdk/tools/catalog"
)

func status(t *testing.T, enc any) int {
	t.Helper()

	e, ok := enc.(*errs.Error)
	if !ok {
		t.Fatalf("expected *errs.Error, got %T", enc)
	}

	return e.HTTPStatus()
}

func Test_MapAcquireError(t *testing.T) {
	// Asking for a model the catalog doesn't know is the caller's mistake.
	err := fmt.Errorf("acquire-model: %w", catalog.ErrNotFound)
	if got := status(t, mapAcquireError(err)); got != http.StatusBadRequest {
		t.Fatalf("unknown model id: expected %d, got %d", http.StatusBadRequest, got)
	}

	// A download or load failure is the service's problem, not the request's.
	err = errors.New("acquire-model: loading: mmap failed")
	if got := status(t, mapAcquireError(err)); got != http.StatusInternalServerError {
		t.Fatalf("load failure: expected %d, got %d", http.StatusInternalServerError, got)
	}
}

func Test_MapError(t *testing.T) {
	verr := &model.ValidationError{Field: "query", Reason: "must not be empty"}
	if got := status(t, mapError(verr)); got != http.StatusBadRequest {
		t.Fatalf("validation error: expected %d, got %d", http.StatusBadRequest, got)
	}

	if got := status(t, mapError(kuzco.ErrNotReady)); got != http.StatusServiceUnavailable {
		t.Fatalf("not ready: expected %d, got %d", http.StatusServiceUnavailable, got)
	}

	if got := status(t, mapError(kuzco.ErrUnloaded)); got != http.StatusServiceUnavailable {
		t.Fatalf("unloaded: expected %d, got %d", http.StatusServiceUnavailable, got)
	}

	if got := status(t, mapError(errors.New("decode failed"))); got != http.StatusInternalServerError {
		t.Fatalf("inference failure: expected %d, got %d", http.StatusInternalServerError, got)
	}
}
