package checkapp

import (
	"net/http"
	"testing"
)

func Test_HealthHTTPStatus(t *testing.T) {
	h := Health{Status: "healthy"}
	if got := h.HTTPStatus(); got != http.StatusOK {
		t.Fatalf("healthy: expected %d, got %d", http.StatusOK, got)
	}

	h = Health{
		Status: "loading",
		Models: []Model{
			{ID: "big-reranker", Kind: "rerank", Status: "loading"},
		},
	}
	if got := h.HTTPStatus(); got != http.StatusServiceUnavailable {
		t.Fatalf("loading: expected %d, got %d", http.StatusServiceUnavailable, got)
	}
}
