package embedapp

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/ardanlabs/kuzco/cmd/server/foundation/web"
)

func Test_EmptyInputDecodes(t *testing.T) {
	r := httptest.NewRequest("POST", "/v1/embeddings", bytes.NewBufferString(`{"model":"m","input":[]}`))

	var req embedRequest
	if err := web.Decode(r, &req); err != nil {
		t.Fatalf("an empty input list must decode cleanly, got %s", err)
	}

	if len(req.Input) != 0 {
		t.Fatalf("expected 0 inputs, got %d", len(req.Input))
	}
}
