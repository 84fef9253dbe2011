package kuzco

import (
	"context"

	"github.com/ardanlabs/kuzco/sdk/kuzco/model"
)

// Rerank scores every document in the request against the query and returns
// one score per document, in input order, each in [0, 1]. An empty document
// list returns an empty score list without touching the model.
func (krn *Kuzco) Rerank(ctx context.Context, rr model.RerankRequest) (model.RerankResponse, error) {
	if krn.state.Load() != stateReady {
		return model.RerankResponse{}, ErrNotReady
	}

	if err := validateRerank(rr); err != nil {
		return model.RerankResponse{}, err
	}

	if len(rr.Documents) == 0 {
		return model.NewRerankResponse(krn.modelInfo.ID, nil, model.Usage{}), nil
	}

	resp, err := withHost(ctx, krn, func(h host) (model.RerankResponse, error) {
		return h.Rerank(ctx, rr)
	})
	if err != nil {
		return model.RerankResponse{}, err
	}

	if len(resp.Scores) != len(rr.Documents) {
		return model.RerankResponse{}, &model.ShapeError{Op: "rerank", Want: len(rr.Documents), Got: len(resp.Scores)}
	}

	return resp, nil
}

func validateRerank(rr model.RerankRequest) error {
	if rr.Query == "" {
		return &model.ValidationError{Field: "query", Reason: "must not be empty"}
	}

	return nil
}
