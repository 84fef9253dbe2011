package kuzco

import (
	"context"

	"github.com/ardanlabs/kuzco/sdk/kuzco/model"
)

// Embeddings encodes every text in the request and returns one unit-norm
// vector per text, in input order, plus the model's dimensionality. An empty
// text list returns an empty result with zero dimensions without touching
// the model.
func (krn *Kuzco) Embeddings(ctx context.Context, er model.EmbedRequest) (model.EmbedResponse, error) {
	if krn.state.Load() != stateReady {
		return model.EmbedResponse{}, ErrNotReady
	}

	if len(er.Texts) == 0 {
		return model.NewEmbedResponse(krn.modelInfo.ID, nil, 0, model.Usage{}), nil
	}

	resp, err := withHost(ctx, krn, func(h host) (model.EmbedResponse, error) {
		return h.Embeddings(ctx, er)
	})
	if err != nil {
		return model.EmbedResponse{}, err
	}

	if len(resp.Data) != len(er.Texts) {
		return model.EmbedResponse{}, &model.ShapeError{Op: "embeddings", Want: len(er.Texts), Got: len(resp.Data)}
	}

	return resp, nil
}
