package kuzco

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ardanlabs/kuzco/sdk/kuzco/model"
	"golang.org/x/sync/errgroup"
)

// stubHost stands in for a loaded model so the lifecycle and concurrency
// discipline can be tested without weights.
type stubHost struct {
	calls      atomic.Int32
	inFlight   atomic.Int32
	overlapped atomic.Bool
	scoreWith  float32
	delay      time.Duration
}

func (s *stubHost) Rerank(ctx context.Context, rr model.RerankRequest) (model.RerankResponse, error) {
	s.enter()
	defer s.leave()

	scores := make([]float32, len(rr.Documents))
	for i := range scores {
		scores[i] = s.scoreWith / float32(i+1)
	}

	return model.NewRerankResponse("stub", scores, model.Usage{}), nil
}

func (s *stubHost) Embeddings(ctx context.Context, er model.EmbedRequest) (model.EmbedResponse, error) {
	s.enter()
	defer s.leave()

	data := make([]model.EmbedData, len(er.Texts))
	for i := range data {
		data[i] = model.EmbedData{Object: model.ObjectEmbedding, Index: i, Embedding: []float32{1, 0}}
	}

	return model.NewEmbedResponse("stub", data, 2, model.Usage{}), nil
}

func (s *stubHost) Config() model.Config {
	return model.Config{}
}

func (s *stubHost) ModelInfo() model.ModelInfo {
	return model.ModelInfo{ID: "stub"}
}

func (s *stubHost) Unload(ctx context.Context) error {
	return nil
}

func (s *stubHost) enter() {
	s.calls.Add(1)
	if s.inFlight.Add(1) > 1 {
		s.overlapped.Store(true)
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
}

func (s *stubHost) leave() {
	s.inFlight.Add(-1)
}

func newTestKuzco(h host) *Kuzco {
	krn := &Kuzco{
		instances: 1,
		hosts:     make(chan host, 1),
		modelInfo: h.ModelInfo(),
	}

	krn.hosts <- h
	krn.state.Store(stateReady)

	return krn
}

// =============================================================================

func Test_NotReadyBeforeLoad(t *testing.T) {
	krn, err := New(1, model.Config{ModelFile: "missing.gguf", Kind: model.KindRerank})
	if err != nil {
		t.Fatalf("creating handle: %s", err)
	}

	if _, err := krn.Rerank(context.Background(), model.RerankRequest{Query: "q", Documents: []string{"d"}}); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}

	if _, err := krn.Embeddings(context.Background(), model.EmbedRequest{Texts: []string{"t"}}); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
}

func Test_RerankEmptyDocuments(t *testing.T) {
	stub := &stubHost{scoreWith: 0.8}
	krn := newTestKuzco(stub)

	resp, err := krn.Rerank(context.Background(), model.RerankRequest{Query: "q", Documents: nil})
	if err != nil {
		t.Fatalf("reranking zero documents: %s", err)
	}

	if resp.Scores == nil || len(resp.Scores) != 0 {
		t.Fatalf("expected empty non-nil scores, got %v", resp.Scores)
	}

	if stub.calls.Load() != 0 {
		t.Fatalf("model was touched %d times for an empty request", stub.calls.Load())
	}
}

func Test_RerankOrderAndLength(t *testing.T) {
	stub := &stubHost{scoreWith: 0.9}
	krn := newTestKuzco(stub)

	docs := []string{"a", "b", "c", "d", "e"}
	resp, err := krn.Rerank(context.Background(), model.RerankRequest{Query: "q", Documents: docs})
	if err != nil {
		t.Fatalf("reranking: %s", err)
	}

	if len(resp.Scores) != len(docs) {
		t.Fatalf("expected %d scores, got %d", len(docs), len(resp.Scores))
	}

	// The stub assigns scores by input position, so order is observable.
	for i, score := range resp.Scores {
		want := float32(0.9) / float32(i+1)
		if score != want {
			t.Fatalf("score %d = %v, expected %v: order not preserved", i, score, want)
		}
	}
}

func Test_RerankSingleDocument(t *testing.T) {
	stub := &stubHost{scoreWith: 0.7}
	krn := newTestKuzco(stub)

	resp, err := krn.Rerank(context.Background(), model.RerankRequest{Query: "q", Documents: []string{"only"}})
	if err != nil {
		t.Fatalf("reranking single document: %s", err)
	}

	if len(resp.Scores) != 1 {
		t.Fatalf("expected exactly one score, got %d", len(resp.Scores))
	}
}

func Test_RerankEmptyQuery(t *testing.T) {
	stub := &stubHost{}
	krn := newTestKuzco(stub)

	_, err := krn.Rerank(context.Background(), model.RerankRequest{Query: "", Documents: []string{"d"}})

	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *model.ValidationError, got %v", err)
	}

	if stub.calls.Load() != 0 {
		t.Fatalf("model was touched for a malformed request")
	}
}

func Test_EmbeddingsEmptyTexts(t *testing.T) {
	stub := &stubHost{}
	krn := newTestKuzco(stub)

	resp, err := krn.Embeddings(context.Background(), model.EmbedRequest{Texts: nil})
	if err != nil {
		t.Fatalf("embedding zero texts: %s", err)
	}

	if len(resp.Data) != 0 || resp.Dimensions != 0 {
		t.Fatalf("expected empty result with 0 dimensions, got %d vectors and %d dimensions", len(resp.Data), resp.Dimensions)
	}

	if stub.calls.Load() != 0 {
		t.Fatalf("model was touched %d times for an empty request", stub.calls.Load())
	}
}

func Test_SerializedAccess(t *testing.T) {
	stub := &stubHost{scoreWith: 0.5, delay: 2 * time.Millisecond}
	krn := newTestKuzco(stub)

	var g errgroup.Group
	for range 8 {
		g.Go(func() error {
			_, err := krn.Rerank(context.Background(), model.RerankRequest{Query: "q", Documents: []string{"d1", "d2"}})
			return err
		})
	}

	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent rerank: %s", err)
	}

	if stub.overlapped.Load() {
		t.Fatalf("two forward passes overlapped on one instance")
	}

	if stub.calls.Load() != 8 {
		t.Fatalf("expected 8 calls, got %d", stub.calls.Load())
	}
}

func Test_UnloadUnderRequestPressure(t *testing.T) {
	stub := &stubHost{scoreWith: 0.5}
	krn := newTestKuzco(stub)

	// Hammer the handle from several goroutines so there is always a request
	// trying to get in. Unload must still drain and finish: admission is
	// fenced by the shutdown mutex, so the drain can't be starved by new
	// requests slipping in between its samples of the stream count.
	var g errgroup.Group
	for range 4 {
		g.Go(func() error {
			for {
				_, err := krn.Rerank(context.Background(), model.RerankRequest{Query: "q", Documents: []string{"d"}})
				if err != nil {
					if errors.Is(err, ErrNotReady) || errors.Is(err, ErrUnloaded) {
						return nil
					}
					return err
				}
			}
		})
	}

	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := krn.Unload(ctx); err != nil {
		t.Fatalf("unload failed under request pressure: %s", err)
	}

	if err := g.Wait(); err != nil {
		t.Fatalf("request worker failed: %s", err)
	}
}

func Test_UnloadIdempotent(t *testing.T) {
	stub := &stubHost{}
	krn := newTestKuzco(stub)

	if err := krn.Unload(context.Background()); err != nil {
		t.Fatalf("first unload: %s", err)
	}

	if err := krn.Unload(context.Background()); err != nil {
		t.Fatalf("second unload should be a no-op: %s", err)
	}

	if _, err := krn.Rerank(context.Background(), model.RerankRequest{Query: "q", Documents: []string{"d"}}); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady after unload, got %v", err)
	}
}

func Test_UnloadNeverLoaded(t *testing.T) {
	krn, err := New(1, model.Config{ModelFile: "missing.gguf", Kind: model.KindEmbed})
	if err != nil {
		t.Fatalf("creating handle: %s", err)
	}

	if err := krn.Unload(context.Background()); err != nil {
		t.Fatalf("unload on a never-loaded handle should be a no-op: %s", err)
	}
}

func Test_NewRejectsZeroInstances(t *testing.T) {
	if _, err := New(0, model.Config{ModelFile: "m.gguf", Kind: model.KindRerank}); err == nil {
		t.Fatalf("expected an error for 0 instances")
	}
}
