// These tests download real model weights and run real inference. They only
// run when KUZCO_INTEGRATION is set:
//
// $ KUZCO_INTEGRATION=1 go test ./cmd/server/api/services/kuzco/tests/...
package kuzco_test

import (
	"context"
	"fmt"
	"math"
	"os"
	"testing"
	"time"

	"github.com/ardanlabs/kuzco/sdk/kuzco"
	"github.com/ardanlabs/kuzco/sdk/kuzco/model"
	"github.com/ardanlabs/kuzco/sdk/tools/catalog"
	"github.com/ardanlabs/kuzco/sdk/tools/libs"
	"github.com/ardanlabs/kuzco/sdk/tools/models"
	"golang.org/x/sync/errgroup"
)

func TestMain(m *testing.M) {
	if os.Getenv("KUZCO_INTEGRATION") == "" {
		fmt.Println("skipping integration tests: KUZCO_INTEGRATION not set")
		return
	}

	if err := installSystem(); err != nil {
		fmt.Println("ERROR:", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

func installSystem() error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	lbs, err := libs.New()
	if err != nil {
		return fmt.Errorf("unable to create libs api: %w", err)
	}

	if _, err := lbs.Download(ctx, kuzco.FmtLogger); err != nil {
		return fmt.Errorf("unable to install llama.cpp: %w", err)
	}

	if err := kuzco.Init(); err != nil {
		return fmt.Errorf("unable to init kuzco: %w", err)
	}

	return nil
}

func loadModel(t *testing.T, modelID string) *kuzco.Kuzco {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	entry, err := catalog.Default().Retrieve(modelID)
	if err != nil {
		t.Fatalf("retrieving catalog entry: %s", err)
	}

	kind, err := model.ParseKind(entry.Kind)
	if err != nil {
		t.Fatalf("parsing kind: %s", err)
	}

	store, err := models.New()
	if err != nil {
		t.Fatalf("creating model store: %s", err)
	}

	modelFile, err := store.Resolve(ctx, kuzco.FmtLogger, entry, false)
	if err != nil {
		t.Fatalf("resolving model weights: %s", err)
	}

	const modelInstances = 1
	krn, err := kuzco.New(modelInstances, model.Config{
		ModelFile:         modelFile,
		Kind:              kind,
		MaxSequenceLength: entry.MaxSequenceLength,
		Instruction:       entry.Instruction,
	})
	if err != nil {
		t.Fatalf("creating kuzco: %s", err)
	}

	if err := krn.Load(ctx); err != nil {
		t.Fatalf("loading model: %s", err)
	}

	t.Cleanup(func() {
		if err := krn.Unload(context.Background()); err != nil {
			t.Logf("unloading model: %s", err)
		}
	})

	return krn
}

// =============================================================================

func Test_Rerank(t *testing.T) {
	krn := loadModel(t, "bge-reranker-v2-m3")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	documents := []string{
		"The capital of China is Beijing.",
		"The Great Wall of China stretches thousands of kilometers.",
		"Paris is the capital of France.",
		"Pandas eat bamboo for most of their diet.",
	}

	resp, err := krn.Rerank(ctx, model.RerankRequest{
		Query:     "What is the capital of China?",
		Documents: documents,
	})
	if err != nil {
		t.Fatalf("rerank: %s", err)
	}

	if len(resp.Scores) != len(documents) {
		t.Fatalf("expected %d scores, got %d", len(documents), len(resp.Scores))
	}

	for i, score := range resp.Scores {
		if score < 0 || score > 1 {
			t.Fatalf("score[%d] = %f, expected a value in [0,1]", i, score)
		}
	}

	best := 0
	for i, score := range resp.Scores {
		if score > resp.Scores[best] {
			best = i
		}
	}

	if best != 0 {
		t.Fatalf("expected %q to score highest, scores: %v", documents[0], resp.Scores)
	}
}

func Test_RerankConcurrent(t *testing.T) {
	krn := loadModel(t, "bge-reranker-v2-m3")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var g errgroup.Group

	for range 4 {
		g.Go(func() error {
			resp, err := krn.Rerank(ctx, model.RerankRequest{
				Query:     "What is the capital of China?",
				Documents: []string{"The capital of China is Beijing.", "Pandas eat bamboo."},
			})
			if err != nil {
				return err
			}

			if len(resp.Scores) != 2 {
				return fmt.Errorf("expected 2 scores, got %d", len(resp.Scores))
			}

			if resp.Scores[0] <= resp.Scores[1] {
				return fmt.Errorf("expected the relevant document to score higher, scores: %v", resp.Scores)
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent rerank: %s", err)
	}
}

func Test_RerankCausal(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping causal reranker in short mode")
	}

	krn := loadModel(t, "qwen3-reranker-0.6b")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	documents := []string{
		"The capital of China is Beijing.",
		"Pandas eat bamboo for most of their diet.",
	}

	resp, err := krn.Rerank(ctx, model.RerankRequest{
		Query:     "What is the capital of China?",
		Documents: documents,
	})
	if err != nil {
		t.Fatalf("rerank: %s", err)
	}

	if len(resp.Scores) != len(documents) {
		t.Fatalf("expected %d scores, got %d", len(documents), len(resp.Scores))
	}

	for i, score := range resp.Scores {
		if score < 0 || score > 1 {
			t.Fatalf("score[%d] = %f, expected a value in [0,1]", i, score)
		}
	}

	if resp.Scores[0] <= resp.Scores[1] {
		t.Fatalf("expected the relevant document to score higher, scores: %v", resp.Scores)
	}
}

func Test_Embeddings(t *testing.T) {
	krn := loadModel(t, "bge-small-en-v1.5")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	texts := []string{
		"Why is the sky blue?",
		"Rayleigh scattering gives the sky its color.",
		"The stock market closed higher today.",
	}

	resp, err := krn.Embeddings(ctx, model.EmbedRequest{
		Texts: texts,
	})
	if err != nil {
		t.Fatalf("embeddings: %s", err)
	}

	if len(resp.Data) != len(texts) {
		t.Fatalf("expected %d vectors, got %d", len(texts), len(resp.Data))
	}

	if resp.Dimensions != 384 {
		t.Fatalf("expected 384 dimensions, got %d", resp.Dimensions)
	}

	for i, d := range resp.Data {
		if d.Index != i {
			t.Fatalf("expected index %d, got %d", i, d.Index)
		}

		var norm float64
		for _, v := range d.Embedding {
			norm += float64(v) * float64(v)
		}
		norm = math.Sqrt(norm)

		if math.Abs(norm-1) > 1e-3 {
			t.Fatalf("vector[%d] norm = %f, expected 1", i, norm)
		}
	}

	// Related sentences should be closer than unrelated ones. Vectors are
	// unit length so the dot product is the cosine similarity.
	related := dot(resp.Data[0].Embedding, resp.Data[1].Embedding)
	unrelated := dot(resp.Data[0].Embedding, resp.Data[2].Embedding)

	if related <= unrelated {
		t.Fatalf("expected related similarity %f > unrelated %f", related, unrelated)
	}
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}

	return sum
}
