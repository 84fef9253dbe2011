// Package rerank provides the rerank command code.
package rerank

import (
	"context"
	"fmt"
	"time"

	"github.com/ardanlabs/kuzco/sdk/kuzco"
	"github.com/ardanlabs/kuzco/sdk/kuzco/model"
	"github.com/ardanlabs/kuzco/sdk/tools/catalog"
	"github.com/ardanlabs/kuzco/sdk/tools/models"
)

// Run executes the rerank command. The first argument is the query, the
// rest are the documents to score.
func Run(args []string, modelID string, catalogFile string, quantized bool) error {
	query := args[0]
	documents := args[1:]

	ctlg := catalog.Default()
	if catalogFile != "" {
		var err error
		ctlg, err = catalog.Load(catalogFile)
		if err != nil {
			return err
		}
	}

	entry, err := ctlg.Retrieve(modelID)
	if err != nil {
		return err
	}

	kind, err := model.ParseKind(entry.Kind)
	if err != nil {
		return err
	}

	if kind != model.KindRerank && kind != model.KindRerankCausal {
		return fmt.Errorf("model %q doesn't support reranking", modelID)
	}

	store, err := models.New()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	modelFile, err := store.Resolve(ctx, kuzco.FmtLogger, entry, quantized)
	if err != nil {
		return err
	}

	if err := kuzco.Init(); err != nil {
		return fmt.Errorf("unable to init kuzco: %w", err)
	}

	const modelInstances = 1
	krn, err := kuzco.New(modelInstances, model.Config{
		ModelFile:         modelFile,
		Kind:              kind,
		MaxSequenceLength: entry.MaxSequenceLength,
		Instruction:       entry.Instruction,
		Quantized:         quantized && entry.QuantizedURL != "",
	})
	if err != nil {
		return fmt.Errorf("unable to create kuzco: %w", err)
	}

	if err := krn.Load(ctx); err != nil {
		return fmt.Errorf("unable to load model: %w", err)
	}

	defer krn.Unload(context.Background())

	resp, err := krn.Rerank(ctx, model.RerankRequest{
		Query:     query,
		Documents: documents,
	})
	if err != nil {
		return fmt.Errorf("rerank: %w", err)
	}

	fmt.Println()
	for i, score := range resp.Scores {
		doc := documents[i]
		if len(doc) > 60 {
			doc = doc[:60] + "..."
		}
		fmt.Printf("%.6f  %s\n", score, doc)
	}

	return nil
}
