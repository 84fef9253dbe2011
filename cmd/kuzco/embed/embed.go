// Package embed provides the embed command code.
package embed

import (
	"context"
	"fmt"
	"time"

	"github.com/ardanlabs/kuzco/sdk/kuzco"
	"github.com/ardanlabs/kuzco/sdk/kuzco/model"
	"github.com/ardanlabs/kuzco/sdk/tools/catalog"
	"github.com/ardanlabs/kuzco/sdk/tools/models"
)

// Run executes the embed command. Each argument is a text to embed.
func Run(args []string, modelID string, catalogFile string, quantized bool) error {
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

	if kind != model.KindEmbed {
		return fmt.Errorf("model %q doesn't support embedding", modelID)
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
		Quantized:         quantized && entry.QuantizedURL != "",
	})
	if err != nil {
		return fmt.Errorf("unable to create kuzco: %w", err)
	}

	if err := krn.Load(ctx); err != nil {
		return fmt.Errorf("unable to load model: %w", err)
	}

	defer krn.Unload(context.Background())

	resp, err := krn.Embeddings(ctx, model.EmbedRequest{
		Texts: args,
	})
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}

	fmt.Println()
	fmt.Println("Dimensions:", resp.Dimensions)

	for _, d := range resp.Data {
		n := min(len(d.Embedding), 8)

		fmt.Printf("[%d]", d.Index)
		for _, v := range d.Embedding[:n] {
			fmt.Printf(" %.4f", v)
		}
		if len(d.Embedding) > n {
			fmt.Print(" ...")
		}
		fmt.Println()
	}

	return nil
}
