// Package show provides the show command code.
package show

import (
	"context"
	"fmt"
	"time"

	"github.com/ardanlabs/kuzco/sdk/kuzco"
	"github.com/ardanlabs/kuzco/sdk/kuzco/model"
	"github.com/ardanlabs/kuzco/sdk/tools/catalog"
	"github.com/ardanlabs/kuzco/sdk/tools/models"
)

// Run executes the show command.
func Run(args []string, catalogFile string, quantized bool) error {
	modelID := args[0]

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

	mi := krn.ModelInfo()

	fmt.Println()
	fmt.Printf("ID:          %s\n", mi.ID)
	fmt.Printf("Kind:        %s\n", mi.Kind)
	fmt.Printf("Desc:        %s\n", mi.Desc)
	fmt.Printf("Size:        %.2f MiB\n", float64(mi.Size)/(1024*1024))
	fmt.Printf("Dimensions:  %d\n", mi.Dimensions)
	fmt.Printf("HasEncoder:  %t\n", mi.HasEncoder)
	fmt.Printf("HasDecoder:  %t\n", mi.HasDecoder)
	fmt.Printf("IsRecurrent: %t\n", mi.IsRecurrent)
	fmt.Printf("IsHybrid:    %t\n", mi.IsHybrid)
	fmt.Printf("Quantized:   %t\n", mi.Quantized)
	fmt.Println("Metadata:")
	for k, v := range mi.Metadata {
		fmt.Printf("  %s: %s\n", k, v)
	}

	return nil
}
