// Package pull provides the pull command code.
package pull

import (
	"context"
	"fmt"
	"time"

	"github.com/ardanlabs/kuzco/sdk/kuzco"
	"github.com/ardanlabs/kuzco/sdk/tools/catalog"
	"github.com/ardanlabs/kuzco/sdk/tools/models"
)

// Run executes the pull command.
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

	store, err := models.New()
	if err != nil {
		return err
	}

	fmt.Println("Model    :", entry.ID)
	fmt.Println("URL      :", entry.ResolveURL(quantized))
	fmt.Println("ModelPath:", store.Path())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	modelFile, err := store.Resolve(ctx, kuzco.FmtLogger, entry, quantized)
	if err != nil {
		return err
	}

	fmt.Println("Download Completed:", modelFile)

	return nil
}
