// Package list provides the list command code.
package list

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/ardanlabs/kuzco/sdk/tools/catalog"
	"github.com/ardanlabs/kuzco/sdk/tools/models"
)

// Run executes the list command. It shows the catalog and which weight
// files have been downloaded.
func Run(args []string, catalogFile string) error {
	ctlg := catalog.Default()
	if catalogFile != "" {
		var err error
		ctlg, err = catalog.Load(catalogFile)
		if err != nil {
			return err
		}
	}

	store, err := models.New()
	if err != nil {
		return err
	}

	files, err := store.List()
	if err != nil {
		return err
	}

	downloaded := make(map[string]bool, len(files))
	for _, f := range files {
		downloaded[f] = true
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tMAX SEQ LEN\tFULL\tQUANTIZED")

	for _, id := range ctlg.IDs() {
		entry, err := ctlg.Retrieve(id)
		if err != nil {
			return err
		}

		full := localStatus(store, entry, false, downloaded)
		quant := "-"
		if entry.QuantizedURL != "" {
			quant = localStatus(store, entry, true, downloaded)
		}

		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", entry.ID, entry.Kind, entry.MaxSequenceLength, full, quant)
	}

	return w.Flush()
}

func localStatus(store *models.Models, entry catalog.Entry, quantized bool, downloaded map[string]bool) string {
	modelFile, err := store.ModelFile(entry, quantized)
	if err != nil {
		return "?"
	}

	if downloaded[filepath.Base(modelFile)] {
		return "downloaded"
	}

	return "remote"
}
