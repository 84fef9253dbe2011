// Package rm provides the rm command code.
package rm

import (
	"fmt"

	"github.com/ardanlabs/kuzco/sdk/tools/models"
)

// Run executes the rm command.
func Run(args []string) error {
	filename := args[0]

	store, err := models.New()
	if err != nil {
		return err
	}

	if err := store.Remove(filename); err != nil {
		return err
	}

	fmt.Println("Removed:", filename)

	return nil
}
