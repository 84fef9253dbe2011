// Package libs provides the libs command code.
package libs

import (
	"context"
	"fmt"
	"time"

	"github.com/ardanlabs/kuzco/sdk/kuzco"
	"github.com/ardanlabs/kuzco/sdk/tools/defaults"
	"github.com/ardanlabs/kuzco/sdk/tools/libs"
)

// Run executes the libs command.
func Run(args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	processor, err := defaults.Processor("")
	if err != nil {
		return err
	}

	lbs, err := libs.NewWithProcessor(processor)
	if err != nil {
		return err
	}

	if _, err := lbs.Download(ctx, kuzco.FmtLogger); err != nil {
		return fmt.Errorf("unable to install llama.cpp: %w", err)
	}

	if err := kuzco.Init(); err != nil {
		return fmt.Errorf("libs: installation invalid: %w", err)
	}

	return nil
}
