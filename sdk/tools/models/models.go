// Package models provides support for tooling around model weights.
package models

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ardanlabs/kuzco/sdk/tools/catalog"
	"github.com/ardanlabs/kuzco/sdk/tools/defaults"
	"github.com/ardanlabs/kuzco/sdk/tools/downloader"
)

const localFolder = "models"

// Logger represents a logger for capturing events.
type Logger func(ctx context.Context, msg string, args ...any)

// Models manages the local store of model weight files.
type Models struct {
	path string
}

// New constructs the model store in the default location.
func New() (*Models, error) {
	return NewWithPath("")
}

// NewWithPath constructs the model store in the given location. An empty
// path resolves against the default base directory.
func NewWithPath(basePath string) (*Models, error) {
	modelPath := filepath.Join(defaults.BaseDir(basePath), localFolder)

	if err := os.MkdirAll(modelPath, 0755); err != nil {
		return nil, fmt.Errorf("creating models directory: %w", err)
	}

	return &Models{path: modelPath}, nil
}

// Path returns the location of the model store.
func (m *Models) Path() string {
	return m.path
}

// ModelFile returns the local path a catalog entry's artifact resolves to
// for the requested precision, whether or not it has been downloaded.
func (m *Models) ModelFile(e catalog.Entry, quantized bool) (string, error) {
	src := e.ResolveURL(quantized)

	u, err := url.Parse(src)
	if err != nil {
		return "", fmt.Errorf("model-file: parsing url %q: %w", src, err)
	}

	filename := path.Base(u.Path)
	if filename == "." || filename == "/" {
		return "", fmt.Errorf("model-file: url %q has no file name", src)
	}

	return filepath.Join(m.path, filename), nil
}

// Resolve returns the local path of a catalog entry's weights, downloading
// the artifact when it is not already present.
func (m *Models) Resolve(ctx context.Context, log Logger, e catalog.Entry, quantized bool) (string, error) {
	modelFile, err := m.ModelFile(e, quantized)
	if err != nil {
		return "", fmt.Errorf("resolve: %w", err)
	}

	if _, err := os.Stat(modelFile); err == nil {
		log(ctx, "resolve-model", "status", "already downloaded", "model", e.ID, "file", modelFile)
		return modelFile, nil
	}

	src := e.ResolveURL(quantized)

	log(ctx, "resolve-model", "status", "downloading", "model", e.ID, "url", src)

	progress := func(src string, currentSize int64, totalSize int64, mibPerSec float64, complete bool) {
		log(ctx, fmt.Sprintf("\x1b[1A\r\x1b[Kresolve-model: Downloading %s... %d MiB of %d MiB (%.2f MiB/s)", src, currentSize/(1024*1024), totalSize/(1024*1024), mibPerSec))
	}

	downloaded, err := downloader.Download(ctx, src, modelFile, progress, downloader.SizeIntervalMIB100)
	if err != nil {
		os.Remove(modelFile)
		return "", fmt.Errorf("resolve: downloading %q: %w", src, err)
	}

	if !downloaded {
		os.Remove(modelFile)
		return "", fmt.Errorf("resolve: %q produced an empty file", src)
	}

	return modelFile, nil
}

// List returns the weight files currently in the store.
func (m *Models) List() ([]string, error) {
	entries, err := os.ReadDir(m.path)
	if err != nil {
		return nil, fmt.Errorf("list: reading models directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if !strings.HasSuffix(entry.Name(), ".gguf") {
			continue
		}

		files = append(files, entry.Name())
	}

	return files, nil
}

// Remove deletes a weight file from the store.
func (m *Models) Remove(filename string) error {
	if filepath.Base(filename) != filename {
		return fmt.Errorf("remove: %q must be a bare file name", filename)
	}

	if err := os.Remove(filepath.Join(m.path, filename)); err != nil {
		return fmt.Errorf("remove: %w", err)
	}

	return nil
}
