// Package file provides a file-based catalog source reading JSON catalog
// and pre-computed embedding files from disk.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/shoplens/shoplens-cli/internal/core/domain"
	"github.com/shoplens/shoplens-cli/internal/core/ports/driven"
	"github.com/shoplens/shoplens-cli/internal/logger"
)

// Ensure CatalogSource implements the interface.
var _ driven.CatalogSource = (*CatalogSource)(nil)

// debounceInterval coalesces bursts of filesystem events into one reload.
// Editors typically emit several writes per save.
const debounceInterval = 500 * time.Millisecond

// CatalogSource reads a product catalog and an optional pre-computed
// vectors file from disk.
type CatalogSource struct {
	catalogPath string
	vectorsPath string
}

// vectorsFile is the on-disk format of a pre-computed embeddings file.
// Embeddings produced by 'shoplens catalog embed' carry the model header;
// bare arrays are accepted for hand-built files.
type vectorsFile struct {
	Model      string                       `json:"model"`
	Dimensions int                          `json:"dimensions"`
	Embeddings []domain.PrecomputedEmbedding `json:"embeddings"`
}

// NewCatalogSource creates a catalog source for the given paths. The
// vectors path may be empty, in which case LoadPrecomputed reports
// domain.ErrNotFound and the caller embeds from scratch.
func NewCatalogSource(catalogPath, vectorsPath string) (*CatalogSource, error) {
	if catalogPath == "" {
		return nil, fmt.Errorf("%w: catalog path is required", domain.ErrInvalidInput)
	}
	return &CatalogSource{
		catalogPath: catalogPath,
		vectorsPath: vectorsPath,
	}, nil
}

// LoadCatalog reads and validates the catalog file.
func (s *CatalogSource) LoadCatalog(_ context.Context) (*domain.Catalog, error) {
	data, err := os.ReadFile(s.catalogPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: catalog file %s", domain.ErrNotFound, s.catalogPath)
		}
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var catalog domain.Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("%w: parse catalog %s: %v", domain.ErrInvalidInput, s.catalogPath, err)
	}
	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", s.catalogPath, err)
	}

	logger.Debug("Loaded catalog %s (%d products)", s.catalogPath, len(catalog.Products))
	return &catalog, nil
}

// LoadPrecomputed reads the pre-computed embeddings file.
func (s *CatalogSource) LoadPrecomputed(_ context.Context) ([]domain.PrecomputedEmbedding, error) {
	if s.vectorsPath == "" {
		return nil, domain.ErrNotFound
	}

	data, err := os.ReadFile(s.vectorsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("read vectors file: %w", err)
	}

	var vf vectorsFile
	if err := json.Unmarshal(data, &vf); err != nil || len(vf.Embeddings) == 0 {
		// Fall back to a bare array of records.
		var bare []domain.PrecomputedEmbedding
		if bareErr := json.Unmarshal(data, &bare); bareErr != nil {
			return nil, fmt.Errorf("%w: parse vectors file %s: %v", domain.ErrInvalidInput, s.vectorsPath, err)
		}
		vf.Embeddings = bare
	}

	if len(vf.Embeddings) == 0 {
		return nil, domain.ErrNotFound
	}
	for i := range vf.Embeddings {
		if vf.Embeddings[i].ProductID == "" {
			return nil, fmt.Errorf("%w: vectors file record %d has no product id", domain.ErrInvalidInput, i)
		}
		if len(vf.Embeddings[i].Vector) == 0 {
			return nil, fmt.Errorf("%w: vectors file record %d has an empty vector", domain.ErrInvalidInput, i)
		}
	}

	logger.Debug("Loaded %d pre-computed embeddings from %s", len(vf.Embeddings), s.vectorsPath)
	return vf.Embeddings, nil
}

// SavePrecomputed writes embeddings to the vectors path so later runs take
// the fast load path.
func (s *CatalogSource) SavePrecomputed(model string, dimensions int, embeddings []domain.PrecomputedEmbedding) error {
	if s.vectorsPath == "" {
		return fmt.Errorf("%w: no vectors path configured", domain.ErrInvalidInput)
	}

	data, err := json.MarshalIndent(vectorsFile{
		Model:      model,
		Dimensions: dimensions,
		Embeddings: embeddings,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal vectors file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.vectorsPath), 0o700); err != nil {
		return fmt.Errorf("create vectors dir: %w", err)
	}
	// Write to a temp file then rename so a crash never leaves a truncated
	// vectors file behind.
	tmp := s.vectorsPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write vectors file: %w", err)
	}
	if err := os.Rename(tmp, s.vectorsPath); err != nil {
		return fmt.Errorf("replace vectors file: %w", err)
	}
	return nil
}

// Watch invokes onChange whenever the catalog file is rewritten, until the
// context is cancelled. Events are debounced because editors and scrapers
// emit several writes per save.
func (s *CatalogSource) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory rather than the file: rename-over-replace (the
	// common atomic write pattern) drops a file-level watch.
	dir := filepath.Dir(s.catalogPath)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	target := filepath.Clean(s.catalogPath)
	var timer *time.Timer
	var timerC <-chan time.Time

	logger.Debug("Watching catalog %s", s.catalogPath)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounceInterval)
				timerC = timer.C
			} else {
				timer.Reset(debounceInterval)
			}

		case <-timerC:
			timerC = nil
			timer = nil
			logger.Debug("Catalog %s changed, reloading", s.catalogPath)
			onChange()

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Catalog watch error: %v", watchErr)
		}
	}
}
