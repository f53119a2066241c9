package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/venuequote/api/internal/domain"
)

// FileProvider reads the catalog from a YAML document on disk. The file is re-read on every
// Snapshot call; wrap the provider in a cache to bound reload frequency.
type FileProvider struct {
	path     string
	readFile func(string) ([]byte, error)
}

// NewFileProvider constructs a provider for the YAML file at path.
func NewFileProvider(path string) (*FileProvider, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("catalog file provider: path is required")
	}
	return &FileProvider{path: path, readFile: os.ReadFile}, nil
}

// Snapshot parses the catalog file.
func (p *FileProvider) Snapshot(ctx context.Context) (domain.CatalogSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return domain.CatalogSnapshot{}, err
	}
	data, err := p.readFile(p.path)
	if err != nil {
		return domain.CatalogSnapshot{}, fmt.Errorf("catalog file: read %s: %w", p.path, err)
	}
	snapshot, err := ParseYAML(data)
	if err != nil {
		return domain.CatalogSnapshot{}, fmt.Errorf("catalog file %s: %w", p.path, err)
	}
	return snapshot, nil
}

// ParseYAML decodes a catalog document. Unknown keys are rejected.
func ParseYAML(data []byte) (domain.CatalogSnapshot, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var record fileRecord
	if err := decoder.Decode(&record); err != nil {
		return domain.CatalogSnapshot{}, fmt.Errorf("%w: decode yaml: %v", ErrInvalidCatalog, err)
	}

	var categories []addonCategoryRecord
	for eventType, list := range record.Addons {
		for i, category := range list {
			category.EventType = eventType
			category.SortOrder = i
			categories = append(categories, category)
		}
	}
	return buildSnapshot(record.Settings, record.Packages, categories)
}
