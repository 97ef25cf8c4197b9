package adapter

import (
	"context"
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"
	m "testscope.dev/pkg/testscope/internal/model"
)

// IndexFileAdapter loads a precomputed metadata index from disk.
type IndexFileAdapter interface {
	LoadIndex(ctx context.Context, path m.Path) (*m.TypeIndex, error)
}

// indexDocument is the on-disk layout of an index file.
type indexDocument struct {
	Runtime m.Runtime           `yaml:"runtime"`
	Types   []*m.ClassCandidate `yaml:"types"`
}

// LocalIndexFileAdapter reads YAML index files through a LocationFSAdapter.
type LocalIndexFileAdapter struct {
	fs LocationFSAdapter
}

// NewLocalIndexFileAdapter constructs a LocalIndexFileAdapter.
func NewLocalIndexFileAdapter(fs LocationFSAdapter) *LocalIndexFileAdapter {
	return &LocalIndexFileAdapter{fs: fs}
}

// LoadIndex parses the index file at path. Relative type locations are
// resolved against the directory holding the index file.
func (a *LocalIndexFileAdapter) LoadIndex(ctx context.Context, path m.Path) (*m.TypeIndex, error) {
	content, err := a.fs.ReadFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read index %s: %w", path, err)
	}

	var doc indexDocument
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse index %s: %w", path, err)
	}

	base := filepath.Dir(string(path))
	idx := m.NewTypeIndex()
	idx.Runtime = doc.Runtime

	for i, c := range doc.Types {
		if c == nil || c.Name == "" {
			return nil, fmt.Errorf("index %s: type #%d has no name", path, i)
		}

		if c.Location != "" && !filepath.IsAbs(string(c.Location.Clean())) {
			c.Location = m.Location(filepath.Join(base, string(c.Location.Clean())))
		}

		idx.Add(c)
	}

	return idx, nil
}
