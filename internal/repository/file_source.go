package repository

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vanshika/dexroute/backend/internal/domain"
)

// FileSource serves pairs from a YAML or JSON document. The file is read on
// every call so edits are picked up without a restart.
//
// Accepted layouts are a bare list of {pairId, a, b} records or a mapping with
// a top-level "pairs" list.
type FileSource struct {
	path string
}

// NewFileSource returns a FileSource reading path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Path returns the backing file.
func (f *FileSource) Path() string {
	return f.path
}

// ListPairs reads and decodes the pair file.
func (f *FileSource) ListPairs(ctx context.Context) ([]domain.Pair, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read pairs file: %w", err)
	}
	pairs, err := DecodePairs(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.path, err)
	}
	return pairs, nil
}

// DecodePairs parses a pair document. Asset symbols are normalized the same
// way UpsertPair normalizes them.
func DecodePairs(data []byte) ([]domain.Pair, error) {
	var doc struct {
		Pairs []domain.Pair `yaml:"pairs"`
	}
	var pairs []domain.Pair
	if err := yaml.Unmarshal(data, &doc); err == nil && doc.Pairs != nil {
		pairs = doc.Pairs
	} else if err := yaml.Unmarshal(data, &pairs); err != nil {
		return nil, err
	}

	for i, pair := range pairs {
		if err := validatePair(pair); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		// queries are upper-cased, so stored symbols must be too
		pairs[i].A = domain.NormalizeAsset(string(pair.A))
		pairs[i].B = domain.NormalizeAsset(string(pair.B))
	}
	if pairs == nil {
		pairs = []domain.Pair{}
	}
	return pairs, nil
}

// EncodePairs renders pairs in the layout DecodePairs accepts.
func EncodePairs(pairs []domain.Pair) ([]byte, error) {
	doc := struct {
		Pairs []domain.Pair `yaml:"pairs"`
	}{Pairs: pairs}
	return yaml.Marshal(doc)
}
