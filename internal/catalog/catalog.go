// Package catalog holds the curated replacement table keyed by product category.
package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/kiranshivaraju/nutrieye/pkg/models"
)

//go:embed catalog.json
var defaultCatalog []byte

// ErrInvalidCatalog is returned when catalog data cannot be loaded.
var ErrInvalidCatalog = errors.New("invalid replacement catalog")

// Catalog maps a category to its replacements in priority order.
// It is immutable after loading and safe for concurrent reads.
type Catalog struct {
	entries map[models.Category][]models.CuratedReplacement
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// LoadFile parses a catalog from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes catalog JSON, rejecting unknown categories and unnamed entries.
func Parse(data []byte) (*Catalog, error) {
	var raw map[models.Category][]models.CuratedReplacement
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	for cat, list := range raw {
		if !cat.Valid() {
			return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidCatalog, cat)
		}
		for i, r := range list {
			if r.Name == "" {
				return nil, fmt.Errorf("%w: %s entry %d has no name", ErrInvalidCatalog, cat, i)
			}
		}
	}

	return &Catalog{entries: raw}, nil
}

// First returns a copy of the highest-priority replacement for cat.
func (c *Catalog) First(cat models.Category) (models.CuratedReplacement, bool) {
	list := c.entries[cat]
	if len(list) == 0 {
		return models.CuratedReplacement{}, false
	}
	return list[0].Clone(), true
}

// Categories lists the categories with at least one replacement, sorted.
func (c *Catalog) Categories() []models.Category {
	var out []models.Category
	for cat, list := range c.entries {
		if len(list) > 0 {
			out = append(out, cat)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
