// Package curator picks a curated replacement for a classified product.
package curator

import (
	"github.com/kiranshivaraju/nutrieye/internal/catalog"
	"github.com/kiranshivaraju/nutrieye/internal/metrics"
	"github.com/kiranshivaraju/nutrieye/pkg/models"
)

// MinConfidence is the lowest classification confidence that earns a recommendation.
const MinConfidence = 0.85

// Confident reports whether a classification is certain enough to act on.
func Confident(confidence float64) bool {
	return confidence >= MinConfidence
}

// Curator selects replacements from a read-only catalog.
type Curator struct {
	catalog *catalog.Catalog
}

func New(c *catalog.Catalog) *Curator {
	return &Curator{catalog: c}
}

// Select returns a copy of the first catalog entry for the classified
// category, or nil when the classification is not confident or the category
// has no entries.
func (c *Curator) Select(pc models.ProductClassification) *models.CuratedReplacement {
	if !Confident(pc.Confidence) {
		return nil
	}
	r, ok := c.catalog.First(pc.Category)
	if !ok {
		return nil
	}
	metrics.ReplacementsServed.WithLabelValues(string(pc.Category)).Inc()
	return &r
}
