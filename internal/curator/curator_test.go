package curator_test

import (
	"testing"

	"github.com/kiranshivaraju/nutrieye/internal/catalog"
	"github.com/kiranshivaraju/nutrieye/internal/curator"
	"github.com/kiranshivaraju/nutrieye/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCurator(t *testing.T) *curator.Curator {
	t.Helper()
	c, err := catalog.Load()
	require.NoError(t, err)
	return curator.New(c)
}

func TestConfident(t *testing.T) {
	assert.False(t, curator.Confident(0.84))
	assert.False(t, curator.Confident(0.849999))
	assert.True(t, curator.Confident(0.85))
	assert.True(t, curator.Confident(1))
}

func TestSelect_BelowThreshold(t *testing.T) {
	got := newCurator(t).Select(models.ProductClassification{
		Category:   models.CategoryExtratoDeTomate,
		Confidence: 0.84,
	})
	assert.Nil(t, got)
}

func TestSelect_AtThreshold(t *testing.T) {
	got := newCurator(t).Select(models.ProductClassification{
		Category:   models.CategoryExtratoDeTomate,
		Confidence: 0.85,
	})
	require.NotNil(t, got)
	assert.Equal(t, "Passata di Pomodoro Italiana", got.Name)
}

func TestSelect_EachTomatoCategory(t *testing.T) {
	want := map[models.Category]string{
		models.CategoryExtratoDeTomate: "Passata di Pomodoro Italiana",
		models.CategoryMolhoDeTomate:   "Tomate Pelado Cirio",
		models.CategoryPassata:         "Passata Rustica De Cecco",
	}
	cur := newCurator(t)
	for cat, name := range want {
		got := cur.Select(models.ProductClassification{Category: cat, Confidence: 0.99})
		require.NotNil(t, got, cat)
		assert.Equal(t, name, got.Name)
	}
}

func TestSelect_NoEntries(t *testing.T) {
	cur := newCurator(t)
	assert.Nil(t, cur.Select(models.ProductClassification{Category: models.CategoryTomatePelado, Confidence: 0.99}))
	assert.Nil(t, cur.Select(models.ProductClassification{Category: models.CategoryOutros, Confidence: 0.99}))
}

func TestSelect_ReturnsIndependentCopies(t *testing.T) {
	cur := newCurator(t)
	pc := models.ProductClassification{Category: models.CategoryPassata, Confidence: 0.9}

	a := cur.Select(pc)
	a.Name = "changed"
	b := cur.Select(pc)
	assert.Equal(t, "Passata Rustica De Cecco", b.Name)
}
