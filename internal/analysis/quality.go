package analysis

import (
	"strconv"
	"strings"

	"github.com/kiranshivaraju/nutrieye/internal/extraction"
	"github.com/kiranshivaraju/nutrieye/pkg/models"
)

// Finding is one inconsistency detected in a model-produced document.
// Findings are data-quality signals; they never invalidate the document.
type Finding struct {
	Field    string
	Expected string
	Got      string
}

func (f Finding) String() string {
	return f.Field + ": expected " + strconv.Quote(f.Expected) + ", got " + strconv.Quote(f.Got)
}

// Inspect checks the document for fields the model filled inconsistently.
func Inspect(doc *models.NutritionalAnalysis) []Finding {
	var findings []Finding

	macro := doc.MacroAnalysis
	want := extraction.ExpectedSodiumClassification(macro.SodiumMgPer100g)
	if !strings.EqualFold(strings.TrimSpace(macro.SodiumClassification), want) {
		findings = append(findings, Finding{
			Field:    "macro_analysis.sodium_classification",
			Expected: want,
			Got:      macro.SodiumClassification,
		})
	}

	if macro.FiberClassification != "" && macro.FiberGrams == nil {
		findings = append(findings, Finding{
			Field:    "macro_analysis.fiber_grams",
			Expected: "a value when fiber_classification is set",
			Got:      "",
		})
	}

	return findings
}

// SodiumMismatch reports whether findings include a sodium band disagreement.
func SodiumMismatch(findings []Finding) bool {
	for _, f := range findings {
		if f.Field == "macro_analysis.sodium_classification" {
			return true
		}
	}
	return false
}

// MostSevere returns the highest warning level among deep-dive ingredients,
// or the empty level when there are none.
func MostSevere(items []models.DeepDiveIngredient) models.WarningLevel {
	var worst models.WarningLevel
	for _, item := range items {
		if item.WarningLevel.Rank() > worst.Rank() {
			worst = item.WarningLevel
		}
	}
	return worst
}
