// Package guidance derives consumption-frequency advice from a label's
// sodium, sugar and processing degree.
package guidance

import (
	"strconv"

	"github.com/kiranshivaraju/nutrieye/pkg/models"
)

// Thresholds per 100g. Sodium is in mg, sugar in grams.
const (
	LowSodium     = 120
	HighSodium    = 400
	ModerateSugar = 10
	LowSugar      = 5
)

const (
	msgOccasional = "Uso tranquilo dentro de uma alimentação equilibrada."

	msgFrequentUltraprocessed = "Evite o consumo frequente devido ao grau de processamento."
	msgFrequentModerateSugar  = "Moderado em açúcar, pode fazer parte da rotina se intercalado."
	msgFrequentGood           = "Boa base para o dia a dia."

	msgDailyUltraprocessed = "Prefira alimentos in natura para consumo diário."
	msgDailyExcellent      = "Excelente opção para consumo diário."
	msgDailyControlled     = "Pode ser consumido diariamente em porções controladas."
	msgDailyPrefer         = "Para consumo diário, prefira versões com menos sal/açúcar."
)

// Input is the subset of an analysis the guidance depends on.
type Input struct {
	SodiumMgPer100g  float64
	SugarGrams       float64
	IsUltraprocessed bool
}

// FromAnalysis extracts the guidance input from a document. A missing sugar
// value counts as zero.
func FromAnalysis(doc *models.NutritionalAnalysis) Input {
	in := Input{
		SodiumMgPer100g:  doc.MacroAnalysis.SodiumMgPer100g,
		IsUltraprocessed: doc.IngredientsOverview.IsUltraprocessed,
	}
	if doc.MacroAnalysis.SugarGrams != nil {
		in.SugarGrams = *doc.MacroAnalysis.SugarGrams
	}
	return in
}

// Build returns the consumption guide for in. Within each field the first
// matching rule wins.
func Build(in Input) models.ConsumptionGuide {
	return models.ConsumptionGuide{
		Occasional: msgOccasional,
		Frequent:   frequent(in),
		Daily:      daily(in),
	}
}

func frequent(in Input) string {
	switch {
	case in.IsUltraprocessed:
		return msgFrequentUltraprocessed
	case in.SodiumMgPer100g > HighSodium:
		return "Atenção ao consumo frequente pelo alto teor de sódio (" +
			strconv.FormatFloat(in.SodiumMgPer100g, 'f', -1, 64) + "mg)."
	case in.SugarGrams > ModerateSugar:
		return msgFrequentModerateSugar
	default:
		return msgFrequentGood
	}
}

func daily(in Input) string {
	switch {
	case in.IsUltraprocessed:
		return msgDailyUltraprocessed
	case in.SodiumMgPer100g < LowSodium && in.SugarGrams < LowSugar:
		return msgDailyExcellent
	case in.SodiumMgPer100g < HighSodium && in.SugarGrams < ModerateSugar:
		return msgDailyControlled
	default:
		return msgDailyPrefer
	}
}
