package models

// Warning levels for a deep-dive ingredient, ordered from least to most severe.
type WarningLevel string

const (
	WarningSafe     WarningLevel = "safe"
	WarningLow      WarningLevel = "low"
	WarningMedium   WarningLevel = "medium"
	WarningHigh     WarningLevel = "high"
	WarningCritical WarningLevel = "critical"
)

var warningRanks = map[WarningLevel]int{
	WarningSafe:     0,
	WarningLow:      1,
	WarningMedium:   2,
	WarningHigh:     3,
	WarningCritical: 4,
}

// Rank returns the severity position of w, or -1 for an unknown level.
func (w WarningLevel) Rank() int {
	if r, ok := warningRanks[w]; ok {
		return r
	}
	return -1
}

// NutritionalAnalysis is the root aggregate returned for one label analysis.
// Every field except ConsumptionGuide and CuratedReplacement comes from the model.
type NutritionalAnalysis struct {
	ProductName           string                `json:"product_name"`
	Score                 float64               `json:"score"`
	Summary               string                `json:"summary"`
	ProductClassification ProductClassification `json:"product_classification"`
	MacroAnalysis         MacroAnalysis         `json:"macro_analysis"`
	IngredientsOverview   IngredientsOverview   `json:"ingredients_overview"`
	TheGood               []string              `json:"the_good"`
	TheBad                []string              `json:"the_bad"`
	ReplacementsFood      []ReplacementRecipe   `json:"replacements_food"`
	ReplacementsMarket    []ReplacementProduct  `json:"replacements_market"`
	DeepDive              []DeepDiveIngredient  `json:"deep_dive"`

	ConsumptionGuide   *ConsumptionGuide   `json:"consumption_guide,omitempty"`
	CuratedReplacement *CuratedReplacement `json:"curated_replacement"`
}

// ProductClassification is the model's category assignment and its self-reported certainty.
type ProductClassification struct {
	Category   Category `json:"category"`
	Confidence float64  `json:"confidence"`
}

// MacroAnalysis holds the per-100g nutrition facts read from the label.
type MacroAnalysis struct {
	CaloriesProteinRatio string   `json:"calories_protein_ratio"`
	IsBalanced           bool     `json:"is_balanced"`
	ProteinGrams         float64  `json:"protein_grams"`
	CaloriesTotal        float64  `json:"calories_total"`
	FiberGrams           *float64 `json:"fiber_grams,omitempty"`
	SugarGrams           *float64 `json:"sugar_grams,omitempty"`
	SodiumMgPer100g      float64  `json:"sodium_mg_per_100g"`
	SodiumClassification string   `json:"sodium_classification"`
	FiberClassification  string   `json:"fiber_classification,omitempty"`
	FiberSodiumFeedback  string   `json:"fiber_sodium_feedback"`
}

type IngredientsOverview struct {
	Count                 int      `json:"count"`
	IsUltraprocessed      bool     `json:"is_ultraprocessed"`
	CleanLabel            bool     `json:"clean_label"`
	RiskyIngredientsFound []string `json:"risky_ingredients_found"`
}

type ReplacementRecipe struct {
	Name             string  `json:"name"`
	Calories         float64 `json:"calories"`
	IngredientsBrief string  `json:"ingredients_brief"`
}

type ReplacementProduct struct {
	Name    string `json:"name"`
	Benefit string `json:"benefit"`
}

type DeepDiveIngredient struct {
	Name                  string             `json:"name"`
	WarningLevel          WarningLevel       `json:"warning_level"`
	ShortSummary          string             `json:"short_summary"`
	TechnologicalFunction string             `json:"technological_function"`
	ScientificEvidence    ScientificEvidence `json:"scientific_evidence"`
}

type ScientificEvidence struct {
	CancerRisk       string `json:"cancer_risk,omitempty"`
	Hormones         string `json:"hormones,omitempty"`
	GeneralConsensus string `json:"general_consensus"`
}

// ConsumptionGuide is derived locally and never accepted from the model.
type ConsumptionGuide struct {
	Occasional string `json:"occasional"`
	Frequent   string `json:"frequent"`
	Daily      string `json:"daily"`
}
