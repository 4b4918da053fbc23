package models

// CuratedReplacement is one entry of the static replacement catalog.
type CuratedReplacement struct {
	Name                 string          `json:"name"`
	Image                string          `json:"image"`
	Reason               string          `json:"reason"`
	Calories             float64         `json:"calories"`
	Ingredients          string          `json:"ingredients"`
	Allergens            *Allergens      `json:"allergens,omitempty"`
	Portion              *Portion        `json:"portion,omitempty"`
	Nutrition            *NutritionPanel `json:"nutrition,omitempty"`
	DailyValuePercentage *DailyValues    `json:"daily_value_percentage,omitempty"`
	Dimensions           *Dimensions     `json:"dimensions,omitempty"`
	ASIN                 string          `json:"asin,omitempty"`
	PurchaseLinks        []PurchaseLink  `json:"purchase_links,omitempty"`
	PriceSummary         *PriceSummary   `json:"price_summary,omitempty"`
}

type Allergens struct {
	ContainsGluten bool `json:"contains_gluten"`
}

type Portion struct {
	SizeG       float64 `json:"size_g"`
	Description string  `json:"description"`
}

type NutritionPanel struct {
	CaloriesKcal   float64 `json:"calories_kcal"`
	CarbohydratesG float64 `json:"carbohydrates_g"`
	ProteinsG      float64 `json:"proteins_g"`
	TotalFatG      float64 `json:"total_fat_g"`
	SaturatedFatG  float64 `json:"saturated_fat_g"`
	TransFatG      float64 `json:"trans_fat_g"`
	FiberG         float64 `json:"fiber_g"`
	SodiumMg       float64 `json:"sodium_mg"`
}

type DailyValues struct {
	Calories      float64 `json:"calories"`
	Carbohydrates float64 `json:"carbohydrates"`
	Proteins      float64 `json:"proteins"`
	Fiber         float64 `json:"fiber"`
	Sodium        float64 `json:"sodium"`
}

type Dimensions struct {
	WidthCm  float64 `json:"width_cm"`
	DepthCm  float64 `json:"depth_cm"`
	HeightCm float64 `json:"height_cm"`
	WeightG  float64 `json:"weight_g"`
}

// PurchaseLink is one store offer for a replacement product.
type PurchaseLink struct {
	ID          string `json:"id"`
	Store       string `json:"store"`
	URL         string `json:"url"`
	Price       Price  `json:"price"`
	LastChecked string `json:"last_checked,omitempty"`
}

type Price struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// PriceSummary is precomputed catalog data; nothing in the service derives it.
type PriceSummary struct {
	LowestPrice LowestPrice `json:"lowest_price"`
	PriceRange  PriceRange  `json:"price_range"`
}

type LowestPrice struct {
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	StoreID     string  `json:"store_id"`
	URL         string  `json:"url"`
	LastChecked string  `json:"last_checked,omitempty"`
}

type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Clone returns a deep copy so callers cannot mutate catalog data.
func (r CuratedReplacement) Clone() CuratedReplacement {
	out := r
	if r.Allergens != nil {
		v := *r.Allergens
		out.Allergens = &v
	}
	if r.Portion != nil {
		v := *r.Portion
		out.Portion = &v
	}
	if r.Nutrition != nil {
		v := *r.Nutrition
		out.Nutrition = &v
	}
	if r.DailyValuePercentage != nil {
		v := *r.DailyValuePercentage
		out.DailyValuePercentage = &v
	}
	if r.Dimensions != nil {
		v := *r.Dimensions
		out.Dimensions = &v
	}
	if r.PurchaseLinks != nil {
		out.PurchaseLinks = append([]PurchaseLink(nil), r.PurchaseLinks...)
	}
	if r.PriceSummary != nil {
		v := *r.PriceSummary
		out.PriceSummary = &v
	}
	return out
}
