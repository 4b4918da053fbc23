package models

import (
	"time"

	"github.com/google/uuid"
)

// AnalysisRecord is one persisted label analysis.
type AnalysisRecord struct {
	ID          uuid.UUID            `db:"id"            json:"id"`
	Fingerprint string               `db:"fingerprint"   json:"fingerprint"`
	ImageCount  int                  `db:"image_count"   json:"image_count"`
	ImageKeys   []string             `db:"image_keys"    json:"image_keys,omitempty"`
	Provider    string               `db:"provider"      json:"provider"`
	Model       string               `db:"model"         json:"model"`
	ProductName string               `db:"product_name"  json:"product_name"`
	Category    Category             `db:"category"      json:"category"`
	Confidence  float64              `db:"confidence"    json:"confidence"`
	Score       float64              `db:"score"         json:"score"`
	Attempts    int                  `db:"attempts"      json:"attempts"`
	Analysis    *NutritionalAnalysis `db:"analysis"      json:"analysis"`
	CreatedAt   time.Time            `db:"created_at"    json:"created_at"`
}
