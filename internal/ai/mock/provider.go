package mock

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/kiranshivaraju/nutrieye/pkg/models"
)

// SampleAnalysisJSON is a contract-valid model response for a tomato paste label.
const SampleAnalysisJSON = `{
  "product_name": "Extrato de Tomate Tradicional",
  "score": 92,
  "summary": "Produto simples, com poucos ingredientes e sódio baixo.",
  "product_classification": {"category": "extrato_de_tomate", "confidence": 0.92},
  "macro_analysis": {
    "calories_protein_ratio": "baixa caloria, proteína moderada",
    "is_balanced": true,
    "protein_grams": 1.2,
    "calories_total": 25,
    "fiber_grams": 0.6,
    "sugar_grams": 0,
    "sodium_mg_per_100g": 89,
    "sodium_classification": "baixo",
    "fiber_classification": "pobre",
    "fiber_sodium_feedback": "Sódio baixo para a categoria."
  },
  "ingredients_overview": {
    "count": 2,
    "is_ultraprocessed": false,
    "clean_label": true,
    "risky_ingredients_found": []
  },
  "the_good": ["Apenas tomate e sal"],
  "the_bad": [],
  "replacements_food": [{"name": "Molho caseiro", "calories": 40, "ingredients_brief": "Tomate, alho, azeite"}],
  "replacements_market": [{"name": "Passata italiana", "benefit": "Sem espessantes"}],
  "deep_dive": [{
    "name": "Sal",
    "warning_level": "safe",
    "short_summary": "Presente em quantidade baixa.",
    "technological_function": "Realçador de sabor",
    "scientific_evidence": {"general_consensus": "Seguro nas quantidades usadas."}
  }]
}`

// SampleAnalysisWithout returns SampleAnalysisJSON with a top-level field removed.
func SampleAnalysisWithout(field string) string {
	var m map[string]any
	if err := json.Unmarshal([]byte(SampleAnalysisJSON), &m); err != nil {
		panic(err)
	}
	delete(m, field)
	b, err := json.Marshal(m)
	if err != nil {
		panic(err)
	}
	return string(b)
}

// TextResult wraps text as a single-candidate RawResult.
func TextResult(text string) *models.RawResult {
	return &models.RawResult{
		Candidates: []models.Candidate{{Parts: []string{text}, FinishReason: "STOP"}},
		Model:      "mock-v1",
	}
}

// Step is one scripted oracle reply.
type Step struct {
	Result *models.RawResult
	Err    error
}

// MockOracle satisfies models.Oracle for testing.
type MockOracle struct {
	Name_       string
	AttemptFunc func(ctx context.Context, req models.InferenceRequest) (*models.RawResult, error)

	mu       sync.Mutex
	calls    int
	requests []models.InferenceRequest
}

func (m *MockOracle) Name() string { return m.Name_ }

func (m *MockOracle) Attempt(ctx context.Context, req models.InferenceRequest) (*models.RawResult, error) {
	m.mu.Lock()
	m.calls++
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.AttemptFunc != nil {
		return m.AttemptFunc(ctx, req)
	}
	return TextResult(SampleAnalysisJSON), nil
}

// Calls returns how many times Attempt was invoked.
func (m *MockOracle) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Requests returns the requests received so far.
func (m *MockOracle) Requests() []models.InferenceRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.InferenceRequest(nil), m.requests...)
}

// NewMockOracle returns a MockOracle that always answers with SampleAnalysisJSON.
func NewMockOracle() *MockOracle {
	return &MockOracle{Name_: "mock"}
}

// NewFailingOracle returns a MockOracle whose every call fails with err.
func NewFailingOracle(err error) *MockOracle {
	return &MockOracle{
		Name_: "mock-failing",
		AttemptFunc: func(_ context.Context, _ models.InferenceRequest) (*models.RawResult, error) {
			return nil, err
		},
	}
}

// NewSequenceOracle replays steps in order and repeats the last one once exhausted.
func NewSequenceOracle(steps ...Step) *MockOracle {
	var (
		mu  sync.Mutex
		idx int
	)
	return &MockOracle{
		Name_: "mock-sequence",
		AttemptFunc: func(_ context.Context, _ models.InferenceRequest) (*models.RawResult, error) {
			mu.Lock()
			defer mu.Unlock()
			s := steps[idx]
			if idx < len(steps)-1 {
				idx++
			}
			return s.Result, s.Err
		},
	}
}

// NewTimeoutOracle returns a MockOracle that blocks until the context is cancelled.
func NewTimeoutOracle() *MockOracle {
	return &MockOracle{
		Name_: "mock-timeout",
		AttemptFunc: func(ctx context.Context, _ models.InferenceRequest) (*models.RawResult, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
}

// Compile-time check that MockOracle implements Oracle.
var _ models.Oracle = (*MockOracle)(nil)
