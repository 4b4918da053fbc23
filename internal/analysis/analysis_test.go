package analysis

import (
	"testing"

	"github.com/kiranshivaraju/nutrieye/pkg/models"
)

// --- Fingerprint tests ---

func TestFingerprint_Stable(t *testing.T) {
	parts := []models.ImagePart{{Data: "AAAA", MIMEType: "image/jpeg"}, {Data: "BBBB", MIMEType: "image/png"}}
	if Fingerprint(parts) != Fingerprint(parts) {
		t.Fatal("fingerprint is not deterministic")
	}
	if len(Fingerprint(parts)) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(Fingerprint(parts)))
	}
}

func TestFingerprint_IgnoresWhitespace(t *testing.T) {
	a := []models.ImagePart{{Data: "AAAA\nBBBB", MIMEType: "image/jpeg"}}
	b := []models.ImagePart{{Data: "AAAABBBB", MIMEType: "image/jpeg"}}
	if Fingerprint(a) != Fingerprint(b) {
		t.Error("whitespace changed the fingerprint")
	}
}

func TestFingerprint_Distinguishes(t *testing.T) {
	base := []models.ImagePart{{Data: "AAAA", MIMEType: "image/jpeg"}, {Data: "BBBB", MIMEType: "image/jpeg"}}
	tests := []struct {
		name  string
		parts []models.ImagePart
	}{
		{"order", []models.ImagePart{base[1], base[0]}},
		{"mime type", []models.ImagePart{{Data: "AAAA", MIMEType: "image/png"}, base[1]}},
		{"payload", []models.ImagePart{{Data: "AAAB", MIMEType: "image/jpeg"}, base[1]}},
		{"count", base[:1]},
		{"boundary", []models.ImagePart{{Data: "AAAABBBB", MIMEType: "image/jpeg"}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if Fingerprint(tc.parts) == Fingerprint(base) {
				t.Errorf("expected different fingerprint for %s", tc.name)
			}
		})
	}
}

// --- Inspect tests ---

func docWithSodium(mg float64, class string) *models.NutritionalAnalysis {
	return &models.NutritionalAnalysis{
		MacroAnalysis: models.MacroAnalysis{SodiumMgPer100g: mg, SodiumClassification: class},
	}
}

func TestInspect_Consistent(t *testing.T) {
	tests := []struct {
		mg    float64
		class string
	}{
		{0, "muito baixo"},
		{40, "muito baixo"},
		{41, "baixo"},
		{89, "baixo"},
		{120, "Baixo"},
		{400, "moderado"},
		{401, " alto "},
	}
	for _, tc := range tests {
		if got := Inspect(docWithSodium(tc.mg, tc.class)); len(got) != 0 {
			t.Errorf("sodium %v classified %q: unexpected findings %v", tc.mg, tc.class, got)
		}
	}
}

func TestInspect_SodiumMismatch(t *testing.T) {
	findings := Inspect(docWithSodium(450, "baixo"))
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	if findings[0].Expected != "alto" || findings[0].Got != "baixo" {
		t.Errorf("unexpected finding: %+v", findings[0])
	}
	if !SodiumMismatch(findings) {
		t.Error("SodiumMismatch should report the finding")
	}
	want := `macro_analysis.sodium_classification: expected "alto", got "baixo"`
	if findings[0].String() != want {
		t.Errorf("String() = %q, want %q", findings[0].String(), want)
	}
}

func TestInspect_FiberClassificationWithoutGrams(t *testing.T) {
	doc := docWithSodium(10, "muito baixo")
	doc.MacroAnalysis.FiberClassification = "fonte"

	findings := Inspect(doc)
	if len(findings) != 1 || findings[0].Field != "macro_analysis.fiber_grams" {
		t.Fatalf("unexpected findings: %v", findings)
	}
	if SodiumMismatch(findings) {
		t.Error("fiber finding is not a sodium mismatch")
	}

	grams := 3.0
	doc.MacroAnalysis.FiberGrams = &grams
	if got := Inspect(doc); len(got) != 0 {
		t.Errorf("unexpected findings: %v", got)
	}
}

// --- MostSevere tests ---

func TestMostSevere(t *testing.T) {
	items := []models.DeepDiveIngredient{
		{Name: "Sal", WarningLevel: models.WarningLow},
		{Name: "Corante", WarningLevel: models.WarningHigh},
		{Name: "Tomate", WarningLevel: models.WarningSafe},
	}
	if got := MostSevere(items); got != models.WarningHigh {
		t.Errorf("MostSevere = %q, want high", got)
	}
	if got := MostSevere(nil); got != "" {
		t.Errorf("MostSevere(nil) = %q, want empty", got)
	}
	if got := MostSevere(items[2:]); got != models.WarningSafe {
		t.Errorf("MostSevere = %q, want safe", got)
	}
}
