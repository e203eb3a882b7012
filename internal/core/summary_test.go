package core

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var breakdownEntries = cmp.Transformer("Entries", func(b Breakdown) []BreakdownEntry {
	return b.Entries()
})

func TestSummarize(t *testing.T) {
	meals := []Record{
		{"calories": float64(300), "protein": float64(10), "carbs": float64(50), "status": "planned", "category": "breakfast"},
		{"calories": "200", "protein": "x", "status": "eaten", "category": "lunch"},
		{"calories": nil, "carbs": 5, "category": "breakfast"},
		{"status": "planned"},
	}
	ingredients := []Record{
		{"price": 2.5, "stock": float64(4)},
		{"price": 1.0, "stock": "oops"},
		{"price": 0.333, "stock": 3},
	}
	feedback := []Record{{}, {}}

	got := Summarize(meals, ingredients, feedback, fixedNow)

	var status, category Breakdown
	status.Add("planned")
	status.Add("eaten")
	status.Add(UnknownLabel)
	status.Add("planned")
	category.Add("breakfast")
	category.Add("lunch")
	category.Add("breakfast")
	category.Add(UnknownLabel)

	want := ExportSummary{
		TotalMealPlans:        4,
		TotalIngredients:      3,
		TotalFeedback:         2,
		TotalCalories:         500,
		TotalProtein:          10,
		TotalCarbs:            55,
		TotalIngredientsValue: "11.00",
		StatusBreakdown:       status,
		CategoryBreakdown:     category,
		ExportDate:            "2024-03-05T14:30:00.000Z",
	}
	if diff := cmp.Diff(want, got, breakdownEntries); diff != "" {
		t.Errorf("Summarize mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarize_Empty(t *testing.T) {
	got := Summarize(nil, nil, nil, fixedNow)

	if got.TotalMealPlans != 0 || got.TotalCalories != 0 {
		t.Errorf("unexpected totals: %+v", got)
	}
	if got.TotalIngredientsValue != "0.00" {
		t.Errorf("TotalIngredientsValue = %q, want 0.00", got.TotalIngredientsValue)
	}
	if got.StatusBreakdown.Len() != 0 || got.CategoryBreakdown.Len() != 0 {
		t.Error("breakdowns should be empty")
	}

	raw, err := json.Marshal(got)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	if _, ok := decoded["statusBreakdown"].(map[string]any); !ok {
		t.Errorf("statusBreakdown should encode as an object, got %s", raw)
	}
}

func TestSummarize_InventoryValue(t *testing.T) {
	got := Summarize(nil, []Record{{"price": 2.5, "stock": float64(4)}}, nil, fixedNow)
	if got.TotalIngredientsValue != "10.00" {
		t.Errorf("TotalIngredientsValue = %q, want 10.00", got.TotalIngredientsValue)
	}
}

func TestSummarize_UnknownStatusCounted(t *testing.T) {
	meals := []Record{{}, {"status": ""}, {"status": nil}}
	got := Summarize(meals, nil, nil, fixedNow)
	if n := got.StatusBreakdown.Count(UnknownLabel); n != 3 {
		t.Errorf("unknown status count = %d, want 3", n)
	}
	if n := got.StatusBreakdown.Len(); n != 1 {
		t.Errorf("distinct statuses = %d, want 1", n)
	}
}

func TestBreakdown_JSONOrder(t *testing.T) {
	var b Breakdown
	for _, label := range []string{"zeta", "alpha", "zeta", `q"uote`, "mid"} {
		b.Add(label)
	}

	raw, err := json.Marshal(b)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"zeta":2,"alpha":1,"q\"uote":1,"mid":1}`
	if string(raw) != want {
		t.Errorf("Marshal = %s, want %s", raw, want)
	}

	var back Breakdown
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if diff := cmp.Diff(b.Entries(), back.Entries()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestBreakdown_UnmarshalRejectsArray(t *testing.T) {
	var b Breakdown
	if err := json.Unmarshal([]byte(`[1,2]`), &b); err == nil {
		t.Error("expected error for array input")
	}
}

func TestStockLevel(t *testing.T) {
	tests := []struct {
		stock, min float64
		want       string
	}{
		{11, 5, StockHigh},
		{10, 5, StockMedium},
		{6, 5, StockMedium},
		{5, 5, StockLow},
		{0, 5, StockLow},
		{11, 0, StockHigh},
		{30, 10, StockHigh},
	}
	for _, tt := range tests {
		if got := StockLevel(tt.stock, tt.min); got != tt.want {
			t.Errorf("StockLevel(%v, %v) = %q, want %q", tt.stock, tt.min, got, tt.want)
		}
	}
}
