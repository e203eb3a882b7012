package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// UnknownLabel groups records that carry no status or category.
const UnknownLabel = "unknown"

// BreakdownEntry is one label and the number of records bearing it.
type BreakdownEntry struct {
	Label string
	Count int
}

// Breakdown counts records per label, remembering the order in which
// labels were first seen. It encodes to JSON as an object whose keys keep
// that order.
type Breakdown struct {
	entries []BreakdownEntry
	index   map[string]int
}

// Add counts one record under label.
func (b *Breakdown) Add(label string) {
	if b.index == nil {
		b.index = make(map[string]int)
	}
	if i, ok := b.index[label]; ok {
		b.entries[i].Count++
		return
	}
	b.index[label] = len(b.entries)
	b.entries = append(b.entries, BreakdownEntry{Label: label, Count: 1})
}

// Entries returns the labels in first-seen order.
func (b Breakdown) Entries() []BreakdownEntry {
	out := make([]BreakdownEntry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Count returns the count for label, 0 if it was never added.
func (b Breakdown) Count(label string) int {
	if i, ok := b.index[label]; ok {
		return b.entries[i].Count
	}
	return 0
}

// Len returns the number of distinct labels.
func (b Breakdown) Len() int {
	return len(b.entries)
}

// MarshalJSON encodes the breakdown as an ordered JSON object.
func (b Breakdown) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range b.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Label)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		fmt.Fprintf(&buf, "%d", e.Count)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object of label counts, keeping key order.
func (b *Breakdown) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("breakdown: expected object, got %v", tok)
	}

	*b = Breakdown{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		label, ok := tok.(string)
		if !ok {
			return fmt.Errorf("breakdown: expected key, got %v", tok)
		}
		var count int
		if err := dec.Decode(&count); err != nil {
			return fmt.Errorf("breakdown: count for %q: %w", label, err)
		}
		if b.index == nil {
			b.index = make(map[string]int)
		}
		if i, ok := b.index[label]; ok {
			b.entries[i].Count = count
			continue
		}
		b.index[label] = len(b.entries)
		b.entries = append(b.entries, BreakdownEntry{Label: label, Count: count})
	}

	_, err = dec.Token()
	return err
}

// ExportSummary holds aggregate figures computed once per export.
type ExportSummary struct {
	TotalMealPlans        int       `json:"totalMealPlans"`
	TotalIngredients      int       `json:"totalIngredients"`
	TotalFeedback         int       `json:"totalFeedback"`
	TotalCalories         float64   `json:"totalCalories"`
	TotalProtein          float64   `json:"totalProtein"`
	TotalCarbs            float64   `json:"totalCarbs"`
	TotalIngredientsValue string    `json:"totalIngredientsValue"`
	StatusBreakdown       Breakdown `json:"statusBreakdown"`
	CategoryBreakdown     Breakdown `json:"categoryBreakdown"`
	ExportDate            string    `json:"exportDate"`
}

// Summarize aggregates the three collections. It never fails: missing or
// non-numeric figures count as 0 and missing labels as "unknown".
func Summarize(mealPlans, ingredients, feedback []Record, now time.Time) ExportSummary {
	s := ExportSummary{
		TotalMealPlans:   len(mealPlans),
		TotalIngredients: len(ingredients),
		TotalFeedback:    len(feedback),
		ExportDate:       FormatISO(now),
	}

	for _, meal := range mealPlans {
		s.TotalCalories += Number(meal, "calories")
		s.TotalProtein += Number(meal, "protein")
		s.TotalCarbs += Number(meal, "carbs")
		s.StatusBreakdown.Add(labelOf(meal, "status"))
		s.CategoryBreakdown.Add(labelOf(meal, "category"))
	}

	s.TotalIngredientsValue = fmt.Sprintf("%.2f", InventoryValue(ingredients))

	return s
}

// InventoryValue sums price × stock across ingredients.
func InventoryValue(ingredients []Record) float64 {
	var total float64
	for _, ing := range ingredients {
		total += Number(ing, "price") * Number(ing, "stock")
	}
	return total
}

func labelOf(rec Record, field string) string {
	if label := Text(rec, field); label != "" {
		return label
	}
	return UnknownLabel
}

// DefaultMinStock is the reorder threshold used when none is configured.
const DefaultMinStock = 5

// Stock levels reported for ingredients.
const (
	StockHigh   = "high"
	StockMedium = "medium"
	StockLow    = "low"
)

// StockLevel classifies a stock quantity against a reorder threshold:
// above twice the threshold is high, above the threshold is medium,
// anything else is low.
func StockLevel(stock, minStock float64) string {
	if minStock <= 0 {
		minStock = DefaultMinStock
	}
	switch {
	case stock > minStock*2:
		return StockHigh
	case stock > minStock:
		return StockMedium
	default:
		return StockLow
	}
}
