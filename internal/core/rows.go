package core

// Column orders for the three export files. Recipients import these by
// position, so the order is part of the file format.
var (
	MealPlanHeaders = []string{
		"ID",
		"Date",
		"Meal Name",
		"Category",
		"Calories",
		"Protein (g)",
		"Carbs (g)",
		"Status",
		"Notes",
		"Created At",
		"Updated At",
	}

	IngredientHeaders = []string{
		"ID",
		"Name",
		"Category",
		"Price",
		"Stock",
		"Unit",
		"Expiration Date",
		"Notes",
		"Created At",
		"Updated At",
	}

	FeedbackHeaders = []string{
		"ID",
		"Type",
		"Rating",
		"Message",
		"Created At",
	}
)

// RowMapper converts one record into a row matching a header order.
type RowMapper func(Record) []any

// MealPlanRow maps a meal plan record onto MealPlanHeaders.
func MealPlanRow(meal Record) []any {
	return []any{
		Text(meal, FieldID),
		Text(meal, "date"),
		Text(meal, "name"),
		Text(meal, "category"),
		Number(meal, "calories"),
		Number(meal, "protein"),
		Number(meal, "carbs"),
		Text(meal, "status"),
		EscapedText(EscapeQuotes(Text(meal, "notes"))),
		TimestampISO(meal, FieldCreatedAt),
		TimestampISO(meal, FieldUpdatedAt),
	}
}

// IngredientRow maps an ingredient record onto IngredientHeaders.
func IngredientRow(ingredient Record) []any {
	return []any{
		Text(ingredient, FieldID),
		Text(ingredient, "name"),
		Text(ingredient, "category"),
		Number(ingredient, "price"),
		Number(ingredient, "stock"),
		Text(ingredient, "unit"),
		Text(ingredient, "expirationDate"),
		EscapedText(EscapeQuotes(Text(ingredient, "notes"))),
		TimestampISO(ingredient, FieldCreatedAt),
		TimestampISO(ingredient, FieldUpdatedAt),
	}
}

// FeedbackRow maps a feedback record onto FeedbackHeaders.
// Ratings are kept as numbers when numeric and as text otherwise.
func FeedbackRow(item Record) []any {
	return []any{
		Text(item, FieldID),
		Text(item, "type"),
		ratingCell(item["rating"]),
		EscapedText(EscapeQuotes(Text(item, "message"))),
		TimestampISO(item, FieldCreatedAt),
	}
}

func ratingCell(v any) any {
	if s, ok := v.(string); ok {
		return s
	}
	if f, ok := numberOf(v); ok {
		return f
	}
	return textOf(v)
}

// MapRows applies mapper to every record.
func MapRows(records []Record, mapper RowMapper) [][]any {
	rows := make([][]any, len(records))
	for i, rec := range records {
		rows[i] = mapper(rec)
	}
	return rows
}
