package core

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/a-h/templ"
)

// LocalDateLayout is the user-facing date format in e-mails (month/day/year).
const LocalDateLayout = "1/2/2006"

// FormatLocalDate renders t in loc using LocalDateLayout.
func FormatLocalDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(LocalDateLayout)
}

// ReportData is everything the export e-mail body shows.
type ReportData struct {
	Date        string
	Summary     ExportSummary
	Collections []CollectionDefinition
}

// ExportReport renders the export e-mail body. Breakdown labels are listed
// in the order they were first seen and are HTML-escaped.
func ExportReport(data ReportData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		s := data.Summary

		b.WriteString(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>Your Meal Management Data</title>
</head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2>Hi there! 👋</h2>
`)
		fmt.Fprintf(&b, "    <p>Here's all your meal management data exported on %s.</p>\n\n", templ.EscapeString(data.Date))

		b.WriteString("    <h3>Quick Summary:</h3>\n    <ul>\n")
		fmt.Fprintf(&b, "        <li>Meal Plans: %d</li>\n", s.TotalMealPlans)
		fmt.Fprintf(&b, "        <li>Ingredients: %d</li>\n", s.TotalIngredients)
		fmt.Fprintf(&b, "        <li>Feedback: %d</li>\n", s.TotalFeedback)
		fmt.Fprintf(&b, "        <li>Total Calories: %s kcal</li>\n", FormatNumber(s.TotalCalories))
		fmt.Fprintf(&b, "        <li>Total Protein: %sg</li>\n", FormatNumber(s.TotalProtein))
		fmt.Fprintf(&b, "        <li>Total Carbs: %sg</li>\n", FormatNumber(s.TotalCarbs))
		b.WriteString("    </ul>\n\n")

		b.WriteString("    <p>I've attached your data as CSV files:</p>\n    <ul>\n")
		for _, def := range data.Collections {
			fmt.Fprintf(&b, "        <li><strong>%s</strong> - %s</li>\n",
				templ.EscapeString(def.Filename), templ.EscapeString(def.Description))
		}
		b.WriteString("    </ul>\n\n")

		writeBreakdown(&b, "Meal Status:", s.StatusBreakdown)
		writeBreakdown(&b, "Meal Categories:", s.CategoryBreakdown)

		b.WriteString(`    <p>Thanks for using the meal management system!</p>
</body>
</html>
`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeBreakdown(b *strings.Builder, title string, bd Breakdown) {
	fmt.Fprintf(b, "    <h3>%s</h3>\n    <ul>\n", title)
	for _, e := range bd.Entries() {
		fmt.Fprintf(b, "        <li>%s: %d</li>\n", templ.EscapeString(e.Label), e.Count)
	}
	b.WriteString("    </ul>\n\n")
}

// RenderReport renders ExportReport to a string.
func RenderReport(ctx context.Context, data ReportData) (string, error) {
	var buf bytes.Buffer
	if err := ExportReport(data).Render(ctx, &buf); err != nil {
		return "", fmt.Errorf("render export report: %w", err)
	}
	return buf.String(), nil
}
