package nutrition

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// nutrientPattern matches "<letters and spaces> [:|-] <number> [unit]".
//
// Letter units must end at a word boundary so "10 grams" yields no unit instead of
// unit "g" followed by a nutrient named "Rams".
var nutrientPattern = regexp.MustCompile(
	`(?i)([a-z][a-z ]*?)\s*[:\-]?\s*(\d+(?:\.\d+)?)\s*((?:mcg|mg|kcal|g)\b|%)?`)

// ingredientPattern finds the first "ingredients" or "contains" marker and captures
// the rest of that line up to a period or semicolon. Only blanks and tabs may sit
// around the separator, so a marker at the end of a line yields an empty list.
var ingredientPattern = regexp.MustCompile(`(?i)\b(?:ingredients|contains)\b[ \t]*[:\-]?[ \t]*([^\n.;]*)`)

// ParseNutrition extracts every name/value/unit triple from label text.
//
// Matching is case-insensitive and global, left to right. Names are title-cased and
// any run of letters directly before a number qualifies; there is no check against a
// list of real nutrients. When the same name appears twice the later value wins.
//
// An empty table means no nutrition information was detected. It is not an error.
//
// Example:
//
//	t := ParseNutrition("Protein 5g Sugar 3.2g Sodium 100mg")
//	t.Map() // {"Protein": "5 g", "Sugar": "3.2 g", "Sodium": "100 mg"}
func ParseNutrition(text string) *Table {
	table := NewTable()
	for _, m := range nutrientPattern.FindAllStringSubmatch(CleanText(text), -1) {
		name := strings.TrimSpace(m[1])
		if name == "" {
			continue
		}
		// Digits beyond float64 range are clamped to MaxFloat64 so the entry stays
		// JSON-encodable; Display still shows the digits as printed.
		value, err := strconv.ParseFloat(m[2], 64)
		if errors.Is(err, strconv.ErrRange) && math.IsInf(value, 1) {
			value, err = math.MaxFloat64, nil
		}
		if err != nil {
			continue
		}
		table.Set(Entry{
			Name:  name,
			Value: value,
			Unit:  strings.ToLower(m[3]),
			raw:   m[2],
		})
	}
	return table
}

// ParseIngredients returns the ingredient list from label text.
//
// The list starts after the first "Ingredients" or "Contains" marker (an optional ":"
// or "-" is skipped) and runs to the first newline, period or semicolon. Pieces are
// split on commas, trimmed, and title-cased; empty pieces are dropped. Without a marker
// the result is an empty, non-nil slice.
func ParseIngredients(text string) []string {
	ingredients := []string{}
	m := ingredientPattern.FindStringSubmatch(CleanText(text))
	if m == nil {
		return ingredients
	}
	for _, piece := range strings.Split(m[1], ",") {
		piece = titleCase(piece)
		if piece == "" {
			continue
		}
		ingredients = append(ingredients, piece)
	}
	return ingredients
}
