// Package nutrition turns the text printed on a packaged-food label into structured data.
//
// Everything in this package is a pure function of its input. The OCR step lives in
// package ocr and the sequencing lives in package pipeline; this package only sees
// strings.
//
// # Stages
//
// The label text flows through five independent operations:
//
//   - ParseNutrition: regex extraction of name/value/unit triples into a Table
//   - ParseIngredients: the comma-separated list after "Ingredients:" or "Contains:"
//   - DetectAllergens: whole-word match of ingredients against a fixed vocabulary
//   - RateHealth: sugar/fat/sodium thresholds into Healthy, Moderate or Avoid
//   - ComposeNarration: the Table rendered back into a sentence for speech synthesis
//
// # Known Limitations
//
// Extraction is deliberately permissive. Any run of letters followed by a number is
// treated as a nutrient, so "Serving size 30" produces a "Serving Size" entry. Values
// are compared as raw numbers regardless of unit: 400 mg of sodium and 400 g of sodium
// rate the same. Both behaviors are relied on by consumers of the scan output and are
// kept as-is. A number too long for a float64 is clamped to math.MaxFloat64; its
// Display keeps the printed digits.
package nutrition
