package nutrition

import "strings"

// Verdict is the three-tier health classification.
type Verdict string

const (
	Healthy  Verdict = "Healthy"
	Moderate Verdict = "Moderate"
	Avoid    Verdict = "Avoid"
)

// Severity accompanies a Verdict for presentation (badge color, sort order).
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Thresholds above which a category pushes the verdict to Avoid or Moderate.
const (
	AvoidSugar  = 15.0
	AvoidFat    = 5.0
	AvoidSodium = 400.0

	ModerateSugar  = 5.0
	ModerateFat    = 2.0
	ModerateSodium = 150.0
)

// Rating is the outcome of RateHealth together with the values it compared.
type Rating struct {
	Verdict  Verdict  `json:"verdict"`
	Severity Severity `json:"severity"`
	Sugar    float64  `json:"sugar"`
	Fat      float64  `json:"fat"`
	Sodium   float64  `json:"sodium"`
}

// RateHealth classifies a nutrition table by its sugar, fat and sodium values.
//
// Category extraction is by name substring, case-insensitive:
//   - "sugar" -> sugar
//   - "saturated" or "fat" -> fat
//   - "sodium" or "salt" -> sodium
//
// When several entries fall into one category the last one in table order is used;
// values are never summed. A missing category counts as 0.
//
// Rules, first match wins:
//  1. sugar > 15 or fat > 5 or sodium > 400: Avoid (high)
//  2. sugar > 5 or fat > 2 or sodium > 150: Moderate (medium)
//  3. otherwise: Healthy (low)
//
// Each category is checked on its own; several moderate values never add up to Avoid.
// Units are not normalized.
func RateHealth(table *Table) Rating {
	var r Rating
	for _, e := range table.Entries() {
		name := strings.ToLower(e.Name)
		if strings.Contains(name, "sugar") {
			r.Sugar = e.Value
		}
		if strings.Contains(name, "saturated") || strings.Contains(name, "fat") {
			r.Fat = e.Value
		}
		if strings.Contains(name, "sodium") || strings.Contains(name, "salt") {
			r.Sodium = e.Value
		}
	}

	switch {
	case r.Sugar > AvoidSugar || r.Fat > AvoidFat || r.Sodium > AvoidSodium:
		r.Verdict, r.Severity = Avoid, SeverityHigh
	case r.Sugar > ModerateSugar || r.Fat > ModerateFat || r.Sodium > ModerateSodium:
		r.Verdict, r.Severity = Moderate, SeverityMedium
	default:
		r.Verdict, r.Severity = Healthy, SeverityLow
	}
	return r
}
