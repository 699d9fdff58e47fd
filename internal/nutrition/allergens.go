package nutrition

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// defaultAllergenTerms maps each canonical allergen name to the words that signal it.
var defaultAllergenTerms = map[string][]string{
	"Milk":       {"milk"},
	"Egg":        {"egg"},
	"Peanut":     {"peanut"},
	"Tree Nut":   {"tree nut"},
	"Almond":     {"almond"},
	"Cashew":     {"cashew"},
	"Walnut":     {"walnut"},
	"Hazelnut":   {"hazelnut"},
	"Pistachio":  {"pistachio"},
	"Pecan":      {"pecan"},
	"Brazil Nut": {"brazil nut"},
	"Soy":        {"soy"},
	"Wheat":      {"wheat"},
	"Gluten":     {"gluten"},
	"Fish":       {"fish"},
	"Shellfish":  {"shellfish"},
	"Shrimp":     {"shrimp"},
	"Crab":       {"crab"},
	"Lobster":    {"lobster"},
	"Sesame":     {"sesame"},
}

type allergenRule struct {
	name    string
	pattern *regexp.Regexp
}

// AllergenDetector matches ingredient strings against an allergen vocabulary.
// It is immutable after construction and safe for concurrent use.
type AllergenDetector struct {
	rules []allergenRule
}

var defaultDetector = NewAllergenDetector(nil)

// NewAllergenDetector builds a detector from the default vocabulary plus extra terms.
//
// extra maps canonical names to trigger words. An extra entry whose name already
// exists (case-insensitively) adds its words to that allergen.
func NewAllergenDetector(extra map[string][]string) *AllergenDetector {
	merged := make(map[string][]string, len(defaultAllergenTerms)+len(extra))
	for name, terms := range defaultAllergenTerms {
		merged[name] = append([]string(nil), terms...)
	}
	for name, terms := range extra {
		canonical := titleCase(name)
		if canonical == "" {
			continue
		}
		merged[canonical] = append(merged[canonical], terms...)
	}

	names := make([]string, 0, len(merged))
	for name := range merged {
		names = append(names, name)
	}
	sort.Strings(names)

	d := &AllergenDetector{rules: make([]allergenRule, 0, len(names))}
	for _, name := range names {
		if p := compileTerms(merged[name]); p != nil {
			d.rules = append(d.rules, allergenRule{name: name, pattern: p})
		}
	}
	return d
}

// compileTerms builds one whole-word, case-insensitive pattern for a set of words.
// Each word also matches its plural with a trailing "s".
func compileTerms(terms []string) *regexp.Regexp {
	alts := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.Join(strings.Fields(strings.ToLower(term)), " ")
		if term == "" {
			continue
		}
		alts = append(alts, regexp.QuoteMeta(term))
	}
	if len(alts) == 0 {
		return nil
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(alts, "|") + `)s?\b`)
}

// Detect returns the sorted, deduplicated canonical names of every allergen found
// in the ingredients. The result does not depend on ingredient order.
func (d *AllergenDetector) Detect(ingredients []string) []string {
	found := []string{}
	for _, rule := range d.rules {
		for _, ingredient := range ingredients {
			if rule.pattern.MatchString(ingredient) {
				found = append(found, rule.name)
				break
			}
		}
	}
	sort.Strings(found)
	return found
}

// Names returns the canonical allergen names the detector knows, sorted.
func (d *AllergenDetector) Names() []string {
	names := make([]string, len(d.rules))
	for i, rule := range d.rules {
		names[i] = rule.name
	}
	return names
}

// DetectAllergens runs the default vocabulary over the ingredients.
func DetectAllergens(ingredients []string) []string {
	return defaultDetector.Detect(ingredients)
}

// LoadAllergenDetector reads extra allergen terms from a JSON file shaped like
//
//	{"Mustard": ["mustard"], "Celery": ["celery", "celeriac"]}
//
// and returns a detector with those terms merged onto the defaults. An empty path
// returns the default detector.
func LoadAllergenDetector(path string) (*AllergenDetector, error) {
	clean := strings.TrimSpace(path)
	if clean == "" {
		return defaultDetector, nil
	}
	data, err := os.ReadFile(filepath.Clean(clean))
	if err != nil {
		return nil, fmt.Errorf("failed to read allergen file: %w", err)
	}
	extra := make(map[string][]string)
	if err := json.Unmarshal(data, &extra); err != nil {
		return nil, fmt.Errorf("failed to decode allergen file: %w", err)
	}
	return NewAllergenDetector(extra), nil
}
