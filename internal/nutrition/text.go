package nutrition

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// CleanText normalizes OCR output before parsing.
//
// NFKC folds the compatibility forms OCR engines like to emit (full-width digits,
// ligatures such as "ﬁ") into plain characters. Control characters other than newline
// and tab are dropped; newlines are kept because the ingredient list ends at one.
func CleanText(text string) string {
	normed := norm.NFKC.String(text)
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r == '\r' {
			return '\n'
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, normed)
}

// titleCase collapses whitespace and title-cases each word.
// A Caser is stateful, so one is built per call.
func titleCase(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}
	return cases.Title(language.English).String(s)
}

func normalizeName(name string) string {
	return titleCase(name)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
