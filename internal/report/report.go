package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/ironsheep/nutrition-lens/internal/pipeline"
)

// Meta describes where a result came from. All fields are optional.
type Meta struct {
	Title     string
	Source    string
	ScannedAt time.Time
	ID        string
}

const defaultTitle = "Nutrition Label Report"

var converter = goldmark.New(goldmark.WithExtensions(extension.Table))

// Markdown renders r as a Markdown document.
func Markdown(meta Meta, r *pipeline.ScanResult) string {
	var b strings.Builder

	title := meta.Title
	if title == "" {
		title = defaultTitle
	}
	fmt.Fprintf(&b, "# %s\n\n", escapeInline(title))

	if meta.Source != "" {
		fmt.Fprintf(&b, "- Source: %s\n", escapeInline(meta.Source))
	}
	if !meta.ScannedAt.IsZero() {
		fmt.Fprintf(&b, "- Scanned: %s\n", meta.ScannedAt.UTC().Format(time.RFC3339))
	}
	if meta.ID != "" {
		fmt.Fprintf(&b, "- ID: `%s`\n", meta.ID)
	}
	if meta.Source != "" || !meta.ScannedAt.IsZero() || meta.ID != "" {
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## Health Rating\n\n**%s** (severity: %s)\n\n", r.Rating.Verdict, r.Rating.Severity)
	fmt.Fprintf(&b, "Sugar %s, fat %s, sodium %s.\n\n",
		formatAmount(r.Rating.Sugar), formatAmount(r.Rating.Fat), formatAmount(r.Rating.Sodium))

	b.WriteString("## Nutrition\n\n")
	if r.Nutrition.Len() == 0 {
		b.WriteString("No nutrition information detected.\n\n")
	} else {
		b.WriteString("| Nutrient | Amount |\n| --- | --- |\n")
		for _, e := range r.Nutrition.Entries() {
			fmt.Fprintf(&b, "| %s | %s |\n", escapeCell(e.Name), escapeCell(e.Display()))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Ingredients\n\n")
	writeList(&b, r.Ingredients, "No ingredients detected.")

	b.WriteString("## Allergens\n\n")
	writeList(&b, r.Allergens, "No common allergens detected.")

	if len(r.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		writeList(&b, r.Warnings, "")
	}

	if strings.TrimSpace(r.RawText) != "" {
		fence := codeFence(r.RawText)
		fmt.Fprintf(&b, "## Recognized Text\n\n%stext\n%s\n%s\n", fence, strings.TrimRight(r.RawText, "\n"), fence)
	}

	return b.String()
}

// HTML renders r as a standalone HTML page.
func HTML(meta Meta, r *pipeline.ScanResult) ([]byte, error) {
	var body bytes.Buffer
	if err := converter.Convert([]byte(Markdown(meta, r)), &body); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	title := meta.Title
	if title == "" {
		title = defaultTitle
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&page, "<title>%s</title>\n", htmlEscaper.Replace(title))
	page.WriteString("<style>body{font-family:sans-serif;max-width:40em;margin:2em auto}table{border-collapse:collapse}td,th{border:1px solid #ccc;padding:.3em .6em}</style>\n")
	page.WriteString("</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}

func writeList(b *strings.Builder, items []string, empty string) {
	if len(items) == 0 {
		if empty != "" {
			b.WriteString(empty + "\n\n")
		}
		return
	}
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", escapeInline(item))
	}
	b.WriteString("\n")
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%g", v)
}

var (
	inlineEscaper = strings.NewReplacer(
		`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`, "<", `\<`, ">", `\>`, "#", `\#`,
	)
	htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
)

func escapeInline(s string) string {
	return inlineEscaper.Replace(strings.ReplaceAll(s, "\n", " "))
}

func escapeCell(s string) string {
	return strings.ReplaceAll(escapeInline(s), "|", `\|`)
}

// codeFence returns a backtick fence longer than any backtick run in s.
func codeFence(s string) string {
	longest, run := 0, 0
	for _, r := range s {
		if r == '`' {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	if longest < 3 {
		return "```"
	}
	return strings.Repeat("`", longest+1)
}
