package nutrition

import "strings"

// NarrationPreamble opens every narration.
const NarrationPreamble = "Here are the nutrition facts: "

// ComposeNarration renders the table as one sentence for speech synthesis:
// the preamble followed by "<name>: <value>" items joined with ", ".
// An empty table yields the preamble alone.
func ComposeNarration(table *Table) string {
	entries := table.Entries()
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = e.String()
	}
	return NarrationPreamble + strings.Join(parts, ", ")
}
