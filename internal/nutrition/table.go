package nutrition

import (
	"encoding/json"
	"strings"
)

// Entry is a single nutrient parsed from label text.
type Entry struct {
	// Name is the title-cased token that preceded the number on the label.
	Name string `json:"name"`

	// Value is the numeric amount.
	Value float64 `json:"value"`

	// Unit is one of "mg", "g", "kcal", "mcg", "%", or empty when the label had none.
	Unit string `json:"unit,omitempty"`

	// raw keeps the number exactly as printed so "3.2" is not rendered as "3.20".
	raw string
}

// Display returns the value and unit as "<value> <unit>", or just the value when
// the unit is absent.
func (e Entry) Display() string {
	raw := e.raw
	if raw == "" {
		raw = formatValue(e.Value)
	}
	return strings.TrimSpace(raw + " " + e.Unit)
}

// String implements fmt.Stringer.
func (e Entry) String() string {
	return e.Name + ": " + e.Display()
}

// Table maps nutrient names to entries.
//
// Keys are unique after case normalization. Setting a name that already exists replaces
// the earlier entry but keeps its position, so iteration follows the order in which
// each name first appeared on the label. The zero value is an empty, usable table.
type Table struct {
	order   []string
	entries map[string]Entry
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{entries: make(map[string]Entry)}
}

// Set stores e under its normalized name. A later Set for the same name wins.
func (t *Table) Set(e Entry) {
	if t.entries == nil {
		t.entries = make(map[string]Entry)
	}
	e.Name = normalizeName(e.Name)
	if e.Name == "" {
		return
	}
	if _, ok := t.entries[e.Name]; !ok {
		t.order = append(t.order, e.Name)
	}
	t.entries[e.Name] = e
}

// Get looks up an entry by name. The lookup is case-insensitive.
func (t *Table) Get(name string) (Entry, bool) {
	if t == nil || t.entries == nil {
		return Entry{}, false
	}
	e, ok := t.entries[normalizeName(name)]
	return e, ok
}

// Len returns the number of distinct nutrients.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}

// Entries returns the entries in first-appearance order.
func (t *Table) Entries() []Entry {
	if t == nil {
		return nil
	}
	out := make([]Entry, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.entries[name])
	}
	return out
}

// Map returns name -> display string, the shape the label is usually presented in.
func (t *Table) Map() map[string]string {
	out := make(map[string]string, t.Len())
	for _, e := range t.Entries() {
		out[e.Name] = e.Display()
	}
	return out
}

type entryJSON struct {
	Name    string  `json:"name"`
	Value   float64 `json:"value"`
	Unit    string  `json:"unit,omitempty"`
	Display string  `json:"display"`
}

// MarshalJSON encodes the table as an ordered array of entries.
func (t *Table) MarshalJSON() ([]byte, error) {
	entries := t.Entries()
	out := make([]entryJSON, len(entries))
	for i, e := range entries {
		out[i] = entryJSON{Name: e.Name, Value: e.Value, Unit: e.Unit, Display: e.Display()}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the array form written by MarshalJSON.
func (t *Table) UnmarshalJSON(data []byte) error {
	var in []entryJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*t = Table{entries: make(map[string]Entry, len(in))}
	for _, e := range in {
		raw := strings.TrimSpace(strings.TrimSuffix(e.Display, e.Unit))
		t.Set(Entry{Name: e.Name, Value: e.Value, Unit: e.Unit, raw: raw})
	}
	return nil
}
