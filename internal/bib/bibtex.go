package bib

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var (
	// bibtexEntryRe matches the opening of a BibTeX record: @type{key,
	bibtexEntryRe = regexp.MustCompile(`@(\w+)\s*\{\s*([^,\s]+)\s*,`)

	// bibtexFieldRe matches one field assignment. Values are either quoted
	// or brace-delimited with at most one level of nested braces, which is
	// as deep as the records we consume ever go.
	bibtexFieldRe = regexp.MustCompile(`(?m)^\s*([a-zA-Z]+)\s*=\s*(?:\{((?:[^{}]|\{[^{}]*\})*)\}|"([^"]*)")`)
)

// ParseRecord parses a single BibTeX record into an Entry. It is a
// deliberately small parser: enough for the records the arXiv BibTeX
// service returns, not a general BibTeX reader. Returns false when the
// text does not contain a recognizable record.
func ParseRecord(record string) (*Entry, bool) {
	m := bibtexEntryRe.FindStringSubmatch(record)
	if m == nil {
		return nil, false
	}

	builder := NewEntry(m[2], m[1])
	for _, fm := range bibtexFieldRe.FindAllStringSubmatch(record, -1) {
		name := strings.ToLower(fm[1])
		value := fm[2]
		if value == "" && fm[3] != "" {
			value = fm[3]
		}
		builder.Field(name, value)
	}

	return builder.Build(), true
}

// Render formats a bibliography as BibTeX, one record per entry. Entries
// are keyed by their normalized citation key and emitted sorted by that
// key with sorted fields, so output is deterministic. The raw field is
// excluded and brace characters are stripped from values.
func Render(b *Bibliography) string {
	type stanza struct {
		normKey string
		entry   *Entry
	}

	stanzas := make([]stanza, 0, b.Len())
	for _, key := range b.Keys() {
		if entry, ok := b.Get(key); ok {
			stanzas = append(stanzas, stanza{NormalizeKey(entry), entry})
		}
	}
	sort.Slice(stanzas, func(i, j int) bool { return stanzas[i].normKey < stanzas[j].normKey })

	var sb strings.Builder
	for _, s := range stanzas {
		entry := s.entry
		sb.WriteString(fmt.Sprintf("@%s{%s,\n", entry.EntryType, s.normKey))

		names := entry.FieldNames()
		sort.Strings(names)
		for _, name := range names {
			if name == FieldRaw {
				continue
			}
			value, _ := entry.Get(name)
			value = strings.NewReplacer("{", "", "}", "").Replace(value)
			sb.WriteString(fmt.Sprintf("  %s = {%s},\n", name, value))
		}

		sb.WriteString("}\n\n")
	}

	return sb.String()
}

// ValidRecord reports whether a payload from the BibTeX record service
// carries the minimum markers of a real record: an entry marker, an author
// field, and a title field.
func ValidRecord(payload string) bool {
	return strings.Contains(payload, "@") &&
		strings.Contains(payload, "author") &&
		strings.Contains(payload, "title")
}
