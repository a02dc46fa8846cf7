package bib

import (
	"strings"
	"unicode"
)

// CleanText strips everything that is not a letter, digit, or whitespace,
// collapses the remaining whitespace runs to single underscores, and
// lowercases the result.
func CleanText(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			sb.WriteRune(r)
		} else {
			sb.WriteRune(' ')
		}
	}
	return strings.ToLower(strings.Join(strings.Fields(sb.String()), "_"))
}

// NormalizeKey derives a canonical citation key from an entry's author,
// title, and year fields, shaped lastname[_word1][_word2][_word3][_year].
// The same author/title/year always yields the same key, which is what
// collapses duplicated references across papers. The function never fails
// and never returns an empty string; a missing or unusable author becomes
// the literal "unknown".
func NormalizeKey(e *Entry) string {
	parts := []string{surnameOf(e)}

	if title, ok := e.Get(FieldTitle); ok {
		for _, word := range strings.Split(CleanText(title), "_") {
			if len(word) > 3 {
				parts = append(parts, word)
			}
			if len(parts) > 3 {
				break
			}
		}
	}

	if year, ok := e.Get(FieldYear); ok {
		if cleaned := CleanText(year); cleaned != "" {
			parts = append(parts, cleaned)
		}
	}

	return strings.Join(parts, "_")
}

// surnameOf extracts the first author's surname, lowercased and cleaned.
func surnameOf(e *Entry) string {
	author, ok := e.Get(FieldAuthor)
	if !ok {
		return "unknown"
	}

	// First author only: split on comma, else on " and ".
	first := author
	if idx := strings.Index(first, ","); idx >= 0 {
		first = first[:idx]
	} else if idx := strings.Index(first, " and "); idx >= 0 {
		first = first[:idx]
	}

	// Drop a trailing "et al." marker.
	if idx := strings.Index(first, "et al"); idx >= 0 {
		first = first[:idx]
	}

	cleaned := CleanText(strings.TrimSpace(first))
	if cleaned == "" {
		return "unknown"
	}

	// The final token is the likely surname; a single token is used whole.
	words := strings.Split(cleaned, "_")
	return words[len(words)-1]
}
