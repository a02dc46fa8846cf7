package latex

import (
	"sort"
	"strings"
)

// Section is a related-work-like section pulled out of a paper, with the
// distinct citation keys referenced inside it.
type Section struct {
	Title     string
	Content   string
	Citations []string
}

// relatedWorkTitles is the vocabulary of section titles treated as
// related-work material. Matching is case-insensitive substring.
var relatedWorkTitles = []string{
	"related work",
	"background",
	"literature review",
	"prior work",
	"previous work",
	"state of the art",
	"comparison with existing approaches",
	"comparative analysis",
	"context",
	"existing work",
	"existing approaches",
	"existing methods",
	"review of the literature",
	"review of existing work",
	"overview of related work",
	"previous approaches",
	"foundation",
}

// IsRelatedWorkTitle reports whether a section title reads like a
// related-work section.
func IsRelatedWorkTitle(title string) bool {
	lower := strings.ToLower(title)
	for _, candidate := range relatedWorkTitles {
		if strings.Contains(lower, candidate) {
			return true
		}
	}
	return false
}

// ExtractSections partitions a flattened document body on \section and
// \subsection markers and returns the fragments whose titles match the
// related-work vocabulary. Sections and subsections are scanned
// independently, so a matching subsection inside a non-matching section is
// still found. Non-matching fragments are simply out of scope.
func ExtractSections(body string) []Section {
	var sections []Section
	for _, marker := range []string{`\section`, `\subsection`} {
		fragments := strings.Split(body, marker)[1:]
		for _, fragment := range fragments {
			title := fragmentTitle(fragment)
			if !IsRelatedWorkTitle(title) {
				continue
			}
			content := fragmentContent(fragment)
			sections = append(sections, Section{
				Title:     title,
				Content:   content,
				Citations: CitationKeys(content),
			})
		}
	}
	return sections
}

// CitationKeys returns the distinct citation keys referenced by the
// citation commands in text, sorted.
func CitationKeys(text string) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, m := range CiteRe.FindAllStringSubmatch(text, -1) {
		for _, key := range strings.Split(m[1], ",") {
			key = strings.TrimSpace(key)
			if key != "" && !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

// fragmentTitle extracts the brace-delimited title at the start of a
// section fragment, falling back to a scan of the first line.
func fragmentTitle(fragment string) string {
	if m := sectionTitleRe.FindStringSubmatch(fragment); m != nil {
		return strings.TrimSpace(m[1])
	}

	firstLine := strings.TrimSpace(strings.SplitN(fragment, "\n", 2)[0])
	if strings.HasPrefix(firstLine, "{") {
		if end := strings.Index(firstLine, "}"); end > 1 {
			return strings.TrimSpace(firstLine[1:end])
		}
	}
	return ""
}

// fragmentContent returns everything after the title of a section fragment.
func fragmentContent(fragment string) string {
	if loc := sectionTitleRe.FindStringIndex(fragment); loc != nil {
		return strings.TrimSpace(fragment[loc[1]:])
	}
	if idx := strings.Index(fragment, "\n"); idx >= 0 {
		return strings.TrimSpace(fragment[idx+1:])
	}
	return strings.TrimSpace(fragment)
}
