package latex

import (
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/gautierdag/bibextract/internal/bib"
)

const (
	beginBibliography = `\begin{thebibliography}`
	endBibliography   = `\end{thebibliography}`
)

// ParseBBL parses the text of a .bbl reference list into a Bibliography.
//
// Malformed input is common in real paper sources, so the parser is
// lenient throughout: text without a thebibliography environment yields an
// empty bibliography, and a \bibitem whose citation key cannot be
// recovered is dropped rather than reported. A reference that cannot be
// cited against is useless anyway.
func ParseBBL(content string) *bib.Bibliography {
	bibliography := bib.New()

	if !strings.Contains(content, beginBibliography) || !strings.Contains(content, endBibliography) {
		return bibliography
	}

	start := strings.Index(content, beginBibliography)
	end := strings.Index(content, endBibliography)
	items := strings.Split(content[start:end], `\bibitem`)[1:]

	for _, item := range items {
		lines := strings.Split(item, "\n")
		firstLine := strings.TrimSpace(lines[0])

		var key, year string
		if m := citeAuthorYearRe.FindStringSubmatch(firstLine); m != nil {
			year = m[2]
			key = m[3]
		} else if m := leadingKeyRe.FindStringSubmatch(firstLine); m != nil {
			key = m[1]
		}
		if key == "" {
			if m := trailingKeyRe.FindStringSubmatch(firstLine); m != nil {
				key = m[1]
			}
		}
		if key == "" {
			continue
		}

		builder := bib.NewEntry(key, "article")

		// The line after the key line conventionally carries the authors.
		if len(lines) > 1 {
			builder.Field(bib.FieldAuthor, strings.TrimSpace(lines[1]))
		}

		if year == "" {
			year = findYear(lines)
		}
		if year != "" {
			builder.Field(bib.FieldYear, year)
		}

		if m := newblockTitleRe.FindStringSubmatch(item); m != nil {
			if title := strings.TrimSpace(m[1]); title != "" {
				builder.Field(bib.FieldTitle, title)
			}
		}

		builder.Field(bib.FieldRaw, strings.TrimSpace(item))
		bibliography.Insert(builder.Build())
	}

	return bibliography
}

// findYear scans a reference item for a publication year: first a 4-digit
// number ending a line with a period, scanning from the end; then the
// first plausible 19xx/20xx token anywhere.
func findYear(lines []string) string {
	for i := len(lines) - 1; i >= 0; i-- {
		if m := yearEndRe.FindStringSubmatch(strings.TrimSpace(lines[i])); m != nil {
			return m[1]
		}
	}
	for _, line := range lines {
		if m := yearAnyRe.FindStringSubmatch(line); m != nil {
			return m[1]
		}
	}
	return ""
}

// ParseBBLFiles parses every reference-list file in the list and merges
// the results last-wins. Unreadable files are skipped and logged; a paper
// with one bad .bbl file still gets the entries from the others.
func ParseBBLFiles(paths []string, logger *zap.Logger) *bib.Bibliography {
	merged := bib.New()
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("skipping unreadable reference list", zap.String("path", path), zap.Error(err))
			continue
		}
		merged.Merge(ParseBBL(string(data)))
	}
	return merged
}
