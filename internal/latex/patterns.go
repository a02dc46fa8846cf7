// Package latex handles the LaTeX side of the pipeline: flattening a
// paper's source tree into one document, parsing reference lists, pulling
// out related-work sections, and rewriting citation commands.
package latex

import "regexp"

// Compiled once at init and read-only afterwards, so they are safe for
// concurrent use from every paper pipeline.
var (
	// CiteRe matches the citation commands the pipeline understands, with
	// the comma-separated key list as the single capture group.
	CiteRe = regexp.MustCompile(`\\(?:cite|citep|citet|citealp|citeauthor)\{([^}]+)\}`)

	// ArxivIDRe matches an arXiv identifier with a textual prefix, as it
	// appears in titles, journal fields, and raw reference text.
	ArxivIDRe = regexp.MustCompile(`arXiv:?\s*([0-9]+\.[0-9]+)`)

	// ArxivKeyRe matches a bare arXiv identifier used as a citation key.
	ArxivKeyRe = regexp.MustCompile(`^([0-9]{4}\.[0-9]+)$`)

	inputRe    = regexp.MustCompile(`\\(?:input|include)\{([^}]+)\}`)
	documentRe = regexp.MustCompile(`(?s)\\begin\{document\}(.*?)\\end\{document\}`)
	titleRe    = regexp.MustCompile(`(?s)\\title\{([^}]*)\}`)
	authorRe   = regexp.MustCompile(`(?s)\\author\{([^}]*)\}`)

	sectionTitleRe = regexp.MustCompile(`^\s*\{([^}]*)\}`)

	citeAuthorYearRe = regexp.MustCompile(`^\[\\protect\\citeauthoryear\{([^}]+)\}\{(\d{4})\}\]\{([^}]+)\}`)
	leadingKeyRe     = regexp.MustCompile(`^\{([^}]+)\}`)
	trailingKeyRe    = regexp.MustCompile(`\{([^{}]+)\}\s*$`)
	yearEndRe        = regexp.MustCompile(`(\d{4})\.$`)
	yearAnyRe        = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
	newblockTitleRe  = regexp.MustCompile(`\\newblock\s+([^.\n]*)`)
)
