package verify

import (
	"strings"
	"unicode"

	"github.com/gautierdag/bibextract/internal/bib"
	"github.com/gautierdag/bibextract/internal/dblp"
)

// Scoring weights for candidate matching. The values and the acceptance
// threshold are deliberate constants; they have held up in practice but
// have never been calibrated against a labeled dataset.
const (
	scoreTitleExact    = 3
	scoreTitleContains = 2
	scoreTitleShared   = 1
	scoreYearMatch     = 1
	scoreAuthorTokens  = 2

	// acceptScore is the minimum score for a candidate to be accepted.
	acceptScore = 2

	// minSharedTitleTokens is the exclusive lower bound of shared title
	// tokens for the weakest title signal.
	minSharedTitleTokens = 2

	// minAuthorTokenMatches is how many tokens of the original author
	// string must appear among the candidate's author tokens.
	minAuthorTokenMatches = 5
)

// bestMatch scores every DBLP hit against the entry and returns the
// highest-scoring candidate, or false when nothing reaches the acceptance
// threshold. Entries without a title or year cannot be scored.
func bestMatch(hits []dblp.Hit, entry *bib.Entry) (dblp.HitInfo, bool) {
	title, ok := entry.Get(bib.FieldTitle)
	if !ok {
		return dblp.HitInfo{}, false
	}
	year, ok := entry.Get(bib.FieldYear)
	if !ok {
		return dblp.HitInfo{}, false
	}
	author, _ := entry.Get(bib.FieldAuthor)

	var best dblp.HitInfo
	bestScore := 0

	for _, hit := range hits {
		score := scoreCandidate(hit.Info, title, year, author)
		if score > bestScore {
			bestScore = score
			best = hit.Info
		}
	}

	if bestScore < acceptScore {
		return dblp.HitInfo{}, false
	}
	return best, true
}

func scoreCandidate(info dblp.HitInfo, title, year, author string) int {
	score := 0

	// Exactly one title signal applies.
	cleanOriginal := strings.ToLower(strings.NewReplacer("{", "", "}", "").Replace(title))
	cleanHit := strings.ToLower(info.Title)
	switch {
	case cleanOriginal == cleanHit:
		score += scoreTitleExact
	case strings.Contains(cleanOriginal, cleanHit) || strings.Contains(cleanHit, cleanOriginal):
		score += scoreTitleContains
	case sharedTokens(cleanOriginal, cleanHit) > minSharedTitleTokens:
		score += scoreTitleShared
	}

	if info.Year == year {
		score += scoreYearMatch
	}

	if authorTokenMatches(author, info.Authors.Names()) >= minAuthorTokenMatches {
		score += scoreAuthorTokens
	}

	return score
}

// sharedTokens counts how many whitespace-delimited tokens of a appear in b.
func sharedTokens(a, b string) int {
	bTokens := make(map[string]bool)
	for _, tok := range strings.Fields(b) {
		bTokens[tok] = true
	}
	count := 0
	for _, tok := range strings.Fields(a) {
		if bTokens[tok] {
			count++
		}
	}
	return count
}

// authorTokenMatches counts tokens of the original author string, split on
// whitespace and LaTeX ties, that appear verbatim among the candidate's
// author name tokens.
func authorTokenMatches(original string, candidates []string) int {
	if original == "" || len(candidates) == 0 {
		return 0
	}

	candidateTokens := make(map[string]bool)
	for _, name := range candidates {
		for _, tok := range strings.Fields(name) {
			candidateTokens[tok] = true
		}
	}

	count := 0
	tokens := strings.FieldsFunc(original, func(r rune) bool {
		return unicode.IsSpace(r) || r == '~'
	})
	for _, tok := range tokens {
		if candidateTokens[tok] {
			count++
		}
	}
	return count
}

// cleanAuthorName drops a trailing all-numeric disambiguator from a DBLP
// author name ("Jane Doe 0001" becomes "Jane Doe").
func cleanAuthorName(name string) string {
	parts := strings.Fields(name)
	if len(parts) > 1 {
		last := parts[len(parts)-1]
		allDigits := true
		for _, r := range last {
			if !unicode.IsDigit(r) {
				allDigits = false
				break
			}
		}
		if allDigits {
			return strings.Join(parts[:len(parts)-1], " ")
		}
	}
	return name
}
