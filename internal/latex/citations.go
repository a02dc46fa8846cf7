package latex

import (
	"strings"

	"github.com/gautierdag/bibextract/internal/bib"
)

// NormalizeCitations rewrites every citation command in content so that
// keys present in the bibliography are replaced by their normalized form.
// Keys that do not resolve are kept as written, and a command in which
// nothing resolved is left byte-for-byte untouched. The returned map
// records original key to normalized key for every key that was resolved.
func NormalizeCitations(content string, bibliography *bib.Bibliography) (string, map[string]string) {
	keyMap := make(map[string]string)

	rewritten := CiteRe.ReplaceAllStringFunc(content, func(command string) string {
		open := strings.Index(command, "{")
		name := command[:open]
		keys := strings.Split(command[open+1:len(command)-1], ",")

		resolvedAny := false
		normalized := make([]string, 0, len(keys))
		for _, key := range keys {
			key = strings.TrimSpace(key)
			entry, ok := bibliography.Get(key)
			if !ok {
				normalized = append(normalized, key)
				continue
			}
			normKey := bib.NormalizeKey(entry)
			keyMap[key] = normKey
			normalized = append(normalized, normKey)
			resolvedAny = true
		}

		if !resolvedAny {
			return command
		}
		return name + "{" + strings.Join(normalized, ", ") + "}"
	})

	return rewritten, keyMap
}
