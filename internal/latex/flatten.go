package latex

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Document is a paper's LaTeX source flattened into a single string.
type Document struct {
	// Body is the text between \begin{document} and \end{document}, or the
	// whole flattened source when no document environment is found.
	Body string

	// Title and Author come from the preamble when present.
	Title  string
	Author string
}

// Flatten resolves every \input and \include directive starting from the
// main file and returns the resulting Document. Files that appear more than
// once are expanded only the first time, which also guards against
// inclusion cycles. Unresolvable directives are dropped with a log line.
func Flatten(baseDir, mainFile string, logger *zap.Logger) (*Document, error) {
	seen := make(map[string]bool)
	content, err := flattenFile(baseDir, mainFile, seen, logger)
	if err != nil {
		return nil, err
	}

	doc := &Document{Body: content}
	if m := documentRe.FindStringSubmatch(content); m != nil {
		doc.Body = m[1]
	}
	if m := titleRe.FindStringSubmatch(content); m != nil {
		doc.Title = strings.TrimSpace(m[1])
	}
	if m := authorRe.FindStringSubmatch(content); m != nil {
		doc.Author = strings.TrimSpace(m[1])
	}
	return doc, nil
}

func flattenFile(baseDir, texFile string, seen map[string]bool, logger *zap.Logger) (string, error) {
	if seen[texFile] {
		return "", nil
	}
	seen[texFile] = true

	data, err := os.ReadFile(texFile)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", texFile, err)
	}
	content := string(data)

	var sb strings.Builder
	last := 0
	for _, loc := range inputRe.FindAllStringSubmatchIndex(content, -1) {
		sb.WriteString(content[last:loc[0]])
		last = loc[1]

		name := content[loc[2]:loc[3]]
		path, ok := resolveInputPath(baseDir, name)
		if !ok {
			logger.Warn("could not resolve input file", zap.String("name", name))
			continue
		}

		included, err := flattenFile(baseDir, path, seen, logger)
		if err != nil {
			// A broken include should not sink the whole paper.
			logger.Warn("skipping unreadable input file", zap.String("path", path), zap.Error(err))
			continue
		}
		sb.WriteString(included)
	}
	sb.WriteString(content[last:])

	return sb.String(), nil
}

// resolveInputPath locates the file referenced by an \input directive,
// trying the name as written and then with a .tex extension.
func resolveInputPath(baseDir, name string) (string, bool) {
	direct := filepath.Join(baseDir, name)
	if info, err := os.Stat(direct); err == nil && !info.IsDir() {
		return direct, true
	}

	if !strings.HasSuffix(name, ".tex") {
		withExt := filepath.Join(baseDir, name+".tex")
		if info, err := os.Stat(withExt); err == nil && !info.IsDir() {
			return withExt, true
		}
	}

	return "", false
}

// FindMainFile locates the paper's main LaTeX file in an extracted source
// tree. Preference order: a file containing \begin{document}, then one
// containing \documentclass, then a conventionally named file, then any
// non-empty .tex file.
func FindMainFile(dir string) (string, error) {
	texFiles, err := findByExt(dir, ".tex")
	if err != nil {
		return "", err
	}
	if len(texFiles) == 0 {
		return "", fmt.Errorf("no .tex files found in %s", dir)
	}

	for _, marker := range []string{`\begin{document}`, `\documentclass`} {
		for _, path := range texFiles {
			if data, err := os.ReadFile(path); err == nil && strings.Contains(string(data), marker) {
				return path, nil
			}
		}
	}

	for _, name := range []string{"main.tex", "paper.tex", "article.tex", "manuscript.tex"} {
		for _, path := range texFiles {
			if filepath.Base(path) == name {
				if data, err := os.ReadFile(path); err == nil && len(data) > 0 {
					return path, nil
				}
			}
		}
	}

	for _, path := range texFiles {
		if data, err := os.ReadFile(path); err == nil && len(data) > 0 {
			return path, nil
		}
	}

	return texFiles[0], nil
}

// FindBBLFiles returns every .bbl file under dir.
func FindBBLFiles(dir string) ([]string, error) {
	return findByExt(dir, ".bbl")
}

func findByExt(dir, ext string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ext {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	return paths, nil
}
