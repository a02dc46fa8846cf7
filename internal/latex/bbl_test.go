package latex

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/gautierdag/bibextract/internal/bib"
)

const fourItemBBL = `\begin{thebibliography}{99}

\bibitem[{\em Baker et~al.}{2022}]{vpt}
Baker, Bowen and Akkaya, Ilge and Zhokhov, Petr.
\newblock Video pretraining: learning to act by watching videos

\bibitem[{\em Chevalier-Boisvert et~al.}{2019}]{babyai_iclr19}
Chevalier-Boisvert, Maxime and Bahdanau, Dzmitry.
\newblock BabyAI: a platform to study grounded language learning

\bibitem[{\em Deng et~al.}{2023}]{deng2023mind2web}
Deng, Xiang and Gu, Yu and Zheng, Boyuan.
\newblock Mind2Web: towards a generalist agent for the web

\bibitem[{\em Grattafiori et~al.}{2024}]{llama3}
Grattafiori, Aaron and Dubey, Abhimanyu.
\newblock The Llama 3 herd of models

\end{thebibliography}
`

func TestParseBBL_FourEntries(t *testing.T) {
	bibliography := ParseBBL(fourItemBBL)

	if bibliography.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", bibliography.Len())
	}

	wantYears := map[string]string{
		"vpt":              "2022",
		"babyai_iclr19":    "2019",
		"deng2023mind2web": "2023",
		"llama3":           "2024",
	}
	for key, wantYear := range wantYears {
		entry, ok := bibliography.Get(key)
		if !ok {
			t.Errorf("entry %q not parsed", key)
			continue
		}
		if year, _ := entry.Get(bib.FieldYear); year != wantYear {
			t.Errorf("entry %q year = %q, want %q", key, year, wantYear)
		}
	}

	vpt, _ := bibliography.Get("vpt")
	if author, _ := vpt.Get(bib.FieldAuthor); !strings.Contains(author, "Baker") {
		t.Errorf("vpt author = %q, should contain Baker", author)
	}
	if title, _ := vpt.Get(bib.FieldTitle); !strings.Contains(title, "Video pretraining") {
		t.Errorf("vpt title = %q, should contain Video pretraining", title)
	}
	if raw, ok := vpt.Get(bib.FieldRaw); !ok || raw == "" {
		t.Error("vpt raw field missing")
	}
}

func TestParseBBL_CiteAuthorYearHeader(t *testing.T) {
	content := `\begin{thebibliography}{10}

\bibitem[\protect\citeauthoryear{Acemoglu}{2018}]{acemoglu2018artificial}
Acemoglu, Daron and Restrepo, Pascual.
\newblock Artificial intelligence, automation and work.

\end{thebibliography}
`
	bibliography := ParseBBL(content)

	entry, ok := bibliography.Get("acemoglu2018artificial")
	if !ok {
		t.Fatal("citeauthoryear-keyed entry not parsed")
	}
	if year, _ := entry.Get(bib.FieldYear); year != "2018" {
		t.Errorf("year = %q, want 2018 (from the header, not the body)", year)
	}
	if author, _ := entry.Get(bib.FieldAuthor); !strings.Contains(author, "Acemoglu") {
		t.Errorf("author = %q, should contain Acemoglu", author)
	}
}

func TestParseBBL_YearFallbacks(t *testing.T) {
	content := `\begin{thebibliography}{10}

\bibitem{trailing}
Doe, Jane.
\newblock Some paper title.
\newblock Journal of Things, 2017.

\bibitem{anywhere}
Roe, Richard.
\newblock Published in 1998 as a memo

\end{thebibliography}
`
	bibliography := ParseBBL(content)

	trailing, _ := bibliography.Get("trailing")
	if year, _ := trailing.Get(bib.FieldYear); year != "2017" {
		t.Errorf("trailing-period year = %q, want 2017", year)
	}

	anywhere, _ := bibliography.Get("anywhere")
	if year, _ := anywhere.Get(bib.FieldYear); year != "1998" {
		t.Errorf("in-body year = %q, want 1998", year)
	}
}

func TestParseBBL_KeylessFragmentDropped(t *testing.T) {
	content := `\begin{thebibliography}{10}

\bibitem
no key anywhere on this item at all

\bibitem{kept}
Doe, Jane.

\end{thebibliography}
`
	bibliography := ParseBBL(content)
	if bibliography.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 (keyless fragment must be dropped)", bibliography.Len())
	}
	if _, ok := bibliography.Get("kept"); !ok {
		t.Error("keyed entry missing")
	}
}

func TestParseBBL_MissingEnvironment(t *testing.T) {
	for _, content := range []string{
		"",
		"just some text",
		`\begin{thebibliography}{10} \bibitem{a} no closing marker`,
	} {
		if got := ParseBBL(content); got.Len() != 0 {
			t.Errorf("ParseBBL(%q).Len() = %d, want 0", content, got.Len())
		}
	}
}

func TestParseBBL_DuplicateKeyLastWins(t *testing.T) {
	content := `\begin{thebibliography}{10}

\bibitem{dup}
First, Author.

\bibitem{dup}
Second, Author.

\end{thebibliography}
`
	bibliography := ParseBBL(content)
	entry, _ := bibliography.Get("dup")
	if author, _ := entry.Get(bib.FieldAuthor); !strings.Contains(author, "Second") {
		t.Errorf("author = %q, want the later entry to win", author)
	}
}

func TestParseBBLFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "refs.bbl")
	if err := os.WriteFile(path, []byte(fourItemBBL), 0o644); err != nil {
		t.Fatal(err)
	}

	bibliography := ParseBBLFiles([]string{path, filepath.Join(dir, "missing.bbl")}, zap.NewNop())
	if bibliography.Len() != 4 {
		t.Errorf("Len() = %d, want 4 (unreadable file skipped, not fatal)", bibliography.Len())
	}
}
