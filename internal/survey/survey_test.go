package survey

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/gautierdag/bibextract/internal/config"
)

const mainTex = `\documentclass{article}
\title{Agents That Browse}
\author{Doe, Jane}
\begin{document}
\section{Introduction}
We build agents.

\section{Related Work}
Earlier agents were studied by \cite{smith2020}.
\end{document}
`

const refsBBL = `\begin{thebibliography}{10}

\bibitem{smith2020}
Smith, Alice.
\newblock Great agent systems
\newblock Journal of Agents, 2020.

\end{thebibliography}
`

func sourceArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, content := range files {
		if err := tw.WriteHeader(&tar.Header{
			Name:     name,
			Mode:     0o644,
			Size:     int64(len(content)),
			Typeflag: tar.TypeReg,
		}); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func testPipeline(t *testing.T, archives map[string][]byte) *Pipeline {
	t.Helper()

	arxivServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := strings.CutPrefix(r.URL.Path, "/e-print/"); ok {
			if payload, found := archives[id]; found {
				w.Write(payload)
				return
			}
			w.WriteHeader(http.StatusNotFound)
			return
		}
		// No canonical records in these tests.
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(arxivServer.Close)

	dblpServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result": {"hits": {"@total": "0"}}}`))
	}))
	t.Cleanup(dblpServer.Close)

	cfg := config.Default()
	cfg.ArxivBaseURL = arxivServer.URL
	cfg.DBLPBaseURL = dblpServer.URL
	cfg.RetryMaxElapsedSecs = 1

	pipeline, err := NewPipeline(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}
	t.Cleanup(func() { pipeline.Close() })
	return pipeline
}

func TestExtract(t *testing.T) {
	pipeline := testPipeline(t, map[string][]byte{
		"2401.12345": sourceArchive(t, map[string]string{
			"main.tex": mainTex,
			"refs.bbl": refsBBL,
		}),
	})

	survey, bibtex, err := pipeline.Extract(context.Background(), []string{"2401.12345"})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	for _, want := range []string{
		"% Paper ID: 2401.12345",
		"% Title: Agents That Browse",
		"% Authors: Doe, Jane",
		`\section{Related Work}`,
		`\cite{smith_great_agent_systems_2020}`,
	} {
		if !strings.Contains(survey, want) {
			t.Errorf("survey output missing %q:\n%s", want, survey)
		}
	}
	if strings.Contains(survey, `\section{Introduction}`) {
		t.Error("survey output must only carry related-work sections")
	}

	if !strings.Contains(bibtex, "@article{smith_great_agent_systems_2020,") {
		t.Errorf("bibtex output missing normalized entry:\n%s", bibtex)
	}
	if !strings.Contains(bibtex, "author = {Smith, Alice.}") {
		t.Errorf("bibtex output missing author field:\n%s", bibtex)
	}
	if strings.Contains(bibtex, "raw") {
		t.Errorf("bibtex output must not carry the raw field:\n%s", bibtex)
	}
}

func TestExtract_FailingPaperSkipped(t *testing.T) {
	pipeline := testPipeline(t, map[string][]byte{
		"2401.12345": sourceArchive(t, map[string]string{
			"main.tex": mainTex,
			"refs.bbl": refsBBL,
		}),
	})

	survey, _, err := pipeline.Extract(context.Background(), []string{"9999.00000", "2401.12345"})
	if err != nil {
		t.Fatalf("Extract() error = %v, a failing paper must not sink the run", err)
	}
	if strings.Contains(survey, "9999.00000") {
		t.Error("failed paper must contribute nothing")
	}
	if !strings.Contains(survey, "% Paper ID: 2401.12345") {
		t.Error("surviving paper missing from the output")
	}
}

func TestExtract_NoPaperIDs(t *testing.T) {
	pipeline := testPipeline(t, nil)

	if _, _, err := pipeline.Extract(context.Background(), nil); !errors.Is(err, ErrNoPaperIDs) {
		t.Errorf("error = %v, want ErrNoPaperIDs", err)
	}
}
