// Package survey drives the whole pipeline: it downloads paper sources,
// extracts related-work sections and bibliographies, verifies entries
// against the remote catalogs, and renders the consolidated survey text
// and BibTeX output.
package survey

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gautierdag/bibextract/internal/archive"
	"github.com/gautierdag/bibextract/internal/arxiv"
	"github.com/gautierdag/bibextract/internal/bib"
	"github.com/gautierdag/bibextract/internal/cache"
	"github.com/gautierdag/bibextract/internal/config"
	"github.com/gautierdag/bibextract/internal/dblp"
	"github.com/gautierdag/bibextract/internal/latex"
	"github.com/gautierdag/bibextract/internal/verify"
)

// ErrNoPaperIDs is returned when Extract is called with no paper IDs.
var ErrNoPaperIDs = errors.New("no paper IDs provided")

// Paper is one processed paper: its extracted sections and parsed
// bibliography, plus title and author metadata when the source carried it.
type Paper struct {
	ID           string
	Title        string
	Author       string
	Sections     []latex.Section
	Bibliography *bib.Bibliography
}

// Pipeline wires the clients, verifier, and configuration together.
type Pipeline struct {
	cfg      *config.Config
	arxiv    *arxiv.Client
	verifier *verify.Verifier
	store    *cache.Cache
	logger   *zap.Logger
}

// NewPipeline builds a Pipeline from configuration.
func NewPipeline(cfg *config.Config, logger *zap.Logger) (*Pipeline, error) {
	arxivClient := arxiv.NewClient(
		arxiv.WithBaseURL(cfg.ArxivBaseURL),
		arxiv.WithMaxElapsed(cfg.RetryMaxElapsed()),
		arxiv.WithLogger(logger),
	)
	dblpClient := dblp.NewClient(
		dblp.WithBaseURL(cfg.DBLPBaseURL),
		dblp.WithMaxElapsed(cfg.RetryMaxElapsed()),
		dblp.WithLogger(logger),
	)

	opts := []verify.Option{
		verify.WithLogger(logger),
		verify.WithWorkers(cfg.VerifyWorkers),
	}

	var store *cache.Cache
	if cfg.CachePath != "" {
		var err error
		store, err = cache.Open(cfg.CachePath)
		if err != nil {
			return nil, fmt.Errorf("opening record cache: %w", err)
		}
		opts = append(opts, verify.WithCache(store))
	}

	return &Pipeline{
		cfg:      cfg,
		arxiv:    arxivClient,
		verifier: verify.New(arxivClient, dblpClient, opts...),
		store:    store,
		logger:   logger,
	}, nil
}

// Close releases pipeline resources.
func (p *Pipeline) Close() error {
	if p.store != nil {
		return p.store.Close()
	}
	return nil
}

// Extract processes the given papers and returns the survey text and the
// consolidated BibTeX bibliography. Papers are processed concurrently; a
// paper that fails to download or parse is logged and contributes nothing,
// it does not sink the run. The only fatal condition is an empty ID list.
func (p *Pipeline) Extract(ctx context.Context, paperIDs []string) (string, string, error) {
	if len(paperIDs) == 0 {
		return "", "", ErrNoPaperIDs
	}

	papers := make([]*Paper, len(paperIDs))
	var g errgroup.Group
	for i, id := range paperIDs {
		i, id := i, id
		g.Go(func() error {
			paper, err := p.processPaper(ctx, id)
			if err != nil {
				p.logger.Warn("skipping paper", zap.String("paper_id", id), zap.Error(err))
				return nil
			}
			papers[i] = paper
			return nil
		})
	}
	// Worker errors are logged, not returned.
	_ = g.Wait()

	consolidated := bib.New()
	for _, paper := range papers {
		if paper != nil {
			consolidated.Merge(paper.Bibliography)
		}
	}

	var sb strings.Builder
	for _, paper := range papers {
		if paper == nil {
			continue
		}
		sb.WriteString(fmt.Sprintf("%% Paper ID: %s\n%% Title: %s\n%% Authors: %s\n\n",
			paper.ID, paper.Title, paper.Author))
		for _, section := range paper.Sections {
			sb.WriteString(fmt.Sprintf("\\section{%s}\n\n", section.Title))
			normalized, _ := latex.NormalizeCitations(section.Content, consolidated)
			sb.WriteString(normalized)
			sb.WriteString("\n\n")
		}
	}

	return sb.String(), bib.Render(consolidated), nil
}

// processPaper runs the per-paper pipeline: download, extract, flatten,
// parse, verify.
func (p *Pipeline) processPaper(ctx context.Context, paperID string) (*Paper, error) {
	p.logger.Info("processing paper", zap.String("paper_id", paperID))

	data, err := p.arxiv.EPrint(ctx, paperID)
	if err != nil {
		return nil, fmt.Errorf("downloading source: %w", err)
	}

	dir, err := os.MkdirTemp("", "bibextract-"+strings.ReplaceAll(paperID, "/", "_")+"-")
	if err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}
	defer os.RemoveAll(dir)

	if err := archive.Extract(bytes.NewReader(data), dir); err != nil {
		return nil, fmt.Errorf("extracting source archive: %w", err)
	}

	mainFile, err := latex.FindMainFile(dir)
	if err != nil {
		return nil, err
	}

	doc, err := latex.Flatten(dir, mainFile, p.logger)
	if err != nil {
		return nil, fmt.Errorf("flattening source: %w", err)
	}

	bblFiles, err := latex.FindBBLFiles(dir)
	if err != nil {
		return nil, err
	}
	bibliography := latex.ParseBBLFiles(bblFiles, p.logger)
	sections := latex.ExtractSections(doc.Body)

	p.logger.Info("extracted paper content",
		zap.String("paper_id", paperID),
		zap.Int("sections", len(sections)),
		zap.Int("entries", bibliography.Len()))

	verified := p.verifier.VerifyBibliography(ctx, bibliography)
	p.logger.Info("verified bibliography",
		zap.String("paper_id", paperID),
		zap.Int("verified", verified),
		zap.Int("total", bibliography.Len()))

	return &Paper{
		ID:           paperID,
		Title:        doc.Title,
		Author:       doc.Author,
		Sections:     sections,
		Bibliography: bibliography,
	}, nil
}
