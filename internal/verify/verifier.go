// Package verify cross-checks bibliography entries against two remote
// catalogs: the arXiv BibTeX record service and the DBLP publication
// search index. Both are consulted concurrently; the arXiv record wins
// when both produce a candidate.
package verify

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/gautierdag/bibextract/internal/arxiv"
	"github.com/gautierdag/bibextract/internal/bib"
	"github.com/gautierdag/bibextract/internal/cache"
	"github.com/gautierdag/bibextract/internal/dblp"
	"github.com/gautierdag/bibextract/internal/latex"
)

// Source labels written into the verified_source field.
const (
	SourceArxiv = "arXiv"
	SourceDBLP  = "DBLP"
)

// DefaultWorkers is the default bound on concurrent entry verifications.
const DefaultWorkers = 8

// candidate is an ephemeral verification result from one source. Only the
// winning candidate's fields are ever copied into a live entry.
type candidate struct {
	source string
	entry  *bib.Entry
}

// Verifier verifies bibliography entries against the remote catalogs.
type Verifier struct {
	arxiv   *arxiv.Client
	dblp    *dblp.Client
	store   *cache.Cache
	logger  *zap.Logger
	workers int
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(v *Verifier) {
		v.logger = logger
	}
}

// WithCache adds a record cache consulted before each remote call.
func WithCache(store *cache.Cache) Option {
	return func(v *Verifier) {
		v.store = store
	}
}

// WithWorkers sets the bound on concurrent entry verifications.
func WithWorkers(n int) Option {
	return func(v *Verifier) {
		if n > 0 {
			v.workers = n
		}
	}
}

// New creates a Verifier using the given source clients.
func New(arxivClient *arxiv.Client, dblpClient *dblp.Client, opts ...Option) *Verifier {
	v := &Verifier{
		arxiv:   arxivClient,
		dblp:    dblpClient,
		logger:  zap.NewNop(),
		workers: DefaultWorkers,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// VerifyEntry queries both sources concurrently, picks the winning
// candidate, and copies its fields into the entry. Reports whether any
// source corroborated the entry. A source failing or finding nothing is a
// normal outcome and never an error.
func (v *Verifier) VerifyEntry(ctx context.Context, entry *bib.Entry) bool {
	var wg sync.WaitGroup
	results := make([]*candidate, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		results[0] = v.arxivCandidate(ctx, entry)
	}()
	go func() {
		defer wg.Done()
		results[1] = v.dblpCandidate(ctx, entry)
	}()
	wg.Wait()

	// arXiv takes precedence over DBLP.
	winner := results[0]
	if winner == nil {
		winner = results[1]
	}
	if winner == nil {
		return false
	}

	for _, name := range winner.entry.FieldNames() {
		if name == bib.FieldRaw {
			continue
		}
		value, _ := winner.entry.Get(name)
		entry.Set(name, value)
	}
	if winner.entry.EntryType != "" {
		entry.EntryType = winner.entry.EntryType
	}
	entry.Set(bib.FieldVerifiedSource, winner.source)

	return true
}

// arxivCandidate fetches the canonical record when the entry carries an
// arXiv identifier.
func (v *Verifier) arxivCandidate(ctx context.Context, entry *bib.Entry) *candidate {
	id, ok := extractArxivID(entry)
	if !ok {
		return nil
	}

	record, ok := v.fetchArxivRecord(ctx, id)
	if !ok {
		return nil
	}

	parsed, ok := bib.ParseRecord(record)
	if !ok {
		v.logger.Debug("unparsable arXiv record", zap.String("arxiv_id", id))
		return nil
	}
	return &candidate{source: SourceArxiv, entry: parsed}
}

func (v *Verifier) fetchArxivRecord(ctx context.Context, id string) (string, bool) {
	if v.store != nil {
		if payload, hit, err := v.store.Get(SourceArxiv, id); err == nil && hit {
			return payload, true
		}
	}

	record, err := v.arxiv.BibTeX(ctx, id)
	if err != nil {
		v.logger.Debug("no arXiv record", zap.String("arxiv_id", id), zap.Error(err))
		return "", false
	}

	if v.store != nil {
		if err := v.store.Put(SourceArxiv, id, record); err != nil {
			v.logger.Debug("cache write failed", zap.Error(err))
		}
	}
	return record, true
}

// dblpCandidate searches DBLP by title and builds a candidate from the
// best-scoring hit.
func (v *Verifier) dblpCandidate(ctx context.Context, entry *bib.Entry) *candidate {
	title, ok := entry.Get(bib.FieldTitle)
	if !ok || title == "" {
		return nil
	}

	// Strip braces and collapse whitespace for the free-text query.
	query := strings.Join(strings.Fields(strings.NewReplacer("{", "", "}", "").Replace(title)), " ")

	hits, ok := v.searchDBLP(ctx, query)
	if !ok {
		return nil
	}

	info, ok := bestMatch(hits, entry)
	if !ok {
		return nil
	}

	builder := bib.NewEntry(entry.Key, entry.EntryType)
	for _, name := range entry.FieldNames() {
		if name == bib.FieldVerifiedSource {
			continue
		}
		value, _ := entry.Get(name)
		builder.Field(name, value)
	}

	if info.Title != "" {
		builder.Field(bib.FieldTitle, info.Title)
	}
	if info.Year != "" {
		builder.Field(bib.FieldYear, info.Year)
	}
	if info.Venue != "" {
		builder.Field(bib.FieldBooktitle, info.Venue)
	}
	if info.URL != "" {
		builder.Field(bib.FieldURL, info.URL)
	}
	if info.Volume != "" {
		builder.Field(bib.FieldVolume, info.Volume)
	}
	if info.DOI != "" {
		builder.Field(bib.FieldDOI, info.DOI)
	}
	if names := info.Authors.Names(); len(names) > 0 {
		cleaned := make([]string, len(names))
		for i, name := range names {
			cleaned[i] = cleanAuthorName(name)
		}
		builder.Field(bib.FieldAuthor, strings.Join(cleaned, " and "))
	}

	return &candidate{source: SourceDBLP, entry: builder.Build()}
}

func (v *Verifier) searchDBLP(ctx context.Context, query string) ([]dblp.Hit, bool) {
	if v.store != nil {
		if payload, hit, err := v.store.Get(SourceDBLP, query); err == nil && hit {
			var hits []dblp.Hit
			if err := json.Unmarshal([]byte(payload), &hits); err == nil {
				return hits, len(hits) > 0
			}
		}
	}

	hits, err := v.dblp.Search(ctx, query)
	if err != nil {
		v.logger.Debug("DBLP search failed", zap.String("query", query), zap.Error(err))
		return nil, false
	}

	if v.store != nil {
		if payload, err := json.Marshal(hits); err == nil {
			if err := v.store.Put(SourceDBLP, query, string(payload)); err != nil {
				v.logger.Debug("cache write failed", zap.Error(err))
			}
		}
	}
	return hits, len(hits) > 0
}

// extractArxivID looks for an arXiv identifier in the fields that usually
// carry one, then in the citation key itself.
func extractArxivID(entry *bib.Entry) (string, bool) {
	for _, field := range []string{bib.FieldTitle, bib.FieldJournal, bib.FieldNote, bib.FieldRaw} {
		if content, ok := entry.Get(field); ok {
			if m := latex.ArxivIDRe.FindStringSubmatch(content); m != nil {
				return m[1], true
			}
		}
	}
	if m := latex.ArxivKeyRe.FindStringSubmatch(entry.Key); m != nil {
		return m[1], true
	}
	return "", false
}
