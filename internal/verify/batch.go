package verify

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/gautierdag/bibextract/internal/bib"
)

// VerifyBibliography verifies every entry of a bibliography, at most
// workers entries in flight at a time, and returns how many were
// corroborated. Each entry is verified on a private copy and written back
// only after its verification completes, so readers of the bibliography
// never observe a half-updated entry. A failing or panicking entry
// contributes nothing and does not disturb its siblings.
func (v *Verifier) VerifyBibliography(ctx context.Context, bibliography *bib.Bibliography) int {
	total := bibliography.Len()
	sem := make(chan struct{}, v.workers)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		verified = make(map[string]*bib.Entry)
		count    int
	)

	for _, key := range bibliography.Keys() {
		entry, ok := bibliography.Get(key)
		if !ok {
			continue
		}
		working := entry.Clone()

		wg.Add(1)
		go func(key string, working *bib.Entry) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					v.logger.Error("panic verifying entry", zap.String("key", key), zap.Any("panic", r))
				}
			}()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()

			if !v.VerifyEntry(ctx, working) {
				v.logger.Debug("could not verify entry", zap.String("key", key))
				return
			}

			mu.Lock()
			count++
			verified[key] = working
			done := count
			mu.Unlock()

			v.logger.Info("verified entry",
				zap.String("key", key), zap.Int("done", done), zap.Int("total", total))
		}(key, working)
	}
	wg.Wait()

	for _, entry := range verified {
		bibliography.Insert(entry)
	}
	return count
}
