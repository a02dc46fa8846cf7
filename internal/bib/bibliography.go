package bib

import "sort"

// Bibliography is a collection of entries keyed by citation key. Keys are
// unique and non-empty; insertion is last-wins, so a later entry with a
// duplicate key replaces the earlier one.
type Bibliography struct {
	entries map[string]*Entry
}

// New creates an empty Bibliography.
func New() *Bibliography {
	return &Bibliography{entries: make(map[string]*Entry)}
}

// Insert adds an entry, replacing any existing entry with the same key.
// Entries with an empty key are ignored.
func (b *Bibliography) Insert(e *Entry) {
	if e == nil || e.Key == "" {
		return
	}
	b.entries[e.Key] = e
}

// Get returns the entry for a citation key.
func (b *Bibliography) Get(key string) (*Entry, bool) {
	e, ok := b.entries[key]
	return e, ok
}

// Len returns the number of entries.
func (b *Bibliography) Len() int {
	return len(b.entries)
}

// Keys returns all citation keys sorted lexicographically.
func (b *Bibliography) Keys() []string {
	keys := make([]string, 0, len(b.entries))
	for key := range b.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Merge copies every entry of other into b, last-wins on key collision.
// The copies are independent: later mutation of other's entries does not
// leak into b.
func (b *Bibliography) Merge(other *Bibliography) {
	if other == nil {
		return
	}
	for _, key := range other.Keys() {
		if e, ok := other.Get(key); ok {
			b.Insert(e.Clone())
		}
	}
}
