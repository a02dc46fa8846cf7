package bib

import "testing"

func TestBibliographyInsert(t *testing.T) {
	b := New()

	b.Insert(NewEntry("key1", "article").Field(FieldTitle, "First").Build())
	b.Insert(NewEntry("key1", "article").Field(FieldTitle, "Second").Build())
	b.Insert(NewEntry("", "article").Field(FieldTitle, "Keyless").Build())

	if b.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 (duplicate overwrites, empty key dropped)", b.Len())
	}
	entry, ok := b.Get("key1")
	if !ok {
		t.Fatal("Get(key1) not found")
	}
	if title, _ := entry.Get(FieldTitle); title != "Second" {
		t.Errorf("title = %q, want Second (last wins)", title)
	}
}

func TestBibliographyKeysSorted(t *testing.T) {
	b := New()
	for _, key := range []string{"zeta", "alpha", "mid"} {
		b.Insert(NewEntry(key, "article").Build())
	}

	keys := b.Keys()
	want := []string{"alpha", "mid", "zeta"}
	for i, key := range want {
		if keys[i] != key {
			t.Fatalf("Keys() = %v, want %v", keys, want)
		}
	}
}

func TestBibliographyMergeCopies(t *testing.T) {
	src := New()
	src.Insert(NewEntry("a", "article").Field(FieldTitle, "Original").Build())

	dst := New()
	dst.Merge(src)

	// Mutating the source after merging must not leak into dst.
	srcEntry, _ := src.Get("a")
	srcEntry.Set(FieldTitle, "Mutated")

	dstEntry, _ := dst.Get("a")
	if title, _ := dstEntry.Get(FieldTitle); title != "Original" {
		t.Errorf("merged entry aliased source entry: title = %q", title)
	}
}

func TestEntryClone(t *testing.T) {
	entry := NewEntry("k", "article").Field(FieldAuthor, "A").Build()
	clone := entry.Clone()
	clone.Set(FieldAuthor, "B")

	if author, _ := entry.Get(FieldAuthor); author != "A" {
		t.Errorf("Clone() shares field storage: author = %q", author)
	}
}
