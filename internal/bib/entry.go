// Package bib defines the core bibliography types: entries as dynamic
// field bags, builders for constructing them, and the keyed collection
// they live in.
package bib

// Well-known field names. Fields are free-form strings, but these are the
// names the pipeline reads and writes; treat them as the closed vocabulary
// rather than inventing ad hoc spellings.
const (
	FieldAuthor         = "author"
	FieldTitle          = "title"
	FieldYear           = "year"
	FieldJournal        = "journal"
	FieldBooktitle      = "booktitle"
	FieldNote           = "note"
	FieldURL            = "url"
	FieldVolume         = "volume"
	FieldDOI            = "doi"
	FieldVerifiedSource = "verified_source"

	// FieldRaw holds the original unparsed reference text for diagnostics.
	// It is never emitted in rendered output.
	FieldRaw = "raw"
)

// Entry is a single bibliography entry: a citation key, an entry type
// (article, inproceedings, ...), and a bag of free-form fields.
type Entry struct {
	Key       string
	EntryType string
	fields    map[string]string
}

// Get returns the value of a field and whether it is set.
func (e *Entry) Get(field string) (string, bool) {
	v, ok := e.fields[field]
	return v, ok
}

// Set stores a field value, overwriting any previous value.
func (e *Entry) Set(field, value string) {
	if e.fields == nil {
		e.fields = make(map[string]string)
	}
	e.fields[field] = value
}

// FieldNames returns the names of all set fields in unspecified order.
func (e *Entry) FieldNames() []string {
	names := make([]string, 0, len(e.fields))
	for name := range e.fields {
		names = append(names, name)
	}
	return names
}

// Clone returns a deep copy of the entry. Mutating the copy never affects
// the original.
func (e *Entry) Clone() *Entry {
	fields := make(map[string]string, len(e.fields))
	for k, v := range e.fields {
		fields[k] = v
	}
	return &Entry{Key: e.Key, EntryType: e.EntryType, fields: fields}
}

// EntryBuilder assembles an Entry field by field. The entry is not visible
// to anyone else until Build is called, so a builder can be filled in
// freely while concurrent verification reads the live entries.
type EntryBuilder struct {
	key       string
	entryType string
	fields    map[string]string
}

// NewEntry starts a builder for an entry with the given citation key and
// entry type.
func NewEntry(key, entryType string) *EntryBuilder {
	return &EntryBuilder{
		key:       key,
		entryType: entryType,
		fields:    make(map[string]string),
	}
}

// Field sets a single field on the entry under construction.
func (b *EntryBuilder) Field(name, value string) *EntryBuilder {
	b.fields[name] = value
	return b
}

// Fields sets every field from the given map.
func (b *EntryBuilder) Fields(fields map[string]string) *EntryBuilder {
	for name, value := range fields {
		b.fields[name] = value
	}
	return b
}

// Build freezes the builder into an Entry.
func (b *EntryBuilder) Build() *Entry {
	return &Entry{Key: b.key, EntryType: b.entryType, fields: b.fields}
}
