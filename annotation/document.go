package annotation

// Origin identifies where a document (and its annotations) came from,
// typically a corpus.FileId. It is an interface here to keep this
// package free of corpus bookkeeping.
type Origin interface {
	// GlobalID widens a file-local annotation id into one that is
	// unique across the corpus.
	GlobalID(localID string) string
}

// Document is a single (sub)document: a raw text buffer plus its
// unit, relation and schema annotations. Read-only to consumers once
// assembled.
type Document struct {
	Units     []*Unit
	Relations []*Relation
	Schemas   []*Schema

	text string

	// runes is the decoded text. Spans index code points, not
	// bytes, so all slicing goes through here.
	runes  []rune
	origin Origin
}

// NewDocument assembles a document and resolves every relation
// endpoint and schema member against the document's own annotations.
// A dangling member id is an error: every id a relation or schema
// mentions must name a unit, relation or schema in the same document.
func NewDocument(units []*Unit, relations []*Relation, schemas []*Schema, text string) (*Document, error) {
	doc := &Document{
		Units:     units,
		Relations: relations,
		Schemas:   schemas,
		text:      text,
		runes:     []rune(text),
	}

	table := make(map[string]Annotation, len(units)+len(relations)+len(schemas))
	for _, u := range units {
		table[u.ID] = u
	}
	for _, r := range relations {
		table[r.ID] = r
	}
	for _, s := range schemas {
		table[s.ID] = s
	}

	for _, r := range relations {
		if err := r.resolve(table); err != nil {
			return nil, err
		}
	}
	for _, s := range schemas {
		if err := s.resolve(table); err != nil {
			return nil, err
		}
	}

	return doc, nil
}

// Annotations returns all annotations associated with the document.
func (d *Document) Annotations() []Annotation {
	all := make([]Annotation, 0, len(d.Units)+len(d.Relations)+len(d.Schemas))
	for _, u := range d.Units {
		all = append(all, u)
	}
	for _, r := range d.Relations {
		all = append(all, r)
	}
	for _, s := range d.Schemas {
		all = append(all, s)
	}
	return all
}

// Text returns the raw text buffer.
func (d *Document) Text() string {
	return d.text
}

// TextAt returns the text covered by span, clamped to the buffer.
// Span offsets count code points, so multi-byte text stays aligned.
func (d *Document) TextAt(span Span) string {
	start := span.Start
	end := span.End
	if start < 0 {
		start = 0
	}
	if end > len(d.runes) {
		end = len(d.runes)
	}
	if start >= end {
		return ""
	}
	return string(d.runes[start:end])
}

// Annotation returns the annotation with the given local id, or nil.
func (d *Document) Annotation(localID string) Annotation {
	for _, a := range d.Annotations() {
		if a.LocalID() == localID {
			return a
		}
	}
	return nil
}

// UnitsAt returns the units whose span overlaps or touches the given
// span, in document order.
func (d *Document) UnitsAt(span Span) []*Unit {
	var hits []*Unit
	for _, u := range d.Units {
		if _, ok := u.Span.Overlaps(span); ok {
			hits = append(hits, u)
		}
	}
	return hits
}

// SetOrigin records where the document came from. With more than one
// document in play, setting the origin is how annotations from
// different files are told apart.
func (d *Document) SetOrigin(o Origin) {
	d.origin = o
}

// Origin returns the document's origin, or nil if unset.
func (d *Document) Origin() Origin {
	return d.origin
}

// GlobalID widens a file-local annotation id using the document's
// origin; without an origin the local id is returned as is.
func (d *Document) GlobalID(localID string) string {
	if d.origin == nil {
		return localID
	}
	return d.origin.GlobalID(localID)
}
