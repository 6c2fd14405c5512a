// Package annotation is the low-level representation of corpus
// annotations, following the Glozz model: standoff spans over a raw
// text buffer, typed relations between annotations, and schemas
// grouping sets of annotations.
//
// The package makes little attempt to interpret the annotations it
// holds. A relation claims to link two annotation ids; we note the
// fact and resolve the pointers, nothing more. Higher-level
// interpretation (EDUs, dialogue acts, ...) lives in package stac.
package annotation

import (
	"fmt"
	"sort"
	"strings"
)

// Span is the portion of text an annotation corresponds to,
// in character offsets.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (s Span) String() string {
	return fmt.Sprintf("(%d,%d)", s.Start, s.End)
}

// Len returns the length of the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Less orders spans by start offset, then end offset.
func (s Span) Less(other Span) bool {
	if s.Start != other.Start {
		return s.Start < other.Start
	}
	return s.End < other.End
}

// Shift returns a copy of the span moved right (positive offset) or
// left (negative offset).
func (s Span) Shift(offset int) Span {
	return Span{Start: s.Start + offset, End: s.End + offset}
}

// Absolute treats the span as relative to other and returns the
// shifted absolute copy.
func (s Span) Absolute(other Span) Span {
	return s.Shift(other.Start)
}

// Relative treats the span as absolute and returns a copy relative to
// other.
func (s Span) Relative(other Span) Span {
	return s.Shift(-other.Start)
}

// Encloses reports whether the span includes other.
// Note that s.Encloses(s) is true.
func (s Span) Encloses(other Span) bool {
	return s.Start <= other.Start && s.End >= other.End
}

// Overlaps returns the region two spans have in common, or false if
// they have none. The intersection counterpart of Merge.
func (s Span) Overlaps(other Span) (Span, bool) {
	start := max(s.Start, other.Start)
	end := min(s.End, other.End)
	if start < end {
		return Span{Start: start, End: end}, true
	}
	return Span{}, false
}

// Merge returns a span stretching from the beginning to the end of
// the two spans. The union counterpart of Overlaps.
func (s Span) Merge(other Span) Span {
	return Span{
		Start: min(s.Start, other.Start),
		End:   max(s.End, other.End),
	}
}

// RelSpan names the two annotations a relation connects.
type RelSpan struct {
	T1 string `json:"t1"`
	T2 string `json:"t2"`
}

func (r RelSpan) String() string {
	return r.T1 + " -> " + r.T2
}

// Annotation is any sort of annotation: a unit, a relation or a
// schema. All have a local id, a type and a span over the text.
type Annotation interface {
	// LocalID is sufficient to pick out the annotation within a
	// single annotation file.
	LocalID() string

	// TextSpan is the span from the earliest terminal annotation
	// reachable from here to the latest. For a unit that is just
	// its own span; relations and schemas aggregate their members.
	TextSpan() Span
}

// Unit is an annotation over a contiguous span of text.
type Unit struct {
	ID       string            `json:"id"`
	Span     Span              `json:"span"`
	Type     string            `json:"type"`
	Features map[string]string `json:"features,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func (u *Unit) LocalID() string {
	return u.ID
}

func (u *Unit) TextSpan() Span {
	return u.Span
}

func (u *Unit) String() string {
	return fmt.Sprintf("%s [%s] %s %s", u.ID, u.Type, u.Span, featString(u.Features))
}

// Relation is a directed annotation between two annotations. Source
// and Target are resolved when the document is assembled; until then
// only the ids in Span are known.
type Relation struct {
	ID       string            `json:"id"`
	Span     RelSpan           `json:"span"`
	Type     string            `json:"type"`
	Features map[string]string `json:"features,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`

	Source Annotation `json:"-"`
	Target Annotation `json:"-"`
}

func (r *Relation) LocalID() string {
	return r.ID
}

func (r *Relation) TextSpan() Span {
	return r.Source.TextSpan().Merge(r.Target.TextSpan())
}

func (r *Relation) String() string {
	return fmt.Sprintf("%s [%s] %s %s", r.ID, r.Type, r.Span, featString(r.Features))
}

// resolve sets the relation's Source and Target from the id table.
func (r *Relation) resolve(table map[string]Annotation) error {
	source, ok := table[r.Span.T1]
	if !ok {
		return fmt.Errorf("no annotation with id %s [relation source]", r.Span.T1)
	}
	target, ok := table[r.Span.T2]
	if !ok {
		return fmt.Errorf("no annotation with id %s [relation target]", r.Span.T2)
	}
	r.Source = source
	r.Target = target
	return nil
}

// Schema is an annotation grouping a set of annotations. The member
// id sets are kept per kind as the file format records them; Members
// holds the resolved annotations once the document is assembled.
type Schema struct {
	ID        string            `json:"id"`
	Units     []string          `json:"units,omitempty"`
	Relations []string          `json:"relations,omitempty"`
	Schemas   []string          `json:"schemas,omitempty"`
	Type      string            `json:"type"`
	Features  map[string]string `json:"features,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`

	Members []Annotation `json:"-"`
}

func (s *Schema) LocalID() string {
	return s.ID
}

// TextSpan aggregates the spans of all members. A schema with no
// members yields the zero span.
func (s *Schema) TextSpan() Span {
	if len(s.Members) == 0 {
		return Span{}
	}
	span := s.Members[0].TextSpan()
	for _, m := range s.Members[1:] {
		span = span.Merge(m.TextSpan())
	}
	return span
}

func (s *Schema) String() string {
	return fmt.Sprintf("%s [%s] %d members %s", s.ID, s.Type, len(s.MemberIDs()), featString(s.Features))
}

// MemberIDs returns the ids of all members, whatever their kind.
func (s *Schema) MemberIDs() []string {
	ids := make([]string, 0, len(s.Units)+len(s.Relations)+len(s.Schemas))
	ids = append(ids, s.Units...)
	ids = append(ids, s.Relations...)
	ids = append(ids, s.Schemas...)
	return ids
}

// resolve sets the schema's Members from the id table.
func (s *Schema) resolve(table map[string]Annotation) error {
	ids := s.MemberIDs()
	s.Members = make([]Annotation, 0, len(ids))
	for _, id := range ids {
		m, ok := table[id]
		if !ok {
			return fmt.Errorf("no annotation with id %s [schema member]", id)
		}
		s.Members = append(s.Members, m)
	}
	return nil
}

func featString(feats map[string]string) string {
	if len(feats) == 0 {
		return "{}"
	}
	keys := make([]string, 0, len(feats))
	for k := range feats {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+feats[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
