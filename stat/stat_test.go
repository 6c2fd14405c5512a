package stat

import (
	"testing"

	"github.com/revelaction/disco/annotation"
)

func mustDoc(t *testing.T, units []*annotation.Unit, relations []*annotation.Relation, schemas []*annotation.Schema) *annotation.Document {
	t.Helper()
	doc, err := annotation.NewDocument(units, relations, schemas, "")
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestAggregate(t *testing.T) {
	h := NewHandler()

	h.Aggregate(mustDoc(t,
		[]*annotation.Unit{
			{ID: "u1", Type: "Turn"},
			{ID: "u2", Type: "Offer"},
			{ID: "u3", Type: "Offer"},
		},
		[]*annotation.Relation{
			{ID: "r1", Span: annotation.RelSpan{T1: "u2", T2: "u3"}, Type: "Continuation"},
		},
		nil,
	))
	h.Aggregate(mustDoc(t,
		[]*annotation.Unit{
			{ID: "u1", Type: "Offer"},
		},
		nil,
		[]*annotation.Schema{
			{ID: "s1", Units: []string{"u1"}, Type: "Complex_discourse_unit"},
		},
	))

	s := h.Get()
	if s.Documents != 2 {
		t.Errorf("expected 2 documents, got %d", s.Documents)
	}
	if s.Units != 4 || s.Relations != 1 || s.Schemas != 1 {
		t.Errorf("unexpected totals: %+v", s)
	}
	if s.UnitTypes["Offer"] != 3 || s.UnitTypes["Turn"] != 1 {
		t.Errorf("unexpected unit types: %v", s.UnitTypes)
	}
	if s.RelationTypes["Continuation"] != 1 {
		t.Errorf("unexpected relation types: %v", s.RelationTypes)
	}
	if s.SchemaTypes["Complex_discourse_unit"] != 1 {
		t.Errorf("unexpected schema types: %v", s.SchemaTypes)
	}
}

func TestEmptyHandler(t *testing.T) {
	s := NewHandler().Get()
	if s.Documents != 0 || s.Units != 0 {
		t.Errorf("expected zero stats, got %+v", s)
	}
}
