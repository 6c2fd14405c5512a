package annotation

import (
	"strings"
	"testing"
)

func TestSpanOverlaps(t *testing.T) {
	cases := []struct {
		name string
		a, b Span
		want Span
		ok   bool
	}{
		{"disjoint", Span{0, 5}, Span{10, 15}, Span{}, false},
		{"touching", Span{0, 5}, Span{5, 10}, Span{}, false},
		{"partial", Span{0, 5}, Span{3, 10}, Span{3, 5}, true},
		{"contained", Span{0, 10}, Span{3, 5}, Span{3, 5}, true},
		{"identical", Span{3, 5}, Span{3, 5}, Span{3, 5}, true},
	}

	for _, c := range cases {
		got, ok := c.a.Overlaps(c.b)
		if ok != c.ok {
			t.Errorf("%s: expected ok=%v, got %v", c.name, c.ok, ok)
			continue
		}
		if ok && got != c.want {
			t.Errorf("%s: expected %s, got %s", c.name, c.want, got)
		}
	}
}

func TestSpanMerge(t *testing.T) {
	got := Span{3, 5}.Merge(Span{10, 12})
	if got != (Span{3, 12}) {
		t.Errorf("expected (3,12), got %s", got)
	}
}

func TestSpanShiftRoundTrip(t *testing.T) {
	enclosing := Span{10, 30}
	s := Span{12, 20}

	rel := s.Relative(enclosing)
	if rel != (Span{2, 10}) {
		t.Errorf("expected (2,10), got %s", rel)
	}

	if abs := rel.Absolute(enclosing); abs != s {
		t.Errorf("expected %s, got %s", s, abs)
	}
}

func TestSpanEncloses(t *testing.T) {
	s := Span{3, 10}
	if !s.Encloses(s) {
		t.Error("expected span to enclose itself")
	}
	if !s.Encloses(Span{4, 9}) {
		t.Error("expected (3,10) to enclose (4,9)")
	}
	if s.Encloses(Span{2, 9}) {
		t.Error("expected (3,10) not to enclose (2,9)")
	}
}

func TestUnitStringDeterministic(t *testing.T) {
	u := &Unit{
		ID:   "u1",
		Span: Span{0, 5},
		Type: "Offer",
		Features: map[string]string{
			"Surface_act": "Assertion",
			"Addressee":   "All",
			"Quantity":    "1",
		},
	}

	want := "u1 [Offer] (0,5) {Addressee=All, Quantity=1, Surface_act=Assertion}"
	for i := 0; i < 10; i++ {
		if got := u.String(); got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	}
}

func testDocument(t *testing.T) *Document {
	t.Helper()

	units := []*Unit{
		{ID: "u1", Span: Span{0, 5}, Type: "Segment"},
		{ID: "u2", Span: Span{6, 11}, Type: "Segment"},
	}
	relations := []*Relation{
		{ID: "r1", Span: RelSpan{T1: "u1", T2: "u2"}, Type: "Elaboration"},
	}
	schemas := []*Schema{
		{ID: "s1", Units: []string{"u1", "u2"}, Type: "Complex_discourse_unit"},
	}

	doc, err := NewDocument(units, relations, schemas, "hello world")
	if err != nil {
		t.Fatalf("failed to assemble document: %v", err)
	}
	return doc
}

func TestNewDocumentResolves(t *testing.T) {
	doc := testDocument(t)

	r := doc.Relations[0]
	if r.Source == nil || r.Source.LocalID() != "u1" {
		t.Errorf("expected relation source u1, got %v", r.Source)
	}
	if r.Target == nil || r.Target.LocalID() != "u2" {
		t.Errorf("expected relation target u2, got %v", r.Target)
	}
	if got := r.TextSpan(); got != (Span{0, 11}) {
		t.Errorf("expected relation span (0,11), got %s", got)
	}

	s := doc.Schemas[0]
	if len(s.Members) != 2 {
		t.Fatalf("expected 2 schema members, got %d", len(s.Members))
	}
	if got := s.TextSpan(); got != (Span{0, 11}) {
		t.Errorf("expected schema span (0,11), got %s", got)
	}
}

func TestNewDocumentDanglingID(t *testing.T) {
	units := []*Unit{{ID: "u1", Span: Span{0, 5}}}
	relations := []*Relation{{ID: "r1", Span: RelSpan{T1: "u1", T2: "missing"}}}

	_, err := NewDocument(units, relations, nil, "hello")
	if err == nil {
		t.Fatal("expected error for dangling relation target")
	}
	if !strings.Contains(err.Error(), "missing") {
		t.Errorf("expected error to name the dangling id, got %q", err)
	}
}

func TestDocumentTextAt(t *testing.T) {
	doc := testDocument(t)

	if got := doc.TextAt(Span{6, 11}); got != "world" {
		t.Errorf("expected 'world', got %q", got)
	}

	// out of range spans clamp instead of panicking
	if got := doc.TextAt(Span{-3, 100}); got != "hello world" {
		t.Errorf("expected full text, got %q", got)
	}
	if got := doc.TextAt(Span{20, 30}); got != "" {
		t.Errorf("expected empty text, got %q", got)
	}
}

func TestDocumentTextAtMultibyte(t *testing.T) {
	// spans count code points, not bytes
	doc, err := NewDocument(nil, nil, nil, "héllo wörld")
	if err != nil {
		t.Fatal(err)
	}

	if got := doc.TextAt(Span{0, 5}); got != "héllo" {
		t.Errorf("expected %q, got %q", "héllo", got)
	}
	if got := doc.TextAt(Span{6, 11}); got != "wörld" {
		t.Errorf("expected %q, got %q", "wörld", got)
	}

	// the clamp counts code points too
	if got := doc.TextAt(Span{0, 100}); got != "héllo wörld" {
		t.Errorf("expected full text, got %q", got)
	}
}

func TestDocumentUnitsAt(t *testing.T) {
	doc := testDocument(t)

	hits := doc.UnitsAt(Span{4, 8})
	if len(hits) != 2 {
		t.Fatalf("expected 2 units, got %d", len(hits))
	}

	hits = doc.UnitsAt(Span{5, 6})
	if len(hits) != 0 {
		t.Fatalf("expected no units in the gap, got %d", len(hits))
	}
}

func TestDocumentAnnotation(t *testing.T) {
	doc := testDocument(t)

	if a := doc.Annotation("r1"); a == nil || a.LocalID() != "r1" {
		t.Errorf("expected to find r1, got %v", a)
	}
	if a := doc.Annotation("nope"); a != nil {
		t.Errorf("expected nil for unknown id, got %v", a)
	}
}

type testOrigin string

func (o testOrigin) GlobalID(localID string) string {
	return string(o) + "_" + localID
}

func TestDocumentGlobalID(t *testing.T) {
	doc := testDocument(t)

	if got := doc.GlobalID("u1"); got != "u1" {
		t.Errorf("expected local id without origin, got %q", got)
	}

	doc.SetOrigin(testOrigin("pilot02_01"))
	if got := doc.GlobalID("u1"); got != "pilot02_01_u1" {
		t.Errorf("expected pilot02_01_u1, got %q", got)
	}
}
