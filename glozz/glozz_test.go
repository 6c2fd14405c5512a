package glozz

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/revelaction/disco/annotation"
)

const testAA = `<?xml version="1.0" encoding="UTF-8"?>
<annotations>
  <unit id="stac_1">
    <metadata>
      <author>hjoseph</author>
      <creation-date>1368569461</creation-date>
    </metadata>
    <characterisation>
      <type>Segment</type>
      <featureSet>
        <feature name="Surface_act">Assertion</feature>
      </featureSet>
    </characterisation>
    <positioning>
      <start><singlePosition index="0"/></start>
      <end><singlePosition index="12"/></end>
    </positioning>
  </unit>
  <unit id="stac_2">
    <metadata/>
    <characterisation>
      <type>Segment</type>
      <featureSet/>
    </characterisation>
    <positioning>
      <start><singlePosition index="13"/></start>
      <end><singlePosition index="24"/></end>
    </positioning>
  </unit>
  <relation id="stac_3">
    <metadata/>
    <characterisation>
      <type>Elaboration</type>
      <featureSet/>
    </characterisation>
    <positioning>
      <term id="stac_1"/>
      <term id="stac_2"/>
    </positioning>
  </relation>
  <schema id="stac_4">
    <metadata/>
    <characterisation>
      <type>Complex_discourse_unit</type>
      <featureSet/>
    </characterisation>
    <positioning>
      <embedded-unit id="stac_1"/>
      <embedded-unit id="stac_2"/>
    </positioning>
  </schema>
</annotations>
`

const testText = "need sheep? got wood, yo"

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(testAA), testText)
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}

	if len(doc.Units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(doc.Units))
	}
	u := doc.Units[0]
	if u.ID != "stac_1" {
		t.Errorf("expected id stac_1, got %q", u.ID)
	}
	if u.Type != "Segment" {
		t.Errorf("expected type Segment, got %q", u.Type)
	}
	if u.Span != (annotation.Span{Start: 0, End: 12}) {
		t.Errorf("unexpected span %s", u.Span)
	}
	if u.Features["Surface_act"] != "Assertion" {
		t.Errorf("unexpected features %v", u.Features)
	}
	if u.Metadata["author"] != "hjoseph" {
		t.Errorf("unexpected metadata %v", u.Metadata)
	}

	if len(doc.Relations) != 1 {
		t.Fatalf("expected 1 relation, got %d", len(doc.Relations))
	}
	r := doc.Relations[0]
	if r.Type != "Elaboration" {
		t.Errorf("expected type Elaboration, got %q", r.Type)
	}
	if r.Span.T1 != "stac_1" || r.Span.T2 != "stac_2" {
		t.Errorf("unexpected relation span %s", r.Span)
	}
	if r.Source == nil || r.Source.LocalID() != "stac_1" {
		t.Errorf("expected resolved source stac_1, got %v", r.Source)
	}

	if len(doc.Schemas) != 1 {
		t.Fatalf("expected 1 schema, got %d", len(doc.Schemas))
	}
	s := doc.Schemas[0]
	if !reflect.DeepEqual(s.Units, []string{"stac_1", "stac_2"}) {
		t.Errorf("unexpected schema units %v", s.Units)
	}
	if len(s.Members) != 2 {
		t.Errorf("expected 2 resolved members, got %d", len(s.Members))
	}

	if got := doc.TextAt(u.Span); got != "need sheep? " {
		t.Errorf("unexpected text %q", got)
	}
}

func TestParseRelationTermCount(t *testing.T) {
	aa := `<?xml version="1.0"?>
<annotations>
  <relation id="r1">
    <characterisation><type>Comment</type><featureSet/></characterisation>
    <positioning>
      <term id="u1"/>
    </positioning>
  </relation>
</annotations>`

	_, err := Parse([]byte(aa), "")
	if err == nil {
		t.Fatal("expected error for relation with one term")
	}
	if !strings.Contains(err.Error(), "want 2 terms") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestParseMissingType(t *testing.T) {
	aa := `<?xml version="1.0"?>
<annotations>
  <unit id="u1">
    <positioning>
      <start><singlePosition index="0"/></start>
      <end><singlePosition index="1"/></end>
    </positioning>
  </unit>
</annotations>`

	_, err := Parse([]byte(aa), "x")
	if err == nil {
		t.Fatal("expected error for unit without characterisation")
	}
}

func TestWriteRoundTrip(t *testing.T) {
	doc, err := Parse([]byte(testAA), testText)
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, doc); err != nil {
		t.Fatalf("failed to write: %v", err)
	}

	again, err := Parse(buf.Bytes(), testText)
	if err != nil {
		t.Fatalf("failed to re-parse: %v", err)
	}

	if len(again.Units) != len(doc.Units) ||
		len(again.Relations) != len(doc.Relations) ||
		len(again.Schemas) != len(doc.Schemas) {
		t.Fatal("annotation counts changed across the round-trip")
	}

	if !reflect.DeepEqual(again.Units[0].Features, doc.Units[0].Features) {
		t.Errorf("features changed: %v vs %v", again.Units[0].Features, doc.Units[0].Features)
	}
	if !reflect.DeepEqual(again.Units[0].Metadata, doc.Units[0].Metadata) {
		t.Errorf("metadata changed: %v vs %v", again.Units[0].Metadata, doc.Units[0].Metadata)
	}
	if again.Relations[0].Span != doc.Relations[0].Span {
		t.Errorf("relation span changed: %s vs %s", again.Relations[0].Span, doc.Relations[0].Span)
	}
}

func TestWriteEscapesAttributes(t *testing.T) {
	// ids and feature names land in attribute values and need XML
	// escaping, not Go quoting
	id := `stac_"1<&`
	units := []*annotation.Unit{
		{ID: id, Span: annotation.Span{Start: 0, End: 3}, Type: "Segment",
			Features: map[string]string{`we"ird<name`: "v"}},
	}
	relations := []*annotation.Relation{
		{ID: "r1", Span: annotation.RelSpan{T1: id, T2: id}, Type: "Comment"},
	}
	doc, err := annotation.NewDocument(units, relations, nil, "abc")
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, doc); err != nil {
		t.Fatalf("failed to write: %v", err)
	}

	again, err := Parse(buf.Bytes(), "abc")
	if err != nil {
		t.Fatalf("failed to re-parse: %v", err)
	}
	if got := again.Units[0].ID; got != id {
		t.Errorf("expected id %q to survive, got %q", id, got)
	}
	if _, ok := again.Units[0].Features[`we"ird<name`]; !ok {
		t.Errorf("expected feature name to survive, got %v", again.Units[0].Features)
	}
	if got := again.Relations[0].Span.T1; got != id {
		t.Errorf("expected term id %q to survive, got %q", id, got)
	}
}

func TestWriteEscapes(t *testing.T) {
	units := []*annotation.Unit{
		{ID: "u1", Span: annotation.Span{Start: 0, End: 3}, Type: "Segment",
			Features: map[string]string{"Comment": "a < b & c"}},
	}
	doc, err := annotation.NewDocument(units, nil, nil, "a<b")
	if err != nil {
		t.Fatalf("failed to assemble document: %v", err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, doc); err != nil {
		t.Fatalf("failed to write: %v", err)
	}

	again, err := Parse(buf.Bytes(), "a<b")
	if err != nil {
		t.Fatalf("failed to re-parse: %v", err)
	}
	if got := again.Units[0].Features["Comment"]; got != "a < b & c" {
		t.Errorf("expected escaped feature to survive, got %q", got)
	}
}
