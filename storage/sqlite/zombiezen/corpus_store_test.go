package zombiezen

import (
	"path/filepath"
	"reflect"
	"testing"

	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/revelaction/disco/annotation"
	"github.com/revelaction/disco/corpus"
)

func testPool(t *testing.T) *sqlitex.Pool {
	t.Helper()

	pool, err := NewPool(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	if err := CreateCorpusTables(pool); err != nil {
		t.Fatalf("failed to create tables: %v", err)
	}
	return pool
}

func testDoc(t *testing.T) *annotation.Document {
	t.Helper()

	units := []*annotation.Unit{
		{ID: "u1", Span: annotation.Span{Start: 0, End: 5}, Type: "Offer",
			Features: map[string]string{"Surface_act": "Assertion"},
			Metadata: map[string]string{"author": "hjoseph"}},
		{ID: "u2", Span: annotation.Span{Start: 6, End: 11}, Type: "Accept"},
	}
	relations := []*annotation.Relation{
		{ID: "r1", Span: annotation.RelSpan{T1: "u1", T2: "u2"}, Type: "Question-answer_pair"},
	}
	schemas := []*annotation.Schema{
		{ID: "s1", Units: []string{"u1", "u2"}, Type: "Complex_discourse_unit"},
	}

	doc, err := annotation.NewDocument(units, relations, schemas, "hello world")
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestCorpusStoreRoundTrip(t *testing.T) {
	store := NewCorpusStore(testPool(t))

	id := corpus.FileId{Doc: "pilot02", Subdoc: "01", Stage: "discourse", Annotator: "GOLD"}
	if err := store.Write(id, testDoc(t)); err != nil {
		t.Fatalf("failed to write: %v", err)
	}

	ids, err := store.List()
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(ids) != 1 || ids[0] != id {
		t.Fatalf("unexpected ids %v", ids)
	}

	got, err := store.Read(id)
	if err != nil {
		t.Fatalf("failed to read: %v", err)
	}

	if got.Text() != "hello world" {
		t.Errorf("unexpected text %q", got.Text())
	}
	if len(got.Units) != 2 || len(got.Relations) != 1 || len(got.Schemas) != 1 {
		t.Fatalf("unexpected annotation counts: %d/%d/%d",
			len(got.Units), len(got.Relations), len(got.Schemas))
	}

	u := got.Units[0]
	if u.ID != "u1" || u.Type != "Offer" {
		t.Errorf("unexpected unit %v", u)
	}
	if !reflect.DeepEqual(u.Features, map[string]string{"Surface_act": "Assertion"}) {
		t.Errorf("unexpected features %v", u.Features)
	}
	if !reflect.DeepEqual(u.Metadata, map[string]string{"author": "hjoseph"}) {
		t.Errorf("unexpected metadata %v", u.Metadata)
	}

	r := got.Relations[0]
	if r.Span != (annotation.RelSpan{T1: "u1", T2: "u2"}) {
		t.Errorf("unexpected relation span %s", r.Span)
	}
	if r.Source == nil || r.Source.LocalID() != "u1" {
		t.Errorf("expected resolved source, got %v", r.Source)
	}

	s := got.Schemas[0]
	if !reflect.DeepEqual(s.Units, []string{"u1", "u2"}) {
		t.Errorf("unexpected schema units %v", s.Units)
	}

	// the origin is restored, so global ids work
	if gid := got.GlobalID("u1"); gid != "pilot02_01_u1" {
		t.Errorf("unexpected global id %q", gid)
	}
}

func TestCorpusStoreReplace(t *testing.T) {
	store := NewCorpusStore(testPool(t))

	id := corpus.FileId{Doc: "pilot02", Subdoc: "01", Stage: "units", Annotator: "GOLD"}
	if err := store.Write(id, testDoc(t)); err != nil {
		t.Fatal(err)
	}

	// a second write for the same id replaces, not duplicates
	smaller, err := annotation.NewDocument(
		[]*annotation.Unit{{ID: "u9", Span: annotation.Span{Start: 0, End: 2}, Type: "Refusal"}},
		nil, nil, "no")
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Write(id, smaller); err != nil {
		t.Fatal(err)
	}

	ids, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 {
		t.Fatalf("expected 1 id, got %d", len(ids))
	}

	got, err := store.Read(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Units) != 1 || got.Units[0].ID != "u9" {
		t.Errorf("expected the replacement document, got %v", got.Units)
	}
	if got.Text() != "no" {
		t.Errorf("unexpected text %q", got.Text())
	}
}

func TestCorpusStoreReadMissing(t *testing.T) {
	store := NewCorpusStore(testPool(t))

	id := corpus.FileId{Doc: "nope", Stage: "units"}
	if _, err := store.Read(id); err == nil {
		t.Fatal("expected error for a missing document")
	}
}
