// Package corpus maps structured file identifiers to annotation
// documents. A corpus on disk is a set of annotation files, each
// named by a composite key (document, subdocument, annotation stage,
// annotator); this package enumerates those keys, narrows them with
// caller-supplied predicates and loads only the survivors, so that a
// session never pays for parsing files it does not care about.
package corpus

import (
	"sort"
	"strings"

	"github.com/revelaction/disco/annotation"
)

// FileId names one annotation file's logical role in the corpus.
// The empty string means "absent" for Subdoc and Annotator.
//
// FileId is a plain comparable struct: two ids built independently
// from the same field values are equal and index the same Corpus
// entry.
type FileId struct {
	Doc       string
	Subdoc    string
	Stage     string
	Annotator string
}

func (id FileId) String() string {
	parts := []string{id.Doc}
	if id.Subdoc != "" {
		parts = append(parts, "["+id.Subdoc+"]")
	}
	if id.Stage != "" {
		parts = append(parts, id.Stage)
	}
	if id.Annotator != "" {
		parts = append(parts, id.Annotator)
	}
	return strings.Join(parts, " ")
}

// GlobalID widens a file-local annotation id into one that should be
// unique across the corpus. Stage and annotator deliberately do not
// participate: the same annotation carries the same global id across
// stages, which is what makes cross-stage lookups possible.
func (id FileId) GlobalID(localID string) string {
	parts := make([]string, 0, 3)
	if id.Doc != "" {
		parts = append(parts, id.Doc)
	}
	if id.Subdoc != "" {
		parts = append(parts, id.Subdoc)
	}
	parts = append(parts, localID)
	return strings.Join(parts, "_")
}

var _ annotation.Origin = FileId{}

// Corpus maps each loaded FileId to its parsed document.
type Corpus map[FileId]*annotation.Document

// Keys returns the corpus keys in sorted order.
func (c Corpus) Keys() []FileId {
	ids := make([]FileId, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	Sort(ids)
	return ids
}

// Sort orders ids by (doc, subdoc, stage, annotator). Enumeration and
// loading use this order throughout, so progress output and iteration
// are reproducible across platforms.
func Sort(ids []FileId) {
	sort.Slice(ids, func(i, j int) bool {
		a, b := ids[i], ids[j]
		if a.Doc != b.Doc {
			return a.Doc < b.Doc
		}
		if a.Subdoc != b.Subdoc {
			return a.Subdoc < b.Subdoc
		}
		if a.Stage != b.Stage {
			return a.Stage < b.Stage
		}
		return a.Annotator < b.Annotator
	})
}

// Filter returns exactly the ids for which pred is true, preserving
// order. It performs no I/O; the predicate is the caller's own and
// anything it does (or panics with) propagates unchanged.
func Filter(ids []FileId, pred func(FileId) bool) []FileId {
	var kept []FileId
	for _, id := range ids {
		if pred(id) {
			kept = append(kept, id)
		}
	}
	return kept
}

// Reader enumerates and loads one corpus directory.
type Reader interface {
	// Files lists the FileIds present on disk at call time, sorted,
	// without parsing any file contents. No caching: a later call
	// observes whatever the directory holds then.
	Files() ([]FileId, error)

	// Slurp parses the given ids into documents. Loading is
	// best-effort: per-file failures are collected into a *LoadError
	// and the returned Corpus holds every document that parsed.
	// With verbose set, incremental "n/total" progress is written,
	// overwritten in place, ending with a "done" marker.
	Slurp(ids []FileId, verbose bool) (Corpus, error)
}
