package corpus

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/revelaction/disco/annotation"
)

// LoadFunc parses a single corpus member. Readers supply one to the
// Slurp helpers below.
type LoadFunc func(id FileId) (*annotation.Document, error)

// IdentifierError reports a corpus file whose name cannot be
// decomposed into the four FileId fields. Enumeration aborts on the
// first one: a malformed name in the corpus tree is corruption, not
// something to paper over.
type IdentifierError struct {
	Path string
}

func (e *IdentifierError) Error() string {
	return fmt.Sprintf("cannot derive file id from %s", e.Path)
}

// LoadError collects per-file parse failures from a best-effort
// Slurp. The corpus returned alongside it contains every document
// that did parse.
type LoadError struct {
	Failures map[FileId]error
}

func (e *LoadError) Error() string {
	ids := make([]FileId, 0, len(e.Failures))
	for id := range e.Failures {
		ids = append(ids, id)
	}
	Sort(ids)

	var b strings.Builder
	fmt.Fprintf(&b, "%d file(s) failed to load", len(ids))
	for _, id := range ids {
		fmt.Fprintf(&b, "\n\t%s: %v", id, e.Failures[id])
	}
	return b.String()
}

// Slurp drives a load over ids in sorted order and assembles the
// resulting corpus. With verbose set, progress is written to the
// progress writer (stderr if nil) as "n/total" overwritten in place,
// then "total/total done". Progress is observability only, and kept
// apart from errors: failures are returned, never printed.
func Slurp(ids []FileId, load LoadFunc, verbose bool, progress io.Writer) (Corpus, error) {
	if progress == nil {
		progress = os.Stderr
	}

	sorted := make([]FileId, len(ids))
	copy(sorted, ids)
	Sort(sorted)

	c := make(Corpus, len(sorted))
	failures := make(map[FileId]error)

	total := len(sorted)
	for n, id := range sorted {
		if verbose {
			fmt.Fprintf(progress, "\r%d/%d", n, total)
		}

		doc, err := load(id)
		if err != nil {
			failures[id] = err
			continue
		}
		doc.SetOrigin(id)
		c[id] = doc
	}

	if verbose {
		fmt.Fprintf(progress, "\r%d/%d done\n", total, total)
	}

	if len(failures) > 0 {
		return c, &LoadError{Failures: failures}
	}
	return c, nil
}

// SlurpEach is Slurp with a per-file callback instead of textual
// progress, for callers that drive their own progress display. The
// completed count passed to cb is monotonically non-decreasing.
func SlurpEach(ids []FileId, load LoadFunc, cb func(current, total int, id FileId)) (Corpus, error) {
	sorted := make([]FileId, len(ids))
	copy(sorted, ids)
	Sort(sorted)

	c := make(Corpus, len(sorted))
	failures := make(map[FileId]error)

	total := len(sorted)
	for n, id := range sorted {
		if cb != nil {
			cb(n, total, id)
		}

		doc, err := load(id)
		if err != nil {
			failures[id] = err
			continue
		}
		doc.SetOrigin(id)
		c[id] = doc
	}

	if len(failures) > 0 {
		return c, &LoadError{Failures: failures}
	}
	return c, nil
}
