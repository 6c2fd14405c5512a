package stac

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/revelaction/disco/annotation"
	"github.com/revelaction/disco/corpus"
	"github.com/revelaction/disco/glozz"
)

// annoExt is the Glozz annotation file extension; textExt is its
// paired raw-text file.
const (
	annoExt = ".aa"
	textExt = ".ac"

	// stageUnannotated holds the raw text all other stages of a
	// (sub)document stand off against.
	stageUnannotated = "unannotated"
)

// Reader enumerates and loads a STAC corpus directory. The layout is
//
//	<root>/<doc>/<stage>/<annotator>/<doc>_<subdoc>.aa
//
// where the annotator level is absent for the unannotated stage, and
// each .aa file pairs with a .ac text file next to it or, failing
// that, in the unannotated stage.
type Reader struct {
	root string

	// Progress receives Slurp's verbose output. Defaults to stderr,
	// kept separate from error reporting.
	Progress io.Writer
}

var _ corpus.Reader = (*Reader)(nil)

// NewReader opens a corpus directory. A missing or unreadable root is
// an immediate error, not something discovered at first load.
func NewReader(root string) (*Reader, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("corpus root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("corpus root %s is not a directory", root)
	}
	return &Reader{root: root}, nil
}

// Files walks the corpus directory and derives a FileId for every
// annotation file present, without parsing any contents. Results are
// sorted and duplicate-free. Files without the .aa extension are
// ignored (text pairs, stray editor droppings); an .aa file whose
// name does not decompose into the FileId fields aborts with a
// *corpus.IdentifierError.
func (r *Reader) Files() ([]corpus.FileId, error) {
	docs, err := os.ReadDir(r.root)
	if err != nil {
		return nil, fmt.Errorf("corpus root: %w", err)
	}

	var ids []corpus.FileId
	for _, doc := range docs {
		if !doc.IsDir() {
			continue
		}

		stages, err := os.ReadDir(filepath.Join(r.root, doc.Name()))
		if err != nil {
			return nil, err
		}

		for _, stage := range stages {
			if !stage.IsDir() {
				continue
			}

			stageDir := filepath.Join(r.root, doc.Name(), stage.Name())
			entries, err := os.ReadDir(stageDir)
			if err != nil {
				return nil, err
			}

			for _, entry := range entries {
				if entry.IsDir() {
					// annotator level
					annotator := entry.Name()
					files, err := os.ReadDir(filepath.Join(stageDir, annotator))
					if err != nil {
						return nil, err
					}
					for _, f := range files {
						id, ok, err := r.fileID(doc.Name(), stage.Name(), annotator, f.Name())
						if err != nil {
							return nil, err
						}
						if ok {
							ids = append(ids, id)
						}
					}
					continue
				}

				id, ok, err := r.fileID(doc.Name(), stage.Name(), "", entry.Name())
				if err != nil {
					return nil, err
				}
				if ok {
					ids = append(ids, id)
				}
			}
		}
	}

	corpus.Sort(ids)
	return ids, nil
}

// fileID decomposes one annotation filename. Non-.aa files report
// ok=false; a malformed .aa name is an IdentifierError.
func (r *Reader) fileID(doc, stage, annotator, name string) (corpus.FileId, bool, error) {
	if filepath.Ext(name) != annoExt {
		return corpus.FileId{}, false, nil
	}

	base := strings.TrimSuffix(name, annoExt)
	id := corpus.FileId{Doc: doc, Stage: stage, Annotator: annotator}

	switch {
	case base == doc:
		// whole-document annotation, no subdocument
	case strings.HasPrefix(base, doc+"_") && len(base) > len(doc)+1:
		id.Subdoc = base[len(doc)+1:]
	default:
		path := filepath.Join(r.root, doc, stage, annotator, name)
		return corpus.FileId{}, false, &corpus.IdentifierError{Path: path}
	}

	return id, true, nil
}

// Slurp loads the given ids, best-effort, reporting progress when
// verbose. See corpus.Slurp for the exact contract.
func (r *Reader) Slurp(ids []corpus.FileId, verbose bool) (corpus.Corpus, error) {
	return corpus.Slurp(ids, r.load, verbose, r.Progress)
}

// SlurpEach loads the given ids with a per-file callback, for callers
// driving their own progress display.
func (r *Reader) SlurpEach(ids []corpus.FileId, cb func(current, total int, id corpus.FileId)) (corpus.Corpus, error) {
	return corpus.SlurpEach(ids, r.load, cb)
}

func (r *Reader) load(id corpus.FileId) (*annotation.Document, error) {
	aa := r.annoPath(id)

	// The text pair sits next to the annotations, or in the
	// unannotated stage when annotation stages share one text.
	ac := strings.TrimSuffix(aa, annoExt) + textExt
	if _, err := os.Stat(ac); err != nil {
		unannotated := id
		unannotated.Stage = stageUnannotated
		unannotated.Annotator = ""
		ac = strings.TrimSuffix(r.annoPath(unannotated), annoExt) + textExt
	}

	return glozz.ReadDocument(aa, ac)
}

// annoPath maps a FileId back to its .aa path under the corpus root.
func (r *Reader) annoPath(id corpus.FileId) string {
	return AnnotationPath(r.root, id)
}

// AnnotationPath maps a FileId to its .aa path under a corpus root.
func AnnotationPath(root string, id corpus.FileId) string {
	base := id.Doc
	if id.Subdoc != "" {
		base += "_" + id.Subdoc
	}

	parts := []string{root, id.Doc, id.Stage}
	if id.Annotator != "" {
		parts = append(parts, id.Annotator)
	}
	parts = append(parts, base+annoExt)
	return filepath.Join(parts...)
}

// TextPath maps a FileId to its .ac path under a corpus root.
func TextPath(root string, id corpus.FileId) string {
	return strings.TrimSuffix(AnnotationPath(root, id), annoExt) + textExt
}
