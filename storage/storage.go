// Package storage defines persistence interfaces for corpora, with a
// SQLite implementation under storage/sqlite.
package storage

import (
	"github.com/revelaction/disco/annotation"
	"github.com/revelaction/disco/corpus"
)

// CorpusReader defines read operations for corpus storage.
type CorpusReader interface {
	// List returns the FileIds present in storage, sorted.
	// Document content is not loaded.
	List() ([]corpus.FileId, error)

	// Read returns one document by its FileId.
	Read(id corpus.FileId) (*annotation.Document, error)
}

// CorpusWriter defines write operations for corpus storage.
type CorpusWriter interface {
	// Write persists a document and its annotations under the
	// given FileId, replacing any previous entry for that id.
	Write(id corpus.FileId, doc *annotation.Document) error
}

// CorpusRepository combines read and write operations.
type CorpusRepository interface {
	CorpusReader
	CorpusWriter
}
