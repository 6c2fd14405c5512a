package zombiezen

import (
	"context"
	"encoding/json"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/revelaction/disco/annotation"
	"github.com/revelaction/disco/corpus"
	"github.com/revelaction/disco/storage"
)

// CorpusStore persists documents and their annotations in SQLite.
// Features and metadata maps are stored as JSON strings; schema
// member id sets as one JSON object keyed by kind.
type CorpusStore struct {
	pool *sqlitex.Pool
}

var _ storage.CorpusRepository = (*CorpusStore)(nil)

func NewCorpusStore(pool *sqlitex.Pool) *CorpusStore {
	return &CorpusStore{pool: pool}
}

// schemaMembers is the JSON shape of the schemas.members column.
type schemaMembers struct {
	Units     []string `json:"units,omitempty"`
	Relations []string `json:"relations,omitempty"`
	Schemas   []string `json:"schemas,omitempty"`
}

func (h *CorpusStore) List() ([]corpus.FileId, error) {
	conn, err := h.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer h.pool.Put(conn)

	var ids []corpus.FileId
	err = sqlitex.Execute(conn, "SELECT doc, subdoc, stage, annotator FROM documents", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			ids = append(ids, corpus.FileId{
				Doc:       stmt.ColumnText(0),
				Subdoc:    stmt.ColumnText(1),
				Stage:     stmt.ColumnText(2),
				Annotator: stmt.ColumnText(3),
			})
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	corpus.Sort(ids)
	return ids, nil
}

func (h *CorpusStore) Read(id corpus.FileId) (*annotation.Document, error) {
	conn, err := h.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer h.pool.Put(conn)

	rowID, text, err := h.document(conn, id)
	if err != nil {
		return nil, err
	}

	var units []*annotation.Unit
	err = sqlitex.Execute(conn, "SELECT local_id, type, span_start, span_end, features, metadata FROM units WHERE document_id = ? ORDER BY rowid", &sqlitex.ExecOptions{
		Args: []interface{}{rowID},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			u := &annotation.Unit{
				ID:   stmt.ColumnText(0),
				Type: stmt.ColumnText(1),
				Span: annotation.Span{
					Start: stmt.ColumnInt(2),
					End:   stmt.ColumnInt(3),
				},
			}
			if err := unmarshalMap(stmt.ColumnText(4), &u.Features); err != nil {
				return err
			}
			if err := unmarshalMap(stmt.ColumnText(5), &u.Metadata); err != nil {
				return err
			}
			units = append(units, u)
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	var relations []*annotation.Relation
	err = sqlitex.Execute(conn, "SELECT local_id, type, source, target, features, metadata FROM relations WHERE document_id = ? ORDER BY rowid", &sqlitex.ExecOptions{
		Args: []interface{}{rowID},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			r := &annotation.Relation{
				ID:   stmt.ColumnText(0),
				Type: stmt.ColumnText(1),
				Span: annotation.RelSpan{
					T1: stmt.ColumnText(2),
					T2: stmt.ColumnText(3),
				},
			}
			if err := unmarshalMap(stmt.ColumnText(4), &r.Features); err != nil {
				return err
			}
			if err := unmarshalMap(stmt.ColumnText(5), &r.Metadata); err != nil {
				return err
			}
			relations = append(relations, r)
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	var schemas []*annotation.Schema
	err = sqlitex.Execute(conn, "SELECT local_id, type, members, features, metadata FROM schemas WHERE document_id = ? ORDER BY rowid", &sqlitex.ExecOptions{
		Args: []interface{}{rowID},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			s := &annotation.Schema{
				ID:   stmt.ColumnText(0),
				Type: stmt.ColumnText(1),
			}
			var members schemaMembers
			if err := json.Unmarshal([]byte(stmt.ColumnText(2)), &members); err != nil {
				return err
			}
			s.Units = members.Units
			s.Relations = members.Relations
			s.Schemas = members.Schemas
			if err := unmarshalMap(stmt.ColumnText(3), &s.Features); err != nil {
				return err
			}
			if err := unmarshalMap(stmt.ColumnText(4), &s.Metadata); err != nil {
				return err
			}
			schemas = append(schemas, s)
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	doc, err := annotation.NewDocument(units, relations, schemas, text)
	if err != nil {
		return nil, fmt.Errorf("stored document %s is inconsistent: %w", id, err)
	}
	doc.SetOrigin(id)
	return doc, nil
}

func (h *CorpusStore) Write(id corpus.FileId, doc *annotation.Document) (err error) {
	conn, err := h.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer h.pool.Put(conn)

	// Start Transaction
	defer sqlitex.Save(conn)(&err)

	// Replace any previous entry for this id.
	err = sqlitex.Execute(conn, "DELETE FROM documents WHERE doc = ? AND subdoc = ? AND stage = ? AND annotator = ?", &sqlitex.ExecOptions{
		Args: []interface{}{id.Doc, id.Subdoc, id.Stage, id.Annotator},
	})
	if err != nil {
		return err
	}

	err = sqlitex.Execute(conn, "INSERT INTO documents (doc, subdoc, stage, annotator, text) VALUES (?, ?, ?, ?, ?)", &sqlitex.ExecOptions{
		Args: []interface{}{id.Doc, id.Subdoc, id.Stage, id.Annotator, doc.Text()},
	})
	if err != nil {
		return fmt.Errorf("failed to insert document %s: %w", id, err)
	}
	docRowID := conn.LastInsertRowID()

	for _, u := range doc.Units {
		feats, metadata, marshalErr := marshalMaps(u.Features, u.Metadata)
		if marshalErr != nil {
			return marshalErr
		}
		err = sqlitex.Execute(conn, "INSERT INTO units (document_id, local_id, type, span_start, span_end, features, metadata) VALUES (?, ?, ?, ?, ?, ?, ?)", &sqlitex.ExecOptions{
			Args: []interface{}{docRowID, u.ID, u.Type, u.Span.Start, u.Span.End, feats, metadata},
		})
		if err != nil {
			return fmt.Errorf("failed to insert unit %s: %w", u.ID, err)
		}
	}

	for _, r := range doc.Relations {
		feats, metadata, marshalErr := marshalMaps(r.Features, r.Metadata)
		if marshalErr != nil {
			return marshalErr
		}
		err = sqlitex.Execute(conn, "INSERT INTO relations (document_id, local_id, type, source, target, features, metadata) VALUES (?, ?, ?, ?, ?, ?, ?)", &sqlitex.ExecOptions{
			Args: []interface{}{docRowID, r.ID, r.Type, r.Span.T1, r.Span.T2, feats, metadata},
		})
		if err != nil {
			return fmt.Errorf("failed to insert relation %s: %w", r.ID, err)
		}
	}

	for _, s := range doc.Schemas {
		feats, metadata, marshalErr := marshalMaps(s.Features, s.Metadata)
		if marshalErr != nil {
			return marshalErr
		}
		members, marshalErr := json.Marshal(schemaMembers{
			Units:     s.Units,
			Relations: s.Relations,
			Schemas:   s.Schemas,
		})
		if marshalErr != nil {
			return marshalErr
		}
		err = sqlitex.Execute(conn, "INSERT INTO schemas (document_id, local_id, type, members, features, metadata) VALUES (?, ?, ?, ?, ?, ?)", &sqlitex.ExecOptions{
			Args: []interface{}{docRowID, s.ID, s.Type, string(members), feats, metadata},
		})
		if err != nil {
			return fmt.Errorf("failed to insert schema %s: %w", s.ID, err)
		}
	}

	return nil
}

// document resolves a FileId to its row id and text.
func (h *CorpusStore) document(conn *sqlite.Conn, id corpus.FileId) (int64, string, error) {
	var rowID int64
	var text string
	found := false

	err := sqlitex.Execute(conn, "SELECT id, text FROM documents WHERE doc = ? AND subdoc = ? AND stage = ? AND annotator = ?", &sqlitex.ExecOptions{
		Args: []interface{}{id.Doc, id.Subdoc, id.Stage, id.Annotator},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			found = true
			rowID = stmt.ColumnInt64(0)
			text = stmt.ColumnText(1)
			return nil
		},
	})
	if err != nil {
		return 0, "", err
	}
	if !found {
		return 0, "", fmt.Errorf("document not found: %s", id)
	}
	return rowID, text, nil
}

func marshalMaps(features, metadata map[string]string) (string, string, error) {
	f, err := json.Marshal(orEmpty(features))
	if err != nil {
		return "", "", err
	}
	m, err := json.Marshal(orEmpty(metadata))
	if err != nil {
		return "", "", err
	}
	return string(f), string(m), nil
}

func orEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func unmarshalMap(data string, dst *map[string]string) error {
	var m map[string]string
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return err
	}
	if len(m) > 0 {
		*dst = m
	}
	return nil
}
