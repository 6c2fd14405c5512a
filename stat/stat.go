// Package stat aggregates annotation counts over documents.
package stat

import (
	"github.com/revelaction/disco/annotation"
)

type Handler struct {
	stats Stats
}

type Stats struct {
	Documents int
	Units     int
	Relations int
	Schemas   int

	UnitTypes     map[string]int
	RelationTypes map[string]int
	SchemaTypes   map[string]int
}

func (h *Handler) Get() Stats {
	return h.stats
}

func NewHandler() *Handler {
	stats := Stats{
		UnitTypes:     map[string]int{},
		RelationTypes: map[string]int{},
		SchemaTypes:   map[string]int{},
	}
	return &Handler{
		stats: stats,
	}
}

// Aggregate folds one document into the running totals.
func (h *Handler) Aggregate(doc *annotation.Document) {
	h.stats.Documents++

	h.stats.Units += len(doc.Units)
	for _, u := range doc.Units {
		h.stats.UnitTypes[u.Type]++
	}

	h.stats.Relations += len(doc.Relations)
	for _, r := range doc.Relations {
		h.stats.RelationTypes[r.Type]++
	}

	h.stats.Schemas += len(doc.Schemas)
	for _, s := range doc.Schemas {
		h.stats.SchemaTypes[s.Type]++
	}
}
