// Package query is the interactive corpus exploration prompt.
package query

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	prompt "github.com/c-bata/go-prompt"

	"github.com/revelaction/disco/annotation"
	"github.com/revelaction/disco/corpus"
	"github.com/revelaction/disco/render"
)

const completionThreshold = 1

type Handler struct {
	Corpus   corpus.Corpus
	Renderer *render.Renderer

	docNames []string
	types    []string
}

func NewHandler(c corpus.Corpus, r *render.Renderer) *Handler {
	h := &Handler{
		Corpus:   c,
		Renderer: r,
	}

	seenDocs := map[string]bool{}
	seenTypes := map[string]bool{}
	for id, doc := range c {
		if !seenDocs[id.Doc] {
			seenDocs[id.Doc] = true
			h.docNames = append(h.docNames, id.Doc)
		}
		for _, u := range doc.Units {
			if !seenTypes[u.Type] {
				seenTypes[u.Type] = true
				h.types = append(h.types, u.Type)
			}
		}
		for _, rel := range doc.Relations {
			if !seenTypes[rel.Type] {
				seenTypes[rel.Type] = true
				h.types = append(h.types, rel.Type)
			}
		}
	}
	sort.Strings(h.docNames)
	sort.Strings(h.types)

	return h
}

func (h *Handler) Run() error {

	fmt.Println("🔑 docs | text <doc> [subdoc] | units <doc> <start> <end> | type <label> | quit, Ctrl+X: toggle markers")

	// initialize prompt history
	history := []string{}

	for {

		in := prompt.Input("      🔖 ", h.completer,
			prompt.OptionTitle("disco query"),
			prompt.OptionPrefixTextColor(prompt.Yellow),
			prompt.OptionPreviewSuggestionTextColor(prompt.Blue),
			prompt.OptionSelectedSuggestionBGColor(prompt.LightGray),
			prompt.OptionMaxSuggestion(12),
			prompt.OptionSuggestionBGColor(prompt.DarkGray),
			prompt.OptionHistory(history),
			prompt.OptionAddKeyBind(prompt.KeyBind{
				Key: prompt.ControlX,
				Fn: func(buf *prompt.Buffer) {
					h.Renderer.HasMarkers = !h.Renderer.HasMarkers
					fmt.Printf("Markers set to %t\n", h.Renderer.HasMarkers)
				}}),
		)

		if in == "quit" {
			return nil
		}

		if strings.TrimSpace(in) == "" {
			continue
		}

		history = append(history, in)

		if err := h.eval(in); err != nil {
			fmt.Printf("✍  %s\n", err)
		}
	}
}

func (h *Handler) eval(in string) error {
	fields := strings.Fields(in)

	switch fields[0] {
	case "docs":
		for _, id := range h.Corpus.Keys() {
			fmt.Printf("📖 %s\n", id)
		}
		return nil

	case "text":
		if len(fields) < 2 {
			return fmt.Errorf("usage: text <doc> [subdoc]")
		}
		subdoc := ""
		if len(fields) > 2 {
			subdoc = fields[2]
		}
		ids := h.matching(fields[1], subdoc)
		if len(ids) == 0 {
			return fmt.Errorf("no loaded document matches %s", fields[1])
		}
		for _, id := range ids {
			h.Renderer.Document(id, h.Corpus[id])
		}
		return nil

	case "units":
		if len(fields) != 4 {
			return fmt.Errorf("usage: units <doc> <start> <end>")
		}
		start, err := strconv.Atoi(fields[2])
		if err != nil {
			return fmt.Errorf("invalid start: %v", err)
		}
		end, err := strconv.Atoi(fields[3])
		if err != nil {
			return fmt.Errorf("invalid end: %v", err)
		}
		span := annotation.Span{Start: start, End: end}

		ids := h.matching(fields[1], "")
		if len(ids) == 0 {
			return fmt.Errorf("no loaded document matches %s", fields[1])
		}
		for _, id := range ids {
			doc := h.Corpus[id]
			for _, u := range doc.UnitsAt(span) {
				h.Renderer.Unit(doc, u)
			}
		}
		return nil

	case "type":
		if len(fields) != 2 {
			return fmt.Errorf("usage: type <label>")
		}
		return h.byType(fields[1])
	}

	return fmt.Errorf("unknown command: %s", fields[0])
}

// byType prints every unit and relation of the given type across the
// loaded corpus.
func (h *Handler) byType(typ string) error {
	found := false
	for _, id := range h.Corpus.Keys() {
		doc := h.Corpus[id]
		for _, u := range doc.Units {
			if u.Type == typ {
				found = true
				h.Renderer.Unit(doc, u)
			}
		}
		for _, rel := range doc.Relations {
			if rel.Type == typ {
				found = true
				h.Renderer.Relation(doc, rel)
			}
		}
	}
	if !found {
		return fmt.Errorf("no annotation of type %s", typ)
	}
	return nil
}

// matching returns the loaded ids for a doc name, narrowed by subdoc
// when given.
func (h *Handler) matching(doc, subdoc string) []corpus.FileId {
	var ids []corpus.FileId
	for _, id := range h.Corpus.Keys() {
		if id.Doc != doc {
			continue
		}
		if subdoc != "" && id.Subdoc != subdoc {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func (h *Handler) completer(d prompt.Document) []prompt.Suggest {
	text := d.TextBeforeCursor()
	fields := strings.Fields(text)

	// First word: the command itself.
	if len(fields) == 0 || (len(fields) == 1 && !strings.HasSuffix(text, " ")) {
		s := []prompt.Suggest{
			{Text: "docs", Description: "List loaded documents"},
			{Text: "text", Description: "Show document text"},
			{Text: "units", Description: "List units overlapping a span"},
			{Text: "type", Description: "List annotations of a type"},
			{Text: "quit", Description: "Leave the prompt"},
		}
		return prompt.FilterHasPrefix(s, d.GetWordBeforeCursor(), true)
	}

	word := d.GetWordBeforeCursor()
	if len(word) < completionThreshold {
		return nil
	}

	switch fields[0] {
	case "text", "units":
		var s []prompt.Suggest
		for _, name := range h.docNames {
			s = append(s, prompt.Suggest{Text: name})
		}
		return prompt.FilterHasPrefix(s, word, true)
	case "type":
		var s []prompt.Suggest
		for _, t := range h.types {
			s = append(s, prompt.Suggest{Text: t})
		}
		return prompt.FilterHasPrefix(s, word, true)
	}

	return nil
}
