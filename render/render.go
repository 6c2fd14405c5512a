// Package render prints documents and annotations for the terminal.
package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/revelaction/disco/annotation"
	"github.com/revelaction/disco/corpus"
	"github.com/revelaction/disco/stac"
)

var (
	Yellow = "\033[0;33m"
	Teal   = "\033[1;36m"
	Gray   = "\033[0;37m"
	Off    = "\033[0m"

	Yellow256 = "\033[1;38;5;130m"
	Grey256   = "\033[1;38;5;145m"
	Green256  = "\033[1;38;5;70m"
)

type Renderer struct {
	HasColor bool

	// HasMarkers brackets EDU spans inside the raw text dump.
	HasMarkers bool

	Out io.Writer
}

func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{Out: out, HasMarkers: true}
}

// Document prints a header line for the id followed by the document
// text, with EDU spans bracketed when markers are on.
func (r *Renderer) Document(id corpus.FileId, doc *annotation.Document) {
	header := id.String()
	if r.HasColor {
		header = Teal + header + Off
	}
	fmt.Fprintf(r.Out, "========== %s ==========\n", header)

	text := doc.Text()
	if r.HasMarkers {
		text = r.markedText(doc)
	}
	fmt.Fprintln(r.Out, text)
}

// Unit prints one annotation line: local id, type, span and the
// covered text with newlines flattened.
func (r *Renderer) Unit(doc *annotation.Document, u *annotation.Unit) {
	typ := u.Type
	if r.HasColor {
		typ = Yellow256 + typ + Off
	}
	text := strings.ReplaceAll(doc.TextAt(u.Span), "\n", " ")
	fmt.Fprintf(r.Out, "%s [%s] %s %s\n", u.LocalID(), typ, u.Span, text)
}

// Relation prints one relation line: label plus the text of both
// endpoints.
func (r *Renderer) Relation(doc *annotation.Document, rel *annotation.Relation) {
	typ := rel.Type
	if r.HasColor {
		typ = Green256 + typ + Off
	}
	source := strings.ReplaceAll(doc.TextAt(rel.Source.TextSpan()), "\n", " ")
	target := strings.ReplaceAll(doc.TextAt(rel.Target.TextSpan()), "\n", " ")
	fmt.Fprintf(r.Out, "%s [%s] %q -> %q\n", rel.LocalID(), typ, source, target)
}

// markedText splices EDU brackets into the raw text. Markers carry
// no offsets of their own, so splicing goes right to left.
func (r *Renderer) markedText(doc *annotation.Document) string {
	type marker struct {
		offset int
		text   string
		open   bool
	}

	var markers []marker
	for _, u := range doc.Units {
		if !stac.IsEDU(u) {
			continue
		}
		open := "["
		close := "]"
		if r.HasColor {
			open = Yellow + open + Off
			close = Yellow + close + Off
		}
		markers = append(markers, marker{offset: u.Span.Start, text: open, open: true})
		markers = append(markers, marker{offset: u.Span.End, text: close})
	}

	// Right to left, so earlier offsets stay valid. At equal
	// offsets the open marker is spliced first, which puts the
	// close marker to its left: adjacent EDUs render as "][".
	sort.SliceStable(markers, func(i, j int) bool {
		if markers[i].offset != markers[j].offset {
			return markers[i].offset > markers[j].offset
		}
		return markers[i].open && !markers[j].open
	})

	// Offsets count code points, so splice on the decoded text.
	runes := []rune(doc.Text())
	for _, m := range markers {
		if m.offset < 0 || m.offset > len(runes) {
			continue
		}
		tail := append([]rune(nil), runes[m.offset:]...)
		runes = append(runes[:m.offset], []rune(m.text)...)
		runes = append(runes, tail...)
	}
	return string(runes)
}
