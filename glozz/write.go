package glozz

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/revelaction/disco/annotation"
)

// Write serializes the document's annotations as .aa XML. Features
// and metadata are emitted in sorted key order so output is stable
// under round-trips.
func Write(w io.Writer, doc *annotation.Document) error {
	var b aaBuilder
	b.line(0, xml.Header[:len(xml.Header)-1])
	b.line(0, "<annotations>")

	for _, u := range doc.Units {
		b.line(1, fmt.Sprintf("<unit id=%s>", attr(u.ID)))
		b.metadata(2, u.Metadata)
		b.characterisation(2, u.Type, u.Features)
		b.line(2, "<positioning>")
		b.line(3, fmt.Sprintf("<start><singlePosition index=%s/></start>", attr(itoa(u.Span.Start))))
		b.line(3, fmt.Sprintf("<end><singlePosition index=%s/></end>", attr(itoa(u.Span.End))))
		b.line(2, "</positioning>")
		b.line(1, "</unit>")
	}

	for _, r := range doc.Relations {
		b.line(1, fmt.Sprintf("<relation id=%s>", attr(r.ID)))
		b.metadata(2, r.Metadata)
		b.characterisation(2, r.Type, r.Features)
		b.line(2, "<positioning>")
		b.line(3, fmt.Sprintf("<term id=%s/>", attr(r.Span.T1)))
		b.line(3, fmt.Sprintf("<term id=%s/>", attr(r.Span.T2)))
		b.line(2, "</positioning>")
		b.line(1, "</relation>")
	}

	for _, s := range doc.Schemas {
		b.line(1, fmt.Sprintf("<schema id=%s>", attr(s.ID)))
		b.metadata(2, s.Metadata)
		b.characterisation(2, s.Type, s.Features)
		b.line(2, "<positioning>")
		for _, id := range s.Units {
			b.line(3, fmt.Sprintf("<embedded-unit id=%s/>", attr(id)))
		}
		for _, id := range s.Relations {
			b.line(3, fmt.Sprintf("<embedded-relation id=%s/>", attr(id)))
		}
		for _, id := range s.Schemas {
			b.line(3, fmt.Sprintf("<embedded-schema id=%s/>", attr(id)))
		}
		b.line(2, "</positioning>")
		b.line(1, "</schema>")
	}

	b.line(0, "</annotations>")

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteDocument writes the .aa side of a document to a file.
func WriteDocument(aaPath string, doc *annotation.Document) error {
	f, err := os.Create(aaPath)
	if err != nil {
		return err
	}
	if err := Write(f, doc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteText writes the .ac side (the raw text) of a document.
func WriteText(acPath string, doc *annotation.Document) error {
	return os.WriteFile(acPath, []byte(doc.Text()), 0644)
}

type aaBuilder struct {
	buf []byte
}

func (b *aaBuilder) line(depth int, s string) {
	for i := 0; i < depth; i++ {
		b.buf = append(b.buf, "  "...)
	}
	b.buf = append(b.buf, s...)
	b.buf = append(b.buf, '\n')
}

func (b *aaBuilder) metadata(depth int, meta map[string]string) {
	if len(meta) == 0 {
		b.line(depth, "<metadata/>")
		return
	}
	b.line(depth, "<metadata>")
	for _, k := range sortedKeys(meta) {
		b.line(depth+1, fmt.Sprintf("<%s>%s</%s>", k, escape(meta[k]), k))
	}
	b.line(depth, "</metadata>")
}

func (b *aaBuilder) characterisation(depth int, typ string, feats map[string]string) {
	b.line(depth, "<characterisation>")
	b.line(depth+1, fmt.Sprintf("<type>%s</type>", escape(typ)))
	if len(feats) == 0 {
		b.line(depth+1, "<featureSet/>")
	} else {
		b.line(depth+1, "<featureSet>")
		for _, k := range sortedKeys(feats) {
			b.line(depth+2, fmt.Sprintf("<feature name=%s>%s</feature>", attr(k), escape(feats[k])))
		}
		b.line(depth+1, "</featureSet>")
	}
	b.line(depth, "</characterisation>")
}

func (b *aaBuilder) String() string {
	return string(b.buf)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// attr quotes an attribute value, XML-escaped so that quotes and
// angle brackets in ids or feature names survive a round-trip.
func attr(s string) string {
	return `"` + escape(s) + `"`
}

func escape(s string) string {
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		return s
	}
	return buf.String()
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
