// Package glozz reads and writes Glozz annotation files. A Glozz
// document is a pair of files: an .aa XML file carrying units,
// relations and schemas, and an .ac file carrying the raw text the
// annotations stand off against.
package glozz

import (
	"bytes"
	"fmt"
	"os"
	"strconv"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/revelaction/disco/annotation"
)

// Selectors are compiled once; the .aa structure is fixed.
var (
	unitSel     = xpath.MustCompile("/annotations/unit")
	relationSel = xpath.MustCompile("/annotations/relation")
	schemaSel   = xpath.MustCompile("/annotations/schema")

	typeSel    = xpath.MustCompile("characterisation/type")
	featureSel = xpath.MustCompile("characterisation/featureSet/feature")
	metaSel    = xpath.MustCompile("metadata/*")

	startSel = xpath.MustCompile("positioning/start/singlePosition")
	endSel   = xpath.MustCompile("positioning/end/singlePosition")
	termSel  = xpath.MustCompile("positioning/term")

	embUnitSel   = xpath.MustCompile("positioning/embedded-unit")
	embRelSel    = xpath.MustCompile("positioning/embedded-relation")
	embSchemaSel = xpath.MustCompile("positioning/embedded-schema")
)

// ReadDocument parses the .aa/.ac pair into a document.
func ReadDocument(aaPath, acPath string) (*annotation.Document, error) {
	aa, err := os.ReadFile(aaPath)
	if err != nil {
		return nil, fmt.Errorf("reading annotations: %w", err)
	}

	text, err := os.ReadFile(acPath)
	if err != nil {
		return nil, fmt.Errorf("reading text: %w", err)
	}

	doc, err := Parse(aa, string(text))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", aaPath, err)
	}
	return doc, nil
}

// Parse decodes .aa XML bytes against the given raw text.
func Parse(aa []byte, text string) (*annotation.Document, error) {
	root, err := xmlquery.Parse(bytes.NewReader(aa))
	if err != nil {
		return nil, fmt.Errorf("parsing XML: %w", err)
	}

	var units []*annotation.Unit
	for _, n := range xmlquery.QuerySelectorAll(root, unitSel) {
		u, err := parseUnit(n)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}

	var relations []*annotation.Relation
	for _, n := range xmlquery.QuerySelectorAll(root, relationSel) {
		r, err := parseRelation(n)
		if err != nil {
			return nil, err
		}
		relations = append(relations, r)
	}

	var schemas []*annotation.Schema
	for _, n := range xmlquery.QuerySelectorAll(root, schemaSel) {
		s, err := parseSchema(n)
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, s)
	}

	return annotation.NewDocument(units, relations, schemas, text)
}

func parseUnit(n *xmlquery.Node) (*annotation.Unit, error) {
	id := n.SelectAttr("id")
	if id == "" {
		return nil, fmt.Errorf("unit without id")
	}

	typ, err := characterisation(n, id)
	if err != nil {
		return nil, err
	}

	span, err := position(n, id)
	if err != nil {
		return nil, err
	}

	return &annotation.Unit{
		ID:       id,
		Span:     span,
		Type:     typ,
		Features: features(n),
		Metadata: metadata(n),
	}, nil
}

func parseRelation(n *xmlquery.Node) (*annotation.Relation, error) {
	id := n.SelectAttr("id")
	if id == "" {
		return nil, fmt.Errorf("relation without id")
	}

	typ, err := characterisation(n, id)
	if err != nil {
		return nil, err
	}

	terms := xmlquery.QuerySelectorAll(n, termSel)
	if len(terms) != 2 {
		return nil, fmt.Errorf("relation %s: want 2 terms, got %d", id, len(terms))
	}

	return &annotation.Relation{
		ID: id,
		Span: annotation.RelSpan{
			T1: terms[0].SelectAttr("id"),
			T2: terms[1].SelectAttr("id"),
		},
		Type:     typ,
		Features: features(n),
		Metadata: metadata(n),
	}, nil
}

func parseSchema(n *xmlquery.Node) (*annotation.Schema, error) {
	id := n.SelectAttr("id")
	if id == "" {
		return nil, fmt.Errorf("schema without id")
	}

	typ, err := characterisation(n, id)
	if err != nil {
		return nil, err
	}

	return &annotation.Schema{
		ID:        id,
		Units:     memberIDs(n, embUnitSel),
		Relations: memberIDs(n, embRelSel),
		Schemas:   memberIDs(n, embSchemaSel),
		Type:      typ,
		Features:  features(n),
		Metadata:  metadata(n),
	}, nil
}

func characterisation(n *xmlquery.Node, id string) (string, error) {
	t := xmlquery.QuerySelector(n, typeSel)
	if t == nil {
		return "", fmt.Errorf("annotation %s: missing characterisation type", id)
	}
	return t.InnerText(), nil
}

func features(n *xmlquery.Node) map[string]string {
	nodes := xmlquery.QuerySelectorAll(n, featureSel)
	if len(nodes) == 0 {
		return nil
	}
	feats := make(map[string]string, len(nodes))
	for _, f := range nodes {
		feats[f.SelectAttr("name")] = f.InnerText()
	}
	return feats
}

func metadata(n *xmlquery.Node) map[string]string {
	nodes := xmlquery.QuerySelectorAll(n, metaSel)
	if len(nodes) == 0 {
		return nil
	}
	meta := make(map[string]string, len(nodes))
	for _, m := range nodes {
		if m.Type == xmlquery.ElementNode {
			meta[m.Data] = m.InnerText()
		}
	}
	return meta
}

func position(n *xmlquery.Node, id string) (annotation.Span, error) {
	start := xmlquery.QuerySelector(n, startSel)
	end := xmlquery.QuerySelector(n, endSel)
	if start == nil || end == nil {
		return annotation.Span{}, fmt.Errorf("unit %s: missing positioning", id)
	}

	s, err := strconv.Atoi(start.SelectAttr("index"))
	if err != nil {
		return annotation.Span{}, fmt.Errorf("unit %s: bad start index: %w", id, err)
	}
	e, err := strconv.Atoi(end.SelectAttr("index"))
	if err != nil {
		return annotation.Span{}, fmt.Errorf("unit %s: bad end index: %w", id, err)
	}

	return annotation.Span{Start: s, End: e}, nil
}

func memberIDs(n *xmlquery.Node, sel *xpath.Expr) []string {
	nodes := xmlquery.QuerySelectorAll(n, sel)
	if len(nodes) == 0 {
		return nil
	}
	ids := make([]string, 0, len(nodes))
	for _, m := range nodes {
		ids = append(ids, m.SelectAttr("id"))
	}
	return ids
}
