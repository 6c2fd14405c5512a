// Package stac implements the STAC annotation conventions on top of
// the low-level Glozz model, plus a corpus reader for the STAC
// directory layout.
//
// STAC/Glozz annotations can be confusing for two reasons: Glozz
// objects annotate very different things, and annotation happens in
// stages. In the units stage, units carry document structure, EDUs,
// resources and preferences; relations carry coreference; schemas
// carry composite resources. In the discourse stage, units carry
// document structure and EDUs; relations carry relation instances;
// schemas carry CDUs (complex discourse units).
package stac

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/revelaction/disco/annotation"
	"github.com/revelaction/disco/corpus"
)

// Unit typology.
var (
	StructureTypes  = []string{"Turn", "paragraph", "dialogue", "Dialogue"}
	ResourceTypes   = []string{"default", "Resource"}
	PreferenceTypes = []string{"Preference"}
)

// Relation typology.
var (
	SubordinatingRelations = []string{
		"Explanation",
		"Background",
		"Elaboration",
		"Correction",
		"Q-Elab",
		"Comment",
		"Question-answer_pair",
		"Clarification_question",
		"Acknowledgement",
	}

	CoordinatingRelations = []string{
		"Result",
		"Narration",
		"Continuation",
		"Contrast",
		"Parallel",
		"Conditional",
		"Alternation",
	}
)

// DialogueActs are the acts an EDU can be annotated with.
var DialogueActs = []string{
	"Offer",
	"Counteroffer",
	"Accept",
	"Refusal",
	"Other",
}

// actRenames are dialogue acts treated as a different one.
var actRenames = map[string]string{
	"Strategic_comment": "Other",
	"Segment":           "Other",
}

const (
	featAddressee  = "Addressee"
	featEmitter    = "Emitter"
	featIdentifier = "Identifier"

	// Placeholder strings that Glozz inserts as a UI aid but which
	// carry no annotation content.
	addresseePlaceholder = "Please choose..."
	commentPlaceholder   = "Please write in remarks..."
)

// metalTiers are the annotator names denoting curated gold-standard
// annotations, lowest tier first.
var metalTiers = []string{"bronze", "silver", "gold"}

// IsMetal reports whether the id belongs to a gold-standard
// annotation tier: an annotator of BRONZE, SILVER or GOLD, compared
// case-insensitively. A missing (empty) annotator is simply not
// metal, never an error.
func IsMetal(id corpus.FileId) bool {
	anno := strings.ToLower(id.Annotator)
	for _, tier := range metalTiers {
		if anno == tier {
			return true
		}
	}
	return false
}

// SplitType splits an annotation type into its slash-separated parts,
// sorted. Most types are singletons; legacy annotations occasionally
// carry several.
func SplitType(typ string) []string {
	parts := strings.Split(typ, "/")
	sort.Strings(parts)
	return parts
}

// UnitDialogueActs returns the dialogue act annotations of a unit,
// with STAC-isms like collapsing Strategic_comment into Other
// applied. By rights a singleton, but legacy annotations had more
// than one.
func UnitDialogueActs(u *annotation.Unit) []string {
	parts := SplitType(u.Type)
	acts := make([]string, 0, len(parts))
	for _, p := range parts {
		if renamed, ok := actRenames[p]; ok {
			p = renamed
		}
		acts = append(acts, p)
	}
	return acts
}

// RelationLabels returns the relation labels of a relation (eg.
// Elaboration, Explanation), one per slash-separated type part.
func RelationLabels(r *annotation.Relation) []string {
	return SplitType(r.Type)
}

// IsStructure reports a document-structure unit, something an
// annotator is expected not to edit, create or delete.
func IsStructure(u *annotation.Unit) bool {
	return contains(StructureTypes, u.Type)
}

// IsResource reports a resource unit (a subspan of a segment).
func IsResource(u *annotation.Unit) bool {
	return contains(ResourceTypes, u.Type)
}

// IsPreference reports a preference unit.
func IsPreference(u *annotation.Unit) bool {
	return contains(PreferenceTypes, u.Type)
}

// IsTurn reports a turn unit.
func IsTurn(u *annotation.Unit) bool {
	return u.Type == "Turn"
}

// IsDialogue reports a dialogue unit.
func IsDialogue(u *annotation.Unit) bool {
	return u.Type == "Dialogue"
}

// IsEDU reports an elementary discourse unit: any unit that is not
// document structure, a resource or a preference.
func IsEDU(u *annotation.Unit) bool {
	return !IsStructure(u) && !IsResource(u) && !IsPreference(u)
}

// IsRelationInstance reports a discourse relation instance, i.e. a
// relation bearing a subordinating or coordinating label.
func IsRelationInstance(r *annotation.Relation) bool {
	return IsSubordinating(r) || IsCoordinating(r)
}

// IsSubordinating reports a subordinating relation instance.
func IsSubordinating(r *annotation.Relation) bool {
	return contains(SubordinatingRelations, r.Type)
}

// IsCoordinating reports a coordinating relation instance.
func IsCoordinating(r *annotation.Relation) bool {
	return contains(CoordinatingRelations, r.Type)
}

// IsCDU reports a complex discourse unit schema.
func IsCDU(s *annotation.Schema) bool {
	return s.Type == "Complex_discourse_unit"
}

// turnPrefix matches the turn number and speaker prefix that STAC
// turn texts carry to help annotators.
var turnPrefix = regexp.MustCompile(`(?s)^([0-9]+ ?: .*? ?: )(.*)$`)

// SplitTurnText splits a turn's text into the "379: Bob: " prefix and
// the turn body. Offsets of the body are relative to the whole turn
// string. A turn without the prefix is a sign something weird has
// happened upstream, so it is an error rather than a silent pass.
func SplitTurnText(text string) (prefix, body string, err error) {
	m := turnPrefix.FindStringSubmatch(text)
	if m == nil {
		return "", "", fmt.Errorf("turn does not start with number/speaker prefix: %s", text)
	}
	return m[1], m[2], nil
}

// TurnID returns the turn number of a turn annotation, or false if
// the information is missing.
func TurnID(u *annotation.Unit) (int, bool) {
	s, ok := u.Features[featIdentifier]
	if !ok || s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Speaker returns the speaker of a turn annotation, or "" if there
// is none.
func Speaker(u *annotation.Unit) string {
	return u.Features[featEmitter]
}

// Addressees returns the people spoken to during an EDU annotation,
// or nil when the feature is missing or still the Glozz placeholder.
// Values like "All" or "?" are preserved.
func Addressees(u *annotation.Unit) []string {
	addr, ok := u.Features[featAddressee]
	if !ok || addr == addresseePlaceholder {
		return nil
	}
	names := strings.Split(addr, ",")
	for i := range names {
		names[i] = strings.TrimSpace(names[i])
	}
	sort.Strings(names)
	return names
}

// SetAddressees sets the addressee list of a unit; nil deletes it.
func SetAddressees(u *annotation.Unit, addr []string) {
	if addr == nil {
		delete(u.Features, featAddressee)
		return
	}
	sorted := make([]string, len(addr))
	copy(sorted, addr)
	sort.Strings(sorted)
	if u.Features == nil {
		u.Features = make(map[string]string)
	}
	u.Features[featAddressee] = strings.Join(sorted, ", ")
}

// CleanupComments strips the default comment placeholder from a
// feature map. The placeholder is editing-UI noise, not a comment.
func CleanupComments(features map[string]string) {
	if features["Comments"] == commentPlaceholder {
		delete(features, "Comments")
	}
}

// Twin retrieves the equivalent annotation (by local id) from a
// different stage of the corpus: typically, an EDU seen in the
// discourse stage fished out of the units stage to get its dialogue
// act. Returns nil if the twin document or annotation is not there.
func Twin(c corpus.Corpus, id corpus.FileId, a annotation.Annotation, stage string) annotation.Annotation {
	twinKey := id
	twinKey.Stage = stage
	doc, ok := c[twinKey]
	if !ok {
		return nil
	}
	return TwinFrom(doc, a)
}

// TwinFrom returns the first annotation in doc with the same local id
// as a, or nil.
func TwinFrom(doc *annotation.Document, a annotation.Annotation) annotation.Annotation {
	want := a.LocalID()
	for _, other := range doc.Annotations() {
		if other.LocalID() == want {
			return other
		}
	}
	return nil
}

func contains(set []string, s string) bool {
	for _, member := range set {
		if member == s {
			return true
		}
	}
	return false
}
