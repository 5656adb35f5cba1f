package loader

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/ontograph/ontograph/ontology"
)

// scannerBufferSize accommodates the long def/synonym lines of large
// ontologies such as ChEBI.
const scannerBufferSize = 1 << 20

// hierarchyRelations are the OBO relationship types treated as parent
// edges. Everything else (has_part, regulates, ...) carries no hierarchy
// and is ignored.
var hierarchyRelations = map[string]struct{}{
	"is_a":    {},
	"part_of": {},
}

// OBOParser parses the OBO flat-file format.
type OBOParser struct{}

// NewOBOParser creates an OBO parser.
func NewOBOParser() *OBOParser {
	return &OBOParser{}
}

// Format returns the primary format name.
func (p *OBOParser) Format() string { return FormatOBO }

// CanParse returns true for OBO format aliases.
func (p *OBOParser) CanParse(format string) bool {
	return format == FormatOBO || format == "text/obo"
}

// Parse reads an OBO document. Terms and is_a/part_of relations are
// emitted in file order; obsolete terms are dropped along with any
// relation pointing at them.
func (p *OBOParser) Parse(r io.Reader) (*ontology.Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, scannerBufferSize), scannerBufferSize)

	doc := &ontology.Document{}
	obsolete := make(map[string]struct{})
	inTerm := false

	var cur oboTerm
	flush := func() {
		if !inTerm || cur.term.ID == "" {
			return
		}
		if cur.obsolete {
			obsolete[cur.term.ID] = struct{}{}
			return
		}
		doc.Terms = append(doc.Terms, cur.term)
		for _, pid := range cur.parents {
			doc.Relations = append(doc.Relations, ontology.Relation{
				ChildID: cur.term.ID, ParentID: pid,
			})
		}
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "["):
			flush()
			inTerm = line == "[Term]"
			cur = oboTerm{}
		case inTerm:
			parseTermLine(&cur, line)
		default:
			parseHeaderLine(doc, line)
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("loader: read OBO: %w", err)
	}

	doc.Relations = dropObsoleteParents(doc.Relations, obsolete)
	return doc, nil
}

type oboTerm struct {
	term     ontology.Term
	parents  []string
	obsolete bool
}

func parseHeaderLine(doc *ontology.Document, line string) {
	key, val, ok := strings.Cut(line, ": ")
	if !ok {
		return
	}
	switch key {
	case "format-version":
		doc.FormatVersion = val
	case "data-version":
		doc.DataVersion = val
	case "ontology":
		doc.Ontology = val
	}
}

func parseTermLine(cur *oboTerm, line string) {
	key, val, ok := strings.Cut(line, ": ")
	if !ok {
		return
	}
	switch key {
	case "id":
		cur.term.ID = val
	case "name":
		cur.term.Name = val
	case "def":
		cur.term.Definition = parseQuoted(val)
	case "synonym":
		cur.term.Synonyms = append(cur.term.Synonyms, parseSynonym(val))
	case "is_a":
		cur.parents = append(cur.parents, trimTarget(val))
	case "relationship":
		rel, target, ok := strings.Cut(val, " ")
		if !ok {
			return
		}
		if _, hierarchical := hierarchyRelations[rel]; hierarchical {
			cur.parents = append(cur.parents, trimTarget(target))
		}
	case "is_obsolete":
		cur.obsolete = val == "true"
	}
}

// trimTarget strips the trailing "! name" comment from a relation target.
func trimTarget(s string) string {
	if idx := strings.Index(s, " !"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// parseQuoted extracts the text between the first pair of double quotes.
func parseQuoted(s string) string {
	start := strings.IndexByte(s, '"')
	if start < 0 {
		return s
	}
	start++
	end := strings.IndexByte(s[start:], '"')
	if end < 0 {
		return s[start:]
	}
	return s[start : start+end]
}

// parseSynonym parses an OBO synonym line: "text" SCOPE [xrefs].
func parseSynonym(s string) ontology.Synonym {
	syn := ontology.Synonym{Text: parseQuoted(s)}

	closing := strings.IndexByte(s[1:], '"')
	if closing < 0 {
		return syn
	}
	rest := strings.TrimSpace(s[closing+2:])
	if fields := strings.Fields(rest); len(fields) > 0 && !strings.HasPrefix(fields[0], "[") {
		syn.Scope = fields[0]
	}
	return syn
}

func dropObsoleteParents(relations []ontology.Relation, obsolete map[string]struct{}) []ontology.Relation {
	if len(obsolete) == 0 {
		return relations
	}
	kept := relations[:0]
	for _, r := range relations {
		if _, gone := obsolete[r.ParentID]; gone {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}
