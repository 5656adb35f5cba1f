package loader

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/ontograph/ontograph/ontology"
)

// OWL/RDF namespace URIs.
const (
	nsOWL      = "http://www.w3.org/2002/07/owl#"
	nsRDF      = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	nsRDFS     = "http://www.w3.org/2000/01/rdf-schema#"
	nsOBO      = "http://purl.obolibrary.org/obo/"
	nsOboInOwl = "http://www.geneontology.org/formats/oboInOwl#"
)

// partOfProperty is the OBO relations-ontology IRI for part_of, the one
// restriction property treated as a hierarchy edge.
const partOfProperty = nsOBO + "BFO_0000050"

// OWLParser parses OWL/RDF-XML serializations.
type OWLParser struct{}

// NewOWLParser creates an OWL parser.
func NewOWLParser() *OWLParser {
	return &OWLParser{}
}

// Format returns the primary format name.
func (p *OWLParser) Format() string { return FormatOWL }

// CanParse returns true for OWL format aliases.
func (p *OWLParser) CanParse(format string) bool {
	return format == FormatOWL || format == "rdf" || format == "application/rdf+xml"
}

// Parse reads an OWL/RDF-XML document. owl:Class elements become terms;
// rdfs:subClassOf references and part_of restrictions become relations.
// Deprecated classes are dropped along with any relation pointing at them.
func (p *OWLParser) Parse(r io.Reader) (*ontology.Document, error) {
	decoder := xml.NewDecoder(r)

	doc := &ontology.Document{}
	obsolete := make(map[string]struct{})

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("loader: read OWL: %w", err)
		}

		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch {
		case matchElement(se, nsOWL, "Class"):
			cls, err := parseOWLClass(decoder, se)
			if err != nil {
				return nil, err
			}
			if cls.term.ID == "" {
				continue
			}
			if cls.obsolete {
				obsolete[cls.term.ID] = struct{}{}
				continue
			}
			doc.Terms = append(doc.Terms, cls.term)
			for _, pid := range cls.parents {
				doc.Relations = append(doc.Relations, ontology.Relation{
					ChildID: cls.term.ID, ParentID: pid,
				})
			}
		case matchElement(se, nsOWL, "Ontology"):
			if err := parseOWLHeader(decoder, se, doc); err != nil {
				return nil, err
			}
		case matchElement(se, nsRDF, "RDF"):
			// Container element, descend into it.
		default:
			if err := decoder.Skip(); err != nil {
				return nil, fmt.Errorf("loader: read OWL: %w", err)
			}
		}
	}

	doc.Relations = dropObsoleteParents(doc.Relations, obsolete)
	return doc, nil
}

func matchElement(se xml.StartElement, space, local string) bool {
	return se.Name.Space == space && se.Name.Local == local
}

func attrValue(se xml.StartElement, space, local string) string {
	for _, a := range se.Attr {
		if a.Name.Space == space && a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// oboIDFromIRI converts an OBO PURL such as
// http://purl.obolibrary.org/obo/GO_0008150 to the CURIE GO:0008150.
// Non-OBO IRIs pass through unchanged.
func oboIDFromIRI(iri string) string {
	if !strings.HasPrefix(iri, nsOBO) {
		return iri
	}
	id := iri[len(nsOBO):]
	if idx := strings.IndexByte(id, '_'); idx >= 0 {
		return id[:idx] + ":" + id[idx+1:]
	}
	return id
}

func parseOWLHeader(decoder *xml.Decoder, se xml.StartElement, doc *ontology.Document) error {
	if about := attrValue(se, nsRDF, "about"); about != "" {
		doc.Ontology = about
	}
	for {
		tok, err := decoder.Token()
		if err != nil {
			return fmt.Errorf("loader: read OWL header: %w", err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if matchElement(el, nsOWL, "versionIRI") {
				if v := attrValue(el, nsRDF, "resource"); v != "" {
					doc.DataVersion = v
				}
			}
			if err := decoder.Skip(); err != nil {
				return fmt.Errorf("loader: read OWL header: %w", err)
			}
		case xml.EndElement:
			return nil
		}
	}
}

type owlClass struct {
	term     ontology.Term
	parents  []string
	obsolete bool
}

func parseOWLClass(decoder *xml.Decoder, se xml.StartElement) (owlClass, error) {
	var cls owlClass
	if about := attrValue(se, nsRDF, "about"); about != "" {
		cls.term.ID = oboIDFromIRI(about)
	}

	for {
		tok, err := decoder.Token()
		if err != nil {
			return cls, fmt.Errorf("loader: read OWL class: %w", err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch {
			case matchElement(el, nsRDFS, "label"):
				cls.term.Name = readCharData(decoder)
			case matchElement(el, nsOBO, "IAO_0000115"):
				cls.term.Definition = readCharData(decoder)
			case matchElement(el, nsRDFS, "subClassOf"):
				if res := attrValue(el, nsRDF, "resource"); res != "" {
					cls.parents = append(cls.parents, oboIDFromIRI(res))
					if err := decoder.Skip(); err != nil {
						return cls, fmt.Errorf("loader: read OWL class: %w", err)
					}
					continue
				}
				target, err := parseRestriction(decoder)
				if err != nil {
					return cls, err
				}
				if target != "" {
					cls.parents = append(cls.parents, target)
				}
			case matchElement(el, nsOboInOwl, "hasExactSynonym"):
				cls.term.Synonyms = append(cls.term.Synonyms,
					ontology.Synonym{Text: readCharData(decoder), Scope: "EXACT"})
			case matchElement(el, nsOboInOwl, "hasBroadSynonym"):
				cls.term.Synonyms = append(cls.term.Synonyms,
					ontology.Synonym{Text: readCharData(decoder), Scope: "BROAD"})
			case matchElement(el, nsOboInOwl, "hasNarrowSynonym"):
				cls.term.Synonyms = append(cls.term.Synonyms,
					ontology.Synonym{Text: readCharData(decoder), Scope: "NARROW"})
			case matchElement(el, nsOboInOwl, "hasRelatedSynonym"):
				cls.term.Synonyms = append(cls.term.Synonyms,
					ontology.Synonym{Text: readCharData(decoder), Scope: "RELATED"})
			case matchElement(el, nsOWL, "deprecated"):
				cls.obsolete = readCharData(decoder) == "true"
			default:
				if err := decoder.Skip(); err != nil {
					return cls, fmt.Errorf("loader: read OWL class: %w", err)
				}
			}
		case xml.EndElement:
			return cls, nil
		}
	}
}

// parseRestriction walks a nested rdfs:subClassOf > owl:Restriction and
// returns the someValuesFrom target when the restricted property is
// part_of, or "" for any other property.
func parseRestriction(decoder *xml.Decoder) (string, error) {
	var property, target string
	depth := 1
	for depth > 0 {
		tok, err := decoder.Token()
		if err != nil {
			return "", fmt.Errorf("loader: read OWL restriction: %w", err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch {
			case matchElement(el, nsOWL, "onProperty"):
				property = attrValue(el, nsRDF, "resource")
			case matchElement(el, nsOWL, "someValuesFrom"):
				target = attrValue(el, nsRDF, "resource")
			}
			depth++
		case xml.EndElement:
			depth--
		}
	}
	if property == partOfProperty && target != "" {
		return oboIDFromIRI(target), nil
	}
	return "", nil
}

// readCharData collects the character data up to the current element's
// end tag.
func readCharData(decoder *xml.Decoder) string {
	var sb strings.Builder
	depth := 1
	for depth > 0 {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		switch el := tok.(type) {
		case xml.CharData:
			sb.Write(el)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return strings.TrimSpace(sb.String())
}
