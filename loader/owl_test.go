package loader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontograph/ontograph/ontology"
)

const sampleOWL = `<?xml version="1.0"?>
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
         xmlns:rdfs="http://www.w3.org/2000/01/rdf-schema#"
         xmlns:owl="http://www.w3.org/2002/07/owl#"
         xmlns:obo="http://purl.obolibrary.org/obo/"
         xmlns:oboInOwl="http://www.geneontology.org/formats/oboInOwl#">
  <owl:Ontology rdf:about="http://purl.obolibrary.org/obo/go.owl">
    <owl:versionIRI rdf:resource="http://purl.obolibrary.org/obo/go/releases/2024-01-01/go.owl"/>
  </owl:Ontology>
  <owl:Class rdf:about="http://purl.obolibrary.org/obo/GO_0008150">
    <rdfs:label>biological_process</rdfs:label>
    <obo:IAO_0000115>A biological process.</obo:IAO_0000115>
  </owl:Class>
  <owl:Class rdf:about="http://purl.obolibrary.org/obo/GO_0008152">
    <rdfs:label>metabolic process</rdfs:label>
    <oboInOwl:hasExactSynonym>metabolism</oboInOwl:hasExactSynonym>
    <rdfs:subClassOf rdf:resource="http://purl.obolibrary.org/obo/GO_0008150"/>
  </owl:Class>
  <owl:Class rdf:about="http://purl.obolibrary.org/obo/GO_0009056">
    <rdfs:label>catabolic process</rdfs:label>
    <rdfs:subClassOf>
      <owl:Restriction>
        <owl:onProperty rdf:resource="http://purl.obolibrary.org/obo/BFO_0000050"/>
        <owl:someValuesFrom rdf:resource="http://purl.obolibrary.org/obo/GO_0008152"/>
      </owl:Restriction>
    </rdfs:subClassOf>
  </owl:Class>
  <owl:Class rdf:about="http://purl.obolibrary.org/obo/GO_0000001">
    <rdfs:label>obsolete thing</rdfs:label>
    <owl:deprecated rdf:datatype="http://www.w3.org/2001/XMLSchema#boolean">true</owl:deprecated>
  </owl:Class>
  <owl:Class rdf:about="http://purl.obolibrary.org/obo/GO_0000002">
    <rdfs:label>orphan of obsolete</rdfs:label>
    <rdfs:subClassOf rdf:resource="http://purl.obolibrary.org/obo/GO_0000001"/>
    <rdfs:subClassOf rdf:resource="http://purl.obolibrary.org/obo/GO_0008150"/>
  </owl:Class>
</rdf:RDF>
`

func TestOWLParser_Parse(t *testing.T) {
	doc, err := NewOWLParser().Parse(strings.NewReader(sampleOWL))
	require.NoError(t, err)

	t.Run("header", func(t *testing.T) {
		assert.Equal(t, "http://purl.obolibrary.org/obo/go.owl", doc.Ontology)
		assert.Contains(t, doc.DataVersion, "2024-01-01")
	})

	t.Run("OBO PURLs become CURIEs", func(t *testing.T) {
		var ids []string
		for _, term := range doc.Terms {
			ids = append(ids, term.ID)
		}
		assert.Equal(t, []string{"GO:0008150", "GO:0008152", "GO:0009056", "GO:0000002"}, ids)
	})

	t.Run("metadata", func(t *testing.T) {
		assert.Equal(t, "biological_process", doc.Terms[0].Name)
		assert.Equal(t, "A biological process.", doc.Terms[0].Definition)
		assert.Equal(t, []ontology.Synonym{{Text: "metabolism", Scope: "EXACT"}}, doc.Terms[1].Synonyms)
	})

	t.Run("subClassOf and part_of restrictions become relations", func(t *testing.T) {
		assert.Equal(t, []ontology.Relation{
			{ChildID: "GO:0008152", ParentID: "GO:0008150"},
			{ChildID: "GO:0009056", ParentID: "GO:0008152"},
			{ChildID: "GO:0000002", ParentID: "GO:0008150"},
		}, doc.Relations, "deprecated parents dropped")
	})
}

func TestOWLParser_InvalidXML(t *testing.T) {
	_, err := NewOWLParser().Parse(strings.NewReader("<owl:Class"))
	require.Error(t, err)
}
