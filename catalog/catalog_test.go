package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRegistry = `ontologies:
  - id: go
    title: Gene Ontology
    description: An ontology for describing the function of genes.
    homepage: http://geneontology.org/
    products:
      - id: go.obo
        ontology_purl: http://purl.obolibrary.org/obo/go.obo
      - id: go.owl
        ontology_purl: http://purl.obolibrary.org/obo/go.owl
  - id: chebi
    title: Chemical Entities of Biological Interest
    products:
      - id: chebi.owl
        ontology_purl: http://purl.obolibrary.org/obo/chebi.owl
  - id: dead
    title: Retired Ontology
    is_obsolete: true
  - title: nameless, skipped
`

func parseSample(t *testing.T) *Catalog {
	t.Helper()
	c, err := Parse(strings.NewReader(sampleRegistry))
	require.NoError(t, err)
	return c
}

func TestParse(t *testing.T) {
	c := parseSample(t)

	assert.Equal(t, 2, c.Len(), "obsolete and nameless entries skipped")
	assert.Equal(t, []Summary{
		{ID: "go", Title: "Gene Ontology"},
		{ID: "chebi", Title: "Chemical Entities of Biological Interest"},
	}, c.List())
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse(strings.NewReader("ontologies: ["))
	require.Error(t, err)
}

func TestCatalog_Get(t *testing.T) {
	c := parseSample(t)

	t.Run("found", func(t *testing.T) {
		e, err := c.Get("go")
		require.NoError(t, err)
		assert.Equal(t, "Gene Ontology", e.Title)
		assert.Equal(t, []string{"obo", "owl"}, e.Formats())
	})

	t.Run("not found", func(t *testing.T) {
		_, err := c.Get("nope")
		var notFound *OntologyNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "nope", notFound.ID)
	})

	t.Run("obsolete entries are invisible", func(t *testing.T) {
		_, err := c.Get("dead")
		require.Error(t, err)
	})
}

func TestCatalog_DownloadURL(t *testing.T) {
	c := parseSample(t)

	t.Run("resolves product", func(t *testing.T) {
		url, err := c.DownloadURL("go", "obo")
		require.NoError(t, err)
		assert.Equal(t, "http://purl.obolibrary.org/obo/go.obo", url)
	})

	t.Run("format not available", func(t *testing.T) {
		_, err := c.DownloadURL("chebi", "obo")
		var unavailable *FormatUnavailableError
		require.ErrorAs(t, err, &unavailable)
		assert.Equal(t, []string{"owl"}, unavailable.Have)
	})

	t.Run("unknown ontology", func(t *testing.T) {
		_, err := c.DownloadURL("nope", "obo")
		var notFound *OntologyNotFoundError
		require.ErrorAs(t, err, &notFound)
	})
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, RegistryFilename)
	require.NoError(t, os.WriteFile(path, []byte(sampleRegistry), 0o644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	_, err = LoadFile(filepath.Join(dir, "absent.yml"))
	require.Error(t, err)
}

func TestCatalog_WriteTable(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, parseSample(t).WriteTable(&sb))

	out := sb.String()
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "go")
	assert.Contains(t, out, "Gene Ontology")
	assert.NotContains(t, out, "Retired")
}
