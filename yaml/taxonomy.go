// Package yaml loads the records category taxonomy from YAML documents.
package yaml

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"github.com/fwojciec/opra"
	"gopkg.in/yaml.v3"
)

//go:embed taxonomy.yaml
var defaultTaxonomy []byte

// document is the on-disk taxonomy layout.
type document struct {
	Categories []opra.Category `yaml:"categories"`
}

// DefaultTaxonomy returns the built-in taxonomy.
func DefaultTaxonomy() (*opra.Taxonomy, error) {
	return ParseTaxonomy(bytes.NewReader(defaultTaxonomy))
}

// LoadTaxonomy reads a taxonomy from a file. An empty path loads the
// built-in taxonomy.
func LoadTaxonomy(path string) (*opra.Taxonomy, error) {
	if path == "" {
		return DefaultTaxonomy()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open taxonomy: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseTaxonomy(f)
}

// ParseTaxonomy decodes a taxonomy document. Unknown fields are rejected so
// typos in hand-edited files surface at startup.
func ParseTaxonomy(r io.Reader) (*opra.Taxonomy, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, opra.Errorf(opra.EINVALID, "taxonomy is empty")
		}
		return nil, opra.Errorf(opra.EINVALID, "parse taxonomy: %v", err)
	}
	if len(doc.Categories) == 0 {
		return nil, opra.Errorf(opra.EINVALID, "taxonomy has no categories")
	}
	return opra.NewTaxonomy(doc.Categories)
}
