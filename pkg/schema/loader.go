package schema

import (
	"fmt"
	"io"
	"io/fs"

	"gopkg.in/yaml.v3"
)

// formDocument is the YAML shape descriptor files are authored in. Fields are
// a sequence so file order carries through as render order.
type formDocument struct {
	Form   string `yaml:"form"`
	Fields []struct {
		Name            string `yaml:"name"`
		FieldDescriptor `yaml:",inline"`
	} `yaml:"fields"`
}

// Parse decodes a YAML form descriptor document. Authoring errors (unknown
// kinds, duplicate names, missing choices) fail the load; they are not the
// render-time no-op case.
func Parse(raw []byte) (*FormDescriptor, error) {
	var doc formDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("schema: parse descriptor document: %w", err)
	}
	if doc.Form == "" {
		return nil, fmt.Errorf("schema: descriptor document is missing a form name")
	}
	if len(doc.Fields) == 0 {
		return nil, fmt.Errorf("schema: form %q declares no fields", doc.Form)
	}

	descriptor := NewFormDescriptor(doc.Form)
	for _, entry := range doc.Fields {
		if err := descriptor.Add(entry.Name, entry.FieldDescriptor); err != nil {
			return nil, err
		}
	}
	return descriptor, nil
}

// ParseReader decodes a descriptor document from a stream.
func ParseReader(r io.Reader) (*FormDescriptor, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("schema: read descriptor document: %w", err)
	}
	return Parse(raw)
}

// Load reads a descriptor document from a filesystem.
func Load(files fs.FS, path string) (*FormDescriptor, error) {
	raw, err := fs.ReadFile(files, path)
	if err != nil {
		return nil, fmt.Errorf("schema: read %q: %w", path, err)
	}
	return Parse(raw)
}
