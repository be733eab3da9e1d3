package schema

import (
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// schemaFile is the on-disk YAML shape:
//
//	tables:
//	  user:
//	    attributes:
//	      - name: id
//	        type: integer
//	        primaryKey: true
//	      - name: pets
//	        collection: true
type schemaFile struct {
	Tables map[string]tableFile `yaml:"tables"`
}

type tableFile struct {
	Attributes []Attribute `yaml:"attributes"`
}

// Loader reads catalog definitions from YAML files. The filesystem is
// injectable for tests.
type Loader struct {
	Fs afero.Fs
}

// NewLoader creates a loader backed by the OS filesystem.
func NewLoader() *Loader {
	return &Loader{Fs: afero.NewOsFs()}
}

// Load reads and validates a schema file.
func (l *Loader) Load(path string) (*Catalog, error) {
	data, err := afero.ReadFile(l.Fs, path)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a catalog from YAML bytes.
func Parse(data []byte) (*Catalog, error) {
	var f schemaFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("schema: parse: %w", err)
	}
	if len(f.Tables) == 0 {
		return nil, fmt.Errorf("schema: no tables defined")
	}
	tables := make([]*Table, 0, len(f.Tables))
	for name, tf := range f.Tables {
		t, err := NewTable(name, tf.Attributes)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return NewCatalog(tables...), nil
}
