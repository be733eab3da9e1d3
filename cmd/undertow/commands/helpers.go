package commands

import (
	"fmt"

	"github.com/spf13/afero"

	"github.com/undertow-db/undertow/internal/config"
	"github.com/undertow-db/undertow/query/ast"
	"github.com/undertow-db/undertow/query/parse"
	"github.com/undertow-db/undertow/schema"
)

// schemaPath resolves the schema location: an explicit flag wins,
// otherwise the configured default applies.
func schemaPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return cfg.SchemaPath
}

// loadCatalog reads and validates the schema file.
func loadCatalog(path string) (*schema.Catalog, error) {
	loader := &schema.Loader{Fs: config.AppFs}
	catalog, err := loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema %s: %w", path, err)
	}
	return catalog, nil
}

// readQuery decodes the query specification from an inline argument or a
// file. Absent both, the empty query applies.
func readQuery(args []string, file string) (*ast.Query, error) {
	data := []byte("{}")

	switch {
	case file != "":
		contents, err := afero.ReadFile(config.AppFs, file)
		if err != nil {
			return nil, fmt.Errorf("failed to read query file %s: %w", file, err)
		}
		data = contents
	case len(args) > 0:
		data = []byte(args[0])
	}

	return parse.Query(data)
}
