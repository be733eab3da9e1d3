package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/undertow-db/undertow/internal/ui"
)

var validateCmd = &cobra.Command{
	Use:   "validate [schema-path]",
	Short: "Validate a schema file",
	Long: `Validate a schema file for structural errors.

This command will:
- Parse the schema YAML
- Check each table for a name, unique attributes, and a single primary key
- Display a summary of the catalog`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

var validateSchemaPath string

func init() {
	validateCmd.Flags().StringVarP(&validateSchemaPath, "schema", "s", "", "Path to schema file")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := validateSchemaPath
	if len(args) > 0 {
		path = args[0]
	}
	path = schemaPath(path)

	ui.PrintHeader("Undertow", "Validate Schema")

	catalog, err := loadCatalog(path)
	if err != nil {
		ui.PrintError("Schema validation failed")
		return err
	}

	absPath, _ := filepath.Abs(path)
	ui.PrintSuccess("Schema is valid: %s", absPath)

	tables := catalog.Tables()
	fmt.Println()
	ui.PrintSection("Tables")
	for _, tbl := range tables {
		pk := "no primary key"
		if attr, err := tbl.PrimaryKey(); err == nil {
			pk = "pk " + attr.Name
		}
		ui.PrintInfo("%s (%d columns, %s)", tbl.Name, len(tbl.Columns()), pk)
	}

	return nil
}
