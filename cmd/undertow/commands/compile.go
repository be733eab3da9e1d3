package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/undertow-db/undertow/internal/ui"
	"github.com/undertow-db/undertow/query/compiler"
	"github.com/undertow-db/undertow/query/dialect"
)

var compileCmd = &cobra.Command{
	Use:   "compile <table> [query-json]",
	Short: "Compile a query specification to SQL",
	Long: `Compile a query specification against a schema and print the
resulting SQL without touching a database.

The output is the flat join-and-filter fragment with its ordered bind
values, followed by one correlated subquery template per association
that cannot be flat-joined. Subquery templates carry the ^?^ marker
where the parent row's key is bound at execution time.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runCompile,
}

var (
	compileSchemaPath string
	compileProvider   string
	compileQueryFile  string
)

func init() {
	compileCmd.Flags().StringVarP(&compileSchemaPath, "schema", "s", "", "Path to schema file")
	compileCmd.Flags().StringVarP(&compileProvider, "provider", "p", "", "SQL provider (postgres, mysql, sqlite)")
	compileCmd.Flags().StringVarP(&compileQueryFile, "file", "f", "", "Read the query specification from a file")

	rootCmd.AddCommand(compileCmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	table := args[0]

	catalog, err := loadCatalog(schemaPath(compileSchemaPath))
	if err != nil {
		return err
	}

	q, err := readQuery(args[1:], compileQueryFile)
	if err != nil {
		return err
	}

	provider := compileProvider
	if provider == "" {
		provider = cfg.Provider
	}
	c := compiler.New(catalog, dialect.ByName(provider))

	compiled, err := c.Compile(table, q)
	if err != nil {
		return fmt.Errorf("failed to compile query for %s: %w", table, err)
	}

	ui.PrintHeader("Undertow", "Compile Query")
	ui.PrintSQL("Statement", compiled.Query, compiled.Values)

	subs, err := c.CompileSubqueries(table, q)
	if err != nil {
		return err
	}
	for _, sub := range subs {
		ui.PrintSQL(fmt.Sprintf("Association %q", sub.Relation), sub.Template, sub.Values)
	}

	return nil
}
