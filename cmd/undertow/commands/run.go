package commands

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/undertow-db/undertow/query/compiler"
	"github.com/undertow-db/undertow/query/dialect"
	"github.com/undertow-db/undertow/query/executor"
)

var runCmd = &cobra.Command{
	Use:   "run <table> [query-json]",
	Short: "Run a query specification against a database",
	Long: `Compile a query specification and execute it, printing the
result records as JSON. Associations are eager-loaded and nested under
their relation names.

The connection string comes from --url, the UNDERTOW config file, or
the DATABASE_URL environment variable (a .env file is honored).`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runRun,
}

var (
	runSchemaPath string
	runProvider   string
	runQueryFile  string
	runURL        string
)

func init() {
	runCmd.Flags().StringVarP(&runSchemaPath, "schema", "s", "", "Path to schema file")
	runCmd.Flags().StringVarP(&runProvider, "provider", "p", "", "SQL provider (postgres, mysql, sqlite)")
	runCmd.Flags().StringVarP(&runQueryFile, "file", "f", "", "Read the query specification from a file")
	runCmd.Flags().StringVar(&runURL, "url", "", "Database connection string")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	table := args[0]

	catalog, err := loadCatalog(schemaPath(runSchemaPath))
	if err != nil {
		return err
	}

	q, err := readQuery(args[1:], runQueryFile)
	if err != nil {
		return err
	}

	provider := runProvider
	if provider == "" {
		provider = cfg.Provider
	}

	url := runURL
	if url == "" {
		url = cfg.DatabaseURL
	}
	if url == "" {
		return fmt.Errorf("no database URL: pass --url or set DATABASE_URL")
	}

	db, err := sql.Open(driverFor(provider), url)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	d := dialect.ByName(provider)
	e := executor.New(db, compiler.New(catalog, d))

	records, err := e.Find(cmd.Context(), table, q)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// driverFor maps a provider name onto its database/sql driver.
func driverFor(provider string) string {
	switch dialect.ByName(provider).Name() {
	case dialect.MySQL:
		return "mysql"
	case dialect.SQLite:
		return "sqlite3"
	default:
		return "postgres"
	}
}
