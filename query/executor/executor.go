// Package executor assembles compiled query fragments into full
// statements, runs them, and stitches eager-loaded association rows onto
// their parent records.
package executor

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/undertow-db/undertow/internal/debug"
	"github.com/undertow-db/undertow/query/ast"
	"github.com/undertow-db/undertow/query/compiler"
)

// Record is one result row keyed by column or association name.
type Record = map[string]interface{}

// Executor runs compiled queries against a database handle.
type Executor struct {
	db       *sql.DB
	compiler *compiler.Compiler
}

// New creates an executor.
func New(db *sql.DB, c *compiler.Compiler) *Executor {
	return &Executor{db: db, compiler: c}
}

// Find compiles and runs a query against table. Parent-owns-key
// associations arrive flattened into the outer statement and are folded
// into one nested record per row; child-owns-key and junction
// associations are loaded through their correlated-subquery templates,
// resolved once per parent row, and grouped under the association name.
func (e *Executor) Find(ctx context.Context, table string, q *ast.Query) ([]Record, error) {
	flat, err := e.compiler.Compile(table, q)
	if err != nil {
		return nil, err
	}

	stmt, flattened, err := e.selectStatement(table, q, flat.Query)
	if err != nil {
		return nil, err
	}

	debug.Debug("executing find", "table", table, "sql", stmt, "values", flat.Values)
	rows, err := e.db.QueryContext(ctx, stmt, flat.Values...)
	if err != nil {
		return nil, fmt.Errorf("executor: query %s: %w", table, err)
	}
	defer rows.Close()

	records, err := scanRows(rows)
	if err != nil {
		return nil, err
	}

	foldJoinedColumns(records, flattened)

	subs, err := e.compiler.CompileSubqueries(table, q)
	if err != nil {
		return nil, err
	}
	for _, sub := range subs {
		if err := e.loadAssociation(ctx, sub, records); err != nil {
			return nil, err
		}
	}

	return records, nil
}

// selectStatement builds the outer SELECT: the parent's non-collection
// columns plus, per flat-joined association, the child's columns under
// <assoc>__<col> aliases. Returns the association names that were
// flattened into the projection.
func (e *Executor) selectStatement(table string, q *ast.Query, fragment string) (string, []string, error) {
	d := e.compiler.Dialect()

	tbl, err := e.compiler.Catalog().Table(table)
	if err != nil {
		return "", nil, err
	}

	var cols []string
	for _, name := range tbl.Columns() {
		cols = append(cols, d.Escape(table)+"."+d.Escape(name))
	}

	var flattened []string
	if q != nil {
		for _, p := range q.Populates {
			join, ok := p.(ast.ParentJoin)
			if !ok {
				continue
			}
			child, err := e.compiler.Catalog().Table(join.Step.Child)
			if err != nil {
				return "", nil, err
			}
			for _, name := range child.Columns() {
				cols = append(cols, fmt.Sprintf("%s.%s AS %s",
					d.Escape(join.Step.Child), d.Escape(name),
					d.Escape(join.Relation+"__"+name)))
			}
			flattened = append(flattened, join.Relation)
		}
	}

	stmt := fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), d.Escape(table))
	if fragment != "" {
		stmt += " " + fragment
	}
	return stmt, flattened, nil
}

// loadAssociation resolves one subquery template per parent record and
// attaches the returned rows under the association name.
func (e *Executor) loadAssociation(ctx context.Context, sub compiler.Subquery, records []Record) error {
	parentKey, linkAlias, err := correlation(sub.Instruction)
	if err != nil {
		return err
	}

	for _, rec := range records {
		keyVal, ok := rec[parentKey]
		if !ok {
			return fmt.Errorf("executor: association %q: parent row missing key %q", sub.Relation, parentKey)
		}

		stmt, args := resolveTemplate(sub.Template, keyVal, sub.Values, e.compiler.Dialect())
		debug.Debug("loading association", "relation", sub.Relation, "sql", stmt, "values", args)

		rows, err := e.db.QueryContext(ctx, stmt, args...)
		if err != nil {
			return fmt.Errorf("executor: association %q: %w", sub.Relation, err)
		}
		children, scanErr := scanRows(rows)
		rows.Close()
		if scanErr != nil {
			return scanErr
		}

		if linkAlias != "" {
			for _, child := range children {
				delete(child, linkAlias)
			}
		}
		rec[sub.Relation] = children
	}
	return nil
}

// correlation returns the parent-side attribute whose value correlates
// each subquery run, and (for junction loads) the reserved alias column
// to strip from child rows.
func correlation(inst ast.Populate) (parentKey, linkAlias string, err error) {
	switch i := inst.(type) {
	case ast.ChildJoin:
		return i.Step.ParentKey, "", nil
	case ast.ThroughJoin:
		return i.Link.ParentKey, "___" + i.Link.ChildKey, nil
	default:
		return "", "", fmt.Errorf("executor: association %q has no subquery strategy", inst.Name())
	}
}

// foldJoinedColumns regroups <assoc>__<col> aliases into one nested
// record per flattened association.
func foldJoinedColumns(records []Record, flattened []string) {
	if len(flattened) == 0 {
		return
	}
	for _, rec := range records {
		for _, relation := range flattened {
			prefix := relation + "__"
			nested := Record{}
			for col, val := range rec {
				if strings.HasPrefix(col, prefix) && len(col) > len(prefix) {
					nested[strings.TrimPrefix(col, prefix)] = val
					delete(rec, col)
				}
			}
			rec[relation] = nested
		}
	}
}

// scanRows reads all rows into maps, converting []byte columns to
// strings.
func scanRows(rows *sql.Rows) ([]Record, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("executor: columns: %w", err)
	}

	var results []Record
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("executor: scan: %w", err)
		}

		rec := make(Record, len(columns))
		for i, col := range columns {
			switch v := values[i].(type) {
			case []byte:
				rec[col] = string(v)
			default:
				rec[col] = v
			}
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("executor: rows: %w", err)
	}
	return results, nil
}
