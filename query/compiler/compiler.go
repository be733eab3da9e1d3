// Package compiler turns query specifications into SQL fragments.
//
// Associations are compiled by strategy. Parent-owns-key associations
// become flat LEFT OUTER JOINs and travel with the filter clause produced
// by Compile. Child-owns-key and junction associations cannot be flattened
// without breaking their own pagination, so CompileSubqueries emits one
// correlated-subquery template per such association; the downstream
// assembly layer substitutes a per-row value for the Placeholder marker at
// execution time.
package compiler

import (
	"fmt"
	"strings"

	"github.com/undertow-db/undertow/query/ast"
	"github.com/undertow-db/undertow/query/criteria"
	"github.com/undertow-db/undertow/query/dialect"
	"github.com/undertow-db/undertow/schema"
)

// Placeholder is the marker in a subquery template standing for the
// per-outer-row correlating value. It is resolved by the assembly layer,
// never by this package.
const Placeholder = "^?^"

// CompiledQuery is the flat-path output: a join+filter fragment and the
// values bound to its positional markers.
type CompiledQuery struct {
	Query  string
	Values []interface{}
}

// Subquery is one correlated-subquery template. Template contains exactly
// one Placeholder marker; Values excludes the placeholder value.
type Subquery struct {
	Template    string
	Relation    string
	Instruction ast.Populate
	Values      []interface{}
}

// Compiler compiles query specifications against a schema catalog for one
// dialect. It is stateless apart from its read-only collaborators and safe
// for concurrent use; input specifications are never mutated.
type Compiler struct {
	catalog  *schema.Catalog
	dialect  dialect.Dialect
	criteria *criteria.Compiler
}

// New creates a compiler.
func New(catalog *schema.Catalog, d dialect.Dialect) *Compiler {
	return &Compiler{
		catalog:  catalog,
		dialect:  d,
		criteria: criteria.NewCompiler(d),
	}
}

// Dialect returns the compiler's dialect.
func (c *Compiler) Dialect() dialect.Dialect { return c.dialect }

// Catalog returns the compiler's schema catalog.
func (c *Compiler) Catalog() *schema.Catalog { return c.catalog }

// Compile produces the flat join+filter fragment for a query against
// table. Parent-owns-key associations are emitted as LEFT OUTER JOINs in
// instruction order; child-owns-key and junction associations are skipped
// here and handled by CompileSubqueries. A query without an explicit sort
// is compiled as if sorted by the table's primary key, descending; the
// caller's specification is left untouched.
func (c *Compiler) Compile(table string, q *ast.Query) (*CompiledQuery, error) {
	if q == nil {
		q = &ast.Query{}
	}

	var sb strings.Builder
	for _, p := range q.Populates {
		join, ok := p.(ast.ParentJoin)
		if !ok {
			continue
		}
		s := join.Step
		fmt.Fprintf(&sb, "LEFT OUTER JOIN %s ON %s.%s = %s.%s ",
			c.dialect.Escape(s.Child),
			c.dialect.Escape(s.Parent), c.dialect.Escape(s.ParentKey),
			c.dialect.Escape(s.Child), c.dialect.Escape(s.ChildKey))
	}

	flat := q.WithoutPopulates()
	if len(flat.Sort) == 0 {
		pk, err := c.primaryKey(table)
		if err != nil {
			return nil, err
		}
		flat = flat.WithSort(pk, ast.SortDesc)
	}

	parsed, err := c.criteria.Compile(table, flat)
	if err != nil {
		return nil, err
	}

	query := sb.String()
	if parsed.HasPredicates {
		query += "WHERE "
	}
	query = trimConnector(query + parsed.Query)

	values := parsed.Values
	if values == nil {
		values = []interface{}{}
	}
	return &CompiledQuery{Query: query, Values: values}, nil
}

func (c *Compiler) primaryKey(table string) (string, error) {
	t, err := c.catalog.Table(table)
	if err != nil {
		return "", err
	}
	pk, err := t.PrimaryKey()
	if err != nil {
		return "", err
	}
	return pk.Name, nil
}

// trimConnector strips a single trailing "AND " then a single trailing
// "OR " left behind by incremental expression concatenation upstream.
// Text ending in neither is returned unchanged.
func trimConnector(s string) string {
	s = strings.TrimSuffix(s, "AND ")
	s = strings.TrimSuffix(s, "OR ")
	return s
}
