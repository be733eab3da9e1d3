// Package criteria compiles filter, sort, and pagination specifications
// into SQL text with an ordered bind-value list.
//
// The compiler never emits a dangling boolean connector: predicate
// fragments are collected first and joined with the clause connective
// explicitly.
package criteria

import (
	"errors"
	"fmt"
	"strings"

	"github.com/undertow-db/undertow/query/ast"
	"github.com/undertow-db/undertow/query/dialect"
)

// ErrUnsupportedOperator is returned for operators the compiler does not
// recognize.
var ErrUnsupportedOperator = errors.New("criteria: unsupported operator")

// Parsed is a compiled criteria fragment: SQL text plus the values bound
// to its positional markers, in marker order. HasPredicates reports
// whether the fragment opens with filter predicates; a where built only
// from skippable conditions (empty IN lists) produces none, so callers
// must not rely on the specification's own where-emptiness.
type Parsed struct {
	Query         string
	Values        []interface{}
	HasPredicates bool
}

// Compiler compiles criteria for one dialect. It is stateless and safe
// for concurrent use.
type Compiler struct {
	dialect dialect.Dialect
}

// NewCompiler creates a criteria compiler for the given dialect.
func NewCompiler(d dialect.Dialect) *Compiler {
	return &Compiler{dialect: d}
}

// Compile renders the query's filter, sort, and pagination as a single
// fragment: predicates, then ORDER BY, then LIMIT and OFFSET. Limit and
// skip are bound as parameters. Association instructions on the query are
// ignored; callers strip them beforehand.
func (c *Compiler) Compile(table string, q *ast.Query) (*Parsed, error) {
	if q == nil {
		q = &ast.Query{}
	}

	values := []interface{}{}
	argIndex := 1
	var parts []string

	hasPredicates := false
	if q.HasWhere() {
		predSQL, predArgs, err := c.buildClause(table, q.Where, &argIndex)
		if err != nil {
			return nil, err
		}
		if predSQL != "" {
			parts = append(parts, predSQL)
			values = append(values, predArgs...)
			hasPredicates = true
		}
	}

	if len(q.Sort) > 0 {
		terms := make([]string, len(q.Sort))
		for i, s := range q.Sort {
			dir := ast.SortAsc
			if s.Dir == ast.SortDesc {
				dir = ast.SortDesc
			}
			terms[i] = fmt.Sprintf("%s %s", c.column(table, s.Attr), dir)
		}
		parts = append(parts, "ORDER BY "+strings.Join(terms, ", "))
	}

	if q.Limit > 0 {
		parts = append(parts, "LIMIT "+c.dialect.Placeholder(argIndex))
		values = append(values, q.Limit)
		argIndex++
	}
	if q.Skip > 0 {
		parts = append(parts, "OFFSET "+c.dialect.Placeholder(argIndex))
		values = append(values, q.Skip)
		argIndex++
	}

	return &Parsed{Query: strings.Join(parts, " "), Values: values, HasPredicates: hasPredicates}, nil
}

func (c *Compiler) buildClause(table string, clause *ast.Clause, argIndex *int) (string, []interface{}, error) {
	if clause.IsEmpty() {
		return "", nil, nil
	}

	var fragments []string
	var args []interface{}

	for _, cond := range clause.Conditions {
		sql, condArgs, err := c.buildCondition(table, cond, argIndex)
		if err != nil {
			return "", nil, err
		}
		if sql == "" {
			continue
		}
		fragments = append(fragments, sql)
		args = append(args, condArgs...)
	}

	for _, group := range clause.Groups {
		sql, groupArgs, err := c.buildClause(table, group, argIndex)
		if err != nil {
			return "", nil, err
		}
		if sql == "" {
			continue
		}
		fragments = append(fragments, "("+sql+")")
		args = append(args, groupArgs...)
	}

	if len(fragments) == 0 {
		return "", nil, nil
	}

	result := strings.Join(fragments, " "+string(clause.Connective())+" ")
	if clause.Not {
		result = "NOT (" + result + ")"
	}
	return result, args, nil
}

func (c *Compiler) buildCondition(table string, cond ast.Condition, argIndex *int) (string, []interface{}, error) {
	col := c.column(table, cond.Attr)

	switch cond.Op {
	case ast.OpEq, ast.OpNe, ast.OpLt, ast.OpLte, ast.OpGt, ast.OpGte:
		if cond.Value == nil {
			// NULL never compares equal through a bind marker.
			switch cond.Op {
			case ast.OpEq:
				return col + " IS NULL", nil, nil
			case ast.OpNe:
				return col + " IS NOT NULL", nil, nil
			}
		}
		sql := fmt.Sprintf("%s %s %s", col, cond.Op, c.dialect.Placeholder(*argIndex))
		(*argIndex)++
		return sql, []interface{}{cond.Value}, nil

	case ast.OpIn, ast.OpNotIn:
		values, ok := cond.Value.([]interface{})
		if !ok {
			return "", nil, fmt.Errorf("criteria: %s value for %q must be a slice, got %T", cond.Op, cond.Attr, cond.Value)
		}
		if len(values) == 0 {
			return "", nil, nil
		}
		markers := make([]string, len(values))
		for i := range values {
			markers[i] = c.dialect.Placeholder(*argIndex)
			(*argIndex)++
		}
		return fmt.Sprintf("%s %s (%s)", col, cond.Op, strings.Join(markers, ", ")), values, nil

	case ast.OpLike:
		sql := fmt.Sprintf("%s LIKE %s", col, c.dialect.Placeholder(*argIndex))
		(*argIndex)++
		return sql, []interface{}{cond.Value}, nil

	case ast.OpContains:
		return c.likePattern(col, "%"+stringify(cond.Value)+"%", argIndex)

	case ast.OpStartsWith:
		return c.likePattern(col, stringify(cond.Value)+"%", argIndex)

	case ast.OpEndsWith:
		return c.likePattern(col, "%"+stringify(cond.Value), argIndex)

	case ast.OpIsNull:
		return col + " IS NULL", nil, nil

	case ast.OpIsNotNull:
		return col + " IS NOT NULL", nil, nil

	default:
		return "", nil, fmt.Errorf("%w: %q on attribute %q", ErrUnsupportedOperator, cond.Op, cond.Attr)
	}
}

func (c *Compiler) likePattern(col, pattern string, argIndex *int) (string, []interface{}, error) {
	sql := fmt.Sprintf("%s LIKE %s", col, c.dialect.Placeholder(*argIndex))
	(*argIndex)++
	return sql, []interface{}{pattern}, nil
}

func (c *Compiler) column(table, attr string) string {
	if table == "" {
		return c.dialect.Escape(attr)
	}
	return c.dialect.Escape(table) + "." + c.dialect.Escape(attr)
}

func stringify(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
