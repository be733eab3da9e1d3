package compiler

import (
	"fmt"
	"strings"

	"github.com/undertow-db/undertow/query/ast"
)

// CompileSubqueries produces one correlated-subquery template per
// child-owns-key or junction association, in instruction order.
// Parent-owns-key associations produce nothing here. Nested criteria are
// compiled exactly one association level deep; instructions inside them
// are not traversed.
func (c *Compiler) CompileSubqueries(table string, q *ast.Query) ([]Subquery, error) {
	if q == nil {
		return nil, nil
	}

	var out []Subquery
	for _, p := range q.Populates {
		switch inst := p.(type) {
		case ast.ChildJoin:
			sq, err := c.childSubquery(inst)
			if err != nil {
				return nil, err
			}
			out = append(out, sq)
		case ast.ThroughJoin:
			sq, err := c.junctionSubquery(inst)
			if err != nil {
				return nil, err
			}
			out = append(out, sq)
		}
	}
	return out, nil
}

// childSubquery emits the single-step shape: the child table filtered by
// its foreign key back to the parent row.
func (c *Compiler) childSubquery(inst ast.ChildJoin) (Subquery, error) {
	step := inst.Step

	parsed, err := c.nestedCriteria(step.Child, step.Criteria)
	if err != nil {
		return Subquery{}, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "(SELECT * FROM %s WHERE %s = %s",
		c.dialect.Escape(step.Child), c.dialect.Escape(step.ChildKey), Placeholder)
	appendCriteria(&sb, parsed.HasPredicates, parsed.Query)
	sb.WriteString(")")

	return Subquery{
		Template:    sb.String(),
		Relation:    inst.Relation,
		Instruction: inst,
		Values:      parsed.Values,
	}, nil
}

// junctionSubquery emits the two-stage shape: the target table inner-joined
// to the junction table, correlated back to the parent row through an IN
// subselect on the junction. The junction's key toward the parent is
// projected under a "___"-prefixed alias so the assembly layer can group
// returned rows by owner without colliding with target columns.
func (c *Compiler) junctionSubquery(inst ast.ThroughJoin) (Subquery, error) {
	link, target := inst.Link, inst.Target

	targetTable, err := c.catalog.Table(target.Child)
	if err != nil {
		return Subquery{}, err
	}

	parsed, err := c.nestedCriteria(target.Child, target.Criteria)
	if err != nil {
		return Subquery{}, err
	}

	cols := make([]string, 0, len(targetTable.Attributes)+1)
	for _, name := range targetTable.Columns() {
		cols = append(cols, c.dialect.Escape(target.Child)+"."+c.dialect.Escape(name))
	}
	cols = append(cols, fmt.Sprintf("%s.%s AS %s",
		c.dialect.Escape(link.Child), c.dialect.Escape(link.ChildKey),
		c.dialect.Escape("___"+link.ChildKey)))

	var sb strings.Builder
	fmt.Fprintf(&sb, "(SELECT %s FROM %s", strings.Join(cols, ", "), c.dialect.Escape(target.Child))
	fmt.Fprintf(&sb, " INNER JOIN %s ON %s.%s = %s.%s",
		c.dialect.Escape(link.Child),
		c.dialect.Escape(target.Parent), c.dialect.Escape(target.ParentKey),
		c.dialect.Escape(target.Child), c.dialect.Escape(target.ChildKey))
	fmt.Fprintf(&sb, " WHERE %s.%s IN (SELECT %s.%s FROM %s WHERE %s.%s = %s)",
		c.dialect.Escape(target.Child), c.dialect.Escape(target.ChildKey),
		c.dialect.Escape(link.Child), c.dialect.Escape(target.ParentKey),
		c.dialect.Escape(link.Child),
		c.dialect.Escape(link.Child), c.dialect.Escape(link.ChildKey),
		Placeholder)
	appendCriteria(&sb, parsed.HasPredicates, parsed.Query)
	sb.WriteString(")")

	return Subquery{
		Template:    sb.String(),
		Relation:    inst.Relation,
		Instruction: inst,
		Values:      parsed.Values,
	}, nil
}

// nestedCriteria compiles an association's own criteria, instruction-free
// and defaulted to an ascending primary-key sort when the caller gave
// none.
func (c *Compiler) nestedCriteria(table string, q *ast.Query) (*criteriaResult, error) {
	nested := q.WithoutPopulates()
	if len(nested.Sort) == 0 {
		pk, err := c.primaryKey(table)
		if err != nil {
			return nil, err
		}
		nested = nested.WithSort(pk, ast.SortAsc)
	}

	parsed, err := c.criteria.Compile(table, nested)
	if err != nil {
		return nil, err
	}
	values := parsed.Values
	if values == nil {
		values = []interface{}{}
	}
	return &criteriaResult{Query: parsed.Query, Values: values, HasPredicates: parsed.HasPredicates}, nil
}

type criteriaResult struct {
	Query         string
	Values        []interface{}
	HasPredicates bool
}

// appendCriteria attaches a compiled nested fragment to a template: joined
// with AND when the association declared a filter, with a bare space when
// the fragment is sort/pagination only.
func appendCriteria(sb *strings.Builder, hasWhere bool, fragment string) {
	if fragment == "" {
		return
	}
	if hasWhere {
		sb.WriteString(" AND ")
	} else {
		sb.WriteString(" ")
	}
	sb.WriteString(fragment)
}
