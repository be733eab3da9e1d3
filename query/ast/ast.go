// Package ast defines the adapter-agnostic query specification tree.
//
// A Query describes filter conditions, sort order, pagination, and the
// associations the caller wants eager-loaded. The tree carries no SQL;
// compilation into dialect-specific text is the job of query/criteria and
// query/compiler.
package ast

// Query is a query specification for a single table.
type Query struct {
	Where *Clause
	Sort  []SortEntry
	Skip  int
	Limit int // 0 means no limit

	// Populates lists the associations to eager-load, in the order the
	// caller wants them emitted. Order is part of the contract: joins and
	// subquery descriptors are produced in exactly this order.
	Populates []Populate
}

// HasWhere reports whether the query declares a non-empty filter.
func (q *Query) HasWhere() bool {
	return q != nil && q.Where != nil && !q.Where.IsEmpty()
}

// WithoutPopulates returns a shallow copy of the query with association
// instructions removed, so join metadata never leaks into expression
// compilation. The receiver is not modified.
func (q *Query) WithoutPopulates() *Query {
	if q == nil {
		return &Query{}
	}
	out := *q
	out.Populates = nil
	return &out
}

// WithSort returns the query itself when it already declares a sort, or a
// shallow copy sorted by the given attribute otherwise. The receiver is
// never modified; callers own their specifications.
func (q *Query) WithSort(attr string, dir SortDirection) *Query {
	if q == nil {
		return &Query{Sort: []SortEntry{{Attr: attr, Dir: dir}}}
	}
	if len(q.Sort) > 0 {
		return q
	}
	out := *q
	out.Sort = []SortEntry{{Attr: attr, Dir: dir}}
	return &out
}

// SortEntry is one ORDER BY term.
type SortEntry struct {
	Attr string
	Dir  SortDirection
}

// SortDirection represents sort direction.
type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// Populate is an association eager-load instruction. The three strategies
// form a closed set: ParentJoin (the parent table owns the foreign key,
// compiled as a flat join), ChildJoin (the child owns the key, compiled as
// a correlated subquery so its own pagination stays independent), and
// ThroughJoin (many-to-many through a junction table, compiled as a
// two-stage correlated subquery).
type Populate interface {
	// Name returns the association name the loaded records are grouped
	// under.
	Name() string

	populate()
}

// JoinStep describes one hop of an association: the parent-side table and
// key, the child-side table and key, and (on the step that carries them)
// the association's own filter, sort, and pagination.
type JoinStep struct {
	Parent    string
	ParentKey string
	Child     string
	ChildKey  string
	Criteria  *Query
}

// ParentJoin is an association whose foreign key lives on the parent table.
type ParentJoin struct {
	Relation string
	Step     JoinStep
}

func (p ParentJoin) Name() string { return p.Relation }
func (ParentJoin) populate()      {}

// ChildJoin is an association whose foreign key lives on the child table.
// Step.Criteria carries the association's own filter/sort/pagination.
type ChildJoin struct {
	Relation string
	Step     JoinStep
}

func (c ChildJoin) Name() string { return c.Relation }
func (ChildJoin) populate()      {}

// ThroughJoin is a many-to-many association traversed through a junction
// table. Link joins the parent to the junction table; Target joins the
// junction table to the target table and carries the association's
// criteria.
type ThroughJoin struct {
	Relation string
	Link     JoinStep
	Target   JoinStep
}

func (t ThroughJoin) Name() string { return t.Relation }
func (ThroughJoin) populate()      {}
