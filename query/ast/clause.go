package ast

// Clause is a boolean filter tree node. Direct conditions and nested
// groups are combined with the clause's connective; Not negates the whole
// node.
type Clause struct {
	Conditions []Condition
	Groups     []*Clause
	Op         Connective // defaults to And when empty
	Not        bool
}

// Condition is a single attribute comparison.
type Condition struct {
	Attr  string
	Op    Operator
	Value interface{}
}

// Connective joins conditions and groups within a clause.
type Connective string

const (
	And Connective = "AND"
	Or  Connective = "OR"
)

// Operator is a comparison operator on a single attribute.
type Operator string

const (
	OpEq         Operator = "="
	OpNe         Operator = "!="
	OpLt         Operator = "<"
	OpLte        Operator = "<="
	OpGt         Operator = ">"
	OpGte        Operator = ">="
	OpIn         Operator = "IN"
	OpNotIn      Operator = "NOT IN"
	OpLike       Operator = "LIKE"
	OpContains   Operator = "CONTAINS"
	OpStartsWith Operator = "STARTS WITH"
	OpEndsWith   Operator = "ENDS WITH"
	OpIsNull     Operator = "IS NULL"
	OpIsNotNull  Operator = "IS NOT NULL"
)

// NewClause creates an empty AND clause.
func NewClause() *Clause {
	return &Clause{Op: And}
}

// AddCondition appends a condition and returns the clause for chaining.
func (c *Clause) AddCondition(cond Condition) *Clause {
	c.Conditions = append(c.Conditions, cond)
	return c
}

// AddGroup appends a nested clause and returns the clause for chaining.
func (c *Clause) AddGroup(group *Clause) *Clause {
	c.Groups = append(c.Groups, group)
	return c
}

// Connective returns the effective connective, defaulting to And.
func (c *Clause) Connective() Connective {
	if c.Op == Or {
		return Or
	}
	return And
}

// IsEmpty reports whether the clause has no conditions and no groups.
func (c *Clause) IsEmpty() bool {
	return c == nil || (len(c.Conditions) == 0 && len(c.Groups) == 0)
}

// Eq is shorthand for an equality condition.
func Eq(attr string, value interface{}) Condition {
	return Condition{Attr: attr, Op: OpEq, Value: value}
}
