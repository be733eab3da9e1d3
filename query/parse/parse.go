// Package parse decodes wire-format (JSON) query specifications into the
// ast tree.
//
// The criteria language mirrors what adapters receive from callers:
// attribute keys paired with a scalar (equality), an array (IN), or a
// modifier object, plus "and"/"or" arrays and "not" groups. Attribute and
// modifier keys are walked in sorted order so compiled SQL is
// deterministic regardless of JSON object layout.
package parse

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/undertow-db/undertow/query/ast"
)

// modifiers maps wire operator names onto ast operators.
var modifiers = map[string]ast.Operator{
	"<":          ast.OpLt,
	"<=":         ast.OpLte,
	">":          ast.OpGt,
	">=":         ast.OpGte,
	"!":          ast.OpNe,
	"in":         ast.OpIn,
	"nin":        ast.OpNotIn,
	"like":       ast.OpLike,
	"contains":   ast.OpContains,
	"startsWith": ast.OpStartsWith,
	"endsWith":   ast.OpEndsWith,
}

type queryJSON struct {
	Where    json.RawMessage `json:"where"`
	Sort     []sortJSON      `json:"sort"`
	Skip     int             `json:"skip"`
	Limit    int             `json:"limit"`
	Populate []populateJSON  `json:"populate"`
}

type sortJSON struct {
	Attr string `json:"attr"`
	Dir  string `json:"dir"`
}

type populateJSON struct {
	Name     string    `json:"name"`
	Strategy string    `json:"strategy"`
	Join     *stepJSON `json:"join"`
	Link     *stepJSON `json:"link"`
	Target   *stepJSON `json:"target"`
}

type stepJSON struct {
	Parent    string          `json:"parent"`
	ParentKey string          `json:"parentKey"`
	Child     string          `json:"child"`
	ChildKey  string          `json:"childKey"`
	Criteria  json.RawMessage `json:"criteria"`
}

// Query decodes a JSON query specification.
func Query(data []byte) (*ast.Query, error) {
	var qj queryJSON
	if err := json.Unmarshal(data, &qj); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return buildQuery(&qj)
}

func buildQuery(qj *queryJSON) (*ast.Query, error) {
	q := &ast.Query{Skip: qj.Skip, Limit: qj.Limit}

	if len(qj.Where) > 0 && string(qj.Where) != "null" {
		var raw map[string]interface{}
		if err := json.Unmarshal(qj.Where, &raw); err != nil {
			return nil, fmt.Errorf("parse: where: %w", err)
		}
		clause, err := buildClause(raw)
		if err != nil {
			return nil, err
		}
		if !clause.IsEmpty() {
			q.Where = clause
		}
	}

	for _, s := range qj.Sort {
		if s.Attr == "" {
			return nil, fmt.Errorf("parse: sort entry missing attr")
		}
		dir := ast.SortAsc
		if strings.EqualFold(s.Dir, "desc") {
			dir = ast.SortDesc
		}
		q.Sort = append(q.Sort, ast.SortEntry{Attr: s.Attr, Dir: dir})
	}

	for _, p := range qj.Populate {
		pop, err := buildPopulate(p)
		if err != nil {
			return nil, err
		}
		q.Populates = append(q.Populates, pop)
	}

	return q, nil
}

func buildPopulate(p populateJSON) (ast.Populate, error) {
	if p.Name == "" {
		return nil, fmt.Errorf("parse: populate instruction missing name")
	}

	switch p.Strategy {
	case "parent":
		step, err := buildStep(p.Join, p.Name)
		if err != nil {
			return nil, err
		}
		return ast.ParentJoin{Relation: p.Name, Step: step}, nil

	case "child":
		step, err := buildStep(p.Join, p.Name)
		if err != nil {
			return nil, err
		}
		return ast.ChildJoin{Relation: p.Name, Step: step}, nil

	case "junction":
		link, err := buildStep(p.Link, p.Name)
		if err != nil {
			return nil, err
		}
		target, err := buildStep(p.Target, p.Name)
		if err != nil {
			return nil, err
		}
		return ast.ThroughJoin{Relation: p.Name, Link: link, Target: target}, nil

	default:
		return nil, fmt.Errorf("parse: populate %q: unknown strategy %q", p.Name, p.Strategy)
	}
}

func buildStep(s *stepJSON, relation string) (ast.JoinStep, error) {
	if s == nil {
		return ast.JoinStep{}, fmt.Errorf("parse: populate %q: missing join step", relation)
	}
	if s.Parent == "" || s.ParentKey == "" || s.Child == "" || s.ChildKey == "" {
		return ast.JoinStep{}, fmt.Errorf("parse: populate %q: join step requires parent, parentKey, child, childKey", relation)
	}

	step := ast.JoinStep{
		Parent:    s.Parent,
		ParentKey: s.ParentKey,
		Child:     s.Child,
		ChildKey:  s.ChildKey,
	}

	if len(s.Criteria) > 0 && string(s.Criteria) != "null" {
		var nested queryJSON
		if err := json.Unmarshal(s.Criteria, &nested); err != nil {
			return ast.JoinStep{}, fmt.Errorf("parse: populate %q criteria: %w", relation, err)
		}
		crit, err := buildQuery(&nested)
		if err != nil {
			return ast.JoinStep{}, err
		}
		step.Criteria = crit
	}

	return step, nil
}

func buildClause(raw map[string]interface{}) (*ast.Clause, error) {
	clause := ast.NewClause()

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := raw[key]

		switch strings.ToLower(key) {
		case "and", "or":
			items, ok := value.([]interface{})
			if !ok {
				return nil, fmt.Errorf("parse: %q expects an array, got %T", key, value)
			}
			group := &ast.Clause{Op: ast.And}
			if strings.EqualFold(key, "or") {
				group.Op = ast.Or
			}
			for _, item := range items {
				m, ok := item.(map[string]interface{})
				if !ok {
					return nil, fmt.Errorf("parse: %q entries must be objects, got %T", key, item)
				}
				sub, err := buildClause(m)
				if err != nil {
					return nil, err
				}
				group.AddGroup(sub)
			}
			clause.AddGroup(group)

		case "not":
			m, ok := value.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("parse: \"not\" expects an object, got %T", value)
			}
			sub, err := buildClause(m)
			if err != nil {
				return nil, err
			}
			sub.Not = true
			clause.AddGroup(sub)

		default:
			conds, err := buildConditions(key, value)
			if err != nil {
				return nil, err
			}
			for _, c := range conds {
				clause.AddCondition(c)
			}
		}
	}

	return clause, nil
}

func buildConditions(attr string, value interface{}) ([]ast.Condition, error) {
	switch v := value.(type) {
	case map[string]interface{}:
		ops := make([]string, 0, len(v))
		for op := range v {
			ops = append(ops, op)
		}
		sort.Strings(ops)

		conds := make([]ast.Condition, 0, len(ops))
		for _, op := range ops {
			astOp, ok := modifiers[op]
			if !ok {
				return nil, fmt.Errorf("parse: attribute %q: unknown modifier %q", attr, op)
			}
			conds = append(conds, ast.Condition{Attr: attr, Op: astOp, Value: v[op]})
		}
		return conds, nil

	case []interface{}:
		// Bare array is IN shorthand.
		return []ast.Condition{{Attr: attr, Op: ast.OpIn, Value: v}}, nil

	default:
		return []ast.Condition{{Attr: attr, Op: ast.OpEq, Value: value}}, nil
	}
}
