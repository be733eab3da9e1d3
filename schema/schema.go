// Package schema provides the read-only table catalog the query compiler
// resolves attributes against.
//
// A Catalog is built once, validated, and then only read; it is safe for
// concurrent use by any number of compilations.
package schema

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrUnknownTable is returned when a table is not in the catalog.
	ErrUnknownTable = errors.New("schema: unknown table")
	// ErrUnknownAttribute is returned when an attribute is not on a table.
	ErrUnknownAttribute = errors.New("schema: unknown attribute")
	// ErrNoPrimaryKey is returned when a table declares no primary key.
	ErrNoPrimaryKey = errors.New("schema: table has no primary key")
)

// Attribute is a single column or association attribute of a table.
type Attribute struct {
	Name       string `yaml:"name"`
	Type       string `yaml:"type"`
	PrimaryKey bool   `yaml:"primaryKey"`
	// Collection marks association attributes that have no physical
	// column on the table and are excluded from projections.
	Collection bool `yaml:"collection"`
}

// Table is a named, ordered attribute set. Attribute order follows the
// schema declaration and determines projection order.
type Table struct {
	Name       string
	Attributes []Attribute

	byName map[string]int
	pk     int
}

// NewTable builds a table from an ordered attribute list.
func NewTable(name string, attrs []Attribute) (*Table, error) {
	t := &Table{
		Name:       name,
		Attributes: attrs,
		byName:     make(map[string]int, len(attrs)),
		pk:         -1,
	}
	for i, a := range attrs {
		if a.Name == "" {
			return nil, fmt.Errorf("schema: table %q has an unnamed attribute", name)
		}
		if _, dup := t.byName[a.Name]; dup {
			return nil, fmt.Errorf("schema: table %q declares attribute %q twice", name, a.Name)
		}
		t.byName[a.Name] = i
		if a.PrimaryKey {
			if a.Collection {
				return nil, fmt.Errorf("schema: table %q: collection attribute %q cannot be a primary key", name, a.Name)
			}
			if t.pk >= 0 {
				return nil, fmt.Errorf("schema: table %q declares more than one primary key", name)
			}
			t.pk = i
		}
	}
	return t, nil
}

// Attribute looks up an attribute by name.
func (t *Table) Attribute(name string) (Attribute, error) {
	i, ok := t.byName[name]
	if !ok {
		return Attribute{}, fmt.Errorf("%w: %s.%s", ErrUnknownAttribute, t.Name, name)
	}
	return t.Attributes[i], nil
}

// PrimaryKey returns the table's primary-key attribute.
func (t *Table) PrimaryKey() (Attribute, error) {
	if t.pk < 0 {
		return Attribute{}, fmt.Errorf("%w: %s", ErrNoPrimaryKey, t.Name)
	}
	return t.Attributes[t.pk], nil
}

// Columns returns the names of the table's non-collection attributes in
// declaration order.
func (t *Table) Columns() []string {
	cols := make([]string, 0, len(t.Attributes))
	for _, a := range t.Attributes {
		if a.Collection {
			continue
		}
		cols = append(cols, a.Name)
	}
	return cols
}

// Catalog maps table names to their definitions.
type Catalog struct {
	tables map[string]*Table
}

// NewCatalog builds a catalog from table definitions.
func NewCatalog(tables ...*Table) *Catalog {
	c := &Catalog{tables: make(map[string]*Table, len(tables))}
	for _, t := range tables {
		c.tables[t.Name] = t
	}
	return c
}

// Table looks up a table by name.
func (c *Catalog) Table(name string) (*Table, error) {
	t, ok := c.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, name)
	}
	return t, nil
}

// Tables returns the catalog's tables sorted by name.
func (c *Catalog) Tables() []*Table {
	out := make([]*Table, 0, len(c.tables))
	for _, t := range c.tables {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
