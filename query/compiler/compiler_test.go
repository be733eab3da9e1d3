package compiler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/undertow-db/undertow/query/ast"
	"github.com/undertow-db/undertow/query/criteria"
	"github.com/undertow-db/undertow/query/dialect"
	"github.com/undertow-db/undertow/schema"
)

func testCatalog(t *testing.T) *schema.Catalog {
	t.Helper()

	mustTable := func(name string, attrs []schema.Attribute) *schema.Table {
		tbl, err := schema.NewTable(name, attrs)
		require.NoError(t, err)
		return tbl
	}

	return schema.NewCatalog(
		mustTable("user", []schema.Attribute{
			{Name: "id", Type: "integer", PrimaryKey: true},
			{Name: "name", Type: "string"},
			{Name: "pets", Collection: true},
			{Name: "comments", Collection: true},
		}),
		mustTable("profile", []schema.Attribute{
			{Name: "id", Type: "integer", PrimaryKey: true},
			{Name: "user_id", Type: "integer"},
			{Name: "city", Type: "string"},
		}),
		mustTable("comment", []schema.Attribute{
			{Name: "id", Type: "integer", PrimaryKey: true},
			{Name: "post_id", Type: "integer"},
			{Name: "approved", Type: "boolean"},
		}),
		mustTable("pet", []schema.Attribute{
			{Name: "id", Type: "integer", PrimaryKey: true},
			{Name: "species", Type: "string"},
			{Name: "owners", Collection: true},
		}),
		mustTable("user_pets", []schema.Attribute{
			{Name: "id", Type: "integer", PrimaryKey: true},
			{Name: "user_id", Type: "integer"},
			{Name: "pet_id", Type: "integer"},
		}),
		mustTable("driftwood", []schema.Attribute{
			{Name: "note", Type: "string"},
		}),
	)
}

func newCompiler(t *testing.T) *Compiler {
	t.Helper()
	return New(testCatalog(t), dialect.ByName("postgres"))
}

func TestCompileNoPopulatesHasNoJoin(t *testing.T) {
	c := newCompiler(t)

	q := &ast.Query{Where: ast.NewClause().AddCondition(ast.Eq("name", "finn"))}
	compiled, err := c.Compile("user", q)
	require.NoError(t, err)

	assert.NotContains(t, compiled.Query, "JOIN")
	assert.Equal(t, `WHERE "user"."name" = $1 ORDER BY "user"."id" DESC`, compiled.Query)
	assert.Equal(t, []interface{}{"finn"}, compiled.Values)
}

func TestCompileParentJoinShape(t *testing.T) {
	c := newCompiler(t)

	q := &ast.Query{
		Populates: []ast.Populate{
			ast.ParentJoin{Relation: "profile", Step: ast.JoinStep{
				Parent: "user", ParentKey: "id", Child: "profile", ChildKey: "user_id",
			}},
		},
	}
	compiled, err := c.Compile("user", q)
	require.NoError(t, err)

	assert.Contains(t, compiled.Query, `LEFT OUTER JOIN "profile" ON "user"."id" = "profile"."user_id" `)
	assert.Equal(t, `LEFT OUTER JOIN "profile" ON "user"."id" = "profile"."user_id" ORDER BY "user"."id" DESC`, compiled.Query)
}

func TestCompileJoinOrderFollowsInstructions(t *testing.T) {
	c := newCompiler(t)

	q := &ast.Query{
		Populates: []ast.Populate{
			ast.ParentJoin{Relation: "profile", Step: ast.JoinStep{
				Parent: "user", ParentKey: "id", Child: "profile", ChildKey: "user_id",
			}},
			ast.ParentJoin{Relation: "avatar", Step: ast.JoinStep{
				Parent: "user", ParentKey: "id", Child: "avatar", ChildKey: "user_id",
			}},
		},
	}
	compiled, err := c.Compile("user", q)
	require.NoError(t, err)

	profileAt := indexOf(compiled.Query, `"profile"`)
	avatarAt := indexOf(compiled.Query, `"avatar"`)
	assert.True(t, profileAt >= 0 && avatarAt > profileAt, "joins must follow instruction order: %s", compiled.Query)
}

func TestCompileChildAndJunctionSkippedInFlatPath(t *testing.T) {
	c := newCompiler(t)

	q := &ast.Query{
		Populates: []ast.Populate{
			ast.ChildJoin{Relation: "comments", Step: ast.JoinStep{
				Parent: "user", ParentKey: "id", Child: "comment", ChildKey: "post_id",
			}},
			ast.ThroughJoin{Relation: "pets",
				Link:   ast.JoinStep{Parent: "user", ParentKey: "id", Child: "user_pets", ChildKey: "user_id"},
				Target: ast.JoinStep{Parent: "user_pets", ParentKey: "pet_id", Child: "pet", ChildKey: "id"},
			},
		},
	}
	compiled, err := c.Compile("user", q)
	require.NoError(t, err)

	assert.NotContains(t, compiled.Query, "JOIN")
	assert.Equal(t, `ORDER BY "user"."id" DESC`, compiled.Query)
}

func TestCompileDefaultSortIsPure(t *testing.T) {
	c := newCompiler(t)

	q := &ast.Query{Where: ast.NewClause().AddCondition(ast.Eq("name", "finn"))}
	compiled, err := c.Compile("user", q)
	require.NoError(t, err)

	assert.Contains(t, compiled.Query, `ORDER BY "user"."id" DESC`)
	assert.Nil(t, q.Sort, "caller's specification must not be mutated")
}

func TestCompileExplicitSortWins(t *testing.T) {
	c := newCompiler(t)

	q := &ast.Query{Sort: []ast.SortEntry{{Attr: "name", Dir: ast.SortAsc}}}
	compiled, err := c.Compile("user", q)
	require.NoError(t, err)

	assert.Equal(t, `ORDER BY "user"."name" ASC`, compiled.Query)
}

func TestCompileSkippedWhereEmitsNoPrefix(t *testing.T) {
	c := newCompiler(t)

	// An empty IN list is the one way a declared where compiles to no
	// predicates at all; the WHERE prefix must go with it.
	q := &ast.Query{Where: ast.NewClause().
		AddCondition(ast.Condition{Attr: "id", Op: ast.OpIn, Value: []interface{}{}})}
	compiled, err := c.Compile("user", q)
	require.NoError(t, err)

	assert.Equal(t, `ORDER BY "user"."id" DESC`, compiled.Query)
	assert.Empty(t, compiled.Values)
}

func TestCompileNilQuery(t *testing.T) {
	c := newCompiler(t)

	compiled, err := c.Compile("user", nil)
	require.NoError(t, err)
	assert.Equal(t, `ORDER BY "user"."id" DESC`, compiled.Query)
	assert.NotNil(t, compiled.Values)
	assert.Empty(t, compiled.Values)
}

func TestCompileNoPrimaryKey(t *testing.T) {
	c := newCompiler(t)

	_, err := c.Compile("driftwood", &ast.Query{})
	assert.True(t, errors.Is(err, schema.ErrNoPrimaryKey))
}

func TestCompileUnknownTable(t *testing.T) {
	c := newCompiler(t)

	_, err := c.Compile("ghost", &ast.Query{})
	assert.True(t, errors.Is(err, schema.ErrUnknownTable))
}

func TestCompileCriteriaErrorPropagates(t *testing.T) {
	c := newCompiler(t)

	q := &ast.Query{Where: ast.NewClause().AddCondition(ast.Condition{Attr: "name", Op: "~="})}
	_, err := c.Compile("user", q)
	assert.True(t, errors.Is(err, criteria.ErrUnsupportedOperator))
}

func TestTrimConnector(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`WHERE "a" = $1 AND `, `WHERE "a" = $1 `},
		{`WHERE "a" = $1 OR `, `WHERE "a" = $1 `},
		{`WHERE "a" = $1`, `WHERE "a" = $1`},
		{"", ""},
		{"AND ", ""},
		{"OR ", ""},
	}

	for _, tt := range tests {
		if got := trimConnector(tt.in); got != tt.want {
			t.Errorf("trimConnector(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	// A second pass over already-trimmed text changes nothing.
	for _, tt := range tests {
		once := trimConnector(tt.in)
		if twice := trimConnector(once); twice != once {
			t.Errorf("trimConnector not stable on %q: %q then %q", tt.in, once, twice)
		}
	}
}

func TestCompileValuesMatchMarkers(t *testing.T) {
	c := newCompiler(t)

	q := &ast.Query{
		Where: ast.NewClause().
			AddCondition(ast.Eq("name", "finn")).
			AddCondition(ast.Condition{Attr: "id", Op: ast.OpIn, Value: []interface{}{1, 2, 3}}),
		Limit: 5,
		Skip:  10,
	}
	compiled, err := c.Compile("user", q)
	require.NoError(t, err)

	assert.Equal(t, countMarkers(compiled.Query), len(compiled.Values))
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

// countMarkers counts $n bind markers in postgres-dialect SQL.
func countMarkers(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '$' && i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '9' {
			n++
		}
	}
	return n
}
