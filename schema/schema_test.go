package schema

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := NewTable("user", []Attribute{
		{Name: "id", Type: "integer", PrimaryKey: true},
		{Name: "name", Type: "string"},
		{Name: "pets", Collection: true},
	})
	require.NoError(t, err)
	return tbl
}

func TestTableLookups(t *testing.T) {
	tbl := userTable(t)

	pk, err := tbl.PrimaryKey()
	require.NoError(t, err)
	assert.Equal(t, "id", pk.Name)

	attr, err := tbl.Attribute("name")
	require.NoError(t, err)
	assert.Equal(t, "string", attr.Type)

	_, err = tbl.Attribute("missing")
	assert.True(t, errors.Is(err, ErrUnknownAttribute))

	assert.Equal(t, []string{"id", "name"}, tbl.Columns())
}

func TestTableValidation(t *testing.T) {
	tests := []struct {
		name  string
		attrs []Attribute
	}{
		{
			name: "duplicate attribute",
			attrs: []Attribute{
				{Name: "id", PrimaryKey: true},
				{Name: "id"},
			},
		},
		{
			name: "two primary keys",
			attrs: []Attribute{
				{Name: "id", PrimaryKey: true},
				{Name: "uuid", PrimaryKey: true},
			},
		},
		{
			name: "collection primary key",
			attrs: []Attribute{
				{Name: "pets", PrimaryKey: true, Collection: true},
			},
		},
		{
			name:  "unnamed attribute",
			attrs: []Attribute{{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable("bad", tt.attrs)
			assert.Error(t, err)
		})
	}
}

func TestTableNoPrimaryKey(t *testing.T) {
	tbl, err := NewTable("log", []Attribute{{Name: "message"}})
	require.NoError(t, err)

	_, err = tbl.PrimaryKey()
	assert.True(t, errors.Is(err, ErrNoPrimaryKey))
}

func TestCatalog(t *testing.T) {
	cat := NewCatalog(userTable(t))

	tbl, err := cat.Table("user")
	require.NoError(t, err)
	assert.Equal(t, "user", tbl.Name)

	_, err = cat.Table("ghost")
	assert.True(t, errors.Is(err, ErrUnknownTable))
}

const sampleSchema = `
tables:
  user:
    attributes:
      - name: id
        type: integer
        primaryKey: true
      - name: name
        type: string
      - name: pets
        collection: true
  pet:
    attributes:
      - name: id
        type: integer
        primaryKey: true
      - name: species
        type: string
`

func TestLoaderLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "schema.yml", []byte(sampleSchema), 0o644))

	loader := &Loader{Fs: fs}
	cat, err := loader.Load("schema.yml")
	require.NoError(t, err)
	assert.Len(t, cat.Tables(), 2)

	pet, err := cat.Table("pet")
	require.NoError(t, err)
	pk, err := pet.PrimaryKey()
	require.NoError(t, err)
	assert.Equal(t, "id", pk.Name)
}

func TestLoaderErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	loader := &Loader{Fs: fs}

	_, err := loader.Load("missing.yml")
	assert.Error(t, err)

	_, err = Parse([]byte("tables: {}"))
	assert.Error(t, err)

	_, err = Parse([]byte(":::"))
	assert.Error(t, err)
}
