package executor

import (
	"strings"

	"github.com/undertow-db/undertow/query/compiler"
	"github.com/undertow-db/undertow/query/dialect"
)

// resolveTemplate binds the correlation value into a subquery template:
// the ^?^ marker becomes a real dialect placeholder and the value is
// slotted into the bind list at the matching position. The template's
// outer parentheses are stripped so the statement runs standalone.
func resolveTemplate(tpl string, key interface{}, values []interface{}, d dialect.Dialect) (string, []interface{}) {
	stmt := strings.TrimSpace(tpl)
	if strings.HasPrefix(stmt, "(") && strings.HasSuffix(stmt, ")") {
		stmt = stmt[1 : len(stmt)-1]
	}

	idx := strings.Index(stmt, compiler.Placeholder)
	if idx < 0 {
		return stmt, values
	}

	if d.Placeholder(1) == "?" {
		// Anonymous markers bind strictly left to right, so the value
		// splices in at the marker's ordinal position.
		pos := strings.Count(stmt[:idx], "?")
		args := make([]interface{}, 0, len(values)+1)
		args = append(args, values[:pos]...)
		args = append(args, key)
		args = append(args, values[pos:]...)
		return strings.Replace(stmt, compiler.Placeholder, "?", 1), args
	}

	// Numbered markers bind by index, so the value appends and the
	// marker takes the next free number.
	args := make([]interface{}, 0, len(values)+1)
	args = append(args, values...)
	args = append(args, key)
	return strings.Replace(stmt, compiler.Placeholder, d.Placeholder(len(args)), 1), args
}
