// Package validate contains the client-side form predicates for dataset,
// column, and query inputs. These are UX guards only; real enforcement is
// the server's responsibility.
package validate

import (
	"regexp"
	"strings"
)

var (
	columnNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	sqlAllowPattern   = regexp.MustCompile(`(?i)^(SELECT|WITH)\s+`)
	sqlDenyPattern    = regexp.MustCompile(`(?i)^(DROP|TRUNCATE|CREATE)\s+`)
)

var reservedWords = map[string]struct{}{
	"select": {}, "from": {}, "where": {}, "insert": {}, "update": {},
	"delete": {}, "drop": {}, "create": {}, "table": {}, "index": {},
	"view": {}, "join": {}, "inner": {}, "outer": {}, "left": {},
	"right": {}, "on": {}, "group": {}, "by": {}, "order": {},
	"having": {}, "limit": {}, "offset": {}, "union": {}, "case": {},
	"when": {}, "then": {}, "else": {}, "end": {}, "as": {},
	"distinct": {}, "all": {},
}

// IsValidColumnName reports whether name is an identifier that is not a
// SQL reserved word. The reserved-word check is case-insensitive.
func IsValidColumnName(name string) bool {
	if !columnNamePattern.MatchString(name) {
		return false
	}
	_, reserved := reservedWords[strings.ToLower(name)]
	return !reserved
}

// IsValidDatasetName reports whether the trimmed name is between 3 and 255
// characters long.
func IsValidDatasetName(name string) bool {
	length := len(strings.TrimSpace(name))
	return length >= 3 && length <= 255
}

// IsPermissibleSQLQuery reports whether the query starts with SELECT or
// WITH and does not start with DROP, TRUNCATE, or CREATE.
//
// This does not parse SQL: destructive statements after a semicolon, inside
// subqueries, or in string literals all pass. It exists to catch obvious
// mistakes in the query editor, nothing more.
func IsPermissibleSQLQuery(query string) bool {
	trimmed := strings.TrimSpace(query)
	return sqlAllowPattern.MatchString(trimmed) && !sqlDenyPattern.MatchString(trimmed)
}
