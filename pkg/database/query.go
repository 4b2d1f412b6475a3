package database

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern builds an ILIKE pattern matching q anywhere, with the LIKE
// wildcards in q escaped.
func ContainsPattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}
