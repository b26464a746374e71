package store

import "strings"

// likePattern builds a case-insensitive substring pattern for ILIKE,
// escaping LIKE wildcards so user input matches literally.
func likePattern(search string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(search)
	return "%" + escaped + "%"
}
