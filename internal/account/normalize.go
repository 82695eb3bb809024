package account

import "strings"

// NormalizeMemberIDs prefixes each member reference with "@" when the prefix
// is missing. Order is preserved and duplicates are kept; the bridge resolves
// both "@handle" and numeric-id strings.
func NormalizeMemberIDs(userIDs []string) []string {
	normalized := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if !strings.HasPrefix(id, "@") {
			id = "@" + id
		}
		normalized = append(normalized, id)
	}
	return normalized
}
