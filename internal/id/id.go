package id

import "github.com/google/uuid"

// Sortable generates a UUID v7 string.
// Within one process every call returns a value that is lexicographically
// greater than the value returned by any earlier call.
func Sortable() string {
	return uuid.Must(uuid.NewV7()).String()
}

// IsSortable reports whether s is a canonical UUID v7 string as produced by Sortable.
func IsSortable(s string) bool {
	u, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	// uuid.Parse also accepts urn: and braced forms; only the canonical form sorts.
	return u.Version() == 7 && u.String() == s
}
