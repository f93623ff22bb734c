package domain

import "github.com/google/uuid"

// NewID returns a fresh entity identifier.
func NewID() string {
	return uuid.NewString()
}

// IsValidID reports whether id is a canonical entity identifier. Only the
// hyphenated 36 character form is accepted so lookups match stored keys.
func IsValidID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
