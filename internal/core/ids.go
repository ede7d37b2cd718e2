package core

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns a random identifier for a new entity.
func NewID() string {
	return uuid.NewString()
}

// DefaultCategoryID derives the id of a seeded category from its owner, type
// and name, so every device seeds the same ids for the same user.
func DefaultCategoryID(userID string, typ TransactionType, name string) string {
	key := userID + "/" + string(typ) + "/" + strings.ToLower(strings.TrimSpace(name))
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key)).String()
}
