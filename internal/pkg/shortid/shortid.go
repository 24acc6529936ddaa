package shortid

import (
	"strings"

	"github.com/google/uuid"
)

// Length is the number of hex characters in a short id.
const Length = 6

// New returns the first six hex characters of a random UUID.
func New() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:Length]
}

// NewUnique draws ids until taken rejects one. Six hex characters leave
// roughly sixteen million ids, so a retry is rare.
func NewUnique(taken func(id string) bool) string {
	for {
		if id := New(); !taken(id) {
			return id
		}
	}
}
