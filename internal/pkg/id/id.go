package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string, used for events that arrive without an
// id. ULIDs are lexicographically sortable by creation time.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
