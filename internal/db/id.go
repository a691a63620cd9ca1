package db

import (
	"crypto/rand"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// newTaskID derives a 40 character hex identifier from the title and the
// creation time. A ULID is mixed in so equal titles created within the same
// second still get distinct identifiers.
func newTaskID(title string, now time.Time) string {
	salt, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		salt = ulid.ULID{}
	}

	content := fmt.Sprintf("blob %d\x00%s%d%s", len(title), title, now.Unix(), salt.String())
	sum := sha1.Sum([]byte(content))
	return hex.EncodeToString(sum[:])
}
