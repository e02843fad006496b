package types

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	UUID_PREFIX_SUBSCRIPTION  = "subs"
	UUID_PREFIX_RECEIPT       = "recp"
	UUID_PREFIX_TOKEN_ACCOUNT = "acct"
	UUID_PREFIX_REQUEST       = "req"
	UUID_PREFIX_EVENT         = "evt"
)

// GenerateUUID returns a lowercase ULID, time-ordered and collision safe.
func GenerateUUID() string {
	return strings.ToLower(ulid.MustNew(ulid.Timestamp(time.Now().UTC()), rand.Reader).String())
}

// GenerateUUIDWithPrefix returns a ULID with an entity prefix, e.g.
// subs_01jk5... The prefix makes IDs self-describing in logs and receipts.
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return prefix + "_" + GenerateUUID()
}
