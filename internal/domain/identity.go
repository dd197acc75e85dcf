package domain

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Demo-mode identifier sentinels. The demo experience runs entirely against
// the local cache, so anything carrying these markers must never reach the
// remote store.
const (
	DemoUserID   = "demo-user"
	DemoIDPrefix = "demo-"
)

// Pre-compiled regular expressions for better cold start performance
var (
	// uuidV4Pattern matches the version-4 UUID shape, including the version
	// nibble and the RFC 4122 variant nibble. Deliberately stricter than
	// uuid.Parse, which accepts every UUID version.
	uuidV4Pattern = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
)

// IsDurable reports whether an identifier refers to a row that can exist in
// the remote store. Empty values, the demo sentinels, and anything that is
// not UUID-v4 shaped are ephemeral: operations keyed by them stay local.
func IsDurable(id string) bool {
	if strings.TrimSpace(id) == "" {
		return false
	}
	if id == DemoUserID || strings.HasPrefix(id, DemoIDPrefix) {
		return false
	}
	return uuidV4Pattern.MatchString(id)
}

// NewID generates a fresh durable identifier.
func NewID() string {
	return uuid.New().String()
}
