package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"

	"go.uber.org/zap"
)

const (
	// Namespace prefixes the source ID when deriving a canonical agent
	// identifier. Changing it changes every derived identifier, so it is
	// fixed for the life of the project.
	Namespace = "openclaw-agent"

	// MaxDisplayNameLen caps the name pushed to the control plane.
	MaxDisplayNameLen = 255

	// DefaultSourceID is used when the host runtime supplies no agent name.
	DefaultSourceID = "default"
)

// uuidPattern is stricter than uuid.Parse: canonical 8-4-4-4-12 form only,
// version 1-5, RFC 4122 variant.
var uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[1-5][0-9a-fA-F]{3}-[89abAB][0-9a-fA-F]{3}-[0-9a-fA-F]{12}$`)

// ValidUUID reports whether s is a canonical textual UUID usable as a
// configured agent identifier.
func ValidUUID(s string) bool {
	return uuidPattern.MatchString(s)
}

// Resolver turns caller-supplied agent names into canonical control-plane
// identities. A configured identifier, when valid, is shared verbatim by
// every source; otherwise each source gets a deterministic derived one.
type Resolver struct {
	configuredID string
	baseName     string
	logger       *zap.Logger

	warned bool
}

func NewResolver(configuredID, baseName string, logger *zap.Logger) *Resolver {
	return &Resolver{
		configuredID: configuredID,
		baseName:     baseName,
		logger:       logger,
	}
}

// Resolve returns the canonical identifier and display name for sourceID.
func (r *Resolver) Resolve(sourceID string) (canonicalID, displayName string) {
	if sourceID == "" {
		sourceID = DefaultSourceID
	}
	if r.configuredID != "" {
		if ValidUUID(r.configuredID) {
			return r.configuredID, truncate(r.baseName, MaxDisplayNameLen)
		}
		if !r.warned {
			r.warned = true
			r.logger.Warn("configured agent id is not a valid uuid, deriving ids instead",
				zap.String("agent_id", r.configuredID))
		}
	}
	return Derive(sourceID), truncate(r.baseName+":"+sourceID, MaxDisplayNameLen)
}

// Derive computes the deterministic canonical identifier for a source ID:
// SHA-256 of "<namespace>:<sourceID>", truncated to 128 bits and coerced
// into a version-5, RFC 4122-variant UUID. Stable across processes.
func Derive(sourceID string) string {
	sum := sha256.Sum256([]byte(Namespace + ":" + sourceID))
	hx := hex.EncodeToString(sum[:])[:32]

	b := []byte(hx)
	b[12] = '5'
	b[16] = variantNibble(b[16])

	return fmt.Sprintf("%s-%s-%s-%s-%s", b[0:8], b[8:12], b[12:16], b[16:20], b[20:32])
}

// variantNibble forces the top two bits of the hex nibble to 10.
func variantNibble(c byte) byte {
	n := hexVal(c)
	n = (n & 0x3) | 0x8
	return "0123456789abcdef"[n]
}

func hexVal(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
