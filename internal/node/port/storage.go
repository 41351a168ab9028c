package port

import (
	"github.com/anthanhphan/go-chord-kv-store/internal/node/domain"
)

// KVRepository is the node-local versioned store. Apply is the only mutation
// and implements the LWW merge rule, so it is safe to call with duplicated or
// reordered deliveries.
type KVRepository interface {
	// Apply merges an incoming version and reports whether it replaced the
	// stored one (strict domination) or was discarded.
	Apply(key string, value domain.VersionedValue) bool

	// Get returns the stored version of a key.
	Get(key string) (domain.VersionedValue, bool)

	// Has reports whether a key is stored locally.
	Has(key string) bool

	// Snapshot copies the full store for anti-entropy exchange.
	Snapshot() map[string]domain.VersionedValue

	// Len returns the number of stored keys.
	Len() int

	// SummaryRoot returns the digest of the store's content; equal stores
	// report equal roots.
	SummaryRoot() uint64
}
