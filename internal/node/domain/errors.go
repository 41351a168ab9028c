package domain

import (
	"errors"
)

var (
	// ErrKeyNotFound is returned by GET when no reachable replica holds the key.
	ErrKeyNotFound = errors.New("key not found")

	// ErrReplicationUnavailable is returned by PUT when no replica in the
	// key's set could be reached; the write is not acknowledged.
	ErrReplicationUnavailable = errors.New("replication unavailable: no reachable replica")

	// ErrPeerUnreachable indicates a peer did not respond within the call
	// timeout. It feeds failure detection and is not surfaced to clients
	// unless every replica is exhausted.
	ErrPeerUnreachable = errors.New("peer unreachable")

	// ErrNoRoute indicates a lookup could not make forward progress within
	// the hop bound.
	ErrNoRoute = errors.New("routing failed: hop bound exceeded")
)
