package store

import "errors"

var (
	ErrKeyNotFound = errors.New("key not found")

	ErrKeyExists = errors.New("key already exists")

	ErrNoSnapshot = errors.New("no snapshot for key")

	// ErrOptimisticPending rejects a second speculative edit while the first
	// is still unresolved; the original snapshot is preserved.
	ErrOptimisticPending = errors.New("speculative edit already outstanding")

	ErrUnknownAction = errors.New("unknown action")
)
