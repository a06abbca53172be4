package settle

import "errors"

var (
	// ErrNotFound is returned when a settlement ID does not correspond to a
	// current pending record for the group.
	ErrNotFound = errors.New("settlement not found")

	// ErrLockTimeout is returned when the per-group reconciliation lock could
	// not be acquired within the configured bound. Callers should retry.
	ErrLockTimeout = errors.New("group busy, try again")
)
