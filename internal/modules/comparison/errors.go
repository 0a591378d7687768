package comparison

import "errors"

var (
	// ErrSnapshotNotFound is returned when a compared snapshot id is not in the history
	ErrSnapshotNotFound = errors.New("snapshot not found")
	// ErrUnknownDimension is returned for a dimension name other than agent, office, department, model or overall
	ErrUnknownDimension = errors.New("unknown comparison dimension")
)
