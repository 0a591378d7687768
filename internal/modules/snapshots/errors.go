package snapshots

import (
	"fmt"
	"strings"
)

// MalformedSnapshotError lists every problem found while validating snapshot input
type MalformedSnapshotError struct {
	Problems []string
}

func (e *MalformedSnapshotError) Error() string {
	return fmt.Sprintf("malformed snapshot: %s", strings.Join(e.Problems, "; "))
}

func (e *MalformedSnapshotError) add(format string, args ...interface{}) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}
