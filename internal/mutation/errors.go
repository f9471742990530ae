package mutation

import "fmt"

// InvalidPathError is returned when a path does not resolve to an
// addressable field. The snapshot passed in is left as it was.
type InvalidPathError struct {
	Path    string
	Segment string
	Reason  string
}

func (e *InvalidPathError) Error() string {
	if e.Segment == "" {
		return fmt.Sprintf("invalid path %q: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("invalid path %q at %q: %s", e.Path, e.Segment, e.Reason)
}
