package spatial

import "fmt"

// RegionNotFoundError is returned when a zoom region has no state boundary.
// Callers are expected to fall back to the unfiltered view.
type RegionNotFoundError struct {
	Region string
}

func (e *RegionNotFoundError) Error() string {
	return fmt.Sprintf("spatial: region %q not found in state boundaries", e.Region)
}
