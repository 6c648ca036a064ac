package datastore

import "fmt"

// DataLoadError reports a dataset that cannot be used at all: a missing file,
// an unreadable format or a missing required column. It aborts startup.
type DataLoadError struct {
	Source string
	Column string
	Err    error
}

func (e *DataLoadError) Error() string {
	switch {
	case e.Column != "":
		return fmt.Sprintf("datastore: %s: required column %q not found", e.Source, e.Column)
	case e.Err != nil:
		return fmt.Sprintf("datastore: %s: %v", e.Source, e.Err)
	default:
		return fmt.Sprintf("datastore: %s: unusable dataset", e.Source)
	}
}

func (e *DataLoadError) Unwrap() error {
	return e.Err
}
