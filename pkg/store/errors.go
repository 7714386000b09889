package store

import "fmt"

// WriteError reports a failed bulk insert. The whole batch was rolled back;
// no partial write is observable.
type WriteError struct {
	Table string
	Tag   string
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("bulk insert into %s (%s): %v", e.Table, e.Tag, e.Err)
}
func (e *WriteError) Unwrap() error { return e.Err }

// StagingError reports a failure creating or populating the staging table of
// a large lookup. The surrounding transaction was rolled back; no staging
// state remains visible.
type StagingError struct {
	Table   string
	Staging string
	Err     error
}

func (e *StagingError) Error() string {
	return fmt.Sprintf("stage lookup on %s via %s: %v", e.Table, e.Staging, e.Err)
}
func (e *StagingError) Unwrap() error { return e.Err }
