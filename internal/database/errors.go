package database

import (
	"errors"
	"fmt"
)

var (
	// ErrStorageUnavailable means the replica file is missing or cannot be opened.
	// Every query fails with it until the replica is restored.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrStoreClosed is returned for requests submitted after Close.
	ErrStoreClosed = errors.New("store closed")

	// ErrInvalidReplica is returned by Replace when the candidate file lacks expected tables.
	ErrInvalidReplica = errors.New("invalid replica")
)

// QueryError wraps a driver failure for a specific statement
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed: %v", e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}
