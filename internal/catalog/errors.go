package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrVideoNotFound    = errors.New("video not found")
	ErrInvalidVideo     = errors.New("video needs a title and a source url")
	ErrAlreadyFeatured  = errors.New("video is already featured in this category")
	ErrNotFeatured      = errors.New("video is not featured in this category")
	ErrInvalidDirection = errors.New("direction must be up or down")
	// ErrStaleFetch is returned when a newer fetch or a mutation landed while
	// this fetch was in flight; its result was discarded.
	ErrStaleFetch = errors.New("fetch result superseded")
)

// FetchError reports a failed remote read. State from before the fetch is
// kept as is.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch catalog: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// WriteError reports a failed mutation. No part of the mutation was applied
// locally.
type WriteError struct {
	Op      string
	VideoID string
	Err     error
}

func (e *WriteError) Error() string {
	if e.VideoID == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.VideoID, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
