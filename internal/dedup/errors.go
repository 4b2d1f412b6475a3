package dedup

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned for a missing or empty name.
	ErrInvalidInput = errors.New("dedup: invalid input")

	// ErrStoreUnavailable means the backing store could not answer. It is never
	// folded into "no match": doing so would let an outage create duplicates.
	ErrStoreUnavailable = errors.New("dedup: store unavailable")

	// ErrUniquenessViolation is returned by an insert that lost a creation race.
	ErrUniquenessViolation = errors.New("dedup: uniqueness violation")

	// ErrNotFound may be returned by a Source instead of (nil, nil).
	ErrNotFound = errors.New("dedup: not found")
)

// StoreError wraps a failed Source call. It matches ErrStoreUnavailable with errors.Is
// and unwraps to the driver error.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("dedup: %s: store unavailable: %v", e.Op, e.Err)
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
