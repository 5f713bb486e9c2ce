package database

import "github.com/pkg/errors"

// ErrNotFound denotes that the requested item was not
// found in the database.
var ErrNotFound = errors.New("not found")

// ErrKeyOutsideBucket denotes that a raw key does not belong
// to the bucket it was resolved against.
var ErrKeyOutsideBucket = errors.New("key is outside of the bucket")

// IsNotFoundError checks whether an error is an ErrNotFound.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
