package repositories

import "errors"

// ErrNotFound is wrapped by every repository when a record does not exist
// or is not visible to the requesting organization
var ErrNotFound = errors.New("not found")
