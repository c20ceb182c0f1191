package repositories

import "errors"

// ErrNotFound is returned when the referenced record does not exist or is not
// owned by the requesting user. Handlers map it to a 404.
var ErrNotFound = errors.New("record not found")
