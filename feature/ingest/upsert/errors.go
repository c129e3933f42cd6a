package upsert

import "errors"

// ErrMalformed marks a record missing mandatory data. It is fatal for that
// record only.
var ErrMalformed = errors.New("malformed record")
