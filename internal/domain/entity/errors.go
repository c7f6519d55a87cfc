package entity

import "errors"

// ErrNotFound is returned when an application or document does not exist.
// It is a recoverable, caller-visible outcome, not a fault.
var ErrNotFound = errors.New("not found")
