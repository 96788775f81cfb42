package redis

import "errors"

// ErrNoRecord is returned when a looked-up key has no live entry.
var ErrNoRecord = errors.New("no record found")
