package repository

import (
	"errors"
	"time"
)

// ErrNotFound is returned by repositories when a lookup matches no document.
var ErrNotFound = errors.New("document not found")

// OpTimeout bounds every single repository round-trip.
const OpTimeout = 5 * time.Second
