package storage

import "errors"

var (
	ErrRootUnavailable = errors.New("media root unavailable")
	ErrCorruptRecord   = errors.New("corrupt favorites record")
)
