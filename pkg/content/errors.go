package content

import "errors"

var (
	ErrInvalidPath = errors.New("content: invalid path")
	ErrNotFound    = errors.New("content: not found")
	ErrIoFailed    = errors.New("content: io failed")
)
