package corecontext

import "errors"

var (
	ErrUnknownKey  = errors.New("corecontext: unknown setting key")
	ErrKindMismatch = errors.New("corecontext: value kind mismatch")
	ErrOutOfRange  = errors.New("corecontext: value out of range")
)
