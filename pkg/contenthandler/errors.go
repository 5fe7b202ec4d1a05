package contenthandler

import "errors"

var (
	ErrUpstreamFailed = errors.New("contenthandler: upstream failed")
	ErrIoFailed       = errors.New("contenthandler: io failed")
)
