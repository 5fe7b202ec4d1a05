package transcode

import "errors"

var ErrUpstreamFailed = errors.New("transcode: upstream failed")
