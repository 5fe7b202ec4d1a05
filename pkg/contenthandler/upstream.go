package contenthandler

import (
	"context"
	"io"
)

// Upstream fetches a TAF's bytes from the original cloud endpoint when the
// content root has no local copy for a rUID that carries cloud_auth.
type Upstream interface {
	Fetch(ctx context.Context, ruid string, bearer []byte) (io.ReadCloser, int64, error)
}
