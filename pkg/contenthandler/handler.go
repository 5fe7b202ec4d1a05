package contenthandler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/toniebox-reverse-engineering/teddy-cloud/pkg/content"
	"github.com/toniebox-reverse-engineering/teddy-cloud/pkg/corecontext"
	"github.com/toniebox-reverse-engineering/teddy-cloud/pkg/taf"
)

// liveRetryInterval is how long the live-stream loop sleeps after an EOF
// read while the client connection is still open, waiting for the
// encoder to append more pages.
const liveRetryInterval = 500 * time.Millisecond

// Options configures a Handler's optional behaviors.
type Options struct {
	// CloudEnabled gates the upstream-proxy decision table branch.
	CloudEnabled bool

	// CacheToLocal tees a successful upstream proxy response into the
	// local content root so subsequent requests are served locally.
	CacheToLocal bool

	// Upstream fetches bytes for a rUID that has cloud_auth but no local
	// TAF. Required when CloudEnabled is true.
	Upstream Upstream

	// Catalog resolves a descriptor's tonie model to display metadata.
	// Optional; nil disables catalog-derived logging.
	Catalog corecontext.Catalog

	// Mirror receives a copy of every TAF HandleUpload finishes writing.
	// Optional; a nil Mirror (or a nil *content.LibraryMirror) disables it.
	Mirror *content.LibraryMirror
}

// Handler serves GET requests for rUID-addressed TAF content and accepts
// raw PCM uploads that produce new TAF files.
type Handler struct {
	store *content.Store
	opts  Options
}

// New builds a Handler backed by store.
func New(store *content.Store, opts Options) *Handler {
	return &Handler{store: store, opts: opts}
}

// ServeContent implements the decision table for a single rUID: serve a
// local static file, tail a local live stream, proxy upstream when cloud
// auth is configured, or 404. The caller is responsible for extracting
// ruid from the request path (the handler is route-pattern agnostic so
// it composes under /v1 and /v2).
func (h *Handler) ServeContent(w http.ResponseWriter, r *http.Request, ruid string) {
	entry, err := h.store.ReadEntry(ruid)
	if err != nil {
		if errors.Is(err, content.ErrInvalidPath) {
			http.Error(w, "invalid rUID", http.StatusNotFound)
			return
		}
		slog.Error("resolve rUID failed", "ruid", ruid, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	f, openErr := taf.Open(entry.Path)
	exists := openErr == nil

	if h.opts.Catalog != nil && entry.Descriptor.TonieModel != "" {
		if cat, ok := h.opts.Catalog.Lookup(r.Context(), entry.Descriptor.TonieModel); ok {
			slog.Debug("serving known tonie", "ruid", ruid, "title", cat.Title, "series", cat.Series)
		}
	}

	switch {
	case !exists && entry.Descriptor.NoCloud:
		http.NotFound(w, r)

	case exists && !entry.Descriptor.Live:
		h.serveStatic(w, r, entry.Path, f)

	case exists && entry.Descriptor.Live:
		h.serveLive(w, r, entry.Path)

	case !exists && h.opts.CloudEnabled && entry.Descriptor.HasCloudAuth:
		h.proxyUpstream(w, r, ruid, entry)

	default:
		http.NotFound(w, r)
	}
}

func oggQuery(r *http.Request) bool {
	q := r.URL.Query()
	if v := q.Get("ogg"); v != "" {
		return v == "true"
	}
	if v := q.Get("skip_header"); v != "" {
		return v == "true"
	}
	return false
}

func (h *Handler) serveStatic(w http.ResponseWriter, r *http.Request, path string, f *taf.File) {
	file, err := os.Open(path)
	if err != nil {
		slog.Error("open taf", "path", path, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer file.Close()

	var headerSkip int64
	if oggQuery(r) {
		headerSkip = taf.HeaderSize
	}
	size := f.Size - headerSkip

	start, end, ranged := parseRange(r.Header.Get("Range"), size)

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Accept-Ranges", "bytes")

	if !ranged {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
		if _, err := file.Seek(headerSkip, io.SeekStart); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		io.Copy(w, file) //nolint:errcheck
		return
	}

	if _, err := file.Seek(headerSkip+start, io.SeekStart); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, size))
	w.Header().Set("Content-Length", strconv.FormatInt(end-start+1, 10))
	w.WriteHeader(http.StatusPartialContent)
	io.CopyN(w, file, end-start+1) //nolint:errcheck
}

// parseRange parses a "bytes=a-b" or "bytes=a-" header against size.
// Returns ok=false whenever the header is absent or cannot be honored;
// callers then fall back to a full 200 response, matching the
// bug-compatible "invalid ranges return 200" behavior rather than 416.
func parseRange(header string, size int64) (start, end int64, ok bool) {
	if header == "" || size <= 0 {
		return 0, 0, false
	}
	const prefix = "bytes="
	if !strings.HasPrefix(header, prefix) {
		return 0, 0, false
	}
	spec := strings.TrimPrefix(header, prefix)
	if strings.Contains(spec, ",") {
		return 0, 0, false
	}

	dash := strings.IndexByte(spec, '-')
	if dash < 0 {
		return 0, 0, false
	}
	startStr, endStr := spec[:dash], spec[dash+1:]

	a, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || a < 0 || a >= size {
		return 0, 0, false
	}

	b := size - 1
	if endStr != "" {
		parsed, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil {
			return 0, 0, false
		}
		if parsed > 0 && parsed < size {
			b = parsed
		}
	}
	if b < a {
		return 0, 0, false
	}
	return a, b, true
}

func (h *Handler) serveLive(w http.ResponseWriter, r *http.Request, path string) {
	file, err := os.Open(path)
	if err != nil {
		slog.Error("open live taf", "path", path, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer file.Close()

	if _, err := file.Seek(taf.HeaderSize, io.SeekStart); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)

	buf := make([]byte, 32*1024)
	ctx := r.Context()
	for {
		n, err := file.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if err == nil {
			continue
		}
		if err != io.EOF {
			slog.Error("live stream read", "path", path, "error", err)
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(liveRetryInterval):
		}
	}
}

func (h *Handler) proxyUpstream(w http.ResponseWriter, r *http.Request, ruid string, entry *content.Entry) {
	if h.opts.Upstream == nil {
		http.NotFound(w, r)
		return
	}

	body, size, err := h.opts.Upstream.Fetch(r.Context(), ruid, entry.Descriptor.CloudAuth)
	if err != nil {
		slog.Error("upstream fetch failed", "ruid", ruid, "error", err)
		http.Error(w, "upstream unavailable", http.StatusInternalServerError)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	if size >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}
	w.WriteHeader(http.StatusOK)

	var dst io.Writer = w
	var cacheFile *os.File
	if h.opts.CacheToLocal {
		if f, cerr := os.Create(entry.Path); cerr == nil {
			cacheFile = f
			dst = io.MultiWriter(w, f)
		}
	}
	io.Copy(dst, body) //nolint:errcheck
	if cacheFile != nil {
		cacheFile.Close()
	}
}

// RewriteDownloadPath turns a /content/download/<8hex>/<8hex>[.json] path
// into the lowercase 16-hex rUID used by ServeContent.
func RewriteDownloadPath(aabbccdd, eeffgghh string) (string, error) {
	base := strings.TrimSuffix(eeffgghh, ".json")
	ruid := strings.ToLower(aabbccdd + base)
	if len(ruid) != 16 {
		return "", fmt.Errorf("%w: malformed download path", ErrIoFailed)
	}
	return ruid, nil
}

// HandleUpload accepts a raw PCM16LE 48kHz stereo body and encodes it
// directly into a TAF at the path resolved from ruid, with audioID written
// into the TAF header, matching
// POST /api/pcmUpload's contract. The multipart parsing itself is left to
// the caller (net/http's MultipartReader), which passes the part's body
// as pcm.
func (h *Handler) HandleUpload(ctx context.Context, ruid string, audioID uint32, pcm io.Reader) error {
	path, err := h.store.Resolve(ruid)
	if err != nil {
		return err
	}

	enc, err := taf.NewEncoder(path, audioID)
	if err != nil {
		return err
	}

	buf := make([]byte, 4096)
	for {
		n, rerr := pcm.Read(buf)
		if n > 0 {
			if werr := enc.Write(buf[:n]); werr != nil {
				enc.Abort()
				return werr
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			enc.Abort()
			return fmt.Errorf("%w: %v", ErrIoFailed, rerr)
		}
	}
	if err := enc.Close(); err != nil {
		return err
	}
	// context.Background(), not ctx: mirroring a finished upload should
	// survive the HTTP request that triggered it being cancelled.
	return h.opts.Mirror.PushEntry(context.Background(), path)
}
