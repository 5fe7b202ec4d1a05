package content

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/toniebox-reverse-engineering/teddy-cloud/pkg/storage"
)

// LibraryMirror pushes finished TAF files and their sidecars to a secondary
// storage.FileStore (typically *storage.S3Store) after a local write,
// mirroring the content root into a "library" used by other deployments.
// A nil LibraryMirror makes Push a no-op, so wiring is optional.
type LibraryMirror struct {
	store storage.FileStore
	root  string
}

// NewLibraryMirror mirrors everything written under root into store.
func NewLibraryMirror(store storage.FileStore, root string) *LibraryMirror {
	return &LibraryMirror{store: store, root: filepath.Clean(root)}
}

func (m *LibraryMirror) relKey(localPath string) (string, error) {
	rel, err := filepath.Rel(m.root, localPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%w: %s outside mirror root", ErrInvalidPath, localPath)
	}
	return filepath.ToSlash(rel), nil
}

// Push copies localPath (a TAF file or sidecar) to the mirror store under a
// key derived from its location relative to the store's root.
func (m *LibraryMirror) Push(ctx context.Context, localPath string) error {
	if m == nil || m.store == nil {
		return nil
	}
	key, err := m.relKey(localPath)
	if err != nil {
		return err
	}

	src, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIoFailed, err)
	}
	defer src.Close()

	dst, err := m.store.Write(ctx, key)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIoFailed, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("%w: %v", ErrIoFailed, err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrIoFailed, err)
	}
	return nil
}

// PushEntry mirrors both the TAF file and its sidecar descriptor for an
// Entry's Path, matching the two-level key layout Resolve produces.
func (m *LibraryMirror) PushEntry(ctx context.Context, tafPath string) error {
	if m == nil || m.store == nil {
		return nil
	}
	if err := m.Push(ctx, tafPath); err != nil {
		return err
	}
	sidecar := SidecarPath(tafPath)
	if _, err := os.Stat(sidecar); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrIoFailed, err)
	}
	return m.Push(ctx, sidecar)
}
