// Package content implements the rUID-addressed on-disk content store: a
// two-level hex directory layout mapping a 16-hex rUID to a TAF file and
// its sidecar JSON descriptor.
package content

import (
	"context"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var ruidPattern = regexp.MustCompile(`^[0-9a-f]{16}$`)

// Entry describes one published (or in-progress) content item.
type Entry struct {
	RUID       string
	Path       string
	Descriptor *Descriptor
}

// Store maps rUIDs to on-disk TAF files under root, with an optional
// rUID lookup cache (nil disables caching).
type Store struct {
	root  string
	cache *Cache
}

// NewStore creates a Store rooted at dir. cache may be nil, a *Cache
// wrapping a kv.Store such as *kv.Badger.
func NewStore(dir string, cache *Cache) *Store {
	return &Store{root: filepath.Clean(dir), cache: cache}
}

// Resolve validates ruid (exactly 16 lowercase hex chars; uppercase input
// is rejected) and returns the absolute path of its TAF file (without a
// sidecar extension). The directory layout is
// <root>/<RUID[0:8]>/<RUID[8:16]>, both components uppercased on disk.
func (s *Store) Resolve(ruid string) (string, error) {
	if !ruidPattern.MatchString(ruid) {
		return "", fmt.Errorf("%w: rUID %q must be 16 hex chars", ErrInvalidPath, ruid)
	}

	upper := strings.ToUpper(ruid)
	dir := upper[0:8]
	file := upper[8:16]

	path := filepath.Join(s.root, dir, file)
	path = filepath.Clean(path)

	rel, err := filepath.Rel(s.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: rUID %q escapes content root", ErrInvalidPath, ruid)
	}
	return path, nil
}

// SidecarPath returns the descriptor path for a TAF path returned by Resolve.
func SidecarPath(tafPath string) string {
	return tafPath + ".json"
}

// ReadEntry lowercases ruid, resolves it and loads its descriptor. The TAF path is
// returned even when the file does not yet exist; callers distinguish
// presence with os.Stat or by attempting taf.Open.
//
// When a cache is configured, a hit spares the rUID format re-validation
// Resolve does on every call; a miss falls back to Resolve and populates
// the cache for subsequent reads of the same rUID.
func (s *Store) ReadEntry(ruid string) (*Entry, error) {
	lower := strings.ToLower(ruid)

	path, hit, err := s.cache.Lookup(context.Background(), lower)
	if err != nil {
		return nil, err
	}
	if !hit {
		path, err = s.Resolve(lower)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Put(context.Background(), lower, path); err != nil {
			return nil, err
		}
	}

	desc, err := ReadDescriptor(SidecarPath(path))
	if err != nil {
		return nil, err
	}
	return &Entry{RUID: lower, Path: path, Descriptor: desc}, nil
}

// WriteDescriptorFor resolves ruid and atomically writes its descriptor.
func (s *Store) WriteDescriptorFor(ruid string, d *Descriptor) error {
	path, err := s.Resolve(ruid)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrIoFailed, err)
	}
	if err := WriteDescriptor(SidecarPath(path), d); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Put(context.Background(), strings.ToLower(ruid), path); err != nil {
			return err
		}
	}
	return nil
}

// Enumerate lazily walks the two-level directory tree under root, yielding
// one Entry per valid rUID found. Entries whose first-level name is not 8
// hex chars, or whose file name is not a bare <8hex> or <8hex>.json, are
// skipped.
func (s *Store) Enumerate() iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		first, err := os.ReadDir(s.root)
		if err != nil {
			if !os.IsNotExist(err) {
				yield(Entry{}, fmt.Errorf("%w: %v", ErrIoFailed, err))
			}
			return
		}

		hex8 := regexp.MustCompile(`^[0-9A-Fa-f]{8}$`)
		seen := map[string]bool{}

		for _, d1 := range first {
			if !d1.IsDir() || !hex8.MatchString(d1.Name()) {
				continue
			}
			sub := filepath.Join(s.root, d1.Name())
			entries, err := os.ReadDir(sub)
			if err != nil {
				if !yield(Entry{}, fmt.Errorf("%w: %v", ErrIoFailed, err)) {
					return
				}
				continue
			}
			for _, d2 := range entries {
				name := d2.Name()
				base := strings.TrimSuffix(name, ".json")
				if !hex8.MatchString(base) {
					continue
				}
				ruid := strings.ToLower(d1.Name() + base)
				if seen[ruid] {
					continue
				}
				seen[ruid] = true

				path := filepath.Join(sub, base)
				desc, derr := ReadDescriptor(SidecarPath(path))
				if derr != nil {
					if !yield(Entry{}, derr) {
						return
					}
					continue
				}
				if !yield(Entry{RUID: ruid, Path: path, Descriptor: desc}, nil) {
					return
				}
			}
		}
	}
}
