package taf

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"io"
	"os"
)

// File is a parsed, read-only view of a TAF file on disk: the decoded
// header plus enough bookkeeping to stream its payload pages.
type File struct {
	Header Header
	Size   int64
	path   string
}

// Open reads and validates the 4096-byte header region at path. It does
// not read the payload; call VerifyIntegrity for that.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrIoFailed, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIoFailed, err)
	}
	if info.Size() < HeaderSize || info.Size()%PageSize != 0 {
		return nil, fmt.Errorf("%w: size %d is not header + whole pages", ErrTruncated, info.Size())
	}

	hdr := make([]byte, HeaderSize)
	if _, err := io.ReadFull(f, hdr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	h, err := UnmarshalHeader(hdr)
	if err != nil {
		return nil, err
	}
	if h.AudioID == 0 && h.NumBytes == 0 && len(h.TrackPageNums) == 0 {
		return nil, fmt.Errorf("%w: zero header, encode in progress", ErrTruncated)
	}

	return &File{Header: *h, Size: info.Size(), path: path}, nil
}

// PageCount returns the number of 4096-byte payload pages on disk,
// including the terminator page.
func (f *File) PageCount() int64 {
	return (f.Size - HeaderSize) / PageSize
}

// VerifyIntegrity recomputes the SHA-1 over the payload region and
// compares it against the header's sha1_hash field.
func (f *File) VerifyIntegrity() error {
	file, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIoFailed, err)
	}
	defer file.Close()

	if _, err := file.Seek(HeaderSize, io.SeekStart); err != nil {
		return fmt.Errorf("%w: %v", ErrIoFailed, err)
	}

	h := sha1.New()
	if _, err := io.Copy(h, file); err != nil {
		return fmt.Errorf("%w: %v", ErrIoFailed, err)
	}

	if !bytes.Equal(h.Sum(nil), f.Header.SHA1Hash[:]) {
		return fmt.Errorf("%w: sha1 mismatch", ErrTruncated)
	}
	return nil
}
