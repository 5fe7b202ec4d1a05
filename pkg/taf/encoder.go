package taf

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
)

// Encoder ties the Opus framer (C2), page writer (C3), chapter tracker
// (C5), and integrity hasher (C6) together into the single-writer encode
// path described by the TAF header builder (C4): payload first, header
// written last via a seek-back to offset 0, then an atomic rename from a
// scratch path into the final one.
type Encoder struct {
	audioID   uint32
	tmpPath   string
	finalPath string

	f        *os.File
	framer   *framer
	pages    *pageWriter
	chapters *chapterTracker

	active atomic.Bool
	closed bool
}

// NewEncoder opens a scratch file alongside finalPath (creating its
// directory if needed) and prepares the codec pipeline to receive PCM.
// Nothing is visible at finalPath until Close succeeds.
func NewEncoder(finalPath string, audioID uint32) (*Encoder, error) {
	dir := filepath.Dir(finalPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIoFailed, err)
	}
	tmp, err := os.CreateTemp(dir, ".taf-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIoFailed, err)
	}

	if _, err := tmp.Write(make([]byte, HeaderSize)); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("%w: %v", ErrIoFailed, err)
	}

	fr, err := newFramer()
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, err
	}

	e := &Encoder{
		audioID:   audioID,
		tmpPath:   tmp.Name(),
		finalPath: finalPath,
		f:         tmp,
		framer:    fr,
		pages:     newPageWriter(tmp, audioID, nil),
		chapters:  newChapterTracker(),
	}
	e.active.Store(true)
	return e, nil
}

// Active reports whether the encoder is still accepting frames. It is
// checked by long-running callers (the stream transcode mode) between
// reads so that a cancellation is honored promptly.
func (e *Encoder) Active() bool {
	return e.active.Load()
}

// Cancel requests that the encode loop stop after the frame in flight.
// The caller is still responsible for calling Close (or Abort) to release
// resources.
func (e *Encoder) Cancel() {
	e.active.Store(false)
}

// Write encodes the given PCM16LE stereo bytes and appends any resulting
// Opus packets to the current page. Partial trailing bytes (not a whole
// sample pair) are buffered internally.
func (e *Encoder) Write(pcm []byte) error {
	pkts, err := e.framer.Write(pcm)
	if err != nil {
		e.Abort()
		return err
	}
	for _, p := range pkts {
		if err := e.pages.AddPacket(p.data, p.granule); err != nil {
			e.Abort()
			return err
		}
	}
	return nil
}

// NewChapter marks the current page as the start of a new chapter.
func (e *Encoder) NewChapter() error {
	return e.chapters.NewChapter(e.pages.PageCount())
}

// PageCount returns the number of payload pages emitted so far.
func (e *Encoder) PageCount() uint32 {
	return e.pages.PageCount()
}

// Close flushes the framer, finalizes the last page and the terminator
// page, writes the header at offset 0, and renames the scratch file into
// place. On any failure the scratch file is removed and the final path is
// left untouched.
func (e *Encoder) Close() error {
	if e.closed {
		return nil
	}

	pkts, err := e.framer.Flush()
	if err != nil {
		e.Abort()
		return err
	}
	for _, p := range pkts {
		if err := e.pages.AddPacket(p.data, p.granule); err != nil {
			e.Abort()
			return err
		}
	}

	sum, err := e.pages.Close()
	if err != nil {
		e.Abort()
		return err
	}
	e.framer.Close()

	h := Header{
		AudioID:       e.audioID,
		NumBytes:      e.pages.BytesWritten(),
		TrackPageNums: e.chapters.Pages(),
	}
	copy(h.SHA1Hash[:], sum)

	hdrBytes, err := MarshalHeader(h)
	if err != nil {
		e.Abort()
		return err
	}

	if _, err := e.f.WriteAt(hdrBytes, 0); err != nil {
		e.Abort()
		return fmt.Errorf("%w: %v", ErrIoFailed, err)
	}
	if err := e.f.Close(); err != nil {
		os.Remove(e.tmpPath)
		return fmt.Errorf("%w: %v", ErrIoFailed, err)
	}
	if err := os.Rename(e.tmpPath, e.finalPath); err != nil {
		os.Remove(e.tmpPath)
		return fmt.Errorf("%w: %v", ErrIoFailed, err)
	}

	e.closed = true
	return nil
}

// Abort releases all resources without publishing the output file. Any
// error mid-encode should route here rather than Close.
func (e *Encoder) Abort() {
	if e.closed {
		return
	}
	e.active.Store(false)
	if e.framer != nil {
		e.framer.Close()
	}
	if e.f != nil {
		e.f.Close()
	}
	os.Remove(e.tmpPath)
	e.closed = true
}
