package taf

import "fmt"

// MaxChapters is the largest number of chapters a single TAF may carry; the
// header's track_page_nums field must fit within the fixed 4096-byte header.
const MaxChapters = 100

// chapterTracker records the page index at which each chapter begins. The
// first chapter is implicit at page 0.
type chapterTracker struct {
	pages []uint32
}

func newChapterTracker() *chapterTracker {
	return &chapterTracker{pages: []uint32{0}}
}

// NewChapter records the given page-sequence counter as the start of a new
// chapter. Callers must supply a strictly increasing page index.
func (c *chapterTracker) NewChapter(page uint32) error {
	if len(c.pages) >= MaxChapters {
		return fmt.Errorf("%w: limit is %d", ErrTooManyChapters, MaxChapters)
	}
	if page <= c.pages[len(c.pages)-1] {
		page = c.pages[len(c.pages)-1] + 1
	}
	c.pages = append(c.pages, page)
	return nil
}

// Pages returns the recorded chapter start pages, always beginning with 0.
func (c *chapterTracker) Pages() []uint32 {
	out := make([]uint32, len(c.pages))
	copy(out, c.pages)
	return out
}
