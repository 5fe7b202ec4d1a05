package taf

import "crypto/sha1"

// integrityHasher incrementally digests every byte written to the payload
// region of a TAF file. It is fed exclusively by the page writer, never
// read until the encoder closes.
type integrityHasher struct {
	h hash
}

func newIntegrityHasher() *integrityHasher {
	return &integrityHasher{h: sha1.New()}
}

func (h *integrityHasher) Write(p []byte) (int, error) {
	return h.h.Write(p)
}

// Sum returns the 20-byte SHA-1 digest of everything written so far.
func (h *integrityHasher) Sum(b []byte) []byte {
	return h.h.Sum(b)
}
