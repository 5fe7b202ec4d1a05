package taf

import (
	"bytes"
	"testing"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{
		AudioID:       0x12345678,
		NumBytes:      4096 * 3,
		TrackPageNums: []uint32{0, 4, 9},
	}
	for i := range h.SHA1Hash {
		h.SHA1Hash[i] = byte(i)
	}

	data, err := MarshalHeader(h)
	if err != nil {
		t.Fatalf("MarshalHeader: %v", err)
	}
	if len(data) != HeaderSize {
		t.Fatalf("header region is %d bytes, want %d", len(data), HeaderSize)
	}

	got, err := UnmarshalHeader(data)
	if err != nil {
		t.Fatalf("UnmarshalHeader: %v", err)
	}
	if got.AudioID != h.AudioID {
		t.Errorf("AudioID = %#x, want %#x", got.AudioID, h.AudioID)
	}
	if got.NumBytes != h.NumBytes {
		t.Errorf("NumBytes = %d, want %d", got.NumBytes, h.NumBytes)
	}
	if !bytes.Equal(got.SHA1Hash[:], h.SHA1Hash[:]) {
		t.Errorf("SHA1Hash mismatch")
	}
	if len(got.TrackPageNums) != len(h.TrackPageNums) {
		t.Fatalf("TrackPageNums = %v, want %v", got.TrackPageNums, h.TrackPageNums)
	}
	for i := range h.TrackPageNums {
		if got.TrackPageNums[i] != h.TrackPageNums[i] {
			t.Errorf("TrackPageNums[%d] = %d, want %d", i, got.TrackPageNums[i], h.TrackPageNums[i])
		}
	}

	again, err := MarshalHeader(*got)
	if err != nil {
		t.Fatalf("re-marshal: %v", err)
	}
	if !bytes.Equal(data, again) {
		t.Fatal("re-serialized header does not match original bytes")
	}
}

func TestHeaderEmptyChapterList(t *testing.T) {
	h := Header{AudioID: 1, NumBytes: PageSize, TrackPageNums: []uint32{0}}
	data, err := MarshalHeader(h)
	if err != nil {
		t.Fatalf("MarshalHeader: %v", err)
	}
	if len(data) != HeaderSize {
		t.Fatalf("len = %d, want %d", len(data), HeaderSize)
	}
}

func TestHeaderManyChapters(t *testing.T) {
	pages := make([]uint32, MaxChapters)
	for i := range pages {
		pages[i] = uint32(i)
	}
	h := Header{AudioID: 7, NumBytes: 1 << 20, TrackPageNums: pages}

	data, err := MarshalHeader(h)
	if err != nil {
		t.Fatalf("MarshalHeader with %d chapters: %v", MaxChapters, err)
	}
	if len(data) != HeaderSize {
		t.Fatalf("len = %d, want %d", len(data), HeaderSize)
	}

	got, err := UnmarshalHeader(data)
	if err != nil {
		t.Fatalf("UnmarshalHeader: %v", err)
	}
	if len(got.TrackPageNums) != MaxChapters {
		t.Fatalf("got %d chapters, want %d", len(got.TrackPageNums), MaxChapters)
	}
}
