package taf

import (
	"encoding/binary"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// HeaderSize is the fixed size, in bytes, of the header region at the start
// of every TAF file (4-byte length prefix + protobuf message + zero fill).
const HeaderSize = 4096

const (
	fieldAudioID        protowire.Number = 1
	fieldSHA1Hash       protowire.Number = 2
	fieldNumBytes       protowire.Number = 3
	fieldTrackPageNums  protowire.Number = 4
	fieldFill           protowire.Number = 5
)

// Header is the decoded form of a TAF file's protobuf header.
type Header struct {
	AudioID       uint32
	SHA1Hash      [20]byte
	NumBytes      uint64
	TrackPageNums []uint32
}

// MarshalHeader serializes h into the fixed 4096-byte on-disk header region:
// a 4-byte big-endian length prefix, the protobuf message, and zero fill
// padding sized so the total is exactly HeaderSize. Returns ErrHeaderTooLarge
// if the message (sans fill) cannot fit.
func MarshalHeader(h Header) ([]byte, error) {
	var core []byte
	core = protowire.AppendTag(core, fieldAudioID, protowire.VarintType)
	core = protowire.AppendVarint(core, uint64(h.AudioID))

	core = protowire.AppendTag(core, fieldSHA1Hash, protowire.BytesType)
	core = protowire.AppendBytes(core, h.SHA1Hash[:])

	core = protowire.AppendTag(core, fieldNumBytes, protowire.VarintType)
	core = protowire.AppendVarint(core, h.NumBytes)

	var packed []byte
	for _, p := range h.TrackPageNums {
		packed = protowire.AppendVarint(packed, uint64(p))
	}
	core = protowire.AppendTag(core, fieldTrackPageNums, protowire.BytesType)
	core = protowire.AppendBytes(core, packed)

	tagSize := protowire.SizeTag(fieldFill)
	fillLen := 0
	for i := 0; i < 8; i++ {
		lenSize := protowire.SizeVarint(uint64(fillLen))
		total := 4 + len(core) + tagSize + lenSize + fillLen
		if total == HeaderSize {
			break
		}
		fillLen += HeaderSize - total
		if fillLen < 0 {
			return nil, fmt.Errorf("%w: %d bytes before fill", ErrHeaderTooLarge, len(core))
		}
	}

	lenSize := protowire.SizeVarint(uint64(fillLen))
	total := 4 + len(core) + tagSize + lenSize + fillLen
	if total != HeaderSize {
		return nil, fmt.Errorf("%w: could not converge fill padding", ErrHeaderTooLarge)
	}

	core = protowire.AppendTag(core, fieldFill, protowire.BytesType)
	core = protowire.AppendBytes(core, make([]byte, fillLen))

	out := make([]byte, 4, HeaderSize)
	binary.BigEndian.PutUint32(out[0:4], uint32(len(core)))
	out = append(out, core...)
	if len(out) != HeaderSize {
		return nil, fmt.Errorf("%w: serialized to %d bytes, want %d", ErrHeaderTooLarge, len(out), HeaderSize)
	}
	return out, nil
}

// UnmarshalHeader parses the fixed 4096-byte header region produced by
// MarshalHeader.
func UnmarshalHeader(data []byte) (*Header, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: header region too short", ErrTruncated)
	}
	length := binary.BigEndian.Uint32(data[0:4])
	if int(length) > len(data)-4 {
		return nil, fmt.Errorf("%w: header length %d exceeds region", ErrTruncated, length)
	}
	buf := data[4 : 4+int(length)]

	h := &Header{}
	for len(buf) > 0 {
		num, typ, n := protowire.ConsumeTag(buf)
		if n < 0 {
			return nil, fmt.Errorf("%w: bad tag", ErrTruncated)
		}
		buf = buf[n:]

		switch num {
		case fieldAudioID:
			v, n := protowire.ConsumeVarint(buf)
			if n < 0 {
				return nil, fmt.Errorf("%w: bad audio_id", ErrTruncated)
			}
			h.AudioID = uint32(v)
			buf = buf[n:]
		case fieldSHA1Hash:
			v, n := protowire.ConsumeBytes(buf)
			if n < 0 {
				return nil, fmt.Errorf("%w: bad sha1_hash", ErrTruncated)
			}
			copy(h.SHA1Hash[:], v)
			buf = buf[n:]
		case fieldNumBytes:
			v, n := protowire.ConsumeVarint(buf)
			if n < 0 {
				return nil, fmt.Errorf("%w: bad num_bytes", ErrTruncated)
			}
			h.NumBytes = v
			buf = buf[n:]
		case fieldTrackPageNums:
			v, n := protowire.ConsumeBytes(buf)
			if n < 0 {
				return nil, fmt.Errorf("%w: bad track_page_nums", ErrTruncated)
			}
			rest := v
			for len(rest) > 0 {
				p, pn := protowire.ConsumeVarint(rest)
				if pn < 0 {
					return nil, fmt.Errorf("%w: bad track_page_nums entry", ErrTruncated)
				}
				h.TrackPageNums = append(h.TrackPageNums, uint32(p))
				rest = rest[pn:]
			}
			buf = buf[n:]
		case fieldFill:
			_, n := protowire.ConsumeBytes(buf)
			if n < 0 {
				return nil, fmt.Errorf("%w: bad fill", ErrTruncated)
			}
			buf = buf[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, buf)
			if n < 0 {
				return nil, fmt.Errorf("%w: unknown field %d", ErrTruncated, num)
			}
			buf = buf[n:]
		}
	}
	return h, nil
}
