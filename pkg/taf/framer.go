package taf

import (
	"fmt"

	"github.com/toniebox-reverse-engineering/teddy-cloud/pkg/audio/codec/opus"
)

const (
	sampleRate      = 48000
	channels        = 2
	bitrate         = 96000
	samplesPerFrame = 2880 // 60ms at 48kHz
	minPacketSize   = 64
)

// framer turns a stream of interleaved 16-bit stereo PCM samples into
// fixed 60ms Opus packets, tracking the cumulative granule position and
// buffering any trailing bytes that don't make up a whole sample pair.
type framer struct {
	enc *opus.Encoder

	carry   []byte  // 0-3 leftover PCM bytes not yet a full sample pair
	pending []int16 // accumulated samples, always < samplesPerFrame*channels

	granule  uint64
	anyInput bool
}

func newFramer() (*framer, error) {
	enc, err := opus.NewAudioEncoder(sampleRate, channels)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}
	if err := enc.SetBitrate(bitrate); err != nil {
		enc.Close()
		return nil, fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}
	return &framer{enc: enc}, nil
}

func (f *framer) Close() {
	if f.enc != nil {
		f.enc.Close()
		f.enc = nil
	}
}

// Granule returns the cumulative sample count encoded so far.
func (f *framer) Granule() uint64 {
	return f.granule
}

// Write appends raw PCM bytes and returns zero or more padded Opus packets
// completed as a result, each paired with the granule position after it.
func (f *framer) Write(data []byte) ([]packet, error) {
	if len(data) > 0 {
		f.anyInput = true
	}

	buf := data
	if len(f.carry) > 0 {
		buf = append(append([]byte{}, f.carry...), data...)
		f.carry = nil
	}

	n := len(buf) - len(buf)%4
	for i := 0; i+1 < n; i += 2 {
		f.pending = append(f.pending, int16(uint16(buf[i])|uint16(buf[i+1])<<8))
	}
	if rem := len(buf) - n; rem > 0 {
		f.carry = append(f.carry, buf[n:]...)
	}

	var out []packet
	for len(f.pending) >= samplesPerFrame*channels {
		frame := f.pending[:samplesPerFrame*channels]
		f.pending = f.pending[samplesPerFrame*channels:]

		pkt, err := f.encodeFrame(frame)
		if err != nil {
			return out, err
		}
		out = append(out, pkt)
	}
	return out, nil
}

func (f *framer) encodeFrame(samples []int16) (packet, error) {
	raw, err := f.enc.Encode(samples, samplesPerFrame)
	if err != nil {
		return packet{}, fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}
	padded, err := opus.Pad(raw, minPacketSize)
	if err != nil {
		return packet{}, fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}
	f.granule += granuleIncrement(raw)
	return packet{data: padded, granule: f.granule}, nil
}

// granuleIncrement reads the TOC byte libopus wrote at the front of raw and
// derives the granule step from its configuration and frame count, rather
// than assuming every packet is exactly samplesPerFrame long.
func granuleIncrement(raw opus.Frame) uint64 {
	if len(raw) == 0 {
		return samplesPerFrame
	}
	if inc := raw.Configuration().PageGranuleIncrement(); inc > 0 {
		frames := 1
		switch raw[0] & 0x03 {
		case 1, 2:
			frames = 2
		case 3:
			if len(raw) > 1 {
				if _, _, n := opus.ParseFrameCountByte(raw[1]); n > 0 {
					frames = int(n)
				}
			}
		}
		return uint64(inc * frames)
	}
	return samplesPerFrame
}

// Flush zero-extends any partial trailing frame and encodes it, then
// appends one packet holding a single frame of encoded silence. That packet
// is not sized to the page writer's remaining free space; the last, partly
// filled page is emitted by the page writer's Close. It is called exactly once, from Close. It is a no-op on a stream that
// never received any input.
func (f *framer) Flush() ([]packet, error) {
	var out []packet

	if len(f.pending) > 0 || len(f.carry) > 0 {
		frame := make([]int16, samplesPerFrame*channels)
		copy(frame, f.pending)
		f.pending = nil
		f.carry = nil

		pkt, err := f.encodeFrame(frame)
		if err != nil {
			return out, err
		}
		out = append(out, pkt)
	}

	if !f.anyInput {
		return out, nil
	}

	silence := make([]int16, samplesPerFrame*channels)
	pkt, err := f.encodeFrame(silence)
	if err != nil {
		return out, err
	}
	out = append(out, pkt)
	return out, nil
}

// packet is one padded Opus packet ready for the page writer, paired with
// the granule position it advances the stream to.
type packet struct {
	data    opus.Frame
	granule uint64
}
