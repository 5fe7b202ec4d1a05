package opus

/*
#cgo pkg-config: opus
#include <opus.h>
*/
import "C"
import (
	"fmt"
	"unsafe"
)

// Pad returns a copy of an Opus packet grown to newLen bytes using libopus's
// own repair-padding convention: the copy's TOC and frame-count fields are
// rewritten to describe trailing padding rather than appending opaque
// bytes a decoder would choke on. The input packet is not modified. If the
// packet is already newLen bytes or longer, it is returned unchanged.
func Pad(packet Frame, newLen int) (Frame, error) {
	if newLen <= len(packet) {
		return packet, nil
	}
	buf := make([]byte, newLen)
	copy(buf, packet)

	ret := C.opus_packet_pad(
		(*C.uchar)(unsafe.Pointer(&buf[0])),
		C.opus_int32(len(packet)),
		C.opus_int32(newLen),
	)
	if ret != C.OPUS_OK {
		return nil, fmt.Errorf("opus: pad failed: %s", C.GoString(C.opus_strerror(ret)))
	}
	return Frame(buf), nil
}
