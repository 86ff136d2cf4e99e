package eventcore

import "encoding/binary"

// HeaderSize is the fixed, on-the-wire size of an EventHeader in bytes.
const HeaderSize = 16

// EventHeader is the fixed 16-byte record that precedes every payload in a
// ring buffer or mmap log. The wire layout (little-endian) is:
//
//	off  size  field
//	0    8     Timestamp
//	8    1     EventType
//	9    1     Flags
//	10   2     PayloadLen
//	12   4     reserved, zero on write, ignored on read
//
// A header is always followed, contiguously, by exactly PayloadLen bytes
// of payload. The pair (header, payload) is a frame of size
// HeaderSize+PayloadLen.
type EventHeader struct {
	Timestamp  uint64
	EventType  uint8
	Flags      uint8
	PayloadLen uint16
}

// NewHeader builds a header for a payload of length payloadLen. Flags and
// the reserved bytes are always zero; event_type and payload_len are not
// validated beyond payloadLen fitting the 16-bit wire field.
func NewHeader(timestamp uint64, eventType uint8, payloadLen uint16) EventHeader {
	return EventHeader{
		Timestamp:  timestamp,
		EventType:  eventType,
		PayloadLen: payloadLen,
	}
}

// TotalSize returns HeaderSize plus the header's PayloadLen — the size in
// bytes of the full frame this header describes.
func (h EventHeader) TotalSize() int {
	return HeaderSize + int(h.PayloadLen)
}

// putHeader writes h's wire representation into the first HeaderSize bytes
// of dst. dst must have length >= HeaderSize.
func putHeader(dst []byte, h EventHeader) {
	binary.LittleEndian.PutUint64(dst[0:8], h.Timestamp)
	dst[8] = h.EventType
	dst[9] = h.Flags
	binary.LittleEndian.PutUint16(dst[10:12], h.PayloadLen)
	dst[12], dst[13], dst[14], dst[15] = 0, 0, 0, 0
}

// getHeader decodes a header from the first HeaderSize bytes of src. src
// must have length >= HeaderSize.
func getHeader(src []byte) EventHeader {
	return EventHeader{
		Timestamp:  binary.LittleEndian.Uint64(src[0:8]),
		EventType:  src[8],
		Flags:      src[9],
		PayloadLen: binary.LittleEndian.Uint16(src[10:12]),
	}
}
