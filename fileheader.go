package eventcore

import "encoding/binary"

// fileHeaderSize is the fixed size, in bytes, of the header at the start
// of every mmap log file.
const fileHeaderSize = 64

// fileMagic is the 4-byte ASCII tag identifying a valid log file: "EVTL".
var fileMagic = [4]byte{'E', 'V', 'T', 'L'}

// fileVersion is the only on-disk format version this package writes or
// understands.
const fileVersion uint32 = 1

// fileHeader mirrors the 64-byte on-disk layout (all little-endian):
//
//	off  size  field
//	0    4     magic ("EVTL")
//	4    4     version (1)
//	8    8     eventCount
//	16   8     writeOffset
//	24   40    zero padding
type fileHeader struct {
	eventCount  uint64
	writeOffset uint64
}

func putFileHeader(dst []byte, h fileHeader) {
	copy(dst[0:4], fileMagic[:])
	binary.LittleEndian.PutUint32(dst[4:8], fileVersion)
	binary.LittleEndian.PutUint64(dst[8:16], h.eventCount)
	binary.LittleEndian.PutUint64(dst[16:24], h.writeOffset)
	for i := 24; i < fileHeaderSize; i++ {
		dst[i] = 0
	}
}

func getFileHeader(src []byte) (fileHeader, error) {
	if src[0] != fileMagic[0] || src[1] != fileMagic[1] || src[2] != fileMagic[2] || src[3] != fileMagic[3] {
		return fileHeader{}, &FormatError{Reason: "bad magic"}
	}
	if v := binary.LittleEndian.Uint32(src[4:8]); v != fileVersion {
		return fileHeader{}, &FormatError{Reason: "unsupported version"}
	}
	return fileHeader{
		eventCount:  binary.LittleEndian.Uint64(src[8:16]),
		writeOffset: binary.LittleEndian.Uint64(src[16:24]),
	}, nil
}
