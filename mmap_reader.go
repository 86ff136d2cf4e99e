package eventcore

import (
	"os"

	"golang.org/x/sys/unix"
)

// MmapReader provides read-only, zero-copy access to an mmap log file
// written by MmapWriter. It may be opened concurrently with an active
// writer on the same file; Replay only ever walks up to the write offset
// observed at open time, so a reader never trips over a frame the writer
// is in the middle of appending.
type MmapReader struct {
	file        *os.File
	data        []byte
	arenaCap    uint64
	eventCount  uint64
	writeOffset uint64
}

// OpenMmapReader opens path read-only and memory-maps it. The file must
// already contain a valid header (correct magic and a version this
// package understands); otherwise a *FormatError is returned.
func OpenMmapReader(path string) (*MmapReader, error) {
	file, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, &IOError{Op: "stat", Path: path, Err: err}
	}
	if info.Size() < fileHeaderSize {
		_ = file.Close()
		return nil, &FormatError{Path: path, Reason: "file smaller than header"}
	}

	data, err := unix.Mmap(int(file.Fd()), 0, int(info.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		_ = file.Close()
		return nil, &IOError{Op: "mmap", Path: path, Err: err}
	}

	hdr, ferr := getFileHeader(data[:fileHeaderSize])
	if ferr != nil {
		_ = unix.Munmap(data)
		_ = file.Close()
		if fe, ok := ferr.(*FormatError); ok {
			fe.Path = path
			return nil, fe
		}
		return nil, ferr
	}

	return &MmapReader{
		file:        file,
		data:        data,
		arenaCap:    uint64(len(data)) - fileHeaderSize,
		eventCount:  hdr.eventCount,
		writeOffset: hdr.writeOffset,
	}, nil
}

// EventCount returns the number of events recorded in the file header at
// open time.
func (r *MmapReader) EventCount() uint64 {
	return r.eventCount
}

// WriteOffset returns the arena byte offset recorded in the file header
// at open time — the boundary Replay will not read past.
func (r *MmapReader) WriteOffset() uint64 {
	return r.writeOffset
}

// Replay walks every frame from the start of the arena up to the write
// offset captured when the reader was opened, invoking visit with each
// header and a zero-copy slice of its payload backed directly by the
// mapped file. visit's payload slice is only valid for the duration of
// the call; callers that need to retain it must copy. Replay stops early
// if visit returns false, or if it runs off the recorded write offset
// because the underlying frame data is truncated or corrupt.
func (r *MmapReader) Replay(visit func(h EventHeader, payload []byte) bool) {
	it := r.Iterator()
	for {
		h, payload, ok := it.Next()
		if !ok {
			return
		}
		if !visit(h, payload) {
			return
		}
	}
}

// Iterator returns a fresh, single-pass FrameIterator positioned at the
// start of the arena. Unlike Replay, a FrameIterator lets the caller pull
// one frame at a time instead of handing control to a callback; it is
// finite (it stops at the write offset captured when the reader was
// opened) and restartable by calling Iterator again.
func (r *MmapReader) Iterator() *FrameIterator {
	return &FrameIterator{r: r}
}

// FrameIterator is a lazy, single-pass walk over the frames an MmapReader
// holds. A FrameIterator is not safe for concurrent use; obtain a
// separate one per goroutine via MmapReader.Iterator.
type FrameIterator struct {
	r   *MmapReader
	off uint64
}

// Next returns the next frame in arena order, or ok=false once the
// iterator has walked every frame up to the reader's recorded write
// offset. The returned payload is a zero-copy slice backed directly by
// the mapped file and is only valid until the next call to Next.
func (it *FrameIterator) Next() (h EventHeader, payload []byte, ok bool) {
	r := it.r
	if it.off+HeaderSize > r.writeOffset {
		return EventHeader{}, nil, false
	}

	base := fileHeaderSize + it.off
	h = getHeader(r.data[base : base+HeaderSize])
	frameSize := uint64(h.TotalSize())
	if it.off+frameSize > r.writeOffset {
		return EventHeader{}, nil, false
	}

	payload = r.data[base+HeaderSize : base+frameSize]
	it.off += frameSize
	return h, payload, true
}

// Close unmaps the file and closes the underlying descriptor.
func (r *MmapReader) Close() error {
	munmapErr := unix.Munmap(r.data)
	closeErr := r.file.Close()
	if munmapErr != nil {
		return &IOError{Op: "munmap", Path: r.file.Name(), Err: munmapErr}
	}
	if closeErr != nil {
		return &IOError{Op: "close", Path: r.file.Name(), Err: closeErr}
	}
	return nil
}
