package eventcore

import (
	"os"

	"golang.org/x/sys/unix"
)

// MmapWriter appends framed events to a fixed-length, memory-mapped log
// file. It is single-threaded: all methods must be called from one
// goroutine. Durability is checkpointed explicitly by Sync; between syncs
// the on-disk state after a crash is indeterminate but always a
// consistent prefix, because readers never trust bytes past the
// header's persisted write offset.
type MmapWriter struct {
	file        *os.File
	data        []byte
	capacity    uint64
	arenaCap    uint64
	eventCount  uint64
	writeOffset uint64
	opts        WriterOptions
}

// CreateMmapWriter opens or creates the file at path, sizes it to exactly
// capacity bytes, and memory-maps it read/write. A newly created (or
// previously too-small) file gets a fresh, empty header; an existing
// valid file resumes appending from its persisted event_count and
// write_offset. capacity must be large enough to hold the 64-byte file
// header.
func CreateMmapWriter(path string, capacity uint64, opts WriterOptions) (*MmapWriter, error) {
	opts = opts.withDefaults()
	if capacity < fileHeaderSize {
		return nil, &InvalidCapacityError{Capacity: capacity, Reason: "too small for file header"}
	}

	var file *os.File
	err := retryOperation(func() error {
		f, openErr := os.OpenFile(path, os.O_RDWR|os.O_CREATE, os.FileMode(opts.FileMode))
		if openErr != nil {
			return openErr
		}
		file = f
		return nil
	}, opts.RetryCount, opts.RetryDelay)
	if err != nil {
		ioErr := &IOError{Op: "open", Path: path, Err: err}
		if opts.ErrorCallback != nil {
			opts.ErrorCallback("open", ioErr)
		}
		return nil, ioErr
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, &IOError{Op: "stat", Path: path, Err: err}
	}

	fresh := info.Size() < fileHeaderSize
	if info.Size() != int64(capacity) {
		if err := file.Truncate(int64(capacity)); err != nil {
			_ = file.Close()
			return nil, &IOError{Op: "truncate", Path: path, Err: err}
		}
	}

	data, err := unix.Mmap(int(file.Fd()), 0, int(capacity), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = file.Close()
		return nil, &IOError{Op: "mmap", Path: path, Err: err}
	}

	w := &MmapWriter{
		file:     file,
		data:     data,
		capacity: capacity,
		arenaCap: capacity - fileHeaderSize,
		opts:     opts,
	}

	if fresh {
		putFileHeader(w.data[:fileHeaderSize], fileHeader{})
	} else {
		hdr, ferr := getFileHeader(w.data[:fileHeaderSize])
		if ferr != nil {
			_ = unix.Munmap(w.data)
			_ = file.Close()
			if fe, ok := ferr.(*FormatError); ok {
				fe.Path = path
				return nil, fe
			}
			return nil, ferr
		}
		w.eventCount = hdr.eventCount
		w.writeOffset = hdr.writeOffset
	}

	return w, nil
}

// WriteEvent copies header and payload into the arena at the current
// write offset and returns true, or returns false without writing
// anything if the frame would not fit in the remaining arena — the
// writer never rotates or grows the file. The header fields
// (event_count, write_offset) are updated in the mapped region
// immediately; durability still requires a subsequent Sync.
func (w *MmapWriter) WriteEvent(h EventHeader, payload []byte) bool {
	need := uint64(HeaderSize + len(payload))
	if w.writeOffset+need > w.arenaCap {
		return false
	}

	base := fileHeaderSize + w.writeOffset
	putHeader(w.data[base:], h)
	copy(w.data[base+HeaderSize:], payload)

	w.writeOffset += need
	w.eventCount++
	putFileHeader(w.data[:fileHeaderSize], fileHeader{eventCount: w.eventCount, writeOffset: w.writeOffset})
	return true
}

// Sync flushes the mapped region to stable storage synchronously,
// retrying on transient failure per opts.RetryCount/RetryDelay. After a
// successful Sync, a crash leaves a file readable by MmapReader
// containing exactly the events whose WriteEvent returned true before
// this call. If every retry is exhausted, opts.ErrorCallback (if set) is
// invoked before the error is returned.
func (w *MmapWriter) Sync() error {
	err := retryOperation(func() error {
		return unix.Msync(w.data, unix.MS_SYNC)
	}, w.opts.RetryCount, w.opts.RetryDelay)
	if err != nil {
		ioErr := &IOError{Op: "msync", Path: w.file.Name(), Err: err}
		if w.opts.ErrorCallback != nil {
			w.opts.ErrorCallback("msync", ioErr)
		}
		return ioErr
	}
	return nil
}

// WriterStats is a point-in-time snapshot of a MmapWriter's arena usage.
type WriterStats struct {
	EventCount    uint64
	WriteOffset   uint64
	ArenaCapacity uint64
	FillRatio     float64
}

// Stats returns a snapshot of the writer's current arena usage.
func (w *MmapWriter) Stats() WriterStats {
	var fill float64
	if w.arenaCap > 0 {
		fill = float64(w.writeOffset) / float64(w.arenaCap)
	}
	return WriterStats{
		EventCount:    w.eventCount,
		WriteOffset:   w.writeOffset,
		ArenaCapacity: w.arenaCap,
		FillRatio:     fill,
	}
}

// Close unmaps the file and closes the underlying descriptor. It does not
// implicitly Sync; callers that need durability must call Sync first.
func (w *MmapWriter) Close() error {
	munmapErr := unix.Munmap(w.data)
	closeErr := w.file.Close()
	if munmapErr != nil {
		return &IOError{Op: "munmap", Path: w.file.Name(), Err: munmapErr}
	}
	if closeErr != nil {
		return &IOError{Op: "close", Path: w.file.Name(), Err: closeErr}
	}
	return nil
}
