package eventcore

// flagSkip marks a synthetic header written internally by WriteEvent when a
// frame would straddle the end of the backing region. It is never set on a
// header supplied by a caller and never returned from ReadEvent —
// readers consume and discard skip markers before a real frame is handed
// back. Reusing a bit of the header's Flags byte for this costs nothing on
// the wire: spec'd frame layout already treats Flags as reserved/user.
const flagSkip uint8 = 0x01

func isPowerOfTwo(x uint64) bool {
	return x != 0 && x&(x-1) == 0
}

// RingBuffer is a single-threaded byte-region ring buffer carrying framed
// events. It is not safe for concurrent use by more than one goroutine;
// use SpscRingBuffer for a producer and consumer running on separate
// goroutines.
type RingBuffer struct {
	buf      []byte
	capacity uint64
	mask     uint64
	writePos uint64
	readPos  uint64
}

// NewRingBuffer creates a ring buffer of the given capacity, which must be
// a power of two and at least HeaderSize bytes.
func NewRingBuffer(capacity uint64) (*RingBuffer, error) {
	if capacity < HeaderSize {
		return nil, &InvalidCapacityError{Capacity: capacity, Reason: "too small"}
	}
	if !isPowerOfTwo(capacity) {
		return nil, &InvalidCapacityError{Capacity: capacity, Reason: "not power of two"}
	}
	return &RingBuffer{
		buf:      make([]byte, capacity),
		capacity: capacity,
		mask:     capacity - 1,
	}, nil
}

// Capacity returns the fixed byte capacity of the ring.
func (r *RingBuffer) Capacity() uint64 { return r.capacity }

// Len returns the number of unread bytes currently buffered.
func (r *RingBuffer) Len() uint64 { return r.writePos - r.readPos }

// Free returns the number of bytes currently available to WriteEvent.
func (r *RingBuffer) Free() uint64 { return r.capacity - r.Len() }

// IsEmpty reports whether the ring has no unread frames.
func (r *RingBuffer) IsEmpty() bool { return r.writePos == r.readPos }

// WriteEvent copies header and payload into the ring as a single frame of
// size HeaderSize+len(payload). It returns NotEnoughSpaceError if the
// frame does not fit in the current free space.
//
// When the frame would straddle the end of the backing region, WriteEvent
// instead pads out to the end (inserting a synthetic skip frame, or
// silently advancing past a remainder too small to hold one) and writes
// the real frame starting at offset 0, so every frame handed back by
// ReadEvent is a contiguous, zero-copy slice.
func (r *RingBuffer) WriteEvent(h EventHeader, payload []byte) error {
	need := uint64(HeaderSize + len(payload))
	free := r.Free()
	if need > free {
		return &NotEnoughSpaceError{Required: need, Available: free}
	}

	pos := r.writePos & r.mask
	distanceToEnd := r.capacity - pos

	if need > distanceToEnd {
		// The frame doesn't fit before the physical end of the region.
		// The padded amount (distanceToEnd) plus the real frame must
		// both still be within the bytes we just confirmed are free, or
		// we would overwrite data the consumer hasn't read yet.
		if distanceToEnd+need > free {
			return &NotEnoughSpaceError{Required: need, Available: free}
		}
		if distanceToEnd >= HeaderSize {
			putHeader(r.buf[pos:], EventHeader{Flags: flagSkip, PayloadLen: uint16(distanceToEnd - HeaderSize)})
		}
		r.writePos += distanceToEnd
		pos = 0
	}

	putHeader(r.buf[pos:], h)
	copy(r.buf[pos+HeaderSize:], payload)
	r.writePos += need
	return nil
}

// ReadEvent returns the next frame in FIFO order, or ok=false if fewer
// than HeaderSize bytes are buffered. The returned payload slice aliases
// the ring's backing array and is only valid until the next WriteEvent
// call that wraps over it.
func (r *RingBuffer) ReadEvent() (h EventHeader, payload []byte, ok bool) {
	for {
		used := r.writePos - r.readPos
		if used < HeaderSize {
			return EventHeader{}, nil, false
		}

		pos := r.readPos & r.mask
		distanceToEnd := r.capacity - pos

		if distanceToEnd < HeaderSize {
			// Writer never starts a frame this close to the physical
			// end; this is always padding, silently skipped.
			r.readPos += distanceToEnd
			continue
		}

		hdr := getHeader(r.buf[pos:])
		if hdr.Flags&flagSkip != 0 {
			r.readPos += uint64(hdr.TotalSize())
			continue
		}

		need := uint64(hdr.TotalSize())
		if used < need {
			return EventHeader{}, nil, false
		}

		payload = r.buf[pos+HeaderSize : pos+uint64(need)]
		r.readPos += need
		return hdr, payload, true
	}
}
