package eventcore

import "sync/atomic"

// cacheLinePad separates the producer's and consumer's cursors by more
// than a typical 64-byte cache line so that the two goroutines never
// false-share a line while spinning on their own counter. This is a
// correctness-for-performance property, not a micro-optimization: without
// it, every producer write and consumer read would invalidate the other
// side's cache line.
const cacheLinePad = 128

// SpscRingBuffer is the shared backing region for a single-producer,
// single-consumer ring of framed events. It is never used directly for
// I/O — call Split to obtain a Producer and a Consumer, each of which
// holds exclusive rights to its side of the cursor pair and may be handed
// to a different goroutine. Using both handles from the same goroutine is
// legal; sharing either handle across goroutines is not.
type SpscRingBuffer struct {
	buf      []byte
	capacity uint64
	mask     uint64

	writePos atomic.Uint64
	_        [cacheLinePad - 8]byte
	readPos  atomic.Uint64
	_        [cacheLinePad - 8]byte
}

// NewSpscRingBuffer creates a shared region of the given capacity, which
// must be a power of two and at least HeaderSize bytes.
func NewSpscRingBuffer(capacity uint64) (*SpscRingBuffer, error) {
	if capacity < HeaderSize {
		return nil, &InvalidCapacityError{Capacity: capacity, Reason: "too small"}
	}
	if !isPowerOfTwo(capacity) {
		return nil, &InvalidCapacityError{Capacity: capacity, Reason: "not power of two"}
	}
	return &SpscRingBuffer{
		buf:      make([]byte, capacity),
		capacity: capacity,
		mask:     capacity - 1,
	}, nil
}

// Capacity returns the fixed byte capacity of the region.
func (r *SpscRingBuffer) Capacity() uint64 { return r.capacity }

// Split returns a Producer and a Consumer sharing this region. The
// backing buffer is kept alive by Go's garbage collector for as long as
// either handle is reachable — there is no explicit close or drop.
func (r *SpscRingBuffer) Split() (*Producer, *Consumer) {
	return &Producer{r: r}, &Consumer{r: r}
}

// Producer holds the exclusive right to advance an SpscRingBuffer's write
// cursor. A Producer must only ever be used from one goroutine at a time;
// aliasing a Producer across goroutines violates the single-producer
// contract and is a programming error, not a recoverable condition.
type Producer struct {
	r    *SpscRingBuffer
	write uint64 // authoritative local copy; only this Producer advances it
}

// WriteEvent copies header and payload into the ring as a single frame.
// It never blocks and never allocates. It returns NotEnoughSpaceError if
// the frame does not fit in the space the consumer has freed so far.
//
// The free-space check loads the consumer's read cursor with acquire
// ordering; after copying the frame bytes, the new write cursor is
// published with a release store, so any byte written here is visible to
// the consumer once it observes the new cursor value.
func (p *Producer) WriteEvent(h EventHeader, payload []byte) error {
	r := p.r
	need := uint64(HeaderSize + len(payload))

	readPos := r.readPos.Load()
	free := r.capacity - (p.write - readPos)
	if need > free {
		return &NotEnoughSpaceError{Required: need, Available: free}
	}

	pos := p.write & r.mask
	distanceToEnd := r.capacity - pos

	if need > distanceToEnd {
		if distanceToEnd+need > free {
			return &NotEnoughSpaceError{Required: need, Available: free}
		}
		if distanceToEnd >= HeaderSize {
			putHeader(r.buf[pos:], EventHeader{Flags: flagSkip, PayloadLen: uint16(distanceToEnd - HeaderSize)})
		}
		p.write += distanceToEnd
		pos = 0
	}

	putHeader(r.buf[pos:], h)
	copy(r.buf[pos+HeaderSize:], payload)
	p.write += need
	r.writePos.Store(p.write)
	return nil
}

// Consumer holds the exclusive right to advance an SpscRingBuffer's read
// cursor. A Consumer must only ever be used from one goroutine at a time.
type Consumer struct {
	r    *SpscRingBuffer
	read uint64 // authoritative local copy; only this Consumer advances it
}

// ReadEvent returns the next frame in FIFO order, or ok=false if no full
// frame is currently available. It never blocks.
//
// The write cursor is loaded with acquire ordering before the frame bytes
// are read, and the new read cursor is published with a release store
// afterwards, completing the happens-before relationship WriteEvent
// establishes.
func (c *Consumer) ReadEvent() (h EventHeader, payload []byte, ok bool) {
	r := c.r
	for {
		writePos := r.writePos.Load()
		used := writePos - c.read
		if used < HeaderSize {
			return EventHeader{}, nil, false
		}

		pos := c.read & r.mask
		distanceToEnd := r.capacity - pos

		if distanceToEnd < HeaderSize {
			c.read += distanceToEnd
			r.readPos.Store(c.read)
			continue
		}

		hdr := getHeader(r.buf[pos:])
		if hdr.Flags&flagSkip != 0 {
			c.read += uint64(hdr.TotalSize())
			r.readPos.Store(c.read)
			continue
		}

		need := uint64(hdr.TotalSize())
		if used < need {
			return EventHeader{}, nil, false
		}

		payload = r.buf[pos+HeaderSize : pos+need]
		c.read += need
		r.readPos.Store(c.read)
		return hdr, payload, true
	}
}
