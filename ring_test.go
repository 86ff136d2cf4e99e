package eventcore

import (
	"bytes"
	"testing"
)

func TestNewRingBufferInvalidCapacity(t *testing.T) {
	t.Run("TooSmall", func(t *testing.T) {
		_, err := NewRingBuffer(8)
		if err == nil {
			t.Fatal("expected error for capacity smaller than header size")
		}
		var ice *InvalidCapacityError
		if !asInvalidCapacity(err, &ice) {
			t.Fatalf("expected *InvalidCapacityError, got %T", err)
		}
	})

	t.Run("NotPowerOfTwo", func(t *testing.T) {
		_, err := NewRingBuffer(48)
		if err == nil {
			t.Fatal("expected error for non-power-of-two capacity")
		}
	})
}

func asInvalidCapacity(err error, target **InvalidCapacityError) bool {
	ice, ok := err.(*InvalidCapacityError)
	if ok {
		*target = ice
	}
	return ok
}

func TestRingBufferSingleFrameRoundTrip(t *testing.T) {
	r, err := NewRingBuffer(64)
	if err != nil {
		t.Fatalf("NewRingBuffer() failed: %v", err)
	}

	payload := []byte("hello")
	h := NewHeader(100, 1, uint16(len(payload)))
	if err := r.WriteEvent(h, payload); err != nil {
		t.Fatalf("WriteEvent() failed: %v", err)
	}

	got, gotPayload, ok := r.ReadEvent()
	if !ok {
		t.Fatal("ReadEvent() returned ok=false")
	}
	if got != h {
		t.Errorf("header = %+v, want %+v", got, h)
	}
	if !bytes.Equal(gotPayload, payload) {
		t.Errorf("payload = %q, want %q", gotPayload, payload)
	}

	if _, _, ok := r.ReadEvent(); ok {
		t.Error("expected ring to be empty after draining the only frame")
	}
}

func TestRingBufferFIFOOrder(t *testing.T) {
	r, err := NewRingBuffer(128)
	if err != nil {
		t.Fatalf("NewRingBuffer() failed: %v", err)
	}

	payloads := [][]byte{[]byte("one"), []byte("two"), []byte("three")}
	for i, p := range payloads {
		if err := r.WriteEvent(NewHeader(uint64(i), uint8(i), uint16(len(p))), p); err != nil {
			t.Fatalf("WriteEvent(%d) failed: %v", i, err)
		}
	}

	for i, want := range payloads {
		h, got, ok := r.ReadEvent()
		if !ok {
			t.Fatalf("ReadEvent(%d) returned ok=false", i)
		}
		if h.EventType != uint8(i) {
			t.Errorf("frame %d: EventType = %d, want %d", i, h.EventType, i)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("frame %d: payload = %q, want %q", i, got, want)
		}
	}
}

func TestRingBufferNotEnoughSpace(t *testing.T) {
	r, err := NewRingBuffer(32)
	if err != nil {
		t.Fatalf("NewRingBuffer() failed: %v", err)
	}

	payload := make([]byte, 20)
	err = r.WriteEvent(NewHeader(0, 0, uint16(len(payload))), payload)
	if err == nil {
		t.Fatal("expected NotEnoughSpaceError")
	}
	nse, ok := err.(*NotEnoughSpaceError)
	if !ok {
		t.Fatalf("expected *NotEnoughSpaceError, got %T", err)
	}
	if nse.Required != 36 {
		t.Errorf("Required = %d, want 36", nse.Required)
	}
	if nse.Available != 32 {
		t.Errorf("Available = %d, want 32", nse.Available)
	}
}

// TestRingBufferWrapAround exercises the padding/skip-frame path: a frame
// written near the physical end of the region must not straddle it, so
// the writer pads to the end and starts the frame again at offset 0.
func TestRingBufferWrapAround(t *testing.T) {
	r, err := NewRingBuffer(64)
	if err != nil {
		t.Fatalf("NewRingBuffer() failed: %v", err)
	}

	// Drain the ring right up to a position close to the physical end,
	// then write a frame too large to fit before wrapping.
	filler := make([]byte, 28) // frame size 16+28 = 44
	if err := r.WriteEvent(NewHeader(0, 0, uint16(len(filler))), filler); err != nil {
		t.Fatalf("filler WriteEvent() failed: %v", err)
	}
	if _, _, ok := r.ReadEvent(); !ok {
		t.Fatal("failed to drain filler frame")
	}
	// writePos is now 44, readPos is 44: pos=44, distanceToEnd=20.
	// A 27-byte frame (16 header + 11 payload) does not fit before the end.
	payload := []byte("wraparound!")
	if err := r.WriteEvent(NewHeader(1, 2, uint16(len(payload))), payload); err != nil {
		t.Fatalf("wrap WriteEvent() failed: %v", err)
	}

	h, got, ok := r.ReadEvent()
	if !ok {
		t.Fatal("ReadEvent() after wrap returned ok=false")
	}
	if h.Timestamp != 1 || h.EventType != 2 {
		t.Errorf("header after wrap = %+v", h)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("payload after wrap = %q, want %q", got, payload)
	}
}

func TestRingBufferLenFreeIsEmpty(t *testing.T) {
	r, err := NewRingBuffer(64)
	if err != nil {
		t.Fatalf("NewRingBuffer() failed: %v", err)
	}
	if !r.IsEmpty() {
		t.Error("new ring should be empty")
	}
	if r.Free() != 64 {
		t.Errorf("Free() = %d, want 64", r.Free())
	}

	payload := make([]byte, 10)
	if err := r.WriteEvent(NewHeader(0, 0, 10), payload); err != nil {
		t.Fatalf("WriteEvent() failed: %v", err)
	}
	if r.IsEmpty() {
		t.Error("ring should not be empty after a write")
	}
	if want := uint64(HeaderSize + 10); r.Len() != want {
		t.Errorf("Len() = %d, want %d", r.Len(), want)
	}
	if want := 64 - (HeaderSize + 10); r.Free() != uint64(want) {
		t.Errorf("Free() = %d, want %d", r.Free(), want)
	}
}
