// Package eventcore provides a low-latency, zero-copy event-logging core
// for applications where the producing thread must never block or
// allocate on the hot path — trading engines, telemetry collectors, and
// similar systems.
//
// The package is built from three tightly coupled subsystems:
//
//   - a lock-free single-producer/single-consumer ring buffer that carries
//     variable-length, framed events between a producing and a consuming
//     goroutine ([SpscRingBuffer], plus a single-threaded [RingBuffer] for
//     tests and single-goroutine use);
//   - a memory-mapped, append-only event log with a fixed on-disk layout,
//     crash-safe append writes, and zero-copy replay ([MmapWriter],
//     [MmapReader]);
//   - a consumer dispatcher that drains a ring in batches and fans out each
//     framed event to a registered set of consumers, tracking per-consumer
//     statistics ([Dispatcher]).
//
// # Quick Start
//
// Single-threaded round trip through a ring buffer:
//
//	ring, err := eventcore.NewRingBuffer(64)
//	if err != nil {
//		log.Fatal(err)
//	}
//	hdr := eventcore.NewHeader(1, 7, 3)
//	if err := ring.WriteEvent(hdr, []byte{1, 2, 3}); err != nil {
//		log.Fatal(err)
//	}
//	got, payload, ok := ring.ReadEvent()
//
// Cross-goroutine SPSC usage:
//
//	shared, err := eventcore.NewSpscRingBuffer(1 << 16)
//	if err != nil {
//		log.Fatal(err)
//	}
//	producer, consumer := shared.Split()
//
//	go func() {
//		for i := uint64(0); i < n; i++ {
//			for producer.WriteEvent(eventcore.NewHeader(i, 0, 8), seqBytes(i)) != nil {
//				// ring full: retry until the consumer frees space
//			}
//		}
//	}()
//
//	for seen := uint64(0); seen < n; {
//		if _, payload, ok := consumer.ReadEvent(); ok {
//			seen++
//			_ = payload
//		}
//	}
//
// Durable replay through the mmap log:
//
//	w, err := eventcore.CreateMmapWriter("events.log", 1<<20, eventcore.WriterOptions{})
//	if err != nil {
//		log.Fatal(err)
//	}
//	w.WriteEvent(hdr, payload)
//	w.Sync()
//	w.Close()
//
//	r, err := eventcore.OpenMmapReader("events.log")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer r.Close()
//	r.Replay(func(h eventcore.EventHeader, payload []byte) bool {
//		fmt.Println(h.Timestamp, len(payload))
//		return true // keep going
//	})
//
// Or, for pull-based replay instead of a callback:
//
//	it := r.Iterator()
//	for {
//		h, payload, ok := it.Next()
//		if !ok {
//			break
//		}
//		fmt.Println(h.Timestamp, len(payload))
//	}
//
// Fanning out with the dispatcher:
//
//	d := &eventcore.Dispatcher{}
//	d.AddConsumer(myConsumer)
//	stats := d.Drain(consumer)
//	fmt.Println(eventcore.SuccessRate(stats.Totals))
//
// # Scope
//
// This package is the shared core only. The service binary's CLI and flag
// parsing, the stress-test harness, logging/metrics formatting, and wall
// clock acquisition for event timestamps are all external collaborators
// and out of scope here — the producer supplies its own timestamp.
//
// Multi-producer or multi-consumer use of a single ring, cross-process ring
// sharing, schema evolution, compression, encryption, log rotation, and
// network distribution are explicitly not goals of this package.
package eventcore
