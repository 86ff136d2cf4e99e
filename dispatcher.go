package eventcore

// EventConsumer is the capability a registered consumer exposes to a
// Dispatcher: it accepts a delivered frame and reports whether it handled
// it successfully, and it names itself for statistics and introspection.
type EventConsumer interface {
	// Consume handles one delivered frame. true means success; false
	// means failure. Consume must never panic on bad input — a failing
	// consumer is accounted in statistics, not propagated.
	Consume(h EventHeader, payload []byte) bool
	// Name identifies this consumer in Dispatcher statistics. Names need
	// not be unique, but unique names make DrainStats easier to read.
	Name() string
}

// ConsumerStats holds the processed/failed counters the Dispatcher tracks
// for a single registered consumer.
type ConsumerStats struct {
	Name      string
	Processed uint64
	Failed    uint64
}

// DrainStats summarizes one Drain or DrainBatch call: the number of
// events pulled off the ring, and each consumer's running totals after
// the call.
type DrainStats struct {
	EventsDrained uint64
	Consumers     []ConsumerStats
	// Totals sums Processed and Failed across every registered consumer.
	// Its Name field is left empty; use SuccessRate(stats.Totals) for an
	// overall success rate across the whole dispatch.
	Totals ConsumerStats
}

// eventReader is the minimal ring interface the Dispatcher drains. Both
// *RingBuffer and *Consumer (the SPSC read handle) satisfy it.
type eventReader interface {
	ReadEvent() (EventHeader, []byte, bool)
}

// Dispatcher drains a ring in registration order, fanning out every event
// to every registered consumer and tracking per-consumer statistics. It is
// single-threaded: a slow consumer blocks the drain, and consumers are
// never run concurrently with each other.
type Dispatcher struct {
	consumers []EventConsumer
	stats     []ConsumerStats
}

// AddConsumer appends c to the dispatch order. Later events are fanned out
// to consumers in the order they were added.
func (d *Dispatcher) AddConsumer(c EventConsumer) {
	d.consumers = append(d.consumers, c)
	d.stats = append(d.stats, ConsumerStats{Name: c.Name()})
}

// Consumers returns the names of registered consumers in dispatch order.
func (d *Dispatcher) Consumers() []string {
	names := make([]string, len(d.consumers))
	for i, c := range d.consumers {
		names[i] = c.Name()
	}
	return names
}

// RemoveConsumer drops the first registered consumer with the given name
// and reports whether one was found. Its accumulated statistics are
// discarded along with it.
func (d *Dispatcher) RemoveConsumer(name string) bool {
	for i, c := range d.consumers {
		if c.Name() == name {
			d.consumers = append(d.consumers[:i], d.consumers[i+1:]...)
			d.stats = append(d.stats[:i], d.stats[i+1:]...)
			return true
		}
	}
	return false
}

// Drain reads events from ring until it reports empty, fanning out every
// event to every registered consumer in registration order. A consumer
// that returns false is recorded as a failure and does not stop the
// drain or affect other consumers.
func (d *Dispatcher) Drain(ring eventReader) DrainStats {
	return d.drain(ring, 0, false)
}

// DrainBatch behaves like Drain but stops once limit events have been
// pulled off ring, regardless of how many consumers fan-out touched each
// one. A limit of 0 reads nothing.
func (d *Dispatcher) DrainBatch(ring eventReader, limit uint64) DrainStats {
	return d.drain(ring, limit, true)
}

func (d *Dispatcher) drain(ring eventReader, limit uint64, bounded bool) DrainStats {
	var drained uint64
	for {
		if bounded && drained >= limit {
			break
		}
		h, payload, ok := ring.ReadEvent()
		if !ok {
			break
		}
		for i, c := range d.consumers {
			if c.Consume(h, payload) {
				d.stats[i].Processed++
			} else {
				d.stats[i].Failed++
			}
		}
		drained++
	}

	out := DrainStats{EventsDrained: drained, Consumers: make([]ConsumerStats, len(d.stats))}
	copy(out.Consumers, d.stats)
	for _, s := range d.stats {
		out.Totals.Processed += s.Processed
		out.Totals.Failed += s.Failed
	}
	return out
}

// SuccessRate returns processed/(processed+failed) as a fraction in
// [0,1]. An empty stats value (no events processed or failed) yields 0.0,
// not NaN.
func SuccessRate(s ConsumerStats) float64 {
	total := s.Processed + s.Failed
	if total == 0 {
		return 0.0
	}
	return float64(s.Processed) / float64(total)
}
