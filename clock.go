package eventcore

import (
	"time"

	"github.com/agilira/go-timecache"
)

// Clock is a cached wall-clock time source for callers that don't already
// have one of their own. The core never calls this on the hot path — per
// the package's scope, producers supply their own timestamp — but
// benchmarks, tests, and simple integrations can use it instead of paying
// for a time.Now() syscall on every event.
type Clock struct {
	tc *timecache.TimeCache
}

// NewClock starts a cached clock refreshed at the given resolution. Lower
// resolutions track wall time more closely at the cost of more background
// work; callers on the hot path should prefer the coarsest resolution they
// can tolerate.
func NewClock(resolution time.Duration) *Clock {
	return &Clock{tc: timecache.NewWithResolution(resolution)}
}

// Now returns the current cached wall-clock time as nanoseconds since the
// Unix epoch, ready to drop straight into NewHeader. Being wall-clock time,
// it can step backwards if the system clock is adjusted.
func (c *Clock) Now() uint64 {
	return uint64(c.tc.CachedTime().UnixNano())
}

// Stop releases the clock's background refresh goroutine. Call it when
// the clock is no longer needed.
func (c *Clock) Stop() {
	c.tc.Stop()
}
