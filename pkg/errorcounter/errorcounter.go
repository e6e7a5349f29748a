// Package errorcounter implements the saturating error counter that
// drives the reconnect/backoff/fatal escalation shared by the proxy's
// pumps and the topic-label database's broker listener (spec §5, §7).
//
// Grounded on original_source/src/lib.rs's ErrorCounter{count: usize},
// whose is_too_mutch() trips at count > 40; that threshold is carried
// over unchanged as Threshold.
package errorcounter

// Threshold is the count beyond which Counter.TooMuch reports true. It
// matches the reference implementation's fixed value of 40.
const Threshold = 40

// Counter is a monotonically increasing failure tally with one reset
// operation. It is not safe for concurrent use; each pump or listener
// goroutine owns its own Counter.
type Counter struct {
	count int
}

// Inc increments the counter by one.
func (c *Counter) Inc() {
	c.count++
}

// Reset zeroes the counter, called whenever the owning connection
// re-establishes cleanly (e.g. on a broker ConnAck).
func (c *Counter) Reset() {
	c.count = 0
}

// Count returns the current tally.
func (c *Counter) Count() int {
	return c.count
}

// TooMuch reports whether the counter has exceeded Threshold, the
// signal to stop retrying and surface a fatal error to the supervisor.
func (c *Counter) TooMuch() bool {
	return c.count > Threshold
}
