package diag

import "sync"

// Collector is a Reporter that keeps every event in arrival order.
// It is safe for concurrent use.
type Collector struct {
	mu     sync.Mutex
	events Events
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector { return &Collector{} }

func (c *Collector) Report(e Event) {
	c.mu.Lock()
	c.events = append(c.events, e)
	c.mu.Unlock()
}

// Events returns a snapshot of the collected events.
func (c *Collector) Events() Events {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append(Events(nil), c.events...)
}

// Err returns the error-severity events as an error, or nil when there are
// none.
func (c *Collector) Err() error {
	if errs := c.Events().Errors(); len(errs) > 0 {
		return errs
	}
	return nil
}

// Reset drops all collected events.
func (c *Collector) Reset() {
	c.mu.Lock()
	c.events = nil
	c.mu.Unlock()
}
