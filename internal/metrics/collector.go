package metrics

import (
	"sync"
	"time"
)

// Collector accumulates in-process counters for the end-of-run summary.
type Collector struct {
	mu sync.RWMutex

	games          map[string]int64
	plies          int64
	queryErrors    int64
	queryDurations []time.Duration
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		games: make(map[string]int64),
	}
}

// RecordGame records a processed game by outcome.
func (c *Collector) RecordGame(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.games[status]++
}

// RecordQuery records one engine query.
func (c *Collector) RecordQuery(err error, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.queryErrors++
		return
	}

	c.plies++
	// Keep the last 1000 durations for the average
	c.queryDurations = append(c.queryDurations, duration)
	if len(c.queryDurations) > 1000 {
		c.queryDurations = c.queryDurations[1:]
	}
}

// Summary returns the counters for the end-of-run log line.
func (c *Collector) Summary() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	summary := make(map[string]interface{})
	for status, n := range c.games {
		summary["games_"+status] = n
	}
	summary["plies"] = c.plies
	summary["engine_errors"] = c.queryErrors

	var total time.Duration
	for _, d := range c.queryDurations {
		total += d
	}
	if len(c.queryDurations) > 0 {
		avg := total / time.Duration(len(c.queryDurations))
		summary["avg_query_ms"] = avg.Milliseconds()
	}

	return summary
}
