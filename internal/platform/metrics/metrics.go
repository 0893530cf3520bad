package metrics

import (
	"sync/atomic"
	"time"
)

// Collector tracks process-wide counters. HTTP counters are fed by the
// logging middleware; engine counters are bumped by the ranking and
// assignment services as they do real work.
type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	rateLimited     uint64
	totalDurationMs uint64

	rankingsComputed uint64
	requestsAssigned uint64
	requestsSkipped  uint64
	cyclesCompleted  uint64
	responsesStored  uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

func (c *Collector) RankingComputed() {
	atomic.AddUint64(&c.rankingsComputed, 1)
}

func (c *Collector) RequestsAssigned(n int) {
	if n > 0 {
		atomic.AddUint64(&c.requestsAssigned, uint64(n))
	}
}

func (c *Collector) RequestsSkipped(n int) {
	if n > 0 {
		atomic.AddUint64(&c.requestsSkipped, uint64(n))
	}
}

func (c *Collector) CycleCompleted() {
	atomic.AddUint64(&c.cyclesCompleted, 1)
}

func (c *Collector) ResponseStored() {
	atomic.AddUint64(&c.responsesStored, 1)
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":    total,
		"errorsTotal":      atomic.LoadUint64(&c.errorRequests),
		"rateLimitedTotal": atomic.LoadUint64(&c.rateLimited),
		"avgDurationMs":    avg,
		"rankingsComputed": atomic.LoadUint64(&c.rankingsComputed),
		"requestsAssigned": atomic.LoadUint64(&c.requestsAssigned),
		"requestsSkipped":  atomic.LoadUint64(&c.requestsSkipped),
		"cyclesCompleted":  atomic.LoadUint64(&c.cyclesCompleted),
		"responsesStored":  atomic.LoadUint64(&c.responsesStored),
	}
}
