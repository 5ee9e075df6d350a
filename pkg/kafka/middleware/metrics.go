package kafka_middleware

import (
	"context"
	"sync/atomic"
	"time"

	"bedbook/pkg/kafka"
)

// Counters tracks message throughput for one producer or consumer. The zero
// value is ready to use.
type Counters struct {
	succeeded atomic.Int64
	failed    atomic.Int64
	elapsed   atomic.Int64 // nanoseconds
}

type Snapshot struct {
	Succeeded   int64
	Failed      int64
	AvgDuration time.Duration
}

func (c *Counters) Snapshot() Snapshot {
	ok, failed := c.succeeded.Load(), c.failed.Load()
	s := Snapshot{Succeeded: ok, Failed: failed}
	if total := ok + failed; total > 0 {
		s.AvgDuration = time.Duration(c.elapsed.Load() / total)
	}
	return s
}

func (c *Counters) observe(start time.Time, err error) {
	c.elapsed.Add(int64(time.Since(start)))
	if err != nil {
		c.failed.Add(1)
	} else {
		c.succeeded.Add(1)
	}
}

func (c *Counters) ProducerMiddleware() kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		c.observe(start, err)
		return err
	}
}

func (c *Counters) ConsumerMiddleware() kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		c.observe(start, err)
		return err
	}
}
