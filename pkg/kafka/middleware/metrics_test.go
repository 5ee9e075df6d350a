package kafka_middleware

import (
	"context"
	"errors"
	"testing"

	"bedbook/pkg/kafka"
	"bedbook/pkg/logger"
)

func TestCounters(t *testing.T) {
	var c Counters
	mw := c.ConsumerMiddleware()
	logged := LoggingConsumerMiddleware(logger.Discard())

	ok := func(ctx context.Context, msg kafka.Message) error { return nil }
	fail := func(ctx context.Context, msg kafka.Message) error { return errors.New("boom") }

	msg := kafka.Message{Key: "b1", Headers: map[string]string{}}
	_ = mw(context.Background(), msg, ok)
	_ = mw(context.Background(), msg, ok)
	if err := logged(context.Background(), msg, func(ctx context.Context, m kafka.Message) error {
		return mw(ctx, m, fail)
	}); err == nil {
		t.Fatal("error should propagate through middleware")
	}

	s := c.Snapshot()
	if s.Succeeded != 2 || s.Failed != 1 {
		t.Errorf("snapshot = %+v, want 2 ok / 1 failed", s)
	}
}
