package mykafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// Handler returns nil only when the message may be committed.
type Handler func(ctx context.Context, m kafka.Message) error

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

const (
	defaultAttempts = 3
	defaultBackoff  = time.Second
)

type Consumer struct {
	r        messageReader
	workers  int
	attempts int
	backoff  time.Duration
	log      *slog.Logger
}

func NewConsumer(brokers []string, group, topic string, workers int, log *slog.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0,
	})
	return newConsumer(r, workers, log)
}

func newConsumer(r messageReader, workers int, log *slog.Logger) *Consumer {
	if workers <= 0 {
		workers = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &Consumer{r: r, workers: workers, attempts: defaultAttempts, backoff: defaultBackoff, log: log}
}

// Run fetches messages until ctx is cancelled. Each partition is bound to
// one worker, so its messages are handled and committed in offset order.
// A message whose handler still fails after the last attempt is logged as
// dropped and committed; a later offset is never committed ahead of it.
func (c *Consumer) Run(ctx context.Context, h Handler) error {
	defer c.r.Close()

	lanes := make([]chan kafka.Message, c.workers)
	var wg sync.WaitGroup
	for i := range lanes {
		lanes[i] = make(chan kafka.Message)
		wg.Add(1)
		go func(worker int, in <-chan kafka.Message) {
			defer wg.Done()
			for m := range in {
				c.handle(ctx, worker, h, m)
			}
		}(i, lanes[i])
	}

	defer func() {
		for _, lane := range lanes {
			close(lane)
		}
		wg.Wait()
	}()

	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("kafka: fetch: %w", err)
		}
		select {
		case lanes[m.Partition%c.workers] <- m:
		case <-ctx.Done():
			return nil
		}
	}
}

func (c *Consumer) handle(ctx context.Context, worker int, h Handler, m kafka.Message) {
	l := c.log.With("worker", worker, "topic", m.Topic, "partition", m.Partition, "offset", m.Offset)

	var err error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if err = h(ctx, m); err == nil {
			break
		}
		l.Warn("consume_failed", "attempt", attempt, "error", err)
		if attempt == c.attempts {
			break
		}
		select {
		case <-time.After(c.backoff * time.Duration(attempt)):
		case <-ctx.Done():
			// uncommitted, redelivered after restart
			return
		}
	}
	if err != nil {
		l.Error("message_dropped", "attempts", c.attempts, "error", err)
	}

	if err := c.r.CommitMessages(ctx, m); err != nil {
		l.Error("commit_failed", "error", err)
	}
}
