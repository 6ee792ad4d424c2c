package mykafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/pkg/logging"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

type orderPayload struct {
	OrderID string `json:"order_id"`
	Total   string `json:"total"`
}

func TestPublishEvent_WritesEnvelope(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{w: w, name: "storefront"}

	err := p.PublishEvent(context.Background(), TopicOrderEvents, "order-1", EventOrderFinalized,
		orderPayload{OrderID: "order-1", Total: "150.00"})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	m := w.msgs[0]
	require.Equal(t, TopicOrderEvents, m.Topic)
	require.Equal(t, []byte("order-1"), m.Key)
	require.Equal(t, HeaderEventType, m.Headers[0].Key)
	require.Equal(t, EventOrderFinalized, string(m.Headers[0].Value))

	var env Envelope
	require.NoError(t, json.Unmarshal(m.Value, &env))
	require.Equal(t, EventOrderFinalized, env.EventType)
	require.Equal(t, "storefront", env.Producer)
	require.Equal(t, 1, env.EventVersion)
	require.NotEmpty(t, env.EventID)

	payload, err := UnwrapPayload[orderPayload](env.Payload)
	require.NoError(t, err)
	require.Equal(t, "150.00", payload.Total)
}

func TestPublishEvent_WrapsWriteError(t *testing.T) {
	p := &Producer{w: &fakeWriter{err: errors.New("broker down")}, name: "storefront"}
	err := p.PublishEvent(context.Background(), TopicCartEvents, "k", EventCartItemAdded, map[string]int{"q": 1})
	require.ErrorContains(t, err, "broker down")
}

type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []int64
	// cancel is called once cancelAfter messages have been committed.
	cancel      context.CancelFunc
	cancelAfter int
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		m := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	if len(r.committed) == r.cancelAfter {
		r.cancel()
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func TestConsumer_RetriesThenDropsFailedMessage(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := &fakeReader{
		queue:       []kafka.Message{{Offset: 1, Value: []byte("bad")}, {Offset: 2, Value: []byte("good")}},
		cancel:      cancel,
		cancelAfter: 2,
	}
	c := newConsumer(r, 1, logging.Discard())
	c.backoff = 0

	var badCalls int
	err := c.Run(ctx, func(_ context.Context, m kafka.Message) error {
		if string(m.Value) == "bad" {
			badCalls++
			return errors.New("cannot handle")
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, defaultAttempts, badCalls)

	r.mu.Lock()
	defer r.mu.Unlock()
	require.Equal(t, []int64{1, 2}, r.committed)
}

func TestConsumer_TransientFailureIsRetried(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := &fakeReader{queue: []kafka.Message{{Offset: 7}}, cancel: cancel, cancelAfter: 1}
	c := newConsumer(r, 1, logging.Discard())
	c.backoff = 0

	calls := 0
	err := c.Run(ctx, func(_ context.Context, _ kafka.Message) error {
		calls++
		if calls == 1 {
			return errors.New("relay busy")
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, calls)

	r.mu.Lock()
	defer r.mu.Unlock()
	require.Equal(t, []int64{7}, r.committed)
}

func TestConsumer_KeepsPartitionOrderAcrossWorkers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var queue []kafka.Message
	for off := int64(0); off < 5; off++ {
		for p := 0; p < 3; p++ {
			queue = append(queue, kafka.Message{Partition: p, Offset: off})
		}
	}
	r := &fakeReader{queue: queue, cancel: cancel, cancelAfter: len(queue)}
	c := newConsumer(r, 2, logging.Discard())

	var mu sync.Mutex
	seen := map[int][]int64{}
	err := c.Run(ctx, func(_ context.Context, m kafka.Message) error {
		mu.Lock()
		defer mu.Unlock()
		seen[m.Partition] = append(seen[m.Partition], m.Offset)
		return nil
	})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	for p := 0; p < 3; p++ {
		require.Equal(t, []int64{0, 1, 2, 3, 4}, seen[p], "partition %d", p)
	}
}
