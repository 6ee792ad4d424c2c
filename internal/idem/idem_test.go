package idem

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type memKV struct {
	data map[string]string
	ttl  map[string]time.Duration
	err  error
}

func newMemKV() *memKV {
	return &memKV{data: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (m *memKV) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx, "get", key)
	switch {
	case m.err != nil:
		cmd.SetErr(m.err)
	default:
		v, ok := m.data[key]
		if !ok {
			cmd.SetErr(redis.Nil)
		} else {
			cmd.SetVal(v)
		}
	}
	return cmd
}

func (m *memKV) Set(ctx context.Context, key string, value any, exp time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx, "set", key, value)
	if m.err != nil {
		cmd.SetErr(m.err)
		return cmd
	}
	m.data[key] = value.(string)
	m.ttl[key] = exp
	cmd.SetVal("OK")
	return cmd
}

func TestCache_SetThenGet(t *testing.T) {
	kv := newMemKV()
	c := &Cache{rdb: kv, ttl: DefaultTTL}
	ctx := context.Background()
	orderID := uuid.New()

	_, ok, err := c.Get(ctx, "cs_1")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Set(ctx, "cs_1", orderID))
	require.Equal(t, DefaultTTL, kv.ttl["idem:order:finalize:cs_1"])

	got, ok, err := c.Get(ctx, "cs_1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, orderID, got)
}

func TestCache_PropagatesErrors(t *testing.T) {
	kv := newMemKV()
	kv.err = errors.New("connection refused")
	c := &Cache{rdb: kv, ttl: time.Minute}

	_, _, err := c.Get(context.Background(), "cs_1")
	require.ErrorContains(t, err, "connection refused")
	require.Error(t, c.Set(context.Background(), "cs_1", uuid.New()))
}

func TestCache_RejectsCorruptValue(t *testing.T) {
	kv := newMemKV()
	kv.data[Key("cs_1")] = "not-a-uuid"
	_, ok, err := (&Cache{rdb: kv}).Get(context.Background(), "cs_1")
	require.Error(t, err)
	require.False(t, ok)
}
