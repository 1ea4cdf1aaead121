package interests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errConnRefused = errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")

// fakeClient in-memory реализация Client; failures задает число первых неудачных вызовов
type fakeClient struct {
	sets     map[string][]string
	values   map[string]string
	ttls     map[string]time.Duration
	failures int
	calls    int
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		sets:   make(map[string][]string),
		values: make(map[string]string),
		ttls:   make(map[string]time.Duration),
	}
}

func (c *fakeClient) fail() error {
	c.calls++
	if c.failures != 0 {
		if c.failures > 0 {
			c.failures--
		}
		return errConnRefused
	}
	return nil
}

func (c *fakeClient) Ping(_ context.Context) *redis.StatusCmd {
	if err := c.fail(); err != nil {
		return redis.NewStatusResult("", err)
	}
	return redis.NewStatusResult("PONG", nil)
}

func (c *fakeClient) SMembers(_ context.Context, key string) *redis.StringSliceCmd {
	if err := c.fail(); err != nil {
		return redis.NewStringSliceResult(nil, err)
	}
	return redis.NewStringSliceResult(append([]string(nil), c.sets[key]...), nil)
}

func (c *fakeClient) Get(_ context.Context, key string) *redis.StringCmd {
	if err := c.fail(); err != nil {
		return redis.NewStringResult("", err)
	}
	v, ok := c.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (c *fakeClient) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if err := c.fail(); err != nil {
		return redis.NewStatusResult("", err)
	}
	c.values[key] = value.(string)
	c.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (c *fakeClient) Close() error { return nil }

type recordingLogger struct {
	warns  int
	errors int
}

func (l *recordingLogger) Warn(string, ...interface{})  { l.warns++ }
func (l *recordingLogger) Error(string, ...interface{}) { l.errors++ }

func newTestStore(client *fakeClient) (*Store, *recordingLogger) {
	log := &recordingLogger{}
	return NewStore(client, log, 3, time.Millisecond), log
}

func TestStore_GetInterests(t *testing.T) {
	client := newFakeClient()
	client.sets["i:1"] = []string{"hi-tech", "books"}
	client.sets["i:2"] = []string{"tv", "cinema"}
	store, _ := newTestStore(client)
	ctx := context.Background()

	got, err := store.GetInterests(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"books", "hi-tech"}, got)

	got, err = store.GetInterests(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"cinema", "tv"}, got)
}

func TestStore_GetInterests_UnknownKey(t *testing.T) {
	store, _ := newTestStore(newFakeClient())

	got, err := store.GetInterests(context.Background(), 0)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestStore_RetriesTransientFailures(t *testing.T) {
	client := newFakeClient()
	client.sets["i:7"] = []string{"sport"}
	client.failures = 2
	store, log := newTestStore(client)

	got, err := store.GetInterests(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"sport"}, got)
	assert.Equal(t, 3, client.calls)
	assert.Zero(t, log.errors)
}

func TestStore_LostConnection(t *testing.T) {
	client := newFakeClient()
	client.failures = -1
	store, log := newTestStore(client)
	ctx := context.Background()

	_, err := store.GetInterests(ctx, 1)
	assert.ErrorIs(t, err, ErrRead)

	assert.ErrorIs(t, store.Connect(ctx), ErrConnect)

	score, ok := store.CachedScore(ctx, "foo")
	assert.False(t, ok)
	assert.Zero(t, score)

	assert.NotPanics(t, func() { store.CacheScore(ctx, "foo", 1.5, time.Second) })

	assert.Equal(t, 4*3, client.calls)
	assert.Equal(t, 4, log.errors)
	assert.Equal(t, 2, log.warns)
}

func TestStore_ScoreCache(t *testing.T) {
	client := newFakeClient()
	store, _ := newTestStore(client)
	ctx := context.Background()

	_, ok := store.CachedScore(ctx, "uid:1")
	assert.False(t, ok)
	assert.Equal(t, 1, client.calls, "cache miss must not be retried")

	store.CacheScore(ctx, "uid:1", 3.5, time.Hour)
	assert.Equal(t, "3.5", client.values["uid:1"])
	assert.Equal(t, time.Hour, client.ttls["uid:1"])

	score, ok := store.CachedScore(ctx, "uid:1")
	require.True(t, ok)
	assert.Equal(t, 3.5, score)
}

func TestStore_CachedScore_NonNumeric(t *testing.T) {
	client := newFakeClient()
	client.values["uid:x"] = "not-a-number"
	store, log := newTestStore(client)

	_, ok := store.CachedScore(context.Background(), "uid:x")
	assert.False(t, ok)
	assert.Equal(t, 1, log.warns)
}

func TestStore_StopsRetryingOnCancelledContext(t *testing.T) {
	client := newFakeClient()
	client.failures = -1
	store, _ := newTestStore(client)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.GetInterests(ctx, 1)
	assert.ErrorIs(t, err, ErrRead)
	assert.Equal(t, 1, client.calls)
}
