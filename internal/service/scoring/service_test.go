package scoring

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ScoringAPI/internal/domain"
	"github.com/m04kA/SMC-ScoringAPI/internal/validation"
)

type fakeInterests struct {
	data  map[int64][]string
	err   error
	calls []int64
}

func (f *fakeInterests) GetInterests(_ context.Context, clientID int64) ([]string, error) {
	f.calls = append(f.calls, clientID)
	if f.err != nil {
		return nil, f.err
	}
	return f.data[clientID], nil
}

type fakeCache struct {
	mu     sync.Mutex
	scores map[string]float64
}

func newFakeCache() *fakeCache {
	return &fakeCache{scores: make(map[string]float64)}
}

func (c *fakeCache) CachedScore(_ context.Context, key string) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.scores[key]
	return v, ok
}

func (c *fakeCache) CacheScore(_ context.Context, key string, score float64, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scores[key] = score
}

type auditEntry struct {
	label  string
	fields []string
}

type fakeAudit struct {
	entries []auditEntry
}

func (a *fakeAudit) Record(_ context.Context, label string, fields []string) {
	a.entries = append(a.entries, auditEntry{label: label, fields: fields})
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

var testNow = func() time.Time { return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC) }

func newTestService(interests *fakeInterests) (*Service, *fakeCache, *fakeAudit) {
	cache := newFakeCache()
	audit := &fakeAudit{}
	return NewService(interests, cache, audit, nopLogger{}, testNow), cache, audit
}

func scoreRequest(login string, args map[string]any) *domain.MethodRequest {
	return &domain.MethodRequest{Account: "horns&hoofs", Login: login, Method: MethodOnlineScore, Arguments: args}
}

func TestOnlineScore_Weights(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
		want float64
	}{
		{
			name: "phone and email",
			args: map[string]any{"phone": "79175002040", "email": "stupnikov@otus.ru"},
			want: 3.0,
		},
		{
			name: "phone as number",
			args: map[string]any{"phone": json.Number("79175002040"), "email": "stupnikov@otus.ru"},
			want: 3.0,
		},
		{
			name: "gender and birthday",
			args: map[string]any{"gender": json.Number("1"), "birthday": "01.01.2000"},
			want: 1.5,
		},
		{
			name: "unknown gender counts",
			args: map[string]any{"gender": json.Number("0"), "birthday": "01.01.2000"},
			want: 1.5,
		},
		{
			name: "names only",
			args: map[string]any{"first_name": "a", "last_name": "b"},
			want: 0.5,
		},
		{
			name: "everything",
			args: map[string]any{
				"phone": "79175002040", "email": "a@b.com", "first_name": "A", "last_name": "B",
				"birthday": "01.01.1990", "gender": json.Number("1"),
			},
			want: 5.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, audit := newTestService(&fakeInterests{})

			got, err := svc.OnlineScore(context.Background(), scoreRequest("h&f", tt.args))
			require.NoError(t, err)
			assert.Equal(t, map[string]float64{"score": tt.want}, got)

			require.Len(t, audit.entries, 1)
			assert.Equal(t, MethodOnlineScore, audit.entries[0].label)
			assert.Len(t, audit.entries[0].fields, len(tt.args))
		})
	}
}

func TestOnlineScore_AuditFieldsInDeclarationOrder(t *testing.T) {
	svc, _, audit := newTestService(&fakeInterests{})

	_, err := svc.OnlineScore(context.Background(), scoreRequest("h&f", map[string]any{
		"last_name": "B", "first_name": "A", "email": "", "phone": "79175002040",
	}))
	require.NoError(t, err)

	require.Len(t, audit.entries, 1)
	assert.Equal(t, []string{"phone", "first_name", "last_name"}, audit.entries[0].fields)
}

func TestOnlineScore_NoPair(t *testing.T) {
	cases := []map[string]any{
		{},
		{"phone": "79175002040"},
		{"phone": "79175002040", "first_name": "A"},
		{"email": "a@b.c", "gender": json.Number("1")},
		{"first_name": "A", "last_name": ""},
		{"birthday": "01.01.2000", "first_name": "A"},
	}

	for _, args := range cases {
		svc, _, audit := newTestService(&fakeInterests{})

		_, err := svc.OnlineScore(context.Background(), scoreRequest("h&f", args))

		var argErr *ArgumentsError
		require.ErrorAs(t, err, &argErr, "args %v", args)
		assert.ErrorIs(t, err, ErrNoValidPair)
		assert.Empty(t, audit.entries)
	}
}

func TestOnlineScore_FieldErrors(t *testing.T) {
	svc, _, _ := newTestService(&fakeInterests{})

	_, err := svc.OnlineScore(context.Background(), scoreRequest("h&f", map[string]any{
		"phone": "123", "email": "no-at-sign",
	}))

	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, []string{"phone", "email"}, verrs.Fields())
	assert.NotErrorIs(t, err, ErrNoValidPair)
}

func TestOnlineScore_Admin(t *testing.T) {
	svc, cache, audit := newTestService(&fakeInterests{})

	got, err := svc.OnlineScore(context.Background(), scoreRequest("admin", map[string]any{}))
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"score": 42}, got)
	assert.Empty(t, cache.scores)
	require.Len(t, audit.entries, 1)

	got, err = svc.OnlineScore(context.Background(), scoreRequest("admin", map[string]any{
		"phone": "79175002040", "email": "a@b.c",
	}))
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"score": 42}, got)

	_, err = svc.OnlineScore(context.Background(), scoreRequest("admin", map[string]any{"phone": "1"}))
	assert.ErrorIs(t, err, validation.ErrInvalidPhone)
}

func TestOnlineScore_UsesCache(t *testing.T) {
	svc, cache, _ := newTestService(&fakeInterests{})
	args := map[string]any{"first_name": "A", "last_name": "B"}

	req := newOnlineScoreRequest(mustValues(t, svc, args))
	cache.scores[scoreCacheKey(req)] = 7.25

	got, err := svc.OnlineScore(context.Background(), scoreRequest("h&f", args))
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"score": 7.25}, got)
}

func TestOnlineScore_CachedZeroIsHit(t *testing.T) {
	svc, cache, _ := newTestService(&fakeInterests{})
	args := map[string]any{"phone": "79175002040", "email": "a@b.c"}

	req := newOnlineScoreRequest(mustValues(t, svc, args))
	cache.scores[scoreCacheKey(req)] = 0

	got, err := svc.OnlineScore(context.Background(), scoreRequest("h&f", args))
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"score": 0}, got)
}

func TestOnlineScore_StoresComputedScore(t *testing.T) {
	svc, cache, _ := newTestService(&fakeInterests{})
	args := map[string]any{"phone": "79175002040", "email": "a@b.c"}

	_, err := svc.OnlineScore(context.Background(), scoreRequest("h&f", args))
	require.NoError(t, err)

	req := newOnlineScoreRequest(mustValues(t, svc, args))
	assert.Equal(t, 3.0, cache.scores[scoreCacheKey(req)])
}

func mustValues(t *testing.T, svc *Service, args map[string]any) validation.Values {
	t.Helper()
	v, err := svc.onlineScore.Validate(args)
	require.NoError(t, err)
	return v
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func TestScoreCacheKey(t *testing.T) {
	birthday := time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)
	req := &OnlineScoreRequest{FirstName: "A", LastName: "B", Phone: "79175002040", Birthday: &birthday}

	assert.Equal(t, "uid:"+md5Hex("AB7917500204019900101"), scoreCacheKey(req))
	assert.Equal(t, "uid:"+md5Hex(""), scoreCacheKey(&OnlineScoreRequest{}))
}

func TestClientsInterests(t *testing.T) {
	store := &fakeInterests{data: map[int64][]string{1: {"books"}, 2: {}}}
	svc, _, audit := newTestService(store)

	got, err := svc.ClientsInterests(context.Background(), &domain.MethodRequest{
		Method: MethodClientsInterests,
		Arguments: map[string]any{
			"client_ids": []any{json.Number("1"), json.Number("2")},
			"date":       "20.07.2017",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"1": {"books"}, "2": {}}, got)

	require.Len(t, audit.entries, 1)
	assert.Equal(t, MethodClientsInterests, audit.entries[0].label)
	assert.Equal(t, []string{"1", "2"}, audit.entries[0].fields)
}

func TestClientsInterests_UnknownAndDuplicateIDs(t *testing.T) {
	store := &fakeInterests{data: map[int64][]string{5: {"cars", "sport"}}}
	svc, _, _ := newTestService(store)

	got, err := svc.ClientsInterests(context.Background(), &domain.MethodRequest{
		Arguments: map[string]any{"client_ids": []any{json.Number("5"), json.Number("9"), json.Number("5")}},
	})
	require.NoError(t, err)

	resp := got.(map[string][]string)
	assert.Len(t, resp, 2)
	assert.Equal(t, []string{"cars", "sport"}, resp["5"])
	assert.NotNil(t, resp["9"])
	assert.Empty(t, resp["9"])
	assert.Equal(t, []int64{5, 9}, store.calls)
}

func TestClientsInterests_Invalid(t *testing.T) {
	cases := []struct {
		name  string
		args  map[string]any
		field string
	}{
		{name: "missing ids", args: map[string]any{}, field: "client_ids"},
		{name: "empty ids", args: map[string]any{"client_ids": []any{}}, field: "client_ids"},
		{name: "not a list", args: map[string]any{"client_ids": map[string]any{"1": 2}}, field: "client_ids"},
		{name: "strings", args: map[string]any{"client_ids": []any{"1", "2"}}, field: "client_ids"},
		{name: "bad date", args: map[string]any{"client_ids": []any{json.Number("1")}, "date": "XXX"}, field: "date"},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestService(&fakeInterests{})

			_, err := svc.ClientsInterests(context.Background(), &domain.MethodRequest{Arguments: tt.args})

			var verrs validation.Errors
			require.ErrorAs(t, err, &verrs)
			assert.Equal(t, []string{tt.field}, verrs.Fields())
		})
	}
}

func TestClientsInterests_StoreFailure(t *testing.T) {
	svc, _, audit := newTestService(&fakeInterests{err: errors.New("connection refused")})

	_, err := svc.ClientsInterests(context.Background(), &domain.MethodRequest{
		Arguments: map[string]any{"client_ids": []any{json.Number("1")}},
	})

	assert.ErrorIs(t, err, ErrInterestsUnavailable)
	var argErr *ArgumentsError
	assert.False(t, errors.As(err, &argErr))
	assert.Empty(t, audit.entries)
}
