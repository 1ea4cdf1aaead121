package interests

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	defaultMaxRetry   = 3
	defaultRetryDelay = 100 * time.Millisecond

	interestsKeyPrefix = "i:"
)

// Store хранилище интересов клиентов и кэш скоринга поверх redis
// Чтение интересов при сбое возвращает ошибку, операции кэша ошибок не возвращают
type Store struct {
	client     Client
	logger     Logger
	maxRetry   int
	retryDelay time.Duration
}

// NewStore создает хранилище; maxRetry и retryDelay <= 0 заменяются значениями по умолчанию
func NewStore(client Client, logger Logger, maxRetry int, retryDelay time.Duration) *Store {
	if maxRetry <= 0 {
		maxRetry = defaultMaxRetry
	}
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}

	return &Store{
		client:     client,
		logger:     logger,
		maxRetry:   maxRetry,
		retryDelay: retryDelay,
	}
}

// Connect проверяет доступность redis
func (s *Store) Connect(ctx context.Context) error {
	err := s.withRetry(ctx, "Connect", func() error {
		return s.client.Ping(ctx).Err()
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnect, err)
	}
	return nil
}

// Ping используется health-check'ом, без повторов
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close закрывает соединение с redis
func (s *Store) Close() error {
	return s.client.Close()
}

// GetInterests возвращает отсортированные интересы клиента, пустой список если ключа нет
func (s *Store) GetInterests(ctx context.Context, clientID int64) ([]string, error) {
	var members []string
	err := s.withRetry(ctx, "GetInterests", func() error {
		var err error
		members, err = s.client.SMembers(ctx, interestsKey(clientID)).Result()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: GetInterests - client %d: %v", ErrRead, clientID, err)
	}

	if members == nil {
		members = []string{}
	}
	sort.Strings(members)
	return members, nil
}

// CachedScore читает скоринг из кэша; промах и ошибки дают ok=false
func (s *Store) CachedScore(ctx context.Context, key string) (float64, bool) {
	var raw string
	err := s.withRetry(ctx, "CachedScore", func() error {
		var err error
		raw, err = s.client.Get(ctx, key).Result()
		return err
	})
	if errors.Is(err, redis.Nil) {
		return 0, false
	}
	if err != nil {
		s.logger.Warn("Score cache read failed for %s: %v", key, err)
		return 0, false
	}

	score, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		s.logger.Warn("Score cache holds non-numeric value for %s: %q", key, raw)
		return 0, false
	}
	return score, true
}

// CacheScore записывает скоринг в кэш; ошибка только логируется
func (s *Store) CacheScore(ctx context.Context, key string, score float64, ttl time.Duration) {
	err := s.withRetry(ctx, "CacheScore", func() error {
		return s.client.Set(ctx, key, strconv.FormatFloat(score, 'f', -1, 64), ttl).Err()
	})
	if err != nil {
		s.logger.Warn("Score cache write failed for %s: %v", key, err)
	}
}

// withRetry повторяет операцию при ошибках соединения
// redis.Nil и отмена контекста не повторяются
func (s *Store) withRetry(ctx context.Context, op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= s.maxRetry; attempt++ {
		lastErr = fn()
		if lastErr == nil || errors.Is(lastErr, redis.Nil) {
			return lastErr
		}
		if ctx.Err() != nil {
			return lastErr
		}

		if attempt < s.maxRetry {
			select {
			case <-ctx.Done():
				return lastErr
			case <-time.After(s.retryDelay):
			}
		}
	}

	s.logger.Error("Exceeded the maximum number of redis attempts (%d) in %s: %v", s.maxRetry, op, lastErr)
	return lastErr
}

func interestsKey(clientID int64) string {
	return interestsKeyPrefix + strconv.FormatInt(clientID, 10)
}
