package scoring

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/m04kA/SMC-ScoringAPI/internal/auth"
	"github.com/m04kA/SMC-ScoringAPI/internal/domain"
	"github.com/m04kA/SMC-ScoringAPI/internal/validation"
)

const scoreCacheTTL = time.Hour

// Service бизнес-логика методов online_score и clients_interests
type Service struct {
	interests InterestsStore
	cache     ScoreCache
	audit     AuditSink
	logger    Logger

	onlineScore      *validation.Schema
	clientsInterests *validation.Schema
}

// NewService создает сервис скоринга; now используется для проверки даты рождения
func NewService(interests InterestsStore, cache ScoreCache, audit AuditSink, logger Logger, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}

	return &Service{
		interests:        interests,
		cache:            cache,
		audit:            audit,
		logger:           logger,
		onlineScore:      OnlineScoreSchema(now),
		clientsInterests: ClientsInterestsSchema(),
	}
}

// OnlineScore считает скоринг по персональным данным
// Администратор всегда получает 42, правило пар полей для него не применяется
func (s *Service) OnlineScore(ctx context.Context, req *domain.MethodRequest) (any, error) {
	isAdmin := auth.IsAdmin(req.Login)

	var (
		values validation.Values
		err    error
	)
	if isAdmin {
		values, err = s.onlineScore.ValidateFields(req.Arguments)
	} else {
		values, err = s.onlineScore.Validate(req.Arguments)
	}
	if err != nil {
		return nil, &ArgumentsError{Err: err}
	}

	scoreReq := newOnlineScoreRequest(values)
	s.audit.Record(ctx, MethodOnlineScore, scoreReq.Supplied)

	if isAdmin {
		return map[string]float64{"score": adminScore}, nil
	}

	return map[string]float64{"score": s.score(ctx, scoreReq)}, nil
}

// score возвращает скоринг из кэша или считает и кладет в кэш
func (s *Service) score(ctx context.Context, req *OnlineScoreRequest) float64 {
	key := scoreCacheKey(req)

	if cached, ok := s.cache.CachedScore(ctx, key); ok {
		return cached
	}

	score := computeScore(req)
	s.cache.CacheScore(ctx, key, score, scoreCacheTTL)
	return score
}

// ClientsInterests возвращает интересы по каждому client_id
// Повторяющиеся id дают один и тот же ключ в ответе
func (s *Service) ClientsInterests(ctx context.Context, req *domain.MethodRequest) (any, error) {
	values, err := s.clientsInterests.Validate(req.Arguments)
	if err != nil {
		return nil, &ArgumentsError{Err: err}
	}

	ciReq := newClientsInterestsRequest(values)

	response := make(map[string][]string, len(ciReq.ClientIDs))
	processed := make([]string, 0, len(ciReq.ClientIDs))

	for _, id := range ciReq.ClientIDs {
		key := strconv.FormatInt(id, 10)
		if _, done := response[key]; done {
			continue
		}

		interests, err := s.interests.GetInterests(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("%w: ClientsInterests - client %d: %v", ErrInterestsUnavailable, id, err)
		}
		if interests == nil {
			interests = []string{}
		}

		response[key] = interests
		processed = append(processed, key)
	}

	s.logger.Info("Resolved interests for %d clients", len(processed))
	s.audit.Record(ctx, MethodClientsInterests, processed)

	return response, nil
}
