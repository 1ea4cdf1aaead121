package scoring

import (
	"crypto/md5"
	"encoding/hex"
	"strings"

	"github.com/m04kA/SMC-ScoringAPI/pkg/types"
)

// Веса полей в скоринге
const (
	weightPhone    = 1.5
	weightEmail    = 1.5
	weightBirthday = 1.5
	weightName     = 0.5

	adminScore = 42
)

// computeScore взвешенная сумма по заполненным полям
func computeScore(req *OnlineScoreRequest) float64 {
	score := 0.0
	if req.Phone != "" {
		score += weightPhone
	}
	if req.Email != "" {
		score += weightEmail
	}
	if req.Birthday != nil && req.Gender != nil {
		score += weightBirthday
	}
	if req.FirstName != "" && req.LastName != "" {
		score += weightName
	}
	return score
}

// scoreCacheKey ключ кэша скоринга по персональным данным
func scoreCacheKey(req *OnlineScoreRequest) string {
	birthday := ""
	if req.Birthday != nil {
		birthday = types.NewDateString(*req.Birthday).Compact()
	}

	parts := strings.Join([]string{req.FirstName, req.LastName, req.Phone, birthday}, "")
	sum := md5.Sum([]byte(parts))
	return "uid:" + hex.EncodeToString(sum[:])
}
