package scoring

import (
	"time"

	"github.com/m04kA/SMC-ScoringAPI/internal/validation"
)

// Имена API-методов
const (
	MethodOnlineScore      = "online_score"
	MethodClientsInterests = "clients_interests"
)

// OnlineScoreSchema схема аргументов online_score
func OnlineScoreSchema(now func() time.Time) *validation.Schema {
	return &validation.Schema{
		Name: "OnlineScoreRequest",
		Fields: []validation.Field{
			validation.PhoneField("phone", false, true),
			validation.EmailField("email", false, true),
			validation.CharField("first_name", false, true),
			validation.CharField("last_name", false, true),
			validation.BirthDayField("birthday", false, true, now),
			validation.GenderField("gender", false, true),
		},
		Check: checkScoringPairs,
	}
}

// checkScoringPairs требует хотя бы одну полностью заполненную пару полей
func checkScoringPairs(v validation.Values) error {
	switch {
	case v.Has("phone") && v.Has("email"):
	case v.Has("first_name") && v.Has("last_name"):
	case v.Has("gender") && v.Has("birthday"):
	default:
		return ErrNoValidPair
	}
	return nil
}

// ClientsInterestsSchema схема аргументов clients_interests
func ClientsInterestsSchema() *validation.Schema {
	return &validation.Schema{
		Name: "ClientsInterestsRequest",
		Fields: []validation.Field{
			validation.ClientIDsField("client_ids", true),
			validation.DateField("date", false, true),
		},
	}
}

// OnlineScoreRequest проверенные аргументы online_score
type OnlineScoreRequest struct {
	Phone     string
	Email     string
	FirstName string
	LastName  string
	Birthday  *time.Time
	Gender    *int
	// Supplied имена непустых полей, нужны только для аудита
	Supplied []string
}

func newOnlineScoreRequest(v validation.Values) *OnlineScoreRequest {
	req := &OnlineScoreRequest{
		Phone:     v.String("phone"),
		Email:     v.String("email"),
		FirstName: v.String("first_name"),
		LastName:  v.String("last_name"),
		Supplied:  v.Supplied(),
	}
	if b, ok := v.Time("birthday"); ok {
		req.Birthday = &b
	}
	if g, ok := v.Int("gender"); ok {
		req.Gender = &g
	}
	return req
}

// ClientsInterestsRequest проверенные аргументы clients_interests
type ClientsInterestsRequest struct {
	ClientIDs []int64
	Date      *time.Time
}

func newClientsInterestsRequest(v validation.Values) *ClientsInterestsRequest {
	req := &ClientsInterestsRequest{ClientIDs: v.Int64s("client_ids")}
	if d, ok := v.Time("date"); ok {
		req.Date = &d
	}
	return req
}
