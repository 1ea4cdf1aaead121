package scoring

import "errors"

var (
	// ErrNoValidPair не передана ни одна полная пара полей для скоринга
	ErrNoValidPair = errors.New("phone-email or first_name-last_name or gender-birthday must be not empty")

	// ErrInterestsUnavailable возвращается при недоступности хранилища интересов
	ErrInterestsUnavailable = errors.New("service.scoring: interests store unavailable")
)

// ArgumentsError аргументы метода не прошли валидацию
// Текст ошибки предназначен для клиента
type ArgumentsError struct {
	Err error
}

func (e *ArgumentsError) Error() string {
	return e.Err.Error()
}

func (e *ArgumentsError) Unwrap() error {
	return e.Err
}
