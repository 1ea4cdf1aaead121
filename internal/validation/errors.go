package validation

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRequired поле обязательно, но отсутствует в аргументах
	ErrRequired = errors.New("field is required")

	// ErrEmpty поле присутствует, но пустое и не допускает пустых значений
	ErrEmpty = errors.New("field can't be empty")

	ErrNotString  = errors.New("value is not a string")
	ErrNotMapping = errors.New("value is not a mapping")
	ErrNotInteger = errors.New("value is not an integer")
	ErrNotList    = errors.New("value is not a list")

	// ErrInvalidEmail email не содержит символ @
	ErrInvalidEmail = errors.New("email must contain @")

	// ErrInvalidPhone телефон не состоит из 11 цифр, начинающихся с 7
	ErrInvalidPhone = errors.New("phone must be 11 digits starting with 7")

	// ErrInvalidDate дата не соответствует формату DD.MM.YYYY
	ErrInvalidDate = errors.New("date must be in DD.MM.YYYY format")

	ErrBirthdayTooOld  = errors.New("birthday must be no more than 70 years ago")
	ErrBirthdayFuture  = errors.New("birthday can't be in the future")
	ErrInvalidGender   = errors.New("gender must be 0, 1 or 2")
	ErrInvalidClientID = errors.New("client_ids must be a list of integers")
)

// FieldError ошибка валидации одного поля
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Errors все ошибки валидации полей в порядке объявления полей схемы
type Errors []*FieldError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Error()
	}
	return strings.Join(parts, "; ")
}

// Fields возвращает имена полей с ошибками
func (e Errors) Fields() []string {
	names := make([]string, len(e))
	for i, fe := range e {
		names[i] = fe.Field
	}
	return names
}

// Unwrap позволяет errors.Is находить причины отдельных полей
func (e Errors) Unwrap() []error {
	errs := make([]error, len(e))
	for i, fe := range e {
		errs[i] = fe
	}
	return errs
}
