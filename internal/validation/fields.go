package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/m04kA/SMC-ScoringAPI/pkg/types"
)

// Validator проверяет непустое значение поля и возвращает его типизированную форму
type Validator func(raw any) (any, error)

// Field декларативное правило для одного аргумента запроса
type Field struct {
	Name     string
	Required bool
	Nullable bool
	Validate Validator
}

const maxAgeYears = 70

var phonePattern = regexp.MustCompile(`^7[0-9]{10}$`)

// CharField принимает только строки
func CharField(name string, required, nullable bool) Field {
	return Field{Name: name, Required: required, Nullable: nullable, Validate: validateChar}
}

// ArgumentsField принимает только объект (map)
func ArgumentsField(name string, required, nullable bool) Field {
	return Field{Name: name, Required: required, Nullable: nullable, Validate: validateArguments}
}

// EmailField строка, содержащая @
func EmailField(name string, required, nullable bool) Field {
	return Field{Name: name, Required: required, Nullable: nullable, Validate: validateEmail}
}

// PhoneField строка или целое число из 11 цифр, начинающееся с 7
func PhoneField(name string, required, nullable bool) Field {
	return Field{Name: name, Required: required, Nullable: nullable, Validate: validatePhone}
}

// DateField строка в формате DD.MM.YYYY
func DateField(name string, required, nullable bool) Field {
	return Field{Name: name, Required: required, Nullable: nullable, Validate: validateDate}
}

// BirthDayField дата рождения не старше 70 лет относительно now() и не в будущем
func BirthDayField(name string, required, nullable bool, now func() time.Time) Field {
	return Field{Name: name, Required: required, Nullable: nullable, Validate: birthDayValidator(now)}
}

// GenderField целое число из {0, 1, 2}
func GenderField(name string, required, nullable bool) Field {
	return Field{Name: name, Required: required, Nullable: nullable, Validate: validateGender}
}

// ClientIDsField непустой список целых чисел, пустое значение не допускается никогда
func ClientIDsField(name string, required bool) Field {
	return Field{Name: name, Required: required, Nullable: false, Validate: validateClientIDs}
}

func validateChar(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrNotString, raw)
	}
	return s, nil
}

func validateArguments(raw any) (any, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrNotMapping, raw)
	}
	return m, nil
}

func validateEmail(raw any) (any, error) {
	v, err := validateChar(raw)
	if err != nil {
		return nil, err
	}
	if !strings.Contains(v.(string), "@") {
		return nil, ErrInvalidEmail
	}
	return v, nil
}

func validatePhone(raw any) (any, error) {
	var phone string
	switch v := raw.(type) {
	case string:
		phone = v
	default:
		n, ok := asInteger(raw)
		if !ok {
			return nil, fmt.Errorf("%w: got %T", ErrInvalidPhone, raw)
		}
		phone = strconv.FormatInt(n, 10)
	}

	if !phonePattern.MatchString(phone) {
		return nil, ErrInvalidPhone
	}
	return phone, nil
}

func validateDate(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrInvalidDate, raw)
	}

	t, err := types.DateString(s).ToTime()
	if err != nil {
		return nil, ErrInvalidDate
	}
	return t, nil
}

func birthDayValidator(now func() time.Time) Validator {
	return func(raw any) (any, error) {
		v, err := validateDate(raw)
		if err != nil {
			return nil, err
		}
		birthday := v.(time.Time)

		current := now().UTC()
		today := time.Date(current.Year(), current.Month(), current.Day(), 0, 0, 0, 0, time.UTC)

		if birthday.After(today) {
			return nil, ErrBirthdayFuture
		}
		if birthday.Before(today.AddDate(-maxAgeYears, 0, 0)) {
			return nil, ErrBirthdayTooOld
		}
		return birthday, nil
	}
}

func validateGender(raw any) (any, error) {
	n, ok := asInteger(raw)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrNotInteger, raw)
	}

	switch n {
	case GenderUnknown, GenderMale, GenderFemale:
		return int(n), nil
	default:
		return nil, ErrInvalidGender
	}
}

func validateClientIDs(raw any) (any, error) {
	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case []int64:
		items = make([]any, len(v))
		for i := range v {
			items[i] = v[i]
		}
	case []int:
		items = make([]any, len(v))
		for i := range v {
			items[i] = v[i]
		}
	default:
		return nil, fmt.Errorf("%w: got %T", ErrNotList, raw)
	}

	if len(items) == 0 {
		return nil, ErrEmpty
	}

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		id, ok := asInteger(item)
		if !ok {
			return nil, ErrInvalidClientID
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Значения пола
const (
	GenderUnknown = 0
	GenderMale    = 1
	GenderFemale  = 2
)

// asInteger приводит JSON-число или целый Go-тип к int64
// Дробные числа и bool целыми не считаются
func asInteger(raw any) (int64, bool) {
	switch v := raw.(type) {
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		// float64(math.MaxInt64) округляется до 2^63, поэтому граница строгая
		if v != math.Trunc(v) || v >= math.MaxInt64 || v < math.MinInt64 {
			return 0, false
		}
		return int64(v), true
	default:
		return 0, false
	}
}
