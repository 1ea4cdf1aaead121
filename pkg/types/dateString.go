package types

import (
	"errors"
	"fmt"
	"time"
)

// DateString календарная дата в формате "DD.MM.YYYY" (например: "20.07.2017")
type DateString string

const (
	// DateFormat формат даты для DateString
	DateFormat = "02.01.2006"

	// compactFormat формат даты для ключей кэша
	compactFormat = "20060102"
)

var (
	// ErrInvalidDateFormat возвращается при некорректном формате даты
	ErrInvalidDateFormat = errors.New("invalid date format, expected DD.MM.YYYY")

	// ErrInvalidDateValue возвращается при пустом значении даты
	ErrInvalidDateValue = errors.New("invalid date value")
)

// IsZero возвращает true, если дата не установлена
func (d DateString) IsZero() bool {
	return d == ""
}

// ToTime парсит DateString в time.Time (полночь UTC)
func (d DateString) ToTime() (time.Time, error) {
	if d.IsZero() {
		return time.Time{}, ErrInvalidDateValue
	}

	parsed, err := time.Parse(DateFormat, string(d))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidDateFormat, err)
	}

	return parsed, nil
}

// Compact возвращает дату в формате YYYYMMDD, пустую строку для невалидной даты
func (d DateString) Compact() string {
	t, err := d.ToTime()
	if err != nil {
		return ""
	}
	return t.Format(compactFormat)
}

// NewDateString создает DateString из time.Time
func NewDateString(t time.Time) DateString {
	return DateString(t.Format(DateFormat))
}
