package validation

import (
	"reflect"
	"time"
)

// Schema упорядоченный набор полей запроса и правило проверки их сочетания
type Schema struct {
	Name   string
	Fields []Field
	// Check выполняется только когда все поля по отдельности валидны
	Check func(v Values) error
}

// Validate проверяет аргументы по всем полям, затем правило сочетания полей
func (s *Schema) Validate(args map[string]any) (Values, error) {
	values, err := s.ValidateFields(args)
	if err != nil {
		return Values{}, err
	}

	if s.Check != nil {
		if err := s.Check(values); err != nil {
			return Values{}, err
		}
	}

	return values, nil
}

// ValidateFields проверяет каждое поле и собирает все ошибки в порядке объявления
func (s *Schema) ValidateFields(args map[string]any) (Values, error) {
	values := Values{data: make(map[string]any, len(s.Fields))}
	var errs Errors

	for _, field := range s.Fields {
		raw, present := args[field.Name]
		if raw == nil {
			present = false
		}

		if !present {
			if field.Required {
				errs = append(errs, &FieldError{Field: field.Name, Err: ErrRequired})
			}
			continue
		}

		if isEmpty(raw) {
			if !field.Nullable {
				errs = append(errs, &FieldError{Field: field.Name, Err: ErrEmpty})
			}
			continue
		}

		typed, err := field.Validate(raw)
		if err != nil {
			errs = append(errs, &FieldError{Field: field.Name, Err: err})
			continue
		}

		values.order = append(values.order, field.Name)
		values.data[field.Name] = typed
	}

	if len(errs) > 0 {
		return Values{}, errs
	}
	return values, nil
}

// isEmpty пустая строка, пустой список или пустой объект
// Числовой ноль пустым не считается
func isEmpty(raw any) bool {
	v := reflect.ValueOf(raw)
	switch v.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	default:
		return false
	}
}

// Values типизированные значения полей, прошедших проверку с непустым значением
type Values struct {
	data  map[string]any
	order []string
}

// Has сообщает, передано ли поле с непустым значением
func (v Values) Has(name string) bool {
	_, ok := v.data[name]
	return ok
}

// Supplied имена полей с непустыми значениями в порядке объявления
func (v Values) Supplied() []string {
	out := make([]string, len(v.order))
	copy(out, v.order)
	return out
}

func (v Values) String(name string) string {
	s, _ := v.data[name].(string)
	return s
}

func (v Values) Int(name string) (int, bool) {
	n, ok := v.data[name].(int)
	return n, ok
}

func (v Values) Time(name string) (time.Time, bool) {
	t, ok := v.data[name].(time.Time)
	return t, ok
}

func (v Values) Int64s(name string) []int64 {
	ids, _ := v.data[name].([]int64)
	return ids
}

func (v Values) Map(name string) map[string]any {
	m, _ := v.data[name].(map[string]any)
	return m
}
