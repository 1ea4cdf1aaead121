package domain

import (
	"encoding/json"
)

// Коды ответа, возвращаемые в поле code тела ответа
const (
	CodeOK             = 200
	CodeBadRequest     = 400
	CodeForbidden      = 403
	CodeNotFound       = 404
	CodeInvalidRequest = 422
	CodeInternalError  = 500
)

// errorTexts сообщения по умолчанию для кодов ошибок
var errorTexts = map[int]string{
	CodeBadRequest:     "Bad Request",
	CodeForbidden:      "Forbidden",
	CodeNotFound:       "Not Found",
	CodeInvalidRequest: "Invalid Request",
	CodeInternalError:  "Internal Server Error",
}

// ErrorText возвращает стандартное сообщение для кода ошибки
func ErrorText(code int) string {
	if text, ok := errorTexts[code]; ok {
		return text
	}
	return "Unknown Error"
}

// IsErrorCode сообщает, является ли код ошибкой
func IsErrorCode(code int) bool {
	_, ok := errorTexts[code]
	return ok
}

// MethodRequest проверенный конверт запроса
type MethodRequest struct {
	Account   string
	Login     string
	Method    string
	Token     string
	Arguments map[string]any
}

// Response конверт ответа: {code, response} при успехе или {code, error} при ошибке
// Создается заново на каждый запрос и после записи не изменяется
type Response struct {
	Code     int
	Payload  any
	ErrorMsg string
}

// OK успешный ответ с данными
func OK(payload any) *Response {
	return &Response{Code: CodeOK, Payload: payload}
}

// Fail ответ с ошибкой; пустое сообщение заменяется стандартным текстом кода
func Fail(code int, msg string) *Response {
	if msg == "" {
		msg = ErrorText(code)
	}
	return &Response{Code: code, ErrorMsg: msg}
}

type okBody struct {
	Code     int `json:"code"`
	Response any `json:"response"`
}

type errorBody struct {
	Code  int    `json:"code"`
	Error string `json:"error"`
}

// MarshalJSON implements json.Marshaler interface
func (r *Response) MarshalJSON() ([]byte, error) {
	if IsErrorCode(r.Code) {
		msg := r.ErrorMsg
		if msg == "" {
			msg = ErrorText(r.Code)
		}
		return json.Marshal(errorBody{Code: r.Code, Error: msg})
	}
	return json.Marshal(okBody{Code: r.Code, Response: r.Payload})
}
