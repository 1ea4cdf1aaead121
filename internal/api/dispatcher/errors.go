package dispatcher

import "errors"

var (
	// ErrMalformedEnvelope тело запроса не является корректным JSON
	ErrMalformedEnvelope = errors.New("api.dispatcher: malformed envelope")

	// ErrEnvelopeNotObject корректный JSON, но не объект
	ErrEnvelopeNotObject = errors.New("envelope must be a JSON object")
)

// MethodNotFound сообщение для неизвестного метода
const MethodNotFound = "Method Not Found"
