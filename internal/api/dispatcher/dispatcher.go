package dispatcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/m04kA/SMC-ScoringAPI/internal/domain"
	"github.com/m04kA/SMC-ScoringAPI/internal/service/scoring"
	"github.com/m04kA/SMC-ScoringAPI/internal/validation"
)

const unknownMethodLabel = "unknown"

// envelopeSchema поля конверта запроса
// login, method и token обязаны присутствовать, но могут быть пустыми
var envelopeSchema = &validation.Schema{
	Name: "MethodRequest",
	Fields: []validation.Field{
		validation.CharField("account", false, true),
		validation.CharField("login", true, true),
		validation.CharField("token", true, true),
		validation.ArgumentsField("arguments", true, true),
		validation.CharField("method", true, true),
	},
}

// Dispatcher разбирает конверт, проверяет токен и вызывает обработчик метода
// После регистрации обработчиков безопасен для конкурентного использования
type Dispatcher struct {
	auth     Authenticator
	handlers map[string]HandlerFunc
	logger   Logger
	metrics  Metrics
}

// NewDispatcher создает диспетчер без зарегистрированных методов
func NewDispatcher(auth Authenticator, logger Logger, metrics Metrics) *Dispatcher {
	return &Dispatcher{
		auth:     auth,
		handlers: make(map[string]HandlerFunc),
		logger:   logger,
		metrics:  metrics,
	}
}

// Register связывает имя метода с обработчиком
func (d *Dispatcher) Register(method string, h HandlerFunc) {
	d.handlers[method] = h
}

// Dispatch обрабатывает тело запроса и всегда возвращает конверт ответа
func (d *Dispatcher) Dispatch(ctx context.Context, body []byte) *domain.Response {
	requestID := domain.RequestIDFromContext(ctx)

	raw, err := parseEnvelope(body)
	if err != nil {
		d.logger.Warn("Request %s: %v", requestID, err)
		if errors.Is(err, ErrEnvelopeNotObject) {
			return d.finish("", domain.Fail(domain.CodeInvalidRequest, err.Error()))
		}
		return d.finish("", domain.Fail(domain.CodeBadRequest, ""))
	}

	values, err := envelopeSchema.Validate(raw)
	if err != nil {
		d.logger.Warn("Request %s: invalid envelope: %v", requestID, err)
		return d.finish("", domain.Fail(domain.CodeInvalidRequest, err.Error()))
	}

	req := &domain.MethodRequest{
		Account:   values.String("account"),
		Login:     values.String("login"),
		Method:    values.String("method"),
		Token:     values.String("token"),
		Arguments: values.Map("arguments"),
	}

	if !d.auth.IsValid(req.Account, req.Login, req.Token) {
		d.logger.Warn("Request %s: authentication failed for login %q", requestID, req.Login)
		return d.finish(req.Method, domain.Fail(domain.CodeForbidden, ""))
	}

	handler, ok := d.handlers[req.Method]
	if !ok {
		d.logger.Warn("Request %s: unknown method %q", requestID, req.Method)
		return d.finish(req.Method, domain.Fail(domain.CodeInvalidRequest, MethodNotFound))
	}

	return d.finish(req.Method, d.call(ctx, handler, req))
}

// call выполняет обработчик и переводит его результат в конверт
// Паника и неожиданные ошибки дают 500 без деталей в ответе
func (d *Dispatcher) call(ctx context.Context, handler HandlerFunc, req *domain.MethodRequest) (resp *domain.Response) {
	requestID := domain.RequestIDFromContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Request %s: panic in method %s: %v", requestID, req.Method, r)
			resp = domain.Fail(domain.CodeInternalError, "")
		}
	}()

	result, err := handler(ctx, req)
	if err != nil {
		var argErr *scoring.ArgumentsError
		if errors.As(err, &argErr) {
			d.logger.Info("Request %s: invalid arguments for %s: %v", requestID, req.Method, err)
			return domain.Fail(domain.CodeInvalidRequest, argErr.Error())
		}

		d.logger.Error("Request %s: method %s failed: %v", requestID, req.Method, err)
		return domain.Fail(domain.CodeInternalError, "")
	}

	return domain.OK(result)
}

// finish учитывает результат в метриках; незарегистрированные имена методов схлопываются в unknownMethodLabel
func (d *Dispatcher) finish(method string, resp *domain.Response) *domain.Response {
	if _, ok := d.handlers[method]; !ok {
		method = unknownMethodLabel
	}
	d.metrics.RecordDispatch(method, strconv.Itoa(resp.Code))
	return resp
}

// parseEnvelope разбирает JSON, сохраняя числа как json.Number
func parseEnvelope(body []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after JSON value", ErrMalformedEnvelope)
	}

	envelope, ok := raw.(map[string]any)
	if !ok {
		return nil, ErrEnvelopeNotObject
	}
	return envelope, nil
}
