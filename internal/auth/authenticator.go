package auth

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"time"
)

// AdminLogin логин, для которого токен зависит от текущего часа
const AdminLogin = "admin"

// hourBucketFormat формат часа для токена администратора (UTC)
const hourBucketFormat = "2006010215"

// Authenticator проверяет токен запроса
// Не хранит изменяемого состояния и безопасен для конкурентного использования
type Authenticator struct {
	salt      string
	adminSalt string
	now       func() time.Time
}

// Option настраивает Authenticator
type Option func(*Authenticator)

// WithClock подменяет источник текущего времени
func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) {
		a.now = now
	}
}

// New создает Authenticator с солью для обычных пользователей и для администратора
func New(salt, adminSalt string, opts ...Option) *Authenticator {
	a := &Authenticator{
		salt:      salt,
		adminSalt: adminSalt,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// IsAdmin сообщает, является ли логин административным
func IsAdmin(login string) bool {
	return login == AdminLogin
}

// ExpectedToken вычисляет токен, который должен прислать клиент
func (a *Authenticator) ExpectedToken(account, login string) string {
	if IsAdmin(login) {
		return digest(a.now().UTC().Format(hourBucketFormat) + a.adminSalt)
	}
	return digest(account + login + a.salt)
}

// IsValid сравнивает присланный токен с ожидаемым
func (a *Authenticator) IsValid(account, login, token string) bool {
	if token == "" {
		return false
	}

	expected := a.ExpectedToken(account, login)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(token)) == 1
}

func digest(s string) string {
	sum := sha512.Sum512([]byte(s))
	return hex.EncodeToString(sum[:])
}
