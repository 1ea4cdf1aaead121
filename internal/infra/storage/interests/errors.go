package interests

import "errors"

var (
	// ErrConnect возвращается, если redis недоступен после всех попыток
	ErrConnect = errors.New("storage.interests: failed to connect to redis")

	// ErrRead возвращается при ошибке чтения интересов
	ErrRead = errors.New("storage.interests: failed to read interests")
)
