package audit

import (
	"github.com/m04kA/SMC-ScoringAPI/pkg/txmanager"
)

// Переиспользуем интерфейс из txmanager для работы с БД
type DBExecutor = txmanager.DBExecutor
