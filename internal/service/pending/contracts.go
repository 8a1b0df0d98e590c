package pending

import (
	"context"
	"time"

	"github.com/goodgood52099-bit/XFWH-BOT/internal/domain"
)

// PendingRepository интерфейс хранилища диалоговых состояний
type PendingRepository interface {
	Get(ctx context.Context, userID int64) (*domain.PendingAction, error)
	Set(ctx context.Context, action *domain.PendingAction) error
	Delete(ctx context.Context, userID int64) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
