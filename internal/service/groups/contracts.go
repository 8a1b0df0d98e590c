package groups

import (
	"context"

	"github.com/goodgood52099-bit/XFWH-BOT/internal/domain"
)

// GroupRepository интерфейс хранилища реестра чат-групп
type GroupRepository interface {
	EnsureRegistered(ctx context.Context, chatID int64) error
	SetRole(ctx context.Context, chatID int64, role domain.GroupRole) error
	ListByRole(ctx context.Context, role domain.GroupRole) ([]domain.Group, error)
}

// TxManager интерфейс менеджера транзакций
type TxManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// AdminList интерфейс проверки привилегий пользователя
type AdminList interface {
	IsAdmin(userID int64) bool
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
