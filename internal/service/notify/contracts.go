package notify

import (
	"context"

	"github.com/goodgood52099-bit/XFWH-BOT/internal/domain"
)

// GroupLister интерфейс реестра чат-групп
type GroupLister interface {
	ListByRole(ctx context.Context, role domain.GroupRole) ([]domain.Group, error)
}

// BotClient интерфейс клиента Bot API
type BotClient interface {
	SendMessage(ctx context.Context, chatID int64, text string, buttons domain.ButtonGrid) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
