package daystore

import (
	"context"

	"github.com/goodgood52099-bit/XFWH-BOT/internal/domain"
)

// DayRepository интерфейс нижележащего хранилища дневных документов
type DayRepository interface {
	Get(ctx context.Context, dayKey string) (*domain.DayDocument, error)
	Upsert(ctx context.Context, doc *domain.DayDocument) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
