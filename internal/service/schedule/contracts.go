package schedule

import (
	"context"

	"github.com/goodgood52099-bit/XFWH-BOT/internal/domain"
)

// DayStore интерфейс коалесцера дневных документов
type DayStore interface {
	Mutate(ctx context.Context, dayKey string, fn func(doc *domain.DayDocument) (*domain.DayDocument, error)) (*domain.DayDocument, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
