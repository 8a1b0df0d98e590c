package scheduler

import (
	"context"
	"time"

	"github.com/goodgood52099-bit/XFWH-BOT/internal/domain"
)

// ScheduleService интерфейс сервиса расписания
type ScheduleService interface {
	Now() time.Time
	DayKey() string
	EnsureToday(ctx context.Context) (*domain.DayDocument, error)
	RenderDayList(doc *domain.DayDocument) string
	MainMenu() domain.ButtonGrid
}

// Notifier интерфейс рассылки по группам с ролью
type Notifier interface {
	BroadcastToRole(ctx context.Context, role domain.GroupRole, text string, buttons domain.ButtonGrid) (int, error)
}

// BotClient интерфейс клиента Bot API
type BotClient interface {
	SendMessage(ctx context.Context, chatID int64, text string, buttons domain.ButtonGrid) error
}

// PendingSweeper интерфейс очистки истекших диалоговых состояний
type PendingSweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

// StaffTracker интерфейс трекера назначений персонала
type StaffTracker interface {
	Reset()
}

// DayRepository интерфейс для удаления устаревших дневных документов
type DayRepository interface {
	DeleteBefore(ctx context.Context, dayKey string) (int64, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
