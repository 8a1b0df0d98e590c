package pending_reply

import (
	"context"

	"github.com/goodgood52099-bit/XFWH-BOT/internal/domain"
	"github.com/goodgood52099-bit/XFWH-BOT/pkg/types"
)

// ScheduleService интерфейс сервиса расписания
type ScheduleService interface {
	DayKey() string
	EnsureToday(ctx context.Context) (*domain.DayDocument, error)
	RenderDayList(doc *domain.DayDocument) string
	MainMenu() domain.ButtonGrid
}

// BookingService интерфейс сервиса резерваций
type BookingService interface {
	Create(ctx context.Context, dayKey string, slotTime types.TimeString, name string, originGroupID int64) (string, error)
	CheckIn(ctx context.Context, dayKey string, slotTime types.TimeString, name string, originGroupID int64, amount float64) error
	Modify(ctx context.Context, dayKey string, oldSlot types.TimeString, oldName string, newSlot types.TimeString, newName string, originGroupID int64) (string, error)
}

// PendingService интерфейс сервиса диалоговых состояний
type PendingService interface {
	Clear(ctx context.Context, userID int64) error
}

// StaffTracker интерфейс трекера сервисных назначений
type StaffTracker interface {
	SetPair(slot types.TimeString, name, first, second string)
}

// NotifyService интерфейс сервиса рассылки
type NotifyService interface {
	BroadcastToRole(ctx context.Context, role domain.GroupRole, text string, buttons domain.ButtonGrid) (int, error)
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
