package handle_message

import (
	"context"

	"github.com/goodgood52099-bit/XFWH-BOT/internal/domain"
	"github.com/goodgood52099-bit/XFWH-BOT/internal/service/bookings"
	"github.com/goodgood52099-bit/XFWH-BOT/internal/usecase/pending_reply"
	"github.com/goodgood52099-bit/XFWH-BOT/pkg/types"
)

// GroupService интерфейс реестра чат-групп
type GroupService interface {
	RegisterOnContact(ctx context.Context, chatID int64, kind domain.ChatKind) error
	Promote(ctx context.Context, chatID int64, userID int64) error
	IsAdmin(userID int64) bool
}

// PendingService интерфейс сервиса диалоговых состояний
type PendingService interface {
	Get(ctx context.Context, userID int64) (*domain.PendingAction, error)
	Clear(ctx context.Context, userID int64) error
	Sweep(ctx context.Context) (int64, error)
}

// PendingReplyUseCase интерфейс обработчика ответов на диалоговые шаги
type PendingReplyUseCase interface {
	Execute(ctx context.Context, req *pending_reply.Request) error
}

// ScheduleService интерфейс сервиса расписания
type ScheduleService interface {
	DayKey() string
	EnsureToday(ctx context.Context) (*domain.DayDocument, error)
	RenderDayList(doc *domain.DayDocument) string
	MainMenu() domain.ButtonGrid
}

// BookingService интерфейс сервиса резерваций
type BookingService interface {
	AddSlot(ctx context.Context, dayKey string, slotTime types.TimeString, capacity int) error
	SetCapacity(ctx context.Context, dayKey string, slotTime types.TimeString, capacity int) error
	AdminDelete(ctx context.Context, dayKey string, slotTime types.TimeString, target string) (*bookings.AdminDeleteResult, error)
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
