package handle_callback

import (
	"context"

	"github.com/goodgood52099-bit/XFWH-BOT/internal/domain"
	"github.com/goodgood52099-bit/XFWH-BOT/internal/service/schedule"
	"github.com/goodgood52099-bit/XFWH-BOT/pkg/types"
)

// ScheduleService интерфейс сервиса расписания
type ScheduleService interface {
	DayKey() string
	EnsureToday(ctx context.Context) (*domain.DayDocument, error)
	RenderDayList(doc *domain.DayDocument) string
	MainMenu() domain.ButtonGrid
	ReserveButtons(doc *domain.DayDocument) domain.ButtonGrid
	ModifyTargetButtons(doc *domain.DayDocument, oldSlot types.TimeString, oldName string) domain.ButtonGrid
	BookingsForGroup(doc *domain.DayDocument, chatID int64) []schedule.BookingRef
	PickButtons(refs []schedule.BookingRef, kind domain.CommandKind, perRow int) domain.ButtonGrid
}

// BookingService интерфейс сервиса резерваций
type BookingService interface {
	Cancel(ctx context.Context, dayKey string, slotTime types.TimeString, name string, originGroupID int64) error
}

// PendingService интерфейс сервиса диалоговых состояний
type PendingService interface {
	Get(ctx context.Context, userID int64) (*domain.PendingAction, error)
	Begin(ctx context.Context, action *domain.PendingAction) error
	Replace(ctx context.Context, action *domain.PendingAction) error
	Clear(ctx context.Context, userID int64) error
	Sweep(ctx context.Context) (int64, error)
}

// StaffTracker интерфейс трекера сервисных назначений
type StaffTracker interface {
	Pair(slot types.TimeString, name string) ([]string, bool)
	StaffFor(slot types.TimeString, name, fallback string) []string
	MarkNotified(slot types.TimeString, name string, businessChatID int64) bool
}

// NotifyService интерфейс сервиса рассылки
type NotifyService interface {
	BroadcastToRole(ctx context.Context, role domain.GroupRole, text string, buttons domain.ButtonGrid) (int, error)
}

// BotClient интерфейс клиента Bot API
type BotClient interface {
	SendMessage(ctx context.Context, chatID int64, text string, buttons domain.ButtonGrid) error
	AnswerCallback(ctx context.Context, callbackID string, text string) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
