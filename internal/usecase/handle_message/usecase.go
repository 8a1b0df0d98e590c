package handle_message

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goodgood52099-bit/XFWH-BOT/internal/domain"
	bookingSvc "github.com/goodgood52099-bit/XFWH-BOT/internal/service/bookings"
	groupSvc "github.com/goodgood52099-bit/XFWH-BOT/internal/service/groups"
	"github.com/goodgood52099-bit/XFWH-BOT/internal/usecase/pending_reply"
	"github.com/goodgood52099-bit/XFWH-BOT/pkg/types"
)

const (
	msgHelp = `📌 *預約機器人指令說明* 📌

一般使用者：
- 按 /list 查看時段並用按鈕操作

管理員：
- 刪除 13:00 all
- 刪除 13:00 2
- 刪除 13:00 小明
- /addshift HH:MM 限制
- /updateshift HH:MM 限制
- /STAFF 設定本群為服務員群組
`
	msgStaffDenied    = "⚠️ 你沒有權限設定服務員群組"
	msgStaffPromoted  = "✅ 已將本群組設定為服務員群組"
	msgHintUseList    = "💡 請使用 /list 查看可預約時段。"
	msgAddShiftUsage  = "⚠️ 格式：/addshift HH:MM 限制"
	msgShiftExists    = "⚠️ %s 已存在"
	msgShiftAdded     = "✅ 新增 %s 時段，限制 %d 人"
	msgUpdShiftUsage  = "⚠️ 格式：/updateshift HH:MM 限制"
	msgShiftMissing   = "⚠️ %s 不存在"
	msgShiftUpdated   = "✅ %s 時段限制已更新為 %d"
	msgDeleteUsage    = "❗ 格式錯誤\n請輸入：\n刪除 HH:MM 名稱 / 數量 / all"
	msgSlotNotFound   = "⚠️ 找不到 %s 的時段"
	msgSlotCleared    = "🧹 已清空 %s 的所有名單（未報到 %d、已報到 %d）"
	msgSeatsRemoved   = "🗑 已刪除 %s 的 %d 個名額（原 %d → 現在 %d）"
	msgEntryRemoved   = "✅ 已從 %s 移除 %s（%s）"
	msgTargetNotFound = "⚠️ %s 找不到 %s"
)

// UseCase обработка входящего текстового сообщения:
// регистрация группы, диспетчеризация активного шага, команды и
// административная грамматика
type UseCase struct {
	groups       GroupService
	pending      PendingService
	pendingReply PendingReplyUseCase
	schedule     ScheduleService
	bookings     BookingService
	bot          BotClient
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	groups GroupService,
	pending PendingService,
	pendingReply PendingReplyUseCase,
	schedule ScheduleService,
	bookings BookingService,
	bot BotClient,
	logger Logger,
) *UseCase {
	return &UseCase{
		groups:       groups,
		pending:      pending,
		pendingReply: pendingReply,
		schedule:     schedule,
		bookings:     bookings,
		bot:          bot,
		logger:       logger,
	}
}

// Execute выполняет обработку текстового сообщения
func (uc *UseCase) Execute(ctx context.Context, req *Request) error {
	text := strings.TrimSpace(req.Text)
	uc.logger.Info("HandleMessage: chat=%d user=%d text=%q", req.ChatID, req.UserID, text)

	if err := uc.groups.RegisterOnContact(ctx, req.ChatID, req.ChatKind); err != nil {
		uc.logger.Error("HandleMessage: group registration failed chat=%d: %v", req.ChatID, err)
	}

	if _, err := uc.pending.Sweep(ctx); err != nil {
		uc.logger.Error("HandleMessage: pending sweep failed: %v", err)
	}

	// активный диалоговый шаг перехватывает любое текстовое сообщение
	action, err := uc.pending.Get(ctx, req.UserID)
	if err != nil {
		return err
	}
	if action != nil {
		return uc.pendingReply.Execute(ctx, &pending_reply.Request{
			UserID: req.UserID,
			ChatID: req.ChatID,
			Text:   text,
			Action: action,
		})
	}

	switch {
	case text == "/help":
		uc.send(ctx, req.ChatID, msgHelp, nil)
		return nil

	case strings.HasPrefix(text, "/STAFF"):
		return uc.promote(ctx, req)

	case text == "/list":
		return uc.list(ctx, req)
	}

	if uc.groups.IsAdmin(req.UserID) {
		return uc.adminText(ctx, req.ChatID, text)
	}

	uc.send(ctx, req.ChatID, msgHintUseList, nil)
	return nil
}

// promote повышение группы до staff; отказ без привилегий не меняет состояние
func (uc *UseCase) promote(ctx context.Context, req *Request) error {
	err := uc.groups.Promote(ctx, req.ChatID, req.UserID)
	if errors.Is(err, groupSvc.ErrUnauthorized) {
		uc.send(ctx, req.ChatID, msgStaffDenied, nil)
		return nil
	}
	if err != nil {
		return err
	}
	uc.send(ctx, req.ChatID, msgStaffPromoted, nil)
	return nil
}

// list сброс активного шага и отправка списка дня с главным меню
func (uc *UseCase) list(ctx context.Context, req *Request) error {
	if err := uc.pending.Clear(ctx, req.UserID); err != nil {
		uc.logger.Error("HandleMessage: failed to clear pending user=%d: %v", req.UserID, err)
	}
	doc, err := uc.schedule.EnsureToday(ctx)
	if err != nil {
		return err
	}
	uc.send(ctx, req.ChatID, uc.schedule.RenderDayList(doc), uc.schedule.MainMenu())
	return nil
}

// adminText административная грамматика:
// /addshift HH:MM limit, /updateshift HH:MM limit, 刪除 HH:MM all|N|имя
// Неопознанный текст администратора остаётся без ответа
func (uc *UseCase) adminText(ctx context.Context, chatID int64, text string) error {
	if _, err := uc.schedule.EnsureToday(ctx); err != nil {
		return err
	}
	dayKey := uc.schedule.DayKey()

	switch {
	case strings.HasPrefix(text, "/addshift"):
		slot, limit, ok := parseShiftArgs(text)
		if !ok {
			uc.send(ctx, chatID, msgAddShiftUsage, nil)
			return nil
		}
		err := uc.bookings.AddSlot(ctx, dayKey, slot, limit)
		if errors.Is(err, bookingSvc.ErrSlotExists) {
			uc.send(ctx, chatID, fmt.Sprintf(msgShiftExists, slot), nil)
			return nil
		}
		if err != nil {
			return err
		}
		uc.send(ctx, chatID, fmt.Sprintf(msgShiftAdded, slot, limit), nil)
		return nil

	case strings.HasPrefix(text, "/updateshift"):
		slot, limit, ok := parseShiftArgs(text)
		if !ok {
			uc.send(ctx, chatID, msgUpdShiftUsage, nil)
			return nil
		}
		err := uc.bookings.SetCapacity(ctx, dayKey, slot, limit)
		if errors.Is(err, bookingSvc.ErrSlotNotFound) {
			uc.send(ctx, chatID, fmt.Sprintf(msgShiftMissing, slot), nil)
			return nil
		}
		if err != nil {
			return err
		}
		uc.send(ctx, chatID, fmt.Sprintf(msgShiftUpdated, slot, limit), nil)
		return nil

	case strings.HasPrefix(text, "刪除"):
		return uc.adminDelete(ctx, chatID, dayKey, text)
	}

	return nil
}

func (uc *UseCase) adminDelete(ctx context.Context, chatID int64, dayKey, text string) error {
	parts := strings.Fields(text)
	if len(parts) < 3 {
		uc.send(ctx, chatID, msgDeleteUsage, nil)
		return nil
	}
	slot, err := types.NewTimeStringFromString(parts[1])
	if err != nil {
		uc.send(ctx, chatID, msgDeleteUsage, nil)
		return nil
	}
	target := strings.Join(parts[2:], " ")

	result, err := uc.bookings.AdminDelete(ctx, dayKey, slot, target)
	if errors.Is(err, bookingSvc.ErrSlotNotFound) {
		uc.send(ctx, chatID, fmt.Sprintf(msgSlotNotFound, slot), nil)
		return nil
	}
	if errors.Is(err, bookingSvc.ErrBookingNotFound) {
		uc.send(ctx, chatID, fmt.Sprintf(msgTargetNotFound, slot, target), nil)
		return nil
	}
	if err != nil {
		return err
	}

	switch result.Kind {
	case bookingSvc.AdminDeleteCleared:
		uc.send(ctx, chatID, fmt.Sprintf(msgSlotCleared, slot, result.BookingsCleared, result.InProgressCleared), nil)
	case bookingSvc.AdminDeleteCapacity:
		uc.send(ctx, chatID, fmt.Sprintf(msgSeatsRemoved, slot, result.RemovedSeats, result.OldCapacity, result.NewCapacity), nil)
	case bookingSvc.AdminDeleteRemoved:
		uc.send(ctx, chatID, fmt.Sprintf(msgEntryRemoved, slot, target, result.RemovedFrom.Label()), nil)
	}
	return nil
}

func (uc *UseCase) send(ctx context.Context, chatID int64, text string, buttons domain.ButtonGrid) {
	if err := uc.bot.SendMessage(ctx, chatID, text, buttons); err != nil {
		uc.logger.Error("HandleMessage: send failed chat=%d: %v", chatID, err)
	}
}

func parseShiftArgs(text string) (types.TimeString, int, bool) {
	parts := strings.Fields(text)
	if len(parts) < 3 {
		return "", 0, false
	}
	slot, err := types.NewTimeStringFromString(parts[1])
	if err != nil {
		return "", 0, false
	}
	limit, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", 0, false
	}
	return slot, limit, true
}
