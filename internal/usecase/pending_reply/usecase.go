package pending_reply

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goodgood52099-bit/XFWH-BOT/internal/domain"
	bookingSvc "github.com/goodgood52099-bit/XFWH-BOT/internal/service/bookings"
)

const (
	msgSlotGoneOrFull     = "⚠️ %s 不存在或已滿額"
	msgReserved           = "✅ %s 已預約 %s"
	msgBadAmount          = "⚠️ 金額格式錯誤"
	msgBookingMissing     = "⚠️ 找不到預約 %s"
	msgArrived            = "✅ %s %s 已標記到場，金額：%s"
	msgArrivalNotice      = "🙋‍♀️ 客到通知\n時間：%s\n業務名：%s\n金額：%s"
	msgBadClientDetails   = "❌ 格式錯誤，請輸入：小美 25 Alice 3000"
	msgClientCard         = "📌 客\n%s %s%s %s%s\n服務人員: %s"
	msgDoubleUpdated      = "👥 雙人服務更新：%s"
	msgCompleted          = "✅ 完成服務通知\n%s %s\n服務人員: %s\n金額: %s"
	msgFarewell           = "掰掰謝謝光臨!!"
	msgNoSale             = "⚠️ 未消: %s %s"
	msgModifyTargetsGone  = "⚠️ 時段不存在或已滿額"
	msgModified           = "✅ 已修改：%s %s → %s %s"
	msgActionFailed       = "❌ 執行動作時發生錯誤"
	labelStaffUpPrompt    = "上"
	labelDouble           = "雙"
	labelCompleteService  = "完成服務"
	labelFixClientDetails = "修正"
)

// UseCase обработка текстового ответа на активный диалоговый шаг
type UseCase struct {
	schedule ScheduleService
	bookings BookingService
	pending  PendingService
	tracker  StaffTracker
	notify   NotifyService
	bot      BotClient
	logger   Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	schedule ScheduleService,
	bookings BookingService,
	pending PendingService,
	tracker StaffTracker,
	notify NotifyService,
	bot BotClient,
	logger Logger,
) *UseCase {
	return &UseCase{
		schedule: schedule,
		bookings: bookings,
		pending:  pending,
		tracker:  tracker,
		notify:   notify,
		bot:      bot,
		logger:   logger,
	}
}

// Execute диспетчеризует ответ по типу шага
// Ошибка формата оставляет шаг открытым с подсказкой; все остальные исходы
// снимают шаг. Неожиданная ошибка деградирует до общего сообщения
func (uc *UseCase) Execute(ctx context.Context, req *Request) error {
	uc.logger.Info("PendingReply: user=%d chat=%d action=%s", req.UserID, req.ChatID, req.Action.Kind)

	clear, err := uc.dispatch(ctx, req)
	if err != nil {
		uc.logger.Error("PendingReply: action=%s failed: %v", req.Action.Kind, err)
		uc.send(ctx, req.ChatID, msgActionFailed, nil)
		clear = true
	}
	if clear {
		if cerr := uc.pending.Clear(ctx, req.UserID); cerr != nil {
			uc.logger.Error("PendingReply: failed to clear pending user=%d: %v", req.UserID, cerr)
		}
	}
	return err
}

func (uc *UseCase) dispatch(ctx context.Context, req *Request) (bool, error) {
	switch req.Action.Kind {
	case domain.PendingReservationName:
		return uc.reservationName(ctx, req)
	case domain.PendingArrivalAmount:
		return uc.arrivalAmount(ctx, req)
	case domain.PendingClientDetails:
		return uc.clientDetails(ctx, req)
	case domain.PendingSecondStaffName:
		return uc.secondStaffName(ctx, req)
	case domain.PendingCompletionAmount:
		return uc.completionAmount(ctx, req)
	case domain.PendingNoSaleReason:
		return uc.noSaleReason(ctx, req)
	case domain.PendingModifyName:
		return uc.modifyName(ctx, req)
	}
	return true, fmt.Errorf("%w: %s", ErrUnknownAction, req.Action.Kind)
}

// reservationName завершение резервации: текст пользователя становится именем
func (uc *UseCase) reservationName(ctx context.Context, req *Request) (bool, error) {
	action := req.Action
	name := strings.TrimSpace(req.Text)

	if _, err := uc.schedule.EnsureToday(ctx); err != nil {
		return true, err
	}
	assigned, err := uc.bookings.Create(ctx, uc.schedule.DayKey(), action.SlotTime, name, action.GroupChatID)
	if err != nil {
		if errors.Is(err, bookingSvc.ErrSlotNotFound) || errors.Is(err, bookingSvc.ErrSlotFull) {
			uc.send(ctx, action.GroupChatID, fmt.Sprintf(msgSlotGoneOrFull, action.SlotTime), nil)
			return true, nil
		}
		return true, err
	}

	uc.send(ctx, action.GroupChatID, fmt.Sprintf(msgReserved, assigned, action.SlotTime), nil)
	uc.broadcastDayList(ctx)
	return true, nil
}

// arrivalAmount завершение отметки прибытия: текст пользователя это сумма
func (uc *UseCase) arrivalAmount(ctx context.Context, req *Request) (bool, error) {
	action := req.Action

	amount, ok := parseAmount(req.Text)
	if !ok {
		uc.send(ctx, action.GroupChatID, msgBadAmount, nil)
		return false, nil
	}

	if _, err := uc.schedule.EnsureToday(ctx); err != nil {
		return true, err
	}
	err := uc.bookings.CheckIn(ctx, uc.schedule.DayKey(), action.SlotTime, action.Name, action.GroupChatID, amount)
	if err != nil {
		if errors.Is(err, bookingSvc.ErrBookingNotFound) || errors.Is(err, bookingSvc.ErrSlotNotFound) {
			uc.send(ctx, action.GroupChatID, fmt.Sprintf(msgBookingMissing, action.Name), nil)
			return true, nil
		}
		return true, err
	}

	uc.send(ctx, action.GroupChatID,
		fmt.Sprintf(msgArrived, action.SlotTime, action.Name, formatAmount(amount)), nil)

	staffButtons := domain.ButtonGrid{{{
		Label: labelStaffUpPrompt,
		Action: domain.Command{
			Kind:           domain.CmdStaffUp,
			SlotTime:       action.SlotTime,
			Name:           action.Name,
			BusinessChatID: action.GroupChatID,
		}.Token(),
	}}}
	notice := fmt.Sprintf(msgArrivalNotice, action.SlotTime, action.Name, formatAmount(amount))
	if _, err := uc.notify.BroadcastToRole(ctx, domain.RoleStaff, notice, staffButtons); err != nil {
		uc.logger.Error("PendingReply: staff broadcast failed: %v", err)
	}
	return true, nil
}

// clientDetails приём карточки клиента: 4 поля через пробел
func (uc *UseCase) clientDetails(ctx context.Context, req *Request) (bool, error) {
	action := req.Action

	fields := strings.Fields(req.Text)
	if len(fields) != 4 {
		uc.send(ctx, req.ChatID, msgBadClientDetails, nil)
		return false, nil
	}
	clientName, age, staffName, amount := fields[0], fields[1], fields[2], fields[3]

	card := fmt.Sprintf(msgClientCard, action.SlotTime, clientName, age, action.BusinessName, amount, staffName)
	uc.send(ctx, action.BusinessChatID, card, nil)

	staffButtons := domain.ButtonGrid{{
		{Label: labelDouble, Action: staffToken(domain.CmdDouble, action)},
		{Label: labelCompleteService, Action: staffToken(domain.CmdComplete, action)},
		{Label: labelFixClientDetails, Action: staffToken(domain.CmdFix, action)},
	}}
	uc.send(ctx, req.ChatID, card, staffButtons)
	return true, nil
}

// secondStaffName фиксация второго сотрудника двойного обслуживания
func (uc *UseCase) secondStaffName(ctx context.Context, req *Request) (bool, error) {
	action := req.Action
	second := strings.TrimSpace(req.Text)

	uc.tracker.SetPair(action.SlotTime, action.BusinessName, action.FirstStaff, second)
	uc.send(ctx, action.BusinessChatID,
		fmt.Sprintf(msgDoubleUpdated, action.FirstStaff+"、"+second), nil)
	return true, nil
}

// completionAmount завершение обслуживания: текст пользователя это общая сумма
func (uc *UseCase) completionAmount(ctx context.Context, req *Request) (bool, error) {
	action := req.Action

	amount, ok := parseAmount(req.Text)
	if !ok {
		uc.send(ctx, req.ChatID, msgBadAmount, nil)
		return false, nil
	}

	msg := fmt.Sprintf(msgCompleted,
		action.SlotTime, action.BusinessName, strings.Join(action.StaffList, "、"), formatAmount(amount))
	uc.send(ctx, req.ChatID, msg, nil)
	uc.send(ctx, action.BusinessChatID, msg, nil)
	return true, nil
}

// noSaleReason причина отказа от услуги
func (uc *UseCase) noSaleReason(ctx context.Context, req *Request) (bool, error) {
	action := req.Action

	uc.send(ctx, req.ChatID, msgFarewell, nil)
	uc.send(ctx, action.BusinessChatID,
		fmt.Sprintf(msgNoSale, action.Name, strings.TrimSpace(req.Text)), nil)
	return true, nil
}

// modifyName завершение переноса: текст пользователя это новое имя
func (uc *UseCase) modifyName(ctx context.Context, req *Request) (bool, error) {
	action := req.Action
	newName := strings.TrimSpace(req.Text)

	if _, err := uc.schedule.EnsureToday(ctx); err != nil {
		return true, err
	}
	assigned, err := uc.bookings.Modify(ctx, uc.schedule.DayKey(),
		action.OldSlotTime, action.OldName, action.NewSlotTime, newName, action.GroupChatID)
	if err != nil {
		if errors.Is(err, bookingSvc.ErrBookingNotFound) {
			uc.send(ctx, action.GroupChatID, fmt.Sprintf(msgBookingMissing, action.OldName), nil)
			return true, nil
		}
		if errors.Is(err, bookingSvc.ErrSlotNotFound) || errors.Is(err, bookingSvc.ErrSlotFull) {
			uc.send(ctx, action.GroupChatID, msgModifyTargetsGone, nil)
			return true, nil
		}
		return true, err
	}

	uc.broadcastDayList(ctx)
	uc.send(ctx, action.GroupChatID,
		fmt.Sprintf(msgModified, action.OldSlotTime, action.OldName, action.NewSlotTime, assigned), nil)
	return true, nil
}

// broadcastDayList рассылает обновлённый список дня бизнес-группам с главным меню
func (uc *UseCase) broadcastDayList(ctx context.Context) {
	doc, err := uc.schedule.EnsureToday(ctx)
	if err != nil {
		uc.logger.Error("PendingReply: failed to load day for broadcast: %v", err)
		return
	}
	if _, err := uc.notify.BroadcastToRole(ctx, domain.RoleBusiness, uc.schedule.RenderDayList(doc), uc.schedule.MainMenu()); err != nil {
		uc.logger.Error("PendingReply: business broadcast failed: %v", err)
	}
}

func (uc *UseCase) send(ctx context.Context, chatID int64, text string, buttons domain.ButtonGrid) {
	if err := uc.bot.SendMessage(ctx, chatID, text, buttons); err != nil {
		uc.logger.Error("PendingReply: send failed chat=%d: %v", chatID, err)
	}
}

func staffToken(kind domain.CommandKind, action *domain.PendingAction) string {
	return domain.Command{
		Kind:           kind,
		SlotTime:       action.SlotTime,
		Name:           action.BusinessName,
		BusinessChatID: action.BusinessChatID,
	}.Token()
}

func parseAmount(text string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
