package handle_callback

import (
	"context"
	"errors"
	"fmt"

	"github.com/goodgood52099-bit/XFWH-BOT/internal/domain"
	bookingSvc "github.com/goodgood52099-bit/XFWH-BOT/internal/service/bookings"
	pendingSvc "github.com/goodgood52099-bit/XFWH-BOT/internal/service/pending"
)

const (
	msgFlowCancelled    = "❌ 已取消操作。"
	msgDeadButton       = "⚠️ 此按鈕暫時無效"
	msgFlowActive       = "⚠️ 請先完成或取消目前操作。"
	msgNoFutureSlots    = "📅 目前沒有可預約的時段。"
	msgPickReserveSlot  = "請選擇要預約的時段："
	msgNoBookings       = "目前沒有相關預約。"
	msgPickArrive       = "請選擇要客到的預約："
	msgPickModify       = "請選擇要修改的預約："
	msgPickCancel       = "請選擇要取消的預約："
	msgEnterReserveName = "✏️ 請輸入要預約 %s 的姓名："
	msgEnterAmount      = "✏️ 請輸入 %s %s 的金額："
	msgPickModifyTarget = "要將 %s %s 修改到哪個時段？"
	msgEnterModifyName  = "✏️ 請輸入新名稱來修改 %s %s → %s"
	msgSlotMissing      = "找不到該時段"
	msgCancelled        = "✅ 已取消 %s %s 的預約"
	msgStaffUpNotice    = "⬆️ 上 %s %s"
	msgStaffNotified    = "✅ 已通知業務 %s"
	msgEnterClientInfo  = "✏️ 請輸入客稱、年紀、服務人員與金額（格式：小美 25 Alice 3000）"
	msgEnterNoSale      = "✏️ 請輸入未消原因："
	msgDoubleTaken      = "⚠️ %s %s 已有人選擇第一位服務員：%s"
	msgEnterSecondStaff = "✏️ 請輸入另一位服務員名字，與 %s 配合雙人服務"
	msgEnterTotalAmount = "✏️ 請輸入 %s %s 的總金額（數字）："
	msgReenterClient    = "✏️ 請重新輸入客資（格式：小美 25 Alice 3000）"

	labelEnterClientInfo = "輸入客資"
	labelNotConsumed     = "未消"
)

// UseCase обработка нажатий кнопок
// Каждое нажатие подтверждается ровно один раз независимо от исхода
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

// Execute разбирает командный токен и выполняет команду
func (uc *UseCase) Execute(ctx context.Context, req *Request) error {
	uc.logger.Info("HandleCallback: user=%d chat=%d data=%q", req.UserID, req.ChatID, req.Data)

	if _, err := uc.pending.Sweep(ctx); err != nil {
		uc.logger.Error("HandleCallback: pending sweep failed: %v", err)
	}

	ackText, err := uc.dispatch(ctx, req)
	if err != nil {
		uc.logger.Error("HandleCallback: data=%q failed: %v", req.Data, err)
	}
	if ackErr := uc.bot.AnswerCallback(ctx, req.CallbackID, ackText); ackErr != nil {
		uc.logger.Error("HandleCallback: answer failed id=%s: %v", req.CallbackID, ackErr)
	}
	return err
}

// dispatch возвращает текст подтверждения нажатия (обычно пустой)
func (uc *UseCase) dispatch(ctx context.Context, req *Request) (string, error) {
	cmd, err := domain.ParseCommand(req.Data)
	if err != nil {
		uc.logger.Warn("HandleCallback: bad token %q: %v", req.Data, err)
		uc.send(ctx, req.ChatID, msgDeadButton, nil)
		return "", nil
	}

	switch cmd.Kind {
	case domain.CmdNoop:
		return "", nil

	case domain.CmdCancelFlow:
		if err := uc.pending.Clear(ctx, req.UserID); err != nil {
			return "", err
		}
		uc.send(ctx, req.ChatID, msgFlowCancelled, nil)
		return "", nil

	case domain.CmdMainReserve:
		return uc.mainReserve(ctx, req)
	case domain.CmdMainArrive:
		return uc.mainPick(ctx, req, domain.CmdArrivePick, msgPickArrive, domain.BookingButtonsPerRow)
	case domain.CmdMainModify:
		return uc.mainPick(ctx, req, domain.CmdModifyPick, msgPickModify, 1)
	case domain.CmdMainCancel:
		return uc.mainPick(ctx, req, domain.CmdCancelPick, msgPickCancel, 1)

	case domain.CmdReservePick:
		return uc.beginFlow(ctx, req, &domain.PendingAction{
			UserID:      req.UserID,
			Kind:        domain.PendingReservationName,
			SlotTime:    cmd.SlotTime,
			GroupChatID: req.ChatID,
		}, fmt.Sprintf(msgEnterReserveName, cmd.SlotTime))

	case domain.CmdArrivePick:
		return uc.beginFlow(ctx, req, &domain.PendingAction{
			UserID:      req.UserID,
			Kind:        domain.PendingArrivalAmount,
			SlotTime:    cmd.SlotTime,
			Name:        cmd.Name,
			GroupChatID: req.ChatID,
		}, fmt.Sprintf(msgEnterAmount, cmd.SlotTime, cmd.Name))

	case domain.CmdModifyPick:
		return uc.modifyPick(ctx, req, cmd)

	case domain.CmdModifyTo:
		return uc.beginFlow(ctx, req, &domain.PendingAction{
			UserID:      req.UserID,
			Kind:        domain.PendingModifyName,
			OldSlotTime: cmd.OldSlotTime,
			OldName:     cmd.OldName,
			NewSlotTime: cmd.NewSlotTime,
			GroupChatID: req.ChatID,
		}, fmt.Sprintf(msgEnterModifyName, cmd.OldSlotTime, cmd.OldName, cmd.NewSlotTime))

	case domain.CmdCancelPick:
		return uc.cancelPick(ctx, req, cmd)

	case domain.CmdStaffUp:
		return uc.staffUp(ctx, req, cmd)
	case domain.CmdInputClient:
		return uc.inputClient(ctx, req, cmd, msgEnterClientInfo)
	case domain.CmdNotConsumed:
		return uc.notConsumed(ctx, req, cmd)
	case domain.CmdDouble:
		return uc.double(ctx, req, cmd)
	case domain.CmdComplete:
		return uc.complete(ctx, req, cmd)
	case domain.CmdFix:
		return uc.inputClient(ctx, req, cmd, msgReenterClient)
	}

	uc.send(ctx, req.ChatID, msgDeadButton, nil)
	return "", nil
}

// mainReserve сетка будущих слотов с остатком мест
func (uc *UseCase) mainReserve(ctx context.Context, req *Request) (string, error) {
	doc, err := uc.schedule.EnsureToday(ctx)
	if err != nil {
		return "", err
	}
	grid := uc.schedule.ReserveButtons(doc)
	if len(grid) <= 1 { // только строка 取消
		uc.send(ctx, req.ChatID, msgNoFutureSlots, nil)
		return "", nil
	}
	uc.send(ctx, req.ChatID, msgPickReserveSlot, grid)
	return "", nil
}

// mainPick сетка резерваций группы для выбранного действия
func (uc *UseCase) mainPick(ctx context.Context, req *Request, kind domain.CommandKind, prompt string, perRow int) (string, error) {
	doc, err := uc.schedule.EnsureToday(ctx)
	if err != nil {
		return "", err
	}
	refs := uc.schedule.BookingsForGroup(doc, req.ChatID)
	if len(refs) == 0 {
		uc.send(ctx, req.ChatID, msgNoBookings, nil)
		return "", nil
	}
	uc.send(ctx, req.ChatID, prompt, uc.schedule.PickButtons(refs, kind, perRow))
	return "", nil
}

// beginFlow начинает диалоговый шаг; живой активный шаг блокирует новый
func (uc *UseCase) beginFlow(ctx context.Context, req *Request, action *domain.PendingAction, prompt string) (string, error) {
	if err := uc.pending.Begin(ctx, action); err != nil {
		if errors.Is(err, pendingSvc.ErrFlowActive) {
			uc.send(ctx, req.ChatID, msgFlowActive, nil)
			return "", nil
		}
		return "", err
	}
	uc.send(ctx, req.ChatID, prompt, nil)
	return "", nil
}

// modifyPick выбор слота-назначения; диалоговый шаг ещё не начинается
func (uc *UseCase) modifyPick(ctx context.Context, req *Request, cmd domain.Command) (string, error) {
	active, err := uc.pending.Get(ctx, req.UserID)
	if err != nil {
		return "", err
	}
	if active != nil {
		uc.send(ctx, req.ChatID, msgFlowActive, nil)
		return "", nil
	}

	doc, err := uc.schedule.EnsureToday(ctx)
	if err != nil {
		return "", err
	}
	uc.send(ctx, req.ChatID,
		fmt.Sprintf(msgPickModifyTarget, cmd.SlotTime, cmd.Name),
		uc.schedule.ModifyTargetButtons(doc, cmd.SlotTime, cmd.Name))
	return "", nil
}

// cancelPick снятие резервации; повторное нажатие не ошибка
func (uc *UseCase) cancelPick(ctx context.Context, req *Request, cmd domain.Command) (string, error) {
	if _, err := uc.schedule.EnsureToday(ctx); err != nil {
		return "", err
	}
	err := uc.bookings.Cancel(ctx, uc.schedule.DayKey(), cmd.SlotTime, cmd.Name, req.ChatID)
	if err != nil {
		if errors.Is(err, bookingSvc.ErrSlotNotFound) {
			return msgSlotMissing, nil
		}
		return "", err
	}
	if err := uc.pending.Clear(ctx, req.UserID); err != nil {
		uc.logger.Error("HandleCallback: failed to clear pending user=%d: %v", req.UserID, err)
	}

	uc.broadcastDayList(ctx)
	uc.send(ctx, req.ChatID, fmt.Sprintf(msgCancelled, cmd.SlotTime, cmd.Name), nil)
	return "", nil
}

// staffUp первый отклик сотрудника: бизнес-группа уведомляется один раз
func (uc *UseCase) staffUp(ctx context.Context, req *Request, cmd domain.Command) (string, error) {
	if uc.tracker.MarkNotified(cmd.SlotTime, cmd.Name, cmd.BusinessChatID) {
		uc.send(ctx, cmd.BusinessChatID, fmt.Sprintf(msgStaffUpNotice, cmd.SlotTime, cmd.Name), nil)
	}

	buttons := domain.ButtonGrid{{
		{Label: labelEnterClientInfo, Action: domain.Command{
			Kind: domain.CmdInputClient, SlotTime: cmd.SlotTime, Name: cmd.Name, BusinessChatID: cmd.BusinessChatID,
		}.Token()},
		{Label: labelNotConsumed, Action: domain.Command{
			Kind: domain.CmdNotConsumed, SlotTime: cmd.SlotTime, Name: cmd.Name, BusinessChatID: cmd.BusinessChatID,
		}.Token()},
	}}
	uc.send(ctx, req.ChatID, fmt.Sprintf(msgStaffNotified, cmd.Name), buttons)
	return "", nil
}

// inputClient запрос карточки клиента; замещает любой прежний шаг
func (uc *UseCase) inputClient(ctx context.Context, req *Request, cmd domain.Command, prompt string) (string, error) {
	err := uc.pending.Replace(ctx, &domain.PendingAction{
		UserID:         req.UserID,
		Kind:           domain.PendingClientDetails,
		SlotTime:       cmd.SlotTime,
		BusinessName:   cmd.Name,
		BusinessChatID: cmd.BusinessChatID,
	})
	if err != nil {
		return "", err
	}
	uc.send(ctx, req.ChatID, prompt, nil)
	return "", nil
}

// notConsumed запрос причины отказа
func (uc *UseCase) notConsumed(ctx context.Context, req *Request, cmd domain.Command) (string, error) {
	err := uc.pending.Replace(ctx, &domain.PendingAction{
		UserID:         req.UserID,
		Kind:           domain.PendingNoSaleReason,
		SlotTime:       cmd.SlotTime,
		Name:           cmd.Name,
		BusinessChatID: cmd.BusinessChatID,
	})
	if err != nil {
		return "", err
	}
	uc.send(ctx, req.ChatID, msgEnterNoSale, nil)
	return "", nil
}

// double начало двойного обслуживания; повторный выбор пары отклоняется
func (uc *UseCase) double(ctx context.Context, req *Request, cmd domain.Command) (string, error) {
	if pair, ok := uc.tracker.Pair(cmd.SlotTime, cmd.Name); ok {
		uc.send(ctx, req.ChatID, fmt.Sprintf(msgDoubleTaken, cmd.SlotTime, cmd.Name, pair[0]), nil)
		return "", nil
	}

	first := staffName(req.UserID)
	err := uc.pending.Replace(ctx, &domain.PendingAction{
		UserID:         req.UserID,
		Kind:           domain.PendingSecondStaffName,
		SlotTime:       cmd.SlotTime,
		BusinessName:   cmd.Name,
		BusinessChatID: cmd.BusinessChatID,
		FirstStaff:     first,
	})
	if err != nil {
		return "", err
	}
	uc.send(ctx, req.ChatID, fmt.Sprintf(msgEnterSecondStaff, first), nil)
	return "", nil
}

// complete запрос итоговой суммы обслуживания
func (uc *UseCase) complete(ctx context.Context, req *Request, cmd domain.Command) (string, error) {
	staffList := uc.tracker.StaffFor(cmd.SlotTime, cmd.Name, staffName(req.UserID))
	err := uc.pending.Replace(ctx, &domain.PendingAction{
		UserID:         req.UserID,
		Kind:           domain.PendingCompletionAmount,
		SlotTime:       cmd.SlotTime,
		BusinessName:   cmd.Name,
		BusinessChatID: cmd.BusinessChatID,
		StaffList:      staffList,
	})
	if err != nil {
		return "", err
	}
	uc.send(ctx, req.ChatID, fmt.Sprintf(msgEnterTotalAmount, cmd.SlotTime, cmd.Name), nil)
	return "", nil
}

// broadcastDayList рассылает обновлённый список дня бизнес-группам
func (uc *UseCase) broadcastDayList(ctx context.Context) {
	doc, err := uc.schedule.EnsureToday(ctx)
	if err != nil {
		uc.logger.Error("HandleCallback: failed to load day for broadcast: %v", err)
		return
	}
	if _, err := uc.notify.BroadcastToRole(ctx, domain.RoleBusiness, uc.schedule.RenderDayList(doc), uc.schedule.MainMenu()); err != nil {
		uc.logger.Error("HandleCallback: business broadcast failed: %v", err)
	}
}

func (uc *UseCase) send(ctx context.Context, chatID int64, text string, buttons domain.ButtonGrid) {
	if err := uc.bot.SendMessage(ctx, chatID, text, buttons); err != nil {
		uc.logger.Error("HandleCallback: send failed chat=%d: %v", chatID, err)
	}
}

// staffName служебное имя сотрудника по идентификатору пользователя
// Bot API не раскрывает имена участников группы без отдельного запроса
func staffName(userID int64) string {
	return fmt.Sprintf("staff_%d", userID)
}
