package schedule

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/goodgood52099-bit/XFWH-BOT/internal/domain"
	"github.com/goodgood52099-bit/XFWH-BOT/pkg/types"
)

const (
	msgListHeader   = "📅 今日最新時段列表（未到時段）：\n"
	msgAllSlotsPast = "📅 今日所有時段已過"
	msgNoFutureRows = "（目前無未到時段）"
	msgCheckedIn    = "【已報到】"
	msgWaitlistMark = " (候補)"

	labelReserve   = "預約"
	labelArrive    = "客到"
	labelModify    = "修改預約"
	labelCancel    = "取消預約"
	labelCancelOp  = "取消"
	labelEmptyList = "（無）"
)

// Service сервис расписания дня: материализация документа,
// отбор будущих слотов и рендеринг списков и клавиатур
type Service struct {
	store DayStore
	log   Logger

	loc             *time.Location
	openHour        int
	closeHour       int
	defaultCapacity int

	now func() time.Time
}

// NewService создает новый экземпляр сервиса расписания
func NewService(store DayStore, log Logger, loc *time.Location, openHour, closeHour, defaultCapacity int) *Service {
	return &Service{
		store:           store,
		log:             log,
		loc:             loc,
		openHour:        openHour,
		closeHour:       closeHour,
		defaultCapacity: defaultCapacity,
		now:             time.Now,
	}
}

// Now возвращает текущее время в зоне бизнеса
func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}

// DayKey возвращает ключ сегодняшнего дня (YYYY-MM-DD)
func (s *Service) DayKey() string {
	return s.Now().Format(domain.DateFormat)
}

// EnsureToday материализует документ сегодняшнего дня, если его ещё нет
// Новый документ получает по слоту на каждый настроенный час, ещё не наступивший
// Документ с чужой датой (переживший смену суток) замещается свежим
func (s *Service) EnsureToday(ctx context.Context) (*domain.DayDocument, error) {
	dayKey := s.DayKey()
	now := s.Now()

	doc, err := s.store.Mutate(ctx, dayKey, func(doc *domain.DayDocument) (*domain.DayDocument, error) {
		if doc != nil && doc.Date == dayKey {
			return doc, nil
		}
		fresh := &domain.DayDocument{Date: dayKey}
		for h := s.openHour; h <= s.closeHour; h++ {
			if h <= now.Hour() {
				continue
			}
			fresh.Slots = append(fresh.Slots, domain.Slot{
				Time:     types.TimeString(fmt.Sprintf("%02d:00", h)),
				Capacity: s.defaultCapacity,
			})
		}
		return fresh, nil
	})
	if err != nil {
		s.log.Error("EnsureToday: failed to materialize day=%s: %v", dayKey, err)
		return nil, fmt.Errorf("%w: EnsureToday - store error: %v", ErrInternal, err)
	}
	return doc, nil
}

// IsFuture возвращает true, если метка слота ещё не наступила сегодня
func (s *Service) IsFuture(label types.TimeString) bool {
	at, err := label.At(s.Now(), s.loc)
	if err != nil {
		return false
	}
	return at.After(s.Now())
}

// FutureSlots возвращает будущие слоты документа, отсортированные по времени
func (s *Service) FutureSlots(doc *domain.DayDocument) []domain.Slot {
	var out []domain.Slot
	for _, slot := range sortedSlots(doc) {
		if s.IsFuture(slot.Time) {
			out = append(out, slot)
		}
	}
	return out
}

// RenderDayList рендерит текстовый список дня: по строке на каждую резервацию,
// пустые строки на оставшиеся места будущих слотов и отдельная секция прибывших
func (s *Service) RenderDayList(doc *domain.DayDocument) string {
	var bookingLines, checkedInLines []string

	for _, slot := range sortedSlots(doc) {
		label := slot.Time.String()

		for _, p := range slot.InProgress {
			if p.Waitlisted {
				continue
			}
			checkedInLines = append(checkedInLines, fmt.Sprintf("%s %s ✅", label, p.Name))
		}
		for _, p := range slot.InProgress {
			if !p.Waitlisted {
				continue
			}
			checkedInLines = append(checkedInLines, fmt.Sprintf("%s %s ✅%s", label, p.Name, msgWaitlistMark))
		}

		for _, b := range slot.Bookings {
			bookingLines = append(bookingLines, fmt.Sprintf("%s %s", label, b.Name))
		}

		if s.IsFuture(slot.Time) {
			for i := 0; i < slot.Remaining(); i++ {
				bookingLines = append(bookingLines, label+" ")
			}
		}
	}

	if len(bookingLines) == 0 && len(checkedInLines) == 0 {
		return msgAllSlotsPast
	}

	text := msgListHeader
	if len(bookingLines) > 0 {
		text += strings.Join(bookingLines, "\n")
	} else {
		text += msgNoFutureRows
	}
	if len(checkedInLines) > 0 {
		text += "\n\n" + msgCheckedIn + "\n" + strings.Join(checkedInLines, "\n")
	}
	return text
}

// MainMenu возвращает главное меню 2×2
func (s *Service) MainMenu() domain.ButtonGrid {
	return domain.ButtonGrid{
		{
			{Label: labelReserve, Action: domain.Command{Kind: domain.CmdMainReserve}.Token()},
			{Label: labelArrive, Action: domain.Command{Kind: domain.CmdMainArrive}.Token()},
		},
		{
			{Label: labelModify, Action: domain.Command{Kind: domain.CmdMainModify}.Token()},
			{Label: labelCancel, Action: domain.Command{Kind: domain.CmdMainCancel}.Token()},
		},
	}
}

// ReserveButtons возвращает сетку будущих слотов для резервации:
// свободный слот показывает остаток мест, заполненный помечен 滿 и инертен
func (s *Service) ReserveButtons(doc *domain.DayDocument) domain.ButtonGrid {
	var buttons []domain.Button
	for _, slot := range s.FutureSlots(doc) {
		if slot.IsFull() {
			buttons = append(buttons, domain.Button{
				Label:  fmt.Sprintf("%s (滿)", slot.Time),
				Action: domain.Command{Kind: domain.CmdNoop}.Token(),
			})
			continue
		}
		buttons = append(buttons, domain.Button{
			Label:  fmt.Sprintf("%s (%d)", slot.Time, slot.Remaining()),
			Action: domain.Command{Kind: domain.CmdReservePick, SlotTime: slot.Time}.Token(),
		})
	}
	grid := domain.ChunkButtons(buttons, domain.SlotButtonsPerRow)
	return appendCancelRow(grid)
}

// ModifyTargetButtons возвращает сетку будущих слотов-назначений для переноса резервации
func (s *Service) ModifyTargetButtons(doc *domain.DayDocument, oldSlot types.TimeString, oldName string) domain.ButtonGrid {
	var buttons []domain.Button
	for _, slot := range s.FutureSlots(doc) {
		buttons = append(buttons, domain.Button{
			Label: slot.Time.String(),
			Action: domain.Command{
				Kind:        domain.CmdModifyTo,
				OldSlotTime: oldSlot,
				OldName:     oldName,
				NewSlotTime: slot.Time,
			}.Token(),
		})
	}
	grid := domain.ChunkButtons(buttons, domain.SlotButtonsPerRow)
	return appendCancelRow(grid)
}

// BookingRef ссылка на резервацию для построения кнопок
type BookingRef struct {
	Time types.TimeString
	Name string
}

// BookingsForGroup возвращает резервации, созданные из указанной группы
func (s *Service) BookingsForGroup(doc *domain.DayDocument, chatID int64) []BookingRef {
	var out []BookingRef
	for _, slot := range sortedSlots(doc) {
		for _, b := range slot.Bookings {
			if b.OriginGroupID == chatID {
				out = append(out, BookingRef{Time: slot.Time, Name: b.Name})
			}
		}
	}
	return out
}

// PickButtons возвращает сетку кнопок по резервациям группы для указанного действия
func (s *Service) PickButtons(refs []BookingRef, kind domain.CommandKind, perRow int) domain.ButtonGrid {
	var buttons []domain.Button
	for _, ref := range refs {
		buttons = append(buttons, domain.Button{
			Label:  fmt.Sprintf("%s %s", ref.Time, ref.Name),
			Action: domain.Command{Kind: kind, SlotTime: ref.Time, Name: ref.Name}.Token(),
		})
	}
	if len(buttons) == 0 {
		buttons = append(buttons, domain.Button{
			Label:  labelEmptyList,
			Action: domain.Command{Kind: domain.CmdNoop}.Token(),
		})
	}
	grid := domain.ChunkButtons(buttons, perRow)
	return appendCancelRow(grid)
}

func appendCancelRow(grid domain.ButtonGrid) domain.ButtonGrid {
	return append(grid, []domain.Button{{
		Label:  labelCancelOp,
		Action: domain.Command{Kind: domain.CmdCancelFlow}.Token(),
	}})
}

func sortedSlots(doc *domain.DayDocument) []domain.Slot {
	out := append([]domain.Slot(nil), doc.Slots...)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Time.IsBefore(out[j].Time)
	})
	return out
}
