package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/goodgood52099-bit/XFWH-BOT/internal/domain"
	"github.com/goodgood52099-bit/XFWH-BOT/pkg/types"
)

// Service сервис жизненного цикла резерваций
// Все операции выполняются внутри Mutate коалесцера: проверка вместимости
// повторяется в момент записи, поэтому гонки за последнее место разрешаются
// упорядоченно
type Service struct {
	store DayStore
	log   Logger
}

// NewService создает новый экземпляр сервиса резерваций
func NewService(store DayStore, log Logger) *Service {
	return &Service{store: store, log: log}
}

// Create создает резервацию в слоте
// Имя дедуплицируется в пределах слота суффиксами "(2)", "(3)", ...
// Возвращает фактически присвоенное имя
func (s *Service) Create(ctx context.Context, dayKey string, slotTime types.TimeString, name string, originGroupID int64) (string, error) {
	s.log.Info("Create: booking slot=%s name=%s group=%d", slotTime, name, originGroupID)

	var assigned string
	_, err := s.store.Mutate(ctx, dayKey, func(doc *domain.DayDocument) (*domain.DayDocument, error) {
		slot := findSlot(doc, slotTime)
		if slot == nil {
			return nil, ErrSlotNotFound
		}
		if slot.IsFull() {
			return nil, ErrSlotFull
		}
		assigned = slot.UniqueName(name)
		slot.Bookings = append(slot.Bookings, domain.Booking{Name: assigned, OriginGroupID: originGroupID})
		return doc, nil
	})
	if err != nil {
		if isDomainError(err) {
			s.log.Warn("Create: rejected slot=%s name=%s: %v", slotTime, name, err)
			return "", err
		}
		s.log.Error("Create: store error slot=%s: %v", slotTime, err)
		return "", fmt.Errorf("%w: Create - store error: %v", ErrInternal, err)
	}

	s.log.Info("Create: booked slot=%s assigned=%s group=%d", slotTime, assigned, originGroupID)
	return assigned, nil
}

// CheckIn отмечает прибытие: резервация переносится из bookings в in_progress
// с зафиксированной суммой
func (s *Service) CheckIn(ctx context.Context, dayKey string, slotTime types.TimeString, name string, originGroupID int64, amount float64) error {
	s.log.Info("CheckIn: slot=%s name=%s group=%d amount=%.2f", slotTime, name, originGroupID, amount)

	_, err := s.store.Mutate(ctx, dayKey, func(doc *domain.DayDocument) (*domain.DayDocument, error) {
		slot := findSlot(doc, slotTime)
		if slot == nil {
			return nil, ErrSlotNotFound
		}
		if _, ok := slot.FindBooking(name, originGroupID); !ok {
			return nil, ErrBookingNotFound
		}
		slot.InProgress = append(slot.InProgress, domain.ProgressEntry{Name: name, Amount: amount})
		slot.RemoveBooking(name, originGroupID)
		return doc, nil
	})
	if err != nil {
		if isDomainError(err) {
			s.log.Warn("CheckIn: rejected slot=%s name=%s: %v", slotTime, name, err)
			return err
		}
		s.log.Error("CheckIn: store error slot=%s: %v", slotTime, err)
		return fmt.Errorf("%w: CheckIn - store error: %v", ErrInternal, err)
	}
	return nil
}

// Modify переносит резервацию в другой слот под новым именем
// Вместимость назначения проверяется до снятия старой записи: перенос
// внутри заполненного слота не проходит. Возвращает присвоенное имя
func (s *Service) Modify(ctx context.Context, dayKey string, oldSlot types.TimeString, oldName string, newSlot types.TimeString, newName string, originGroupID int64) (string, error) {
	s.log.Info("Modify: %s %s -> %s %s group=%d", oldSlot, oldName, newSlot, newName, originGroupID)

	var assigned string
	_, err := s.store.Mutate(ctx, dayKey, func(doc *domain.DayDocument) (*domain.DayDocument, error) {
		src := findSlot(doc, oldSlot)
		dst := findSlot(doc, newSlot)
		if src == nil || dst == nil {
			return nil, ErrSlotNotFound
		}
		if _, ok := src.FindBooking(oldName, originGroupID); !ok {
			return nil, ErrBookingNotFound
		}
		if dst.IsFull() {
			return nil, ErrSlotFull
		}
		src.RemoveBooking(oldName, originGroupID)
		assigned = dst.UniqueName(newName)
		dst.Bookings = append(dst.Bookings, domain.Booking{Name: assigned, OriginGroupID: originGroupID})
		return doc, nil
	})
	if err != nil {
		if isDomainError(err) {
			s.log.Warn("Modify: rejected %s %s -> %s: %v", oldSlot, oldName, newSlot, err)
			return "", err
		}
		s.log.Error("Modify: store error %s -> %s: %v", oldSlot, newSlot, err)
		return "", fmt.Errorf("%w: Modify - store error: %v", ErrInternal, err)
	}

	s.log.Info("Modify: done %s %s -> %s %s", oldSlot, oldName, newSlot, assigned)
	return assigned, nil
}

// Cancel снимает резервацию; повторная отмена не ошибка
func (s *Service) Cancel(ctx context.Context, dayKey string, slotTime types.TimeString, name string, originGroupID int64) error {
	s.log.Info("Cancel: slot=%s name=%s group=%d", slotTime, name, originGroupID)

	_, err := s.store.Mutate(ctx, dayKey, func(doc *domain.DayDocument) (*domain.DayDocument, error) {
		slot := findSlot(doc, slotTime)
		if slot == nil {
			return nil, ErrSlotNotFound
		}
		slot.RemoveBooking(name, originGroupID)
		return doc, nil
	})
	if err != nil {
		if isDomainError(err) {
			s.log.Warn("Cancel: rejected slot=%s name=%s: %v", slotTime, name, err)
			return err
		}
		s.log.Error("Cancel: store error slot=%s: %v", slotTime, err)
		return fmt.Errorf("%w: Cancel - store error: %v", ErrInternal, err)
	}
	return nil
}

// AddSlot добавляет слот с указанным лимитом; занятая метка отклоняется
func (s *Service) AddSlot(ctx context.Context, dayKey string, slotTime types.TimeString, capacity int) error {
	s.log.Info("AddSlot: slot=%s capacity=%d", slotTime, capacity)

	_, err := s.store.Mutate(ctx, dayKey, func(doc *domain.DayDocument) (*domain.DayDocument, error) {
		if doc == nil {
			doc = &domain.DayDocument{Date: dayKey}
		}
		if doc.HasSlot(slotTime) {
			return nil, ErrSlotExists
		}
		doc.Slots = append(doc.Slots, domain.Slot{Time: slotTime, Capacity: capacity})
		return doc, nil
	})
	if err != nil {
		if isDomainError(err) {
			return err
		}
		s.log.Error("AddSlot: store error slot=%s: %v", slotTime, err)
		return fmt.Errorf("%w: AddSlot - store error: %v", ErrInternal, err)
	}
	return nil
}

// SetCapacity меняет лимит существующего слота
func (s *Service) SetCapacity(ctx context.Context, dayKey string, slotTime types.TimeString, capacity int) error {
	s.log.Info("SetCapacity: slot=%s capacity=%d", slotTime, capacity)

	_, err := s.store.Mutate(ctx, dayKey, func(doc *domain.DayDocument) (*domain.DayDocument, error) {
		slot := findSlot(doc, slotTime)
		if slot == nil {
			return nil, ErrSlotNotFound
		}
		slot.Capacity = capacity
		return doc, nil
	})
	if err != nil {
		if isDomainError(err) {
			return err
		}
		s.log.Error("SetCapacity: store error slot=%s: %v", slotTime, err)
		return fmt.Errorf("%w: SetCapacity - store error: %v", ErrInternal, err)
	}
	return nil
}

// AdminDelete административное удаление в слоте:
// "all" очищает оба списка, число уменьшает лимит,
// иначе имя ищется по порядку bookings -> in_progress -> дневной лист ожидания
func (s *Service) AdminDelete(ctx context.Context, dayKey string, slotTime types.TimeString, target string) (*AdminDeleteResult, error) {
	s.log.Info("AdminDelete: slot=%s target=%q", slotTime, target)

	var result AdminDeleteResult
	_, err := s.store.Mutate(ctx, dayKey, func(doc *domain.DayDocument) (*domain.DayDocument, error) {
		slot := findSlot(doc, slotTime)
		if slot == nil {
			return nil, ErrSlotNotFound
		}

		if target == "all" {
			result = AdminDeleteResult{
				Kind:              AdminDeleteCleared,
				BookingsCleared:   len(slot.Bookings),
				InProgressCleared: len(slot.InProgress),
			}
			slot.Bookings = nil
			slot.InProgress = nil
			return doc, nil
		}

		if n, ok := parseSeatCount(target); ok {
			old := slot.Capacity
			slot.Capacity = old - n
			if slot.Capacity < 0 {
				slot.Capacity = 0
			}
			result = AdminDeleteResult{
				Kind:         AdminDeleteCapacity,
				RemovedSeats: n,
				OldCapacity:  old,
				NewCapacity:  slot.Capacity,
			}
			return doc, nil
		}

		for i, b := range slot.Bookings {
			if b.Name == target {
				slot.Bookings = append(slot.Bookings[:i], slot.Bookings[i+1:]...)
				result = AdminDeleteResult{Kind: AdminDeleteRemoved, RemovedFrom: RemovedFromBookings}
				return doc, nil
			}
		}
		for i, p := range slot.InProgress {
			if p.Name == target {
				slot.InProgress = append(slot.InProgress[:i], slot.InProgress[i+1:]...)
				result = AdminDeleteResult{Kind: AdminDeleteRemoved, RemovedFrom: RemovedFromInProgress}
				return doc, nil
			}
		}
		for i, w := range doc.Waitlist {
			if w.Time == slotTime && w.Name == target {
				doc.Waitlist = append(doc.Waitlist[:i], doc.Waitlist[i+1:]...)
				result = AdminDeleteResult{Kind: AdminDeleteRemoved, RemovedFrom: RemovedFromWaitlist}
				return doc, nil
			}
		}
		return nil, ErrBookingNotFound
	})
	if err != nil {
		if isDomainError(err) {
			s.log.Warn("AdminDelete: rejected slot=%s target=%q: %v", slotTime, target, err)
			return nil, err
		}
		s.log.Error("AdminDelete: store error slot=%s: %v", slotTime, err)
		return nil, fmt.Errorf("%w: AdminDelete - store error: %v", ErrInternal, err)
	}
	return &result, nil
}

func findSlot(doc *domain.DayDocument, slotTime types.TimeString) *domain.Slot {
	if doc == nil {
		return nil
	}
	return doc.FindSlot(slotTime)
}

func parseSeatCount(target string) (int, bool) {
	if target == "" {
		return 0, false
	}
	n := 0
	for _, r := range target {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

func isDomainError(err error) bool {
	return errors.Is(err, ErrSlotNotFound) ||
		errors.Is(err, ErrSlotExists) ||
		errors.Is(err, ErrSlotFull) ||
		errors.Is(err, ErrBookingNotFound)
}
