package domain

import (
	"fmt"

	"github.com/goodgood52099-bit/XFWH-BOT/pkg/types"
)

// Booking резервация в слоте
// Имя уникально в пределах слота; коллизии разрешаются суффиксами "(2)", "(3)", ...
type Booking struct {
	Name          string `json:"name"`
	OriginGroupID int64  `json:"chat_id"`
}

// ProgressEntry запись о прибывшем клиенте (перешедшая из bookings либо пришедшая без резервации)
type ProgressEntry struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount,omitempty"`

	// Waitlisted помечает прибытие без предварительной резервации;
	// такие записи не занимают место в лимите слота
	Waitlisted bool `json:"waitlisted,omitempty"`
}

// WaitlistEntry запись дневного листа ожидания
type WaitlistEntry struct {
	Time types.TimeString `json:"time"`
	Name string           `json:"name"`
}

// Slot временной слот одного рабочего дня
type Slot struct {
	Time       types.TimeString `json:"time"`
	Capacity   int              `json:"limit"`
	Bookings   []Booking        `json:"bookings"`
	InProgress []ProgressEntry  `json:"in_progress"`
}

// Occupancy возвращает занятость слота: резервации плюс прибывшие без пометки waitlisted
func (s *Slot) Occupancy() int {
	n := len(s.Bookings)
	for _, p := range s.InProgress {
		if !p.Waitlisted {
			n++
		}
	}
	return n
}

// HasCapacity возвращает true, если в слоте есть свободное место
func (s *Slot) HasCapacity() bool {
	return s.Occupancy() < s.Capacity
}

// IsFull возвращает true, если слот заполнен
func (s *Slot) IsFull() bool {
	return !s.HasCapacity()
}

// Remaining возвращает количество свободных мест (не меньше нуля)
func (s *Slot) Remaining() int {
	if r := s.Capacity - s.Occupancy(); r > 0 {
		return r
	}
	return 0
}

// FindBooking ищет резервацию по имени и группе-источнику
func (s *Slot) FindBooking(name string, originGroupID int64) (Booking, bool) {
	for _, b := range s.Bookings {
		if b.Name == name && b.OriginGroupID == originGroupID {
			return b, true
		}
	}
	return Booking{}, false
}

// RemoveBooking удаляет резервацию по имени и группе-источнику
// Возвращает false, если резервация отсутствовала
func (s *Slot) RemoveBooking(name string, originGroupID int64) bool {
	for i, b := range s.Bookings {
		if b.Name == name && b.OriginGroupID == originGroupID {
			s.Bookings = append(s.Bookings[:i], s.Bookings[i+1:]...)
			return true
		}
	}
	return false
}

// UniqueName подбирает имя, свободное в пределах слота,
// добавляя суффиксы "(2)", "(3)", ... при коллизиях
func (s *Slot) UniqueName(base string) string {
	existing := make(map[string]struct{}, len(s.Bookings))
	for _, b := range s.Bookings {
		existing[b.Name] = struct{}{}
	}
	if _, ok := existing[base]; !ok {
		return base
	}
	for idx := 2; ; idx++ {
		candidate := fmt.Sprintf("%s(%d)", base, idx)
		if _, ok := existing[candidate]; !ok {
			return candidate
		}
	}
}

// DayDocument документ одного календарного дня в бизнес-зоне
type DayDocument struct {
	Date     string          `json:"date"` // YYYY-MM-DD
	Slots    []Slot          `json:"shifts"`
	Waitlist []WaitlistEntry `json:"waitlist"`
}

// FindSlot ищет слот по метке времени
func (d *DayDocument) FindSlot(label types.TimeString) *Slot {
	for i := range d.Slots {
		if d.Slots[i].Time == label {
			return &d.Slots[i]
		}
	}
	return nil
}

// HasSlot возвращает true, если слот с такой меткой существует
func (d *DayDocument) HasSlot(label types.TimeString) bool {
	return d.FindSlot(label) != nil
}

// Clone возвращает глубокую копию документа
// Коалесцер отдаёт мутациям копии, чтобы очередь на запись не разделяла память с читателями
func (d *DayDocument) Clone() *DayDocument {
	if d == nil {
		return nil
	}
	cp := &DayDocument{Date: d.Date}
	if d.Slots != nil {
		cp.Slots = make([]Slot, len(d.Slots))
		for i, s := range d.Slots {
			cs := Slot{Time: s.Time, Capacity: s.Capacity}
			if s.Bookings != nil {
				cs.Bookings = append([]Booking(nil), s.Bookings...)
			}
			if s.InProgress != nil {
				cs.InProgress = append([]ProgressEntry(nil), s.InProgress...)
			}
			cp.Slots[i] = cs
		}
	}
	if d.Waitlist != nil {
		cp.Waitlist = append([]WaitlistEntry(nil), d.Waitlist...)
	}
	return cp
}
