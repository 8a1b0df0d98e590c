package daystore

import (
	"github.com/goodgood52099-bit/XFWH-BOT/internal/domain"
	"github.com/goodgood52099-bit/XFWH-BOT/pkg/types"
)

// Merge совмещает зафиксированный документ с документом, ещё стоящим в очереди на запись.
// Контракт совмещения: скалярные поля берутся из очереди (последняя запись побеждает),
// списки объединяются по равенству элементов — порядок очереди, затем элементы,
// оставшиеся только в зафиксированной версии.
// Результат всегда свежая копия, не разделяющая память с аргументами.
func Merge(committed, queued *domain.DayDocument) *domain.DayDocument {
	if queued == nil {
		return committed.Clone()
	}
	if committed == nil {
		return queued.Clone()
	}

	out := &domain.DayDocument{Date: queued.Date}

	seen := make(map[types.TimeString]struct{}, len(queued.Slots))
	for _, qs := range queued.Slots {
		seen[qs.Time] = struct{}{}
		cs := committed.FindSlot(qs.Time)
		out.Slots = append(out.Slots, mergeSlot(cs, &qs))
	}
	for _, cs := range committed.Slots {
		if _, ok := seen[cs.Time]; ok {
			continue
		}
		out.Slots = append(out.Slots, *cloneSlot(&cs))
	}

	out.Waitlist = unionWaitlist(queued.Waitlist, committed.Waitlist)
	return out
}

func mergeSlot(committed, queued *domain.Slot) domain.Slot {
	merged := domain.Slot{
		Time:     queued.Time,
		Capacity: queued.Capacity,
	}
	if committed == nil {
		merged.Bookings = append([]domain.Booking(nil), queued.Bookings...)
		merged.InProgress = append([]domain.ProgressEntry(nil), queued.InProgress...)
		return merged
	}
	merged.Bookings = unionBookings(queued.Bookings, committed.Bookings)
	merged.InProgress = unionProgress(queued.InProgress, committed.InProgress)
	return merged
}

func cloneSlot(s *domain.Slot) *domain.Slot {
	cp := &domain.Slot{Time: s.Time, Capacity: s.Capacity}
	cp.Bookings = append([]domain.Booking(nil), s.Bookings...)
	cp.InProgress = append([]domain.ProgressEntry(nil), s.InProgress...)
	return cp
}

func unionBookings(primary, secondary []domain.Booking) []domain.Booking {
	out := append([]domain.Booking(nil), primary...)
	for _, b := range secondary {
		if !containsBooking(out, b) {
			out = append(out, b)
		}
	}
	return out
}

func containsBooking(list []domain.Booking, b domain.Booking) bool {
	for _, x := range list {
		if x == b {
			return true
		}
	}
	return false
}

func unionProgress(primary, secondary []domain.ProgressEntry) []domain.ProgressEntry {
	out := append([]domain.ProgressEntry(nil), primary...)
	for _, p := range secondary {
		if !containsProgress(out, p) {
			out = append(out, p)
		}
	}
	return out
}

func containsProgress(list []domain.ProgressEntry, p domain.ProgressEntry) bool {
	for _, x := range list {
		if x == p {
			return true
		}
	}
	return false
}

func unionWaitlist(primary, secondary []domain.WaitlistEntry) []domain.WaitlistEntry {
	out := append([]domain.WaitlistEntry(nil), primary...)
	for _, w := range secondary {
		if !containsWaitlist(out, w) {
			out = append(out, w)
		}
	}
	return out
}

func containsWaitlist(list []domain.WaitlistEntry, w domain.WaitlistEntry) bool {
	for _, x := range list {
		if x == w {
			return true
		}
	}
	return false
}
