package bookings

// AdminDeleteKind вид административного удаления
type AdminDeleteKind string

const (
	// AdminDeleteCleared все списки слота очищены
	AdminDeleteCleared AdminDeleteKind = "cleared"
	// AdminDeleteCapacity лимит слота уменьшен
	AdminDeleteCapacity AdminDeleteKind = "capacity"
	// AdminDeleteRemoved удалена одна запись по имени
	AdminDeleteRemoved AdminDeleteKind = "removed"
)

// RemovedSource список, из которого была удалена запись
type RemovedSource string

const (
	RemovedFromBookings   RemovedSource = "bookings"
	RemovedFromInProgress RemovedSource = "in_progress"
	RemovedFromWaitlist   RemovedSource = "waitlist"
)

// Label возвращает подпись списка на языке чата
func (s RemovedSource) Label() string {
	switch s {
	case RemovedFromBookings:
		return "未報到"
	case RemovedFromInProgress:
		return "已報到"
	case RemovedFromWaitlist:
		return "候補"
	}
	return ""
}

// AdminDeleteResult результат административного удаления
type AdminDeleteResult struct {
	Kind AdminDeleteKind

	// заполняется для Kind == AdminDeleteCleared
	BookingsCleared   int
	InProgressCleared int

	// заполняется для Kind == AdminDeleteCapacity
	RemovedSeats int
	OldCapacity  int
	NewCapacity  int

	// заполняется для Kind == AdminDeleteRemoved
	RemovedFrom RemovedSource
}
