package staffassign

import (
	"fmt"
	"sync"

	"github.com/goodgood52099-bit/XFWH-BOT/pkg/types"
)

// Tracker эфемерный учёт сервисных назначений в памяти:
// пары сотрудников двойного обслуживания по ключу (слот, имя резервации)
// и дедупликация первого уведомления о выходе по ключу (слот, имя, бизнес-чат)
// Состояние не переживает перезапуск и очищается ежедневным сбросом
type Tracker struct {
	mu       sync.Mutex
	pairs    map[string][]string
	notified map[string]struct{}
}

// NewTracker создает новый трекер сервисных назначений
func NewTracker() *Tracker {
	return &Tracker{
		pairs:    make(map[string][]string),
		notified: make(map[string]struct{}),
	}
}

// Pair возвращает назначенную пару сотрудников для резервации
func (t *Tracker) Pair(slot types.TimeString, name string) ([]string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	pair, ok := t.pairs[pairKey(slot, name)]
	if !ok {
		return nil, false
	}
	return append([]string(nil), pair...), true
}

// SetPair фиксирует пару сотрудников для резервации
func (t *Tracker) SetPair(slot types.TimeString, name, first, second string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pairs[pairKey(slot, name)] = []string{first, second}
}

// StaffFor возвращает список сотрудников резервации:
// назначенную пару либо одиночного сотрудника по умолчанию
func (t *Tracker) StaffFor(slot types.TimeString, name, fallback string) []string {
	if pair, ok := t.Pair(slot, name); ok {
		return pair
	}
	return []string{fallback}
}

// MarkNotified отмечает первое уведомление о выходе
// Возвращает true только при первом вызове для данного ключа
func (t *Tracker) MarkNotified(slot types.TimeString, name string, businessChatID int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := notifyKey(slot, name, businessChatID)
	if _, ok := t.notified[key]; ok {
		return false
	}
	t.notified[key] = struct{}{}
	return true
}

// Reset очищает всё состояние; вызывается ежедневным сбросом
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pairs = make(map[string][]string)
	t.notified = make(map[string]struct{})
}

func pairKey(slot types.TimeString, name string) string {
	return fmt.Sprintf("%s|%s", slot, name)
}

func notifyKey(slot types.TimeString, name string, businessChatID int64) string {
	return fmt.Sprintf("%s|%s|%d", slot, name, businessChatID)
}
