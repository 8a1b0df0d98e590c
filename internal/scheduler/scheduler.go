package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goodgood52099-bit/XFWH-BOT/internal/domain"
)

const (
	tickInterval  = 10 * time.Second
	sweepInterval = time.Minute
	opTimeout     = 30 * time.Second

	msgArrivalPrompt = "⏰ 現在是 %s\n請問預約的「%s」到了嗎？\n可使用 /list → 客到"
)

// Scheduler фоновые циклы бота: ежечасная публикация списка в бизнес-группы,
// ежечасный опрос о прибытии, ежедневный сброс и очистка истекших диалогов.
// Все циклы работают на одном 10-секундном тике; повтор в пределах того же
// часа гасится ключами вида "YYYY-MM-DD|HH:00"
type Scheduler struct {
	schedule ScheduleService
	notifier Notifier
	bot      BotClient
	pending  PendingSweeper
	tracker  StaffTracker
	days     DayRepository
	logger   Logger

	// окно ежечасных публикаций списка, границы включительно
	announceFrom  int
	announceUntil int

	mu           sync.Mutex
	announced    map[string]struct{}
	asked        map[string]struct{}
	lastSweep    time.Time
	lastResetDay string

	stopCh chan struct{}
	doneCh chan struct{}
}

// New создает новый планировщик
func New(
	schedule ScheduleService,
	notifier Notifier,
	bot BotClient,
	pending PendingSweeper,
	tracker StaffTracker,
	days DayRepository,
	logger Logger,
	announceFrom int,
	announceUntil int,
) *Scheduler {
	return &Scheduler{
		schedule:      schedule,
		notifier:      notifier,
		bot:           bot,
		pending:       pending,
		tracker:       tracker,
		days:          days,
		logger:        logger,
		announceFrom:  announceFrom,
		announceUntil: announceUntil,
		announced:     make(map[string]struct{}),
		asked:         make(map[string]struct{}),
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
}

// Start запускает фоновый цикл
func (s *Scheduler) Start() {
	go s.run()
	s.logger.Info("Scheduler: started")
}

// Stop останавливает фоновый цикл и дожидается его завершения
func (s *Scheduler) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.logger.Info("Scheduler: stopped")
}

func (s *Scheduler) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.Tick(context.Background())
		}
	}
}

// Tick выполняет один проход всех фоновых задач
func (s *Scheduler) Tick(ctx context.Context) {
	now := s.schedule.Now()

	if now.Minute() == 0 {
		hourKey := fmt.Sprintf("%s|%02d:00", s.schedule.DayKey(), now.Hour())

		if now.Hour() >= s.announceFrom && now.Hour() <= s.announceUntil && s.claim(s.announced, hourKey) {
			s.announce(ctx)
		}
		if s.claim(s.asked, hourKey) {
			s.askArrivals(ctx, now)
		}
	}

	if now.Hour() == 0 && now.Minute() == 1 {
		s.dailyReset(ctx)
	}

	s.maybeSweep(ctx, now)
}

// claim помечает ключ выполненным; false означает, что задача в этом часу уже была
func (s *Scheduler) claim(set map[string]struct{}, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := set[key]; ok {
		return false
	}
	set[key] = struct{}{}
	return true
}

// announce публикует актуальный список дня во все бизнес-группы
func (s *Scheduler) announce(ctx context.Context) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	doc, err := s.schedule.EnsureToday(opCtx)
	if err != nil {
		s.logger.Error("Scheduler: announce failed to load day: %v", err)
		return
	}

	delivered, err := s.notifier.BroadcastToRole(opCtx, domain.RoleBusiness, s.schedule.RenderDayList(doc), s.schedule.MainMenu())
	if err != nil {
		s.logger.Error("Scheduler: announce broadcast failed: %v", err)
		return
	}
	s.logger.Info("Scheduler: announced day list to %d business groups", delivered)
}

// askArrivals спрашивает о прибытии по резервациям текущего слота,
// еще не отмеченным как прибывшие. Сообщение с общим списком имен
// уходит в каждую группу-источник этих резерваций
func (s *Scheduler) askArrivals(ctx context.Context, now time.Time) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	doc, err := s.schedule.EnsureToday(opCtx)
	if err != nil {
		s.logger.Error("Scheduler: arrival check failed to load day: %v", err)
		return
	}

	currentLabel := fmt.Sprintf("%02d:00", now.Hour())

	for _, slot := range doc.Slots {
		if string(slot.Time) != currentLabel {
			continue
		}

		arrived := make(map[string]struct{}, len(slot.InProgress))
		for _, p := range slot.InProgress {
			arrived[p.Name] = struct{}{}
		}

		var waiting []string
		groups := make(map[int64]struct{})
		for _, b := range slot.Bookings {
			if _, ok := arrived[b.Name]; ok {
				continue
			}
			waiting = append(waiting, b.Name)
			groups[b.OriginGroupID] = struct{}{}
		}
		if len(waiting) == 0 {
			continue
		}

		text := fmt.Sprintf(msgArrivalPrompt, currentLabel, strings.Join(waiting, "、"))
		for chatID := range groups {
			if err := s.bot.SendMessage(opCtx, chatID, text, nil); err != nil {
				s.logger.Error("Scheduler: arrival prompt failed chat=%d: %v", chatID, err)
			}
		}
		s.logger.Info("Scheduler: asked arrivals slot=%s waiting=%d groups=%d", currentLabel, len(waiting), len(groups))
	}
}

// dailyReset очищает часовые ключи, назначения персонала и устаревшие дни
func (s *Scheduler) dailyReset(ctx context.Context) {
	today := s.schedule.DayKey()

	s.mu.Lock()
	if s.lastResetDay == today {
		s.mu.Unlock()
		return
	}
	s.lastResetDay = today
	s.announced = make(map[string]struct{})
	s.asked = make(map[string]struct{})
	s.mu.Unlock()

	s.tracker.Reset()

	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	removed, err := s.days.DeleteBefore(opCtx, s.schedule.DayKey())
	if err != nil {
		s.logger.Error("Scheduler: failed to prune old days: %v", err)
	} else if removed > 0 {
		s.logger.Info("Scheduler: pruned %d old day documents", removed)
	}

	s.logger.Info("Scheduler: daily reset done")
}

// maybeSweep раз в минуту удаляет истекшие диалоговые состояния
func (s *Scheduler) maybeSweep(ctx context.Context, now time.Time) {
	s.mu.Lock()
	if now.Sub(s.lastSweep) < sweepInterval {
		s.mu.Unlock()
		return
	}
	s.lastSweep = now
	s.mu.Unlock()

	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	removed, err := s.pending.Sweep(opCtx)
	if err != nil {
		s.logger.Error("Scheduler: pending sweep failed: %v", err)
		return
	}
	if removed > 0 {
		s.logger.Info("Scheduler: swept %d expired pending actions", removed)
	}
}
