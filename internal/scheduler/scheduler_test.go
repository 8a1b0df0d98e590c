package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goodgood52099-bit/XFWH-BOT/internal/domain"
	"github.com/goodgood52099-bit/XFWH-BOT/pkg/types"
)

type fakeSchedule struct {
	now time.Time
	doc *domain.DayDocument
}

func (f *fakeSchedule) Now() time.Time { return f.now }

func (f *fakeSchedule) DayKey() string { return f.now.Format("2006-01-02") }

func (f *fakeSchedule) EnsureToday(_ context.Context) (*domain.DayDocument, error) {
	return f.doc, nil
}

func (f *fakeSchedule) RenderDayList(_ *domain.DayDocument) string { return "список" }

func (f *fakeSchedule) MainMenu() domain.ButtonGrid {
	return domain.ButtonGrid{{{Label: "預約", Action: "main|reserve"}}}
}

type fakeNotifier struct {
	broadcasts []string
}

func (f *fakeNotifier) BroadcastToRole(_ context.Context, role domain.GroupRole, text string, _ domain.ButtonGrid) (int, error) {
	f.broadcasts = append(f.broadcasts, string(role)+": "+text)
	return 1, nil
}

type sentMessage struct {
	chatID int64
	text   string
}

type fakeBot struct {
	sent []sentMessage
}

func (f *fakeBot) SendMessage(_ context.Context, chatID int64, text string, _ domain.ButtonGrid) error {
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text})
	return nil
}

type fakeSweeper struct {
	calls int
}

func (f *fakeSweeper) Sweep(_ context.Context) (int64, error) {
	f.calls++
	return 0, nil
}

type fakeTracker struct {
	resets int
}

func (f *fakeTracker) Reset() { f.resets++ }

type fakeDayRepo struct {
	prunedBefore []string
}

func (f *fakeDayRepo) DeleteBefore(_ context.Context, dayKey string) (int64, error) {
	f.prunedBefore = append(f.prunedBefore, dayKey)
	return 2, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixture struct {
	schedule *fakeSchedule
	notifier *fakeNotifier
	bot      *fakeBot
	sweeper  *fakeSweeper
	tracker  *fakeTracker
	days     *fakeDayRepo
	sched    *Scheduler
}

func newFixture(now time.Time) *fixture {
	f := &fixture{
		schedule: &fakeSchedule{now: now, doc: &domain.DayDocument{Date: now.Format("2006-01-02")}},
		notifier: &fakeNotifier{},
		bot:      &fakeBot{},
		sweeper:  &fakeSweeper{},
		tracker:  &fakeTracker{},
		days:     &fakeDayRepo{},
	}
	f.sched = New(f.schedule, f.notifier, f.bot, f.sweeper, f.tracker, f.days, nopLogger{}, 12, 22)
	return f
}

func TestTick_AnnouncesOncePerHour(t *testing.T) {
	f := newFixture(time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC))

	f.sched.Tick(context.Background())
	require.Len(t, f.notifier.broadcasts, 1)
	assert.Equal(t, "business: список", f.notifier.broadcasts[0])

	// повторный тик той же минуты молчит
	f.sched.Tick(context.Background())
	f.schedule.now = f.schedule.now.Add(20 * time.Second)
	f.sched.Tick(context.Background())
	assert.Len(t, f.notifier.broadcasts, 1)

	// следующий час публикуется снова
	f.schedule.now = time.Date(2026, 9, 1, 15, 0, 0, 0, time.UTC)
	f.sched.Tick(context.Background())
	assert.Len(t, f.notifier.broadcasts, 2)
}

func TestTick_NoAnnounceOutsideWindow(t *testing.T) {
	f := newFixture(time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC))
	f.sched.Tick(context.Background())
	assert.Empty(t, f.notifier.broadcasts)

	f = newFixture(time.Date(2026, 9, 1, 23, 0, 0, 0, time.UTC))
	f.sched.Tick(context.Background())
	assert.Empty(t, f.notifier.broadcasts)
}

func TestTick_NoAnnounceOffTheHour(t *testing.T) {
	f := newFixture(time.Date(2026, 9, 1, 14, 30, 0, 0, time.UTC))
	f.sched.Tick(context.Background())
	assert.Empty(t, f.notifier.broadcasts)
}

func TestTick_AsksArrivalsForCurrentSlot(t *testing.T) {
	f := newFixture(time.Date(2026, 9, 1, 15, 0, 0, 0, time.UTC))
	f.schedule.doc = &domain.DayDocument{
		Date: "2026-09-01",
		Slots: []domain.Slot{
			{
				Time:     types.TimeString("15:00"),
				Capacity: 3,
				Bookings: []domain.Booking{
					{Name: "小美", OriginGroupID: -100},
					{Name: "阿強", OriginGroupID: -200},
					{Name: "小花", OriginGroupID: -100},
				},
				InProgress: []domain.ProgressEntry{{Name: "小花", Amount: 1000}},
			},
			{
				Time:     types.TimeString("16:00"),
				Capacity: 3,
				Bookings: []domain.Booking{{Name: "別人", OriginGroupID: -300}},
			},
		},
	}

	f.sched.Tick(context.Background())

	// 小花 уже прибыла, 16:00 ещё не наступил
	require.Len(t, f.bot.sent, 2)
	want := "⏰ 現在是 15:00\n請問預約的「小美、阿強」到了嗎？\n可使用 /list → 客到"
	chats := map[int64]bool{}
	for _, m := range f.bot.sent {
		assert.Equal(t, want, m.text)
		chats[m.chatID] = true
	}
	assert.True(t, chats[-100])
	assert.True(t, chats[-200])

	// повтор в том же часу молчит
	f.sched.Tick(context.Background())
	assert.Len(t, f.bot.sent, 2)
}

func TestTick_DailyReset(t *testing.T) {
	f := newFixture(time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC))
	f.sched.Tick(context.Background())
	require.Len(t, f.notifier.broadcasts, 1)

	f.schedule.now = time.Date(2026, 9, 2, 0, 1, 0, 0, time.UTC)
	f.sched.Tick(context.Background())

	assert.Equal(t, 1, f.tracker.resets)
	assert.Equal(t, []string{"2026-09-02"}, f.days.prunedBefore)

	// сброс в пределах той же даты не повторяется
	f.schedule.now = f.schedule.now.Add(20 * time.Second)
	f.sched.Tick(context.Background())
	assert.Equal(t, 1, f.tracker.resets)
}

func TestTick_SweepThrottled(t *testing.T) {
	f := newFixture(time.Date(2026, 9, 1, 14, 10, 0, 0, time.UTC))

	f.sched.Tick(context.Background())
	assert.Equal(t, 1, f.sweeper.calls)

	f.schedule.now = f.schedule.now.Add(10 * time.Second)
	f.sched.Tick(context.Background())
	assert.Equal(t, 1, f.sweeper.calls)

	f.schedule.now = f.schedule.now.Add(time.Minute)
	f.sched.Tick(context.Background())
	assert.Equal(t, 2, f.sweeper.calls)
}
