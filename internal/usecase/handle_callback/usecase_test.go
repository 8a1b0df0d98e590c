package handle_callback

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goodgood52099-bit/XFWH-BOT/internal/domain"
	bookingSvc "github.com/goodgood52099-bit/XFWH-BOT/internal/service/bookings"
	pendingSvc "github.com/goodgood52099-bit/XFWH-BOT/internal/service/pending"
	"github.com/goodgood52099-bit/XFWH-BOT/internal/service/schedule"
	"github.com/goodgood52099-bit/XFWH-BOT/internal/service/staffassign"
	"github.com/goodgood52099-bit/XFWH-BOT/pkg/types"
)

type fakeSchedule struct {
	refs    []schedule.BookingRef
	reserve domain.ButtonGrid
}

func (f *fakeSchedule) DayKey() string { return "2026-09-01" }

func (f *fakeSchedule) EnsureToday(_ context.Context) (*domain.DayDocument, error) {
	return &domain.DayDocument{Date: "2026-09-01"}, nil
}

func (f *fakeSchedule) RenderDayList(_ *domain.DayDocument) string { return "список" }

func (f *fakeSchedule) MainMenu() domain.ButtonGrid {
	return domain.ButtonGrid{{{Label: "預約", Action: "main|reserve"}}}
}

func (f *fakeSchedule) ReserveButtons(_ *domain.DayDocument) domain.ButtonGrid {
	return f.reserve
}

func (f *fakeSchedule) ModifyTargetButtons(_ *domain.DayDocument, _ types.TimeString, _ string) domain.ButtonGrid {
	return domain.ButtonGrid{{{Label: "16:00", Action: "modify_to|15:00|小美|16:00"}}}
}

func (f *fakeSchedule) BookingsForGroup(_ *domain.DayDocument, _ int64) []schedule.BookingRef {
	return f.refs
}

func (f *fakeSchedule) PickButtons(refs []schedule.BookingRef, kind domain.CommandKind, perRow int) domain.ButtonGrid {
	var row []domain.Button
	for _, ref := range refs {
		row = append(row, domain.Button{
			Label:  string(ref.Time) + " " + ref.Name,
			Action: domain.Command{Kind: kind, SlotTime: ref.Time, Name: ref.Name}.Token(),
		})
	}
	return domain.ButtonGrid{row}
}

type fakeBookings struct {
	cancelErr error
	cancelled []string
}

func (f *fakeBookings) Cancel(_ context.Context, _ string, slotTime types.TimeString, name string, _ int64) error {
	if f.cancelErr != nil {
		return f.cancelErr
	}
	f.cancelled = append(f.cancelled, string(slotTime)+" "+name)
	return nil
}

type fakePending struct {
	active  *domain.PendingAction
	begun   []*domain.PendingAction
	set     []*domain.PendingAction
	cleared []int64
	sweeps  int
}

func (f *fakePending) Sweep(_ context.Context) (int64, error) {
	f.sweeps++
	return 0, nil
}

func (f *fakePending) Get(_ context.Context, _ int64) (*domain.PendingAction, error) {
	return f.active, nil
}

func (f *fakePending) Begin(_ context.Context, action *domain.PendingAction) error {
	if f.active != nil {
		return pendingSvc.ErrFlowActive
	}
	f.begun = append(f.begun, action)
	return nil
}

func (f *fakePending) Replace(_ context.Context, action *domain.PendingAction) error {
	f.set = append(f.set, action)
	return nil
}

func (f *fakePending) Clear(_ context.Context, userID int64) error {
	f.cleared = append(f.cleared, userID)
	return nil
}

type fakeNotify struct {
	broadcasts []string
}

func (f *fakeNotify) BroadcastToRole(_ context.Context, role domain.GroupRole, text string, _ domain.ButtonGrid) (int, error) {
	f.broadcasts = append(f.broadcasts, string(role)+": "+text)
	return 1, nil
}

type sentMessage struct {
	chatID  int64
	text    string
	buttons domain.ButtonGrid
}

type fakeBot struct {
	sent []sentMessage
	acks []string
}

func (f *fakeBot) SendMessage(_ context.Context, chatID int64, text string, buttons domain.ButtonGrid) error {
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text, buttons: buttons})
	return nil
}

func (f *fakeBot) AnswerCallback(_ context.Context, callbackID string, text string) error {
	f.acks = append(f.acks, callbackID+":"+text)
	return nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixture struct {
	schedule *fakeSchedule
	bookings *fakeBookings
	pending  *fakePending
	tracker  *staffassign.Tracker
	notify   *fakeNotify
	bot      *fakeBot
	uc       *UseCase
}

func newFixture() *fixture {
	f := &fixture{
		schedule: &fakeSchedule{},
		bookings: &fakeBookings{},
		pending:  &fakePending{},
		tracker:  staffassign.NewTracker(),
		notify:   &fakeNotify{},
		bot:      &fakeBot{},
	}
	f.uc = NewUseCase(f.schedule, f.bookings, f.pending, f.tracker, f.notify, f.bot, nopLogger{})
	return f
}

func (f *fixture) execute(t *testing.T, data string) {
	t.Helper()
	err := f.uc.Execute(context.Background(), &Request{
		CallbackID: "cb-1",
		UserID:     7,
		ChatID:     -100,
		Data:       data,
	})
	require.NoError(t, err)
}

func (f *fixture) lastText(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, f.bot.sent)
	return f.bot.sent[len(f.bot.sent)-1].text
}

func TestExecute_AlwaysAnswersCallback(t *testing.T) {
	f := newFixture()
	f.execute(t, "noop")
	assert.Equal(t, []string{"cb-1:"}, f.bot.acks)
	assert.Empty(t, f.bot.sent)
}

func TestExecute_SweepsExpiredFlows(t *testing.T) {
	f := newFixture()
	f.execute(t, "noop")
	f.execute(t, "main|reserve")
	assert.Equal(t, 2, f.pending.sweeps)
}

func TestExecute_BadTokenShowsDeadButton(t *testing.T) {
	f := newFixture()
	f.execute(t, "мусор")
	assert.Equal(t, "⚠️ 此按鈕暫時無效", f.lastText(t))
	assert.Len(t, f.bot.acks, 1)
}

func TestExecute_CancelFlow(t *testing.T) {
	f := newFixture()
	f.execute(t, "cancel_flow")
	assert.Equal(t, []int64{7}, f.pending.cleared)
	assert.Equal(t, "❌ 已取消操作。", f.lastText(t))
}

func TestMainReserve_NoFutureSlots(t *testing.T) {
	f := newFixture()
	// только строка 取消
	f.schedule.reserve = domain.ButtonGrid{{{Label: "取消", Action: "cancel_flow"}}}

	f.execute(t, "main|reserve")
	assert.Equal(t, "📅 目前沒有可預約的時段。", f.lastText(t))
}

func TestMainReserve_ShowsGrid(t *testing.T) {
	f := newFixture()
	f.schedule.reserve = domain.ButtonGrid{
		{{Label: "15:00 (2)", Action: "reserve_pick|15:00"}},
		{{Label: "取消", Action: "cancel_flow"}},
	}

	f.execute(t, "main|reserve")
	assert.Equal(t, "請選擇要預約的時段：", f.lastText(t))
	assert.Len(t, f.bot.sent[0].buttons, 2)
}

func TestMainArrive_NoBookings(t *testing.T) {
	f := newFixture()
	f.execute(t, "main|arrive")
	assert.Equal(t, "目前沒有相關預約。", f.lastText(t))
}

func TestMainArrive_ShowsBookings(t *testing.T) {
	f := newFixture()
	f.schedule.refs = []schedule.BookingRef{{Time: types.TimeString("15:00"), Name: "小美"}}

	f.execute(t, "main|arrive")
	assert.Equal(t, "請選擇要客到的預約：", f.lastText(t))
}

func TestReservePick_BeginsFlow(t *testing.T) {
	f := newFixture()
	f.execute(t, "reserve_pick|15:00")

	require.Len(t, f.pending.begun, 1)
	action := f.pending.begun[0]
	assert.Equal(t, domain.PendingReservationName, action.Kind)
	assert.Equal(t, types.TimeString("15:00"), action.SlotTime)
	assert.Equal(t, int64(-100), action.GroupChatID)
	assert.Equal(t, "✏️ 請輸入要預約 15:00 的姓名：", f.lastText(t))
}

func TestReservePick_ActiveFlowBlocks(t *testing.T) {
	f := newFixture()
	f.pending.active = &domain.PendingAction{UserID: 7, Kind: domain.PendingArrivalAmount}

	f.execute(t, "reserve_pick|15:00")
	assert.Empty(t, f.pending.begun)
	assert.Equal(t, "⚠️ 請先完成或取消目前操作。", f.lastText(t))
}

func TestArrivePick_BeginsFlow(t *testing.T) {
	f := newFixture()
	f.execute(t, "arrive_pick|15:00|小美")

	require.Len(t, f.pending.begun, 1)
	action := f.pending.begun[0]
	assert.Equal(t, domain.PendingArrivalAmount, action.Kind)
	assert.Equal(t, "小美", action.Name)
	assert.Equal(t, "✏️ 請輸入 15:00 小美 的金額：", f.lastText(t))
}

func TestModifyPick_ShowsTargets(t *testing.T) {
	f := newFixture()
	f.execute(t, "modify_pick|15:00|小美")
	assert.Equal(t, "要將 15:00 小美 修改到哪個時段？", f.lastText(t))
	assert.NotEmpty(t, f.bot.sent[0].buttons)
}

func TestCancelPick_Success(t *testing.T) {
	f := newFixture()
	f.execute(t, "cancel_pick|15:00|小美")

	assert.Equal(t, []string{"15:00 小美"}, f.bookings.cancelled)
	assert.Equal(t, []int64{7}, f.pending.cleared)
	require.Len(t, f.notify.broadcasts, 1)
	assert.Equal(t, "business: список", f.notify.broadcasts[0])
	assert.Equal(t, "✅ 已取消 15:00 小美 的預約", f.lastText(t))
}

func TestCancelPick_SlotMissingAckOnly(t *testing.T) {
	f := newFixture()
	f.bookings.cancelErr = bookingSvc.ErrSlotNotFound

	f.execute(t, "cancel_pick|15:00|小美")
	assert.Equal(t, []string{"cb-1:找不到該時段"}, f.bot.acks)
	assert.Empty(t, f.bot.sent)
	assert.Empty(t, f.notify.broadcasts)
}

func TestStaffUp_NotifiesBusinessOnce(t *testing.T) {
	f := newFixture()

	f.execute(t, "staff_up|15:00|小美|-500")
	f.execute(t, "staff_up|15:00|小美|-500")

	var businessNotices, staffReplies int
	for _, m := range f.bot.sent {
		switch m.chatID {
		case -500:
			businessNotices++
			assert.Equal(t, "⬆️ 上 15:00 小美", m.text)
		case -100:
			staffReplies++
			assert.Equal(t, "✅ 已通知業務 小美", m.text)
			require.Len(t, m.buttons, 1)
			assert.Equal(t, "輸入客資", m.buttons[0][0].Label)
			assert.Equal(t, "未消", m.buttons[0][1].Label)
		}
	}
	assert.Equal(t, 1, businessNotices)
	assert.Equal(t, 2, staffReplies)
}

func TestInputClient_ReplacesFlow(t *testing.T) {
	f := newFixture()
	f.pending.active = &domain.PendingAction{UserID: 7, Kind: domain.PendingArrivalAmount}

	f.execute(t, "input_client|15:00|小美|-500")

	require.Len(t, f.pending.set, 1)
	action := f.pending.set[0]
	assert.Equal(t, domain.PendingClientDetails, action.Kind)
	assert.Equal(t, "小美", action.BusinessName)
	assert.Equal(t, int64(-500), action.BusinessChatID)
}

func TestDouble_FirstStaffThenTaken(t *testing.T) {
	f := newFixture()

	f.execute(t, "double|15:00|小美|-500")
	require.Len(t, f.pending.set, 1)
	assert.Equal(t, domain.PendingSecondStaffName, f.pending.set[0].Kind)
	assert.Equal(t, "staff_7", f.pending.set[0].FirstStaff)
	assert.Equal(t, "✏️ 請輸入另一位服務員名字，與 staff_7 配合雙人服務", f.lastText(t))

	// пара уже назначена: повторный выбор отклоняется
	f.tracker.SetPair(types.TimeString("15:00"), "小美", "Alice", "Betty")
	f.execute(t, "double|15:00|小美|-500")
	assert.Equal(t, "⚠️ 15:00 小美 已有人選擇第一位服務員：Alice", f.lastText(t))
	assert.Len(t, f.pending.set, 1)
}

func TestComplete_UsesAssignedPair(t *testing.T) {
	f := newFixture()
	f.tracker.SetPair(types.TimeString("15:00"), "小美", "Alice", "Betty")

	f.execute(t, "complete|15:00|小美|-500")

	require.Len(t, f.pending.set, 1)
	action := f.pending.set[0]
	assert.Equal(t, domain.PendingCompletionAmount, action.Kind)
	assert.Equal(t, []string{"Alice", "Betty"}, action.StaffList)
	assert.Equal(t, "✏️ 請輸入 15:00 小美 的總金額（數字）：", f.lastText(t))
}

func TestFix_PromptsReentry(t *testing.T) {
	f := newFixture()
	f.execute(t, "fix|15:00|小美|-500")

	require.Len(t, f.pending.set, 1)
	assert.Equal(t, domain.PendingClientDetails, f.pending.set[0].Kind)
	assert.Equal(t, "✏️ 請重新輸入客資（格式：小美 25 Alice 3000）", f.lastText(t))
}
