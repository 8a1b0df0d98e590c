package pending_reply

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goodgood52099-bit/XFWH-BOT/internal/domain"
	bookingSvc "github.com/goodgood52099-bit/XFWH-BOT/internal/service/bookings"
	"github.com/goodgood52099-bit/XFWH-BOT/pkg/types"
)

type fakeSchedule struct{}

func (fakeSchedule) DayKey() string { return "2026-09-01" }

func (fakeSchedule) EnsureToday(_ context.Context) (*domain.DayDocument, error) {
	return &domain.DayDocument{Date: "2026-09-01"}, nil
}

func (fakeSchedule) RenderDayList(_ *domain.DayDocument) string { return "список" }

func (fakeSchedule) MainMenu() domain.ButtonGrid {
	return domain.ButtonGrid{{{Label: "預約", Action: "main|reserve"}}}
}

type createCall struct {
	slot types.TimeString
	name string
	chat int64
}

type checkInCall struct {
	slot   types.TimeString
	name   string
	chat   int64
	amount float64
}

type modifyCall struct {
	oldSlot types.TimeString
	oldName string
	newSlot types.TimeString
	newName string
	chat    int64
}

type fakeBookings struct {
	createErr      error
	createAssigned string
	created        []createCall

	checkInErr error
	checkedIn  []checkInCall

	modifyErr      error
	modifyAssigned string
	modified       []modifyCall
}

func (f *fakeBookings) Create(_ context.Context, _ string, slotTime types.TimeString, name string, originGroupID int64) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, createCall{slot: slotTime, name: name, chat: originGroupID})
	if f.createAssigned != "" {
		return f.createAssigned, nil
	}
	return name, nil
}

func (f *fakeBookings) CheckIn(_ context.Context, _ string, slotTime types.TimeString, name string, originGroupID int64, amount float64) error {
	if f.checkInErr != nil {
		return f.checkInErr
	}
	f.checkedIn = append(f.checkedIn, checkInCall{slot: slotTime, name: name, chat: originGroupID, amount: amount})
	return nil
}

func (f *fakeBookings) Modify(_ context.Context, _ string, oldSlot types.TimeString, oldName string, newSlot types.TimeString, newName string, originGroupID int64) (string, error) {
	if f.modifyErr != nil {
		return "", f.modifyErr
	}
	f.modified = append(f.modified, modifyCall{oldSlot: oldSlot, oldName: oldName, newSlot: newSlot, newName: newName, chat: originGroupID})
	if f.modifyAssigned != "" {
		return f.modifyAssigned, nil
	}
	return newName, nil
}

type fakePending struct {
	cleared []int64
}

func (f *fakePending) Clear(_ context.Context, userID int64) error {
	f.cleared = append(f.cleared, userID)
	return nil
}

type pairCall struct {
	slot          types.TimeString
	name          string
	first, second string
}

type fakeTracker struct {
	pairs []pairCall
}

func (f *fakeTracker) SetPair(slot types.TimeString, name, first, second string) {
	f.pairs = append(f.pairs, pairCall{slot: slot, name: name, first: first, second: second})
}

type broadcast struct {
	role    domain.GroupRole
	text    string
	buttons domain.ButtonGrid
}

type fakeNotify struct {
	broadcasts []broadcast
}

func (f *fakeNotify) BroadcastToRole(_ context.Context, role domain.GroupRole, text string, buttons domain.ButtonGrid) (int, error) {
	f.broadcasts = append(f.broadcasts, broadcast{role: role, text: text, buttons: buttons})
	return 1, nil
}

type sentMessage struct {
	chatID  int64
	text    string
	buttons domain.ButtonGrid
}

type fakeBot struct {
	sent []sentMessage
}

func (f *fakeBot) SendMessage(_ context.Context, chatID int64, text string, buttons domain.ButtonGrid) error {
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text, buttons: buttons})
	return nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixture struct {
	bookings *fakeBookings
	pending  *fakePending
	tracker  *fakeTracker
	notify   *fakeNotify
	bot      *fakeBot
	uc       *UseCase
}

func newFixture() *fixture {
	f := &fixture{
		bookings: &fakeBookings{},
		pending:  &fakePending{},
		tracker:  &fakeTracker{},
		notify:   &fakeNotify{},
		bot:      &fakeBot{},
	}
	f.uc = NewUseCase(fakeSchedule{}, f.bookings, f.pending, f.tracker, f.notify, f.bot, nopLogger{})
	return f
}

func (f *fixture) execute(t *testing.T, text string, action *domain.PendingAction) {
	t.Helper()
	err := f.uc.Execute(context.Background(), &Request{
		UserID: 7,
		ChatID: -900,
		Text:   text,
		Action: action,
	})
	require.NoError(t, err)
}

func TestReservationName_Success(t *testing.T) {
	f := newFixture()
	f.bookings.createAssigned = "小美(2)"

	f.execute(t, " 小美 ", &domain.PendingAction{
		UserID:      7,
		Kind:        domain.PendingReservationName,
		SlotTime:    types.TimeString("15:00"),
		GroupChatID: -100,
	})

	require.Len(t, f.bookings.created, 1)
	assert.Equal(t, createCall{slot: "15:00", name: "小美", chat: -100}, f.bookings.created[0])

	require.Len(t, f.bot.sent, 1)
	assert.Equal(t, int64(-100), f.bot.sent[0].chatID)
	assert.Equal(t, "✅ 小美(2) 已預約 15:00", f.bot.sent[0].text)

	require.Len(t, f.notify.broadcasts, 1)
	assert.Equal(t, domain.RoleBusiness, f.notify.broadcasts[0].role)
	assert.Equal(t, "список", f.notify.broadcasts[0].text)

	assert.Equal(t, []int64{7}, f.pending.cleared)
}

func TestReservationName_SlotFull(t *testing.T) {
	f := newFixture()
	f.bookings.createErr = bookingSvc.ErrSlotFull

	f.execute(t, "小美", &domain.PendingAction{
		UserID:      7,
		Kind:        domain.PendingReservationName,
		SlotTime:    types.TimeString("15:00"),
		GroupChatID: -100,
	})

	require.Len(t, f.bot.sent, 1)
	assert.Equal(t, "⚠️ 15:00 不存在或已滿額", f.bot.sent[0].text)
	assert.Empty(t, f.notify.broadcasts)
	assert.Equal(t, []int64{7}, f.pending.cleared)
}

func TestArrivalAmount_BadAmountKeepsStepOpen(t *testing.T) {
	f := newFixture()

	f.execute(t, "не число", &domain.PendingAction{
		UserID:      7,
		Kind:        domain.PendingArrivalAmount,
		SlotTime:    types.TimeString("15:00"),
		Name:        "小美",
		GroupChatID: -100,
	})

	require.Len(t, f.bot.sent, 1)
	assert.Equal(t, "⚠️ 金額格式錯誤", f.bot.sent[0].text)
	assert.Empty(t, f.pending.cleared)
	assert.Empty(t, f.bookings.checkedIn)
}

func TestArrivalAmount_Success(t *testing.T) {
	f := newFixture()

	f.execute(t, "2500", &domain.PendingAction{
		UserID:      7,
		Kind:        domain.PendingArrivalAmount,
		SlotTime:    types.TimeString("15:00"),
		Name:        "小美",
		GroupChatID: -100,
	})

	require.Len(t, f.bookings.checkedIn, 1)
	assert.Equal(t, checkInCall{slot: "15:00", name: "小美", chat: -100, amount: 2500}, f.bookings.checkedIn[0])

	require.Len(t, f.bot.sent, 1)
	assert.Equal(t, int64(-100), f.bot.sent[0].chatID)
	assert.Equal(t, "✅ 15:00 小美 已標記到場，金額：2500", f.bot.sent[0].text)

	// сервисные группы получают уведомление с кнопкой «上»
	require.Len(t, f.notify.broadcasts, 1)
	b := f.notify.broadcasts[0]
	assert.Equal(t, domain.RoleStaff, b.role)
	assert.Equal(t, "🙋‍♀️ 客到通知\n時間：15:00\n業務名：小美\n金額：2500", b.text)
	require.Len(t, b.buttons, 1)
	require.Len(t, b.buttons[0], 1)
	assert.Equal(t, "上", b.buttons[0][0].Label)
	assert.Equal(t, "staff_up|15:00|小美|-100", b.buttons[0][0].Action)

	assert.Equal(t, []int64{7}, f.pending.cleared)
}

func TestArrivalAmount_BookingMissing(t *testing.T) {
	f := newFixture()
	f.bookings.checkInErr = bookingSvc.ErrBookingNotFound

	f.execute(t, "2500", &domain.PendingAction{
		UserID:      7,
		Kind:        domain.PendingArrivalAmount,
		SlotTime:    types.TimeString("15:00"),
		Name:        "小美",
		GroupChatID: -100,
	})

	require.Len(t, f.bot.sent, 1)
	assert.Equal(t, "⚠️ 找不到預約 小美", f.bot.sent[0].text)
	assert.Empty(t, f.notify.broadcasts)
	assert.Equal(t, []int64{7}, f.pending.cleared)
}

func TestClientDetails_BadFormatKeepsStepOpen(t *testing.T) {
	f := newFixture()

	f.execute(t, "小美 25", &domain.PendingAction{
		UserID:         7,
		Kind:           domain.PendingClientDetails,
		SlotTime:       types.TimeString("15:00"),
		BusinessName:   "小美",
		BusinessChatID: -500,
	})

	require.Len(t, f.bot.sent, 1)
	assert.Equal(t, int64(-900), f.bot.sent[0].chatID)
	assert.Equal(t, "❌ 格式錯誤，請輸入：小美 25 Alice 3000", f.bot.sent[0].text)
	assert.Empty(t, f.pending.cleared)
}

func TestClientDetails_SendsCardToBothChats(t *testing.T) {
	f := newFixture()

	f.execute(t, "王小姐 25 Alice 3000", &domain.PendingAction{
		UserID:         7,
		Kind:           domain.PendingClientDetails,
		SlotTime:       types.TimeString("15:00"),
		BusinessName:   "小美",
		BusinessChatID: -500,
	})

	card := "📌 客\n15:00 王小姐25 小美3000\n服務人員: Alice"
	require.Len(t, f.bot.sent, 2)

	assert.Equal(t, int64(-500), f.bot.sent[0].chatID)
	assert.Equal(t, card, f.bot.sent[0].text)
	assert.Empty(t, f.bot.sent[0].buttons)

	// копия в сервисный чат несёт кнопки продолжения потока
	assert.Equal(t, int64(-900), f.bot.sent[1].chatID)
	assert.Equal(t, card, f.bot.sent[1].text)
	require.Len(t, f.bot.sent[1].buttons, 1)
	row := f.bot.sent[1].buttons[0]
	require.Len(t, row, 3)
	assert.Equal(t, "雙", row[0].Label)
	assert.Equal(t, "double|15:00|小美|-500", row[0].Action)
	assert.Equal(t, "完成服務", row[1].Label)
	assert.Equal(t, "complete|15:00|小美|-500", row[1].Action)
	assert.Equal(t, "修正", row[2].Label)
	assert.Equal(t, "fix|15:00|小美|-500", row[2].Action)

	assert.Equal(t, []int64{7}, f.pending.cleared)
}

func TestSecondStaffName_SetsPair(t *testing.T) {
	f := newFixture()

	f.execute(t, " Betty ", &domain.PendingAction{
		UserID:         7,
		Kind:           domain.PendingSecondStaffName,
		SlotTime:       types.TimeString("15:00"),
		BusinessName:   "小美",
		BusinessChatID: -500,
		FirstStaff:     "Alice",
	})

	require.Len(t, f.tracker.pairs, 1)
	assert.Equal(t, pairCall{slot: "15:00", name: "小美", first: "Alice", second: "Betty"}, f.tracker.pairs[0])

	require.Len(t, f.bot.sent, 1)
	assert.Equal(t, int64(-500), f.bot.sent[0].chatID)
	assert.Equal(t, "👥 雙人服務更新：Alice、Betty", f.bot.sent[0].text)
	assert.Equal(t, []int64{7}, f.pending.cleared)
}

func TestCompletionAmount_SendsToBothChats(t *testing.T) {
	f := newFixture()

	f.execute(t, "3000", &domain.PendingAction{
		UserID:         7,
		Kind:           domain.PendingCompletionAmount,
		SlotTime:       types.TimeString("15:00"),
		BusinessName:   "小美",
		BusinessChatID: -500,
		StaffList:      []string{"Alice", "Betty"},
	})

	want := "✅ 完成服務通知\n15:00 小美\n服務人員: Alice、Betty\n金額: 3000"
	require.Len(t, f.bot.sent, 2)
	assert.Equal(t, int64(-900), f.bot.sent[0].chatID)
	assert.Equal(t, want, f.bot.sent[0].text)
	assert.Equal(t, int64(-500), f.bot.sent[1].chatID)
	assert.Equal(t, want, f.bot.sent[1].text)
	assert.Equal(t, []int64{7}, f.pending.cleared)
}

func TestCompletionAmount_BadAmountKeepsStepOpen(t *testing.T) {
	f := newFixture()

	f.execute(t, "abc", &domain.PendingAction{
		UserID:         7,
		Kind:           domain.PendingCompletionAmount,
		SlotTime:       types.TimeString("15:00"),
		BusinessName:   "小美",
		BusinessChatID: -500,
	})

	require.Len(t, f.bot.sent, 1)
	assert.Equal(t, "⚠️ 金額格式錯誤", f.bot.sent[0].text)
	assert.Empty(t, f.pending.cleared)
}

func TestNoSaleReason(t *testing.T) {
	f := newFixture()

	f.execute(t, "客人沒來", &domain.PendingAction{
		UserID:         7,
		Kind:           domain.PendingNoSaleReason,
		SlotTime:       types.TimeString("15:00"),
		Name:           "小美",
		BusinessChatID: -500,
	})

	require.Len(t, f.bot.sent, 2)
	assert.Equal(t, int64(-900), f.bot.sent[0].chatID)
	assert.Equal(t, "掰掰謝謝光臨!!", f.bot.sent[0].text)
	assert.Equal(t, int64(-500), f.bot.sent[1].chatID)
	assert.Equal(t, "⚠️ 未消: 小美 客人沒來", f.bot.sent[1].text)
	assert.Equal(t, []int64{7}, f.pending.cleared)
}

func TestModifyName_Success(t *testing.T) {
	f := newFixture()

	f.execute(t, "小美", &domain.PendingAction{
		UserID:      7,
		Kind:        domain.PendingModifyName,
		GroupChatID: -100,
		OldSlotTime: types.TimeString("15:00"),
		OldName:     "小美",
		NewSlotTime: types.TimeString("16:00"),
	})

	require.Len(t, f.bookings.modified, 1)
	assert.Equal(t, modifyCall{oldSlot: "15:00", oldName: "小美", newSlot: "16:00", newName: "小美", chat: -100}, f.bookings.modified[0])

	require.Len(t, f.notify.broadcasts, 1)
	assert.Equal(t, domain.RoleBusiness, f.notify.broadcasts[0].role)

	require.Len(t, f.bot.sent, 1)
	assert.Equal(t, "✅ 已修改：15:00 小美 → 16:00 小美", f.bot.sent[0].text)
	assert.Equal(t, []int64{7}, f.pending.cleared)
}

func TestModifyName_TargetGone(t *testing.T) {
	f := newFixture()
	f.bookings.modifyErr = bookingSvc.ErrSlotFull

	f.execute(t, "小美", &domain.PendingAction{
		UserID:      7,
		Kind:        domain.PendingModifyName,
		GroupChatID: -100,
		OldSlotTime: types.TimeString("15:00"),
		OldName:     "小美",
		NewSlotTime: types.TimeString("16:00"),
	})

	require.Len(t, f.bot.sent, 1)
	assert.Equal(t, "⚠️ 時段不存在或已滿額", f.bot.sent[0].text)
	assert.Empty(t, f.notify.broadcasts)
	assert.Equal(t, []int64{7}, f.pending.cleared)
}

func TestModifyName_BookingGone(t *testing.T) {
	f := newFixture()
	f.bookings.modifyErr = bookingSvc.ErrBookingNotFound

	f.execute(t, "小美", &domain.PendingAction{
		UserID:      7,
		Kind:        domain.PendingModifyName,
		GroupChatID: -100,
		OldSlotTime: types.TimeString("15:00"),
		OldName:     "小美",
		NewSlotTime: types.TimeString("16:00"),
	})

	require.Len(t, f.bot.sent, 1)
	assert.Equal(t, "⚠️ 找不到預約 小美", f.bot.sent[0].text)
	assert.Empty(t, f.notify.broadcasts)
	assert.Equal(t, []int64{7}, f.pending.cleared)
}

func TestExecute_UnknownActionClearsAndReports(t *testing.T) {
	f := newFixture()

	err := f.uc.Execute(context.Background(), &Request{
		UserID: 7,
		ChatID: -900,
		Text:   "что угодно",
		Action: &domain.PendingAction{UserID: 7, Kind: domain.PendingKind("legacy_step")},
	})
	require.ErrorIs(t, err, ErrUnknownAction)

	require.Len(t, f.bot.sent, 1)
	assert.Equal(t, "❌ 執行動作時發生錯誤", f.bot.sent[0].text)
	assert.Equal(t, []int64{7}, f.pending.cleared)
}
