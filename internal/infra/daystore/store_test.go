package daystore

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goodgood52099-bit/XFWH-BOT/internal/domain"
	dayRepo "github.com/goodgood52099-bit/XFWH-BOT/internal/infra/storage/day"
	"github.com/goodgood52099-bit/XFWH-BOT/pkg/types"
)

type fakeRepo struct {
	mu      sync.Mutex
	docs    map[string]*domain.DayDocument
	order   []string
	failing bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{docs: make(map[string]*domain.DayDocument)}
}

func (f *fakeRepo) Get(_ context.Context, dayKey string) (*domain.DayDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[dayKey]
	if !ok {
		return nil, dayRepo.ErrDayNotFound
	}
	return doc.Clone(), nil
}

func (f *fakeRepo) Upsert(_ context.Context, doc *domain.DayDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("storage unavailable")
	}
	f.docs[doc.Date] = doc.Clone()
	f.order = append(f.order, doc.Date)
	return nil
}

func (f *fakeRepo) setFailing(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = v
}

func (f *fakeRepo) committed(dayKey string) *domain.DayDocument {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.docs[dayKey].Clone()
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func mustTime(t *testing.T, s string) types.TimeString {
	t.Helper()
	ts, err := types.NewTimeStringFromString(s)
	require.NoError(t, err)
	return ts
}

func TestMerge_ScalarTakesQueuedValue(t *testing.T) {
	label := mustTime(t, "14:00")
	committed := &domain.DayDocument{
		Date:  "2026-09-01",
		Slots: []domain.Slot{{Time: label, Capacity: 3}},
	}
	queued := &domain.DayDocument{
		Date:  "2026-09-01",
		Slots: []domain.Slot{{Time: label, Capacity: 5}},
	}

	out := Merge(committed, queued)
	require.Len(t, out.Slots, 1)
	assert.Equal(t, 5, out.Slots[0].Capacity)
}

func TestMerge_ListsUnionByEquality(t *testing.T) {
	label := mustTime(t, "15:00")
	committed := &domain.DayDocument{
		Date: "2026-09-01",
		Slots: []domain.Slot{{
			Time:     label,
			Capacity: 3,
			Bookings: []domain.Booking{
				{Name: "小美", OriginGroupID: -100},
				{Name: "阿強", OriginGroupID: -100},
			},
		}},
	}
	queued := &domain.DayDocument{
		Date: "2026-09-01",
		Slots: []domain.Slot{{
			Time:     label,
			Capacity: 3,
			Bookings: []domain.Booking{
				{Name: "小美", OriginGroupID: -100},
				{Name: "小華", OriginGroupID: -200},
			},
		}},
	}

	out := Merge(committed, queued)
	require.Len(t, out.Slots, 1)
	assert.ElementsMatch(t, []domain.Booking{
		{Name: "小美", OriginGroupID: -100},
		{Name: "小華", OriginGroupID: -200},
		{Name: "阿強", OriginGroupID: -100},
	}, out.Slots[0].Bookings)
	// дубликат по равенству схлопнут
	assert.Len(t, out.Slots[0].Bookings, 3)
}

func TestMerge_SlotOnlyInOneSideSurvives(t *testing.T) {
	committed := &domain.DayDocument{
		Date:  "2026-09-01",
		Slots: []domain.Slot{{Time: mustTime(t, "13:00"), Capacity: 3}},
	}
	queued := &domain.DayDocument{
		Date:  "2026-09-01",
		Slots: []domain.Slot{{Time: mustTime(t, "21:00"), Capacity: 2}},
	}

	out := Merge(committed, queued)
	assert.True(t, out.HasSlot(mustTime(t, "13:00")))
	assert.True(t, out.HasSlot(mustTime(t, "21:00")))
}

func TestMerge_NilSides(t *testing.T) {
	doc := &domain.DayDocument{Date: "2026-09-01"}

	assert.Nil(t, Merge(nil, nil))
	require.NotNil(t, Merge(doc, nil))
	require.NotNil(t, Merge(nil, doc))

	// результат не разделяет память с аргументами
	out := Merge(doc, nil)
	out.Date = "changed"
	assert.Equal(t, "2026-09-01", doc.Date)
}

func TestStore_ReadMissingDay(t *testing.T) {
	repo := newFakeRepo()
	store := NewStore(repo, nopLogger{})
	store.Start()
	defer store.Close()

	_, err := store.Read(context.Background(), "2026-09-01")
	assert.ErrorIs(t, err, ErrDayNotFound)
}

func TestStore_MutateCreatesAndFlushes(t *testing.T) {
	repo := newFakeRepo()
	store := NewStore(repo, nopLogger{})
	store.Start()

	label := mustTime(t, "14:00")
	_, err := store.Mutate(context.Background(), "2026-09-01", func(doc *domain.DayDocument) (*domain.DayDocument, error) {
		require.Nil(t, doc)
		return &domain.DayDocument{
			Slots: []domain.Slot{{Time: label, Capacity: 3}},
		}, nil
	})
	require.NoError(t, err)

	// до остановки результат уже виден через Read
	doc, err := store.Read(context.Background(), "2026-09-01")
	require.NoError(t, err)
	assert.True(t, doc.HasSlot(label))

	store.Close()

	got := repo.committed("2026-09-01")
	require.NotNil(t, got)
	assert.Equal(t, "2026-09-01", got.Date)
	assert.True(t, got.HasSlot(label))
}

func TestStore_MutateErrorEnqueuesNothing(t *testing.T) {
	repo := newFakeRepo()
	store := NewStore(repo, nopLogger{})
	store.Start()

	wantErr := errors.New("slot is full")
	_, err := store.Mutate(context.Background(), "2026-09-01", func(*domain.DayDocument) (*domain.DayDocument, error) {
		return nil, wantErr
	})
	assert.ErrorIs(t, err, wantErr)

	store.Close()
	assert.Nil(t, repo.committed("2026-09-01"))
}

func TestStore_RacingMutationsBothLand(t *testing.T) {
	repo := newFakeRepo()
	store := NewStore(repo, nopLogger{})
	store.Start()

	label := mustTime(t, "16:00")
	const workers = 8

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := store.Mutate(context.Background(), "2026-09-01", func(doc *domain.DayDocument) (*domain.DayDocument, error) {
				if doc == nil {
					doc = &domain.DayDocument{Slots: []domain.Slot{{Time: label, Capacity: workers}}}
				}
				slot := doc.FindSlot(label)
				slot.Bookings = append(slot.Bookings, domain.Booking{
					Name:          slot.UniqueName("客人"),
					OriginGroupID: int64(-100),
				})
				return doc, nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
	store.Close()

	got := repo.committed("2026-09-01")
	require.NotNil(t, got)
	require.True(t, got.HasSlot(label))
	assert.Len(t, got.FindSlot(label).Bookings, workers)
}

func TestStore_FailedFlushDroppedWithoutRetry(t *testing.T) {
	repo := newFakeRepo()
	store := NewStore(repo, nopLogger{})
	store.Start()

	label := mustTime(t, "17:00")
	repo.setFailing(true)

	_, err := store.Mutate(context.Background(), "2026-09-01", func(*domain.DayDocument) (*domain.DayDocument, error) {
		return &domain.DayDocument{Slots: []domain.Slot{{Time: label, Capacity: 3}}}, nil
	})
	require.NoError(t, err)

	store.Close()

	// неудачная запись отброшена, повторов нет
	assert.Nil(t, repo.committed("2026-09-01"))
	assert.Empty(t, repo.order)
}

func TestStore_FlushOrderFollowsEnqueueOrder(t *testing.T) {
	repo := newFakeRepo()
	store := NewStore(repo, nopLogger{})
	store.Start()

	days := []string{"2026-09-01", "2026-09-02", "2026-09-03"}
	for _, day := range days {
		_, err := store.Mutate(context.Background(), day, func(*domain.DayDocument) (*domain.DayDocument, error) {
			return &domain.DayDocument{}, nil
		})
		require.NoError(t, err)
	}
	store.Close()

	assert.Equal(t, days, repo.order)
}

func TestStore_MutateAfterCloseFails(t *testing.T) {
	repo := newFakeRepo()
	store := NewStore(repo, nopLogger{})
	store.Start()
	store.Close()

	_, err := store.Mutate(context.Background(), "2026-09-01", func(*domain.DayDocument) (*domain.DayDocument, error) {
		return &domain.DayDocument{}, nil
	})
	assert.ErrorIs(t, err, ErrStoreClosed)
}
