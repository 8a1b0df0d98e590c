package daystore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	dayRepo "github.com/goodgood52099-bit/XFWH-BOT/internal/infra/storage/day"

	"github.com/goodgood52099-bit/XFWH-BOT/internal/domain"
)

const (
	defaultQueueSize = 256
	flushTimeout     = 10 * time.Second
)

type queueEntry struct {
	doc *domain.DayDocument
	seq uint64
}

type flushRequest struct {
	key string
	doc *domain.DayDocument
	seq uint64
}

// Store коалесцирующая прослойка над репозиторием дневных документов.
// Чтения и мутации синхронны и упорядочены по-ключевыми замками;
// запись в хранилище асинхронна, строго в порядке постановки в очередь.
// Неудачная запись логируется и отбрасывается: следующая мутация
// восстановит состояние от последнего зафиксированного чтения.
type Store struct {
	repo DayRepository
	log  Logger

	mu       sync.Mutex
	locks    map[string]*sync.Mutex
	queued   map[string]queueEntry
	seq      uint64
	closed   bool
	enqueues sync.WaitGroup

	flushCh chan flushRequest
	done    chan struct{}
}

// NewStore создает новый коалесцер над репозиторием дневных документов
func NewStore(repo DayRepository, log Logger) *Store {
	return &Store{
		repo:    repo,
		log:     log,
		locks:   make(map[string]*sync.Mutex),
		queued:  make(map[string]queueEntry),
		flushCh: make(chan flushRequest, defaultQueueSize),
		done:    make(chan struct{}),
	}
}

// Start запускает воркер асинхронной записи
func (s *Store) Start() {
	go s.flushLoop()
}

// Close останавливает коалесцер, дождавшись записи всей очереди
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.enqueues.Wait()
	close(s.flushCh)
	<-s.done
}

// Read возвращает документ дня: зафиксированное значение,
// совмещённое со значением, ещё стоящим в очереди на запись
func (s *Store) Read(ctx context.Context, dayKey string) (*domain.DayDocument, error) {
	lk := s.keyLock(dayKey)
	lk.Lock()
	defer lk.Unlock()

	committed, err := s.committed(ctx, dayKey)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	entry, ok := s.queued[dayKey]
	s.mu.Unlock()

	var pending *domain.DayDocument
	if ok {
		pending = entry.doc
	}
	if committed == nil && pending == nil {
		return nil, ErrDayNotFound
	}
	return Merge(committed, pending), nil
}

// Mutate применяет fn к актуальному состоянию дня под по-ключевым замком
// и ставит результат в очередь на запись. fn получает совмещённую копию
// документа (nil, если дня ещё нет) и возвращает новое состояние целиком.
// Ошибка fn отменяет мутацию: в очередь ничего не попадает.
func (s *Store) Mutate(ctx context.Context, dayKey string, fn func(doc *domain.DayDocument) (*domain.DayDocument, error)) (*domain.DayDocument, error) {
	lk := s.keyLock(dayKey)
	lk.Lock()
	defer lk.Unlock()

	committed, err := s.committed(ctx, dayKey)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	entry, ok := s.queued[dayKey]
	s.mu.Unlock()

	var pending *domain.DayDocument
	if ok {
		pending = entry.doc
	}

	var base *domain.DayDocument
	if committed != nil || pending != nil {
		base = Merge(committed, pending)
	}

	next, err := fn(base)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return nil, ErrNilDocument
	}
	if next.Date == "" {
		next.Date = dayKey
	}

	stored := next.Clone()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrStoreClosed
	}
	s.seq++
	seq := s.seq
	s.queued[dayKey] = queueEntry{doc: stored, seq: seq}
	s.enqueues.Add(1)
	s.mu.Unlock()

	s.flushCh <- flushRequest{key: dayKey, doc: stored, seq: seq}
	s.enqueues.Done()

	return next, nil
}

// committed читает зафиксированное значение; отсутствие дня не ошибка
func (s *Store) committed(ctx context.Context, dayKey string) (*domain.DayDocument, error) {
	doc, err := s.repo.Get(ctx, dayKey)
	if errors.Is(err, dayRepo.ErrDayNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("daystore: read committed day %s: %w", dayKey, err)
	}
	return doc, nil
}

func (s *Store) keyLock(dayKey string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lk, ok := s.locks[dayKey]
	if !ok {
		lk = &sync.Mutex{}
		s.locks[dayKey] = lk
	}
	return lk
}

func (s *Store) flushLoop() {
	defer close(s.done)
	for req := range s.flushCh {
		ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		err := s.repo.Upsert(ctx, req.doc)
		cancel()
		if err != nil {
			s.log.Error("flushLoop: failed to flush day document day=%s: %v", req.key, err)
		}

		s.mu.Lock()
		if entry, ok := s.queued[req.key]; ok && entry.seq == req.seq {
			delete(s.queued, req.key)
		}
		s.mu.Unlock()
	}
}
