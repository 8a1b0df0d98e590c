package pending

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodgood52099-bit/XFWH-BOT/internal/domain"
	pendingRepo "github.com/goodgood52099-bit/XFWH-BOT/internal/infra/storage/pending"
)

// Service сервис диалоговых состояний: не более одного активного шага
// на пользователя, шаг живёт не дольше domain.PendingTTL
type Service struct {
	repo PendingRepository
	log  Logger

	now func() time.Time
}

// NewService создает новый экземпляр сервиса диалоговых состояний
func NewService(repo PendingRepository, log Logger) *Service {
	return &Service{repo: repo, log: log, now: time.Now}
}

// Get возвращает активный шаг пользователя
// Просроченный шаг удаляется и считается отсутствующим; отсутствие не ошибка
func (s *Service) Get(ctx context.Context, userID int64) (*domain.PendingAction, error) {
	action, err := s.repo.Get(ctx, userID)
	if errors.Is(err, pendingRepo.ErrPendingNotFound) {
		return nil, nil
	}
	if err != nil {
		s.log.Error("Get: repository error user=%d: %v", userID, err)
		return nil, fmt.Errorf("%w: Get - repository error: %v", ErrInternal, err)
	}

	if action.Expired(s.now()) {
		s.log.Info("Get: pending action expired user=%d action=%s", userID, action.Kind)
		if err := s.repo.Delete(ctx, userID); err != nil {
			s.log.Error("Get: failed to delete expired action user=%d: %v", userID, err)
		}
		return nil, nil
	}
	return action, nil
}

// Begin начинает новый шаг; при живом активном шаге возвращает ErrFlowActive
func (s *Service) Begin(ctx context.Context, action *domain.PendingAction) error {
	active, err := s.Get(ctx, action.UserID)
	if err != nil {
		return err
	}
	if active != nil {
		s.log.Warn("Begin: flow already active user=%d active=%s requested=%s",
			action.UserID, active.Kind, action.Kind)
		return ErrFlowActive
	}
	return s.Replace(ctx, action)
}

// Replace записывает шаг, замещая любой прежний
// Используется сервисными потоками, перехватывающими диалог (輸入客資, 修正)
func (s *Service) Replace(ctx context.Context, action *domain.PendingAction) error {
	action.CreatedAt = s.now()
	if err := s.repo.Set(ctx, action); err != nil {
		s.log.Error("Replace: repository error user=%d action=%s: %v", action.UserID, action.Kind, err)
		return fmt.Errorf("%w: Replace - repository error: %v", ErrInternal, err)
	}
	s.log.Info("Replace: pending action set user=%d action=%s", action.UserID, action.Kind)
	return nil
}

// Clear снимает активный шаг пользователя; отсутствие шага не ошибка
func (s *Service) Clear(ctx context.Context, userID int64) error {
	if err := s.repo.Delete(ctx, userID); err != nil {
		s.log.Error("Clear: repository error user=%d: %v", userID, err)
		return fmt.Errorf("%w: Clear - repository error: %v", ErrInternal, err)
	}
	return nil
}

// Sweep удаляет все просроченные шаги; возвращает количество удалённых
func (s *Service) Sweep(ctx context.Context) (int64, error) {
	before := s.now().Add(-domain.PendingTTL)
	n, err := s.repo.DeleteExpired(ctx, before)
	if err != nil {
		s.log.Error("Sweep: repository error: %v", err)
		return 0, fmt.Errorf("%w: Sweep - repository error: %v", ErrInternal, err)
	}
	if n > 0 {
		s.log.Info("Sweep: removed %d expired pending actions", n)
	}
	return n, nil
}
