package groups

import (
	"context"
	"fmt"

	"github.com/goodgood52099-bit/XFWH-BOT/internal/domain"
)

// Service реестр чат-групп: регистрация при первом контакте
// и повышение до роли staff по списку администраторов
type Service struct {
	repo   GroupRepository
	txMgr  TxManager
	admins AdminList
	log    Logger
}

// NewService создает новый экземпляр реестра чат-групп
func NewService(repo GroupRepository, txMgr TxManager, admins AdminList, log Logger) *Service {
	return &Service{repo: repo, txMgr: txMgr, admins: admins, log: log}
}

// RegisterOnContact регистрирует группу при входящем событии с ролью business
// Личные чаты не регистрируются; уже известная группа не меняется,
// так что контакт не понижает роль staff
func (s *Service) RegisterOnContact(ctx context.Context, chatID int64, kind domain.ChatKind) error {
	if !kind.IsGroup() {
		return nil
	}
	if err := s.repo.EnsureRegistered(ctx, chatID); err != nil {
		s.log.Error("RegisterOnContact: repository error chat=%d: %v", chatID, err)
		return fmt.Errorf("%w: RegisterOnContact - repository error: %v", ErrInternal, err)
	}
	return nil
}

// Promote повышает группу до роли staff; доступно только администраторам
// Регистрация и смена роли идут одной транзакцией, чтобы повышение
// незнакомой группы не оставило запись без роли
func (s *Service) Promote(ctx context.Context, chatID int64, userID int64) error {
	if !s.admins.IsAdmin(userID) {
		s.log.Warn("Promote: denied chat=%d user=%d", chatID, userID)
		return ErrUnauthorized
	}

	err := s.txMgr.DoSerializable(ctx, func(txCtx context.Context) error {
		if err := s.repo.EnsureRegistered(txCtx, chatID); err != nil {
			return err
		}
		return s.repo.SetRole(txCtx, chatID, domain.RoleStaff)
	})
	if err != nil {
		s.log.Error("Promote: repository error chat=%d: %v", chatID, err)
		return fmt.Errorf("%w: Promote - repository error: %v", ErrInternal, err)
	}
	s.log.Info("Promote: chat=%d promoted to staff by user=%d", chatID, userID)
	return nil
}

// IsAdmin возвращает true для пользователя из списка администраторов
func (s *Service) IsAdmin(userID int64) bool {
	return s.admins.IsAdmin(userID)
}

// ListByRole возвращает группы с указанной ролью
func (s *Service) ListByRole(ctx context.Context, role domain.GroupRole) ([]domain.Group, error) {
	groups, err := s.repo.ListByRole(ctx, role)
	if err != nil {
		s.log.Error("ListByRole: repository error role=%s: %v", role, err)
		return nil, fmt.Errorf("%w: ListByRole - repository error: %v", ErrInternal, err)
	}
	return groups, nil
}
