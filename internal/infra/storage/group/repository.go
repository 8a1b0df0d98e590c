package group

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/goodgood52099-bit/XFWH-BOT/internal/domain"
	"github.com/goodgood52099-bit/XFWH-BOT/pkg/dbmetrics"
	"github.com/goodgood52099-bit/XFWH-BOT/pkg/psqlbuilder"
)

// Переиспользуем интерфейсы из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor

// Repository репозиторий реестра чат-групп
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория чат-групп
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// EnsureRegistered регистрирует группу с ролью business, если её ещё нет
// Существующая запись не меняется: повторный контакт не понижает роль staff
func (r *Repository) EnsureRegistered(ctx context.Context, chatID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("chat_groups").
		Columns("chat_id", "role").
		Values(chatID, domain.RoleBusiness).
		Suffix("ON CONFLICT (chat_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: EnsureRegistered - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: EnsureRegistered - execute insert: %v", ErrExecQuery, err)
	}
	return nil
}

// SetRole выставляет роль группы, создавая запись при необходимости
func (r *Repository) SetRole(ctx context.Context, chatID int64, role domain.GroupRole) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("chat_groups").
		Columns("chat_id", "role").
		Values(chatID, role).
		Suffix("ON CONFLICT (chat_id) DO UPDATE SET role = EXCLUDED.role, updated_at = now()").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: SetRole - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: SetRole - execute insert: %v", ErrExecQuery, err)
	}
	return nil
}

// ListByRole возвращает группы с указанной ролью
func (r *Repository) ListByRole(ctx context.Context, role domain.GroupRole) ([]domain.Group, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("chat_id", "role").
		From("chat_groups").
		Where(squirrel.Eq{"role": role}).
		OrderBy("chat_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByRole - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByRole - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	var groups []domain.Group
	for rows.Next() {
		var g domain.Group
		if err := rows.Scan(&g.ChatID, &g.Role); err != nil {
			return nil, fmt.Errorf("%w: ListByRole - scan group: %v", ErrScanRow, err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByRole - iterate rows: %v", ErrScanRow, err)
	}
	return groups, nil
}
