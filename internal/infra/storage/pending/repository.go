package pending

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/goodgood52099-bit/XFWH-BOT/internal/domain"
	"github.com/goodgood52099-bit/XFWH-BOT/pkg/dbmetrics"
	"github.com/goodgood52099-bit/XFWH-BOT/pkg/psqlbuilder"
)

// Переиспользуем интерфейсы из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor

// Repository репозиторий диалоговых состояний
// Одна строка на пользователя: активный шаг либо отсутствие строки
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория диалоговых состояний
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Get возвращает активный шаг пользователя
func (r *Repository) Get(ctx context.Context, userID int64) (*domain.PendingAction, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("payload", "created_at").
		From("pending_actions").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Get - build select query: %v", ErrBuildQuery, err)
	}

	var raw []byte
	var createdAt time.Time
	err = executor.QueryRowContext(ctx, query, args...).Scan(&raw, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrPendingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Get - scan pending action: %v", ErrScanRow, err)
	}

	var action domain.PendingAction
	if err := json.Unmarshal(raw, &action); err != nil {
		return nil, fmt.Errorf("%w: Get - unmarshal payload for user=%d: %v", ErrDecodePayload, userID, err)
	}
	action.UserID = userID
	action.CreatedAt = createdAt
	return &action, nil
}

// Set записывает шаг пользователя, заменяя прежний
func (r *Repository) Set(ctx context.Context, action *domain.PendingAction) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	raw, err := json.Marshal(action)
	if err != nil {
		return fmt.Errorf("%w: Set - marshal payload for user=%d: %v", ErrEncodePayload, action.UserID, err)
	}

	query, args, err := psqlbuilder.Insert("pending_actions").
		Columns("user_id", "payload", "created_at").
		Values(action.UserID, raw, action.CreatedAt).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET payload = EXCLUDED.payload, created_at = EXCLUDED.created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Set - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Set - execute insert: %v", ErrExecQuery, err)
	}
	return nil
}

// Delete удаляет шаг пользователя; отсутствие строки не ошибка
func (r *Repository) Delete(ctx context.Context, userID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("pending_actions").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}
	return nil
}

// DeleteExpired удаляет шаги, созданные раньше указанного момента
// Возвращает количество удалённых строк
func (r *Repository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("pending_actions").
		Where(squirrel.Lt{"created_at": before}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteExpired - build delete query: %v", ErrBuildQuery, err)
	}

	res, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteExpired - execute delete: %v", ErrExecQuery, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
