package day

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/goodgood52099-bit/XFWH-BOT/internal/domain"
	"github.com/goodgood52099-bit/XFWH-BOT/pkg/dbmetrics"
	"github.com/goodgood52099-bit/XFWH-BOT/pkg/psqlbuilder"
)

// Repository репозиторий дневных документов
// Один документ на календарную дату, хранится как jsonb
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория дневных документов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Get возвращает документ указанного дня
func (r *Repository) Get(ctx context.Context, dayKey string) (*domain.DayDocument, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("doc").
		From("day_documents").
		Where(squirrel.Eq{"day": dayKey}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Get - build select query: %v", ErrBuildQuery, err)
	}

	var raw []byte
	err = executor.QueryRowContext(ctx, query, args...).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, ErrDayNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Get - scan document: %v", ErrScanRow, err)
	}

	var doc domain.DayDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: Get - unmarshal day %s: %v", ErrDecodeDoc, dayKey, err)
	}
	return &doc, nil
}

// Upsert записывает документ дня, перезаписывая существующий
func (r *Repository) Upsert(ctx context.Context, doc *domain.DayDocument) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: Upsert - marshal day %s: %v", ErrEncodeDoc, doc.Date, err)
	}

	query, args, err := psqlbuilder.Insert("day_documents").
		Columns("day", "doc").
		Values(doc.Date, raw).
		Suffix("ON CONFLICT (day) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Upsert - execute insert: %v", ErrExecQuery, err)
	}
	return nil
}

// Delete удаляет документ указанного дня; отсутствие строки не ошибка
func (r *Repository) Delete(ctx context.Context, dayKey string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("day_documents").
		Where(squirrel.Eq{"day": dayKey}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}
	return nil
}

// DeleteBefore удаляет документы дней раньше указанного; возвращает число удалённых строк
func (r *Repository) DeleteBefore(ctx context.Context, dayKey string) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("day_documents").
		Where(squirrel.Lt{"day": dayKey}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteBefore - build delete query: %v", ErrBuildQuery, err)
	}

	res, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteBefore - execute delete: %v", ErrExecQuery, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
