package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines data access methods for working windows.
type Repository interface {
	Create(ctx context.Context, w *WorkingWindow) error
	GetByID(ctx context.Context, id int64) (*WorkingWindow, error)
	ListByBarber(ctx context.Context, barberID string) ([]*WorkingWindow, error)
	// ListForDay returns the active windows of a barber on one weekday, lowest id first.
	ListForDay(ctx context.Context, barberID string, day Weekday) ([]*WorkingWindow, error)
	Update(ctx context.Context, w *WorkingWindow) error
	Delete(ctx context.Context, id int64) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var windowColumns = []string{
	"id", "barber_id", "day_of_week", "start_time::text", "end_time::text", "is_active", "created_at",
}

func scanWindow(row pgx.Row) (*WorkingWindow, error) {
	var (
		w          WorkingWindow
		day        int
		start, end string
	)
	if err := row.Scan(&w.ID, &w.BarberID, &day, &start, &end, &w.IsActive, &w.CreatedAt); err != nil {
		return nil, err
	}

	var err error
	w.DayOfWeek = Weekday(day)
	if w.StartTime, err = ParseClock(start); err != nil {
		return nil, fmt.Errorf("parse start_time %q: %w", start, err)
	}
	if w.EndTime, err = ParseClock(end); err != nil {
		return nil, fmt.Errorf("parse end_time %q: %w", end, err)
	}
	return &w, nil
}

func (r *pgxRepository) Create(ctx context.Context, w *WorkingWindow) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.working_windows").
		Columns("barber_id", "day_of_week", "start_time", "end_time", "is_active").
		Values(w.BarberID, int(w.DayOfWeek), w.StartTime.String(), w.EndTime.String(), w.IsActive).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create window query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&w.ID, &w.CreatedAt); err != nil {
		return fmt.Errorf("create window failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id int64) (*WorkingWindow, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(windowColumns...).
		From("public.working_windows").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get window query failed: %w", err)
	}

	w, err := scanWindow(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWindowNotFound
		}
		return nil, fmt.Errorf("get window failed: %w", err)
	}
	return w, nil
}

func (r *pgxRepository) ListByBarber(ctx context.Context, barberID string) ([]*WorkingWindow, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	return r.list(ctx, psql.Select(windowColumns...).
		From("public.working_windows").
		Where(squirrel.Eq{"barber_id": barberID}).
		OrderBy("day_of_week ASC", "id ASC"))
}

func (r *pgxRepository) ListForDay(ctx context.Context, barberID string, day Weekday) ([]*WorkingWindow, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	return r.list(ctx, psql.Select(windowColumns...).
		From("public.working_windows").
		Where(squirrel.Eq{"barber_id": barberID, "day_of_week": int(day), "is_active": true}).
		OrderBy("id ASC"))
}

func (r *pgxRepository) list(ctx context.Context, q squirrel.SelectBuilder) ([]*WorkingWindow, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list windows query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list windows failed: %w", err)
	}
	defer rows.Close()

	var windows []*WorkingWindow
	for rows.Next() {
		w, err := scanWindow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan window failed: %w", err)
		}
		windows = append(windows, w)
	}
	return windows, rows.Err()
}

func (r *pgxRepository) Update(ctx context.Context, w *WorkingWindow) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.working_windows").
		Set("day_of_week", int(w.DayOfWeek)).
		Set("start_time", w.StartTime.String()).
		Set("end_time", w.EndTime.String()).
		Set("is_active", w.IsActive).
		Where(squirrel.Eq{"id": w.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update window query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update window failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrWindowNotFound
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id int64) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.working_windows").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete window query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete window failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrWindowNotFound
	}
	return nil
}
