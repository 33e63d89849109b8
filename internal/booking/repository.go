package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/barbershop-backend/internal/db"
)

type Repository interface {
	// WithTx runs fn against a repository bound to one transaction.
	WithTx(ctx context.Context, fn func(repo Repository) error) error
	// LockBarberDay serializes writers for one barber and shop-local date until the transaction ends.
	LockBarberDay(ctx context.Context, barberID string, day string) error
	// ListActive returns pending and confirmed bookings of a barber intersecting [from, to).
	ListActive(ctx context.Context, barberID string, from, to time.Time, excludeID string) ([]*Booking, error)

	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	// GetForUpdate row-locks the booking; only meaningful inside WithTx.
	GetForUpdate(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	Update(ctx context.Context, b *Booking) error
	Delete(ctx context.Context, id string) error
	// CompleteElapsed marks confirmed bookings that ended at or before now as completed.
	CompleteElapsed(ctx context.Context, now time.Time) ([]*Booking, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
	db   db.DBTX
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool, db: pool}
}

var bookingColumns = []string{
	"b.id", "b.barber_id", "br.name", "b.customer_name", "b.customer_contact",
	"b.service_id", "b.service_name", "b.price_cents", "b.duration_minutes",
	"b.start_time", "b.end_time", "b.status", "b.owner_id", "b.cancel_token_hash", "b.notes",
	"b.created_at", "b.updated_at",
}

func scanBooking(row pgx.Row, extra ...any) (*Booking, error) {
	var b Booking
	dest := []any{
		&b.ID, &b.BarberID, &b.BarberName, &b.CustomerName, &b.CustomerContact,
		&b.Service.ServiceID, &b.Service.Name, &b.Service.PriceCents, &b.Service.DurationMinutes,
		&b.StartTime, &b.EndTime, &b.Status, &b.OwnerID, &b.CancelTokenHash, &b.Notes,
		&b.CreatedAt, &b.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &b, nil
}

// mapWriteError turns constraint violations into domain errors.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.ExclusionViolation:
			return ErrTimeConflict
		case pgerrcode.ForeignKeyViolation:
			if pgErr.ConstraintName == "bookings_barber_id_fkey" {
				return ErrBarberNotFound
			}
		}
	}
	return err
}

func (r *pgxRepository) WithTx(ctx context.Context, fn func(repo Repository) error) error {
	if r.pool == nil {
		// Already inside a transaction.
		return fn(r)
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&pgxRepository{db: tx})
	})
}

func (r *pgxRepository) LockBarberDay(ctx context.Context, barberID string, day string) error {
	if _, err := r.db.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", barberID+"|"+day); err != nil {
		return fmt.Errorf("lock barber day failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) ListActive(ctx context.Context, barberID string, from, to time.Time, excludeID string) ([]*Booking, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	q := psql.Select(bookingColumns...).
		From("public.bookings b").
		Join("public.barbers br ON br.id = b.barber_id").
		Where(squirrel.Eq{"b.barber_id": barberID}).
		Where(squirrel.Eq{"b.status": []string{string(StatusPending), string(StatusConfirmed)}}).
		Where(squirrel.Lt{"b.start_time": to}).
		Where(squirrel.Gt{"b.end_time": from}).
		OrderBy("b.start_time ASC")
	if excludeID != "" {
		q = q.Where(squirrel.NotEq{"b.id": excludeID})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list active bookings query failed: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list active bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (r *pgxRepository) Create(ctx context.Context, b *Booking) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.bookings").
		Columns(
			"barber_id", "customer_name", "customer_contact",
			"service_id", "service_name", "price_cents", "duration_minutes",
			"start_time", "end_time", "status", "owner_id", "cancel_token_hash", "notes",
		).
		Values(
			b.BarberID, b.CustomerName, b.CustomerContact,
			b.Service.ServiceID, b.Service.Name, b.Service.PriceCents, b.Service.DurationMinutes,
			b.StartTime, b.EndTime, b.Status, b.OwnerID, b.CancelTokenHash, b.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if mapped := mapWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("create booking failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	return r.get(ctx, id, false)
}

func (r *pgxRepository) GetForUpdate(ctx context.Context, id string) (*Booking, error) {
	return r.get(ctx, id, true)
}

func (r *pgxRepository) get(ctx context.Context, id string, forUpdate bool) (*Booking, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	q := psql.Select(bookingColumns...).
		From("public.bookings b").
		Join("public.barbers br ON br.id = b.barber_id").
		Where(squirrel.Eq{"b.id": id})
	if forUpdate {
		q = q.Suffix("FOR UPDATE OF b")
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	q := psql.Select(append(bookingColumns, "count(*) OVER() as total_count")...).
		From("public.bookings b").
		Join("public.barbers br ON br.id = b.barber_id")

	if filter.BarberID != "" {
		q = q.Where(squirrel.Eq{"b.barber_id": filter.BarberID})
	}
	if filter.OwnerID != "" {
		q = q.Where(squirrel.Eq{"b.owner_id": filter.OwnerID})
	}
	if filter.Status != "" {
		q = q.Where(squirrel.Eq{"b.status": filter.Status})
	}
	// Intersection with [From, To).
	if filter.From != nil {
		q = q.Where(squirrel.Gt{"b.end_time": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.Lt{"b.start_time": *filter.To})
	}

	// SortBy is whitelisted by the handler.
	orderBy := "b.start_time"
	if filter.SortBy != "" {
		orderBy = "b." + filter.SortBy
	}
	orderDir := "DESC"
	if filter.SortOrder == "ASC" {
		orderDir = "ASC"
	}
	q = q.OrderBy(orderBy + " " + orderDir)

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize
	q = q.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	query, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	var total int
	for rows.Next() {
		b, err := scanBooking(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, total, rows.Err()
}

func (r *pgxRepository) Update(ctx context.Context, b *Booking) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.bookings").
		Set("customer_name", b.CustomerName).
		Set("customer_contact", b.CustomerContact).
		Set("start_time", b.StartTime).
		Set("end_time", b.EndTime).
		Set("status", b.Status).
		Set("notes", b.Notes).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": b.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update booking query failed: %w", err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if mapped := mapWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("update booking failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete booking query failed: %w", err)
	}

	ct, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete booking failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) CompleteElapsed(ctx context.Context, now time.Time) ([]*Booking, error) {
	query := `
		WITH b AS (
			UPDATE public.bookings
			SET status = $1, updated_at = now()
			WHERE status = $2 AND end_time <= $3
			RETURNING *
		)
		SELECT ` + strings.Join(bookingColumns, ", ") + `
		FROM b
		JOIN public.barbers br ON br.id = b.barber_id
		ORDER BY b.start_time ASC`

	rows, err := r.db.Query(ctx, query, StatusCompleted, StatusConfirmed, now)
	if err != nil {
		return nil, fmt.Errorf("complete elapsed bookings failed: %w", err)
	}
	defer rows.Close()

	var completed []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		completed = append(completed, b)
	}
	return completed, rows.Err()
}
