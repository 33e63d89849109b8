package barber

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines data access methods for barbers.
type Repository interface {
	Create(ctx context.Context, b *Barber) error
	GetByID(ctx context.Context, id string) (*Barber, error)
	List(ctx context.Context, filter Filter) ([]*Barber, int, error)
	Update(ctx context.Context, b *Barber) error
	Delete(ctx context.Context, id string) error
	SetAvatar(ctx context.Context, id string, fileID *string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Create(ctx context.Context, b *Barber) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.barbers").
		Columns("name", "bio", "is_active").
		Values(b.Name, b.Bio, b.IsActive).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create barber query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return fmt.Errorf("create barber failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Barber, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(
		"id", "name", "bio", "is_active", "avatar_file_id", "created_at", "updated_at",
	).
		From("public.barbers").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get barber query failed: %w", err)
	}

	var b Barber
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&b.ID, &b.Name, &b.Bio, &b.IsActive, &b.AvatarFileID, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get barber failed: %w", err)
	}
	return &b, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Barber, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(
		"id", "name", "bio", "is_active", "avatar_file_id", "created_at", "updated_at",
		"count(*) OVER() as total_count",
	).
		From("public.barbers")

	if filter.Name != "" {
		query = query.Where(squirrel.ILike{"name": "%" + filter.Name + "%"})
	}
	if filter.IsActive != nil {
		query = query.Where(squirrel.Eq{"is_active": *filter.IsActive})
	}

	// SortBy is whitelisted by the handler.
	orderBy := "name"
	if filter.SortBy != "" {
		orderBy = filter.SortBy
	}
	orderDir := "ASC"
	if filter.SortOrder == "DESC" {
		orderDir = "DESC"
	}
	query = query.OrderBy(orderBy + " " + orderDir)

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list barbers query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list barbers failed: %w", err)
	}
	defer rows.Close()

	var barbers []*Barber
	var total int
	for rows.Next() {
		var b Barber
		if err := rows.Scan(
			&b.ID, &b.Name, &b.Bio, &b.IsActive, &b.AvatarFileID, &b.CreatedAt, &b.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan barber failed: %w", err)
		}
		barbers = append(barbers, &b)
	}
	return barbers, total, rows.Err()
}

func (r *pgxRepository) Update(ctx context.Context, b *Barber) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.barbers").
		Set("name", b.Name).
		Set("bio", b.Bio).
		Set("is_active", b.IsActive).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": b.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update barber query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update barber failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.barbers").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete barber query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete barber failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) SetAvatar(ctx context.Context, id string, fileID *string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.barbers").
		Set("avatar_file_id", fileID).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set avatar query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set barber avatar failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
