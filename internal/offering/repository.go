package offering

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, o *Offering) error
	GetByID(ctx context.Context, id string) (*Offering, error)
	List(ctx context.Context, filter Filter) ([]*Offering, int, error)
	Update(ctx context.Context, o *Offering) error
	Delete(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Create(ctx context.Context, o *Offering) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.services").
		Columns("name", "description", "price_cents", "duration_minutes", "is_active").
		Values(o.Name, o.Description, o.PriceCents, o.DurationMinutes, o.IsActive).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create service query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&o.ID, &o.CreatedAt); err != nil {
		return fmt.Errorf("create service failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Offering, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(
		"id", "name", "description", "price_cents", "duration_minutes", "is_active", "created_at",
	).
		From("public.services").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get service query failed: %w", err)
	}

	var o Offering
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&o.ID, &o.Name, &o.Description, &o.PriceCents, &o.DurationMinutes, &o.IsActive, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get service failed: %w", err)
	}
	return &o, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Offering, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	queryBuilder := psql.Select(
		"id", "name", "description", "price_cents", "duration_minutes", "is_active", "created_at",
		"count(*) OVER() as total_count",
	).
		From("public.services")

	if filter.Name != "" {
		queryBuilder = queryBuilder.Where(squirrel.ILike{"name": "%" + filter.Name + "%"})
	}
	if filter.IsActive != nil {
		queryBuilder = queryBuilder.Where(squirrel.Eq{"is_active": *filter.IsActive})
	}

	// Sorting
	orderBy := "name"
	if filter.SortBy != "" {
		orderBy = filter.SortBy
	}
	orderDir := "ASC"
	if filter.SortOrder == "DESC" {
		orderDir = "DESC"
	}
	queryBuilder = queryBuilder.OrderBy(orderBy + " " + orderDir)

	// Pagination
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize
	queryBuilder = queryBuilder.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list services query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list services failed: %w", err)
	}
	defer rows.Close()

	var items []*Offering
	var total int
	for rows.Next() {
		var o Offering
		if err := rows.Scan(
			&o.ID, &o.Name, &o.Description, &o.PriceCents, &o.DurationMinutes, &o.IsActive, &o.CreatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan service failed: %w", err)
		}
		items = append(items, &o)
	}
	return items, total, rows.Err()
}

func (r *pgxRepository) Update(ctx context.Context, o *Offering) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.services").
		Set("name", o.Name).
		Set("description", o.Description).
		Set("price_cents", o.PriceCents).
		Set("duration_minutes", o.DurationMinutes).
		Set("is_active", o.IsActive).
		Where(squirrel.Eq{"id": o.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update service query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update service failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.services").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete service query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete service failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
