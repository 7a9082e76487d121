package church

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines persistence for churches.
type Repository interface {
	// CreateWithOwner inserts the church and the founder's owner membership
	// in one transaction.
	CreateWithOwner(ctx context.Context, ch *Church, ownerUserID string) error
	GetByID(ctx context.Context, id string) (*Church, error)
	List(ctx context.Context, filter Filter) ([]*Church, int, error)
	Update(ctx context.Context, ch *Church) error
	Delete(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

// NewPgxRepository creates a pgx-backed church repository.
func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) CreateWithOwner(ctx context.Context, ch *Church, ownerUserID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create church tx failed: %w", err)
	}
	defer tx.Rollback(ctx)

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Insert("public.churches").
		Columns("name", "description", "is_active").
		Values(ch.Name, ch.Description, ch.IsActive).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create church query failed: %w", err)
	}
	if err := tx.QueryRow(ctx, query, args...).Scan(&ch.ID, &ch.CreatedAt); err != nil {
		return fmt.Errorf("create church failed: %w", err)
	}

	query, args, err = psql.Insert("public.memberships").
		Columns("user_id", "church_id", "role").
		Values(ownerUserID, ch.ID, "owner").
		ToSql()
	if err != nil {
		return fmt.Errorf("build founder membership query failed: %w", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("create founder membership failed: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Church, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("id", "name", "description", "logo_path", "created_at", "is_active").
		From("public.churches").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get church query failed: %w", err)
	}

	var ch Church
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&ch.ID, &ch.Name, &ch.Description, &ch.LogoPath, &ch.CreatedAt, &ch.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get church failed: %w", err)
	}
	return &ch, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Church, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(
		"id", "name", "description", "logo_path", "created_at", "is_active",
		"count(*) OVER() as total_count",
	).
		From("public.churches").
		Where(squirrel.Eq{"is_active": true})

	if filter.Name != "" {
		query = query.Where(squirrel.ILike{"name": "%" + filter.Name + "%"})
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	query = query.OrderBy("name ASC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list churches query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list churches failed: %w", err)
	}
	defer rows.Close()

	var churches []*Church
	var total int
	for rows.Next() {
		var ch Church
		if err := rows.Scan(
			&ch.ID, &ch.Name, &ch.Description, &ch.LogoPath,
			&ch.CreatedAt, &ch.IsActive, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan church failed: %w", err)
		}
		churches = append(churches, &ch)
	}

	return churches, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, ch *Church) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.churches").
		Set("name", ch.Name).
		Set("description", ch.Description).
		Set("logo_path", ch.LogoPath).
		Set("is_active", ch.IsActive).
		Where(squirrel.Eq{"id": ch.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update church query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update church failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.churches").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete church query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete church failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
