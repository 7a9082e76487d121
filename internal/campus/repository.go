package campus

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines persistence for campuses.
type Repository interface {
	Create(ctx context.Context, cp *Campus) error
	GetByID(ctx context.Context, id string) (*Campus, error)
	ListByChurch(ctx context.Context, churchID string) ([]*Campus, error)
	Update(ctx context.Context, cp *Campus) error
	Delete(ctx context.Context, id string) error
	ExistsInChurch(ctx context.Context, churchID, campusID string) (bool, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

// NewPgxRepository creates a pgx-backed campus repository.
func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Create(ctx context.Context, cp *Campus) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.campuses").
		Columns("church_id", "name", "address").
		Values(cp.ChurchID, cp.Name, cp.Address).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create campus query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&cp.ID, &cp.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrNameTaken
		}
		return fmt.Errorf("create campus failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Campus, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("id", "church_id", "name", "address", "created_at").
		From("public.campuses").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get campus query failed: %w", err)
	}

	var cp Campus
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&cp.ID, &cp.ChurchID, &cp.Name, &cp.Address, &cp.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get campus failed: %w", err)
	}
	return &cp, nil
}

func (r *pgxRepository) ListByChurch(ctx context.Context, churchID string) ([]*Campus, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("id", "church_id", "name", "address", "created_at").
		From("public.campuses").
		Where(squirrel.Eq{"church_id": churchID}).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list campuses query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list campuses failed: %w", err)
	}
	defer rows.Close()

	var campuses []*Campus
	for rows.Next() {
		var cp Campus
		if err := rows.Scan(&cp.ID, &cp.ChurchID, &cp.Name, &cp.Address, &cp.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan campus failed: %w", err)
		}
		campuses = append(campuses, &cp)
	}

	return campuses, nil
}

func (r *pgxRepository) Update(ctx context.Context, cp *Campus) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.campuses").
		Set("name", cp.Name).
		Set("address", cp.Address).
		Where(squirrel.Eq{"id": cp.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update campus query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrNameTaken
		}
		return fmt.Errorf("update campus failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	// campus_id columns elsewhere are ON DELETE SET NULL, so members and
	// ministries pinned to this campus fall back to church-wide.
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.campuses").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete campus query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete campus failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) ExistsInChurch(ctx context.Context, churchID, campusID string) (bool, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sub, args, err := psql.Select("1").
		From("public.campuses").
		Where(squirrel.Eq{"id": campusID}).
		Where(squirrel.Eq{"church_id": churchID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build campus exists query failed: %w", err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, "SELECT EXISTS ("+sub+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("campus exists check failed: %w", err)
	}
	return exists, nil
}
