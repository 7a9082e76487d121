package invite

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

// Repository defines persistence for invites.
type Repository interface {
	Create(ctx context.Context, inv *Invite) error
	GetByCode(ctx context.Context, code string) (*Invite, error)
	GetByID(ctx context.Context, id string) (*Invite, error)
	List(ctx context.Context, churchID string, filter Filter) ([]*Invite, int, error)
	Revoke(ctx context.Context, id string) error

	// ClaimUse atomically consumes one use, failing if the invite is
	// revoked, expired or exhausted at the database's clock.
	ClaimUse(ctx context.Context, id string) error
	// ReleaseUse undoes a claim when the follow-up membership insert fails.
	ReleaseUse(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

// NewPgxRepository creates a pgx-backed invite repository.
func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

const inviteColumns = "id, code, church_id, campus_id, created_by, created_at, expires_at, max_uses, use_count, revoked"

func (r *pgxRepository) Create(ctx context.Context, inv *Invite) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.invites").
		Columns("code", "church_id", "campus_id", "created_by", "expires_at", "max_uses").
		Values(inv.Code, inv.ChurchID, inv.CampusID, inv.CreatedBy, inv.ExpiresAt, inv.MaxUses).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create invite query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&inv.ID, &inv.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrCodeTaken
		}
		return fmt.Errorf("create invite failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByCode(ctx context.Context, code string) (*Invite, error) {
	return r.getWhere(ctx, squirrel.Eq{"code": code})
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Invite, error) {
	return r.getWhere(ctx, squirrel.Eq{"id": id})
}

func (r *pgxRepository) getWhere(ctx context.Context, where squirrel.Eq) (*Invite, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(inviteColumns).
		From("public.invites").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get invite query failed: %w", err)
	}

	var inv Invite
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&inv.ID, &inv.Code, &inv.ChurchID, &inv.CampusID, &inv.CreatedBy,
		&inv.CreatedAt, &inv.ExpiresAt, &inv.MaxUses, &inv.UseCount, &inv.Revoked,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get invite failed: %w", err)
	}
	return &inv, nil
}

func (r *pgxRepository) List(ctx context.Context, churchID string, filter Filter) ([]*Invite, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(inviteColumns + ", count(*) OVER() as total_count").
		From("public.invites").
		Where(squirrel.Eq{"church_id": churchID})

	if filter.CampusID != "" {
		query = query.Where(squirrel.Eq{"campus_id": filter.CampusID})
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	query = query.OrderBy("created_at DESC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list invites query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list invites failed: %w", err)
	}
	defer rows.Close()

	var invites []*Invite
	var total int
	for rows.Next() {
		var inv Invite
		if err := rows.Scan(
			&inv.ID, &inv.Code, &inv.ChurchID, &inv.CampusID, &inv.CreatedBy,
			&inv.CreatedAt, &inv.ExpiresAt, &inv.MaxUses, &inv.UseCount, &inv.Revoked,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan invite failed: %w", err)
		}
		invites = append(invites, &inv)
	}

	return invites, total, nil
}

func (r *pgxRepository) Revoke(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.invites").
		Set("revoked", true).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build revoke invite query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("revoke invite failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) ClaimUse(ctx context.Context, id string) error {
	// The WHERE clause re-checks validity so two concurrent redemptions
	// cannot overshoot max_uses.
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.invites").
		Set("use_count", squirrel.Expr("use_count + 1")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"revoked": false}).
		Where(squirrel.Expr("(expires_at IS NULL OR expires_at > now())")).
		Where(squirrel.Expr("(max_uses = 0 OR use_count < max_uses)")).
		ToSql()
	if err != nil {
		return fmt.Errorf("build claim use query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("claim invite use failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrExhausted
	}
	return nil
}

func (r *pgxRepository) ReleaseUse(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.invites").
		Set("use_count", squirrel.Expr("GREATEST(use_count - 1, 0)")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build release use query failed: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("release invite use failed: %w", err)
	}
	return nil
}
