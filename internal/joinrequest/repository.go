package joinrequest

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

// Repository defines persistence for join requests.
type Repository interface {
	Create(ctx context.Context, req *JoinRequest) error
	GetByID(ctx context.Context, id string) (*JoinRequest, error)
	ListForChurch(ctx context.Context, churchID string, filter Filter) ([]*JoinRequest, int, error)
	ListForUser(ctx context.Context, userID string) ([]*JoinRequest, error)

	// ApproveWithMembership marks the request approved and inserts the
	// resulting member-level membership in one transaction.
	ApproveWithMembership(ctx context.Context, id, reviewerID string) error
	Reject(ctx context.Context, id, reviewerID string) error
	// DeletePending removes a request that has not been decided yet.
	DeletePending(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

// NewPgxRepository creates a pgx-backed join request repository.
func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

const requestColumns = `r.id, r.user_id, COALESCE(u.display_name, u.email) AS user_name,
	r.church_id, r.campus_id, r.message, r.status, r.created_at, r.reviewed_by, r.reviewed_at`

func (r *pgxRepository) Create(ctx context.Context, req *JoinRequest) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.join_requests").
		Columns("user_id", "church_id", "campus_id", "message").
		Values(req.UserID, req.ChurchID, req.CampusID, req.Message).
		Suffix("RETURNING id, status, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create join request query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&req.ID, &req.Status, &req.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			// Partial unique index on (user_id, church_id) WHERE status = 'pending'.
			return ErrAlreadyPending
		}
		return fmt.Errorf("create join request failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*JoinRequest, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(requestColumns).
		From("public.join_requests r").
		Join("public.users u ON u.id = r.user_id").
		Where(squirrel.Eq{"r.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get join request query failed: %w", err)
	}

	req, err := scanRequest(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get join request failed: %w", err)
	}
	return req, nil
}

func (r *pgxRepository) ListForChurch(ctx context.Context, churchID string, filter Filter) ([]*JoinRequest, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(requestColumns + ", count(*) OVER() as total_count").
		From("public.join_requests r").
		Join("public.users u ON u.id = r.user_id").
		Where(squirrel.Eq{"r.church_id": churchID})

	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"r.status": filter.Status})
	}
	if filter.CampusID != "" {
		query = query.Where(squirrel.Eq{"r.campus_id": filter.CampusID})
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	query = query.OrderBy("r.created_at ASC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list join requests query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list join requests failed: %w", err)
	}
	defer rows.Close()

	var requests []*JoinRequest
	var total int
	for rows.Next() {
		var req JoinRequest
		if err := rows.Scan(
			&req.ID, &req.UserID, &req.UserName, &req.ChurchID, &req.CampusID,
			&req.Message, &req.Status, &req.CreatedAt, &req.ReviewedBy, &req.ReviewedAt,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan join request failed: %w", err)
		}
		requests = append(requests, &req)
	}

	return requests, total, nil
}

func (r *pgxRepository) ListForUser(ctx context.Context, userID string) ([]*JoinRequest, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sql, args, err := psql.Select(requestColumns).
		From("public.join_requests r").
		Join("public.users u ON u.id = r.user_id").
		Where(squirrel.Eq{"r.user_id": userID}).
		OrderBy("r.created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list user join requests query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list user join requests failed: %w", err)
	}
	defer rows.Close()

	var requests []*JoinRequest
	for rows.Next() {
		var req JoinRequest
		if err := rows.Scan(
			&req.ID, &req.UserID, &req.UserName, &req.ChurchID, &req.CampusID,
			&req.Message, &req.Status, &req.CreatedAt, &req.ReviewedBy, &req.ReviewedAt,
		); err != nil {
			return nil, fmt.Errorf("scan join request failed: %w", err)
		}
		requests = append(requests, &req)
	}

	return requests, nil
}

func (r *pgxRepository) ApproveWithMembership(ctx context.Context, id, reviewerID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin approve transaction failed: %w", err)
	}
	defer tx.Rollback(ctx)

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.join_requests").
		Set("status", StatusApproved).
		Set("reviewed_by", reviewerID).
		Set("reviewed_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id, "status": StatusPending}).
		Suffix("RETURNING user_id, church_id, campus_id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build approve query failed: %w", err)
	}

	var userID, churchID string
	var campusID *string
	if err := tx.QueryRow(ctx, query, args...).Scan(&userID, &churchID, &campusID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAlreadyDecided
		}
		return fmt.Errorf("approve join request failed: %w", err)
	}

	query, args, err = psql.Insert("public.memberships").
		Columns("user_id", "church_id", "campus_id", "role").
		Values(userID, churchID, campusID, "member").
		ToSql()
	if err != nil {
		return fmt.Errorf("build membership insert query failed: %w", err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrAlreadyMember
		}
		return fmt.Errorf("create membership for approved request failed: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *pgxRepository) Reject(ctx context.Context, id, reviewerID string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.join_requests").
		Set("status", StatusRejected).
		Set("reviewed_by", reviewerID).
		Set("reviewed_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id, "status": StatusPending}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build reject query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("reject join request failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrAlreadyDecided
	}
	return nil
}

func (r *pgxRepository) DeletePending(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.join_requests").
		Where(squirrel.Eq{"id": id, "status": StatusPending}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete join request query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete join request failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrAlreadyDecided
	}
	return nil
}

func scanRequest(row pgx.Row) (*JoinRequest, error) {
	var req JoinRequest
	err := row.Scan(
		&req.ID, &req.UserID, &req.UserName, &req.ChurchID, &req.CampusID,
		&req.Message, &req.Status, &req.CreatedAt, &req.ReviewedBy, &req.ReviewedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}
