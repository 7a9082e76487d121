package membership

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

// Repository defines persistence for memberships and departures.
type Repository interface {
	Create(ctx context.Context, m *Membership) error
	GetForUser(ctx context.Context, churchID, userID string) (*Membership, error)
	List(ctx context.Context, churchID string, filter Filter) ([]*Membership, int, error)
	UpdateRole(ctx context.Context, churchID, userID, role string) error
	UpdateCampus(ctx context.Context, churchID, userID string, campusID *string) error
	CountOwners(ctx context.Context, churchID string) (int, error)

	// RemoveWithDeparture deletes the membership and records the departure
	// in a single transaction.
	RemoveWithDeparture(ctx context.Context, m *Membership, reason DepartureReason) error
	ListDepartures(ctx context.Context, churchID string, filter Filter) ([]*Departure, int, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

// NewPgxRepository creates a pgx-backed membership repository.
func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

const memberColumns = "m.id, m.user_id, COALESCE(u.display_name, u.email), m.church_id, m.campus_id, c.name, m.role, m.joined_at"

func (r *pgxRepository) Create(ctx context.Context, m *Membership) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.memberships").
		Columns("user_id", "church_id", "campus_id", "role").
		Values(m.UserID, m.ChurchID, m.CampusID, string(m.Role)).
		Suffix("RETURNING id, joined_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create membership query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&m.ID, &m.JoinedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrAlreadyMember
		}
		return fmt.Errorf("create membership failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetForUser(ctx context.Context, churchID, userID string) (*Membership, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(memberColumns).
		From("public.memberships m").
		Join("public.users u ON m.user_id = u.id").
		LeftJoin("public.campuses c ON m.campus_id = c.id").
		Where(squirrel.Eq{"m.church_id": churchID}).
		Where(squirrel.Eq{"m.user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get membership query failed: %w", err)
	}

	var m Membership
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&m.ID, &m.UserID, &m.UserName, &m.ChurchID,
		&m.CampusID, &m.CampusName, &m.Role, &m.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotMember
		}
		return nil, fmt.Errorf("get membership failed: %w", err)
	}
	return &m, nil
}

func (r *pgxRepository) List(ctx context.Context, churchID string, filter Filter) ([]*Membership, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(memberColumns + ", count(*) OVER() as total_count").
		From("public.memberships m").
		Join("public.users u ON m.user_id = u.id").
		LeftJoin("public.campuses c ON m.campus_id = c.id").
		Where(squirrel.Eq{"m.church_id": churchID})

	if filter.CampusID != "" {
		query = query.Where(squirrel.Eq{"m.campus_id": filter.CampusID})
	}
	if filter.Role != "" {
		query = query.Where(squirrel.Eq{"m.role": filter.Role})
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	query = query.OrderBy("m.joined_at ASC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list memberships query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list memberships failed: %w", err)
	}
	defer rows.Close()

	var members []*Membership
	var total int
	for rows.Next() {
		var m Membership
		if err := rows.Scan(
			&m.ID, &m.UserID, &m.UserName, &m.ChurchID,
			&m.CampusID, &m.CampusName, &m.Role, &m.JoinedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan membership failed: %w", err)
		}
		members = append(members, &m)
	}

	return members, total, nil
}

func (r *pgxRepository) UpdateRole(ctx context.Context, churchID, userID, role string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.memberships").
		Set("role", role).
		Where(squirrel.Eq{"church_id": churchID}).
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update role query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update role failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotMember
	}
	return nil
}

func (r *pgxRepository) UpdateCampus(ctx context.Context, churchID, userID string, campusID *string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.memberships").
		Set("campus_id", campusID).
		Where(squirrel.Eq{"church_id": churchID}).
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update campus query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update campus failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotMember
	}
	return nil
}

func (r *pgxRepository) CountOwners(ctx context.Context, churchID string) (int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("count(*)").
		From("public.memberships").
		Where(squirrel.Eq{"church_id": churchID}).
		Where(squirrel.Eq{"role": "owner"}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count owners query failed: %w", err)
	}

	var n int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count owners failed: %w", err)
	}
	return n, nil
}

func (r *pgxRepository) RemoveWithDeparture(ctx context.Context, m *Membership, reason DepartureReason) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin remove membership tx failed: %w", err)
	}
	defer tx.Rollback(ctx)

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	insQuery, insArgs, err := psql.Insert("public.departures").
		Columns("church_id", "user_id", "role", "reason").
		Values(m.ChurchID, m.UserID, string(m.Role), string(reason)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build departure insert failed: %w", err)
	}
	if _, err := tx.Exec(ctx, insQuery, insArgs...); err != nil {
		return fmt.Errorf("record departure failed: %w", err)
	}

	delQuery, delArgs, err := psql.Delete("public.memberships").
		Where(squirrel.Eq{"church_id": m.ChurchID}).
		Where(squirrel.Eq{"user_id": m.UserID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build membership delete failed: %w", err)
	}
	ct, err := tx.Exec(ctx, delQuery, delArgs...)
	if err != nil {
		return fmt.Errorf("delete membership failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotMember
	}

	return tx.Commit(ctx)
}

func (r *pgxRepository) ListDepartures(ctx context.Context, churchID string, filter Filter) ([]*Departure, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(
		"d.id", "d.church_id", "d.user_id", "COALESCE(u.display_name, u.email)",
		"d.role", "d.reason", "d.recorded_at",
		"count(*) OVER() as total_count",
	).
		From("public.departures d").
		Join("public.users u ON d.user_id = u.id").
		Where(squirrel.Eq{"d.church_id": churchID})

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	query = query.OrderBy("d.recorded_at DESC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list departures query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list departures failed: %w", err)
	}
	defer rows.Close()

	var departures []*Departure
	var total int
	for rows.Next() {
		var d Departure
		if err := rows.Scan(
			&d.ID, &d.ChurchID, &d.UserID, &d.UserName,
			&d.Role, &d.Reason, &d.RecordedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan departure failed: %w", err)
		}
		departures = append(departures, &d)
	}

	return departures, total, nil
}
