package safety

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openchurchhq/church-community-backend/internal/pkg/apperror"
	"github.com/openchurchhq/church-community-backend/internal/timeslot"
)

// ErrScheduleTaken is the database-level backstop for the conflict check,
// raised when the exclusion constraint rejects a concurrent overlapping write.
var ErrScheduleTaken = apperror.New(http.StatusConflict, "member is already scheduled during this time period")

// Repository defines persistence for the safety team, its schedules and
// incident reports.
type Repository interface {
	CreateMember(ctx context.Context, m *Member) error
	GetMember(ctx context.Context, id string) (*Member, error)
	ListMembers(ctx context.Context, churchID string, filter MemberFilter) ([]*Member, error)
	UpdateMember(ctx context.Context, m *Member) error
	DeleteMember(ctx context.Context, id string) error

	CreateSchedule(ctx context.Context, s *Schedule) error
	GetSchedule(ctx context.Context, id string) (*Schedule, error)
	ListSchedules(ctx context.Context, churchID string, filter ScheduleFilter) ([]*Schedule, int, error)
	// ListForMemberDay returns conflict candidates for one member and date,
	// already narrowed to active statuses.
	ListForMemberDay(ctx context.Context, memberID string, date timeslot.Date) ([]timeslot.Booking, error)
	UpdateSchedule(ctx context.Context, s *Schedule) error
	DeleteSchedule(ctx context.Context, id string) error

	CreateIncident(ctx context.Context, i *Incident) error
	GetIncident(ctx context.Context, id string) (*Incident, error)
	ListIncidents(ctx context.Context, churchID string, filter IncidentFilter) ([]*Incident, int, error)
	Resolve(ctx context.Context, id, resolverID string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

// NewPgxRepository creates a pgx-backed safety repository.
func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

const memberColumns = "id, church_id, campus_id, user_id, name, is_active, created_at"

func (r *pgxRepository) CreateMember(ctx context.Context, m *Member) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.safety_members").
		Columns("church_id", "campus_id", "user_id", "name", "is_active").
		Values(m.ChurchID, m.CampusID, m.UserID, m.Name, m.IsActive).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create safety member query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&m.ID, &m.CreatedAt); err != nil {
		return fmt.Errorf("create safety member failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetMember(ctx context.Context, id string) (*Member, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(memberColumns).
		From("public.safety_members").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get safety member query failed: %w", err)
	}

	var m Member
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&m.ID, &m.ChurchID, &m.CampusID, &m.UserID, &m.Name, &m.IsActive, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("get safety member failed: %w", err)
	}
	return &m, nil
}

func (r *pgxRepository) ListMembers(ctx context.Context, churchID string, filter MemberFilter) ([]*Member, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(memberColumns).
		From("public.safety_members").
		Where(squirrel.Eq{"church_id": churchID})

	if filter.CampusID != "" {
		query = query.Where(squirrel.Eq{"campus_id": filter.CampusID})
	}
	if filter.ActiveOnly {
		query = query.Where(squirrel.Eq{"is_active": true})
	}

	sql, args, err := query.OrderBy("name ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list safety members query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list safety members failed: %w", err)
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.ChurchID, &m.CampusID, &m.UserID, &m.Name, &m.IsActive, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan safety member failed: %w", err)
		}
		members = append(members, &m)
	}

	return members, nil
}

func (r *pgxRepository) UpdateMember(ctx context.Context, m *Member) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.safety_members").
		Set("campus_id", m.CampusID).
		Set("name", m.Name).
		Set("is_active", m.IsActive).
		Where(squirrel.Eq{"id": m.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update safety member query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update safety member failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (r *pgxRepository) DeleteMember(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.safety_members").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete safety member query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete safety member failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}

const scheduleColumns = "s.id, s.member_id, s.date, s.start_minute, s.end_minute, s.status, s.notes, s.created_by, s.created_at"

func (r *pgxRepository) CreateSchedule(ctx context.Context, s *Schedule) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.safety_schedules").
		Columns("member_id", "date", "start_minute", "end_minute", "status", "notes", "created_by").
		Values(s.MemberID, s.Date.Time(), s.Start, s.End, s.Status, s.Notes, s.CreatedBy).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create safety schedule query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&s.ID, &s.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ExclusionViolation {
			return ErrScheduleTaken
		}
		return fmt.Errorf("create safety schedule failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetSchedule(ctx context.Context, id string) (*Schedule, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(scheduleColumns).
		From("public.safety_schedules s").
		Where(squirrel.Eq{"s.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get safety schedule query failed: %w", err)
	}

	var s Schedule
	var date time.Time
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&s.ID, &s.MemberID, &date, &s.Start, &s.End, &s.Status,
		&s.Notes, &s.CreatedBy, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("get safety schedule failed: %w", err)
	}
	s.Date = timeslot.DateOf(date)
	return &s, nil
}

func (r *pgxRepository) ListSchedules(ctx context.Context, churchID string, filter ScheduleFilter) ([]*Schedule, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(scheduleColumns + ", count(*) OVER() as total_count").
		From("public.safety_schedules s").
		Join("public.safety_members m ON m.id = s.member_id").
		Where(squirrel.Eq{"m.church_id": churchID})

	if filter.MemberID != "" {
		query = query.Where(squirrel.Eq{"s.member_id": filter.MemberID})
	}
	if !filter.From.IsZero() {
		query = query.Where(squirrel.GtOrEq{"s.date": filter.From.Time()})
	}
	if !filter.To.IsZero() {
		query = query.Where(squirrel.LtOrEq{"s.date": filter.To.Time()})
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	query = query.OrderBy("s.date ASC", "s.start_minute ASC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list safety schedules query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list safety schedules failed: %w", err)
	}
	defer rows.Close()

	var schedules []*Schedule
	var total int
	for rows.Next() {
		var s Schedule
		var date time.Time
		if err := rows.Scan(
			&s.ID, &s.MemberID, &date, &s.Start, &s.End, &s.Status,
			&s.Notes, &s.CreatedBy, &s.CreatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan safety schedule failed: %w", err)
		}
		s.Date = timeslot.DateOf(date)
		schedules = append(schedules, &s)
	}

	return schedules, total, nil
}

func (r *pgxRepository) ListForMemberDay(ctx context.Context, memberID string, date timeslot.Date) ([]timeslot.Booking, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sql, args, err := psql.Select("id, member_id, date, start_minute, end_minute, status").
		From("public.safety_schedules").
		Where(squirrel.Eq{
			"member_id": memberID,
			"date":      date.Time(),
			"status":    timeslot.ActiveStatuses(),
		}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build conflict candidates query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list conflict candidates failed: %w", err)
	}
	defer rows.Close()

	var candidates []timeslot.Booking
	for rows.Next() {
		var b timeslot.Booking
		var day time.Time
		if err := rows.Scan(&b.ID, &b.SubjectID, &day, &b.Start, &b.End, &b.Status); err != nil {
			return nil, fmt.Errorf("scan conflict candidate failed: %w", err)
		}
		b.Date = timeslot.DateOf(day)
		candidates = append(candidates, b)
	}

	return candidates, nil
}

func (r *pgxRepository) UpdateSchedule(ctx context.Context, s *Schedule) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.safety_schedules").
		Set("member_id", s.MemberID).
		Set("date", s.Date.Time()).
		Set("start_minute", s.Start).
		Set("end_minute", s.End).
		Set("status", s.Status).
		Set("notes", s.Notes).
		Where(squirrel.Eq{"id": s.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update safety schedule query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ExclusionViolation {
			return ErrScheduleTaken
		}
		return fmt.Errorf("update safety schedule failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrScheduleNotFound
	}
	return nil
}

func (r *pgxRepository) DeleteSchedule(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.safety_schedules").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete safety schedule query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete safety schedule failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrScheduleNotFound
	}
	return nil
}

const incidentColumns = "id, church_id, campus_id, reported_by, occurred_at, severity, description, status, resolved_by, resolved_at, created_at"

func (r *pgxRepository) CreateIncident(ctx context.Context, i *Incident) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.safety_incidents").
		Columns("church_id", "campus_id", "reported_by", "occurred_at", "severity", "description").
		Values(i.ChurchID, i.CampusID, i.ReportedBy, i.OccurredAt, i.Severity, i.Description).
		Suffix("RETURNING id, status, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create incident query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&i.ID, &i.Status, &i.CreatedAt); err != nil {
		return fmt.Errorf("create incident failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetIncident(ctx context.Context, id string) (*Incident, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(incidentColumns).
		From("public.safety_incidents").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get incident query failed: %w", err)
	}

	var i Incident
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&i.ID, &i.ChurchID, &i.CampusID, &i.ReportedBy, &i.OccurredAt,
		&i.Severity, &i.Description, &i.Status, &i.ResolvedBy, &i.ResolvedAt, &i.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrIncidentNotFound
		}
		return nil, fmt.Errorf("get incident failed: %w", err)
	}
	return &i, nil
}

func (r *pgxRepository) ListIncidents(ctx context.Context, churchID string, filter IncidentFilter) ([]*Incident, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(incidentColumns + ", count(*) OVER() as total_count").
		From("public.safety_incidents").
		Where(squirrel.Eq{"church_id": churchID})

	if filter.CampusID != "" {
		query = query.Where(squirrel.Eq{"campus_id": filter.CampusID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.Severity != "" {
		query = query.Where(squirrel.Eq{"severity": filter.Severity})
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	query = query.OrderBy("occurred_at DESC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list incidents query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list incidents failed: %w", err)
	}
	defer rows.Close()

	var incidents []*Incident
	var total int
	for rows.Next() {
		var i Incident
		if err := rows.Scan(
			&i.ID, &i.ChurchID, &i.CampusID, &i.ReportedBy, &i.OccurredAt,
			&i.Severity, &i.Description, &i.Status, &i.ResolvedBy, &i.ResolvedAt, &i.CreatedAt,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan incident failed: %w", err)
		}
		incidents = append(incidents, &i)
	}

	return incidents, total, nil
}

func (r *pgxRepository) Resolve(ctx context.Context, id, resolverID string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.safety_incidents").
		Set("status", IncidentResolved).
		Set("resolved_by", resolverID).
		Set("resolved_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id, "status": IncidentOpen}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build resolve incident query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("resolve incident failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrAlreadyResolved
	}
	return nil
}
