package ministry

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
var ErrScheduleTaken = apperror.New(http.StatusConflict, "volunteer is already scheduled during this time period")

// Repository defines persistence for ministries, their volunteers and
// their schedules.
type Repository interface {
	CreateMinistry(ctx context.Context, m *Ministry) error
	GetMinistry(ctx context.Context, id string) (*Ministry, error)
	ListMinistries(ctx context.Context, churchID string, filter Filter) ([]*Ministry, int, error)
	UpdateMinistry(ctx context.Context, m *Ministry) error
	DeleteMinistry(ctx context.Context, id string) error

	CreateVolunteer(ctx context.Context, v *Volunteer) error
	GetVolunteer(ctx context.Context, id string) (*Volunteer, error)
	ListVolunteers(ctx context.Context, ministryID string) ([]*Volunteer, error)
	UpdateVolunteer(ctx context.Context, v *Volunteer) error
	DeleteVolunteer(ctx context.Context, id string) error

	CreateSchedule(ctx context.Context, s *Schedule) error
	GetSchedule(ctx context.Context, id string) (*Schedule, error)
	ListSchedules(ctx context.Context, ministryID string, filter ScheduleFilter) ([]*Schedule, int, error)
	// ListForVolunteerDay returns conflict candidates for one volunteer and
	// date, already narrowed to active statuses.
	ListForVolunteerDay(ctx context.Context, volunteerID string, date timeslot.Date) ([]timeslot.Booking, error)
	UpdateSchedule(ctx context.Context, s *Schedule) error
	DeleteSchedule(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

// NewPgxRepository creates a pgx-backed ministry repository.
func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

const ministryColumns = "id, church_id, campus_id, name, description, created_at"

func (r *pgxRepository) CreateMinistry(ctx context.Context, m *Ministry) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.ministries").
		Columns("church_id", "campus_id", "name", "description").
		Values(m.ChurchID, m.CampusID, m.Name, m.Description).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create ministry query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&m.ID, &m.CreatedAt); err != nil {
		return fmt.Errorf("create ministry failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetMinistry(ctx context.Context, id string) (*Ministry, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(ministryColumns).
		From("public.ministries").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get ministry query failed: %w", err)
	}

	var m Ministry
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&m.ID, &m.ChurchID, &m.CampusID, &m.Name, &m.Description, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get ministry failed: %w", err)
	}
	return &m, nil
}

func (r *pgxRepository) ListMinistries(ctx context.Context, churchID string, filter Filter) ([]*Ministry, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(ministryColumns + ", count(*) OVER() as total_count").
		From("public.ministries").
		Where(squirrel.Eq{"church_id": churchID})

	if filter.CampusID != "" {
		query = query.Where(squirrel.Eq{"campus_id": filter.CampusID})
	}
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
		return nil, 0, fmt.Errorf("build list ministries query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list ministries failed: %w", err)
	}
	defer rows.Close()

	var ministries []*Ministry
	var total int
	for rows.Next() {
		var m Ministry
		if err := rows.Scan(
			&m.ID, &m.ChurchID, &m.CampusID, &m.Name, &m.Description, &m.CreatedAt,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan ministry failed: %w", err)
		}
		ministries = append(ministries, &m)
	}

	return ministries, total, nil
}

func (r *pgxRepository) UpdateMinistry(ctx context.Context, m *Ministry) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.ministries").
		Set("campus_id", m.CampusID).
		Set("name", m.Name).
		Set("description", m.Description).
		Where(squirrel.Eq{"id": m.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update ministry query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update ministry failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) DeleteMinistry(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.ministries").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete ministry query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete ministry failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const volunteerColumns = "id, ministry_id, user_id, name, is_active, created_at"

func (r *pgxRepository) CreateVolunteer(ctx context.Context, v *Volunteer) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.ministry_volunteers").
		Columns("ministry_id", "user_id", "name", "is_active").
		Values(v.MinistryID, v.UserID, v.Name, v.IsActive).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create volunteer query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&v.ID, &v.CreatedAt); err != nil {
		return fmt.Errorf("create volunteer failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetVolunteer(ctx context.Context, id string) (*Volunteer, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(volunteerColumns).
		From("public.ministry_volunteers").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get volunteer query failed: %w", err)
	}

	var v Volunteer
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&v.ID, &v.MinistryID, &v.UserID, &v.Name, &v.IsActive, &v.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVolunteerNotFound
		}
		return nil, fmt.Errorf("get volunteer failed: %w", err)
	}
	return &v, nil
}

func (r *pgxRepository) ListVolunteers(ctx context.Context, ministryID string) ([]*Volunteer, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sql, args, err := psql.Select(volunteerColumns).
		From("public.ministry_volunteers").
		Where(squirrel.Eq{"ministry_id": ministryID}).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list volunteers query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list volunteers failed: %w", err)
	}
	defer rows.Close()

	var volunteers []*Volunteer
	for rows.Next() {
		var v Volunteer
		if err := rows.Scan(&v.ID, &v.MinistryID, &v.UserID, &v.Name, &v.IsActive, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan volunteer failed: %w", err)
		}
		volunteers = append(volunteers, &v)
	}

	return volunteers, nil
}

func (r *pgxRepository) UpdateVolunteer(ctx context.Context, v *Volunteer) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.ministry_volunteers").
		Set("name", v.Name).
		Set("is_active", v.IsActive).
		Where(squirrel.Eq{"id": v.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update volunteer query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update volunteer failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrVolunteerNotFound
	}
	return nil
}

func (r *pgxRepository) DeleteVolunteer(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.ministry_volunteers").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete volunteer query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete volunteer failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrVolunteerNotFound
	}
	return nil
}

const scheduleColumns = "s.id, s.volunteer_id, s.date, s.start_minute, s.end_minute, s.status, s.notes, s.created_by, s.created_at"

func (r *pgxRepository) CreateSchedule(ctx context.Context, s *Schedule) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.ministry_schedules").
		Columns("volunteer_id", "date", "start_minute", "end_minute", "status", "notes", "created_by").
		Values(s.VolunteerID, s.Date.Time(), s.Start, s.End, s.Status, s.Notes, s.CreatedBy).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create schedule query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&s.ID, &s.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ExclusionViolation {
			return ErrScheduleTaken
		}
		return fmt.Errorf("create schedule failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetSchedule(ctx context.Context, id string) (*Schedule, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(scheduleColumns).
		From("public.ministry_schedules s").
		Where(squirrel.Eq{"s.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get schedule query failed: %w", err)
	}

	s, err := scanSchedule(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("get schedule failed: %w", err)
	}
	return s, nil
}

func (r *pgxRepository) ListSchedules(ctx context.Context, ministryID string, filter ScheduleFilter) ([]*Schedule, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(scheduleColumns + ", count(*) OVER() as total_count").
		From("public.ministry_schedules s").
		Join("public.ministry_volunteers v ON v.id = s.volunteer_id").
		Where(squirrel.Eq{"v.ministry_id": ministryID})

	if filter.VolunteerID != "" {
		query = query.Where(squirrel.Eq{"s.volunteer_id": filter.VolunteerID})
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
		return nil, 0, fmt.Errorf("build list schedules query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list schedules failed: %w", err)
	}
	defer rows.Close()

	var schedules []*Schedule
	var total int
	for rows.Next() {
		var s Schedule
		var date time.Time
		if err := rows.Scan(
			&s.ID, &s.VolunteerID, &date, &s.Start, &s.End, &s.Status,
			&s.Notes, &s.CreatedBy, &s.CreatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan schedule failed: %w", err)
		}
		s.Date = timeslot.DateOf(date)
		schedules = append(schedules, &s)
	}

	return schedules, total, nil
}

func (r *pgxRepository) ListForVolunteerDay(ctx context.Context, volunteerID string, date timeslot.Date) ([]timeslot.Booking, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sql, args, err := psql.Select("id, volunteer_id, date, start_minute, end_minute, status").
		From("public.ministry_schedules").
		Where(squirrel.Eq{
			"volunteer_id": volunteerID,
			"date":         date.Time(),
			"status":       timeslot.ActiveStatuses(),
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
	query, args, err := psql.Update("public.ministry_schedules").
		Set("volunteer_id", s.VolunteerID).
		Set("date", s.Date.Time()).
		Set("start_minute", s.Start).
		Set("end_minute", s.End).
		Set("status", s.Status).
		Set("notes", s.Notes).
		Where(squirrel.Eq{"id": s.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update schedule query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ExclusionViolation {
			return ErrScheduleTaken
		}
		return fmt.Errorf("update schedule failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrScheduleNotFound
	}
	return nil
}

func (r *pgxRepository) DeleteSchedule(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.ministry_schedules").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete schedule query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete schedule failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrScheduleNotFound
	}
	return nil
}

func scanSchedule(row pgx.Row) (*Schedule, error) {
	var s Schedule
	var date time.Time
	err := row.Scan(
		&s.ID, &s.VolunteerID, &date, &s.Start, &s.End, &s.Status,
		&s.Notes, &s.CreatedBy, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Date = timeslot.DateOf(date)
	return &s, nil
}
