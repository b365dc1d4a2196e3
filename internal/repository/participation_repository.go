package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edubridge/volunteer-hub-api/internal/models"
)

// ParticipationRepository manages the contact↔event join tables.
type ParticipationRepository struct {
	db Querier
}

// NewParticipationRepository constructs a ParticipationRepository.
func NewParticipationRepository(db Querier) *ParticipationRepository {
	return &ParticipationRepository{db: db}
}

const eventTeacherColumns = `id, event_id, teacher_id, status, attendance_confirmed_at, credited_hours,
	is_presenter, cancellation_reason, created_at, updated_at`

// GetEventTeacher fetches the single participation row for a (teacher, event)
// pair, or nil when none exists.
func (r *ParticipationRepository) GetEventTeacher(ctx context.Context, eventID, teacherID string) (*models.EventTeacher, error) {
	query := fmt.Sprintf(`SELECT %s FROM event_teachers WHERE event_id = $1 AND teacher_id = $2`, eventTeacherColumns)
	var row models.EventTeacher
	if err := sqlx.GetContext(ctx, r.db, &row, query, eventID, teacherID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get event teacher: %w", err)
	}
	return &row, nil
}

// CreateEventTeacher inserts the participation row for a (teacher, event) pair.
func (r *ParticipationRepository) CreateEventTeacher(ctx context.Context, row *models.EventTeacher) error {
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now

	const query = `INSERT INTO event_teachers (id, event_id, teacher_id, status, attendance_confirmed_at,
			credited_hours, is_presenter, cancellation_reason, created_at, updated_at)
		VALUES (:id, :event_id, :teacher_id, :status, :attendance_confirmed_at,
			:credited_hours, :is_presenter, :cancellation_reason, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, row); err != nil {
		return fmt.Errorf("create event teacher: %w", err)
	}
	return nil
}

// UpdateEventTeacherFields applies merged field changes to a participation row.
func (r *ParticipationRepository) UpdateEventTeacherFields(ctx context.Context, id string, fields map[string]interface{}) error {
	return updateFields(ctx, r.db, "event_teachers", id, fields)
}

// CountConfirmedSessions counts a teacher's attendance-confirmed sessions whose
// event starts inside the window. This is the Achieved input.
func (r *ParticipationRepository) CountConfirmedSessions(ctx context.Context, teacherID string, window models.ProgressWindow) (int, error) {
	const query = `SELECT COUNT(*) FROM event_teachers et
		JOIN events e ON e.id = et.event_id
		WHERE et.teacher_id = $1 AND et.attendance_confirmed_at IS NOT NULL
		AND e.start_date >= $2 AND e.start_date < $3`
	var count int
	if err := sqlx.GetContext(ctx, r.db, &count, query, teacherID, window.Start, window.End); err != nil {
		return 0, fmt.Errorf("count confirmed sessions: %w", err)
	}
	return count, nil
}

// CountUpcomingSessions counts a teacher's signed-up or attended sessions on
// future events. This is the In Progress input.
func (r *ParticipationRepository) CountUpcomingSessions(ctx context.Context, teacherID string, now time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM event_teachers et
		JOIN events e ON e.id = et.event_id
		WHERE et.teacher_id = $1 AND et.status = ANY($2) AND e.start_date > $3`
	var count int
	statuses := []string{string(models.AttendanceSignedUp), string(models.AttendanceAttended)}
	if err := sqlx.GetContext(ctx, r.db, &count, query, teacherID, statusArray(statuses), now); err != nil {
		return 0, fmt.Errorf("count upcoming sessions: %w", err)
	}
	return count, nil
}

// GetVolunteerParticipation fetches the single (volunteer, event) row, or nil.
func (r *ParticipationRepository) GetVolunteerParticipation(ctx context.Context, eventID, volunteerID string) (*models.EventParticipation, error) {
	const query = `SELECT id, event_id, volunteer_id, status, participant_type, credited_hours, created_at, updated_at
		FROM event_participations WHERE event_id = $1 AND volunteer_id = $2`
	var row models.EventParticipation
	if err := sqlx.GetContext(ctx, r.db, &row, query, eventID, volunteerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get volunteer participation: %w", err)
	}
	return &row, nil
}

// CreateVolunteerParticipation inserts a (volunteer, event) participation row.
func (r *ParticipationRepository) CreateVolunteerParticipation(ctx context.Context, row *models.EventParticipation) error {
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now

	const query = `INSERT INTO event_participations (id, event_id, volunteer_id, status, participant_type,
			credited_hours, created_at, updated_at)
		VALUES (:id, :event_id, :volunteer_id, :status, :participant_type, :credited_hours, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, row); err != nil {
		return fmt.Errorf("create volunteer participation: %w", err)
	}
	return nil
}

// UpdateVolunteerParticipationFields applies merged changes to a participation row.
func (r *ParticipationRepository) UpdateVolunteerParticipationFields(ctx context.Context, id string, fields map[string]interface{}) error {
	return updateFields(ctx, r.db, "event_participations", id, fields)
}
