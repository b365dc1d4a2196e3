package models

import "time"

// AttendanceStatus tracks a contact's relationship to an event over its lifecycle.
type AttendanceStatus string

const (
	AttendanceSignedUp AttendanceStatus = "signed_up"
	AttendanceAttended AttendanceStatus = "attended"
	AttendanceNoShow   AttendanceStatus = "no_show"
	AttendanceCanceled AttendanceStatus = "canceled"
)

// ParticipantType discriminates the role a contact played at an event.
type ParticipantType string

const (
	ParticipantVolunteer ParticipantType = "Volunteer"
	ParticipantPresenter ParticipantType = "Presenter"
)

// EventParticipation joins a volunteer to an event. At most one row exists per
// (volunteer, event) pair; re-imports update in place.
type EventParticipation struct {
	ID              string           `db:"id" json:"id"`
	EventID         string           `db:"event_id" json:"event_id"`
	VolunteerID     string           `db:"volunteer_id" json:"volunteer_id"`
	Status          AttendanceStatus `db:"status" json:"status"`
	ParticipantType ParticipantType  `db:"participant_type" json:"participant_type"`
	CreditedHours   *float64         `db:"credited_hours" json:"credited_hours,omitempty"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updated_at"`
}

// EventTeacher joins a teacher to an event, carrying the attendance data the
// virtual-platform export owns plus staff-edited relationship tags it does not.
type EventTeacher struct {
	ID                    string           `db:"id" json:"id"`
	EventID               string           `db:"event_id" json:"event_id"`
	TeacherID             string           `db:"teacher_id" json:"teacher_id"`
	Status                AttendanceStatus `db:"status" json:"status"`
	AttendanceConfirmedAt *time.Time       `db:"attendance_confirmed_at" json:"attendance_confirmed_at,omitempty"`
	CreditedHours         *float64         `db:"credited_hours" json:"credited_hours,omitempty"`
	IsPresenter           bool             `db:"is_presenter" json:"is_presenter"`
	CancellationReason    *string          `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
	CreatedAt             time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time        `db:"updated_at" json:"updated_at"`
}

// EventStudentParticipation joins a student to an event.
type EventStudentParticipation struct {
	ID        string           `db:"id" json:"id"`
	EventID   string           `db:"event_id" json:"event_id"`
	StudentID string           `db:"student_id" json:"student_id"`
	Status    AttendanceStatus `db:"status" json:"status"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}
