package models

import "time"

// ProgressStatus classifies a teacher's virtual-session engagement for a
// reporting window. It is always derived, never stored.
type ProgressStatus string

const (
	ProgressAchieved   ProgressStatus = "achieved"
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressNotStarted ProgressStatus = "not_started"
)

// TeacherProgress holds roster-sourced targets for one (teacher, academic year).
type TeacherProgress struct {
	ID             string    `db:"id" json:"id"`
	TeacherID      string    `db:"teacher_id" json:"teacher_id"`
	AcademicYear   string    `db:"academic_year" json:"academic_year"`
	RosterName     string    `db:"roster_name" json:"roster_name"`
	SchoolName     *string   `db:"school_name" json:"school_name,omitempty"`
	TargetSessions int       `db:"target_sessions" json:"target_sessions"`
	Archived       bool      `db:"archived" json:"archived"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// TeacherProgressView is a TeacherProgress row decorated with derived state.
type TeacherProgressView struct {
	TeacherProgress
	Status            ProgressStatus `json:"status"`
	CompletedSessions int            `json:"completed_sessions"`
	UpcomingSessions  int            `json:"upcoming_sessions"`
}

// ProgressWindow bounds the event dates considered during derivation.
type ProgressWindow struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w ProgressWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}
