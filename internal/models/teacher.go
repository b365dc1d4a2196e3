package models

// Teacher is the canonical record for a classroom teacher. Teachers enter the
// system through roster imports; virtual-session imports never auto-create them.
type Teacher struct {
	ContactCore
	SchoolID *string `db:"school_id" json:"school_id,omitempty"`
	// RosterName is the display name owned by the roster import. A mismatching
	// name on a virtual-session row does not override it.
	RosterName         string `db:"roster_name" json:"roster_name"`
	Active             bool   `db:"active" json:"active"`
	RosterRemoved      bool   `db:"roster_removed" json:"roster_removed"`
	ExcludeFromReports bool   `db:"exclude_from_reports" json:"exclude_from_reports"`
}

// Student is the canonical record for a student.
type Student struct {
	ContactCore
	SchoolID   *string `db:"school_id" json:"school_id,omitempty"`
	GradeLevel *string `db:"grade_level" json:"grade_level,omitempty"`
	ClassName  *string `db:"class_name" json:"class_name,omitempty"`
}
