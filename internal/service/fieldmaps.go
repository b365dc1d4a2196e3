package service

import "github.com/edubridge/volunteer-hub-api/internal/models"

// The merge engine works on column-keyed field maps. These helpers project the
// canonical structs into that shape; keys match the storage columns so applied
// maps feed UpdateFields directly.

func teacherFieldMap(t *models.Teacher) map[string]interface{} {
	if t == nil {
		return nil
	}
	return map[string]interface{}{
		"first_name":      t.FirstName,
		"last_name":       t.LastName,
		"email":           t.Email,
		"secondary_email": t.SecondaryEmail,
		"phone":           t.Phone,
		"school_id":       t.SchoolID,
		"roster_name":     t.RosterName,
		"active":          t.Active,
		"roster_removed":  t.RosterRemoved,
	}
}

func volunteerFieldMap(v *models.Volunteer) map[string]interface{} {
	if v == nil {
		return nil
	}
	return map[string]interface{}{
		"first_name":      v.FirstName,
		"last_name":       v.LastName,
		"email":           v.Email,
		"secondary_email": v.SecondaryEmail,
		"phone":           v.Phone,
		"title":           v.Title,
		"street":          v.Street,
		"city":            v.City,
		"state":           v.State,
		"postal_code":     v.PostalCode,
		"gender":          v.Gender,
		"race_ethnicity":  v.RaceEthnicity,
	}
}

func eventFieldMap(e *models.Event) map[string]interface{} {
	if e == nil {
		return nil
	}
	return map[string]interface{}{
		"title":          e.Title,
		"description":    e.Description,
		"format":         e.Format,
		"start_date":     e.StartDate,
		"end_date":       e.EndDate,
		"location":       e.Location,
		"status":         e.Status,
		"public_visible": e.PublicVisible,
	}
}

func organizationFieldMap(o *models.Organization) map[string]interface{} {
	if o == nil {
		return nil
	}
	return map[string]interface{}{
		"name":     o.Name,
		"org_type": o.OrgType,
		"website":  o.Website,
	}
}

func eventTeacherFieldMap(p *models.EventTeacher) map[string]interface{} {
	if p == nil {
		return nil
	}
	return map[string]interface{}{
		"status":                  p.Status,
		"attendance_confirmed_at": p.AttendanceConfirmedAt,
		"credited_hours":          p.CreditedHours,
		"is_presenter":            p.IsPresenter,
		"cancellation_reason":     p.CancellationReason,
	}
}

func progressFieldMap(p *models.TeacherProgress) map[string]interface{} {
	if p == nil {
		return nil
	}
	return map[string]interface{}{
		"roster_name":     p.RosterName,
		"school_name":     p.SchoolName,
		"target_sessions": p.TargetSessions,
	}
}
