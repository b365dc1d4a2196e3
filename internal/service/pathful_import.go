package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/edubridge/volunteer-hub-api/internal/models"
	appErrors "github.com/edubridge/volunteer-hub-api/pkg/errors"
	"github.com/edubridge/volunteer-hub-api/pkg/importfile"
)

// Column names expected in a virtual-session export. Header matching ignores
// case, spaces and underscores.
var pathfulRequiredColumns = []string{"Session ID", "Event ID", "Teacher Email", "Session Start", "Status"}

// PathfulImportRequest is one uploaded virtual-session export file.
type PathfulImportRequest struct {
	TenantSlug string
	Filename   string
	Reader     io.Reader
}

// pathfulRow is one parsed and validated export line.
type pathfulRow struct {
	sessionKey    string
	eventKey      string
	email         string
	title         string
	start         time.Time
	status        models.AttendanceStatus
	creditedHours *float64
	snapshot      map[string]string
}

// rowResult is what one row transaction reports back to the batch loop.
type rowResult struct {
	outcome    models.RowOutcome
	review     models.ReviewReason
	candidates []string
	errColumn  string
	errCode    string
	errMessage string
}

// RunPathfulImport processes a virtual-session attendance export. Teachers are
// never auto-created from session rows; events are, as virtual events.
func (s *ImportService) RunPathfulImport(ctx context.Context, req PathfulImportRequest) (*models.ImportBatch, error) {
	run, err := s.begin(ctx, req.TenantSlug, models.EntityParticipation, models.SourcePathful)
	if err != nil {
		return nil, err
	}

	table, err := importfile.Read(req.Reader, req.Filename)
	if err != nil {
		return s.finish(ctx, run, appErrors.Wrap(err,
			appErrors.ErrBatchValidation.Code, appErrors.ErrBatchValidation.Status, "unreadable import file"))
	}
	if missing := table.MissingColumns(pathfulRequiredColumns...); len(missing) > 0 {
		return s.finish(ctx, run, appErrors.Clone(appErrors.ErrBatchValidation,
			fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", "))))
	}

	seen := make(map[string]struct{}, len(table.Rows))
	for i, row := range table.Rows {
		rowNum := i + 2

		prow, invalid := s.parsePathfulRow(table, row)
		if invalid != nil {
			run.batch.Add(models.RowInvalid)
			s.rowError(ctx, run, rowNum, invalid.errColumn, invalid.errCode, invalid.errMessage)
			continue
		}

		key := prow.sessionKey
		if key == "" {
			key = prow.eventKey + "|" + prow.email + "|" + prow.start.Format(time.RFC3339)
		}
		if _, dup := seen[key]; dup {
			run.batch.Add(models.RowSkipped)
			continue
		}
		seen[key] = struct{}{}

		var res rowResult
		txErr := run.store.InTx(ctx, func(tx ImportStore) error {
			var applyErr error
			res, applyErr = s.applyPathfulRow(ctx, tx, prow)
			return applyErr
		})
		s.recordRow(ctx, run, rowNum, models.EntityParticipation, res, txErr, prow.snapshot)
	}

	return s.finish(ctx, run, nil)
}

// recordRow folds one row's result into the batch report, recording row errors
// and review items as the result demands.
func (s *ImportService) recordRow(ctx context.Context, run *batchRun, rowNum int, entity models.EntityType, res rowResult, txErr error, snapshot interface{}) {
	if txErr != nil {
		run.batch.Add(models.RowInvalid)
		s.rowError(ctx, run, rowNum, "", "ROW_FAILED", txErr.Error())
		return
	}

	run.batch.Add(res.outcome)
	if res.errCode != "" {
		s.rowError(ctx, run, rowNum, res.errColumn, res.errCode, res.errMessage)
	}
	if res.review != "" {
		s.parkForReview(ctx, run, entity, res.review, snapshot, res.candidates)
	}
}

// parsePathfulRow validates one raw line. A non-nil result means the row is
// invalid and names the offending column.
func (s *ImportService) parsePathfulRow(table *importfile.Table, row []string) (pathfulRow, *rowResult) {
	prow := pathfulRow{
		sessionKey: table.Cell(row, "Session ID"),
		eventKey:   table.Cell(row, "Event ID"),
		email:      NormalizeEmail(table.Cell(row, "Teacher Email")),
		title:      table.Cell(row, "Session Title"),
		snapshot:   table.RowMap(row),
	}

	if prow.eventKey == "" {
		return prow, &rowResult{errColumn: "Event ID", errCode: "MISSING_VALUE", errMessage: "event identifier is required"}
	}
	if prow.email == "" || !strings.Contains(prow.email, "@") {
		return prow, &rowResult{errColumn: "Teacher Email", errCode: "INVALID_EMAIL", errMessage: fmt.Sprintf("unusable teacher email %q", prow.email)}
	}

	start, err := ParseDate(table.Cell(row, "Session Start"))
	if err != nil {
		return prow, &rowResult{errColumn: "Session Start", errCode: "INVALID_DATE", errMessage: err.Error()}
	}
	prow.start = start

	status, ok := mapAttendanceStatus(table.Cell(row, "Status"))
	if !ok {
		return prow, &rowResult{errColumn: "Status", errCode: "INVALID_STATUS", errMessage: fmt.Sprintf("unrecognized attendance status %q", table.Cell(row, "Status"))}
	}
	prow.status = status

	if raw := table.Cell(row, "Duration Minutes"); raw != "" {
		if minutes, err := strconv.ParseFloat(raw, 64); err == nil && minutes > 0 {
			hours := minutes / 60
			prow.creditedHours = &hours
		}
	}

	return prow, nil
}

// applyPathfulRow runs the row semantics inside one transaction: resolve the
// teacher, upsert the virtual event, upsert the participation row.
func (s *ImportService) applyPathfulRow(ctx context.Context, tx ImportStore, row pathfulRow) (rowResult, error) {
	resolver := s.resolver(tx)

	teacherRes, err := resolver.Resolve(ctx, IncomingRecord{
		EntityType: models.EntityTeacher,
		Source:     models.SourcePathful,
		Emails:     []string{row.email},
	})
	if err != nil {
		if appErrors.IsCode(err, appErrors.ErrAmbiguousMatch.Code) {
			return rowResult{
				outcome:    models.RowInvalid,
				review:     models.ReviewAmbiguous,
				candidates: teacherRes.Candidates,
				errColumn:  "Teacher Email",
				errCode:    appErrors.ErrAmbiguousMatch.Code,
				errMessage: err.Error(),
			}, nil
		}
		return rowResult{}, err
	}
	if !teacherRes.Matched() {
		// Session rows never create teachers; an unknown teacher goes to the
		// review queue for an operator to link.
		return rowResult{outcome: models.RowUnmatched, review: models.ReviewUnmatched}, nil
	}

	var created, updated bool

	eventRes, err := resolver.Resolve(ctx, IncomingRecord{
		EntityType:  models.EntityEvent,
		Source:      models.SourcePathful,
		ExternalKey: row.eventKey,
	})
	if err != nil {
		return rowResult{}, err
	}

	eventID := eventRes.EntityID
	if !eventRes.Matched() {
		title := row.title
		if title == "" {
			title = "Virtual Session " + row.eventKey
		}
		start := row.start
		event := &models.Event{
			Title:     title,
			Format:    models.EventVirtual,
			StartDate: &start,
		}
		if err := tx.CreateEvent(ctx, event); err != nil {
			return rowResult{}, fmt.Errorf("create virtual event: %w", err)
		}
		if err := tx.LinkExternalID(ctx, models.SourcePathful, row.eventKey, models.EntityEvent, event.ID); err != nil {
			return rowResult{}, err
		}
		eventID = event.ID
		created = true
	} else {
		existing, err := tx.GetEvent(ctx, eventID)
		if err != nil {
			return rowResult{}, fmt.Errorf("load event %s: %w", eventID, err)
		}
		start := row.start
		incoming := map[string]interface{}{"start_date": &start}
		if row.title != "" {
			incoming["title"] = row.title
		}
		applied, summary := s.merge.Merge(eventFieldMap(existing), incoming, models.EntityEvent, models.SourcePathful)
		if summary.Changed() {
			if err := tx.UpdateEventFields(ctx, eventID, applied); err != nil {
				return rowResult{}, fmt.Errorf("update event %s: %w", eventID, err)
			}
			updated = true
		}
	}

	participation, err := tx.GetEventTeacher(ctx, eventID, teacherRes.EntityID)
	if err != nil {
		return rowResult{}, fmt.Errorf("load participation: %w", err)
	}

	// Attendance confirmation derives from the session start so re-imports of
	// the same file never flap the timestamp.
	var confirmedAt *time.Time
	if row.status == models.AttendanceAttended {
		start := row.start
		confirmedAt = &start
	}
	incoming := map[string]interface{}{
		"status":                  row.status,
		"attendance_confirmed_at": confirmedAt,
		"credited_hours":          row.creditedHours,
	}

	applied, summary := s.merge.Merge(eventTeacherFieldMap(participation), incoming, models.EntityParticipation, models.SourcePathful)
	var participationID string
	if participation == nil {
		row2 := &models.EventTeacher{
			EventID:               eventID,
			TeacherID:             teacherRes.EntityID,
			Status:                row.status,
			AttendanceConfirmedAt: confirmedAt,
			CreditedHours:         row.creditedHours,
		}
		if err := tx.CreateEventTeacher(ctx, row2); err != nil {
			return rowResult{}, fmt.Errorf("create participation: %w", err)
		}
		participationID = row2.ID
		created = true
	} else {
		participationID = participation.ID
		if summary.Changed() {
			if err := tx.UpdateEventTeacherFields(ctx, participation.ID, applied); err != nil {
				return rowResult{}, fmt.Errorf("update participation %s: %w", participation.ID, err)
			}
			updated = true
		}
	}

	sessionKey := row.sessionKey
	if sessionKey == "" {
		sessionKey = compositeKeyPrefix + row.eventKey + "|" + row.email
	}
	if err := tx.LinkExternalID(ctx, models.SourcePathful, sessionKey, models.EntityParticipation, participationID); err != nil {
		return rowResult{}, err
	}

	return rowResult{outcome: outcomeOf(created, updated)}, nil
}

// mapAttendanceStatus translates source status vocabulary onto the canonical
// attendance lifecycle. The export and the CRM share the same vocabulary.
func mapAttendanceStatus(raw string) (models.AttendanceStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "registered", "upcoming", "signed_up", "signed up":
		return models.AttendanceSignedUp, true
	case "attended", "completed":
		return models.AttendanceAttended, true
	case "absent", "no-show", "no show", "noshow":
		return models.AttendanceNoShow, true
	case "canceled", "cancelled":
		return models.AttendanceCanceled, true
	default:
		return "", false
	}
}
