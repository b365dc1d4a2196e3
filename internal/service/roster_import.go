package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/edubridge/volunteer-hub-api/internal/models"
	"github.com/edubridge/volunteer-hub-api/pkg/config"
	appErrors "github.com/edubridge/volunteer-hub-api/pkg/errors"
	"github.com/edubridge/volunteer-hub-api/pkg/importfile"
)

var rosterRequiredColumns = []string{"Teacher Name", "Email", "School"}

// RosterImportRequest is one uploaded district roster file.
type RosterImportRequest struct {
	TenantSlug string
	Filename   string
	Reader     io.Reader
	// AcademicYear labels the progress rows this roster feeds. Empty derives
	// the current school year from the reporting calendar.
	AcademicYear string
	// ApplyRemovals marks active teachers missing from this file as removed,
	// following the configured removal policy.
	ApplyRemovals bool
}

type rosterRow struct {
	name           string
	firstName      string
	lastName       string
	email          string
	schoolName     string
	targetSessions int
	snapshot       map[string]string
}

// RunRosterImport reconciles a district teacher roster. The roster is the
// registration source of record: unknown teachers are created, known ones have
// their roster-owned fields updated, and each row upserts the teacher's
// progress targets for the academic year.
func (s *ImportService) RunRosterImport(ctx context.Context, req RosterImportRequest) (*models.ImportBatch, error) {
	run, err := s.begin(ctx, req.TenantSlug, models.EntityTeacher, models.SourceRoster)
	if err != nil {
		return nil, err
	}

	table, err := importfile.Read(req.Reader, req.Filename)
	if err != nil {
		return s.finish(ctx, run, appErrors.Wrap(err,
			appErrors.ErrBatchValidation.Code, appErrors.ErrBatchValidation.Status, "unreadable import file"))
	}
	if missing := table.MissingColumns(rosterRequiredColumns...); len(missing) > 0 {
		return s.finish(ctx, run, appErrors.Clone(appErrors.ErrBatchValidation,
			fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", "))))
	}

	academicYear := req.AcademicYear
	if academicYear == "" {
		academicYear = AcademicYear(time.Now().UTC(), s.progress.AcademicYearStartMonth)
	}

	seen := make(map[string]struct{}, len(table.Rows))
	rostered := make(map[string]struct{}, len(table.Rows))
	for i, row := range table.Rows {
		rowNum := i + 2

		rrow, invalid := s.parseRosterRow(table, row)
		if invalid != nil {
			run.batch.Add(models.RowInvalid)
			s.rowError(ctx, run, rowNum, invalid.errColumn, invalid.errCode, invalid.errMessage)
			continue
		}

		key := rrow.email
		if key == "" {
			key = strings.ToLower(rrow.name) + "|" + strings.ToLower(rrow.schoolName)
		}
		if _, dup := seen[key]; dup {
			run.batch.Add(models.RowSkipped)
			continue
		}
		seen[key] = struct{}{}

		var res rowResult
		var teacherID string
		txErr := run.store.InTx(ctx, func(tx ImportStore) error {
			var applyErr error
			res, teacherID, applyErr = s.applyRosterRow(ctx, tx, rrow, academicYear)
			return applyErr
		})
		if teacherID != "" {
			rostered[teacherID] = struct{}{}
		}
		s.recordRow(ctx, run, rowNum, models.EntityTeacher, res, txErr, rrow.snapshot)
	}

	if req.ApplyRemovals {
		if err := s.applyRosterRemovals(ctx, run, rostered); err != nil {
			return s.finish(ctx, run, err)
		}
	}

	return s.finish(ctx, run, nil)
}

func (s *ImportService) parseRosterRow(table *importfile.Table, row []string) (rosterRow, *rowResult) {
	rrow := rosterRow{
		name:       table.Cell(row, "Teacher Name"),
		email:      NormalizeEmail(table.Cell(row, "Email")),
		schoolName: table.Cell(row, "School"),
		snapshot:   table.RowMap(row),
	}

	if rrow.name == "" && rrow.email == "" {
		return rrow, &rowResult{errColumn: "Teacher Name", errCode: "MISSING_VALUE", errMessage: "row carries neither a name nor an email"}
	}
	if rrow.email != "" && !strings.Contains(rrow.email, "@") {
		return rrow, &rowResult{errColumn: "Email", errCode: "INVALID_EMAIL", errMessage: fmt.Sprintf("unusable email %q", rrow.email)}
	}
	if rrow.schoolName == "" {
		return rrow, &rowResult{errColumn: "School", errCode: "MISSING_VALUE", errMessage: "school is required"}
	}

	rrow.firstName, rrow.lastName = SplitName(rrow.name)

	rrow.targetSessions = s.progress.DefaultTargetSessions
	if raw := table.Cell(row, "Target Sessions"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return rrow, &rowResult{errColumn: "Target Sessions", errCode: "INVALID_NUMBER", errMessage: fmt.Sprintf("unusable session target %q", raw)}
		}
		rrow.targetSessions = n
	}

	return rrow, nil
}

// applyRosterRow reconciles one roster line inside a transaction and returns
// the canonical teacher it settled on.
func (s *ImportService) applyRosterRow(ctx context.Context, tx ImportStore, row rosterRow, academicYear string) (rowResult, string, error) {
	school, err := tx.FindSchoolByName(ctx, row.schoolName)
	if err != nil {
		return rowResult{}, "", fmt.Errorf("look up school: %w", err)
	}
	if school == nil {
		return rowResult{
			outcome:    models.RowInvalid,
			errColumn:  "School",
			errCode:    "UNKNOWN_SCHOOL",
			errMessage: fmt.Sprintf("school %q is not in the reference data", row.schoolName),
		}, "", nil
	}

	resolver := s.resolver(tx)
	rec := IncomingRecord{
		EntityType: models.EntityTeacher,
		Source:     models.SourceRoster,
		FullName:   row.name,
		SchoolID:   school.ID,
	}
	if row.email != "" {
		rec.Emails = []string{row.email}
	}

	resolution, err := resolver.Resolve(ctx, rec)
	if err != nil {
		if appErrors.IsCode(err, appErrors.ErrAmbiguousMatch.Code) {
			return rowResult{
				outcome:    models.RowInvalid,
				review:     models.ReviewAmbiguous,
				candidates: resolution.Candidates,
				errCode:    appErrors.ErrAmbiguousMatch.Code,
				errMessage: err.Error(),
			}, "", nil
		}
		return rowResult{}, "", err
	}

	res := rowResult{}
	var created, updated bool
	var teacherID string

	incoming := map[string]interface{}{
		"first_name":  row.firstName,
		"last_name":   row.lastName,
		"roster_name": row.name,
		"school_id":   &school.ID,
	}
	if row.email != "" {
		incoming["email"] = row.email
	}

	if resolution.Matched() {
		teacherID = resolution.EntityID
		teacher, err := tx.GetTeacher(ctx, teacherID)
		if err != nil {
			return rowResult{}, "", fmt.Errorf("load teacher %s: %w", teacherID, err)
		}

		applied, summary := s.merge.Merge(teacherFieldMap(teacher), incoming, models.EntityTeacher, models.SourceRoster)
		if summary.Changed() {
			if err := tx.UpdateTeacherFields(ctx, teacherID, applied); err != nil {
				return rowResult{}, "", fmt.Errorf("update teacher %s: %w", teacherID, err)
			}
			updated = true
		}
		if teacher.RosterRemoved || !teacher.Active {
			if err := tx.RestoreTeacher(ctx, teacherID); err != nil {
				return rowResult{}, "", fmt.Errorf("restore teacher %s: %w", teacherID, err)
			}
			updated = true
		}

		// A fuzzy match is applied but flagged so an operator can confirm it.
		if !resolution.Confident {
			s.metrics.ObserveFuzzyMatch()
			res.review = models.ReviewLowConfidence
			res.candidates = []string{teacherID}
			s.logger.Info("roster row fuzzy-matched",
				zap.String("teacher_id", teacherID),
				zap.Float64("score", resolution.Score),
			)
		}
	} else {
		teacher := &models.Teacher{
			ContactCore: models.ContactCore{
				FirstName: row.firstName,
				LastName:  row.lastName,
				Email:     row.email,
			},
			SchoolID:   &school.ID,
			RosterName: row.name,
			Active:     true,
		}
		if err := tx.CreateTeacher(ctx, teacher); err != nil {
			return rowResult{}, "", fmt.Errorf("create teacher: %w", err)
		}
		teacherID = teacher.ID
		created = true
	}

	progress, err := tx.GetProgress(ctx, teacherID, academicYear)
	if err != nil {
		return rowResult{}, "", fmt.Errorf("load progress: %w", err)
	}

	schoolName := school.Name
	progressIncoming := map[string]interface{}{
		"roster_name":     row.name,
		"school_name":     &schoolName,
		"target_sessions": row.targetSessions,
	}
	if progress == nil {
		if err := tx.CreateProgress(ctx, &models.TeacherProgress{
			TeacherID:      teacherID,
			AcademicYear:   academicYear,
			RosterName:     row.name,
			SchoolName:     &schoolName,
			TargetSessions: row.targetSessions,
		}); err != nil {
			return rowResult{}, "", fmt.Errorf("create progress: %w", err)
		}
		created = true
	} else {
		applied, summary := s.merge.Merge(progressFieldMap(progress), progressIncoming, models.EntityTeacher, models.SourceRoster)
		if summary.Changed() {
			if err := tx.UpdateProgressFields(ctx, progress.ID, applied); err != nil {
				return rowResult{}, "", fmt.Errorf("update progress %s: %w", progress.ID, err)
			}
			updated = true
		}
	}

	res.outcome = outcomeOf(created, updated)
	return res, teacherID, nil
}

// applyRosterRemovals handles teachers absent from the imported roster. The
// policy decides between soft-deleting them and only flagging them for
// exclusion from reports.
func (s *ImportService) applyRosterRemovals(ctx context.Context, run *batchRun, rostered map[string]struct{}) error {
	active, err := run.store.ListActiveTeachers(ctx)
	if err != nil {
		return fmt.Errorf("list active teachers: %w", err)
	}

	softDelete := s.cfg.RosterRemoval == config.RosterRemovalSoftDelete
	removed := 0
	for _, teacher := range active {
		if _, ok := rostered[teacher.ID]; ok {
			continue
		}
		if err := run.store.MarkTeacherRosterRemoved(ctx, teacher.ID, softDelete); err != nil {
			return fmt.Errorf("mark teacher %s removed: %w", teacher.ID, err)
		}
		removed++
	}

	if removed > 0 {
		s.logger.Info("roster removals applied",
			zap.String("batch_id", run.batch.ID),
			zap.Int("removed", removed),
			zap.Bool("soft_delete", softDelete),
		)
	}
	return nil
}
