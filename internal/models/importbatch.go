package models

import "time"

// BatchStatus tracks the import batch lifecycle. There is no persisted
// mid-batch partial state: a batch is either running, completed or failed.
type BatchStatus string

const (
	BatchStarted    BatchStatus = "started"
	BatchProcessing BatchStatus = "processing"
	BatchCompleted  BatchStatus = "completed"
	BatchFailed     BatchStatus = "failed"
)

// RowOutcome classifies the result of processing one import row.
type RowOutcome string

const (
	RowCreated   RowOutcome = "created"
	RowUpdated   RowOutcome = "updated"
	RowSkipped   RowOutcome = "skipped"
	RowUnmatched RowOutcome = "unmatched"
	RowInvalid   RowOutcome = "invalid"
)

// ImportReport is the fixed count summary every batch run returns. Dashboards
// and ops tooling depend on this exact shape.
type ImportReport struct {
	RowsProcessed int `db:"rows_processed" json:"rows_processed"`
	RowsCreated   int `db:"rows_created" json:"rows_created"`
	RowsUpdated   int `db:"rows_updated" json:"rows_updated"`
	RowsSkipped   int `db:"rows_skipped" json:"rows_skipped"`
	RowsUnmatched int `db:"rows_unmatched" json:"rows_unmatched"`
	RowsInvalid   int `db:"rows_invalid" json:"rows_invalid"`
}

// Add folds a row outcome into the report.
func (r *ImportReport) Add(outcome RowOutcome) {
	r.RowsProcessed++
	switch outcome {
	case RowCreated:
		r.RowsCreated++
	case RowUpdated:
		r.RowsUpdated++
	case RowSkipped:
		r.RowsSkipped++
	case RowUnmatched:
		r.RowsUnmatched++
	case RowInvalid:
		r.RowsInvalid++
	}
}

// ImportBatch is one import run. Finalized batches are never mutated.
type ImportBatch struct {
	ID            string       `db:"id" json:"id"`
	EntityType    EntityType   `db:"entity_type" json:"entity_type"`
	Source        SourceSystem `db:"source" json:"source"`
	TenantSlug    *string      `db:"tenant_slug" json:"tenant_slug,omitempty"`
	Status        BatchStatus  `db:"status" json:"status"`
	FailureReason *string      `db:"failure_reason" json:"failure_reason,omitempty"`
	ImportReport
	StartedAt  time.Time  `db:"started_at" json:"started_at"`
	FinishedAt *time.Time `db:"finished_at" json:"finished_at,omitempty"`
}

// ImportRowError records a single row-level failure with enough context for
// operators to fix the source data.
type ImportRowError struct {
	ID        string    `db:"id" json:"id"`
	BatchID   string    `db:"batch_id" json:"batch_id"`
	RowNumber int       `db:"row_number" json:"row_number"`
	Column    *string   `db:"column_name" json:"column,omitempty"`
	Code      string    `db:"code" json:"code"`
	Message   string    `db:"message" json:"message"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// BatchFilter constrains batch listing queries.
type BatchFilter struct {
	EntityType EntityType
	Source     SourceSystem
	Status     BatchStatus
	Page       int
	PageSize   int
}
