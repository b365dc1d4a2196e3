package models

import "time"

// ReviewReason states why an import row was routed to manual review.
type ReviewReason string

const (
	ReviewUnmatched     ReviewReason = "unmatched"
	ReviewAmbiguous     ReviewReason = "ambiguous"
	ReviewLowConfidence ReviewReason = "low_confidence"
)

// ReviewStatus tracks the manual review workflow.
type ReviewStatus string

const (
	ReviewPending   ReviewStatus = "pending"
	ReviewResolved  ReviewStatus = "resolved"
	ReviewDismissed ReviewStatus = "dismissed"
)

// ReviewItem is an import row parked for operator attention. Resolving an item
// by linking it to an entity is the explicit administrative action required to
// attach or re-attach an external identifier.
type ReviewItem struct {
	ID           string       `db:"id" json:"id"`
	BatchID      *string      `db:"batch_id" json:"batch_id,omitempty"`
	EntityType   EntityType   `db:"entity_type" json:"entity_type"`
	Source       SourceSystem `db:"source" json:"source"`
	Reason       ReviewReason `db:"reason" json:"reason"`
	RowSnapshot  []byte       `db:"row_snapshot" json:"row_snapshot,omitempty"`
	CandidateIDs []byte       `db:"candidate_ids" json:"candidate_ids,omitempty"`
	Status       ReviewStatus `db:"status" json:"status"`
	ResolvedBy   *string      `db:"resolved_by" json:"resolved_by,omitempty"`
	LinkedEntity *string      `db:"linked_entity_id" json:"linked_entity_id,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	ResolvedAt   *time.Time   `db:"resolved_at" json:"resolved_at,omitempty"`
}

// ReviewFilter constrains review queue listings.
type ReviewFilter struct {
	Status     ReviewStatus
	EntityType EntityType
	Reason     ReviewReason
	Page       int
	PageSize   int
}
