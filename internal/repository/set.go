package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Querier is satisfied by both *sqlx.DB and *sqlx.Tx so repositories can run
// inside or outside a transaction unchanged.
type Querier interface {
	sqlx.ExtContext
}

// Set bundles every repository over a single store handle. Import runs build a
// Set per resolved tenant store and rebind it per row transaction.
type Set struct {
	db *sqlx.DB

	ExternalIDs    *ExternalIDRepository
	Volunteers     *VolunteerRepository
	Teachers       *TeacherRepository
	Events         *EventRepository
	Organizations  *OrganizationRepository
	Participations *ParticipationRepository
	Progress       *ProgressRepository
	Batches        *BatchRepository
	Reviews        *ReviewRepository
	Reference      *ReferenceRepository
}

// NewSet builds all repositories against the given store.
func NewSet(db *sqlx.DB) *Set {
	return newSet(db, db)
}

func newSet(db *sqlx.DB, q Querier) *Set {
	return &Set{
		db:             db,
		ExternalIDs:    &ExternalIDRepository{db: q},
		Volunteers:     &VolunteerRepository{db: q},
		Teachers:       &TeacherRepository{db: q},
		Events:         &EventRepository{db: q},
		Organizations:  &OrganizationRepository{db: q},
		Participations: &ParticipationRepository{db: q},
		Progress:       &ProgressRepository{db: q},
		Batches:        &BatchRepository{db: q},
		Reviews:        &ReviewRepository{db: q},
		Reference:      &ReferenceRepository{db: q},
	}
}

// InTx runs fn with a Set bound to a single transaction. A per-row transaction
// is what lets a failing row roll back without touching previously committed
// rows.
func (s *Set) InTx(ctx context.Context, fn func(*Set) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(newSet(s.db, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
