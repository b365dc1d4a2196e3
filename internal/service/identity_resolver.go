package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/edubridge/volunteer-hub-api/internal/models"
	appErrors "github.com/edubridge/volunteer-hub-api/pkg/errors"
)

// MatchMethod states which rule produced an identity resolution.
type MatchMethod string

const (
	MatchExternalID MatchMethod = "external_id"
	MatchEmail      MatchMethod = "email"
	MatchComposite  MatchMethod = "composite"
	MatchFuzzy      MatchMethod = "fuzzy"
	MatchNone       MatchMethod = "none"
)

// compositeKeyPrefix namespaces composite natural keys inside the external-id
// table so they share the same idempotent lookup path as real identifiers.
const compositeKeyPrefix = "composite:"

// IncomingRecord is the resolver's view of one normalized import row.
type IncomingRecord struct {
	EntityType   models.EntityType
	Source       models.SourceSystem
	ExternalKey  string
	Emails       []string
	CompositeKey string
	// FullName and SchoolID feed the fuzzy fallback, which only applies to
	// roster reconciliation.
	FullName string
	SchoolID string
	// Fields maps storage column names to incoming values for the merge engine.
	Fields map[string]interface{}
}

// Resolution is the outcome of identity resolution for one record.
type Resolution struct {
	EntityID string
	Method   MatchMethod
	// Confident is false for fuzzy matches so downstream consumers can
	// distinguish certain matches from auto-matched low-confidence ones.
	Confident  bool
	Score      float64
	Candidates []string
}

// Matched reports whether an existing entity was found.
func (r Resolution) Matched() bool {
	return r.Method != MatchNone && r.EntityID != ""
}

// ResolverStore is the identity lookup surface the resolver needs.
type ResolverStore interface {
	FindEntityID(ctx context.Context, source models.SourceSystem, sourceKey string, entityType models.EntityType) (string, error)
	FindVolunteersByEmails(ctx context.Context, emails []string) ([]models.Volunteer, error)
	FindTeachersByEmails(ctx context.Context, emails []string) ([]models.Teacher, error)
	ListTeachersBySchool(ctx context.Context, schoolID string) ([]models.Teacher, error)
}

// IdentityResolver decides whether an incoming record matches an existing
// canonical entity. Match rules run in strict precedence order; an ambiguous
// result is a data-integrity error, never silently resolved.
type IdentityResolver struct {
	store          ResolverStore
	scorer         NameScorer
	fuzzyThreshold float64
	fuzzyEnabled   bool
	logger         *zap.Logger
}

// NewIdentityResolver constructs an IdentityResolver.
func NewIdentityResolver(store ResolverStore, scorer NameScorer, fuzzyThreshold float64, fuzzyEnabled bool, logger *zap.Logger) *IdentityResolver {
	if scorer == nil {
		scorer = NewLevenshteinScorer()
	}
	if fuzzyThreshold <= 0 || fuzzyThreshold > 1 {
		fuzzyThreshold = 0.85
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityResolver{
		store:          store,
		scorer:         scorer,
		fuzzyThreshold: fuzzyThreshold,
		fuzzyEnabled:   fuzzyEnabled,
		logger:         logger,
	}
}

// Resolve runs the match rules for one record. A nil error with Method ==
// MatchNone means "no match"; the caller decides between auto-create and the
// manual review queue.
func (r *IdentityResolver) Resolve(ctx context.Context, rec IncomingRecord) (Resolution, error) {
	// Rule 1: a linked source identifier is the strongest match.
	if rec.ExternalKey != "" {
		entityID, err := r.store.FindEntityID(ctx, rec.Source, rec.ExternalKey, rec.EntityType)
		if err != nil {
			return Resolution{}, fmt.Errorf("resolve by external id: %w", err)
		}
		if entityID != "" {
			return Resolution{EntityID: entityID, Method: MatchExternalID, Confident: true}, nil
		}
	}

	// Rule 2: normalized-email match for contact entities.
	if len(rec.Emails) > 0 {
		res, err := r.resolveByEmail(ctx, rec)
		if err != nil || res.Matched() {
			return res, err
		}
	}

	// Rule 3: composite natural key.
	if rec.CompositeKey != "" {
		entityID, err := r.store.FindEntityID(ctx, rec.Source, compositeKeyPrefix+rec.CompositeKey, rec.EntityType)
		if err != nil {
			return Resolution{}, fmt.Errorf("resolve by composite key: %w", err)
		}
		if entityID != "" {
			return Resolution{EntityID: entityID, Method: MatchComposite, Confident: true}, nil
		}
	}

	// Rule 4: fuzzy name fallback, roster reconciliation only.
	if r.fuzzyEnabled && rec.EntityType == models.EntityTeacher && rec.FullName != "" && rec.SchoolID != "" {
		res, err := r.resolveByName(ctx, rec)
		if err != nil || res.Matched() {
			return res, err
		}
	}

	return Resolution{Method: MatchNone}, nil
}

func (r *IdentityResolver) resolveByEmail(ctx context.Context, rec IncomingRecord) (Resolution, error) {
	var ids []string

	switch rec.EntityType {
	case models.EntityVolunteer:
		matches, err := r.store.FindVolunteersByEmails(ctx, rec.Emails)
		if err != nil {
			return Resolution{}, fmt.Errorf("resolve volunteer by email: %w", err)
		}
		for _, m := range matches {
			ids = append(ids, m.ID)
		}
	case models.EntityTeacher:
		matches, err := r.store.FindTeachersByEmails(ctx, rec.Emails)
		if err != nil {
			return Resolution{}, fmt.Errorf("resolve teacher by email: %w", err)
		}
		for _, m := range matches {
			ids = append(ids, m.ID)
		}
	default:
		return Resolution{Method: MatchNone}, nil
	}

	switch len(ids) {
	case 0:
		return Resolution{Method: MatchNone}, nil
	case 1:
		return Resolution{EntityID: ids[0], Method: MatchEmail, Confident: true}, nil
	default:
		return Resolution{Method: MatchEmail, Candidates: ids},
			appErrors.Clone(appErrors.ErrAmbiguousMatch, fmt.Sprintf("%d entities share emails %v", len(ids), rec.Emails))
	}
}

func (r *IdentityResolver) resolveByName(ctx context.Context, rec IncomingRecord) (Resolution, error) {
	candidates, err := r.store.ListTeachersBySchool(ctx, rec.SchoolID)
	if err != nil {
		return Resolution{}, fmt.Errorf("list fuzzy candidates: %w", err)
	}

	var (
		bestID    string
		bestScore float64
		tied      []string
	)
	for _, c := range candidates {
		name := c.RosterName
		if name == "" {
			name = c.FullName()
		}
		score := r.scorer.Score(rec.FullName, name)
		if score < r.fuzzyThreshold {
			continue
		}
		switch {
		case score > bestScore:
			bestID, bestScore = c.ID, score
			tied = []string{c.ID}
		case score == bestScore:
			tied = append(tied, c.ID)
		}
	}

	if bestID == "" {
		return Resolution{Method: MatchNone}, nil
	}
	if len(tied) > 1 {
		return Resolution{Method: MatchFuzzy, Candidates: tied},
			appErrors.Clone(appErrors.ErrAmbiguousMatch, fmt.Sprintf("%d teachers at school %s match name %q", len(tied), rec.SchoolID, rec.FullName))
	}

	r.logger.Debug("fuzzy match",
		zap.String("name", rec.FullName),
		zap.String("entity_id", bestID),
		zap.Float64("score", bestScore),
	)
	return Resolution{EntityID: bestID, Method: MatchFuzzy, Confident: false, Score: bestScore}, nil
}
