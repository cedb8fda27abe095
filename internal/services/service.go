package services

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/ChielvanV/BugBeheer/internal/config"
	"github.com/ChielvanV/BugBeheer/internal/domain"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// Service is the bug lifecycle manager. It validates at the boundary, talks
// to the record store, and keeps an in-memory snapshot that is only replaced
// after the store confirms a write (or by the periodic refresh job).
type Service struct {
	cfg   config.Config
	log   zerolog.Logger
	store Store
	now   func() time.Time

	entropyMu sync.Mutex
	entropy   *ulid.MonotonicEntropy

	snapMu   sync.RWMutex
	snapshot []domain.BugRecord
}

func NewService(cfg config.Config, log zerolog.Logger, store Store) *Service {
	return &Service{
		cfg:     cfg,
		log:     log,
		store:   store,
		now:     time.Now,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
}

func (s *Service) newID() string {
	s.entropyMu.Lock()
	defer s.entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(s.now()), s.entropy).String()
}

func (s *Service) nowMillis() int64 { return s.now().UnixMilli() }

// ViewOptions selects a presentation of the bug set. Composition order is
// fixed: status filter, then label filter; sorting applies to the result.
type ViewOptions struct {
	Status domain.Status
	Labels []domain.Label
	Sort   domain.SortOrder
}

// Create validates the input, assigns identity and creation time, and
// inserts the record. The stored record is returned.
func (s *Service) Create(ctx context.Context, in BugInput) (*domain.BugRecord, error) {
	if in.Description == nil {
		return nil, fmt.Errorf("%w: description is required", domain.ErrValidation)
	}
	desc, err := validateDescription(*in.Description)
	if err != nil {
		return nil, err
	}
	b := domain.BugRecord{
		ID:          s.newID(),
		Description: desc,
		Impact:      coerceScale(in.Impact),
		Likelihood:  coerceScale(in.Likelihood),
		CreatedAt:   s.nowMillis(),
	}
	if in.Ticket != nil {
		b.Ticket = normalizeOptional(*in.Ticket)
	}
	if in.JiraLink != nil {
		b.JiraLink = normalizeOptional(*in.JiraLink)
	}
	if in.Label != nil {
		if b.Label, err = validateLabel(*in.Label); err != nil {
			return nil, err
		}
	}
	if in.Reference != nil {
		b.Reference = *in.Reference
	}
	if err := s.store.InsertBug(ctx, b); err != nil {
		return nil, err
	}
	s.log.Info().Str("id", b.ID).Int("score", b.RiskScore()).Msg("bug created")
	s.refreshAfterWrite(ctx)
	return &b, nil
}

// Update applies the supplied fields to an existing record. Omitted fields
// keep their prior values; supplied fields go through the same validation as
// create.
func (s *Service) Update(ctx context.Context, id string, in BugInput) (*domain.BugRecord, error) {
	cur, err := s.store.GetBug(ctx, id)
	if err != nil {
		return nil, err
	}
	b := *cur
	if in.Description != nil {
		if b.Description, err = validateDescription(*in.Description); err != nil {
			return nil, err
		}
	}
	if in.Ticket != nil {
		b.Ticket = normalizeOptional(*in.Ticket)
	}
	if in.JiraLink != nil {
		b.JiraLink = normalizeOptional(*in.JiraLink)
	}
	if in.Label != nil {
		if b.Label, err = validateLabel(*in.Label); err != nil {
			return nil, err
		}
	}
	if in.Impact != nil {
		b.Impact = coerceScale(in.Impact)
	}
	if in.Likelihood != nil {
		b.Likelihood = coerceScale(in.Likelihood)
	}
	if in.CompletedAt != nil {
		ts, err := coerceTimestamp(in.CompletedAt)
		if err != nil {
			return nil, err
		}
		b.CompletedAt = ts
	}
	if in.Reference != nil {
		b.Reference = *in.Reference
	}
	if err := s.store.UpdateBug(ctx, b); err != nil {
		return nil, err
	}
	s.log.Info().Str("id", b.ID).Msg("bug updated")
	s.refreshAfterWrite(ctx)
	return &b, nil
}

// Complete marks an open, non-reference record as completed. The transition
// is one-way and one-shot.
func (s *Service) Complete(ctx context.Context, id string) (*domain.BugRecord, error) {
	cur, err := s.store.GetBug(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur.Reference {
		return nil, fmt.Errorf("%w: reference bugs cannot be completed", domain.ErrForbidden)
	}
	if cur.Completed() {
		return nil, fmt.Errorf("%w: bug already completed", domain.ErrConflict)
	}
	b := *cur
	ts := s.nowMillis()
	b.CompletedAt = &ts
	if err := s.store.UpdateBug(ctx, b); err != nil {
		return nil, err
	}
	s.log.Info().Str("id", b.ID).Msg("bug completed")
	s.refreshAfterWrite(ctx)
	return &b, nil
}

// Delete removes a record. Reference records are protected.
func (s *Service) Delete(ctx context.Context, id string) error {
	cur, err := s.store.GetBug(ctx, id)
	if err != nil {
		return err
	}
	if cur.Reference {
		return fmt.Errorf("%w: reference bugs cannot be deleted", domain.ErrForbidden)
	}
	if err := s.store.DeleteBug(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("id", id).Msg("bug deleted")
	s.refreshAfterWrite(ctx)
	return nil
}

// DeleteAllNonReference removes every non-reference record in one operation
// and reports how many reference records were preserved. When the whole
// collection is reference records the operation would be a no-op, which is
// rejected rather than confusingly reported as success.
func (s *Service) DeleteAllNonReference(ctx context.Context) (deleted, preserved int64, err error) {
	total, reference, err := s.store.CountBugs(ctx)
	if err != nil {
		return 0, 0, err
	}
	if reference == total {
		return 0, 0, fmt.Errorf("%w: nothing to delete, all bugs are reference bugs", domain.ErrForbidden)
	}
	deleted, err = s.store.DeleteNonReference(ctx)
	if err != nil {
		return 0, 0, err
	}
	s.log.Info().Int64("deleted", deleted).Int64("preserved", reference).Msg("bulk delete")
	s.refreshAfterWrite(ctx)
	return deleted, reference, nil
}

// Get reads the authoritative row, bypassing the snapshot.
func (s *Service) Get(ctx context.Context, id string) (*domain.BugRecord, error) {
	return s.store.GetBug(ctx, id)
}

// List composes a view of the snapshot: status filter, label filter, then
// optional score sort.
func (s *Service) List(ctx context.Context, opts ViewOptions) ([]domain.BugRecord, error) {
	bugs := s.Snapshot()
	bugs = domain.FilterStatus(bugs, opts.Status)
	bugs = domain.FilterLabels(bugs, opts.Labels)
	return domain.SortByScore(bugs, opts.Sort), nil
}

// Matrix buckets the filtered snapshot into the 25 fixed cells.
func (s *Service) Matrix(ctx context.Context, opts ViewOptions) ([]domain.MatrixCell, error) {
	bugs := s.Snapshot()
	bugs = domain.FilterStatus(bugs, opts.Status)
	bugs = domain.FilterLabels(bugs, opts.Labels)
	return domain.GroupMatrix(bugs), nil
}

// Snapshot returns a copy of the cached record set in creation order.
func (s *Service) Snapshot() []domain.BugRecord {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()
	out := make([]domain.BugRecord, len(s.snapshot))
	copy(out, s.snapshot)
	return out
}

// RefreshSnapshot replaces the cached record set wholesale with the store's
// current state. A refresh racing an in-flight edit is last-write-wins;
// there is no conflict detection.
func (s *Service) RefreshSnapshot(ctx context.Context) error {
	bugs, err := s.store.ListBugs(ctx)
	if err != nil {
		return err
	}
	s.snapMu.Lock()
	s.snapshot = bugs
	s.snapMu.Unlock()
	return nil
}

// refreshAfterWrite reloads the snapshot once the store has confirmed a
// mutation. Failures only degrade view freshness, so they are logged and
// swallowed.
func (s *Service) refreshAfterWrite(ctx context.Context) {
	if err := s.RefreshSnapshot(ctx); err != nil {
		s.log.Error().Err(err).Msg("snapshot refresh after write failed")
	}
}
