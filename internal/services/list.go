package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medialog/medialog-backend/internal/apierr"
	"github.com/medialog/medialog-backend/internal/logger"
	"github.com/medialog/medialog-backend/internal/mediatype"
	"github.com/medialog/medialog-backend/internal/repos"
	"github.com/medialog/medialog-backend/internal/tracking"
	"github.com/medialog/medialog-backend/internal/types"
)

// ChangeSet is a partial edit to a user entry. Nil fields are untouched.
// RedoIncrement is additive: the re-consumption counter only moves when
// the caller explicitly bumps it.
type ChangeSet struct {
	Status        *types.Status `json:"status,omitempty"`
	Progress      *int          `json:"progress,omitempty"`
	Rating        *int          `json:"rating,omitempty"`
	Comment       *string       `json:"comment,omitempty"`
	Favorite      *bool         `json:"favorite,omitempty"`
	RedoIncrement int           `json:"redo_increment,omitempty"`
}

func (c ChangeSet) isEmpty() bool {
	return c.Status == nil && c.Progress == nil && c.Rating == nil &&
		c.Comment == nil && c.Favorite == nil && c.RedoIncrement == 0
}

// ListService is the single entry point for entry-level mutations. Each
// mutation runs read -> normalize -> persist -> delta -> stats ->
// achievements -> activity log inside one transaction; partial application
// is prevented by the transaction scope, not by compensating logic.
type ListService interface {
	AddEntry(ctx context.Context, userID, entryID uuid.UUID, mt types.MediaType, initialStatus *types.Status) (*types.UserEntry, error)
	UpdateEntry(ctx context.Context, userID, entryID uuid.UUID, mt types.MediaType, change ChangeSet) (*types.UserEntry, error)
	RemoveEntry(ctx context.Context, userID, entryID uuid.UUID, mt types.MediaType) (*tracking.StatsDelta, error)
	ListEntries(ctx context.Context, userID uuid.UUID, mt types.MediaType, limit, offset int) ([]*types.UserEntry, error)
}

type statsInvalidator interface {
	InvalidateUser(ctx context.Context, userID uuid.UUID)
}

type listService struct {
	db            *gorm.DB
	log           *logger.Logger
	entryRepo     repos.MediaEntryRepo
	userEntryRepo repos.UserEntryRepo
	statsRepo     repos.AggregateStatsRepo
	achievements  AchievementService
	updateLog     UpdateLogService
	cache         statsInvalidator
	now           func() time.Time
}

func NewListService(
	db *gorm.DB,
	log *logger.Logger,
	entryRepo repos.MediaEntryRepo,
	userEntryRepo repos.UserEntryRepo,
	statsRepo repos.AggregateStatsRepo,
	achievements AchievementService,
	updateLog UpdateLogService,
	cache statsInvalidator,
) ListService {
	serviceLog := log.With("service", "ListService")
	return &listService{
		db:            db,
		log:           serviceLog,
		entryRepo:     entryRepo,
		userEntryRepo: userEntryRepo,
		statsRepo:     statsRepo,
		achievements:  achievements,
		updateLog:     updateLog,
		cache:         cache,
		now:           time.Now,
	}
}

func (s *listService) AddEntry(ctx context.Context, userID, entryID uuid.UUID, mt types.MediaType, initialStatus *types.Status) (*types.UserEntry, error) {
	desc, err := mediatype.For(mt)
	if err != nil {
		return nil, apierr.BadRequest("unknown media type %q", mt)
	}
	if userID == uuid.Nil {
		return nil, apierr.Unauthorized("missing user")
	}
	status := types.StatusPlanned
	if initialStatus != nil {
		status = *initialStatus
	}
	if !desc.ValidStatus(status) {
		return nil, apierr.BadRequest("status %q is not valid for %s", status, mt)
	}

	var created *types.UserEntry
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry, err := s.catalogEntry(ctx, tx, entryID, mt)
		if err != nil {
			return err
		}
		existing, err := s.userEntryRepo.GetForUpdate(ctx, tx, userID, mt, entryID)
		if err != nil {
			return fmt.Errorf("read current entry state: %w", err)
		}
		if existing != nil {
			return apierr.AlreadyExists("entry %s already on the %s list", entryID, mt)
		}

		ue := &types.UserEntry{
			ID:        uuid.New(),
			UserID:    userID,
			MediaType: mt,
			EntryID:   entryID,
			Status:    status,
		}
		s.stampStatusTimes(ue, desc)
		desc.Normalize(ue, entry.UnitCount)
		if err := s.userEntryRepo.Create(ctx, tx, ue); err != nil {
			return fmt.Errorf("create user entry: %w", err)
		}

		delta := tracking.ComputeDelta(nil, ue, entry.UnitCount, desc)
		if err := s.applyDelta(ctx, tx, userID, mt, delta); err != nil {
			return err
		}
		if err := s.achievements.EvaluateForMediaType(ctx, tx, userID, mt, !delta.IsZero()); err != nil {
			return err
		}
		if err := s.updateLog.Record(ctx, tx, &types.UpdateLog{
			UserID:    userID,
			EntryID:   entryID,
			MediaType: mt,
			Kind:      types.UpdateKindAdd,
			NewValue:  string(ue.Status),
		}); err != nil {
			return err
		}
		created = ue
		return nil
	})
	if err != nil {
		return nil, storeError(err)
	}
	s.invalidate(ctx, userID)
	return created, nil
}

func (s *listService) UpdateEntry(ctx context.Context, userID, entryID uuid.UUID, mt types.MediaType, change ChangeSet) (*types.UserEntry, error) {
	desc, err := mediatype.For(mt)
	if err != nil {
		return nil, apierr.BadRequest("unknown media type %q", mt)
	}
	if userID == uuid.Nil {
		return nil, apierr.Unauthorized("missing user")
	}
	if change.isEmpty() {
		return nil, apierr.BadRequest("empty change")
	}
	if err := s.validateChange(desc, change); err != nil {
		return nil, err
	}

	var updated *types.UserEntry
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry, err := s.catalogEntry(ctx, tx, entryID, mt)
		if err != nil {
			return err
		}
		current, err := s.userEntryRepo.GetForUpdate(ctx, tx, userID, mt, entryID)
		if err != nil {
			return fmt.Errorf("read current entry state: %w", err)
		}
		if current == nil {
			return apierr.NotFound("entry %s is not on the %s list", entryID, mt)
		}
		old := current.Clone()

		s.applyChange(current, change, desc)
		desc.Normalize(current, entry.UnitCount)
		if err := s.userEntryRepo.Save(ctx, tx, current); err != nil {
			return fmt.Errorf("save user entry: %w", err)
		}

		delta := tracking.ComputeDelta(old, current, entry.UnitCount, desc)
		if err := s.applyDelta(ctx, tx, userID, mt, delta); err != nil {
			return err
		}
		// Cross-catalog achievements read the roll-up row, so any mutation
		// that touched it is relevant, not just adds and removes.
		if err := s.achievements.EvaluateForMediaType(ctx, tx, userID, mt, !delta.IsZero()); err != nil {
			return err
		}

		kind := primaryKind(change)
		if err := s.updateLog.Record(ctx, tx, &types.UpdateLog{
			UserID:    userID,
			EntryID:   entryID,
			MediaType: mt,
			Kind:      kind,
			OldValue:  renderLogValue(kind, old, desc),
			NewValue:  renderLogValue(kind, current, desc),
		}); err != nil {
			return err
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, storeError(err)
	}
	s.invalidate(ctx, userID)
	return updated, nil
}

func (s *listService) RemoveEntry(ctx context.Context, userID, entryID uuid.UUID, mt types.MediaType) (*tracking.StatsDelta, error) {
	desc, err := mediatype.For(mt)
	if err != nil {
		return nil, apierr.BadRequest("unknown media type %q", mt)
	}
	if userID == uuid.Nil {
		return nil, apierr.Unauthorized("missing user")
	}

	var removed tracking.StatsDelta
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry, err := s.catalogEntry(ctx, tx, entryID, mt)
		if err != nil {
			return err
		}
		current, err := s.userEntryRepo.GetForUpdate(ctx, tx, userID, mt, entryID)
		if err != nil {
			return fmt.Errorf("read current entry state: %w", err)
		}
		if current == nil {
			return apierr.NotFound("entry %s is not on the %s list", entryID, mt)
		}

		if err := s.userEntryRepo.FullDeleteByIDs(ctx, tx, []uuid.UUID{current.ID}); err != nil {
			return fmt.Errorf("delete user entry: %w", err)
		}

		delta := tracking.ComputeDelta(current, nil, entry.UnitCount, desc)
		if err := s.applyDelta(ctx, tx, userID, mt, delta); err != nil {
			return err
		}
		if err := s.achievements.EvaluateForMediaType(ctx, tx, userID, mt, true); err != nil {
			return err
		}
		if err := s.updateLog.Record(ctx, tx, &types.UpdateLog{
			UserID:    userID,
			EntryID:   entryID,
			MediaType: mt,
			Kind:      types.UpdateKindRemove,
			OldValue:  string(current.Status),
		}); err != nil {
			return err
		}
		removed = delta
		return nil
	})
	if err != nil {
		return nil, storeError(err)
	}
	s.invalidate(ctx, userID)
	return &removed, nil
}

func (s *listService) ListEntries(ctx context.Context, userID uuid.UUID, mt types.MediaType, limit, offset int) ([]*types.UserEntry, error) {
	if _, err := mediatype.For(mt); err != nil {
		return nil, apierr.BadRequest("unknown media type %q", mt)
	}
	if userID == uuid.Nil {
		return nil, apierr.Unauthorized("missing user")
	}
	return s.userEntryRepo.ListByUser(ctx, nil, userID, mt, limit, offset)
}

func (s *listService) catalogEntry(ctx context.Context, tx *gorm.DB, entryID uuid.UUID, mt types.MediaType) (*types.MediaEntry, error) {
	entries, err := s.entryRepo.GetByIDs(ctx, tx, []uuid.UUID{entryID})
	if err != nil {
		return nil, fmt.Errorf("read catalog entry: %w", err)
	}
	if len(entries) == 0 || entries[0] == nil || entries[0].MediaType != mt {
		return nil, apierr.NotFound("no %s catalog entry %s", mt, entryID)
	}
	return entries[0], nil
}

func (s *listService) validateChange(desc mediatype.Descriptor, change ChangeSet) error {
	if change.Status != nil && !desc.ValidStatus(*change.Status) {
		return apierr.BadRequest("status %q is not valid for %s", *change.Status, desc.MediaType)
	}
	if change.Progress != nil && *change.Progress < 0 {
		return apierr.BadRequest("progress must not be negative")
	}
	if change.Rating != nil && (*change.Rating < 0 || *change.Rating > 10) {
		return apierr.BadRequest("rating must be between 0 and 10")
	}
	if change.RedoIncrement < 0 {
		return apierr.BadRequest("redo increment must not be negative")
	}
	if change.RedoIncrement > 0 && !desc.SupportsRedo {
		return apierr.BadRequest("%s entries have no re-consumption counter", desc.MediaType)
	}
	return nil
}

func (s *listService) applyChange(e *types.UserEntry, change ChangeSet, desc mediatype.Descriptor) {
	if change.Status != nil && *change.Status != e.Status {
		e.Status = *change.Status
		s.stampStatusTimes(e, desc)
	}
	if change.Progress != nil {
		e.Progress = *change.Progress
	}
	if change.Rating != nil {
		e.Rating = *change.Rating
	}
	if change.Comment != nil {
		e.Comment = *change.Comment
	}
	if change.Favorite != nil {
		e.Favorite = *change.Favorite
	}
	if change.RedoIncrement > 0 {
		e.RedoCount += change.RedoIncrement
	}
}

func (s *listService) stampStatusTimes(e *types.UserEntry, desc mediatype.Descriptor) {
	now := s.now()
	switch {
	case e.Status == types.StatusPlanned:
		e.StartedAt = nil
		e.FinishedAt = nil
	case desc.IsCompleted(e.Status):
		if e.StartedAt == nil {
			e.StartedAt = &now
		}
		if e.FinishedAt == nil {
			e.FinishedAt = &now
		}
	default:
		if e.StartedAt == nil {
			e.StartedAt = &now
		}
	}
}

// applyDelta updates the per-catalog row and the cross-catalog roll-up,
// then asserts the reconciliation invariant on the touched rows. A failed
// assertion rolls the whole mutation back.
func (s *listService) applyDelta(ctx context.Context, tx *gorm.DB, userID uuid.UUID, mt types.MediaType, delta tracking.StatsDelta) error {
	if delta.IsZero() {
		return nil
	}
	if err := s.statsRepo.ApplyDelta(ctx, tx, userID, mt, delta); err != nil {
		return fmt.Errorf("apply %s delta: %w", mt, err)
	}
	if err := s.statsRepo.ApplyDelta(ctx, tx, userID, types.MediaTypeAll, delta); err != nil {
		return fmt.Errorf("apply roll-up delta: %w", err)
	}
	for _, scope := range []types.MediaType{mt, types.MediaTypeAll} {
		row, err := s.statsRepo.Get(ctx, tx, userID, scope)
		if err != nil {
			return fmt.Errorf("re-read %s stats: %w", scope, err)
		}
		if err := checkStatsInvariants(row); err != nil {
			s.log.Error("aggregate stats invariant violated", "media_type", scope, "user_id", userID, "error", err)
			return err
		}
	}
	return nil
}

func checkStatsInvariants(row *types.AggregateStats) error {
	if row == nil {
		return nil
	}
	if row.StatusTotal() != row.TotalEntries {
		return apierr.InvariantViolation("status counts sum to %d but total entries is %d", row.StatusTotal(), row.TotalEntries)
	}
	for name, v := range map[string]int64{
		"total_entries":      row.TotalEntries,
		"planned_count":      row.PlannedCount,
		"current_count":      row.CurrentCount,
		"completed_count":    row.CompletedCount,
		"paused_count":       row.PausedCount,
		"dropped_count":      row.DroppedCount,
		"repeating_count":    row.RepeatingCount,
		"time_spent_minutes": row.TimeSpentMinutes,
		"units_consumed":     row.UnitsConsumed,
		"rated_count":        row.RatedCount,
		"commented_count":    row.CommentedCount,
		"favorite_count":     row.FavoriteCount,
		"redo_count":         row.RedoCount,
	} {
		if v < 0 {
			return apierr.InvariantViolation("%s went negative (%d)", name, v)
		}
	}
	return nil
}

func (s *listService) invalidate(ctx context.Context, userID uuid.UUID) {
	if s.cache != nil {
		s.cache.InvalidateUser(ctx, userID)
	}
}

// primaryKind picks the feed kind for a multi-field edit. Status moves
// dominate, then recorded progress, then the rest.
func primaryKind(change ChangeSet) types.UpdateKind {
	switch {
	case change.Status != nil:
		return types.UpdateKindStatus
	case change.Progress != nil:
		return types.UpdateKindProgress
	case change.RedoIncrement > 0:
		return types.UpdateKindRedo
	case change.Rating != nil:
		return types.UpdateKindRating
	case change.Favorite != nil:
		return types.UpdateKindFavorite
	default:
		return types.UpdateKindComment
	}
}

func renderLogValue(kind types.UpdateKind, e *types.UserEntry, desc mediatype.Descriptor) string {
	if e == nil {
		return ""
	}
	switch kind {
	case types.UpdateKindStatus:
		return string(e.Status)
	case types.UpdateKindProgress:
		return fmt.Sprintf("%d %s", e.Progress, desc.UnitName)
	case types.UpdateKindRating:
		return strconv.Itoa(e.Rating)
	case types.UpdateKindRedo:
		return strconv.Itoa(e.RedoCount)
	case types.UpdateKindFavorite:
		return strconv.FormatBool(e.Favorite)
	case types.UpdateKindComment:
		return e.Comment
	default:
		return string(e.Status)
	}
}
