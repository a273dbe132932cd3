package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medialog/medialog-backend/internal/apierr"
	"github.com/medialog/medialog-backend/internal/logger"
	"github.com/medialog/medialog-backend/internal/mediatype"
	"github.com/medialog/medialog-backend/internal/repos"
	"github.com/medialog/medialog-backend/internal/types"
)

// CatalogService manages the shared catalog. Entries normally arrive from
// metadata import jobs; the create path exists for seeding and admin use.
type CatalogService interface {
	CreateEntry(ctx context.Context, mt types.MediaType, title, releaseDate string, unitCount int, coverURL string) (*types.MediaEntry, error)
}

type catalogService struct {
	db        *gorm.DB
	log       *logger.Logger
	entryRepo repos.MediaEntryRepo
}

func NewCatalogService(db *gorm.DB, log *logger.Logger, entryRepo repos.MediaEntryRepo) CatalogService {
	serviceLog := log.With("service", "CatalogService")
	return &catalogService{db: db, log: serviceLog, entryRepo: entryRepo}
}

func (s *catalogService) CreateEntry(ctx context.Context, mt types.MediaType, title, releaseDate string, unitCount int, coverURL string) (*types.MediaEntry, error) {
	desc, err := mediatype.For(mt)
	if err != nil {
		return nil, apierr.BadRequest("unknown media type %q", mt)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apierr.BadRequest("a title is required")
	}
	if unitCount < 0 {
		return nil, apierr.BadRequest("unit count must not be negative")
	}
	if !desc.Bounded && unitCount != 0 {
		return nil, apierr.BadRequest("%s entries are open-ended and carry no unit count", mt)
	}

	entry := &types.MediaEntry{
		ID:        uuid.New(),
		MediaType: mt,
		Title:     title,
		UnitCount: unitCount,
		CoverURL:  strings.TrimSpace(coverURL),
	}
	if releaseDate != "" {
		parsed, err := time.Parse("2006-01-02", releaseDate)
		if err != nil {
			return nil, apierr.BadRequest("release date must be YYYY-MM-DD")
		}
		entry.ReleaseDate = &parsed
	}

	if _, err := s.entryRepo.Create(ctx, nil, []*types.MediaEntry{entry}); err != nil {
		return nil, fmt.Errorf("create catalog entry: %w", err)
	}
	s.log.Info("catalog entry created", "media_type", mt, "title", title)
	return entry, nil
}
