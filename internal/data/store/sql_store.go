package store

import (
	"context"

	lessonrepo "github.com/yungbote/dailylesson-backend/internal/data/repos/lesson"
	domain "github.com/yungbote/dailylesson-backend/internal/domain/lesson"
	"github.com/yungbote/dailylesson-backend/internal/platform/dbctx"
	"github.com/yungbote/dailylesson-backend/internal/platform/logger"
)

// SQLStore reads through an optional cache to the variation table and writes
// the stored row back after every change. The table is the source of truth;
// cache failures are logged and skipped.
type SQLStore struct {
	repo  lessonrepo.VariationRepo
	cache Cache
	log   *logger.Logger
}

func NewSQLStore(repo lessonrepo.VariationRepo, cache Cache, baseLog *logger.Logger) *SQLStore {
	return &SQLStore{
		repo:  repo,
		cache: cache,
		log:   baseLog.With("store", "SQLStore"),
	}
}

func (s *SQLStore) Get(ctx context.Context, key string) (*domain.LessonVariation, error) {
	if s.cache != nil {
		v, err := s.cache.Get(ctx, key)
		if err != nil {
			s.log.Warn("Cache read failed; falling back to SQL", "variation_key", key, "error", err)
		} else if v != nil {
			return v, nil
		}
	}
	v, err := s.repo.Get(dbctx.Context{Ctx: ctx}, key)
	if err != nil {
		return nil, err
	}
	if v != nil {
		s.backfill(ctx, v)
	}
	return v, nil
}

func (s *SQLStore) Put(ctx context.Context, v *domain.LessonVariation) (*domain.LessonVariation, error) {
	stored, inserted, err := s.repo.InsertIfAbsent(dbctx.Context{Ctx: ctx}, v)
	if err != nil {
		return nil, err
	}
	if !inserted {
		s.log.Debug("Variation already stored; keeping first write", "variation_key", v.Key)
	}
	s.fill(ctx, stored)
	return stored, nil
}

func (s *SQLStore) UpdateMediaURLs(ctx context.Context, key string, audioURL, videoURL *string) error {
	if err := s.repo.UpdateMediaURLs(dbctx.Context{Ctx: ctx}, key, audioURL, videoURL); err != nil {
		return err
	}
	if s.cache == nil || (audioURL == nil && videoURL == nil) {
		return nil
	}
	v, err := s.repo.Get(dbctx.Context{Ctx: ctx}, key)
	if err != nil || v == nil {
		s.log.Warn("Re-read after media update failed; dropping cache entry", "variation_key", key, "error", err)
		if err := s.cache.Delete(ctx, key); err != nil {
			s.log.Warn("Cache invalidation failed", "variation_key", key, "error", err)
		}
		return nil
	}
	s.fill(ctx, v)
	return nil
}

func (s *SQLStore) List(ctx context.Context, f ListFilter) ([]*domain.LessonVariation, int64, error) {
	return s.repo.List(dbctx.Context{Ctx: ctx}, f)
}

// backfill caches a row read on a miss without overwriting a newer entry
// written meanwhile by UpdateMediaURLs.
func (s *SQLStore) backfill(ctx context.Context, v *domain.LessonVariation) {
	if s.cache == nil || v == nil {
		return
	}
	if err := s.cache.Add(ctx, v); err != nil {
		s.log.Warn("Cache backfill failed", "variation_key", v.Key, "error", err)
	}
}

func (s *SQLStore) fill(ctx context.Context, v *domain.LessonVariation) {
	if s.cache == nil || v == nil {
		return
	}
	if err := s.cache.Set(ctx, v); err != nil {
		s.log.Warn("Cache fill failed", "variation_key", v.Key, "error", err)
	}
}
