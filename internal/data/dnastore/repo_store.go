package dnastore

import (
	"context"

	lessonrepo "github.com/yungbote/dailylesson-backend/internal/data/repos/lesson"
	domain "github.com/yungbote/dailylesson-backend/internal/domain/lesson"
	"github.com/yungbote/dailylesson-backend/internal/platform/dbctx"
)

// RepoStore reads CMS-authored DNA from the lesson_dna table.
type RepoStore struct {
	repo lessonrepo.DNARepo
}

func NewRepoStore(repo lessonrepo.DNARepo) *RepoStore {
	return &RepoStore{repo: repo}
}

func (s *RepoStore) Load(ctx context.Context, lessonID string) (*domain.LessonDNA, error) {
	return s.repo.Get(dbctx.Context{Ctx: ctx}, lessonID)
}

func (s *RepoStore) ForDay(ctx context.Context, dayOfYear int) (*domain.LessonDNA, error) {
	return s.repo.GetByDay(dbctx.Context{Ctx: ctx}, dayOfYear)
}

// Save validates then upserts.
func (s *RepoStore) Save(ctx context.Context, dna *domain.LessonDNA) error {
	if err := Validate(dna); err != nil {
		return err
	}
	return s.repo.Upsert(dbctx.Context{Ctx: ctx}, dna)
}
