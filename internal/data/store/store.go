package store

import (
	"context"
	"time"

	lessonrepo "github.com/yungbote/dailylesson-backend/internal/data/repos/lesson"
	domain "github.com/yungbote/dailylesson-backend/internal/domain/lesson"
)

type ListFilter = lessonrepo.VariationFilter

// VariationStore persists variations. Get returns nil, nil when the key is
// absent. Put is first-write-wins and returns the stored value, which may
// differ from v if another writer got there first.
type VariationStore interface {
	Get(ctx context.Context, key string) (*domain.LessonVariation, error)
	Put(ctx context.Context, v *domain.LessonVariation) (*domain.LessonVariation, error)
	UpdateMediaURLs(ctx context.Context, key string, audioURL, videoURL *string) error
	List(ctx context.Context, f ListFilter) ([]*domain.LessonVariation, int64, error)
}

// Cache is a best-effort front for a VariationStore. Add stores v only when
// the key has no entry, so a read that raced a write cannot replace it.
type Cache interface {
	Get(ctx context.Context, key string) (*domain.LessonVariation, error)
	Set(ctx context.Context, v *domain.LessonVariation) error
	Add(ctx context.Context, v *domain.LessonVariation) error
	Delete(ctx context.Context, key string) error
}

type Lease interface {
	Release(ctx context.Context) error
}

// Locker grants short exclusive leases by name. TryAcquire returns a nil
// Lease without error when the name is already held.
type Locker interface {
	TryAcquire(ctx context.Context, name string, ttl time.Duration) (Lease, error)
}
